package usecase

import (
	"context"
	"fmt"

	"github.com/Devansh171021/swpl/internal/domain/transaction"
	"github.com/Devansh171021/swpl/internal/platform/logging"
)

// HistoryService exposes the transaction log: listing, CSV export,
// wholesale clearing, and replaying the log to the spreadsheet.
type HistoryService struct {
	recorder transaction.Recorder
	writer   DispositionWriter
	logger   *logging.Logger
}

func NewHistoryService(recorder transaction.Recorder, writer DispositionWriter, logger *logging.Logger) *HistoryService {
	if logger == nil {
		logger = logging.Default()
	}

	return &HistoryService{
		recorder: recorder,
		writer:   writer,
		logger:   logger,
	}
}

func (s *HistoryService) List(ctx context.Context) ([]transaction.Record, error) {
	ctx, span := startUsecaseSpan(ctx, "HistoryService.List")
	defer span.End()

	records, err := s.recorder.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return records, nil
}

func (s *HistoryService) ExportCSV(ctx context.Context) (string, error) {
	ctx, span := startUsecaseSpan(ctx, "HistoryService.ExportCSV")
	defer span.End()

	records, err := s.recorder.ListAll(ctx)
	if err != nil {
		return "", fmt.Errorf("list transactions: %w", err)
	}
	return transaction.ExportCSV(records), nil
}

// Clear wipes the whole log. It refuses to run without explicit
// confirmation; there is no partial delete.
func (s *HistoryService) Clear(ctx context.Context, confirm bool) error {
	ctx, span := startUsecaseSpan(ctx, "HistoryService.Clear")
	defer span.End()

	if !confirm {
		return fmt.Errorf("%w: clearing history requires confirmation", ErrInvalidInput)
	}

	if err := s.recorder.ClearAll(ctx); err != nil {
		return fmt.Errorf("clear transactions: %w", err)
	}

	s.logger.InfoContext(ctx, "transaction history cleared")
	return nil
}

// Resync replays every record to the spreadsheet endpoint.
func (s *HistoryService) Resync(ctx context.Context) (ResyncResult, error) {
	ctx, span := startUsecaseSpan(ctx, "HistoryService.Resync")
	defer span.End()

	if s.writer == nil || !s.writer.Configured() {
		return ResyncResult{}, fmt.Errorf("%w: no spreadsheet write-back endpoint configured", ErrDependencyUnavailable)
	}

	records, err := s.recorder.ListAll(ctx)
	if err != nil {
		return ResyncResult{}, fmt.Errorf("list transactions: %w", err)
	}

	result, err := s.writer.SyncAll(ctx, records)
	if err != nil {
		s.logger.WarnContext(ctx, "history resync incomplete",
			"total", result.Total,
			"success", result.Success,
			"failed", result.Failed,
			"error", err,
		)
		return result, fmt.Errorf("%w: %v", ErrDependencyUnavailable, err)
	}

	s.logger.InfoContext(ctx, "history resync complete", "total", result.Total)
	return result, nil
}
