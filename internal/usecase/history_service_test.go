package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/Devansh171021/swpl/internal/domain/transaction"
	"github.com/Devansh171021/swpl/internal/infrastructure/repository/memory"
	"github.com/Devansh171021/swpl/internal/platform/logging"
)

type failingSyncWriter struct{}

func (failingSyncWriter) Configured() bool { return true }

func (failingSyncWriter) Notify(context.Context, transaction.Record, int) error {
	return fmt.Errorf("endpoint down")
}

func (failingSyncWriter) SyncAll(_ context.Context, records []transaction.Record) (ResyncResult, error) {
	return ResyncResult{Total: len(records), Failed: len(records)},
		fmt.Errorf("resync wrote 0/%d rows", len(records))
}

func seededRecorder(t *testing.T) *memory.TransactionRepository {
	t.Helper()

	recorder := memory.NewTransactionRepository()
	records := []transaction.Record{
		{
			Timestamp:  time.Date(2026, 3, 14, 18, 30, 0, 0, time.UTC),
			PlayerName: "Anil Kumble",
			PlayerRole: "Bowler",
			BasePrice:  500,
			Status:     "sold",
			Team:       "Mumbai Mavericks",
			Amount:     1_200,
			Round:      1,
		},
		{
			Timestamp:  time.Date(2026, 3, 14, 18, 31, 0, 0, time.UTC),
			PlayerName: "Adam Gilchrist",
			PlayerRole: "Wicket Keeper",
			BasePrice:  700,
			Status:     "unsold",
			Round:      1,
		},
	}
	for _, record := range records {
		if err := recorder.Append(context.Background(), record); err != nil {
			t.Fatalf("seed recorder: %v", err)
		}
	}

	return recorder
}

func TestHistoryListAndExport(t *testing.T) {
	t.Parallel()

	svc := NewHistoryService(seededRecorder(t), nil, logging.NewNop())
	ctx := context.Background()

	records, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	csvOut, err := svc.ExportCSV(ctx)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(csvOut), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d lines", len(lines))
	}
	if !strings.Contains(lines[1], "Anil Kumble") || !strings.Contains(lines[1], "1200") {
		t.Fatalf("unexpected first row: %q", lines[1])
	}
}

func TestHistoryClearRequiresConfirmation(t *testing.T) {
	t.Parallel()

	recorder := seededRecorder(t)
	svc := NewHistoryService(recorder, nil, logging.NewNop())
	ctx := context.Background()

	if err := svc.Clear(ctx, false); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput without confirmation, got %v", err)
	}
	if records, _ := recorder.ListAll(ctx); len(records) != 2 {
		t.Fatalf("unconfirmed clear wiped the log, %d records left", len(records))
	}

	if err := svc.Clear(ctx, true); err != nil {
		t.Fatalf("confirmed clear: %v", err)
	}
	if records, _ := recorder.ListAll(ctx); len(records) != 0 {
		t.Fatalf("expected empty log after clear, got %d records", len(records))
	}
}

func TestHistoryResyncRequiresWriter(t *testing.T) {
	t.Parallel()

	svc := NewHistoryService(seededRecorder(t), nil, logging.NewNop())

	if _, err := svc.Resync(context.Background()); !errors.Is(err, ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable without writer, got %v", err)
	}

	svc = NewHistoryService(seededRecorder(t), &stubWriter{configured: false}, logging.NewNop())
	if _, err := svc.Resync(context.Background()); !errors.Is(err, ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable for unconfigured writer, got %v", err)
	}
}

func TestHistoryResync(t *testing.T) {
	t.Parallel()

	writer := &stubWriter{configured: true}
	svc := NewHistoryService(seededRecorder(t), writer, logging.NewNop())

	result, err := svc.Resync(context.Background())
	if err != nil {
		t.Fatalf("resync: %v", err)
	}
	if result.Total != 2 || result.Success != 2 || result.Failed != 0 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if len(writer.notified) != 2 {
		t.Fatalf("expected 2 rows replayed, got %d", len(writer.notified))
	}
}

func TestHistoryResyncSurfacesPartialFailure(t *testing.T) {
	t.Parallel()

	svc := NewHistoryService(seededRecorder(t), failingSyncWriter{}, logging.NewNop())

	result, err := svc.Resync(context.Background())
	if !errors.Is(err, ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable wrap, got %v", err)
	}
	if result.Failed != 2 {
		t.Fatalf("expected failed count surfaced alongside the error, got %+v", result)
	}
}
