package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/Devansh171021/swpl/internal/domain/transaction"
	qb "github.com/Devansh171021/swpl/internal/platform/querybuilder"
)

// TransactionRepository persists the auction transaction log. It is the
// durable counterpart of the in-memory recorder and backs exports and
// resync after a restart.
type TransactionRepository struct {
	db *sqlx.DB
}

func NewTransactionRepository(db *sqlx.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) Append(ctx context.Context, record transaction.Record) error {
	occurredAt := record.Timestamp.UTC()
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	model := transactionInsertModel{
		OccurredAt: occurredAt,
		PlayerName: record.PlayerName,
		PlayerRole: record.PlayerRole,
		BasePrice:  record.BasePrice,
		Status:     record.Status,
		TeamName:   optionalString(record.Team),
		Amount:     record.Amount,
		Round:      record.Round,
	}

	query, args, err := qb.InsertModel("auction_transactions", model, "")
	if err != nil {
		return fmt.Errorf("build insert auction transaction query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert auction transaction player=%s status=%s: %w", record.PlayerName, record.Status, err)
	}

	return nil
}

func (r *TransactionRepository) ListAll(ctx context.Context) ([]transaction.Record, error) {
	query, args, err := qb.Select("*").From("auction_transactions").
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select auction transactions query: %w", err)
	}

	var rows []transactionTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select auction transactions: %w", err)
	}

	out := make([]transaction.Record, 0, len(rows))
	for _, row := range rows {
		out = append(out, transaction.Record{
			Timestamp:  row.OccurredAt,
			PlayerName: row.PlayerName,
			PlayerRole: row.PlayerRole,
			BasePrice:  row.BasePrice,
			Status:     row.Status,
			Team:       nullStringToString(row.TeamName),
			Amount:     row.Amount,
			Round:      row.Round,
		})
	}

	return out, nil
}

func (r *TransactionRepository) ClearAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM auction_transactions"); err != nil {
		return fmt.Errorf("clear auction transactions: %w", err)
	}
	return nil
}
