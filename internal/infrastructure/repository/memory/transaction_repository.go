package memory

import (
	"context"
	"sync"

	"github.com/Devansh171021/swpl/internal/domain/transaction"
)

// TransactionRepository is the in-memory transaction recorder, the default
// when no DB_URL is configured. History lives for the process lifetime.
type TransactionRepository struct {
	mu      sync.RWMutex
	records []transaction.Record
}

func NewTransactionRepository() *TransactionRepository {
	return &TransactionRepository{}
}

func (r *TransactionRepository) Append(_ context.Context, record transaction.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.records = append(r.records, record)

	return nil
}

func (r *TransactionRepository) ListAll(_ context.Context) ([]transaction.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]transaction.Record, 0, len(r.records))
	out = append(out, r.records...)

	return out, nil
}

func (r *TransactionRepository) ClearAll(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.records = nil

	return nil
}
