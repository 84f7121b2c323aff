package transaction

import (
	"context"
	"time"
)

// Record is one persisted disposition. Records are append-only; the history
// is only ever cleared wholesale through ClearAll.
type Record struct {
	Timestamp  time.Time
	PlayerName string
	PlayerRole string
	BasePrice  int64
	Status     string
	Team       string
	Amount     int64
	Round      int
}

// Recorder persists disposition history. Append is best-effort from the
// auction flow's point of view: a failed write never rolls back the
// in-memory disposition.
type Recorder interface {
	Append(ctx context.Context, record Record) error
	ListAll(ctx context.Context) ([]Record, error)
	ClearAll(ctx context.Context) error
}
