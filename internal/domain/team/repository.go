package team

import "context"

// Repository is the team ledger as seen from use cases. Debit enforces the
// purse invariant itself and returns a typed rejection instead of trusting
// the caller's pre-validation.
type Repository interface {
	ListTeams(ctx context.Context) ([]Team, error)
	GetByName(ctx context.Context, name string) (Team, bool, error)
	Debit(ctx context.Context, name string, amount int64) (Team, error)
	// Reset replaces the whole ledger; a new auction starts every franchise
	// from its configured purse.
	Reset(ctx context.Context, teams []Team) error
}
