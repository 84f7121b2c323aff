package team

import (
	"errors"
	"fmt"
	"strings"
)

// Ledger rejection reasons. Debit is the only mutation on a team; there is no
// credit or rollback path, corrections are an operator-level concern.
var (
	ErrUnknownTeam       = errors.New("unknown team")
	ErrNegativeAmount    = errors.New("debit amount cannot be negative")
	ErrInsufficientPurse = errors.New("insufficient purse")
)

// Team is one franchise bidding in the auction. Purse only ever decreases
// within a session, PlayerCount only ever increases.
type Team struct {
	Name        string
	Purse       int64
	PlayerCount int
	Color       string
	Captain     string
	Mentor      string
}

func (t Team) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("team name is required")
	}
	if t.Purse < 0 {
		return fmt.Errorf("team purse cannot be negative")
	}
	if t.PlayerCount < 0 {
		return fmt.Errorf("team player count cannot be negative")
	}

	return nil
}
