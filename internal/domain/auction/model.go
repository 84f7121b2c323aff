package auction

import (
	"errors"

	"github.com/Devansh171021/swpl/internal/domain/player"
)

// Status is the outcome assigned to a player during a round.
type Status string

const (
	StatusSold   Status = "sold"
	StatusUnsold Status = "unsold"
)

// Phase describes where a session is in its lifecycle. The lottery phase is
// round 3 of the original event format: players still unsold after two full
// rounds wait for a manual draw, no automatic dispositions happen there.
type Phase string

const (
	PhaseActive    Phase = "active"
	PhaseLottery   Phase = "lottery"
	PhaseConcluded Phase = "concluded"
)

var (
	ErrNoPlayerOnBlock = errors.New("no player on the block")
	ErrUnknownStatus   = errors.New("unknown disposition status")
)

// Disposition records one sold/unsold outcome. Immutable after creation.
type Disposition struct {
	Player player.Player
	Round  int
	Status Status
	Team   string
	Amount int64
}
