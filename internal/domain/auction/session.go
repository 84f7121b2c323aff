package auction

import (
	"fmt"

	"github.com/Devansh171021/swpl/internal/domain/player"
)

// lotteryRound is where automatic rollover stops. Rounds 1 and 2 are full
// auction passes; anything still unsold after round 2 waits in the lottery
// phase for manual resolution.
const lotteryRound = 3

// Session holds one auction run: the ordered queue for the current round, the
// cursor, the round counter, and the per-round outcome accumulators. It is an
// explicit handle passed to every operation; there is no package-level
// session singleton.
type Session struct {
	ID           string
	Round        int
	Players      []player.Player
	CurrentIndex int
	Sold         []Disposition
	Unsold       []Disposition
	Phase        Phase

	roleOrder []player.Role
}

// NewSession starts round 1 over the given queue. The queue is used as
// provided; callers sequence it beforehand. An empty roster concludes
// immediately.
func NewSession(id string, players []player.Player, roleOrder []player.Role) *Session {
	if len(roleOrder) == 0 {
		roleOrder = player.DefaultRoleOrder
	}

	s := &Session{
		ID:        id,
		Round:     1,
		Players:   players,
		Phase:     PhaseActive,
		roleOrder: roleOrder,
	}
	if len(players) == 0 {
		s.Phase = PhaseConcluded
	}

	return s
}

// Current returns the player on the block, or false when the session has no
// active queue position (concluded, lottery, or empty roster).
func (s *Session) Current() (player.Player, bool) {
	if s.Phase != PhaseActive {
		return player.Player{}, false
	}
	if s.CurrentIndex < 0 || s.CurrentIndex >= len(s.Players) {
		return player.Player{}, false
	}

	return s.Players[s.CurrentIndex], true
}

// Dispose records the outcome for the player on the block and advances the
// cursor, rolling the round over when the queue is exhausted. Budget checks
// happen before this call; Dispose only sequences state.
func (s *Session) Dispose(status Status, teamName string, amount int64) (Disposition, error) {
	current, ok := s.Current()
	if !ok {
		return Disposition{}, ErrNoPlayerOnBlock
	}

	d := Disposition{
		Player: current,
		Round:  s.Round,
		Status: status,
	}
	switch status {
	case StatusSold:
		d.Team = teamName
		d.Amount = amount
		s.Sold = append(s.Sold, d)
	case StatusUnsold:
		s.Unsold = append(s.Unsold, d)
	default:
		return Disposition{}, fmt.Errorf("%w: %q", ErrUnknownStatus, status)
	}

	if s.CurrentIndex+1 < len(s.Players) {
		s.CurrentIndex++
	} else {
		s.rollover()
	}

	return d, nil
}

// rollover runs when every player in the queue has a disposition for the
// round. Unsold players are carried into the next round re-sequenced by role,
// matching how round 1 was presented. A clean round ends the auction no
// matter which round it was.
func (s *Session) rollover() {
	if len(s.Unsold) == 0 {
		s.Phase = PhaseConcluded
		return
	}

	if s.Round+1 >= lotteryRound {
		s.Round = lotteryRound
		s.Phase = PhaseLottery
		return
	}

	carried := make([]player.Player, 0, len(s.Unsold))
	for _, d := range s.Unsold {
		carried = append(carried, d.Player)
	}

	s.Players = SequenceByRole(carried, s.roleOrder)
	s.Unsold = nil
	s.CurrentIndex = 0
	s.Round++
}

// Navigate steps the cursor by delta, clamped to the queue bounds. It is a
// review aid and never touches round or disposition state.
func (s *Session) Navigate(delta int) {
	if s.Phase != PhaseActive || len(s.Players) == 0 {
		return
	}

	next := s.CurrentIndex + delta
	if next < 0 {
		next = 0
	}
	if next > len(s.Players)-1 {
		next = len(s.Players) - 1
	}
	s.CurrentIndex = next
}

// Remaining reports how many players in the current round still await a
// disposition, counting the one on the block.
func (s *Session) Remaining() int {
	if s.Phase != PhaseActive {
		return 0
	}

	return len(s.Players) - s.CurrentIndex
}
