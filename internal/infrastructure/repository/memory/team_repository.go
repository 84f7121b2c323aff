package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/Devansh171021/swpl/internal/domain/team"
)

// TeamRepository is the in-memory team ledger. All ledger invariants live
// here: a debit either applies atomically or leaves the team untouched.
// Name lookup is case-insensitive, matching how sold dispositions are
// attributed to franchises.
type TeamRepository struct {
	mu     sync.RWMutex
	teams  []team.Team
	byName map[string]int
}

func teamKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func NewTeamRepository(teams []team.Team) *TeamRepository {
	rows, byName := indexTeams(teams)
	return &TeamRepository{teams: rows, byName: byName}
}

func indexTeams(teams []team.Team) ([]team.Team, map[string]int) {
	byName := make(map[string]int, len(teams))
	rows := make([]team.Team, 0, len(teams))
	for _, item := range teams {
		key := teamKey(item.Name)
		if key == "" {
			continue
		}
		if _, exists := byName[key]; exists {
			continue
		}
		byName[key] = len(rows)
		rows = append(rows, item)
	}

	return rows, byName
}

// Reset drops all purse and roster state and reloads the given franchises.
func (r *TeamRepository) Reset(_ context.Context, teams []team.Team) error {
	rows, byName := indexTeams(teams)

	r.mu.Lock()
	r.teams = rows
	r.byName = byName
	r.mu.Unlock()

	return nil
}

func (r *TeamRepository) ListTeams(_ context.Context) ([]team.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]team.Team, 0, len(r.teams))
	out = append(out, r.teams...)

	return out, nil
}

func (r *TeamRepository) GetByName(_ context.Context, name string) (team.Team, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	idx, ok := r.byName[teamKey(name)]
	if !ok {
		return team.Team{}, false, nil
	}

	return r.teams[idx], true, nil
}

func (r *TeamRepository) Debit(_ context.Context, name string, amount int64) (team.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx, ok := r.byName[teamKey(name)]
	if !ok {
		return team.Team{}, fmt.Errorf("%w: %s", team.ErrUnknownTeam, name)
	}
	if amount < 0 {
		return team.Team{}, fmt.Errorf("%w: %d", team.ErrNegativeAmount, amount)
	}

	current := r.teams[idx]
	if amount > current.Purse {
		return team.Team{}, fmt.Errorf("%w: %s has %d, bid was %d", team.ErrInsufficientPurse, current.Name, current.Purse, amount)
	}

	current.Purse -= amount
	current.PlayerCount++
	r.teams[idx] = current

	return current, nil
}
