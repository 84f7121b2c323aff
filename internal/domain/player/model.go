package player

import (
	"fmt"
	"strings"
)

// Role is the normalized auction category of a player.
type Role string

const (
	RoleBatsman      Role = "Batsman"
	RoleBowler       Role = "Bowler"
	RoleAllrounder   Role = "Allrounder"
	RoleWicketKeeper Role = "Wicket Keeper"
	RoleUnknown      Role = "Unknown"
)

// DefaultBasePrice is applied when an imported base price is absent or
// unparseable.
const DefaultBasePrice int64 = 500

// DefaultRoleOrder is the presentation order of role groups during a round.
var DefaultRoleOrder = []Role{
	RoleBatsman,
	RoleBowler,
	RoleAllrounder,
	RoleWicketKeeper,
}

// Player is one auctionable entry in the roster. Records are created at
// import time and never mutated afterwards.
type Player struct {
	ID        string
	Name      string
	Role      Role
	Category  string
	BasePrice int64
	ImageURL  string
}

func (p Player) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("player id is required")
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("player name is required")
	}
	if p.BasePrice < 0 {
		return fmt.Errorf("player base price cannot be negative")
	}

	return nil
}

// NormalizeRole collapses spelling, punctuation and case variants to the
// canonical role tokens. Unmapped inputs pass through unchanged so ad-hoc
// categories still form their own group in the sequence.
func NormalizeRole(input string) Role {
	collapsed := strings.Join(strings.Fields(strings.TrimSpace(input)), " ")
	if collapsed == "" {
		return RoleUnknown
	}

	key := strings.ToLower(strings.ReplaceAll(collapsed, "-", " "))
	switch key {
	case "batsman", "batter":
		return RoleBatsman
	case "bowler":
		return RoleBowler
	case "allrounder", "all rounder":
		return RoleAllrounder
	case "wicketkeeper", "wicket keeper", "keeper":
		return RoleWicketKeeper
	}

	return Role(collapsed)
}
