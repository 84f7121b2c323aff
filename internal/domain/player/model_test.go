package player

import "testing"

func TestNormalizeRole(t *testing.T) {
	cases := []struct {
		input string
		want  Role
	}{
		{"Batsman", RoleBatsman},
		{"batsman", RoleBatsman},
		{"  BATTER  ", RoleBatsman},
		{"Bowler", RoleBowler},
		{"All Rounder", RoleAllrounder},
		{"all-rounder", RoleAllrounder},
		{"Allrounder", RoleAllrounder},
		{"Wicket Keeper", RoleWicketKeeper},
		{"wicket-keeper", RoleWicketKeeper},
		{"WicketKeeper", RoleWicketKeeper},
		{"keeper", RoleWicketKeeper},
		{"", RoleUnknown},
		{"   ", RoleUnknown},
		{"Coach", Role("Coach")},
		{"  Net   Bowler ", Role("Net Bowler")},
	}

	for _, tc := range cases {
		if got := NormalizeRole(tc.input); got != tc.want {
			t.Fatalf("NormalizeRole(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestPlayerValidate(t *testing.T) {
	valid := Player{ID: "p-1", Name: "Virat Kohli", Role: RoleBatsman, BasePrice: 2000}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid player rejected: %v", err)
	}

	missingName := Player{ID: "p-2", Role: RoleBowler, BasePrice: 100}
	if err := missingName.Validate(); err == nil {
		t.Fatalf("expected error for missing name")
	}

	negativePrice := Player{ID: "p-3", Name: "X", BasePrice: -1}
	if err := negativePrice.Validate(); err == nil {
		t.Fatalf("expected error for negative base price")
	}
}
