package auction

import (
	"testing"

	"github.com/Devansh171021/swpl/internal/domain/player"
)

func rosterForSequencing() []player.Player {
	return []player.Player{
		{ID: "p1", Name: "Spinner One", Role: player.RoleBowler},
		{ID: "p2", Name: "Opener One", Role: player.RoleBatsman},
		{ID: "p3", Name: "Keeper One", Role: player.RoleWicketKeeper},
		{ID: "p4", Name: "Opener Two", Role: player.RoleBatsman},
		{ID: "p5", Name: "Coach", Role: player.Role("Coach")},
		{ID: "p6", Name: "Finisher", Role: player.RoleAllrounder},
		{ID: "p7", Name: "Mystery", Role: player.Role("Mystery")},
		{ID: "p8", Name: "Spinner Two", Role: player.RoleBowler},
	}
}

func TestSequenceByRole_PriorityThenEncounterOrder(t *testing.T) {
	got := SequenceByRole(rosterForSequencing(), nil)

	wantIDs := []string{"p2", "p4", "p1", "p8", "p6", "p3", "p5", "p7"}
	if len(got) != len(wantIDs) {
		t.Fatalf("unexpected length: got=%d want=%d", len(got), len(wantIDs))
	}
	for i, id := range wantIDs {
		if got[i].ID != id {
			t.Fatalf("position %d: got=%s want=%s", i, got[i].ID, id)
		}
	}
}

func TestSequenceByRole_StableWithinGroup(t *testing.T) {
	in := rosterForSequencing()
	got := SequenceByRole(in, nil)

	// p2 precedes p4 in input and both are batsmen, so the same must hold
	// in output. Same for the two bowlers.
	indexOf := func(id string) int {
		for i, p := range got {
			if p.ID == id {
				return i
			}
		}
		t.Fatalf("player %s missing from output", id)
		return -1
	}

	if indexOf("p2") > indexOf("p4") {
		t.Fatalf("batsman order not preserved")
	}
	if indexOf("p1") > indexOf("p8") {
		t.Fatalf("bowler order not preserved")
	}
}

func TestSequenceByRole_EmptyRoleJoinsUnknownGroup(t *testing.T) {
	in := []player.Player{
		{ID: "a", Name: "A", Role: ""},
		{ID: "b", Name: "B", Role: player.RoleBowler},
	}

	got := SequenceByRole(in, nil)
	if got[0].ID != "b" || got[1].ID != "a" {
		t.Fatalf("expected priority bowler first, got %s then %s", got[0].ID, got[1].ID)
	}
}

func TestSequenceByRole_EmptyInput(t *testing.T) {
	if got := SequenceByRole(nil, nil); len(got) != 0 {
		t.Fatalf("expected empty output, got %d entries", len(got))
	}
}
