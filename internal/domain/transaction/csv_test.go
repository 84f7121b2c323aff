package transaction

import (
	"strings"
	"testing"
	"time"
)

func TestExportCSV(t *testing.T) {
	at := time.Date(2026, 3, 14, 18, 30, 0, 0, time.UTC)
	records := []Record{
		{
			Timestamp:  at,
			PlayerName: `Suresh "Sixer" Kumar`,
			PlayerRole: "Batsman",
			BasePrice:  500,
			Status:     "sold",
			Team:       "Mumbai Mavericks",
			Amount:     1200,
			Round:      1,
		},
		{
			Timestamp:  at.Add(time.Minute),
			PlayerName: "Ankit Sharma",
			PlayerRole: "Bowler",
			BasePrice:  500,
			Status:     "unsold",
			Round:      1,
		},
	}

	out := ExportCSV(records)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus two rows, got %d lines", len(lines))
	}
	if lines[0] != "Date, Player Name, Role, Base Price (Points), Status, Team, Amount (Points), Round" {
		t.Fatalf("unexpected header: %s", lines[0])
	}
	if !strings.Contains(lines[1], `"Suresh ""Sixer"" Kumar"`) {
		t.Fatalf("embedded quotes not escaped: %s", lines[1])
	}
	if !strings.HasSuffix(lines[1], ",1200,1") {
		t.Fatalf("unexpected numeric columns: %s", lines[1])
	}
	if !strings.Contains(lines[2], `"unsold","",0,1`) {
		t.Fatalf("unexpected unsold row tail: %s", lines[2])
	}
}

func TestExportCSV_EmptyHistory(t *testing.T) {
	out := ExportCSV(nil)
	if strings.Count(out, "\n") != 1 {
		t.Fatalf("expected header only, got %q", out)
	}
}
