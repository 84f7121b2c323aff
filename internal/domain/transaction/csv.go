package transaction

import (
	"strconv"
	"strings"
	"time"
)

var exportHeader = []string{
	"Date",
	"Player Name",
	"Role",
	"Base Price (Points)",
	"Status",
	"Team",
	"Amount (Points)",
	"Round",
}

// ExportCSV renders the accumulated history for download. The header row
// separates columns with ", ", textual values are double-quoted, numeric
// columns are bare.
func ExportCSV(records []Record) string {
	var b strings.Builder
	b.WriteString(strings.Join(exportHeader, ", "))
	b.WriteString("\n")

	for _, r := range records {
		fields := []string{
			quote(r.Timestamp.UTC().Format(time.RFC3339)),
			quote(r.PlayerName),
			quote(r.PlayerRole),
			strconv.FormatInt(r.BasePrice, 10),
			quote(r.Status),
			quote(r.Team),
			strconv.FormatInt(r.Amount, 10),
			strconv.Itoa(r.Round),
		}
		b.WriteString(strings.Join(fields, ","))
		b.WriteString("\n")
	}

	return b.String()
}

func quote(v string) string {
	return `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
}
