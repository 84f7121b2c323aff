package sheets

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/Devansh171021/swpl/internal/domain/player"
	"github.com/Devansh171021/swpl/internal/domain/team"
	"github.com/Devansh171021/swpl/internal/platform/id"
)

const (
	gvizPrefix = "google.visualization.Query.setResponse("
	gvizSuffix = ");"

	defaultTeamPurse int64 = 100_000_000
)

// Column synonym lists, first header match wins. Matching is
// case-insensitive on trimmed header cells.
var (
	playerNameColumns      = []string{"name", "player", "full name", "player_name"}
	playerRoleColumns      = []string{"role", "position"}
	playerBasePriceColumns = []string{"baseprice", "base price", "price"}
	playerImageColumns     = []string{"image", "imageurl", "photo"}
	playerIDColumns        = []string{"id"}
	playerCategoryColumns  = []string{"category"}

	teamNameColumns    = []string{"name", "team", "team name"}
	teamPurseColumns   = []string{"purse", "budget", "points"}
	teamColorColumns   = []string{"color", "colour"}
	teamCaptainColumns = []string{"captain"}
	teamMentorColumns  = []string{"mentor"}
)

var nonNumericRegex = regexp.MustCompile(`[^0-9.]`)
var driveFileIDRegex = regexp.MustCompile(`/d/([^/?#]+)`)

var rowIDGenerator = id.NewRandomGenerator()

type valuesEnvelope struct {
	Values [][]any `json:"values"`
}

type gvizEnvelope struct {
	Table struct {
		Cols []struct {
			Label string `json:"label"`
			ID    string `json:"id"`
		} `json:"cols"`
		Rows []struct {
			C []*struct {
				V any    `json:"v"`
				F string `json:"f"`
			} `json:"c"`
		} `json:"rows"`
	} `json:"table"`
}

func parseCSVTable(raw []byte) ([][]string, error) {
	reader := csv.NewReader(bytes.NewReader(raw))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv document: %w", err)
	}

	out := make([][]string, 0, len(records))
	for _, record := range records {
		row := make([]string, 0, len(record))
		for _, cell := range record {
			row = append(row, strings.TrimSpace(cell))
		}
		out = append(out, row)
	}
	return out, nil
}

func parseValuesTable(raw []byte) ([][]string, error) {
	var envelope valuesEnvelope
	if err := sonic.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("decode values payload: %w", err)
	}

	out := make([][]string, 0, len(envelope.Values))
	for _, record := range envelope.Values {
		row := make([]string, 0, len(record))
		for _, cell := range record {
			row = append(row, formatCell(cell))
		}
		out = append(out, row)
	}
	return out, nil
}

// parseGvizTable unwraps the JSONP shell of the gviz export and flattens
// its table into header + value rows. Column labels become the header;
// when every label is empty the column ids are used instead.
func parseGvizTable(raw []byte) ([][]string, error) {
	text := strings.TrimSpace(string(raw))
	start := strings.Index(text, gvizPrefix)
	if start < 0 {
		return nil, fmt.Errorf("gviz payload missing %q prefix", gvizPrefix)
	}
	text = text[start+len(gvizPrefix):]
	end := strings.LastIndex(text, gvizSuffix)
	if end < 0 {
		return nil, fmt.Errorf("gviz payload missing %q suffix", gvizSuffix)
	}
	text = text[:end]

	var envelope gvizEnvelope
	if err := sonic.Unmarshal([]byte(text), &envelope); err != nil {
		return nil, fmt.Errorf("decode gviz payload: %w", err)
	}

	header := make([]string, 0, len(envelope.Table.Cols))
	hasLabels := false
	for _, col := range envelope.Table.Cols {
		label := strings.TrimSpace(col.Label)
		if label != "" {
			hasLabels = true
		}
		header = append(header, label)
	}
	if !hasLabels {
		header = header[:0]
		for _, col := range envelope.Table.Cols {
			header = append(header, strings.TrimSpace(col.ID))
		}
	}

	out := make([][]string, 0, len(envelope.Table.Rows)+1)
	out = append(out, header)
	for _, row := range envelope.Table.Rows {
		record := make([]string, 0, len(row.C))
		for _, cell := range row.C {
			if cell == nil {
				record = append(record, "")
				continue
			}
			if value := strings.TrimSpace(cell.F); value != "" && cell.V == nil {
				record = append(record, value)
				continue
			}
			record = append(record, formatCell(cell.V))
		}
		out = append(out, record)
	}
	return out, nil
}

func formatCell(value any) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(typed)
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(typed)
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", typed))
	}
}

func mapRowsToPlayers(rows [][]string) []player.Player {
	if len(rows) < 2 {
		return nil
	}

	header := rows[0]
	nameIdx := resolveColumn(header, playerNameColumns)
	roleIdx := resolveColumn(header, playerRoleColumns)
	priceIdx := resolveColumn(header, playerBasePriceColumns)
	imageIdx := resolveColumn(header, playerImageColumns)
	idIdx := resolveColumn(header, playerIDColumns)
	categoryIdx := resolveColumn(header, playerCategoryColumns)

	out := make([]player.Player, 0, len(rows)-1)
	for _, row := range rows[1:] {
		name := cellAt(row, nameIdx)
		if name == "" {
			continue
		}

		category := cellAt(row, categoryIdx)
		roleRaw := cellAt(row, roleIdx)
		if roleRaw == "" {
			roleRaw = category
		}

		basePrice := parseAmount(cellAt(row, priceIdx))
		if basePrice <= 0 {
			basePrice = player.DefaultBasePrice
		}

		playerID := cellAt(row, idIdx)
		if playerID == "" {
			playerID = newRowID()
		}

		out = append(out, player.Player{
			ID:        playerID,
			Name:      name,
			Role:      player.NormalizeRole(roleRaw),
			Category:  category,
			BasePrice: basePrice,
			ImageURL:  normalizeDriveImageURL(cellAt(row, imageIdx)),
		})
	}
	return out
}

func mapRowsToTeams(rows [][]string) []team.Team {
	if len(rows) < 2 {
		return nil
	}

	header := rows[0]
	nameIdx := resolveColumn(header, teamNameColumns)
	purseIdx := resolveColumn(header, teamPurseColumns)
	colorIdx := resolveColumn(header, teamColorColumns)
	captainIdx := resolveColumn(header, teamCaptainColumns)
	mentorIdx := resolveColumn(header, teamMentorColumns)

	out := make([]team.Team, 0, len(rows)-1)
	for _, row := range rows[1:] {
		name := cellAt(row, nameIdx)
		if name == "" {
			continue
		}

		purse := parseAmount(cellAt(row, purseIdx))
		if purse <= 0 {
			purse = defaultTeamPurse
		}

		out = append(out, team.Team{
			Name:    name,
			Purse:   purse,
			Color:   cellAt(row, colorIdx),
			Captain: cellAt(row, captainIdx),
			Mentor:  cellAt(row, mentorIdx),
		})
	}
	return out
}

func resolveColumn(header []string, candidates []string) int {
	for i, cell := range header {
		normalized := strings.ToLower(strings.TrimSpace(cell))
		for _, candidate := range candidates {
			if normalized == candidate {
				return i
			}
		}
	}
	return -1
}

func cellAt(row []string, index int) string {
	if index < 0 || index >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[index])
}

// parseAmount tolerates currency symbols and thousand separators. Anything
// unparseable maps to zero; callers substitute their own defaults.
func parseAmount(raw string) int64 {
	cleaned := nonNumericRegex.ReplaceAllString(raw, "")
	if cleaned == "" {
		return 0
	}
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return int64(value)
}

// normalizeDriveImageURL rewrites Drive share links to the direct-view
// form. Links with a /d/<FILE_ID>/ path segment or an id query parameter
// both resolve; anything else passes through untouched.
func normalizeDriveImageURL(raw string) string {
	if raw == "" {
		return raw
	}

	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" {
		return raw
	}

	fileID := parsed.Query().Get("id")
	if fileID == "" {
		if match := driveFileIDRegex.FindStringSubmatch(parsed.Path); len(match) == 2 {
			fileID = match[1]
		}
	}
	if fileID == "" {
		return raw
	}

	return fmt.Sprintf("%s://%s/uc?export=view&id=%s", parsed.Scheme, parsed.Host, fileID)
}

func newRowID() string {
	value, err := rowIDGenerator.NewID()
	if err != nil {
		return strconv.FormatInt(time.Now().UnixNano(), 36)
	}
	return value
}
