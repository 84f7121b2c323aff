package postgres

import (
	"database/sql"
	"time"
)

type transactionTableModel struct {
	ID         int64          `db:"id"`
	OccurredAt time.Time      `db:"occurred_at"`
	PlayerName string         `db:"player_name"`
	PlayerRole string         `db:"player_role"`
	BasePrice  int64          `db:"base_price"`
	Status     string         `db:"status"`
	TeamName   sql.NullString `db:"team_name"`
	Amount     int64          `db:"amount"`
	Round      int            `db:"round"`
}

type transactionInsertModel struct {
	OccurredAt time.Time `db:"occurred_at"`
	PlayerName string    `db:"player_name"`
	PlayerRole string    `db:"player_role"`
	BasePrice  int64     `db:"base_price"`
	Status     string    `db:"status"`
	TeamName   *string   `db:"team_name"`
	Amount     int64     `db:"amount"`
	Round      int       `db:"round"`
}

func optionalString(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
