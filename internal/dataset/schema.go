package dataset

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// schemaStatements recreate the three dataset relations. Each table is
// indexed on user_id because every read filters on it; revlogs is also
// ordered by reviewed_at within a user.
var schemaStatements = []string{
	`DROP TABLE IF EXISTS revlogs`,
	`DROP TABLE IF EXISTS cards`,
	`DROP TABLE IF EXISTS decks`,
	`CREATE TABLE revlogs (
		user_id INTEGER NOT NULL,
		card_id INTEGER NOT NULL,
		reviewed_at INTEGER NOT NULL,
		state INTEGER NOT NULL,
		rating INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE cards (
		user_id INTEGER NOT NULL,
		card_id INTEGER NOT NULL,
		note_id INTEGER NOT NULL,
		deck_id INTEGER NOT NULL
	)`,
	`CREATE TABLE decks (
		user_id INTEGER NOT NULL,
		deck_id INTEGER NOT NULL,
		name TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX idx_revlogs_user ON revlogs (user_id, reviewed_at)`,
	`CREATE INDEX idx_cards_user ON cards (user_id)`,
	`CREATE INDEX idx_decks_user ON decks (user_id)`,
}

// CreateSchema drops and recreates the dataset tables.
func CreateSchema(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("db.ExecContext(schema) > %w", err)
		}
	}
	return nil
}
