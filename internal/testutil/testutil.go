// Package testutil provides shared test helpers for seeding a local
// dataset store.
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/ankitools/revstats/internal/dataset"
)

// OpenStore opens a temporary file-backed sqlite dataset store with the
// schema created. The file lives under t.TempDir() so concurrent
// connections share one database, unlike :memory:.
func OpenStore(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := sqlx.Open("sqlite", filepath.Join(t.TempDir(), "dataset.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, db.Close())
	})

	require.NoError(t, dataset.CreateSchema(context.Background(), db))
	return db
}

// InsertReview adds one row to the revlogs table.
func InsertReview(t *testing.T, db *sqlx.DB, userID, cardID, reviewedAt int64, state, rating int) {
	t.Helper()
	_, err := db.Exec(
		"INSERT INTO revlogs (user_id, card_id, reviewed_at, state, rating, duration_ms) VALUES (?, ?, ?, ?, ?, ?)",
		userID, cardID, reviewedAt, state, rating, 3000)
	require.NoError(t, err)
}

// InsertCard adds one row to the cards table.
func InsertCard(t *testing.T, db *sqlx.DB, userID, cardID, noteID, deckID int64) {
	t.Helper()
	_, err := db.Exec(
		"INSERT INTO cards (user_id, card_id, note_id, deck_id) VALUES (?, ?, ?, ?)",
		userID, cardID, noteID, deckID)
	require.NoError(t, err)
}

// InsertDeck adds one row to the decks table.
func InsertDeck(t *testing.T, db *sqlx.DB, userID, deckID int64, name string) {
	t.Helper()
	_, err := db.Exec(
		"INSERT INTO decks (user_id, deck_id, name) VALUES (?, ?, ?)",
		userID, deckID, name)
	require.NoError(t, err)
}

// SeedUser creates a minimal consistent dataset for one user: one deck,
// the given cards (note and deck derived) and count reviews per card in
// review state with a passing rating.
func SeedUser(t *testing.T, db *sqlx.DB, userID int64, cardIDs []int64, reviewsPerCard int) {
	t.Helper()

	InsertDeck(t, db, userID, 1, "Default")
	reviewedAt := int64(0)
	for _, cardID := range cardIDs {
		InsertCard(t, db, userID, cardID, cardID, 1)
		for i := 0; i < reviewsPerCard; i++ {
			reviewedAt++
			InsertReview(t, db, userID, cardID, reviewedAt, dataset.StateReview, dataset.RatingGood)
		}
	}
}
