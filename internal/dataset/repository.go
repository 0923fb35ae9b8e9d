package dataset

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Repository defines per-user filtered reads over the dataset relations.
// The user_id column is never selected: scoping is established by the
// filter and the column is not needed downstream.
type Repository interface {
	FindReviewsByUser(ctx context.Context, userID int64) ([]Review, error)
	FindCardsByUser(ctx context.Context, userID int64) ([]Card, error)
	FindDecksByUser(ctx context.Context, userID int64) ([]Deck, error)
}

// DBRepository implements Repository over a SQL dataset store.
type DBRepository struct {
	db *sqlx.DB
}

// NewDBRepository creates a new DBRepository.
func NewDBRepository(db *sqlx.DB) *DBRepository {
	return &DBRepository{db: db}
}

// FindReviewsByUser returns the user's reviews in timestamp order, so a
// review's position in the result is its 1-based review_th.
func (r *DBRepository) FindReviewsByUser(ctx context.Context, userID int64) ([]Review, error) {
	var reviews []Review
	if err := r.db.SelectContext(ctx, &reviews,
		"SELECT card_id, reviewed_at, state, rating, duration_ms FROM revlogs WHERE user_id = ? ORDER BY reviewed_at",
		userID); err != nil {
		return nil, fmt.Errorf("db.SelectContext(revlogs) > %w", err)
	}
	return reviews, nil
}

// FindCardsByUser returns the user's cards.
func (r *DBRepository) FindCardsByUser(ctx context.Context, userID int64) ([]Card, error) {
	var cards []Card
	if err := r.db.SelectContext(ctx, &cards,
		"SELECT card_id, note_id, deck_id FROM cards WHERE user_id = ?",
		userID); err != nil {
		return nil, fmt.Errorf("db.SelectContext(cards) > %w", err)
	}
	return cards, nil
}

// FindDecksByUser returns the user's decks.
func (r *DBRepository) FindDecksByUser(ctx context.Context, userID int64) ([]Deck, error) {
	var decks []Deck
	if err := r.db.SelectContext(ctx, &decks,
		"SELECT deck_id, name FROM decks WHERE user_id = ?",
		userID); err != nil {
		return nil, fmt.Errorf("db.SelectContext(decks) > %w", err)
	}
	return decks, nil
}
