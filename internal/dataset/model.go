// Package dataset provides access to the spaced repetition review dataset:
// the revlogs, cards and decks relations, each filtered per user.
package dataset

// Review states as recorded in the revlogs relation.
const (
	StateNew        = 0
	StateLearning   = 1
	StateReview     = 2
	StateRelearning = 3
)

// Review ratings. Again is a failed recall, everything else is a pass.
const (
	RatingAgain = 1
	RatingHard  = 2
	RatingGood  = 3
	RatingEasy  = 4
)

// Review represents one timestamped study event for one card.
type Review struct {
	CardID     int64 `db:"card_id"`
	ReviewedAt int64 `db:"reviewed_at"`
	State      int   `db:"state"`
	Rating     int   `db:"rating"`
	DurationMs int64 `db:"duration_ms"`
}

// Card represents a single reviewable item generated from a note.
type Card struct {
	CardID int64 `db:"card_id"`
	NoteID int64 `db:"note_id"`
	DeckID int64 `db:"deck_id"`
}

// Deck represents a named collection of cards belonging to a user.
type Deck struct {
	DeckID int64  `db:"deck_id"`
	Name   string `db:"name"`
}

// JoinedReview is one row of the review-card-deck inner join for a user.
// ReviewTh is the 1-based position of the review in the user's full,
// timestamp-ordered review history, assigned before the join. A review
// dropped by the join leaves a gap in the surviving numbering.
type JoinedReview struct {
	ReviewTh   int
	CardID     int64
	NoteID     int64
	DeckID     int64
	DeckName   string
	ReviewedAt int64
	State      int
	Rating     int
	DurationMs int64
}
