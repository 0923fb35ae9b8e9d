package dataset

import (
	"context"
)

// Loader fetches and joins a user's review history.
type Loader struct {
	repo Repository
}

// NewLoader creates a new Loader.
func NewLoader(repo Repository) *Loader {
	return &Loader{repo: repo}
}

// Load fetches the user's reviews, cards and decks, and inner-joins them
// into one record set: reviews to cards on card_id first, then the
// result to decks on deck_id. The join order matters: if a user deleted
// cards or decks, their reviews still exist, and a review only survives
// while its card and that card's deck are both present.
//
// An empty relation or an empty join yields a *NotFoundError; any store
// failure yields a *LoadError. Both mean the user is skipped.
func (l *Loader) Load(ctx context.Context, userID int64) ([]JoinedReview, error) {
	reviews, err := l.repo.FindReviewsByUser(ctx, userID)
	if err != nil {
		return nil, &LoadError{UserID: userID, Err: err}
	}
	if len(reviews) == 0 {
		return nil, &NotFoundError{UserID: userID, Missing: "review"}
	}

	cards, err := l.repo.FindCardsByUser(ctx, userID)
	if err != nil {
		return nil, &LoadError{UserID: userID, Err: err}
	}
	if len(cards) == 0 {
		return nil, &NotFoundError{UserID: userID, Missing: "card"}
	}

	decks, err := l.repo.FindDecksByUser(ctx, userID)
	if err != nil {
		return nil, &LoadError{UserID: userID, Err: err}
	}
	if len(decks) == 0 {
		return nil, &NotFoundError{UserID: userID, Missing: "deck"}
	}

	cardsByID := make(map[int64]Card, len(cards))
	for _, card := range cards {
		cardsByID[card.CardID] = card
	}
	decksByID := make(map[int64]Deck, len(decks))
	for _, deck := range decks {
		decksByID[deck.DeckID] = deck
	}

	joined := make([]JoinedReview, 0, len(reviews))
	for i, review := range reviews {
		card, ok := cardsByID[review.CardID]
		if !ok {
			continue
		}
		deck, ok := decksByID[card.DeckID]
		if !ok {
			continue
		}
		joined = append(joined, JoinedReview{
			// review_th counts every fetched review, including ones the
			// join drops, so the store's timestamp order is preserved.
			ReviewTh:   i + 1,
			CardID:     review.CardID,
			NoteID:     card.NoteID,
			DeckID:     card.DeckID,
			DeckName:   deck.Name,
			ReviewedAt: review.ReviewedAt,
			State:      review.State,
			Rating:     review.Rating,
			DurationMs: review.DurationMs,
		})
	}
	if len(joined) == 0 {
		return nil, &NotFoundError{UserID: userID, Missing: "joined"}
	}

	return joined, nil
}
