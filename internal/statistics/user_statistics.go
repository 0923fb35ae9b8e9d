// Package statistics computes per-user summary metrics from a user's
// joined review history.
package statistics

import (
	"fmt"
	"math"

	"github.com/ankitools/revstats/internal/dataset"
)

// UserStatistics is the persisted result record for one user. Field
// order matches the JSON object layout of the output file.
type UserStatistics struct {
	UserID                int64    `json:"user_id"`
	RevlogsCount          int      `json:"revlogs_count"`
	CardCount             int      `json:"card_count"`
	NoteCount             int      `json:"note_count"`
	AvgReviewCountPerNote float64  `json:"avg_review_count_per_note"`
	AvgReviewCountPerCard float64  `json:"avg_review_count_per_card"`
	RetentionRate         *float64 `json:"retention_rate"`
}

// AggregationError reports an unexpected failure while computing
// statistics for a user. Users hitting this are skipped, not failed.
type AggregationError struct {
	UserID int64
	Err    error
}

func (e *AggregationError) Error() string {
	return fmt.Sprintf("failed to aggregate statistics for user %d: %v", e.UserID, e.Err)
}

func (e *AggregationError) Unwrap() error {
	return e.Err
}

// Aggregate computes the user's summary statistics from the joined
// review set.
//
// The per-note and per-card averages are the mean review count over the
// distinct notes and cards appearing in the set. The retention rate is
// the pass fraction over review-state rows only: rating Again counts as
// a fail, Hard/Good/Easy count as a pass. A user with no review-state
// rows has no retention rate; the field stays nil and serializes as
// JSON null.
func Aggregate(userID int64, joined []dataset.JoinedReview) (UserStatistics, error) {
	if len(joined) == 0 {
		return UserStatistics{}, &AggregationError{UserID: userID, Err: fmt.Errorf("empty joined review set")}
	}

	reviewsPerNote := make(map[int64]int)
	reviewsPerCard := make(map[int64]int)
	var reviewStateRows, passedRows int

	for _, row := range joined {
		reviewsPerNote[row.NoteID]++
		reviewsPerCard[row.CardID]++

		if row.State != dataset.StateReview {
			continue
		}
		switch row.Rating {
		case dataset.RatingAgain:
			reviewStateRows++
		case dataset.RatingHard, dataset.RatingGood, dataset.RatingEasy:
			reviewStateRows++
			passedRows++
		default:
			return UserStatistics{}, &AggregationError{
				UserID: userID,
				Err:    fmt.Errorf("unmappable rating %d for card %d", row.Rating, row.CardID),
			}
		}
	}

	stats := UserStatistics{
		UserID:                userID,
		RevlogsCount:          len(joined),
		CardCount:             len(reviewsPerCard),
		NoteCount:             len(reviewsPerNote),
		AvgReviewCountPerNote: round2(meanCount(reviewsPerNote)),
		AvgReviewCountPerCard: round2(meanCount(reviewsPerCard)),
	}
	if reviewStateRows > 0 {
		rate := round2(float64(passedRows) / float64(reviewStateRows))
		stats.RetentionRate = &rate
	}
	return stats, nil
}

// meanCount is the mean of the per-group review counts.
func meanCount(counts map[int64]int) float64 {
	if len(counts) == 0 {
		return 0
	}
	total := 0
	for _, count := range counts {
		total += count
	}
	return float64(total) / float64(len(counts))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
