package dataset

import "fmt"

// NotFoundError reports that one of the dataset relations has no rows
// for a user, or that the join over them is empty. Users hitting this
// are skipped, not failed.
type NotFoundError struct {
	UserID  int64
	Missing string // "review", "card", "deck" or "joined"
}

func (e *NotFoundError) Error() string {
	if e.Missing == "review" {
		return fmt.Sprintf("no data found for user %d", e.UserID)
	}
	return fmt.Sprintf("no %s data found for user %d", e.Missing, e.UserID)
}

// LoadError reports an unexpected failure while fetching or joining a
// user's dataset rows.
type LoadError struct {
	UserID int64
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load data for user %d: %v", e.UserID, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
