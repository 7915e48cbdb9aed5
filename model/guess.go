package model

import "time"

// Guess is a single user's prediction against a bet. There is at most one
// per (user, bet) pair; resubmitting replaces the value in place.
type Guess struct {
	ID     int32   `json:"id"`
	BetID  int32   `json:"betId"`
	UserID int32   `json:"userId"`
	Value  Outcome `json:"value"`

	// PaidPoints is the ledger of what settlement has already credited this
	// guess on the owner's balance. Settlement applies owed-paid deltas
	// against it, which makes result revisions and retries idempotent.
	PaidPoints int32 `json:"paidPoints"`

	Created time.Time `json:"created"`
	Updated time.Time `json:"updated"`
}

// GuessSubmission is one entry of a bulk guess submission.
type GuessSubmission struct {
	BetID int32   `json:"betId"`
	Value Outcome `json:"value"`
}

// MissingBetRecord is a derived cache row marking an open bet the user has
// not guessed on yet. Regenerable wholesale from the catalog and the guess
// store at any time.
type MissingBetRecord struct {
	ID         int32       `json:"id"`
	UserID     int32       `json:"userId"`
	BetID      int32       `json:"betId"`
	Category   BetCategory `json:"category"`
	SeriesName string      `json:"seriesName,omitempty"`
	Stage      Stage       `json:"stage,omitempty"`
}
