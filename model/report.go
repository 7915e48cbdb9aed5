package model

// SettlementFailure records one guess that could not be settled during a bet
// resolution. The settlement can be re-run for the same bet; the ledger makes
// already-settled guesses a no-op.
type SettlementFailure struct {
	GuessID int32  `json:"guessId"`
	UserID  int32  `json:"userId"`
	Reason  string `json:"reason"`
}

// SettlementReport is the outcome of resolving one bet. Per-guess failures
// are collected, never short-circuited, so one bad user record cannot block
// settlement for everyone else.
type SettlementReport struct {
	BetID    int32               `json:"betId"`
	Category BetCategory         `json:"category"`
	Settled  int                 `json:"settled"`
	Failures []SettlementFailure `json:"failures,omitempty"`
}

func (r *SettlementReport) Failed() bool {
	return len(r.Failures) > 0
}

// UserFailure records one user skipped during a bulk maintenance run.
type UserFailure struct {
	UserID int32  `json:"userId"`
	Reason string `json:"reason"`
}

// BulkReport is the outcome of a bulk per-user operation. A failure for one
// user never aborts the run.
type BulkReport struct {
	Processed int           `json:"processed"`
	Failures  []UserFailure `json:"failures,omitempty"`
}

func (r *BulkReport) Failed() bool {
	return len(r.Failures) > 0
}
