package model

import "time"

var (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID       int32  `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`

	// FantasyPoints is the running balance. It is mutated exclusively by
	// settlement deltas, never recomputed from scratch.
	FantasyPoints int32 `json:"fantasyPoints"`

	Created time.Time `json:"created"`
}

// UserSeriesPoints is the rolled-up total for one user in one series,
// regenerated by full recompute from resolved bets and guesses.
type UserSeriesPoints struct {
	UserID   int32     `json:"userId"`
	SeriesID int32     `json:"seriesId"`
	Points   int32     `json:"points"`
	Updated  time.Time `json:"updated"`
}

// UserStanding is the tournament-wide view of a user: per-series totals plus
// the running balance, which includes stage-wide bets.
type UserStanding struct {
	UserID       int32              `json:"userId"`
	Username     string             `json:"username"`
	TotalPoints  int32              `json:"totalPoints"`
	SeriesPoints []UserSeriesPoints `json:"seriesPoints"`
}
