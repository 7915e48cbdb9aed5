package db

import (
	"context"

	"github.com/roihas1/playoff_backend/model"
)

type DB interface {
	AddUser(ctx context.Context, u *model.User) error
	GetUser(ctx context.Context, id int32) (*model.User, error)
	ListUserIDs(ctx context.Context) ([]int32, error)

	AddSeries(ctx context.Context, s *model.Series) error
	GetSeries(ctx context.Context, id int32) (*model.Series, error)
	ListSeries(ctx context.Context) ([]model.Series, error)

	AddBet(ctx context.Context, b *model.Bet) error
	GetBet(ctx context.Context, id int32) (*model.Bet, error)
	// Bets are ordered by series start date ascending, insertion order
	// breaking ties, so listings are stable for pagination.
	ListBets(ctx context.Context, scope model.BetScope) ([]model.Bet, error)
	ListBetsByIDs(ctx context.Context, ids []int32) ([]model.Bet, error)
	ListUnresolvedBets(ctx context.Context) ([]model.Bet, error)
	SaveBetResult(ctx context.Context, betID int32, result *model.Outcome) error
	SaveBetStats(ctx context.Context, betID int32, stats [2]float64, games [2]int32) error

	GetGuess(ctx context.Context, id int32) (*model.Guess, error)
	// seriesID of 0 returns guesses across the whole tournament.
	GetGuessesForUser(ctx context.Context, userID, seriesID int32) ([]model.Guess, error)
	GetGuessesForBet(ctx context.Context, betID int32) ([]model.Guess, error)
	UpsertGuess(ctx context.Context, g *model.Guess) error
	// UpsertGuesses applies the whole batch in one transaction: either every
	// guess is durably applied or none are.
	UpsertGuesses(ctx context.Context, userID int32, gs []model.Guess) error
	// ApplyGuessPayout records owed as the guess's paid points and adds delta
	// to the user's balance, atomically. The balance update is an in-database
	// increment so concurrent settlements never lose updates.
	ApplyGuessPayout(ctx context.Context, guessID, userID, owed, delta int32) error

	// ReplaceMissingBets swaps the user's missing-bet cache wholesale.
	ReplaceMissingBets(ctx context.Context, userID int32, records []model.MissingBetRecord) error
	GetMissingBets(ctx context.Context, userID int32) ([]model.MissingBetRecord, error)

	// MergeUserSeriesPoints upserts the given per-series totals, leaving rows
	// for series not present in totals untouched.
	MergeUserSeriesPoints(ctx context.Context, userID int32, totals map[int32]int32) error
	GetUserSeriesPoints(ctx context.Context, userID int32) ([]model.UserSeriesPoints, error)
	GetSeriesPoints(ctx context.Context, seriesID int32) ([]model.UserSeriesPoints, error)
	GetUserSeriesPointsRow(ctx context.Context, userID, seriesID int32) (*model.UserSeriesPoints, error)
}
