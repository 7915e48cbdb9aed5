package mockdb

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/roihas1/playoff_backend/model"
)

type DB struct {
	mock.Mock
}

func (db *DB) AddUser(ctx context.Context, u *model.User) error {
	args := db.Called(ctx, u)
	return args.Error(0)
}

func (db *DB) GetUser(ctx context.Context, id int32) (*model.User, error) {
	args := db.Called(ctx, id)

	var u *model.User
	if args.Get(0) != nil {
		u = args.Get(0).(*model.User)
	}
	return u, args.Error(1)
}

func (db *DB) ListUserIDs(ctx context.Context) ([]int32, error) {
	args := db.Called(ctx)

	var ids []int32
	if args.Get(0) != nil {
		ids = args.Get(0).([]int32)
	}
	return ids, args.Error(1)
}

func (db *DB) AddSeries(ctx context.Context, s *model.Series) error {
	args := db.Called(ctx, s)
	return args.Error(0)
}

func (db *DB) GetSeries(ctx context.Context, id int32) (*model.Series, error) {
	args := db.Called(ctx, id)

	var s *model.Series
	if args.Get(0) != nil {
		s = args.Get(0).(*model.Series)
	}
	return s, args.Error(1)
}

func (db *DB) ListSeries(ctx context.Context) ([]model.Series, error) {
	args := db.Called(ctx)

	var r []model.Series
	if args.Get(0) != nil {
		r = args.Get(0).([]model.Series)
	}
	return r, args.Error(1)
}

func (db *DB) AddBet(ctx context.Context, b *model.Bet) error {
	args := db.Called(ctx, b)
	return args.Error(0)
}

func (db *DB) GetBet(ctx context.Context, id int32) (*model.Bet, error) {
	args := db.Called(ctx, id)

	var b *model.Bet
	if args.Get(0) != nil {
		b = args.Get(0).(*model.Bet)
	}
	return b, args.Error(1)
}

func (db *DB) ListBets(ctx context.Context, scope model.BetScope) ([]model.Bet, error) {
	args := db.Called(ctx, scope)

	var r []model.Bet
	if args.Get(0) != nil {
		r = args.Get(0).([]model.Bet)
	}
	return r, args.Error(1)
}

func (db *DB) ListBetsByIDs(ctx context.Context, ids []int32) ([]model.Bet, error) {
	args := db.Called(ctx, ids)

	var r []model.Bet
	if args.Get(0) != nil {
		r = args.Get(0).([]model.Bet)
	}
	return r, args.Error(1)
}

func (db *DB) ListUnresolvedBets(ctx context.Context) ([]model.Bet, error) {
	args := db.Called(ctx)

	var r []model.Bet
	if args.Get(0) != nil {
		r = args.Get(0).([]model.Bet)
	}
	return r, args.Error(1)
}

func (db *DB) SaveBetResult(ctx context.Context, betID int32, result *model.Outcome) error {
	args := db.Called(ctx, betID, result)
	return args.Error(0)
}

func (db *DB) SaveBetStats(ctx context.Context, betID int32, stats [2]float64, games [2]int32) error {
	args := db.Called(ctx, betID, stats, games)
	return args.Error(0)
}

func (db *DB) GetGuess(ctx context.Context, id int32) (*model.Guess, error) {
	args := db.Called(ctx, id)

	var g *model.Guess
	if args.Get(0) != nil {
		g = args.Get(0).(*model.Guess)
	}
	return g, args.Error(1)
}

func (db *DB) GetGuessesForUser(ctx context.Context, userID, seriesID int32) ([]model.Guess, error) {
	args := db.Called(ctx, userID, seriesID)

	var r []model.Guess
	if args.Get(0) != nil {
		r = args.Get(0).([]model.Guess)
	}
	return r, args.Error(1)
}

func (db *DB) GetGuessesForBet(ctx context.Context, betID int32) ([]model.Guess, error) {
	args := db.Called(ctx, betID)

	var r []model.Guess
	if args.Get(0) != nil {
		r = args.Get(0).([]model.Guess)
	}
	return r, args.Error(1)
}

func (db *DB) UpsertGuess(ctx context.Context, g *model.Guess) error {
	args := db.Called(ctx, g)
	return args.Error(0)
}

func (db *DB) UpsertGuesses(ctx context.Context, userID int32, gs []model.Guess) error {
	args := db.Called(ctx, userID, gs)
	return args.Error(0)
}

func (db *DB) ApplyGuessPayout(ctx context.Context, guessID, userID, owed, delta int32) error {
	args := db.Called(ctx, guessID, userID, owed, delta)
	return args.Error(0)
}

func (db *DB) ReplaceMissingBets(ctx context.Context, userID int32, records []model.MissingBetRecord) error {
	args := db.Called(ctx, userID, records)
	return args.Error(0)
}

func (db *DB) GetMissingBets(ctx context.Context, userID int32) ([]model.MissingBetRecord, error) {
	args := db.Called(ctx, userID)

	var r []model.MissingBetRecord
	if args.Get(0) != nil {
		r = args.Get(0).([]model.MissingBetRecord)
	}
	return r, args.Error(1)
}

func (db *DB) MergeUserSeriesPoints(ctx context.Context, userID int32, totals map[int32]int32) error {
	args := db.Called(ctx, userID, totals)
	return args.Error(0)
}

func (db *DB) GetUserSeriesPoints(ctx context.Context, userID int32) ([]model.UserSeriesPoints, error) {
	args := db.Called(ctx, userID)

	var r []model.UserSeriesPoints
	if args.Get(0) != nil {
		r = args.Get(0).([]model.UserSeriesPoints)
	}
	return r, args.Error(1)
}

func (db *DB) GetSeriesPoints(ctx context.Context, seriesID int32) ([]model.UserSeriesPoints, error) {
	args := db.Called(ctx, seriesID)

	var r []model.UserSeriesPoints
	if args.Get(0) != nil {
		r = args.Get(0).([]model.UserSeriesPoints)
	}
	return r, args.Error(1)
}

func (db *DB) GetUserSeriesPointsRow(ctx context.Context, userID, seriesID int32) (*model.UserSeriesPoints, error) {
	args := db.Called(ctx, userID, seriesID)

	var r *model.UserSeriesPoints
	if args.Get(0) != nil {
		r = args.Get(0).(*model.UserSeriesPoints)
	}
	return r, args.Error(1)
}
