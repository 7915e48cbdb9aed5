package mockcontroller

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/roihas1/playoff_backend/model"
)

type C struct {
	mock.Mock
}

func (c *C) ListOpenBets(ctx context.Context, scope model.BetScope) ([]model.Bet, error) {
	args := c.Called(ctx, scope)

	var res []model.Bet
	if args.Get(0) != nil {
		res = args.Get(0).([]model.Bet)
	}

	return res, args.Error(1)
}

func (c *C) GetBet(ctx context.Context, id int32) (*model.Bet, error) {
	args := c.Called(ctx, id)

	var b *model.Bet
	if args.Get(0) != nil {
		b = args.Get(0).(*model.Bet)
	}

	return b, args.Error(1)
}

func (c *C) AddSeries(ctx context.Context, s *model.Series) error {
	args := c.Called(ctx, s)
	return args.Error(0)
}

func (c *C) AddBet(ctx context.Context, b *model.Bet) error {
	args := c.Called(ctx, b)
	return args.Error(0)
}

func (c *C) AddUser(ctx context.Context, username, role string) (*model.User, error) {
	args := c.Called(ctx, username, role)

	var u *model.User
	if args.Get(0) != nil {
		u = args.Get(0).(*model.User)
	}

	return u, args.Error(1)
}

func (c *C) GetUser(ctx context.Context, id int32) (*model.User, error) {
	args := c.Called(ctx, id)

	var u *model.User
	if args.Get(0) != nil {
		u = args.Get(0).(*model.User)
	}

	return u, args.Error(1)
}

func (c *C) SubmitGuess(ctx context.Context, userID, betID int32, value model.Outcome) (*model.Guess, error) {
	args := c.Called(ctx, userID, betID, value)

	var g *model.Guess
	if args.Get(0) != nil {
		g = args.Get(0).(*model.Guess)
	}

	return g, args.Error(1)
}

func (c *C) SubmitManyGuesses(ctx context.Context, userID int32, subs []model.GuessSubmission) error {
	args := c.Called(ctx, userID, subs)
	return args.Error(0)
}

func (c *C) GetGuess(ctx context.Context, id int32) (*model.Guess, error) {
	args := c.Called(ctx, id)

	var g *model.Guess
	if args.Get(0) != nil {
		g = args.Get(0).(*model.Guess)
	}

	return g, args.Error(1)
}

func (c *C) GetGuessesForUser(ctx context.Context, userID, seriesID int32) ([]model.Guess, error) {
	args := c.Called(ctx, userID, seriesID)

	var res []model.Guess
	if args.Get(0) != nil {
		res = args.Get(0).([]model.Guess)
	}

	return res, args.Error(1)
}

func (c *C) ResolveBet(ctx context.Context, betID int32, result model.Outcome) (*model.SettlementReport, error) {
	args := c.Called(ctx, betID, result)

	var r *model.SettlementReport
	if args.Get(0) != nil {
		r = args.Get(0).(*model.SettlementReport)
	}

	return r, args.Error(1)
}

func (c *C) ResolveMatchupBet(ctx context.Context, betID int32, stats [2]float64, games [2]int32) (*model.SettlementReport, error) {
	args := c.Called(ctx, betID, stats, games)

	var r *model.SettlementReport
	if args.Get(0) != nil {
		r = args.Get(0).(*model.SettlementReport)
	}

	return r, args.Error(1)
}

func (c *C) GetMissingBets(ctx context.Context, userID int32) ([]model.MissingBetRecord, error) {
	args := c.Called(ctx, userID)

	var res []model.MissingBetRecord
	if args.Get(0) != nil {
		res = args.Get(0).([]model.MissingBetRecord)
	}

	return res, args.Error(1)
}

func (c *C) RecomputeMissingBets(ctx context.Context, userID int32) error {
	args := c.Called(ctx, userID)
	return args.Error(0)
}

func (c *C) RecomputeAllMissingBets(ctx context.Context) (*model.BulkReport, error) {
	args := c.Called(ctx)

	var r *model.BulkReport
	if args.Get(0) != nil {
		r = args.Get(0).(*model.BulkReport)
	}

	return r, args.Error(1)
}

func (c *C) UpdatePointsForUser(ctx context.Context, userID int32) error {
	args := c.Called(ctx, userID)
	return args.Error(0)
}

func (c *C) UpdateAllUserPoints(ctx context.Context) (*model.BulkReport, error) {
	args := c.Called(ctx)

	var r *model.BulkReport
	if args.Get(0) != nil {
		r = args.Get(0).(*model.BulkReport)
	}

	return r, args.Error(1)
}

func (c *C) GetPointsForUser(ctx context.Context, userID int32) ([]model.UserSeriesPoints, error) {
	args := c.Called(ctx, userID)

	var res []model.UserSeriesPoints
	if args.Get(0) != nil {
		res = args.Get(0).([]model.UserSeriesPoints)
	}

	return res, args.Error(1)
}

func (c *C) GetPointsForSeries(ctx context.Context, seriesID int32) ([]model.UserSeriesPoints, error) {
	args := c.Called(ctx, seriesID)

	var res []model.UserSeriesPoints
	if args.Get(0) != nil {
		res = args.Get(0).([]model.UserSeriesPoints)
	}

	return res, args.Error(1)
}

func (c *C) GetPointsForUserAndSeries(ctx context.Context, userID, seriesID int32) (*model.UserSeriesPoints, error) {
	args := c.Called(ctx, userID, seriesID)

	var p *model.UserSeriesPoints
	if args.Get(0) != nil {
		p = args.Get(0).(*model.UserSeriesPoints)
	}

	return p, args.Error(1)
}

func (c *C) GetUserStanding(ctx context.Context, userID int32) (*model.UserStanding, error) {
	args := c.Called(ctx, userID)

	var s *model.UserStanding
	if args.Get(0) != nil {
		s = args.Get(0).(*model.UserStanding)
	}

	return s, args.Error(1)
}

func (c *C) RunScheduledPointsUpdates(cronSpec string, shutdown chan bool, wg *sync.WaitGroup) {
	c.Called(cronSpec, shutdown, wg)
}
