package controller

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/itbasis/go-clock"

	"github.com/roihas1/playoff_backend/db"
	"github.com/roihas1/playoff_backend/model"
)

// C encapsulates business logic without worrying about any web layers
type C interface {
	// Read-only bet catalog. ListOpenBets defaults the open cutoff to the
	// current time when scope.OpenAt is zero.
	ListOpenBets(ctx context.Context, scope model.BetScope) ([]model.Bet, error)
	GetBet(ctx context.Context, id int32) (*model.Bet, error)

	// Catalog administration. The admin creates series and their bets
	// before a round starts.
	AddSeries(ctx context.Context, s *model.Series) error
	AddBet(ctx context.Context, b *model.Bet) error

	// AddUser also primes the new user's missing-bet cache.
	AddUser(ctx context.Context, username, role string) (*model.User, error)
	GetUser(ctx context.Context, id int32) (*model.User, error)

	// Guess store. Submitting twice for the same bet updates the guess in
	// place; there is never more than one guess per (user, bet).
	SubmitGuess(ctx context.Context, userID, betID int32, value model.Outcome) (*model.Guess, error)
	SubmitManyGuesses(ctx context.Context, userID int32, subs []model.GuessSubmission) error
	GetGuess(ctx context.Context, id int32) (*model.Guess, error)
	GetGuessesForUser(ctx context.Context, userID, seriesID int32) ([]model.Guess, error)

	// ResolveBet records an authoritative result and settles every guess on
	// the bet. Resolving with a different result re-settles with signed
	// deltas; repeating a resolution is a no-op.
	ResolveBet(ctx context.Context, betID int32, result model.Outcome) (*model.SettlementReport, error)
	// ResolveMatchupBet resolves a matchup or spontaneous bet from the
	// players' final stat lines instead of an explicit outcome. The lines
	// are stored on the bet and the outcome derived against its
	// differential.
	ResolveMatchupBet(ctx context.Context, betID int32, stats [2]float64, games [2]int32) (*model.SettlementReport, error)

	// Missing-bet reconciler.
	GetMissingBets(ctx context.Context, userID int32) ([]model.MissingBetRecord, error)
	RecomputeMissingBets(ctx context.Context, userID int32) error
	RecomputeAllMissingBets(ctx context.Context) (*model.BulkReport, error)

	// Points aggregator.
	UpdatePointsForUser(ctx context.Context, userID int32) error
	UpdateAllUserPoints(ctx context.Context) (*model.BulkReport, error)
	GetPointsForUser(ctx context.Context, userID int32) ([]model.UserSeriesPoints, error)
	GetPointsForSeries(ctx context.Context, seriesID int32) ([]model.UserSeriesPoints, error)
	GetPointsForUserAndSeries(ctx context.Context, userID, seriesID int32) (*model.UserSeriesPoints, error)
	GetUserStanding(ctx context.Context, userID int32) (*model.UserStanding, error)

	RunScheduledPointsUpdates(cronSpec string, shutdown chan bool, wg *sync.WaitGroup)
}

type controller struct {
	clock clock.Clock
	db    db.DB

	// Settlement is serialized per bet so every guess in one resolution
	// observes the same result transition. betLocks holds one mutex per
	// ever-settled bet and is never pruned; the bet catalog of a single
	// playoff run bounds its size.
	mu       sync.Mutex
	betLocks map[int32]*sync.Mutex

	bulkPointsInFlight atomic.Bool
}

func New(clock clock.Clock, db db.DB) (C, error) {
	c := &controller{
		clock:    clock,
		db:       db,
		betLocks: make(map[int32]*sync.Mutex),
	}
	return c, nil
}

func (c *controller) lockBet(betID int32) func() {
	c.mu.Lock()
	l, found := c.betLocks[betID]
	if !found {
		l = &sync.Mutex{}
		c.betLocks[betID] = l
	}
	c.mu.Unlock()

	l.Lock()
	return l.Unlock
}
