package controller

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/roihas1/playoff_backend/model"
)

// UpdatePointsForUser recomputes the user's per-series totals from scratch,
// scoring every resolved bet the user guessed on, and merges them into the
// existing rows. Merging instead of delete-and-insert means readers never
// see a half-empty leaderboard.
func (c *controller) UpdatePointsForUser(ctx context.Context, userID int32) error {
	if _, err := c.db.GetUser(ctx, userID); err != nil {
		return err
	}

	guesses, err := c.db.GetGuessesForUser(ctx, userID, 0)
	if err != nil {
		return fmt.Errorf("error loading guesses for user %d: %w", userID, err)
	}

	bets, err := c.db.ListBets(ctx, model.BetScope{})
	if err != nil {
		return fmt.Errorf("error loading bet catalog: %w", err)
	}
	betsByID := make(map[int32]*model.Bet, len(bets))
	seriesLengthBets := make(map[int32]*model.Bet)
	for i := range bets {
		betsByID[bets[i].ID] = &bets[i]
		if bets[i].Category == model.BetBestOf7 && bets[i].SeriesID != 0 {
			seriesLengthBets[bets[i].SeriesID] = &bets[i]
		}
	}
	guessesByBet := make(map[int32]*model.Guess, len(guesses))
	for i := range guesses {
		guessesByBet[guesses[i].BetID] = &guesses[i]
	}

	totals := make(map[int32]int32)
	for i := range guesses {
		g := &guesses[i]
		bet, found := betsByID[g.BetID]
		if !found || !bet.Category.SeriesScoped() || bet.SeriesID == 0 {
			continue
		}

		// Every series the user engaged with gets a row, so a revision
		// down to zero still overwrites the stale total.
		if _, started := totals[bet.SeriesID]; !started {
			totals[bet.SeriesID] = 0
		}
		if !bet.Resolved() {
			continue
		}

		var seriesLength *model.Bet
		var seriesLengthGuess *model.Guess
		if bet.Category == model.BetTeamWin {
			if seriesLength = seriesLengthBets[bet.SeriesID]; seriesLength != nil {
				seriesLengthGuess = guessesByBet[seriesLength.ID]
			}
		}

		totals[bet.SeriesID] += scoreGuess(bet, g, seriesLength, seriesLengthGuess)
	}

	if err := c.db.MergeUserSeriesPoints(ctx, userID, totals); err != nil {
		return fmt.Errorf("error merging series points for user %d: %w", userID, err)
	}
	return nil
}

// UpdateAllUserPoints recomputes every user sequentially so the shared
// database is not hammered. Per-user failures are logged and reported, not
// fatal.
func (c *controller) UpdateAllUserPoints(ctx context.Context) (*model.BulkReport, error) {
	ids, err := c.db.ListUserIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing users: %w", err)
	}

	report := &model.BulkReport{}
	for _, id := range ids {
		if err := c.UpdatePointsForUser(ctx, id); err != nil {
			log.Printf("error updating points for user %d: %v", id, err)
			report.Failures = append(report.Failures, model.UserFailure{
				UserID: id,
				Reason: err.Error(),
			})
			continue
		}
		report.Processed++
	}

	return report, nil
}

func (c *controller) GetPointsForUser(ctx context.Context, userID int32) ([]model.UserSeriesPoints, error) {
	return c.db.GetUserSeriesPoints(ctx, userID)
}

func (c *controller) GetPointsForSeries(ctx context.Context, seriesID int32) ([]model.UserSeriesPoints, error) {
	return c.db.GetSeriesPoints(ctx, seriesID)
}

func (c *controller) GetPointsForUserAndSeries(ctx context.Context, userID, seriesID int32) (*model.UserSeriesPoints, error) {
	return c.db.GetUserSeriesPointsRow(ctx, userID, seriesID)
}

func (c *controller) GetUserStanding(ctx context.Context, userID int32) (*model.UserStanding, error) {
	u, err := c.db.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	seriesPoints, err := c.db.GetUserSeriesPoints(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error loading series points for user %d: %w", userID, err)
	}

	return &model.UserStanding{
		UserID:       u.ID,
		Username:     u.Username,
		TotalPoints:  u.FantasyPoints,
		SeriesPoints: seriesPoints,
	}, nil
}

// RunScheduledPointsUpdates registers the bulk points recompute on a cron
// schedule and blocks until shutdown. Overlapping triggers coalesce: the
// recompute is a full overwrite from source truth, so running it once is the
// same as running it twice.
func (c *controller) RunScheduledPointsUpdates(cronSpec string, shutdown chan bool, wg *sync.WaitGroup) {
	defer wg.Done()

	runner := cron.New()
	_, err := runner.AddFunc(cronSpec, func() {
		if !c.bulkPointsInFlight.CompareAndSwap(false, true) {
			log.Printf("bulk points recompute already running, skipping trigger")
			return
		}
		defer c.bulkPointsInFlight.Store(false)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		start := time.Now()
		report, err := c.UpdateAllUserPoints(ctx)
		if err != nil {
			log.Printf("bulk points recompute failed: %v", err)
			return
		}
		log.Printf("bulk points recompute finished in %v: %d users, %d failures",
			time.Since(start), report.Processed, len(report.Failures))
	})
	if err != nil {
		log.Printf("error scheduling points recompute (%q): %v", cronSpec, err)
		return
	}

	runner.Start()
	<-shutdown
	<-runner.Stop().Done()
}
