package controller

import (
	"context"
	"fmt"
	"log"

	"github.com/roihas1/playoff_backend/model"
)

// ResolveBet records result as the bet's authoritative outcome and settles
// every guess on it. A bet that already has a result can be resolved again
// with a corrected one; the paid-points ledger turns the correction into the
// right signed delta per guess, and re-running the same resolution is a
// no-op.
func (c *controller) ResolveBet(ctx context.Context, betID int32, result model.Outcome) (*model.SettlementReport, error) {
	unlock := c.lockBet(betID)
	defer unlock()

	bet, err := c.db.GetBet(ctx, betID)
	if err != nil {
		return nil, err
	}

	if err := bet.ValidateResult(&result); err != nil {
		return nil, err
	}

	// Persist the result before paying anything out. If payouts partially
	// fail the bet still carries the new result, and re-running the
	// resolution settles exactly the guesses that were missed.
	if err := c.db.SaveBetResult(ctx, betID, &result); err != nil {
		return nil, fmt.Errorf("error saving result for bet %d: %w", betID, err)
	}
	bet.Result = &result

	report := c.settleBet(ctx, bet)

	// A best-of-7 result changes the series-length bonus on the series'
	// team-win bet, so that bet is re-settled too once both are resolved.
	// The re-settlement takes the team-win bet's own lock so it cannot
	// interleave with a direct resolution of that bet. Team-win resolution
	// never takes a best-of-7 lock, so the ordering cannot deadlock.
	if bet.Category == model.BetBestOf7 && bet.SeriesID != 0 {
		if tw := c.findSeriesBet(ctx, bet.SeriesID, model.BetTeamWin); tw != nil && tw.Resolved() {
			unlockTW := c.lockBet(tw.ID)
			twReport := c.settleBet(ctx, tw)
			unlockTW()
			report.Settled += twReport.Settled
			report.Failures = append(report.Failures, twReport.Failures...)
		}
	}

	if report.Failed() {
		log.Printf("settlement for bet %d finished with %d failures", betID, len(report.Failures))
	}
	return report, nil
}

func (c *controller) ResolveMatchupBet(ctx context.Context, betID int32, stats [2]float64, games [2]int32) (*model.SettlementReport, error) {
	bet, err := c.db.GetBet(ctx, betID)
	if err != nil {
		return nil, err
	}
	if bet.Category != model.BetPlayerMatchup && bet.Category != model.BetSpontaneous {
		return nil, fmt.Errorf("stat lines only apply to matchup bets, not %s: %w", bet.Category, model.ErrInvalidValue)
	}

	if err := c.db.SaveBetStats(ctx, betID, stats, games); err != nil {
		return nil, fmt.Errorf("error saving stat lines for bet %d: %w", betID, err)
	}
	bet.PlayerStats = stats
	bet.PlayerGames = games

	return c.ResolveBet(ctx, betID, model.Outcome{Number: bet.MatchupOutcome()})
}

// settleBet pays every guess on an already-resolved bet up to its owed
// amount. Failures are collected per guess so one bad user record cannot
// block settlement for the rest.
func (c *controller) settleBet(ctx context.Context, bet *model.Bet) *model.SettlementReport {
	report := &model.SettlementReport{
		BetID:    bet.ID,
		Category: bet.Category,
	}

	guesses, err := c.db.GetGuessesForBet(ctx, bet.ID)
	if err != nil {
		report.Failures = append(report.Failures, model.SettlementFailure{
			Reason: fmt.Sprintf("error loading guesses: %v", err),
		})
		return report
	}

	var seriesLength *model.Bet
	var seriesLengthGuesses map[int32]*model.Guess
	if bet.Category == model.BetTeamWin && bet.SeriesID != 0 {
		seriesLength = c.findSeriesBet(ctx, bet.SeriesID, model.BetBestOf7)
		if seriesLength != nil {
			seriesLengthGuesses = c.guessesByUser(ctx, seriesLength.ID)
		}
	}

	for i := range guesses {
		g := &guesses[i]

		owed := scoreGuess(bet, g, seriesLength, seriesLengthGuesses[g.UserID])
		delta := owed - g.PaidPoints
		if delta == 0 {
			report.Settled++
			continue
		}

		if err := c.db.ApplyGuessPayout(ctx, g.ID, g.UserID, owed, delta); err != nil {
			log.Printf("error settling guess %d (user %d) on bet %d: %v", g.ID, g.UserID, bet.ID, err)
			report.Failures = append(report.Failures, model.SettlementFailure{
				GuessID: g.ID,
				UserID:  g.UserID,
				Reason:  err.Error(),
			})
			continue
		}
		report.Settled++
	}

	return report
}

func (c *controller) findSeriesBet(ctx context.Context, seriesID int32, cat model.BetCategory) *model.Bet {
	bets, err := c.db.ListBets(ctx, model.BetScope{SeriesID: seriesID})
	if err != nil {
		log.Printf("error listing bets for series %d: %v", seriesID, err)
		return nil
	}
	for i := range bets {
		if bets[i].Category == cat {
			return &bets[i]
		}
	}
	return nil
}

func (c *controller) guessesByUser(ctx context.Context, betID int32) map[int32]*model.Guess {
	guesses, err := c.db.GetGuessesForBet(ctx, betID)
	if err != nil {
		log.Printf("error loading guesses for bet %d: %v", betID, err)
		return nil
	}

	byUser := make(map[int32]*model.Guess, len(guesses))
	for i := range guesses {
		byUser[guesses[i].UserID] = &guesses[i]
	}
	return byUser
}
