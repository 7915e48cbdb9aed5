package controller

import (
	"context"
	"errors"
	"fmt"

	"github.com/roihas1/playoff_backend/db"
	"github.com/roihas1/playoff_backend/model"
)

// ErrBetClosed rejects guesses on bets past their cutoff or already
// resolved.
var ErrBetClosed = errors.New("bet is closed for new guesses")

func (c *controller) SubmitGuess(ctx context.Context, userID, betID int32, value model.Outcome) (*model.Guess, error) {
	bet, err := c.db.GetBet(ctx, betID)
	if err != nil {
		return nil, err
	}

	if err := bet.ValidateGuess(&value); err != nil {
		return nil, err
	}
	if !bet.Open(c.clock.Now().UTC()) {
		return nil, ErrBetClosed
	}

	g := &model.Guess{
		BetID:  betID,
		UserID: userID,
		Value:  value,
	}
	if err := c.db.UpsertGuess(ctx, g); err != nil {
		return nil, fmt.Errorf("error saving guess: %w", err)
	}
	return g, nil
}

// SubmitManyGuesses validates the whole batch before touching state, then
// applies it atomically: either all guesses are durably saved or none are.
// The referenced bets are loaded with one batch query.
func (c *controller) SubmitManyGuesses(ctx context.Context, userID int32, subs []model.GuessSubmission) error {
	if len(subs) == 0 {
		return nil
	}

	ids := make([]int32, 0, len(subs))
	for _, s := range subs {
		ids = append(ids, s.BetID)
	}

	bets, err := c.db.ListBetsByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("error loading bets for guess batch: %w", err)
	}
	betsByID := make(map[int32]*model.Bet, len(bets))
	for i := range bets {
		betsByID[bets[i].ID] = &bets[i]
	}

	now := c.clock.Now().UTC()
	guesses := make([]model.Guess, 0, len(subs))
	for _, s := range subs {
		bet, found := betsByID[s.BetID]
		if !found {
			return fmt.Errorf("bet %d: %w", s.BetID, db.ErrBetNotFound)
		}
		if err := bet.ValidateGuess(&s.Value); err != nil {
			return fmt.Errorf("bet %d: %w", s.BetID, err)
		}
		if !bet.Open(now) {
			return fmt.Errorf("bet %d: %w", s.BetID, ErrBetClosed)
		}

		guesses = append(guesses, model.Guess{
			BetID:  s.BetID,
			UserID: userID,
			Value:  s.Value,
		})
	}

	if err := c.db.UpsertGuesses(ctx, userID, guesses); err != nil {
		return fmt.Errorf("error saving guess batch for user %d: %w", userID, err)
	}
	return nil
}

func (c *controller) GetGuess(ctx context.Context, id int32) (*model.Guess, error) {
	return c.db.GetGuess(ctx, id)
}

func (c *controller) GetGuessesForUser(ctx context.Context, userID, seriesID int32) ([]model.Guess, error) {
	return c.db.GetGuessesForUser(ctx, userID, seriesID)
}
