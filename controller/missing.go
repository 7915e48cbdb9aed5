package controller

import (
	"context"
	"fmt"
	"log"

	"github.com/roihas1/playoff_backend/model"
)

func (c *controller) GetMissingBets(ctx context.Context, userID int32) ([]model.MissingBetRecord, error) {
	return c.db.GetMissingBets(ctx, userID)
}

// RecomputeMissingBets diffs every unresolved bet in the tournament against
// the user's guesses and replaces the user's missing-bet cache wholesale.
// Replacing instead of patching keeps the cache right even after it drifted.
func (c *controller) RecomputeMissingBets(ctx context.Context, userID int32) error {
	if _, err := c.db.GetUser(ctx, userID); err != nil {
		return err
	}

	bets, err := c.db.ListUnresolvedBets(ctx)
	if err != nil {
		return fmt.Errorf("error listing unresolved bets: %w", err)
	}

	guesses, err := c.db.GetGuessesForUser(ctx, userID, 0)
	if err != nil {
		return fmt.Errorf("error loading guesses for user %d: %w", userID, err)
	}
	guessed := make(map[int32]bool, len(guesses))
	for _, g := range guesses {
		guessed[g.BetID] = true
	}

	seriesNames, err := c.seriesNamesByID(ctx)
	if err != nil {
		return err
	}

	records := make([]model.MissingBetRecord, 0, len(bets))
	for _, b := range bets {
		if guessed[b.ID] {
			continue
		}
		records = append(records, model.MissingBetRecord{
			UserID:     userID,
			BetID:      b.ID,
			Category:   b.Category,
			SeriesName: seriesNames[b.SeriesID],
			Stage:      b.Stage,
		})
	}

	if err := c.db.ReplaceMissingBets(ctx, userID, records); err != nil {
		return fmt.Errorf("error replacing missing bets for user %d: %w", userID, err)
	}
	return nil
}

// RecomputeAllMissingBets is the administrative bulk variant. Users are
// processed sequentially and one user's failure never aborts the run.
func (c *controller) RecomputeAllMissingBets(ctx context.Context) (*model.BulkReport, error) {
	ids, err := c.db.ListUserIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing users: %w", err)
	}

	report := &model.BulkReport{}
	for _, id := range ids {
		if err := c.RecomputeMissingBets(ctx, id); err != nil {
			log.Printf("error recomputing missing bets for user %d: %v", id, err)
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

func (c *controller) seriesNamesByID(ctx context.Context) (map[int32]string, error) {
	series, err := c.db.ListSeries(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing series: %w", err)
	}

	names := make(map[int32]string, len(series))
	for i := range series {
		names[series[i].ID] = series[i].Name()
	}
	return names, nil
}
