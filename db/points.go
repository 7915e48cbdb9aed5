package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/roihas1/playoff_backend/model"
)

func (db *postgresDB) ReplaceMissingBets(ctx context.Context, userID int32, records []model.MissingBetRecord) error {
	const deleteAll = `DELETE FROM missing_bets WHERE user_id=@userID`
	const insert = `INSERT INTO missing_bets (user_id, bet_id, category, series_name, stage)
		VALUES (@userID, @betID, @category, @seriesName, @stage)`

	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, deleteAll, pgx.NamedArgs{"userID": userID}); err != nil {
		return fmt.Errorf("error clearing missing bets for user %d: %w", userID, err)
	}

	for _, r := range records {
		args := pgx.NamedArgs{
			"userID":     userID,
			"betID":      r.BetID,
			"category":   string(r.Category),
			"seriesName": r.SeriesName,
			"stage":      string(r.Stage),
		}
		if _, err := tx.Exec(ctx, insert, args); err != nil {
			return fmt.Errorf("error inserting missing bet %d for user %d: %w", r.BetID, userID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("error commiting missing bets for user %d: %w", userID, err)
	}
	return nil
}

func (db *postgresDB) GetMissingBets(ctx context.Context, userID int32) ([]model.MissingBetRecord, error) {
	const query = `SELECT id, user_id, bet_id, category, series_name, stage
		FROM missing_bets WHERE user_id=@userID
		ORDER BY series_name, category, bet_id`

	rows, err := db.pool.Query(ctx, query, pgx.NamedArgs{"userID": userID})
	if err != nil {
		return nil, fmt.Errorf("error querying missing bets: %w", err)
	}

	results := make([]model.MissingBetRecord, 0, 16)
	for rows.Next() {
		var r model.MissingBetRecord
		var category, stage string
		if err := rows.Scan(&r.ID, &r.UserID, &r.BetID, &category, &r.SeriesName, &stage); err != nil {
			return nil, fmt.Errorf("error scanning missing bet: %w", err)
		}
		r.Category = model.BetCategory(category)
		r.Stage = model.Stage(stage)
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error with missing bet rows: %w", err)
	}

	return results, nil
}

// MergeUserSeriesPoints upserts each series total in one transaction instead
// of delete-and-insert, so concurrent readers never observe an empty table
// mid-recompute.
func (db *postgresDB) MergeUserSeriesPoints(ctx context.Context, userID int32, totals map[int32]int32) error {
	const upsert = `INSERT INTO user_series_points (user_id, series_id, points, updated)
		VALUES (@userID, @seriesID, @points, @updated)
		ON CONFLICT (user_id, series_id) DO UPDATE
		SET points=EXCLUDED.points, updated=EXCLUDED.updated`

	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	updated := pgtype.Timestamptz{
		Time:  db.clock.Now().UTC(),
		Valid: true,
	}
	for seriesID, points := range totals {
		args := pgx.NamedArgs{
			"userID":   userID,
			"seriesID": seriesID,
			"points":   points,
			"updated":  updated,
		}
		if _, err := tx.Exec(ctx, upsert, args); err != nil {
			return fmt.Errorf("error merging points for user %d, series %d: %w", userID, seriesID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("error commiting series points for user %d: %w", userID, err)
	}
	return nil
}

func (db *postgresDB) GetUserSeriesPoints(ctx context.Context, userID int32) ([]model.UserSeriesPoints, error) {
	const query = `SELECT user_id, series_id, points, updated
		FROM user_series_points WHERE user_id=@userID ORDER BY series_id`
	return db.queryUserSeriesPoints(ctx, query, pgx.NamedArgs{"userID": userID})
}

func (db *postgresDB) GetSeriesPoints(ctx context.Context, seriesID int32) ([]model.UserSeriesPoints, error) {
	const query = `SELECT user_id, series_id, points, updated
		FROM user_series_points WHERE series_id=@seriesID
		ORDER BY points DESC, user_id`
	return db.queryUserSeriesPoints(ctx, query, pgx.NamedArgs{"seriesID": seriesID})
}

func (db *postgresDB) GetUserSeriesPointsRow(ctx context.Context, userID, seriesID int32) (*model.UserSeriesPoints, error) {
	const query = `SELECT user_id, series_id, points, updated
		FROM user_series_points WHERE user_id=@userID AND series_id=@seriesID`

	args := pgx.NamedArgs{
		"userID":   userID,
		"seriesID": seriesID,
	}
	row := db.pool.QueryRow(ctx, query, args)
	usp, err := scanUserSeriesPoints(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPointsNotFound
		}
		return nil, fmt.Errorf("error scanning points for user %d, series %d: %w", userID, seriesID, err)
	}
	return usp, nil
}

func (db *postgresDB) queryUserSeriesPoints(ctx context.Context, query string, args pgx.NamedArgs) ([]model.UserSeriesPoints, error) {
	rows, err := db.pool.Query(ctx, query, args)
	if err != nil {
		return nil, fmt.Errorf("error querying user series points: %w", err)
	}

	results := make([]model.UserSeriesPoints, 0, 16)
	for rows.Next() {
		usp, err := scanUserSeriesPoints(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, *usp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error with user series points rows: %w", err)
	}

	return results, nil
}

func scanUserSeriesPoints(row pgx.Row) (*model.UserSeriesPoints, error) {
	var usp model.UserSeriesPoints
	var updated pgtype.Timestamptz
	if err := row.Scan(&usp.UserID, &usp.SeriesID, &usp.Points, &updated); err != nil {
		return nil, err
	}
	usp.Updated = updated.Time
	return &usp, nil
}
