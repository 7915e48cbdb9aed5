package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/roihas1/playoff_backend/model"
)

const guessColumns = `g.id, g.bet_id, g.user_id,
	g.value_number, g.value_team1, g.value_team2, g.value_selection,
	g.paid_points, g.created, g.updated`

// One guess per (bet, user) is a UNIQUE constraint, so a resubmission
// becomes an in-place value update. The paid_points ledger is left alone
// here; only settlement moves it.
const upsertGuessQuery = `INSERT INTO guesses (
		bet_id,
		user_id,
		value_number,
		value_team1,
		value_team2,
		value_selection,
		updated
	) VALUES (
		@betID,
		@userID,
		@number,
		@team1,
		@team2,
		@selection,
		@updated
	)
	ON CONFLICT (bet_id, user_id) DO UPDATE
	SET value_number=EXCLUDED.value_number,
		value_team1=EXCLUDED.value_team1,
		value_team2=EXCLUDED.value_team2,
		value_selection=EXCLUDED.value_selection,
		updated=EXCLUDED.updated
	RETURNING id, paid_points, created, updated`

// A submitted guess supersedes the bet's missing-bet cache entry.
const deleteMissingQuery = `DELETE FROM missing_bets WHERE user_id=@userID AND bet_id=@betID`

func (db *postgresDB) GetGuess(ctx context.Context, id int32) (*model.Guess, error) {
	query := fmt.Sprintf(`SELECT %s FROM guesses AS g WHERE g.id=@id`, guessColumns)

	row := db.pool.QueryRow(ctx, query, pgx.NamedArgs{"id": id})
	g, err := scanGuess(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrGuessNotFound
		}
		return nil, fmt.Errorf("error scanning guess %d: %w", id, err)
	}
	return g, nil
}

func (db *postgresDB) GetGuessesForUser(ctx context.Context, userID, seriesID int32) ([]model.Guess, error) {
	query := fmt.Sprintf(`SELECT %s FROM guesses AS g WHERE g.user_id=@userID ORDER BY g.id`, guessColumns)
	args := pgx.NamedArgs{"userID": userID}

	if seriesID != 0 {
		query = fmt.Sprintf(`SELECT %s FROM guesses AS g
			INNER JOIN bets AS b ON g.bet_id=b.id
			WHERE g.user_id=@userID AND b.series_id=@seriesID
			ORDER BY g.id`, guessColumns)
		args["seriesID"] = seriesID
	}

	return db.queryGuesses(ctx, query, args)
}

func (db *postgresDB) GetGuessesForBet(ctx context.Context, betID int32) ([]model.Guess, error) {
	query := fmt.Sprintf(`SELECT %s FROM guesses AS g WHERE g.bet_id=@betID ORDER BY g.id`, guessColumns)
	return db.queryGuesses(ctx, query, pgx.NamedArgs{"betID": betID})
}

func (db *postgresDB) UpsertGuess(ctx context.Context, g *model.Guess) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := db.upsertGuess(ctx, tx, g); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("error commiting guess: %w", err)
	}
	return nil
}

func (db *postgresDB) UpsertGuesses(ctx context.Context, userID int32, gs []model.Guess) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for i := range gs {
		gs[i].UserID = userID
		if err := db.upsertGuess(ctx, tx, &gs[i]); err != nil {
			return fmt.Errorf("error upserting guess for bet %d: %w", gs[i].BetID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("error commiting guess batch for user %d: %w", userID, err)
	}
	return nil
}

func (db *postgresDB) upsertGuess(ctx context.Context, tx pgx.Tx, g *model.Guess) error {
	args := namedArgsForGuess(g, db.clock.Now().UTC())

	var created, updated pgtype.Timestamptz
	err := tx.QueryRow(ctx, upsertGuessQuery, args).Scan(&g.ID, &g.PaidPoints, &created, &updated)
	if err != nil {
		return fmt.Errorf("error upserting guess (user %d, bet %d): %w", g.UserID, g.BetID, err)
	}
	g.Created = created.Time
	g.Updated = updated.Time

	if _, err := tx.Exec(ctx, deleteMissingQuery, pgx.NamedArgs{
		"userID": g.UserID,
		"betID":  g.BetID,
	}); err != nil {
		return fmt.Errorf("error clearing missing-bet record (user %d, bet %d): %w", g.UserID, g.BetID, err)
	}

	return nil
}

func (db *postgresDB) ApplyGuessPayout(ctx context.Context, guessID, userID, owed, delta int32) error {
	const updateGuess = `UPDATE guesses SET paid_points=@owed, updated=@updated WHERE id=@guessID`
	const updateBalance = `UPDATE users SET fantasy_points = fantasy_points + @delta WHERE id=@userID`

	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, updateGuess, pgx.NamedArgs{
		"guessID": guessID,
		"owed":    owed,
		"updated": pgtype.Timestamptz{
			Time:  db.clock.Now().UTC(),
			Valid: true,
		},
	})
	if err != nil {
		return fmt.Errorf("error updating paid points for guess %d: %w", guessID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrGuessNotFound
	}

	tag, err = tx.Exec(ctx, updateBalance, pgx.NamedArgs{
		"userID": userID,
		"delta":  delta,
	})
	if err != nil {
		return fmt.Errorf("error applying point delta for user %d: %w", userID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("error commiting payout (guess %d): %w", guessID, err)
	}
	return nil
}

func (db *postgresDB) queryGuesses(ctx context.Context, query string, args pgx.NamedArgs) ([]model.Guess, error) {
	rows, err := db.pool.Query(ctx, query, args)
	if err != nil {
		return nil, fmt.Errorf("error querying guesses: %w", err)
	}

	results := make([]model.Guess, 0, 8)
	for rows.Next() {
		g, err := scanGuess(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, *g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error with guess rows: %w", err)
	}

	return results, nil
}

func scanGuess(row pgx.Row) (*model.Guess, error) {
	var g model.Guess
	var team1, team2, selection sql.NullString
	var created, updated pgtype.Timestamptz

	err := row.Scan(
		&g.ID,
		&g.BetID,
		&g.UserID,
		&g.Value.Number,
		&team1,
		&team2,
		&selection,
		&g.PaidPoints,
		&created,
		&updated)
	if err != nil {
		return nil, err
	}

	g.Value.Team1 = valueOrEmpty(team1)
	g.Value.Team2 = valueOrEmpty(team2)
	g.Value.Selection = valueOrEmpty(selection)
	g.Created = created.Time
	g.Updated = updated.Time

	return &g, nil
}

func namedArgsForGuess(g *model.Guess, now time.Time) pgx.NamedArgs {
	return pgx.NamedArgs{
		"betID":  g.BetID,
		"userID": g.UserID,
		"number": g.Value.Number,
		"team1": sql.NullString{
			String: g.Value.Team1,
			Valid:  g.Value.Team1 != "",
		},
		"team2": sql.NullString{
			String: g.Value.Team2,
			Valid:  g.Value.Team2 != "",
		},
		"selection": sql.NullString{
			String: g.Value.Selection,
			Valid:  g.Value.Selection != "",
		},
		"updated": pgtype.Timestamptz{
			Time:  now,
			Valid: true,
		},
	}
}
