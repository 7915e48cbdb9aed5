package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/itbasis/go-clock"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/roihas1/playoff_backend/model"
)

var (
	ErrUserNotFound   error = errors.New("user not found")
	ErrSeriesNotFound error = errors.New("series not found")
	ErrBetNotFound    error = errors.New("bet not found")
	ErrGuessNotFound  error = errors.New("guess not found")
	ErrPointsNotFound error = errors.New("no points recorded for user and series")
)

func New(ctx context.Context, connString string, clock clock.Clock) (DB, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, err
	}

	// Test the connection
	if err := pool.Ping(ctx); err != nil {
		return nil, err
	}

	return &postgresDB{pool: pool, clock: clock}, nil
}

type postgresDB struct {
	pool  *pgxpool.Pool
	clock clock.Clock
}

func (db *postgresDB) AddUser(ctx context.Context, u *model.User) error {
	const query = `INSERT INTO users (username, role, fantasy_points)
		VALUES (@username, @role, @fantasyPoints)
		RETURNING id, created`

	if u.Role == "" {
		u.Role = model.RoleUser
	}
	args := pgx.NamedArgs{
		"username":      u.Username,
		"role":          u.Role,
		"fantasyPoints": u.FantasyPoints,
	}

	var created pgtype.Timestamptz
	if err := db.pool.QueryRow(ctx, query, args).Scan(&u.ID, &created); err != nil {
		return fmt.Errorf("error inserting user (%s): %w", u.Username, err)
	}
	u.Created = created.Time
	return nil
}

func (db *postgresDB) GetUser(ctx context.Context, id int32) (*model.User, error) {
	const query = `SELECT id, username, role, fantasy_points, created
		FROM users WHERE id=@id`

	row := db.pool.QueryRow(ctx, query, pgx.NamedArgs{"id": id})

	var u model.User
	var created pgtype.Timestamptz
	err := row.Scan(&u.ID, &u.Username, &u.Role, &u.FantasyPoints, &created)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("error scanning user %d: %w", id, err)
	}
	u.Created = created.Time

	return &u, nil
}

func (db *postgresDB) ListUserIDs(ctx context.Context) ([]int32, error) {
	const query = `SELECT id FROM users ORDER BY id`

	rows, err := db.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error listing user ids: %w", err)
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (int32, error) {
		var id int32
		err := row.Scan(&id)
		return id, err
	})
}

func (db *postgresDB) AddSeries(ctx context.Context, s *model.Series) error {
	const query = `INSERT INTO series (team1, team2, conference, round, start_time)
		VALUES (@team1, @team2, @conference, @round, @startTime)
		RETURNING id, created`

	args := pgx.NamedArgs{
		"team1":      s.Team1,
		"team2":      s.Team2,
		"conference": string(s.Conference),
		"round":      int16(s.Round),
		"startTime": pgtype.Timestamptz{
			Time:  s.StartTime,
			Valid: true,
		},
	}

	var created pgtype.Timestamptz
	if err := db.pool.QueryRow(ctx, query, args).Scan(&s.ID, &created); err != nil {
		return fmt.Errorf("error inserting series (%s): %w", s.Name(), err)
	}
	s.Created = created.Time
	return nil
}

func (db *postgresDB) GetSeries(ctx context.Context, id int32) (*model.Series, error) {
	const query = `SELECT id, team1, team2, conference, round, start_time, created
		FROM series WHERE id=@id`

	row := db.pool.QueryRow(ctx, query, pgx.NamedArgs{"id": id})
	s, err := scanSeries(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSeriesNotFound
		}
		return nil, fmt.Errorf("error scanning series %d: %w", id, err)
	}
	return s, nil
}

func (db *postgresDB) ListSeries(ctx context.Context) ([]model.Series, error) {
	const query = `SELECT id, team1, team2, conference, round, start_time, created
		FROM series ORDER BY start_time, id`

	rows, err := db.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error listing series: %w", err)
	}

	results := make([]model.Series, 0, 15)
	for rows.Next() {
		s, err := scanSeries(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error with series rows: %w", err)
	}

	return results, nil
}

func scanSeries(row pgx.Row) (*model.Series, error) {
	var s model.Series
	var conference string
	var round int16
	var startTime, created pgtype.Timestamptz
	err := row.Scan(&s.ID, &s.Team1, &s.Team2, &conference, &round, &startTime, &created)
	if err != nil {
		return nil, err
	}

	s.Conference = model.Conference(conference)
	s.Round = model.Round(round)
	s.StartTime = startTime.Time
	s.Created = created.Time

	return &s, nil
}
