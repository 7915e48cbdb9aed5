package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/roihas1/playoff_backend/model"
)

// A series-scoped bet without its own start time inherits the series tipoff
// as its guessing cutoff, so every query selecting betColumns joins series.
const betColumns = `b.id, b.category, b.series_id, b.stage, b.fantasy_points,
	b.player1, b.player2, b.differential,
	b.player1_stats, b.player2_stats, b.player1_games, b.player2_games,
	COALESCE(b.start_time, s.start_time) AS start_time, b.resolved,
	b.result_number, b.result_team1, b.result_team2, b.result_selection,
	b.created`

func (db *postgresDB) AddBet(ctx context.Context, b *model.Bet) error {
	const query = `INSERT INTO bets (
		category,
		series_id,
		stage,
		fantasy_points,
		player1,
		player2,
		differential,
		player1_stats,
		player2_stats,
		player1_games,
		player2_games,
		start_time
	) VALUES (
		@category,
		@seriesID,
		@stage,
		@fantasyPoints,
		@player1,
		@player2,
		@differential,
		@player1Stats,
		@player2Stats,
		@player1Games,
		@player2Games,
		@startTime
	) RETURNING id, created`

	args := pgx.NamedArgs{
		"category": string(b.Category),
		"seriesID": sql.NullInt32{
			Int32: b.SeriesID,
			Valid: b.SeriesID != 0,
		},
		"stage":         string(b.Stage),
		"fantasyPoints": b.FantasyPoints,
		"player1":       b.Player1,
		"player2":       b.Player2,
		"differential":  b.Differential,
		"player1Stats":  b.PlayerStats[0],
		"player2Stats":  b.PlayerStats[1],
		"player1Games":  b.PlayerGames[0],
		"player2Games":  b.PlayerGames[1],
		"startTime": pgtype.Timestamptz{
			Time:  b.StartTime,
			Valid: !b.StartTime.IsZero(),
		},
	}

	var created pgtype.Timestamptz
	if err := db.pool.QueryRow(ctx, query, args).Scan(&b.ID, &created); err != nil {
		return fmt.Errorf("error inserting %s bet: %w", b.Category, err)
	}
	b.Created = created.Time
	return nil
}

func (db *postgresDB) GetBet(ctx context.Context, id int32) (*model.Bet, error) {
	query := fmt.Sprintf(`SELECT %s FROM bets AS b
		LEFT JOIN series AS s ON b.series_id=s.id
		WHERE b.id=@id`, betColumns)

	row := db.pool.QueryRow(ctx, query, pgx.NamedArgs{"id": id})
	b, err := scanBet(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBetNotFound
		}
		return nil, fmt.Errorf("error scanning bet %d: %w", id, err)
	}
	return b, nil
}

func (db *postgresDB) ListBets(ctx context.Context, scope model.BetScope) ([]model.Bet, error) {
	conds := make([]string, 0, 4)
	args := pgx.NamedArgs{}

	if scope.SeriesID != 0 {
		conds = append(conds, "b.series_id=@seriesID")
		args["seriesID"] = scope.SeriesID
	}
	if scope.Stage != model.StageUnknown {
		conds = append(conds, "b.stage=@stage")
		args["stage"] = string(scope.Stage)
	}
	if scope.Round != 0 {
		conds = append(conds, "s.round=@round")
		args["round"] = int16(scope.Round)
	}
	if scope.Conference != model.ConfUnknown {
		conds = append(conds, "s.conference=@conference")
		args["conference"] = string(scope.Conference)
	}
	if scope.Team != "" {
		conds = append(conds, "(s.team1 ILIKE @team OR s.team2 ILIKE @team)")
		args["team"] = scope.Team
	}
	if !scope.OpenAt.IsZero() {
		// A bet without a kickoff stays open until it resolves.
		conds = append(conds, `b.resolved=FALSE
			AND (COALESCE(b.start_time, s.start_time) IS NULL
				OR COALESCE(b.start_time, s.start_time) > @openAt)`)
		args["openAt"] = pgtype.Timestamptz{
			Time:  scope.OpenAt,
			Valid: true,
		}
	}

	where := ""
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}

	query := fmt.Sprintf(`SELECT %s FROM bets AS b
		LEFT JOIN series AS s ON b.series_id=s.id
		%s
		ORDER BY COALESCE(s.start_time, b.start_time), b.id`, betColumns, where)

	return db.queryBets(ctx, query, args)
}

func (db *postgresDB) ListBetsByIDs(ctx context.Context, ids []int32) ([]model.Bet, error) {
	query := fmt.Sprintf(`SELECT %s FROM bets AS b
		LEFT JOIN series AS s ON b.series_id=s.id
		WHERE b.id = ANY(@ids) ORDER BY b.id`, betColumns)
	return db.queryBets(ctx, query, pgx.NamedArgs{"ids": ids})
}

func (db *postgresDB) ListUnresolvedBets(ctx context.Context) ([]model.Bet, error) {
	query := fmt.Sprintf(`SELECT %s FROM bets AS b
		LEFT JOIN series AS s ON b.series_id=s.id
		WHERE b.resolved=FALSE
		ORDER BY COALESCE(s.start_time, b.start_time), b.id`, betColumns)
	return db.queryBets(ctx, query, pgx.NamedArgs{})
}

func (db *postgresDB) SaveBetResult(ctx context.Context, betID int32, result *model.Outcome) error {
	const query = `UPDATE bets
		SET resolved=TRUE,
			result_number=@number,
			result_team1=@team1,
			result_team2=@team2,
			result_selection=@selection
		WHERE id=@id`

	args := pgx.NamedArgs{
		"id":     betID,
		"number": result.Number,
		"team1": sql.NullString{
			String: result.Team1,
			Valid:  result.Team1 != "",
		},
		"team2": sql.NullString{
			String: result.Team2,
			Valid:  result.Team2 != "",
		},
		"selection": sql.NullString{
			String: result.Selection,
			Valid:  result.Selection != "",
		},
	}

	tag, err := db.pool.Exec(ctx, query, args)
	if err != nil {
		return fmt.Errorf("error saving result for bet %d: %w", betID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrBetNotFound
	}
	return nil
}

func (db *postgresDB) SaveBetStats(ctx context.Context, betID int32, stats [2]float64, games [2]int32) error {
	const query = `UPDATE bets
		SET player1_stats=@player1Stats,
			player2_stats=@player2Stats,
			player1_games=@player1Games,
			player2_games=@player2Games
		WHERE id=@id`

	args := pgx.NamedArgs{
		"id":           betID,
		"player1Stats": stats[0],
		"player2Stats": stats[1],
		"player1Games": games[0],
		"player2Games": games[1],
	}

	tag, err := db.pool.Exec(ctx, query, args)
	if err != nil {
		return fmt.Errorf("error saving stats for bet %d: %w", betID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrBetNotFound
	}
	return nil
}

func (db *postgresDB) queryBets(ctx context.Context, query string, args pgx.NamedArgs) ([]model.Bet, error) {
	rows, err := db.pool.Query(ctx, query, args)
	if err != nil {
		return nil, fmt.Errorf("error querying bets: %w", err)
	}

	results := make([]model.Bet, 0, 16)
	for rows.Next() {
		b, err := scanBet(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error with bet rows: %w", err)
	}

	return results, nil
}

func scanBet(row pgx.Row) (*model.Bet, error) {
	var b model.Bet
	var category, stage string
	var seriesID sql.NullInt32
	var resolved bool
	var resultNumber sql.NullInt32
	var resultTeam1, resultTeam2, resultSelection sql.NullString
	var startTime, created pgtype.Timestamptz

	err := row.Scan(
		&b.ID,
		&category,
		&seriesID,
		&stage,
		&b.FantasyPoints,
		&b.Player1,
		&b.Player2,
		&b.Differential,
		&b.PlayerStats[0],
		&b.PlayerStats[1],
		&b.PlayerGames[0],
		&b.PlayerGames[1],
		&startTime,
		&resolved,
		&resultNumber,
		&resultTeam1,
		&resultTeam2,
		&resultSelection,
		&created)
	if err != nil {
		return nil, err
	}

	b.Category = model.BetCategory(category)
	b.Stage = model.Stage(stage)
	b.SeriesID = seriesID.Int32
	b.StartTime = startTime.Time
	b.Created = created.Time

	if resolved {
		b.Result = &model.Outcome{
			Number:    resultNumber.Int32,
			Team1:     valueOrEmpty(resultTeam1),
			Team2:     valueOrEmpty(resultTeam2),
			Selection: valueOrEmpty(resultSelection),
		}
	}

	return &b, nil
}

func valueOrEmpty(v sql.NullString) string {
	if v.Valid {
		return v.String
	}
	return ""
}
