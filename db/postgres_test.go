package db

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/itbasis/go-clock"

	"github.com/roihas1/playoff_backend/containers"
	"github.com/roihas1/playoff_backend/model"
)

var (
	// A test global db instance to use for all of the tests instead of setting up a new one each time.
	testDB DB

	// a counter to generate unique usernames and team names for each test. To help keep them separated.
	idCtr = int32(0)
)

// TestMain controls the main for the tests and allows for setup and shutdown of the tests
func TestMain(m *testing.M) {
	container := containers.NewDBContainer()

	clock := clock.New()

	defer func() {
		// Catch all panics to make sure the shutdown is successfully run
		if r := recover(); r != nil {
			if container != nil {
				container.Shutdown()
			}
			fmt.Println("panic")
		}
	}()

	var err error
	testDB, err = New(context.Background(), container.ConnectionString(), clock)
	if err != nil {
		fmt.Printf("error connecting to db: %v", err)
		os.Exit(-1)
	}

	code := m.Run()
	container.Shutdown()
	os.Exit(code)
}

func TestDB_userSaveAndLoad(t *testing.T) {
	ctx := context.Background()
	u := newUser(t)

	res, err := testDB.GetUser(ctx, u.ID)
	assertFatalf(t, err == nil, "error getting user: %v", err)

	assertEquals(t, "ID", u.ID, res.ID)
	assertEquals(t, "Username", u.Username, res.Username)
	assertEquals(t, "Role", model.RoleUser, res.Role)
	assertEquals(t, "FantasyPoints", int32(0), res.FantasyPoints)
	if res.Created.IsZero() {
		t.Errorf("expected created time to not be zero")
	}

	res2, err := testDB.GetUser(ctx, 999999)
	assertFatalf(t, err != nil, "should have had an error looking up an unknown user")
	assertEquals(t, "error type", true, errors.Is(err, ErrUserNotFound))
	if res2 != nil {
		t.Errorf("expected res2 to be nil, but was %v", res2)
	}
}

func TestDB_seriesSaveAndLoad(t *testing.T) {
	ctx := context.Background()
	s := newSeries(t, model.ConfWest, model.RoundConfFinals)

	res, err := testDB.GetSeries(ctx, s.ID)
	assertFatalf(t, err == nil, "error getting series: %v", err)

	assertEquals(t, "ID", s.ID, res.ID)
	assertEquals(t, "Team1", s.Team1, res.Team1)
	assertEquals(t, "Team2", s.Team2, res.Team2)
	assertEquals(t, "Conference", model.ConfWest, res.Conference)
	assertEquals(t, "Round", model.RoundConfFinals, res.Round)
	if !res.StartTime.Equal(s.StartTime) {
		t.Errorf("StartTime - expected: '%v', got: '%v'", s.StartTime, res.StartTime)
	}

	_, err = testDB.GetSeries(ctx, 999999)
	assertEquals(t, "error type", true, errors.Is(err, ErrSeriesNotFound))
}

func TestDB_betSaveAndLoad(t *testing.T) {
	ctx := context.Background()
	s := newSeries(t, model.ConfEast, model.RoundConfFinals)

	b := &model.Bet{
		Category:      model.BetPlayerMatchup,
		SeriesID:      s.ID,
		FantasyPoints: 8,
		Player1:       "Jayson Tatum",
		Player2:       "Jalen Brunson",
		Differential:  1.5,
		PlayerStats:   [2]float64{120, 96},
		PlayerGames:   [2]int32{4, 4},
		StartTime:     s.StartTime,
	}
	err := testDB.AddBet(ctx, b)
	assertFatalf(t, err == nil, "error adding bet: %v", err)

	res, err := testDB.GetBet(ctx, b.ID)
	assertFatalf(t, err == nil, "error getting bet: %v", err)

	assertEquals(t, "Category", model.BetPlayerMatchup, res.Category)
	assertEquals(t, "SeriesID", s.ID, res.SeriesID)
	assertEquals(t, "FantasyPoints", int32(8), res.FantasyPoints)
	assertEquals(t, "Player1", "Jayson Tatum", res.Player1)
	assertEquals(t, "Player2", "Jalen Brunson", res.Player2)
	assertEquals(t, "Differential", 1.5, res.Differential)
	assertEquals(t, "PlayerStats", b.PlayerStats, res.PlayerStats)
	assertEquals(t, "PlayerGames", b.PlayerGames, res.PlayerGames)
	assertEquals(t, "Resolved", false, res.Resolved())

	err = testDB.SaveBetStats(ctx, b.ID, [2]float64{131, 96}, [2]int32{5, 4})
	assertFatalf(t, err == nil, "error saving bet stats: %v", err)

	err = testDB.SaveBetResult(ctx, b.ID, &model.Outcome{Number: model.OutcomeOver})
	assertFatalf(t, err == nil, "error saving bet result: %v", err)

	res2, err := testDB.GetBet(ctx, b.ID)
	assertFatalf(t, err == nil, "error getting resolved bet: %v", err)
	assertFatalf(t, res2.Resolved(), "expected bet to be resolved")
	assertEquals(t, "Result.Number", model.OutcomeOver, res2.Result.Number)
	assertEquals(t, "updated PlayerStats", [2]float64{131, 96}, res2.PlayerStats)
	assertEquals(t, "updated PlayerGames", [2]int32{5, 4}, res2.PlayerGames)

	err = testDB.SaveBetResult(ctx, 999999, &model.Outcome{Number: 1})
	assertEquals(t, "error type", true, errors.Is(err, ErrBetNotFound))
	err = testDB.SaveBetStats(ctx, 999999, [2]float64{1, 1}, [2]int32{1, 1})
	assertEquals(t, "stats error type", true, errors.Is(err, ErrBetNotFound))
}

func TestDB_stageWideBet(t *testing.T) {
	ctx := context.Background()

	b := &model.Bet{
		Category:      model.BetChampionTeam,
		Stage:         model.StageFinals,
		FantasyPoints: 15,
	}
	err := testDB.AddBet(ctx, b)
	assertFatalf(t, err == nil, "error adding stage-wide bet: %v", err)

	res, err := testDB.GetBet(ctx, b.ID)
	assertFatalf(t, err == nil, "error getting stage-wide bet: %v", err)

	assertEquals(t, "SeriesID", int32(0), res.SeriesID)
	assertEquals(t, "Stage", model.StageFinals, res.Stage)
	assertEquals(t, "HasCutoff", false, res.HasCutoff())

	err = testDB.SaveBetResult(ctx, b.ID, &model.Outcome{Selection: "Thunder"})
	assertFatalf(t, err == nil, "error saving result: %v", err)

	res2, err := testDB.GetBet(ctx, b.ID)
	assertFatalf(t, err == nil, "error getting bet: %v", err)
	assertEquals(t, "Result.Selection", "Thunder", res2.Result.Selection)
}

func TestDB_listBetsScope(t *testing.T) {
	ctx := context.Background()
	east := newSeries(t, model.ConfEast, model.RoundConfFinals)
	west := newSeries(t, model.ConfWest, model.RoundConfSemis)

	eastBet := newBet(t, east.ID, model.BetBestOf7, 5)
	westBet := newBet(t, west.ID, model.BetTeamWin, 10)

	bets, err := testDB.ListBets(ctx, model.BetScope{SeriesID: east.ID})
	assertFatalf(t, err == nil, "error listing bets by series: %v", err)
	assertEquals(t, "num bets", 1, len(bets))
	assertEquals(t, "bet id", eastBet.ID, bets[0].ID)

	bets, err = testDB.ListBets(ctx, model.BetScope{SeriesID: west.ID, Conference: model.ConfWest})
	assertFatalf(t, err == nil, "error listing bets by conference: %v", err)
	assertEquals(t, "num bets", 1, len(bets))
	assertEquals(t, "bet id", westBet.ID, bets[0].ID)

	bets, err = testDB.ListBets(ctx, model.BetScope{SeriesID: west.ID, Conference: model.ConfEast})
	assertFatalf(t, err == nil, "error listing bets with mismatched filters: %v", err)
	assertEquals(t, "num bets", 0, len(bets))

	bets, err = testDB.ListBets(ctx, model.BetScope{SeriesID: east.ID, Team: east.Team1})
	assertFatalf(t, err == nil, "error listing bets by team: %v", err)
	assertEquals(t, "num bets", 1, len(bets))
}

func TestDB_listBetsOpenFilter(t *testing.T) {
	ctx := context.Background()
	s := newSeries(t, model.ConfEast, model.RoundFirst)

	open := newBet(t, s.ID, model.BetBestOf7, 5)
	resolved := newBet(t, s.ID, model.BetTeamWin, 10)
	err := testDB.SaveBetResult(ctx, resolved.ID, &model.Outcome{Number: 1})
	assertFatalf(t, err == nil, "error resolving bet: %v", err)

	closed := &model.Bet{
		Category:      model.BetSpontaneous,
		SeriesID:      s.ID,
		FantasyPoints: 3,
		Player1:       "Derrick White",
		StartTime:     time.Now().UTC().Add(-time.Hour),
	}
	err = testDB.AddBet(ctx, closed)
	assertFatalf(t, err == nil, "error adding closed bet: %v", err)

	bets, err := testDB.ListBets(ctx, model.BetScope{SeriesID: s.ID, OpenAt: time.Now().UTC()})
	assertFatalf(t, err == nil, "error listing open bets: %v", err)
	assertEquals(t, "num bets", 1, len(bets))
	assertEquals(t, "bet id", open.ID, bets[0].ID)
}

func TestDB_betInheritsSeriesCutoff(t *testing.T) {
	ctx := context.Background()
	s := &model.Series{
		Team1:      fmt.Sprintf("Team-%d", atomic.AddInt32(&idCtr, 1)),
		Team2:      fmt.Sprintf("Team-%d", atomic.AddInt32(&idCtr, 1)),
		Conference: model.ConfWest,
		Round:      model.RoundFirst,
		StartTime:  time.Now().UTC().Truncate(time.Microsecond).Add(-48 * time.Hour),
	}
	err := testDB.AddSeries(ctx, s)
	assertFatalf(t, err == nil, "error adding series: %v", err)

	// No start time of its own, so the series tipoff is the cutoff and the
	// bet reads as closed everywhere a guess could still sneak in.
	b := newBet(t, s.ID, model.BetBestOf7, 5)

	res, err := testDB.GetBet(ctx, b.ID)
	assertFatalf(t, err == nil, "error getting bet: %v", err)
	assertFatalf(t, res.StartTime.Equal(s.StartTime),
		"expected cutoff %v, got %v", s.StartTime, res.StartTime)
	assertEquals(t, "Open", false, res.Open(time.Now().UTC()))

	batch, err := testDB.ListBetsByIDs(ctx, []int32{b.ID})
	assertFatalf(t, err == nil, "error listing bets by id: %v", err)
	assertFatalf(t, len(batch) == 1, "expected 1 bet, got: %d", len(batch))
	assertEquals(t, "batch Open", false, batch[0].Open(time.Now().UTC()))
}

func TestDB_guessUpsert(t *testing.T) {
	ctx := context.Background()
	u := newUser(t)
	s := newSeries(t, model.ConfEast, model.RoundConfFinals)
	b := newBet(t, s.ID, model.BetBestOf7, 5)

	// Seed a missing-bet record; the guess upsert should clear it.
	err := testDB.ReplaceMissingBets(ctx, u.ID, []model.MissingBetRecord{
		{UserID: u.ID, BetID: b.ID, Category: b.Category, SeriesName: s.Name()},
	})
	assertFatalf(t, err == nil, "error seeding missing bets: %v", err)

	g := &model.Guess{BetID: b.ID, UserID: u.ID, Value: model.Outcome{Number: 6}}
	err = testDB.UpsertGuess(ctx, g)
	assertFatalf(t, err == nil, "error inserting guess: %v", err)
	assertFatalf(t, g.ID != 0, "expected guess to get an id")

	missing, err := testDB.GetMissingBets(ctx, u.ID)
	assertFatalf(t, err == nil, "error getting missing bets: %v", err)
	assertEquals(t, "num missing", 0, len(missing))

	// Resubmitting updates the same row in place.
	g2 := &model.Guess{BetID: b.ID, UserID: u.ID, Value: model.Outcome{Number: 7}}
	err = testDB.UpsertGuess(ctx, g2)
	assertFatalf(t, err == nil, "error updating guess: %v", err)
	assertEquals(t, "guess id", g.ID, g2.ID)

	res, err := testDB.GetGuess(ctx, g.ID)
	assertFatalf(t, err == nil, "error getting guess: %v", err)
	assertEquals(t, "value", int32(7), res.Value.Number)

	all, err := testDB.GetGuessesForUser(ctx, u.ID, 0)
	assertFatalf(t, err == nil, "error getting guesses: %v", err)
	assertEquals(t, "num guesses", 1, len(all))

	_, err = testDB.GetGuess(ctx, 999999)
	assertEquals(t, "error type", true, errors.Is(err, ErrGuessNotFound))
}

func TestDB_guessUpsertKeepsLedger(t *testing.T) {
	ctx := context.Background()
	u := newUser(t)
	s := newSeries(t, model.ConfWest, model.RoundConfFinals)
	b := newBet(t, s.ID, model.BetBestOf7, 5)

	g := &model.Guess{BetID: b.ID, UserID: u.ID, Value: model.Outcome{Number: 6}}
	err := testDB.UpsertGuess(ctx, g)
	assertFatalf(t, err == nil, "error inserting guess: %v", err)

	err = testDB.ApplyGuessPayout(ctx, g.ID, u.ID, 5, 5)
	assertFatalf(t, err == nil, "error applying payout: %v", err)

	// A resubmission must not touch what settlement already paid.
	g2 := &model.Guess{BetID: b.ID, UserID: u.ID, Value: model.Outcome{Number: 4}}
	err = testDB.UpsertGuess(ctx, g2)
	assertFatalf(t, err == nil, "error updating guess: %v", err)
	assertEquals(t, "PaidPoints", int32(5), g2.PaidPoints)
}

func TestDB_applyGuessPayout(t *testing.T) {
	ctx := context.Background()
	u := newUser(t)
	s := newSeries(t, model.ConfEast, model.RoundFirst)
	b := newBet(t, s.ID, model.BetTeamWin, 10)

	g := &model.Guess{BetID: b.ID, UserID: u.ID, Value: model.Outcome{Number: 1}}
	err := testDB.UpsertGuess(ctx, g)
	assertFatalf(t, err == nil, "error inserting guess: %v", err)

	err = testDB.ApplyGuessPayout(ctx, g.ID, u.ID, 10, 10)
	assertFatalf(t, err == nil, "error applying payout: %v", err)

	res, err := testDB.GetGuess(ctx, g.ID)
	assertFatalf(t, err == nil, "error getting guess: %v", err)
	assertEquals(t, "PaidPoints", int32(10), res.PaidPoints)

	user, err := testDB.GetUser(ctx, u.ID)
	assertFatalf(t, err == nil, "error getting user: %v", err)
	assertEquals(t, "FantasyPoints", int32(10), user.FantasyPoints)

	// A correction claws the points back.
	err = testDB.ApplyGuessPayout(ctx, g.ID, u.ID, 0, -10)
	assertFatalf(t, err == nil, "error applying correction: %v", err)

	user, err = testDB.GetUser(ctx, u.ID)
	assertFatalf(t, err == nil, "error getting user: %v", err)
	assertEquals(t, "FantasyPoints", int32(0), user.FantasyPoints)

	err = testDB.ApplyGuessPayout(ctx, 999999, u.ID, 5, 5)
	assertEquals(t, "error type", true, errors.Is(err, ErrGuessNotFound))
}

func TestDB_missingBetsReplacedWholesale(t *testing.T) {
	ctx := context.Background()
	u := newUser(t)
	s := newSeries(t, model.ConfEast, model.RoundConfSemis)
	b1 := newBet(t, s.ID, model.BetBestOf7, 5)
	b2 := newBet(t, s.ID, model.BetTeamWin, 10)

	err := testDB.ReplaceMissingBets(ctx, u.ID, []model.MissingBetRecord{
		{UserID: u.ID, BetID: b1.ID, Category: b1.Category, SeriesName: s.Name()},
		{UserID: u.ID, BetID: b2.ID, Category: b2.Category, SeriesName: s.Name()},
	})
	assertFatalf(t, err == nil, "error replacing missing bets: %v", err)

	missing, err := testDB.GetMissingBets(ctx, u.ID)
	assertFatalf(t, err == nil, "error getting missing bets: %v", err)
	assertEquals(t, "num missing", 2, len(missing))
	// best_of_7 sorts before team_win within the same series.
	assertEquals(t, "first record", b1.ID, missing[0].BetID)
	assertEquals(t, "second record", b2.ID, missing[1].BetID)

	err = testDB.ReplaceMissingBets(ctx, u.ID, []model.MissingBetRecord{
		{UserID: u.ID, BetID: b2.ID, Category: b2.Category, SeriesName: s.Name()},
	})
	assertFatalf(t, err == nil, "error replacing missing bets again: %v", err)

	missing, err = testDB.GetMissingBets(ctx, u.ID)
	assertFatalf(t, err == nil, "error getting missing bets: %v", err)
	assertEquals(t, "num missing", 1, len(missing))
	assertEquals(t, "record", b2.ID, missing[0].BetID)
}

func TestDB_userSeriesPoints(t *testing.T) {
	ctx := context.Background()
	u1 := newUser(t)
	u2 := newUser(t)
	s1 := newSeries(t, model.ConfWest, model.RoundFirst)
	s2 := newSeries(t, model.ConfWest, model.RoundFirst)

	err := testDB.MergeUserSeriesPoints(ctx, u1.ID, map[int32]int32{s1.ID: 15, s2.ID: 5})
	assertFatalf(t, err == nil, "error merging points: %v", err)
	err = testDB.MergeUserSeriesPoints(ctx, u2.ID, map[int32]int32{s1.ID: 20})
	assertFatalf(t, err == nil, "error merging points: %v", err)

	points, err := testDB.GetUserSeriesPoints(ctx, u1.ID)
	assertFatalf(t, err == nil, "error getting user points: %v", err)
	assertEquals(t, "num rows", 2, len(points))

	// Merging a subset updates those rows and leaves the rest alone.
	err = testDB.MergeUserSeriesPoints(ctx, u1.ID, map[int32]int32{s1.ID: 17})
	assertFatalf(t, err == nil, "error re-merging points: %v", err)

	row, err := testDB.GetUserSeriesPointsRow(ctx, u1.ID, s1.ID)
	assertFatalf(t, err == nil, "error getting points row: %v", err)
	assertEquals(t, "points", int32(17), row.Points)

	row, err = testDB.GetUserSeriesPointsRow(ctx, u1.ID, s2.ID)
	assertFatalf(t, err == nil, "error getting untouched row: %v", err)
	assertEquals(t, "points", int32(5), row.Points)

	// Leaderboard for the series is ordered by points descending.
	leaderboard, err := testDB.GetSeriesPoints(ctx, s1.ID)
	assertFatalf(t, err == nil, "error getting series points: %v", err)
	assertEquals(t, "num rows", 2, len(leaderboard))
	assertEquals(t, "leader", u2.ID, leaderboard[0].UserID)
	assertEquals(t, "runner up", u1.ID, leaderboard[1].UserID)

	_, err = testDB.GetUserSeriesPointsRow(ctx, u2.ID, s2.ID)
	assertEquals(t, "error type", true, errors.Is(err, ErrPointsNotFound))
}

func TestDB_upsertGuessesBatch(t *testing.T) {
	ctx := context.Background()
	u := newUser(t)
	s := newSeries(t, model.ConfEast, model.RoundConfFinals)
	b1 := newBet(t, s.ID, model.BetBestOf7, 5)
	b2 := newBet(t, s.ID, model.BetTeamWin, 10)

	guesses := []model.Guess{
		{BetID: b1.ID, Value: model.Outcome{Number: 6}},
		{BetID: b2.ID, Value: model.Outcome{Number: 2}},
	}
	err := testDB.UpsertGuesses(ctx, u.ID, guesses)
	assertFatalf(t, err == nil, "error upserting guess batch: %v", err)

	all, err := testDB.GetGuessesForUser(ctx, u.ID, s.ID)
	assertFatalf(t, err == nil, "error getting guesses: %v", err)
	assertEquals(t, "num guesses", 2, len(all))
	assertEquals(t, "first value", int32(6), all[0].Value.Number)
	assertEquals(t, "second value", int32(2), all[1].Value.Number)
}

func newUser(t *testing.T) *model.User {
	t.Helper()
	u := &model.User{
		Username: fmt.Sprintf("user-%d", atomic.AddInt32(&idCtr, 1)),
	}
	if err := testDB.AddUser(context.Background(), u); err != nil {
		t.Fatalf("error adding user: %v", err)
	}
	return u
}

func newSeries(t *testing.T, conf model.Conference, round model.Round) *model.Series {
	t.Helper()
	s := &model.Series{
		Team1:      fmt.Sprintf("Team-%d", atomic.AddInt32(&idCtr, 1)),
		Team2:      fmt.Sprintf("Team-%d", atomic.AddInt32(&idCtr, 1)),
		Conference: conf,
		Round:      round,
		StartTime:  time.Now().UTC().Truncate(time.Microsecond).Add(24 * time.Hour),
	}
	if err := testDB.AddSeries(context.Background(), s); err != nil {
		t.Fatalf("error adding series: %v", err)
	}
	return s
}

func newBet(t *testing.T, seriesID int32, cat model.BetCategory, stake int32) *model.Bet {
	t.Helper()
	b := &model.Bet{
		Category:      cat,
		SeriesID:      seriesID,
		FantasyPoints: stake,
	}
	if err := testDB.AddBet(context.Background(), b); err != nil {
		t.Fatalf("error adding bet: %v", err)
	}
	return b
}

func assertFatalf(t *testing.T, c bool, f string, args ...any) {
	if !c {
		t.Fatalf(f, args...)
	}
}

func assertEquals(t *testing.T, field string, expected, actual any) {
	if expected != actual {
		t.Errorf("%s - expected: '%v', got: '%v'", field, expected, actual)
	}
}
