package testutils

import (
	"context"
	"log"
	"time"

	"github.com/itbasis/go-clock"

	"github.com/roihas1/playoff_backend/containers"
	"github.com/roihas1/playoff_backend/db"
	"github.com/roihas1/playoff_backend/model"
)

// FixtureTime is the instant the mock clock starts at. Both fixture series
// tip off after it, so every fixture bet is open at FixtureTime.
var FixtureTime = time.Date(2025, time.May, 20, 12, 0, 0, 0, time.UTC)

// Fixture rows inserted into every TestDB. IDs are filled in on insert.
var (
	Alice = &model.User{Username: "alice", Role: model.RoleUser}
	Bob   = &model.User{Username: "bob", Role: model.RoleUser}

	CelticsKnicks = &model.Series{
		Team1:      "Celtics",
		Team2:      "Knicks",
		Conference: model.ConfEast,
		Round:      model.RoundConfFinals,
		StartTime:  FixtureTime.Add(24 * time.Hour),
	}
	ThunderNuggets = &model.Series{
		Team1:      "Thunder",
		Team2:      "Nuggets",
		Conference: model.ConfWest,
		Round:      model.RoundConfFinals,
		StartTime:  FixtureTime.Add(48 * time.Hour),
	}
)

type TestDB struct {
	container *containers.DBContainer
	DB        db.DB
	Clock     *clock.Mock
}

func NewTestDB() *TestDB {
	container := containers.NewDBContainer()

	clock := clock.NewMock()
	clock.Set(FixtureTime)

	db, err := db.New(context.Background(), container.ConnectionString(), clock)
	if err != nil {
		log.Fatalf("error connecting to db in test container: %v", err)
	}

	if err := InsertTestFixture(db); err != nil {
		log.Fatalf("error populating db in test container: %v", err)
	}

	return &TestDB{
		container: container,
		DB:        db,
		Clock:     clock,
	}
}

func (db *TestDB) Shutdown() {
	db.container.Shutdown()
}

// InsertTestFixture loads the shared users and series. Tests that mutate
// balances or guesses should add their own users instead of reusing these.
func InsertTestFixture(db db.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for _, u := range []*model.User{Alice, Bob} {
		if err := db.AddUser(ctx, u); err != nil {
			return err
		}
	}

	for _, s := range []*model.Series{CelticsKnicks, ThunderNuggets} {
		if err := db.AddSeries(ctx, s); err != nil {
			return err
		}
	}

	return nil
}
