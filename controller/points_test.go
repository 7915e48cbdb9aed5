package controller

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/roihas1/playoff_backend/db"
	"github.com/roihas1/playoff_backend/db/mockdb"
	"github.com/roihas1/playoff_backend/model"
)

func TestUpdatePointsForUser(t *testing.T) {
	teamWin := model.Bet{
		ID:            1,
		Category:      model.BetTeamWin,
		SeriesID:      3,
		FantasyPoints: 10,
		Result:        &model.Outcome{Number: 1},
	}
	bestOf7 := model.Bet{
		ID:            2,
		Category:      model.BetBestOf7,
		SeriesID:      3,
		FantasyPoints: 5,
		Result:        &model.Outcome{Number: 6},
	}
	// Still unresolved: contributes nothing but keeps the series row fresh.
	openBo7 := model.Bet{
		ID:            4,
		Category:      model.BetBestOf7,
		SeriesID:      4,
		FantasyPoints: 5,
	}
	// Stage-wide: settles on the balance, never on a series total.
	champion := model.Bet{
		ID:            9,
		Category:      model.BetChampionTeam,
		Stage:         model.StageFinals,
		FantasyPoints: 15,
		Result:        &model.Outcome{Selection: "Thunder"},
	}

	mockDB := &mockdb.DB{}
	mockDB.On("GetUser", mock.Anything, int32(2)).Return(&model.User{ID: 2, Username: "alice"}, nil)
	mockDB.On("GetGuessesForUser", mock.Anything, int32(2), int32(0)).Return([]model.Guess{
		{ID: 10, BetID: 1, UserID: 2, Value: model.Outcome{Number: 1}},
		{ID: 11, BetID: 2, UserID: 2, Value: model.Outcome{Number: 6}},
		{ID: 12, BetID: 4, UserID: 2, Value: model.Outcome{Number: 7}},
		{ID: 13, BetID: 9, UserID: 2, Value: model.Outcome{Selection: "Thunder"}},
	}, nil)
	mockDB.On("ListBets", mock.Anything, model.BetScope{}).
		Return([]model.Bet{teamWin, bestOf7, openBo7, champion}, nil)
	// Series 3: team win pays 10 plus the 5 point series-length bonus, and
	// the best-of-7 guess pays its own 5.
	mockDB.On("MergeUserSeriesPoints", mock.Anything, int32(2), map[int32]int32{
		3: 20,
		4: 0,
	}).Return(nil)

	ctrl := newTestControllerAt(t, mockDB, guessTestTime)
	if err := ctrl.UpdatePointsForUser(context.Background(), 2); err != nil {
		t.Fatalf("error updating points: %v", err)
	}
	mockDB.AssertExpectations(t)
}

func TestUpdatePointsForUser_unknownUser(t *testing.T) {
	mockDB := &mockdb.DB{}
	mockDB.On("GetUser", mock.Anything, int32(99)).Return(nil, db.ErrUserNotFound)

	ctrl := newTestControllerAt(t, mockDB, guessTestTime)
	err := ctrl.UpdatePointsForUser(context.Background(), 99)
	if !errors.Is(err, db.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got: %v", err)
	}
	mockDB.AssertNotCalled(t, "MergeUserSeriesPoints", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateAllUserPoints_isolatesFailures(t *testing.T) {
	mockDB := &mockdb.DB{}
	mockDB.On("ListUserIDs", mock.Anything).Return([]int32{2, 3}, nil)
	mockDB.On("GetUser", mock.Anything, int32(2)).Return(nil, errors.New("connection reset"))
	mockDB.On("GetUser", mock.Anything, int32(3)).Return(&model.User{ID: 3, Username: "bob"}, nil)
	mockDB.On("GetGuessesForUser", mock.Anything, int32(3), int32(0)).Return([]model.Guess{}, nil)
	mockDB.On("ListBets", mock.Anything, model.BetScope{}).Return([]model.Bet{}, nil)
	mockDB.On("MergeUserSeriesPoints", mock.Anything, int32(3), map[int32]int32{}).Return(nil)

	ctrl := newTestControllerAt(t, mockDB, guessTestTime)
	report, err := ctrl.UpdateAllUserPoints(context.Background())
	if err != nil {
		t.Fatalf("error updating points: %v", err)
	}

	if report.Processed != 1 {
		t.Errorf("expected 1 processed user, got %d", report.Processed)
	}
	if len(report.Failures) != 1 || report.Failures[0].UserID != 2 {
		t.Errorf("expected a failure for user 2, got: %v", report.Failures)
	}
	mockDB.AssertExpectations(t)
}

func TestGetUserStanding(t *testing.T) {
	mockDB := &mockdb.DB{}
	mockDB.On("GetUser", mock.Anything, int32(2)).
		Return(&model.User{ID: 2, Username: "alice", FantasyPoints: 37}, nil)
	mockDB.On("GetUserSeriesPoints", mock.Anything, int32(2)).Return([]model.UserSeriesPoints{
		{UserID: 2, SeriesID: 3, Points: 20},
		{UserID: 2, SeriesID: 4, Points: 2},
	}, nil)

	ctrl := newTestControllerAt(t, mockDB, guessTestTime)
	standing, err := ctrl.GetUserStanding(context.Background(), 2)
	if err != nil {
		t.Fatalf("error getting standing: %v", err)
	}

	if standing.Username != "alice" {
		t.Errorf("unexpected username: %s", standing.Username)
	}
	// The total is the running balance, which also carries stage-wide bets.
	if standing.TotalPoints != 37 {
		t.Errorf("expected total of 37, got %d", standing.TotalPoints)
	}
	if len(standing.SeriesPoints) != 2 {
		t.Errorf("expected 2 series rows, got %d", len(standing.SeriesPoints))
	}
}
