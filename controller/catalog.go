package controller

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/roihas1/playoff_backend/model"
)

func (c *controller) ListOpenBets(ctx context.Context, scope model.BetScope) ([]model.Bet, error) {
	if scope.OpenAt.IsZero() {
		scope.OpenAt = c.clock.Now().UTC()
	}
	return c.db.ListBets(ctx, scope)
}

func (c *controller) GetBet(ctx context.Context, id int32) (*model.Bet, error) {
	return c.db.GetBet(ctx, id)
}

func (c *controller) AddSeries(ctx context.Context, s *model.Series) error {
	s.Team1 = strings.TrimSpace(s.Team1)
	s.Team2 = strings.TrimSpace(s.Team2)
	if s.Team1 == "" || s.Team2 == "" {
		return errors.New("both teams must be provided")
	}
	if strings.EqualFold(s.Team1, s.Team2) {
		return errors.New("a series needs two different teams")
	}
	if s.Conference == model.ConfUnknown {
		return fmt.Errorf("unknown conference for series %s", s.Name())
	}
	if !s.Round.Valid() {
		return fmt.Errorf("round must be between %d and %d, got %d", model.RoundFirst, model.RoundFinals, s.Round)
	}
	if s.StartTime.IsZero() {
		return errors.New("series start time must be provided")
	}

	return c.db.AddSeries(ctx, s)
}

func (c *controller) AddBet(ctx context.Context, b *model.Bet) error {
	if model.ParseBetCategory(string(b.Category)) == model.BetUnknown {
		return fmt.Errorf("unknown bet category %q", b.Category)
	}

	if b.Category.SeriesScoped() {
		if b.SeriesID == 0 {
			return fmt.Errorf("%s bets belong to a series", b.Category)
		}
		// Fails with not-found before anything is written.
		if _, err := c.db.GetSeries(ctx, b.SeriesID); err != nil {
			return err
		}
	} else {
		if b.SeriesID != 0 {
			return fmt.Errorf("%s bets are stage-wide, not series bets", b.Category)
		}
		if b.Stage == model.StageUnknown {
			return fmt.Errorf("%s bets need a stage", b.Category)
		}
	}

	switch b.Category {
	case model.BetPlayerMatchup:
		if b.Player1 == "" || b.Player2 == "" {
			return errors.New("player matchup bets need both players")
		}
	case model.BetSpontaneous:
		if b.Player1 == "" {
			return errors.New("spontaneous bets need at least one player")
		}
	}

	if b.FantasyPoints == 0 {
		switch b.Category {
		case model.BetChampionTeam:
			b.FantasyPoints = model.DefaultChampionStake
		case model.BetMVP:
			b.FantasyPoints = model.DefaultMVPStake
		}
	}
	if b.FantasyPoints <= 0 {
		return fmt.Errorf("bet stake must be positive, got %d", b.FantasyPoints)
	}

	return c.db.AddBet(ctx, b)
}

func (c *controller) AddUser(ctx context.Context, username, role string) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, errors.New("username must be provided")
	}
	if role == "" {
		role = model.RoleUser
	}

	u := &model.User{
		Username: username,
		Role:     role,
	}
	if err := c.db.AddUser(ctx, u); err != nil {
		return nil, err
	}

	// Prime the missing-bet cache so a fresh user immediately sees every
	// open bet. The cache is regenerable, so a failure here only logs.
	if err := c.RecomputeMissingBets(ctx, u.ID); err != nil {
		log.Printf("error priming missing bets for new user %d: %v", u.ID, err)
	}

	return u, nil
}

func (c *controller) GetUser(ctx context.Context, id int32) (*model.User, error) {
	return c.db.GetUser(ctx, id)
}
