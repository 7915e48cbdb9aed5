package model

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

type BetCategory string

const (
	BetBestOf7         BetCategory = "best_of_7"
	BetTeamWin         BetCategory = "team_win"
	BetPlayerMatchup   BetCategory = "player_matchup"
	BetSpontaneous     BetCategory = "spontaneous"
	BetConferenceFinal BetCategory = "conference_final"
	BetChampionTeam    BetCategory = "champion_team"
	BetMVP             BetCategory = "mvp"
	BetUnknown         BetCategory = ""
)

func ParseBetCategory(v string) BetCategory {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "best_of_7", "bestof7", "best-of-7":
		return BetBestOf7
	case "team_win", "teamwin":
		return BetTeamWin
	case "player_matchup", "playermatchup":
		return BetPlayerMatchup
	case "spontaneous":
		return BetSpontaneous
	case "conference_final", "conferencefinal":
		return BetConferenceFinal
	case "champion_team", "championteam", "champion":
		return BetChampionTeam
	case "mvp":
		return BetMVP
	default:
		return BetUnknown
	}
}

// SeriesScoped reports whether bets of this category belong to a single
// series, as opposed to a tournament stage.
func (c BetCategory) SeriesScoped() bool {
	switch c {
	case BetBestOf7, BetTeamWin, BetPlayerMatchup, BetSpontaneous:
		return true
	default:
		return false
	}
}

// Stage identifies the bracket stage a stage-wide bet is keyed by.
type Stage string

const (
	StageEast    Stage = "east"
	StageWest    Stage = "west"
	StageFinals  Stage = "finals"
	StageUnknown Stage = ""
)

func ParseStage(v string) Stage {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "east":
		return StageEast
	case "west":
		return StageWest
	case "finals", "final":
		return StageFinals
	default:
		return StageUnknown
	}
}

const (
	// Matchup outcomes shared by player matchup and spontaneous bets.
	// 1 means the first side finished under the line, 2 over it, and
	// 0 is a push, which no guess can match.
	OutcomePush  int32 = 0
	OutcomeUnder int32 = 1
	OutcomeOver  int32 = 2

	// PushEpsilon is the tolerance inside which a differential result
	// counts as a push.
	PushEpsilon = 1e-4

	// Default stakes used when a bet is created without one.
	DefaultChampionStake int32 = 15
	DefaultMVPStake      int32 = 5
)

// ErrInvalidValue marks a result or guess value outside the legal domain of
// its bet category. Always caller fatal, checked before any state changes.
var ErrInvalidValue = errors.New("value outside the bet category's legal domain")

// Outcome is the value domain shared by a bet's authoritative result and a
// user's guess. Which fields are meaningful depends on the bet category:
// Number for best-of-7 game counts, team-win indexes, and matchup outcomes;
// Team1/Team2 for conference final pairs; Selection for champion and MVP.
type Outcome struct {
	Number    int32  `json:"number,omitempty"`
	Team1     string `json:"team1,omitempty"`
	Team2     string `json:"team2,omitempty"`
	Selection string `json:"selection,omitempty"`
}

// Matches reports whether two outcomes are equal under the category's
// comparison rules. Conference final pairs are unordered and text values
// compare case insensitive.
func (o *Outcome) Matches(other *Outcome, cat BetCategory) bool {
	if o == nil || other == nil {
		return false
	}
	switch cat {
	case BetConferenceFinal:
		return o.PairMatches(other) == 2
	case BetChampionTeam, BetMVP:
		return strings.EqualFold(o.Selection, other.Selection)
	default:
		return o.Number == other.Number
	}
}

// PairMatches returns how many of the two teams the outcomes have in common,
// ignoring order.
func (o *Outcome) PairMatches(other *Outcome) int {
	n := 0
	for _, t := range []string{o.Team1, o.Team2} {
		if strings.EqualFold(t, other.Team1) || strings.EqualFold(t, other.Team2) {
			n++
		}
	}
	return n
}

type Bet struct {
	ID            int32       `json:"id"`
	Category      BetCategory `json:"category"`
	SeriesID      int32       `json:"seriesId,omitempty"` // 0 for stage-wide bets
	Stage         Stage       `json:"stage,omitempty"`    // set for conference final, champion and MVP bets
	FantasyPoints int32       `json:"fantasyPoints"`

	// Player matchup / spontaneous payload.
	Player1      string     `json:"player1,omitempty"`
	Player2      string     `json:"player2,omitempty"`
	Differential float64    `json:"differential,omitempty"`
	PlayerStats  [2]float64 `json:"playerStats,omitempty"`
	PlayerGames  [2]int32   `json:"playerGames,omitempty"`

	// StartTime is the guessing cutoff. The store fills it with the series
	// tipoff when a series-scoped bet carries none of its own. Zero means
	// the bet has no kickoff and stays open until it resolves.
	StartTime time.Time `json:"startTime,omitempty"`

	Result  *Outcome  `json:"result,omitempty"`
	Created time.Time `json:"created"`
}

func (b *Bet) Resolved() bool {
	return b.Result != nil
}

func (b *Bet) HasCutoff() bool {
	return !b.StartTime.IsZero()
}

// Open reports whether the bet still accepts guesses at the given time.
func (b *Bet) Open(now time.Time) bool {
	if b.Resolved() {
		return false
	}
	if !b.HasCutoff() {
		return true
	}
	return b.StartTime.After(now)
}

// MatchupOutcome derives the three way result of a matchup or spontaneous
// bet from the recorded stats. The first side's per game average is compared
// against the second side's average plus the differential line; a gap within
// PushEpsilon is a push.
func (b *Bet) MatchupOutcome() int32 {
	margin := perGame(b.PlayerStats[0], b.PlayerGames[0]) -
		(perGame(b.PlayerStats[1], b.PlayerGames[1]) + b.Differential)
	if math.Abs(margin) <= PushEpsilon {
		return OutcomePush
	}
	if margin < 0 {
		return OutcomeUnder
	}
	return OutcomeOver
}

func perGame(stat float64, games int32) float64 {
	if games <= 1 {
		return stat
	}
	return stat / float64(games)
}

// ValidateResult checks that an authoritative result is inside the legal
// domain for this bet's category.
func (b *Bet) ValidateResult(o *Outcome) error {
	return b.validateValue(o, true)
}

// ValidateGuess checks a user's guess value. Unlike results, matchup guesses
// may not pick the push outcome.
func (b *Bet) ValidateGuess(o *Outcome) error {
	return b.validateValue(o, false)
}

func (b *Bet) validateValue(o *Outcome, allowPush bool) error {
	if o == nil {
		return fmt.Errorf("%w: no value provided", ErrInvalidValue)
	}
	switch b.Category {
	case BetBestOf7:
		if o.Number < 4 || o.Number > 7 {
			return fmt.Errorf("%w: best-of-7 game count must be in [4,7], got %d", ErrInvalidValue, o.Number)
		}
	case BetTeamWin:
		if o.Number != 1 && o.Number != 2 {
			return fmt.Errorf("%w: team index must be 1 or 2, got %d", ErrInvalidValue, o.Number)
		}
	case BetPlayerMatchup, BetSpontaneous:
		if o.Number == OutcomePush {
			if !allowPush {
				return fmt.Errorf("%w: a push cannot be guessed", ErrInvalidValue)
			}
		} else if o.Number != OutcomeUnder && o.Number != OutcomeOver {
			return fmt.Errorf("%w: matchup outcome must be 0, 1 or 2, got %d", ErrInvalidValue, o.Number)
		}
	case BetConferenceFinal:
		if strings.TrimSpace(o.Team1) == "" || strings.TrimSpace(o.Team2) == "" {
			return fmt.Errorf("%w: conference final requires two teams", ErrInvalidValue)
		}
		if strings.EqualFold(o.Team1, o.Team2) {
			return fmt.Errorf("%w: conference final teams must differ", ErrInvalidValue)
		}
	case BetChampionTeam, BetMVP:
		if strings.TrimSpace(o.Selection) == "" {
			return fmt.Errorf("%w: a selection is required", ErrInvalidValue)
		}
	default:
		return fmt.Errorf("%w: unknown bet category %q", ErrInvalidValue, b.Category)
	}
	return nil
}

// BetScope narrows catalog listings. Zero values mean "no filter". When
// OpenAt is set only bets still open at that instant are returned.
type BetScope struct {
	SeriesID   int32
	Stage      Stage
	Round      Round
	Conference Conference
	Team       string
	OpenAt     time.Time
}
