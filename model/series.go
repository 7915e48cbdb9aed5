package model

import (
	"fmt"
	"strings"
	"time"
)

type Conference string

const (
	ConfEast    Conference = "east"
	ConfWest    Conference = "west"
	ConfUnknown Conference = ""
)

// ParseConference accepts the short and long forms of a conference name,
// case insensitive. Returns ConfUnknown for anything else.
func ParseConference(v string) Conference {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "east", "eastern":
		return ConfEast
	case "west", "western":
		return ConfWest
	default:
		return ConfUnknown
	}
}

type Round int16

const (
	RoundFirst      Round = 1
	RoundConfSemis  Round = 2
	RoundConfFinals Round = 3
	RoundFinals     Round = 4
)

func (r Round) Valid() bool {
	return r >= RoundFirst && r <= RoundFinals
}

type Series struct {
	ID         int32      `json:"id"`
	Team1      string     `json:"team1"`
	Team2      string     `json:"team2"`
	Conference Conference `json:"conference"`
	Round      Round      `json:"round"`
	StartTime  time.Time  `json:"startTime"`
	Created    time.Time  `json:"created"`
}

// Name is the display form used in denormalized views like missing bets.
func (s *Series) Name() string {
	return fmt.Sprintf("%s vs %s", s.Team1, s.Team2)
}

// TeamIndex returns 1 or 2 for a team playing in this series, or 0 if the
// team is not part of it. Comparison is case insensitive.
func (s *Series) TeamIndex(team string) int32 {
	if strings.EqualFold(s.Team1, team) {
		return 1
	}
	if strings.EqualFold(s.Team2, team) {
		return 2
	}
	return 0
}
