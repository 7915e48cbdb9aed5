package controller

import (
	"github.com/roihas1/playoff_backend/model"
)

// Conference final points: an exact pair is worth more when the stage is the
// Finals, and one-of-two correct earns partial credit.
const (
	confFinalExactFinals   int32 = 12
	confFinalExactOther    int32 = 10
	confFinalPartialFinals int32 = 5
	confFinalPartialOther  int32 = 4
)

// scoreGuess returns the points owed to a guess under the bet's current
// result. It is pure: settlement turns owed points into balance deltas by
// diffing against the guess's paid-points ledger.
//
// seriesLength and seriesLengthGuess carry the best-of-7 bet of the same
// series for team-win bets, so the series-length bonus can be evaluated with
// both bets loaded together. Both may be nil.
func scoreGuess(bet *model.Bet, guess *model.Guess, seriesLength *model.Bet, seriesLengthGuess *model.Guess) int32 {
	if !bet.Resolved() {
		return 0
	}

	switch bet.Category {
	case model.BetConferenceFinal:
		return scoreConferenceFinal(bet, guess)
	case model.BetTeamWin:
		pts := exactMatchPoints(bet, guess)
		if pts > 0 {
			pts += seriesLengthBonus(seriesLength, seriesLengthGuess)
		}
		return pts
	default:
		// Best-of-7, player matchup, spontaneous, champion and MVP all pay
		// the stake on an exact match. A push result (0) matches no guess.
		return exactMatchPoints(bet, guess)
	}
}

func exactMatchPoints(bet *model.Bet, guess *model.Guess) int32 {
	if guess.Value.Matches(bet.Result, bet.Category) {
		return bet.FantasyPoints
	}
	return 0
}

// A user correct on the team-win bet who also called the best-of-7 game
// count earns the best-of-7 stake on top of the team-win stake. An
// unresolved best-of-7 contributes nothing; it is re-evaluated when its
// result lands.
func seriesLengthBonus(bo7 *model.Bet, guess *model.Guess) int32 {
	if bo7 == nil || guess == nil || !bo7.Resolved() {
		return 0
	}
	if guess.Value.Matches(bo7.Result, bo7.Category) {
		return bo7.FantasyPoints
	}
	return 0
}

func scoreConferenceFinal(bet *model.Bet, guess *model.Guess) int32 {
	exact, partial := confFinalExactOther, confFinalPartialOther
	if bet.Stage == model.StageFinals {
		exact, partial = confFinalExactFinals, confFinalPartialFinals
	}

	switch guess.Value.PairMatches(bet.Result) {
	case 2:
		return exact
	case 1:
		return partial
	default:
		return 0
	}
}
