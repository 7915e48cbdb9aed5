package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/unrolled/render"

	"github.com/roihas1/playoff_backend/controller"
	"github.com/roihas1/playoff_backend/db"
	"github.com/roihas1/playoff_backend/model"
)

func rootHandler(_ controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.Text(w, http.StatusOK, "playoff backend")
	}
}

// renderError maps controller and db errors onto HTTP statuses. Unknown
// errors are treated as internal.
func renderError(render *render.Render, w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, db.ErrUserNotFound),
		errors.Is(err, db.ErrSeriesNotFound),
		errors.Is(err, db.ErrBetNotFound),
		errors.Is(err, db.ErrGuessNotFound),
		errors.Is(err, db.ErrPointsNotFound):
		status = http.StatusNotFound
	case errors.Is(err, model.ErrInvalidValue),
		errors.Is(err, controller.ErrBetClosed):
		status = http.StatusBadRequest
	}
	render.JSON(w, status, map[string]string{"error": err.Error()})
}

func renderBadRequest(render *render.Render, w http.ResponseWriter, format string, args ...any) {
	render.JSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf(format, args...)})
}

func urlParamInt32(r *http.Request, name string) (int32, error) {
	v, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil {
		return 0, fmt.Errorf("error parsing %s: %v", name, err)
	}
	return int32(v), nil
}

func listOpenBetsHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		var scope model.BetScope
		if s := q.Get("series"); s != "" {
			id, err := strconv.Atoi(s)
			if err != nil {
				renderBadRequest(render, w, "error parsing series id: %v", err)
				return
			}
			scope.SeriesID = int32(id)
		}
		if s := q.Get("round"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil || !model.Round(n).Valid() {
				renderBadRequest(render, w, "invalid round: %q", s)
				return
			}
			scope.Round = model.Round(n)
		}
		if s := q.Get("stage"); s != "" {
			if scope.Stage = model.ParseStage(s); scope.Stage == model.StageUnknown {
				renderBadRequest(render, w, "invalid stage: %q", s)
				return
			}
		}
		if s := q.Get("conference"); s != "" {
			if scope.Conference = model.ParseConference(s); scope.Conference == model.ConfUnknown {
				renderBadRequest(render, w, "invalid conference: %q", s)
				return
			}
		}
		scope.Team = q.Get("team")

		bets, err := ctrl.ListOpenBets(r.Context(), scope)
		if err != nil {
			renderError(render, w, err)
			return
		}
		render.JSON(w, http.StatusOK, bets)
	}
}

func getBetHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlParamInt32(r, "betID")
		if err != nil {
			renderBadRequest(render, w, "%v", err)
			return
		}

		b, err := ctrl.GetBet(r.Context(), id)
		if err != nil {
			renderError(render, w, err)
			return
		}
		render.JSON(w, http.StatusOK, b)
	}
}

func getGuessHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlParamInt32(r, "guessID")
		if err != nil {
			renderBadRequest(render, w, "%v", err)
			return
		}

		g, err := ctrl.GetGuess(r.Context(), id)
		if err != nil {
			renderError(render, w, err)
			return
		}
		render.JSON(w, http.StatusOK, g)
	}
}

func getUserHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlParamInt32(r, "userID")
		if err != nil {
			renderBadRequest(render, w, "%v", err)
			return
		}

		u, err := ctrl.GetUser(r.Context(), id)
		if err != nil {
			renderError(render, w, err)
			return
		}
		render.JSON(w, http.StatusOK, u)
	}
}

func getStandingHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlParamInt32(r, "userID")
		if err != nil {
			renderBadRequest(render, w, "%v", err)
			return
		}

		s, err := ctrl.GetUserStanding(r.Context(), id)
		if err != nil {
			renderError(render, w, err)
			return
		}
		render.JSON(w, http.StatusOK, s)
	}
}

func submitGuessHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := urlParamInt32(r, "userID")
		if err != nil {
			renderBadRequest(render, w, "%v", err)
			return
		}

		var req model.GuessSubmission
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			renderBadRequest(render, w, "error parsing guess: %v", err)
			return
		}

		g, err := ctrl.SubmitGuess(r.Context(), userID, req.BetID, req.Value)
		if err != nil {
			renderError(render, w, err)
			return
		}
		render.JSON(w, http.StatusOK, g)
	}
}

func submitManyGuessesHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := urlParamInt32(r, "userID")
		if err != nil {
			renderBadRequest(render, w, "%v", err)
			return
		}

		var subs []model.GuessSubmission
		if err := json.NewDecoder(r.Body).Decode(&subs); err != nil {
			renderBadRequest(render, w, "error parsing guesses: %v", err)
			return
		}
		if len(subs) == 0 {
			renderBadRequest(render, w, "no guesses provided")
			return
		}

		if err := ctrl.SubmitManyGuesses(r.Context(), userID, subs); err != nil {
			renderError(render, w, err)
			return
		}
		render.JSON(w, http.StatusOK, map[string]int{"submitted": len(subs)})
	}
}

func getUserGuessesHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := urlParamInt32(r, "userID")
		if err != nil {
			renderBadRequest(render, w, "%v", err)
			return
		}

		var seriesID int32
		if s := r.URL.Query().Get("series"); s != "" {
			id, err := strconv.Atoi(s)
			if err != nil {
				renderBadRequest(render, w, "error parsing series id: %v", err)
				return
			}
			seriesID = int32(id)
		}

		guesses, err := ctrl.GetGuessesForUser(r.Context(), userID, seriesID)
		if err != nil {
			renderError(render, w, err)
			return
		}
		render.JSON(w, http.StatusOK, guesses)
	}
}

func getMissingBetsHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := urlParamInt32(r, "userID")
		if err != nil {
			renderBadRequest(render, w, "%v", err)
			return
		}

		missing, err := ctrl.GetMissingBets(r.Context(), userID)
		if err != nil {
			renderError(render, w, err)
			return
		}
		render.JSON(w, http.StatusOK, missing)
	}
}

func getUserPointsHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := urlParamInt32(r, "userID")
		if err != nil {
			renderBadRequest(render, w, "%v", err)
			return
		}

		points, err := ctrl.GetPointsForUser(r.Context(), userID)
		if err != nil {
			renderError(render, w, err)
			return
		}
		render.JSON(w, http.StatusOK, points)
	}
}

func getUserSeriesPointsHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := urlParamInt32(r, "userID")
		if err != nil {
			renderBadRequest(render, w, "%v", err)
			return
		}
		seriesID, err := urlParamInt32(r, "seriesID")
		if err != nil {
			renderBadRequest(render, w, "%v", err)
			return
		}

		points, err := ctrl.GetPointsForUserAndSeries(r.Context(), userID, seriesID)
		if err != nil {
			renderError(render, w, err)
			return
		}
		render.JSON(w, http.StatusOK, points)
	}
}

func getSeriesPointsHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		seriesID, err := urlParamInt32(r, "seriesID")
		if err != nil {
			renderBadRequest(render, w, "%v", err)
			return
		}

		points, err := ctrl.GetPointsForSeries(r.Context(), seriesID)
		if err != nil {
			renderError(render, w, err)
			return
		}
		render.JSON(w, http.StatusOK, points)
	}
}

func addUserHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Username string `json:"username"`
			Role     string `json:"role"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			renderBadRequest(render, w, "error parsing user: %v", err)
			return
		}

		u, err := ctrl.AddUser(r.Context(), req.Username, req.Role)
		if err != nil {
			renderError(render, w, err)
			return
		}
		render.JSON(w, http.StatusCreated, u)
	}
}

func addSeriesHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Team1      string    `json:"team1"`
			Team2      string    `json:"team2"`
			Conference string    `json:"conference"`
			Round      int16     `json:"round"`
			StartTime  time.Time `json:"startTime"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			renderBadRequest(render, w, "error parsing series: %v", err)
			return
		}

		s := &model.Series{
			Team1:      req.Team1,
			Team2:      req.Team2,
			Conference: model.ParseConference(req.Conference),
			Round:      model.Round(req.Round),
			StartTime:  req.StartTime,
		}
		if err := ctrl.AddSeries(r.Context(), s); err != nil {
			renderError(render, w, err)
			return
		}
		render.JSON(w, http.StatusCreated, s)
	}
}

func addBetHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Category      string     `json:"category"`
			SeriesID      int32      `json:"seriesId"`
			Stage         string     `json:"stage"`
			FantasyPoints int32      `json:"fantasyPoints"`
			Player1       string     `json:"player1"`
			Player2       string     `json:"player2"`
			Differential  float64    `json:"differential"`
			PlayerStats   [2]float64 `json:"playerStats"`
			PlayerGames   [2]int32   `json:"playerGames"`
			StartTime     time.Time  `json:"startTime"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			renderBadRequest(render, w, "error parsing bet: %v", err)
			return
		}

		b := &model.Bet{
			Category:      model.ParseBetCategory(req.Category),
			SeriesID:      req.SeriesID,
			Stage:         model.ParseStage(req.Stage),
			FantasyPoints: req.FantasyPoints,
			Player1:       req.Player1,
			Player2:       req.Player2,
			Differential:  req.Differential,
			PlayerStats:   req.PlayerStats,
			PlayerGames:   req.PlayerGames,
			StartTime:     req.StartTime,
		}
		if err := ctrl.AddBet(r.Context(), b); err != nil {
			renderError(render, w, err)
			return
		}
		render.JSON(w, http.StatusCreated, b)
	}
}

func resolveBetHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		betID, err := urlParamInt32(r, "betID")
		if err != nil {
			renderBadRequest(render, w, "%v", err)
			return
		}

		var req struct {
			Number    int32  `json:"number"`
			Team1     string `json:"team1"`
			Team2     string `json:"team2"`
			Selection string `json:"selection"`

			// Matchup and spontaneous bets may instead report raw stat
			// lines; the outcome is derived against the bet's line.
			PlayerStats *[2]float64 `json:"playerStats"`
			PlayerGames *[2]int32   `json:"playerGames"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			renderBadRequest(render, w, "error parsing result: %v", err)
			return
		}

		if req.PlayerStats != nil {
			var games [2]int32
			if req.PlayerGames != nil {
				games = *req.PlayerGames
			}
			report, err := ctrl.ResolveMatchupBet(r.Context(), betID, *req.PlayerStats, games)
			if err != nil {
				renderError(render, w, err)
				return
			}
			render.JSON(w, http.StatusOK, report)
			return
		}

		result := model.Outcome{
			Number:    req.Number,
			Team1:     req.Team1,
			Team2:     req.Team2,
			Selection: req.Selection,
		}
		report, err := ctrl.ResolveBet(r.Context(), betID, result)
		if err != nil {
			renderError(render, w, err)
			return
		}
		render.JSON(w, http.StatusOK, report)
	}
}

func recomputeMissingBetsHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s := r.URL.Query().Get("user"); s != "" {
			id, err := strconv.Atoi(s)
			if err != nil {
				renderBadRequest(render, w, "error parsing user id: %v", err)
				return
			}
			if err := ctrl.RecomputeMissingBets(r.Context(), int32(id)); err != nil {
				renderError(render, w, err)
				return
			}
			render.JSON(w, http.StatusOK, &model.BulkReport{Processed: 1})
			return
		}

		report, err := ctrl.RecomputeAllMissingBets(r.Context())
		if err != nil {
			renderError(render, w, err)
			return
		}
		render.JSON(w, http.StatusOK, report)
	}
}

func recomputePointsHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s := r.URL.Query().Get("user"); s != "" {
			id, err := strconv.Atoi(s)
			if err != nil {
				renderBadRequest(render, w, "error parsing user id: %v", err)
				return
			}
			if err := ctrl.UpdatePointsForUser(r.Context(), int32(id)); err != nil {
				renderError(render, w, err)
				return
			}
			render.JSON(w, http.StatusOK, &model.BulkReport{Processed: 1})
			return
		}

		report, err := ctrl.UpdateAllUserPoints(r.Context())
		if err != nil {
			renderError(render, w, err)
			return
		}
		render.JSON(w, http.StatusOK, report)
	}
}
