package web

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/unrolled/render"

	"github.com/roihas1/playoff_backend/controller"
)

func getRouter(ctrl controller.C, render *render.Render, admin AdminCreds) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Set a timeout value on the request context (ctx), that will signal
	// through ctx.Done() that the request has timed out and further
	// processing should be stopped.
	r.Use(middleware.Timeout(10 * time.Second))

	r.Get("/", rootHandler(ctrl, render))

	r.Route("/bets", func(r chi.Router) {
		r.Get("/", listOpenBetsHandler(ctrl, render))
		r.Get("/{betID:\\d+}", getBetHandler(ctrl, render))
	})

	r.Get("/guesses/{guessID:\\d+}", getGuessHandler(ctrl, render))

	r.Route("/users/{userID:\\d+}", func(r chi.Router) {
		r.Get("/", getUserHandler(ctrl, render))
		r.Get("/standing", getStandingHandler(ctrl, render))

		r.Post("/guesses", submitGuessHandler(ctrl, render))
		r.Post("/guesses/batch", submitManyGuessesHandler(ctrl, render))
		r.Get("/guesses", getUserGuessesHandler(ctrl, render))

		r.Get("/missing-bets", getMissingBetsHandler(ctrl, render))

		r.Get("/points", getUserPointsHandler(ctrl, render))
		r.Get("/points/{seriesID:\\d+}", getUserSeriesPointsHandler(ctrl, render))
	})

	r.Get("/series/{seriesID:\\d+}/points", getSeriesPointsHandler(ctrl, render))

	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.BasicAuth("playoffs", map[string]string{admin.User: admin.Password}))
		r.Use(middleware.Timeout(5 * time.Minute)) // Bulk recomputes can take a while

		r.Post("/users", addUserHandler(ctrl, render))
		r.Post("/series", addSeriesHandler(ctrl, render))
		r.Post("/bets", addBetHandler(ctrl, render))
		r.Post("/bets/{betID:\\d+}/resolve", resolveBetHandler(ctrl, render))
		r.Post("/missing-bets/recompute", recomputeMissingBetsHandler(ctrl, render))
		r.Post("/points/recompute", recomputePointsHandler(ctrl, render))
	})

	return r
}
