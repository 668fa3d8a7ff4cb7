package app

import (
	"log/slog"
	"net/http"

	"github.com/attaboy/fairway/internal/handler"
	"github.com/attaboy/fairway/internal/infra"
	"github.com/go-chi/chi/v5"
)

// RouterDeps holds all dependencies needed by NewRouter.
type RouterDeps struct {
	Scoring handler.ScoringService
	// Health is pinged by /health. Nil for the in-memory store.
	Health  infra.Pinger
	Metrics http.Handler
	Limiter *handler.DeviceLimiter
	Origins string
	Logger  *slog.Logger
}

// NewRouter assembles the chi.Router with all routes and middleware.
func NewRouter(deps RouterDeps) chi.Router {
	logger := deps.Logger
	if deps.Origins == "" {
		deps.Origins = "*"
	}
	if deps.Limiter == nil {
		deps.Limiter = handler.NewDeviceLimiter(5, 10)
	}

	scoring := handler.NewScoringHandler(deps.Scoring)

	r := chi.NewRouter()

	// Global middleware (order matters)
	r.Use(handler.Recovery(logger))
	r.Use(handler.RequestID)
	r.Use(handler.RequestLogger(logger))
	r.Use(handler.CORSWithOrigins(deps.Origins))
	r.Use(handler.JSONContentType)

	r.Get("/health", handler.HealthHandler(deps.Health))
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}

	r.Group(func(r chi.Router) {
		r.Use(handler.WriteRateLimit(deps.Limiter))

		r.Post("/strokes/allocate", scoring.AllocateStrokes)

		r.Route("/tournaments/{tournamentID}/groups/{groupID}", func(r chi.Router) {
			r.Put("/", scoring.SetupGroup)
			r.Get("/", scoring.GetGroup)
			r.Get("/stream", scoring.StreamGroup)
			r.Get("/verification", scoring.VerificationSummary)
			r.Get("/games", scoring.GetGames)
			r.Get("/settlement", scoring.GetSettlement)
			r.Get("/events", scoring.ListEvents)

			r.Route("/holes/{hole}", func(r chi.Router) {
				r.Put("/{channel}", scoring.SubmitHole)
				r.Post("/finalize", scoring.FinalizeHole)
				r.Get("/verification", scoring.GetVerification)
				r.Post("/verification/check", scoring.CheckVerification)
				r.Post("/verification/override", scoring.OverrideDiscrepancy)
				r.Post("/verification/sync", scoring.SyncVerifier)
			})
		})
	})

	return r
}
