// Package rest serves the subscriber form, the JSON API and the health and
// metrics endpoints.
package rest

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/streamwise/churn/pkg/auth"
)

// RouterOptions configures NewRouter.
type RouterOptions struct {
	Logger *slog.Logger
	// JWT protects /api/ when non-nil.
	JWT *auth.JWTService
	// Metrics is mounted on /metrics when non-nil.
	Metrics   http.Handler
	RateLimit float64
	RateBurst int
}

// NewRouter assembles the HTTP surface.
func NewRouter(form *FormHandler, api *APIHandler, health *HealthHandler, opts RouterOptions) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(loggingMiddleware(opts.Logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}

	r.Group(func(r chi.Router) {
		if opts.RateLimit > 0 {
			r.Use(rateLimitMiddleware(NewRateLimiter(opts.RateLimit, opts.RateBurst)))
		}

		r.Get("/", form.Index)
		r.Post("/predict", form.Predict)

		r.Route("/api/v1", func(r chi.Router) {
			if opts.JWT != nil {
				r.Use(auth.HTTPMiddleware(opts.JWT, nil))
				r.With(auth.RequireRoleHTTP(auth.RoleAdmin, auth.RoleAnalyst, auth.RoleService)).
					Post("/predictions", api.createPrediction)
				r.Group(func(r chi.Router) {
					r.Use(auth.RequireRoleHTTP(auth.RoleAdmin, auth.RoleAnalyst, auth.RoleService, auth.RoleViewer))
					r.Get("/predictions/{id}", api.getPredictionByID)
					r.Get("/subscribers/{ref}/predictions", api.listBySubscriber)
					r.Get("/schema", api.schema)
				})
				return
			}
			api.Routes(r)
		})
	})

	return r
}
