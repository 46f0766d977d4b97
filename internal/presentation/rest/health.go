package rest

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Check probes one dependency for readiness.
type Check func(ctx context.Context) error

// HealthHandler provides HTTP health check endpoints for the churn service.
type HealthHandler struct {
	logger    *slog.Logger
	checks    map[string]Check
	startTime time.Time
}

// NewHealthHandler creates a new health check handler. checks are run by
// /readyz; a nil map means always ready.
func NewHealthHandler(logger *slog.Logger, checks map[string]Check) *HealthHandler {
	return &HealthHandler{
		logger:    logger,
		checks:    checks,
		startTime: time.Now(),
	}
}

// HealthResponse is the JSON response for health checks.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Uptime  string `json:"uptime"`
}

// ReadinessResponse is the JSON response for readiness checks.
type ReadinessResponse struct {
	Status  string            `json:"status"`
	Service string            `json:"service"`
	Checks  map[string]string `json:"checks"`
}

// Healthz handles liveness probe requests.
func (h *HealthHandler) Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "healthy",
		Service: "churn-service",
		Uptime:  time.Since(h.startTime).Truncate(time.Second).String(),
	})
}

// Readyz runs every check with a short timeout.
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	results := make(map[string]string, len(h.checks))
	ready := true
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			h.logger.WarnContext(ctx, "readiness check failed", "check", name, "error", err)
			results[name] = err.Error()
			ready = false
			continue
		}
		results[name] = "ok"
	}

	resp := ReadinessResponse{Status: "ready", Service: "churn-service", Checks: results}
	status := http.StatusOK
	if !ready {
		resp.Status = "not_ready"
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}
