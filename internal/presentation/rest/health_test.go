package rest

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthz(t *testing.T) {
	h := NewHealthHandler(testLogger(), nil)
	rec := httptest.NewRecorder()
	h.Healthz(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[HealthResponse](t, rec)
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "churn-service", resp.Service)
}

func TestReadyz(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	rec := httptest.NewRecorder()
	NewHealthHandler(testLogger(), map[string]Check{"artifacts": ok, "cache": ok}).
		Readyz(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[ReadinessResponse](t, rec)
	assert.Equal(t, "ready", resp.Status)
	assert.Equal(t, map[string]string{"artifacts": "ok", "cache": "ok"}, resp.Checks)

	rec = httptest.NewRecorder()
	NewHealthHandler(testLogger(), map[string]Check{"artifacts": ok, "database": down}).
		Readyz(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	resp = decode[ReadinessResponse](t, rec)
	assert.Equal(t, "not_ready", resp.Status)
	assert.Equal(t, "connection refused", resp.Checks["database"])
}

func TestRouter_MetricsMounted(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("churn_predictions_total 3\n")) //nolint:errcheck
	})
	s := newTestServer(t, RouterOptions{Metrics: metrics})

	rec := s.do(t, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "churn_predictions_total")
}
