package observability

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitMetrics_ExposesCounters(t *testing.T) {
	provider, handler, err := InitMetrics(MetricsConfig{ServiceName: "churnd"})
	require.NoError(t, err)
	defer provider.Shutdown(context.Background()) //nolint:errcheck

	counter, err := provider.Meter("test").Int64Counter("churn_test_events")
	require.NoError(t, err)
	counter.Add(context.Background(), 3)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(body), "churn_test_events")
}

func TestInitMetrics_IndependentRegistries(t *testing.T) {
	_, _, err := InitMetrics(MetricsConfig{})
	require.NoError(t, err)
	_, _, err = InitMetrics(MetricsConfig{})
	require.NoError(t, err)
}

func TestInitTracer_RequiresEndpoint(t *testing.T) {
	_, err := InitTracer(context.Background(), TracingConfig{ServiceName: "churnd"})
	require.Error(t, err)
}
