package telemetry

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamwise/churn/pkg/observability"
)

func scrape(t *testing.T, h http.Handler) string {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestRecorder_ExportsThroughPrometheus(t *testing.T) {
	provider, handler, err := observability.InitMetrics(observability.MetricsConfig{ServiceName: "churn-test"})
	require.NoError(t, err)
	defer provider.Shutdown(context.Background())

	rec, err := NewRecorder(provider)
	require.NoError(t, err)

	ctx := context.Background()
	rec.PredictionRecorded(ctx, "CHURN", "form", 0.87, false)
	rec.PredictionRecorded(ctx, "STAY", "api", 0.12, true)
	rec.PredictionFailed(ctx, "api", "invalid_profile")
	rec.ArtifactReloaded(ctx, nil)
	rec.ArtifactReloaded(ctx, errors.New("missing model.json"))

	body := scrape(t, handler)
	assert.Contains(t, body, "churn_predictions_total")
	assert.Contains(t, body, `label="CHURN"`)
	assert.Contains(t, body, `cached="true"`)
	assert.Contains(t, body, "churn_prediction_failures_total")
	assert.Contains(t, body, `reason="invalid_profile"`)
	assert.Contains(t, body, "churn_probability_bucket")
	assert.Contains(t, body, "churn_artifact_reloads_total")
	assert.Contains(t, body, `result="error"`)
}
