package rest

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/streamwise/churn/internal/application/usecase"
	"github.com/streamwise/churn/internal/infrastructure/artifact"
	"github.com/streamwise/churn/internal/infrastructure/cache"
	"github.com/streamwise/churn/internal/infrastructure/memory"
	"github.com/streamwise/churn/internal/infrastructure/messaging"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type testServer struct {
	handler http.Handler
	repo    *memory.PredictionRepository
}

func newTestServer(t *testing.T, opts RouterOptions) *testServer {
	t.Helper()
	logger := testLogger()
	opts.Logger = logger

	store, err := artifact.NewStore(context.Background(), artifact.NewLocalSource("../../../models"), artifact.ModeOnce, logger)
	require.NoError(t, err)

	repo := memory.NewPredictionRepository()
	predict := usecase.NewPredictChurn(store, repo, messaging.NewLogPublisher(logger), cache.NoopCache{}, nil, logger)
	describe := usecase.NewDescribeSchema(store)

	form := NewFormHandler(predict, describe, logger)
	api := NewAPIHandler(predict, usecase.NewGetPrediction(repo), usecase.NewListPredictions(repo), describe, logger)
	health := NewHealthHandler(logger, map[string]Check{"database": repo.Ping})

	return &testServer{handler: NewRouter(form, api, health, opts), repo: repo}
}

func (s *testServer) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func postForm(values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func postJSON(path, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

const defaultJSON = `{
	"subscriber_ref": "sub-rest",
	"age": 25, "gender": "Male", "subscription_type": "Basic",
	"watch_hours": 10, "last_login_days": 3, "region": "North",
	"device": "Mobile", "monthly_fee": 9.99, "payment_method": "Credit Card",
	"number_of_profiles": 1, "avg_watch_time_per_day": 1.5,
	"favorite_genre": "Action"
}`
