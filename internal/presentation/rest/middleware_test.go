package rest

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_BurstThenRefill(t *testing.T) {
	now := time.Date(2024, 3, 18, 0, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(2, 5)
	rl.now = func() time.Time { return now }
	rl.lastRefill = now

	for i := range 5 {
		require.True(t, rl.Allow(), "request %d within burst", i+1)
	}
	assert.False(t, rl.Allow())

	now = now.Add(time.Second)
	assert.True(t, rl.Allow())
	assert.True(t, rl.Allow())
	assert.False(t, rl.Allow())

	now = now.Add(time.Hour)
	for range 5 {
		assert.True(t, rl.Allow())
	}
	assert.False(t, rl.Allow(), "refill is capped at burst")
}

func TestRateLimiter_BurstDefaultsToRate(t *testing.T) {
	rl := NewRateLimiter(3, 0)
	assert.Equal(t, 3.0, rl.burst)
}

func TestRateLimitMiddleware(t *testing.T) {
	s := newTestServer(t, RouterOptions{RateLimit: 1, RateBurst: 1})

	assert.Equal(t, http.StatusOK, s.do(t, httptest.NewRequest(http.MethodGet, "/", nil)).Code)
	rec := s.do(t, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, s.do(t, httptest.NewRequest(http.MethodGet, "/healthz", nil)).Code,
		"probes are not rate limited")
}

func TestLoggingMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	h := loggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/brew", nil))

	out := buf.String()
	assert.Contains(t, out, `"path":"/brew"`)
	assert.Contains(t, out, `"status":418`)
}
