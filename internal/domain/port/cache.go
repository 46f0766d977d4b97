package port

import (
	"context"
	"time"
)

// CachedOutcome is what the prediction cache stores per feature vector.
type CachedOutcome struct {
	Label        int       `json:"label"`
	Probability  float64   `json:"probability"`
	ModelVersion string    `json:"model_version"`
	Digest       string    `json:"digest"`
	CachedAt     time.Time `json:"cached_at"`
}

// PredictionCache memoises classifier outcomes by feature vector hash.
type PredictionCache interface {
	// Get returns (nil, nil) on a miss.
	Get(ctx context.Context, key string) (*CachedOutcome, error)
	Set(ctx context.Context, key string, outcome CachedOutcome) error
	Ping(ctx context.Context) error
}
