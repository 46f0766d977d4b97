package usecase

import "context"

// Metrics receives prediction telemetry.
type Metrics interface {
	PredictionRecorded(ctx context.Context, label, source string, probability float64, cached bool)
	PredictionFailed(ctx context.Context, source, reason string)
}

// NopMetrics discards everything.
type NopMetrics struct{}

func (NopMetrics) PredictionRecorded(context.Context, string, string, float64, bool) {}
func (NopMetrics) PredictionFailed(context.Context, string, string)                 {}
