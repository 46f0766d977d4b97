// Package telemetry records churn service metrics through OpenTelemetry.
package telemetry

import (
	"context"
	"fmt"
	"strconv"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/streamwise/churn/internal/application/usecase"
)

const meterName = "github.com/streamwise/churn"

// Recorder implements usecase.Metrics and the artifact reload hook.
type Recorder struct {
	predictions metric.Int64Counter
	failures    metric.Int64Counter
	probability metric.Float64Histogram
	reloads     metric.Int64Counter
}

var _ usecase.Metrics = (*Recorder)(nil)

// NewRecorder creates the instruments on provider's meter.
func NewRecorder(provider metric.MeterProvider) (*Recorder, error) {
	meter := provider.Meter(meterName)

	predictions, err := meter.Int64Counter("churn_predictions_total",
		metric.WithDescription("Recorded churn predictions by label and source."))
	if err != nil {
		return nil, fmt.Errorf("telemetry: predictions counter: %w", err)
	}
	failures, err := meter.Int64Counter("churn_prediction_failures_total",
		metric.WithDescription("Failed prediction requests by source and reason."))
	if err != nil {
		return nil, fmt.Errorf("telemetry: failures counter: %w", err)
	}
	probability, err := meter.Float64Histogram("churn_probability",
		metric.WithDescription("Class-1 probability of recorded predictions."),
		metric.WithExplicitBucketBoundaries(0.1, 0.2, 0.35, 0.5, 0.6, 0.8, 0.9, 1),
	)
	if err != nil {
		return nil, fmt.Errorf("telemetry: probability histogram: %w", err)
	}
	reloads, err := meter.Int64Counter("churn_artifact_reloads_total",
		metric.WithDescription("Artifact reload attempts by result."))
	if err != nil {
		return nil, fmt.Errorf("telemetry: reloads counter: %w", err)
	}

	return &Recorder{
		predictions: predictions,
		failures:    failures,
		probability: probability,
		reloads:     reloads,
	}, nil
}

func (r *Recorder) PredictionRecorded(ctx context.Context, label, source string, probability float64, cached bool) {
	attrs := metric.WithAttributes(
		attribute.String("label", label),
		attribute.String("source", source),
		attribute.String("cached", strconv.FormatBool(cached)),
	)
	r.predictions.Add(ctx, 1, attrs)
	r.probability.Record(ctx, probability, metric.WithAttributes(attribute.String("source", source)))
}

func (r *Recorder) PredictionFailed(ctx context.Context, source, reason string) {
	r.failures.Add(ctx, 1, metric.WithAttributes(
		attribute.String("source", source),
		attribute.String("reason", reason),
	))
}

// ArtifactReloaded matches artifact.ReloadHook.
func (r *Recorder) ArtifactReloaded(ctx context.Context, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.reloads.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}
