package usecase_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/streamwise/churn/internal/domain/model"
	"github.com/streamwise/churn/internal/domain/port"
	"github.com/streamwise/churn/internal/domain/valueobject"
	"github.com/streamwise/churn/pkg/events"
)

// --- Mock implementations ---

type mockPredictionRepository struct {
	saved       []*model.ChurnPrediction
	saveErr     error
	findByIDFn  func(ctx context.Context, id uuid.UUID) (*model.ChurnPrediction, error)
	listFn      func(ctx context.Context, ref string, limit, offset int) ([]*model.ChurnPrediction, error)
	lastLimit   int
	lastOffset  int
	lastRefSeen string
}

func (m *mockPredictionRepository) Save(_ context.Context, p *model.ChurnPrediction) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = append(m.saved, p)
	return nil
}

func (m *mockPredictionRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.ChurnPrediction, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockPredictionRepository) FindBySubscriberRef(ctx context.Context, ref string, limit, offset int) ([]*model.ChurnPrediction, error) {
	m.lastRefSeen, m.lastLimit, m.lastOffset = ref, limit, offset
	if m.listFn != nil {
		return m.listFn(ctx, ref, limit, offset)
	}
	return nil, nil
}

type mockEventPublisher struct {
	published []events.DomainEvent
	err       error
}

func (m *mockEventPublisher) Publish(_ context.Context, evts ...events.DomainEvent) error {
	if m.err != nil {
		return m.err
	}
	m.published = append(m.published, evts...)
	return nil
}

type mockCache struct {
	mu      sync.Mutex
	entries map[string]port.CachedOutcome
	getErr  error
	setErr  error
}

func newMockCache() *mockCache {
	return &mockCache{entries: map[string]port.CachedOutcome{}}
}

func (m *mockCache) Get(_ context.Context, key string) (*port.CachedOutcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	if v, ok := m.entries[key]; ok {
		return &v, nil
	}
	return nil, nil
}

func (m *mockCache) Set(_ context.Context, key string, v port.CachedOutcome) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.entries[key] = v
	return nil
}

func (m *mockCache) Ping(context.Context) error { return nil }

type mockPredictor struct {
	outcome port.Outcome
	err     error
	calls   int
}

func (m *mockPredictor) Predict(_ context.Context, _ valueobject.SubscriberProfile) (port.Outcome, error) {
	m.calls++
	return m.outcome, m.err
}

func (m *mockPredictor) Encode(_ valueobject.SubscriberProfile) (valueobject.FeatureVector, error) {
	return m.outcome.Vector, nil
}

func (m *mockPredictor) Describe(_ valueobject.SubscriberProfile) []valueobject.FieldEncoding {
	return []valueobject.FieldEncoding{{Field: "region", Value: "North", Column: "region_North"}}
}

type mockArtifacts struct {
	bundle *port.ArtifactBundle
	err    error
}

func (m *mockArtifacts) Current(context.Context) (*port.ArtifactBundle, error) {
	return m.bundle, m.err
}

type recordingMetrics struct {
	recorded []string
	failed   []string
}

func (r *recordingMetrics) PredictionRecorded(_ context.Context, label, source string, _ float64, cached bool) {
	tag := label + "/" + source
	if cached {
		tag += "/cached"
	}
	r.recorded = append(r.recorded, tag)
}

func (r *recordingMetrics) PredictionFailed(_ context.Context, source, reason string) {
	r.failed = append(r.failed, source+"/"+reason)
}

var errBoom = errors.New("boom")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newBundle(p port.Predictor) *port.ArtifactBundle {
	return &port.ArtifactBundle{
		Predictor:    p,
		Columns:      []string{"age", "region_North"},
		ModelVersion: "v-test",
		Digest:       "d-test",
		ModelType:    "logistic_regression",
		Threshold:    0.5,
		Source:       "testdata",
	}
}

func churnOutcome() port.Outcome {
	return port.Outcome{
		Label:        valueobject.LabelChurn,
		Probability:  0.83,
		ModelVersion: "v-test",
		Vector: valueobject.FeatureVector{
			Columns: []string{"age", "region_North"},
			Values:  []float64{-1.5, 1},
		},
	}
}
