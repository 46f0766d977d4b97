package service_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamwise/churn/internal/domain/service"
	"github.com/streamwise/churn/internal/domain/valueobject"
)

type mockClassifier struct {
	err      error
	seen     []float64
	proba    float64
	features int
}

func (m *mockClassifier) PredictProba(features []float64) (float64, error) {
	m.seen = features
	return m.proba, m.err
}

func (m *mockClassifier) Version() string  { return "mock-1" }
func (m *mockClassifier) NumFeatures() int { return m.features }

func newPredictor(t *testing.T, clf *mockClassifier, threshold float64) *service.ChurnPredictor {
	t.Helper()
	if clf.features == 0 {
		clf.features = len(trainingColumns)
	}
	p, err := service.NewChurnPredictor(newTestEncoder(t), clf, threshold)
	require.NoError(t, err)
	return p
}

func TestPredict_Labels(t *testing.T) {
	tests := []struct {
		name  string
		proba float64
		label valueobject.ChurnLabel
	}{
		{"clear churn", 0.91, valueobject.LabelChurn},
		{"clear stay", 0.08, valueobject.LabelStay},
		{"exactly threshold stays", 0.5, valueobject.LabelStay},
		{"just above threshold", 0.5000001, valueobject.LabelChurn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clf := &mockClassifier{proba: tt.proba}
			p := newPredictor(t, clf, 0)

			out, err := p.Predict(context.Background(), valueobject.DefaultProfile())
			require.NoError(t, err)
			assert.True(t, tt.label.Equal(out.Label))
			assert.Equal(t, tt.proba, out.Probability)
			assert.Equal(t, "mock-1", out.ModelVersion)
			assert.Equal(t, out.Vector.Values, clf.seen)
			assert.Len(t, out.Vector.Values, len(trainingColumns))
		})
	}
}

func TestPredict_CustomThreshold(t *testing.T) {
	p := newPredictor(t, &mockClassifier{proba: 0.4}, 0.3)
	assert.Equal(t, 0.3, p.Threshold())

	out, err := p.Predict(context.Background(), valueobject.DefaultProfile())
	require.NoError(t, err)
	assert.True(t, out.Label.IsChurn())

	assert.Equal(t, service.DefaultThreshold, newPredictor(t, &mockClassifier{}, 1.5).Threshold())
}

func TestPredict_InvalidProbability(t *testing.T) {
	for _, proba := range []float64{-0.01, 1.01, math.NaN()} {
		p := newPredictor(t, &mockClassifier{proba: proba}, 0)
		_, err := p.Predict(context.Background(), valueobject.DefaultProfile())
		require.ErrorIs(t, err, service.ErrInvalidProbability)
	}
}

func TestPredict_ClassifierError(t *testing.T) {
	boom := errors.New("boom")
	p := newPredictor(t, &mockClassifier{err: boom}, 0)

	_, err := p.Predict(context.Background(), valueobject.DefaultProfile())
	require.ErrorIs(t, err, boom)
}

func TestPredict_CancelledContext(t *testing.T) {
	p := newPredictor(t, &mockClassifier{proba: 0.2}, 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Predict(ctx, valueobject.DefaultProfile())
	require.ErrorIs(t, err, context.Canceled)
}

func TestNewChurnPredictor_FeatureCountMismatch(t *testing.T) {
	_, err := service.NewChurnPredictor(newTestEncoder(t), &mockClassifier{features: 3}, 0)
	require.ErrorIs(t, err, service.ErrSchemaMismatch)
}

func TestPredict_Deterministic(t *testing.T) {
	p := newPredictor(t, &mockClassifier{proba: 0.73}, 0)
	profile := valueobject.DefaultProfile()

	first, err := p.Predict(context.Background(), profile)
	require.NoError(t, err)
	for range 5 {
		again, err := p.Predict(context.Background(), profile)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}
