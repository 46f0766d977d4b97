package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/streamwise/churn/internal/domain/port"
	"github.com/streamwise/churn/internal/domain/valueobject"
)

// DefaultThreshold matches the binary predict() of a probabilistic classifier.
const DefaultThreshold = 0.5

// ErrInvalidProbability is returned when a classifier yields a probability
// outside [0, 1].
var ErrInvalidProbability = errors.New("classifier returned invalid probability")

// ChurnPredictor encodes a profile and runs the classifier over it.
// It holds no mutable state and is safe for concurrent use.
type ChurnPredictor struct {
	encoder    *FeatureEncoder
	classifier port.Classifier
	threshold  float64
}

var _ port.Predictor = (*ChurnPredictor)(nil)

// NewChurnPredictor wires an encoder to a classifier. A threshold outside
// (0, 1) falls back to DefaultThreshold.
func NewChurnPredictor(encoder *FeatureEncoder, classifier port.Classifier, threshold float64) (*ChurnPredictor, error) {
	if n := classifier.NumFeatures(); n != encoder.Schema().Len() {
		return nil, fmt.Errorf("%w: classifier expects %d features, schema has %d",
			ErrSchemaMismatch, n, encoder.Schema().Len())
	}
	if threshold <= 0 || threshold >= 1 || math.IsNaN(threshold) {
		threshold = DefaultThreshold
	}
	return &ChurnPredictor{encoder: encoder, classifier: classifier, threshold: threshold}, nil
}

// Threshold is the probability above which a profile is labelled churn.
func (p *ChurnPredictor) Threshold() float64 { return p.threshold }

// Predict scores one profile. The label is churn iff the probability is
// strictly greater than the threshold.
func (p *ChurnPredictor) Predict(ctx context.Context, profile valueobject.SubscriberProfile) (port.Outcome, error) {
	if err := ctx.Err(); err != nil {
		return port.Outcome{}, err
	}

	vector, err := p.encoder.Encode(profile)
	if err != nil {
		return port.Outcome{}, err
	}

	proba, err := p.classifier.PredictProba(vector.Values)
	if err != nil {
		return port.Outcome{}, fmt.Errorf("classify: %w", err)
	}
	if math.IsNaN(proba) || proba < 0 || proba > 1 {
		return port.Outcome{}, fmt.Errorf("%w: %v", ErrInvalidProbability, proba)
	}

	label := valueobject.LabelStay
	if proba > p.threshold {
		label = valueobject.LabelChurn
	}

	return port.Outcome{
		Label:        label,
		Probability:  proba,
		Vector:       vector,
		ModelVersion: p.classifier.Version(),
	}, nil
}

// Encode exposes the encoder for callers that only need the vector.
func (p *ChurnPredictor) Encode(profile valueobject.SubscriberProfile) (valueobject.FeatureVector, error) {
	return p.encoder.Encode(profile)
}

// Describe reports categorical encoding diagnostics.
func (p *ChurnPredictor) Describe(profile valueobject.SubscriberProfile) []valueobject.FieldEncoding {
	return p.encoder.Describe(profile)
}
