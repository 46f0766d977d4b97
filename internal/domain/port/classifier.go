package port

import (
	"context"
	"time"

	"github.com/streamwise/churn/internal/domain/valueobject"
)

// Classifier is a fitted binary model over an aligned feature row.
type Classifier interface {
	// PredictProba returns the probability of the positive (churn) class.
	PredictProba(features []float64) (float64, error)
	// Version identifies the fitted model.
	Version() string
	// NumFeatures is the row width the model was fitted on.
	NumFeatures() int
}

// Outcome is the result of scoring one profile.
type Outcome struct {
	Label        valueobject.ChurnLabel
	Probability  float64
	Vector       valueobject.FeatureVector
	ModelVersion string
}

// Predictor scores subscriber profiles.
type Predictor interface {
	Predict(ctx context.Context, profile valueobject.SubscriberProfile) (Outcome, error)
	Encode(profile valueobject.SubscriberProfile) (valueobject.FeatureVector, error)
	Describe(profile valueobject.SubscriberProfile) []valueobject.FieldEncoding
}

// ArtifactBundle is one consistent set of loaded artifacts.
type ArtifactBundle struct {
	Predictor    Predictor
	Columns      []string
	ModelVersion string
	// Digest covers every artifact byte and the threshold. Cached outcomes
	// are keyed by it; ModelVersion is for display only.
	Digest    string
	ModelType string
	Threshold float64
	Source       string
	LoadedAt     time.Time
}

// ArtifactProvider hands out the bundle to use for the current request.
type ArtifactProvider interface {
	Current(ctx context.Context) (*ArtifactBundle, error)
}
