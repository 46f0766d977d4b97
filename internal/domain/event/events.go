package event

import (
	"time"

	"github.com/google/uuid"

	"github.com/streamwise/churn/pkg/events"
)

const (
	// EventTypePredictionCompleted is emitted for every recorded prediction.
	EventTypePredictionCompleted = "churn.prediction.completed"

	// EventTypeChurnRiskDetected is emitted when the classifier predicts churn.
	EventTypeChurnRiskDetected = "churn.risk.detected"

	// AggregateType names the aggregate these events belong to.
	AggregateType = "ChurnPrediction"
)

// PredictionCompleted is published when a churn prediction has been recorded.
type PredictionCompleted struct {
	events.BaseEvent
	PredictionID  uuid.UUID `json:"prediction_id"`
	SubscriberRef string    `json:"subscriber_ref,omitempty"`
	Label         string    `json:"label"`
	Probability   float64   `json:"probability"`
	RiskBand      string    `json:"risk_band"`
	ModelVersion  string    `json:"model_version"`
	Source        string    `json:"source"`
	PredictedAt   time.Time `json:"predicted_at"`
}

// NewPredictionCompleted builds a PredictionCompleted event.
func NewPredictionCompleted(
	predictionID uuid.UUID,
	subscriberRef, label string,
	probability float64,
	riskBand, modelVersion, source string,
	predictedAt time.Time,
) PredictionCompleted {
	return PredictionCompleted{
		BaseEvent:     events.NewBaseEvent(EventTypePredictionCompleted, predictionID, AggregateType),
		PredictionID:  predictionID,
		SubscriberRef: subscriberRef,
		Label:         label,
		Probability:   probability,
		RiskBand:      riskBand,
		ModelVersion:  modelVersion,
		Source:        source,
		PredictedAt:   predictedAt,
	}
}

// ChurnRiskDetected is published when a subscriber is predicted to churn,
// so retention tooling can act on it.
type ChurnRiskDetected struct {
	events.BaseEvent
	PredictionID  uuid.UUID `json:"prediction_id"`
	SubscriberRef string    `json:"subscriber_ref,omitempty"`
	Probability   float64   `json:"probability"`
	RiskBand      string    `json:"risk_band"`
	DetectedAt    time.Time `json:"detected_at"`
}

// NewChurnRiskDetected builds a ChurnRiskDetected event.
func NewChurnRiskDetected(
	predictionID uuid.UUID,
	subscriberRef string,
	probability float64,
	riskBand string,
	detectedAt time.Time,
) ChurnRiskDetected {
	return ChurnRiskDetected{
		BaseEvent:     events.NewBaseEvent(EventTypeChurnRiskDetected, predictionID, AggregateType),
		PredictionID:  predictionID,
		SubscriberRef: subscriberRef,
		Probability:   probability,
		RiskBand:      riskBand,
		DetectedAt:    detectedAt,
	}
}
