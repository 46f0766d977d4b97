package model

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/streamwise/churn/internal/domain/event"
	"github.com/streamwise/churn/internal/domain/valueobject"
	"github.com/streamwise/churn/pkg/events"
)

// Prediction sources.
const (
	SourceForm   = "form"
	SourceAPI    = "api"
	SourceGRPC   = "grpc"
	SourceStream = "stream"
	SourceCLI    = "cli"
)

// ValidSource reports whether s is a known prediction source.
func ValidSource(s string) bool {
	switch s {
	case SourceForm, SourceAPI, SourceGRPC, SourceStream, SourceCLI:
		return true
	}
	return false
}

// ChurnPrediction is the aggregate root for one scored subscriber profile.
type ChurnPrediction struct {
	pending events.Collector

	predictedAt   time.Time
	createdAt     time.Time
	profile       valueobject.SubscriberProfile
	label         valueobject.ChurnLabel
	riskBand      valueobject.RiskBand
	subscriberRef string
	modelVersion  string
	source        string
	probability   float64
	id            uuid.UUID
	recorded      bool
}

// NewChurnPrediction creates an unscored prediction. Call Record to attach
// the classifier outcome.
func NewChurnPrediction(subscriberRef string, profile valueobject.SubscriberProfile, source string) (*ChurnPrediction, error) {
	if !ValidSource(source) {
		return nil, fmt.Errorf("invalid prediction source: %q", source)
	}
	if len(subscriberRef) > 128 {
		return nil, fmt.Errorf("subscriber reference exceeds 128 characters")
	}

	return &ChurnPrediction{
		id:            uuid.New(),
		subscriberRef: subscriberRef,
		profile:       profile,
		source:        source,
		createdAt:     time.Now().UTC(),
	}, nil
}

// Record attaches a classifier outcome and raises the resulting events.
func (p *ChurnPrediction) Record(label valueobject.ChurnLabel, probability float64, modelVersion string) error {
	if p.recorded {
		return fmt.Errorf("prediction %s already recorded", p.id)
	}
	if math.IsNaN(probability) || probability < 0 || probability > 1 {
		return fmt.Errorf("probability must be between 0 and 1, got %v", probability)
	}

	p.label = label
	p.probability = probability
	p.riskBand = valueobject.RiskBandFromProbability(probability)
	p.modelVersion = modelVersion
	p.predictedAt = time.Now().UTC()
	p.recorded = true

	p.pending.Record(event.NewPredictionCompleted(
		p.id, p.subscriberRef, p.label.String(), p.probability,
		p.riskBand.String(), p.modelVersion, p.source, p.predictedAt,
	))

	if p.label.IsChurn() {
		p.pending.Record(event.NewChurnRiskDetected(
			p.id, p.subscriberRef, p.probability, p.riskBand.String(), p.predictedAt,
		))
	}

	return nil
}

// Reconstruct rebuilds a ChurnPrediction from persisted data (no validation, no events).
func Reconstruct(
	id uuid.UUID,
	subscriberRef string,
	profile valueobject.SubscriberProfile,
	label valueobject.ChurnLabel,
	probability float64,
	riskBand valueobject.RiskBand,
	modelVersion, source string,
	predictedAt, createdAt time.Time,
) *ChurnPrediction {
	return &ChurnPrediction{
		id:            id,
		subscriberRef: subscriberRef,
		profile:       profile,
		label:         label,
		probability:   probability,
		riskBand:      riskBand,
		modelVersion:  modelVersion,
		source:        source,
		predictedAt:   predictedAt,
		createdAt:     createdAt,
		recorded:      true,
	}
}

// ProbabilityText formats the churn probability to two decimals.
func (p *ChurnPrediction) ProbabilityText() string {
	return fmt.Sprintf("%.2f", p.probability)
}

// --- Accessors ---

func (p *ChurnPrediction) ID() uuid.UUID                          { return p.id }
func (p *ChurnPrediction) SubscriberRef() string                  { return p.subscriberRef }
func (p *ChurnPrediction) Profile() valueobject.SubscriberProfile { return p.profile }
func (p *ChurnPrediction) Label() valueobject.ChurnLabel          { return p.label }
func (p *ChurnPrediction) Probability() float64                   { return p.probability }
func (p *ChurnPrediction) RiskBand() valueobject.RiskBand         { return p.riskBand }
func (p *ChurnPrediction) ModelVersion() string                   { return p.modelVersion }
func (p *ChurnPrediction) Source() string                         { return p.source }
func (p *ChurnPrediction) PredictedAt() time.Time                 { return p.predictedAt }
func (p *ChurnPrediction) CreatedAt() time.Time                   { return p.createdAt }
func (p *ChurnPrediction) Recorded() bool                         { return p.recorded }

// DomainEvents returns all accumulated domain events and clears them.
func (p *ChurnPrediction) DomainEvents() []events.DomainEvent {
	return p.pending.Drain()
}
