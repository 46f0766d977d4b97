package port

import (
	"context"

	"github.com/google/uuid"

	"github.com/streamwise/churn/internal/domain/model"
	"github.com/streamwise/churn/pkg/events"
)

// PredictionRepository defines the persistence port for churn predictions.
type PredictionRepository interface {
	// Save persists a new or updated prediction.
	Save(ctx context.Context, prediction *model.ChurnPrediction) error

	// FindByID retrieves a prediction by id. It returns (nil, nil) when absent.
	FindByID(ctx context.Context, id uuid.UUID) (*model.ChurnPrediction, error)

	// FindBySubscriberRef lists predictions for a subscriber, newest first.
	FindBySubscriberRef(ctx context.Context, subscriberRef string, limit, offset int) ([]*model.ChurnPrediction, error)
}

// EventPublisher defines the port for publishing domain events.
type EventPublisher interface {
	Publish(ctx context.Context, events ...events.DomainEvent) error
}
