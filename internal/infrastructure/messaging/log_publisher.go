// Package messaging holds the event publisher used when no broker is
// configured.
package messaging

import (
	"context"
	"log/slog"

	"github.com/streamwise/churn/internal/domain/port"
	"github.com/streamwise/churn/pkg/events"
)

// LogPublisher implements port.EventPublisher by logging each event.
type LogPublisher struct {
	logger *slog.Logger
}

var _ port.EventPublisher = (*LogPublisher)(nil)

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, domainEvents ...events.DomainEvent) error {
	for _, evt := range domainEvents {
		payload, err := events.Marshal(evt)
		if err != nil {
			return err
		}
		p.logger.InfoContext(ctx, "domain event",
			slog.String("event_type", evt.EventType()),
			slog.String("aggregate_id", evt.AggregateID().String()),
			slog.Int("payload_size", len(payload)),
		)
		p.logger.DebugContext(ctx, "event payload",
			slog.String("event_type", evt.EventType()),
			slog.String("payload", string(payload)),
		)
	}
	return nil
}
