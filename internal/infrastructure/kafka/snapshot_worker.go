package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/streamwise/churn/internal/application/dto"
	"github.com/streamwise/churn/internal/domain/model"
	"github.com/streamwise/churn/internal/domain/valueobject"
	pkgkafka "github.com/streamwise/churn/pkg/kafka"
)

// Predictor is satisfied by *usecase.PredictChurn.
type Predictor interface {
	Execute(ctx context.Context, req dto.PredictChurnRequest) (dto.PredictionResponse, error)
}

// SnapshotWorker scores subscriber snapshots consumed from Kafka.
type SnapshotWorker struct {
	predictor Predictor
	logger    *slog.Logger
}

// NewSnapshotWorker creates a worker. Pass its Handle method to
// pkgkafka.NewConsumer.
func NewSnapshotWorker(predictor Predictor, logger *slog.Logger) *SnapshotWorker {
	return &SnapshotWorker{predictor: predictor, logger: logger}
}

// Handle decodes one snapshot and runs a prediction with source "stream".
// Malformed or invalid snapshots are logged and acknowledged. Infrastructure
// failures are returned; the consumer then retries the same message with
// backoff and commits nothing past it.
func (w *SnapshotWorker) Handle(ctx context.Context, msg pkgkafka.Message) error {
	var payload dto.PredictChurnPayload
	if err := json.Unmarshal(msg.Value, &payload); err != nil {
		w.logger.WarnContext(ctx, "dropping malformed snapshot",
			slog.String("key", string(msg.Key)),
			slog.String("error", err.Error()),
		)
		return nil
	}
	req, err := payload.Request()
	if err != nil {
		w.logger.WarnContext(ctx, "dropping invalid snapshot",
			slog.String("key", string(msg.Key)),
			slog.String("error", err.Error()),
		)
		return nil
	}
	req.Source = model.SourceStream
	if req.SubscriberRef == "" {
		req.SubscriberRef = string(msg.Key)
	}

	resp, err := w.predictor.Execute(ctx, req)
	if errors.Is(err, valueobject.ErrInvalidProfile) {
		w.logger.WarnContext(ctx, "dropping invalid snapshot",
			slog.String("subscriber_ref", req.SubscriberRef),
			slog.String("error", err.Error()),
		)
		return nil
	}
	if err != nil {
		return err
	}

	w.logger.DebugContext(ctx, "snapshot scored",
		slog.String("prediction_id", resp.ID.String()),
		slog.String("subscriber_ref", resp.SubscriberRef),
		slog.String("label", resp.LabelText),
	)
	return nil
}

// Run consumes the snapshot topic until ctx ends, then closes the consumer.
func Run(ctx context.Context, consumer *pkgkafka.Consumer, logger *slog.Logger) error {
	defer func() {
		if err := consumer.Close(); err != nil {
			logger.Warn("closing snapshot consumer", "error", err)
		}
	}()
	return consumer.Start(ctx)
}
