package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/streamwise/churn/internal/application/dto"
	"github.com/streamwise/churn/internal/domain/model"
	"github.com/streamwise/churn/internal/domain/port"
	"github.com/streamwise/churn/internal/domain/valueobject"
)

// PredictChurn scores a subscriber profile, records the prediction and
// publishes its events.
type PredictChurn struct {
	artifacts port.ArtifactProvider
	repo      port.PredictionRepository
	publisher port.EventPublisher
	cache     port.PredictionCache
	metrics   Metrics
	logger    *slog.Logger
}

// NewPredictChurn creates a new PredictChurn use case.
func NewPredictChurn(
	artifacts port.ArtifactProvider,
	repo port.PredictionRepository,
	publisher port.EventPublisher,
	cache port.PredictionCache,
	metrics Metrics,
	logger *slog.Logger,
) *PredictChurn {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	return &PredictChurn{
		artifacts: artifacts,
		repo:      repo,
		publisher: publisher,
		cache:     cache,
		metrics:   metrics,
		logger:    logger,
	}
}

// Execute runs the full prediction flow.
func (uc *PredictChurn) Execute(ctx context.Context, req dto.PredictChurnRequest) (dto.PredictionResponse, error) {
	source := req.Source
	if source == "" {
		source = model.SourceAPI
	}

	resp, err := uc.execute(ctx, req, source)
	if err != nil {
		reason := "internal"
		if errors.Is(err, valueobject.ErrInvalidProfile) {
			reason = "invalid_profile"
		}
		uc.metrics.PredictionFailed(ctx, source, reason)
	}
	return resp, err
}

func (uc *PredictChurn) execute(ctx context.Context, req dto.PredictChurnRequest, source string) (dto.PredictionResponse, error) {
	// 1. Validate and build the profile.
	if err := req.Validate(); err != nil {
		return dto.PredictionResponse{}, err
	}
	profile, err := valueobject.NewSubscriberProfile(req.Attributes())
	if err != nil {
		return dto.PredictionResponse{}, err
	}

	prediction, err := model.NewChurnPrediction(req.SubscriberRef, profile, source)
	if err != nil {
		return dto.PredictionResponse{}, fmt.Errorf("%w: %v", valueobject.ErrInvalidProfile, err)
	}

	// 2. Resolve the artifacts for this request.
	bundle, err := uc.artifacts.Current(ctx)
	if err != nil {
		return dto.PredictionResponse{}, fmt.Errorf("failed to load artifacts: %w", err)
	}

	// 3. Score, consulting the cache first.
	outcome, cached, err := uc.score(ctx, bundle, profile)
	if err != nil {
		return dto.PredictionResponse{}, fmt.Errorf("failed to score profile: %w", err)
	}

	// 4. Record, persist and publish.
	if err := prediction.Record(outcome.Label, outcome.Probability, outcome.ModelVersion); err != nil {
		return dto.PredictionResponse{}, fmt.Errorf("failed to record prediction: %w", err)
	}
	if err := uc.repo.Save(ctx, prediction); err != nil {
		return dto.PredictionResponse{}, fmt.Errorf("failed to save prediction: %w", err)
	}

	if evts := prediction.DomainEvents(); len(evts) > 0 {
		if err := uc.publisher.Publish(ctx, evts...); err != nil {
			uc.logger.Warn("failed to publish prediction events",
				"prediction_id", prediction.ID(), "error", err)
		}
	}

	uc.metrics.PredictionRecorded(ctx, prediction.Label().String(), source, prediction.Probability(), cached)
	uc.logger.Info("churn prediction recorded",
		"prediction_id", prediction.ID(),
		"label", prediction.Label().String(),
		"probability", prediction.ProbabilityText(),
		"source", source,
		"model_version", prediction.ModelVersion(),
		"cached", cached,
	)

	// 5. Build the response.
	resp := dto.FromModel(prediction)
	resp.Cached = cached
	resp.Encoding = bundle.Predictor.Describe(profile)
	if req.IncludeFeatures {
		resp.Features = outcome.Vector.Map()
	}
	return resp, nil
}

func (uc *PredictChurn) score(ctx context.Context, bundle *port.ArtifactBundle, profile valueobject.SubscriberProfile) (port.Outcome, bool, error) {
	vector, err := bundle.Predictor.Encode(profile)
	if err != nil {
		return port.Outcome{}, false, err
	}
	key := bundle.Digest + ":" + vector.Hash()

	hit, err := uc.cache.Get(ctx, key)
	if err != nil {
		uc.logger.Warn("prediction cache read failed", "error", err)
	}
	if hit != nil && hit.Digest == bundle.Digest {
		if label, lerr := valueobject.LabelFromInt(hit.Label); lerr == nil {
			return port.Outcome{
				Label:        label,
				Probability:  hit.Probability,
				Vector:       vector,
				ModelVersion: hit.ModelVersion,
			}, true, nil
		}
	}

	outcome, err := bundle.Predictor.Predict(ctx, profile)
	if err != nil {
		return port.Outcome{}, false, err
	}

	if err := uc.cache.Set(ctx, key, port.CachedOutcome{
		Label:        outcome.Label.Int(),
		Probability:  outcome.Probability,
		ModelVersion: outcome.ModelVersion,
		Digest:       bundle.Digest,
		CachedAt:     time.Now().UTC(),
	}); err != nil {
		uc.logger.Warn("prediction cache write failed", "error", err)
	}
	return outcome, false, nil
}
