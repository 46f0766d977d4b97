package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/streamwise/churn/internal/application/dto"
	"github.com/streamwise/churn/internal/domain/port"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// ListPredictions pages through a subscriber's prediction history.
type ListPredictions struct {
	repo port.PredictionRepository
}

// NewListPredictions creates a new ListPredictions use case.
func NewListPredictions(repo port.PredictionRepository) *ListPredictions {
	return &ListPredictions{repo: repo}
}

// Execute lists predictions newest first. A non-positive limit means the
// default; larger limits are clamped.
func (uc *ListPredictions) Execute(ctx context.Context, subscriberRef string, limit, offset int) (dto.PredictionListResponse, error) {
	subscriberRef = strings.TrimSpace(subscriberRef)
	if subscriberRef == "" {
		return dto.PredictionListResponse{}, fmt.Errorf("%w: subscriber reference is required", ErrInvalidRequest)
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	predictions, err := uc.repo.FindBySubscriberRef(ctx, subscriberRef, limit, offset)
	if err != nil {
		return dto.PredictionListResponse{}, fmt.Errorf("failed to list predictions: %w", err)
	}

	out := dto.PredictionListResponse{
		SubscriberRef: subscriberRef,
		Limit:         limit,
		Offset:        offset,
		Predictions:   make([]dto.PredictionResponse, 0, len(predictions)),
	}
	for _, p := range predictions {
		out.Predictions = append(out.Predictions, dto.FromModel(p))
	}
	return out, nil
}
