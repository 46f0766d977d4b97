package usecase

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/streamwise/churn/internal/application/dto"
	"github.com/streamwise/churn/internal/domain/port"
)

// GetPrediction is the use case for retrieving an existing prediction.
type GetPrediction struct {
	repo port.PredictionRepository
}

// NewGetPrediction creates a new GetPrediction use case.
func NewGetPrediction(repo port.PredictionRepository) *GetPrediction {
	return &GetPrediction{repo: repo}
}

// Execute retrieves a churn prediction by ID.
func (uc *GetPrediction) Execute(ctx context.Context, id uuid.UUID) (dto.PredictionResponse, error) {
	if id == uuid.Nil {
		return dto.PredictionResponse{}, fmt.Errorf("%w: prediction id is required", ErrInvalidRequest)
	}

	prediction, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return dto.PredictionResponse{}, fmt.Errorf("failed to find prediction: %w", err)
	}
	if prediction == nil {
		return dto.PredictionResponse{}, fmt.Errorf("%w: %s", ErrPredictionNotFound, id)
	}

	return dto.FromModel(prediction), nil
}
