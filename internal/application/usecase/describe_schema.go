package usecase

import (
	"context"
	"fmt"

	"github.com/streamwise/churn/internal/application/dto"
	"github.com/streamwise/churn/internal/domain/port"
	"github.com/streamwise/churn/internal/domain/valueobject"
)

// DescribeSchema reports the live artifact set.
type DescribeSchema struct {
	artifacts port.ArtifactProvider
}

// NewDescribeSchema creates a new DescribeSchema use case.
func NewDescribeSchema(artifacts port.ArtifactProvider) *DescribeSchema {
	return &DescribeSchema{artifacts: artifacts}
}

// Execute returns schema columns, the form vocabulary and model metadata.
func (uc *DescribeSchema) Execute(ctx context.Context) (dto.SchemaResponse, error) {
	bundle, err := uc.artifacts.Current(ctx)
	if err != nil {
		return dto.SchemaResponse{}, fmt.Errorf("failed to load artifacts: %w", err)
	}

	return dto.SchemaResponse{
		Columns:            bundle.Columns,
		NumericFields:      valueobject.NumericFields,
		CategoricalFields:  valueobject.CategoricalFields,
		CategoricalOptions: valueobject.CategoricalOptions(),
		ModelVersion:       bundle.ModelVersion,
		ModelType:          bundle.ModelType,
		ArtifactDigest:     bundle.Digest,
		Threshold:          bundle.Threshold,
		Source:             bundle.Source,
		LoadedAt:           bundle.LoadedAt,
	}, nil
}
