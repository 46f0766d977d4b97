package usecase

import "errors"

var (
	// ErrPredictionNotFound is returned when a prediction id does not exist.
	ErrPredictionNotFound = errors.New("prediction not found")

	// ErrInvalidRequest is returned for malformed lookups.
	ErrInvalidRequest = errors.New("invalid request")
)
