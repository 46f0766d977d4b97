package rest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/streamwise/churn/internal/application/usecase"
	"github.com/streamwise/churn/internal/domain/valueobject"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// statusFor maps use case errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, valueobject.ErrInvalidProfile):
		return http.StatusUnprocessableEntity
	case errors.Is(err, usecase.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, usecase.ErrPredictionNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeMappedError writes err with its mapped status. 5xx details are logged,
// not returned.
func writeMappedError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, op string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), op+" failed", "error", err)
		writeError(w, status, "internal error")
		return
	}
	writeError(w, status, err.Error())
}
