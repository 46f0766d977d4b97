package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/streamwise/churn/internal/application/dto"
	"github.com/streamwise/churn/internal/application/usecase"
	"github.com/streamwise/churn/internal/domain/model"
)

const maxBodyBytes = 64 << 10

// APIHandler serves the JSON prediction API.
type APIHandler struct {
	predictChurn    *usecase.PredictChurn
	getPrediction   *usecase.GetPrediction
	listPredictions *usecase.ListPredictions
	describeSchema  *usecase.DescribeSchema
	logger          *slog.Logger
}

// NewAPIHandler creates the JSON API handler.
func NewAPIHandler(
	predictChurn *usecase.PredictChurn,
	getPrediction *usecase.GetPrediction,
	listPredictions *usecase.ListPredictions,
	describeSchema *usecase.DescribeSchema,
	logger *slog.Logger,
) *APIHandler {
	return &APIHandler{
		predictChurn:    predictChurn,
		getPrediction:   getPrediction,
		listPredictions: listPredictions,
		describeSchema:  describeSchema,
		logger:          logger,
	}
}

// Routes mounts the API on r.
func (h *APIHandler) Routes(r chi.Router) {
	r.Post("/predictions", h.createPrediction)
	r.Get("/predictions/{id}", h.getPredictionByID)
	r.Get("/subscribers/{ref}/predictions", h.listBySubscriber)
	r.Get("/schema", h.schema)
}

func (h *APIHandler) createPrediction(w http.ResponseWriter, r *http.Request) {
	var payload dto.PredictChurnPayload
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	req, err := payload.Request()
	if err != nil {
		writeMappedError(w, r, h.logger, "create prediction", err)
		return
	}
	if req.Source == "" {
		req.Source = model.SourceAPI
	}

	resp, err := h.predictChurn.Execute(r.Context(), req)
	if err != nil {
		writeMappedError(w, r, h.logger, "create prediction", err)
		return
	}
	w.Header().Set("Location", "/api/v1/predictions/"+resp.ID.String())
	writeJSON(w, http.StatusCreated, resp)
}

func (h *APIHandler) getPredictionByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid prediction id")
		return
	}

	resp, err := h.getPrediction.Execute(r.Context(), id)
	if err != nil {
		writeMappedError(w, r, h.logger, "get prediction", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *APIHandler) listBySubscriber(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.listPredictions.Execute(r.Context(), chi.URLParam(r, "ref"), limit, offset)
	if err != nil {
		writeMappedError(w, r, h.logger, "list predictions", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *APIHandler) schema(w http.ResponseWriter, r *http.Request) {
	resp, err := h.describeSchema.Execute(r.Context())
	if err != nil {
		writeMappedError(w, r, h.logger, "describe schema", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New("invalid " + name)
	}
	return v, nil
}
