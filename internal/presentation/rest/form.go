package rest

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/shopspring/decimal"

	"github.com/streamwise/churn/internal/application/dto"
	"github.com/streamwise/churn/internal/application/usecase"
	"github.com/streamwise/churn/internal/domain/model"
	"github.com/streamwise/churn/internal/domain/valueobject"
)

//go:embed templates/index.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// formPage is the data rendered by index.html.
type formPage struct {
	Form         dto.PredictChurnRequest
	Options      map[string][]string
	Ranges       map[string]valueobject.FieldRange
	Result       *dto.PredictionResponse
	Error        string
	ModelVersion string
}

// FormHandler serves the interactive subscriber form.
type FormHandler struct {
	predictChurn   *usecase.PredictChurn
	describeSchema *usecase.DescribeSchema
	logger         *slog.Logger

	// modelVersion is the last version seen by a describe or a prediction.
	// Rendering reads it so a page never triggers a second artifact load.
	modelVersion atomic.Value
}

// NewFormHandler creates the form handler.
func NewFormHandler(predictChurn *usecase.PredictChurn, describeSchema *usecase.DescribeSchema, logger *slog.Logger) *FormHandler {
	return &FormHandler{predictChurn: predictChurn, describeSchema: describeSchema, logger: logger}
}

// Index renders the form with its default values.
func (h *FormHandler) Index(w http.ResponseWriter, r *http.Request) {
	if schema, err := h.describeSchema.Execute(r.Context()); err == nil {
		h.modelVersion.Store(schema.ModelVersion)
	} else {
		h.logger.WarnContext(r.Context(), "describe schema for form", "error", err)
	}
	h.render(w, r, http.StatusOK, h.page(dto.DefaultPredictChurnRequest()))
}

// Predict scores the submitted form and re-renders it with the result card.
func (h *FormHandler) Predict(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	req, err := parseForm(r)
	if err != nil {
		page := h.page(req)
		page.Error = err.Error()
		h.render(w, r, http.StatusUnprocessableEntity, page)
		return
	}
	req.Source = model.SourceForm

	resp, err := h.predictChurn.Execute(r.Context(), req)
	page := h.page(req)
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			h.logger.ErrorContext(r.Context(), "form prediction failed", "error", err)
			page.Error = "Prediction failed. Please try again."
		} else {
			page.Error = err.Error()
		}
		h.render(w, r, status, page)
		return
	}
	h.modelVersion.Store(resp.ModelVersion)
	page.Result = &resp
	page.ModelVersion = resp.ModelVersion
	h.render(w, r, http.StatusOK, page)
}

func (h *FormHandler) page(form dto.PredictChurnRequest) formPage {
	version, _ := h.modelVersion.Load().(string)
	return formPage{
		Form:         form,
		Options:      valueobject.CategoricalOptions(),
		Ranges:       valueobject.NumericRanges,
		ModelVersion: version,
	}
}

func (h *FormHandler) render(w http.ResponseWriter, r *http.Request, status int, page formPage) {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, page); err != nil {
		h.logger.ErrorContext(r.Context(), "render form", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w) //nolint:errcheck
}

// parseForm reads the submitted fields. Missing fields keep their defaults;
// the returned request always carries what could be parsed so the form can
// be re-rendered.
func parseForm(r *http.Request) (dto.PredictChurnRequest, error) {
	req := dto.DefaultPredictChurnRequest()
	if err := r.ParseForm(); err != nil {
		return req, fmt.Errorf("%w: %v", valueobject.ErrInvalidProfile, err)
	}

	var errs []error
	str := func(name string, dst *string) {
		if v, ok := r.PostForm[name]; ok {
			*dst = strings.TrimSpace(v[0])
		}
	}
	integer := func(name string, dst *int) {
		raw := strings.TrimSpace(r.PostForm.Get(name))
		if raw == "" {
			return
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s must be a whole number", name))
			return
		}
		*dst = v
	}
	float := func(name string, dst *float64) {
		raw := strings.TrimSpace(r.PostForm.Get(name))
		if raw == "" {
			return
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s must be a number", name))
			return
		}
		*dst = v
	}

	integer(valueobject.FieldAge, &req.Age)
	str(valueobject.FieldGender, &req.Gender)
	str(valueobject.FieldSubscriptionType, &req.SubscriptionType)
	float(valueobject.FieldWatchHours, &req.WatchHours)
	integer(valueobject.FieldLastLoginDays, &req.LastLoginDays)
	str(valueobject.FieldRegion, &req.Region)
	str(valueobject.FieldDevice, &req.Device)
	if raw := strings.TrimSpace(r.PostForm.Get(valueobject.FieldMonthlyFee)); raw != "" {
		fee, err := decimal.NewFromString(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s must be a number", valueobject.FieldMonthlyFee))
		} else {
			req.MonthlyFee = fee
		}
	}
	str(valueobject.FieldPaymentMethod, &req.PaymentMethod)
	integer(valueobject.FieldNumberOfProfiles, &req.NumberOfProfiles)
	float(valueobject.FieldAvgWatchTimePerDay, &req.AvgWatchTimePerDay)
	str(valueobject.FieldFavoriteGenre, &req.FavoriteGenre)
	str("subscriber_ref", &req.SubscriberRef)

	if len(errs) > 0 {
		return req, fmt.Errorf("%w: %w", valueobject.ErrInvalidProfile, errors.Join(errs...))
	}
	return req, nil
}
