package dto

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/streamwise/churn/internal/domain/model"
	"github.com/streamwise/churn/internal/domain/valueobject"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// PredictChurnRequest is the input DTO for the PredictChurn use case.
type PredictChurnRequest struct {
	MonthlyFee         decimal.Decimal `json:"monthly_fee"`
	SubscriberRef      string          `json:"subscriber_ref,omitempty" validate:"max=128"`
	Source             string          `json:"source,omitempty" validate:"omitempty,oneof=form api grpc stream cli"`
	Gender             string          `json:"gender" validate:"required"`
	SubscriptionType   string          `json:"subscription_type" validate:"required"`
	Region             string          `json:"region" validate:"required"`
	Device             string          `json:"device" validate:"required"`
	PaymentMethod      string          `json:"payment_method" validate:"required"`
	FavoriteGenre      string          `json:"favorite_genre" validate:"required"`
	WatchHours         float64         `json:"watch_hours" validate:"gte=0,lte=200"`
	AvgWatchTimePerDay float64         `json:"avg_watch_time_per_day" validate:"gte=0,lte=24"`
	Age                int             `json:"age" validate:"gte=0,lte=120"`
	LastLoginDays      int             `json:"last_login_days" validate:"gte=0,lte=365"`
	NumberOfProfiles   int             `json:"number_of_profiles" validate:"gte=1,lte=10"`
	IncludeFeatures    bool            `json:"include_features,omitempty"`
}

// PredictChurnPayload is the JSON body external callers send. It shadows
// MonthlyFee with a pointer so an absent fee is rejected instead of being
// scored as 0.00.
type PredictChurnPayload struct {
	PredictChurnRequest
	MonthlyFee *decimal.Decimal `json:"monthly_fee"`
}

// Request returns the request DTO, failing with ErrInvalidProfile when
// monthly_fee was not supplied.
func (p PredictChurnPayload) Request() (PredictChurnRequest, error) {
	req := p.PredictChurnRequest
	if p.MonthlyFee == nil {
		return req, fmt.Errorf("%w: monthly_fee is required", valueobject.ErrInvalidProfile)
	}
	req.MonthlyFee = *p.MonthlyFee
	return req, nil
}

// Validate checks struct tags and returns an error wrapping
// valueobject.ErrInvalidProfile that names every failing field.
func (r PredictChurnRequest) Validate() error {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", valueobject.ErrInvalidProfile, err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describeFieldError(fe))
	}
	return fmt.Errorf("%w: %s", valueobject.ErrInvalidProfile, strings.Join(msgs, "; "))
}

func describeFieldError(fe validator.FieldError) string {
	name := jsonName(fe.StructField())
	switch fe.Tag() {
	case "required":
		return name + " is required"
	case "gte":
		return fmt.Sprintf("%s must be >= %s", name, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be <= %s", name, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", name, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", name, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s", name, fe.Tag())
	}
}

// jsonName converts a Go field name to its snake_case JSON key.
func jsonName(field string) string {
	var b strings.Builder
	for i, r := range field {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Attributes maps the request onto raw profile attributes.
func (r PredictChurnRequest) Attributes() valueobject.ProfileAttributes {
	return valueobject.ProfileAttributes{
		Age:                r.Age,
		Gender:             r.Gender,
		SubscriptionType:   r.SubscriptionType,
		WatchHours:         r.WatchHours,
		LastLoginDays:      r.LastLoginDays,
		Region:             r.Region,
		Device:             r.Device,
		MonthlyFee:         r.MonthlyFee,
		PaymentMethod:      r.PaymentMethod,
		NumberOfProfiles:   r.NumberOfProfiles,
		AvgWatchTimePerDay: r.AvgWatchTimePerDay,
		FavoriteGenre:      r.FavoriteGenre,
	}
}

// DefaultPredictChurnRequest returns the form's initial values.
func DefaultPredictChurnRequest() PredictChurnRequest {
	return RequestFromAttributes(valueobject.DefaultAttributes())
}

// RequestFromAttributes is the inverse of Attributes.
func RequestFromAttributes(a valueobject.ProfileAttributes) PredictChurnRequest {
	return PredictChurnRequest{
		Age:                a.Age,
		Gender:             a.Gender,
		SubscriptionType:   a.SubscriptionType,
		WatchHours:         a.WatchHours,
		LastLoginDays:      a.LastLoginDays,
		Region:             a.Region,
		Device:             a.Device,
		MonthlyFee:         a.MonthlyFee,
		PaymentMethod:      a.PaymentMethod,
		NumberOfProfiles:   a.NumberOfProfiles,
		AvgWatchTimePerDay: a.AvgWatchTimePerDay,
		FavoriteGenre:      a.FavoriteGenre,
	}
}

// PredictionResponse is the output DTO for a recorded prediction.
type PredictionResponse struct {
	PredictedAt     time.Time                   `json:"predicted_at"`
	Features        map[string]float64          `json:"features,omitempty"`
	Encoding        []valueobject.FieldEncoding `json:"encoding,omitempty"`
	Profile         *PredictChurnRequest        `json:"profile,omitempty"`
	SubscriberRef   string                      `json:"subscriber_ref,omitempty"`
	LabelText       string                      `json:"label_text"`
	Headline        string                      `json:"headline"`
	ProbabilityText string                      `json:"probability_text"`
	RiskBand        string                      `json:"risk_band"`
	ModelVersion    string                      `json:"model_version"`
	Source          string                      `json:"source"`
	Probability     float64                     `json:"probability"`
	Label           int                         `json:"label"`
	ID              uuid.UUID                   `json:"id"`
	Cached          bool                        `json:"cached,omitempty"`
}

// FromModel maps a domain model to the response DTO.
func FromModel(p *model.ChurnPrediction) PredictionResponse {
	profile := RequestFromAttributes(p.Profile().Attributes())
	return PredictionResponse{
		ID:              p.ID(),
		SubscriberRef:   p.SubscriberRef(),
		Label:           p.Label().Int(),
		LabelText:       p.Label().String(),
		Headline:        p.Label().Headline(),
		Probability:     p.Probability(),
		ProbabilityText: p.ProbabilityText(),
		RiskBand:        p.RiskBand().String(),
		ModelVersion:    p.ModelVersion(),
		Source:          p.Source(),
		PredictedAt:     p.PredictedAt(),
		Profile:         &profile,
	}
}

// PredictionListResponse wraps a page of predictions.
type PredictionListResponse struct {
	SubscriberRef string               `json:"subscriber_ref"`
	Predictions   []PredictionResponse `json:"predictions"`
	Limit         int                  `json:"limit"`
	Offset        int                  `json:"offset"`
}

// SchemaResponse describes the loaded artifacts.
type SchemaResponse struct {
	LoadedAt           time.Time           `json:"loaded_at"`
	CategoricalOptions map[string][]string `json:"categorical_options"`
	ModelVersion       string              `json:"model_version"`
	ModelType          string              `json:"model_type"`
	ArtifactDigest     string              `json:"artifact_digest"`
	Source             string              `json:"source"`
	Columns            []string            `json:"columns"`
	NumericFields      []string            `json:"numeric_fields"`
	CategoricalFields  []string            `json:"categorical_fields"`
	Threshold          float64             `json:"threshold"`
}
