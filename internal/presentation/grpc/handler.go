package grpc

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/streamwise/churn/internal/application/dto"
	"github.com/streamwise/churn/internal/application/usecase"
	"github.com/streamwise/churn/internal/domain/model"
	"github.com/streamwise/churn/internal/domain/valueobject"
	"github.com/streamwise/churn/pkg/auth"
)

// Compile-time assertion that ChurnServiceHandler implements ChurnServiceServer.
var _ ChurnServiceServer = (*ChurnServiceHandler)(nil)

// ChurnServiceHandler implements the gRPC ChurnServiceServer interface.
type ChurnServiceHandler struct {
	UnimplementedChurnServiceServer
	predictChurn  *usecase.PredictChurn
	getPrediction *usecase.GetPrediction
	logger        *slog.Logger
	authEnabled   bool
}

// NewChurnServiceHandler creates a new gRPC handler. With authEnabled the
// caller's claims must carry a suitable role.
func NewChurnServiceHandler(
	predictChurn *usecase.PredictChurn,
	getPrediction *usecase.GetPrediction,
	logger *slog.Logger,
	authEnabled bool,
) *ChurnServiceHandler {
	return &ChurnServiceHandler{
		predictChurn:  predictChurn,
		getPrediction: getPrediction,
		logger:        logger,
		authEnabled:   authEnabled,
	}
}

// Proto-aligned request/response message types.

// PredictRequest represents the proto PredictRequest message.
type PredictRequest struct {
	SubscriberRef      string  `json:"subscriber_ref"`
	Gender             string  `json:"gender"`
	SubscriptionType   string  `json:"subscription_type"`
	Region             string  `json:"region"`
	Device             string  `json:"device"`
	MonthlyFee         string  `json:"monthly_fee"`
	PaymentMethod      string  `json:"payment_method"`
	FavoriteGenre      string  `json:"favorite_genre"`
	Age                int32   `json:"age"`
	WatchHours         float64 `json:"watch_hours"`
	LastLoginDays      int32   `json:"last_login_days"`
	NumberOfProfiles   int32   `json:"number_of_profiles"`
	AvgWatchTimePerDay float64 `json:"avg_watch_time_per_day"`
	IncludeFeatures    bool    `json:"include_features"`
}

// PredictionMsg represents the proto Prediction message.
type PredictionMsg struct {
	ID              string             `json:"id"`
	SubscriberRef   string             `json:"subscriber_ref"`
	Label           int32              `json:"label"`
	LabelText       string             `json:"label_text"`
	Headline        string             `json:"headline"`
	Probability     float64            `json:"probability"`
	ProbabilityText string             `json:"probability_text"`
	RiskBand        string             `json:"risk_band"`
	ModelVersion    string             `json:"model_version"`
	Source          string             `json:"source"`
	PredictedAt     string             `json:"predicted_at"`
	Cached          bool               `json:"cached"`
	Features        map[string]float64 `json:"features,omitempty"`
}

// PredictResponse represents the proto PredictResponse message.
type PredictResponse struct {
	Prediction *PredictionMsg `json:"prediction"`
}

// GetPredictionRequest represents the proto GetPredictionRequest message.
type GetPredictionRequest struct {
	ID string `json:"id"`
}

// GetPredictionResponse represents the proto GetPredictionResponse message.
type GetPredictionResponse struct {
	Prediction *PredictionMsg `json:"prediction"`
}

// Predict scores a subscriber profile.
func (h *ChurnServiceHandler) Predict(ctx context.Context, req *PredictRequest) (*PredictResponse, error) {
	if err := h.requireRole(ctx, auth.RoleAdmin, auth.RoleAnalyst, auth.RoleService); err != nil {
		return nil, err
	}
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	if req.MonthlyFee == "" {
		return nil, status.Error(codes.InvalidArgument, "monthly_fee is required")
	}
	fee, err := decimal.NewFromString(req.MonthlyFee)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid monthly_fee: %v", err)
	}

	result, err := h.predictChurn.Execute(ctx, dto.PredictChurnRequest{
		SubscriberRef:      req.SubscriberRef,
		Source:             model.SourceGRPC,
		Age:                int(req.Age),
		Gender:             req.Gender,
		SubscriptionType:   req.SubscriptionType,
		WatchHours:         req.WatchHours,
		LastLoginDays:      int(req.LastLoginDays),
		Region:             req.Region,
		Device:             req.Device,
		MonthlyFee:         fee,
		PaymentMethod:      req.PaymentMethod,
		NumberOfProfiles:   int(req.NumberOfProfiles),
		AvgWatchTimePerDay: req.AvgWatchTimePerDay,
		FavoriteGenre:      req.FavoriteGenre,
		IncludeFeatures:    req.IncludeFeatures,
	})
	if err != nil {
		return nil, h.toStatus("predict", err)
	}

	return &PredictResponse{Prediction: toMsg(result)}, nil
}

// GetPrediction returns a stored prediction.
func (h *ChurnServiceHandler) GetPrediction(ctx context.Context, req *GetPredictionRequest) (*GetPredictionResponse, error) {
	if err := h.requireRole(ctx, auth.RoleAdmin, auth.RoleAnalyst, auth.RoleService, auth.RoleViewer); err != nil {
		return nil, err
	}
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	id, err := uuid.Parse(req.ID)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid id: %v", err)
	}

	result, err := h.getPrediction.Execute(ctx, id)
	if err != nil {
		return nil, h.toStatus("get prediction", err)
	}
	return &GetPredictionResponse{Prediction: toMsg(result)}, nil
}

func (h *ChurnServiceHandler) requireRole(ctx context.Context, roles ...string) error {
	if !h.authEnabled {
		return nil
	}
	return auth.RequireRole(ctx, roles...)
}

// toStatus maps use case errors onto gRPC codes. Internal details stay in the log.
func (h *ChurnServiceHandler) toStatus(op string, err error) error {
	switch {
	case errors.Is(err, valueobject.ErrInvalidProfile), errors.Is(err, usecase.ErrInvalidRequest):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, usecase.ErrPredictionNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "request canceled")
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "deadline exceeded")
	default:
		h.logger.Error("grpc "+op+" failed", slog.String("error", err.Error()))
		return status.Error(codes.Internal, "internal error")
	}
}

func toMsg(r dto.PredictionResponse) *PredictionMsg {
	return &PredictionMsg{
		ID:              r.ID.String(),
		SubscriberRef:   r.SubscriberRef,
		Label:           int32(r.Label),
		LabelText:       r.LabelText,
		Headline:        r.Headline,
		Probability:     r.Probability,
		ProbabilityText: r.ProbabilityText,
		RiskBand:        r.RiskBand,
		ModelVersion:    r.ModelVersion,
		Source:          r.Source,
		PredictedAt:     r.PredictedAt.Format("2006-01-02T15:04:05.000Z07:00"),
		Cached:          r.Cached,
		Features:        r.Features,
	}
}
