package grpc

import (
	"context"
	"io"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/streamwise/churn/internal/application/usecase"
	"github.com/streamwise/churn/internal/infrastructure/artifact"
	"github.com/streamwise/churn/internal/infrastructure/cache"
	"github.com/streamwise/churn/internal/infrastructure/memory"
	"github.com/streamwise/churn/internal/infrastructure/messaging"
	"github.com/streamwise/churn/pkg/auth"
)

// --- Helpers ---

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func buildTestHandler(t *testing.T, authEnabled bool) *ChurnServiceHandler {
	t.Helper()
	logger := testLogger()

	store, err := artifact.NewStore(context.Background(), artifact.NewLocalSource("../../../models"), artifact.ModeOnce, logger)
	require.NoError(t, err)

	repo := memory.NewPredictionRepository()
	predict := usecase.NewPredictChurn(store, repo, messaging.NewLogPublisher(logger), cache.NoopCache{}, nil, logger)
	return NewChurnServiceHandler(predict, usecase.NewGetPrediction(repo), logger, authEnabled)
}

func defaultRequest() *PredictRequest {
	return &PredictRequest{
		SubscriberRef:      "sub-grpc",
		Age:                25,
		Gender:             "Male",
		SubscriptionType:   "Basic",
		WatchHours:         10,
		LastLoginDays:      3,
		Region:             "North",
		Device:             "Mobile",
		MonthlyFee:         "9.99",
		PaymentMethod:      "Credit Card",
		NumberOfProfiles:   1,
		AvgWatchTimePerDay: 1.5,
		FavoriteGenre:      "Action",
	}
}

func contextWithRoles(roles ...string) context.Context {
	return auth.ContextWithClaims(context.Background(), &auth.Claims{Roles: roles})
}

func requireGRPCCode(t *testing.T, err error, want codes.Code) {
	t.Helper()
	require.Error(t, err)
	st, ok := status.FromError(err)
	require.True(t, ok, "expected gRPC status error, got %v", err)
	assert.Equal(t, want, st.Code(), st.Message())
}

// --- Tests ---

func TestPredict_Success(t *testing.T) {
	h := buildTestHandler(t, false)

	resp, err := h.Predict(context.Background(), defaultRequest())
	require.NoError(t, err)
	require.NotNil(t, resp.Prediction)

	p := resp.Prediction
	assert.Equal(t, "grpc", p.Source)
	assert.Equal(t, "sub-grpc", p.SubscriberRef)
	assert.Equal(t, int32(0), p.Label)
	assert.Equal(t, "Likely to Stay", p.Headline)
	assert.Equal(t, "0.15", p.ProbabilityText)
	assert.Equal(t, "churn-lr-2024.03", p.ModelVersion)
	assert.Nil(t, p.Features)

	got, err := h.GetPrediction(context.Background(), &GetPredictionRequest{ID: p.ID})
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.Prediction.ID)
	assert.InDelta(t, p.Probability, got.Prediction.Probability, 1e-12)
}

func TestPredict_Features(t *testing.T) {
	h := buildTestHandler(t, false)
	req := defaultRequest()
	req.IncludeFeatures = true

	resp, err := h.Predict(context.Background(), req)
	require.NoError(t, err)
	assert.Len(t, resp.Prediction.Features, 21)
}

func TestPredict_InvalidArgument(t *testing.T) {
	h := buildTestHandler(t, false)

	_, err := h.Predict(context.Background(), nil)
	requireGRPCCode(t, err, codes.InvalidArgument)

	req := defaultRequest()
	req.Age = 300
	_, err = h.Predict(context.Background(), req)
	requireGRPCCode(t, err, codes.InvalidArgument)

	req = defaultRequest()
	req.MonthlyFee = "ten dollars"
	_, err = h.Predict(context.Background(), req)
	requireGRPCCode(t, err, codes.InvalidArgument)

	req = defaultRequest()
	req.MonthlyFee = ""
	_, err = h.Predict(context.Background(), req)
	requireGRPCCode(t, err, codes.InvalidArgument)
	assert.Contains(t, status.Convert(err).Message(), "monthly_fee is required")
}

func TestGetPrediction_Errors(t *testing.T) {
	h := buildTestHandler(t, false)

	_, err := h.GetPrediction(context.Background(), &GetPredictionRequest{ID: "not-a-uuid"})
	requireGRPCCode(t, err, codes.InvalidArgument)

	_, err = h.GetPrediction(context.Background(), &GetPredictionRequest{ID: uuid.NewString()})
	requireGRPCCode(t, err, codes.NotFound)
}

func TestHandler_RoleChecks(t *testing.T) {
	h := buildTestHandler(t, true)

	_, err := h.Predict(context.Background(), defaultRequest())
	requireGRPCCode(t, err, codes.Unauthenticated)

	_, err = h.Predict(contextWithRoles(auth.RoleViewer), defaultRequest())
	requireGRPCCode(t, err, codes.PermissionDenied)

	resp, err := h.Predict(contextWithRoles(auth.RoleAnalyst), defaultRequest())
	require.NoError(t, err)

	_, err = h.GetPrediction(contextWithRoles(auth.RoleViewer), &GetPredictionRequest{ID: resp.Prediction.ID})
	require.NoError(t, err)
}

func TestServer_EndToEndOverBufconn(t *testing.T) {
	jwtSvc, err := auth.NewJWTService(auth.JWTConfig{Secret: "grpc-test-secret", Issuer: "test", Expiration: time.Hour})
	require.NoError(t, err)

	srv, err := NewServer(buildTestHandler(t, true), Options{JWT: jwtSvc}, testLogger())
	require.NoError(t, err)

	lis := bufconn.Listen(1 << 20)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpclib.NewClient("passthrough:///bufnet",
		grpclib.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpclib.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	health, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{Service: serviceName})
	require.NoError(t, err, "health skips auth")
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, health.Status)

	client := NewChurnServiceClient(conn)
	_, err = client.Predict(ctx, defaultRequest())
	requireGRPCCode(t, err, codes.Unauthenticated)

	token, err := jwtSvc.GenerateToken("svc-billing", []string{auth.RoleService})
	require.NoError(t, err)
	authed := metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+token)

	resp, err := client.Predict(authed, defaultRequest())
	require.NoError(t, err)
	assert.Equal(t, "STAY", resp.Prediction.LabelText)

	got, err := client.GetPrediction(authed, &GetPredictionRequest{ID: resp.Prediction.ID})
	require.NoError(t, err)
	assert.Equal(t, resp.Prediction.ID, got.Prediction.ID)
}
