package grpc

import (
	"context"
	"fmt"
	"net"

	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/streamwise/churn/internal/application/dto"
	"github.com/streamwise/churn/pkg/tlsutil"
)

// ClientOptions configures Dial.
type ClientOptions struct {
	// TLS verifies the server against CAFile, or the system pool when empty.
	TLS                bool
	CAFile             string
	InsecureSkipVerify bool
	// Authority overrides the :authority header and the TLS server name.
	Authority string
	// Token is sent as a bearer token on every call when set.
	Token string
	// Dialer replaces the default TCP dialer.
	Dialer func(ctx context.Context, addr string) (net.Conn, error)
}

// Dial connects a ChurnServiceClient to target.
func Dial(target string, opts ClientOptions) (*ChurnServiceClient, *grpclib.ClientConn, error) {
	var dialOpts []grpclib.DialOption

	if opts.TLS {
		creds, err := tlsutil.ClientTLSConfig(opts.CAFile, opts.InsecureSkipVerify)
		if err != nil {
			return nil, nil, fmt.Errorf("grpc client tls: %w", err)
		}
		dialOpts = append(dialOpts, grpclib.WithTransportCredentials(creds))
	} else {
		dialOpts = append(dialOpts, grpclib.WithTransportCredentials(insecure.NewCredentials()))
	}
	if opts.Token != "" {
		dialOpts = append(dialOpts, grpclib.WithPerRPCCredentials(bearerToken{token: opts.Token, secure: opts.TLS}))
	}
	if opts.Authority != "" {
		dialOpts = append(dialOpts, grpclib.WithAuthority(opts.Authority))
	}
	if opts.Dialer != nil {
		dialOpts = append(dialOpts, grpclib.WithContextDialer(opts.Dialer))
	}

	conn, err := grpclib.NewClient(target, dialOpts...)
	if err != nil {
		return nil, nil, fmt.Errorf("dial churn service at %s: %w", target, err)
	}
	return NewChurnServiceClient(conn), conn, nil
}

// bearerToken attaches a JWT the way auth.UnaryAuthInterceptor expects it.
type bearerToken struct {
	token  string
	secure bool
}

var _ credentials.PerRPCCredentials = bearerToken{}

func (b bearerToken) GetRequestMetadata(context.Context, ...string) (map[string]string, error) {
	return map[string]string{"authorization": "Bearer " + b.token}, nil
}

func (b bearerToken) RequireTransportSecurity() bool { return b.secure }

// NewPredictRequest converts the application request into its wire form.
func NewPredictRequest(req dto.PredictChurnRequest) *PredictRequest {
	return &PredictRequest{
		SubscriberRef:      req.SubscriberRef,
		Gender:             req.Gender,
		SubscriptionType:   req.SubscriptionType,
		Region:             req.Region,
		Device:             req.Device,
		MonthlyFee:         req.MonthlyFee.String(),
		PaymentMethod:      req.PaymentMethod,
		FavoriteGenre:      req.FavoriteGenre,
		Age:                int32(req.Age),
		WatchHours:         req.WatchHours,
		LastLoginDays:      int32(req.LastLoginDays),
		NumberOfProfiles:   int32(req.NumberOfProfiles),
		AvgWatchTimePerDay: req.AvgWatchTimePerDay,
		IncludeFeatures:    req.IncludeFeatures,
	}
}
