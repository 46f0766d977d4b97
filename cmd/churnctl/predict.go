package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/streamwise/churn/internal/application/dto"
	grpcpresentation "github.com/streamwise/churn/internal/presentation/grpc"
)

// remoteOptions points predict at a running churn-service over gRPC.
type remoteOptions struct {
	server string
	client grpcpresentation.ClientOptions
}

func newPredictCmd(opts *rootOptions) *cobra.Command {
	req := dto.DefaultPredictChurnRequest()
	var (
		fee    string
		output string
		remote remoteOptions
	)

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Score a single subscriber profile",
		Long: `Score one profile. Unset flags take the form defaults, so
"churnctl predict --last-login-days 300" varies a single attribute.

With --server the profile is scored by a running churn-service over gRPC
instead of the local artifacts.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			monthlyFee, err := decimal.NewFromString(fee)
			if err != nil {
				return fmt.Errorf("invalid --monthly-fee %q: %w", fee, err)
			}
			req.MonthlyFee = monthlyFee
			req.Source = "cli"

			ctx := cmd.Context()
			if remote.server != "" {
				return predictRemote(ctx, cmd.OutOrStdout(), remote, req, output)
			}

			rt, err := opts.open(ctx, opts.logger(cmd.ErrOrStderr()))
			if err != nil {
				return err
			}
			defer rt.Close()

			resp, err := rt.predict.Execute(ctx, req)
			if err != nil {
				return err
			}
			return printPrediction(cmd.OutOrStdout(), resp, output)
		},
	}

	f := cmd.Flags()
	f.IntVar(&req.Age, "age", req.Age, "Age (0-120)")
	f.StringVar(&req.Gender, "gender", req.Gender, "Gender")
	f.StringVar(&req.SubscriptionType, "subscription-type", req.SubscriptionType, "Subscription type")
	f.Float64Var(&req.WatchHours, "watch-hours", req.WatchHours, "Watch hours last month (0-200)")
	f.IntVar(&req.LastLoginDays, "last-login-days", req.LastLoginDays, "Days since last login (0-365)")
	f.StringVar(&req.Region, "region", req.Region, "Region")
	f.StringVar(&req.Device, "device", req.Device, "Device")
	f.StringVar(&fee, "monthly-fee", req.MonthlyFee.StringFixed(2), "Monthly fee in dollars (0-100)")
	f.StringVar(&req.PaymentMethod, "payment-method", req.PaymentMethod, "Payment method")
	f.IntVar(&req.NumberOfProfiles, "number-of-profiles", req.NumberOfProfiles, "Number of profiles (1-10)")
	f.Float64Var(&req.AvgWatchTimePerDay, "avg-watch-time-per-day", req.AvgWatchTimePerDay, "Average watch hours per day (0-24)")
	f.StringVar(&req.FavoriteGenre, "favorite-genre", req.FavoriteGenre, "Favorite genre")
	f.StringVar(&req.SubscriberRef, "subscriber-ref", "", "Optional subscriber reference")
	f.BoolVar(&req.IncludeFeatures, "features", false, "Include the encoded feature vector")
	f.StringVarP(&output, "output", "o", "text", "Output format (text, json)")
	f.StringVar(&remote.server, "server", "", "Score through a churn-service gRPC address instead of local artifacts")
	f.BoolVar(&remote.client.TLS, "tls", false, "Use TLS for --server")
	f.StringVar(&remote.client.CAFile, "ca-file", "", "CA bundle for --tls (default system pool)")
	f.BoolVar(&remote.client.InsecureSkipVerify, "insecure-skip-verify", false, "Skip server certificate verification")
	f.StringVar(&remote.client.Token, "token", os.Getenv("CHURN_TOKEN"), "Bearer token for --server (default $CHURN_TOKEN)")

	return cmd
}

func printPrediction(w io.Writer, resp dto.PredictionResponse, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	case "text":
		fmt.Fprintln(w, resp.Headline)
		fmt.Fprintf(w, "Probability: %s\n", resp.ProbabilityText)
		fmt.Fprintf(w, "Risk band:   %s\n", resp.RiskBand)
		fmt.Fprintf(w, "Model:       %s\n", resp.ModelVersion)
		return nil
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func predictRemote(ctx context.Context, w io.Writer, remote remoteOptions, req dto.PredictChurnRequest, format string) error {
	client, conn, err := grpcpresentation.Dial(remote.server, remote.client)
	if err != nil {
		return err
	}
	defer conn.Close()

	resp, err := client.Predict(ctx, grpcpresentation.NewPredictRequest(req))
	if err != nil {
		return err
	}
	p := resp.Prediction
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(p)
	}
	return printPrediction(w, dto.PredictionResponse{
		Headline:        p.Headline,
		ProbabilityText: p.ProbabilityText,
		RiskBand:        p.RiskBand,
		ModelVersion:    p.ModelVersion,
	}, format)
}
