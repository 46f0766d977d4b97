package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/streamwise/churn/internal/application/usecase"
	"github.com/streamwise/churn/internal/infrastructure/artifact"
	"github.com/streamwise/churn/internal/infrastructure/cache"
	"github.com/streamwise/churn/internal/infrastructure/config"
	"github.com/streamwise/churn/internal/infrastructure/memory"
	"github.com/streamwise/churn/internal/infrastructure/messaging"
	"github.com/streamwise/churn/pkg/observability"
)

type rootOptions struct {
	artifacts string
	logLevel  string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "churnctl",
		Short: "Score streaming subscribers for churn risk",
		Long: `churnctl loads the scaler, feature schema and classifier from an
artifact directory (or gs:// prefix) and scores subscriber profiles
without a running churn-service.

Available subcommands:
  predict - Score a single profile given as flags, locally or via --server
  batch   - Score JSON lines or CSV records
  schema  - Print the loaded feature schema
  token   - Issue a JWT for the service API
  certs   - Generate a self-signed TLS pair for gRPC`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVarP(&opts.artifacts, "artifacts", "a", "models", "Artifact directory or gs://bucket/prefix")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	root.AddCommand(
		newPredictCmd(opts),
		newBatchCmd(opts),
		newSchemaCmd(opts),
		newTokenCmd(),
		newCertsCmd(),
	)
	return root
}

// runtime is the in-process use case graph used by the scoring commands.
type runtime struct {
	store    *artifact.Store
	predict  *usecase.PredictChurn
	describe *usecase.DescribeSchema
}

func (o *rootOptions) logger(w io.Writer) *slog.Logger {
	return observability.InitLogger(observability.LogConfig{
		Output:  w,
		Level:   o.logLevel,
		Service: "churnctl",
	})
}

func (o *rootOptions) open(ctx context.Context, logger *slog.Logger) (*runtime, error) {
	src, err := artifact.OpenSource(ctx, o.artifacts)
	if err != nil {
		return nil, err
	}
	store, err := artifact.NewStore(ctx, src, config.ReloadOnce, logger)
	if err != nil {
		src.Close()
		return nil, err
	}

	repo := memory.NewPredictionRepository()
	return &runtime{
		store:    store,
		predict:  usecase.NewPredictChurn(store, repo, messaging.NewLogPublisher(logger), cache.NoopCache{}, nil, logger),
		describe: usecase.NewDescribeSchema(store),
	}, nil
}

func (r *runtime) Close() error { return r.store.Close() }
