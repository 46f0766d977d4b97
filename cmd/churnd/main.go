package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/streamwise/churn/internal/application/usecase"
	"github.com/streamwise/churn/internal/domain/port"
	"github.com/streamwise/churn/internal/infrastructure/artifact"
	"github.com/streamwise/churn/internal/infrastructure/cache"
	"github.com/streamwise/churn/internal/infrastructure/config"
	"github.com/streamwise/churn/internal/infrastructure/kafka"
	"github.com/streamwise/churn/internal/infrastructure/memory"
	"github.com/streamwise/churn/internal/infrastructure/messaging"
	"github.com/streamwise/churn/internal/infrastructure/postgres"
	"github.com/streamwise/churn/internal/infrastructure/telemetry"
	grpcpresentation "github.com/streamwise/churn/internal/presentation/grpc"
	"github.com/streamwise/churn/internal/presentation/rest"
	"github.com/streamwise/churn/pkg/auth"
	pkgkafka "github.com/streamwise/churn/pkg/kafka"
	"github.com/streamwise/churn/pkg/observability"
	pkgpostgres "github.com/streamwise/churn/pkg/postgres"
)

const serviceName = "churn-service"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg := config.Load()

	format := cfg.LogFormat
	if format == "" && cfg.IsProduction() {
		format = "json"
	}
	logger := observability.InitLogger(observability.LogConfig{
		Level:   cfg.LogLevel,
		Format:  format,
		Service: serviceName,
	})

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("churn-service failed", "error", err)
		os.Exit(1)
	}
	logger.Info("churn-service stopped")
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting churn-service",
		"http_port", cfg.HTTPPort,
		"grpc_port", cfg.GRPCPort,
		"environment", cfg.Environment,
		"artifact_source", cfg.ArtifactSource,
		"artifact_reload", cfg.ArtifactReload,
	)

	// Tracing is optional.
	if cfg.OTLPEndpoint != "" {
		shutdown, err := observability.InitTracer(ctx, observability.TracingConfig{
			ServiceName: serviceName,
			Endpoint:    cfg.OTLPEndpoint,
			Insecure:    true,
		})
		if err != nil {
			logger.Warn("failed to initialize tracer, continuing without tracing", "error", err)
		} else {
			defer shutdown(context.Background()) //nolint:errcheck
		}
	}

	// Metrics.
	meterProvider, metricsHandler, err := observability.InitMetrics(observability.MetricsConfig{ServiceName: serviceName})
	if err != nil {
		return err
	}
	defer meterProvider.Shutdown(context.Background()) //nolint:errcheck
	recorder, err := telemetry.NewRecorder(meterProvider)
	if err != nil {
		return err
	}

	// Artifacts. A failed initial load is fatal.
	src, err := artifact.OpenSource(ctx, cfg.ArtifactSource)
	if err != nil {
		return err
	}
	store, err := artifact.NewStore(ctx, src, cfg.ArtifactReload, logger,
		artifact.WithReloadHook(recorder.ArtifactReloaded))
	if err != nil {
		src.Close()
		return err
	}
	defer store.Close()

	if cfg.ArtifactReload == config.ReloadWatch {
		watcher, err := artifact.NewWatcher(store, cfg.ArtifactSource, artifact.DefaultDebounce, logger)
		if err != nil {
			return err
		}
		watcher.Start(ctx)
		defer watcher.Stop()
	}

	checks := map[string]rest.Check{
		"artifacts": func(ctx context.Context) error {
			_, err := store.Current(ctx)
			return err
		},
	}

	// Persistence.
	var repo port.PredictionRepository
	if cfg.DatabaseURL != "" {
		if cfg.MigrateOnStart {
			if err := pkgpostgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsDir); err != nil {
				return err
			}
			logger.Info("migrations applied", "dir", cfg.MigrationsDir)
		}

		dbCtx, dbCancel := context.WithTimeout(ctx, 10*time.Second)
		pool, err := pkgpostgres.NewPool(dbCtx, pkgpostgres.Config{URL: cfg.DatabaseURL})
		dbCancel()
		if err != nil {
			return err
		}
		defer pool.Close()
		logger.Info("connected to database")

		pgRepo := postgres.NewPredictionRepository(pool)
		checks["database"] = pgRepo.Ping
		repo = pgRepo
	} else {
		logger.Warn("DATABASE_URL not set, keeping predictions in memory")
		repo = memory.NewPredictionRepository()
	}

	// Cache.
	var predictionCache port.PredictionCache = cache.NoopCache{}
	if cfg.RedisAddr != "" {
		redisCache, err := cache.NewRedisCache(ctx, cache.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.CacheTTL,
		})
		if err != nil {
			return err
		}
		defer redisCache.Close()
		checks["cache"] = redisCache.Ping
		predictionCache = redisCache
		logger.Info("prediction cache enabled", "addr", cfg.RedisAddr, "ttl", cfg.CacheTTL)
	}

	// Events.
	var publisher port.EventPublisher = messaging.NewLogPublisher(logger)
	kafkaCfg := cfg.Kafka()
	if len(cfg.KafkaBrokers) > 0 {
		producer, err := pkgkafka.NewProducer(kafkaCfg)
		if err != nil {
			return err
		}
		defer producer.Close()
		publisher = kafka.NewPublisher(producer, cfg.KafkaEventsTopic, logger)
		logger.Info("publishing events to kafka",
			"brokers", strings.Join(cfg.KafkaBrokers, ","),
			"topic", cfg.KafkaEventsTopic,
			"tls", cfg.KafkaTLS,
			"sasl", cfg.KafkaSASLEnabled,
		)
	}

	// Use cases.
	predictChurn := usecase.NewPredictChurn(store, repo, publisher, predictionCache, recorder, logger)
	getPrediction := usecase.NewGetPrediction(repo)
	listPredictions := usecase.NewListPredictions(repo)
	describeSchema := usecase.NewDescribeSchema(store)

	// Auth.
	var jwtService *auth.JWTService
	if cfg.JWTSecret != "" {
		jwtService, err = auth.NewJWTService(auth.JWTConfig{
			Secret:     cfg.JWTSecret,
			Issuer:     cfg.JWTIssuer,
			Expiration: time.Hour,
		})
		if err != nil {
			return err
		}
	} else {
		logger.Warn("JWT_SECRET not set, API authentication disabled")
	}

	// gRPC server.
	grpcHandler := grpcpresentation.NewChurnServiceHandler(predictChurn, getPrediction, logger, jwtService != nil)
	grpcServer, err := grpcpresentation.NewServer(grpcHandler, grpcpresentation.Options{
		Address:     cfg.GRPCAddress(),
		TLSCertFile: cfg.GRPCTLSCert,
		TLSKeyFile:  cfg.GRPCTLSKey,
		JWT:         jwtService,
		Reflection:  cfg.GRPCReflection,
	}, logger)
	if err != nil {
		return err
	}

	// HTTP server.
	router := rest.NewRouter(
		rest.NewFormHandler(predictChurn, describeSchema, logger),
		rest.NewAPIHandler(predictChurn, getPrediction, listPredictions, describeSchema, logger),
		rest.NewHealthHandler(logger, checks),
		rest.RouterOptions{
			Logger:    logger,
			JWT:       jwtService,
			Metrics:   metricsHandler,
			RateLimit: cfg.RateLimit,
			RateBurst: cfg.RateBurst,
		},
	)
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Start servers and workers.
	errCh := make(chan error, 3)

	go func() {
		if err := grpcServer.Start(); err != nil {
			errCh <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()

	go func() {
		logger.Info("HTTP server starting", "address", cfg.HTTPAddress())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	workerCtx, stopWorker := context.WithCancel(ctx)
	defer stopWorker()
	workerDone := make(chan struct{})
	if len(cfg.KafkaBrokers) > 0 && cfg.KafkaSnapshotTopic != "" {
		worker := kafka.NewSnapshotWorker(predictChurn, logger)
		consumer, err := pkgkafka.NewConsumer(kafkaCfg, cfg.KafkaSnapshotTopic, worker.Handle, logger)
		if err != nil {
			return err
		}
		go func() {
			defer close(workerDone)
			if err := kafka.Run(workerCtx, consumer, logger); err != nil {
				errCh <- fmt.Errorf("snapshot worker error: %w", err)
			}
		}()
	} else {
		close(workerDone)
	}

	logger.Info("churn-service started",
		"grpc_address", cfg.GRPCAddress(),
		"http_address", cfg.HTTPAddress(),
	)

	// Wait for shutdown signal.
	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case runErr = <-errCh:
		logger.Error("server error", "error", runErr)
	}

	// Graceful shutdown.
	logger.Info("shutting down churn-service")
	stopWorker()
	<-workerDone

	grpcServer.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	return runErr
}
