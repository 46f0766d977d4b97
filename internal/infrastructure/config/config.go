package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	pkgkafka "github.com/streamwise/churn/pkg/kafka"
)

// Artifact reload modes.
const (
	ReloadOnce   = "once"
	ReloadAlways = "always"
	ReloadWatch  = "watch"
)

// Config holds all configuration for the churn service.
type Config struct {
	HTTPPort    string
	GRPCPort    string
	Environment string
	LogLevel    string
	LogFormat   string

	ArtifactSource string
	ArtifactReload string

	DatabaseURL    string
	MigrateOnStart bool
	MigrationsDir  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	KafkaBrokers       []string
	KafkaEventsTopic   string
	KafkaSnapshotTopic string
	KafkaConsumerGroup string
	KafkaTLS           bool
	KafkaSASLEnabled   bool
	KafkaSASLMechanism string
	KafkaSASLUsername  string
	KafkaSASLPassword  string
	KafkaRetryBackoff  time.Duration

	JWTSecret string
	JWTIssuer string

	RateLimit      float64
	RateBurst      int
	OTLPEndpoint   string
	GRPCReflection bool
	GRPCTLSCert    string
	GRPCTLSKey     string

	ShutdownTimeout time.Duration
}

// Load reads configuration from environment variables with sensible
// defaults. A .env file in the working directory is applied first; it never
// overrides variables already set.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		HTTPPort:    getEnv("HTTP_PORT", "8090"),
		GRPCPort:    getEnv("GRPC_PORT", "9090"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", ""),

		ArtifactSource: getEnv("ARTIFACT_SOURCE", "./models"),
		ArtifactReload: strings.ToLower(getEnv("ARTIFACT_RELOAD", ReloadOnce)),

		DatabaseURL:    getEnv("DATABASE_URL", ""),
		MigrateOnStart: getEnvBool("MIGRATE_ON_START", false),
		MigrationsDir:  getEnv("MIGRATIONS_DIR", "./migrations"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		CacheTTL:      getEnvDuration("CACHE_TTL", 10*time.Minute),

		KafkaBrokers:       pkgkafka.ParseBrokers(getEnv("KAFKA_BROKERS", "")),
		KafkaEventsTopic:   getEnv("KAFKA_EVENTS_TOPIC", "churn.events"),
		KafkaSnapshotTopic: getEnv("KAFKA_SNAPSHOT_TOPIC", "subscriber.snapshots"),
		KafkaConsumerGroup: getEnv("KAFKA_CONSUMER_GROUP", "churn-service"),
		KafkaTLS:           getEnvBool("KAFKA_TLS", false),
		KafkaSASLEnabled:   getEnvBool("KAFKA_SASL_ENABLED", false),
		KafkaSASLMechanism: strings.ToUpper(getEnv("KAFKA_SASL_MECHANISM", "PLAIN")),
		KafkaSASLUsername:  getEnv("KAFKA_SASL_USERNAME", ""),
		KafkaSASLPassword:  getEnv("KAFKA_SASL_PASSWORD", ""),
		KafkaRetryBackoff:  getEnvDuration("KAFKA_RETRY_BACKOFF", pkgkafka.DefaultRetryBackoff),

		JWTSecret: getEnv("JWT_SECRET", ""),
		JWTIssuer: getEnv("JWT_ISSUER", "streamwise-churn"),

		RateLimit:      getEnvFloat("RATE_LIMIT", 50),
		RateBurst:      getEnvInt("RATE_BURST", 100),
		OTLPEndpoint:   getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		GRPCReflection: getEnvBool("GRPC_REFLECTION", false),
		GRPCTLSCert:    getEnv("GRPC_TLS_CERT_FILE", ""),
		GRPCTLSKey:     getEnv("GRPC_TLS_KEY_FILE", ""),

		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 15*time.Second),
	}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	for name, port := range map[string]string{"HTTP_PORT": c.HTTPPort, "GRPC_PORT": c.GRPCPort} {
		if n, err := strconv.Atoi(port); err != nil || n <= 0 || n > 65535 {
			errs = append(errs, fmt.Errorf("%s must be a port number, got %q", name, port))
		}
	}
	switch c.ArtifactReload {
	case ReloadOnce, ReloadAlways, ReloadWatch:
	default:
		errs = append(errs, fmt.Errorf("ARTIFACT_RELOAD must be once, always or watch, got %q", c.ArtifactReload))
	}
	if c.ArtifactSource == "" {
		errs = append(errs, errors.New("ARTIFACT_SOURCE is required"))
	}
	if c.ArtifactReload == ReloadWatch && strings.HasPrefix(c.ArtifactSource, "gs://") {
		errs = append(errs, errors.New("ARTIFACT_RELOAD=watch requires a local ARTIFACT_SOURCE"))
	}
	if (c.GRPCTLSCert == "") != (c.GRPCTLSKey == "") {
		errs = append(errs, errors.New("GRPC_TLS_CERT_FILE and GRPC_TLS_KEY_FILE must be set together"))
	}
	if c.KafkaSASLEnabled {
		switch c.KafkaSASLMechanism {
		case "PLAIN", "SCRAM-SHA-256", "SCRAM-SHA-512":
		default:
			errs = append(errs, fmt.Errorf("KAFKA_SASL_MECHANISM must be PLAIN, SCRAM-SHA-256 or SCRAM-SHA-512, got %q", c.KafkaSASLMechanism))
		}
		if c.KafkaSASLUsername == "" {
			errs = append(errs, errors.New("KAFKA_SASL_USERNAME is required when KAFKA_SASL_ENABLED=true"))
		}
	}
	if c.RateLimit < 0 {
		errs = append(errs, errors.New("RATE_LIMIT must not be negative"))
	}

	return errors.Join(errs...)
}

// IsProduction reports whether the service runs in production.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// GRPCAddress returns the full gRPC listen address.
func (c *Config) GRPCAddress() string {
	return fmt.Sprintf(":%s", c.GRPCPort)
}

// Kafka returns the connection settings shared by the producer and the
// snapshot consumer.
func (c *Config) Kafka() pkgkafka.Config {
	return pkgkafka.Config{
		Brokers:       c.KafkaBrokers,
		ConsumerGroup: c.KafkaConsumerGroup,
		TLS:           c.KafkaTLS,
		SASLEnabled:   c.KafkaSASLEnabled,
		SASLMechanism: c.KafkaSASLMechanism,
		SASLUsername:  c.KafkaSASLUsername,
		SASLPassword:  c.KafkaSASLPassword,
		RetryBackoff:  c.KafkaRetryBackoff,
	}
}

// HTTPAddress returns the full HTTP listen address.
func (c *Config) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.HTTPPort)
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if v, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return v
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return v
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if v, err := strconv.ParseFloat(getEnv(key, ""), 64); err == nil {
		return v
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if v, err := time.ParseDuration(getEnv(key, "")); err == nil {
		return v
	}
	return defaultValue
}
