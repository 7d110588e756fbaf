package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/fx"
)

// Config carries runtime settings for the netkamba back office.
type Config struct {
	Environment string

	HTTPAddr string

	// DatabasePath is the SQLite file. The data directory is created on
	// startup when missing.
	DatabasePath string

	SweepInterval   time.Duration
	GracePeriodDays int
	SweepBatchSize  int

	TracingEnabled  bool
	TracingEndpoint string
	TracingProtocol string
	SamplingRatio   float64
	ServiceVersion  string

	// SeedDemo loads a handful of demo customers on startup when the
	// database is empty. Development only.
	SeedDemo bool
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// Load reads configuration from the environment with local-dev defaults.
func Load() Config {
	return Config{
		Environment:  getEnv("NETKAMBA_ENV", "development"),
		HTTPAddr:     getEnv("NETKAMBA_HTTP_ADDR", ":8080"),
		DatabasePath: getEnv("NETKAMBA_DB_PATH", "data/netkamba.db"),

		SweepInterval:   getDuration("NETKAMBA_SWEEP_INTERVAL", time.Minute),
		GracePeriodDays: getInt("NETKAMBA_GRACE_PERIOD_DAYS", 15),
		SweepBatchSize:  getInt("NETKAMBA_SWEEP_BATCH_SIZE", 200),

		TracingEnabled:  getBool("NETKAMBA_TRACING_ENABLED", false),
		TracingEndpoint: getEnv("NETKAMBA_TRACING_ENDPOINT", ""),
		TracingProtocol: getEnv("NETKAMBA_TRACING_PROTOCOL", "grpc"),
		SamplingRatio:   getFloat("NETKAMBA_TRACING_SAMPLING_RATIO", 0.1),
		ServiceVersion:  getEnv("NETKAMBA_VERSION", "dev"),

		SeedDemo: getBool("NETKAMBA_SEED_DEMO", false),
	}
}

var Module = fx.Module("config",
	fx.Provide(Load),
)

func getEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if value, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key))); err == nil {
		return value
	}
	return fallback
}

func getFloat(key string, fallback float64) float64 {
	if value, err := strconv.ParseFloat(strings.TrimSpace(os.Getenv(key)), 64); err == nil {
		return value
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if value, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key))); err == nil {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if value, err := time.ParseDuration(strings.TrimSpace(os.Getenv(key))); err == nil && value > 0 {
		return value
	}
	return fallback
}
