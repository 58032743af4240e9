package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Feedback store backends.
const (
	BackendCSV      = "csv"
	BackendPostgres = "postgres"
	BackendMySQL    = "mysql"
)

type Config struct {
	// Server
	Port int    `validate:"min=1,max=65535"`
	Env  string `validate:"required"`

	// CORS
	AllowedOrigins []string

	// Static sources (.csv or .xlsx)
	BaseDataPath string `validate:"required"`
	MetaDataPath string `validate:"required"`

	// Feedback store
	FeedbackBackend string `validate:"oneof=csv postgres mysql"`
	FeedbackCSVPath string `validate:"required_if=FeedbackBackend csv"`
	PostgresURL     string `validate:"required_if=FeedbackBackend postgres"`
	MySQLDSN        string `validate:"required_if=FeedbackBackend mysql"`

	// Optional infrastructure
	RedisURL      string
	ClickHouseURL string

	// Artifacts
	ModelDir           string `validate:"required"`
	TrainingLogPath    string `validate:"required"`
	ChartDir           string
	DiagnosticsEnabled bool

	// Training queue
	TrainTimeout   time.Duration `validate:"gt=0"`
	TrainQueueSize int           `validate:"min=1"`

	// Prediction cache
	PredictionCacheTTL time.Duration `validate:"gt=0"`

	// Classifier
	RandomSeed   int64
	TestFraction float64 `validate:"gt=0,lt=1"`
	CVFolds      int     `validate:"min=2"`
}

// Load loads configuration from environment variables.
// It returns an error if the resulting configuration is invalid.
func Load() (*Config, error) {
	cfg := &Config{
		Port: getEnvInt("PORT", 8080),
		Env:  getEnv("ENV", "development"),

		BaseDataPath: getEnv("BASE_DATA_PATH", "data/base.csv"),
		MetaDataPath: getEnv("META_DATA_PATH", "data/meta.csv"),

		FeedbackBackend: strings.ToLower(getEnv("FEEDBACK_BACKEND", BackendCSV)),
		FeedbackCSVPath: getEnv("FEEDBACK_CSV_PATH", "data/feedback.csv"),
		PostgresURL:     os.Getenv("POSTGRES_URL"),
		MySQLDSN:        os.Getenv("MYSQL_DSN"),

		RedisURL:      os.Getenv("REDIS_URL"),
		ClickHouseURL: os.Getenv("CLICKHOUSE_URL"),

		ModelDir:           getEnv("MODEL_DIR", "models"),
		TrainingLogPath:    getEnv("TRAINING_LOG_PATH", "models/training_log.csv"),
		ChartDir:           getEnv("CHART_DIR", "charts"),
		DiagnosticsEnabled: getEnvBool("DIAGNOSTICS_ENABLED", true),

		TrainTimeout:   getEnvDuration("TRAIN_TIMEOUT", 10*time.Minute),
		TrainQueueSize: getEnvInt("TRAIN_QUEUE_SIZE", 4),

		PredictionCacheTTL: getEnvDuration("PREDICTION_CACHE_TTL", 10*time.Minute),

		RandomSeed:   int64(getEnvInt("RANDOM_SEED", 42)),
		TestFraction: getEnvFloat("TEST_FRACTION", 0.2),
		CVFolds:      getEnvInt("CV_FOLDS", 3),
	}

	// CORS
	origins := getEnv("ALLOWED_ORIGINS", "http://localhost:3000")
	for _, o := range strings.Split(origins, ",") {
		if trimmed := strings.TrimSpace(o); trimmed != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, trimmed)
		}
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// IsProduction reports whether ENV selects production logging.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
