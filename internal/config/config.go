package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port         string
	DBUrl        string
	JWTSecret    string
	AppEnv       string
	GymAPIURL    string
	GymAPIUser   string
	GymAPIPass   string
	RedisAddr    string
	RedisPass    string
	RedisDB      int
	NatsURL      string
	OtelEndpoint string

	HTTPRetryDelay         time.Duration
	PaymentPollInterval    time.Duration
	PaymentPollTimeout     time.Duration
	PaymentPollMaxAttempts int
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found")
	}

	jwtSecret, exists := os.LookupEnv("JWT_SECRET")
	if !exists || jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}
	maxAttempts, err := getEnvInt("PAYMENT_POLL_MAX_ATTEMPTS", 60)
	if err != nil {
		return nil, err
	}
	retryDelay, err := getEnvDuration("HTTP_RETRY_DELAY", 300*time.Millisecond)
	if err != nil {
		return nil, err
	}
	pollInterval, err := getEnvDuration("PAYMENT_POLL_INTERVAL", 2*time.Second)
	if err != nil {
		return nil, err
	}
	pollTimeout, err := getEnvDuration("PAYMENT_POLL_TIMEOUT", 2*time.Minute)
	if err != nil {
		return nil, err
	}

	return &Config{
		Port:                   getEnv("PORT", "8080"),
		DBUrl:                  getEnv("DB_URL", ""),
		JWTSecret:              jwtSecret,
		AppEnv:                 normalizeEnv(getEnv("APP_ENV", "production")),
		GymAPIURL:              strings.TrimRight(getEnv("GYM_API_BASE_URL", ""), "/"),
		GymAPIUser:             getEnv("GYM_API_USERNAME", ""),
		GymAPIPass:             getEnv("GYM_API_PASSWORD", ""),
		RedisAddr:              getEnv("REDIS_ADDR", ""),
		RedisPass:              getEnv("REDIS_PASSWORD", ""),
		RedisDB:                redisDB,
		NatsURL:                getEnv("NATS_URL", ""),
		OtelEndpoint:           getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		HTTPRetryDelay:         retryDelay,
		PaymentPollInterval:    pollInterval,
		PaymentPollTimeout:     pollTimeout,
		PaymentPollMaxAttempts: maxAttempts,
	}, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(value) == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return parsed, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(value) == "" {
		return fallback, nil
	}
	parsed, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
	}
	return parsed, nil
}

func normalizeEnv(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "dev", "develop", "development", "local":
		return "development"
	case "prod", "production":
		return "production"
	case "stage", "staging":
		return "staging"
	case "test", "testing":
		return "test"
	default:
		return strings.ToLower(strings.TrimSpace(value))
	}
}

// UsesRemoteAPI reports whether module data comes from an external module API
// instead of the local Postgres store.
func (c *Config) UsesRemoteAPI() bool {
	return c != nil && c.GymAPIURL != ""
}

func (c *Config) IsDevelopment() bool {
	return c != nil && c.AppEnv == "development"
}
