package config

import (
	"os"
	"strconv"
	"time"

	"aegis/internal/cache"
	"aegis/internal/database"
	"aegis/internal/external"
	"aegis/internal/messaging"
)

// Config holds the application configuration
type Config struct {
	Port           string
	GinMode        string
	LogLevel       string
	LogFormat      string
	RequestTimeout time.Duration

	JWTSecret string
	JWTTTL    time.Duration

	Database      database.Config
	NATS          messaging.Config
	Cache         cache.Config
	Elasticsearch ElasticsearchConfig
	Billing       external.BillingConfig
	Notify        external.NotifyConfig
}

// Load reads the configuration from environment variables
func Load() *Config {
	return &Config{
		Port:           getEnv("PORT", "8080"),
		GinMode:        getEnv("GIN_MODE", "debug"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
		RequestTimeout: time.Duration(getEnvInt("REQUEST_TIMEOUT_SEC", 30)) * time.Second,

		JWTSecret: getEnv("JWT_SECRET", "dev-only-secret"),
		JWTTTL:    time.Duration(getEnvInt("JWT_TTL_HOURS", 24)) * time.Hour,

		Database: database.Config{
			Host:               getEnv("DB_HOST", "localhost"),
			Port:               getEnvInt("DB_PORT", 5432),
			User:               getEnv("DB_USER", "aegis"),
			Password:           getEnv("DB_PASSWORD", "aegis123"),
			DBName:             getEnv("DB_NAME", "aegis"),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 50),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 10),
			ConnMaxLifetimeMin: getEnvInt("DB_CONN_MAX_LIFETIME_MIN", 5),
			ConnMaxIdleTimeMin: getEnvInt("DB_CONN_MAX_IDLE_TIME_MIN", 1),
		},

		NATS: messaging.Config{
			URL:       getEnv("NATS_URL", "nats://localhost:4222"),
			ClusterID: getEnv("NATS_CLUSTER_ID", "aegis"),
			ClientID:  getEnv("NATS_CLIENT_ID", "aegis-api"),
		},

		Cache: cache.Config{
			Addr:     getEnv("VALKEY_ADDR", "localhost:6379"),
			Password: os.Getenv("VALKEY_PASSWORD"),
			TTL:      time.Duration(getEnvInt("CACHE_TTL_SEC", 60)) * time.Second,
		},

		Elasticsearch: LoadElasticsearchConfig(),

		Billing: external.BillingConfig{
			BaseURL:     getEnv("BILLING_PROCESSOR_URL", "https://billing.example.com/api"),
			AccountSlug: getEnv("BILLING_ACCOUNT_SLUG", ""),
			APIKey:      getEnv("BILLING_API_KEY", ""),
			Timeout:     time.Duration(getEnvInt("BILLING_TIMEOUT_SEC", 30)) * time.Second,
		},

		Notify: external.NotifyConfig{
			BaseURL:     getEnv("NOTIFY_GATEWAY_URL", "https://notify.example.com/api"),
			APIKey:      getEnv("NOTIFY_API_KEY", ""),
			FromAddress: getEnv("NOTIFY_FROM_ADDRESS", "bookings@aegisprotection.example"),
			Timeout:     time.Duration(getEnvInt("NOTIFY_TIMEOUT_SEC", 30)) * time.Second,
		},
	}
}

// getEnv returns the environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable value or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
