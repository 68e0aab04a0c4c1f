package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	SecretKey string // Required: base64-encoded HMAC-SHA256 signing key (32+ bytes decoded)
	MintToken string // Required: static credential guarding the issue endpoint

	AccessTTL  time.Duration // Optional: access token lifetime (default: 15m)
	RefreshTTL time.Duration // Optional: refresh token lifetime (default: 24h)

	DatabaseFile      string // Optional: path to SQLite database file (default: ./shopauth.db)
	RevocationBackend string // Optional: revocation store backend (sqlite, redis) (default: sqlite)
	RedisAddr         string // Optional: redis address when backend is redis (default: localhost:6379)
	RedisPassword     string // Optional: redis password

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
}

func LoadConfig() Config {
	return Config{
		SecretKey: os.Getenv("AUTH_SECRET_KEY"),
		MintToken: os.Getenv("AUTH_MINT_TOKEN"),

		AccessTTL:  getEnvDurationOrDefault("AUTH_ACCESS_TOKEN_EXPIRATION", 15*time.Minute),
		RefreshTTL: getEnvDurationOrDefault("AUTH_REFRESH_TOKEN_EXPIRATION", 24*time.Hour),

		DatabaseFile:      getEnvOrDefault("AUTH_DATABASE_FILE", "shopauth.db"),
		RevocationBackend: getEnvOrDefault("AUTH_REVOCATION_BACKEND", "sqlite"),
		RedisAddr:         getEnvOrDefault("AUTH_REDIS_ADDR", "localhost:6379"),
		RedisPassword:     os.Getenv("AUTH_REDIS_PASSWORD"),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are seconds, matching deployments that configure token
	// lifetimes numerically.
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}

	return defaultValue
}
