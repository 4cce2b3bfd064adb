package app

import (
	"os"
	"strconv"
	"time"

	"github.com/safescrow/dashboard/internal/devauth/service"
	"github.com/safescrow/dashboard/pkg/jwtx"
)

type Config struct {
	Issuer     string        // iss claim on access tokens (default: safescrow-devauth)
	AccessTTL  time.Duration // access token lifetime (default: 15m)
	RefreshTTL time.Duration // refresh token lifetime (default: 7 days)
	KeyID      string        // kid header on access tokens (default: devauth-1)
	KeyFile    string        // Ed25519 PEM key; empty means a fresh key per run
	PepperFile string        // password pepper; empty means a fresh pepper per run

	DatabaseFile string // SQLite file; empty means in-memory

	// StartingBalance is credited to each new wallet, in major units.
	StartingBalance int64

	Env                  string        // dev, staging, prod (default: dev)
	LogLevel             string        // debug, info, warn, error (default: info)
	LogFormat            string        // json, text (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // default: 10s
	HousekeepingInterval time.Duration // default: 1h
}

func LoadConfig() Config {
	return Config{
		Issuer:               getEnvOrDefault("DEVAUTH_ISSUER", "safescrow-devauth"),
		AccessTTL:            getEnvDurationOrDefault("DEVAUTH_ACCESS_TTL", jwtx.DefaultAccessTokenTTL),
		RefreshTTL:           getEnvDurationOrDefault("DEVAUTH_REFRESH_TTL", service.DefaultRefreshTTL),
		KeyID:                getEnvOrDefault("DEVAUTH_KEY_ID", "devauth-1"),
		KeyFile:              os.Getenv("DEVAUTH_KEY_FILE"),
		PepperFile:           os.Getenv("DEVAUTH_PEPPER_FILE"),
		DatabaseFile:         os.Getenv("DEVAUTH_DB_PATH"),
		StartingBalance:      int64(getEnvIntOrDefault("DEVAUTH_STARTING_BALANCE", 100_000)),
		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", service.DefaultHousekeepingInterval),
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

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are minutes.
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
