// Package config resolves escrowctl settings from the environment, overlaid
// by global command-line flags.
package config

import (
	"flag"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/safescrow/dashboard/pkg/tokenx"
)

type Config struct {
	APIURL string // backend base URL (ESCROW_API_URL)

	// SessionDB is the SQLite file holding the session. Ignored when
	// RedisAddr is set.
	SessionDB      string
	RedisAddr      string
	RedisNamespace string

	RefreshLead time.Duration // renew this long before expiry
	Timeout     time.Duration // per API request

	LogLevel  string
	LogFormat string
}

// Load reads the environment, then parses global flags from args. It returns
// the arguments left after the flags: the command and its own arguments.
func Load(args []string, stderr io.Writer) (Config, []string, error) {
	cfg := Config{
		APIURL:         getEnvOrDefault("ESCROW_API_URL", "http://localhost:8080"),
		SessionDB:      getEnvOrDefault("ESCROW_SESSION_DB", defaultSessionDB()),
		RedisAddr:      os.Getenv("ESCROW_REDIS_ADDR"),
		RedisNamespace: getEnvOrDefault("ESCROW_REDIS_NAMESPACE", "escrowctl:session"),
		RefreshLead:    getEnvDurationOrDefault("ESCROW_REFRESH_LEAD", tokenx.DefaultLeadTime),
		Timeout:        getEnvDurationOrDefault("ESCROW_TIMEOUT", 30*time.Second),
		LogLevel:       getEnvOrDefault("LOG_LEVEL", "warn"),
		LogFormat:      getEnvOrDefault("LOG_FORMAT", "text"),
	}

	fs := flag.NewFlagSet("escrowctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&cfg.APIURL, "api", cfg.APIURL, "backend base URL")
	fs.StringVar(&cfg.SessionDB, "session-db", cfg.SessionDB, "SQLite file that keeps the session")
	fs.StringVar(&cfg.RedisAddr, "redis", cfg.RedisAddr, "keep the session in Redis at host:port instead")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "per-request timeout")
	fs.Usage = func() {
		_, _ = io.WriteString(stderr, "usage: escrowctl [flags] <command> [args]\n\nflags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return Config{}, nil, err
	}
	return cfg, fs.Args(), nil
}

func defaultSessionDB() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "escrowctl-session.db"
	}
	return filepath.Join(dir, "escrowctl", "session.db")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
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

	// Bare integers are seconds.
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}

	return defaultValue
}
