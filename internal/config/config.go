// Package config loads the graphquery tool configuration from the
// environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	redisgraph "github.com/jvanmalder/redis-graph"
)

// Config holds the tool configuration.
type Config struct {
	URL                    string
	MaxOutstandingRequests int
	Timeout                time.Duration

	LogLevel  string
	LogFormat string
}

// Load reads the environment, after loading a .env file if one exists. The
// result is not validated so callers can apply overrides first.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	cfg := &Config{
		URL:                    getEnv("REDISGRAPH_URL", "redis://localhost:6379/0"),
		MaxOutstandingRequests: getIntEnv("REDISGRAPH_MAX_OUTSTANDING", redisgraph.DefaultMaxOutstandingRequests),
		Timeout:                getDurationEnv("REDISGRAPH_TIMEOUT", 0),
		LogLevel:               getEnv("REDISGRAPH_LOG_LEVEL", "info"),
		LogFormat:              getEnv("REDISGRAPH_LOG_FORMAT", "text"),
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("invalid configuration: url is required")
	}
	if c.MaxOutstandingRequests < 0 {
		return fmt.Errorf("invalid configuration: max outstanding requests must not be negative, got %d", c.MaxOutstandingRequests)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("invalid configuration: timeout must not be negative, got %s", c.Timeout)
	}
	return nil
}

// Target is the connection target described by the configuration.
func (c *Config) Target() redisgraph.ConnectionTarget {
	return redisgraph.ConnectionTarget{
		URL:                    c.URL,
		MaxOutstandingRequests: c.MaxOutstandingRequests,
		Timeout:                c.Timeout,
	}
}

// NewLogger builds a text or JSON slog logger writing to w.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(c.LogLevel)}
	var handler slog.Handler
	switch strings.ToLower(c.LogFormat) {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
