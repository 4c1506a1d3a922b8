// Package config loads ambient, non-core configuration: the shared HTTP
// client's timeout and User-Agent, cache sizing, and logging. The core
// orchestrator and conversion façade never read environment variables
// directly — they take an explicit models.ConversionOptions value — so
// nothing here reaches into internal/orchestrator or internal/convert.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds ambient application configuration.
type Config struct {
	HTTP  HTTPConfig
	Cache CacheConfig
	Log   LogConfig
}

// HTTPConfig controls the shared client every strategy adapter uses.
type HTTPConfig struct {
	// Timeout is the per-adapter request deadline. default: 20s
	Timeout time.Duration

	// UserAgent is the desktop UA string the direct adapter sends.
	UserAgent string
}

// CacheConfig controls the process-wide URL cache.
type CacheConfig struct {
	// MaxEntries is the FIFO cap. default: 100
	MaxEntries int

	// TTL is how long an entry stays fresh. default: 10m
	TTL time.Duration
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Timeout:   envDurationOr("PURIFY_HTTP_TIMEOUT", 20*time.Second),
			UserAgent: envOr("PURIFY_USER_AGENT", defaultUserAgent),
		},
		Cache: CacheConfig{
			MaxEntries: envIntOr("PURIFY_CACHE_MAX_ENTRIES", 100),
			TTL:        envDurationOr("PURIFY_CACHE_TTL", 10*time.Minute),
		},
		Log: LogConfig{
			Level:  envOr("PURIFY_LOG_LEVEL", "info"),
			Format: envOr("PURIFY_LOG_FORMAT", "json"),
		},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
