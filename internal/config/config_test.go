package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"PURIFY_HTTP_TIMEOUT", "PURIFY_USER_AGENT", "PURIFY_CACHE_MAX_ENTRIES",
		"PURIFY_CACHE_TTL", "PURIFY_LOG_LEVEL", "PURIFY_LOG_FORMAT",
	} {
		os.Unsetenv(key)
	}

	cfg := Load()
	if cfg.HTTP.Timeout != 20*time.Second {
		t.Errorf("HTTP.Timeout = %v, want 20s", cfg.HTTP.Timeout)
	}
	if cfg.Cache.MaxEntries != 100 {
		t.Errorf("Cache.MaxEntries = %d, want 100", cfg.Cache.MaxEntries)
	}
	if cfg.Cache.TTL != 10*time.Minute {
		t.Errorf("Cache.TTL = %v, want 10m", cfg.Cache.TTL)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want info", cfg.Log.Level)
	}
	if cfg.Log.Format != "json" {
		t.Errorf("Log.Format = %q, want json", cfg.Log.Format)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	os.Setenv("PURIFY_HTTP_TIMEOUT", "5s")
	os.Setenv("PURIFY_CACHE_MAX_ENTRIES", "50")
	os.Setenv("PURIFY_LOG_LEVEL", "debug")
	defer func() {
		os.Unsetenv("PURIFY_HTTP_TIMEOUT")
		os.Unsetenv("PURIFY_CACHE_MAX_ENTRIES")
		os.Unsetenv("PURIFY_LOG_LEVEL")
	}()

	cfg := Load()
	if cfg.HTTP.Timeout != 5*time.Second {
		t.Errorf("HTTP.Timeout = %v, want 5s", cfg.HTTP.Timeout)
	}
	if cfg.Cache.MaxEntries != 50 {
		t.Errorf("Cache.MaxEntries = %d, want 50", cfg.Cache.MaxEntries)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}
}

func TestLoad_InvalidEnvFallsBackToDefault(t *testing.T) {
	os.Setenv("PURIFY_CACHE_MAX_ENTRIES", "not-a-number")
	defer os.Unsetenv("PURIFY_CACHE_MAX_ENTRIES")

	cfg := Load()
	if cfg.Cache.MaxEntries != 100 {
		t.Errorf("Cache.MaxEntries = %d, want fallback of 100", cfg.Cache.MaxEntries)
	}
}
