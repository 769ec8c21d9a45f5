package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.HTTPPort != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.HTTPPort)
	}
	if cfg.CacheBackend != "file" {
		t.Errorf("expected default cache backend file, got %s", cfg.CacheBackend)
	}
	if cfg.ScanDelay != 500*time.Millisecond {
		t.Errorf("expected default scan delay 500ms, got %s", cfg.ScanDelay)
	}
	if cfg.HTTPAddress() != ":8080" {
		t.Errorf("expected address :8080, got %s", cfg.HTTPAddress())
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("TILT_HTTP_PORT", "9090")
	t.Setenv("TILT_FEED_CACHE_TTL", "1h")
	t.Setenv("TILT_SCAN_DELAY", "not-a-duration")

	cfg := Load()

	if cfg.HTTPPort != "9090" {
		t.Errorf("expected port 9090, got %s", cfg.HTTPPort)
	}
	if cfg.FeedCacheTTL != time.Hour {
		t.Errorf("expected feed cache TTL 1h, got %s", cfg.FeedCacheTTL)
	}
	if cfg.ScanDelay != 500*time.Millisecond {
		t.Errorf("expected malformed duration to fall back to default, got %s", cfg.ScanDelay)
	}
}
