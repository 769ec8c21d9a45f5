package config

import (
	"fmt"
	"os"
	"time"
)

// Config holds all runtime configuration for the TILT server.
type Config struct {
	HTTPPort string
	DataDir  string

	LogLevel  string
	LogFormat string

	// CacheBackend selects where OSINT lookups are cached: "memory",
	// "file" or "valkey".
	CacheBackend string
	ValkeyAddr   string

	FeedURL      string
	FeedCacheTTL time.Duration
	NetCacheTTL  time.Duration
	ScanDelay    time.Duration
	ProbeTimeout time.Duration
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		HTTPPort:     getEnv("TILT_HTTP_PORT", "8080"),
		DataDir:      getEnv("TILT_DATA_DIR", "./data"),
		LogLevel:     getEnv("TILT_LOG_LEVEL", "info"),
		LogFormat:    getEnv("TILT_LOG_FORMAT", "text"),
		CacheBackend: getEnv("TILT_CACHE_BACKEND", "file"),
		ValkeyAddr:   getEnv("TILT_VALKEY_ADDR", "localhost:6379"),
		FeedURL:      getEnv("TILT_RANSOMWATCH_URL", ""),
		FeedCacheTTL: getDuration("TILT_FEED_CACHE_TTL", 24*time.Hour),
		NetCacheTTL:  getDuration("TILT_NET_CACHE_TTL", 5*time.Minute),
		ScanDelay:    getDuration("TILT_SCAN_DELAY", 500*time.Millisecond),
		ProbeTimeout: getDuration("TILT_PROBE_TIMEOUT", 10*time.Second),
	}
}

// HTTPAddress returns the full HTTP listen address.
func (c *Config) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.HTTPPort)
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}
