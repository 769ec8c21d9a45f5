// TILT is a single-tenant third-party risk assessment service: a scoring
// engine and OSINT aggregator over password-gated local storage.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/BriarPort/TILT/internal/auth"
	"github.com/BriarPort/TILT/internal/config"
	"github.com/BriarPort/TILT/internal/observability"
	"github.com/BriarPort/TILT/internal/osint"
	"github.com/BriarPort/TILT/internal/server"
	"github.com/BriarPort/TILT/internal/store"
	"github.com/BriarPort/TILT/modules/ransomwatch"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "tilt: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg := config.Load()
	logger := observability.InitLogger(observability.LogConfig{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})
	logger.Info("starting tilt", "port", cfg.HTTPPort, "data_dir", cfg.DataDir)

	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	// Durable feed cache so the ransomware signal survives restarts and
	// upstream outages.
	feedStore, err := store.NewFileStore(filepath.Join(cfg.DataDir, "feed_cache.json"))
	if err != nil {
		return fmt.Errorf("opening feed cache: %w", err)
	}
	defer feedStore.Close()
	feed := ransomwatch.NewClient(cfg.FeedURL, store.NewCache(feedStore, cfg.FeedCacheTTL))

	netKV, err := newNetCacheStore(cfg)
	if err != nil {
		return fmt.Errorf("opening network cache: %w", err)
	}
	defer netKV.Close()

	scanner := osint.NewScanner(osint.Config{
		Feed:      feed,
		NetCache:  store.NewCache(netKV, cfg.NetCacheTTL),
		ScanDelay: cfg.ScanDelay,
		Timeout:   cfg.ProbeTimeout,
		Logger:    logger,
	})

	tokens, err := auth.NewTokenService("tilt", auth.DefaultSessionTTL)
	if err != nil {
		return fmt.Errorf("initializing token service: %w", err)
	}

	srv := server.New(cfg, tokens, scanner, observability.NewMetrics(), logger)
	defer srv.Close()

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}
	return nil
}

// newNetCacheStore picks the short-TTL cache backing for DMARC/SSL lookups.
func newNetCacheStore(cfg *config.Config) (store.KVStore, error) {
	switch cfg.CacheBackend {
	case "valkey":
		return store.NewValkeyStore(cfg.ValkeyAddr)
	case "file":
		return store.NewFileStore(filepath.Join(cfg.DataDir, "net_cache.json"))
	default:
		return store.NewMemoryStore(), nil
	}
}
