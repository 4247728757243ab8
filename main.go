package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/khaihong/primates-shoppers-sub001/config"
	delivery "github.com/khaihong/primates-shoppers-sub001/internal/delivery/http"
	"github.com/khaihong/primates-shoppers-sub001/internal/searcher"
	"github.com/khaihong/primates-shoppers-sub001/logger"
	"github.com/khaihong/primates-shoppers-sub001/services/cache"
)

func main() {
	// Load environment variables
	godotenv.Load()

	// Initialize logger first
	logger.Init()
	log := logger.Default

	// Load and validate configuration
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	log.Info().
		Str("environment", cfg.Environment).
		Str("cache_backend", cfg.CacheBackend).
		Dur("cache_ttl", cfg.CacheTTL).
		Dur("fetch_timeout", cfg.FetchTimeout).
		Msg("Starting application")

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Initialize the cache backing store
	backing, cleanup := newBackingStore(ctx, &cfg)
	defer cleanup()

	// Wire the search core and the HTTP delivery layer
	svc := searcher.New(cfg, backing)
	handler := delivery.NewHandler(svc)
	router := delivery.SetupRouter(&cfg, handler)

	server := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: router,
	}

	serverDone := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.ListenAddr).Msg("Starting HTTP server")
		serverDone <- server.ListenAndServe()
	}()

	// Wait for shutdown signal or server error
	select {
	case sig := <-sigChan:
		log.Info().
			Str("signal", sig.String()).
			Msg("Received shutdown signal")
		cancel()
	case err := <-serverDone:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("HTTP server exited with error")
		}
	}

	// Graceful shutdown
	log.Info().Msg("Shutting down gracefully...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}
}

// newBackingStore builds the configured byte-level backing store for the
// base result cache. The memory backend needs none: the in-memory result
// cache is already authoritative.
func newBackingStore(ctx context.Context, cfg *config.Config) (cache.CacheService, func()) {
	switch cfg.CacheBackend {
	case config.CacheBackendMemcache:
		logger.Info("Using memcache backing store at %s", cfg.MemcacheAddr)
		return cache.NewMemcacheService(cfg.MemcacheAddr), func() {}
	case config.CacheBackendRedis:
		logger.Info("Using redis backing store at %s (DB: %d)", cfg.RedisAddr, cfg.RedisDB)
		redisSvc := cache.NewRedisService(ctx, cfg.RedisAddr, cfg.RedisDB)
		return redisSvc, func() { redisSvc.Close() }
	default:
		return nil, func() {}
	}
}
