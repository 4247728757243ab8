package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Cache backend identifiers
const (
	CacheBackendMemory   = "memory"
	CacheBackendMemcache = "memcache"
	CacheBackendRedis    = "redis"
)

// Config represents the application configuration
type Config struct {
	// HTTP server configuration
	ListenAddr string

	// Base result cache configuration
	CacheTTL     time.Duration
	CacheBackend string
	MemcacheAddr string
	RedisAddr    string
	RedisDB      int

	// Fetcher configuration
	FetchTimeout time.Duration

	// Per-country result page URL templates (%s is the escaped query)
	SearchURLs map[string]string

	// Diagnostics configuration
	DiagnosticsSampleSize int

	// Environment
	Environment string
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() Config {
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	cacheTTL, _ := strconv.Atoi(getEnv("CACHE_TTL_MINUTES", "15"))
	fetchTimeout, _ := strconv.Atoi(getEnv("FETCH_TIMEOUT_SECONDS", "10"))
	sampleSize, _ := strconv.Atoi(getEnv("DIAGNOSTICS_SAMPLE_SIZE", "10"))

	return Config{
		ListenAddr:   getEnv("LISTEN_ADDR", ":8080"),
		CacheTTL:     time.Duration(cacheTTL) * time.Minute,
		CacheBackend: getEnv("CACHE_BACKEND", CacheBackendMemory),
		MemcacheAddr: getEnv("MEMCACHE_ADDR", "localhost:11211"),
		RedisAddr:    getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:      redisDB,
		FetchTimeout: time.Duration(fetchTimeout) * time.Second,
		SearchURLs: map[string]string{
			"US": getEnv("SEARCH_URL_US", "https://www.amazon.com/s?k=%s"),
			"UK": getEnv("SEARCH_URL_UK", "https://www.amazon.co.uk/s?k=%s"),
			"CA": getEnv("SEARCH_URL_CA", "https://www.amazon.ca/s?k=%s"),
			"DE": getEnv("SEARCH_URL_DE", "https://www.amazon.de/s?k=%s"),
		},
		DiagnosticsSampleSize: sampleSize,
		Environment:           getEnv("ENVIRONMENT", "development"),
	}
}

// Validate checks the configuration for values the application cannot run with
func (c *Config) Validate() error {
	if c.CacheTTL <= 0 {
		return fmt.Errorf("cache TTL must be positive, got %v", c.CacheTTL)
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("fetch timeout must be positive, got %v", c.FetchTimeout)
	}
	switch c.CacheBackend {
	case CacheBackendMemory, CacheBackendMemcache, CacheBackendRedis:
	default:
		return fmt.Errorf("unknown cache backend %q", c.CacheBackend)
	}
	if c.DiagnosticsSampleSize <= 0 {
		return fmt.Errorf("diagnostics sample size must be positive, got %d", c.DiagnosticsSampleSize)
	}
	if len(c.SearchURLs) == 0 {
		return fmt.Errorf("at least one country search URL is required")
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
