package cache

import (
	"time"
)

// CacheService represents a generic byte-level cache store. The base result
// cache uses it as an optional backing store so a restarted process can
// warm-start entries that are still within TTL.
type CacheService interface {
	// Get retrieves a value from the cache
	Get(key string) ([]byte, error)

	// Set stores a value in the cache with an expiration time
	Set(key string, value []byte, expiration time.Duration) error

	// Delete removes a value from the cache
	Delete(key string) error
}
