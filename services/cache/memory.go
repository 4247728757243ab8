package cache

import (
	"errors"
	"sync"
	"time"
)

// ErrCacheMiss is returned when a key is absent or expired
var ErrCacheMiss = errors.New("cache miss")

type memoryItem struct {
	value      []byte
	expiration time.Time
}

// MemoryService implements CacheService with an in-process map.
// It is the default backend and the one used throughout the tests.
type MemoryService struct {
	mu   sync.RWMutex
	data map[string]memoryItem
}

// NewMemoryService creates a new in-memory cache service
func NewMemoryService() *MemoryService {
	return &MemoryService{
		data: make(map[string]memoryItem),
	}
}

// Get retrieves a value from the in-memory cache
func (m *MemoryService) Get(key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	item, ok := m.data[key]
	if !ok || time.Now().After(item.expiration) {
		return nil, ErrCacheMiss
	}
	return item.value, nil
}

// Set stores a value in the in-memory cache with an expiration time
func (m *MemoryService) Set(key string, value []byte, expiration time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[key] = memoryItem{
		value:      append([]byte(nil), value...),
		expiration: time.Now().Add(expiration),
	}
	return nil
}

// Delete removes a value from the in-memory cache
func (m *MemoryService) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data, key)
	return nil
}
