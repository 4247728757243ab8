package searcher

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/khaihong/primates-shoppers-sub001/internal/product"
	"github.com/khaihong/primates-shoppers-sub001/logger"
	"github.com/khaihong/primates-shoppers-sub001/pkg/errors"
	"github.com/khaihong/primates-shoppers-sub001/services/cache"
)

// cacheEntry is one base result set. Entries are replaced wholesale on
// refresh, never merged, and only handed out as copies.
type cacheEntry struct {
	records   []product.Record
	baseCount int
	fetchedAt time.Time
}

// inflightCall is the shared handle for one in-flight fetch. The first
// requester creates it, later requesters wait on done, and every waiter
// receives the same outcome.
type inflightCall struct {
	done      chan struct{}
	records   []product.Record
	baseCount int
	err       error
}

// FetchFunc fetches and extracts the base record set for a key
type FetchFunc func(ctx context.Context, query, country string) ([]product.Record, error)

// ResultCache is the base result cache keyed by normalized (query, country).
// It owns single-flight coalescing and TTL staleness; an optional backing
// CacheService lets a restarted process warm-start entries still within TTL.
type ResultCache struct {
	mu       sync.Mutex
	entries  map[string]*cacheEntry
	inflight map[string]*inflightCall
	ttl      time.Duration
	backing  cache.CacheService
	now      func() time.Time
}

// NewResultCache creates a base result cache. backing may be nil.
func NewResultCache(ttl time.Duration, backing cache.CacheService) *ResultCache {
	return &ResultCache{
		entries:  make(map[string]*cacheEntry),
		inflight: make(map[string]*inflightCall),
		ttl:      ttl,
		backing:  backing,
		now:      time.Now,
	}
}

// Key normalizes (query, country) into the cache key: query is trimmed and
// case-folded, country is the upper-case 2-letter code.
func Key(query, country string) string {
	return strings.ToLower(strings.TrimSpace(query)) + "|" + strings.ToUpper(strings.TrimSpace(country))
}

// persistedEntry is the backing-store representation of a cache entry
type persistedEntry struct {
	Records   []product.Record `json:"records"`
	BaseCount int              `json:"base_count"`
	FetchedAt time.Time        `json:"fetched_at"`
}

// Lookup returns a snapshot of the cached base set without fetching.
// Cached-only reads serve stale entries too: re-filtering prior results
// never requires the remote source.
func (c *ResultCache) Lookup(query, country string) ([]product.Record, int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[Key(query, country)]
	if !ok {
		return nil, 0, false
	}
	return product.CloneRecords(entry.records), entry.baseCount, true
}

// Resolve returns the base record set for a key, fetching when the entry is
// absent or stale. Concurrent calls for the same key share one fetch; calls
// for different keys proceed in parallel. The returned slice is the caller's
// own copy.
func (c *ResultCache) Resolve(ctx context.Context, query, country string, fetch FetchFunc) ([]product.Record, int, error) {
	key := Key(query, country)

	c.mu.Lock()
	if entry, ok := c.entries[key]; ok && c.now().Sub(entry.fetchedAt) < c.ttl {
		records := product.CloneRecords(entry.records)
		base := entry.baseCount
		c.mu.Unlock()
		return records, base, nil
	}

	if call, ok := c.inflight[key]; ok {
		c.mu.Unlock()
		select {
		case <-call.done:
			if call.err != nil {
				return nil, 0, call.err
			}
			return product.CloneRecords(call.records), call.baseCount, nil
		case <-ctx.Done():
			return nil, 0, errors.NewNetwork(country, "canceled waiting for in-flight fetch", ctx.Err())
		}
	}

	call := &inflightCall{done: make(chan struct{})}
	c.inflight[key] = call
	c.mu.Unlock()

	return c.lead(ctx, key, query, country, fetch, call)
}

// lead runs the single in-flight fetch for a key and publishes the outcome
// to every waiter
func (c *ResultCache) lead(ctx context.Context, key, query, country string, fetch FetchFunc, call *inflightCall) ([]product.Record, int, error) {
	defer func() {
		c.mu.Lock()
		delete(c.inflight, key)
		c.mu.Unlock()
		close(call.done)
	}()

	// Warm start from the backing store before touching the network, but
	// only when there is no in-memory entry at all.
	c.mu.Lock()
	_, hasEntry := c.entries[key]
	c.mu.Unlock()
	if !hasEntry {
		if entry := c.readBacking(key); entry != nil {
			c.mu.Lock()
			c.entries[key] = entry
			records := product.CloneRecords(entry.records)
			base := entry.baseCount
			c.mu.Unlock()
			call.records = entry.records
			call.baseCount = base
			return records, base, nil
		}
	}

	records, err := fetch(ctx, query, country)
	now := c.now()

	if err != nil {
		// A failed refresh never wipes the entry: stale data stays servable.
		c.mu.Lock()
		if entry, ok := c.entries[key]; ok {
			stale := product.CloneRecords(entry.records)
			base := entry.baseCount
			c.mu.Unlock()
			logger.Warn("serving stale results for %q after failed refresh: %v", key, err)
			call.records = stale
			call.baseCount = base
			return product.CloneRecords(stale), base, nil
		}
		c.mu.Unlock()
		call.err = err
		return nil, 0, err
	}

	entry := &cacheEntry{
		records:   product.CloneRecords(records),
		baseCount: len(records),
		fetchedAt: now,
	}
	c.mu.Lock()
	c.entries[key] = entry
	c.mu.Unlock()
	c.writeBacking(key, entry)

	call.records = entry.records
	call.baseCount = entry.baseCount
	return records, len(records), nil
}

// Invalidate removes the entry for a key from the cache and its backing store
func (c *ResultCache) Invalidate(query, country string) {
	key := Key(query, country)

	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()

	if c.backing != nil {
		if err := c.backing.Delete(key); err != nil {
			logger.Debug("backing store delete for %q: %v", key, err)
		}
	}
}

// EntryStats describes one cache entry for monitoring
type EntryStats struct {
	Key       string        `json:"key"`
	BaseCount int           `json:"base_count"`
	Age       time.Duration `json:"age"`
	Stale     bool          `json:"stale"`
}

// Stats returns a snapshot of the cache contents
func (c *ResultCache) Stats() []EntryStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	stats := make([]EntryStats, 0, len(c.entries))
	for key, entry := range c.entries {
		age := now.Sub(entry.fetchedAt)
		stats = append(stats, EntryStats{
			Key:       key,
			BaseCount: entry.baseCount,
			Age:       age,
			Stale:     age >= c.ttl,
		})
	}
	return stats
}

func (c *ResultCache) readBacking(key string) *cacheEntry {
	if c.backing == nil {
		return nil
	}
	data, err := c.backing.Get(key)
	if err != nil {
		return nil
	}
	var persisted persistedEntry
	if err := json.Unmarshal(data, &persisted); err != nil {
		logger.Debug("discarding undecodable backing entry for %q: %v", key, err)
		return nil
	}
	if c.now().Sub(persisted.FetchedAt) >= c.ttl {
		return nil
	}
	return &cacheEntry{
		records:   persisted.Records,
		baseCount: persisted.BaseCount,
		fetchedAt: persisted.FetchedAt,
	}
}

func (c *ResultCache) writeBacking(key string, entry *cacheEntry) {
	if c.backing == nil {
		return
	}
	data, err := json.Marshal(persistedEntry{
		Records:   entry.records,
		BaseCount: entry.baseCount,
		FetchedAt: entry.fetchedAt,
	})
	if err != nil {
		return
	}
	if err := c.backing.Set(key, data, c.ttl); err != nil {
		logger.Debug("backing store write for %q: %v", key, err)
	}
}
