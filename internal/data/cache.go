package data

import (
	"context"
	"log"
	"sync"
	"time"

	"cashflow-forecast/internal/model"
)

type cacheEntry[V any] struct {
	value     V
	expiresAt time.Time
}

// Cache is an in-memory TTL cache. A nil *Cache never hits.
type Cache[V any] struct {
	mu    sync.RWMutex
	store map[string]*cacheEntry[V]
	ttl   time.Duration
	now   func() time.Time
}

// NewCache returns nil when ttl is not positive, which disables caching.
func NewCache[V any](ttl time.Duration) *Cache[V] {
	if ttl <= 0 {
		return nil
	}
	return &Cache[V]{
		store: make(map[string]*cacheEntry[V]),
		ttl:   ttl,
		now:   time.Now,
	}
}

// Get retrieves a cached value if present and not expired.
func (c *Cache[V]) Get(key string) (V, bool) {
	var zero V
	if c == nil {
		return zero, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.store[key]
	if !ok || c.now().After(entry.expiresAt) {
		return zero, false
	}
	return entry.value, true
}

// Set stores a value for the cache TTL.
func (c *Cache[V]) Set(key string, v V) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store[key] = &cacheEntry[V]{value: v, expiresAt: c.now().Add(c.ttl)}
}

// Clear removes all entries.
func (c *Cache[V]) Clear() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store = make(map[string]*cacheEntry[V])
}

// Sweep drops expired entries and returns how many were removed.
func (c *Cache[V]) Sweep() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	n := 0
	for k, e := range c.store {
		if now.After(e.expiresAt) {
			delete(c.store, k)
			n++
		}
	}
	return n
}

// Janitor sweeps every interval until ctx is done.
func (c *Cache[V]) Janitor(ctx context.Context, interval time.Duration) {
	if c == nil {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Sweep()
		}
	}
}

const (
	keySales     = "sales"
	keyPurchases = "purchases"
	keyWeekly    = "weekly"
)

// CachedRecords memoises a RecordSource for the cache TTL. Errors are not cached.
type CachedRecords struct {
	Source RecordSource
	cache  *Cache[RecordSet]
}

func NewCachedRecords(src RecordSource, ttl time.Duration) *CachedRecords {
	return &CachedRecords{Source: src, cache: NewCache[RecordSet](ttl)}
}

func (c *CachedRecords) FetchSales(ctx context.Context) (RecordSet, error) {
	return c.fetch(ctx, keySales, c.Source.FetchSales)
}

func (c *CachedRecords) FetchPurchases(ctx context.Context) (RecordSet, error) {
	return c.fetch(ctx, keyPurchases, c.Source.FetchPurchases)
}

// Invalidate forgets cached records.
func (c *CachedRecords) Invalidate() { c.cache.Clear() }

// StartJanitor sweeps expired record sets in the background until ctx is done.
func (c *CachedRecords) StartJanitor(ctx context.Context, interval time.Duration) {
	go c.cache.Janitor(ctx, interval)
}

func (c *CachedRecords) fetch(ctx context.Context, key string, load func(context.Context) (RecordSet, error)) (RecordSet, error) {
	if set, ok := c.cache.Get(key); ok {
		log.Printf("[Cache] hit: %s (%d records)", key, len(set.Records))
		return set, nil
	}
	set, err := load(ctx)
	if err != nil {
		return RecordSet{}, err
	}
	c.cache.Set(key, set)
	return set, nil
}

// CachedWeekly memoises a WeeklySource for the cache TTL.
type CachedWeekly struct {
	Source WeeklySource
	cache  *Cache[*model.WeeklyFinancialData]
}

func NewCachedWeekly(src WeeklySource, ttl time.Duration) *CachedWeekly {
	return &CachedWeekly{Source: src, cache: NewCache[*model.WeeklyFinancialData](ttl)}
}

func (c *CachedWeekly) FetchWeekly(ctx context.Context) (*model.WeeklyFinancialData, error) {
	if d, ok := c.cache.Get(keyWeekly); ok {
		return d, nil
	}
	d, err := c.Source.FetchWeekly(ctx)
	if err != nil {
		return nil, err
	}
	if d != nil {
		c.cache.Set(keyWeekly, d)
	}
	return d, nil
}
