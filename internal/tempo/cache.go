package tempo

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Conceptual-Machines/beatstoch-api/internal/logger"
)

// Entry is a cached tempo
type Entry struct {
	BPM       float64
	Source    string
	UpdatedAt time.Time
}

// Cache stores resolved tempos by Key
type Cache interface {
	Get(ctx context.Context, key string) (Entry, bool, error)
	Put(ctx context.Context, key string, entry Entry) error
}

// MemoryCache is a process-local Cache
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewMemoryCache creates an empty cache
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]Entry)}
}

// Get implements Cache
func (m *MemoryCache) Get(_ context.Context, key string) (Entry, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[key]
	return e, ok, nil
}

// Put implements Cache
func (m *MemoryCache) Put(_ context.Context, key string, entry Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = entry
	return nil
}

// CachedResolver answers from a cache and fills it from the next resolver
type CachedResolver struct {
	next   Resolver
	cache  Cache
	ttl    time.Duration
	source string
	now    func() time.Time
}

// NewCachedResolver caches successful lookups of next for ttl. A zero ttl never expires.
func NewCachedResolver(next Resolver, cache Cache, ttl time.Duration, source string) *CachedResolver {
	return &CachedResolver{next: next, cache: cache, ttl: ttl, source: source, now: time.Now}
}

// Resolve implements Resolver. Cache failures are logged and bypassed.
func (c *CachedResolver) Resolve(ctx context.Context, title, artist string) (float64, error) {
	key := Key(title, artist)

	entry, ok, err := c.cache.Get(ctx, key)
	switch {
	case err != nil:
		logger.Warn("Tempo cache read failed", logger.Fields{"key": key, "error": err.Error()})
	case ok && c.fresh(entry) && InRange(entry.BPM):
		return entry.BPM, nil
	}

	if c.next == nil {
		return 0, notFound(title, artist)
	}
	bpm, err := c.next.Resolve(ctx, title, artist)
	if err != nil {
		return 0, err
	}

	if err := c.cache.Put(ctx, key, Entry{BPM: bpm, Source: c.source, UpdatedAt: c.now()}); err != nil && !errors.Is(err, context.Canceled) {
		logger.Warn("Tempo cache write failed", logger.Fields{"key": key, "error": err.Error()})
	}
	return bpm, nil
}

func (c *CachedResolver) fresh(e Entry) bool {
	return c.ttl <= 0 || c.now().Sub(e.UpdatedAt) < c.ttl
}
