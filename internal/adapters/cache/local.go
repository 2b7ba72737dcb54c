package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/Gcavazo1/ClipForge-AI-sub001/internal/domain"
	"github.com/Gcavazo1/ClipForge-AI-sub001/internal/ports"
)

const DefaultTTL = 15 * time.Minute

type localEntry struct {
	result    domain.PredictionResult
	createdAt time.Time
}

// LocalPredictionCache is an in-process cache. An entry is fresh while
// now - createdAt < ttl. Expired entries stay until overwritten or evicted.
type LocalPredictionCache struct {
	mu      sync.RWMutex
	items   map[string]localEntry
	ttl     time.Duration
	maxSize int
	nowFn   func() time.Time

	statsMu sync.Mutex
	hits    int64
	misses  int64
}

func NewLocalPredictionCache(ttl time.Duration, maxSize int, nowFn func() time.Time) *LocalPredictionCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if nowFn == nil {
		nowFn = func() time.Time { return time.Now().UTC() }
	}
	return &LocalPredictionCache{
		items:   make(map[string]localEntry),
		ttl:     ttl,
		maxSize: maxSize,
		nowFn:   nowFn,
	}
}

func (c *LocalPredictionCache) Get(_ context.Context, key domain.CacheKey) (*domain.PredictionResult, bool, error) {
	result, _, ok := c.lookup(key)
	if !ok {
		return nil, false, nil
	}
	return &result, true, nil
}

func (c *LocalPredictionCache) lookup(key domain.CacheKey) (domain.PredictionResult, time.Time, bool) {
	c.mu.RLock()
	entry, exists := c.items[key.String()]
	c.mu.RUnlock()

	if !exists || c.nowFn().Sub(entry.createdAt) >= c.ttl {
		c.record(false)
		return domain.PredictionResult{}, time.Time{}, false
	}
	c.record(true)
	return entry.result.Clone(), entry.createdAt, true
}

func (c *LocalPredictionCache) Put(_ context.Context, key domain.CacheKey, result domain.PredictionResult) error {
	c.PutEntry(key, result, c.nowFn())
	return nil
}

// PutEntry stores result as if it had been cached at createdAt.
func (c *LocalPredictionCache) PutEntry(key domain.CacheKey, result domain.PredictionResult, createdAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := key.String()
	if _, exists := c.items[id]; !exists && c.maxSize > 0 && len(c.items) >= c.maxSize {
		c.evictLocked()
	}
	c.items[id] = localEntry{result: result.Clone(), createdAt: createdAt}
}

// evictLocked drops expired entries, then the oldest one if still full.
func (c *LocalPredictionCache) evictLocked() {
	now := c.nowFn()
	var oldestKey string
	var oldest time.Time
	for k, entry := range c.items {
		if now.Sub(entry.createdAt) >= c.ttl {
			delete(c.items, k)
			continue
		}
		if oldestKey == "" || entry.createdAt.Before(oldest) {
			oldestKey, oldest = k, entry.createdAt
		}
	}
	if len(c.items) >= c.maxSize && oldestKey != "" {
		delete(c.items, oldestKey)
	}
}

func (c *LocalPredictionCache) InvalidateUser(_ context.Context, userID string) error {
	prefix := userID + ":"
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.items {
		if strings.HasPrefix(k, prefix) {
			delete(c.items, k)
		}
	}
	return nil
}

func (c *LocalPredictionCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func (c *LocalPredictionCache) record(hit bool) {
	c.statsMu.Lock()
	defer c.statsMu.Unlock()
	if hit {
		c.hits++
		return
	}
	c.misses++
}

func (c *LocalPredictionCache) HitRate() float64 {
	c.statsMu.Lock()
	defer c.statsMu.Unlock()
	total := c.hits + c.misses
	if total == 0 {
		return 0
	}
	return float64(c.hits) / float64(total)
}

var _ ports.PredictionCache = (*LocalPredictionCache)(nil)
