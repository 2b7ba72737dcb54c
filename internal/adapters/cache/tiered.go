package cache

import (
	"context"

	"github.com/Gcavazo1/ClipForge-AI-sub001/internal/domain"
	"github.com/Gcavazo1/ClipForge-AI-sub001/internal/ports"
)

// TieredPredictionCache reads the local cache first and falls back to Redis.
// Redis hits are copied into the local cache with their original creation
// time so they expire at the same moment on every replica.
type TieredPredictionCache struct {
	local  *LocalPredictionCache
	remote *RedisPredictionCache
}

func NewTieredPredictionCache(local *LocalPredictionCache, remote *RedisPredictionCache) *TieredPredictionCache {
	return &TieredPredictionCache{local: local, remote: remote}
}

func (c *TieredPredictionCache) Get(ctx context.Context, key domain.CacheKey) (*domain.PredictionResult, bool, error) {
	if result, ok, _ := c.local.Get(ctx, key); ok {
		return result, true, nil
	}
	entry, ok, err := c.remote.getEntry(ctx, key)
	if err != nil || !ok {
		return nil, false, err
	}
	c.local.PutEntry(key, entry.Result, entry.CreatedAt)
	return &entry.Result, true, nil
}

func (c *TieredPredictionCache) Put(ctx context.Context, key domain.CacheKey, result domain.PredictionResult) error {
	if err := c.remote.Put(ctx, key, result); err != nil {
		return err
	}
	return c.local.Put(ctx, key, result)
}

func (c *TieredPredictionCache) InvalidateUser(ctx context.Context, userID string) error {
	_ = c.local.InvalidateUser(ctx, userID)
	return c.remote.InvalidateUser(ctx, userID)
}

var _ ports.PredictionCache = (*TieredPredictionCache)(nil)
