package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Gcavazo1/ClipForge-AI-sub001/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func sampleResult(id string) domain.PredictionResult {
	return domain.PredictionResult{
		PredictionID:    id,
		UserID:          "user-1",
		Variant:         domain.VariantLinearTrend,
		PredictedViews:  1200,
		TrendingTags:    []string{"#tiktok"},
		Recommendations: []string{domain.RecommendationShortenClips},
	}
}

func TestLocalPredictionCacheExpiresAfterTTL(t *testing.T) {
	t.Parallel()
	clock := &fakeClock{now: time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)}
	c := NewLocalPredictionCache(15*time.Minute, 0, clock.Now)
	ctx := context.Background()
	key := domain.NewCacheKey("user-1", "", domain.VariantLinearTrend)

	require.NoError(t, c.Put(ctx, key, sampleResult("p-1")))

	clock.Advance(15*time.Minute - time.Second)
	got, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "p-1", got.PredictionID)

	clock.Advance(time.Second)
	_, ok, err = c.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok, "entry must be stale once age reaches the ttl")
}

func TestLocalPredictionCacheLastWriterWins(t *testing.T) {
	t.Parallel()
	clock := &fakeClock{now: time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)}
	c := NewLocalPredictionCache(time.Minute, 0, clock.Now)
	ctx := context.Background()
	key := domain.NewCacheKey("user-1", "clip-9", domain.VariantRecentTrend)

	require.NoError(t, c.Put(ctx, key, sampleResult("first")))
	require.NoError(t, c.Put(ctx, key, sampleResult("second")))

	got, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "second", got.PredictionID)
	assert.Equal(t, 1, c.Size())
}

func TestLocalPredictionCacheReturnsCopies(t *testing.T) {
	t.Parallel()
	c := NewLocalPredictionCache(time.Minute, 0, nil)
	ctx := context.Background()
	key := domain.NewCacheKey("user-1", "", domain.VariantLinearTrend)
	require.NoError(t, c.Put(ctx, key, sampleResult("p-1")))

	got, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	got.TrendingTags[0] = "#mutated"

	again, _, _ := c.Get(ctx, key)
	assert.Equal(t, "#tiktok", again.TrendingTags[0])
}

func TestLocalPredictionCacheInvalidateUser(t *testing.T) {
	t.Parallel()
	c := NewLocalPredictionCache(time.Minute, 0, nil)
	ctx := context.Background()
	for _, variant := range domain.Variants {
		require.NoError(t, c.Put(ctx, domain.NewCacheKey("user-1", "", variant), sampleResult("p")))
	}
	other := domain.NewCacheKey("user-10", "", domain.VariantLinearTrend)
	require.NoError(t, c.Put(ctx, other, sampleResult("q")))

	require.NoError(t, c.InvalidateUser(ctx, "user-1"))

	assert.Equal(t, 1, c.Size())
	_, ok, _ := c.Get(ctx, other)
	assert.True(t, ok)
}

func TestLocalPredictionCacheEvictsOldestWhenFull(t *testing.T) {
	t.Parallel()
	clock := &fakeClock{now: time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)}
	c := NewLocalPredictionCache(time.Hour, 2, clock.Now)
	ctx := context.Background()
	first := domain.NewCacheKey("a", "", domain.VariantLinearTrend)
	second := domain.NewCacheKey("b", "", domain.VariantLinearTrend)
	third := domain.NewCacheKey("c", "", domain.VariantLinearTrend)

	require.NoError(t, c.Put(ctx, first, sampleResult("1")))
	clock.Advance(time.Second)
	require.NoError(t, c.Put(ctx, second, sampleResult("2")))
	clock.Advance(time.Second)
	require.NoError(t, c.Put(ctx, third, sampleResult("3")))

	assert.Equal(t, 2, c.Size())
	_, ok, _ := c.Get(ctx, first)
	assert.False(t, ok)
	_, ok, _ = c.Get(ctx, third)
	assert.True(t, ok)
}

func TestLocalPredictionCacheBackfillKeepsCreationTime(t *testing.T) {
	t.Parallel()
	clock := &fakeClock{now: time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)}
	c := NewLocalPredictionCache(15*time.Minute, 0, clock.Now)
	key := domain.NewCacheKey("user-1", "", domain.VariantLinearTrend)

	c.PutEntry(key, sampleResult("p-1"), clock.Now().Add(-14*time.Minute))
	_, ok, _ := c.Get(context.Background(), key)
	require.True(t, ok)

	clock.Advance(time.Minute)
	_, ok, _ = c.Get(context.Background(), key)
	assert.False(t, ok)
	assert.InDelta(t, 0.5, c.HitRate(), 1e-9)
}
