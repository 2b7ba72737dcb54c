package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Gcavazo1/ClipForge-AI-sub001/internal/domain"
	"github.com/Gcavazo1/ClipForge-AI-sub001/internal/ports"
	"github.com/redis/go-redis/v9"
)

// Connect initializes a Redis client from URL or host:port input.
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	var client *redis.Client
	if strings.HasPrefix(redisURL, "redis://") || strings.HasPrefix(redisURL, "rediss://") {
		opt, parseErr := redis.ParseURL(redisURL)
		if parseErr != nil {
			return nil, fmt.Errorf("parse redis url: %w", parseErr)
		}
		client = redis.NewClient(opt)
	} else {
		client = redis.NewClient(&redis.Options{
			Addr:         redisURL,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		})
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

type redisEntry struct {
	Result    domain.PredictionResult `json:"result"`
	CreatedAt time.Time               `json:"created_at"`
}

// RedisPredictionCache shares cached predictions across replicas. Each user
// has an index set so ingest can drop all of their keys at once.
type RedisPredictionCache struct {
	client redis.Cmdable
	ttl    time.Duration
	prefix string
	nowFn  func() time.Time
}

func NewRedisPredictionCache(client redis.Cmdable, ttl time.Duration, nowFn func() time.Time) *RedisPredictionCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if nowFn == nil {
		nowFn = func() time.Time { return time.Now().UTC() }
	}
	return &RedisPredictionCache{client: client, ttl: ttl, prefix: "predictive:prediction", nowFn: nowFn}
}

func (c *RedisPredictionCache) resultKey(key domain.CacheKey) string {
	return c.prefix + ":result:" + key.String()
}

func (c *RedisPredictionCache) userKey(userID string) string {
	return c.prefix + ":user:" + userID
}

func (c *RedisPredictionCache) Get(ctx context.Context, key domain.CacheKey) (*domain.PredictionResult, bool, error) {
	entry, ok, err := c.getEntry(ctx, key)
	if err != nil || !ok {
		return nil, false, err
	}
	return &entry.Result, true, nil
}

func (c *RedisPredictionCache) getEntry(ctx context.Context, key domain.CacheKey) (redisEntry, bool, error) {
	raw, err := c.client.Get(ctx, c.resultKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return redisEntry{}, false, nil
	}
	if err != nil {
		return redisEntry{}, false, fmt.Errorf("%w: redis get: %v", domain.ErrUpstreamUnavailable, err)
	}
	var entry redisEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		// A payload from an older layout counts as a miss; the next Put overwrites it.
		return redisEntry{}, false, nil
	}
	if c.nowFn().Sub(entry.CreatedAt) >= c.ttl {
		return redisEntry{}, false, nil
	}
	return entry, true, nil
}

func (c *RedisPredictionCache) Put(ctx context.Context, key domain.CacheKey, result domain.PredictionResult) error {
	raw, err := json.Marshal(redisEntry{Result: result, CreatedAt: c.nowFn()})
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}
	userKey := c.userKey(key.UserID)
	_, err = c.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, c.resultKey(key), raw, c.ttl)
		p.SAdd(ctx, userKey, c.resultKey(key))
		p.Expire(ctx, userKey, c.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: redis put: %v", domain.ErrUpstreamUnavailable, err)
	}
	return nil
}

func (c *RedisPredictionCache) InvalidateUser(ctx context.Context, userID string) error {
	userKey := c.userKey(userID)
	members, err := c.client.SMembers(ctx, userKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("%w: redis smembers: %v", domain.ErrUpstreamUnavailable, err)
	}
	keys := append(members, userKey)
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("%w: redis del: %v", domain.ErrUpstreamUnavailable, err)
	}
	return nil
}

var _ ports.PredictionCache = (*RedisPredictionCache)(nil)
