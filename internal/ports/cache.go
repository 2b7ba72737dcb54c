package ports

import (
	"context"

	"github.com/Gcavazo1/ClipForge-AI-sub001/internal/domain"
)

// PredictionCache memoizes prediction results per key. Get reports a miss
// for absent and expired entries alike. Concurrent writers to one key are
// allowed and the last Put wins.
type PredictionCache interface {
	Get(ctx context.Context, key domain.CacheKey) (*domain.PredictionResult, bool, error)
	Put(ctx context.Context, key domain.CacheKey, result domain.PredictionResult) error
	InvalidateUser(ctx context.Context, userID string) error
}
