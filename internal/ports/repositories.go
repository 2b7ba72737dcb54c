package ports

import (
	"context"
	"time"

	"github.com/Gcavazo1/ClipForge-AI-sub001/internal/domain"
	"github.com/google/uuid"
)

// PerformanceRepository is the analytics source. ListByUser returns records
// ordered by publish time, ties in first-insert order, and an empty slice for
// users without history. Revision grows with every Upsert for the user and is
// zero for users without history.
type PerformanceRepository interface {
	ListByUser(ctx context.Context, userID string) ([]domain.PerformanceRecord, error)
	Upsert(ctx context.Context, record domain.PerformanceRecord) error
	Revision(ctx context.Context, userID string) (int64, error)
}

// FeedbackRepository is append-only. A limit <= 0 returns every record.
type FeedbackRepository interface {
	Append(ctx context.Context, record domain.FeedbackRecord) (domain.FeedbackRecord, error)
	QueryByUser(ctx context.Context, userID string, limit int, newestFirst bool) ([]domain.FeedbackRecord, error)
}

// CalibrationRepository returns nil factors for users never calibrated.
type CalibrationRepository interface {
	LoadFactors(ctx context.Context, userID string) (*domain.AdjustmentFactors, error)
	SaveFactors(ctx context.Context, factors domain.AdjustmentFactors) error
}

type PredictionRepository interface {
	Save(ctx context.Context, result domain.PredictionResult) error
	Get(ctx context.Context, predictionID string) (*domain.PredictionResult, error)
}

type OutboxEvent struct {
	EventID          uuid.UUID
	EventType        string
	PartitionKey     string
	PartitionKeyPath string
	Payload          []byte
	OccurredAt       time.Time
	SchemaVersion    string
	TraceID          string
}

type OutboxRecord struct {
	OutboxID     uuid.UUID
	EventType    string
	PartitionKey string
	Payload      []byte
	RetryCount   int
	PublishedAt  *time.Time
	LastError    *string
	LastErrorAt  *time.Time
	FirstSeenAt  time.Time
}

type OutboxRepository interface {
	Enqueue(ctx context.Context, event OutboxEvent) error
	FetchUnpublished(ctx context.Context, limit int) ([]OutboxRecord, error)
	MarkPublished(ctx context.Context, outboxID uuid.UUID, at time.Time) error
	MarkFailed(ctx context.Context, outboxID uuid.UUID, errMsg string, at time.Time) error
}

type EventDedupRepository interface {
	IsDuplicate(ctx context.Context, eventID string, now time.Time) (bool, error)
	MarkProcessed(ctx context.Context, eventID, eventType string, expiresAt time.Time) error
}

type IdempotencyRecord struct {
	Key          string
	RequestHash  string
	ResponseCode int
	ResponseBody []byte
	ExpiresAt    time.Time
}

type IdempotencyRepository interface {
	Get(ctx context.Context, key string, now time.Time) (*IdempotencyRecord, error)
	Reserve(ctx context.Context, key, requestHash string, expiresAt time.Time) error
	Complete(ctx context.Context, key string, responseCode int, responseBody []byte, at time.Time) error
	// Release drops a reservation that was never completed. Completed keys
	// are left alone.
	Release(ctx context.Context, key string) error
}
