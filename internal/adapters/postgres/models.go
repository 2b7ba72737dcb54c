package postgres

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type performanceRecordModel struct {
	UserID           string    `gorm:"column:user_id;primaryKey"`
	ContentID        string    `gorm:"column:content_id;primaryKey"`
	Platform         string    `gorm:"column:platform"`
	Views            int64     `gorm:"column:views"`
	Likes            int64     `gorm:"column:likes"`
	Comments         int64     `gorm:"column:comments"`
	WatchTimeSeconds float64   `gorm:"column:watch_time_seconds"`
	PublishedAt      time.Time `gorm:"column:published_at"`
	IngestedAt       time.Time `gorm:"column:ingested_at"`
	IngestSeq        int64     `gorm:"column:ingest_seq;->"`
}

func (performanceRecordModel) TableName() string { return "performance_records" }

type performanceRevisionModel struct {
	UserID    string    `gorm:"column:user_id;primaryKey"`
	Revision  int64     `gorm:"column:revision"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (performanceRevisionModel) TableName() string { return "performance_revisions" }

type feedbackModel struct {
	FeedbackID   uuid.UUID      `gorm:"column:feedback_id;type:uuid;primaryKey"`
	UserID       string         `gorm:"column:user_id"`
	PredictionID string         `gorm:"column:prediction_id"`
	Rating       int            `gorm:"column:rating"`
	WasHelpful   bool           `gorm:"column:was_helpful"`
	Comment      string         `gorm:"column:comment"`
	Metadata     datatypes.JSON `gorm:"column:metadata;type:jsonb"`
	CreatedAt    time.Time      `gorm:"column:created_at"`
}

func (feedbackModel) TableName() string { return "prediction_feedback" }

type adjustmentFactorsModel struct {
	UserID             string    `gorm:"column:user_id;primaryKey"`
	ViewsMultiplier    float64   `gorm:"column:views_multiplier"`
	LikesMultiplier    float64   `gorm:"column:likes_multiplier"`
	CommentsMultiplier float64   `gorm:"column:comments_multiplier"`
	ConfidenceOffset   float64   `gorm:"column:confidence_offset"`
	SampleSize         int       `gorm:"column:sample_size"`
	UpdatedAt          time.Time `gorm:"column:updated_at"`
}

func (adjustmentFactorsModel) TableName() string { return "adjustment_factors" }

type predictionResultModel struct {
	PredictionID uuid.UUID      `gorm:"column:prediction_id;type:uuid;primaryKey"`
	UserID       string         `gorm:"column:user_id"`
	ContentID    string         `gorm:"column:content_id"`
	Variant      string         `gorm:"column:variant"`
	ModelVersion string         `gorm:"column:model_version"`
	Payload      datatypes.JSON `gorm:"column:payload;type:jsonb"`
	GeneratedAt  time.Time      `gorm:"column:generated_at"`
}

func (predictionResultModel) TableName() string { return "prediction_results" }

type predictionOutboxModel struct {
	OutboxID         uuid.UUID  `gorm:"column:outbox_id;type:uuid;primaryKey"`
	EventType        string     `gorm:"column:event_type"`
	PartitionKey     string     `gorm:"column:partition_key"`
	PartitionKeyPath string     `gorm:"column:partition_key_path"`
	Payload          string     `gorm:"column:payload"`
	SchemaVersion    string     `gorm:"column:schema_version"`
	TraceID          string     `gorm:"column:trace_id"`
	CreatedAt        time.Time  `gorm:"column:created_at"`
	FirstSeenAt      time.Time  `gorm:"column:first_seen_at"`
	PublishedAt      *time.Time `gorm:"column:published_at"`
	RetryCount       int        `gorm:"column:retry_count"`
	LastError        *string    `gorm:"column:last_error"`
	LastErrorAt      *time.Time `gorm:"column:last_error_at"`
}

func (predictionOutboxModel) TableName() string { return "prediction_outbox" }

type predictionIdempotencyModel struct {
	IdempotencyKey string    `gorm:"column:idempotency_key;primaryKey"`
	RequestHash    string    `gorm:"column:request_hash"`
	Status         string    `gorm:"column:status"`
	ResponseCode   int       `gorm:"column:response_code"`
	ResponseBody   *string   `gorm:"column:response_body"`
	ExpiresAt      time.Time `gorm:"column:expires_at"`
	CreatedAt      time.Time `gorm:"column:created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at"`
}

func (predictionIdempotencyModel) TableName() string { return "prediction_idempotency" }

type predictionEventDedupModel struct {
	EventID     string    `gorm:"column:event_id;primaryKey"`
	EventType   string    `gorm:"column:event_type"`
	ProcessedAt time.Time `gorm:"column:processed_at"`
	ExpiresAt   time.Time `gorm:"column:expires_at"`
}

func (predictionEventDedupModel) TableName() string { return "prediction_event_dedup" }
