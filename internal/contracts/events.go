package contracts

import (
	"encoding/json"
	"time"
)

type EventEnvelope struct {
	EventID          string          `json:"event_id"`
	EventType        string          `json:"event_type"`
	OccurredAt       time.Time       `json:"occurred_at"`
	PartitionKeyPath string          `json:"partition_key_path"`
	PartitionKey     string          `json:"partition_key"`
	SourceService    string          `json:"source_service"`
	TraceID          string          `json:"trace_id"`
	SchemaVersion    string          `json:"schema_version"`
	Data             json.RawMessage `json:"data"`
}

type PerformanceRecordedPayload struct {
	UserID           string  `json:"user_id"`
	ContentID        string  `json:"content_id"`
	Platform         string  `json:"platform"`
	Views            int64   `json:"views"`
	Likes            int64   `json:"likes"`
	Comments         int64   `json:"comments"`
	WatchTimeSeconds float64 `json:"watch_time_seconds"`
	PublishedAt      string  `json:"published_at"`
}

type PredictionGeneratedPayload struct {
	PredictionID      string `json:"prediction_id"`
	UserID            string `json:"user_id"`
	ContentID         string `json:"content_id,omitempty"`
	Variant           string `json:"variant"`
	PredictedViews    int64  `json:"predicted_views"`
	PredictedLikes    int64  `json:"predicted_likes"`
	PredictedComments int64  `json:"predicted_comments"`
	Confidence        int    `json:"confidence"`
	GeneratedAt       string `json:"generated_at"`
}

type FeedbackSubmittedPayload struct {
	FeedbackID   string  `json:"feedback_id"`
	UserID       string  `json:"user_id"`
	PredictionID string  `json:"prediction_id"`
	Rating       int     `json:"rating"`
	WasHelpful   bool    `json:"was_helpful"`
	Accuracy     float64 `json:"accuracy"`
	SubmittedAt  string  `json:"submitted_at"`
}

type ModelRecalibratedPayload struct {
	UserID             string  `json:"user_id"`
	ViewsMultiplier    float64 `json:"views_multiplier"`
	LikesMultiplier    float64 `json:"likes_multiplier"`
	CommentsMultiplier float64 `json:"comments_multiplier"`
	ConfidenceOffset   float64 `json:"confidence_offset"`
	SampleSize         int     `json:"sample_size"`
	RecalibratedAt     string  `json:"recalibrated_at"`
}
