package postgres

import (
	"encoding/json"
	"fmt"

	"github.com/Gcavazo1/ClipForge-AI-sub001/internal/domain"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

func toPerformanceModel(r domain.PerformanceRecord) performanceRecordModel {
	return performanceRecordModel{
		UserID: r.UserID, ContentID: r.ContentID, Platform: r.Platform,
		Views: r.Views, Likes: r.Likes, Comments: r.Comments,
		WatchTimeSeconds: r.WatchTimeSeconds, PublishedAt: r.PublishedAt.UTC(),
	}
}

func toDomainPerformance(m performanceRecordModel) domain.PerformanceRecord {
	return domain.PerformanceRecord{
		UserID: m.UserID, ContentID: m.ContentID, Platform: m.Platform,
		Views: m.Views, Likes: m.Likes, Comments: m.Comments,
		WatchTimeSeconds: m.WatchTimeSeconds, PublishedAt: m.PublishedAt.UTC(),
	}
}

func toFeedbackModel(r domain.FeedbackRecord) (feedbackModel, error) {
	id, err := uuid.Parse(r.FeedbackID)
	if err != nil {
		return feedbackModel{}, fmt.Errorf("%w: feedback_id must be a uuid", domain.ErrInvalidInput)
	}
	m := feedbackModel{
		FeedbackID: id, UserID: r.UserID, PredictionID: r.PredictionID, Rating: r.Rating,
		WasHelpful: r.WasHelpful, Comment: r.Comment, CreatedAt: r.CreatedAt.UTC(),
	}
	if r.Metadata != nil {
		raw, err := json.Marshal(r.Metadata)
		if err != nil {
			return feedbackModel{}, fmt.Errorf("encode feedback metadata: %w", err)
		}
		m.Metadata = datatypes.JSON(raw)
	}
	return m, nil
}

func toDomainFeedback(m feedbackModel) (domain.FeedbackRecord, error) {
	out := domain.FeedbackRecord{
		FeedbackID: m.FeedbackID.String(), UserID: m.UserID, PredictionID: m.PredictionID,
		Rating: m.Rating, WasHelpful: m.WasHelpful, Comment: m.Comment, CreatedAt: m.CreatedAt.UTC(),
	}
	if len(m.Metadata) > 0 && string(m.Metadata) != "null" {
		var meta domain.FeedbackMetadata
		if err := json.Unmarshal(m.Metadata, &meta); err != nil {
			return domain.FeedbackRecord{}, fmt.Errorf("decode feedback metadata: %w", err)
		}
		out.Metadata = &meta
	}
	return out, nil
}

func toFactorsModel(f domain.AdjustmentFactors) adjustmentFactorsModel {
	return adjustmentFactorsModel{
		UserID: f.UserID, ViewsMultiplier: f.ViewsMultiplier, LikesMultiplier: f.LikesMultiplier,
		CommentsMultiplier: f.CommentsMultiplier, ConfidenceOffset: f.ConfidenceOffset,
		SampleSize: f.SampleSize, UpdatedAt: f.UpdatedAt.UTC(),
	}
}

func toDomainFactors(m adjustmentFactorsModel) domain.AdjustmentFactors {
	return domain.AdjustmentFactors{
		UserID: m.UserID, ViewsMultiplier: m.ViewsMultiplier, LikesMultiplier: m.LikesMultiplier,
		CommentsMultiplier: m.CommentsMultiplier, ConfidenceOffset: m.ConfidenceOffset,
		SampleSize: m.SampleSize, UpdatedAt: m.UpdatedAt.UTC(),
	}
}

func toPredictionModel(r domain.PredictionResult) (predictionResultModel, error) {
	id, err := uuid.Parse(r.PredictionID)
	if err != nil {
		return predictionResultModel{}, fmt.Errorf("%w: prediction_id must be a uuid", domain.ErrInvalidInput)
	}
	raw, err := json.Marshal(r)
	if err != nil {
		return predictionResultModel{}, fmt.Errorf("encode prediction payload: %w", err)
	}
	return predictionResultModel{
		PredictionID: id, UserID: r.UserID, ContentID: r.ContentID, Variant: string(r.Variant),
		ModelVersion: r.ModelVersion, Payload: datatypes.JSON(raw), GeneratedAt: r.GeneratedAt.UTC(),
	}, nil
}

func toDomainPrediction(m predictionResultModel) (domain.PredictionResult, error) {
	var out domain.PredictionResult
	if err := json.Unmarshal(m.Payload, &out); err != nil {
		return domain.PredictionResult{}, fmt.Errorf("decode prediction payload: %w", err)
	}
	out.PredictionID = m.PredictionID.String()
	out.UserID = m.UserID
	out.GeneratedAt = m.GeneratedAt.UTC()
	return out, nil
}
