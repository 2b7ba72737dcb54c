package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Gcavazo1/ClipForge-AI-sub001/internal/contracts"
	"github.com/Gcavazo1/ClipForge-AI-sub001/internal/domain"
	"github.com/google/uuid"
)

func (s *Service) SubmitFeedback(ctx context.Context, actor Actor, input FeedbackInput) (domain.FeedbackRecord, error) {
	userID := strings.TrimSpace(actor.SubjectID)
	if userID == "" {
		return domain.FeedbackRecord{}, domain.ErrUnauthorized
	}
	comment := domain.NormalizeFeedbackComment(input.Comment)
	if err := domain.ValidateFeedback(input.Rating, input.WasHelpful, comment, input.Metadata); err != nil {
		return domain.FeedbackRecord{}, err
	}
	if strings.TrimSpace(actor.IdempotencyKey) == "" {
		return domain.FeedbackRecord{}, domain.ErrIdempotencyRequired
	}

	idemKey := "feedback:" + userID + ":" + strings.TrimSpace(actor.IdempotencyKey)
	requestHash := hashPayload(input)
	now := s.nowFn()
	existing, err := s.idempotency.Get(ctx, idemKey, now)
	if err != nil {
		return domain.FeedbackRecord{}, fmt.Errorf("load idempotency record: %w", err)
	}
	if existing != nil {
		if existing.RequestHash != requestHash || len(existing.ResponseBody) == 0 {
			return domain.FeedbackRecord{}, domain.ErrIdempotencyConflict
		}
		var replay domain.FeedbackRecord
		if err := json.Unmarshal(existing.ResponseBody, &replay); err != nil {
			return domain.FeedbackRecord{}, err
		}
		return replay, nil
	}
	if err := s.idempotency.Reserve(ctx, idemKey, requestHash, now.Add(s.cfg.IdempotencyTTL)); err != nil {
		if errors.Is(err, domain.ErrIdempotencyConflict) {
			return domain.FeedbackRecord{}, domain.ErrIdempotencyConflict
		}
		return domain.FeedbackRecord{}, fmt.Errorf("reserve idempotency key: %w", err)
	}

	stored, err := s.storeFeedback(ctx, actor, userID, comment, input, now)
	if err != nil {
		s.releaseIdempotency(ctx, idemKey)
		return domain.FeedbackRecord{}, err
	}
	encoded, err := json.Marshal(stored)
	if err != nil {
		s.releaseIdempotency(ctx, idemKey)
		return domain.FeedbackRecord{}, err
	}
	if err := s.idempotency.Complete(ctx, idemKey, 201, encoded, now); err != nil {
		s.releaseIdempotency(ctx, idemKey)
		return domain.FeedbackRecord{}, fmt.Errorf("complete idempotency record: %w", err)
	}

	if s.cfg.AutoRecalibrate {
		if _, err := s.recalibrate(ctx, userID, actor.RequestID); err != nil {
			s.logger.WarnContext(ctx, "automatic recalibration failed",
				"operation", "submit_feedback",
				"outcome", "degraded",
				"user_id", userID,
				"error", err,
			)
		}
	}
	return stored, nil
}

func (s *Service) storeFeedback(ctx context.Context, actor Actor, userID, comment string, input FeedbackInput, now time.Time) (domain.FeedbackRecord, error) {
	stored, err := s.feedback.Append(ctx, domain.FeedbackRecord{
		FeedbackID:   uuid.NewString(),
		UserID:       userID,
		PredictionID: strings.TrimSpace(input.PredictionID),
		Rating:       input.Rating,
		WasHelpful:   *input.WasHelpful,
		Comment:      comment,
		Metadata:     cloneMetadata(input.Metadata),
		CreatedAt:    now,
	})
	if err != nil {
		return domain.FeedbackRecord{}, fmt.Errorf("append feedback: %w", err)
	}
	if err := s.enqueueEvent(ctx, domain.EventFeedbackSubmitted, userID, actor.RequestID, contracts.FeedbackSubmittedPayload{
		FeedbackID:   stored.FeedbackID,
		UserID:       stored.UserID,
		PredictionID: stored.PredictionID,
		Rating:       stored.Rating,
		WasHelpful:   stored.WasHelpful,
		Accuracy:     domain.FeedbackAccuracy(stored),
		SubmittedAt:  formatTime(stored.CreatedAt),
	}); err != nil {
		return domain.FeedbackRecord{}, err
	}
	return stored, nil
}

// releaseIdempotency frees a reservation after a failed submission so the
// client can retry with the same key. It runs even when ctx is cancelled.
func (s *Service) releaseIdempotency(ctx context.Context, key string) {
	if err := s.idempotency.Release(context.WithoutCancel(ctx), key); err != nil {
		s.logger.WarnContext(ctx, "idempotency release failed",
			"operation", "submit_feedback",
			"outcome", "degraded",
			"idempotency_key", key,
			"error", err,
		)
	}
}

func (s *Service) GetFeedbackSummary(ctx context.Context, actor Actor, requestedUserID string) (domain.FeedbackSummary, error) {
	userID, err := resolveUser(actor, requestedUserID)
	if err != nil {
		return domain.FeedbackSummary{}, err
	}
	records, err := s.feedback.QueryByUser(ctx, userID, 0, false)
	if err != nil {
		return domain.FeedbackSummary{}, fmt.Errorf("query feedback: %w", err)
	}
	return domain.SummarizeFeedback(records), nil
}

// Recalibrate derives new adjustment factors from the user's recent feedback
// and persists them for the next prediction cycle.
func (s *Service) Recalibrate(ctx context.Context, actor Actor, requestedUserID string) (domain.AdjustmentFactors, error) {
	userID, err := resolveUser(actor, requestedUserID)
	if err != nil {
		return domain.AdjustmentFactors{}, err
	}
	return s.recalibrate(ctx, userID, actor.RequestID)
}

func (s *Service) GetAdjustmentFactors(ctx context.Context, actor Actor, requestedUserID string) (domain.AdjustmentFactors, error) {
	userID, err := resolveUser(actor, requestedUserID)
	if err != nil {
		return domain.AdjustmentFactors{}, err
	}
	return s.loadFactors(ctx, userID)
}

func (s *Service) recalibrate(ctx context.Context, userID, traceID string) (domain.AdjustmentFactors, error) {
	recent, err := s.feedback.QueryByUser(ctx, userID, s.cfg.FeedbackLookback, true)
	if err != nil {
		return domain.AdjustmentFactors{}, fmt.Errorf("query feedback: %w", err)
	}
	factors := domain.Calibrate(userID, recent, s.cfg.CalibrationWindow, s.nowFn())
	if err := s.calibration.SaveFactors(ctx, factors); err != nil {
		return domain.AdjustmentFactors{}, fmt.Errorf("save adjustment factors: %w", err)
	}
	if err := s.enqueueEvent(ctx, domain.EventModelRecalibrated, userID, traceID, contracts.ModelRecalibratedPayload{
		UserID:             userID,
		ViewsMultiplier:    factors.ViewsMultiplier,
		LikesMultiplier:    factors.LikesMultiplier,
		CommentsMultiplier: factors.CommentsMultiplier,
		ConfidenceOffset:   factors.ConfidenceOffset,
		SampleSize:         factors.SampleSize,
		RecalibratedAt:     formatTime(factors.UpdatedAt),
	}); err != nil {
		return domain.AdjustmentFactors{}, err
	}
	s.logger.InfoContext(ctx, "model recalibrated",
		"operation", "recalibrate",
		"outcome", "success",
		"user_id", userID,
		"sample_size", factors.SampleSize,
	)
	return factors, nil
}

func cloneMetadata(in *domain.FeedbackMetadata) *domain.FeedbackMetadata {
	if in == nil {
		return nil
	}
	out := &domain.FeedbackMetadata{FollowedRecommendation: in.FollowedRecommendation}
	out.Predicted = cloneValues(in.Predicted)
	out.Actual = cloneValues(in.Actual)
	return out
}

func cloneValues(in domain.MetricValues) domain.MetricValues {
	copyPtr := func(v *float64) *float64 {
		if v == nil {
			return nil
		}
		c := *v
		return &c
	}
	return domain.MetricValues{Views: copyPtr(in.Views), Likes: copyPtr(in.Likes), Comments: copyPtr(in.Comments)}
}
