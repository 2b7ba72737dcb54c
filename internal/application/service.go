package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/Gcavazo1/ClipForge-AI-sub001/internal/contracts"
	"github.com/Gcavazo1/ClipForge-AI-sub001/internal/domain"
	"github.com/google/uuid"
)

// Predict returns the cached prediction for the key when it is still fresh
// and otherwise runs the pipeline and caches the new result.
func (s *Service) Predict(ctx context.Context, actor Actor, input PredictInput) (domain.PredictionResult, error) {
	userID, err := resolveUser(actor, input.UserID)
	if err != nil {
		return domain.PredictionResult{}, err
	}
	variant, err := domain.ParseVariant(input.Variant)
	if err != nil {
		return domain.PredictionResult{}, err
	}
	revision, err := s.historyRevision(ctx, userID)
	if err != nil {
		return domain.PredictionResult{}, err
	}
	key := domain.NewCacheKey(userID, input.ContentID, variant).AtRevision(revision)
	if cached, ok, err := s.cache.Get(ctx, key); err != nil {
		return domain.PredictionResult{}, fmt.Errorf("read prediction cache: %w", err)
	} else if ok {
		return *cached, nil
	}

	records, err := s.loadRecords(ctx, userID)
	if err != nil {
		return domain.PredictionResult{}, err
	}
	factors, err := s.loadFactors(ctx, userID)
	if err != nil {
		return domain.PredictionResult{}, err
	}
	return s.computeAndStore(ctx, actor, key, records, factors)
}

// PredictAllVariants runs every variant side by side. Unlike Predict it
// refuses short histories instead of falling back to the baseline.
func (s *Service) PredictAllVariants(ctx context.Context, actor Actor, input PredictAllInput) (map[domain.Variant]domain.PredictionResult, error) {
	userID, err := resolveUser(actor, input.UserID)
	if err != nil {
		return nil, err
	}
	revision, err := s.historyRevision(ctx, userID)
	if err != nil {
		return nil, err
	}
	records, err := s.loadRecords(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(records) < domain.MinVariantComparisonRecords {
		return nil, fmt.Errorf("%w: %d records, variant comparison needs %d", domain.ErrInsufficientData, len(records), domain.MinVariantComparisonRecords)
	}
	factors, err := s.loadFactors(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make(map[domain.Variant]domain.PredictionResult, len(domain.Variants))
	for _, variant := range domain.Variants {
		key := domain.NewCacheKey(userID, input.ContentID, variant).AtRevision(revision)
		cached, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("read prediction cache: %w", err)
		}
		if ok {
			out[variant] = *cached
			continue
		}
		result, err := s.computeAndStore(ctx, actor, key, records, factors)
		if err != nil {
			return nil, err
		}
		out[variant] = result
	}
	return out, nil
}

// GetPrediction loads a stored prediction. Only its owner or staff may read it.
func (s *Service) GetPrediction(ctx context.Context, actor Actor, predictionID string) (domain.PredictionResult, error) {
	if strings.TrimSpace(actor.SubjectID) == "" {
		return domain.PredictionResult{}, domain.ErrUnauthorized
	}
	predictionID = strings.TrimSpace(predictionID)
	if predictionID == "" {
		return domain.PredictionResult{}, fmt.Errorf("%w: prediction_id is required", domain.ErrInvalidInput)
	}
	row, err := s.predictions.Get(ctx, predictionID)
	if err != nil {
		return domain.PredictionResult{}, fmt.Errorf("load prediction: %w", err)
	}
	if row == nil {
		return domain.PredictionResult{}, domain.ErrNotFound
	}
	if _, err := resolveUser(actor, row.UserID); err != nil {
		return domain.PredictionResult{}, err
	}
	return *row, nil
}

func (s *Service) computeAndStore(ctx context.Context, actor Actor, key domain.CacheKey, records []domain.PerformanceRecord, factors domain.AdjustmentFactors) (domain.PredictionResult, error) {
	now := s.nowFn()
	result := domain.ComputePrediction(records, key.Variant, factors, now)
	result.PredictionID = uuid.NewString()
	result.UserID = key.UserID
	if key.ContentID != domain.NoContentSentinel {
		result.ContentID = key.ContentID
	}
	result.ModelVersion = s.cfg.ModelVersion
	result.GeneratedAt = now

	if err := s.predictions.Save(ctx, result); err != nil {
		return domain.PredictionResult{}, fmt.Errorf("save prediction: %w", err)
	}
	if err := s.enqueueEvent(ctx, domain.EventPredictionGenerated, result.UserID, actor.RequestID, contracts.PredictionGeneratedPayload{
		PredictionID:      result.PredictionID,
		UserID:            result.UserID,
		ContentID:         result.ContentID,
		Variant:           string(result.Variant),
		PredictedViews:    result.PredictedViews,
		PredictedLikes:    result.PredictedLikes,
		PredictedComments: result.PredictedComments,
		Confidence:        result.Confidence,
		GeneratedAt:       formatTime(now),
	}); err != nil {
		return domain.PredictionResult{}, err
	}
	if err := s.cache.Put(ctx, key, result); err != nil {
		return domain.PredictionResult{}, fmt.Errorf("write prediction cache: %w", err)
	}
	s.logger.InfoContext(ctx, "prediction computed",
		"operation", "predict",
		"outcome", "success",
		"user_id", result.UserID,
		"variant", string(result.Variant),
		"sample_size", result.SampleSize,
		"confidence", result.Confidence,
	)
	return result, nil
}

// historyRevision is read before the history itself, so an entry is never
// cached under a revision newer than the records it was computed from.
func (s *Service) historyRevision(ctx context.Context, userID string) (int64, error) {
	revision, err := s.performance.Revision(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("load history revision: %w", err)
	}
	return revision, nil
}

func (s *Service) loadRecords(ctx context.Context, userID string) ([]domain.PerformanceRecord, error) {
	records, err := s.performance.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load performance records: %w", err)
	}
	return records, nil
}

func (s *Service) loadFactors(ctx context.Context, userID string) (domain.AdjustmentFactors, error) {
	factors, err := s.calibration.LoadFactors(ctx, userID)
	if err != nil {
		return domain.AdjustmentFactors{}, fmt.Errorf("load adjustment factors: %w", err)
	}
	if factors == nil {
		return domain.DefaultAdjustmentFactors(userID), nil
	}
	return *factors, nil
}
