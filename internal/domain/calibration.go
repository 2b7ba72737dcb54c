package domain

import (
	"math"
	"time"
)

const (
	DefaultCalibrationWindow = 20
	DefaultFeedbackLookback  = 100

	MinAdjustmentMultiplier = 0.5
	MaxAdjustmentMultiplier = 1.5
	neutralRating           = 3
	confidencePerRatingStep = 5
)

// AdjustmentFactors is the per-user calibration state applied to every
// prediction for that user.
type AdjustmentFactors struct {
	UserID             string    `json:"user_id"`
	ViewsMultiplier    float64   `json:"views_multiplier"`
	LikesMultiplier    float64   `json:"likes_multiplier"`
	CommentsMultiplier float64   `json:"comments_multiplier"`
	ConfidenceOffset   float64   `json:"confidence_offset"`
	SampleSize         int       `json:"sample_size"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func DefaultAdjustmentFactors(userID string) AdjustmentFactors {
	return AdjustmentFactors{
		UserID:             userID,
		ViewsMultiplier:    1,
		LikesMultiplier:    1,
		CommentsMultiplier: 1,
	}
}

// normalized maps zero or out-of-range multipliers into bounds.
func (f AdjustmentFactors) normalized() AdjustmentFactors {
	f.ViewsMultiplier = normalizeMultiplier(f.ViewsMultiplier)
	f.LikesMultiplier = normalizeMultiplier(f.LikesMultiplier)
	f.CommentsMultiplier = normalizeMultiplier(f.CommentsMultiplier)
	if math.IsNaN(f.ConfidenceOffset) || math.IsInf(f.ConfidenceOffset, 0) {
		f.ConfidenceOffset = 0
	}
	return f
}

func normalizeMultiplier(v float64) float64 {
	if v == 0 || math.IsNaN(v) {
		return 1
	}
	return clamp(v, MinAdjustmentMultiplier, MaxAdjustmentMultiplier)
}

// Calibrate derives adjustment factors from feedback ordered newest first.
// Only the first window records are used.
func Calibrate(userID string, newestFirst []FeedbackRecord, window int, now time.Time) AdjustmentFactors {
	factors := DefaultAdjustmentFactors(userID)
	factors.UpdatedAt = now
	if window <= 0 {
		window = DefaultCalibrationWindow
	}
	if len(newestFirst) > window {
		newestFirst = newestFirst[:window]
	}
	if len(newestFirst) == 0 {
		return factors
	}

	var ratingSum float64
	ratios := map[Metric][]float64{}
	for _, rec := range newestFirst {
		ratingSum += float64(rec.Rating)
		for _, pair := range rec.metricPairs() {
			ratios[pair.metric] = append(ratios[pair.metric], pair.actual/pair.predicted)
		}
	}
	factors.ViewsMultiplier = meanMultiplier(ratios[MetricViews])
	factors.LikesMultiplier = meanMultiplier(ratios[MetricLikes])
	factors.CommentsMultiplier = meanMultiplier(ratios[MetricComments])
	meanRating := ratingSum / float64(len(newestFirst))
	factors.ConfidenceOffset = (meanRating - neutralRating) * confidencePerRatingStep
	factors.SampleSize = len(newestFirst)
	return factors
}

func meanMultiplier(values []float64) float64 {
	if len(values) == 0 {
		return 1
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return clamp(sum/float64(len(values)), MinAdjustmentMultiplier, MaxAdjustmentMultiplier)
}
