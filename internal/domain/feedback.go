package domain

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

type Metric string

const (
	MetricViews    Metric = "views"
	MetricLikes    Metric = "likes"
	MetricComments Metric = "comments"
)

const (
	MinRating = 1
	MaxRating = 5

	maxFeedbackCommentLength = 2000
	trendDateLayout          = "2006-01-02"
)

var accuracyWeights = []struct {
	metric Metric
	weight float64
}{
	{MetricViews, 0.4},
	{MetricLikes, 0.3},
	{MetricComments, 0.3},
}

// MetricValues carries optional per-metric numbers; nil means not reported.
type MetricValues struct {
	Views    *float64 `json:"views,omitempty"`
	Likes    *float64 `json:"likes,omitempty"`
	Comments *float64 `json:"comments,omitempty"`
}

func (v MetricValues) get(m Metric) *float64 {
	switch m {
	case MetricViews:
		return v.Views
	case MetricLikes:
		return v.Likes
	case MetricComments:
		return v.Comments
	default:
		return nil
	}
}

// FeedbackMetadata records what was predicted, what actually happened and
// whether the creator followed the recommendations.
type FeedbackMetadata struct {
	Predicted              MetricValues `json:"predicted"`
	Actual                 MetricValues `json:"actual"`
	FollowedRecommendation bool         `json:"followed_recommendation"`
}

type FeedbackRecord struct {
	FeedbackID   string            `json:"feedback_id"`
	UserID       string            `json:"user_id"`
	PredictionID string            `json:"prediction_id"`
	Rating       int               `json:"rating"`
	WasHelpful   bool              `json:"was_helpful"`
	Comment      string            `json:"comment,omitempty"`
	Metadata     *FeedbackMetadata `json:"metadata,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
}

type AccuracyPoint struct {
	Date     string  `json:"date"`
	Accuracy float64 `json:"accuracy"`
}

type FeedbackSummary struct {
	AverageRating            float64         `json:"average_rating"`
	TotalFeedback            int             `json:"total_feedback"`
	HelpfulPercentage        float64         `json:"helpful_percentage"`
	RecommendationFollowRate float64         `json:"recommendation_follow_rate"`
	AccuracyTrend            []AccuracyPoint `json:"accuracy_trend"`
}

func ValidateFeedback(rating int, wasHelpful *bool, comment string, metadata *FeedbackMetadata) error {
	if rating < MinRating || rating > MaxRating {
		return fmt.Errorf("%w: rating must be between %d and %d", ErrInvalidInput, MinRating, MaxRating)
	}
	if wasHelpful == nil {
		return fmt.Errorf("%w: was_helpful is required", ErrInvalidInput)
	}
	if len(comment) > maxFeedbackCommentLength {
		return fmt.Errorf("%w: comment exceeds %d characters", ErrInvalidInput, maxFeedbackCommentLength)
	}
	if metadata == nil {
		return nil
	}
	for _, w := range accuracyWeights {
		for _, v := range []*float64{metadata.Predicted.get(w.metric), metadata.Actual.get(w.metric)} {
			if v != nil && (*v < 0 || math.IsNaN(*v) || math.IsInf(*v, 0)) {
				return fmt.Errorf("%w: %s values must be non-negative numbers", ErrInvalidInput, w.metric)
			}
		}
	}
	return nil
}

type metricPair struct {
	metric    Metric
	weight    float64
	predicted float64
	actual    float64
}

// metricPairs lists metrics carrying both a positive prediction and an actual.
func (r FeedbackRecord) metricPairs() []metricPair {
	if r.Metadata == nil {
		return nil
	}
	out := make([]metricPair, 0, len(accuracyWeights))
	for _, w := range accuracyWeights {
		p := r.Metadata.Predicted.get(w.metric)
		a := r.Metadata.Actual.get(w.metric)
		if p == nil || a == nil || *p <= 0 {
			continue
		}
		out = append(out, metricPair{metric: w.metric, weight: w.weight, predicted: *p, actual: *a})
	}
	return out
}

// HasAccuracy reports whether at least one metric can be scored.
func (r FeedbackRecord) HasAccuracy() bool {
	return len(r.metricPairs()) > 0
}

// FeedbackAccuracy scores a prediction against observed outcomes as a
// percentage. Missing metrics contribute nothing and the remaining weights
// are not rescaled, so a perfect views-only match scores 40.
func FeedbackAccuracy(r FeedbackRecord) float64 {
	var total float64
	for _, pair := range r.metricPairs() {
		total += (1 - math.Abs(pair.actual-pair.predicted)/pair.predicted) * pair.weight
	}
	return total * 100
}

func SummarizeFeedback(records []FeedbackRecord) FeedbackSummary {
	summary := FeedbackSummary{AccuracyTrend: []AccuracyPoint{}}
	if len(records) == 0 {
		return summary
	}
	var ratingSum float64
	var helpful, followed int
	type dayAccumulator struct {
		sum   float64
		count int
	}
	days := map[string]*dayAccumulator{}
	for _, rec := range records {
		ratingSum += float64(rec.Rating)
		if rec.WasHelpful {
			helpful++
		}
		if rec.Metadata != nil && rec.Metadata.FollowedRecommendation {
			followed++
		}
		if !rec.HasAccuracy() {
			continue
		}
		day := rec.CreatedAt.UTC().Format(trendDateLayout)
		acc, ok := days[day]
		if !ok {
			acc = &dayAccumulator{}
			days[day] = acc
		}
		acc.sum += FeedbackAccuracy(rec)
		acc.count++
	}

	total := float64(len(records))
	summary.TotalFeedback = len(records)
	summary.AverageRating = ratingSum / total
	summary.HelpfulPercentage = float64(helpful) / total * 100
	summary.RecommendationFollowRate = float64(followed) / total
	for day, acc := range days {
		summary.AccuracyTrend = append(summary.AccuracyTrend, AccuracyPoint{
			Date:     day,
			Accuracy: acc.sum / float64(acc.count),
		})
	}
	sort.Slice(summary.AccuracyTrend, func(i, j int) bool {
		return summary.AccuracyTrend[i].Date < summary.AccuracyTrend[j].Date
	})
	return summary
}

func NormalizeFeedbackComment(comment string) string {
	return strings.TrimSpace(comment)
}
