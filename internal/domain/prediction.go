package domain

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

type Variant string

const (
	VariantLinearTrend    Variant = "linear_trend"
	VariantRecentTrend    Variant = "recent_trend"
	VariantBaselineGrowth Variant = "baseline_growth"
)

const (
	DefaultVariant = VariantLinearTrend

	// MinVariantComparisonRecords is the history needed before every
	// variant's regression is meaningful.
	MinVariantComparisonRecords = 5
	RecentTrendWindow           = 10

	NoContentSentinel = "_"

	maxTrendingTags     = 5
	minTargetDuration   = 15
	maxTargetDuration   = 60
	targetDurationScale = 1.2
)

var Variants = []Variant{VariantLinearTrend, VariantRecentTrend, VariantBaselineGrowth}

var defaultTrendingTags = []string{"#fyp", "#viral", "#trending", "#clips", "#creator"}

func ParseVariant(raw string) (Variant, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return DefaultVariant, nil
	}
	for _, v := range Variants {
		if string(v) == raw {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: unknown variant %q", ErrInvalidInput, raw)
}

// CacheKey identifies a memoized prediction. Revision is the user's history
// revision when the entry was computed; a newer revision never matches an
// older entry.
type CacheKey struct {
	UserID    string
	ContentID string
	Variant   Variant
	Revision  int64
}

func NewCacheKey(userID, contentID string, variant Variant) CacheKey {
	contentID = strings.TrimSpace(contentID)
	if contentID == "" {
		contentID = NoContentSentinel
	}
	return CacheKey{UserID: strings.TrimSpace(userID), ContentID: contentID, Variant: variant}
}

func (k CacheKey) AtRevision(revision int64) CacheKey {
	k.Revision = revision
	return k
}

// String keeps the user id as the leading segment so per-user invalidation
// can match on the prefix.
func (k CacheKey) String() string {
	base := k.UserID + ":" + k.ContentID + ":" + string(k.Variant)
	if k.Revision == 0 {
		return base
	}
	return base + "@" + strconv.FormatInt(k.Revision, 10)
}

type Insight struct {
	Category   string `json:"category"`
	Message    string `json:"message"`
	Confidence int    `json:"confidence"`
}

type PredictionResult struct {
	PredictionID          string    `json:"prediction_id"`
	UserID                string    `json:"user_id"`
	ContentID             string    `json:"content_id,omitempty"`
	Variant               Variant   `json:"variant"`
	PredictedViews        int64     `json:"predicted_views"`
	PredictedLikes        int64     `json:"predicted_likes"`
	PredictedComments     int64     `json:"predicted_comments"`
	Confidence            int       `json:"confidence"`
	BestTimeOfDay         string    `json:"best_time_of_day"`
	BestDayOfWeek         string    `json:"best_day_of_week"`
	TargetDurationSeconds int       `json:"target_duration_seconds"`
	TrendingTags          []string  `json:"trending_tags"`
	Recommendations       []string  `json:"recommendations"`
	Insights              []Insight `json:"insights"`
	SampleSize            int       `json:"sample_size"`
	ModelVersion          string    `json:"model_version"`
	GeneratedAt           time.Time `json:"generated_at"`
}

// Clone returns a copy that shares no slices with r.
func (r PredictionResult) Clone() PredictionResult {
	out := r
	out.TrendingTags = append([]string(nil), r.TrendingTags...)
	out.Recommendations = append([]string(nil), r.Recommendations...)
	out.Insights = append([]Insight(nil), r.Insights...)
	return out
}

// ComputePrediction runs the full pipeline for one variant over records
// ordered by publish time. Identity fields are left to the caller.
func ComputePrediction(records []PerformanceRecord, variant Variant, factors AdjustmentFactors, now time.Time) PredictionResult {
	ordered := SortByPublishedAt(records)
	baseline := EstimateBaseline(ordered)

	var estimate Estimate
	trended := false
	switch variant {
	case VariantRecentTrend:
		estimate, trended = PredictTrend(MostRecent(ordered, RecentTrendWindow), now)
	case VariantBaselineGrowth:
	default:
		estimate, trended = PredictTrend(ordered, now)
	}
	if !trended {
		estimate = FallbackEstimate(baseline)
	}
	metrics := estimate.Apply(factors)
	window := AnalyzeTiming(ordered)

	return PredictionResult{
		Variant:               variant,
		PredictedViews:        metrics.Views,
		PredictedLikes:        metrics.Likes,
		PredictedComments:     metrics.Comments,
		Confidence:            metrics.Confidence,
		BestTimeOfDay:         window.BestTimeOfDay,
		BestDayOfWeek:         window.BestDayOfWeek,
		TargetDurationSeconds: TargetDuration(baseline),
		TrendingTags:          TrendingTags(ordered),
		Recommendations:       GenerateRecommendations(baseline),
		Insights:              buildInsights(estimate, metrics, window, baseline, len(ordered)),
		SampleSize:            len(ordered),
	}
}

// TargetDuration suggests a clip length slightly above the average watch time.
func TargetDuration(b Baseline) int {
	return int(math.Round(clamp(b.AvgWatchTime*targetDurationScale, minTargetDuration, maxTargetDuration)))
}

// TrendingTags ranks platforms by total engagement and pads with defaults.
func TrendingTags(records []PerformanceRecord) []string {
	totals := map[string]float64{}
	for _, r := range records {
		platform := strings.ToLower(strings.TrimSpace(r.Platform))
		if platform == "" {
			continue
		}
		totals[platform] += float64(r.Likes + r.Comments)
	}
	platforms := make([]string, 0, len(totals))
	for p := range totals {
		platforms = append(platforms, p)
	}
	sort.Slice(platforms, func(i, j int) bool {
		if totals[platforms[i]] != totals[platforms[j]] {
			return totals[platforms[i]] > totals[platforms[j]]
		}
		return platforms[i] < platforms[j]
	})

	tags := make([]string, 0, maxTrendingTags)
	seen := map[string]struct{}{}
	add := func(tag string) {
		if _, ok := seen[tag]; ok || len(tags) >= maxTrendingTags {
			return
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	for _, p := range platforms {
		add("#" + strings.ReplaceAll(p, " ", ""))
	}
	for _, tag := range defaultTrendingTags {
		add(tag)
	}
	return tags
}

func buildInsights(estimate Estimate, metrics PredictedMetrics, window PostingWindow, baseline Baseline, sampleSize int) []Insight {
	insights := make([]Insight, 0, 3)
	if estimate.Source == EstimateSourceTrend {
		direction := "flat"
		switch {
		case estimate.ViewsPerDay > 0.5:
			direction = "up"
		case estimate.ViewsPerDay < -0.5:
			direction = "down"
		}
		insights = append(insights, Insight{
			Category:   "trend",
			Message:    fmt.Sprintf("views are trending %s by about %.0f per day", direction, math.Abs(estimate.ViewsPerDay)),
			Confidence: metrics.Confidence,
		})
	} else {
		insights = append(insights, Insight{
			Category:   "trend",
			Message:    fmt.Sprintf("not enough history for a trend (%d posts); forecast uses your averages plus expected growth", sampleSize),
			Confidence: metrics.Confidence,
		})
	}
	insights = append(insights, Insight{
		Category:   "timing",
		Message:    fmt.Sprintf("your posts engage best on %s around %s", window.BestDayOfWeek, window.BestTimeOfDay),
		Confidence: int(math.Round(clamp(window.HourShare*100, 0, 100))),
	})
	insights = append(insights, Insight{
		Category:   "engagement",
		Message:    fmt.Sprintf("average engagement ratio is %.1f%% with %.0fs average watch time", baseline.AvgEngagementRatio*100, baseline.AvgWatchTime),
		Confidence: metrics.Confidence,
	})
	return insights
}
