package domain

import (
	"math"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	MinTrendRecords      = 3
	FallbackGrowthFactor = 1.1
	FallbackConfidence   = 70

	MinPredictedViews    = 100
	MinPredictedLikes    = 10
	MinPredictedComments = 1
)

type EstimateSource string

const (
	EstimateSourceTrend    EstimateSource = "trend"
	EstimateSourceBaseline EstimateSource = "baseline"
)

// Estimate is an unadjusted metric forecast.
type Estimate struct {
	Views      float64
	Likes      float64
	Comments   float64
	Confidence float64
	Source     EstimateSource
	// ViewsPerDay is the fitted views slope; zero for baseline estimates.
	ViewsPerDay float64
}

// PredictedMetrics is an Estimate after calibration, floors and rounding.
type PredictedMetrics struct {
	Views      int64
	Likes      int64
	Comments   int64
	Confidence int
}

// PredictTrend fits one linear model per metric against publish time and
// evaluates each at now. It reports false when the history is too short or
// every record shares one timestamp; callers then use FallbackEstimate.
func PredictTrend(records []PerformanceRecord, now time.Time) (Estimate, bool) {
	if len(records) < MinTrendRecords {
		return Estimate{}, false
	}
	ordered := SortByPublishedAt(records)
	origin := ordered[0].PublishedAt
	xs := make([]float64, len(ordered))
	views := make([]float64, len(ordered))
	likes := make([]float64, len(ordered))
	comments := make([]float64, len(ordered))
	for i, r := range ordered {
		xs[i] = r.PublishedAt.Sub(origin).Seconds()
		views[i] = float64(r.Views)
		likes[i] = float64(r.Likes)
		comments[i] = float64(r.Comments)
	}

	var viewsFit, likesFit, commentsFit LinearFit
	var viewsOK, likesOK, commentsOK bool
	var g errgroup.Group
	g.Go(func() error {
		viewsFit, viewsOK = FitLinear(xs, views)
		return nil
	})
	g.Go(func() error {
		likesFit, likesOK = FitLinear(xs, likes)
		return nil
	})
	g.Go(func() error {
		commentsFit, commentsOK = FitLinear(xs, comments)
		return nil
	})
	_ = g.Wait()
	if !viewsOK || !likesOK || !commentsOK {
		return Estimate{}, false
	}

	x := now.Sub(origin).Seconds()
	return Estimate{
		Views:       math.Max(viewsFit.At(x), MinPredictedViews),
		Likes:       math.Max(likesFit.At(x), MinPredictedLikes),
		Comments:    math.Max(commentsFit.At(x), MinPredictedComments),
		Confidence:  math.Round(clamp(viewsFit.RSquared*100, 0, 100)),
		Source:      EstimateSourceTrend,
		ViewsPerDay: viewsFit.Slope * (24 * time.Hour).Seconds(),
	}, true
}

// FallbackEstimate scales the baseline by the fixed growth factor.
func FallbackEstimate(b Baseline) Estimate {
	return Estimate{
		Views:      b.AvgViews * FallbackGrowthFactor,
		Likes:      b.AvgLikes * FallbackGrowthFactor,
		Comments:   b.AvgComments * FallbackGrowthFactor,
		Confidence: FallbackConfidence,
		Source:     EstimateSourceBaseline,
	}
}

// Apply multiplies each metric by its calibration multiplier, shifts the
// confidence by the offset and enforces the floors and the [0,100] bound.
func (e Estimate) Apply(f AdjustmentFactors) PredictedMetrics {
	f = f.normalized()
	return PredictedMetrics{
		Views:      flooredCount(e.Views*f.ViewsMultiplier, MinPredictedViews),
		Likes:      flooredCount(e.Likes*f.LikesMultiplier, MinPredictedLikes),
		Comments:   flooredCount(e.Comments*f.CommentsMultiplier, MinPredictedComments),
		Confidence: int(math.Round(clamp(e.Confidence+f.ConfidenceOffset, 0, 100))),
	}
}

func flooredCount(value float64, floor int64) int64 {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return floor
	}
	rounded := int64(math.Round(value))
	if rounded < floor {
		return floor
	}
	return rounded
}

func clamp(value, min, max float64) float64 {
	if math.IsNaN(value) {
		return min
	}
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
