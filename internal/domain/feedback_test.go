package domain_test

import (
	"errors"
	"testing"
	"time"

	"github.com/Gcavazo1/ClipForge-AI-sub001/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f64(v float64) *float64 { return &v }

func boolPtr(v bool) *bool { return &v }

func feedbackWithViews(rating int, predicted, actual float64, at time.Time) domain.FeedbackRecord {
	return domain.FeedbackRecord{
		UserID:     "creator-1",
		Rating:     rating,
		WasHelpful: rating >= 4,
		Metadata: &domain.FeedbackMetadata{
			Predicted: domain.MetricValues{Views: f64(predicted)},
			Actual:    domain.MetricValues{Views: f64(actual)},
		},
		CreatedAt: at,
	}
}

func TestValidateFeedback(t *testing.T) {
	t.Parallel()

	require.NoError(t, domain.ValidateFeedback(5, boolPtr(true), "", nil))
	require.NoError(t, domain.ValidateFeedback(1, boolPtr(false), "meh", nil))

	for _, rating := range []int{0, 6, -1} {
		err := domain.ValidateFeedback(rating, boolPtr(true), "", nil)
		assert.True(t, errors.Is(err, domain.ErrInvalidInput), "rating %d", rating)
	}
	err := domain.ValidateFeedback(3, nil, "", nil)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	err = domain.ValidateFeedback(3, boolPtr(true), "", &domain.FeedbackMetadata{
		Actual: domain.MetricValues{Likes: f64(-4)},
	})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestFeedbackAccuracyViewsOnly(t *testing.T) {
	t.Parallel()

	rec := feedbackWithViews(5, 1000, 1200, day0)
	assert.InDelta(t, 32, domain.FeedbackAccuracy(rec), 1e-9)

	perfect := feedbackWithViews(5, 1000, 1000, day0)
	assert.InDelta(t, 40, domain.FeedbackAccuracy(perfect), 1e-9)
}

func TestFeedbackAccuracyAllMetrics(t *testing.T) {
	t.Parallel()

	rec := domain.FeedbackRecord{
		Rating: 4,
		Metadata: &domain.FeedbackMetadata{
			Predicted: domain.MetricValues{Views: f64(1000), Likes: f64(100), Comments: f64(10)},
			Actual:    domain.MetricValues{Views: f64(900), Likes: f64(100), Comments: f64(15)},
		},
	}
	// views 0.9*0.4 + likes 1.0*0.3 + comments 0.5*0.3
	assert.InDelta(t, 81, domain.FeedbackAccuracy(rec), 1e-9)
}

func TestFeedbackAccuracyNotComputable(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0.0, domain.FeedbackAccuracy(domain.FeedbackRecord{Rating: 3}))

	onlyPredicted := domain.FeedbackRecord{Metadata: &domain.FeedbackMetadata{
		Predicted: domain.MetricValues{Views: f64(1000)},
		Actual:    domain.MetricValues{Likes: f64(10)},
	}}
	assert.False(t, onlyPredicted.HasAccuracy())
	assert.Equal(t, 0.0, domain.FeedbackAccuracy(onlyPredicted))

	zeroPrediction := feedbackWithViews(3, 0, 50, day0)
	assert.False(t, zeroPrediction.HasAccuracy())
}

func TestSummarizeFeedbackEmpty(t *testing.T) {
	t.Parallel()

	summary := domain.SummarizeFeedback(nil)
	assert.Equal(t, domain.FeedbackSummary{AccuracyTrend: []domain.AccuracyPoint{}}, summary)
	assert.NotNil(t, summary.AccuracyTrend)
}

func TestSummarizeFeedbackAggregates(t *testing.T) {
	t.Parallel()

	second := day0.Add(24 * time.Hour)
	followed := feedbackWithViews(2, 1000, 500, second)
	followed.Metadata.FollowedRecommendation = true
	records := []domain.FeedbackRecord{
		followed,
		feedbackWithViews(5, 1000, 1000, day0),
		feedbackWithViews(5, 1000, 1200, day0.Add(2*time.Hour)),
		{UserID: "creator-1", Rating: 4, WasHelpful: true, CreatedAt: second},
	}

	summary := domain.SummarizeFeedback(records)
	assert.Equal(t, 4, summary.TotalFeedback)
	assert.InDelta(t, 4, summary.AverageRating, 1e-9)
	assert.InDelta(t, 75, summary.HelpfulPercentage, 1e-9)
	assert.InDelta(t, 0.25, summary.RecommendationFollowRate, 1e-9)
	require.Len(t, summary.AccuracyTrend, 2)
	assert.Equal(t, "2026-03-02", summary.AccuracyTrend[0].Date)
	assert.InDelta(t, 36, summary.AccuracyTrend[0].Accuracy, 1e-9)
	assert.Equal(t, "2026-03-03", summary.AccuracyTrend[1].Date)
	assert.InDelta(t, 20, summary.AccuracyTrend[1].Accuracy, 1e-9)
}

func TestCalibrateWithoutFeedbackReturnsDefaults(t *testing.T) {
	t.Parallel()

	factors := domain.Calibrate("creator-1", nil, 20, day0)
	assert.Equal(t, 1.0, factors.ViewsMultiplier)
	assert.Equal(t, 1.0, factors.LikesMultiplier)
	assert.Equal(t, 1.0, factors.CommentsMultiplier)
	assert.Equal(t, 0.0, factors.ConfidenceOffset)
	assert.Equal(t, 0, factors.SampleSize)
	assert.Equal(t, "creator-1", factors.UserID)
}

func TestCalibrateClampsMultipliers(t *testing.T) {
	t.Parallel()

	records := []domain.FeedbackRecord{
		{Rating: 5, Metadata: &domain.FeedbackMetadata{
			Predicted: domain.MetricValues{Views: f64(100), Likes: f64(100)},
			Actual:    domain.MetricValues{Views: f64(900), Likes: f64(5)},
		}},
	}
	factors := domain.Calibrate("creator-1", records, 20, day0)
	assert.Equal(t, domain.MaxAdjustmentMultiplier, factors.ViewsMultiplier)
	assert.Equal(t, domain.MinAdjustmentMultiplier, factors.LikesMultiplier)
	assert.Equal(t, 1.0, factors.CommentsMultiplier)
	assert.InDelta(t, 10, factors.ConfidenceOffset, 1e-9)
}

func TestCalibrateUsesMostRecentWindow(t *testing.T) {
	t.Parallel()

	newestFirst := make([]domain.FeedbackRecord, 0, 30)
	for i := 0; i < 20; i++ {
		newestFirst = append(newestFirst, feedbackWithViews(1, 1000, 1100, day0))
	}
	for i := 0; i < 10; i++ {
		newestFirst = append(newestFirst, feedbackWithViews(5, 1000, 500, day0))
	}
	factors := domain.Calibrate("creator-1", newestFirst, 20, day0)
	assert.InDelta(t, 1.1, factors.ViewsMultiplier, 1e-9)
	assert.InDelta(t, -10, factors.ConfidenceOffset, 1e-9)
	assert.Equal(t, 20, factors.SampleSize)
}

func TestCalibrateMultipliersStayInBounds(t *testing.T) {
	t.Parallel()

	ratios := []float64{0, 0.01, 0.4, 0.5, 1, 1.49, 1.5, 3, 1000}
	for _, ratio := range ratios {
		factors := domain.Calibrate("u", []domain.FeedbackRecord{feedbackWithViews(3, 1000, 1000*ratio, day0)}, 20, day0)
		assert.GreaterOrEqual(t, factors.ViewsMultiplier, 0.5, "ratio %v", ratio)
		assert.LessOrEqual(t, factors.ViewsMultiplier, 1.5, "ratio %v", ratio)
	}
}
