package postgres

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Gcavazo1/ClipForge-AI-sub001/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func f64(v float64) *float64 { return &v }

func TestFeedbackMetadataSurvivesJSONBColumn(t *testing.T) {
	t.Parallel()
	rec := domain.FeedbackRecord{
		FeedbackID:   uuid.NewString(),
		UserID:       "user-1",
		PredictionID: "pred-1",
		Rating:       4,
		WasHelpful:   true,
		CreatedAt:    time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
		Metadata: &domain.FeedbackMetadata{
			Predicted:              domain.MetricValues{Views: f64(1000)},
			Actual:                 domain.MetricValues{Views: f64(800), Likes: f64(12)},
			FollowedRecommendation: true,
		},
	}

	row, err := toFeedbackModel(rec)
	require.NoError(t, err)
	back, err := toDomainFeedback(row)
	require.NoError(t, err)

	require.NotNil(t, back.Metadata)
	assert.Equal(t, 1000.0, *back.Metadata.Predicted.Views)
	assert.Nil(t, back.Metadata.Predicted.Likes, "unreported metrics stay absent")
	assert.Equal(t, 12.0, *back.Metadata.Actual.Likes)
	assert.True(t, back.Metadata.FollowedRecommendation)
}

func TestFeedbackWithoutMetadataHasNullColumn(t *testing.T) {
	t.Parallel()
	row, err := toFeedbackModel(domain.FeedbackRecord{FeedbackID: uuid.NewString(), Rating: 3})
	require.NoError(t, err)
	assert.Empty(t, row.Metadata)

	back, err := toDomainFeedback(row)
	require.NoError(t, err)
	assert.Nil(t, back.Metadata)
}

func TestFeedbackModelRejectsNonUUIDIdentifier(t *testing.T) {
	t.Parallel()
	_, err := toFeedbackModel(domain.FeedbackRecord{FeedbackID: "fb-1"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestPredictionPayloadKeepsRecommendations(t *testing.T) {
	t.Parallel()
	result := domain.PredictionResult{
		PredictionID:    uuid.NewString(),
		UserID:          "user-1",
		Variant:         domain.VariantRecentTrend,
		PredictedViews:  1500,
		Confidence:      72,
		Recommendations: []string{domain.RecommendationShortenClips, domain.RecommendationCallsToAction},
		GeneratedAt:     time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
	}
	row, err := toPredictionModel(result)
	require.NoError(t, err)
	assert.Equal(t, "recent_trend", row.Variant)

	back, err := toDomainPrediction(row)
	require.NoError(t, err)
	assert.Equal(t, result.PredictionID, back.PredictionID)
	assert.Equal(t, result.Recommendations, back.Recommendations)
	assert.Equal(t, int64(1500), back.PredictedViews)
}

func TestStorageErrTagsDriverFailures(t *testing.T) {
	t.Parallel()
	assert.NoError(t, storageErr("op", nil))
	assert.ErrorIs(t, storageErr("op", errors.New("connection refused")), domain.ErrUpstreamUnavailable)
	assert.True(t, isUniqueViolation(fmt.Errorf("wrapped: %w", gorm.ErrDuplicatedKey)))
	assert.True(t, isUniqueViolation(errors.New(`ERROR: duplicate key value violates unique constraint "prediction_idempotency_pkey"`)))
	assert.False(t, isUniqueViolation(errors.New("timeout")))
}
