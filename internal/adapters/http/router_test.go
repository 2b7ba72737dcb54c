package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Gcavazo1/ClipForge-AI-sub001/internal/adapters/cache"
	"github.com/Gcavazo1/ClipForge-AI-sub001/internal/adapters/memory"
	"github.com/Gcavazo1/ClipForge-AI-sub001/internal/application"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(ready ReadinessCheck) http.Handler {
	repos := memory.NewRepositories()
	svc := application.NewService(application.Dependencies{
		Performance: repos.Performance,
		Feedback:    repos.Feedback,
		Calibration: repos.Calibration,
		Predictions: repos.Predictions,
		Cache:       cache.NewLocalPredictionCache(cache.DefaultTTL, 100, nil),
		Outbox:      repos.Outbox,
		Idempotency: repos.Idempotency,
		EventDedup:  repos.EventDedup,
	})
	return NewRouter(NewHandler(svc, ready))
}

type envelope struct {
	Status  string          `json:"status"`
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func do(t *testing.T, h http.Handler, method, target, body string, headers map[string]string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec, env
}

func bearer(subject string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + subject}
}

func TestHealthAndReadiness(t *testing.T) {
	t.Parallel()
	rec, _ := do(t, newTestRouter(nil), http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	failing := newTestRouter(func(context.Context) error { return errors.New("db down") })
	rec, env := do(t, failing, http.MethodGet, "/readyz", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "SERVICE_UNAVAILABLE", env.Code)
}

func TestPredictRequiresBearer(t *testing.T) {
	t.Parallel()
	rec, env := do(t, newTestRouter(nil), http.MethodGet, "/v1/predictions", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHORIZED", env.Code)
}

func TestPredictEndpoint(t *testing.T) {
	t.Parallel()
	router := newTestRouter(nil)

	rec, env := do(t, router, http.MethodGet, "/v1/predictions?variant=baseline_growth", "", bearer("user-1"))
	require.Equal(t, http.StatusOK, rec.Code)
	var result struct {
		PredictionID    string   `json:"prediction_id"`
		Variant         string   `json:"variant"`
		PredictedViews  int64    `json:"predicted_views"`
		Recommendations []string `json:"recommendations"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, "baseline_growth", result.Variant)
	assert.Equal(t, int64(1100), result.PredictedViews)
	assert.Len(t, result.Recommendations, 3)

	rec, _ = do(t, router, http.MethodGet, "/v1/predictions/"+result.PredictionID, "", bearer("user-1"))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, env = do(t, router, http.MethodGet, "/v1/predictions/"+result.PredictionID, "", bearer("user-2"))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "FORBIDDEN", env.Code)

	rec, env = do(t, router, http.MethodGet, "/v1/predictions?variant=bogus", "", bearer("user-1"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", env.Code)
}

func TestVariantComparisonNeedsHistory(t *testing.T) {
	t.Parallel()
	rec, env := do(t, newTestRouter(nil), http.MethodGet, "/v1/predictions/variants", "", bearer("user-1"))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "INSUFFICIENT_DATA", env.Code)
}

func TestRecordPerformanceThenCompareVariants(t *testing.T) {
	t.Parallel()
	router := newTestRouter(nil)
	days := []string{"2026-03-02", "2026-03-03", "2026-03-04", "2026-03-05", "2026-03-06"}
	for i, day := range days {
		body := `{"content_id":"clip-` + day + `","platform":"tiktok","views":` + []string{"1000", "1100", "1300", "1200", "1500"}[i] +
			`,"likes":90,"comments":9,"watch_time_seconds":25,"published_at":"` + day + `T18:00:00Z"}`
		rec, _ := do(t, router, http.MethodPost, "/v1/performance", body, bearer("user-1"))
		require.Equal(t, http.StatusAccepted, rec.Code)
	}

	rec, env := do(t, router, http.MethodGet, "/v1/predictions/variants", "", bearer("user-1"))
	require.Equal(t, http.StatusOK, rec.Code)
	var payload struct {
		Variants map[string]json.RawMessage `json:"variants"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &payload))
	assert.Len(t, payload.Variants, 3)
	assert.Contains(t, payload.Variants, "linear_trend")
	assert.Contains(t, payload.Variants, "recent_trend")
	assert.Contains(t, payload.Variants, "baseline_growth")
}

func TestRecordPerformanceRejectsUnknownFields(t *testing.T) {
	t.Parallel()
	rec, env := do(t, newTestRouter(nil), http.MethodPost, "/v1/performance", `{"content_id":"c","shares":3}`, bearer("user-1"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", env.Code)
}

func TestFeedbackFlow(t *testing.T) {
	t.Parallel()
	router := newTestRouter(nil)
	body := `{"prediction_id":"p-1","rating":4,"was_helpful":true,"metadata":{"predicted":{"views":1000},"actual":{"views":900},"followed_recommendation":true}}`

	rec, env := do(t, router, http.MethodPost, "/v1/feedback", body, bearer("user-1"))
	assert.Equal(t, http.StatusPreconditionRequired, rec.Code)
	assert.Equal(t, "IDEMPOTENCY_KEY_REQUIRED", env.Code)

	headers := bearer("user-1")
	headers["Idempotency-Key"] = "fb-1"
	rec, _ = do(t, router, http.MethodPost, "/v1/feedback", body, headers)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, env = do(t, router, http.MethodPost, "/v1/feedback", strings.Replace(body, `"rating":4`, `"rating":1`, 1), headers)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "IDEMPOTENCY_CONFLICT", env.Code)

	headers["Idempotency-Key"] = "fb-2"
	rec, env = do(t, router, http.MethodPost, "/v1/feedback", `{"prediction_id":"p-1","rating":9,"was_helpful":true}`, headers)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", env.Code)

	rec, env = do(t, router, http.MethodGet, "/v1/feedback/summary", "", bearer("user-1"))
	require.Equal(t, http.StatusOK, rec.Code)
	var summary struct {
		TotalFeedback int     `json:"total_feedback"`
		AverageRating float64 `json:"average_rating"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &summary))
	assert.Equal(t, 1, summary.TotalFeedback)
	assert.Equal(t, 4.0, summary.AverageRating)

	rec, env = do(t, router, http.MethodPost, "/v1/calibration/recalibrate", "", bearer("user-1"))
	require.Equal(t, http.StatusOK, rec.Code)
	var factors struct {
		ViewsMultiplier float64 `json:"views_multiplier"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &factors))
	assert.InDelta(t, 0.9, factors.ViewsMultiplier, 1e-9)

	rec, _ = do(t, router, http.MethodGet, "/v1/calibration?user_id=user-1", "", bearer("user-2"))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	staff := bearer("ops-1")
	staff["X-Actor-Role"] = "support"
	rec, _ = do(t, router, http.MethodGet, "/v1/calibration?user_id=user-1", "", staff)
	assert.Equal(t, http.StatusOK, rec.Code)
}
