package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/Gcavazo1/ClipForge-AI-sub001/internal/application"
	"github.com/Gcavazo1/ClipForge-AI-sub001/internal/contracts"
	"github.com/Gcavazo1/ClipForge-AI-sub001/internal/domain"
	"github.com/go-chi/chi/v5"
)

func (h *Handler) readyz(w http.ResponseWriter, r *http.Request) {
	if h.ready != nil {
		if err := h.ready(r.Context()); err != nil {
			logHTTPOperationError(r.Context(), "readyz", http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "not ready", err)
			writeError(w, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "not ready")
			return
		}
	}
	writeMessage(w, http.StatusOK, "ready")
}

func (h *Handler) predict(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	result, err := h.service.Predict(r.Context(), actorFromContext(r.Context()), application.PredictInput{
		UserID:    strings.TrimSpace(q.Get("user_id")),
		ContentID: strings.TrimSpace(q.Get("content_id")),
		Variant:   strings.TrimSpace(q.Get("variant")),
	})
	if err != nil {
		writeMappedError(r.Context(), w, "predict", err)
		return
	}
	writeSuccess(w, http.StatusOK, result)
}

func (h *Handler) predictAllVariants(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	results, err := h.service.PredictAllVariants(r.Context(), actorFromContext(r.Context()), application.PredictAllInput{
		UserID:    strings.TrimSpace(q.Get("user_id")),
		ContentID: strings.TrimSpace(q.Get("content_id")),
	})
	if err != nil {
		writeMappedError(r.Context(), w, "predict_all_variants", err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"variants": results})
}

func (h *Handler) getPrediction(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.GetPrediction(r.Context(), actorFromContext(r.Context()), chi.URLParam(r, "prediction_id"))
	if err != nil {
		writeMappedError(r.Context(), w, "get_prediction", err)
		return
	}
	writeSuccess(w, http.StatusOK, result)
}

func (h *Handler) recordPerformance(w http.ResponseWriter, r *http.Request) {
	var req contracts.RecordPerformanceRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "record_performance", err)
		return
	}
	publishedAt, err := time.Parse(time.RFC3339, strings.TrimSpace(req.PublishedAt))
	if err != nil {
		writeValidationError(r.Context(), w, "record_performance", err)
		return
	}
	err = h.service.RecordPerformance(r.Context(), actorFromContext(r.Context()), domain.PerformanceRecord{
		UserID:           strings.TrimSpace(r.URL.Query().Get("user_id")),
		ContentID:        req.ContentID,
		Platform:         req.Platform,
		Views:            req.Views,
		Likes:            req.Likes,
		Comments:         req.Comments,
		WatchTimeSeconds: req.WatchTimeSeconds,
		PublishedAt:      publishedAt,
	})
	if err != nil {
		writeMappedError(r.Context(), w, "record_performance", err)
		return
	}
	writeMessage(w, http.StatusAccepted, "performance recorded")
}

func (h *Handler) submitFeedback(w http.ResponseWriter, r *http.Request) {
	var req contracts.SubmitFeedbackRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "submit_feedback", err)
		return
	}
	record, err := h.service.SubmitFeedback(r.Context(), actorFromContext(r.Context()), application.FeedbackInput{
		PredictionID: req.PredictionID,
		Rating:       req.Rating,
		WasHelpful:   req.WasHelpful,
		Comment:      req.Comment,
		Metadata:     toDomainMetadata(req.Metadata),
	})
	if err != nil {
		writeMappedError(r.Context(), w, "submit_feedback", err)
		return
	}
	writeSuccess(w, http.StatusCreated, record)
}

func (h *Handler) feedbackSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.GetFeedbackSummary(r.Context(), actorFromContext(r.Context()), strings.TrimSpace(r.URL.Query().Get("user_id")))
	if err != nil {
		writeMappedError(r.Context(), w, "feedback_summary", err)
		return
	}
	writeSuccess(w, http.StatusOK, summary)
}

func (h *Handler) getCalibration(w http.ResponseWriter, r *http.Request) {
	factors, err := h.service.GetAdjustmentFactors(r.Context(), actorFromContext(r.Context()), strings.TrimSpace(r.URL.Query().Get("user_id")))
	if err != nil {
		writeMappedError(r.Context(), w, "get_calibration", err)
		return
	}
	writeSuccess(w, http.StatusOK, factors)
}

func (h *Handler) recalibrate(w http.ResponseWriter, r *http.Request) {
	factors, err := h.service.Recalibrate(r.Context(), actorFromContext(r.Context()), strings.TrimSpace(r.URL.Query().Get("user_id")))
	if err != nil {
		writeMappedError(r.Context(), w, "recalibrate", err)
		return
	}
	writeSuccess(w, http.StatusOK, factors)
}

func toDomainMetadata(in *contracts.FeedbackMetadata) *domain.FeedbackMetadata {
	if in == nil {
		return nil
	}
	return &domain.FeedbackMetadata{
		Predicted:              domain.MetricValues(in.Predicted),
		Actual:                 domain.MetricValues(in.Actual),
		FollowedRecommendation: in.FollowedRecommendation,
	}
}
