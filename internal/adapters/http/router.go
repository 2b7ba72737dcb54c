package http

import (
	"context"
	"net/http"

	"github.com/Gcavazo1/ClipForge-AI-sub001/internal/application"
	"github.com/go-chi/chi/v5"
)

// ReadinessCheck reports whether backing stores are reachable.
type ReadinessCheck func(ctx context.Context) error

type Handler struct {
	service *application.Service
	ready   ReadinessCheck
}

func NewHandler(service *application.Service, ready ReadinessCheck) *Handler {
	return &Handler{service: service, ready: ready}
}

func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(recoverMiddleware)
	r.Use(loggingMiddleware)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { writeMessage(w, http.StatusOK, "ok") })
	r.Get("/readyz", handler.readyz)

	r.Route("/v1", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Route("/predictions", func(r chi.Router) {
			r.Get("/", handler.predict)
			r.Get("/variants", handler.predictAllVariants)
			r.Get("/{prediction_id}", handler.getPrediction)
		})
		r.Post("/performance", handler.recordPerformance)
		r.Route("/feedback", func(r chi.Router) {
			r.Post("/", handler.submitFeedback)
			r.Get("/summary", handler.feedbackSummary)
		})
		r.Route("/calibration", func(r chi.Router) {
			r.Get("/", handler.getCalibration)
			r.Post("/recalibrate", handler.recalibrate)
		})
	})
	return r
}
