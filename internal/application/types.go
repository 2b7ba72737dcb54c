package application

import (
	"log/slog"
	"time"

	"github.com/Gcavazo1/ClipForge-AI-sub001/internal/domain"
	"github.com/Gcavazo1/ClipForge-AI-sub001/internal/ports"
)

type Config struct {
	ServiceName       string
	ModelVersion      string
	IdempotencyTTL    time.Duration
	EventDedupTTL     time.Duration
	CalibrationWindow int
	FeedbackLookback  int
	AutoRecalibrate   bool
}

type Actor struct {
	SubjectID      string
	Role           string
	RequestID      string
	IdempotencyKey string
}

type PredictInput struct {
	UserID    string
	ContentID string
	Variant   string
}

type PredictAllInput struct {
	UserID    string
	ContentID string
}

type FeedbackInput struct {
	PredictionID string
	Rating       int
	WasHelpful   *bool
	Comment      string
	Metadata     *domain.FeedbackMetadata
}

type Service struct {
	cfg         Config
	logger      *slog.Logger
	performance ports.PerformanceRepository
	feedback    ports.FeedbackRepository
	calibration ports.CalibrationRepository
	predictions ports.PredictionRepository
	cache       ports.PredictionCache
	outbox      ports.OutboxRepository
	idempotency ports.IdempotencyRepository
	eventDedup  ports.EventDedupRepository
	nowFn       func() time.Time
}

type Dependencies struct {
	Config Config
	Logger *slog.Logger
	// Clock overrides the wall clock, mostly for tests.
	Clock func() time.Time

	Performance ports.PerformanceRepository
	Feedback    ports.FeedbackRepository
	Calibration ports.CalibrationRepository
	Predictions ports.PredictionRepository
	Cache       ports.PredictionCache
	Outbox      ports.OutboxRepository
	Idempotency ports.IdempotencyRepository
	EventDedup  ports.EventDedupRepository
}

func NewService(deps Dependencies) *Service {
	cfg := deps.Config
	if cfg.ServiceName == "" {
		cfg.ServiceName = "predictive-analytics"
	}
	if cfg.ModelVersion == "" {
		cfg.ModelVersion = "v2.0.0"
	}
	if cfg.IdempotencyTTL <= 0 {
		cfg.IdempotencyTTL = 7 * 24 * time.Hour
	}
	if cfg.EventDedupTTL <= 0 {
		cfg.EventDedupTTL = 7 * 24 * time.Hour
	}
	if cfg.CalibrationWindow <= 0 {
		cfg.CalibrationWindow = domain.DefaultCalibrationWindow
	}
	if cfg.FeedbackLookback <= 0 {
		cfg.FeedbackLookback = domain.DefaultFeedbackLookback
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	nowFn := deps.Clock
	if nowFn == nil {
		nowFn = func() time.Time { return time.Now().UTC() }
	}
	return &Service{
		cfg:         cfg,
		logger:      logger.With("module", "application", "layer", "service"),
		performance: deps.Performance,
		feedback:    deps.Feedback,
		calibration: deps.Calibration,
		predictions: deps.Predictions,
		cache:       deps.Cache,
		outbox:      deps.Outbox,
		idempotency: deps.Idempotency,
		eventDedup:  deps.EventDedup,
		nowFn:       nowFn,
	}
}
