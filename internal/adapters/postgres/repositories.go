package postgres

import (
	"github.com/Gcavazo1/ClipForge-AI-sub001/internal/ports"
	"gorm.io/gorm"
)

type Repositories struct {
	Performance ports.PerformanceRepository
	Feedback    ports.FeedbackRepository
	Calibration ports.CalibrationRepository
	Predictions ports.PredictionRepository
	Outbox      ports.OutboxRepository
	EventDedup  ports.EventDedupRepository
	Idempotency ports.IdempotencyRepository
}

func NewRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Performance: &performanceRepository{db: db},
		Feedback:    &feedbackRepository{db: db},
		Calibration: &calibrationRepository{db: db},
		Predictions: &predictionRepository{db: db},
		Outbox:      &outboxRepository{db: db},
		EventDedup:  &eventDedupRepository{db: db},
		Idempotency: &idempotencyRepository{db: db},
	}
}
