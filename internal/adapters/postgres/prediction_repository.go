package postgres

import (
	"context"
	"errors"

	"github.com/Gcavazo1/ClipForge-AI-sub001/internal/domain"
	"github.com/Gcavazo1/ClipForge-AI-sub001/internal/ports"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type predictionRepository struct {
	db *gorm.DB
}

func (r *predictionRepository) Save(ctx context.Context, result domain.PredictionResult) error {
	row, err := toPredictionModel(result)
	if err != nil {
		return err
	}
	return storageErr("save prediction", r.db.WithContext(ctx).Create(&row).Error)
}

func (r *predictionRepository) Get(ctx context.Context, predictionID string) (*domain.PredictionResult, error) {
	id, err := uuid.Parse(predictionID)
	if err != nil {
		return nil, nil
	}
	var row predictionResultModel
	if err := r.db.WithContext(ctx).Where("prediction_id = ?", id).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, storageErr("load prediction", err)
	}
	out, err := toDomainPrediction(row)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

var _ ports.PredictionRepository = (*predictionRepository)(nil)
