package postgres

import (
	"context"
	"errors"

	"github.com/Gcavazo1/ClipForge-AI-sub001/internal/domain"
	"github.com/Gcavazo1/ClipForge-AI-sub001/internal/ports"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type calibrationRepository struct {
	db *gorm.DB
}

func (r *calibrationRepository) LoadFactors(ctx context.Context, userID string) (*domain.AdjustmentFactors, error) {
	var row adjustmentFactorsModel
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, storageErr("load adjustment factors", err)
	}
	out := toDomainFactors(row)
	return &out, nil
}

func (r *calibrationRepository) SaveFactors(ctx context.Context, factors domain.AdjustmentFactors) error {
	row := toFactorsModel(factors)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		UpdateAll: true,
	}).Create(&row).Error
	return storageErr("save adjustment factors", err)
}

var _ ports.CalibrationRepository = (*calibrationRepository)(nil)
