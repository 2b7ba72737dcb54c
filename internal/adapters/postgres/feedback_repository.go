package postgres

import (
	"context"

	"github.com/Gcavazo1/ClipForge-AI-sub001/internal/domain"
	"github.com/Gcavazo1/ClipForge-AI-sub001/internal/ports"
	"gorm.io/gorm"
)

type feedbackRepository struct {
	db *gorm.DB
}

func (r *feedbackRepository) Append(ctx context.Context, record domain.FeedbackRecord) (domain.FeedbackRecord, error) {
	row, err := toFeedbackModel(record)
	if err != nil {
		return domain.FeedbackRecord{}, err
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return domain.FeedbackRecord{}, storageErr("append feedback", err)
	}
	return toDomainFeedback(row)
}

func (r *feedbackRepository) QueryByUser(ctx context.Context, userID string, limit int, newestFirst bool) ([]domain.FeedbackRecord, error) {
	order := "created_at asc"
	if newestFirst {
		order = "created_at desc"
	}
	query := r.db.WithContext(ctx).Where("user_id = ?", userID).Order(order)
	if limit > 0 {
		query = query.Limit(limit)
	}
	var rows []feedbackModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, storageErr("query feedback", err)
	}
	out := make([]domain.FeedbackRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := toDomainFeedback(row)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

var _ ports.FeedbackRepository = (*feedbackRepository)(nil)
