package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/Gcavazo1/ClipForge-AI-sub001/internal/domain"
	"github.com/Gcavazo1/ClipForge-AI-sub001/internal/ports"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type performanceRepository struct {
	db *gorm.DB
}

func (r *performanceRepository) ListByUser(ctx context.Context, userID string) ([]domain.PerformanceRecord, error) {
	var rows []performanceRecordModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("published_at asc").
		Order("ingest_seq asc").
		Find(&rows).Error; err != nil {
		return nil, storageErr("list performance records", err)
	}
	out := make([]domain.PerformanceRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDomainPerformance(row))
	}
	return out, nil
}

// Upsert writes the record and bumps the user's revision in one transaction.
// ingest_seq is not updated on conflict, so a replaced record keeps its
// original insertion position.
func (r *performanceRepository) Upsert(ctx context.Context, record domain.PerformanceRecord) error {
	row := toPerformanceModel(record)
	now := time.Now().UTC()
	row.IngestedAt = now
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "content_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"platform", "views", "likes", "comments", "watch_time_seconds", "published_at", "ingested_at",
			}),
		}).Create(&row).Error; err != nil {
			return err
		}
		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"revision":   gorm.Expr("performance_revisions.revision + 1"),
				"updated_at": now,
			}),
		}).Create(&performanceRevisionModel{UserID: record.UserID, Revision: 1, UpdatedAt: now}).Error
	})
	return storageErr("upsert performance record", err)
}

func (r *performanceRepository) Revision(ctx context.Context, userID string) (int64, error) {
	var row performanceRevisionModel
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, storageErr("load history revision", err)
	}
	return row.Revision, nil
}

var _ ports.PerformanceRepository = (*performanceRepository)(nil)
