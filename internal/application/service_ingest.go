package application

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Gcavazo1/ClipForge-AI-sub001/internal/contracts"
	"github.com/Gcavazo1/ClipForge-AI-sub001/internal/domain"
)

// RecordPerformance stores a performance record on behalf of the actor.
func (s *Service) RecordPerformance(ctx context.Context, actor Actor, record domain.PerformanceRecord) error {
	userID, err := resolveUser(actor, record.UserID)
	if err != nil {
		return err
	}
	record.UserID = userID
	return s.IngestPerformance(ctx, record)
}

// IngestPerformance upserts a record and drops every cached prediction for
// its owner so the next request sees the new history.
func (s *Service) IngestPerformance(ctx context.Context, record domain.PerformanceRecord) error {
	record.UserID = strings.TrimSpace(record.UserID)
	record.ContentID = strings.TrimSpace(record.ContentID)
	record.Platform = strings.ToLower(strings.TrimSpace(record.Platform))
	record.PublishedAt = record.PublishedAt.UTC()
	if err := domain.ValidatePerformanceRecord(record); err != nil {
		return err
	}
	if err := s.performance.Upsert(ctx, record); err != nil {
		return fmt.Errorf("upsert performance record: %w", err)
	}
	if err := s.cache.InvalidateUser(ctx, record.UserID); err != nil {
		return fmt.Errorf("invalidate prediction cache: %w", err)
	}
	return nil
}

// HandleEvent consumes one event envelope. Events already processed inside
// the dedup window and unknown event types are acknowledged without effect.
func (s *Service) HandleEvent(ctx context.Context, payload []byte) error {
	var env contracts.EventEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return fmt.Errorf("%w: decode event envelope: %v", domain.ErrInvalidInput, err)
	}
	if strings.TrimSpace(env.EventID) == "" || strings.TrimSpace(env.EventType) == "" {
		return fmt.Errorf("%w: event_id and event_type are required", domain.ErrInvalidInput)
	}
	now := s.nowFn()
	duplicate, err := s.eventDedup.IsDuplicate(ctx, env.EventID, now)
	if err != nil {
		return fmt.Errorf("check event dedup: %w", err)
	}
	if duplicate {
		return nil
	}

	switch env.EventType {
	case domain.EventPerformanceRecorded:
		var data contracts.PerformanceRecordedPayload
		if err := json.Unmarshal(env.Data, &data); err != nil {
			return fmt.Errorf("%w: decode %s payload: %v", domain.ErrInvalidInput, env.EventType, err)
		}
		publishedAt, err := time.Parse(time.RFC3339, strings.TrimSpace(data.PublishedAt))
		if err != nil {
			return fmt.Errorf("%w: published_at must be RFC3339", domain.ErrInvalidInput)
		}
		if err := s.IngestPerformance(ctx, domain.PerformanceRecord{
			UserID:           data.UserID,
			ContentID:        data.ContentID,
			Platform:         data.Platform,
			Views:            data.Views,
			Likes:            data.Likes,
			Comments:         data.Comments,
			WatchTimeSeconds: data.WatchTimeSeconds,
			PublishedAt:      publishedAt,
		}); err != nil {
			return err
		}
	default:
		return nil
	}
	return s.eventDedup.MarkProcessed(ctx, env.EventID, env.EventType, now.Add(s.cfg.EventDedupTTL))
}
