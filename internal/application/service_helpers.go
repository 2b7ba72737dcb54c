package application

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Gcavazo1/ClipForge-AI-sub001/internal/contracts"
	"github.com/Gcavazo1/ClipForge-AI-sub001/internal/domain"
	"github.com/Gcavazo1/ClipForge-AI-sub001/internal/ports"
	"github.com/google/uuid"
)

func (s *Service) enqueueEvent(ctx context.Context, eventType, partitionKey, traceID string, data any) error {
	occurredAt := s.nowFn()
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", eventType, err)
	}
	eventID := uuid.New()
	envelope := contracts.EventEnvelope{
		EventID:          eventID.String(),
		EventType:        eventType,
		OccurredAt:       occurredAt,
		PartitionKeyPath: domain.PartitionKeyPath(eventType),
		PartitionKey:     partitionKey,
		SourceService:    s.cfg.ServiceName,
		TraceID:          traceID,
		SchemaVersion:    domain.EventSchemaVersion,
		Data:             raw,
	}
	payload, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("encode %s envelope: %w", eventType, err)
	}
	if err := s.outbox.Enqueue(ctx, ports.OutboxEvent{
		EventID:          eventID,
		EventType:        eventType,
		PartitionKey:     partitionKey,
		PartitionKeyPath: envelope.PartitionKeyPath,
		Payload:          payload,
		OccurredAt:       occurredAt,
		SchemaVersion:    domain.EventSchemaVersion,
		TraceID:          traceID,
	}); err != nil {
		return fmt.Errorf("enqueue %s: %w", eventType, err)
	}
	return nil
}

// resolveUser picks the subject the request acts on. Staff roles may act on
// any user; everyone else only on themselves.
func resolveUser(actor Actor, requested string) (string, error) {
	if strings.TrimSpace(actor.SubjectID) == "" {
		return "", domain.ErrUnauthorized
	}
	requested = strings.TrimSpace(requested)
	if requested == "" {
		return strings.TrimSpace(actor.SubjectID), nil
	}
	role := strings.ToLower(strings.TrimSpace(actor.Role))
	if requested != strings.TrimSpace(actor.SubjectID) && role != "admin" && role != "support" {
		return "", domain.ErrForbidden
	}
	return requested, nil
}

func hashPayload(v interface{}) string {
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
