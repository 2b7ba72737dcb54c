package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Gcavazo1/ClipForge-AI-sub001/internal/domain"
	"github.com/Gcavazo1/ClipForge-AI-sub001/internal/ports"
	"github.com/google/uuid"
)

// Repositories keeps every store in process memory. It backs tests and the
// STORAGE_DRIVER=memory runtime.
type Repositories struct {
	Performance *PerformanceRepository
	Feedback    *FeedbackRepository
	Calibration *CalibrationRepository
	Predictions *PredictionRepository
	Outbox      *OutboxRepository
	Idempotency *IdempotencyRepository
	EventDedup  *EventDedupRepository
}

func NewRepositories() *Repositories {
	return &Repositories{
		Performance: &PerformanceRepository{records: map[string]map[string]storedPerformance{}, revisions: map[string]int64{}},
		Feedback:    &FeedbackRepository{},
		Calibration: &CalibrationRepository{records: map[string]domain.AdjustmentFactors{}},
		Predictions: &PredictionRepository{records: map[string]domain.PredictionResult{}},
		Outbox:      &OutboxRepository{},
		Idempotency: &IdempotencyRepository{records: map[string]ports.IdempotencyRecord{}},
		EventDedup:  &EventDedupRepository{records: map[string]time.Time{}},
	}
}

type storedPerformance struct {
	record domain.PerformanceRecord
	seq    int64
}

type PerformanceRepository struct {
	mu        sync.RWMutex
	records   map[string]map[string]storedPerformance
	revisions map[string]int64
	nextSeq   int64
}

func (r *PerformanceRepository) ListByUser(_ context.Context, userID string) ([]domain.PerformanceRecord, error) {
	r.mu.RLock()
	stored := make([]storedPerformance, 0, len(r.records[userID]))
	for _, entry := range r.records[userID] {
		stored = append(stored, entry)
	}
	r.mu.RUnlock()

	sort.Slice(stored, func(i, j int) bool {
		if stored[i].record.PublishedAt.Equal(stored[j].record.PublishedAt) {
			return stored[i].seq < stored[j].seq
		}
		return stored[i].record.PublishedAt.Before(stored[j].record.PublishedAt)
	})
	out := make([]domain.PerformanceRecord, 0, len(stored))
	for _, entry := range stored {
		out = append(out, entry.record)
	}
	return out, nil
}

// Upsert replaces the record for (user, content). A replaced record keeps
// its original insertion position.
func (r *PerformanceRepository) Upsert(_ context.Context, record domain.PerformanceRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	byContent, ok := r.records[record.UserID]
	if !ok {
		byContent = map[string]storedPerformance{}
		r.records[record.UserID] = byContent
	}
	entry, exists := byContent[record.ContentID]
	if !exists {
		r.nextSeq++
		entry.seq = r.nextSeq
	}
	entry.record = record
	byContent[record.ContentID] = entry
	r.revisions[record.UserID]++
	return nil
}

func (r *PerformanceRepository) Revision(_ context.Context, userID string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.revisions[userID], nil
}

type FeedbackRepository struct {
	mu      sync.RWMutex
	records []domain.FeedbackRecord
}

func (r *FeedbackRepository) Append(_ context.Context, record domain.FeedbackRecord) (domain.FeedbackRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if record.FeedbackID == "" {
		record.FeedbackID = uuid.NewString()
	}
	r.records = append(r.records, record)
	return record, nil
}

func (r *FeedbackRepository) QueryByUser(_ context.Context, userID string, limit int, newestFirst bool) ([]domain.FeedbackRecord, error) {
	r.mu.RLock()
	out := make([]domain.FeedbackRecord, 0)
	for _, rec := range r.records {
		if rec.UserID == userID {
			out = append(out, rec)
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if newestFirst {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type CalibrationRepository struct {
	mu      sync.RWMutex
	records map[string]domain.AdjustmentFactors
}

func (r *CalibrationRepository) LoadFactors(_ context.Context, userID string) (*domain.AdjustmentFactors, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	row, ok := r.records[userID]
	if !ok {
		return nil, nil
	}
	return &row, nil
}

func (r *CalibrationRepository) SaveFactors(_ context.Context, factors domain.AdjustmentFactors) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[factors.UserID] = factors
	return nil
}

type PredictionRepository struct {
	mu      sync.RWMutex
	records map[string]domain.PredictionResult
}

func (r *PredictionRepository) Save(_ context.Context, result domain.PredictionResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[result.PredictionID] = result
	return nil
}

func (r *PredictionRepository) Get(_ context.Context, predictionID string) (*domain.PredictionResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	row, ok := r.records[predictionID]
	if !ok {
		return nil, nil
	}
	return &row, nil
}

type OutboxRepository struct {
	mu      sync.Mutex
	records []ports.OutboxRecord
}

func (r *OutboxRepository) Enqueue(_ context.Context, event ports.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, ports.OutboxRecord{
		OutboxID:     event.EventID,
		EventType:    event.EventType,
		PartitionKey: event.PartitionKey,
		Payload:      append([]byte(nil), event.Payload...),
		FirstSeenAt:  event.OccurredAt,
	})
	return nil
}

func (r *OutboxRepository) FetchUnpublished(_ context.Context, limit int) ([]ports.OutboxRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ports.OutboxRecord, 0)
	for _, rec := range r.records {
		if rec.PublishedAt != nil {
			continue
		}
		out = append(out, rec)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *OutboxRepository) MarkPublished(_ context.Context, outboxID uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.records {
		if r.records[i].OutboxID == outboxID {
			publishedAt := at
			r.records[i].PublishedAt = &publishedAt
			return nil
		}
	}
	return nil
}

func (r *OutboxRepository) MarkFailed(_ context.Context, outboxID uuid.UUID, errMsg string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.records {
		if r.records[i].OutboxID == outboxID {
			msg, failedAt := errMsg, at
			r.records[i].RetryCount++
			r.records[i].LastError = &msg
			r.records[i].LastErrorAt = &failedAt
			return nil
		}
	}
	return nil
}

// Events returns every enqueued event type in insertion order.
func (r *OutboxRepository) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.records))
	for _, rec := range r.records {
		out = append(out, rec.EventType)
	}
	return out
}

type IdempotencyRepository struct {
	mu      sync.Mutex
	records map[string]ports.IdempotencyRecord
}

func (r *IdempotencyRepository) Get(_ context.Context, key string, now time.Time) (*ports.IdempotencyRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[key]
	if !ok {
		return nil, nil
	}
	if now.After(rec.ExpiresAt) {
		delete(r.records, key)
		return nil, nil
	}
	clone := rec
	clone.ResponseBody = append([]byte(nil), rec.ResponseBody...)
	return &clone, nil
}

func (r *IdempotencyRepository) Reserve(_ context.Context, key, requestHash string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rec, ok := r.records[key]; ok && rec.RequestHash != requestHash {
		return domain.ErrIdempotencyConflict
	}
	r.records[key] = ports.IdempotencyRecord{
		Key:         key,
		RequestHash: requestHash,
		ExpiresAt:   expiresAt,
	}
	return nil
}

func (r *IdempotencyRepository) Complete(_ context.Context, key string, responseCode int, responseBody []byte, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[key]
	if !ok {
		return nil
	}
	rec.ResponseCode = responseCode
	rec.ResponseBody = append([]byte(nil), responseBody...)
	if at.After(rec.ExpiresAt) {
		rec.ExpiresAt = at.Add(7 * 24 * time.Hour)
	}
	r.records[key] = rec
	return nil
}

func (r *IdempotencyRepository) Release(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rec, ok := r.records[key]; ok && len(rec.ResponseBody) == 0 {
		delete(r.records, key)
	}
	return nil
}

type EventDedupRepository struct {
	mu      sync.Mutex
	records map[string]time.Time
}

func (r *EventDedupRepository) IsDuplicate(_ context.Context, eventID string, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	expiresAt, ok := r.records[eventID]
	return ok && expiresAt.After(now), nil
}

func (r *EventDedupRepository) MarkProcessed(_ context.Context, eventID, _ string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[eventID] = expiresAt
	return nil
}

var (
	_ ports.PerformanceRepository = (*PerformanceRepository)(nil)
	_ ports.FeedbackRepository    = (*FeedbackRepository)(nil)
	_ ports.CalibrationRepository = (*CalibrationRepository)(nil)
	_ ports.PredictionRepository  = (*PredictionRepository)(nil)
	_ ports.OutboxRepository      = (*OutboxRepository)(nil)
	_ ports.IdempotencyRepository = (*IdempotencyRepository)(nil)
	_ ports.EventDedupRepository  = (*EventDedupRepository)(nil)
)
