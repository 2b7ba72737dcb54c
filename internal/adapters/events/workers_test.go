package events

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/Gcavazo1/ClipForge-AI-sub001/internal/adapters/memory"
	"github.com/Gcavazo1/ClipForge-AI-sub001/internal/domain"
	"github.com/Gcavazo1/ClipForge-AI-sub001/internal/ports"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

type recordingPublisher struct {
	mu        sync.Mutex
	published []string
	failFor   string
}

func (p *recordingPublisher) Publish(_ context.Context, eventType string, _ []byte, _ string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if eventType == p.failFor {
		return errors.New("broker unavailable")
	}
	p.published = append(p.published, eventType)
	return nil
}

func enqueue(t *testing.T, outbox ports.OutboxRepository, eventType string) {
	t.Helper()
	require.NoError(t, outbox.Enqueue(context.Background(), ports.OutboxEvent{
		EventID:      uuid.New(),
		EventType:    eventType,
		PartitionKey: "user-1",
		Payload:      []byte(`{}`),
		OccurredAt:   time.Now().UTC(),
	}))
}

func TestOutboxWorkerPublishesAndMarksRecords(t *testing.T) {
	t.Parallel()
	repos := memory.NewRepositories()
	enqueue(t, repos.Outbox, domain.EventPredictionGenerated)
	enqueue(t, repos.Outbox, domain.EventFeedbackSubmitted)
	publisher := &recordingPublisher{}
	worker := NewOutboxWorker(discardLogger(), repos.Outbox, publisher, time.Second, 10)

	require.NoError(t, worker.processOnce(context.Background()))

	assert.Equal(t, []string{domain.EventPredictionGenerated, domain.EventFeedbackSubmitted}, publisher.published)
	pending, err := repos.Outbox.FetchUnpublished(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestOutboxWorkerKeepsFailedRecordsForRetry(t *testing.T) {
	t.Parallel()
	repos := memory.NewRepositories()
	enqueue(t, repos.Outbox, domain.EventModelRecalibrated)
	publisher := &recordingPublisher{failFor: domain.EventModelRecalibrated}
	worker := NewOutboxWorker(discardLogger(), repos.Outbox, publisher, time.Second, 10)

	require.NoError(t, worker.processOnce(context.Background()))

	pending, err := repos.Outbox.FetchUnpublished(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, 1, pending[0].RetryCount)
	require.NotNil(t, pending[0].LastError)
	assert.Contains(t, *pending[0].LastError, "broker unavailable")
}

type staticConsumer struct {
	msgs      []Message
	polls     int
	committed []string
}

func (c *staticConsumer) Poll(_ context.Context, _ int) ([]Message, error) {
	c.polls++
	out := c.msgs
	c.msgs = nil
	return out, nil
}

func (c *staticConsumer) Commit(_ context.Context, msgs ...Message) error {
	for _, msg := range msgs {
		c.committed = append(c.committed, msg.Key)
	}
	return nil
}

type scriptedHandler struct {
	errs  []error
	calls int
	seen  []string
}

func (h *scriptedHandler) HandleEvent(_ context.Context, payload []byte) error {
	defer func() { h.calls++ }()
	h.seen = append(h.seen, string(payload))
	if h.calls < len(h.errs) {
		return h.errs[h.calls]
	}
	return nil
}

func event(key, payload string) Message {
	return Message{Topic: domain.EventPerformanceRecorded, Key: key, Payload: []byte(payload)}
}

func TestConsumerWorkerSkipsAndCommitsMalformedEvents(t *testing.T) {
	t.Parallel()
	consumer := &staticConsumer{msgs: []Message{event("a", `not json`), event("b", `{}`)}}
	handler := &scriptedHandler{errs: []error{fmt.Errorf("%w: decode", domain.ErrInvalidInput)}}
	worker := NewConsumerWorker(discardLogger(), consumer, handler, time.Second)

	require.NoError(t, worker.processOnce(context.Background()))
	assert.Equal(t, 2, handler.calls)
	assert.Equal(t, []string{"a", "b"}, consumer.committed)
	assert.Empty(t, worker.pending)
}

func TestConsumerWorkerStopsBatchOnStorageFailure(t *testing.T) {
	t.Parallel()
	consumer := &staticConsumer{msgs: []Message{event("a", `1`), event("b", `2`), event("c", `3`)}}
	handler := &scriptedHandler{errs: []error{nil, domain.ErrUpstreamUnavailable}}
	worker := NewConsumerWorker(discardLogger(), consumer, handler, time.Second)

	err := worker.processOnce(context.Background())
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
	assert.Equal(t, 2, handler.calls)
	assert.Equal(t, []string{"a"}, consumer.committed, "nothing at or after the failure is committed")
	require.Len(t, worker.pending, 2)

	require.NoError(t, worker.processOnce(context.Background()))
	assert.Equal(t, 1, consumer.polls, "the pending tail is retried before polling again")
	assert.Equal(t, []string{"1", "2", "2", "3"}, handler.seen)
	assert.Equal(t, []string{"a", "b", "c"}, consumer.committed)
	assert.Empty(t, worker.pending)

	require.NoError(t, worker.processOnce(context.Background()))
	assert.Equal(t, 2, consumer.polls)
}

func TestNoopConsumerCommitsNothing(t *testing.T) {
	t.Parallel()
	var consumer Consumer = NewNoopConsumer()
	msgs, err := consumer.Poll(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, msgs)
	assert.NoError(t, consumer.Commit(context.Background(), event("a", `{}`)))
}

func TestKafkaPublisherTopicMapping(t *testing.T) {
	t.Parallel()
	p, err := NewKafkaPublisher([]string{"localhost:9092"}, map[string]string{
		domain.EventPredictionGenerated: "predictions.generated.v1",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })

	assert.Equal(t, "predictions.generated.v1", p.topicFor(domain.EventPredictionGenerated))
	assert.Equal(t, domain.EventFeedbackSubmitted, p.topicFor(domain.EventFeedbackSubmitted))

	_, err = NewKafkaPublisher(nil, nil)
	assert.Error(t, err)
}
