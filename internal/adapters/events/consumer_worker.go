package events

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Gcavazo1/ClipForge-AI-sub001/internal/domain"
	"github.com/segmentio/kafka-go"
)

type Message struct {
	Topic   string
	Key     string
	Payload []byte

	raw kafka.Message
}

// Consumer hands out messages and records which ones are done. Messages
// that were polled but never committed are delivered again after a restart.
type Consumer interface {
	Poll(ctx context.Context, max int) ([]Message, error)
	Commit(ctx context.Context, msgs ...Message) error
}

// EventHandler consumes one event envelope.
type EventHandler interface {
	HandleEvent(ctx context.Context, payload []byte) error
}

type ConsumerWorker struct {
	logger    *slog.Logger
	consumer  Consumer
	handler   EventHandler
	interval  time.Duration
	batchSize int

	// pending holds the unhandled tail of the last batch. It is retried
	// before anything new is polled.
	pending []Message
}

func NewConsumerWorker(logger *slog.Logger, consumer Consumer, handler EventHandler, interval time.Duration) *ConsumerWorker {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ConsumerWorker{
		logger: logger, consumer: consumer, handler: handler, interval: interval, batchSize: 50,
	}
}

func (w *ConsumerWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		if err := w.processOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
			w.logger.ErrorContext(ctx, "consumer iteration failed",
				"module", "events.consumer_worker",
				"layer", "adapter",
				"operation", "process_once",
				"outcome", "failure",
				"error", err,
			)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// processOnce handles the pending tail, or a fresh batch when nothing is
// pending. Malformed events are logged, skipped and committed. A handler
// failure stops the batch: the messages before it are committed and the rest
// stay pending.
func (w *ConsumerWorker) processOnce(ctx context.Context) error {
	msgs := w.pending
	var pollErr error
	if len(msgs) == 0 {
		msgs, pollErr = w.consumer.Poll(ctx, w.batchSize)
		if len(msgs) == 0 {
			return pollErr
		}
	}

	done := 0
	var handleErr error
	for _, msg := range msgs {
		err := w.handler.HandleEvent(ctx, msg.Payload)
		if err != nil && !errors.Is(err, domain.ErrInvalidInput) {
			handleErr = err
			break
		}
		if err != nil {
			w.logger.WarnContext(ctx, "dropping malformed event",
				"module", "events.consumer_worker",
				"layer", "adapter",
				"operation", "handle_event",
				"outcome", "rejected",
				"topic", msg.Topic,
				"error", err,
			)
		}
		done++
	}

	w.pending = append([]Message(nil), msgs[done:]...)
	// A failed commit only means redelivery after a restart; event dedup
	// drops the repeats.
	commitErr := w.consumer.Commit(ctx, msgs[:done]...)
	return errors.Join(pollErr, handleErr, commitErr)
}
