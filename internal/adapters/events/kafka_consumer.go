package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

const idleFetchWait = 250 * time.Millisecond

// KafkaConsumer fetches performance events for a consumer group. Offsets
// move only through Commit, so a message is redelivered after a restart or
// rebalance until the worker has handled it.
type KafkaConsumer struct {
	reader *kafka.Reader
}

func NewKafkaConsumer(brokers []string, groupID string, topics []string) (*KafkaConsumer, error) {
	switch {
	case len(brokers) == 0:
		return nil, errors.New("kafka consumer: no brokers configured")
	case groupID == "":
		return nil, errors.New("kafka consumer: group id is required for offset commits")
	case len(topics) == 0:
		return nil, errors.New("kafka consumer: no topics configured")
	}
	return &KafkaConsumer{reader: kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		GroupID:        groupID,
		GroupTopics:    topics,
		MinBytes:       1,
		MaxBytes:       10e6,
		MaxWait:        500 * time.Millisecond,
		StartOffset:    kafka.FirstOffset,
		CommitInterval: 0,
	})}, nil
}

// Poll fetches up to max messages without committing them. It returns what
// it has once the partition stays idle for idleFetchWait.
func (c *KafkaConsumer) Poll(ctx context.Context, max int) ([]Message, error) {
	if max <= 0 {
		max = 1
	}
	out := make([]Message, 0, max)
	for len(out) < max {
		fetchCtx, cancel := context.WithTimeout(ctx, idleFetchWait)
		msg, err := c.reader.FetchMessage(fetchCtx)
		cancel()
		switch {
		case err == nil:
			out = append(out, Message{
				Topic:   msg.Topic,
				Key:     string(msg.Key),
				Payload: msg.Value,
				raw:     msg,
			})
		case ctx.Err() != nil:
			return out, ctx.Err()
		case errors.Is(err, context.DeadlineExceeded):
			return out, nil
		default:
			return out, fmt.Errorf("fetch kafka message: %w", err)
		}
	}
	return out, nil
}

// Commit marks msgs as consumed for the group.
func (c *KafkaConsumer) Commit(ctx context.Context, msgs ...Message) error {
	if len(msgs) == 0 {
		return nil
	}
	raw := make([]kafka.Message, 0, len(msgs))
	for _, msg := range msgs {
		raw = append(raw, msg.raw)
	}
	if err := c.reader.CommitMessages(ctx, raw...); err != nil {
		return fmt.Errorf("commit kafka offsets: %w", err)
	}
	return nil
}

func (c *KafkaConsumer) Close() error {
	return c.reader.Close()
}
