package events

import "context"

// NoopConsumer stands in when no brokers are configured; performance
// records then arrive only through the HTTP ingest route.
type NoopConsumer struct{}

func NewNoopConsumer() *NoopConsumer {
	return &NoopConsumer{}
}

func (NoopConsumer) Poll(context.Context, int) ([]Message, error) {
	return nil, nil
}

func (NoopConsumer) Commit(context.Context, ...Message) error {
	return nil
}
