package events

import "context"

// NoopPublisher is a Publisher that does nothing (used when NATS is not configured).
type NoopPublisher struct{}

func (n *NoopPublisher) Publish(ctx context.Context, topic string, event any) error {
	return nil
}

func (n *NoopPublisher) Close() error {
	return nil
}

// NoopSubscriber is a Subscriber whose channels never deliver.
type NoopSubscriber struct{}

func (NoopSubscriber) Subscribe(topic string) (<-chan []byte, func(), error) {
	ch := make(chan []byte)
	var closed bool
	return ch, func() {
		if !closed {
			closed = true
			close(ch)
		}
	}, nil
}

func (NoopSubscriber) Close() error { return nil }
