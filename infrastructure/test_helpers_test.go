package infrastructure

import (
	"context"
	"sync"

	"raffler/domain/events"
)

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	PublishedEvents []events.Event
	PublishError    error
}

func (m *MockEventPublisher) Publish(event events.Event) error {
	if m.PublishError != nil {
		return m.PublishError
	}
	m.PublishedEvents = append(m.PublishedEvents, event)
	return nil
}

type publishedMessage struct {
	subject string
	data    []byte
}

// fakeBus records messages instead of sending them to NATS
type fakeBus struct {
	mu       sync.Mutex
	messages []publishedMessage
	err      error
}

func (b *fakeBus) Publish(ctx context.Context, subject string, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return b.err
	}
	b.messages = append(b.messages, publishedMessage{subject: subject, data: data})
	return nil
}

type countingRecorder struct {
	published map[string]int
}

func (r *countingRecorder) RecordNATSMessagePublished(eventType string) {
	if r.published == nil {
		r.published = make(map[string]int)
	}
	r.published[eventType]++
}
