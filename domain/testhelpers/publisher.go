package testhelpers

import (
	"context"
	"sync"

	"raffler/domain/events"
)

// RecordingPublisher is a TransactionalEventPublisher that keeps flushed
// events in memory. Events published before a Discard are dropped.
type RecordingPublisher struct {
	mu       sync.Mutex
	pending  []events.Event
	flushed  []events.Event
	discards int
	FlushErr error
}

// NewRecordingPublisher creates an empty recording publisher
func NewRecordingPublisher() *RecordingPublisher {
	return &RecordingPublisher{}
}

func (p *RecordingPublisher) Publish(event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pending = append(p.pending, event)
	return nil
}

func (p *RecordingPublisher) Flush(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.FlushErr != nil {
		p.pending = nil
		return p.FlushErr
	}
	p.flushed = append(p.flushed, p.pending...)
	p.pending = nil
	return nil
}

func (p *RecordingPublisher) Discard() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pending = nil
	p.discards++
}

// Flushed returns every event delivered so far
func (p *RecordingPublisher) Flushed() []events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.Event(nil), p.flushed...)
}

// FlushedOfType returns the delivered events with the given type
func (p *RecordingPublisher) FlushedOfType(eventType events.EventType) []events.Event {
	var matched []events.Event
	for _, event := range p.Flushed() {
		if event.Type() == eventType {
			matched = append(matched, event)
		}
	}
	return matched
}

// Pending returns events published but neither flushed nor discarded
func (p *RecordingPublisher) Pending() []events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.Event(nil), p.pending...)
}

// Discards returns how many times Discard was called
func (p *RecordingPublisher) Discards() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.discards
}
