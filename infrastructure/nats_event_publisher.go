package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"raffler/domain/events"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const (
	sourceService  = "raffler"
	publishTimeout = 5 * time.Second
)

// EventHandler reacts to an event inside the publishing process
type EventHandler func(ctx context.Context, event events.Event) error

// EventEnvelope wraps every event published to NATS
type EventEnvelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	AggregateID   string          `json:"aggregate_id"`
	Timestamp     time.Time       `json:"timestamp"`
	SourceService string          `json:"source_service"`
	Payload       json.RawMessage `json:"payload"`
}

// publishRecorder counts messages that reached the bus
type publishRecorder interface {
	RecordNATSMessagePublished(eventType string)
}

// NATSEventPublisher delivers events to local handlers and, when a bus is
// configured, to NATS
type NATSEventPublisher struct {
	bus           MessagePublisher
	subjectMapper *EventSubjectMapper
	recorder      publishRecorder

	mu            sync.RWMutex
	localHandlers map[events.EventType][]EventHandler
}

// NewNATSEventPublisher creates a new event publisher. bus may be nil, in
// which case only local handlers run.
func NewNATSEventPublisher(bus MessagePublisher, subjectMapper *EventSubjectMapper, recorder publishRecorder) *NATSEventPublisher {
	return &NATSEventPublisher{
		bus:           bus,
		subjectMapper: subjectMapper,
		recorder:      recorder,
		localHandlers: make(map[events.EventType][]EventHandler),
	}
}

// Publish publishes an event to NATS using the appropriate subject
func (p *NATSEventPublisher) Publish(event events.Event) error {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	eventType := event.Type()

	p.mu.RLock()
	handlers := p.localHandlers[eventType]
	p.mu.RUnlock()

	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			// local handler errors never stop other handlers or the bus
			log.WithFields(log.Fields{
				"eventType": eventType,
				"error":     err,
			}).Error("Local event handler failed")
		}
	}

	if p.bus == nil {
		return nil
	}

	envelopeData, envelopeID, err := p.buildEnvelope(event)
	if err != nil {
		return err
	}

	subject := p.subjectMapper.MapEventToSubject(event)
	if err := p.bus.Publish(ctx, subject, envelopeData); err != nil {
		return fmt.Errorf("failed to publish event to NATS: %w", err)
	}

	if p.recorder != nil {
		p.recorder.RecordNATSMessagePublished(string(eventType))
	}

	log.WithFields(log.Fields{
		"eventType": eventType,
		"eventId":   envelopeID,
		"subject":   subject,
	}).Debug("Successfully published event to NATS")

	return nil
}

func (p *NATSEventPublisher) buildEnvelope(event events.Event) ([]byte, string, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, "", fmt.Errorf("failed to marshal event payload: %w", err)
	}

	envelope := EventEnvelope{
		EventID:       uuid.New().String(),
		EventType:     string(event.Type()),
		AggregateID:   event.AggregateID().String(),
		Timestamp:     time.Now().UTC(),
		SourceService: sourceService,
		Payload:       payload,
	}

	data, err := json.Marshal(envelope)
	if err != nil {
		return nil, "", fmt.Errorf("failed to marshal event envelope: %w", err)
	}
	return data, envelope.EventID, nil
}

// RegisterLocalHandler registers a handler that will be invoked locally for events
func (p *NATSEventPublisher) RegisterLocalHandler(eventType events.EventType, handler EventHandler) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.localHandlers[eventType] = append(p.localHandlers[eventType], handler)
	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(p.localHandlers[eventType]),
	}).Info("Registered local event handler")
}

// EnsureRaffleEventStream ensures the raffle_events stream exists with the
// mapper's subjects
func (p *NATSEventPublisher) EnsureRaffleEventStream(client *NATSClient) error {
	return client.EnsureStream(RaffleEventStream, p.subjectMapper.GetAllSubjects())
}
