package infrastructure

import (
	"fmt"

	"raffler/domain/events"
)

// RaffleEventStream is the JetStream stream holding every raffle subject
const RaffleEventStream = "raffle_events"

var subjectsByEventType = map[events.EventType]string{
	events.EventTypeRaffleCreated: "raffles.created",
	events.EventTypeTicketClaimed: "raffles.tickets.claimed",
	events.EventTypeWinnersDrawn:  "raffles.winners.drawn",
	events.EventTypeRaffleDeleted: "raffles.deleted",
}

// EventSubjectMapper handles mapping between domain events and NATS subjects
type EventSubjectMapper struct{}

// NewEventSubjectMapper creates a new event subject mapper
func NewEventSubjectMapper() *EventSubjectMapper {
	return &EventSubjectMapper{}
}

// MapEventToSubject converts a domain event to its corresponding NATS subject
func (m *EventSubjectMapper) MapEventToSubject(event events.Event) string {
	if subject, ok := subjectsByEventType[event.Type()]; ok {
		return subject
	}
	return fmt.Sprintf("unknown.%s", event.Type())
}

// MapSubjectToEventType converts a NATS subject back to an event type
func (m *EventSubjectMapper) MapSubjectToEventType(subject string) events.EventType {
	for eventType, s := range subjectsByEventType {
		if s == subject {
			return eventType
		}
	}
	return events.EventType(subject)
}

// GetAllSubjects returns all subjects that this service publishes to
func (m *EventSubjectMapper) GetAllSubjects() []string {
	return []string{
		"raffles.created",
		"raffles.tickets.claimed",
		"raffles.winners.drawn",
		"raffles.deleted",
	}
}
