package events

import "github.com/google/uuid"

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeRaffleCreated EventType = "raffle_created"
	EventTypeTicketClaimed EventType = "ticket_claimed"
	EventTypeWinnersDrawn  EventType = "winners_drawn"
	EventTypeRaffleDeleted EventType = "raffle_deleted"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
	// AggregateID is the raffle the event belongs to
	AggregateID() uuid.UUID
}

// RaffleCreatedEvent is published once a raffle and all its tickets exist
type RaffleCreatedEvent struct {
	RaffleID     uuid.UUID `json:"raffle_id"`
	Name         string    `json:"name"`
	TotalTickets int64     `json:"total_tickets"`
	TotalAwards  int64     `json:"total_awards"`
}

func (e RaffleCreatedEvent) Type() EventType {
	return EventTypeRaffleCreated
}

func (e RaffleCreatedEvent) AggregateID() uuid.UUID {
	return e.RaffleID
}

// TicketClaimedEvent is published after a participant claims a ticket.
// It never carries the claimant or the verification code.
type TicketClaimedEvent struct {
	RaffleID         uuid.UUID `json:"raffle_id"`
	TicketNumber     int64     `json:"ticket_number"`
	AvailableTickets int64     `json:"available_tickets"`
}

func (e TicketClaimedEvent) Type() EventType {
	return EventTypeTicketClaimed
}

func (e TicketClaimedEvent) AggregateID() uuid.UUID {
	return e.RaffleID
}

// DrawnWinner is a single ticket/prize pair in a WinnersDrawnEvent
type DrawnWinner struct {
	TicketNumber int64  `json:"ticket_number"`
	Prize        string `json:"prize"`
}

// WinnersDrawnEvent is published after a raffle's drawing commits
type WinnersDrawnEvent struct {
	RaffleID   uuid.UUID     `json:"raffle_id"`
	RaffleName string        `json:"raffle_name"`
	Winners    []DrawnWinner `json:"winners"`
}

func (e WinnersDrawnEvent) Type() EventType {
	return EventTypeWinnersDrawn
}

func (e WinnersDrawnEvent) AggregateID() uuid.UUID {
	return e.RaffleID
}

// RaffleDeletedEvent is published after a raffle and its tickets are removed
type RaffleDeletedEvent struct {
	RaffleID uuid.UUID `json:"raffle_id"`
}

func (e RaffleDeletedEvent) Type() EventType {
	return EventTypeRaffleDeleted
}

func (e RaffleDeletedEvent) AggregateID() uuid.UUID {
	return e.RaffleID
}
