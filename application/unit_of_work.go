package application

import (
	"context"

	"raffler/domain/interfaces"
)

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction and then flushes queued events
	Commit() error

	// Rollback rolls back the transaction and drops queued events.
	// It is a no-op after Commit.
	Rollback() error

	// Repository getters
	RaffleRepository() interfaces.RaffleRepository
	TicketRepository() interfaces.TicketRepository
	WinnerRepository() interfaces.WinnerRepository
	EventBus() interfaces.EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}
