package interfaces

import (
	"context"

	"raffler/domain/entities"
	"raffler/domain/events"

	"github.com/google/uuid"
)

// RaffleRepository defines the interface for raffle data access
type RaffleRepository interface {
	// Create inserts a new raffle and fills in its creation timestamp
	Create(ctx context.Context, raffle *entities.Raffle) error

	// GetByID retrieves a raffle by its ID, nil if it does not exist
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Raffle, error)

	// GetByIDForUpdate retrieves a raffle and locks its row exclusively
	// until the surrounding transaction ends
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*entities.Raffle, error)

	// GetByIDForShare retrieves a raffle and takes a shared row lock, which
	// blocks concurrent GetByIDForUpdate callers but not other sharers
	GetByIDForShare(ctx context.Context, id uuid.UUID) (*entities.Raffle, error)

	// GetDetails returns a raffle with its available ticket count and
	// drawing status, nil if it does not exist
	GetDetails(ctx context.Context, id uuid.UUID) (*entities.RaffleDetails, error)

	// List returns a page of raffles matching the filter, newest first,
	// along with the total number of matches
	List(ctx context.Context, filter entities.RaffleFilter) ([]*entities.RaffleDetails, int64, error)

	// Delete removes a raffle and, by cascade, its tickets and winners.
	// Returns false if the raffle did not exist.
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

// TicketRepository defines the interface for ticket data access
type TicketRepository interface {
	// CountByRaffle returns the number of generated tickets for a raffle
	CountByRaffle(ctx context.Context, raffleID uuid.UUID) (int64, error)

	// CreateBatch bulk-inserts unclaimed tickets in slice order
	CreateBatch(ctx context.Context, raffleID uuid.UUID, ticketNumbers []int64) error

	// CountUnclaimed returns the number of tickets nobody holds yet
	CountUnclaimed(ctx context.Context, raffleID uuid.UUID) (int64, error)

	// GetUnclaimedAt returns the unclaimed ticket at position offset when
	// unclaimed tickets are ordered by ticket number, nil if there is none
	GetUnclaimedAt(ctx context.Context, raffleID uuid.UUID, offset int64) (*entities.Ticket, error)

	// AssignClaimant sets the claimant and secret hash only if the ticket is
	// still unclaimed. Returns false if another claimant got there first.
	// Returns entities.ErrAlreadyClaimed if the claimant already holds a
	// ticket in the same raffle.
	AssignClaimant(ctx context.Context, ticketID int64, claimant, secretHash string) (bool, error)

	// GetByClaimant returns the ticket held by a claimant, nil if none
	GetByClaimant(ctx context.Context, raffleID uuid.UUID, claimant string) (*entities.Ticket, error)

	// GetByNumber returns the ticket with the given number, nil if none
	GetByNumber(ctx context.Context, raffleID uuid.UUID, ticketNumber int64) (*entities.Ticket, error)

	// GetEligibleForDraw returns claimed tickets that have not won
	GetEligibleForDraw(ctx context.Context, raffleID uuid.UUID) ([]*entities.Ticket, error)

	// MarkWinner flags a ticket as a winner
	MarkWinner(ctx context.Context, ticketID int64) error
}

// WinnerRepository defines the interface for winner data access
type WinnerRepository interface {
	// Create inserts a winner and fills in its ID and timestamp
	Create(ctx context.Context, winner *entities.Winner) error

	// ExistsForRaffle reports whether a drawing has happened for the raffle
	ExistsForRaffle(ctx context.Context, raffleID uuid.UUID) (bool, error)

	// GetByRaffle returns a raffle's winners in the order they were drawn
	GetByRaffle(ctx context.Context, raffleID uuid.UUID) ([]*entities.Winner, error)

	// GetByTicketID returns the winner record for a ticket, nil if it lost
	GetByTicketID(ctx context.Context, ticketID int64) (*entities.Winner, error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event) error
}

// TransactionalEventPublisher queues events until the owning transaction
// commits (Flush) or rolls back (Discard)
type TransactionalEventPublisher interface {
	EventPublisher
	Flush(ctx context.Context) error
	Discard()
}
