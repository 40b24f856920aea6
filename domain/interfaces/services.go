package interfaces

import (
	"context"

	"raffler/domain/entities"

	"github.com/google/uuid"
)

// RandomSource yields uniformly distributed integers in [0, n)
type RandomSource interface {
	Intn(n int64) (int64, error)
}

// SecretVault issues and checks participant verification codes
type SecretVault interface {
	// NewRawCode returns a fresh high-entropy plaintext code
	NewRawCode() (string, error)

	// Issue hashes a raw code with a fresh salt
	Issue(rawCode string) (string, error)

	// Verify reports whether rawCode hashes to hashedCode
	Verify(rawCode, hashedCode string) bool
}

// TicketPool owns a raffle's tickets
type TicketPool interface {
	// Generate creates tickets 1..TotalTickets in shuffled order. It is a
	// no-op if the raffle already has tickets. Returns the number created.
	Generate(ctx context.Context, raffle *entities.Raffle) (int64, error)

	// Claim assigns a uniformly random unclaimed ticket to claimant and
	// returns it with its one-time raw verification code
	Claim(ctx context.Context, raffle *entities.Raffle, claimant string) (*entities.ClaimedTicket, error)

	// RemainingCount returns the number of unclaimed tickets
	RemainingCount(ctx context.Context, raffleID uuid.UUID) (int64, error)

	// Lookup returns the ticket with the given number, nil if none
	Lookup(ctx context.Context, raffleID uuid.UUID, ticketNumber int64) (*entities.Ticket, error)
}

// DrawingEngine selects a raffle's winners exactly once
type DrawingEngine interface {
	// Draw picks winners among eligible tickets and binds each to a prize.
	// The caller must hold an exclusive lock on the raffle.
	Draw(ctx context.Context, raffle *entities.Raffle) ([]*entities.Winner, error)
}

// TicketVerifier checks a participant's claim to a ticket after the drawing
type TicketVerifier interface {
	Verify(ctx context.Context, raffle *entities.Raffle, req entities.VerificationRequest) (*entities.VerificationResult, error)
}
