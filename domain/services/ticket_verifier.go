package services

import (
	"context"
	"fmt"

	"raffler/domain/entities"
	"raffler/domain/interfaces"
)

// ticketVerifier checks verification codes against drawing results
type ticketVerifier struct {
	ticketPool interfaces.TicketPool
	winnerRepo interfaces.WinnerRepository
	vault      interfaces.SecretVault
}

// NewTicketVerifier creates a new ticket verifier
func NewTicketVerifier(
	ticketPool interfaces.TicketPool,
	winnerRepo interfaces.WinnerRepository,
	vault interfaces.SecretVault,
) interfaces.TicketVerifier {
	return &ticketVerifier{
		ticketPool: ticketPool,
		winnerRepo: winnerRepo,
		vault:      vault,
	}
}

func (v *ticketVerifier) Verify(ctx context.Context, raffle *entities.Raffle, req entities.VerificationRequest) (*entities.VerificationResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	drawn, err := v.winnerRepo.ExistsForRaffle(ctx, raffle.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check drawing status: %w", err)
	}
	if !drawn {
		return nil, entities.ErrWinnersNotDrawn
	}

	if req.TicketNumber < 1 || req.TicketNumber > raffle.TotalTickets {
		return nil, entities.ErrUnknownTicket
	}

	ticket, err := v.ticketPool.Lookup(ctx, raffle.ID, req.TicketNumber)
	if err != nil {
		return nil, err
	}
	if ticket == nil {
		return nil, entities.ErrUnknownTicket
	}

	// unclaimed tickets have no hash, so every code is wrong for them
	if ticket.SecretHash == nil || !v.vault.Verify(req.RawCode, *ticket.SecretHash) {
		return nil, entities.ErrInvalidCode
	}

	winner, err := v.winnerRepo.GetByTicketID(ctx, ticket.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get winner record: %w", err)
	}
	if winner == nil {
		return &entities.VerificationResult{HasWon: false}, nil
	}

	prize := winner.Prize
	return &entities.VerificationResult{HasWon: true, Prize: &prize}, nil
}
