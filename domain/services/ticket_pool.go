package services

import (
	"context"
	"fmt"
	"math"
	"strings"

	"raffler/domain/entities"
	"raffler/domain/interfaces"
	"raffler/domain/utils"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// ClaimMaxAttempts bounds how often a claim re-samples after losing a race
// for its chosen ticket
const ClaimMaxAttempts = 16

// ticketPool implements ticket generation and claiming
type ticketPool struct {
	ticketRepo interfaces.TicketRepository
	vault      interfaces.SecretVault
	rng        interfaces.RandomSource
}

// NewTicketPool creates a new ticket pool
func NewTicketPool(
	ticketRepo interfaces.TicketRepository,
	vault interfaces.SecretVault,
	rng interfaces.RandomSource,
) interfaces.TicketPool {
	return &ticketPool{
		ticketRepo: ticketRepo,
		vault:      vault,
		rng:        rng,
	}
}

// Generate creates every ticket number once, stored in shuffled order so
// row ids say nothing about ticket numbers
func (p *ticketPool) Generate(ctx context.Context, raffle *entities.Raffle) (int64, error) {
	existing, err := p.ticketRepo.CountByRaffle(ctx, raffle.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to count tickets: %w", err)
	}
	if existing > 0 {
		log.WithFields(log.Fields{
			"raffleID": raffle.ID,
			"existing": existing,
		}).Debug("Tickets already generated, skipping")
		return 0, nil
	}

	numbers := utils.Sequence(raffle.TotalTickets)
	if err := utils.Shuffle(p.rng, numbers); err != nil {
		return 0, fmt.Errorf("failed to shuffle ticket numbers: %w", err)
	}

	if err := p.ticketRepo.CreateBatch(ctx, raffle.ID, numbers); err != nil {
		return 0, fmt.Errorf("failed to create tickets: %w", err)
	}

	return int64(len(numbers)), nil
}

func (p *ticketPool) Claim(ctx context.Context, raffle *entities.Raffle, claimant string) (*entities.ClaimedTicket, error) {
	claimant = strings.TrimSpace(claimant)
	if claimant == "" {
		return nil, fmt.Errorf("claimant identity is required")
	}

	held, err := p.ticketRepo.GetByClaimant(ctx, raffle.ID, claimant)
	if err != nil {
		return nil, fmt.Errorf("failed to look up claimant ticket: %w", err)
	}
	if held != nil {
		return nil, entities.ErrAlreadyClaimed
	}

	rawCode, err := p.vault.NewRawCode()
	if err != nil {
		return nil, err
	}
	secretHash, err := p.vault.Issue(rawCode)
	if err != nil {
		return nil, err
	}

	for attempt := 1; attempt <= ClaimMaxAttempts; attempt++ {
		remaining, err := p.ticketRepo.CountUnclaimed(ctx, raffle.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to count unclaimed tickets: %w", err)
		}
		if remaining == 0 {
			return nil, entities.ErrExhausted
		}

		offset, err := p.rng.Intn(remaining)
		if err != nil {
			return nil, err
		}

		candidate, err := p.ticketRepo.GetUnclaimedAt(ctx, raffle.ID, offset)
		if err != nil {
			return nil, fmt.Errorf("failed to select ticket: %w", err)
		}
		if candidate == nil {
			// the pool shrank between counting and selecting
			continue
		}

		assigned, err := p.ticketRepo.AssignClaimant(ctx, candidate.ID, claimant, secretHash)
		if err != nil {
			return nil, err
		}
		if !assigned {
			log.WithFields(log.Fields{
				"raffleID": raffle.ID,
				"attempt":  attempt,
			}).Debug("Lost race for ticket, re-sampling")
			continue
		}

		return &entities.ClaimedTicket{
			RaffleID:     raffle.ID,
			TicketNumber: candidate.TicketNumber,
			RawCode:      rawCode,
		}, nil
	}

	return nil, fmt.Errorf("failed to claim ticket after %d attempts", ClaimMaxAttempts)
}

func (p *ticketPool) RemainingCount(ctx context.Context, raffleID uuid.UUID) (int64, error) {
	remaining, err := p.ticketRepo.CountUnclaimed(ctx, raffleID)
	if err != nil {
		return 0, fmt.Errorf("failed to count unclaimed tickets: %w", err)
	}
	return remaining, nil
}

func (p *ticketPool) Lookup(ctx context.Context, raffleID uuid.UUID, ticketNumber int64) (*entities.Ticket, error) {
	// ticket numbers are stored as INTEGER; nothing outside that range exists
	if ticketNumber < 1 || ticketNumber > math.MaxInt32 {
		return nil, nil
	}

	ticket, err := p.ticketRepo.GetByNumber(ctx, raffleID, ticketNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}
	return ticket, nil
}
