package services

import (
	"context"
	"fmt"

	"raffler/domain/entities"
	"raffler/domain/interfaces"
	"raffler/domain/utils"

	log "github.com/sirupsen/logrus"
)

// drawingEngine implements winner selection
type drawingEngine struct {
	ticketPool interfaces.TicketPool
	ticketRepo interfaces.TicketRepository
	winnerRepo interfaces.WinnerRepository
	rng        interfaces.RandomSource
}

// NewDrawingEngine creates a new drawing engine
func NewDrawingEngine(
	ticketPool interfaces.TicketPool,
	ticketRepo interfaces.TicketRepository,
	winnerRepo interfaces.WinnerRepository,
	rng interfaces.RandomSource,
) interfaces.DrawingEngine {
	return &drawingEngine{
		ticketPool: ticketPool,
		ticketRepo: ticketRepo,
		winnerRepo: winnerRepo,
		rng:        rng,
	}
}

// Draw checks the preconditions in a fixed order, samples the winners, and
// hands out prizes in declared order. Any error leaves the caller's
// transaction to roll back.
func (e *drawingEngine) Draw(ctx context.Context, raffle *entities.Raffle) ([]*entities.Winner, error) {
	remaining, err := e.ticketPool.RemainingCount(ctx, raffle.ID)
	if err != nil {
		return nil, err
	}
	if remaining > 0 {
		return nil, entities.ErrTicketsStillAvailable
	}

	drawn, err := e.winnerRepo.ExistsForRaffle(ctx, raffle.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing winners: %w", err)
	}
	if drawn {
		return nil, entities.ErrAlreadyDrawn
	}

	candidates, err := e.ticketRepo.GetEligibleForDraw(ctx, raffle.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get eligible tickets: %w", err)
	}
	eligible := make([]*entities.Ticket, 0, len(candidates))
	for _, ticket := range candidates {
		if ticket.IsEligibleForDraw() {
			eligible = append(eligible, ticket)
		}
	}

	ledger := entities.NewPrizeLedger(raffle.Prizes)
	totalAwards := ledger.TotalAwards()
	if int64(len(eligible)) < totalAwards {
		return nil, entities.ErrNotEnoughParticipants
	}

	selected, err := utils.Sample(e.rng, eligible, int(totalAwards))
	if err != nil {
		return nil, fmt.Errorf("failed to sample winners: %w", err)
	}

	winners := make([]*entities.Winner, 0, len(selected))
	for _, ticket := range selected {
		prize, ok := ledger.Next()
		if !ok {
			return nil, fmt.Errorf("prize ledger exhausted after %d of %d awards", len(winners), totalAwards)
		}

		if err := e.ticketRepo.MarkWinner(ctx, ticket.ID); err != nil {
			return nil, fmt.Errorf("failed to mark ticket %d as winner: %w", ticket.TicketNumber, err)
		}

		winner := &entities.Winner{
			RaffleID:     raffle.ID,
			TicketID:     ticket.ID,
			TicketNumber: ticket.TicketNumber,
			Prize:        prize,
		}
		if err := e.winnerRepo.Create(ctx, winner); err != nil {
			return nil, fmt.Errorf("failed to record winner: %w", err)
		}
		winners = append(winners, winner)
	}

	log.WithFields(log.Fields{
		"raffleID":    raffle.ID,
		"eligible":    len(eligible),
		"winnerCount": len(winners),
	}).Info("Raffle winners drawn")

	return winners, nil
}
