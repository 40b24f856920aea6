package application

import (
	"context"
	"errors"
	"fmt"

	"raffler/domain/entities"
	"raffler/domain/events"
	"raffler/domain/interfaces"
	"raffler/domain/services"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const (
	OperationCreateRaffle = "create_raffle"
	OperationClaimTicket  = "claim_ticket"
	OperationDrawWinners  = "draw_winners"
	OperationVerifyTicket = "verify_ticket"
	OperationGetRaffle    = "get_raffle"
	OperationListRaffles  = "list_raffles"
	OperationListWinners  = "list_winners"
	OperationDeleteRaffle = "delete_raffle"
)

// CreateRaffleRequest holds the inputs of a new raffle
type CreateRaffleRequest struct {
	Name         string
	TotalTickets int64
	Prizes       []entities.Prize
}

// RaffleController drives a raffle through its lifecycle. Every operation
// runs in its own unit of work; events reach subscribers only after commit.
type RaffleController struct {
	uowFactory  UnitOfWorkFactory
	vault       interfaces.SecretVault
	rng         interfaces.RandomSource
	managers    ManagerPolicy
	invalidator ListInvalidator
	metrics     Metrics
}

// NewRaffleController creates a controller. invalidator and metrics may be nil.
func NewRaffleController(
	uowFactory UnitOfWorkFactory,
	vault interfaces.SecretVault,
	rng interfaces.RandomSource,
	managers ManagerPolicy,
	invalidator ListInvalidator,
	metrics Metrics,
) *RaffleController {
	if invalidator == nil {
		invalidator = noopInvalidator{}
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &RaffleController{
		uowFactory:  uowFactory,
		vault:       vault,
		rng:         rng,
		managers:    managers,
		invalidator: invalidator,
		metrics:     metrics,
	}
}

// CreateRaffle inserts a raffle and all of its tickets atomically
func (c *RaffleController) CreateRaffle(ctx context.Context, callerIP string, req CreateRaffleRequest) (*entities.RaffleDetails, error) {
	defer c.metrics.MeasureOperation(OperationCreateRaffle)()

	if err := c.requireManager(OperationCreateRaffle, callerIP); err != nil {
		return nil, err
	}

	raffle, err := entities.NewRaffle(req.Name, req.TotalTickets, req.Prizes)
	if err != nil {
		return nil, c.reject(OperationCreateRaffle, err)
	}

	uow := c.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.RaffleRepository().Create(ctx, raffle); err != nil {
		return nil, err
	}

	created, err := c.ticketPool(uow).Generate(ctx, raffle)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tickets: %w", err)
	}

	if err := uow.EventBus().Publish(events.RaffleCreatedEvent{
		RaffleID:     raffle.ID,
		Name:         raffle.Name,
		TotalTickets: raffle.TotalTickets,
		TotalAwards:  raffle.TotalAwards(),
	}); err != nil {
		return nil, fmt.Errorf("failed to publish raffle created event: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	c.invalidator.InvalidateRaffleList()
	c.metrics.RecordRaffleCreated(raffle.TotalTickets)

	log.WithFields(log.Fields{
		"raffleID":     raffle.ID,
		"totalTickets": raffle.TotalTickets,
		"created":      created,
		"prizes":       len(raffle.Prizes),
	}).Info("Raffle created")

	return &entities.RaffleDetails{
		Raffle:           *raffle,
		AvailableTickets: raffle.TotalTickets,
		State:            entities.RaffleStateOpen,
	}, nil
}

// ClaimTicket gives the caller one random unclaimed ticket and its one-time
// verification code
func (c *RaffleController) ClaimTicket(ctx context.Context, raffleID uuid.UUID, claimantIP string) (*entities.ClaimedTicket, error) {
	defer c.metrics.MeasureOperation(OperationClaimTicket)()

	uow := c.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	// shared lock: claims run in parallel with each other but never with a drawing
	raffle, err := uow.RaffleRepository().GetByIDForShare(ctx, raffleID)
	if err != nil {
		return nil, err
	}
	if raffle == nil {
		return nil, c.reject(OperationClaimTicket, entities.ErrRaffleNotFound)
	}

	pool := c.ticketPool(uow)
	claimed, err := pool.Claim(ctx, raffle, claimantIP)
	if err != nil {
		return nil, c.reject(OperationClaimTicket, err)
	}

	remaining, err := pool.RemainingCount(ctx, raffle.ID)
	if err != nil {
		return nil, err
	}

	if err := uow.EventBus().Publish(events.TicketClaimedEvent{
		RaffleID:         raffle.ID,
		TicketNumber:     claimed.TicketNumber,
		AvailableTickets: remaining,
	}); err != nil {
		return nil, fmt.Errorf("failed to publish ticket claimed event: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	c.invalidator.InvalidateRaffleList()
	c.metrics.RecordTicketClaimed()

	log.WithFields(log.Fields{
		"raffleID":  raffle.ID,
		"remaining": remaining,
	}).Debug("Ticket claimed")

	return claimed, nil
}

// DrawWinners runs the raffle's one and only drawing
func (c *RaffleController) DrawWinners(ctx context.Context, callerIP string, raffleID uuid.UUID) ([]*entities.Winner, error) {
	defer c.metrics.MeasureOperation(OperationDrawWinners)()

	if err := c.requireManager(OperationDrawWinners, callerIP); err != nil {
		return nil, err
	}

	uow := c.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	// exclusive lock: waits for in-flight claims, then blocks new ones and
	// any concurrent drawing
	raffle, err := uow.RaffleRepository().GetByIDForUpdate(ctx, raffleID)
	if err != nil {
		return nil, err
	}
	if raffle == nil {
		return nil, c.reject(OperationDrawWinners, entities.ErrRaffleNotFound)
	}

	pool := c.ticketPool(uow)
	engine := services.NewDrawingEngine(pool, uow.TicketRepository(), uow.WinnerRepository(), c.rng)

	winners, err := engine.Draw(ctx, raffle)
	if err != nil {
		return nil, c.reject(OperationDrawWinners, err)
	}

	drawn := make([]events.DrawnWinner, len(winners))
	for i, winner := range winners {
		drawn[i] = events.DrawnWinner{TicketNumber: winner.TicketNumber, Prize: winner.Prize}
	}
	if err := uow.EventBus().Publish(events.WinnersDrawnEvent{
		RaffleID:   raffle.ID,
		RaffleName: raffle.Name,
		Winners:    drawn,
	}); err != nil {
		return nil, fmt.Errorf("failed to publish winners drawn event: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	c.invalidator.InvalidateRaffleList()
	c.metrics.RecordDraw(len(winners))

	return winners, nil
}

// VerifyTicket tells a ticket holder whether their ticket won
func (c *RaffleController) VerifyTicket(ctx context.Context, raffleID uuid.UUID, req entities.VerificationRequest) (*entities.VerificationResult, error) {
	defer c.metrics.MeasureOperation(OperationVerifyTicket)()

	if err := req.Validate(); err != nil {
		return nil, c.reject(OperationVerifyTicket, err)
	}

	uow := c.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	raffle, err := uow.RaffleRepository().GetByID(ctx, raffleID)
	if err != nil {
		return nil, err
	}
	if raffle == nil {
		return nil, c.reject(OperationVerifyTicket, entities.ErrRaffleNotFound)
	}

	verifier := services.NewTicketVerifier(c.ticketPool(uow), uow.WinnerRepository(), c.vault)
	result, err := verifier.Verify(ctx, raffle, req)
	if err != nil {
		return nil, c.reject(OperationVerifyTicket, err)
	}

	c.metrics.RecordVerification(result.HasWon)
	return result, nil
}

// GetRaffle returns a raffle with its available ticket count and state
func (c *RaffleController) GetRaffle(ctx context.Context, raffleID uuid.UUID) (*entities.RaffleDetails, error) {
	defer c.metrics.MeasureOperation(OperationGetRaffle)()

	uow := c.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	details, err := uow.RaffleRepository().GetDetails(ctx, raffleID)
	if err != nil {
		return nil, err
	}
	if details == nil {
		return nil, entities.ErrRaffleNotFound
	}

	return details, nil
}

// ListRaffles returns one page of raffles, newest first
func (c *RaffleController) ListRaffles(ctx context.Context, filter entities.RaffleFilter) (*entities.RafflePage, error) {
	defer c.metrics.MeasureOperation(OperationListRaffles)()

	filter = filter.Normalize()

	uow := c.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	results, total, err := uow.RaffleRepository().List(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &entities.RafflePage{
		Count:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
		Results:  results,
	}, nil
}

// ListWinners returns a raffle's winners; empty before the drawing
func (c *RaffleController) ListWinners(ctx context.Context, raffleID uuid.UUID) ([]*entities.Winner, error) {
	defer c.metrics.MeasureOperation(OperationListWinners)()

	uow := c.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	raffle, err := uow.RaffleRepository().GetByID(ctx, raffleID)
	if err != nil {
		return nil, err
	}
	if raffle == nil {
		return nil, entities.ErrRaffleNotFound
	}

	return uow.WinnerRepository().GetByRaffle(ctx, raffleID)
}

// DeleteRaffle removes a raffle with its tickets and winners
func (c *RaffleController) DeleteRaffle(ctx context.Context, callerIP string, raffleID uuid.UUID) error {
	defer c.metrics.MeasureOperation(OperationDeleteRaffle)()

	if err := c.requireManager(OperationDeleteRaffle, callerIP); err != nil {
		return err
	}

	uow := c.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	deleted, err := uow.RaffleRepository().Delete(ctx, raffleID)
	if err != nil {
		return err
	}
	if !deleted {
		return c.reject(OperationDeleteRaffle, entities.ErrRaffleNotFound)
	}

	if err := uow.EventBus().Publish(events.RaffleDeletedEvent{RaffleID: raffleID}); err != nil {
		return fmt.Errorf("failed to publish raffle deleted event: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return err
	}

	c.invalidator.InvalidateRaffleList()
	log.WithField("raffleID", raffleID).Info("Raffle deleted")
	return nil
}

// IsManager reports whether callerIP may run administrative operations
func (c *RaffleController) IsManager(callerIP string) bool {
	return c.managers.IsManager(callerIP)
}

func (c *RaffleController) ticketPool(uow UnitOfWork) interfaces.TicketPool {
	return services.NewTicketPool(uow.TicketRepository(), c.vault, c.rng)
}

func (c *RaffleController) requireManager(operation, callerIP string) error {
	if c.managers.IsManager(callerIP) {
		return nil
	}
	log.WithFields(log.Fields{
		"operation": operation,
		"callerIP":  callerIP,
	}).Warn("Rejected non-manager caller")
	return c.reject(operation, entities.ErrUnauthorized)
}

// reject records business failures; infrastructure errors pass through
// untouched
func (c *RaffleController) reject(operation string, err error) error {
	var raffleErr *entities.RaffleError
	if errors.As(err, &raffleErr) {
		c.metrics.RecordRejection(operation, raffleErr.Code)
		log.WithFields(log.Fields{
			"operation": operation,
			"code":      raffleErr.Code,
		}).Debug("Operation rejected")
	}
	return err
}
