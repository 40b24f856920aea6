package repository

import (
	"context"
	"errors"
	"fmt"

	"raffler/domain/entities"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// TicketRepository implements ticket data access
type TicketRepository struct {
	q Queryable
}

// NewTicketRepository creates a ticket repository on a pool or transaction
func NewTicketRepository(q Queryable) *TicketRepository {
	return &TicketRepository{q: q}
}

const (
	ticketColumns = `id, raffle_id, ticket_number, claimant, secret_hash, is_winner, claimed_at`

	claimantConstraint = "uq_tickets_raffle_claimant"
)

// CountByRaffle returns the number of tickets generated for a raffle
func (r *TicketRepository) CountByRaffle(ctx context.Context, raffleID uuid.UUID) (int64, error) {
	var count int64
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM tickets WHERE raffle_id = $1`, raffleID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count tickets for raffle %s: %w", raffleID, err)
	}
	return count, nil
}

// CreateBatch copies ticket rows in slice order. COPY avoids the bind
// parameter limit that a multi-row INSERT hits on large raffles.
func (r *TicketRepository) CreateBatch(ctx context.Context, raffleID uuid.UUID, ticketNumbers []int64) error {
	if len(ticketNumbers) == 0 {
		return nil
	}

	copied, err := r.q.CopyFrom(ctx,
		pgx.Identifier{"tickets"},
		[]string{"raffle_id", "ticket_number"},
		pgx.CopyFromSlice(len(ticketNumbers), func(i int) ([]any, error) {
			return []any{raffleID, ticketNumbers[i]}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to copy tickets for raffle %s: %w", raffleID, err)
	}
	if copied != int64(len(ticketNumbers)) {
		return fmt.Errorf("copied %d of %d tickets for raffle %s", copied, len(ticketNumbers), raffleID)
	}

	return nil
}

// CountUnclaimed returns the number of tickets nobody holds
func (r *TicketRepository) CountUnclaimed(ctx context.Context, raffleID uuid.UUID) (int64, error) {
	var count int64
	err := r.q.QueryRow(ctx,
		`SELECT COUNT(*) FROM tickets WHERE raffle_id = $1 AND claimant IS NULL`,
		raffleID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count unclaimed tickets for raffle %s: %w", raffleID, err)
	}
	return count, nil
}

// GetUnclaimedAt returns the offset-th unclaimed ticket by ticket number
func (r *TicketRepository) GetUnclaimedAt(ctx context.Context, raffleID uuid.UUID, offset int64) (*entities.Ticket, error) {
	query := `
		SELECT ` + ticketColumns + `
		FROM tickets
		WHERE raffle_id = $1 AND claimant IS NULL
		ORDER BY ticket_number
		OFFSET $2
		LIMIT 1
	`
	return r.getOne(ctx, query, raffleID, offset)
}

// AssignClaimant claims a ticket only if it is still unclaimed
func (r *TicketRepository) AssignClaimant(ctx context.Context, ticketID int64, claimant, secretHash string) (bool, error) {
	query := `
		UPDATE tickets
		SET claimant = $2, secret_hash = $3, claimed_at = NOW()
		WHERE id = $1 AND claimant IS NULL
	`

	tag, err := r.q.Exec(ctx, query, ticketID, claimant, secretHash)
	if isUniqueViolation(err, claimantConstraint) {
		return false, entities.ErrAlreadyClaimed
	}
	if err != nil {
		return false, fmt.Errorf("failed to claim ticket %d: %w", ticketID, err)
	}

	return tag.RowsAffected() == 1, nil
}

// GetByClaimant returns the ticket held by claimant
func (r *TicketRepository) GetByClaimant(ctx context.Context, raffleID uuid.UUID, claimant string) (*entities.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE raffle_id = $1 AND claimant = $2`
	return r.getOne(ctx, query, raffleID, claimant)
}

// GetByNumber returns a ticket by its number
func (r *TicketRepository) GetByNumber(ctx context.Context, raffleID uuid.UUID, ticketNumber int64) (*entities.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE raffle_id = $1 AND ticket_number = $2`
	return r.getOne(ctx, query, raffleID, ticketNumber)
}

// GetEligibleForDraw returns claimed tickets that have not won
func (r *TicketRepository) GetEligibleForDraw(ctx context.Context, raffleID uuid.UUID) ([]*entities.Ticket, error) {
	query := `
		SELECT ` + ticketColumns + `
		FROM tickets
		WHERE raffle_id = $1 AND claimant IS NOT NULL AND is_winner = FALSE
		ORDER BY ticket_number
	`

	rows, err := r.q.Query(ctx, query, raffleID)
	if err != nil {
		return nil, fmt.Errorf("failed to get eligible tickets for raffle %s: %w", raffleID, err)
	}
	defer rows.Close()

	var tickets []*entities.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ticket: %w", err)
		}
		tickets = append(tickets, ticket)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tickets: %w", err)
	}

	return tickets, nil
}

// MarkWinner flags a ticket as a winner. A ticket can only win once.
func (r *TicketRepository) MarkWinner(ctx context.Context, ticketID int64) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE tickets SET is_winner = TRUE WHERE id = $1 AND is_winner = FALSE AND claimant IS NOT NULL`,
		ticketID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark ticket %d as winner: %w", ticketID, err)
	}
	if tag.RowsAffected() != 1 {
		return fmt.Errorf("ticket %d is not an eligible winner", ticketID)
	}
	return nil
}

func (r *TicketRepository) getOne(ctx context.Context, query string, args ...any) (*entities.Ticket, error) {
	ticket, err := scanTicket(r.q.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}
	return ticket, nil
}

func scanTicket(row pgx.Row) (*entities.Ticket, error) {
	var ticket entities.Ticket
	err := row.Scan(
		&ticket.ID,
		&ticket.RaffleID,
		&ticket.TicketNumber,
		&ticket.Claimant,
		&ticket.SecretHash,
		&ticket.IsWinner,
		&ticket.ClaimedAt,
	)
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}
