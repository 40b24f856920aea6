package repository

import (
	"context"
	"errors"
	"fmt"

	"raffler/domain/entities"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// WinnerRepository implements winner data access
type WinnerRepository struct {
	q Queryable
}

// NewWinnerRepository creates a winner repository on a pool or transaction
func NewWinnerRepository(q Queryable) *WinnerRepository {
	return &WinnerRepository{q: q}
}

// Create inserts a winner record
func (r *WinnerRepository) Create(ctx context.Context, winner *entities.Winner) error {
	query := `
		INSERT INTO winners (raffle_id, ticket_id, prize)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query, winner.RaffleID, winner.TicketID, winner.Prize).
		Scan(&winner.ID, &winner.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create winner for ticket %d: %w", winner.TicketID, err)
	}

	return nil
}

// ExistsForRaffle reports whether any winner has been drawn
func (r *WinnerRepository) ExistsForRaffle(ctx context.Context, raffleID uuid.UUID) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM winners WHERE raffle_id = $1)`,
		raffleID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check winners for raffle %s: %w", raffleID, err)
	}
	return exists, nil
}

// GetByRaffle returns a raffle's winners in drawing order
func (r *WinnerRepository) GetByRaffle(ctx context.Context, raffleID uuid.UUID) ([]*entities.Winner, error) {
	query := `
		SELECT w.id, w.raffle_id, w.ticket_id, t.ticket_number, w.prize, w.created_at
		FROM winners w
		JOIN tickets t ON t.id = w.ticket_id
		WHERE w.raffle_id = $1
		ORDER BY w.id
	`

	rows, err := r.q.Query(ctx, query, raffleID)
	if err != nil {
		return nil, fmt.Errorf("failed to get winners for raffle %s: %w", raffleID, err)
	}
	defer rows.Close()

	winners := make([]*entities.Winner, 0)
	for rows.Next() {
		winner, err := scanWinner(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan winner: %w", err)
		}
		winners = append(winners, winner)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate winners: %w", err)
	}

	return winners, nil
}

// GetByTicketID returns the winner record for a ticket
func (r *WinnerRepository) GetByTicketID(ctx context.Context, ticketID int64) (*entities.Winner, error) {
	query := `
		SELECT w.id, w.raffle_id, w.ticket_id, t.ticket_number, w.prize, w.created_at
		FROM winners w
		JOIN tickets t ON t.id = w.ticket_id
		WHERE w.ticket_id = $1
	`

	winner, err := scanWinner(r.q.QueryRow(ctx, query, ticketID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get winner for ticket %d: %w", ticketID, err)
	}

	return winner, nil
}

func scanWinner(row pgx.Row) (*entities.Winner, error) {
	var winner entities.Winner
	err := row.Scan(
		&winner.ID,
		&winner.RaffleID,
		&winner.TicketID,
		&winner.TicketNumber,
		&winner.Prize,
		&winner.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &winner, nil
}
