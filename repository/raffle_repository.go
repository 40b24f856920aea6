package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"raffler/domain/entities"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// RaffleRepository implements raffle data access
type RaffleRepository struct {
	q Queryable
}

// NewRaffleRepository creates a raffle repository on a pool or transaction
func NewRaffleRepository(q Queryable) *RaffleRepository {
	return &RaffleRepository{q: q}
}

const raffleColumns = `id, name, total_tickets, prizes, created_at`

// Create inserts a new raffle
func (r *RaffleRepository) Create(ctx context.Context, raffle *entities.Raffle) error {
	query := `
		INSERT INTO raffles (id, name, total_tickets, prizes)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`

	err := r.q.QueryRow(ctx, query, raffle.ID, raffle.Name, raffle.TotalTickets, raffle.Prizes).
		Scan(&raffle.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create raffle: %w", err)
	}

	return nil
}

// GetByID retrieves a raffle by ID
func (r *RaffleRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Raffle, error) {
	return r.getByID(ctx, id, "")
}

// GetByIDForUpdate retrieves a raffle and locks the row exclusively
func (r *RaffleRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*entities.Raffle, error) {
	return r.getByID(ctx, id, "FOR UPDATE")
}

// GetByIDForShare retrieves a raffle with a shared row lock
func (r *RaffleRepository) GetByIDForShare(ctx context.Context, id uuid.UUID) (*entities.Raffle, error) {
	return r.getByID(ctx, id, "FOR SHARE")
}

func (r *RaffleRepository) getByID(ctx context.Context, id uuid.UUID, lockClause string) (*entities.Raffle, error) {
	query := `SELECT ` + raffleColumns + ` FROM raffles WHERE id = $1 ` + lockClause

	raffle, err := scanRaffle(r.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get raffle %s: %w", id, err)
	}

	return raffle, nil
}

// GetDetails returns a raffle with its derived availability and drawing status
func (r *RaffleRepository) GetDetails(ctx context.Context, id uuid.UUID) (*entities.RaffleDetails, error) {
	query := `
		SELECT r.id, r.name, r.total_tickets, r.prizes, r.created_at,
			(SELECT COUNT(*) FROM tickets t WHERE t.raffle_id = r.id),
			(SELECT COUNT(*) FROM tickets t WHERE t.raffle_id = r.id AND t.claimant IS NULL),
			EXISTS (SELECT 1 FROM winners w WHERE w.raffle_id = r.id)
		FROM raffles r
		WHERE r.id = $1
	`

	details, err := scanRaffleDetails(r.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get raffle details %s: %w", id, err)
	}

	return details, nil
}

// List returns a page of raffles, newest first, plus the total match count
func (r *RaffleRepository) List(ctx context.Context, filter entities.RaffleFilter) ([]*entities.RaffleDetails, int64, error) {
	filter = filter.Normalize()
	where, args := buildRaffleFilter(filter)

	var total int64
	countQuery := `SELECT COUNT(*) FROM raffles r ` + where
	if err := r.q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count raffles: %w", err)
	}

	args = append(args, filter.PageSize, filter.Offset())
	query := fmt.Sprintf(`
		SELECT r.id, r.name, r.total_tickets, r.prizes, r.created_at,
			(SELECT COUNT(*) FROM tickets t WHERE t.raffle_id = r.id),
			(SELECT COUNT(*) FROM tickets t WHERE t.raffle_id = r.id AND t.claimant IS NULL),
			EXISTS (SELECT 1 FROM winners w WHERE w.raffle_id = r.id)
		FROM raffles r
		%s
		ORDER BY r.created_at DESC, r.id
		LIMIT $%d OFFSET $%d
	`, where, len(args)-1, len(args))

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list raffles: %w", err)
	}
	defer rows.Close()

	results := make([]*entities.RaffleDetails, 0, filter.PageSize)
	for rows.Next() {
		details, err := scanRaffleDetails(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan raffle: %w", err)
		}
		results = append(results, details)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate raffles: %w", err)
	}

	return results, total, nil
}

// Delete removes a raffle; tickets and winners go with it
func (r *RaffleRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM raffles WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete raffle %s: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}

func buildRaffleFilter(filter entities.RaffleFilter) (string, []any) {
	var conditions []string
	var args []any

	if filter.Name != "" {
		args = append(args, "%"+escapeLike(filter.Name)+"%")
		conditions = append(conditions, fmt.Sprintf("r.name ILIKE $%d", len(args)))
	}
	if filter.TotalTickets != nil {
		args = append(args, *filter.TotalTickets)
		conditions = append(conditions, fmt.Sprintf("r.total_tickets = $%d", len(args)))
	}
	if filter.CreatedOn != nil {
		y, m, d := filter.CreatedOn.UTC().Date()
		args = append(args, time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
		conditions = append(conditions, fmt.Sprintf("(r.created_at AT TIME ZONE 'UTC')::date = $%d", len(args)))
	}
	if filter.WinnersDrawn != nil {
		args = append(args, *filter.WinnersDrawn)
		conditions = append(conditions, fmt.Sprintf("EXISTS (SELECT 1 FROM winners w WHERE w.raffle_id = r.id) = $%d", len(args)))
	}

	if len(conditions) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(conditions, " AND "), args
}

func escapeLike(s string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(s)
}

func scanRaffle(row pgx.Row) (*entities.Raffle, error) {
	var raffle entities.Raffle
	err := row.Scan(
		&raffle.ID,
		&raffle.Name,
		&raffle.TotalTickets,
		&raffle.Prizes,
		&raffle.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &raffle, nil
}

func scanRaffleDetails(row pgx.Row) (*entities.RaffleDetails, error) {
	var details entities.RaffleDetails
	var ticketCount int64
	err := row.Scan(
		&details.ID,
		&details.Name,
		&details.TotalTickets,
		&details.Prizes,
		&details.CreatedAt,
		&ticketCount,
		&details.AvailableTickets,
		&details.WinnersDrawn,
	)
	if err != nil {
		return nil, err
	}
	details.State = entities.DeriveRaffleState(ticketCount, details.AvailableTickets, details.WinnersDrawn)
	return &details, nil
}
