package entities

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	// MaxRaffleNameLength matches the raffles.name column width
	MaxRaffleNameLength = 255

	// MaxTotalTickets bounds the number of tickets generated for one raffle
	MaxTotalTickets = 1_000_000
)

// Raffle is a pool of numbered tickets with a fixed prize inventory
type Raffle struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	TotalTickets int64     `db:"total_tickets" json:"total_tickets"`
	Prizes       []Prize   `db:"prizes" json:"prizes"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// NewRaffle validates the inputs and builds a raffle with a fresh id.
// Nothing is persisted.
func NewRaffle(name string, totalTickets int64, prizes []Prize) (*Raffle, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidRaffle.WithMessage("A raffle needs a name.")
	}
	if utf8.RuneCountInString(name) > MaxRaffleNameLength {
		return nil, ErrInvalidRaffle.WithMessage("Raffle name is too long.")
	}
	if totalTickets <= 0 || totalTickets > MaxTotalTickets {
		return nil, ErrInvalidRaffle.WithMessage("Total tickets must be between 1 and 1000000.")
	}
	if err := ValidatePrizes(prizes, totalTickets); err != nil {
		return nil, err
	}

	return &Raffle{
		ID:           uuid.New(),
		Name:         name,
		TotalTickets: totalTickets,
		Prizes:       prizes,
	}, nil
}

// TotalAwards returns how many winners a drawing produces
func (r *Raffle) TotalAwards() int64 {
	return TotalPrizeAmount(r.Prizes)
}

// RaffleState is the lifecycle position of a raffle, derived from its data
type RaffleState string

const (
	RaffleStateCreated   RaffleState = "created"
	RaffleStateOpen      RaffleState = "open"
	RaffleStateExhausted RaffleState = "exhausted"
	RaffleStateDrawn     RaffleState = "drawn"
)

// DeriveRaffleState computes the state from ticket availability and
// whether winners exist. A raffle with no tickets yet is still being created.
func DeriveRaffleState(ticketCount, availableTickets int64, winnersDrawn bool) RaffleState {
	switch {
	case winnersDrawn:
		return RaffleStateDrawn
	case ticketCount == 0:
		return RaffleStateCreated
	case availableTickets > 0:
		return RaffleStateOpen
	default:
		return RaffleStateExhausted
	}
}

// RaffleDetails is a raffle together with its derived state
type RaffleDetails struct {
	Raffle
	AvailableTickets int64       `json:"available_tickets"`
	WinnersDrawn     bool        `json:"winners_drawn"`
	State            RaffleState `json:"state"`
}

// RaffleFilter narrows a raffle listing. Zero values mean no filter.
type RaffleFilter struct {
	Name         string
	TotalTickets *int64
	CreatedOn    *time.Time
	WinnersDrawn *bool
	Page         int
	PageSize     int
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Normalize clamps paging to sane bounds
func (f RaffleFilter) Normalize() RaffleFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = DefaultPageSize
	}
	if f.PageSize > MaxPageSize {
		f.PageSize = MaxPageSize
	}
	f.Name = strings.TrimSpace(f.Name)
	return f
}

// Offset returns the row offset of the filter's page
func (f RaffleFilter) Offset() int {
	return (f.Page - 1) * f.PageSize
}

// RafflePage is one page of a raffle listing
type RafflePage struct {
	Count    int64            `json:"count"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
	Results  []*RaffleDetails `json:"results"`
}
