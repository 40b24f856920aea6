package entities

import (
	"time"

	"github.com/google/uuid"
)

// Winner binds a drawn ticket to the prize it won
type Winner struct {
	ID           int64     `db:"id" json:"-"`
	RaffleID     uuid.UUID `db:"raffle_id" json:"-"`
	TicketID     int64     `db:"ticket_id" json:"-"`
	TicketNumber int64     `db:"ticket_number" json:"ticket_number"`
	Prize        string    `db:"prize" json:"prize"`
	CreatedAt    time.Time `db:"created_at" json:"-"`
}
