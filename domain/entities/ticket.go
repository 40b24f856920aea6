package entities

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Ticket is one numbered entry in a raffle
type Ticket struct {
	ID           int64      `db:"id"`
	RaffleID     uuid.UUID  `db:"raffle_id"`
	TicketNumber int64      `db:"ticket_number"`
	Claimant     *string    `db:"claimant"`    // NULL until claimed
	SecretHash   *string    `db:"secret_hash"` // set together with Claimant
	IsWinner     bool       `db:"is_winner"`
	ClaimedAt    *time.Time `db:"claimed_at"`
}

// IsClaimed returns true once a participant holds the ticket
func (t *Ticket) IsClaimed() bool {
	return t.Claimant != nil
}

// IsEligibleForDraw returns true for claimed tickets that have not won yet
func (t *Ticket) IsEligibleForDraw() bool {
	return t.IsClaimed() && !t.IsWinner
}

// ClaimedTicket is handed back to a participant exactly once. RawCode is the
// plaintext verification code and is never stored.
type ClaimedTicket struct {
	RaffleID     uuid.UUID `json:"raffle_id"`
	TicketNumber int64     `json:"ticket_number"`
	RawCode      string    `json:"verification_code"`
}

// VerificationRequest carries a participant's proof of ticket ownership
type VerificationRequest struct {
	TicketNumber int64
	RawCode      string
}

// Validate rejects requests missing either field. A zero ticket number is
// treated as absent; other numbers are checked against the raffle later.
func (r VerificationRequest) Validate() error {
	if r.TicketNumber == 0 || strings.TrimSpace(r.RawCode) == "" {
		return ErrMissingInput
	}
	return nil
}

// VerificationResult reports whether a verified ticket won and what
type VerificationResult struct {
	HasWon bool    `json:"has_won"`
	Prize  *string `json:"prize"`
}
