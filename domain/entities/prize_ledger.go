package entities

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// MaxPrizeNameLength matches the winners.prize column width
const MaxPrizeNameLength = 255

// Prize is one entry of a raffle's prize inventory
type Prize struct {
	Name   string `json:"name"`
	Amount int64  `json:"amount"`
}

// PrizeLedger tracks a raffle's declared prizes in order and hands them out
// during a drawing. Awarded counts are keyed by prize name.
type PrizeLedger struct {
	prizes  []Prize
	awarded map[string]int64
}

// NewPrizeLedger creates a ledger with nothing awarded yet
func NewPrizeLedger(prizes []Prize) *PrizeLedger {
	return &PrizeLedger{
		prizes:  prizes,
		awarded: make(map[string]int64, len(prizes)),
	}
}

// TotalAwards returns the number of winners the prizes call for
func (l *PrizeLedger) TotalAwards() int64 {
	return TotalPrizeAmount(l.prizes)
}

// Next awards the first prize in declared order that still has remaining
// quantity. It returns false once every prize has been handed out.
func (l *PrizeLedger) Next() (string, bool) {
	for _, prize := range l.prizes {
		if l.awarded[prize.Name] < prize.Amount {
			l.awarded[prize.Name]++
			return prize.Name, true
		}
	}
	return "", false
}

// TotalPrizeAmount sums the amounts of the given prizes
func TotalPrizeAmount(prizes []Prize) int64 {
	var total int64
	for _, prize := range prizes {
		total += prize.Amount
	}
	return total
}

// ValidatePrizes checks a prize inventory against the raffle's ticket count
func ValidatePrizes(prizes []Prize, totalTickets int64) error {
	if len(prizes) == 0 {
		return ErrInvalidPrizeSpec.WithMessage("A raffle needs at least one prize.")
	}

	seen := make(map[string]bool, len(prizes))
	var total int64
	for _, prize := range prizes {
		name := strings.TrimSpace(prize.Name)
		if name == "" {
			return ErrInvalidPrizeSpec.WithMessage("Prize names cannot be empty.")
		}
		if utf8.RuneCountInString(prize.Name) > MaxPrizeNameLength {
			return ErrInvalidPrizeSpec.WithMessage("Prize names cannot be longer than 255 characters.")
		}
		if prize.Amount <= 0 {
			return ErrInvalidPrizeSpec.WithMessage(fmt.Sprintf("Prize %q must have a positive amount.", prize.Name))
		}
		if seen[prize.Name] {
			return ErrInvalidPrizeSpec.WithMessage(fmt.Sprintf("Prize %q is listed more than once.", prize.Name))
		}
		seen[prize.Name] = true

		// compared against the remaining headroom so huge amounts cannot overflow
		if prize.Amount > totalTickets-total {
			return ErrInvalidPrizeSpec.WithMessage("The total number of prizes cannot exceed the total number of tickets.")
		}
		total += prize.Amount
	}

	return nil
}
