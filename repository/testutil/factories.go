package testutil

import (
	"fmt"

	"raffler/domain/entities"

	"github.com/google/uuid"
)

// CreateTestRaffle creates a raffle with a single one-winner prize
func CreateTestRaffle(name string, totalTickets int64) *entities.Raffle {
	return CreateTestRaffleWithPrizes(name, totalTickets, entities.Prize{Name: "Grand prize", Amount: 1})
}

// CreateTestRaffleWithPrizes creates a raffle with the given prizes
func CreateTestRaffleWithPrizes(name string, totalTickets int64, prizes ...entities.Prize) *entities.Raffle {
	return &entities.Raffle{
		ID:           uuid.New(),
		Name:         name,
		TotalTickets: totalTickets,
		Prizes:       prizes,
	}
}

// ClaimantIP returns a distinct documentation-range address for index i
func ClaimantIP(i int) string {
	return fmt.Sprintf("198.51.%d.%d", (i/250)%250, i%250+1)
}
