package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"raffler/domain/entities"
	"raffler/domain/interfaces"
	"raffler/domain/testhelpers"
	"raffler/domain/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func claimedTickets(count int) []*entities.Ticket {
	tickets := make([]*entities.Ticket, count)
	for i := range tickets {
		tickets[i] = createClaimedTicket(int64(100+i), int64(i+1), fmt.Sprintf("10.0.0.%d", i+1), "hash")
	}
	return tickets
}

func newDrawingEngineWithMocks(rng *testhelpers.ScriptedRandom) (*drawingEngine, *testhelpers.MockTicketRepository, *testhelpers.MockWinnerRepository) {
	ticketRepo := new(testhelpers.MockTicketRepository)
	winnerRepo := new(testhelpers.MockWinnerRepository)

	var source interfaces.RandomSource = utils.CryptoRandom{}
	if rng != nil {
		source = rng
	}

	pool := NewTicketPool(ticketRepo, new(testhelpers.MockSecretVault), source)
	engine := NewDrawingEngine(pool, ticketRepo, winnerRepo, source).(*drawingEngine)
	return engine, ticketRepo, winnerRepo
}

func TestDrawingEngine_Preconditions(t *testing.T) {
	t.Parallel()

	prizes := []entities.Prize{{Name: "Gold", Amount: 1}, {Name: "Silver", Amount: 2}}

	tests := []struct {
		name       string
		setupMocks func(raffle *entities.Raffle, ticketRepo *testhelpers.MockTicketRepository, winnerRepo *testhelpers.MockWinnerRepository)
		wantErr    error
	}{
		{
			name: "tickets still available",
			setupMocks: func(raffle *entities.Raffle, ticketRepo *testhelpers.MockTicketRepository, winnerRepo *testhelpers.MockWinnerRepository) {
				ticketRepo.On("CountUnclaimed", mock.Anything, raffle.ID).Return(int64(1), nil)
			},
			wantErr: entities.ErrTicketsStillAvailable,
		},
		{
			name: "already drawn",
			setupMocks: func(raffle *entities.Raffle, ticketRepo *testhelpers.MockTicketRepository, winnerRepo *testhelpers.MockWinnerRepository) {
				ticketRepo.On("CountUnclaimed", mock.Anything, raffle.ID).Return(int64(0), nil)
				winnerRepo.On("ExistsForRaffle", mock.Anything, raffle.ID).Return(true, nil)
			},
			wantErr: entities.ErrAlreadyDrawn,
		},
		{
			name: "not enough participants",
			setupMocks: func(raffle *entities.Raffle, ticketRepo *testhelpers.MockTicketRepository, winnerRepo *testhelpers.MockWinnerRepository) {
				ticketRepo.On("CountUnclaimed", mock.Anything, raffle.ID).Return(int64(0), nil)
				winnerRepo.On("ExistsForRaffle", mock.Anything, raffle.ID).Return(false, nil)
				ticketRepo.On("GetEligibleForDraw", mock.Anything, raffle.ID).Return(claimedTickets(2), nil)
			},
			wantErr: entities.ErrNotEnoughParticipants,
		},
		{
			name: "tickets that already won are not eligible",
			setupMocks: func(raffle *entities.Raffle, ticketRepo *testhelpers.MockTicketRepository, winnerRepo *testhelpers.MockWinnerRepository) {
				ticketRepo.On("CountUnclaimed", mock.Anything, raffle.ID).Return(int64(0), nil)
				winnerRepo.On("ExistsForRaffle", mock.Anything, raffle.ID).Return(false, nil)
				tickets := claimedTickets(3)
				tickets[0].IsWinner = true
				ticketRepo.On("GetEligibleForDraw", mock.Anything, raffle.ID).Return(tickets, nil)
			},
			wantErr: entities.ErrNotEnoughParticipants,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			raffle := createTestRaffle(5, prizes...)
			engine, ticketRepo, winnerRepo := newDrawingEngineWithMocks(nil)
			tt.setupMocks(raffle, ticketRepo, winnerRepo)

			winners, err := engine.Draw(context.Background(), raffle)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, winners)

			ticketRepo.AssertNotCalled(t, "MarkWinner", mock.Anything, mock.Anything)
			winnerRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestDrawingEngine_DistributesPrizesByQuantity(t *testing.T) {
	t.Parallel()

	for _, eligibleCount := range []int{9, 12} {
		t.Run(fmt.Sprintf("%d eligible", eligibleCount), func(t *testing.T) {
			t.Parallel()

			raffle := createTestRaffle(int64(eligibleCount),
				entities.Prize{Name: "Gold", Amount: 1},
				entities.Prize{Name: "Silver", Amount: 3},
				entities.Prize{Name: "Bronze", Amount: 5},
			)
			tickets := claimedTickets(eligibleCount)
			byID := make(map[int64]*entities.Ticket)
			for _, ticket := range tickets {
				byID[ticket.ID] = ticket
			}

			engine, ticketRepo, winnerRepo := newDrawingEngineWithMocks(nil)
			ticketRepo.On("CountUnclaimed", mock.Anything, raffle.ID).Return(int64(0), nil)
			winnerRepo.On("ExistsForRaffle", mock.Anything, raffle.ID).Return(false, nil)
			ticketRepo.On("GetEligibleForDraw", mock.Anything, raffle.ID).Return(tickets, nil)
			ticketRepo.On("MarkWinner", mock.Anything, mock.AnythingOfType("int64")).Return(nil)
			winnerRepo.On("Create", mock.Anything, mock.AnythingOfType("*entities.Winner")).Return(nil)

			winners, err := engine.Draw(context.Background(), raffle)
			require.NoError(t, err)
			require.Len(t, winners, 9)

			prizeCounts := make(map[string]int)
			seenTickets := make(map[int64]bool)
			for _, winner := range winners {
				prizeCounts[winner.Prize]++
				assert.False(t, seenTickets[winner.TicketID], "ticket %d won twice", winner.TicketID)
				seenTickets[winner.TicketID] = true

				ticket, ok := byID[winner.TicketID]
				require.True(t, ok, "winner must be an eligible ticket")
				assert.Equal(t, ticket.TicketNumber, winner.TicketNumber)
				assert.Equal(t, raffle.ID, winner.RaffleID)
			}

			assert.Equal(t, map[string]int{"Gold": 1, "Silver": 3, "Bronze": 5}, prizeCounts)
			ticketRepo.AssertNumberOfCalls(t, "MarkWinner", 9)
			winnerRepo.AssertNumberOfCalls(t, "Create", 9)
		})
	}
}

func TestDrawingEngine_AssignsPrizesInSelectionOrder(t *testing.T) {
	t.Parallel()

	raffle := createTestRaffle(3,
		entities.Prize{Name: "Gold", Amount: 1},
		entities.Prize{Name: "Silver", Amount: 1},
	)
	tickets := claimedTickets(3)

	// picks ticket 3 first, then the first of the remaining two
	rng := testhelpers.NewScriptedRandom(2, 0)
	engine, ticketRepo, winnerRepo := newDrawingEngineWithMocks(rng)
	ticketRepo.On("CountUnclaimed", mock.Anything, raffle.ID).Return(int64(0), nil)
	winnerRepo.On("ExistsForRaffle", mock.Anything, raffle.ID).Return(false, nil)
	ticketRepo.On("GetEligibleForDraw", mock.Anything, raffle.ID).Return(tickets, nil)
	ticketRepo.On("MarkWinner", mock.Anything, mock.AnythingOfType("int64")).Return(nil)
	winnerRepo.On("Create", mock.Anything, mock.AnythingOfType("*entities.Winner")).Return(nil)

	winners, err := engine.Draw(context.Background(), raffle)
	require.NoError(t, err)
	require.Len(t, winners, 2)

	assert.Equal(t, int64(3), winners[0].TicketNumber)
	assert.Equal(t, "Gold", winners[0].Prize)
	assert.Equal(t, int64(2), winners[1].TicketNumber)
	assert.Equal(t, "Silver", winners[1].Prize)
}

func TestDrawingEngine_StopsOnRepositoryFailure(t *testing.T) {
	t.Parallel()

	raffle := createTestRaffle(2, entities.Prize{Name: "Gold", Amount: 2})

	engine, ticketRepo, winnerRepo := newDrawingEngineWithMocks(nil)
	ticketRepo.On("CountUnclaimed", mock.Anything, raffle.ID).Return(int64(0), nil)
	winnerRepo.On("ExistsForRaffle", mock.Anything, raffle.ID).Return(false, nil)
	ticketRepo.On("GetEligibleForDraw", mock.Anything, raffle.ID).Return(claimedTickets(2), nil)
	ticketRepo.On("MarkWinner", mock.Anything, mock.AnythingOfType("int64")).Return(errors.New("deadlock detected"))

	winners, err := engine.Draw(context.Background(), raffle)
	require.Error(t, err)
	assert.Nil(t, winners)
	assert.Contains(t, err.Error(), "deadlock detected")
	winnerRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}
