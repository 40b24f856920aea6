package services

import (
	"context"
	"testing"

	"raffler/domain/entities"
	"raffler/domain/testhelpers"
	"raffler/domain/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestTicketVerifier_Verify(t *testing.T) {
	t.Parallel()

	const goodCode = "good-code"

	tests := []struct {
		name       string
		req        entities.VerificationRequest
		setupMocks func(raffle *entities.Raffle, ticketRepo *testhelpers.MockTicketRepository, winnerRepo *testhelpers.MockWinnerRepository, vault *testhelpers.MockSecretVault)
		wantErr    error
		wantWon    bool
		wantPrize  string
	}{
		{
			name:       "missing code",
			req:        entities.VerificationRequest{TicketNumber: 1},
			setupMocks: func(*entities.Raffle, *testhelpers.MockTicketRepository, *testhelpers.MockWinnerRepository, *testhelpers.MockSecretVault) {},
			wantErr:    entities.ErrMissingInput,
		},
		{
			name: "winners not drawn",
			req:  entities.VerificationRequest{TicketNumber: 1, RawCode: goodCode},
			setupMocks: func(raffle *entities.Raffle, ticketRepo *testhelpers.MockTicketRepository, winnerRepo *testhelpers.MockWinnerRepository, vault *testhelpers.MockSecretVault) {
				winnerRepo.On("ExistsForRaffle", mock.Anything, raffle.ID).Return(false, nil)
			},
			wantErr: entities.ErrWinnersNotDrawn,
		},
		{
			name: "unknown ticket number",
			req:  entities.VerificationRequest{TicketNumber: 5, RawCode: goodCode},
			setupMocks: func(raffle *entities.Raffle, ticketRepo *testhelpers.MockTicketRepository, winnerRepo *testhelpers.MockWinnerRepository, vault *testhelpers.MockSecretVault) {
				winnerRepo.On("ExistsForRaffle", mock.Anything, raffle.ID).Return(true, nil)
				ticketRepo.On("GetByNumber", mock.Anything, raffle.ID, int64(5)).Return(nil, nil)
			},
			wantErr: entities.ErrUnknownTicket,
		},
		{
			name: "ticket number past the raffle",
			req:  entities.VerificationRequest{TicketNumber: 6, RawCode: goodCode},
			setupMocks: func(raffle *entities.Raffle, ticketRepo *testhelpers.MockTicketRepository, winnerRepo *testhelpers.MockWinnerRepository, vault *testhelpers.MockSecretVault) {
				winnerRepo.On("ExistsForRaffle", mock.Anything, raffle.ID).Return(true, nil)
			},
			wantErr: entities.ErrUnknownTicket,
		},
		{
			name: "ticket number beyond integer column",
			req:  entities.VerificationRequest{TicketNumber: 9999999999, RawCode: goodCode},
			setupMocks: func(raffle *entities.Raffle, ticketRepo *testhelpers.MockTicketRepository, winnerRepo *testhelpers.MockWinnerRepository, vault *testhelpers.MockSecretVault) {
				winnerRepo.On("ExistsForRaffle", mock.Anything, raffle.ID).Return(true, nil)
			},
			wantErr: entities.ErrUnknownTicket,
		},
		{
			name: "negative ticket number",
			req:  entities.VerificationRequest{TicketNumber: -1, RawCode: goodCode},
			setupMocks: func(raffle *entities.Raffle, ticketRepo *testhelpers.MockTicketRepository, winnerRepo *testhelpers.MockWinnerRepository, vault *testhelpers.MockSecretVault) {
				winnerRepo.On("ExistsForRaffle", mock.Anything, raffle.ID).Return(true, nil)
			},
			wantErr: entities.ErrUnknownTicket,
		},
		{
			name: "unclaimed ticket",
			req:  entities.VerificationRequest{TicketNumber: 2, RawCode: goodCode},
			setupMocks: func(raffle *entities.Raffle, ticketRepo *testhelpers.MockTicketRepository, winnerRepo *testhelpers.MockWinnerRepository, vault *testhelpers.MockSecretVault) {
				winnerRepo.On("ExistsForRaffle", mock.Anything, raffle.ID).Return(true, nil)
				ticketRepo.On("GetByNumber", mock.Anything, raffle.ID, int64(2)).Return(createTestTicket(2, 2), nil)
			},
			wantErr: entities.ErrInvalidCode,
		},
		{
			name: "wrong code",
			req:  entities.VerificationRequest{TicketNumber: 3, RawCode: "wrong"},
			setupMocks: func(raffle *entities.Raffle, ticketRepo *testhelpers.MockTicketRepository, winnerRepo *testhelpers.MockWinnerRepository, vault *testhelpers.MockSecretVault) {
				winnerRepo.On("ExistsForRaffle", mock.Anything, raffle.ID).Return(true, nil)
				ticketRepo.On("GetByNumber", mock.Anything, raffle.ID, int64(3)).Return(createClaimedTicket(3, 3, "10.0.0.1", "hash"), nil)
				vault.On("Verify", "wrong", "hash").Return(false)
			},
			wantErr: entities.ErrInvalidCode,
		},
		{
			name: "losing ticket",
			req:  entities.VerificationRequest{TicketNumber: 3, RawCode: goodCode},
			setupMocks: func(raffle *entities.Raffle, ticketRepo *testhelpers.MockTicketRepository, winnerRepo *testhelpers.MockWinnerRepository, vault *testhelpers.MockSecretVault) {
				winnerRepo.On("ExistsForRaffle", mock.Anything, raffle.ID).Return(true, nil)
				ticketRepo.On("GetByNumber", mock.Anything, raffle.ID, int64(3)).Return(createClaimedTicket(3, 3, "10.0.0.1", "hash"), nil)
				vault.On("Verify", goodCode, "hash").Return(true)
				winnerRepo.On("GetByTicketID", mock.Anything, int64(3)).Return(nil, nil)
			},
			wantWon: false,
		},
		{
			name: "winning ticket",
			req:  entities.VerificationRequest{TicketNumber: 4, RawCode: goodCode},
			setupMocks: func(raffle *entities.Raffle, ticketRepo *testhelpers.MockTicketRepository, winnerRepo *testhelpers.MockWinnerRepository, vault *testhelpers.MockSecretVault) {
				winnerRepo.On("ExistsForRaffle", mock.Anything, raffle.ID).Return(true, nil)
				ticket := createClaimedTicket(4, 4, "10.0.0.2", "hash")
				ticket.IsWinner = true
				ticketRepo.On("GetByNumber", mock.Anything, raffle.ID, int64(4)).Return(ticket, nil)
				vault.On("Verify", goodCode, "hash").Return(true)
				winnerRepo.On("GetByTicketID", mock.Anything, int64(4)).Return(&entities.Winner{TicketID: 4, TicketNumber: 4, Prize: "Gold"}, nil)
			},
			wantWon:   true,
			wantPrize: "Gold",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			raffle := createTestRaffle(5)
			ticketRepo := new(testhelpers.MockTicketRepository)
			winnerRepo := new(testhelpers.MockWinnerRepository)
			vault := new(testhelpers.MockSecretVault)
			tt.setupMocks(raffle, ticketRepo, winnerRepo, vault)

			pool := NewTicketPool(ticketRepo, vault, utils.CryptoRandom{})
			verifier := NewTicketVerifier(pool, winnerRepo, vault)

			result, err := verifier.Verify(context.Background(), raffle, tt.req)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, result)
				ticketRepo.AssertExpectations(t)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantWon, result.HasWon)
			if tt.wantPrize == "" {
				assert.Nil(t, result.Prize)
			} else {
				require.NotNil(t, result.Prize)
				assert.Equal(t, tt.wantPrize, *result.Prize)
			}
			winnerRepo.AssertExpectations(t)
			vault.AssertExpectations(t)
		})
	}
}
