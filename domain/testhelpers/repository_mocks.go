package testhelpers

import (
	"context"

	"raffler/domain/entities"
	"raffler/domain/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockRaffleRepository is a mock implementation of RaffleRepository
type MockRaffleRepository struct {
	mock.Mock
}

func (m *MockRaffleRepository) Create(ctx context.Context, raffle *entities.Raffle) error {
	args := m.Called(ctx, raffle)
	return args.Error(0)
}

func (m *MockRaffleRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Raffle, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Raffle), args.Error(1)
}

func (m *MockRaffleRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*entities.Raffle, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Raffle), args.Error(1)
}

func (m *MockRaffleRepository) GetByIDForShare(ctx context.Context, id uuid.UUID) (*entities.Raffle, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Raffle), args.Error(1)
}

func (m *MockRaffleRepository) GetDetails(ctx context.Context, id uuid.UUID) (*entities.RaffleDetails, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.RaffleDetails), args.Error(1)
}

func (m *MockRaffleRepository) List(ctx context.Context, filter entities.RaffleFilter) ([]*entities.RaffleDetails, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*entities.RaffleDetails), args.Get(1).(int64), args.Error(2)
}

func (m *MockRaffleRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// MockTicketRepository is a mock implementation of TicketRepository
type MockTicketRepository struct {
	mock.Mock
}

func (m *MockTicketRepository) CountByRaffle(ctx context.Context, raffleID uuid.UUID) (int64, error) {
	args := m.Called(ctx, raffleID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTicketRepository) CreateBatch(ctx context.Context, raffleID uuid.UUID, ticketNumbers []int64) error {
	args := m.Called(ctx, raffleID, ticketNumbers)
	return args.Error(0)
}

func (m *MockTicketRepository) CountUnclaimed(ctx context.Context, raffleID uuid.UUID) (int64, error) {
	args := m.Called(ctx, raffleID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTicketRepository) GetUnclaimedAt(ctx context.Context, raffleID uuid.UUID, offset int64) (*entities.Ticket, error) {
	args := m.Called(ctx, raffleID, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Ticket), args.Error(1)
}

func (m *MockTicketRepository) AssignClaimant(ctx context.Context, ticketID int64, claimant, secretHash string) (bool, error) {
	args := m.Called(ctx, ticketID, claimant, secretHash)
	return args.Bool(0), args.Error(1)
}

func (m *MockTicketRepository) GetByClaimant(ctx context.Context, raffleID uuid.UUID, claimant string) (*entities.Ticket, error) {
	args := m.Called(ctx, raffleID, claimant)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Ticket), args.Error(1)
}

func (m *MockTicketRepository) GetByNumber(ctx context.Context, raffleID uuid.UUID, ticketNumber int64) (*entities.Ticket, error) {
	args := m.Called(ctx, raffleID, ticketNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Ticket), args.Error(1)
}

func (m *MockTicketRepository) GetEligibleForDraw(ctx context.Context, raffleID uuid.UUID) ([]*entities.Ticket, error) {
	args := m.Called(ctx, raffleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Ticket), args.Error(1)
}

func (m *MockTicketRepository) MarkWinner(ctx context.Context, ticketID int64) error {
	args := m.Called(ctx, ticketID)
	return args.Error(0)
}

// MockWinnerRepository is a mock implementation of WinnerRepository
type MockWinnerRepository struct {
	mock.Mock
}

func (m *MockWinnerRepository) Create(ctx context.Context, winner *entities.Winner) error {
	args := m.Called(ctx, winner)
	return args.Error(0)
}

func (m *MockWinnerRepository) ExistsForRaffle(ctx context.Context, raffleID uuid.UUID) (bool, error) {
	args := m.Called(ctx, raffleID)
	return args.Bool(0), args.Error(1)
}

func (m *MockWinnerRepository) GetByRaffle(ctx context.Context, raffleID uuid.UUID) ([]*entities.Winner, error) {
	args := m.Called(ctx, raffleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Winner), args.Error(1)
}

func (m *MockWinnerRepository) GetByTicketID(ctx context.Context, ticketID int64) (*entities.Winner, error) {
	args := m.Called(ctx, ticketID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Winner), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher for testing
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) error {
	args := m.Called(event)
	return args.Error(0)
}

// MockSecretVault is a mock implementation of SecretVault
type MockSecretVault struct {
	mock.Mock
}

func (m *MockSecretVault) NewRawCode() (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}

func (m *MockSecretVault) Issue(rawCode string) (string, error) {
	args := m.Called(rawCode)
	return args.String(0), args.Error(1)
}

func (m *MockSecretVault) Verify(rawCode, hashedCode string) bool {
	args := m.Called(rawCode, hashedCode)
	return args.Bool(0)
}
