package repository

import (
	"context"
	"testing"
	"time"

	"raffler/domain/entities"
	"raffler/repository/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRaffleRepository_CreateAndGet(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewRaffleRepository(testDB.DB)
	ctx := context.Background()

	t.Run("unknown raffle", func(t *testing.T) {
		raffle, err := repo.GetByID(ctx, uuid.New())
		require.NoError(t, err)
		assert.Nil(t, raffle)

		details, err := repo.GetDetails(ctx, uuid.New())
		require.NoError(t, err)
		assert.Nil(t, details)
	})

	t.Run("prizes round trip in declared order", func(t *testing.T) {
		raffle := testutil.CreateTestRaffleWithPrizes("Summer", 20,
			entities.Prize{Name: "Car", Amount: 1},
			entities.Prize{Name: "Bike", Amount: 3},
			entities.Prize{Name: "Mug", Amount: 5},
		)
		require.NoError(t, repo.Create(ctx, raffle))
		assert.False(t, raffle.CreatedAt.IsZero())

		got, err := repo.GetByID(ctx, raffle.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, raffle.Name, got.Name)
		assert.Equal(t, int64(20), got.TotalTickets)
		assert.Equal(t, raffle.Prizes, got.Prizes)
	})

	t.Run("details before tickets exist", func(t *testing.T) {
		raffle := testutil.CreateTestRaffle("Bare", 5)
		require.NoError(t, repo.Create(ctx, raffle))

		details, err := repo.GetDetails(ctx, raffle.ID)
		require.NoError(t, err)
		require.NotNil(t, details)
		assert.Equal(t, int64(0), details.AvailableTickets)
		assert.Equal(t, entities.RaffleStateCreated, details.State)
	})

	t.Run("details track claims", func(t *testing.T) {
		raffle := testutil.CreateTestRaffle("Tracked", 3)
		require.NoError(t, repo.Create(ctx, raffle))

		tickets := NewTicketRepository(testDB.DB)
		require.NoError(t, tickets.CreateBatch(ctx, raffle.ID, []int64{2, 3, 1}))

		details, err := repo.GetDetails(ctx, raffle.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(3), details.AvailableTickets)
		assert.Equal(t, entities.RaffleStateOpen, details.State)

		for i := int64(0); i < 3; i++ {
			ticket, err := tickets.GetUnclaimedAt(ctx, raffle.ID, 0)
			require.NoError(t, err)
			ok, err := tickets.AssignClaimant(ctx, ticket.ID, testutil.ClaimantIP(int(i)), "hash")
			require.NoError(t, err)
			require.True(t, ok)
		}

		details, err = repo.GetDetails(ctx, raffle.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(0), details.AvailableTickets)
		assert.Equal(t, entities.RaffleStateExhausted, details.State)
		assert.False(t, details.WinnersDrawn)
	})
}

func TestRaffleRepository_List(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewRaffleRepository(testDB.DB)
	winners := NewWinnerRepository(testDB.DB)
	tickets := NewTicketRepository(testDB.DB)
	ctx := context.Background()

	names := []string{"Alpha 100%", "Beta", "Gamma", "alpha_two", "Delta"}
	created := make([]*entities.Raffle, len(names))
	for i, name := range names {
		raffle := testutil.CreateTestRaffle(name, int64(10+i))
		require.NoError(t, repo.Create(ctx, raffle))
		created[i] = raffle
	}

	// draw Gamma so the winners_drawn filter has something to find
	gamma := created[2]
	require.NoError(t, tickets.CreateBatch(ctx, gamma.ID, []int64{1}))
	ticket, err := tickets.GetByNumber(ctx, gamma.ID, 1)
	require.NoError(t, err)
	_, err = tickets.AssignClaimant(ctx, ticket.ID, testutil.ClaimantIP(1), "hash")
	require.NoError(t, err)
	require.NoError(t, tickets.MarkWinner(ctx, ticket.ID))
	require.NoError(t, winners.Create(ctx, &entities.Winner{RaffleID: gamma.ID, TicketID: ticket.ID, Prize: "Grand prize"}))

	drawn := true
	notDrawn := false
	total := int64(11)
	today := time.Now().UTC()
	yesterday := today.AddDate(0, 0, -1)

	tests := []struct {
		name      string
		filter    entities.RaffleFilter
		wantCount int64
		wantNames []string
	}{
		{
			name:      "all newest first",
			filter:    entities.RaffleFilter{},
			wantCount: 5,
			wantNames: []string{"Delta", "alpha_two", "Gamma", "Beta", "Alpha 100%"},
		},
		{
			name:      "name is case insensitive substring",
			filter:    entities.RaffleFilter{Name: "ALPHA"},
			wantCount: 2,
			wantNames: []string{"alpha_two", "Alpha 100%"},
		},
		{
			name:      "like wildcards are literal",
			filter:    entities.RaffleFilter{Name: "%"},
			wantCount: 1,
			wantNames: []string{"Alpha 100%"},
		},
		{
			name:      "underscore is literal",
			filter:    entities.RaffleFilter{Name: "_"},
			wantCount: 1,
			wantNames: []string{"alpha_two"},
		},
		{
			name:      "total tickets",
			filter:    entities.RaffleFilter{TotalTickets: &total},
			wantCount: 1,
			wantNames: []string{"Beta"},
		},
		{
			name:      "winners drawn",
			filter:    entities.RaffleFilter{WinnersDrawn: &drawn},
			wantCount: 1,
			wantNames: []string{"Gamma"},
		},
		{
			name:      "winners not drawn",
			filter:    entities.RaffleFilter{WinnersDrawn: &notDrawn},
			wantCount: 4,
			wantNames: []string{"Delta", "alpha_two", "Beta", "Alpha 100%"},
		},
		{
			name:      "created today",
			filter:    entities.RaffleFilter{CreatedOn: &today},
			wantCount: 5,
			wantNames: []string{"Delta", "alpha_two", "Gamma", "Beta", "Alpha 100%"},
		},
		{
			name:      "created yesterday",
			filter:    entities.RaffleFilter{CreatedOn: &yesterday},
			wantCount: 0,
			wantNames: []string{},
		},
		{
			name:      "second page",
			filter:    entities.RaffleFilter{Page: 2, PageSize: 2},
			wantCount: 5,
			wantNames: []string{"Gamma", "Beta"},
		},
		{
			name:      "page past the end",
			filter:    entities.RaffleFilter{Page: 4, PageSize: 2},
			wantCount: 5,
			wantNames: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, count, err := repo.List(ctx, tt.filter)
			require.NoError(t, err)

			assert.Equal(t, tt.wantCount, count)
			got := make([]string, 0, len(results))
			for _, r := range results {
				got = append(got, r.Name)
			}
			assert.Equal(t, tt.wantNames, got)
		})
	}
}

func TestRaffleRepository_Delete(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewRaffleRepository(testDB.DB)
	tickets := NewTicketRepository(testDB.DB)
	ctx := context.Background()

	raffle := testutil.CreateTestRaffle("Doomed", 4)
	require.NoError(t, repo.Create(ctx, raffle))
	require.NoError(t, tickets.CreateBatch(ctx, raffle.ID, []int64{1, 2, 3, 4}))

	deleted, err := repo.Delete(ctx, raffle.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	count, err := tickets.CountByRaffle(ctx, raffle.ID)
	require.NoError(t, err)
	assert.Zero(t, count, "tickets are removed with their raffle")

	deleted, err = repo.Delete(ctx, raffle.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}
