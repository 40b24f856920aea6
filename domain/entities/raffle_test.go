package entities

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRaffle(t *testing.T) {
	t.Parallel()

	prizes := []Prize{{Name: "Gold", Amount: 1}}

	tests := []struct {
		name         string
		raffleName   string
		totalTickets int64
		prizes       []Prize
		wantErr      error
	}{
		{name: "valid raffle", raffleName: "Spring raffle", totalTickets: 15, prizes: prizes},
		{name: "blank name", raffleName: "   ", totalTickets: 15, prizes: prizes, wantErr: ErrInvalidRaffle},
		{name: "name too long", raffleName: strings.Repeat("a", MaxRaffleNameLength+1), totalTickets: 15, prizes: prizes, wantErr: ErrInvalidRaffle},
		{name: "zero tickets", raffleName: "r", totalTickets: 0, prizes: prizes, wantErr: ErrInvalidRaffle},
		{name: "too many tickets", raffleName: "r", totalTickets: MaxTotalTickets + 1, prizes: prizes, wantErr: ErrInvalidRaffle},
		{name: "no prizes", raffleName: "r", totalTickets: 15, prizes: nil, wantErr: ErrInvalidPrizeSpec},
		{name: "prizes exceed tickets", raffleName: "r", totalTickets: 1, prizes: []Prize{{Name: "Gold", Amount: 2}}, wantErr: ErrInvalidPrizeSpec},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			raffle, err := NewRaffle(tt.raffleName, tt.totalTickets, tt.prizes)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				assert.Nil(t, raffle)
				return
			}

			require.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, raffle.ID)
			assert.Equal(t, strings.TrimSpace(tt.raffleName), raffle.Name)
			assert.Equal(t, tt.totalTickets, raffle.TotalTickets)
			assert.Equal(t, int64(1), raffle.TotalAwards())
		})
	}
}

func TestDeriveRaffleState(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		ticketCount  int64
		available    int64
		winnersDrawn bool
		want         RaffleState
	}{
		{name: "no tickets yet", ticketCount: 0, available: 0, want: RaffleStateCreated},
		{name: "some tickets left", ticketCount: 10, available: 3, want: RaffleStateOpen},
		{name: "all tickets claimed", ticketCount: 10, available: 0, want: RaffleStateExhausted},
		{name: "winners drawn", ticketCount: 10, available: 0, winnersDrawn: true, want: RaffleStateDrawn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, DeriveRaffleState(tt.ticketCount, tt.available, tt.winnersDrawn))
		})
	}
}

func TestRaffleFilter_Normalize(t *testing.T) {
	t.Parallel()

	f := RaffleFilter{Name: "  spring ", Page: 0, PageSize: 500}.Normalize()
	assert.Equal(t, "spring", f.Name)
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, MaxPageSize, f.PageSize)
	assert.Equal(t, 0, f.Offset())

	f = RaffleFilter{Page: 3, PageSize: 0}.Normalize()
	assert.Equal(t, DefaultPageSize, f.PageSize)
	assert.Equal(t, 2*DefaultPageSize, f.Offset())
}
