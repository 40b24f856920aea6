package infrastructure

import (
	"context"
	"errors"
	"strings"
	"testing"

	"raffler/domain/events"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMessenger struct {
	channelID string
	embeds    []*discordgo.MessageEmbed
	err       error
}

func (m *fakeMessenger) ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.channelID = channelID
	m.embeds = append(m.embeds, embed)
	return &discordgo.Message{}, nil
}

func TestDiscordAnnouncer_WinnersDrawn(t *testing.T) {
	t.Parallel()

	messenger := &fakeMessenger{}
	announcer := newDiscordAnnouncer(messenger, "chan-1")

	err := announcer.HandleEvent(context.Background(), events.WinnersDrawnEvent{
		RaffleID:   uuid.New(),
		RaffleName: "Spring",
		Winners: []events.DrawnWinner{
			{TicketNumber: 12, Prize: "Gold"},
			{TicketNumber: 3, Prize: "Silver"},
			{TicketNumber: 8, Prize: "Silver"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "chan-1", messenger.channelID)
	require.Len(t, messenger.embeds, 1)
	embed := messenger.embeds[0]
	assert.Equal(t, "Winners drawn: Spring", embed.Title)
	require.Len(t, embed.Fields, 2)
	assert.Equal(t, "Gold", embed.Fields[0].Name)
	assert.Equal(t, "#12", embed.Fields[0].Value)
	assert.Equal(t, "Silver", embed.Fields[1].Name)
	assert.Equal(t, "#3, #8", embed.Fields[1].Value)
}

func TestDiscordAnnouncer_IgnoresOtherEvents(t *testing.T) {
	t.Parallel()

	messenger := &fakeMessenger{}
	announcer := newDiscordAnnouncer(messenger, "chan-1")

	require.NoError(t, announcer.HandleEvent(context.Background(), events.TicketClaimedEvent{RaffleID: uuid.New()}))
	assert.Empty(t, messenger.embeds)
}

func TestDiscordAnnouncer_SendFailure(t *testing.T) {
	t.Parallel()

	messenger := &fakeMessenger{err: errors.New("rate limited")}
	announcer := newDiscordAnnouncer(messenger, "chan-1")

	err := announcer.HandleEvent(context.Background(), events.RaffleCreatedEvent{RaffleID: uuid.New(), Name: "R"})
	assert.Error(t, err)
}

func TestCreateWinnersDrawnEmbed_TruncatesLongFields(t *testing.T) {
	t.Parallel()

	winners := make([]events.DrawnWinner, 0, 500)
	for i := 1; i <= 500; i++ {
		winners = append(winners, events.DrawnWinner{TicketNumber: int64(i), Prize: "Mug"})
	}

	embed := CreateWinnersDrawnEmbed(events.WinnersDrawnEvent{RaffleName: "Big", Winners: winners})

	require.Len(t, embed.Fields, 1)
	assert.LessOrEqual(t, len(embed.Fields[0].Value), maxFieldLength)
	assert.True(t, strings.HasSuffix(embed.Fields[0].Value, "..."))
}
