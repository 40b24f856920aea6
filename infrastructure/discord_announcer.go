package infrastructure

import (
	"context"
	"fmt"
	"strings"

	"raffler/domain/events"
	"raffler/domain/utils"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

const (
	colorSuccess = 0x57F287
	colorInfo    = 0x5865F2

	// Discord rejects embed field values over 1024 characters
	maxFieldLength = 1024
)

// channelMessenger is the slice of *discordgo.Session the announcer needs
type channelMessenger interface {
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// DiscordAnnouncer posts committed raffle results to a Discord channel
type DiscordAnnouncer struct {
	session   channelMessenger
	channelID string
}

// NewDiscordAnnouncer creates an announcer backed by a bot session. Only the
// REST API is used, so the gateway connection is never opened.
func NewDiscordAnnouncer(token, channelID string) (*DiscordAnnouncer, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}
	return newDiscordAnnouncer(session, channelID), nil
}

func newDiscordAnnouncer(session channelMessenger, channelID string) *DiscordAnnouncer {
	return &DiscordAnnouncer{session: session, channelID: channelID}
}

// Register subscribes the announcer to the events it posts
func (a *DiscordAnnouncer) Register(factory *UnitOfWorkFactory) {
	factory.RegisterLocalHandler(events.EventTypeRaffleCreated, a.HandleEvent)
	factory.RegisterLocalHandler(events.EventTypeWinnersDrawn, a.HandleEvent)
}

// HandleEvent posts an embed for raffle creation and drawing results
func (a *DiscordAnnouncer) HandleEvent(ctx context.Context, event events.Event) error {
	var embed *discordgo.MessageEmbed
	switch e := event.(type) {
	case events.RaffleCreatedEvent:
		embed = CreateRaffleOpenedEmbed(e)
	case events.WinnersDrawnEvent:
		embed = CreateWinnersDrawnEmbed(e)
	default:
		return nil
	}

	if _, err := a.session.ChannelMessageSendEmbed(a.channelID, embed, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to post %s announcement: %w", event.Type(), err)
	}

	log.WithFields(log.Fields{
		"raffleID":  event.AggregateID(),
		"eventType": event.Type(),
		"channelID": a.channelID,
	}).Info("Posted raffle announcement")
	return nil
}

// CreateRaffleOpenedEmbed creates the embed announcing a new raffle
func CreateRaffleOpenedEmbed(e events.RaffleCreatedEvent) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("Raffle open: %s", e.Name),
		Color:       colorInfo,
		Description: fmt.Sprintf("Claim a ticket now. %d will win.", e.TotalAwards),
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "Tickets",
				Value:  utils.FormatCount(e.TotalTickets),
				Inline: true,
			},
			{
				Name:   "Raffle ID",
				Value:  e.RaffleID.String(),
				Inline: true,
			},
		},
	}
}

// CreateWinnersDrawnEmbed creates the embed listing drawn tickets by prize
func CreateWinnersDrawnEmbed(e events.WinnersDrawnEvent) *discordgo.MessageEmbed {
	order := make([]string, 0)
	byPrize := make(map[string][]string)
	for _, winner := range e.Winners {
		if _, seen := byPrize[winner.Prize]; !seen {
			order = append(order, winner.Prize)
		}
		byPrize[winner.Prize] = append(byPrize[winner.Prize], fmt.Sprintf("#%d", winner.TicketNumber))
	}

	fields := make([]*discordgo.MessageEmbedField, 0, len(order))
	for _, prize := range order {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:   prize,
			Value:  truncateField(strings.Join(byPrize[prize], ", ")),
			Inline: false,
		})
	}

	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("Winners drawn: %s", e.RaffleName),
		Color:       colorSuccess,
		Description: "Check your ticket with its verification code to claim a prize.",
		Fields:      fields,
	}
}

func truncateField(value string) string {
	if len(value) <= maxFieldLength {
		return value
	}
	return value[:maxFieldLength-3] + "..."
}
