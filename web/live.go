package web

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"raffler/domain/events"
	"raffler/infrastructure"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

const (
	liveWriteWait  = 10 * time.Second
	livePongWait   = 60 * time.Second
	livePingPeriod = (livePongWait * 9) / 10
	liveSendBuffer = 16
)

// LiveMessage is one frame of a raffle's live feed
type LiveMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// LiveHub fans committed raffle events out to websocket clients watching
// that raffle. All room bookkeeping happens on the Run goroutine.
type LiveHub struct {
	Rooms map[uuid.UUID]map[*LiveClient]bool

	Register   chan *LiveClient
	Unregister chan *LiveClient

	Broadcasts chan *Broadcast

	done chan struct{}
}

// Broadcast is a frame addressed to every client of one raffle
type Broadcast struct {
	RaffleID uuid.UUID
	J        []byte
	// Close disconnects the room's clients after delivery
	Close bool
}

// LiveClient is one websocket connection following a raffle
type LiveClient struct {
	Hub      *LiveHub
	RaffleID uuid.UUID

	Conn *websocket.Conn

	Outgoing chan []byte
}

// NewLiveHub creates a hub. Call Run before registering clients.
func NewLiveHub() *LiveHub {
	return &LiveHub{
		Rooms:      make(map[uuid.UUID]map[*LiveClient]bool),
		Register:   make(chan *LiveClient),
		Unregister: make(chan *LiveClient),
		Broadcasts: make(chan *Broadcast, 64),
		done:       make(chan struct{}),
	}
}

// Run processes registrations and broadcasts until ctx is done
func (h *LiveHub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			for _, room := range h.Rooms {
				for client := range room {
					close(client.Outgoing)
				}
			}
			h.Rooms = make(map[uuid.UUID]map[*LiveClient]bool)
			return

		case client := <-h.Register:
			room, ok := h.Rooms[client.RaffleID]
			if !ok {
				room = make(map[*LiveClient]bool)
				h.Rooms[client.RaffleID] = room
			}
			room[client] = true

		case client := <-h.Unregister:
			h.remove(client)

		case b := <-h.Broadcasts:
			for client := range h.Rooms[b.RaffleID] {
				select {
				case client.Outgoing <- b.J:
				default:
					// slow consumer
					h.remove(client)
				}
			}
			if b.Close {
				for client := range h.Rooms[b.RaffleID] {
					h.remove(client)
				}
			}
		}
	}
}

func (h *LiveHub) remove(client *LiveClient) {
	room, ok := h.Rooms[client.RaffleID]
	if !ok || !room[client] {
		return
	}
	delete(room, client)
	close(client.Outgoing)
	if len(room) == 0 {
		delete(h.Rooms, client.RaffleID)
	}
}

// SubscribeTo forwards the factory's committed events into the hub
func (h *LiveHub) SubscribeTo(factory *infrastructure.UnitOfWorkFactory) {
	for _, eventType := range []events.EventType{
		events.EventTypeTicketClaimed,
		events.EventTypeWinnersDrawn,
		events.EventTypeRaffleDeleted,
	} {
		factory.RegisterLocalHandler(eventType, h.HandleEvent)
	}
}

// HandleEvent queues event for the clients of its raffle
func (h *LiveHub) HandleEvent(ctx context.Context, event events.Event) error {
	j, err := json.Marshal(LiveMessage{Type: string(event.Type()), Data: event})
	if err != nil {
		return fmt.Errorf("failed to marshal live message: %w", err)
	}

	b := &Broadcast{
		RaffleID: event.AggregateID(),
		J:        j,
		Close:    event.Type() == events.EventTypeRaffleDeleted,
	}

	select {
	case h.Broadcasts <- b:
		return nil
	case <-h.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Attach registers a follower of raffleID before its connection exists, so
// events committed while the caller reads a snapshot are buffered rather
// than missed. It returns false once the hub has stopped.
func (h *LiveHub) Attach(raffleID uuid.UUID) (*LiveClient, bool) {
	client := &LiveClient{
		Hub:      h,
		RaffleID: raffleID,
		Outgoing: make(chan []byte, liveSendBuffer),
	}

	select {
	case h.Register <- client:
		return client, true
	case <-h.done:
		return nil, false
	}
}

// Detach drops a follower that never got a connection
func (h *LiveHub) Detach(client *LiveClient) {
	select {
	case h.Unregister <- client:
	case <-h.done:
	}
}

// Start binds conn to the client and starts the connection pumps. first is
// written ahead of any buffered event.
func (c *LiveClient) Start(conn *websocket.Conn, first []byte) {
	c.Conn = conn
	go c.writePump(first)
	go c.readPump()
}

// readPump only watches for the peer going away; the feed is one way
func (c *LiveClient) readPump() {
	defer func() {
		select {
		case c.Hub.Unregister <- c:
		case <-c.Hub.done:
		}
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(512)
	_ = c.Conn.SetReadDeadline(time.Now().Add(livePongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(livePongWait))
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.WithFields(log.Fields{
					"raffleID": c.RaffleID,
					"error":    err,
				}).Debug("Live client disconnected")
			}
			return
		}
	}
}

func (c *LiveClient) writePump(first []byte) {
	ticker := time.NewTicker(livePingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	if first != nil {
		_ = c.Conn.SetWriteDeadline(time.Now().Add(liveWriteWait))
		if err := c.Conn.WriteMessage(websocket.TextMessage, first); err != nil {
			return
		}
	}

	for {
		select {
		case j, ok := <-c.Outgoing:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(liveWriteWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, j); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(liveWriteWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
