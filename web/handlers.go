package web

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"raffler/application"
	"raffler/domain/entities"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

const (
	verifiedWinnerMessage = "Congratulations! Your ticket is a winner!"
	verifiedLoserMessage  = "Your ticket is valid but not a winner."
)

// RaffleAPI is the set of raffle operations the HTTP layer drives
type RaffleAPI interface {
	CreateRaffle(ctx context.Context, callerIP string, req application.CreateRaffleRequest) (*entities.RaffleDetails, error)
	ClaimTicket(ctx context.Context, raffleID uuid.UUID, claimantIP string) (*entities.ClaimedTicket, error)
	DrawWinners(ctx context.Context, callerIP string, raffleID uuid.UUID) ([]*entities.Winner, error)
	VerifyTicket(ctx context.Context, raffleID uuid.UUID, req entities.VerificationRequest) (*entities.VerificationResult, error)
	GetRaffle(ctx context.Context, raffleID uuid.UUID) (*entities.RaffleDetails, error)
	ListRaffles(ctx context.Context, filter entities.RaffleFilter) (*entities.RafflePage, error)
	ListWinners(ctx context.Context, raffleID uuid.UUID) ([]*entities.Winner, error)
	DeleteRaffle(ctx context.Context, callerIP string, raffleID uuid.UUID) error
	IsManager(callerIP string) bool
}

// HealthChecker reports whether the backing store is reachable
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Handler holds the dependencies of the HTTP handlers
type Handler struct {
	api    RaffleAPI
	cache  *ListCache
	hub    *LiveHub
	health HealthChecker
}

// NewHandler creates a Handler. cache, hub and health may be nil.
func NewHandler(api RaffleAPI, cache *ListCache, hub *LiveHub, health HealthChecker) *Handler {
	return &Handler{
		api:    api,
		cache:  cache,
		hub:    hub,
		health: health,
	}
}

// RegisterRoutes registers all the application routes
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.GET("/healthz", h.Health)

	raffles := router.Group("/raffles")
	raffles.GET("/", h.ListRaffles)
	raffles.POST("/", h.CreateRaffle)
	raffles.GET("/:id/", h.GetRaffle)
	raffles.DELETE("/:id/", h.DeleteRaffle)
	raffles.POST("/:id/participate/", h.ClaimTicket)
	raffles.GET("/:id/winners/", h.ListWinners)
	raffles.POST("/:id/winners/", h.DrawWinners)
	raffles.POST("/:id/verify-ticket/", h.VerifyTicket)
	raffles.GET("/:id/live", h.Live)
}

type createRaffleBody struct {
	Name         string           `json:"name"`
	TotalTickets int64            `json:"total_tickets"`
	Prizes       []entities.Prize `json:"prizes"`
}

type verifyTicketBody struct {
	TicketNumber     json.RawMessage `json:"ticket_number"`
	VerificationCode string          `json:"verification_code"`
}

type verifyTicketResponse struct {
	Detail string  `json:"detail"`
	HasWon bool    `json:"has_won"`
	Prize  *string `json:"prize"`
}

type winnerResponse struct {
	TicketNumber int64  `json:"ticket_number"`
	Prize        string `json:"prize"`
}

// ListRaffles handles GET /raffles/
func (h *Handler) ListRaffles(c *gin.Context) {
	filter, err := parseRaffleFilter(c)
	if err != nil {
		abortBadRequest(c, err.Error())
		return
	}

	key := c.Request.URL.Query().Encode()
	if page, ok := h.cache.Get(key); ok {
		c.JSON(http.StatusOK, page)
		return
	}
	generation := h.cache.Generation()

	page, err := h.api.ListRaffles(c.Request.Context(), filter)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if page.Results == nil {
		page.Results = []*entities.RaffleDetails{}
	}

	h.cache.Put(key, page, generation)
	c.JSON(http.StatusOK, page)
}

// CreateRaffle handles POST /raffles/
func (h *Handler) CreateRaffle(c *gin.Context) {
	callerIP := c.ClientIP()
	// managers only, checked before the body is parsed
	if !h.api.IsManager(callerIP) {
		abortWithError(c, entities.ErrUnauthorized)
		return
	}

	var body createRaffleBody
	if err := c.ShouldBindJSON(&body); err != nil {
		abortWithError(c, entities.ErrInvalidRaffle.WithMessage("Malformed raffle payload."))
		return
	}

	details, err := h.api.CreateRaffle(c.Request.Context(), callerIP, application.CreateRaffleRequest{
		Name:         body.Name,
		TotalTickets: body.TotalTickets,
		Prizes:       body.Prizes,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, details)
}

// GetRaffle handles GET /raffles/:id/
func (h *Handler) GetRaffle(c *gin.Context) {
	raffleID, ok := raffleIDParam(c)
	if !ok {
		return
	}

	details, err := h.api.GetRaffle(c.Request.Context(), raffleID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, details)
}

// DeleteRaffle handles DELETE /raffles/:id/
func (h *Handler) DeleteRaffle(c *gin.Context) {
	raffleID, ok := raffleIDParam(c)
	if !ok {
		return
	}

	if err := h.api.DeleteRaffle(c.Request.Context(), c.ClientIP(), raffleID); err != nil {
		abortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ClaimTicket handles POST /raffles/:id/participate/
func (h *Handler) ClaimTicket(c *gin.Context) {
	raffleID, ok := raffleIDParam(c)
	if !ok {
		return
	}

	claimed, err := h.api.ClaimTicket(c.Request.Context(), raffleID, c.ClientIP())
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, claimed)
}

// ListWinners handles GET /raffles/:id/winners/
func (h *Handler) ListWinners(c *gin.Context) {
	raffleID, ok := raffleIDParam(c)
	if !ok {
		return
	}

	winners, err := h.api.ListWinners(c.Request.Context(), raffleID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, toWinnerResponses(winners))
}

// DrawWinners handles POST /raffles/:id/winners/
func (h *Handler) DrawWinners(c *gin.Context) {
	raffleID, ok := raffleIDParam(c)
	if !ok {
		return
	}

	winners, err := h.api.DrawWinners(c.Request.Context(), c.ClientIP(), raffleID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toWinnerResponses(winners))
}

// VerifyTicket handles POST /raffles/:id/verify-ticket/
func (h *Handler) VerifyTicket(c *gin.Context) {
	raffleID, ok := raffleIDParam(c)
	if !ok {
		return
	}

	var body verifyTicketBody
	if err := c.ShouldBindJSON(&body); err != nil {
		abortWithError(c, entities.ErrMissingInput)
		return
	}

	ticketNumber, err := parseTicketNumber(body.TicketNumber)
	if err != nil {
		abortWithError(c, err)
		return
	}

	result, err := h.api.VerifyTicket(c.Request.Context(), raffleID, entities.VerificationRequest{
		TicketNumber: ticketNumber,
		RawCode:      body.VerificationCode,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	detail := verifiedLoserMessage
	if result.HasWon {
		detail = verifiedWinnerMessage
	}
	c.JSON(http.StatusOK, verifyTicketResponse{
		Detail: detail,
		HasWon: result.HasWon,
		Prize:  result.Prize,
	})
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Live handles GET /raffles/:id/live, upgrading to a websocket that first
// receives a snapshot of the raffle and then every committed event for it.
// Events committed while the snapshot is read may already be reflected in it.
func (h *Handler) Live(c *gin.Context) {
	if h.hub == nil {
		c.AbortWithStatusJSON(http.StatusNotFound, ErrorResponse{Detail: "Live feed is disabled."})
		return
	}

	raffleID, ok := raffleIDParam(c)
	if !ok {
		return
	}

	client, ok := h.hub.Attach(raffleID)
	if !ok {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, ErrorResponse{Detail: "Live feed is shutting down."})
		return
	}

	details, err := h.api.GetRaffle(c.Request.Context(), raffleID)
	if err != nil {
		h.hub.Detach(client)
		abortWithError(c, err)
		return
	}

	snapshot, err := json.Marshal(LiveMessage{Type: "snapshot", Data: details})
	if err != nil {
		h.hub.Detach(client)
		abortWithError(c, err)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.hub.Detach(client)
		// Upgrade already wrote the failure response
		log.WithFields(log.Fields{
			"raffleID": raffleID,
			"error":    err,
		}).Debug("Websocket upgrade failed")
		return
	}

	client.Start(conn, snapshot)
}

// Health handles GET /healthz
func (h *Handler) Health(c *gin.Context) {
	if h.health != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.health.Ping(ctx); err != nil {
			log.WithError(err).Error("Health check failed")
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// raffleIDParam parses the :id path segment. Malformed ids cannot name a
// raffle, so they answer 404.
func raffleIDParam(c *gin.Context) (uuid.UUID, bool) {
	raffleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abortWithError(c, entities.ErrRaffleNotFound)
		return uuid.Nil, false
	}
	return raffleID, true
}

// parseTicketNumber accepts a JSON number or a numeric string. Absent
// values come back as 0 and are rejected as missing input downstream.
func parseTicketNumber(raw json.RawMessage) (int64, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, nil
	}

	var number int64
	if err := json.Unmarshal(raw, &number); err == nil {
		return number, nil
	}

	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return 0, entities.ErrUnknownTicket
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, nil
	}
	number, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return 0, entities.ErrUnknownTicket
	}
	return number, nil
}

func parseRaffleFilter(c *gin.Context) (entities.RaffleFilter, error) {
	filter := entities.RaffleFilter{
		Name: c.Query("name"),
	}

	if raw := c.Query("total_tickets"); raw != "" {
		// total_tickets is an INTEGER column
		total, err := strconv.ParseInt(raw, 10, 32)
		if err != nil {
			return filter, errInvalidQuery("total_tickets")
		}
		filter.TotalTickets = &total
	}

	if raw := c.Query("created_at"); raw != "" {
		day, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			return filter, errInvalidQuery("created_at")
		}
		filter.CreatedOn = &day
	}

	if raw := c.Query("winners_drawn"); raw != "" {
		drawn := strings.EqualFold(raw, "true")
		filter.WinnersDrawn = &drawn
	}

	var err error
	if filter.Page, err = queryInt(c, "page"); err != nil {
		return filter, err
	}
	if filter.PageSize, err = queryInt(c, "page_size"); err != nil {
		return filter, err
	}

	return filter, nil
}

func queryInt(c *gin.Context, key string) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errInvalidQuery(key)
	}
	return value, nil
}

type errInvalidQuery string

func (e errInvalidQuery) Error() string {
	return "Invalid value for " + string(e) + "."
}

func toWinnerResponses(winners []*entities.Winner) []winnerResponse {
	response := make([]winnerResponse, len(winners))
	for i, winner := range winners {
		response[i] = winnerResponse{TicketNumber: winner.TicketNumber, Prize: winner.Prize}
	}
	return response
}
