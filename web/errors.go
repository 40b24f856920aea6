package web

import (
	"errors"
	"net/http"

	"raffler/domain/entities"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Detail string `json:"detail"`
	Code   string `json:"code,omitempty"`
}

// StatusForCode maps a business error code to its HTTP status
func StatusForCode(code entities.ErrorCode) int {
	switch code {
	case entities.ErrorCodeUnauthorized:
		return http.StatusForbidden
	case entities.ErrorCodeAlreadyClaimed:
		return http.StatusForbidden
	case entities.ErrorCodeExhausted:
		return http.StatusGone
	case entities.ErrorCodeInvalidPrizeSpec:
		return http.StatusBadRequest
	case entities.ErrorCodeTicketsStillAvailable:
		return http.StatusForbidden
	case entities.ErrorCodeAlreadyDrawn:
		return http.StatusForbidden
	case entities.ErrorCodeNotEnoughParticipants:
		return http.StatusBadRequest
	case entities.ErrorCodeWinnersNotDrawn:
		return http.StatusBadRequest
	case entities.ErrorCodeUnknownTicket:
		return http.StatusBadRequest
	case entities.ErrorCodeInvalidCode:
		return http.StatusBadRequest
	case entities.ErrorCodeMissingInput:
		return http.StatusBadRequest
	case entities.ErrorCodeRaffleNotFound:
		return http.StatusNotFound
	case entities.ErrorCodeInvalidRaffle:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// abortWithError writes err as a JSON error body. Anything that is not a
// business error becomes a bare 500 so internals never leak.
func abortWithError(c *gin.Context, err error) {
	var raffleErr *entities.RaffleError
	if errors.As(err, &raffleErr) {
		c.AbortWithStatusJSON(StatusForCode(raffleErr.Code), ErrorResponse{
			Detail: raffleErr.Message,
			Code:   string(raffleErr.Code),
		})
		return
	}

	log.WithFields(log.Fields{
		"method": c.Request.Method,
		"path":   c.FullPath(),
		"error":  err,
	}).Error("Request failed")
	_ = c.Error(err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
		Detail: "Internal server error.",
	})
}

func abortBadRequest(c *gin.Context, detail string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Detail: detail})
}
