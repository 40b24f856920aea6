package entities

import "errors"

// ErrorCode identifies a business failure. The set is closed: every code
// below is handled by the HTTP boundary.
type ErrorCode string

const (
	ErrorCodeUnauthorized          ErrorCode = "unauthorized"
	ErrorCodeAlreadyClaimed        ErrorCode = "already_claimed"
	ErrorCodeExhausted             ErrorCode = "exhausted"
	ErrorCodeInvalidPrizeSpec      ErrorCode = "invalid_prize_spec"
	ErrorCodeTicketsStillAvailable ErrorCode = "tickets_still_available"
	ErrorCodeAlreadyDrawn          ErrorCode = "already_drawn"
	ErrorCodeNotEnoughParticipants ErrorCode = "not_enough_participants"
	ErrorCodeWinnersNotDrawn       ErrorCode = "winners_not_drawn"
	ErrorCodeUnknownTicket         ErrorCode = "unknown_ticket"
	ErrorCodeInvalidCode           ErrorCode = "invalid_code"
	ErrorCodeMissingInput          ErrorCode = "missing_input"
	ErrorCodeRaffleNotFound        ErrorCode = "raffle_not_found"
	ErrorCodeInvalidRaffle         ErrorCode = "invalid_raffle"
)

// AllErrorCodes lists every ErrorCode in declaration order
func AllErrorCodes() []ErrorCode {
	return []ErrorCode{
		ErrorCodeUnauthorized,
		ErrorCodeAlreadyClaimed,
		ErrorCodeExhausted,
		ErrorCodeInvalidPrizeSpec,
		ErrorCodeTicketsStillAvailable,
		ErrorCodeAlreadyDrawn,
		ErrorCodeNotEnoughParticipants,
		ErrorCodeWinnersNotDrawn,
		ErrorCodeUnknownTicket,
		ErrorCodeInvalidCode,
		ErrorCodeMissingInput,
		ErrorCodeRaffleNotFound,
		ErrorCodeInvalidRaffle,
	}
}

// RaffleError is a business failure carrying a stable code and a
// human-readable message. Two RaffleErrors match under errors.Is when their
// codes are equal, so callers can compare against the sentinels below even
// when the message was customized.
type RaffleError struct {
	Code    ErrorCode
	Message string
}

func (e *RaffleError) Error() string {
	return e.Message
}

// Is reports whether target is a RaffleError with the same code
func (e *RaffleError) Is(target error) bool {
	t, ok := target.(*RaffleError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithMessage returns a copy of the error with a different message
func (e *RaffleError) WithMessage(message string) *RaffleError {
	return &RaffleError{Code: e.Code, Message: message}
}

var (
	ErrUnauthorized          = &RaffleError{Code: ErrorCodeUnauthorized, Message: "You do not have permission to perform this action."}
	ErrAlreadyClaimed        = &RaffleError{Code: ErrorCodeAlreadyClaimed, Message: "You have already participated in this raffle."}
	ErrExhausted             = &RaffleError{Code: ErrorCodeExhausted, Message: "Tickets to this raffle are no longer available."}
	ErrInvalidPrizeSpec      = &RaffleError{Code: ErrorCodeInvalidPrizeSpec, Message: "Invalid prize specification."}
	ErrTicketsStillAvailable = &RaffleError{Code: ErrorCodeTicketsStillAvailable, Message: "Winners can't be drawn when tickets are still available."}
	ErrAlreadyDrawn          = &RaffleError{Code: ErrorCodeAlreadyDrawn, Message: "Winners for the raffle have already been drawn."}
	ErrNotEnoughParticipants = &RaffleError{Code: ErrorCodeNotEnoughParticipants, Message: "Not enough participants to draw winners."}
	ErrWinnersNotDrawn       = &RaffleError{Code: ErrorCodeWinnersNotDrawn, Message: "Winners for the raffle have not been drawn yet."}
	ErrUnknownTicket         = &RaffleError{Code: ErrorCodeUnknownTicket, Message: "Ticket number is invalid."}
	ErrInvalidCode           = &RaffleError{Code: ErrorCodeInvalidCode, Message: "Invalid verification code."}
	ErrMissingInput          = &RaffleError{Code: ErrorCodeMissingInput, Message: "Ticket number and verification code are required."}
	ErrRaffleNotFound        = &RaffleError{Code: ErrorCodeRaffleNotFound, Message: "Raffle not found."}
	ErrInvalidRaffle         = &RaffleError{Code: ErrorCodeInvalidRaffle, Message: "Invalid raffle."}
)

// ErrorCodeOf extracts the ErrorCode from err if it wraps a RaffleError
func ErrorCodeOf(err error) (ErrorCode, bool) {
	var raffleErr *RaffleError
	if errors.As(err, &raffleErr) {
		return raffleErr.Code, true
	}
	return "", false
}
