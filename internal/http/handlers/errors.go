package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"busbooking/internal/domain"
	"busbooking/internal/http/middleware"
	"busbooking/internal/utils"

	"github.com/gin-gonic/gin"
)

// ErrorResponse standardizes error payloads.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	Details   any    `json:"details,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func respondError(c *gin.Context, status int, code, message string, details any) {
	if code == "" {
		code = http.StatusText(status)
	}
	c.AbortWithStatusJSON(status, ErrorResponse{
		Error:     message,
		Code:      code,
		Details:   details,
		RequestID: middleware.GetRequestID(c),
	})
}

// RespondDomainError maps domain errors to HTTP responses.
func RespondDomainError(c *gin.Context, err error) {
	var (
		fields domain.ValidationErrors
		field  domain.ValidationError
	)
	switch {
	case errors.As(err, &fields):
		respondError(c, http.StatusBadRequest, "validation_error", err.Error(), fields.Fields())
	case errors.As(err, &field):
		var details any
		if field.Field != "" {
			details = map[string]string{field.Field: field.Msg}
		}
		respondError(c, http.StatusBadRequest, "validation_error", err.Error(), details)
	case domain.IsSeatUnavailable(err):
		var seat domain.SeatUnavailableError
		errors.As(err, &seat)
		respondError(c, http.StatusConflict, "seat_unavailable", err.Error(), gin.H{"seat_id": seat.SeatID, "status": seat.Status})
	case domain.IsSelectionLimit(err):
		var limit domain.SelectionLimitError
		errors.As(err, &limit)
		respondError(c, http.StatusConflict, "selection_limit", err.Error(), gin.H{"limit": limit.Limit})
	case domain.IsBookingClosed(err):
		var closed domain.BookingClosedError
		errors.As(err, &closed)
		respondError(c, http.StatusConflict, "booking_closed", err.Error(), gin.H{"reason": closed.Reason})
	case domain.IsNotFound(err):
		respondError(c, http.StatusNotFound, "not_found", err.Error(), nil)
	case domain.IsConflict(err):
		respondError(c, http.StatusConflict, "conflict", err.Error(), nil)
	case domain.IsInternal(err):
		// InternalError messages are fixed strings; the cause stays in the log.
		utils.LogEvent(middleware.GetRequestID(c), "http", "internal_error", fmt.Sprintf("%s: %v", err, errors.Unwrap(err)))
		respondError(c, http.StatusInternalServerError, "internal_error", err.Error(), nil)
	default:
		utils.LogEvent(middleware.GetRequestID(c), "http", "internal_error", err.Error())
		respondError(c, http.StatusInternalServerError, "internal_error", "something went wrong", nil)
	}
}
