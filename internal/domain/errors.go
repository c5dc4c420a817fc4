package domain

import (
	"errors"
	"fmt"
)

type NotFoundError struct {
	Resource string
	Err      error
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e NotFoundError) Unwrap() error { return e.Err }

type ValidationError struct {
	Field string
	Msg   string
	Err   error
}

func (e ValidationError) Error() string {
	if e.Msg != "" && e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	}
	if e.Msg != "" {
		return e.Msg
	}
	if e.Field != "" {
		return fmt.Sprintf("invalid %s", e.Field)
	}
	return "validation error"
}

func (e ValidationError) Unwrap() error { return e.Err }

type ConflictError struct {
	Resource string
	Msg      string
	Err      error
}

func (e ConflictError) Error() string {
	switch {
	case e.Msg != "" && e.Resource != "":
		return fmt.Sprintf("%s conflict: %s", e.Resource, e.Msg)
	case e.Msg != "":
		return e.Msg
	case e.Resource != "":
		return fmt.Sprintf("%s conflict", e.Resource)
	default:
		return "conflict"
	}
}

func (e ConflictError) Unwrap() error { return e.Err }

type InternalError struct {
	Msg string
	Err error
}

func (e InternalError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "internal error"
}

func (e InternalError) Unwrap() error { return e.Err }

// ValidationErrors collects per-field failures so a form can be reported in one response.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	switch len(e) {
	case 0:
		return "validation error"
	case 1:
		return e[0].Error()
	default:
		return fmt.Sprintf("%s (and %d more)", e[0].Error(), len(e)-1)
	}
}

// Fields maps field name to message, first message wins.
func (e ValidationErrors) Fields() map[string]string {
	out := make(map[string]string, len(e))
	for _, v := range e {
		if _, ok := out[v.Field]; ok {
			continue
		}
		out[v.Field] = v.Msg
	}
	return out
}

// SeatUnavailableError is returned when a sold or reserved seat is clicked.
type SeatUnavailableError struct {
	SeatID string
	Status string
}

func (e SeatUnavailableError) Error() string {
	if e.Status == "" {
		return fmt.Sprintf("seat %s is not available", e.SeatID)
	}
	return fmt.Sprintf("seat %s is already %s", e.SeatID, e.Status)
}

type SelectionLimitError struct {
	Limit int
}

func (e SelectionLimitError) Error() string {
	return fmt.Sprintf("you can select up to %d seats", e.Limit)
}

// BookingClosedError carries why the booking window is shut.
type BookingClosedError struct {
	Reason string
}

func (e BookingClosedError) Error() string {
	if e.Reason == "" {
		return "booking is closed"
	}
	return "booking is closed: " + e.Reason
}

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target ValidationError
	if errors.As(err, &target) {
		return true
	}
	var list ValidationErrors
	return errors.As(err, &list)
}

func IsConflict(err error) bool {
	var target ConflictError
	return errors.As(err, &target)
}

func IsInternal(err error) bool {
	var target InternalError
	return errors.As(err, &target)
}

func IsSeatUnavailable(err error) bool {
	var target SeatUnavailableError
	return errors.As(err, &target)
}

func IsSelectionLimit(err error) bool {
	var target SelectionLimitError
	return errors.As(err, &target)
}

func IsBookingClosed(err error) bool {
	var target BookingClosedError
	return errors.As(err, &target)
}
