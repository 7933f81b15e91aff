package service

import (
	"errors"
	"fmt"
)

// ErrNotEventPromoter is returned when the caller is not one of the event's
// assigned promoters.
var ErrNotEventPromoter = errors.New("not authorized to manage this event")

// ErrNotEventOrganizer is returned when the caller does not own the event.
var ErrNotEventOrganizer = errors.New("not the organizer of this event")

// ValidationError marks malformed input. Handlers surface it as a 400 with
// the message intact.
type ValidationError struct {
	msg string
}

func (e ValidationError) Error() string { return e.msg }

func validationf(format string, args ...any) error {
	return ValidationError{msg: fmt.Sprintf(format, args...)}
}
