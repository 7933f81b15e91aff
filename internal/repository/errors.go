package repository

import "errors"

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// ErrInsufficientSeats is returned when a booking requests more tickets
// than the event has available.
var ErrInsufficientSeats = errors.New("not enough seats available")
