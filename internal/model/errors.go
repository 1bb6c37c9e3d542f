// Package model defines the persistent domain types and the typed failures
// the booking service reports. The sentinel errors below are returned by the
// service and repository layers and compared with errors.Is by the handlers,
// which translate them into HTTP responses. InvariantViolation is different
// in kind from the rest: it signals corrupted seat accounting, is logged at
// the highest severity where it is detected, and maps to a server-side fault
// rather than a client error.
package model

import "errors"

// ErrEventNotFound is returned when the requested event does not exist.
var ErrEventNotFound = errors.New("event not found")

// ErrBookingNotFound is returned when the requested booking does not exist.
var ErrBookingNotFound = errors.New("booking not found")

// ErrNotBookable is returned when the event is inactive or has already started.
var ErrNotBookable = errors.New("event is not bookable")

// ErrInsufficientSeats is returned when fewer seats remain than requested.
var ErrInsufficientSeats = errors.New("insufficient seats available")

// ErrDuplicateBooking is returned when the user already holds an active
// booking for the event.
var ErrDuplicateBooking = errors.New("user already has an active booking for this event")

// ErrForbidden is returned when the actor is neither the booking's owner nor
// an admin.
var ErrForbidden = errors.New("forbidden")

// ErrNotCancellable is returned when the booking is not in CONFIRMED status.
var ErrNotCancellable = errors.New("booking is not cancellable")

// ErrEventAlreadyStarted is returned when cancellation is attempted at or
// after the event's start time.
var ErrEventAlreadyStarted = errors.New("event has already started")

// ErrBusy is returned when the datastore could not grant the row lock in
// time (lock wait timeout or deadlock victim). The operation left no partial
// state and is safe to retry.
var ErrBusy = errors.New("resource busy, retry")

// ErrInvariantViolation is returned when restoring seats would push
// available_seats past total_seats. It indicates prior corruption of the
// seat accounting, never a user error.
var ErrInvariantViolation = errors.New("seat inventory invariant violation")

// ErrInvalidSeatCount is returned when the requested seat count is outside
// the allowed 1–10 range.
var ErrInvalidSeatCount = errors.New("seat count must be between 1 and 10")
