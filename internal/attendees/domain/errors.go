package domain

import (
	"github.com/allisson/ticketbox/internal/errors"
)

// Attendee error definitions.
var (
	// ErrAttendeeNotFound indicates no attendee matches the lookup.
	ErrAttendeeNotFound = errors.Wrap(errors.ErrNotFound, "attendee not found")

	// ErrCapacityExceeded indicates the conditional insert was rejected by the
	// capacity guard. An expected business outcome, not an anomaly: the event
	// is full for the requested scope.
	ErrCapacityExceeded = errors.Wrap(errors.ErrConflict, "capacity exceeded")

	// ErrInvalidQuantity indicates a non-positive quantity, rejected before the
	// store is touched.
	ErrInvalidQuantity = errors.Wrap(errors.ErrInvalidInput, "quantity must be positive")

	// ErrEventDateRequired indicates a per-date scoped event was booked without
	// a date.
	ErrEventDateRequired = errors.Wrap(errors.ErrInvalidInput, "event date required for per-date capacity")
)
