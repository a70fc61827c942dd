package domain

import (
	"github.com/allisson/ticketbox/internal/errors"
)

// Event error definitions.
var (
	// ErrEventNotFound indicates the event does not exist.
	ErrEventNotFound = errors.Wrap(errors.ErrNotFound, "event not found")

	// ErrRegistrationClosed indicates the event is inactive or its registration
	// window has passed. An expected outcome for late bookings, and terminal
	// for a payment session referencing the event.
	ErrRegistrationClosed = errors.Wrap(errors.ErrConflict, "registration closed")

	// ErrHasAttendees indicates the event cannot be hard-deleted because
	// attendee rows still reference it; deactivate instead.
	ErrHasAttendees = errors.Wrap(errors.ErrConflict, "event has attendees")
)
