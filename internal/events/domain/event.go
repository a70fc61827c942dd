// Package domain defines the event models for the attendee ledger.
// Events own the capacity limit that the admission path enforces; they are
// soft-closed (deactivated) rather than deleted while attendees reference them.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// CapacityScope selects which subtotal the admission guard compares against
// the capacity limit. It is an explicit field, never inferred from other
// event attributes, so the two semantics cannot be silently mixed.
type CapacityScope string

const (
	// ScopeEvent bounds the sum of quantities across the whole event.
	ScopeEvent CapacityScope = "event"

	// ScopePerDate bounds the sum per calendar date, letting recurring events
	// reuse the same capacity on different dates.
	ScopePerDate CapacityScope = "per_date"
)

// Event represents a bookable event with a hard attendee capacity.
type Event struct {
	ID   uuid.UUID
	Name string
	// MaxAttendees is the capacity limit enforced atomically by the admission
	// controller. After every committed write, the sum of attendee quantities
	// within the capacity scope never exceeds it.
	MaxAttendees int
	// PriceCents is the unit price; nil means the event is free and checkout
	// bypasses the payment provider.
	PriceCents *int64
	// Currency is the ISO 4217 code for PriceCents (empty for free events).
	Currency string
	// ClosesAt is the end of the registration window; nil means no deadline.
	ClosesAt *time.Time
	// CapacityScope selects whole-event or per-date capacity accounting.
	CapacityScope CapacityScope
	// Active is cleared to soft-close the event. Inactive events reject
	// reservations but keep their attendee rows.
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsFree reports whether the event requires no payment.
func (e *Event) IsFree() bool {
	return e.PriceCents == nil
}

// AcceptsRegistrations reports whether a reservation may be admitted at the
// given instant. Capacity is not checked here; that happens in the store.
func (e *Event) AcceptsRegistrations(now time.Time) bool {
	if !e.Active {
		return false
	}
	if e.ClosesAt != nil && now.After(*e.ClosesAt) {
		return false
	}
	return true
}
