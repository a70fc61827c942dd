// Package domain defines the payment completion models.
//
// A PaymentSession row is the idempotency claim for one provider checkout
// session: exactly one completion attempt may hold it at a time, and once
// finalized it permanently records which attendee rows the payment produced so
// retries replay the original outcome instead of double-booking.
package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// SessionStatus is the lifecycle state of a payment session claim.
type SessionStatus string

// Session status values.
const (
	// StatusReserved marks a claim held by an in-flight completion attempt.
	StatusReserved SessionStatus = "reserved"
	// StatusFinalized marks a completed payment whose attendee rows exist.
	StatusFinalized SessionStatus = "finalized"
)

// PaymentSession is the processed-session ledger row for one provider
// checkout session.
type PaymentSession struct {
	ID uuid.UUID
	// SessionID is the provider's checkout session identifier. Unique: the
	// store rejects a second claim for the same session.
	SessionID string
	EventID   uuid.UUID
	Status    SessionStatus
	// AttendeeIDs are the ledger rows this payment admitted. Empty while the
	// claim is reserved, set atomically on finalization.
	AttendeeIDs []uuid.UUID
	CreatedAt   time.Time
	FinalizedAt *time.Time
}

// EncodeAttendeeIDs joins attendee ids into the stored text representation.
func EncodeAttendeeIDs(ids []uuid.UUID) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, id.String())
	}
	return strings.Join(parts, ",")
}

// DecodeAttendeeIDs parses the stored text representation back into ids.
func DecodeAttendeeIDs(encoded string) ([]uuid.UUID, error) {
	if encoded == "" {
		return nil, nil
	}
	parts := strings.Split(encoded, ",")
	ids := make([]uuid.UUID, 0, len(parts))
	for _, part := range parts {
		id, err := uuid.Parse(part)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
