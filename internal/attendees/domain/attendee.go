// Package domain defines the attendee ledger models.
//
// PII columns are stored as ciphertext produced by the field codec; the only
// plaintext columns besides foreign keys and quantity are the blind indexes,
// which allow equality lookups (ticket token, payment reference) without
// decrypting a single row.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Attendee is one committed reservation against an event's capacity.
type Attendee struct {
	ID      uuid.UUID
	EventID uuid.UUID
	// EventDate is the calendar date the reservation is for. Required when the
	// event uses per-date capacity scope, nil otherwise.
	EventDate *time.Time
	// Quantity is the number of seats this row consumes from the capacity.
	Quantity int

	// Ciphertext PII columns. Name and Email are always present; the rest are
	// nil when the booker left them blank (SQL NULL, never an encrypted
	// sentinel).
	EncryptedName       []byte
	EncryptedEmail      []byte
	EncryptedPhone      []byte
	EncryptedAddress    []byte
	EncryptedPaymentRef []byte
	EncryptedCheckedIn  []byte
	EncryptedRefunded   []byte

	// TicketTokenIndex is the blind index of the per-attendee opaque ticket
	// token. The token itself is returned once at reservation time and never
	// stored.
	TicketTokenIndex string
	// PaymentRefIndex is the blind index of the payment reference; nil for
	// free reservations.
	PaymentRefIndex *string

	CreatedAt time.Time
}

// ContactDetails is the plaintext booking input before encryption.
type ContactDetails struct {
	Name    string
	Email   string
	Phone   *string
	Address *string
}

// AttendeeDetails is a decrypted view of an attendee, available only inside
// an authenticated admin session holding the unwrapped data key.
type AttendeeDetails struct {
	ID         uuid.UUID
	EventID    uuid.UUID
	EventDate  *time.Time
	Quantity   int
	Name       string
	Email      string
	Phone      *string
	Address    *string
	PaymentRef *string
	CheckedIn  bool
	Refunded   bool
	CreatedAt  time.Time
}
