// Package usecase implements the admission controller: capacity-bounded
// reservations, blind-index lookups, and admin-session decryption of the
// attendee ledger.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	attendeesDomain "github.com/allisson/ticketbox/internal/attendees/domain"
	eventsDomain "github.com/allisson/ticketbox/internal/events/domain"
	keyringDomain "github.com/allisson/ticketbox/internal/keyring/domain"
)

// AttendeeRepository defines the persistence contract for the attendee ledger.
type AttendeeRepository interface {
	// ReserveInsert inserts the attendee only if capacity allows. Requires a
	// transaction in the context: it locks the event row to serialize
	// concurrent admissions before checking the guard. Returns
	// ErrCapacityExceeded when the guard rejects the write.
	ReserveInsert(ctx context.Context, attendee *attendeesDomain.Attendee, scope eventsDomain.CapacityScope) error
	GetByID(ctx context.Context, id uuid.UUID) (*attendeesDomain.Attendee, error)
	ListByEvent(ctx context.Context, eventID uuid.UUID, limit, offset int) ([]*attendeesDomain.Attendee, error)
	FindByTicketTokenIndex(ctx context.Context, index string) (*attendeesDomain.Attendee, error)
	FindByPaymentRefIndex(ctx context.Context, index string) ([]*attendeesDomain.Attendee, error)
	UpdateFlags(ctx context.Context, id uuid.UUID, encryptedCheckedIn, encryptedRefunded []byte) error
	UpdateRefunded(ctx context.Context, id uuid.UUID, encryptedRefunded []byte) error
}

// EventReader is the slice of the event repository the admission controller
// needs.
type EventReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*eventsDomain.Event, error)
}

// KeyProvider exposes the key material needed for field encryption and, inside
// admin sessions, decryption.
type KeyProvider interface {
	Material(ctx context.Context) (*keyringDomain.KeyMaterial, error)
	DecryptPrivateKey(material *keyringDomain.KeyMaterial, dataKey []byte) ([]byte, error)
}

// ReservationInput carries one admission request.
type ReservationInput struct {
	EventID   uuid.UUID
	EventDate *time.Time
	Quantity  int
	Contact   attendeesDomain.ContactDetails
	// PaymentRef links the row to a payment session; nil for free reservations.
	PaymentRef *string
}

// ReservationResult is the outcome of a successful admission. TicketToken is
// the plaintext token handed to the booker exactly once; only its blind index
// is persisted.
type ReservationResult struct {
	Attendee    *attendeesDomain.Attendee
	TicketToken string
}

// AdmissionUseCase defines the operations of the admission controller.
type AdmissionUseCase interface {
	// Reserve admits an attendee if the event is open and capacity allows.
	Reserve(ctx context.Context, input ReservationInput) (*ReservationResult, error)

	// FindByTicketToken resolves a plaintext ticket token to its attendee row
	// via the blind index. No decryption happens.
	FindByTicketToken(ctx context.Context, token string) (*attendeesDomain.Attendee, error)

	// FindByPaymentRef resolves a payment reference to its attendee rows.
	FindByPaymentRef(ctx context.Context, paymentRef string) ([]*attendeesDomain.Attendee, error)

	// ListByEvent returns a page of (still encrypted) attendees for an event.
	ListByEvent(ctx context.Context, eventID uuid.UUID, limit, offset int) ([]*attendeesDomain.Attendee, error)

	// Decrypt opens an attendee's ciphertext columns with the session data key.
	Decrypt(ctx context.Context, attendee *attendeesDomain.Attendee, dataKey []byte) (*attendeesDomain.AttendeeDetails, error)

	// SetFlags re-encrypts the checked-in and refunded flags with new values.
	// Only the public key is needed, so the caller supplies both flags rather
	// than flipping one in place.
	SetFlags(ctx context.Context, id uuid.UUID, checkedIn, refunded bool) error

	// SetRefunded re-encrypts only the refunded flag as true, leaving the
	// checked-in ciphertext untouched. Safe to call without an admin session.
	SetRefunded(ctx context.Context, id uuid.UUID) error
}
