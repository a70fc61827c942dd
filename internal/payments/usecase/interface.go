// Package usecase implements the payment completion coordinator: checkout
// creation, exactly-once completion against the admission controller, webhook
// handling and stale-claim reclamation.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	attendeesDomain "github.com/allisson/ticketbox/internal/attendees/domain"
	attendeesUsecase "github.com/allisson/ticketbox/internal/attendees/usecase"
	eventsDomain "github.com/allisson/ticketbox/internal/events/domain"
	paymentsDomain "github.com/allisson/ticketbox/internal/payments/domain"
)

// PaymentSessionRepository defines persistence for the processed-session ledger.
type PaymentSessionRepository interface {
	// Claim inserts the reserved row, or ErrSessionAlreadyClaimed.
	Claim(ctx context.Context, session *paymentsDomain.PaymentSession) error
	GetBySessionID(ctx context.Context, sessionID string) (*paymentsDomain.PaymentSession, error)
	Finalize(ctx context.Context, sessionID string, attendeeIDs string, finalizedAt time.Time) error
	Release(ctx context.Context, sessionID string) error
	DeleteStaleReserved(ctx context.Context, cutoff time.Time) (int64, error)
}

// Admission is the slice of the admission controller the coordinator drives.
type Admission interface {
	Reserve(ctx context.Context, input attendeesUsecase.ReservationInput) (*attendeesUsecase.ReservationResult, error)
	SetRefunded(ctx context.Context, id uuid.UUID) error
	FindByPaymentRef(ctx context.Context, paymentRef string) ([]*attendeesDomain.Attendee, error)
}

// EventReader is the slice of the event repository the coordinator needs.
type EventReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*eventsDomain.Event, error)
}

// CheckoutItem is one admission line inside a purchase.
type CheckoutItem struct {
	EventDate *time.Time
	Quantity  int
}

// CheckoutInput starts a purchase for one event.
type CheckoutInput struct {
	EventID    uuid.UUID
	Items      []CheckoutItem
	Contact    attendeesDomain.ContactDetails
	SuccessURL string
	CancelURL  string
}

// CheckoutResult is either a provider redirect (paid events) or an immediate
// admission (free events).
type CheckoutResult struct {
	// SessionID and CheckoutURL are set for paid events.
	SessionID   string
	CheckoutURL string
	// Free marks an event without a price: the reservation completed here and
	// the tokens below are final.
	Free         bool
	AttendeeIDs  []uuid.UUID
	TicketTokens []string
}

// CompletionInput finishes a paid purchase after the provider redirect.
type CompletionInput struct {
	SessionID string
	EventID   uuid.UUID
	Items     []CheckoutItem
	Contact   attendeesDomain.ContactDetails
}

// CompletionResult is the outcome of a completion attempt. A replayed result
// carries the originally admitted attendee ids but no ticket tokens: tokens
// are handed out exactly once, on the first completion.
type CompletionResult struct {
	AttendeeIDs  []uuid.UUID
	TicketTokens []string
	Replayed     bool
}

// PaymentUseCase defines the coordinator's operations.
type PaymentUseCase interface {
	// StartCheckout opens a provider checkout session, or admits immediately
	// for free events.
	StartCheckout(ctx context.Context, input CheckoutInput) (*CheckoutResult, error)

	// Complete verifies the payment and admits the attendees exactly once.
	// ErrUnavailable means the outcome is unknown and the call is retryable;
	// every other error is definitive.
	Complete(ctx context.Context, input CompletionInput) (*CompletionResult, error)

	// HandleNotification processes an authenticated provider webhook.
	HandleNotification(ctx context.Context, payload []byte, signature string) error

	// ReclaimStale deletes reserved claims older than the claim TTL and
	// returns how many were removed.
	ReclaimStale(ctx context.Context) (int64, error)
}
