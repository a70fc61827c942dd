package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	attendeesDomain "github.com/allisson/ticketbox/internal/attendees/domain"
	"github.com/allisson/ticketbox/internal/metrics"
)

// admissionUseCaseWithMetrics decorates AdmissionUseCase with metrics instrumentation.
type admissionUseCaseWithMetrics struct {
	next    AdmissionUseCase
	metrics metrics.BusinessMetrics
}

// NewAdmissionUseCaseWithMetrics wraps an AdmissionUseCase with metrics recording.
func NewAdmissionUseCaseWithMetrics(useCase AdmissionUseCase, m metrics.BusinessMetrics) AdmissionUseCase {
	return &admissionUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// record emits the counter and duration for one operation.
func (a *admissionUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	a.metrics.RecordOperation(ctx, "admission", operation, status)
	a.metrics.RecordDuration(ctx, "admission", operation, time.Since(start), status)
}

// Reserve records metrics for admission attempts, full events included.
func (a *admissionUseCaseWithMetrics) Reserve(
	ctx context.Context,
	input ReservationInput,
) (*ReservationResult, error) {
	start := time.Now()
	result, err := a.next.Reserve(ctx, input)
	a.record(ctx, "reserve", start, err)
	return result, err
}

// FindByTicketToken records metrics for ticket token lookups.
func (a *admissionUseCaseWithMetrics) FindByTicketToken(
	ctx context.Context,
	token string,
) (*attendeesDomain.Attendee, error) {
	start := time.Now()
	attendee, err := a.next.FindByTicketToken(ctx, token)
	a.record(ctx, "find_by_ticket_token", start, err)
	return attendee, err
}

// FindByPaymentRef records metrics for payment reference lookups.
func (a *admissionUseCaseWithMetrics) FindByPaymentRef(
	ctx context.Context,
	paymentRef string,
) ([]*attendeesDomain.Attendee, error) {
	start := time.Now()
	attendees, err := a.next.FindByPaymentRef(ctx, paymentRef)
	a.record(ctx, "find_by_payment_ref", start, err)
	return attendees, err
}

// ListByEvent records metrics for attendee listing.
func (a *admissionUseCaseWithMetrics) ListByEvent(
	ctx context.Context,
	eventID uuid.UUID,
	limit, offset int,
) ([]*attendeesDomain.Attendee, error) {
	start := time.Now()
	attendees, err := a.next.ListByEvent(ctx, eventID, limit, offset)
	a.record(ctx, "list_by_event", start, err)
	return attendees, err
}

// Decrypt records metrics for attendee decryption.
func (a *admissionUseCaseWithMetrics) Decrypt(
	ctx context.Context,
	attendee *attendeesDomain.Attendee,
	dataKey []byte,
) (*attendeesDomain.AttendeeDetails, error) {
	start := time.Now()
	details, err := a.next.Decrypt(ctx, attendee, dataKey)
	a.record(ctx, "decrypt", start, err)
	return details, err
}

// SetFlags records metrics for status flag updates.
func (a *admissionUseCaseWithMetrics) SetFlags(
	ctx context.Context,
	id uuid.UUID,
	checkedIn, refunded bool,
) error {
	start := time.Now()
	err := a.next.SetFlags(ctx, id, checkedIn, refunded)
	a.record(ctx, "set_flags", start, err)
	return err
}

// SetRefunded records metrics for refund flag updates.
func (a *admissionUseCaseWithMetrics) SetRefunded(ctx context.Context, id uuid.UUID) error {
	start := time.Now()
	err := a.next.SetRefunded(ctx, id)
	a.record(ctx, "set_refunded", start, err)
	return err
}
