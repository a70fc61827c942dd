package usecase

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	attendeesDomain "github.com/allisson/ticketbox/internal/attendees/domain"
	attendeesUsecase "github.com/allisson/ticketbox/internal/attendees/usecase"
	apperrors "github.com/allisson/ticketbox/internal/errors"
	eventsDomain "github.com/allisson/ticketbox/internal/events/domain"
	paymentsDomain "github.com/allisson/ticketbox/internal/payments/domain"
	"github.com/allisson/ticketbox/internal/payments/service"
)

// fakeTxManager runs the function directly and counts transactions.
type fakeTxManager struct {
	calls int
}

func (f *fakeTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	return fn(ctx)
}

// fakeSessionRepository is an in-memory processed-session ledger.
type fakeSessionRepository struct {
	mu          sync.Mutex
	sessions    map[string]*paymentsDomain.PaymentSession
	finalizeErr error
}

func newFakeSessionRepository() *fakeSessionRepository {
	return &fakeSessionRepository{sessions: make(map[string]*paymentsDomain.PaymentSession)}
}

func (f *fakeSessionRepository) Claim(_ context.Context, session *paymentsDomain.PaymentSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.sessions[session.SessionID]; ok {
		return paymentsDomain.ErrSessionAlreadyClaimed
	}
	copied := *session
	f.sessions[session.SessionID] = &copied
	return nil
}

func (f *fakeSessionRepository) GetBySessionID(
	_ context.Context,
	sessionID string,
) (*paymentsDomain.PaymentSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	session, ok := f.sessions[sessionID]
	if !ok {
		return nil, paymentsDomain.ErrSessionNotFound
	}
	copied := *session
	return &copied, nil
}

func (f *fakeSessionRepository) Finalize(
	_ context.Context,
	sessionID string,
	attendeeIDs string,
	finalizedAt time.Time,
) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.finalizeErr != nil {
		return f.finalizeErr
	}
	session, ok := f.sessions[sessionID]
	if !ok || session.Status != paymentsDomain.StatusReserved {
		return paymentsDomain.ErrSessionNotFound
	}
	ids, err := paymentsDomain.DecodeAttendeeIDs(attendeeIDs)
	if err != nil {
		return err
	}
	session.Status = paymentsDomain.StatusFinalized
	session.AttendeeIDs = ids
	session.FinalizedAt = &finalizedAt
	return nil
}

func (f *fakeSessionRepository) Release(_ context.Context, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if session, ok := f.sessions[sessionID]; ok && session.Status == paymentsDomain.StatusReserved {
		delete(f.sessions, sessionID)
	}
	return nil
}

func (f *fakeSessionRepository) DeleteStaleReserved(
	_ context.Context,
	cutoff time.Time,
) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var removed int64
	for id, session := range f.sessions {
		if session.Status == paymentsDomain.StatusReserved && session.CreatedAt.Before(cutoff) {
			delete(f.sessions, id)
			removed++
		}
	}
	return removed, nil
}

// fakeAdmission simulates the admission controller.
type fakeAdmission struct {
	failAfter    int // fail on the (failAfter+1)-th Reserve; -1 never fails
	reserveErr   error
	reserves     []attendeesUsecase.ReservationInput
	refunded     []uuid.UUID
	byPaymentRef map[string][]*attendeesDomain.Attendee
}

func newFakeAdmission() *fakeAdmission {
	return &fakeAdmission{failAfter: -1, byPaymentRef: make(map[string][]*attendeesDomain.Attendee)}
}

func (f *fakeAdmission) Reserve(
	_ context.Context,
	input attendeesUsecase.ReservationInput,
) (*attendeesUsecase.ReservationResult, error) {
	if f.failAfter >= 0 && len(f.reserves) >= f.failAfter {
		if f.reserveErr != nil {
			return nil, f.reserveErr
		}
		return nil, attendeesDomain.ErrCapacityExceeded
	}
	f.reserves = append(f.reserves, input)
	attendee := &attendeesDomain.Attendee{ID: uuid.Must(uuid.NewV7()), EventID: input.EventID}
	return &attendeesUsecase.ReservationResult{
		Attendee:    attendee,
		TicketToken: fmt.Sprintf("ticket-%d", len(f.reserves)),
	}, nil
}

func (f *fakeAdmission) SetRefunded(_ context.Context, id uuid.UUID) error {
	f.refunded = append(f.refunded, id)
	return nil
}

func (f *fakeAdmission) FindByPaymentRef(
	_ context.Context,
	paymentRef string,
) ([]*attendeesDomain.Attendee, error) {
	return f.byPaymentRef[paymentRef], nil
}

// fakeEventReader serves one event.
type fakeEventReader struct {
	event *eventsDomain.Event
}

func (f *fakeEventReader) GetByID(_ context.Context, _ uuid.UUID) (*eventsDomain.Event, error) {
	return f.event, nil
}

// fakeProvider is a scripted PaymentProvider.
type fakeProvider struct {
	checkout     *service.CheckoutSession
	checkoutErr  error
	verification *service.PaymentVerification
	verifyErr    error
	refundErr    error
	refunds      []string
}

func (f *fakeProvider) CreateCheckout(
	_ context.Context,
	_ service.CheckoutRequest,
) (*service.CheckoutSession, error) {
	if f.checkoutErr != nil {
		return nil, f.checkoutErr
	}
	return f.checkout, nil
}

func (f *fakeProvider) VerifyPayment(
	_ context.Context,
	_ string,
) (*service.PaymentVerification, error) {
	if f.verifyErr != nil {
		return nil, f.verifyErr
	}
	return f.verification, nil
}

func (f *fakeProvider) Refund(_ context.Context, sessionID string) error {
	if f.refundErr != nil {
		return f.refundErr
	}
	f.refunds = append(f.refunds, sessionID)
	return nil
}

// fakeVerifier accepts or rejects every signature.
type fakeVerifier struct {
	valid bool
}

func (f *fakeVerifier) Verify(_ []byte, _ string) bool {
	return f.valid
}

func paidEvent() *eventsDomain.Event {
	price := int64(5000)
	return &eventsDomain.Event{
		ID:            uuid.Must(uuid.NewV7()),
		Name:          "Concert",
		MaxAttendees:  100,
		PriceCents:    &price,
		Currency:      "USD",
		CapacityScope: eventsDomain.ScopeEvent,
		Active:        true,
	}
}

type paymentFixture struct {
	useCase   PaymentUseCase
	sessions  *fakeSessionRepository
	admission *fakeAdmission
	events    *fakeEventReader
	provider  *fakeProvider
	verifier  *fakeVerifier
	txManager *fakeTxManager
}

func newPaymentFixture(event *eventsDomain.Event) *paymentFixture {
	sessions := newFakeSessionRepository()
	admission := newFakeAdmission()
	events := &fakeEventReader{event: event}
	provider := &fakeProvider{
		checkout:     &service.CheckoutSession{SessionID: "cs_123", CheckoutURL: "https://pay.example.com/cs_123"},
		verification: &service.PaymentVerification{Paid: true, AmountCents: 10000, Currency: "USD"},
	}
	verifier := &fakeVerifier{valid: true}
	txManager := &fakeTxManager{}

	return &paymentFixture{
		useCase:   NewPaymentUseCase(sessions, admission, events, provider, verifier, txManager, 30*time.Minute),
		sessions:  sessions,
		admission: admission,
		events:    events,
		provider:  provider,
		verifier:  verifier,
		txManager: txManager,
	}
}

func checkoutInput(eventID uuid.UUID) CheckoutInput {
	return CheckoutInput{
		EventID: eventID,
		Items:   []CheckoutItem{{Quantity: 2}},
		Contact: attendeesDomain.ContactDetails{Name: "Alice", Email: "alice@example.com"},
	}
}

func completionInput(eventID uuid.UUID) CompletionInput {
	return CompletionInput{
		SessionID: "cs_123",
		EventID:   eventID,
		Items:     []CheckoutItem{{Quantity: 2}},
		Contact:   attendeesDomain.ContactDetails{Name: "Alice", Email: "alice@example.com"},
	}
}

func TestPaymentUseCase_StartCheckout_PaidEvent(t *testing.T) {
	fixture := newPaymentFixture(paidEvent())

	result, err := fixture.useCase.StartCheckout(context.Background(), checkoutInput(fixture.events.event.ID))
	require.NoError(t, err)
	assert.Equal(t, "cs_123", result.SessionID)
	assert.Equal(t, "https://pay.example.com/cs_123", result.CheckoutURL)
	assert.False(t, result.Free)

	// Nothing is admitted before the payment completes.
	assert.Empty(t, fixture.admission.reserves)
}

func TestPaymentUseCase_StartCheckout_FreeEvent(t *testing.T) {
	event := paidEvent()
	event.PriceCents = nil
	event.Currency = ""
	fixture := newPaymentFixture(event)

	result, err := fixture.useCase.StartCheckout(context.Background(), checkoutInput(event.ID))
	require.NoError(t, err)
	assert.True(t, result.Free)
	assert.Len(t, result.AttendeeIDs, 1)
	assert.Len(t, result.TicketTokens, 1)
	assert.Empty(t, result.SessionID)

	// Free admissions carry no payment reference.
	require.Len(t, fixture.admission.reserves, 1)
	assert.Nil(t, fixture.admission.reserves[0].PaymentRef)
}

func TestPaymentUseCase_StartCheckout_InvalidItems(t *testing.T) {
	fixture := newPaymentFixture(paidEvent())
	ctx := context.Background()

	input := checkoutInput(fixture.events.event.ID)
	input.Items = nil
	_, err := fixture.useCase.StartCheckout(ctx, input)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	input = checkoutInput(fixture.events.event.ID)
	input.Items = []CheckoutItem{{Quantity: 0}}
	_, err = fixture.useCase.StartCheckout(ctx, input)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestPaymentUseCase_StartCheckout_RegistrationClosed(t *testing.T) {
	event := paidEvent()
	event.Active = false
	fixture := newPaymentFixture(event)

	_, err := fixture.useCase.StartCheckout(context.Background(), checkoutInput(event.ID))
	assert.ErrorIs(t, err, eventsDomain.ErrRegistrationClosed)
}

func TestPaymentUseCase_Complete(t *testing.T) {
	fixture := newPaymentFixture(paidEvent())
	ctx := context.Background()

	result, err := fixture.useCase.Complete(ctx, completionInput(fixture.events.event.ID))
	require.NoError(t, err)
	assert.Len(t, result.AttendeeIDs, 1)
	assert.Len(t, result.TicketTokens, 1)
	assert.False(t, result.Replayed)

	// The admitted row is linked back to the payment session.
	require.Len(t, fixture.admission.reserves, 1)
	require.NotNil(t, fixture.admission.reserves[0].PaymentRef)
	assert.Equal(t, "cs_123", *fixture.admission.reserves[0].PaymentRef)

	session, err := fixture.sessions.GetBySessionID(ctx, "cs_123")
	require.NoError(t, err)
	assert.Equal(t, paymentsDomain.StatusFinalized, session.Status)
	assert.Equal(t, result.AttendeeIDs, session.AttendeeIDs)

	// Admissions and finalization ran in a single transaction.
	assert.Equal(t, 1, fixture.txManager.calls)
}

func TestPaymentUseCase_Complete_ReplaysFinalizedSession(t *testing.T) {
	fixture := newPaymentFixture(paidEvent())
	ctx := context.Background()
	input := completionInput(fixture.events.event.ID)

	first, err := fixture.useCase.Complete(ctx, input)
	require.NoError(t, err)

	second, err := fixture.useCase.Complete(ctx, input)
	require.NoError(t, err)
	assert.True(t, second.Replayed)
	assert.Equal(t, first.AttendeeIDs, second.AttendeeIDs)
	// Tokens are handed out exactly once.
	assert.Empty(t, second.TicketTokens)

	// No double admission happened.
	assert.Len(t, fixture.admission.reserves, 1)
}

func TestPaymentUseCase_Complete_ConcurrentClaimConflicts(t *testing.T) {
	fixture := newPaymentFixture(paidEvent())
	ctx := context.Background()

	// Another attempt holds the reserved claim.
	err := fixture.sessions.Claim(ctx, &paymentsDomain.PaymentSession{
		ID:        uuid.Must(uuid.NewV7()),
		SessionID: "cs_123",
		Status:    paymentsDomain.StatusReserved,
		CreatedAt: time.Now().UTC(),
	})
	require.NoError(t, err)

	_, err = fixture.useCase.Complete(ctx, completionInput(fixture.events.event.ID))
	assert.ErrorIs(t, err, paymentsDomain.ErrCompletionInProgress)
}

func TestPaymentUseCase_Complete_ProviderUnavailable(t *testing.T) {
	fixture := newPaymentFixture(paidEvent())
	fixture.provider.verifyErr = apperrors.Wrap(apperrors.ErrUnavailable, "provider timeout")
	ctx := context.Background()

	_, err := fixture.useCase.Complete(ctx, completionInput(fixture.events.event.ID))
	assert.ErrorIs(t, err, apperrors.ErrUnavailable)

	// The claim is released so a retry can take it again.
	_, err = fixture.sessions.GetBySessionID(ctx, "cs_123")
	assert.ErrorIs(t, err, paymentsDomain.ErrSessionNotFound)

	// And a retry after the provider recovers succeeds.
	fixture.provider.verifyErr = nil
	result, err := fixture.useCase.Complete(ctx, completionInput(fixture.events.event.ID))
	require.NoError(t, err)
	assert.False(t, result.Replayed)
}

func TestPaymentUseCase_Complete_NotPaid(t *testing.T) {
	fixture := newPaymentFixture(paidEvent())
	fixture.provider.verification = &service.PaymentVerification{Paid: false}
	ctx := context.Background()

	_, err := fixture.useCase.Complete(ctx, completionInput(fixture.events.event.ID))
	assert.ErrorIs(t, err, paymentsDomain.ErrProviderVerification)
	assert.Empty(t, fixture.admission.reserves)

	_, err = fixture.sessions.GetBySessionID(ctx, "cs_123")
	assert.ErrorIs(t, err, paymentsDomain.ErrSessionNotFound)
}

func TestPaymentUseCase_Complete_AmountMismatch(t *testing.T) {
	fixture := newPaymentFixture(paidEvent())
	// Two tickets at 5000 each: the provider must confirm 10000.
	fixture.provider.verification = &service.PaymentVerification{Paid: true, AmountCents: 5000, Currency: "USD"}

	_, err := fixture.useCase.Complete(context.Background(), completionInput(fixture.events.event.ID))
	assert.ErrorIs(t, err, paymentsDomain.ErrProviderVerification)
	assert.Empty(t, fixture.admission.reserves)
}

func TestPaymentUseCase_Complete_CurrencyMismatch(t *testing.T) {
	fixture := newPaymentFixture(paidEvent())
	fixture.provider.verification = &service.PaymentVerification{Paid: true, AmountCents: 10000, Currency: "EUR"}

	_, err := fixture.useCase.Complete(context.Background(), completionInput(fixture.events.event.ID))
	assert.ErrorIs(t, err, paymentsDomain.ErrProviderVerification)
}

func TestPaymentUseCase_Complete_FreeEvent(t *testing.T) {
	event := paidEvent()
	event.PriceCents = nil
	fixture := newPaymentFixture(event)

	_, err := fixture.useCase.Complete(context.Background(), completionInput(event.ID))
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestPaymentUseCase_Complete_AdmissionFailureRefunds(t *testing.T) {
	fixture := newPaymentFixture(paidEvent())
	fixture.admission.failAfter = 0
	ctx := context.Background()

	_, err := fixture.useCase.Complete(ctx, completionInput(fixture.events.event.ID))
	assert.ErrorIs(t, err, paymentsDomain.ErrRefundIssued)
	// The conflict category still holds for the HTTP mapping.
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.Equal(t, []string{"cs_123"}, fixture.provider.refunds)

	// The claim is gone: the ledger records nothing for this session.
	_, err = fixture.sessions.GetBySessionID(ctx, "cs_123")
	assert.ErrorIs(t, err, paymentsDomain.ErrSessionNotFound)
}

func TestPaymentUseCase_Complete_MultiItemRollback(t *testing.T) {
	fixture := newPaymentFixture(paidEvent())
	// First line admits, second line fails. Both lines run inside one
	// transaction, so the failure rolls the first row back with it.
	fixture.admission.failAfter = 1
	date := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	input := completionInput(fixture.events.event.ID)
	input.Items = []CheckoutItem{
		{EventDate: &date, Quantity: 1},
		{EventDate: &date, Quantity: 1},
	}
	// Adjust the verified amount to the two-line total.
	fixture.provider.verification = &service.PaymentVerification{Paid: true, AmountCents: 10000, Currency: "USD"}

	ctx := context.Background()
	_, err := fixture.useCase.Complete(ctx, input)
	assert.ErrorIs(t, err, paymentsDomain.ErrRefundIssued)
	assert.Equal(t, 1, fixture.txManager.calls)
	assert.Equal(t, []string{"cs_123"}, fixture.provider.refunds)

	// The claim is released: nothing remains for this session.
	_, err = fixture.sessions.GetBySessionID(ctx, "cs_123")
	assert.ErrorIs(t, err, paymentsDomain.ErrSessionNotFound)
}

func TestPaymentUseCase_Complete_FinalizeFailureDoesNotRefund(t *testing.T) {
	fixture := newPaymentFixture(paidEvent())
	fixture.sessions.finalizeErr = apperrors.Wrap(apperrors.ErrUnavailable, "database gone away")
	ctx := context.Background()
	input := completionInput(fixture.events.event.ID)

	// Finalize fails after the admissions succeeded. The transaction rollback
	// undoes the admissions, so the payment must stand untouched: no refund,
	// claim released for a retry.
	_, err := fixture.useCase.Complete(ctx, input)
	require.Error(t, err)
	assert.NotErrorIs(t, err, paymentsDomain.ErrRefundIssued)
	assert.Empty(t, fixture.provider.refunds)

	_, err = fixture.sessions.GetBySessionID(ctx, "cs_123")
	assert.ErrorIs(t, err, paymentsDomain.ErrSessionNotFound)

	// Once the database recovers, the retry completes normally.
	fixture.sessions.finalizeErr = nil
	result, err := fixture.useCase.Complete(ctx, input)
	require.NoError(t, err)
	assert.False(t, result.Replayed)

	session, err := fixture.sessions.GetBySessionID(ctx, "cs_123")
	require.NoError(t, err)
	assert.Equal(t, paymentsDomain.StatusFinalized, session.Status)
}

func TestPaymentUseCase_Complete_RefundFailure(t *testing.T) {
	fixture := newPaymentFixture(paidEvent())
	fixture.admission.failAfter = 0
	fixture.provider.refundErr = apperrors.Wrap(apperrors.ErrUnavailable, "refund endpoint down")

	_, err := fixture.useCase.Complete(context.Background(), completionInput(fixture.events.event.ID))
	assert.ErrorIs(t, err, paymentsDomain.ErrRefundFailed)
}

func TestPaymentUseCase_HandleNotification_InvalidSignature(t *testing.T) {
	fixture := newPaymentFixture(paidEvent())
	fixture.verifier.valid = false

	err := fixture.useCase.HandleNotification(context.Background(), []byte(`{}`), "bad")
	assert.ErrorIs(t, err, paymentsDomain.ErrInvalidWebhookSignature)
}

func TestPaymentUseCase_HandleNotification_MalformedPayload(t *testing.T) {
	fixture := newPaymentFixture(paidEvent())

	err := fixture.useCase.HandleNotification(context.Background(), []byte(`{not json`), "sig")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestPaymentUseCase_HandleNotification_Refunded(t *testing.T) {
	fixture := newPaymentFixture(paidEvent())
	first := &attendeesDomain.Attendee{ID: uuid.Must(uuid.NewV7())}
	second := &attendeesDomain.Attendee{ID: uuid.Must(uuid.NewV7())}
	fixture.admission.byPaymentRef["cs_123"] = []*attendeesDomain.Attendee{first, second}

	payload := []byte(`{"type":"payment.refunded","session_id":"cs_123"}`)
	err := fixture.useCase.HandleNotification(context.Background(), payload, "sig")
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{first.ID, second.ID}, fixture.admission.refunded)
}

func TestPaymentUseCase_HandleNotification_UnknownType(t *testing.T) {
	fixture := newPaymentFixture(paidEvent())

	payload := []byte(`{"type":"payment.created","session_id":"cs_123"}`)
	err := fixture.useCase.HandleNotification(context.Background(), payload, "sig")
	assert.NoError(t, err)
	assert.Empty(t, fixture.admission.refunded)
}

func TestPaymentUseCase_ReclaimStale(t *testing.T) {
	fixture := newPaymentFixture(paidEvent())
	ctx := context.Background()

	stale := &paymentsDomain.PaymentSession{
		ID:        uuid.Must(uuid.NewV7()),
		SessionID: "cs_stale",
		Status:    paymentsDomain.StatusReserved,
		CreatedAt: time.Now().UTC().Add(-time.Hour),
	}
	fresh := &paymentsDomain.PaymentSession{
		ID:        uuid.Must(uuid.NewV7()),
		SessionID: "cs_fresh",
		Status:    paymentsDomain.StatusReserved,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, fixture.sessions.Claim(ctx, stale))
	require.NoError(t, fixture.sessions.Claim(ctx, fresh))

	reclaimed, err := fixture.useCase.ReclaimStale(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), reclaimed)

	_, err = fixture.sessions.GetBySessionID(ctx, "cs_stale")
	assert.ErrorIs(t, err, paymentsDomain.ErrSessionNotFound)
	_, err = fixture.sessions.GetBySessionID(ctx, "cs_fresh")
	assert.NoError(t, err)
}
