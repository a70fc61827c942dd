package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	attendeesDomain "github.com/allisson/ticketbox/internal/attendees/domain"
	attendeesUsecase "github.com/allisson/ticketbox/internal/attendees/usecase"
	"github.com/allisson/ticketbox/internal/database"
	apperrors "github.com/allisson/ticketbox/internal/errors"
	eventsDomain "github.com/allisson/ticketbox/internal/events/domain"
	paymentsDomain "github.com/allisson/ticketbox/internal/payments/domain"
	"github.com/allisson/ticketbox/internal/payments/service"
)

// paymentUseCase implements PaymentUseCase.
type paymentUseCase struct {
	sessionRepo PaymentSessionRepository
	admission   Admission
	eventReader EventReader
	provider    service.PaymentProvider
	verifier    service.WebhookVerifier
	txManager   database.TxManager
	claimTTL    time.Duration
}

// NewPaymentUseCase creates a new payment coordinator.
func NewPaymentUseCase(
	sessionRepo PaymentSessionRepository,
	admission Admission,
	eventReader EventReader,
	provider service.PaymentProvider,
	verifier service.WebhookVerifier,
	txManager database.TxManager,
	claimTTL time.Duration,
) PaymentUseCase {
	return &paymentUseCase{
		sessionRepo: sessionRepo,
		admission:   admission,
		eventReader: eventReader,
		provider:    provider,
		verifier:    verifier,
		txManager:   txManager,
		claimTTL:    claimTTL,
	}
}

// StartCheckout validates the purchase and opens a provider checkout session.
// Free events skip the provider entirely and admit on the spot.
func (u *paymentUseCase) StartCheckout(
	ctx context.Context,
	input CheckoutInput,
) (*CheckoutResult, error) {
	totalQuantity, err := validateItems(input.Items)
	if err != nil {
		return nil, err
	}

	event, err := u.eventReader.GetByID(ctx, input.EventID)
	if err != nil {
		return nil, err
	}
	if !event.AcceptsRegistrations(time.Now().UTC()) {
		return nil, eventsDomain.ErrRegistrationClosed
	}

	if event.IsFree() {
		var attendeeIDs []uuid.UUID
		var tokens []string
		// One transaction for the whole purchase: a failed later line rolls
		// back the earlier ones.
		err := u.txManager.WithTx(ctx, func(txCtx context.Context) error {
			var admitErr error
			attendeeIDs, tokens, admitErr = u.admitItems(txCtx, input.EventID, input.Items, input.Contact, nil)
			return admitErr
		})
		if err != nil {
			return nil, err
		}
		return &CheckoutResult{Free: true, AttendeeIDs: attendeeIDs, TicketTokens: tokens}, nil
	}

	session, err := u.provider.CreateCheckout(ctx, service.CheckoutRequest{
		AmountCents: *event.PriceCents * int64(totalQuantity),
		Currency:    event.Currency,
		Description: event.Name,
		SuccessURL:  input.SuccessURL,
		CancelURL:   input.CancelURL,
	})
	if err != nil {
		return nil, err
	}

	return &CheckoutResult{SessionID: session.SessionID, CheckoutURL: session.CheckoutURL}, nil
}

// Complete finishes a paid purchase exactly once.
//
// The claim insert is the mutex: the first caller for a session id holds it,
// concurrent callers get ErrCompletionInProgress, and callers arriving after
// finalization get the original outcome replayed. A provider timeout releases
// the claim and surfaces ErrUnavailable — never a rollback, because the
// payment may well have succeeded.
func (u *paymentUseCase) Complete(
	ctx context.Context,
	input CompletionInput,
) (*CompletionResult, error) {
	totalQuantity, err := validateItems(input.Items)
	if err != nil {
		return nil, err
	}
	if input.SessionID == "" {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "session id is required")
	}

	claim := &paymentsDomain.PaymentSession{
		ID:        uuid.Must(uuid.NewV7()),
		SessionID: input.SessionID,
		EventID:   input.EventID,
		Status:    paymentsDomain.StatusReserved,
		CreatedAt: time.Now().UTC(),
	}
	if err := u.sessionRepo.Claim(ctx, claim); err != nil {
		if apperrors.Is(err, paymentsDomain.ErrSessionAlreadyClaimed) {
			return u.replayOrConflict(ctx, input.SessionID)
		}
		return nil, err
	}

	verification, err := u.provider.VerifyPayment(ctx, input.SessionID)
	if err != nil {
		// Unknown outcome: free the claim so a retry can ask again.
		u.releaseClaim(ctx, input.SessionID)
		return nil, err
	}

	event, err := u.eventReader.GetByID(ctx, input.EventID)
	if err != nil {
		u.releaseClaim(ctx, input.SessionID)
		return nil, err
	}
	if event.IsFree() {
		u.releaseClaim(ctx, input.SessionID)
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "event does not require payment")
	}

	expected := *event.PriceCents * int64(totalQuantity)
	if !verification.Paid || verification.AmountCents != expected || verification.Currency != event.Currency {
		u.releaseClaim(ctx, input.SessionID)
		return nil, paymentsDomain.ErrProviderVerification
	}

	// Admissions and finalization commit together: the ledger never holds
	// attendees for a session that is not finalized, and a finalize failure
	// rolls the admissions back instead of stranding them behind a reserved
	// claim that ReclaimStale would later free for a duplicate booking.
	var attendeeIDs []uuid.UUID
	var tokens []string
	admitted := false
	txErr := u.txManager.WithTx(ctx, func(txCtx context.Context) error {
		var admitErr error
		attendeeIDs, tokens, admitErr = u.admitItems(txCtx, input.EventID, input.Items, input.Contact, &input.SessionID)
		if admitErr != nil {
			return admitErr
		}
		admitted = true
		return u.sessionRepo.Finalize(
			txCtx,
			input.SessionID,
			paymentsDomain.EncodeAttendeeIDs(attendeeIDs),
			time.Now().UTC(),
		)
	})
	if txErr != nil {
		if !admitted {
			// Money was taken but seats can never be granted: refund, then
			// release the claim so the ledger records nothing for this session.
			return nil, u.compensate(ctx, input.SessionID, txErr)
		}
		// Finalize failed and the rollback undid the admissions. The payment
		// still stands, so keep it and free the claim for a retry.
		u.releaseClaim(ctx, input.SessionID)
		return nil, apperrors.Wrap(txErr, "failed to finalize payment session")
	}

	return &CompletionResult{AttendeeIDs: attendeeIDs, TicketTokens: tokens}, nil
}

// replayOrConflict resolves a lost claim race: a finalized session replays
// its original outcome, a still-reserved one means another attempt is live.
func (u *paymentUseCase) replayOrConflict(
	ctx context.Context,
	sessionID string,
) (*CompletionResult, error) {
	existing, err := u.sessionRepo.GetBySessionID(ctx, sessionID)
	if err != nil {
		// The holder released between our insert and this read; the caller
		// retries and takes the claim.
		if apperrors.Is(err, paymentsDomain.ErrSessionNotFound) {
			return nil, paymentsDomain.ErrCompletionInProgress
		}
		return nil, err
	}
	if existing.Status == paymentsDomain.StatusFinalized {
		return &CompletionResult{AttendeeIDs: existing.AttendeeIDs, Replayed: true}, nil
	}
	return nil, paymentsDomain.ErrCompletionInProgress
}

// admitItems reserves every line of the purchase. Callers run it inside a
// transaction, so a failed later line rolls back the rows already created and
// a multi-item purchase stays all-or-nothing.
func (u *paymentUseCase) admitItems(
	ctx context.Context,
	eventID uuid.UUID,
	items []CheckoutItem,
	contact attendeesDomain.ContactDetails,
	paymentRef *string,
) ([]uuid.UUID, []string, error) {
	attendeeIDs := make([]uuid.UUID, 0, len(items))
	tokens := make([]string, 0, len(items))

	for _, item := range items {
		result, err := u.admission.Reserve(ctx, attendeesUsecase.ReservationInput{
			EventID:    eventID,
			EventDate:  item.EventDate,
			Quantity:   item.Quantity,
			Contact:    contact,
			PaymentRef: paymentRef,
		})
		if err != nil {
			return nil, nil, err
		}
		attendeeIDs = append(attendeeIDs, result.Attendee.ID)
		tokens = append(tokens, result.TicketToken)
	}

	return attendeeIDs, tokens, nil
}

// compensate refunds the confirmed payment after an admission failure and
// releases the claim.
func (u *paymentUseCase) compensate(ctx context.Context, sessionID string, cause error) error {
	if refundErr := u.provider.Refund(ctx, sessionID); refundErr != nil {
		slog.Error("refund failed after admission failure",
			"session_id", sessionID,
			"cause", cause,
			"refund_error", refundErr,
		)
		u.releaseClaim(ctx, sessionID)
		return apperrors.Wrap(paymentsDomain.ErrRefundFailed, cause.Error())
	}

	slog.Warn("payment refunded after admission failure",
		"session_id", sessionID,
		"cause", cause,
	)
	u.releaseClaim(ctx, sessionID)
	return apperrors.Wrap(paymentsDomain.ErrRefundIssued, cause.Error())
}

// releaseClaim drops the reserved claim, logging instead of failing: a
// leftover claim is eventually swept by ReclaimStale.
func (u *paymentUseCase) releaseClaim(ctx context.Context, sessionID string) {
	if err := u.sessionRepo.Release(ctx, sessionID); err != nil {
		slog.Warn("failed to release payment claim", "session_id", sessionID, "error", err)
	}
}

// webhookPayload is the provider notification envelope.
type webhookPayload struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id"`
}

// HandleNotification authenticates and applies a provider webhook. Unknown
// notification types are acknowledged and ignored.
func (u *paymentUseCase) HandleNotification(
	ctx context.Context,
	payload []byte,
	signature string,
) error {
	if !u.verifier.Verify(payload, signature) {
		return paymentsDomain.ErrInvalidWebhookSignature
	}

	var notification webhookPayload
	if err := json.Unmarshal(payload, &notification); err != nil {
		return apperrors.Wrap(apperrors.ErrInvalidInput, fmt.Sprintf("malformed webhook payload: %v", err))
	}

	switch notification.Type {
	case "payment.refunded":
		return u.markRefunded(ctx, notification.SessionID)
	default:
		return nil
	}
}

// markRefunded flags every attendee admitted by the session as refunded.
func (u *paymentUseCase) markRefunded(ctx context.Context, sessionID string) error {
	attendees, err := u.admission.FindByPaymentRef(ctx, sessionID)
	if err != nil {
		return err
	}
	for _, attendee := range attendees {
		if err := u.admission.SetRefunded(ctx, attendee.ID); err != nil {
			return err
		}
	}
	return nil
}

// ReclaimStale sweeps reserved claims abandoned by crashed completions.
func (u *paymentUseCase) ReclaimStale(ctx context.Context) (int64, error) {
	cutoff := time.Now().UTC().Add(-u.claimTTL)
	return u.sessionRepo.DeleteStaleReserved(ctx, cutoff)
}

// validateItems checks the purchase lines and returns the total quantity.
func validateItems(items []CheckoutItem) (int, error) {
	if len(items) == 0 {
		return 0, apperrors.Wrap(apperrors.ErrInvalidInput, "at least one item is required")
	}
	total := 0
	for _, item := range items {
		if item.Quantity <= 0 {
			return 0, apperrors.Wrap(apperrors.ErrInvalidInput, "item quantity must be positive")
		}
		total += item.Quantity
	}
	return total, nil
}
