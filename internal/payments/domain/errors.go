package domain

import (
	"github.com/allisson/ticketbox/internal/errors"
)

// Payment error definitions.
var (
	// ErrSessionNotFound indicates no processed-session row matches the lookup.
	ErrSessionNotFound = errors.Wrap(errors.ErrNotFound, "payment session not found")

	// ErrSessionAlreadyClaimed indicates the store rejected the claim insert
	// because a row for the session already exists. The caller inspects the
	// existing row to decide between replay and conflict.
	ErrSessionAlreadyClaimed = errors.Wrap(errors.ErrConflict, "payment session already claimed")

	// ErrCompletionInProgress indicates another completion attempt currently
	// holds the claim. Retryable once the holder finishes or is reclaimed.
	ErrCompletionInProgress = errors.Wrap(errors.ErrConflict, "payment completion in progress")

	// ErrProviderVerification indicates the provider did not confirm the
	// payment (unpaid session, amount or currency mismatch). Terminal.
	ErrProviderVerification = errors.Wrap(errors.ErrInvalidInput, "payment verification failed")

	// ErrRefundIssued indicates admission failed after the payment was
	// confirmed and the charge was refunded. Terminal: the booker keeps their
	// money and no seats.
	ErrRefundIssued = errors.Wrap(errors.ErrConflict, "admission failed, payment refunded")

	// ErrRefundFailed indicates admission failed after the payment was
	// confirmed and the compensating refund also failed. Requires manual
	// intervention against the provider.
	ErrRefundFailed = errors.Wrap(errors.ErrConflict, "admission failed and refund failed")

	// ErrInvalidWebhookSignature indicates a notification whose signature does
	// not match the shared webhook secret.
	ErrInvalidWebhookSignature = errors.Wrap(errors.ErrUnauthorized, "invalid webhook signature")
)
