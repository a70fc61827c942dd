// Package service implements the payment provider integration: the checkout
// client with bounded timeouts and the webhook signature verifier.
package service

import (
	"context"
)

// CheckoutRequest describes the checkout session to create at the provider.
type CheckoutRequest struct {
	AmountCents int64
	Currency    string
	Description string
	SuccessURL  string
	CancelURL   string
}

// CheckoutSession is the provider's handle for a created checkout.
type CheckoutSession struct {
	SessionID   string
	CheckoutURL string
}

// PaymentVerification is the provider's answer about a session's state.
type PaymentVerification struct {
	Paid        bool
	AmountCents int64
	Currency    string
}

// PaymentProvider abstracts the external payment processor. Every call is
// bounded by the configured timeout; transport failures and timeouts surface
// as ErrUnavailable so callers can distinguish "unknown outcome, retry" from
// a definitive provider answer.
type PaymentProvider interface {
	CreateCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
	VerifyPayment(ctx context.Context, sessionID string) (*PaymentVerification, error)
	Refund(ctx context.Context, sessionID string) error
}

// WebhookVerifier authenticates asynchronous provider notifications.
type WebhookVerifier interface {
	Verify(payload []byte, signature string) bool
}
