package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	apperrors "github.com/allisson/ticketbox/internal/errors"
)

// CheckoutClient is an HTTP PaymentProvider implementation.
type CheckoutClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewCheckoutClient creates a provider client whose every request is bounded
// by timeout.
func NewCheckoutClient(baseURL, apiKey string, timeout time.Duration) *CheckoutClient {
	return &CheckoutClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type createCheckoutRequest struct {
	AmountCents int64  `json:"amount_cents"`
	Currency    string `json:"currency"`
	Description string `json:"description"`
	SuccessURL  string `json:"success_url"`
	CancelURL   string `json:"cancel_url"`
}

type createCheckoutResponse struct {
	SessionID   string `json:"session_id"`
	CheckoutURL string `json:"checkout_url"`
}

type verifyPaymentResponse struct {
	Status      string `json:"status"`
	AmountCents int64  `json:"amount_cents"`
	Currency    string `json:"currency"`
}

// CreateCheckout opens a checkout session at the provider.
func (c *CheckoutClient) CreateCheckout(
	ctx context.Context,
	req CheckoutRequest,
) (*CheckoutSession, error) {
	body := createCheckoutRequest{
		AmountCents: req.AmountCents,
		Currency:    req.Currency,
		Description: req.Description,
		SuccessURL:  req.SuccessURL,
		CancelURL:   req.CancelURL,
	}

	var resp createCheckoutResponse
	if err := c.do(ctx, http.MethodPost, "/v1/checkout/sessions", body, &resp); err != nil {
		return nil, err
	}
	return &CheckoutSession{SessionID: resp.SessionID, CheckoutURL: resp.CheckoutURL}, nil
}

// VerifyPayment asks the provider for the definitive state of a session.
func (c *CheckoutClient) VerifyPayment(
	ctx context.Context,
	sessionID string,
) (*PaymentVerification, error) {
	var resp verifyPaymentResponse
	path := "/v1/checkout/sessions/" + sessionID
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &PaymentVerification{
		Paid:        resp.Status == "paid",
		AmountCents: resp.AmountCents,
		Currency:    resp.Currency,
	}, nil
}

// Refund issues a full refund for a paid session.
func (c *CheckoutClient) Refund(ctx context.Context, sessionID string) error {
	path := "/v1/checkout/sessions/" + sessionID + "/refund"
	return c.do(ctx, http.MethodPost, path, nil, nil)
}

// do performs one provider call. Transport failures (including the client
// timeout) wrap ErrUnavailable: the outcome is unknown and the caller must
// not treat it as a definitive answer.
func (c *CheckoutClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return apperrors.Wrap(err, "failed to encode provider request")
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return apperrors.Wrap(err, "failed to build provider request")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrUnavailable, fmt.Sprintf("payment provider unreachable: %v", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return apperrors.Wrap(apperrors.ErrUnavailable, fmt.Sprintf("payment provider error: status %d", resp.StatusCode))
	}
	if resp.StatusCode >= 400 {
		return apperrors.Wrap(apperrors.ErrInvalidInput, fmt.Sprintf("payment provider rejected request: status %d", resp.StatusCode))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return apperrors.Wrap(err, "failed to decode provider response")
		}
	}
	return nil
}
