package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/ticketbox/internal/errors"
)

func TestCheckoutClient_CreateCheckout(t *testing.T) {
	var gotAuth string
	var gotBody createCheckoutRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/checkout/sessions", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(createCheckoutResponse{
			SessionID:   "cs_123",
			CheckoutURL: "https://pay.example.com/cs_123",
		})
	}))
	defer server.Close()

	client := NewCheckoutClient(server.URL, "api-key", 5*time.Second)
	session, err := client.CreateCheckout(context.Background(), CheckoutRequest{
		AmountCents: 10000,
		Currency:    "USD",
		Description: "Concert",
		SuccessURL:  "https://app.example.com/success",
		CancelURL:   "https://app.example.com/cancel",
	})
	require.NoError(t, err)
	assert.Equal(t, "cs_123", session.SessionID)
	assert.Equal(t, "https://pay.example.com/cs_123", session.CheckoutURL)
	assert.Equal(t, "Bearer api-key", gotAuth)
	assert.Equal(t, int64(10000), gotBody.AmountCents)
	assert.Equal(t, "USD", gotBody.Currency)
}

func TestCheckoutClient_VerifyPayment(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/v1/checkout/sessions/cs_123", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(verifyPaymentResponse{
			Status:      "paid",
			AmountCents: 10000,
			Currency:    "USD",
		})
	}))
	defer server.Close()

	client := NewCheckoutClient(server.URL, "api-key", 5*time.Second)
	verification, err := client.VerifyPayment(context.Background(), "cs_123")
	require.NoError(t, err)
	assert.True(t, verification.Paid)
	assert.Equal(t, int64(10000), verification.AmountCents)
	assert.Equal(t, "USD", verification.Currency)
}

func TestCheckoutClient_VerifyPayment_Unpaid(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(verifyPaymentResponse{Status: "open"})
	}))
	defer server.Close()

	client := NewCheckoutClient(server.URL, "api-key", 5*time.Second)
	verification, err := client.VerifyPayment(context.Background(), "cs_123")
	require.NoError(t, err)
	assert.False(t, verification.Paid)
}

func TestCheckoutClient_Refund(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/checkout/sessions/cs_123/refund", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewCheckoutClient(server.URL, "api-key", 5*time.Second)
	assert.NoError(t, client.Refund(context.Background(), "cs_123"))
}

func TestCheckoutClient_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewCheckoutClient(server.URL, "api-key", 5*time.Second)
	_, err := client.VerifyPayment(context.Background(), "cs_123")
	assert.ErrorIs(t, err, apperrors.ErrUnavailable)
}

func TestCheckoutClient_ClientError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewCheckoutClient(server.URL, "api-key", 5*time.Second)
	_, err := client.VerifyPayment(context.Background(), "cs_123")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestCheckoutClient_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	server.Close() // nothing listens anymore

	client := NewCheckoutClient(server.URL, "api-key", 5*time.Second)
	_, err := client.VerifyPayment(context.Background(), "cs_123")
	assert.ErrorIs(t, err, apperrors.ErrUnavailable)
}

func TestCheckoutClient_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	client := NewCheckoutClient(server.URL, "api-key", 10*time.Millisecond)
	_, err := client.VerifyPayment(context.Background(), "cs_123")
	assert.ErrorIs(t, err, apperrors.ErrUnavailable)
}
