// Package http provides HTTP handlers for checkout, payment completion and
// provider webhooks.
package http

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/allisson/ticketbox/internal/httputil"
	"github.com/allisson/ticketbox/internal/payments/http/dto"
	paymentsUsecase "github.com/allisson/ticketbox/internal/payments/usecase"
	customValidation "github.com/allisson/ticketbox/internal/validation"
)

// signatureHeader carries the webhook HMAC signature.
const signatureHeader = "X-Signature"

// PaymentHandler handles HTTP requests for the payment flow.
type PaymentHandler struct {
	paymentUseCase paymentsUsecase.PaymentUseCase
	logger         *slog.Logger
}

// NewPaymentHandler creates a new payment handler.
func NewPaymentHandler(paymentUseCase paymentsUsecase.PaymentUseCase, logger *slog.Logger) *PaymentHandler {
	return &PaymentHandler{paymentUseCase: paymentUseCase, logger: logger}
}

// CheckoutHandler starts a purchase.
// POST /v1/checkout - Public.
// Returns 201 Created with either a provider redirect or, for free events,
// the final tickets.
func (h *PaymentHandler) CheckoutHandler(c *gin.Context) {
	var req dto.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	result, err := h.paymentUseCase.StartCheckout(c.Request.Context(), req.ToInput())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapCheckoutResultToResponse(result))
}

// CompleteHandler finishes a paid purchase.
// POST /v1/checkout/complete - Public, idempotent per session id.
// Returns 200 OK with the tickets (or the replayed outcome).
func (h *PaymentHandler) CompleteHandler(c *gin.Context) {
	var req dto.CompleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	result, err := h.paymentUseCase.Complete(c.Request.Context(), req.ToInput())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapCompletionResultToResponse(result))
}

// WebhookHandler processes an asynchronous provider notification.
// POST /v1/payments/webhook - Authenticated by HMAC signature.
// Returns 204 No Content once the notification is applied.
func (h *PaymentHandler) WebhookHandler(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	signature := c.GetHeader(signatureHeader)
	if err := h.paymentUseCase.HandleNotification(c.Request.Context(), payload, signature); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Data(http.StatusNoContent, "application/json", nil)
}
