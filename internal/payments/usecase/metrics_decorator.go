package usecase

import (
	"context"
	"time"

	"github.com/allisson/ticketbox/internal/metrics"
)

// paymentUseCaseWithMetrics decorates PaymentUseCase with metrics instrumentation.
type paymentUseCaseWithMetrics struct {
	next    PaymentUseCase
	metrics metrics.BusinessMetrics
}

// NewPaymentUseCaseWithMetrics wraps a PaymentUseCase with metrics recording.
func NewPaymentUseCaseWithMetrics(useCase PaymentUseCase, m metrics.BusinessMetrics) PaymentUseCase {
	return &paymentUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// record emits the counter and duration for one operation.
func (p *paymentUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	p.metrics.RecordOperation(ctx, "payments", operation, status)
	p.metrics.RecordDuration(ctx, "payments", operation, time.Since(start), status)
}

// StartCheckout records metrics for checkout creation.
func (p *paymentUseCaseWithMetrics) StartCheckout(
	ctx context.Context,
	input CheckoutInput,
) (*CheckoutResult, error) {
	start := time.Now()
	result, err := p.next.StartCheckout(ctx, input)
	p.record(ctx, "start_checkout", start, err)
	return result, err
}

// Complete records metrics for payment completion, replays included.
func (p *paymentUseCaseWithMetrics) Complete(
	ctx context.Context,
	input CompletionInput,
) (*CompletionResult, error) {
	start := time.Now()
	result, err := p.next.Complete(ctx, input)
	p.record(ctx, "complete", start, err)
	return result, err
}

// HandleNotification records metrics for webhook processing.
func (p *paymentUseCaseWithMetrics) HandleNotification(
	ctx context.Context,
	payload []byte,
	signature string,
) error {
	start := time.Now()
	err := p.next.HandleNotification(ctx, payload, signature)
	p.record(ctx, "handle_notification", start, err)
	return err
}

// ReclaimStale records metrics for stale claim sweeps.
func (p *paymentUseCaseWithMetrics) ReclaimStale(ctx context.Context) (int64, error) {
	start := time.Now()
	reclaimed, err := p.next.ReclaimStale(ctx)
	p.record(ctx, "reclaim_stale", start, err)
	return reclaimed, err
}
