package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/allisson/ticketbox/internal/app"
	"github.com/allisson/ticketbox/internal/config"
)

// RunReclaimClaims sweeps reserved payment claims older than the claim TTL.
// Meant to run periodically (cron) to release claims abandoned by crashed
// completion requests.
func RunReclaimClaims(ctx context.Context, io IOTuple) error {
	cfg := config.Load()

	container := app.NewContainer(cfg)
	logger := container.Logger()

	defer closeContainer(container, logger)

	paymentUseCase, err := container.PaymentUseCase()
	if err != nil {
		return fmt.Errorf("failed to initialize payment use case: %w", err)
	}

	reclaimed, err := paymentUseCase.ReclaimStale(ctx)
	if err != nil {
		return fmt.Errorf("failed to reclaim stale payment claims: %w", err)
	}

	logger.Info("stale payment claims reclaimed",
		slog.Int64("reclaimed", reclaimed),
		slog.Duration("claim_ttl", cfg.PaymentClaimTTL),
	)

	fmt.Fprintf(io.Writer, "Reclaimed %d stale payment claim(s)\n", reclaimed)
	return nil
}
