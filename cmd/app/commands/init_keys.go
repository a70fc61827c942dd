package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/allisson/ticketbox/internal/app"
	"github.com/allisson/ticketbox/internal/config"
)

// RunInitKeys provisions the key hierarchy: data key, field-encryption
// keypair and the password-wrapped envelope. Fails if already initialized.
func RunInitKeys(ctx context.Context, password string, io IOTuple) error {
	cfg := config.Load()

	container := app.NewContainer(cfg)
	logger := container.Logger()

	defer closeContainer(container, logger)

	password, err := readPassword(io, password, "Admin password: ")
	if err != nil {
		return err
	}
	if err := adminPasswordPolicy.Validate(password); err != nil {
		return fmt.Errorf("weak admin password: %w", err)
	}

	keyService, err := container.KeyService()
	if err != nil {
		return fmt.Errorf("failed to initialize key service: %w", err)
	}

	material, err := keyService.Initialize(ctx, password)
	if err != nil {
		return fmt.Errorf("failed to initialize key hierarchy: %w", err)
	}

	logger.Info("key hierarchy initialized",
		slog.String("key_material_id", material.ID.String()),
		slog.String("wrap_algorithm", string(material.WrapAlgorithm)),
	)

	fmt.Fprintf(io.Writer, "Key hierarchy initialized (id: %s)\n", material.ID)
	fmt.Fprintln(io.Writer, "Store the admin password safely: losing it makes all attendee data unrecoverable.")
	return nil
}
