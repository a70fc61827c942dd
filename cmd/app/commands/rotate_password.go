package commands

import (
	"context"
	"fmt"

	"github.com/allisson/ticketbox/internal/app"
	"github.com/allisson/ticketbox/internal/config"
)

// RunRotatePassword re-wraps the data key under a new admin password. The
// data key and every stored ciphertext stay untouched; open admin sessions
// are revoked.
func RunRotatePassword(ctx context.Context, oldPassword, newPassword string, io IOTuple) error {
	cfg := config.Load()

	container := app.NewContainer(cfg)
	logger := container.Logger()

	defer closeContainer(container, logger)

	oldPassword, err := readPassword(io, oldPassword, "Current admin password: ")
	if err != nil {
		return err
	}
	newPassword, err = readPassword(io, newPassword, "New admin password: ")
	if err != nil {
		return err
	}
	if err := adminPasswordPolicy.Validate(newPassword); err != nil {
		return fmt.Errorf("weak admin password: %w", err)
	}

	keyService, err := container.KeyService()
	if err != nil {
		return fmt.Errorf("failed to initialize key service: %w", err)
	}

	if err := keyService.RotatePassword(ctx, oldPassword, newPassword); err != nil {
		return fmt.Errorf("failed to rotate admin password: %w", err)
	}

	logger.Info("admin password rotated")
	fmt.Fprintln(io.Writer, "Admin password rotated. All admin sessions have been revoked.")
	return nil
}
