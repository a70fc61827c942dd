package domain

import (
	"github.com/allisson/ticketbox/internal/errors"
)

// Auth error definitions.
var (
	// ErrInvalidCredentials indicates the admin password did not unwrap the
	// data key.
	ErrInvalidCredentials = errors.Wrap(errors.ErrUnauthorized, "invalid credentials")

	// ErrInvalidSession indicates a missing, expired or revoked session token.
	ErrInvalidSession = errors.Wrap(errors.ErrUnauthorized, "invalid session")
)
