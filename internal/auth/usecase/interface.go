// Package usecase implements admin authentication on top of the key
// hierarchy: a successful login is, by construction, a successful unwrap of
// the data key.
package usecase

import (
	"context"
	"time"

	authDomain "github.com/allisson/ticketbox/internal/auth/domain"
	keyringDomain "github.com/allisson/ticketbox/internal/keyring/domain"
)

// KeyUnwrapper is the slice of the key service auth needs.
type KeyUnwrapper interface {
	UnwrapDataKey(ctx context.Context, password string) ([]byte, error)
	Material(ctx context.Context) (*keyringDomain.KeyMaterial, error)
}

// SessionStore is the session registry contract.
type SessionStore interface {
	Put(session *authDomain.AdminSession)
	Get(token string) (*authDomain.AdminSession, bool)
	Revoke(token string)
}

// LoginResult is the outcome of a successful login.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
}

// AuthUseCase defines admin authentication operations.
type AuthUseCase interface {
	// Login unwraps the data key with the password and opens a session.
	Login(ctx context.Context, password string) (*LoginResult, error)

	// Authenticate resolves a bearer token to its live session. Sessions
	// opened before a password rotation are rejected.
	Authenticate(ctx context.Context, token string) (*authDomain.AdminSession, error)

	// Logout revokes the session for a token.
	Logout(ctx context.Context, token string) error
}
