package usecase

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"time"

	authDomain "github.com/allisson/ticketbox/internal/auth/domain"
	apperrors "github.com/allisson/ticketbox/internal/errors"
)

// sessionTokenBytes is the entropy of a bearer token before encoding.
const sessionTokenBytes = 32

// authUseCase implements AuthUseCase.
type authUseCase struct {
	keys       KeyUnwrapper
	sessions   SessionStore
	expiration time.Duration
}

// NewAuthUseCase creates a new auth use case.
func NewAuthUseCase(keys KeyUnwrapper, sessions SessionStore, expiration time.Duration) AuthUseCase {
	return &authUseCase{keys: keys, sessions: sessions, expiration: expiration}
}

// Login attempts to unwrap the data key with the supplied password. A nil
// data key means the password is wrong; the unwrap failure is the credential
// check, there is no separate password comparison to get out of sync with.
func (u *authUseCase) Login(ctx context.Context, password string) (*LoginResult, error) {
	dataKey, err := u.keys.UnwrapDataKey(ctx, password)
	if err != nil {
		return nil, err
	}
	if dataKey == nil {
		return nil, authDomain.ErrInvalidCredentials
	}

	material, err := u.keys.Material(ctx)
	if err != nil {
		return nil, err
	}

	token, err := newSessionToken()
	if err != nil {
		return nil, err
	}

	expiresAt := time.Now().UTC().Add(u.expiration)
	u.sessions.Put(&authDomain.AdminSession{
		Token:       token,
		DataKey:     dataKey,
		WrapVersion: material.WrapVersion,
		ExpiresAt:   expiresAt,
	})

	return &LoginResult{Token: token, ExpiresAt: expiresAt}, nil
}

// Authenticate resolves a token to a live session, rejecting sessions from a
// previous key-material generation.
func (u *authUseCase) Authenticate(
	ctx context.Context,
	token string,
) (*authDomain.AdminSession, error) {
	session, ok := u.sessions.Get(token)
	if !ok {
		return nil, authDomain.ErrInvalidSession
	}

	material, err := u.keys.Material(ctx)
	if err != nil {
		return nil, err
	}
	if session.WrapVersion != material.WrapVersion {
		u.sessions.Revoke(token)
		return nil, authDomain.ErrInvalidSession
	}

	return session, nil
}

// Logout revokes the token's session. Revoking an unknown token is a no-op.
func (u *authUseCase) Logout(_ context.Context, token string) error {
	u.sessions.Revoke(token)
	return nil
}

// newSessionToken mints an opaque URL-safe bearer token.
func newSessionToken() (string, error) {
	raw := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", apperrors.Wrap(err, "failed to generate session token")
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}
