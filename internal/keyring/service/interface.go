// Package service implements the key hierarchy: AEAD wrapping primitives, KEK
// derivation from the admin password, and the lifecycle of the deployment's
// key material.
package service

import (
	"context"

	keyringDomain "github.com/allisson/ticketbox/internal/keyring/domain"
)

// AEAD defines the interface for Authenticated Encryption with Associated Data.
type AEAD interface {
	// Encrypt encrypts plaintext with optional AAD and returns ciphertext and nonce.
	Encrypt(plaintext, aad []byte) (ciphertext, nonce []byte, err error)

	// Decrypt decrypts ciphertext using the provided nonce and AAD.
	Decrypt(ciphertext, nonce, aad []byte) ([]byte, error)
}

// AEADManager defines the interface for creating AEAD cipher instances.
type AEADManager interface {
	// CreateCipher creates an AEAD cipher instance for the specified algorithm.
	CreateCipher(key []byte, alg keyringDomain.Algorithm) (AEAD, error)
}

// KeyMaterialRepository persists the deployment's single key material row.
type KeyMaterialRepository interface {
	// Create inserts the key material. Returns ErrAlreadyInitialized when a row
	// already exists (enforced by the store, not a read-then-write).
	Create(ctx context.Context, material *keyringDomain.KeyMaterial) error

	// Get returns the key material, or ErrKeyMaterialNotFound.
	Get(ctx context.Context) (*keyringDomain.KeyMaterial, error)

	// ReplaceWrapping atomically swaps the data key wrapping and password hash.
	// The data key itself is untouched; only its envelope changes.
	ReplaceWrapping(ctx context.Context, material *keyringDomain.KeyMaterial) error
}

// SessionRevoker lets the key service invalidate admin sessions as a side
// effect of password rotation. Implemented by the auth session store.
type SessionRevoker interface {
	RevokeAll()
}

// KeyService manages the envelope key hierarchy for the deployment.
type KeyService interface {
	// Initialize provisions the key hierarchy exactly once.
	Initialize(ctx context.Context, adminPassword string) (*keyringDomain.KeyMaterial, error)

	// VerifyPassword checks the admin password against the stored hash.
	VerifyPassword(ctx context.Context, password string) (bool, error)

	// UnwrapDataKey derives the KEK from the password and attempts to unwrap
	// the data key. A wrong password yields (nil, nil) — the normal failure
	// path — while corrupt key material yields ErrUnwrapFailed.
	UnwrapDataKey(ctx context.Context, password string) ([]byte, error)

	// RotatePassword re-wraps the same data key under a KEK derived from the
	// new password and revokes all open sessions.
	RotatePassword(ctx context.Context, oldPassword, newPassword string) error

	// DecryptPrivateKey unwraps the field-encryption private key with an
	// unwrapped data key.
	DecryptPrivateKey(material *keyringDomain.KeyMaterial, dataKey []byte) ([]byte, error)

	// Material returns the current key material row.
	Material(ctx context.Context) (*keyringDomain.KeyMaterial, error)
}
