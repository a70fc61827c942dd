// Package domain defines the key hierarchy models for the attendee ledger.
//
// The hierarchy separates write from read privileges: a data key wrapped under
// a password-derived KEK, and a field-encryption keypair whose public half is
// stored in the clear (anyone may encrypt) while the private half is stored
// only as ciphertext under the data key (only an unwrapped session may
// decrypt). The KEK itself is never persisted — it is recomputed from the
// admin password on demand.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// KeyMaterial is the single persisted row of key hierarchy state for a
// deployment. The data key is generated exactly once; password rotation
// replaces the wrapping, never the key.
type KeyMaterial struct {
	ID uuid.UUID
	// WrapAlgorithm is the AEAD used to wrap the data key and private key.
	WrapAlgorithm Algorithm
	// WrappedDataKey is the data key encrypted under the password-derived KEK.
	// Exactly one valid wrapping exists at a time.
	WrappedDataKey []byte
	// WrapNonce is the AEAD nonce for the data key wrapping.
	WrapNonce []byte
	// WrapVersion increments on every password rotation. Sessions pin the
	// version they unwrapped under, so rotation invalidates them.
	WrapVersion uint
	// PublicKey is the field-encryption public key, stored in the clear.
	PublicKey []byte
	// WrappedPrivateKey is the field-encryption private key encrypted under the
	// data key.
	WrappedPrivateKey []byte
	// PrivateKeyNonce is the AEAD nonce for the private key wrapping.
	PrivateKeyNonce []byte
	// PasswordHash is the Argon2id hash of the admin password, used only to
	// gate login before attempting an unwrap.
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
