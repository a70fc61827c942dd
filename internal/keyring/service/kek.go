package service

import (
	"golang.org/x/crypto/argon2"

	apperrors "github.com/allisson/ticketbox/internal/errors"
	keyringDomain "github.com/allisson/ticketbox/internal/keyring/domain"
)

// Argon2id parameters for KEK derivation. These must never change within a
// deployment: the derivation has to be reproducible to unwrap existing data.
const (
	kekTime    = 3
	kekMemory  = 64 * 1024
	kekThreads = 4
)

// KekDeriver derives the key-encrypting key from the admin password and the
// deployment salt. The KEK is never stored; it exists only long enough to
// wrap or unwrap the data key and must be zeroed by the caller.
//
// Unlike the login hash (Argon2id with a random per-hash salt via pwdhash),
// this derivation is deterministic: the same password and deployment salt
// always yield the same KEK.
type KekDeriver struct {
	salt []byte
}

// NewKekDeriver creates a KekDeriver with the deployment salt.
// The salt is a deployment-wide secret; an attacker with the database but
// without the salt cannot mount an offline password attack on the wrapping.
func NewKekDeriver(salt []byte) (*KekDeriver, error) {
	if len(salt) < 16 {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "deployment salt must be at least 16 bytes")
	}
	return &KekDeriver{salt: salt}, nil
}

// Derive computes the 32-byte KEK for the given password.
func (d *KekDeriver) Derive(password string) []byte {
	return argon2.IDKey([]byte(password), d.salt, kekTime, kekMemory, kekThreads, keyringDomain.KeySize)
}
