// Package pii implements the field codec for personally-identifiable attendee
// data: asymmetric field encryption plus keyed blind indexes for equality
// lookups without decryption.
//
// Encryption uses NaCl anonymous sealed boxes, so the write path (the public
// booking form) only ever needs the deployment's public key. Decryption
// requires the private key, which is stored wrapped under the data key and is
// only available inside an authenticated admin session. Sealed boxes use an
// ephemeral sender key per message, so encrypting the same value twice yields
// different ciphertexts — including the empty string, which therefore needs no
// sentinel encoding.
package pii

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"

	"golang.org/x/crypto/nacl/box"

	apperrors "github.com/allisson/ticketbox/internal/errors"
)

// KeySize is the byte length of NaCl box public and private keys.
const KeySize = 32

// Package errors for codec operations.
var (
	// ErrEncryptionUnavailable indicates no public key has been provisioned yet,
	// so PII cannot be accepted. Surfaced before any row is written.
	ErrEncryptionUnavailable = apperrors.Wrap(apperrors.ErrUnavailable, "encryption unavailable")

	// ErrDecryptionFailed indicates the ciphertext could not be opened with the
	// supplied key material. The cause (wrong key vs tampering) is not
	// distinguished to avoid leaking information.
	ErrDecryptionFailed = apperrors.Wrap(apperrors.ErrInvalidInput, "decryption failed")

	// ErrInvalidKeySize indicates key material of the wrong length was supplied.
	ErrInvalidKeySize = apperrors.Wrap(apperrors.ErrInvalidInput, "invalid key size")
)

// GenerateKeypair creates a new NaCl box keypair for field encryption.
// The public key may be stored in the clear; the private key must be
// encrypted under the data key before persisting.
func GenerateKeypair() (publicKey, privateKey []byte, err error) {
	pub, priv, err := box.GenerateKey(rand.Reader)
	if err != nil {
		return nil, nil, apperrors.Wrap(err, "failed to generate field keypair")
	}
	return pub[:], priv[:], nil
}

// EncryptField encrypts a short string field with the deployment public key.
// Only the public key is required; no secret material touches the write path.
func EncryptField(plaintext string, publicKey []byte) ([]byte, error) {
	if len(publicKey) != KeySize {
		return nil, ErrInvalidKeySize
	}

	var pub [KeySize]byte
	copy(pub[:], publicKey)

	ciphertext, err := box.SealAnonymous(nil, []byte(plaintext), &pub, rand.Reader)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to encrypt field")
	}
	return ciphertext, nil
}

// DecryptField opens a sealed field with the deployment keypair.
// Returns ErrDecryptionFailed when the key material does not match the
// ciphertext; it never returns garbage plaintext.
func DecryptField(ciphertext, publicKey, privateKey []byte) (string, error) {
	if len(publicKey) != KeySize || len(privateKey) != KeySize {
		return "", ErrInvalidKeySize
	}

	var pub, priv [KeySize]byte
	copy(pub[:], publicKey)
	copy(priv[:], privateKey)

	plaintext, ok := box.OpenAnonymous(nil, ciphertext, &pub, &priv)
	if !ok {
		return "", ErrDecryptionFailed
	}
	return string(plaintext), nil
}

// EncryptBool encrypts a boolean flag the same way as a string field.
// Flags like checked-in/refunded are stored as ciphertext alongside the
// other PII columns.
func EncryptBool(value bool, publicKey []byte) ([]byte, error) {
	if value {
		return EncryptField("1", publicKey)
	}
	return EncryptField("0", publicKey)
}

// DecryptBool decrypts a flag produced by EncryptBool.
func DecryptBool(ciphertext, publicKey, privateKey []byte) (bool, error) {
	plaintext, err := DecryptField(ciphertext, publicKey, privateKey)
	if err != nil {
		return false, err
	}
	return plaintext == "1", nil
}

// Indexer computes deterministic blind indexes for equality lookups.
// The same key must be used for every call within a deployment, or stored
// indexes stop matching.
type Indexer struct {
	key []byte
}

// NewIndexer creates a blind-index generator with the deployment index key.
func NewIndexer(key []byte) (*Indexer, error) {
	if len(key) == 0 {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "blind index key must not be empty")
	}
	return &Indexer{key: key}, nil
}

// BlindIndex returns the hex-encoded keyed hash of value.
// Deterministic and collision-resistant; stored in the clear next to the
// ciphertext columns so rows can be found without decryption.
func (i *Indexer) BlindIndex(value string) string {
	mac := hmac.New(sha256.New, i.key)
	mac.Write([]byte(value))
	return hex.EncodeToString(mac.Sum(nil))
}
