package service

import (
	"context"
	"crypto/rand"
	"time"

	"github.com/allisson/go-pwdhash"
	"github.com/google/uuid"

	apperrors "github.com/allisson/ticketbox/internal/errors"
	keyringDomain "github.com/allisson/ticketbox/internal/keyring/domain"
	"github.com/allisson/ticketbox/internal/pii"
)

// keyService implements KeyService on top of the AEAD primitives, the KEK
// deriver and the key material repository.
type keyService struct {
	repo        KeyMaterialRepository
	aeadManager AEADManager
	deriver     *KekDeriver
	hasher      *pwdhash.PasswordHasher
	sessions    SessionRevoker
	alg         keyringDomain.Algorithm
}

// NewKeyService creates the key hierarchy service. The sessions revoker may be
// nil (CLI commands run without a session store).
func NewKeyService(
	repo KeyMaterialRepository,
	aeadManager AEADManager,
	deriver *KekDeriver,
	sessions SessionRevoker,
	alg keyringDomain.Algorithm,
) (KeyService, error) {
	hasher, err := pwdhash.New(
		pwdhash.WithPolicy(pwdhash.PolicyModerate),
	)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to create password hasher")
	}

	return &keyService{
		repo:        repo,
		aeadManager: aeadManager,
		deriver:     deriver,
		hasher:      hasher,
		sessions:    sessions,
		alg:         alg,
	}, nil
}

// Initialize provisions the key hierarchy exactly once: a random data key, a
// field-encryption keypair, the data key wrapped under the password-derived
// KEK and the private key wrapped under the data key. Random generation
// failure is fatal and surfaced to the caller, never retried silently.
func (s *keyService) Initialize(
	ctx context.Context,
	adminPassword string,
) (*keyringDomain.KeyMaterial, error) {
	if _, err := s.repo.Get(ctx); err == nil {
		return nil, keyringDomain.ErrAlreadyInitialized
	} else if !apperrors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	// Generate the data key. This happens exactly once per deployment.
	dataKey := make([]byte, keyringDomain.KeySize)
	if _, err := rand.Read(dataKey); err != nil {
		return nil, apperrors.Wrap(err, "failed to generate data key")
	}
	defer keyringDomain.Zero(dataKey)

	publicKey, privateKey, err := pii.GenerateKeypair()
	if err != nil {
		return nil, err
	}
	defer keyringDomain.Zero(privateKey)

	// Wrap the data key under the password-derived KEK.
	kek := s.deriver.Derive(adminPassword)
	defer keyringDomain.Zero(kek)

	kekCipher, err := s.aeadManager.CreateCipher(kek, s.alg)
	if err != nil {
		return nil, err
	}

	wrappedDataKey, wrapNonce, err := kekCipher.Encrypt(dataKey, nil)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to wrap data key")
	}

	// Wrap the private key under the data key.
	dataKeyCipher, err := s.aeadManager.CreateCipher(dataKey, s.alg)
	if err != nil {
		return nil, err
	}

	wrappedPrivateKey, privNonce, err := dataKeyCipher.Encrypt(privateKey, nil)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to wrap private key")
	}

	passwordHash, err := s.hasher.Hash([]byte(adminPassword))
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to hash admin password")
	}

	now := time.Now().UTC()
	material := &keyringDomain.KeyMaterial{
		ID:                uuid.Must(uuid.NewV7()),
		WrapAlgorithm:     s.alg,
		WrappedDataKey:    wrappedDataKey,
		WrapNonce:         wrapNonce,
		WrapVersion:       1,
		PublicKey:         publicKey,
		WrappedPrivateKey: wrappedPrivateKey,
		PrivateKeyNonce:   privNonce,
		PasswordHash:      passwordHash,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.repo.Create(ctx, material); err != nil {
		return nil, err
	}

	return material, nil
}

// VerifyPassword checks the admin password against the stored Argon2id hash.
func (s *keyService) VerifyPassword(ctx context.Context, password string) (bool, error) {
	material, err := s.repo.Get(ctx)
	if err != nil {
		return false, err
	}

	ok, err := s.hasher.Verify([]byte(password), material.PasswordHash)
	if err != nil {
		return false, nil
	}
	return ok, nil
}

// UnwrapDataKey derives the KEK from the supplied password and attempts to
// open the stored wrapping. A mismatch returns (nil, nil): wrong password is
// an expected outcome, not an anomaly. The caller owns zeroing the returned
// key.
func (s *keyService) UnwrapDataKey(ctx context.Context, password string) ([]byte, error) {
	material, err := s.repo.Get(ctx)
	if err != nil {
		return nil, err
	}

	kek := s.deriver.Derive(password)
	defer keyringDomain.Zero(kek)

	cipher, err := s.aeadManager.CreateCipher(kek, material.WrapAlgorithm)
	if err != nil {
		return nil, err
	}

	dataKey, err := cipher.Decrypt(material.WrappedDataKey, material.WrapNonce, nil)
	if err != nil {
		// AEAD authentication failure: the KEK does not match the wrapping.
		return nil, nil
	}

	return dataKey, nil
}

// RotatePassword re-wraps the same data key under a KEK derived from the new
// password. The data key is never regenerated: ciphertexts written before the
// rotation stay readable. All open sessions are revoked.
func (s *keyService) RotatePassword(ctx context.Context, oldPassword, newPassword string) error {
	material, err := s.repo.Get(ctx)
	if err != nil {
		return err
	}

	dataKey, err := s.UnwrapDataKey(ctx, oldPassword)
	if err != nil {
		return err
	}
	if dataKey == nil {
		return apperrors.Wrap(apperrors.ErrUnauthorized, "old password does not unwrap the data key")
	}
	defer keyringDomain.Zero(dataKey)

	newKek := s.deriver.Derive(newPassword)
	defer keyringDomain.Zero(newKek)

	cipher, err := s.aeadManager.CreateCipher(newKek, material.WrapAlgorithm)
	if err != nil {
		return err
	}

	wrappedDataKey, wrapNonce, err := cipher.Encrypt(dataKey, nil)
	if err != nil {
		return apperrors.Wrap(err, "failed to re-wrap data key")
	}

	passwordHash, err := s.hasher.Hash([]byte(newPassword))
	if err != nil {
		return apperrors.Wrap(err, "failed to hash new password")
	}

	material.WrappedDataKey = wrappedDataKey
	material.WrapNonce = wrapNonce
	material.WrapVersion++
	material.PasswordHash = passwordHash
	material.UpdatedAt = time.Now().UTC()

	if err := s.repo.ReplaceWrapping(ctx, material); err != nil {
		return err
	}

	// Any session holding the old unwrapped key is now stale.
	if s.sessions != nil {
		s.sessions.RevokeAll()
	}

	return nil
}

// DecryptPrivateKey unwraps the field-encryption private key with an unwrapped
// data key. Failure here means corrupt key material or a mismatched data key,
// both fatal for the read path.
func (s *keyService) DecryptPrivateKey(
	material *keyringDomain.KeyMaterial,
	dataKey []byte,
) ([]byte, error) {
	cipher, err := s.aeadManager.CreateCipher(dataKey, material.WrapAlgorithm)
	if err != nil {
		return nil, err
	}

	privateKey, err := cipher.Decrypt(material.WrappedPrivateKey, material.PrivateKeyNonce, nil)
	if err != nil {
		return nil, keyringDomain.ErrUnwrapFailed
	}

	return privateKey, nil
}

// Material returns the current key material row.
func (s *keyService) Material(ctx context.Context) (*keyringDomain.KeyMaterial, error) {
	return s.repo.Get(ctx)
}
