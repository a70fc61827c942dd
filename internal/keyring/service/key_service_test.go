package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/ticketbox/internal/errors"
	keyringDomain "github.com/allisson/ticketbox/internal/keyring/domain"
	"github.com/allisson/ticketbox/internal/pii"
)

// memoryKeyMaterialRepository is an in-memory KeyMaterialRepository.
type memoryKeyMaterialRepository struct {
	mu       sync.Mutex
	material *keyringDomain.KeyMaterial
}

func (m *memoryKeyMaterialRepository) Create(_ context.Context, material *keyringDomain.KeyMaterial) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.material != nil {
		return keyringDomain.ErrAlreadyInitialized
	}
	m.material = material
	return nil
}

func (m *memoryKeyMaterialRepository) Get(_ context.Context) (*keyringDomain.KeyMaterial, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.material == nil {
		return nil, keyringDomain.ErrKeyMaterialNotFound
	}
	copied := *m.material
	return &copied, nil
}

func (m *memoryKeyMaterialRepository) ReplaceWrapping(_ context.Context, material *keyringDomain.KeyMaterial) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.material == nil {
		return keyringDomain.ErrKeyMaterialNotFound
	}
	copied := *material
	m.material = &copied
	return nil
}

// countingRevoker records RevokeAll calls.
type countingRevoker struct {
	calls int
}

func (c *countingRevoker) RevokeAll() {
	c.calls++
}

func newTestKeyService(t *testing.T, revoker SessionRevoker) (KeyService, *memoryKeyMaterialRepository) {
	t.Helper()

	repo := &memoryKeyMaterialRepository{}
	deriver, err := NewKekDeriver([]byte("test-deployment-salt-16b+"))
	require.NoError(t, err)

	svc, err := NewKeyService(repo, NewAEADManager(), deriver, revoker, keyringDomain.AESGCM)
	require.NoError(t, err)
	return svc, repo
}

func TestKeyService_Initialize(t *testing.T) {
	svc, _ := newTestKeyService(t, nil)
	ctx := context.Background()

	material, err := svc.Initialize(ctx, "CorrectHorse1")
	require.NoError(t, err)
	assert.Equal(t, keyringDomain.AESGCM, material.WrapAlgorithm)
	assert.Equal(t, uint(1), material.WrapVersion)
	assert.Len(t, material.PublicKey, pii.KeySize)
	assert.NotEmpty(t, material.WrappedDataKey)
	assert.NotEmpty(t, material.WrappedPrivateKey)
	assert.NotEmpty(t, material.PasswordHash)
}

func TestKeyService_Initialize_AlreadyInitialized(t *testing.T) {
	svc, _ := newTestKeyService(t, nil)
	ctx := context.Background()

	_, err := svc.Initialize(ctx, "CorrectHorse1")
	require.NoError(t, err)

	_, err = svc.Initialize(ctx, "AnotherPass1")
	assert.ErrorIs(t, err, keyringDomain.ErrAlreadyInitialized)
}

func TestKeyService_VerifyPassword(t *testing.T) {
	svc, _ := newTestKeyService(t, nil)
	ctx := context.Background()

	_, err := svc.Initialize(ctx, "CorrectHorse1")
	require.NoError(t, err)

	ok, err := svc.VerifyPassword(ctx, "CorrectHorse1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.VerifyPassword(ctx, "WrongPassword1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestKeyService_UnwrapDataKey(t *testing.T) {
	svc, _ := newTestKeyService(t, nil)
	ctx := context.Background()

	_, err := svc.Initialize(ctx, "CorrectHorse1")
	require.NoError(t, err)

	dataKey, err := svc.UnwrapDataKey(ctx, "CorrectHorse1")
	require.NoError(t, err)
	assert.Len(t, dataKey, keyringDomain.KeySize)
}

func TestKeyService_UnwrapDataKey_WrongPassword(t *testing.T) {
	svc, _ := newTestKeyService(t, nil)
	ctx := context.Background()

	_, err := svc.Initialize(ctx, "CorrectHorse1")
	require.NoError(t, err)

	// Wrong password is an expected outcome: nil key, nil error.
	dataKey, err := svc.UnwrapDataKey(ctx, "WrongPassword1")
	require.NoError(t, err)
	assert.Nil(t, dataKey)
}

func TestKeyService_UnwrapDataKey_NotInitialized(t *testing.T) {
	svc, _ := newTestKeyService(t, nil)

	_, err := svc.UnwrapDataKey(context.Background(), "CorrectHorse1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestKeyService_RotatePassword(t *testing.T) {
	revoker := &countingRevoker{}
	svc, _ := newTestKeyService(t, revoker)
	ctx := context.Background()

	_, err := svc.Initialize(ctx, "CorrectHorse1")
	require.NoError(t, err)

	originalDataKey, err := svc.UnwrapDataKey(ctx, "CorrectHorse1")
	require.NoError(t, err)
	originalCopy := append([]byte(nil), originalDataKey...)

	err = svc.RotatePassword(ctx, "CorrectHorse1", "NewPassword99")
	require.NoError(t, err)
	assert.Equal(t, 1, revoker.calls)

	// Old password no longer unwraps.
	dataKey, err := svc.UnwrapDataKey(ctx, "CorrectHorse1")
	require.NoError(t, err)
	assert.Nil(t, dataKey)

	// New password unwraps the same data key: old ciphertexts stay readable.
	rotatedDataKey, err := svc.UnwrapDataKey(ctx, "NewPassword99")
	require.NoError(t, err)
	assert.Equal(t, originalCopy, rotatedDataKey)

	material, err := svc.Material(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint(2), material.WrapVersion)
}

func TestKeyService_RotatePassword_WrongOldPassword(t *testing.T) {
	svc, _ := newTestKeyService(t, nil)
	ctx := context.Background()

	_, err := svc.Initialize(ctx, "CorrectHorse1")
	require.NoError(t, err)

	err = svc.RotatePassword(ctx, "WrongPassword1", "NewPassword99")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestKeyService_DecryptPrivateKey(t *testing.T) {
	svc, _ := newTestKeyService(t, nil)
	ctx := context.Background()

	_, err := svc.Initialize(ctx, "CorrectHorse1")
	require.NoError(t, err)

	material, err := svc.Material(ctx)
	require.NoError(t, err)

	dataKey, err := svc.UnwrapDataKey(ctx, "CorrectHorse1")
	require.NoError(t, err)

	privateKey, err := svc.DecryptPrivateKey(material, dataKey)
	require.NoError(t, err)
	assert.Len(t, privateKey, pii.KeySize)

	// The recovered keypair round-trips field encryption.
	ciphertext, err := pii.EncryptField("checks out", material.PublicKey)
	require.NoError(t, err)
	plaintext, err := pii.DecryptField(ciphertext, material.PublicKey, privateKey)
	require.NoError(t, err)
	assert.Equal(t, "checks out", plaintext)
}

func TestKeyService_DecryptPrivateKey_WrongDataKey(t *testing.T) {
	svc, _ := newTestKeyService(t, nil)
	ctx := context.Background()

	_, err := svc.Initialize(ctx, "CorrectHorse1")
	require.NoError(t, err)

	material, err := svc.Material(ctx)
	require.NoError(t, err)

	wrongKey := make([]byte, keyringDomain.KeySize)
	_, err = svc.DecryptPrivateKey(material, wrongKey)
	assert.ErrorIs(t, err, keyringDomain.ErrUnwrapFailed)
}
