package pii

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/ticketbox/internal/errors"
)

func TestGenerateKeypair(t *testing.T) {
	publicKey, privateKey, err := GenerateKeypair()
	require.NoError(t, err)
	assert.Len(t, publicKey, KeySize)
	assert.Len(t, privateKey, KeySize)
	assert.NotEqual(t, publicKey, privateKey)
}

func TestEncryptDecryptField(t *testing.T) {
	publicKey, privateKey, err := GenerateKeypair()
	require.NoError(t, err)

	ciphertext, err := EncryptField("alice@example.com", publicKey)
	require.NoError(t, err)
	assert.NotContains(t, string(ciphertext), "alice")

	plaintext, err := DecryptField(ciphertext, publicKey, privateKey)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", plaintext)
}

func TestEncryptField_EmptyString(t *testing.T) {
	publicKey, privateKey, err := GenerateKeypair()
	require.NoError(t, err)

	ciphertext, err := EncryptField("", publicKey)
	require.NoError(t, err)
	assert.NotEmpty(t, ciphertext)

	plaintext, err := DecryptField(ciphertext, publicKey, privateKey)
	require.NoError(t, err)
	assert.Equal(t, "", plaintext)
}

func TestEncryptField_NonDeterministic(t *testing.T) {
	publicKey, _, err := GenerateKeypair()
	require.NoError(t, err)

	first, err := EncryptField("same value", publicKey)
	require.NoError(t, err)
	second, err := EncryptField("same value", publicKey)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestEncryptField_InvalidKeySize(t *testing.T) {
	_, err := EncryptField("value", []byte("short"))
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestDecryptField_WrongKey(t *testing.T) {
	publicKey, _, err := GenerateKeypair()
	require.NoError(t, err)
	otherPublic, otherPrivate, err := GenerateKeypair()
	require.NoError(t, err)

	ciphertext, err := EncryptField("secret", publicKey)
	require.NoError(t, err)

	_, err = DecryptField(ciphertext, otherPublic, otherPrivate)
	assert.ErrorIs(t, err, ErrDecryptionFailed)
}

func TestDecryptField_TamperedCiphertext(t *testing.T) {
	publicKey, privateKey, err := GenerateKeypair()
	require.NoError(t, err)

	ciphertext, err := EncryptField("secret", publicKey)
	require.NoError(t, err)
	ciphertext[len(ciphertext)-1] ^= 0xff

	_, err = DecryptField(ciphertext, publicKey, privateKey)
	assert.ErrorIs(t, err, ErrDecryptionFailed)
}

func TestEncryptDecryptBool(t *testing.T) {
	publicKey, privateKey, err := GenerateKeypair()
	require.NoError(t, err)

	for _, value := range []bool{true, false} {
		ciphertext, err := EncryptBool(value, publicKey)
		require.NoError(t, err)

		decrypted, err := DecryptBool(ciphertext, publicKey, privateKey)
		require.NoError(t, err)
		assert.Equal(t, value, decrypted)
	}
}

func TestNewIndexer_EmptyKey(t *testing.T) {
	indexer, err := NewIndexer(nil)
	assert.Nil(t, indexer)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestIndexer_BlindIndex(t *testing.T) {
	indexer, err := NewIndexer([]byte("blind-index-key"))
	require.NoError(t, err)

	first := indexer.BlindIndex("alice@example.com")
	second := indexer.BlindIndex("alice@example.com")
	other := indexer.BlindIndex("bob@example.com")

	assert.Equal(t, first, second)
	assert.NotEqual(t, first, other)
	assert.Len(t, first, 64) // hex-encoded SHA-256
}

func TestIndexer_BlindIndex_KeyDependent(t *testing.T) {
	first, err := NewIndexer([]byte("key-one"))
	require.NoError(t, err)
	second, err := NewIndexer([]byte("key-two"))
	require.NoError(t, err)

	assert.NotEqual(t, first.BlindIndex("value"), second.BlindIndex("value"))
}
