package domain

// Algorithm represents the AEAD algorithm used to wrap key material.
// Both options provide authenticated encryption with 256-bit keys; AESGCM is
// preferable on hardware with AES-NI, ChaCha20 elsewhere.
type Algorithm string

const (
	// AESGCM is AES-256-GCM.
	AESGCM Algorithm = "aes-gcm"

	// ChaCha20 is ChaCha20-Poly1305.
	ChaCha20 Algorithm = "chacha20-poly1305"
)

// KeySize is the byte length of the data key and every derived KEK.
const KeySize = 32
