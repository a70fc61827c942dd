package service

import (
	keyringDomain "github.com/allisson/ticketbox/internal/keyring/domain"
)

// AEADManagerService implements the AEADManager interface for creating AEAD cipher instances.
type AEADManagerService struct{}

// NewAEADManager creates a new AEADManagerService.
func NewAEADManager() *AEADManagerService {
	return &AEADManagerService{}
}

// CreateCipher creates an AEAD cipher instance for the specified algorithm.
// Returns ErrInvalidKeySize if key is not 32 bytes or ErrUnsupportedAlgorithm if algorithm is unknown.
func (am *AEADManagerService) CreateCipher(key []byte, alg keyringDomain.Algorithm) (AEAD, error) {
	if len(key) != keyringDomain.KeySize {
		return nil, keyringDomain.ErrInvalidKeySize
	}

	switch alg {
	case keyringDomain.AESGCM:
		return NewAESGCM(key)
	case keyringDomain.ChaCha20:
		return NewChaCha20Poly1305(key)
	default:
		return nil, keyringDomain.ErrUnsupportedAlgorithm
	}
}
