package domain

import (
	"github.com/allisson/ticketbox/internal/errors"
)

// Key hierarchy error definitions.
var (
	// ErrKeyMaterialNotFound indicates the deployment has not been initialized.
	// This is a configuration error: operator setup is required, retrying is
	// pointless.
	ErrKeyMaterialNotFound = errors.Wrap(errors.ErrNotFound, "key material not provisioned")

	// ErrAlreadyInitialized indicates key material already exists. The data key
	// is generated exactly once; re-initialization would orphan every
	// ciphertext in the ledger.
	ErrAlreadyInitialized = errors.Wrap(errors.ErrConflict, "key material already initialized")

	// ErrUnsupportedAlgorithm indicates an unknown wrap algorithm was requested.
	ErrUnsupportedAlgorithm = errors.Wrap(errors.ErrInvalidInput, "unsupported algorithm")

	// ErrInvalidKeySize indicates key material of the wrong length.
	ErrInvalidKeySize = errors.Wrap(errors.ErrInvalidInput, "invalid key size")

	// ErrUnwrapFailed indicates the stored wrapping could not be opened even
	// though the password hash verified. This points at corrupt key material,
	// which is fatal and distinct from the ordinary wrong-password path.
	ErrUnwrapFailed = errors.Wrap(errors.ErrInvalidInput, "unwrap failed")
)
