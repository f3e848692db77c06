package domain

import (
	"github.com/vitaldiary/entryvault/internal/errors"
)

// Cryptographic operation error definitions.
//
// These domain-specific errors wrap standard errors from internal/errors
// so callers can classify failures with errors.Is without learning which
// low-level primitive produced them. Error text never carries key material,
// passphrases or entry content.
var (
	// ErrBackendUnavailable indicates no usable cipher backend could be
	// selected for the current context. Fatal: the installation cannot
	// secure data on this device. Returned instead of silently degrading
	// to a weaker cipher.
	ErrBackendUnavailable = errors.Wrap(errors.ErrUnavailable, "cipher backend unavailable")

	// ErrUnsupportedAlgorithm indicates the requested encryption algorithm
	// is not supported. Supported: AESGCM, ChaCha20 and, in flagged
	// test/dev contexts only, InsecureXOR.
	ErrUnsupportedAlgorithm = errors.Wrap(errors.ErrInvalidInput, "unsupported algorithm")

	// ErrInvalidKeySize indicates a key is not exactly 32 bytes.
	ErrInvalidKeySize = errors.Wrap(errors.ErrInvalidInput, "invalid key size")

	// ErrInvalidSalt indicates the KDF salt is missing or too short to
	// reproduce the key-encryption key.
	ErrInvalidSalt = errors.Wrap(errors.ErrInvalidInput, "invalid salt")

	// ErrInvalidKdfParams indicates persisted or configured key derivation
	// parameters are outside acceptable bounds.
	ErrInvalidKdfParams = errors.Wrap(errors.ErrInvalidInput, "invalid kdf parameters")

	// ErrInvalidWrappedRecord indicates the persisted wrapped key record is
	// structurally unreadable (unknown version, malformed or missing
	// fields). The data encryption key cannot be recovered from it;
	// recovery requires resetting the installation.
	ErrInvalidWrappedRecord = errors.Wrap(errors.ErrInvalidInput, "invalid wrapped key record")

	// ErrUnwrapFailed indicates the data encryption key could not be
	// unwrapped. The passphrase may be wrong or the record may have been
	// tampered with; the two causes are intentionally indistinguishable.
	ErrUnwrapFailed = errors.Wrap(errors.ErrInvalidInput, "unwrap failed")

	// ErrIntegrityCheckFailed indicates an entry envelope failed
	// authentication during decryption. That envelope is unrecoverable;
	// other envelopes are unaffected. Decryption is all-or-nothing and
	// never returns partial output.
	ErrIntegrityCheckFailed = errors.Wrap(errors.ErrInvalidInput, "integrity check failed")

	// ErrRotationAborted indicates a passphrase rotation stopped before
	// any mutation, typically because the old passphrase failed to unwrap
	// the data encryption key. Retryable.
	ErrRotationAborted = errors.Wrap(errors.ErrConflict, "rotation aborted")

	// ErrRotationInProgress indicates another rotation holds the exclusive
	// section. Retryable once the in-flight rotation finishes.
	ErrRotationInProgress = errors.Wrap(errors.ErrConflict, "rotation in progress")

	// ErrVaultLocked indicates the operation requires a successfully
	// initialized vault with the data encryption key in memory.
	ErrVaultLocked = errors.Wrap(errors.ErrLocked, "vault locked")
)
