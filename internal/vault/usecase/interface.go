// Package usecase implements the vault: the single owner of the unwrapped
// data-encryption key and the orchestration of key derivation, envelope
// encryption, passphrase rotation and installation reset.
package usecase

import (
	"context"

	cryptoDomain "github.com/vitaldiary/entryvault/internal/crypto/domain"
)

// Vault defines the interface for the encrypted entry store.
//
// All operations except Initialize and RotatePassphrase fail with
// ErrVaultLocked until a passphrase has been accepted. The unwrapped DEK
// never leaves the implementation.
type Vault interface {
	// Initialize unlocks the vault with passphrase. On a first run it
	// generates the key material and persists the wrapped key record; on
	// subsequent runs a wrong passphrase yields ErrUnwrapFailed.
	Initialize(ctx context.Context, passphrase []byte) error

	// EncryptEntry encrypts entry, persists the resulting envelope under
	// recordID (replacing any previous one) and returns it.
	EncryptEntry(ctx context.Context, recordID string, entry map[string]any) (*cryptoDomain.EncryptedEnvelope, error)

	// DecryptEntry authenticates and decrypts envelope. Tampered or
	// corrupted envelopes yield ErrIntegrityCheckFailed.
	DecryptEntry(ctx context.Context, envelope *cryptoDomain.EncryptedEnvelope) (map[string]any, error)

	// GetEntry loads and decrypts the stored envelope for recordID.
	GetEntry(ctx context.Context, recordID string) (map[string]any, error)

	// DeleteEntry removes the stored envelope for recordID.
	DeleteEntry(ctx context.Context, recordID string) error

	// RotatePassphrase re-wraps the DEK under a key derived from
	// newPassphrase. Stored envelopes are not touched. A failure before
	// the new record is persisted leaves the old passphrase valid and
	// returns ErrRotationAborted; a concurrent rotation returns
	// ErrRotationInProgress.
	RotatePassphrase(ctx context.Context, oldPassphrase, newPassphrase []byte) error

	// Reset deletes the wrapped key record and every stored envelope and
	// zeroes in-memory key material. All encrypted data becomes
	// unrecoverable.
	Reset(ctx context.Context) error

	// Close zeroes in-memory key material and locks the vault.
	Close()
}
