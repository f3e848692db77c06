// Package domain defines the core cryptographic domain models for the
// entry vault's envelope encryption.
//
// The key hierarchy is passphrase → KEK → DEK → entries. The KEK is derived
// from the passphrase and a persisted salt and only ever exists in memory.
// The DEK is generated once per installation, encrypts all entry content,
// and is persisted exclusively in wrapped (KEK-encrypted) form. Rotating
// the passphrase re-wraps the DEK without touching any encrypted entry.
package domain

import (
	"time"
)

// WrappedKeyRecord is the only durable artifact describing how to recover
// the data-encryption key. It is created on first run and atomically
// replaced (never appended to) on each successful passphrase rotation.
type WrappedKeyRecord struct {
	Version    int       // On-disk format version for future migrations
	Algorithm  Algorithm // AEAD algorithm that wrapped the DEK
	Salt       []byte    // Public KDF salt, fresh per rotation
	KdfParams  KdfParams // Derivation parameters frozen at wrap time
	WrappedDek []byte    // The DEK encrypted under the derived KEK
	Nonce      []byte    // Nonce used when wrapping the DEK
	AuthTag    []byte    // Authentication tag over the wrapped DEK
	CreatedAt  time.Time
}

// Validate checks the structural integrity of a decoded record.
// It detects corruption that precedes any cryptographic check; an
// authentication failure on structurally valid data is reported as
// ErrUnwrapFailed by the key manager instead.
func (r *WrappedKeyRecord) Validate() error {
	if r.Version != WrappedKeyRecordVersion {
		return ErrInvalidWrappedRecord
	}
	if len(r.Salt) < SaltSize {
		return ErrInvalidSalt
	}
	if len(r.WrappedDek) == 0 || len(r.Nonce) == 0 || len(r.AuthTag) != TagSize {
		return ErrInvalidWrappedRecord
	}
	return r.KdfParams.Validate()
}
