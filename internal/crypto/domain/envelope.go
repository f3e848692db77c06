package domain

import (
	"time"
)

// EncryptedEnvelope is the persisted form of a single protected entry.
// One envelope exists per record id; it is replaced on every update and
// deleted only when the user deletes the entry or resets the installation.
// Envelopes are opaque to every component except the cipher engine.
type EncryptedEnvelope struct {
	RecordID   string    // Identifier of the protected entry
	Version    int       // On-disk format version for future migrations
	Algorithm  Algorithm // AEAD algorithm that produced the ciphertext
	Nonce      []byte    // Fresh random nonce, never reused under the same DEK
	Ciphertext []byte    // Encrypted canonical serialization of the entry
	AuthTag    []byte    // Authentication tag over ciphertext and record id
	CreatedAt  time.Time
}

// Validate checks the structural integrity of a decoded envelope.
func (e *EncryptedEnvelope) Validate() error {
	if e.Version != EnvelopeVersion {
		return ErrIntegrityCheckFailed
	}
	if e.RecordID == "" || len(e.Nonce) == 0 || len(e.AuthTag) != TagSize {
		return ErrIntegrityCheckFailed
	}
	return nil
}
