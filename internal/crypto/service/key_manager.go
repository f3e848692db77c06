package service

import (
	"crypto/rand"
	"fmt"
	"time"

	cryptoDomain "github.com/vitaldiary/entryvault/internal/crypto/domain"
)

// KeyManagerService implements the KeyManager interface for envelope
// encryption of the vault's single data-encryption key.
//
// The DEK is generated exactly once per installation and never changes
// across passphrase rotations; only its wrapping (the KEK encryption)
// changes. The service resolves cipher backends through a BackendSelector
// so a record written under one algorithm stays decodable after the
// configured algorithm changes.
type KeyManagerService struct {
	selector BackendSelector
}

// NewKeyManager creates a new KeyManagerService with the provided
// backend selector.
func NewKeyManager(selector BackendSelector) *KeyManagerService {
	return &KeyManagerService{selector: selector}
}

// GenerateDek draws a fresh 256-bit data-encryption key from crypto/rand.
func (km *KeyManagerService) GenerateDek() ([]byte, error) {
	dek := make([]byte, cryptoDomain.KeySize)
	if _, err := rand.Read(dek); err != nil {
		return nil, fmt.Errorf("failed to generate DEK: %w", err)
	}
	return dek, nil
}

// GenerateSalt draws a fresh KDF salt from crypto/rand. Rotation always
// uses a new salt so an attacker holding an old KEK cannot narrow the
// search space for later passphrases.
func (km *KeyManagerService) GenerateSalt() ([]byte, error) {
	salt := make([]byte, cryptoDomain.SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	return salt, nil
}

// Wrap encrypts the DEK under the KEK and assembles the durable record.
// The salt and derivation parameters that produced the KEK are frozen
// into the record so the same KEK can be re-derived later.
func (km *KeyManagerService) Wrap(
	dek, kek, salt []byte,
	alg cryptoDomain.Algorithm,
	params cryptoDomain.KdfParams,
) (cryptoDomain.WrappedKeyRecord, error) {
	backend, err := km.selector.SelectBackend(alg)
	if err != nil {
		return cryptoDomain.WrappedKeyRecord{}, err
	}

	aead, err := backend.CreateCipher(kek)
	if err != nil {
		return cryptoDomain.WrappedKeyRecord{}, err
	}

	sealed, nonce, err := aead.Encrypt(dek, salt)
	if err != nil {
		return cryptoDomain.WrappedKeyRecord{}, fmt.Errorf("failed to wrap DEK: %w", err)
	}

	wrapped, tag := SplitAuthTag(sealed)
	record := cryptoDomain.WrappedKeyRecord{
		Version:    cryptoDomain.WrappedKeyRecordVersion,
		Algorithm:  alg,
		Salt:       salt,
		KdfParams:  params,
		WrappedDek: wrapped,
		Nonce:      nonce,
		AuthTag:    tag,
		CreatedAt:  time.Now().UTC(),
	}
	return record, nil
}

// Unwrap recovers the DEK from a record using the KEK derived from the
// supplied passphrase. An authentication failure returns ErrUnwrapFailed
// without distinguishing a wrong passphrase from a tampered record; that
// ambiguity is deliberate. Structural corruption detected before the
// cryptographic check is reported as ErrInvalidWrappedRecord/ErrInvalidSalt.
func (km *KeyManagerService) Unwrap(
	record *cryptoDomain.WrappedKeyRecord,
	kek []byte,
) ([]byte, error) {
	if err := record.Validate(); err != nil {
		return nil, err
	}

	backend, err := km.selector.SelectBackend(record.Algorithm)
	if err != nil {
		return nil, err
	}

	aead, err := backend.CreateCipher(kek)
	if err != nil {
		return nil, err
	}

	dek, err := aead.Decrypt(JoinAuthTag(record.WrappedDek, record.AuthTag), record.Nonce, record.Salt)
	if err != nil {
		return nil, cryptoDomain.ErrUnwrapFailed
	}
	return dek, nil
}

// SplitAuthTag separates the trailing 16-byte authentication tag from a
// sealed AEAD output so tag and ciphertext can be persisted as distinct
// fields. The caller guarantees sealed is a full AEAD output.
func SplitAuthTag(sealed []byte) (ciphertext, tag []byte) {
	cut := len(sealed) - cryptoDomain.TagSize
	return sealed[:cut], sealed[cut:]
}

// JoinAuthTag reassembles a sealed AEAD output from its persisted
// ciphertext and tag fields.
func JoinAuthTag(ciphertext, tag []byte) []byte {
	sealed := make([]byte, 0, len(ciphertext)+len(tag))
	sealed = append(sealed, ciphertext...)
	return append(sealed, tag...)
}
