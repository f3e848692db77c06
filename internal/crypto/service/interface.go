// Package service provides the cryptographic services behind the entry
// vault: AEAD ciphers, runtime backend selection, passphrase key derivation
// and DEK wrapping/unwrapping.
package service

import (
	cryptoDomain "github.com/vitaldiary/entryvault/internal/crypto/domain"
)

// AEAD defines the interface for Authenticated Encryption with Associated Data.
type AEAD interface {
	// Encrypt encrypts plaintext with optional AAD and returns the sealed
	// ciphertext (authentication tag appended) and the fresh nonce used.
	Encrypt(plaintext, aad []byte) (ciphertext, nonce []byte, err error)

	// Decrypt decrypts ciphertext using the provided nonce and AAD.
	Decrypt(ciphertext, nonce, aad []byte) ([]byte, error)
}

// CipherBackend creates AEAD cipher instances for one algorithm. Backends
// form a small closed set selected once at startup by the CapabilityProbe.
type CipherBackend interface {
	// Algorithm identifies the algorithm this backend implements.
	Algorithm() cryptoDomain.Algorithm

	// CreateCipher creates an AEAD instance bound to the given 32-byte key.
	CreateCipher(key []byte) (AEAD, error)
}

// BackendSelector resolves an algorithm to a usable cipher backend for the
// current runtime context, failing loudly rather than degrading silently.
type BackendSelector interface {
	// SelectBackend returns the backend for alg or ErrBackendUnavailable /
	// ErrUnsupportedAlgorithm.
	SelectBackend(alg cryptoDomain.Algorithm) (CipherBackend, error)
}

// KeyDeriver turns a passphrase and a persisted salt into a key-encryption
// key using a deliberately expensive derivation function.
type KeyDeriver interface {
	// Derive returns a 32-byte KEK. The passphrase is read but never
	// retained; the caller zeroes the returned key after use.
	Derive(passphrase, salt []byte, params cryptoDomain.KdfParams) ([]byte, error)
}

// KeyManager owns the data-encryption key lifecycle: generation, wrapping
// under a KEK into the durable record format, and unwrapping.
type KeyManager interface {
	// GenerateDek draws a fresh 256-bit data-encryption key.
	GenerateDek() ([]byte, error)

	// GenerateSalt draws a fresh KDF salt.
	GenerateSalt() ([]byte, error)

	// Wrap encrypts the DEK under the KEK and returns the durable record,
	// tagged with version, algorithm and the derivation inputs.
	Wrap(
		dek, kek, salt []byte,
		alg cryptoDomain.Algorithm,
		params cryptoDomain.KdfParams,
	) (cryptoDomain.WrappedKeyRecord, error)

	// Unwrap recovers the DEK from a record. Authentication failure yields
	// ErrUnwrapFailed regardless of whether the KEK was wrong or the
	// record was tampered with.
	Unwrap(record *cryptoDomain.WrappedKeyRecord, kek []byte) ([]byte, error)
}
