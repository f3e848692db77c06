package domain

// Algorithm represents the cryptographic algorithm used for authenticated
// encryption of wrapped keys and entry envelopes.
//
// The native algorithms provide Authenticated Encryption with Associated Data
// (AEAD), ensuring both confidentiality and authenticity. The synthetic
// algorithm exists only so test suites can run without the native primitives
// and is rejected outside explicitly flagged test/dev contexts.
type Algorithm string

const (
	// AESGCM represents the AES-256-GCM authenticated encryption algorithm.
	//
	// Uses a 256-bit key, a 12-byte nonce and a 16-byte authentication tag.
	// Preferred on CPUs with AES-NI hardware acceleration.
	AESGCM Algorithm = "aes-gcm"

	// ChaCha20 represents the ChaCha20-Poly1305 authenticated encryption algorithm.
	//
	// Uses a 256-bit key, a 12-byte nonce and a 16-byte authentication tag.
	// Constant-time in software, preferred on platforms without AES-NI.
	ChaCha20 Algorithm = "chacha20-poly1305"

	// InsecureXOR represents the synthetic test-only cipher.
	//
	// A SHA-256 counter keystream with a truncated HMAC-SHA256 tag. It
	// implements the same interface and failure semantics as the native
	// algorithms but provides none of their security margins. Selectable
	// only in a test or development context with the insecure-backend
	// flag explicitly set.
	InsecureXOR Algorithm = "insecure-xor"
)

const (
	// KeySize is the size in bytes of every symmetric key (KEK and DEK).
	KeySize = 32

	// TagSize is the size in bytes of the authentication tag for all
	// supported algorithms.
	TagSize = 16

	// SaltSize is the size in bytes of freshly generated KDF salts.
	SaltSize = 16

	// WrappedKeyRecordVersion is the current on-disk format version of
	// the wrapped key record.
	WrappedKeyRecordVersion = 1

	// EnvelopeVersion is the current on-disk format version of entry
	// envelopes.
	EnvelopeVersion = 1
)
