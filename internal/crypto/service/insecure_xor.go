package service

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	cryptoDomain "github.com/vitaldiary/entryvault/internal/crypto/domain"
)

// InsecureXORCipher is the synthetic test-only AEAD implementation.
//
// It XORs plaintext with a SHA-256 counter keystream and authenticates
// with an HMAC-SHA256 tag truncated to 16 bytes. It mirrors the native
// ciphers' interface and failure semantics — fresh random nonce per call,
// tag appended to the ciphertext, deterministic all-or-nothing failure on
// tag mismatch — so the test suite exercises identical code paths, but it
// carries none of the native ciphers' security margins and must never be
// selectable in production. The capability probe enforces that gate.
type InsecureXORCipher struct {
	key []byte
}

// NewInsecureXOR creates a new synthetic cipher bound to a 32-byte key.
func NewInsecureXOR(key []byte) (*InsecureXORCipher, error) {
	if len(key) != cryptoDomain.KeySize {
		return nil, cryptoDomain.ErrInvalidKeySize
	}

	held := make([]byte, len(key))
	copy(held, key)
	return &InsecureXORCipher{key: held}, nil
}

// keystream XORs data in place with SHA-256(key || nonce || counter) blocks.
func (i *InsecureXORCipher) keystream(data, nonce []byte) {
	var counter uint32
	block := make([]byte, 0, sha256.Size)
	for offset := 0; offset < len(data); offset += sha256.Size {
		h := sha256.New()
		h.Write(i.key)
		h.Write(nonce)
		var counterBytes [4]byte
		binary.BigEndian.PutUint32(counterBytes[:], counter)
		h.Write(counterBytes[:])
		block = h.Sum(block[:0])

		for j := 0; j < sha256.Size && offset+j < len(data); j++ {
			data[offset+j] ^= block[j]
		}
		counter++
	}
}

// tag computes the truncated HMAC-SHA256 authentication tag over
// nonce, AAD and ciphertext.
func (i *InsecureXORCipher) tag(nonce, aad, ciphertext []byte) []byte {
	mac := hmac.New(sha256.New, i.key)
	mac.Write(nonce)
	mac.Write(aad)
	mac.Write(ciphertext)
	return mac.Sum(nil)[:cryptoDomain.TagSize]
}

// Encrypt encrypts plaintext with the keystream and appends the
// authentication tag, matching the native ciphers' output shape.
func (i *InsecureXORCipher) Encrypt(plaintext, aad []byte) (ciphertext, nonce []byte, err error) {
	nonce = make([]byte, 12)
	if _, err := rand.Read(nonce); err != nil {
		return nil, nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	body := make([]byte, len(plaintext))
	copy(body, plaintext)
	i.keystream(body, nonce)

	ciphertext = append(body, i.tag(nonce, aad, body)...)
	return ciphertext, nonce, nil
}

// Decrypt verifies the tag in constant time before recovering plaintext.
// On mismatch it returns an error and no output, like the native ciphers.
func (i *InsecureXORCipher) Decrypt(ciphertext, nonce, aad []byte) ([]byte, error) {
	if len(ciphertext) < cryptoDomain.TagSize {
		return nil, fmt.Errorf("failed to decrypt: ciphertext too short")
	}

	body := ciphertext[:len(ciphertext)-cryptoDomain.TagSize]
	tag := ciphertext[len(ciphertext)-cryptoDomain.TagSize:]
	if !hmac.Equal(tag, i.tag(nonce, aad, body)) {
		return nil, fmt.Errorf("failed to decrypt: authentication failed")
	}

	plaintext := make([]byte, len(body))
	copy(plaintext, body)
	i.keystream(plaintext, nonce)
	return plaintext, nil
}
