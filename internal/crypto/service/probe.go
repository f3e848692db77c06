package service

import (
	"crypto/rand"

	cryptoDomain "github.com/vitaldiary/entryvault/internal/crypto/domain"
)

// nativeBackend creates AEAD instances for one of the native algorithms.
type nativeBackend struct {
	alg cryptoDomain.Algorithm
}

// Algorithm identifies the algorithm this backend implements.
func (b *nativeBackend) Algorithm() cryptoDomain.Algorithm {
	return b.alg
}

// CreateCipher creates an AEAD cipher instance bound to the given key.
func (b *nativeBackend) CreateCipher(key []byte) (AEAD, error) {
	switch b.alg {
	case cryptoDomain.AESGCM:
		return NewAESGCM(key)
	case cryptoDomain.ChaCha20:
		return NewChaCha20Poly1305(key)
	default:
		return nil, cryptoDomain.ErrUnsupportedAlgorithm
	}
}

// insecureBackend creates the synthetic test-only cipher.
type insecureBackend struct{}

func (b *insecureBackend) Algorithm() cryptoDomain.Algorithm {
	return cryptoDomain.InsecureXOR
}

func (b *insecureBackend) CreateCipher(key []byte) (AEAD, error) {
	return NewInsecureXOR(key)
}

// CapabilityProbe selects cipher backends for the current runtime context.
//
// Native backends are verified by constructing a throwaway cipher with a
// scratch key; if that fails the probe reports ErrBackendUnavailable
// instead of letting a broken runtime degrade to a weaker cipher. The
// synthetic backend requires a non-production context AND the explicit
// insecure flag — two independent switches, so a single misconfiguration
// can never downgrade a real deployment. In production the flag is
// ignored entirely.
type CapabilityProbe struct {
	production    bool
	allowInsecure bool
}

// NewCapabilityProbe creates a probe for the given deployment context.
func NewCapabilityProbe(production, allowInsecure bool) *CapabilityProbe {
	return &CapabilityProbe{
		production:    production,
		allowInsecure: allowInsecure,
	}
}

// SelectBackend returns the backend implementing alg, or
// ErrBackendUnavailable when the algorithm is not selectable in this
// context, or ErrUnsupportedAlgorithm for unknown algorithms.
func (p *CapabilityProbe) SelectBackend(alg cryptoDomain.Algorithm) (CipherBackend, error) {
	switch alg {
	case cryptoDomain.AESGCM, cryptoDomain.ChaCha20:
		backend := &nativeBackend{alg: alg}
		if err := probeNative(backend); err != nil {
			return nil, cryptoDomain.ErrBackendUnavailable
		}
		return backend, nil
	case cryptoDomain.InsecureXOR:
		if p.production || !p.allowInsecure {
			return nil, cryptoDomain.ErrBackendUnavailable
		}
		return &insecureBackend{}, nil
	default:
		return nil, cryptoDomain.ErrUnsupportedAlgorithm
	}
}

// probeNative verifies the native primitive works end to end with a
// scratch key before the backend is handed out.
func probeNative(backend CipherBackend) error {
	scratch := make([]byte, cryptoDomain.KeySize)
	if _, err := rand.Read(scratch); err != nil {
		return err
	}
	defer cryptoDomain.Zero(scratch)

	aead, err := backend.CreateCipher(scratch)
	if err != nil {
		return err
	}

	ciphertext, nonce, err := aead.Encrypt([]byte("probe"), nil)
	if err != nil {
		return err
	}
	if _, err := aead.Decrypt(ciphertext, nonce, nil); err != nil {
		return err
	}
	return nil
}
