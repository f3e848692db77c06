package service

import (
	"golang.org/x/crypto/argon2"

	cryptoDomain "github.com/vitaldiary/entryvault/internal/crypto/domain"
	apperrors "github.com/vitaldiary/entryvault/internal/errors"
)

// Argon2Deriver implements KeyDeriver using Argon2id.
//
// Argon2id is memory-hard, which makes offline passphrase guessing
// expensive even on GPU rigs. The work parameters travel inside the
// wrapped key record so every later derivation reproduces the same KEK;
// the deriver itself is stateless and safe for concurrent use.
type Argon2Deriver struct{}

// NewArgon2Deriver creates a new Argon2Deriver.
func NewArgon2Deriver() *Argon2Deriver {
	return &Argon2Deriver{}
}

// Derive returns the 32-byte key-encryption key for (passphrase, salt,
// params). The passphrase is only read for the duration of the call and
// never retained; callers zero the returned key when done with it.
//
// Returns ErrInvalidSalt when the salt is too short to defeat
// precomputed-table attacks, ErrInvalidKdfParams for out-of-bounds work
// parameters, and ErrInvalidInput for an empty passphrase.
func (d *Argon2Deriver) Derive(
	passphrase, salt []byte,
	params cryptoDomain.KdfParams,
) ([]byte, error) {
	if len(passphrase) == 0 {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "empty passphrase")
	}
	if len(salt) < cryptoDomain.SaltSize {
		return nil, cryptoDomain.ErrInvalidSalt
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	kek := argon2.IDKey(
		passphrase,
		salt,
		params.Time,
		params.MemoryKiB,
		params.Threads,
		cryptoDomain.KeySize,
	)
	return kek, nil
}
