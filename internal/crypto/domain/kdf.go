package domain

import (
	"github.com/jellydator/validation"
)

// Default Argon2id parameters, following the OWASP recommendation.
const (
	DefaultKdfTime      uint32 = 3
	DefaultKdfMemoryKiB uint32 = 64 * 1024
	DefaultKdfThreads   uint8  = 4
)

// KdfParams holds the Argon2id work parameters used to derive the
// key-encryption key from a passphrase. The parameters chosen on first run
// are persisted inside the wrapped key record so later derivations
// reproduce the same key; they are never silently downgraded.
type KdfParams struct {
	Time      uint32 `json:"time"`
	MemoryKiB uint32 `json:"memoryKib"`
	Threads   uint8  `json:"threads"`
}

// DefaultKdfParams returns the default-strength derivation parameters.
func DefaultKdfParams() KdfParams {
	return KdfParams{
		Time:      DefaultKdfTime,
		MemoryKiB: DefaultKdfMemoryKiB,
		Threads:   DefaultKdfThreads,
	}
}

// Validate checks the parameters against acceptable bounds.
// Returns ErrInvalidKdfParams when any parameter is out of range.
func (p KdfParams) Validate() error {
	err := validation.ValidateStruct(&p,
		validation.Field(&p.Time, validation.Required, validation.Min(uint32(1))),
		validation.Field(&p.MemoryKiB, validation.Required, validation.Min(uint32(8*1024))),
		validation.Field(&p.Threads, validation.Required, validation.Min(uint8(1))),
	)
	if err != nil {
		return ErrInvalidKdfParams
	}
	return nil
}

// Strongest returns the element-wise maximum of p and other. Rotation uses
// it so a new wrapped key record is never created with weaker parameters
// than the record it replaces.
func (p KdfParams) Strongest(other KdfParams) KdfParams {
	out := p
	if other.Time > out.Time {
		out.Time = other.Time
	}
	if other.MemoryKiB > out.MemoryKiB {
		out.MemoryKiB = other.MemoryKiB
	}
	if other.Threads > out.Threads {
		out.Threads = other.Threads
	}
	return out
}
