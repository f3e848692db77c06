// Package encoding converts binary cryptographic material to and from the
// text-safe representation required by the storage adapter.
//
// Two interchangeable implementations exist: StdCodec on the native
// encoding/base64 fast path, and PortableCodec, a manual implementation for
// constrained environments without the native primitive. Byte-identical
// round trips across both are a tested property, not an accident.
package encoding

import (
	apperrors "github.com/vitaldiary/entryvault/internal/errors"
)

// Codec converts between raw bytes and a text-safe representation.
// Implementations must round-trip every input exactly and must produce
// identical text for identical input so either codec can read data
// written by the other.
type Codec interface {
	// ToText encodes raw bytes as text safe for the storage adapter.
	ToText(data []byte) string

	// FromText decodes text produced by ToText (by any Codec implementation).
	FromText(text string) ([]byte, error)
}

// ErrMalformedText indicates the input is not valid codec output.
var ErrMalformedText = apperrors.Wrap(apperrors.ErrInvalidInput, "malformed text encoding")
