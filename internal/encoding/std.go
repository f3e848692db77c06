package encoding

import (
	"encoding/base64"
)

// StdCodec implements Codec on the native base64 fast path.
type StdCodec struct{}

// NewStdCodec creates a codec backed by encoding/base64 standard encoding.
func NewStdCodec() *StdCodec {
	return &StdCodec{}
}

// ToText encodes data as standard base64 with padding.
func (c *StdCodec) ToText(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// FromText decodes standard base64 text.
func (c *StdCodec) FromText(text string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(text)
	if err != nil {
		return nil, ErrMalformedText
	}
	return data, nil
}
