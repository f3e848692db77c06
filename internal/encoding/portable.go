package encoding

// PortableCodec implements Codec without the native base64 primitive,
// for constrained environments where only the manual path is available.
// It emits the same standard alphabet with padding as StdCodec so the
// two are byte-for-byte interchangeable.
type PortableCodec struct{}

const portableAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

// NewPortableCodec creates the manual fallback codec.
func NewPortableCodec() *PortableCodec {
	return &PortableCodec{}
}

// ToText encodes data as standard base64 with padding.
func (c *PortableCodec) ToText(data []byte) string {
	if len(data) == 0 {
		return ""
	}

	out := make([]byte, 0, ((len(data)+2)/3)*4)
	for i := 0; i < len(data); i += 3 {
		var chunk [3]byte
		n := copy(chunk[:], data[i:])

		out = append(out, portableAlphabet[chunk[0]>>2])
		out = append(out, portableAlphabet[(chunk[0]&0x03)<<4|chunk[1]>>4])
		if n > 1 {
			out = append(out, portableAlphabet[(chunk[1]&0x0f)<<2|chunk[2]>>6])
		} else {
			out = append(out, '=')
		}
		if n > 2 {
			out = append(out, portableAlphabet[chunk[2]&0x3f])
		} else {
			out = append(out, '=')
		}
	}
	return string(out)
}

// FromText decodes standard base64 text, including text produced by StdCodec.
func (c *PortableCodec) FromText(text string) ([]byte, error) {
	if text == "" {
		return []byte{}, nil
	}
	if len(text)%4 != 0 {
		return nil, ErrMalformedText
	}

	padding := 0
	for i := len(text) - 1; i >= 0 && text[i] == '='; i-- {
		padding++
	}
	if padding > 2 {
		return nil, ErrMalformedText
	}

	out := make([]byte, 0, len(text)/4*3)
	for i := 0; i < len(text); i += 4 {
		var quantum uint32
		valid := 3
		for j := 0; j < 4; j++ {
			ch := text[i+j]
			if ch == '=' {
				// Padding is only legal at the tail of the final quantum.
				if i+4 != len(text) || j < 2 || (j == 2 && text[i+3] != '=') {
					return nil, ErrMalformedText
				}
				valid = j - 1
				quantum <<= 6 * uint(4-j)
				break
			}
			v := portableIndex(ch)
			if v < 0 {
				return nil, ErrMalformedText
			}
			quantum = quantum<<6 | uint32(v)
		}

		out = append(out, byte(quantum>>16))
		if valid > 1 {
			out = append(out, byte(quantum>>8))
		}
		if valid > 2 {
			out = append(out, byte(quantum))
		}
	}
	return out, nil
}

// portableIndex returns the 6-bit value of an alphabet character, or -1.
func portableIndex(ch byte) int {
	switch {
	case ch >= 'A' && ch <= 'Z':
		return int(ch - 'A')
	case ch >= 'a' && ch <= 'z':
		return int(ch-'a') + 26
	case ch >= '0' && ch <= '9':
		return int(ch-'0') + 52
	case ch == '+':
		return 62
	case ch == '/':
		return 63
	default:
		return -1
	}
}
