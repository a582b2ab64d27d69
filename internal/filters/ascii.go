package filters

import (
	"bytes"

	"github.com/pkg/errors"
)

// ASCIIHexDecode decodes ASCII hexadecimal encoded data.
// Each pair of hexadecimal digits (0-9, A-F, a-f) represents one byte.
// Whitespace is ignored, and > marks end of data.
func ASCIIHexDecode(data []byte) ([]byte, error) {
	var result bytes.Buffer

	i := 0
	for i < len(data) {
		// Skip whitespace
		if isWhitespace(data[i]) {
			i++
			continue
		}

		// Check for EOD marker
		if data[i] == '>' {
			break
		}

		// Read two hex digits
		if i+1 >= len(data) {
			// Odd number of digits - assume trailing 0
			b, err := hexDigitToByte(data[i])
			if err != nil {
				return nil, err
			}
			result.WriteByte(b << 4)
			break
		}

		// Get first hex digit
		b1, err := hexDigitToByte(data[i])
		if err != nil {
			return nil, err
		}
		i++

		// Skip whitespace before second digit
		for i < len(data) && isWhitespace(data[i]) {
			i++
		}

		if i >= len(data) || data[i] == '>' {
			// Odd number of digits
			result.WriteByte(b1 << 4)
			break
		}

		// Get second hex digit
		b2, err := hexDigitToByte(data[i])
		if err != nil {
			return nil, err
		}
		i++

		// Combine two hex digits into one byte
		result.WriteByte((b1 << 4) | b2)
	}

	return result.Bytes(), nil
}

// ASCII85Decode decodes ASCII base-85 data. Five digits ('!' to 'u') encode
// four bytes, 'z' stands for four zero bytes and "~>" ends the data. A final
// group of n digits (2 to 4) yields n-1 bytes. Whitespace is ignored and a
// leading "<~" is skipped.
func ASCII85Decode(data []byte) ([]byte, error) {
	start := 0
	for start < len(data) && isWhitespace(data[start]) {
		start++
	}
	data = bytes.TrimPrefix(data[start:], []byte("<~"))

	out := make([]byte, 0, len(data)*4/5+4)
	var group [5]byte
	n := 0
	for i := 0; i < len(data); i++ {
		c := data[i]
		switch {
		case isWhitespace(c):
			continue
		case c == '~':
			if i+1 < len(data) && data[i+1] == '>' {
				return flush85(out, group[:n])
			}
			return nil, errors.Errorf("ASCII85: '~' not followed by '>' at offset %d", i)
		case c == 'z':
			if n != 0 {
				return nil, errors.Errorf("ASCII85: 'z' inside a group at offset %d", i)
			}
			out = append(out, 0, 0, 0, 0)
			continue
		case c < '!' || c > 'u':
			return nil, errors.Errorf("invalid ASCII85 character: %c", c)
		}

		group[n] = c - '!'
		n++
		if n == 5 {
			v, err := value85(group[:])
			if err != nil {
				return nil, err
			}
			out = append(out, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
			n = 0
		}
	}
	return flush85(out, group[:n])
}

// flush85 decodes a final partial group, padding it with 'u'.
func flush85(out, digits []byte) ([]byte, error) {
	switch len(digits) {
	case 0:
		return out, nil
	case 1:
		return nil, errors.New("ASCII85: final group has a single digit")
	}
	var padded [5]byte
	copy(padded[:], digits)
	for i := len(digits); i < 5; i++ {
		padded[i] = 84
	}
	v, err := value85(padded[:])
	if err != nil {
		return nil, err
	}
	for i := 0; i < len(digits)-1; i++ {
		out = append(out, byte(v>>(24-8*i)))
	}
	return out, nil
}

// value85 returns the 32-bit value of five base-85 digits.
func value85(digits []byte) (uint32, error) {
	var v uint64
	for _, d := range digits {
		v = v*85 + uint64(d)
	}
	if v > 0xFFFFFFFF {
		return 0, errors.Errorf("ASCII85: group %q exceeds 32 bits", digitsText(digits))
	}
	return uint32(v), nil
}

func digitsText(digits []byte) string {
	b := make([]byte, len(digits))
	for i, d := range digits {
		b[i] = d + '!'
	}
	return string(b)
}

// hexDigitToByte converts a hexadecimal character to its numeric value (0-15).
func hexDigitToByte(c byte) (byte, error) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', nil
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, nil
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, nil
	default:
		return 0, errors.Errorf("invalid hex digit: %c", c)
	}
}

// isWhitespace reports whether c is a PDF whitespace character.
func isWhitespace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '\f' || c == 0
}

type asciiHexCodec struct{}

func (asciiHexCodec) Name() string { return "ASCIIHexDecode" }

func (asciiHexCodec) Decode(data []byte, _ Params) ([]byte, error) {
	return ASCIIHexDecode(data)
}

type ascii85Codec struct{}

func (ascii85Codec) Name() string { return "ASCII85Decode" }

func (ascii85Codec) Decode(data []byte, _ Params) ([]byte, error) {
	return ASCII85Decode(data)
}
