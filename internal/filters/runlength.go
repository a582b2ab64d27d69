package filters

import (
	"bytes"

	"github.com/pkg/errors"
)

// RunLengthDecode decodes byte-oriented run-length data. A length byte L in
// 0..127 copies the next L+1 bytes, 129..255 repeats the next byte 257-L
// times, and 128 ends the data.
func RunLengthDecode(data []byte) ([]byte, error) {
	var result bytes.Buffer

	for i := 0; i < len(data); {
		l := data[i]
		i++
		switch {
		case l == 128:
			return result.Bytes(), nil
		case l < 128:
			n := int(l) + 1
			if i+n > len(data) {
				return nil, errors.Errorf("run-length literal of %d bytes truncated at offset %d", n, i)
			}
			result.Write(data[i : i+n])
			i += n
		default:
			if i >= len(data) {
				return nil, errors.Errorf("run-length repeat truncated at offset %d", i)
			}
			result.Write(bytes.Repeat(data[i:i+1], 257-int(l)))
			i++
		}
	}

	return result.Bytes(), nil
}

type runLengthCodec struct{}

func (runLengthCodec) Name() string { return "RunLengthDecode" }

func (runLengthCodec) Decode(data []byte, _ Params) ([]byte, error) {
	return RunLengthDecode(data)
}
