package filters

import (
	"bytes"

	"github.com/hhrutter/lzw"
	"github.com/pkg/errors"
)

// LZWDecode decompresses LZW compressed data. EarlyChange defaults to 1, in
// which case the code width grows one code early. Predictors are applied as
// for FlateDecode.
func LZWDecode(data []byte, params Params) ([]byte, error) {
	return lzwDecode(data, params, 0)
}

func lzwDecode(data []byte, params Params, limit int) ([]byte, error) {
	earlyChange := getIntParam(params, "EarlyChange", 1)

	rc := lzw.NewReader(bytes.NewReader(data), earlyChange == 1)
	defer rc.Close()

	buf, err := readLimited(rc, limit)
	if errors.Is(err, ErrLimitExceeded) {
		return nil, err
	}
	if err != nil && buf.Len() == 0 {
		return nil, errors.Wrap(err, "lzw decompression failed")
	}

	out, err := applyPredictor(buf.Bytes(), params)
	if err != nil {
		return nil, errors.Wrap(err, "predictor failed")
	}
	return out, nil
}

type lzwCodec struct{}

func (lzwCodec) Name() string { return "LZWDecode" }

func (lzwCodec) Decode(data []byte, params Params) ([]byte, error) {
	return lzwDecode(data, params, 0)
}

func (lzwCodec) DecodeLimited(data []byte, params Params, limit int) ([]byte, error) {
	return lzwDecode(data, params, limit)
}
