package filters

import (
	"bytes"
	"compress/zlib"
	"io"

	"github.com/pkg/errors"
)

// FlateDecode decompresses Flate (zlib/deflate) compressed data.
// This is the most common compression filter in PDFs. It optionally applies
// a predictor algorithm for image data decompression.
//
// Truncated streams are common in the wild. When some output was produced
// before the error, the partial output is returned.
func FlateDecode(data []byte, params Params) ([]byte, error) {
	return flateDecode(data, params, 0)
}

func flateDecode(data []byte, params Params, limit int) ([]byte, error) {
	decompressed, err := zlibDecompress(data, limit)
	if err != nil {
		return nil, errors.Wrap(err, "zlib decompression failed")
	}

	decompressed, err = applyPredictor(decompressed, params)
	if err != nil {
		return nil, errors.Wrap(err, "predictor failed")
	}
	return decompressed, nil
}

// zlibDecompress inflates data. With a positive limit it stops reading once
// more than limit bytes were produced and reports ErrLimitExceeded.
func zlibDecompress(data []byte, limit int) ([]byte, error) {
	reader, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create zlib reader")
	}
	defer reader.Close()

	buf, err := readLimited(reader, limit)
	if err != nil {
		if buf.Len() > 0 && (errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, zlib.ErrChecksum)) {
			return buf.Bytes(), nil
		}
		return nil, errors.Wrap(err, "failed to decompress")
	}
	return buf.Bytes(), nil
}

// readLimited copies r into a buffer, reading at most limit+1 bytes when
// limit is positive.
func readLimited(r io.Reader, limit int) (*bytes.Buffer, error) {
	var buf bytes.Buffer
	if limit > 0 {
		r = io.LimitReader(r, int64(limit)+1)
	}
	if _, err := io.Copy(&buf, r); err != nil {
		return &buf, err
	}
	if limit > 0 && buf.Len() > limit {
		return &buf, errors.Wrapf(ErrLimitExceeded, "more than %d bytes", limit)
	}
	return &buf, nil
}

type flateCodec struct{}

func (flateCodec) Name() string { return "FlateDecode" }

func (flateCodec) Decode(data []byte, params Params) ([]byte, error) {
	return flateDecode(data, params, 0)
}

func (flateCodec) DecodeLimited(data []byte, params Params, limit int) ([]byte, error) {
	return flateDecode(data, params, limit)
}
