package filters

import (
	"bytes"
	"io"

	"github.com/pkg/errors"
	"golang.org/x/image/ccitt"
)

// CCITTFaxDecode decodes CCITT Group 3/4 fax compressed data.
// This is commonly used for bi-level (black and white) images in PDFs,
// particularly for scanned documents.
//
// The output is one bit per pixel, most significant bit first, with each row
// padded to a byte boundary. A 1 bit is white unless BlackIs1 is set.
//
// Parameters from the PDF decode parameters dictionary:
//   - K: Group selector (<0=Group4, 0=Group3 1D, >0=Group3 2D)
//   - Columns: Image width in pixels (default 1728)
//   - Rows: Image height in pixels (default 0, uses AutoDetectHeight)
//   - BlackIs1: Bit interpretation (default false, maps to ccitt.Options.Invert)
//   - EncodedByteAlign: rows start on byte boundaries (maps to ccitt.Options.Align)
func CCITTFaxDecode(data []byte, params Params) ([]byte, error) {
	columns := getIntParam(params, "Columns", 1728)
	rows := getIntParam(params, "Rows", 0)
	k := getIntParam(params, "K", 0)
	blackIs1 := getBoolParam(params, "BlackIs1", false)
	align := getBoolParam(params, "EncodedByteAlign", false)

	if columns <= 0 {
		return nil, errors.Errorf("invalid Columns %d", columns)
	}

	var sf ccitt.SubFormat
	if k < 0 {
		sf = ccitt.Group4
	} else {
		sf = ccitt.Group3
	}

	opts := &ccitt.Options{Align: align, Invert: blackIs1}

	if rows <= 0 {
		rows = ccitt.AutoDetectHeight
	}

	reader := ccitt.NewReader(bytes.NewReader(data), ccitt.MSB, sf, columns, rows, opts)
	out, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.Wrap(err, "ccitt")
	}
	if len(out) == 0 {
		return nil, errors.New("ccitt: no rows decoded")
	}
	return out, nil
}

type ccittFaxCodec struct{}

func (ccittFaxCodec) Name() string { return "CCITTFaxDecode" }

func (ccittFaxCodec) Decode(data []byte, params Params) ([]byte, error) {
	return CCITTFaxDecode(data, params)
}
