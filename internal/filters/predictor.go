package filters

import (
	"github.com/pkg/errors"
)

// applyPredictor reverses the prediction step shared by FlateDecode and
// LZWDecode. Predictor 1 is identity, 2 is TIFF Predictor 2, and 10-15 are
// PNG predictors where each row carries its own algorithm tag.
func applyPredictor(data []byte, params Params) ([]byte, error) {
	predictor := getIntParam(params, "Predictor", 1)
	switch {
	case predictor == 1 || len(data) == 0:
		return data, nil
	case predictor == 2:
		return applyTIFFPredictor2(data, params)
	case predictor >= 10 && predictor <= 15:
		return applyPNGPredictor(data, params)
	}
	return nil, errors.Errorf("unsupported predictor: %d", predictor)
}

// maxColors is the largest Colors value accepted in DecodeParms.
const maxColors = 32

// predictorGeometry returns the bytes per pixel (at least one) and the number
// of bytes in one row of samples. A row wider than the n bytes of input is
// rejected.
func predictorGeometry(params Params, n int) (bpp, rowSize int, err error) {
	columns := getIntParam(params, "Columns", 1)
	colors := getIntParam(params, "Colors", 1)
	bpc := getIntParam(params, "BitsPerComponent", 8)

	switch bpc {
	case 1, 2, 4, 8, 16:
	default:
		return 0, 0, errors.Errorf("invalid BitsPerComponent %d", bpc)
	}
	if columns < 1 || colors < 1 || colors > maxColors {
		return 0, 0, errors.Errorf("invalid predictor geometry: Columns=%d Colors=%d", columns, colors)
	}
	bitsPerPixel := colors * bpc
	if columns > (n*8)/bitsPerPixel {
		return 0, 0, errors.Errorf("predictor row of %d columns exceeds %d bytes of data", columns, n)
	}
	bpp = (bitsPerPixel + 7) / 8
	rowSize = (columns*bitsPerPixel + 7) / 8
	return bpp, rowSize, nil
}

// applyTIFFPredictor2 applies TIFF Predictor 2, which predicts each sample
// from the sample to its left.
func applyTIFFPredictor2(data []byte, params Params) ([]byte, error) {
	colors := getIntParam(params, "Colors", 1)
	bpc := getIntParam(params, "BitsPerComponent", 8)
	_, rowSize, err := predictorGeometry(params, len(data))
	if err != nil {
		return nil, err
	}

	result := make([]byte, len(data))
	copy(result, data)

	for rowStart := 0; rowStart+rowSize <= len(result); rowStart += rowSize {
		row := result[rowStart : rowStart+rowSize]
		switch bpc {
		case 8:
			for i := colors; i < len(row); i++ {
				row[i] += row[i-colors]
			}
		case 16:
			for i := 2 * colors; i+1 < len(row); i += 2 {
				prev := uint16(row[i-2*colors])<<8 | uint16(row[i-2*colors+1])
				cur := uint16(row[i])<<8 | uint16(row[i+1])
				cur += prev
				row[i], row[i+1] = byte(cur>>8), byte(cur)
			}
		default:
			tiffSubByteRow(row, colors, bpc)
		}
	}

	return result, nil
}

// tiffSubByteRow undoes horizontal differencing for 1, 2 and 4 bit samples.
func tiffSubByteRow(row []byte, colors, bpc int) {
	mask := byte(1<<uint(bpc)) - 1
	samples := len(row) * 8 / bpc
	get := func(i int) byte {
		bit := i * bpc
		shift := uint(8 - bpc - bit%8)
		return (row[bit/8] >> shift) & mask
	}
	set := func(i int, v byte) {
		bit := i * bpc
		shift := uint(8 - bpc - bit%8)
		row[bit/8] = row[bit/8]&^(mask<<shift) | (v&mask)<<shift
	}
	for i := colors; i < samples; i++ {
		set(i, get(i)+get(i-colors))
	}
}

// applyPNGPredictor applies PNG predictor algorithms. Each row starts with
// a predictor byte (0-4) that specifies which algorithm to use for that row.
// A trailing partial row is decoded as far as it goes.
func applyPNGPredictor(data []byte, params Params) ([]byte, error) {
	bpp, rowSize, err := predictorGeometry(params, len(data))
	if err != nil {
		return nil, err
	}

	stride := rowSize + 1
	numRows := (len(data) + stride - 1) / stride
	result := make([]byte, 0, numRows*rowSize)
	prev := make([]byte, rowSize)

	for row := 0; row < numRows; row++ {
		start := row * stride
		end := start + stride
		if end > len(data) {
			end = len(data)
		}
		if end-start < 2 {
			break
		}
		cur := make([]byte, rowSize)
		n := copy(cur, data[start+1:end])

		if err := decodePNGRow(cur[:n], prev, data[start], bpp); err != nil {
			return nil, errors.Wrapf(err, "failed to decode row %d", row)
		}
		result = append(result, cur[:n]...)
		prev = cur
	}

	return result, nil
}

// decodePNGRow decodes one PNG-predicted row in place.
// Predictor types: 0=None, 1=Sub (left), 2=Up (above), 3=Average, 4=Paeth.
func decodePNGRow(cur, prev []byte, predictor byte, bpp int) error {
	switch predictor {
	case 0:
	case 1:
		for i := bpp; i < len(cur); i++ {
			cur[i] += cur[i-bpp]
		}
	case 2:
		for i := range cur {
			cur[i] += prev[i]
		}
	case 3:
		for i := range cur {
			var left byte
			if i >= bpp {
				left = cur[i-bpp]
			}
			cur[i] += byte((int(left) + int(prev[i])) / 2)
		}
	case 4:
		for i := range cur {
			var left, upLeft byte
			if i >= bpp {
				left = cur[i-bpp]
				upLeft = prev[i-bpp]
			}
			cur[i] += paethPredictor(left, prev[i], upLeft)
		}
	default:
		return errors.Errorf("unknown PNG predictor: %d", predictor)
	}
	return nil
}

// paethPredictor implements the Paeth predictor algorithm from the PNG specification.
// It selects the neighbor (left, above, or upper-left) closest to a linear prediction.
func paethPredictor(a, b, c byte) byte {
	p := int(a) + int(b) - int(c)
	pa := abs(p - int(a))
	pb := abs(p - int(b))
	pc := abs(p - int(c))

	if pa <= pb && pa <= pc {
		return a
	} else if pb <= pc {
		return b
	}
	return c
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
