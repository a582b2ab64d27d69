package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"

	"github.com/tsawler/pdfgraph/internal/filters"
)

var (
	// ErrUnsupportedCodec is returned for image codecs with no decoder.
	ErrUnsupportedCodec = errors.New("unsupported image codec")
	// ErrMalformedImage is returned when a payload cannot be turned into pixels.
	ErrMalformedImage = errors.New("malformed image")
	// ErrImageTooLarge is returned when the declared size exceeds the limits.
	ErrImageTooLarge = errors.New("image too large")
)

// Codec names understood by the standard decoder. Raw selects sample
// unpacking for images whose filters are byte-level only.
const (
	CodecRaw   = ""
	CodecFax   = "CCITTFaxDecode"
	CodecDCT   = "DCTDecode"
	CodecJPX   = "JPXDecode"
	CodecJBIG2 = "JBIG2Decode"
)

// Params describes the image a payload encodes.
type Params struct {
	Width            int
	Height           int
	BitsPerComponent int
	ColorSpace       string // DeviceGray, DeviceRGB, DeviceCMYK, Indexed, ...
	Components       int    // used when ColorSpace does not imply a count
	Decode           []float64
	ImageMask        bool

	// Indexed colour spaces
	Base    string // base colour space
	HiVal   int
	Palette []byte

	// DecodeParms of the image codec
	CodecParams filters.Params
}

// Decoder turns an encoded image payload into pixels.
type Decoder interface {
	Decode(data []byte, codec string, p Params) (image.Image, error)
}

// StandardDecoder decodes fax, JPEG and raw sample images.
type StandardDecoder struct{}

// NewDecoder returns the standard decoder.
func NewDecoder() *StandardDecoder {
	return &StandardDecoder{}
}

// Decode implements Decoder.
func (StandardDecoder) Decode(data []byte, codec string, p Params) (image.Image, error) {
	switch codec {
	case CodecRaw:
		return Samples(data, p)
	case CodecFax:
		return decodeFax(data, p)
	case CodecDCT:
		return decodeDCT(data)
	case CodecJPX, CodecJBIG2:
		return nil, fmt.Errorf("%s: %w", codec, ErrUnsupportedCodec)
	}
	return nil, fmt.Errorf("%q: %w", codec, ErrUnsupportedCodec)
}

func decodeFax(data []byte, p Params) (image.Image, error) {
	if err := CheckBounds(p.Width, p.Height); err != nil {
		return nil, err
	}
	params := filters.Params{"Columns": p.Width, "Rows": p.Height}
	for k, v := range p.CodecParams {
		params[k] = v
	}
	width := p.Width
	if c, ok := params["Columns"].(int); ok && c > 0 {
		width = c
	}
	bits, err := filters.CCITTFaxDecode(data, params)
	if err != nil {
		return nil, fmt.Errorf("fax: %v: %w", err, ErrMalformedImage)
	}
	return Samples(bits, Params{
		Width:            width,
		Height:           p.Height,
		BitsPerComponent: 1,
		ColorSpace:       "DeviceGray",
		Decode:           p.Decode,
	})
}

func decodeDCT(data []byte) (image.Image, error) {
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("jpeg: %v: %w", err, ErrMalformedImage)
	}
	b := img.Bounds()
	if err := CheckBounds(b.Dx(), b.Dy()); err != nil {
		return nil, err
	}
	return img, nil
}
