package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"testing"

	"github.com/tsawler/pdfgraph/internal/filters"
)

func TestDecodeFax(t *testing.T) {
	// Eight all-white Group 4 rows, one V0 code each.
	img, err := NewDecoder().Decode([]byte{0xFF}, CodecFax, Params{
		Width:       8,
		Height:      8,
		CodecParams: filters.Params{"K": -1},
	})
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if err := Probe(img); err != nil {
		t.Fatalf("Probe failed: %v", err)
	}
	gray := img.(*image.Gray)
	for i, px := range gray.Pix {
		if px != 255 {
			t.Fatalf("pixel %d = %d, want white", i, px)
		}
	}
}

func TestDecodeFaxCorrupt(t *testing.T) {
	_, err := NewDecoder().Decode([]byte{0, 0, 0}, CodecFax, Params{
		Width:       64,
		Height:      32,
		CodecParams: filters.Params{"K": -1},
	})
	if !errors.Is(err, ErrMalformedImage) {
		t.Errorf("Decode() error = %v, want ErrMalformedImage", err)
	}
}

func TestDecodeDCT(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 16, 8))
	for i := range src.Pix {
		src.Pix[i] = 200
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, src, nil); err != nil {
		t.Fatalf("jpeg.Encode: %v", err)
	}

	img, err := NewDecoder().Decode(buf.Bytes(), CodecDCT, Params{Width: 16, Height: 8})
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 16 || b.Dy() != 8 {
		t.Errorf("bounds = %v, want 16x8", b)
	}

	if _, err := NewDecoder().Decode([]byte("not a jpeg"), CodecDCT, Params{}); !errors.Is(err, ErrMalformedImage) {
		t.Errorf("Decode() error = %v, want ErrMalformedImage", err)
	}
}

func TestDecodeUnsupported(t *testing.T) {
	for _, codec := range []string{CodecJPX, CodecJBIG2, "Bogus"} {
		if _, err := NewDecoder().Decode([]byte{1}, codec, Params{Width: 1, Height: 1}); !errors.Is(err, ErrUnsupportedCodec) {
			t.Errorf("Decode(%q) error = %v, want ErrUnsupportedCodec", codec, err)
		}
	}
}

func TestPlaceholder(t *testing.T) {
	img := Placeholder(64, 32)
	if b := img.Bounds(); b.Dx() != 64 || b.Dy() != 32 {
		t.Fatalf("bounds = %v, want 64x32", b)
	}
	for y := 0; y < 32; y++ {
		for x := 0; x < 64; x++ {
			if got := img.RGBAAt(x, y); got != MidGray {
				t.Fatalf("pixel (%d,%d) = %v, want %v", x, y, got, MidGray)
			}
		}
	}

	if b := Placeholder(0, 10).Bounds(); b.Dx() != 1 || b.Dy() != 1 {
		t.Errorf("invalid size placeholder bounds = %v, want 1x1", b)
	}
}

type panicImage struct{ image.Gray }

func (panicImage) At(x, y int) color.Color { panic("lazy decode failed") }

func TestProbe(t *testing.T) {
	if err := Probe(image.NewGray(image.Rect(0, 0, 1, 1))); err != nil {
		t.Errorf("Probe(valid) = %v", err)
	}
	if err := Probe(nil); !errors.Is(err, ErrMalformedImage) {
		t.Errorf("Probe(nil) = %v", err)
	}
	if err := Probe(image.NewGray(image.Rectangle{})); !errors.Is(err, ErrMalformedImage) {
		t.Errorf("Probe(empty) = %v", err)
	}
	lazy := &panicImage{Gray: *image.NewGray(image.Rect(0, 0, 2, 2))}
	if err := Probe(lazy); !errors.Is(err, ErrMalformedImage) {
		t.Errorf("Probe(panicking) = %v", err)
	}
}

func TestToRGBAAndPNG(t *testing.T) {
	gray := image.NewGray(image.Rect(2, 2, 4, 3))
	gray.SetGray(2, 2, color.Gray{Y: 10})

	rgba := ToRGBA(gray)
	if rgba.Rect != image.Rect(0, 0, 2, 1) {
		t.Fatalf("Rect = %v, want origin at zero", rgba.Rect)
	}
	if got := rgba.RGBAAt(0, 0); got != (color.RGBA{10, 10, 10, 255}) {
		t.Errorf("pixel = %v", got)
	}

	data, err := EncodePNG(rgba)
	if err != nil {
		t.Fatalf("EncodePNG failed: %v", err)
	}
	magic := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}
	if !bytes.HasPrefix(data, magic) {
		t.Errorf("missing PNG signature: %x", data[:8])
	}
}
