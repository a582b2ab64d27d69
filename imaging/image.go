package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"golang.org/x/image/draw"
)

// Size limits for decoded images.
const (
	MaxDimension = 32768
	MaxPixels    = 64 << 20
)

// MidGray is the fill colour of placeholder images.
var MidGray = color.RGBA{R: 128, G: 128, B: 128, A: 255}

// CheckBounds validates declared image dimensions.
func CheckBounds(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid size %dx%d: %w", width, height, ErrMalformedImage)
	}
	if width > MaxDimension || height > MaxDimension || width*height > MaxPixels {
		return fmt.Errorf("%dx%d: %w", width, height, ErrImageTooLarge)
	}
	return nil
}

// Probe checks that a decoded image is usable by reading its first pixel.
// Lazy image implementations surface their errors here, as a panic from At
// is turned into an error.
func Probe(img image.Image) (err error) {
	if img == nil {
		return fmt.Errorf("no image: %w", ErrMalformedImage)
	}
	b := img.Bounds()
	if b.Empty() {
		return fmt.Errorf("empty bounds %v: %w", b, ErrMalformedImage)
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("reading pixel: %v: %w", r, ErrMalformedImage)
		}
	}()
	img.At(b.Min.X, b.Min.Y).RGBA()
	return nil
}

// Placeholder returns a width x height image filled with MidGray. Sizes that
// fail CheckBounds produce a 1x1 image.
func Placeholder(width, height int) *image.RGBA {
	if CheckBounds(width, height) != nil {
		width, height = 1, 1
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(MidGray), image.Point{}, draw.Src)
	return img
}

// ToRGBA converts img to RGBA with its origin at (0, 0).
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba
}

// EncodePNG encodes img as PNG.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}
