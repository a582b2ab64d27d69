package imaging

import (
	"fmt"
	"image"
	"image/color"
)

// components returns the number of colour components per pixel.
func (p Params) components() int {
	if p.ImageMask {
		return 1
	}
	switch p.ColorSpace {
	case "DeviceGray", "CalGray", "G", "Indexed", "I":
		return 1
	case "DeviceRGB", "CalRGB", "RGB", "Lab":
		return 3
	case "DeviceCMYK", "CMYK":
		return 4
	}
	if p.Components > 0 {
		return p.Components
	}
	return 1
}

func (p Params) bitsPerComponent() int {
	if p.ImageMask {
		return 1
	}
	if p.BitsPerComponent == 0 {
		return 8
	}
	return p.BitsPerComponent
}

// Samples unpacks raw image samples into an image. Rows are padded to a
// byte boundary. Gray images of 1, 2, 4 and 8 bits become image.Gray,
// 16-bit gray becomes image.Gray16, CMYK becomes image.CMYK and every other
// colour model is converted to image.RGBA.
func Samples(data []byte, p Params) (image.Image, error) {
	if err := CheckBounds(p.Width, p.Height); err != nil {
		return nil, err
	}
	bpc := p.bitsPerComponent()
	switch bpc {
	case 1, 2, 4, 8, 16:
	default:
		return nil, fmt.Errorf("unsupported bits per component %d: %w", bpc, ErrMalformedImage)
	}

	comps := p.components()
	rowBytes := (p.Width*comps*bpc + 7) / 8
	if need := rowBytes * p.Height; len(data) < need {
		return nil, fmt.Errorf("insufficient data: got %d, expected %d: %w", len(data), need, ErrMalformedImage)
	}

	u := unpacker{data: data, rowBytes: rowBytes, bpc: bpc, comps: comps, decode: p.decodeRanges(comps, bpc)}

	if p.ColorSpace == "Indexed" || p.ColorSpace == "I" {
		return u.indexed(p)
	}
	switch comps {
	case 1:
		if bpc == 16 {
			return u.gray16(p.Width, p.Height), nil
		}
		return u.gray(p.Width, p.Height), nil
	case 3:
		return u.rgb(p.Width, p.Height), nil
	case 4:
		return u.cmyk(p.Width, p.Height), nil
	}
	return nil, fmt.Errorf("unsupported component count %d: %w", comps, ErrMalformedImage)
}

// decodeRanges returns the [min, max] output range per component. The
// default maps a sample linearly onto [0, 1].
func (p Params) decodeRanges(comps, bpc int) [][2]float64 {
	ranges := make([][2]float64, comps)
	for c := range ranges {
		ranges[c] = [2]float64{0, 1}
		if len(p.Decode) >= 2*(c+1) {
			ranges[c] = [2]float64{p.Decode[2*c], p.Decode[2*c+1]}
		}
	}
	return ranges
}

type unpacker struct {
	data     []byte
	rowBytes int
	bpc      int
	comps    int
	decode   [][2]float64
}

// sample returns the raw sample of component c at pixel x of row y.
func (u unpacker) sample(x, y, c int) uint32 {
	row := u.data[y*u.rowBytes:]
	idx := x*u.comps + c
	switch u.bpc {
	case 8:
		return uint32(row[idx])
	case 16:
		return uint32(row[2*idx])<<8 | uint32(row[2*idx+1])
	}
	bit := idx * u.bpc
	shift := 8 - u.bpc - bit%8
	return uint32(row[bit/8]>>shift) & (1<<u.bpc - 1)
}

// value maps a sample through the decode range onto [0, 1].
func (u unpacker) value(x, y, c int) float64 {
	max := float64(uint32(1)<<u.bpc - 1)
	r := u.decode[c]
	v := r[0] + float64(u.sample(x, y, c))*(r[1]-r[0])/max
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func to8(v float64) uint8 { return uint8(v*255 + 0.5) }

func (u unpacker) gray(w, h int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Pix[y*img.Stride+x] = to8(u.value(x, y, 0))
		}
	}
	return img
}

func (u unpacker) gray16(w, h int) *image.Gray16 {
	img := image.NewGray16(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetGray16(x, y, color.Gray16{Y: uint16(u.value(x, y, 0)*65535 + 0.5)})
		}
	}
	return img
}

func (u unpacker) rgb(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*img.Stride + x*4
			img.Pix[i+0] = to8(u.value(x, y, 0))
			img.Pix[i+1] = to8(u.value(x, y, 1))
			img.Pix[i+2] = to8(u.value(x, y, 2))
			img.Pix[i+3] = 255
		}
	}
	return img
}

func (u unpacker) cmyk(w, h int) *image.CMYK {
	img := image.NewCMYK(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*img.Stride + x*4
			for c := 0; c < 4; c++ {
				img.Pix[i+c] = to8(u.value(x, y, c))
			}
		}
	}
	return img
}

func (u unpacker) indexed(p Params) (image.Image, error) {
	base := Params{ColorSpace: p.Base, Components: 0}
	baseComps := base.components()
	if baseComps != 1 && baseComps != 3 && baseComps != 4 {
		return nil, fmt.Errorf("unsupported indexed base %q: %w", p.Base, ErrMalformedImage)
	}
	entries := p.HiVal + 1
	if entries <= 0 || entries > 256 || len(p.Palette) < entries*baseComps {
		return nil, fmt.Errorf("palette has %d bytes for %d entries: %w", len(p.Palette), entries, ErrMalformedImage)
	}

	palette := make(color.Palette, entries)
	for i := range palette {
		c := p.Palette[i*baseComps:]
		switch baseComps {
		case 1:
			palette[i] = color.Gray{Y: c[0]}
		case 3:
			palette[i] = color.RGBA{R: c[0], G: c[1], B: c[2], A: 255}
		case 4:
			palette[i] = color.CMYK{C: c[0], M: c[1], Y: c[2], K: c[3]}
		}
	}

	img := image.NewPaletted(image.Rect(0, 0, p.Width, p.Height), palette)
	for y := 0; y < p.Height; y++ {
		for x := 0; x < p.Width; x++ {
			idx := u.sample(x, y, 0)
			if int(idx) >= entries {
				idx = uint32(entries - 1)
			}
			img.Pix[y*img.Stride+x] = uint8(idx)
		}
	}
	return img, nil
}
