package imaging

import (
	"errors"
	"image"
	"image/color"
	"testing"
)

func TestSamplesGray8Bit(t *testing.T) {
	data := []byte{
		0, 85, 170, 255,
		255, 170, 85, 0,
		0, 85, 170, 255,
		255, 170, 85, 0,
	}

	img, err := Samples(data, Params{Width: 4, Height: 4, BitsPerComponent: 8, ColorSpace: "DeviceGray"})
	if err != nil {
		t.Fatalf("Samples failed: %v", err)
	}
	gray, ok := img.(*image.Gray)
	if !ok {
		t.Fatalf("Samples() = %T, want *image.Gray", img)
	}

	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			expected := data[y*4+x]
			if actual := gray.GrayAt(x, y).Y; actual != expected {
				t.Errorf("Pixel (%d,%d): got %d, want %d", x, y, actual, expected)
			}
		}
	}
}

func TestSamplesBilevel(t *testing.T) {
	img, err := Samples([]byte{0xFF, 0x00}, Params{Width: 16, Height: 1, BitsPerComponent: 1, ColorSpace: "DeviceGray"})
	if err != nil {
		t.Fatalf("Samples failed: %v", err)
	}
	gray := img.(*image.Gray)

	for x := 0; x < 8; x++ {
		if gray.GrayAt(x, 0).Y != 255 {
			t.Errorf("Pixel %d should be white (255), got %d", x, gray.GrayAt(x, 0).Y)
		}
	}
	for x := 8; x < 16; x++ {
		if gray.GrayAt(x, 0).Y != 0 {
			t.Errorf("Pixel %d should be black (0), got %d", x, gray.GrayAt(x, 0).Y)
		}
	}
}

func TestSamplesDecodeInversion(t *testing.T) {
	img, err := Samples([]byte{0xF0}, Params{Width: 8, Height: 1, BitsPerComponent: 1, Decode: []float64{1, 0}})
	if err != nil {
		t.Fatalf("Samples failed: %v", err)
	}
	gray := img.(*image.Gray)
	if gray.GrayAt(0, 0).Y != 0 || gray.GrayAt(7, 0).Y != 255 {
		t.Errorf("Decode [1 0] not applied: first %d, last %d", gray.GrayAt(0, 0).Y, gray.GrayAt(7, 0).Y)
	}
}

func TestSamples4BitGray(t *testing.T) {
	img, err := Samples([]byte{0xF0}, Params{Width: 2, Height: 1, BitsPerComponent: 4, ColorSpace: "DeviceGray"})
	if err != nil {
		t.Fatalf("Samples failed: %v", err)
	}
	gray := img.(*image.Gray)
	if gray.GrayAt(0, 0).Y != 255 {
		t.Errorf("First pixel should be 255, got %d", gray.GrayAt(0, 0).Y)
	}
	if gray.GrayAt(1, 0).Y != 0 {
		t.Errorf("Second pixel should be 0, got %d", gray.GrayAt(1, 0).Y)
	}
}

func TestSamples16BitGray(t *testing.T) {
	img, err := Samples([]byte{0xFF, 0xFF, 0x00, 0x00}, Params{Width: 2, Height: 1, BitsPerComponent: 16})
	if err != nil {
		t.Fatalf("Samples failed: %v", err)
	}
	g := img.(*image.Gray16)
	if g.Gray16At(0, 0).Y != 0xFFFF || g.Gray16At(1, 0).Y != 0 {
		t.Errorf("got %v %v", g.Gray16At(0, 0), g.Gray16At(1, 0))
	}
}

func TestSamplesRGB(t *testing.T) {
	img, err := Samples([]byte{255, 0, 0, 0, 255, 0}, Params{Width: 2, Height: 1, ColorSpace: "DeviceRGB"})
	if err != nil {
		t.Fatalf("Samples failed: %v", err)
	}
	rgba := img.(*image.RGBA)
	if got := rgba.RGBAAt(0, 0); got != (color.RGBA{255, 0, 0, 255}) {
		t.Errorf("pixel 0 = %v, want red", got)
	}
	if got := rgba.RGBAAt(1, 0); got != (color.RGBA{0, 255, 0, 255}) {
		t.Errorf("pixel 1 = %v, want green", got)
	}
}

func TestSamplesCMYK(t *testing.T) {
	img, err := Samples([]byte{0, 255, 255, 0}, Params{Width: 1, Height: 1, ColorSpace: "DeviceCMYK"})
	if err != nil {
		t.Fatalf("Samples failed: %v", err)
	}
	r, g, b, _ := img.At(0, 0).RGBA()
	if r>>8 != 255 || g>>8 != 0 || b>>8 != 0 {
		t.Errorf("CMYK red converted to %d,%d,%d", r>>8, g>>8, b>>8)
	}
}

func TestSamplesIndexed(t *testing.T) {
	p := Params{
		Width:            3,
		Height:           1,
		BitsPerComponent: 8,
		ColorSpace:       "Indexed",
		Base:             "DeviceRGB",
		HiVal:            1,
		Palette:          []byte{255, 0, 0, 0, 0, 255},
	}
	img, err := Samples([]byte{0, 1, 7}, p)
	if err != nil {
		t.Fatalf("Samples failed: %v", err)
	}
	want := []color.RGBA{{255, 0, 0, 255}, {0, 0, 255, 255}, {0, 0, 255, 255}}
	for x, w := range want {
		r, g, b, a := img.At(x, 0).RGBA()
		got := color.RGBA{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8), uint8(a >> 8)}
		if got != w {
			t.Errorf("pixel %d = %v, want %v", x, got, w)
		}
	}

	p.Palette = p.Palette[:3]
	if _, err := Samples([]byte{0, 1, 1}, p); !errors.Is(err, ErrMalformedImage) {
		t.Errorf("short palette error = %v, want ErrMalformedImage", err)
	}
}

func TestSamplesErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		p    Params
		want error
	}{
		{"insufficient gray", []byte{0, 1, 2}, Params{Width: 10, Height: 10}, ErrMalformedImage},
		{"insufficient rgb", make([]byte, 6), Params{Width: 10, Height: 10, ColorSpace: "DeviceRGB"}, ErrMalformedImage},
		{"insufficient cmyk", make([]byte, 8), Params{Width: 10, Height: 10, ColorSpace: "DeviceCMYK"}, ErrMalformedImage},
		{"bad bpc", make([]byte, 8), Params{Width: 2, Height: 2, BitsPerComponent: 3}, ErrMalformedImage},
		{"zero size", nil, Params{Width: 0, Height: 2}, ErrMalformedImage},
		{"too large", nil, Params{Width: MaxDimension + 1, Height: 1}, ErrImageTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Samples(tt.data, tt.p); !errors.Is(err, tt.want) {
				t.Errorf("Samples() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSamplesImageMask(t *testing.T) {
	img, err := Samples([]byte{0x80}, Params{Width: 2, Height: 1, BitsPerComponent: 8, ColorSpace: "DeviceRGB", ImageMask: true})
	if err != nil {
		t.Fatalf("Samples failed: %v", err)
	}
	if _, ok := img.(*image.Gray); !ok {
		t.Errorf("image mask decoded as %T, want *image.Gray", img)
	}
}

func BenchmarkSamples(b *testing.B) {
	width, height := 100, 100
	data := make([]byte, width*height)
	for i := range data {
		data[i] = byte(i % 256)
	}
	p := Params{Width: width, Height: height, BitsPerComponent: 8, ColorSpace: "DeviceGray"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = Samples(data, p)
	}
}
