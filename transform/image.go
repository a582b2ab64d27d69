package transform

import (
	"fmt"
	"image"

	"github.com/tsawler/pdfgraph/core"
	"github.com/tsawler/pdfgraph/imaging"
	"github.com/tsawler/pdfgraph/internal/filters"
	"github.com/tsawler/pdfgraph/object"
	"github.com/tsawler/pdfgraph/resolver"
)

// imageCodecs are the filters that produce pixels rather than bytes.
var imageCodecs = map[string]bool{
	imaging.CodecFax:   true,
	imaging.CodecDCT:   true,
	imaging.CodecJPX:   true,
	imaging.CodecJBIG2: true,
}

// isImageStream reports whether s is declared as an image XObject. The Type
// entry is optional for images.
func isImageStream(s *core.Stream) bool {
	if subtype, _ := s.Dict.GetName("Subtype"); subtype != "Image" {
		return false
	}
	switch t := s.Dict.Get("Type").(type) {
	case nil:
		return true
	case core.Name:
		return t == "XObject"
	}
	return false
}

// rawChain returns the canonical filter names of a raw stream without
// resolving anything.
func rawChain(s *core.Stream, reg *filters.Registry) []string {
	names, _, err := core.FilterChain(s.Dict)
	if err != nil {
		return nil
	}
	for i, n := range names {
		names[i] = reg.Canonical(n)
	}
	return names
}

// ImageTransformer handles image streams encoded with one image codec. The
// codec must be the first or the last entry of the filter chain; byte
// filters in front of it are applied before the codec sees the data.
//
// Decoding never fails the transform. When the payload cannot be turned
// into pixels the image gets a mid-gray placeholder of the declared size.
type ImageTransformer struct {
	Codec   string
	Decoder imaging.Decoder
	Filters *filters.Registry
}

func (t *ImageTransformer) Recognizes(node core.Object) bool {
	s, ok := node.(*core.Stream)
	if !ok || !isImageStream(s) {
		return false
	}
	names := rawChain(s, registryOr(t.Filters))
	if len(names) == 0 {
		return false
	}
	return names[0] == t.Codec || names[len(names)-1] == t.Codec
}

func (t *ImageTransformer) Transform(node core.Object, parent object.Node, ctx *resolver.Context) (core.Object, error) {
	return transformImage(node.(*core.Stream), parent, ctx, t.Decoder, registryOr(t.Filters))
}

// RawImageTransformer handles image streams whose filters are byte-level
// only; the decoded bytes are unpacked as samples. It also takes images
// whose codec is only visible after resolving the Filter entry.
type RawImageTransformer struct {
	Decoder imaging.Decoder
	Filters *filters.Registry
}

func (t *RawImageTransformer) Recognizes(node core.Object) bool {
	s, ok := node.(*core.Stream)
	return ok && isImageStream(s)
}

func (t *RawImageTransformer) Transform(node core.Object, parent object.Node, ctx *resolver.Context) (core.Object, error) {
	return transformImage(node.(*core.Stream), parent, ctx, t.Decoder, registryOr(t.Filters))
}

func transformImage(raw *core.Stream, parent object.Node, ctx *resolver.Context, dec imaging.Decoder, reg *filters.Registry) (core.Object, error) {
	if dec == nil {
		dec = imaging.NewDecoder()
	}

	img := object.NewImage(object.NewDict(len(raw.Dict)), imaging.CodecRaw, nil)
	ctx.Attach(img, parent)
	ctx.Attach(img.Dict, img)
	ctx.Bind(img)

	if err := resolveRefs(raw.Dict, img.Dict, ctx); err != nil {
		return nil, err
	}

	pixels, err := decodeImage(raw, img, dec, reg, ctx)
	if err == nil {
		err = imaging.Probe(pixels)
	}
	if err != nil {
		w, h := dimension(img.Dict, "Width"), dimension(img.Dict, "Height")
		pixels = imaging.Placeholder(w, h)
		ctx.Warn(resolver.WarnPlaceholderImage, err, "codec", img.Codec, "width", w, "height", h)
	}
	img.SetPixels(pixels, err != nil)

	if err := transformValues(raw.Dict, img.Dict, ctx); err != nil {
		return nil, err
	}

	ctx.Attach(img, parent)
	return img, nil
}

// decodeImage applies the byte filters and the image codec.
func decodeImage(raw *core.Stream, img *object.Image, dec imaging.Decoder, reg *filters.Registry, ctx *resolver.Context) (image.Image, error) {
	data, err := raw.Bytes()
	if err != nil {
		return nil, err
	}
	img.SetRaw(data)

	names, params, err := core.FilterChain(img.Dict)
	if err != nil {
		return nil, err
	}

	codec, idx := imaging.CodecRaw, len(names)
	for i, n := range names {
		if imageCodecs[reg.Canonical(n)] {
			codec, idx = reg.Canonical(n), i
			break
		}
	}
	img.Codec = codec
	if idx < len(names)-1 {
		return nil, fmt.Errorf("%s must be the last filter, found %v after it", codec, names[idx+1:])
	}

	data, err = reg.Decode(data, names[:idx], params[:idx])
	if err != nil {
		return nil, err
	}

	p, err := imageParams(img.Dict, ctx)
	if err != nil {
		return nil, err
	}
	if idx < len(names) {
		p.CodecParams = params[idx]
	}
	return safeDecode(dec, data, codec, p)
}

// safeDecode runs dec, turning a panic into ErrMalformedImage.
func safeDecode(dec imaging.Decoder, data []byte, codec string, p imaging.Params) (img image.Image, err error) {
	defer func() {
		if r := recover(); r != nil {
			img, err = nil, fmt.Errorf("%s decoder: %v: %w", codec, r, imaging.ErrMalformedImage)
		}
	}()
	return dec.Decode(data, codec, p)
}

// dimension reads Width or Height. Real values are truncated.
func dimension(d *object.Dict, key string) int {
	v, _ := d.GetReal(key)
	return int(v)
}

// imageParams reads the image attributes from the typed dictionary.
func imageParams(d *object.Dict, ctx *resolver.Context) (imaging.Params, error) {
	var p imaging.Params
	p.Width = dimension(d, "Width")
	p.Height = dimension(d, "Height")
	p.BitsPerComponent, _ = d.GetInt("BitsPerComponent")
	p.ImageMask, _ = d.GetBool("ImageMask")
	if err := imaging.CheckBounds(p.Width, p.Height); err != nil {
		return p, err
	}

	if arr, ok := value(d.Get("Decode"), d, ctx).(core.List); ok {
		p.Decode = numbers(arr, d, ctx)
	}

	if cs := d.Get("ColorSpace"); cs != nil && !p.ImageMask {
		if err := colorSpace(cs, d, ctx, &p); err != nil {
			return p, err
		}
	}
	return p, nil
}

// colorSpace fills the colour space fields of p from a name or an array
// such as [/ICCBased 5 0 R] or [/Indexed /DeviceRGB 255 <...>].
func colorSpace(obj core.Object, d *object.Dict, ctx *resolver.Context, p *imaging.Params) error {
	switch cs := value(obj, d, ctx).(type) {
	case core.Name:
		p.ColorSpace = string(cs)
		return nil
	case core.List:
		if cs.Len() == 0 {
			return fmt.Errorf("empty colour space array")
		}
		family, _ := value(cs.Get(0), d, ctx).(core.Name)
		switch family {
		case "ICCBased":
			n := 3
			if s, ok := value(elem(cs, 1), d, ctx).(*object.Stream); ok {
				if v, ok := s.Dict.GetInt("N"); ok {
					n = v
				}
			}
			p.ColorSpace = deviceSpace(n)
		case "CalGray", "CalRGB", "Lab", "DeviceGray", "DeviceRGB", "DeviceCMYK":
			p.ColorSpace = string(family)
		case "Indexed", "I":
			return indexed(cs, d, ctx, p)
		case "Separation":
			p.ColorSpace = "DeviceGray"
		case "DeviceN":
			if names, ok := value(elem(cs, 1), d, ctx).(core.List); ok {
				p.Components = names.Len()
			}
			p.ColorSpace = string(family)
		default:
			return fmt.Errorf("unsupported colour space %v", family)
		}
		return nil
	}
	return fmt.Errorf("invalid colour space %v", obj)
}

func indexed(cs core.List, d *object.Dict, ctx *resolver.Context, p *imaging.Params) error {
	if cs.Len() < 4 {
		return fmt.Errorf("indexed colour space needs 4 entries, got %d", cs.Len())
	}
	var base imaging.Params
	if err := colorSpace(cs.Get(1), d, ctx, &base); err != nil {
		return fmt.Errorf("indexed base: %w", err)
	}
	hival, ok := value(cs.Get(2), d, ctx).(core.Int)
	if !ok {
		return fmt.Errorf("indexed hival is %v", cs.Get(2))
	}

	p.ColorSpace = "Indexed"
	p.Base = base.ColorSpace
	p.HiVal = int(hival)
	switch lookup := value(cs.Get(3), d, ctx).(type) {
	case core.String:
		p.Palette = []byte(lookup)
	case *object.Text:
		p.Palette = []byte(lookup.Raw)
	case *object.Stream:
		p.Palette = lookup.Data()
	default:
		return fmt.Errorf("indexed lookup is %T", lookup)
	}
	return nil
}

func deviceSpace(n int) string {
	switch n {
	case 1:
		return "DeviceGray"
	case 4:
		return "DeviceCMYK"
	}
	return "DeviceRGB"
}

func elem(l core.List, i int) core.Object {
	if i < l.Len() {
		return l.Get(i)
	}
	return nil
}

// value follows references inside image attributes. Raw references in
// direct arrays are resolved through the context.
func value(obj core.Object, parent object.Node, ctx *resolver.Context) core.Object {
	if ref, ok := obj.(core.IndirectRef); ok {
		resolved, err := ctx.Resolve(ref, parent)
		if err != nil {
			return nil
		}
		obj = resolved
	}
	resolved, err := object.Deref(obj)
	if err != nil {
		return nil
	}
	return resolved
}

func numbers(l core.List, parent object.Node, ctx *resolver.Context) []float64 {
	out := make([]float64, 0, l.Len())
	for i := 0; i < l.Len(); i++ {
		r, ok := core.ToReal(value(l.Get(i), parent, ctx))
		if !ok {
			return nil
		}
		out = append(out, float64(r))
	}
	return out
}
