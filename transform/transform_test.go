package transform

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"testing"

	"github.com/go-text/typesetting/font/opentype"
	"github.com/google/go-cmp/cmp"

	"github.com/tsawler/pdfgraph/core"
	"github.com/tsawler/pdfgraph/imaging"
	"github.com/tsawler/pdfgraph/internal/filters"
	"github.com/tsawler/pdfgraph/object"
	"github.com/tsawler/pdfgraph/resolver"
)

// objects is a fetcher over a fixed set of raw objects.
type objects map[int]core.Object

func (o objects) Fetch(ref core.IndirectRef) (core.Object, error) {
	obj, ok := o[ref.Number]
	if !ok {
		return nil, fmt.Errorf("object %d: %w", ref.Number, core.ErrNotFound)
	}
	return obj, nil
}

func newContext(objs objects, opts ...resolver.Option) *resolver.Context {
	if objs == nil {
		objs = objects{}
	}
	return resolver.New(objs, Default(), opts...)
}

func ref(n int) core.IndirectRef { return core.IndirectRef{Number: n} }

func deflate(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func hasWarning(ctx *resolver.Context, kind resolver.WarningKind) bool {
	for _, w := range ctx.Warnings() {
		if w.Kind == kind {
			return true
		}
	}
	return false
}

func TestPassThrough(t *testing.T) {
	ctx := newContext(nil)
	for _, obj := range []core.Object{core.Int(42), core.Real(1.5), core.Name("N"), core.Bool(true), core.Null{}, core.String("plain")} {
		got, err := ctx.Transform(obj, nil)
		if err != nil {
			t.Fatalf("Transform(%v) failed: %v", obj, err)
		}
		if got != obj {
			t.Errorf("Transform(%v) = %v, want unchanged", obj, got)
		}
	}
}

// tagger marks the nodes it handles with its own name.
type tagger struct {
	name  string
	match func(core.Object) bool
	fail  bool
}

func (g tagger) Recognizes(node core.Object) bool { return g.match(node) }

func (g tagger) Transform(node core.Object, parent object.Node, ctx *resolver.Context) (core.Object, error) {
	if g.fail {
		return nil, errors.New(g.name + " failed")
	}
	return core.Name(g.name), nil
}

func TestDispatcherOrdering(t *testing.T) {
	// X accepts a strict subset of what Y accepts.
	x := tagger{name: "X", match: func(n core.Object) bool {
		i, ok := n.(core.Int)
		return ok && i > 10
	}}
	y := tagger{name: "Y", match: func(n core.Object) bool {
		_, ok := n.(core.Int)
		return ok
	}}

	tests := []struct {
		name string
		reg  *Registry
		in   core.Object
		want core.Object
	}{
		{"specific first, subset node", NewRegistry(x, y), core.Int(42), core.Name("X")},
		{"specific first, other node", NewRegistry(x, y), core.Int(1), core.Name("Y")},
		{"generic first", NewRegistry(y, x), core.Int(42), core.Name("Y")},
		{"no match", NewRegistry(x, y), core.Name("N"), core.Name("N")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := resolver.New(objects{}, tt.reg)
			got, err := ctx.Transform(tt.in, nil)
			if err != nil {
				t.Fatalf("Transform failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNoFallbackAfterFailure(t *testing.T) {
	x := tagger{name: "X", match: func(core.Object) bool { return true }, fail: true}
	y := tagger{name: "Y", match: func(core.Object) bool { return true }}

	ctx := resolver.New(objects{}, NewRegistry(x, y))
	if _, err := ctx.Transform(core.Int(1), nil); err == nil || err.Error() != "X failed" {
		t.Errorf("error = %v, want the first transformer's failure", err)
	}
}

func TestDefaultOrder(t *testing.T) {
	var got []string
	for _, tr := range Default().Transformers() {
		name := fmt.Sprintf("%T", tr)
		if it, ok := tr.(*ImageTransformer); ok {
			name += "/" + it.Codec
		}
		got = append(got, name)
	}
	want := []string{
		"*transform.ImageTransformer/CCITTFaxDecode",
		"*transform.ImageTransformer/DCTDecode",
		"*transform.ImageTransformer/JPXDecode",
		"*transform.RawImageTransformer",
		"*transform.FontProgramTransformer",
		"*transform.StreamTransformer",
		"transform.DictTransformer",
		"transform.ArrayTransformer",
		"transform.TextTransformer",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func faxStream(data []byte, dict core.Dict) *core.Stream {
	d := core.Dict{
		"Subtype":          core.Name("Image"),
		"Width":            core.Int(64),
		"Height":           core.Int(32),
		"BitsPerComponent": core.Int(1),
		"Filter":           core.Name("CCITTFaxDecode"),
		"DecodeParms":      core.Dict{"K": core.Int(-1), "Columns": core.Int(64)},
	}
	for k, v := range dict {
		d[k] = v
	}
	return &core.Stream{Dict: d, Data: data}
}

func TestCorruptFaxImageBecomesPlaceholder(t *testing.T) {
	tests := []struct {
		name  string
		extra core.Dict
	}{
		{"type absent", nil},
		{"type xobject", core.Dict{"Type": core.Name("XObject")}},
		{"filter array", core.Dict{"Filter": core.Array{core.Name("CCITTFaxDecode")}, "DecodeParms": core.Array{core.Dict{"K": core.Int(-1)}}}},
		{"abbreviated", core.Dict{"Filter": core.Name("CCF")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := newContext(nil)
			obj, err := ctx.Transform(faxStream([]byte{0, 0, 0}, tt.extra), nil)
			if err != nil {
				t.Fatalf("Transform failed: %v", err)
			}
			img, ok := obj.(*object.Image)
			if !ok {
				t.Fatalf("Transform() = %T, want *object.Image", obj)
			}
			if !img.Placeholder() {
				t.Error("corrupt payload should produce a placeholder")
			}
			if img.Width() != 64 || img.Height() != 32 {
				t.Fatalf("size = %dx%d, want 64x32", img.Width(), img.Height())
			}
			rgba := imaging.ToRGBA(img.Pixels())
			for y := 0; y < 32; y++ {
				for x := 0; x < 64; x++ {
					if got := rgba.RGBAAt(x, y); got != imaging.MidGray {
						t.Fatalf("pixel (%d,%d) = %v, want mid-gray", x, y, got)
					}
				}
			}
			if img.Codec != imaging.CodecFax {
				t.Errorf("Codec = %q", img.Codec)
			}
			if !hasWarning(ctx, resolver.WarnPlaceholderImage) {
				t.Error("missing placeholder warning")
			}
		})
	}
}

func TestRealImageDimensions(t *testing.T) {
	s := faxStream([]byte{0, 0, 0}, core.Dict{
		"Width":  core.Real(64.0),
		"Height": core.Real(32.0),
	})

	obj, err := newContext(nil).Transform(s, nil)
	if err != nil {
		t.Fatalf("Transform failed: %v", err)
	}
	img := obj.(*object.Image)
	if img.Width() != 64 || img.Height() != 32 {
		t.Errorf("size = %dx%d, want 64x32", img.Width(), img.Height())
	}
}

func TestFaxImageDecodes(t *testing.T) {
	s := faxStream([]byte{0xFF}, core.Dict{
		"Width":       core.Int(8),
		"Height":      core.Int(8),
		"DecodeParms": core.Dict{"K": core.Int(-1)},
	})

	obj, err := newContext(nil).Transform(s, nil)
	if err != nil {
		t.Fatalf("Transform failed: %v", err)
	}
	img := obj.(*object.Image)
	if img.Placeholder() {
		t.Fatal("valid payload replaced by a placeholder")
	}
	gray := img.Pixels().(*image.Gray)
	for i, px := range gray.Pix {
		if px != 255 {
			t.Fatalf("pixel %d = %d, want white", i, px)
		}
	}
	if !bytes.Equal(img.Raw(), []byte{0xFF}) {
		t.Errorf("Raw() = %x", img.Raw())
	}
}

func TestDCTImage(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 8, 8))
	for i := range src.Pix {
		src.Pix[i] = 90
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, src, nil); err != nil {
		t.Fatal(err)
	}

	s := &core.Stream{Dict: core.Dict{
		"Type":       core.Name("XObject"),
		"Subtype":    core.Name("Image"),
		"Width":      core.Int(8),
		"Height":     core.Int(8),
		"ColorSpace": core.Name("DeviceGray"),
		"Filter":     core.Name("DCTDecode"),
	}, Data: buf.Bytes()}

	obj, err := newContext(nil).Transform(s, nil)
	if err != nil {
		t.Fatalf("Transform failed: %v", err)
	}
	img := obj.(*object.Image)
	if img.Placeholder() || img.Codec != imaging.CodecDCT || img.Width() != 8 {
		t.Errorf("unexpected image %v (codec %q)", img, img.Codec)
	}
}

func TestImageCodecMustBeLast(t *testing.T) {
	s := &core.Stream{Dict: core.Dict{
		"Subtype": core.Name("Image"),
		"Width":   core.Int(4),
		"Height":  core.Int(2),
		"Filter":  core.Array{core.Name("DCTDecode"), core.Name("FlateDecode")},
	}, Data: []byte("junk")}

	ctx := newContext(nil)
	obj, err := ctx.Transform(s, nil)
	if err != nil {
		t.Fatalf("Transform failed: %v", err)
	}
	if img := obj.(*object.Image); !img.Placeholder() || img.Width() != 4 || img.Height() != 2 {
		t.Errorf("got %v, want 4x2 placeholder", img)
	}
}

func TestUnsupportedImageCodec(t *testing.T) {
	s := &core.Stream{Dict: core.Dict{
		"Subtype": core.Name("Image"),
		"Width":   core.Int(3),
		"Height":  core.Int(3),
		"Filter":  core.Name("JBIG2Decode"),
	}, Data: []byte{1, 2, 3}}

	ctx := newContext(nil)
	obj, err := ctx.Transform(s, nil)
	if err != nil {
		t.Fatalf("Transform failed: %v", err)
	}
	img := obj.(*object.Image)
	if !img.Placeholder() || img.Codec != imaging.CodecJBIG2 {
		t.Errorf("got %v (codec %q), want JBIG2 placeholder", img, img.Codec)
	}
	ws := ctx.Warnings()
	if len(ws) != 1 || !errors.Is(ws[0].Err, imaging.ErrUnsupportedCodec) {
		t.Errorf("warnings = %v", ws)
	}
}

func TestRawImage(t *testing.T) {
	s := &core.Stream{Dict: core.Dict{
		"Subtype":          core.Name("Image"),
		"Width":            core.Int(2),
		"Height":           core.Int(1),
		"BitsPerComponent": core.Int(8),
		"ColorSpace":       core.Name("DeviceGray"),
		"Filter":           core.Name("FlateDecode"),
	}, Data: deflate(t, []byte{0, 255})}

	obj, err := newContext(nil).Transform(s, nil)
	if err != nil {
		t.Fatalf("Transform failed: %v", err)
	}
	img := obj.(*object.Image)
	gray := img.Pixels().(*image.Gray)
	if diff := cmp.Diff([]byte{0, 255}, gray.Pix); diff != "" {
		t.Errorf("pixels mismatch (-want +got):\n%s", diff)
	}
	if img.Codec != imaging.CodecRaw {
		t.Errorf("Codec = %q", img.Codec)
	}
}

func TestIndexedImageWithReferencedPalette(t *testing.T) {
	objs := objects{
		7: &core.Stream{Dict: core.Dict{"Length": core.Int(6)}, Data: []byte{255, 0, 0, 0, 0, 255}},
	}
	s := &core.Stream{Dict: core.Dict{
		"Subtype":          core.Name("Image"),
		"Width":            core.Int(2),
		"Height":           core.Int(1),
		"BitsPerComponent": core.Int(8),
		"ColorSpace":       core.Array{core.Name("Indexed"), core.Name("DeviceRGB"), core.Int(1), ref(7)},
	}, Data: []byte{1, 0}}

	obj, err := newContext(objs).Transform(s, nil)
	if err != nil {
		t.Fatalf("Transform failed: %v", err)
	}
	img := obj.(*object.Image)
	if img.Placeholder() {
		t.Fatal("indexed image fell back to a placeholder")
	}
	rgba := imaging.ToRGBA(img.Pixels())
	if got := rgba.RGBAAt(0, 0); got.B != 255 || got.R != 0 {
		t.Errorf("pixel 0 = %v, want blue", got)
	}
	if got := rgba.RGBAAt(1, 0); got.R != 255 || got.B != 0 {
		t.Errorf("pixel 1 = %v, want red", got)
	}
}

func TestBogusFilterLeavesStreamUndecoded(t *testing.T) {
	raw := []byte("original bytes")
	s := &core.Stream{Dict: core.Dict{"Filter": core.Name("BogusFilter")}, Data: raw}

	ctx := newContext(nil)
	obj, err := ctx.Transform(s, nil)
	if err != nil {
		t.Fatalf("Transform failed: %v", err)
	}
	st, ok := obj.(*object.Stream)
	if !ok {
		t.Fatalf("Transform() = %T, want *object.Stream", obj)
	}
	if !st.Undecoded() {
		t.Error("stream should be flagged undecoded")
	}
	if !bytes.Equal(st.Data(), raw) || !bytes.Equal(st.Raw(), raw) {
		t.Errorf("payload = %q, want the raw bytes", st.Data())
	}
	if !errors.Is(st.DecodeErr(), filters.ErrUnsupportedFilter) {
		t.Errorf("DecodeErr() = %v, want ErrUnsupportedFilter", st.DecodeErr())
	}
	if !hasWarning(ctx, resolver.WarnUndecodedStream) {
		t.Error("missing undecoded warning")
	}
}

func TestOversizedPredictorRows(t *testing.T) {
	parms := core.Dict{"Predictor": core.Int(12), "Columns": core.Int(1 << 50)}

	t.Run("stream", func(t *testing.T) {
		s := &core.Stream{Dict: core.Dict{
			"Filter":      core.Name("FlateDecode"),
			"DecodeParms": parms,
		}, Data: deflate(t, []byte{2, 1, 2, 3})}

		ctx := newContext(nil)
		obj, err := ctx.Transform(s, nil)
		if err != nil {
			t.Fatalf("Transform failed: %v", err)
		}
		st := obj.(*object.Stream)
		if !st.Undecoded() || !errors.Is(st.DecodeErr(), filters.ErrMalformedPayload) {
			t.Errorf("DecodeErr() = %v, want ErrMalformedPayload", st.DecodeErr())
		}
	})

	t.Run("image", func(t *testing.T) {
		s := &core.Stream{Dict: core.Dict{
			"Subtype":          core.Name("Image"),
			"Width":            core.Int(2),
			"Height":           core.Int(1),
			"BitsPerComponent": core.Int(8),
			"ColorSpace":       core.Name("DeviceGray"),
			"Filter":           core.Name("FlateDecode"),
			"DecodeParms":      parms,
		}, Data: deflate(t, []byte{2, 1, 2, 3})}

		ctx := newContext(nil)
		obj, err := ctx.Transform(s, nil)
		if err != nil {
			t.Fatalf("Transform failed: %v", err)
		}
		img := obj.(*object.Image)
		if !img.Placeholder() || img.Width() != 2 || img.Height() != 1 {
			t.Errorf("got %dx%d placeholder=%v, want a 2x1 placeholder", img.Width(), img.Height(), img.Placeholder())
		}
	})
}

func TestStreamFilterChainOrder(t *testing.T) {
	payload := []byte("BT /F1 12 Tf (Hello) Tj ET")
	// Encoded flate first, then hex: decoding is hex first, then flate.
	encoded := []byte(hex.EncodeToString(deflate(t, payload)) + ">")

	s := &core.Stream{Dict: core.Dict{
		"Filter": core.Array{core.Name("ASCIIHexDecode"), core.Name("FlateDecode")},
	}, Data: encoded}

	obj, err := newContext(nil).Transform(s, nil)
	if err != nil {
		t.Fatalf("Transform failed: %v", err)
	}
	st := obj.(*object.Stream)
	if st.Undecoded() {
		t.Fatalf("stream undecoded: %v", st.DecodeErr())
	}
	if !bytes.Equal(st.Data(), payload) {
		t.Errorf("Data() = %q, want %q", st.Data(), payload)
	}

	// The reverse order is a different chain and fails.
	s.Dict["Filter"] = core.Array{core.Name("FlateDecode"), core.Name("ASCIIHexDecode")}
	obj, _ = newContext(nil).Transform(s, nil)
	if !obj.(*object.Stream).Undecoded() {
		t.Error("reversed chain should not decode")
	}
}

func TestStreamDictionaryEntries(t *testing.T) {
	payload := []byte("abc")
	objs := objects{
		2: core.Int(len(payload)),
		3: core.Name("FlateDecode"),
	}
	s := &core.Stream{Dict: core.Dict{
		"Length": ref(2),
		"Filter": ref(3),
		"Extra":  core.Dict{"A": core.Int(1)},
		"Meta":   ref(99),
	}, Data: deflate(t, payload)}

	ctx := newContext(objs)
	obj, err := ctx.Transform(s, nil)
	if err != nil {
		t.Fatalf("Transform failed: %v", err)
	}
	st := obj.(*object.Stream)

	if !bytes.Equal(st.Data(), payload) {
		t.Errorf("Data() = %q; referenced Filter not applied", st.Data())
	}
	if got := st.Dict.Get("Length"); got != core.Int(3) {
		t.Errorf("Length = %v, want resolved 3", got)
	}
	extra, ok := st.Dict.Get("Extra").(*object.Dict)
	if !ok {
		t.Fatalf("Extra = %T, want *object.Dict", st.Dict.Get("Extra"))
	}
	if extra.Parent() != st.Dict {
		t.Error("nested dictionary not attached to the stream dictionary")
	}
	if _, ok := st.Dict.Get("Meta").(core.Null); !ok {
		t.Errorf("Meta = %v, want null for a missing object", st.Dict.Get("Meta"))
	}
	if !hasWarning(ctx, resolver.WarnUnresolvedReference) {
		t.Error("missing unresolved reference warning")
	}
	if st.Dict.Parent() != st {
		t.Error("stream dictionary not attached to its stream")
	}
}

func TestIdempotentResolution(t *testing.T) {
	objs := objects{
		1: core.Dict{"Font": ref(5)},
		2: core.Dict{"Font": ref(5)},
		5: core.Dict{"Type": core.Name("Font")},
	}
	ctx := newContext(objs, resolver.WithEager(true))

	a, err := ctx.Resolve(ref(1), nil)
	if err != nil {
		t.Fatal(err)
	}
	b, err := ctx.Resolve(ref(2), nil)
	if err != nil {
		t.Fatal(err)
	}
	fa := a.(*object.Dict).Get("Font")
	fb := b.(*object.Dict).Get("Font")
	if fa != fb {
		t.Error("shared object resolved into two instances")
	}
	again, _ := ctx.Resolve(ref(5), nil)
	if again != fa {
		t.Error("direct resolution returned a different instance")
	}
	// The shared object was attached last by object 2.
	if fa.(*object.Dict).Parent() != b {
		t.Error("last attachment should win")
	}
}

func pageTree() objects {
	return objects{
		1: core.Dict{"Type": core.Name("Catalog"), "Pages": ref(2)},
		2: core.Dict{"Type": core.Name("Pages"), "Kids": core.Array{ref(3)}, "Count": core.Int(1)},
		3: core.Dict{"Type": core.Name("Page"), "Parent": ref(2), "Self": ref(3)},
	}
}

func TestCycleSafetyEager(t *testing.T) {
	ctx := newContext(pageTree(), resolver.WithEager(true))

	obj, err := ctx.Resolve(ref(1), nil)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	pages := obj.(*object.Dict).Get("Pages").(*object.Dict)
	page := pages.Get("Kids").(*object.Array).Get(0).(*object.Dict)

	if page.Get("Parent") != pages {
		t.Error("back edge does not point at the existing pages node")
	}
	if page.Get("Self") != page {
		t.Error("self reference does not point at the page itself")
	}
	if err := ctx.Finish(); err != nil {
		t.Errorf("Finish() = %v", err)
	}
}

func TestCycleSafetyLazy(t *testing.T) {
	ctx := newContext(pageTree())

	obj, err := ctx.Resolve(ref(1), nil)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	catalog := obj.(*object.Dict)
	if _, ok := catalog.Get("Pages").(*object.Reference); !ok {
		t.Fatalf("Pages = %T, want a lazy reference", catalog.Get("Pages"))
	}

	pages, ok := catalog.GetDict("Pages")
	if !ok {
		t.Fatal("Pages did not resolve")
	}
	kids, _ := pages.GetArray("Kids")
	kid, err := kids.Resolve(0)
	if err != nil {
		t.Fatal(err)
	}
	parent, _ := kid.(*object.Dict).GetDict("Parent")
	if parent != pages {
		t.Error("lazy back edge resolved to a different instance")
	}
}

func TestMaxDepthPropagates(t *testing.T) {
	nested := core.Object(core.Int(0))
	for i := 0; i < 20; i++ {
		nested = core.Array{nested}
	}
	ctx := newContext(nil, resolver.WithMaxDepth(10))
	if _, err := ctx.Transform(nested, nil); !errors.Is(err, resolver.ErrMaxDepth) {
		t.Errorf("error = %v, want ErrMaxDepth", err)
	}
}

func TestListenersReachEveryNode(t *testing.T) {
	var events int
	l := object.NewListener(func(object.Event) { events++ })

	s := &core.Stream{Dict: core.Dict{"Inner": core.Dict{}}, Data: []byte("x")}
	ctx := newContext(nil, resolver.WithListeners(l))
	obj, err := ctx.Transform(core.Dict{"S": s, "A": core.Array{core.Dict{}}}, nil)
	if err != nil {
		t.Fatal(err)
	}

	root := obj.(*object.Dict)
	st := root.Get("S").(*object.Stream)
	nodes := []object.Node{
		root,
		st,
		st.Dict,
		st.Dict.Get("Inner").(*object.Dict),
		root.Get("A").(*object.Array),
		root.Get("A").(*object.Array).Get(0).(*object.Dict),
	}
	for i, n := range nodes {
		if len(n.Listeners()) != 1 {
			t.Errorf("node %d has %d listeners", i, len(n.Listeners()))
		}
	}

	st.Dict.Set("New", core.Int(1))
	if events != 1 {
		t.Errorf("got %d events, want 1", events)
	}
}

func TestTextTransformer(t *testing.T) {
	ctx := newContext(nil)
	obj, err := ctx.Transform(core.Dict{"Title": core.String("\xfe\xff\x00H\x00i"), "Plain": core.String("abc")}, nil)
	if err != nil {
		t.Fatal(err)
	}
	d := obj.(*object.Dict)
	text, ok := d.Get("Title").(*object.Text)
	if !ok || text.Value != "Hi" || text.Parent() != d {
		t.Errorf("Title = %#v", d.Get("Title"))
	}
	if d.Get("Plain") != core.String("abc") {
		t.Errorf("Plain = %v, want the raw string", d.Get("Plain"))
	}
}

// trueType builds a minimal font file with head and maxp tables.
func trueType(unitsPerEm, numGlyphs uint16) []byte {
	head := make([]byte, 54)
	binary.BigEndian.PutUint16(head[0:], 1)
	binary.BigEndian.PutUint32(head[12:], 0x5F0F3CF5)
	binary.BigEndian.PutUint16(head[18:], unitsPerEm)

	maxp := make([]byte, 6)
	binary.BigEndian.PutUint32(maxp[0:], 0x00005000)
	binary.BigEndian.PutUint16(maxp[4:], numGlyphs)

	return opentype.WriteTTF([]opentype.Table{
		{Tag: opentype.MustNewTag("head"), Content: head},
		{Tag: opentype.MustNewTag("maxp"), Content: maxp},
	})
}

func TestFontProgramTrueType(t *testing.T) {
	data := trueType(1000, 5)
	s := &core.Stream{Dict: core.Dict{
		"Length1": core.Int(len(data)),
		"Filter":  core.Name("FlateDecode"),
	}, Data: deflate(t, data)}

	obj, err := newContext(nil).Transform(s, nil)
	if err != nil {
		t.Fatalf("Transform failed: %v", err)
	}
	fp, ok := obj.(*object.FontProgram)
	if !ok {
		t.Fatalf("Transform() = %T, want *object.FontProgram", obj)
	}
	if !fp.Valid() {
		t.Fatalf("program invalid: %v", fp.Err)
	}
	if fp.Format != object.FontTrueType || fp.UnitsPerEm != 1000 || fp.NumGlyphs != 5 {
		t.Errorf("got format %s, upem %d, glyphs %d", fp.Format, fp.UnitsPerEm, fp.NumGlyphs)
	}
	if diff := cmp.Diff([]string{"head", "maxp"}, fp.Tables); diff != "" {
		t.Errorf("tables mismatch (-want +got):\n%s", diff)
	}
	if fp.Stream.Parent() != fp {
		t.Error("stream not attached to its font program")
	}
}

func TestFontProgramInvalid(t *testing.T) {
	tests := []struct {
		name   string
		dict   core.Dict
		data   []byte
		format string
	}{
		{"truetype garbage", core.Dict{"Length1": core.Int(4)}, []byte("nope"), object.FontUnknown},
		{"cff without header", core.Dict{"Subtype": core.Name("Type1C")}, []byte{9, 9, 9, 9}, object.FontCFF},
		{"type1 without header", core.Dict{"Length1": core.Int(1), "Length2": core.Int(1)}, []byte("xx"), object.FontType1},
		{"undecodable", core.Dict{"Length1": core.Int(1), "Filter": core.Name("FlateDecode")}, []byte("not zlib"), object.FontUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := newContext(nil)
			obj, err := ctx.Transform(&core.Stream{Dict: tt.dict, Data: tt.data}, nil)
			if err != nil {
				t.Fatalf("Transform failed: %v", err)
			}
			fp := obj.(*object.FontProgram)
			if fp.Valid() {
				t.Error("broken program reported valid")
			}
			if fp.Format != tt.format {
				t.Errorf("Format = %s, want %s", fp.Format, tt.format)
			}
			if !hasWarning(ctx, resolver.WarnFontProgram) {
				t.Error("missing font warning")
			}
		})
	}
}

func TestFontProgramValidFormats(t *testing.T) {
	cff := &core.Stream{Dict: core.Dict{"Subtype": core.Name("CIDFontType0C")}, Data: []byte{1, 0, 4, 2}}
	obj, _ := newContext(nil).Transform(cff, nil)
	if fp := obj.(*object.FontProgram); !fp.Valid() || fp.Format != object.FontCFF {
		t.Errorf("CFF program: %v", fp)
	}

	t1 := &core.Stream{Dict: core.Dict{"Length1": core.Int(10), "Length2": core.Int(0)}, Data: []byte("%!PS-AdobeFont-1.0")}
	obj, _ = newContext(nil).Transform(t1, nil)
	if fp := obj.(*object.FontProgram); !fp.Valid() || fp.Format != object.FontType1 {
		t.Errorf("Type 1 program: %v", fp)
	}
}

func TestWithMaxDecodedSize(t *testing.T) {
	payload := bytes.Repeat([]byte("a"), 1024)
	s := &core.Stream{Dict: core.Dict{"Filter": core.Name("FlateDecode")}, Data: deflate(t, payload)}

	ctx := resolver.New(objects{}, Default(WithMaxDecodedSize(100)))
	obj, err := ctx.Transform(s, nil)
	if err != nil {
		t.Fatal(err)
	}
	st := obj.(*object.Stream)
	if !st.Undecoded() || !errors.Is(st.DecodeErr(), filters.ErrLimitExceeded) {
		t.Errorf("DecodeErr() = %v, want ErrLimitExceeded", st.DecodeErr())
	}
}

type stubDecoder struct{ calls int }

func (d *stubDecoder) Decode(data []byte, codec string, p imaging.Params) (image.Image, error) {
	d.calls++
	return image.NewGray(image.Rect(0, 0, p.Width, p.Height)), nil
}

type panicDecoder struct{}

func (panicDecoder) Decode([]byte, string, imaging.Params) (image.Image, error) {
	panic("decoder bug")
}

func TestPanickingDecoderGivesPlaceholder(t *testing.T) {
	ctx := resolver.New(objects{}, Default(WithImageDecoder(panicDecoder{})))
	s := &core.Stream{Dict: core.Dict{
		"Subtype": core.Name("Image"),
		"Width":   core.Int(5),
		"Height":  core.Int(4),
		"Filter":  core.Name("DCTDecode"),
	}, Data: []byte{0}}

	obj, err := ctx.Transform(s, nil)
	if err != nil {
		t.Fatalf("Transform failed: %v", err)
	}
	img := obj.(*object.Image)
	if !img.Placeholder() || img.Width() != 5 || img.Height() != 4 {
		t.Errorf("got %dx%d placeholder=%v, want a 5x4 placeholder", img.Width(), img.Height(), img.Placeholder())
	}
	var found bool
	for _, w := range ctx.Warnings() {
		if w.Kind == resolver.WarnPlaceholderImage && errors.Is(w.Err, imaging.ErrMalformedImage) {
			found = true
		}
	}
	if !found {
		t.Errorf("missing placeholder warning with ErrMalformedImage in %v", ctx.Warnings())
	}
}

func TestWithImageDecoder(t *testing.T) {
	dec := &stubDecoder{}
	ctx := resolver.New(objects{}, Default(WithImageDecoder(dec)))
	s := &core.Stream{Dict: core.Dict{
		"Subtype": core.Name("Image"),
		"Width":   core.Int(5),
		"Height":  core.Int(4),
		"Filter":  core.Name("JPXDecode"),
	}, Data: []byte{0}}

	obj, err := ctx.Transform(s, nil)
	if err != nil {
		t.Fatal(err)
	}
	img := obj.(*object.Image)
	if dec.calls != 1 || img.Placeholder() || img.Width() != 5 || img.Codec != imaging.CodecJPX {
		t.Errorf("decoder calls %d, image %v", dec.calls, img)
	}
}
