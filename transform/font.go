package transform

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/go-text/typesetting/font/opentype"
	"github.com/go-text/typesetting/font/opentype/tables"

	"github.com/tsawler/pdfgraph/core"
	"github.com/tsawler/pdfgraph/internal/filters"
	"github.com/tsawler/pdfgraph/object"
	"github.com/tsawler/pdfgraph/resolver"
)

var (
	tagHead = opentype.MustNewTag("head")
	tagMaxp = opentype.MustNewTag("maxp")
)

// FontProgramTransformer handles embedded font files (the targets of
// FontFile, FontFile2 and FontFile3). TrueType and OpenType programs are
// parsed for their table directory, glyph count and units per em; Type 1
// and bare CFF programs are identified by format only. A program that
// cannot be read is kept with its error set.
type FontProgramTransformer struct {
	Filters *filters.Registry
}

func (t *FontProgramTransformer) Recognizes(node core.Object) bool {
	s, ok := node.(*core.Stream)
	if !ok || s.Dict.Has("Type") {
		return false
	}
	if s.Dict.Has("Length1") {
		return true
	}
	subtype, _ := s.Dict.GetName("Subtype")
	switch subtype {
	case "Type1C", "CIDFontType0C", "OpenType":
		return true
	}
	return false
}

func (t *FontProgramTransformer) Transform(node core.Object, parent object.Node, ctx *resolver.Context) (core.Object, error) {
	raw := node.(*core.Stream)

	fp := object.NewFontProgram(object.NewStream(object.NewDict(len(raw.Dict)), nil))
	ctx.Attach(fp, parent)
	ctx.Attach(fp.Stream, fp)
	ctx.Attach(fp.Stream.Dict, fp.Stream)
	ctx.Bind(fp)

	if err := resolveRefs(raw.Dict, fp.Stream.Dict, ctx); err != nil {
		return nil, err
	}

	decodeStream(raw, fp.Stream, registryOr(t.Filters), ctx)
	if err := parseFontProgram(fp); err != nil {
		fp.Err = err
		ctx.Warn(resolver.WarnFontProgram, err, "format", fp.Format)
	}

	if err := transformValues(raw.Dict, fp.Stream.Dict, ctx); err != nil {
		return nil, err
	}

	ctx.Attach(fp, parent)
	return fp, nil
}

func parseFontProgram(fp *object.FontProgram) error {
	s := fp.Stream
	if s.Undecoded() {
		return fmt.Errorf("font program not decoded: %w", s.DecodeErr())
	}
	data := s.Data()

	subtype, _ := s.Dict.GetName("Subtype")
	switch {
	case subtype == "Type1C" || subtype == "CIDFontType0C":
		fp.Format = object.FontCFF
		if len(data) < 4 || data[0] != 1 {
			return errors.New("missing CFF header")
		}
		return nil
	case subtype == "" && s.Dict.Has("Length2"):
		fp.Format = object.FontType1
		if !bytes.HasPrefix(data, []byte("%!")) && !bytes.HasPrefix(data, []byte{0x80, 0x01}) {
			return errors.New("missing PostScript header")
		}
		return nil
	}

	loader, err := opentype.NewLoader(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("read font directory: %w", err)
	}
	switch loader.Type {
	case opentype.OpenType:
		fp.Format = object.FontOpenType
	case opentype.PostScript1:
		fp.Format = object.FontType1
	default:
		fp.Format = object.FontTrueType
	}

	for _, tag := range loader.Tables() {
		fp.Tables = append(fp.Tables, tag.String())
	}

	if loader.HasTable(tagHead) {
		buf, err := loader.RawTable(tagHead)
		if err != nil {
			return fmt.Errorf("read head: %w", err)
		}
		head, _, err := tables.ParseHead(buf)
		if err != nil {
			return err
		}
		fp.UnitsPerEm = int(head.UnitsPerEm)
	}
	if loader.HasTable(tagMaxp) {
		buf, err := loader.RawTable(tagMaxp)
		if err != nil {
			return fmt.Errorf("read maxp: %w", err)
		}
		maxp, _, err := tables.ParseMaxp(buf)
		if err != nil {
			return err
		}
		fp.NumGlyphs = int(maxp.NumGlyphs)
	}
	return nil
}
