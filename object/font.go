package object

import (
	"fmt"

	"github.com/tsawler/pdfgraph/core"
)

// Font program formats.
const (
	FontTrueType = "TrueType"
	FontOpenType = "OpenType"
	FontType1    = "Type1"
	FontCFF      = "CFF"
	FontUnknown  = "Unknown"
)

// FontProgram is an embedded font file. The stream holds the decoded
// program; the remaining fields describe what could be read from it.
type FontProgram struct {
	link
	Stream *Stream
	Format string

	NumGlyphs  int
	UnitsPerEm int
	Tables     []string // table tags of TrueType and OpenType programs

	// Err is set when the program could not be decoded or parsed.
	Err error
}

// NewFontProgram wraps a typed stream.
func NewFontProgram(s *Stream) *FontProgram {
	fp := &FontProgram{Stream: s, Format: FontUnknown}
	if s != nil {
		s.SetParent(fp)
	}
	return fp
}

func (fp *FontProgram) Type() core.ObjectType { return core.ObjStream }

func (fp *FontProgram) String() string {
	if fp.Err != nil {
		return fmt.Sprintf("font program %s (invalid: %v)", fp.Format, fp.Err)
	}
	return fmt.Sprintf("font program %s (%d glyphs)", fp.Format, fp.NumGlyphs)
}

// Valid reports whether the program was decoded and parsed.
func (fp *FontProgram) Valid() bool { return fp.Err == nil }

// HasTable reports whether the program contains the given table tag.
func (fp *FontProgram) HasTable(tag string) bool {
	for _, t := range fp.Tables {
		if t == tag {
			return true
		}
	}
	return false
}
