package object

import (
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/unicode/norm"

	"github.com/tsawler/pdfgraph/core"
)

// Text encodings recognised in string objects.
const (
	EncodingUTF16BE = "UTF-16BE"
	EncodingUTF16LE = "UTF-16LE"
	EncodingUTF8    = "UTF-8"
	EncodingPDFDoc  = "PDFDocEncoding"
)

// Text is a decoded text string.
type Text struct {
	link
	Raw      core.String
	Value    string
	Encoding string
}

// NewText decodes raw into a text object.
func NewText(raw core.String) *Text {
	value, enc := decodeText(raw)
	return &Text{Raw: raw, Value: value, Encoding: enc}
}

func (t *Text) Type() core.ObjectType { return core.ObjString }
func (t *Text) String() string        { return t.Value }

// HasBOM reports whether s starts with a UTF-16 or UTF-8 byte order mark.
func HasBOM(s core.String) bool {
	return strings.HasPrefix(string(s), "\xfe\xff") ||
		strings.HasPrefix(string(s), "\xff\xfe") ||
		strings.HasPrefix(string(s), "\xef\xbb\xbf")
}

// DecodeText converts a text string to NFC-normalised UTF-8.
func DecodeText(s core.String) string {
	value, _ := decodeText(s)
	return value
}

var (
	utf16be = unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM)
	utf16le = unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM)
)

func decodeText(s core.String) (string, string) {
	str := string(s)
	var (
		out string
		enc string
		err error
	)
	switch {
	case strings.HasPrefix(str, "\xfe\xff"):
		enc = EncodingUTF16BE
		out, err = utf16be.NewDecoder().String(str)
	case strings.HasPrefix(str, "\xff\xfe"):
		enc = EncodingUTF16LE
		out, err = utf16le.NewDecoder().String(str)
	case strings.HasPrefix(str, "\xef\xbb\xbf"):
		enc = EncodingUTF8
		out = strings.ToValidUTF8(str[3:], "�")
	default:
		return norm.NFC.String(pdfDocDecode(str)), EncodingPDFDoc
	}
	if err != nil {
		return norm.NFC.String(pdfDocDecode(str)), EncodingPDFDoc
	}
	return norm.NFC.String(out), enc
}

// pdfDocDiffs lists the PDFDocEncoding code points that differ from Latin-1.
var pdfDocDiffs = map[byte]rune{
	0x18: '˘', 0x19: 'ˇ', 0x1a: 'ˆ', 0x1b: '˙',
	0x1c: '˝', 0x1d: '˛', 0x1e: '˚', 0x1f: '˜',
	0x80: '•', 0x81: '†', 0x82: '‡', 0x83: '…',
	0x84: '—', 0x85: '–', 0x86: 'ƒ', 0x87: '⁄',
	0x88: '‹', 0x89: '›', 0x8a: '−', 0x8b: '‰',
	0x8c: '„', 0x8d: '“', 0x8e: '”', 0x8f: '‘',
	0x90: '’', 0x91: '‚', 0x92: '™', 0x93: 'ﬁ',
	0x94: 'ﬂ', 0x95: 'Ł', 0x96: 'Œ', 0x97: 'Š',
	0x98: 'Ÿ', 0x99: 'Ž', 0x9a: 'ı', 0x9b: 'ł',
	0x9c: 'œ', 0x9d: 'š', 0x9e: 'ž', 0x9f: '�',
	0xa0: '€', 0xad: '�',
}

func pdfDocDecode(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if r, ok := pdfDocDiffs[s[i]]; ok {
			b.WriteRune(r)
			continue
		}
		b.WriteRune(rune(s[i]))
	}
	return b.String()
}
