package core

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
)

// TokenType represents the type of token
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenWhitespace
	TokenComment
	TokenKeyword     // true, false, null, obj, endobj, stream, endstream, etc.
	TokenInteger     // 123
	TokenReal        // 3.14
	TokenString      // (hello)
	TokenHexString   // <48656C6C6F>
	TokenName        // /Type
	TokenArrayStart  // [
	TokenArrayEnd    // ]
	TokenDictStart   // <<
	TokenDictEnd     // >>
	TokenIndirectRef // R (after two numbers)
)

// Token represents a lexical token
type Token struct {
	Type  TokenType
	Value []byte
	Pos   int64 // Absolute position in the document
}

// ErrSyntax is matched by every *SyntaxError.
var ErrSyntax = errors.New("pdf syntax error")

// SyntaxError reports malformed input at a byte position.
type SyntaxError struct {
	Pos int64
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at offset %d: %s", e.Pos, e.Msg)
}

// Is reports whether target is ErrSyntax.
func (e *SyntaxError) Is(target error) bool { return target == ErrSyntax }

// Lexer performs lexical analysis of PDF content
type Lexer struct {
	reader *bufio.Reader
	pos    int64
}

// NewLexer creates a new lexer whose positions start at zero.
func NewLexer(r io.Reader) *Lexer {
	return NewLexerAt(r, 0)
}

// NewLexerAt creates a lexer for input that starts at document offset base.
func NewLexerAt(r io.Reader, base int64) *Lexer {
	return &Lexer{reader: bufio.NewReader(r), pos: base}
}

// Pos returns the absolute offset of the next unread byte.
func (l *Lexer) Pos() int64 { return l.pos }

func (l *Lexer) errorf(pos int64, format string, args ...interface{}) error {
	return &SyntaxError{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

// NextToken returns the next token from the input
func (l *Lexer) NextToken() (*Token, error) {
	l.skipWhitespace()

	b, err := l.peek()
	if err == io.EOF {
		return &Token{Type: TokenEOF, Pos: l.pos}, nil
	}
	if err != nil {
		return nil, err
	}

	start := l.pos
	switch b {
	case '%':
		return l.readComment()
	case '[':
		l.readByte()
		return &Token{Type: TokenArrayStart, Value: []byte{'['}, Pos: start}, nil
	case ']':
		l.readByte()
		return &Token{Type: TokenArrayEnd, Value: []byte{']'}, Pos: start}, nil
	case '(':
		return l.readString()
	case '<':
		if next, err := l.reader.Peek(2); err == nil && next[1] == '<' {
			l.readByte()
			l.readByte()
			return &Token{Type: TokenDictStart, Value: []byte("<<"), Pos: start}, nil
		}
		return l.readHexString()
	case '>':
		if next, err := l.reader.Peek(2); err == nil && next[1] == '>' {
			l.readByte()
			l.readByte()
			return &Token{Type: TokenDictEnd, Value: []byte(">>"), Pos: start}, nil
		}
		return nil, l.errorf(start, "unexpected '>'")
	case '/':
		return l.readName()
	}

	if isDigit(b) || b == '-' || b == '+' || b == '.' {
		return l.readNumber()
	}
	if isAlpha(b) {
		return l.readKeyword()
	}

	return nil, l.errorf(start, "unexpected character %q", b)
}

// readByte reads a single byte and advances position
func (l *Lexer) readByte() (byte, error) {
	b, err := l.reader.ReadByte()
	if err != nil {
		return 0, err
	}
	l.pos++
	return b, nil
}

// peek looks at the next byte without consuming it
func (l *Lexer) peek() (byte, error) {
	buf, err := l.reader.Peek(1)
	if err != nil {
		return 0, err
	}
	return buf[0], nil
}

// skipWhitespace skips PDF whitespace: space, tab, LF, CR, FF and NUL.
func (l *Lexer) skipWhitespace() {
	for {
		b, err := l.peek()
		if err != nil || !isWhitespace(b) {
			return
		}
		l.readByte()
	}
}

// readComment reads a comment (% to end of line)
func (l *Lexer) readComment() (*Token, error) {
	start := l.pos
	var buf bytes.Buffer

	for {
		b, err := l.peek()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if b == '\r' || b == '\n' {
			l.skipEOL()
			break
		}
		l.readByte()
		buf.WriteByte(b)
	}

	return &Token{Type: TokenComment, Value: buf.Bytes(), Pos: start}, nil
}

// skipEOL consumes one end-of-line marker: LF, CR or CR LF.
func (l *Lexer) skipEOL() {
	b, err := l.peek()
	if err != nil {
		return
	}
	switch b {
	case '\n':
		l.readByte()
	case '\r':
		l.readByte()
		if next, err := l.peek(); err == nil && next == '\n' {
			l.readByte()
		}
	}
}

// readString reads a literal string (hello) with balanced parentheses and
// backslash escapes.
func (l *Lexer) readString() (*Token, error) {
	start := l.pos
	var buf bytes.Buffer

	l.readByte() // (

	depth := 1
	for {
		b, err := l.readByte()
		if err != nil {
			return nil, l.errorf(start, "unterminated string")
		}

		switch b {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return &Token{Type: TokenString, Value: buf.Bytes(), Pos: start}, nil
			}
		case '\\':
			if err := l.readEscape(&buf); err != nil {
				return nil, l.errorf(start, "unterminated string")
			}
			continue
		}
		buf.WriteByte(b)
	}
}

var stringEscapes = map[byte]byte{
	'n': '\n', 'r': '\r', 't': '\t', 'b': '\b', 'f': '\f',
	'(': '(', ')': ')', '\\': '\\',
}

// readEscape decodes the escape sequence following a backslash.
func (l *Lexer) readEscape(buf *bytes.Buffer) error {
	next, err := l.readByte()
	if err != nil {
		return err
	}

	if c, ok := stringEscapes[next]; ok {
		buf.WriteByte(c)
		return nil
	}

	switch {
	case next == '\r':
		// Line continuation
		if peek, err := l.peek(); err == nil && peek == '\n' {
			l.readByte()
		}
	case next == '\n':
	case isOctalDigit(next):
		val := next - '0'
		for i := 0; i < 2; i++ {
			peek, err := l.peek()
			if err != nil || !isOctalDigit(peek) {
				break
			}
			l.readByte()
			val = val*8 + (peek - '0')
		}
		buf.WriteByte(val)
	default:
		// Unknown escapes keep the character
		buf.WriteByte(next)
	}
	return nil
}

// readHexString reads a hexadecimal string <48656C6C6F>. The token value
// holds the hex digits only.
func (l *Lexer) readHexString() (*Token, error) {
	start := l.pos
	var buf bytes.Buffer

	l.readByte() // <

	for {
		b, err := l.readByte()
		if err != nil {
			return nil, l.errorf(start, "unterminated hex string")
		}
		if b == '>' {
			break
		}
		if isWhitespace(b) {
			continue
		}
		if !isHexDigit(b) {
			return nil, l.errorf(l.pos-1, "invalid hex digit %q", b)
		}
		buf.WriteByte(b)
	}

	return &Token{Type: TokenHexString, Value: buf.Bytes(), Pos: start}, nil
}

// readName reads a name object /Type, decoding #xx escapes.
func (l *Lexer) readName() (*Token, error) {
	start := l.pos
	var buf bytes.Buffer

	l.readByte() // /

	for {
		b, err := l.peek()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if isWhitespace(b) || isDelimiter(b) {
			break
		}
		l.readByte()

		if b == '#' {
			hex, err := l.reader.Peek(2)
			if err == nil && isHexDigit(hex[0]) && isHexDigit(hex[1]) {
				l.readByte()
				l.readByte()
				buf.WriteByte(hexValue(hex[0])<<4 | hexValue(hex[1]))
				continue
			}
		}
		buf.WriteByte(b)
	}

	return &Token{Type: TokenName, Value: buf.Bytes(), Pos: start}, nil
}

// readNumber reads an integer or real number
func (l *Lexer) readNumber() (*Token, error) {
	start := l.pos
	var buf bytes.Buffer
	hasDecimal := false

	for {
		b, err := l.peek()
		if err != nil {
			break
		}
		if b == '.' && !hasDecimal {
			hasDecimal = true
		} else if !isDigit(b) && !(buf.Len() == 0 && (b == '-' || b == '+')) {
			break
		}
		l.readByte()
		buf.WriteByte(b)
	}

	tokenType := TokenInteger
	if hasDecimal {
		tokenType = TokenReal
	}
	return &Token{Type: tokenType, Value: buf.Bytes(), Pos: start}, nil
}

// readKeyword reads a keyword (true, false, null, R, obj, endobj, etc.)
func (l *Lexer) readKeyword() (*Token, error) {
	start := l.pos
	var buf bytes.Buffer

	for {
		b, err := l.peek()
		if err != nil || !(isAlpha(b) || isDigit(b)) {
			break
		}
		l.readByte()
		buf.WriteByte(b)
	}

	value := buf.Bytes()
	if len(value) == 1 && value[0] == 'R' {
		return &Token{Type: TokenIndirectRef, Value: value, Pos: start}, nil
	}
	return &Token{Type: TokenKeyword, Value: value, Pos: start}, nil
}

// SkipStreamEOL consumes the end-of-line marker that follows the stream
// keyword. Spaces before the marker are tolerated; a missing marker is not
// an error.
func (l *Lexer) SkipStreamEOL() error {
	for {
		b, err := l.peek()
		if err != nil {
			return err
		}
		if b != ' ' && b != '\t' {
			break
		}
		l.readByte()
	}
	l.skipEOL()
	return nil
}

// ReadBytes reads exactly n bytes from the underlying reader.
// This is used for reading binary stream data.
func (l *Lexer) ReadBytes(n int) ([]byte, error) {
	data := make([]byte, n)
	read, err := io.ReadFull(l.reader, data)
	l.pos += int64(read)
	if err != nil {
		return data[:read], fmt.Errorf("unexpected EOF: expected %d bytes, got %d", n, read)
	}
	return data, nil
}

// Helper functions

func isWhitespace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\f' || b == 0
}

func isDelimiter(b byte) bool {
	switch b {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isOctalDigit(b byte) bool {
	return b >= '0' && b <= '7'
}

func isHexDigit(b byte) bool {
	return isDigit(b) || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

func isAlpha(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func hexValue(b byte) byte {
	switch {
	case isDigit(b):
		return b - '0'
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10
	}
	return 0
}
