package core

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
)

// ReferenceResolver is an interface for resolving indirect references.
// This allows the parser to resolve indirect stream lengths when needed.
type ReferenceResolver interface {
	ResolveReference(ref IndirectRef) (Object, error)
}

// Parser parses PDF objects using a Lexer for tokenization.
// It supports parsing all PDF object types including indirect objects and streams.
//
// A parser created with NewParserAt reads from random-access input and
// returns streams whose bytes are fetched on demand.
type Parser struct {
	lexer        *Lexer
	currentToken *Token
	peekToken    *Token
	resolver     ReferenceResolver

	src  io.ReaderAt
	size int64
}

// NewParser creates a new PDF parser for the given reader.
// It initializes the lexer and loads the first two tokens for lookahead.
func NewParser(r io.Reader) *Parser {
	p := &Parser{lexer: NewLexer(r)}
	p.reset()
	return p
}

// NewParserAt creates a parser that starts at offset within src, which holds
// size bytes.
func NewParserAt(src io.ReaderAt, size, offset int64) *Parser {
	p := &Parser{src: src, size: size}
	p.seek(offset)
	return p
}

// SetReferenceResolver sets the reference resolver for the parser.
// This is needed to resolve indirect stream lengths.
func (p *Parser) SetReferenceResolver(resolver ReferenceResolver) {
	p.resolver = resolver
}

func (p *Parser) seek(offset int64) {
	p.lexer = NewLexerAt(io.NewSectionReader(p.src, offset, p.size-offset), offset)
	p.reset()
}

func (p *Parser) reset() {
	p.currentToken = nil
	p.peekToken = nil
	p.nextToken()
	p.nextToken()
}

// nextToken advances the parser to the next token by shifting the lookahead.
func (p *Parser) nextToken() error {
	p.currentToken = p.peekToken

	// The bytes after the stream keyword are binary and are read by
	// parseStream, so no lookahead is loaded past it.
	if p.atKeyword("stream") {
		p.peekToken = nil
		return nil
	}

	token, err := p.lexer.NextToken()
	if err != nil {
		p.peekToken = nil
		return err
	}
	p.peekToken = token
	return nil
}

func (p *Parser) atKeyword(kw string) bool {
	return p.currentToken != nil &&
		p.currentToken.Type == TokenKeyword &&
		string(p.currentToken.Value) == kw
}

// skipComments skips over any consecutive comment tokens.
func (p *Parser) skipComments() {
	for p.currentToken != nil && p.currentToken.Type == TokenComment {
		p.nextToken()
	}
}

func (p *Parser) syntaxError(format string, args ...interface{}) error {
	var pos int64
	if p.currentToken != nil {
		pos = p.currentToken.Pos
	} else {
		pos = p.lexer.Pos()
	}
	return &SyntaxError{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

// ParseObject parses and returns the next PDF object from the input.
// It handles all PDF object types: null, boolean, integer, real, string,
// name, array, dictionary, and indirect references.
func (p *Parser) ParseObject() (Object, error) {
	p.skipComments()

	if p.currentToken == nil {
		return nil, p.syntaxError("unexpected end of input")
	}

	tok := p.currentToken
	switch tok.Type {
	case TokenEOF:
		return nil, io.EOF

	case TokenKeyword:
		switch string(tok.Value) {
		case "null":
			p.nextToken()
			return Null{}, nil
		case "true":
			p.nextToken()
			return Bool(true), nil
		case "false":
			p.nextToken()
			return Bool(false), nil
		}
		return nil, p.syntaxError("unexpected keyword %q", tok.Value)

	case TokenInteger:
		return p.parseNumber()

	case TokenReal:
		val, err := strconv.ParseFloat(string(tok.Value), 64)
		if err != nil {
			// Malformed reals such as "--1.5" read as zero.
			val = 0
		}
		p.nextToken()
		return Real(val), nil

	case TokenString:
		p.nextToken()
		return String(tok.Value), nil

	case TokenHexString:
		digits := tok.Value
		if len(digits)%2 != 0 {
			digits = append(digits, '0')
		}
		result := make([]byte, len(digits)/2)
		if _, err := hex.Decode(result, digits); err != nil {
			return nil, p.syntaxError("invalid hex string: %v", err)
		}
		p.nextToken()
		return String(result), nil

	case TokenName:
		p.nextToken()
		return Name(tok.Value), nil

	case TokenArrayStart:
		return p.parseArray()

	case TokenDictStart:
		return p.parseDict()
	}

	return nil, p.syntaxError("unexpected token type %v", tok.Type)
}

// parseNumber parses an integer or an indirect reference.
// Indirect references are detected by lookahead: "num gen R" pattern.
func (p *Parser) parseNumber() (Object, error) {
	first, err := strconv.ParseInt(string(p.currentToken.Value), 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(string(p.currentToken.Value), 64)
		if ferr != nil {
			return nil, p.syntaxError("invalid number %q", p.currentToken.Value)
		}
		p.nextToken()
		return Real(f), nil
	}

	if p.peekToken != nil && p.peekToken.Type == TokenInteger {
		second, err := strconv.ParseInt(string(p.peekToken.Value), 10, 64)
		if err == nil {
			// Move onto the generation number. If no R follows, it stays
			// current and is parsed as the next object.
			p.nextToken()
			if p.peekToken != nil && p.peekToken.Type == TokenIndirectRef {
				p.nextToken()
				p.nextToken()
				return IndirectRef{Number: int(first), Generation: int(second)}, nil
			}
			return Int(first), nil
		}
	}

	p.nextToken()
	return Int(first), nil
}

// parseArray parses a PDF array "[obj1 obj2 ...]".
func (p *Parser) parseArray() (Object, error) {
	p.nextToken() // [

	arr := Array{}
	for {
		p.skipComments()

		if p.currentToken == nil || p.currentToken.Type == TokenEOF {
			return nil, p.syntaxError("unexpected end of input in array")
		}
		if p.currentToken.Type == TokenArrayEnd {
			p.nextToken()
			return arr, nil
		}

		obj, err := p.ParseObject()
		if err != nil {
			return nil, fmt.Errorf("error parsing array element %d: %w", len(arr), err)
		}
		arr = append(arr, obj)
	}
}

// parseDict parses a PDF dictionary "<< /Key value ... >>".
func (p *Parser) parseDict() (Object, error) {
	p.nextToken() // <<

	dict := make(Dict)
	for {
		p.skipComments()

		if p.currentToken == nil || p.currentToken.Type == TokenEOF {
			return nil, p.syntaxError("unexpected end of input in dictionary")
		}
		if p.currentToken.Type == TokenDictEnd {
			p.nextToken()
			return dict, nil
		}

		if p.currentToken.Type != TokenName {
			return nil, p.syntaxError("expected name for dictionary key, got %v", p.currentToken.Type)
		}
		key := string(p.currentToken.Value)
		p.nextToken()

		// A key directly followed by >> has no value.
		if p.currentToken != nil && p.currentToken.Type == TokenDictEnd {
			dict[key] = Null{}
			continue
		}

		value, err := p.ParseObject()
		if err != nil {
			return nil, fmt.Errorf("error parsing dictionary value for key %q: %w", key, err)
		}
		dict[key] = value
	}
}

// ParseIndirectObject parses an indirect object definition.
// Format: "num gen obj <object> endobj" or "num gen obj <dict> stream ... endstream endobj".
// A missing endobj keyword is tolerated.
func (p *Parser) ParseIndirectObject() (*IndirectObject, error) {
	p.skipComments()

	num, err := p.expectInt("object number")
	if err != nil {
		return nil, err
	}
	gen, err := p.expectInt("generation number")
	if err != nil {
		return nil, err
	}

	if !p.atKeyword("obj") {
		return nil, p.syntaxError("expected 'obj' keyword")
	}
	p.nextToken()

	obj, err := p.ParseObject()
	if err != nil {
		return nil, fmt.Errorf("error parsing indirect object %d %d: %w", num, gen, err)
	}

	if p.atKeyword("stream") {
		dict, ok := obj.(Dict)
		if !ok {
			return nil, p.syntaxError("stream must follow a dictionary")
		}
		stream, err := p.parseStream(dict)
		if err != nil {
			return nil, fmt.Errorf("error parsing stream %d %d: %w", num, gen, err)
		}
		obj = stream
	}

	if p.atKeyword("endobj") {
		p.nextToken()
	}

	return &IndirectObject{
		Ref:    IndirectRef{Number: num, Generation: gen},
		Object: obj,
	}, nil
}

func (p *Parser) expectInt(what string) (int, error) {
	if p.currentToken == nil || p.currentToken.Type != TokenInteger {
		return 0, p.syntaxError("expected %s", what)
	}
	v, err := strconv.Atoi(string(p.currentToken.Value))
	if err != nil {
		return 0, p.syntaxError("invalid %s: %v", what, err)
	}
	p.nextToken()
	return v, nil
}

// streamLength returns the declared /Length, resolving an indirect value.
func (p *Parser) streamLength(dict Dict) (int64, error) {
	switch v := dict.Get("Length").(type) {
	case Int:
		if v < 0 {
			return 0, fmt.Errorf("invalid stream length: %d", v)
		}
		return int64(v), nil
	case IndirectRef:
		if p.resolver == nil {
			return 0, fmt.Errorf("indirect reference for stream length requires a reference resolver")
		}
		resolved, err := p.resolver.ResolveReference(v)
		if err != nil {
			return 0, fmt.Errorf("failed to resolve stream length reference: %w", err)
		}
		n, ok := resolved.(Int)
		if !ok || n < 0 {
			return 0, fmt.Errorf("stream length reference resolved to %v", resolved)
		}
		return int64(n), nil
	case nil:
		return 0, fmt.Errorf("stream dictionary missing 'Length' entry")
	default:
		return 0, fmt.Errorf("invalid type for stream length: %T", v)
	}
}

// parseStream parses a stream object after the "stream" keyword.
func (p *Parser) parseStream(dict Dict) (*Stream, error) {
	if err := p.lexer.SkipStreamEOL(); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to skip EOL after stream keyword: %w", err)
	}

	if p.src != nil {
		return p.parseStreamAt(dict)
	}

	length, err := p.streamLength(dict)
	if err != nil {
		return nil, err
	}
	data, err := p.lexer.ReadBytes(int(length))
	if err != nil {
		return nil, fmt.Errorf("failed to read stream data: %w", err)
	}

	token, err := p.lexer.NextToken()
	if err != nil {
		return nil, fmt.Errorf("failed to read token after stream data: %w", err)
	}
	if token.Type != TokenKeyword || string(token.Value) != "endstream" {
		return nil, &SyntaxError{Pos: token.Pos, Msg: fmt.Sprintf("expected 'endstream' keyword, got %q", token.Value)}
	}

	p.reset()
	return &Stream{Dict: dict, Data: data}, nil
}

// parseStreamAt records the byte range of the stream data without reading
// it. When /Length is missing or does not end at the endstream keyword the
// range is recovered by scanning for endstream.
func (p *Parser) parseStreamAt(dict Dict) (*Stream, error) {
	start := p.lexer.Pos()

	length, err := p.streamLength(dict)
	if err != nil || !p.endstreamAt(start+length) {
		end, ok := p.scanEndstream(start)
		if !ok {
			if err == nil {
				err = fmt.Errorf("stream data at offset %d has no endstream keyword", start)
			}
			return nil, err
		}
		length = end - start
	}

	p.seek(start + length)
	if !p.atKeyword("endstream") {
		return nil, p.syntaxError("expected 'endstream' keyword")
	}
	p.nextToken()

	return NewLazyStream(dict, p.src, start, length), nil
}

// endstreamAt reports whether the endstream keyword follows offset after
// optional whitespace.
func (p *Parser) endstreamAt(offset int64) bool {
	if offset > p.size {
		return false
	}
	buf := make([]byte, 32)
	n, _ := p.src.ReadAt(buf, offset)
	return bytes.HasPrefix(bytes.TrimLeft(buf[:n], " \t\r\n\f\x00"), []byte("endstream"))
}

// scanEndstream finds the endstream keyword after start and returns the end
// offset of the data, excluding the EOL marker before the keyword.
func (p *Parser) scanEndstream(start int64) (int64, bool) {
	const chunk = 64 << 10
	keyword := []byte("endstream")
	buf := make([]byte, chunk+len(keyword))

	for off := start; off < p.size; off += chunk {
		n, _ := p.src.ReadAt(buf, off)
		if n == 0 {
			break
		}
		if i := bytes.Index(buf[:n], keyword); i >= 0 {
			end := off + int64(i)
			if i > 0 && buf[i-1] == '\n' {
				end--
				i--
			}
			if i > 0 && buf[i-1] == '\r' {
				end--
			}
			if end < start {
				end = start
			}
			return end, true
		}
	}
	return 0, false
}

// ParseIndirectObjectAt parses the indirect object that starts at offset.
// Streams in the result read their data from src on demand.
func ParseIndirectObjectAt(src io.ReaderAt, size, offset int64, resolver ReferenceResolver) (*IndirectObject, error) {
	if offset < 0 || offset >= size {
		return nil, fmt.Errorf("object offset %d outside file of %d bytes", offset, size)
	}
	p := NewParserAt(src, size, offset)
	p.SetReferenceResolver(resolver)
	return p.ParseIndirectObject()
}
