package core

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
)

// XRefEntry represents a single cross-reference table entry
type XRefEntry struct {
	Offset     int64 // Byte offset in file (for in-use objects)
	Generation int   // Generation number
	InUse      bool  // true if object is in use, false if free

	// Compressed entries live in an object stream.
	Compressed bool
	Stream     int // object number of the object stream
	Index      int // index within the object stream
}

// XRefTable represents a PDF cross-reference table
type XRefTable struct {
	Entries map[int]*XRefEntry // Map from object number to XRef entry
	Trailer Dict               // Trailer dictionary
}

// NewXRefTable creates a new empty XRef table
func NewXRefTable() *XRefTable {
	return &XRefTable{
		Entries: make(map[int]*XRefEntry),
		Trailer: make(Dict),
	}
}

// Get retrieves an XRef entry by object number
func (x *XRefTable) Get(objNum int) (*XRefEntry, bool) {
	entry, ok := x.Entries[objNum]
	return entry, ok
}

// Set adds or updates an XRef entry
func (x *XRefTable) Set(objNum int, entry *XRefEntry) {
	x.Entries[objNum] = entry
}

// setIfAbsent keeps the newer entry when sections are merged newest first.
func (x *XRefTable) setIfAbsent(objNum int, entry *XRefEntry) {
	if _, ok := x.Entries[objNum]; !ok {
		x.Entries[objNum] = entry
	}
}

// Size returns the number of entries in the table
func (x *XRefTable) Size() int {
	return len(x.Entries)
}

// InUse returns the numbers of all in-use objects in ascending order.
func (x *XRefTable) InUse() []int {
	nums := make([]int, 0, len(x.Entries))
	for n, e := range x.Entries {
		if e.InUse && n > 0 {
			nums = append(nums, n)
		}
	}
	sort.Ints(nums)
	return nums
}

// FindStartXRef returns the offset recorded after the last startxref keyword.
func FindStartXRef(src io.ReaderAt, size int64) (int64, error) {
	readSize := int64(2048)
	if size < readSize {
		readSize = size
	}

	buf := make([]byte, readSize)
	n, err := src.ReadAt(buf, size-readSize)
	if err != nil && err != io.EOF {
		return 0, fmt.Errorf("failed to read startxref area: %w", err)
	}
	buf = buf[:n]

	idx := bytes.LastIndex(buf, []byte("startxref"))
	if idx == -1 {
		return 0, fmt.Errorf("startxref not found in PDF")
	}

	fields := bytes.Fields(buf[idx+len("startxref"):])
	if len(fields) == 0 {
		return 0, fmt.Errorf("invalid startxref format")
	}
	offset, err := strconv.ParseInt(string(fields[0]), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid xref offset: %w", err)
	}
	if offset < 0 || offset >= size {
		return 0, fmt.Errorf("xref offset %d outside file of %d bytes", offset, size)
	}
	return offset, nil
}

// ParseXRef builds the cross-reference table of a document. It follows the
// chain of sections from startxref through /Prev, reading classic tables,
// cross-reference streams and hybrid files with /XRefStm. The newest entry
// for an object number wins.
func ParseXRef(src io.ReaderAt, size int64) (*XRefTable, error) {
	offset, err := FindStartXRef(src, size)
	if err != nil {
		return nil, err
	}

	table := NewXRefTable()
	seen := make(map[int64]bool)
	first := true

	for {
		if seen[offset] {
			return nil, fmt.Errorf("xref chain loops at offset %d", offset)
		}
		seen[offset] = true

		trailer, err := parseXRefSection(src, size, offset, table)
		if err != nil {
			return nil, fmt.Errorf("xref section at offset %d: %w", offset, err)
		}

		if first {
			table.Trailer = trailer
			first = false
		} else {
			for _, k := range trailer.Keys() {
				if !table.Trailer.Has(k) && k != "Prev" && k != "XRefStm" {
					table.Trailer[k] = trailer[k]
				}
			}
		}

		prev, ok := trailer.GetInt("Prev")
		if !ok {
			break
		}
		offset = int64(prev)
	}

	delete(table.Trailer, "Prev")
	return table, nil
}

// parseXRefSection reads one section into table and returns its trailer.
func parseXRefSection(src io.ReaderAt, size, offset int64, table *XRefTable) (Dict, error) {
	head := make([]byte, 32)
	n, err := src.ReadAt(head, offset)
	if err != nil && err != io.EOF {
		return nil, err
	}
	head = head[:n]
	for len(head) > 0 && isWhitespace(head[0]) {
		head = head[1:]
		offset++
	}

	if !bytes.HasPrefix(head, []byte("xref")) {
		return parseXRefStreamAt(src, size, offset, table)
	}

	trailer, err := parseXRefTable(src, size, offset, table)
	if err != nil {
		return nil, err
	}

	// Hybrid file: the stream holds the compressed entries that the
	// classic table does not list.
	if stm, ok := trailer.GetInt("XRefStm"); ok {
		if _, err := parseXRefStreamAt(src, size, int64(stm), table); err != nil {
			return nil, fmt.Errorf("XRefStm: %w", err)
		}
	}
	return trailer, nil
}

// parseXRefTable parses a classic "xref ... trailer << >>" section.
func parseXRefTable(src io.ReaderAt, size, offset int64, table *XRefTable) (Dict, error) {
	lexer := NewLexerAt(io.NewSectionReader(src, offset, size-offset), offset)

	next := func() (*Token, error) {
		tok, err := lexer.NextToken()
		if err != nil {
			return nil, err
		}
		if tok.Type == TokenEOF {
			return nil, fmt.Errorf("unexpected end of xref table")
		}
		return tok, nil
	}
	nextInt := func() (int64, error) {
		tok, err := next()
		if err != nil {
			return 0, err
		}
		if tok.Type != TokenInteger {
			return 0, &SyntaxError{Pos: tok.Pos, Msg: fmt.Sprintf("expected integer, got %q", tok.Value)}
		}
		return strconv.ParseInt(string(tok.Value), 10, 64)
	}

	if _, err := next(); err != nil { // xref
		return nil, err
	}

	for {
		tok, err := next()
		if err != nil {
			return nil, err
		}
		if tok.Type == TokenKeyword && string(tok.Value) == "trailer" {
			break
		}
		if tok.Type != TokenInteger {
			return nil, &SyntaxError{Pos: tok.Pos, Msg: fmt.Sprintf("invalid subsection header %q", tok.Value)}
		}
		start, err := strconv.Atoi(string(tok.Value))
		if err != nil {
			return nil, fmt.Errorf("invalid first object number: %w", err)
		}
		count, err := nextInt()
		if err != nil {
			return nil, fmt.Errorf("invalid count: %w", err)
		}

		for i := 0; i < int(count); i++ {
			off, err := nextInt()
			if err != nil {
				return nil, fmt.Errorf("xref entry %d: %w", start+i, err)
			}
			gen, err := nextInt()
			if err != nil {
				return nil, fmt.Errorf("xref entry %d: %w", start+i, err)
			}
			flag, err := next()
			if err != nil {
				return nil, err
			}
			var inUse bool
			switch string(flag.Value) {
			case "n":
				inUse = true
			case "f":
			default:
				return nil, &SyntaxError{Pos: flag.Pos, Msg: fmt.Sprintf("invalid in-use flag %q", flag.Value)}
			}
			table.setIfAbsent(start+i, &XRefEntry{Offset: off, Generation: int(gen), InUse: inUse})
		}
	}

	p := &Parser{lexer: lexer}
	p.reset()
	obj, err := p.ParseObject()
	if err != nil {
		return nil, fmt.Errorf("failed to parse trailer dictionary: %w", err)
	}
	trailer, ok := obj.(Dict)
	if !ok {
		return nil, fmt.Errorf("trailer is not a dictionary, got %T", obj)
	}
	return trailer, nil
}

// parseXRefStreamAt parses a cross-reference stream (PDF 1.5+) at offset.
func parseXRefStreamAt(src io.ReaderAt, size, offset int64, table *XRefTable) (Dict, error) {
	obj, err := ParseIndirectObjectAt(src, size, offset, nil)
	if err != nil {
		return nil, err
	}
	stream, ok := obj.Object.(*Stream)
	if !ok {
		return nil, fmt.Errorf("object %d is not a stream", obj.Ref.Number)
	}
	if t, _ := stream.Dict.GetName("Type"); t != "XRef" {
		return nil, fmt.Errorf("object %d is not an xref stream", obj.Ref.Number)
	}

	data, err := stream.Decode()
	if err != nil {
		return nil, fmt.Errorf("failed to decode xref stream: %w", err)
	}
	if err := parseXRefStreamEntries(stream.Dict, data, table); err != nil {
		return nil, err
	}

	trailer := make(Dict, len(stream.Dict))
	for k, v := range stream.Dict {
		switch k {
		case "Length", "Filter", "DecodeParms", "W", "Index", "Type":
			continue
		}
		trailer[k] = v
	}
	return trailer, nil
}

// parseXRefStreamEntries decodes the binary rows of an xref stream using the
// /W field widths and the /Index subsections.
func parseXRefStreamEntries(dict Dict, data []byte, table *XRefTable) error {
	wArr, ok := dict.GetArray("W")
	if !ok || len(wArr) != 3 {
		return fmt.Errorf("xref stream /W must be an array of three integers")
	}
	var w [3]int
	for i := range w {
		v, ok := wArr.GetInt(i)
		if !ok || v < 0 || v > 8 {
			return fmt.Errorf("invalid /W entry %d: %v", i, wArr.Get(i))
		}
		w[i] = int(v)
	}
	rowSize := w[0] + w[1] + w[2]
	if rowSize == 0 {
		return fmt.Errorf("xref stream /W has zero row size")
	}

	var index []int
	if idx, ok := dict.GetArray("Index"); ok {
		for i := range idx {
			v, ok := idx.GetInt(i)
			if !ok {
				return fmt.Errorf("invalid /Index entry %d", i)
			}
			index = append(index, int(v))
		}
		if len(index)%2 != 0 {
			return fmt.Errorf("xref stream /Index has odd length %d", len(index))
		}
	} else {
		n, ok := dict.GetInt("Size")
		if !ok {
			return fmt.Errorf("xref stream missing /Size")
		}
		index = []int{0, int(n)}
	}

	pos := 0
	for s := 0; s < len(index); s += 2 {
		start, count := index[s], index[s+1]
		for i := 0; i < count; i++ {
			if pos+rowSize > len(data) {
				return nil
			}
			row := data[pos : pos+rowSize]
			pos += rowSize

			typ := int64(1)
			if w[0] > 0 {
				typ = readBigEndian(row[:w[0]])
			}
			f2 := readBigEndian(row[w[0] : w[0]+w[1]])
			f3 := readBigEndian(row[w[0]+w[1]:])

			var entry *XRefEntry
			switch typ {
			case 0:
				entry = &XRefEntry{Generation: int(f3)}
			case 1:
				entry = &XRefEntry{Offset: f2, Generation: int(f3), InUse: true}
			case 2:
				entry = &XRefEntry{InUse: true, Compressed: true, Stream: int(f2), Index: int(f3)}
			default:
				// Unknown types are references to the null object.
				continue
			}
			table.setIfAbsent(start+i, entry)
		}
	}
	return nil
}

func readBigEndian(b []byte) int64 {
	var v int64
	for _, c := range b {
		v = v<<8 | int64(c)
	}
	return v
}

var objHeader = regexp.MustCompile(`(?m)(?:^|[\r\n\s])(\d+)\s+(\d+)\s+obj\b`)

// RebuildXRef reconstructs a table by scanning the whole file for
// "num gen obj" headers. It is the fallback for files whose xref data is
// damaged. The trailer is taken from the last trailer keyword, if any.
func RebuildXRef(src io.ReaderAt, size int64) (*XRefTable, error) {
	data := make([]byte, size)
	n, err := src.ReadAt(data, 0)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	data = data[:n]

	table := NewXRefTable()
	for _, m := range objHeader.FindAllSubmatchIndex(data, -1) {
		num, err1 := strconv.Atoi(string(data[m[2]:m[3]]))
		gen, err2 := strconv.Atoi(string(data[m[4]:m[5]]))
		if err1 != nil || err2 != nil {
			continue
		}
		// Later definitions replace earlier ones.
		table.Set(num, &XRefEntry{Offset: int64(m[2]), Generation: gen, InUse: true})
	}
	if table.Size() == 0 {
		return nil, fmt.Errorf("no objects found")
	}

	if idx := bytes.LastIndex(data, []byte("trailer")); idx >= 0 {
		p := NewParser(bytes.NewReader(data[idx+len("trailer"):]))
		if obj, err := p.ParseObject(); err == nil {
			if dict, ok := obj.(Dict); ok {
				delete(dict, "Prev")
				table.Trailer = dict
			}
		}
	}
	return table, nil
}
