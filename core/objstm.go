package core

import (
	"bytes"
	"fmt"
)

// ObjectStream represents a PDF Object Stream (Type /ObjStm), introduced in PDF 1.5.
// Object streams store multiple objects in a single compressed stream, providing
// better compression than storing objects individually.
type ObjectStream struct {
	stream  *Stream
	n       int
	first   int
	extends *IndirectRef
	objects map[int]Object
	offsets []objectStreamOffset
	decoded []byte
}

// objectStreamOffset pairs an object number with its byte offset within the decoded data.
type objectStreamOffset struct {
	ObjNum int
	Offset int // relative to First
}

// NewObjectStream creates an ObjectStream from a Stream object.
// The stream must have Type /ObjStm and required entries /N and /First.
// Decoding is deferred until the first object is requested.
func NewObjectStream(stream *Stream) (*ObjectStream, error) {
	if stream == nil {
		return nil, fmt.Errorf("stream is nil")
	}

	if typeName, _ := stream.Dict.GetName("Type"); typeName != "ObjStm" {
		return nil, fmt.Errorf("stream is not an object stream, got type: %v", stream.Dict.Get("Type"))
	}

	n, ok := stream.Dict.GetInt("N")
	if !ok || n < 0 {
		return nil, fmt.Errorf("invalid /N: %v", stream.Dict.Get("N"))
	}
	first, ok := stream.Dict.GetInt("First")
	if !ok || first < 0 {
		return nil, fmt.Errorf("invalid /First: %v", stream.Dict.Get("First"))
	}

	s := &ObjectStream{
		stream:  stream,
		n:       int(n),
		first:   int(first),
		objects: make(map[int]Object),
	}
	if ref, ok := stream.Dict.GetIndirectRef("Extends"); ok {
		s.extends = &ref
	}
	return s, nil
}

// N returns the number of objects stored in the stream.
func (s *ObjectStream) N() int {
	return s.n
}

// First returns the byte offset to the first object's data in the decoded stream.
func (s *ObjectStream) First() int {
	return s.first
}

// Extends returns the reference to another object stream this one extends, or nil.
func (s *ObjectStream) Extends() *IndirectRef {
	return s.extends
}

func (s *ObjectStream) decode() error {
	if s.decoded != nil {
		return nil
	}

	decoded, err := s.stream.Decode()
	if err != nil {
		return fmt.Errorf("failed to decode object stream: %w", err)
	}
	s.decoded = decoded

	if err := s.parseHeader(); err != nil {
		return fmt.Errorf("failed to parse object stream header: %w", err)
	}
	return nil
}

// parseHeader parses the header of N pairs "objNum offset".
func (s *ObjectStream) parseHeader() error {
	if s.first > len(s.decoded) {
		return fmt.Errorf("First offset (%d) exceeds decoded data length (%d)", s.first, len(s.decoded))
	}

	parser := NewParser(bytes.NewReader(s.decoded[:s.first]))
	s.offsets = make([]objectStreamOffset, 0, s.n)

	for i := 0; i < s.n; i++ {
		num, err1 := parser.ParseObject()
		off, err2 := parser.ParseObject()
		if err1 != nil || err2 != nil {
			return fmt.Errorf("truncated header at pair %d", i)
		}
		numInt, ok1 := num.(Int)
		offInt, ok2 := off.(Int)
		if !ok1 || !ok2 {
			return fmt.Errorf("pair %d is not two integers: %v %v", i, num, off)
		}
		s.offsets = append(s.offsets, objectStreamOffset{ObjNum: int(numInt), Offset: int(offInt)})
	}
	return nil
}

// GetObjectByIndex extracts an object by its index within the stream (0-based).
// Returns the object, its object number, and any error.
func (s *ObjectStream) GetObjectByIndex(index int) (Object, int, error) {
	if err := s.decode(); err != nil {
		return nil, 0, err
	}

	if index < 0 || index >= len(s.offsets) {
		return nil, 0, fmt.Errorf("index %d out of range [0, %d)", index, len(s.offsets))
	}
	objNum := s.offsets[index].ObjNum

	if obj, ok := s.objects[index]; ok {
		return obj, objNum, nil
	}

	start := s.first + s.offsets[index].Offset
	end := len(s.decoded)
	if index+1 < len(s.offsets) {
		if next := s.first + s.offsets[index+1].Offset; next >= start && next < end {
			end = next
		}
	}
	if start < s.first || start >= len(s.decoded) {
		return nil, 0, fmt.Errorf("object offset %d outside decoded data of %d bytes", start, len(s.decoded))
	}

	obj, err := NewParser(bytes.NewReader(s.decoded[start:end])).ParseObject()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to parse object at index %d: %w", index, err)
	}

	s.objects[index] = obj
	return obj, objNum, nil
}

// GetObjectByNumber finds and extracts an object by its object number.
// Returns the object, its index within the stream, and any error.
func (s *ObjectStream) GetObjectByNumber(objNum int) (Object, int, error) {
	if err := s.decode(); err != nil {
		return nil, 0, err
	}

	for i, entry := range s.offsets {
		if entry.ObjNum == objNum {
			obj, _, err := s.GetObjectByIndex(i)
			return obj, i, err
		}
	}
	return nil, 0, fmt.Errorf("object %d not found in object stream", objNum)
}

// ObjectNumbers returns the object numbers stored in this stream, in header order.
func (s *ObjectStream) ObjectNumbers() ([]int, error) {
	if err := s.decode(); err != nil {
		return nil, err
	}

	nums := make([]int, len(s.offsets))
	for i, entry := range s.offsets {
		nums[i] = entry.ObjNum
	}
	return nums, nil
}
