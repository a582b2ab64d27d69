package resolver

import (
	"fmt"
	"io"

	"github.com/tsawler/pdfgraph/core"
)

// Source fetches raw objects from a document byte source using a
// cross-reference lookup. Objects stored in object streams are extracted
// from the decoded stream, which is cached per stream number.
type Source struct {
	src     io.ReaderAt
	size    int64
	lookup  core.Lookup
	streams map[int]*core.ObjectStream
	busy    map[core.IndirectRef]bool
}

// NewSource creates a fetcher over src.
func NewSource(src io.ReaderAt, size int64, lookup core.Lookup) *Source {
	return &Source{
		src:     src,
		size:    size,
		lookup:  lookup,
		streams: make(map[int]*core.ObjectStream),
		busy:    make(map[core.IndirectRef]bool),
	}
}

// Fetch implements Fetcher.
func (s *Source) Fetch(ref core.IndirectRef) (core.Object, error) {
	loc, err := s.lookup.Locate(ref)
	if err != nil {
		return nil, err
	}

	switch loc.Kind {
	case core.LocationOffset:
		obj, err := core.ParseIndirectObjectAt(s.src, s.size, loc.Offset, s)
		if err != nil {
			return nil, fmt.Errorf("parse object at offset %d: %w", loc.Offset, err)
		}
		if obj.Ref.Number != ref.Number {
			return nil, fmt.Errorf("object number mismatch: expected %d, got %d", ref.Number, obj.Ref.Number)
		}
		return obj.Object, nil

	case core.LocationInStream:
		stm, err := s.objectStream(loc.Stream)
		if err != nil {
			return nil, err
		}
		obj, num, err := stm.GetObjectByIndex(loc.Index)
		if err == nil && num == ref.Number {
			return obj, nil
		}
		// Some writers get the index wrong; fall back to the header.
		obj, _, err = stm.GetObjectByNumber(ref.Number)
		if err != nil {
			return nil, fmt.Errorf("object %d in object stream %d: %w", ref.Number, loc.Stream, err)
		}
		return obj, nil
	}

	return nil, fmt.Errorf("unknown location kind %d for %v", loc.Kind, ref)
}

func (s *Source) objectStream(num int) (*core.ObjectStream, error) {
	if stm, ok := s.streams[num]; ok {
		return stm, nil
	}

	ref := core.IndirectRef{Number: num}
	loc, err := s.lookup.Locate(ref)
	if err != nil {
		return nil, fmt.Errorf("object stream %d: %w", num, err)
	}
	if loc.Kind != core.LocationOffset {
		return nil, fmt.Errorf("object stream %d is itself compressed", num)
	}

	obj, err := core.ParseIndirectObjectAt(s.src, s.size, loc.Offset, s)
	if err != nil {
		return nil, fmt.Errorf("object stream %d: %w", num, err)
	}
	stream, ok := obj.Object.(*core.Stream)
	if !ok {
		return nil, fmt.Errorf("object stream %d is %T, not a stream", num, obj.Object)
	}
	stm, err := core.NewObjectStream(stream)
	if err != nil {
		return nil, fmt.Errorf("object stream %d: %w", num, err)
	}

	s.streams[num] = stm
	return stm, nil
}

// ResolveReference fetches a direct value for a stream /Length entry.
func (s *Source) ResolveReference(ref core.IndirectRef) (core.Object, error) {
	if s.busy[ref] {
		return nil, fmt.Errorf("%v refers to itself", ref)
	}
	s.busy[ref] = true
	defer delete(s.busy, ref)

	obj, err := s.Fetch(ref)
	if err != nil {
		return nil, err
	}
	if _, ok := obj.(*core.Stream); ok {
		return nil, fmt.Errorf("%v is a stream", ref)
	}
	return obj, nil
}
