package core

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by a Lookup for references with no in-use entry.
var ErrNotFound = errors.New("object not found in cross-reference table")

// LocationKind tells where an object is stored.
type LocationKind int

const (
	// LocationOffset: the object starts at a byte offset in the file.
	LocationOffset LocationKind = iota + 1
	// LocationInStream: the object is stored in an object stream.
	LocationInStream
)

// Location is the answer of a Lookup.
type Location struct {
	Kind   LocationKind
	Offset int64 // LocationOffset
	Stream int   // LocationInStream: object number of the object stream
	Index  int   // LocationInStream: index within the object stream
}

// Lookup maps a reference to where its object is stored.
type Lookup interface {
	Locate(ref IndirectRef) (Location, error)
}

// Locate implements Lookup.
func (x *XRefTable) Locate(ref IndirectRef) (Location, error) {
	entry, ok := x.Entries[ref.Number]
	if !ok || !entry.InUse {
		return Location{}, fmt.Errorf("%v: %w", ref, ErrNotFound)
	}
	if entry.Compressed {
		if ref.Generation != 0 {
			return Location{}, fmt.Errorf("%v: %w", ref, ErrNotFound)
		}
		return Location{Kind: LocationInStream, Stream: entry.Stream, Index: entry.Index}, nil
	}
	if entry.Generation != ref.Generation {
		return Location{}, fmt.Errorf("%v (have generation %d): %w", ref, entry.Generation, ErrNotFound)
	}
	return Location{Kind: LocationOffset, Offset: entry.Offset}, nil
}
