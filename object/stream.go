package object

import (
	"fmt"

	"github.com/tsawler/pdfgraph/core"
)

// Stream is a typed stream: a dictionary, the raw bytes and, when the filter
// chain could be applied, the decoded payload.
type Stream struct {
	link
	Dict *Dict

	raw       []byte
	data      []byte
	decoded   bool
	decodeErr error
}

// NewStream creates a stream around dict and its raw bytes. The dictionary
// is attached to the stream.
func NewStream(dict *Dict, raw []byte) *Stream {
	if dict == nil {
		dict = NewDict(0)
	}
	s := &Stream{Dict: dict, raw: raw}
	dict.SetParent(s)
	return s
}

func (s *Stream) Type() core.ObjectType { return core.ObjStream }

func (s *Stream) String() string {
	state := "decoded"
	if !s.decoded {
		state = "undecoded"
	}
	return fmt.Sprintf("stream %s (%d raw bytes, %s)", s.Dict.String(), len(s.raw), state)
}

// Raw returns the bytes as stored in the file.
func (s *Stream) Raw() []byte { return s.raw }

// SetRaw replaces the raw bytes during construction.
func (s *Stream) SetRaw(raw []byte) { s.raw = raw }

// Data returns the decoded payload, or the raw bytes when the stream could
// not be decoded.
func (s *Stream) Data() []byte {
	if !s.decoded {
		return s.raw
	}
	return s.data
}

// Undecoded reports whether the filter chain failed.
func (s *Stream) Undecoded() bool { return !s.decoded }

// DecodeErr returns the reason the stream is undecoded.
func (s *Stream) DecodeErr() error { return s.decodeErr }

// SetDecoded records a successful decode during construction.
func (s *Stream) SetDecoded(data []byte) {
	s.data = data
	s.decoded = true
	s.decodeErr = nil
}

// MarkUndecoded flags the stream as undecoded; Data keeps returning the raw
// bytes.
func (s *Stream) MarkUndecoded(err error) {
	s.data = nil
	s.decoded = false
	s.decodeErr = err
}

// SetData replaces the decoded payload and notifies listeners.
func (s *Stream) SetData(data []byte) {
	old := s.Data()
	s.SetDecoded(data)
	s.notify(Event{Kind: EventData, Node: s, Old: core.String(old), New: core.String(data)})
}

// Filters returns the filter names declared by the stream dictionary.
func (s *Stream) Filters() []string {
	names, _, err := core.FilterChain(s.Dict)
	if err != nil {
		return nil
	}
	return names
}
