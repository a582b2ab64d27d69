package filters

import (
	"sort"
	"sync"

	"github.com/pkg/errors"
)

// Codec decodes one filter stage.
type Codec interface {
	// Name returns the canonical filter name, e.g. "FlateDecode".
	Name() string
	Decode(data []byte, params Params) ([]byte, error)
}

// LimitedCodec is implemented by codecs that stop decoding once their output
// passes limit bytes, failing with ErrLimitExceeded.
type LimitedCodec interface {
	Codec
	DecodeLimited(data []byte, params Params, limit int) ([]byte, error)
}

// DefaultMaxDecodedSize bounds the output of a single chain stage.
const DefaultMaxDecodedSize = 256 << 20

// Registry maps filter names, including abbreviations, to codecs.
// It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	codecs  map[string]Codec
	maxSize int
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		codecs:  make(map[string]Codec),
		maxSize: DefaultMaxDecodedSize,
	}
}

// NewStandardRegistry returns a registry with every built-in codec.
func NewStandardRegistry() *Registry {
	r := NewRegistry()
	r.Register(flateCodec{}, "Fl")
	r.Register(lzwCodec{}, "LZW")
	r.Register(asciiHexCodec{}, "AHx")
	r.Register(ascii85Codec{}, "A85")
	r.Register(runLengthCodec{}, "RL")
	r.Register(ccittFaxCodec{}, "CCF")
	r.Register(passThrough{name: "DCTDecode"}, "DCT")
	r.Register(passThrough{name: "JPXDecode"})
	return r
}

// Register adds c under its canonical name and any aliases. A later
// registration replaces an earlier one under the same name.
func (r *Registry) Register(c Codec, aliases ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.codecs[c.Name()] = c
	for _, a := range aliases {
		r.codecs[a] = c
	}
}

// Lookup returns the codec registered under name.
func (r *Registry) Lookup(name string) (Codec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.codecs[name]
	return c, ok
}

// Names returns every registered name, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.codecs))
	for n := range r.codecs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// SetMaxDecodedSize sets the per-stage output limit. Zero or less disables it.
func (r *Registry) SetMaxDecodedSize(n int) {
	r.mu.Lock()
	r.maxSize = n
	r.mu.Unlock()
}

// Canonical returns the canonical name for name, or name itself when unknown.
func (r *Registry) Canonical(name string) string {
	if c, ok := r.Lookup(name); ok {
		return c.Name()
	}
	return name
}

// Decode applies names left to right. params[i] belongs to names[i]; params
// may be shorter than names. On failure the returned error is an
// *UnsupportedFilterError or a *DecodeError and no partial output is returned.
func (r *Registry) Decode(data []byte, names []string, params []Params) ([]byte, error) {
	r.mu.RLock()
	limit := r.maxSize
	r.mu.RUnlock()

	out := data
	for i, name := range names {
		c, ok := r.Lookup(name)
		if !ok {
			return nil, &UnsupportedFilterError{Name: name, Index: i}
		}
		var p Params
		if i < len(params) {
			p = params[i]
		}
		var next []byte
		var err error
		if lc, ok := c.(LimitedCodec); ok && limit > 0 {
			next, err = lc.DecodeLimited(out, p, limit)
		} else {
			next, err = c.Decode(out, p)
		}
		if err != nil {
			return nil, &DecodeError{Filter: c.Name(), Index: i, Err: err}
		}
		if limit > 0 && len(next) > limit {
			return nil, &DecodeError{
				Filter: c.Name(),
				Index:  i,
				Err:    errors.Wrapf(ErrLimitExceeded, "%d bytes", len(next)),
			}
		}
		out = next
	}
	return out, nil
}

var standard = NewStandardRegistry()

// Standard returns the shared registry of built-in codecs.
func Standard() *Registry { return standard }

// Decode applies a filter chain using the standard registry.
func Decode(data []byte, names []string, params []Params) ([]byte, error) {
	return standard.Decode(data, names, params)
}
