package transform

import (
	"github.com/tsawler/pdfgraph/core"
	"github.com/tsawler/pdfgraph/imaging"
	"github.com/tsawler/pdfgraph/internal/filters"
	"github.com/tsawler/pdfgraph/object"
	"github.com/tsawler/pdfgraph/resolver"
)

// Transformer converts one kind of raw node into a typed object.
//
// Recognizes must be a pure check of the node's shape: it may not resolve
// references or mutate anything. Transform must attach the result to parent
// and register the context listeners before returning. Transformers hold no
// per-call state, so one instance may serve any number of documents.
type Transformer interface {
	Recognizes(node core.Object) bool
	Transform(node core.Object, parent object.Node, ctx *resolver.Context) (core.Object, error)
}

// Registry is the root dispatcher: an ordered list of transformers. The
// first transformer that recognizes a node handles it; a failed transform is
// returned as is and no later transformer is tried. Nodes nobody recognizes
// are returned unchanged.
type Registry struct {
	transformers []Transformer
}

// NewRegistry creates a registry that tries ts in order.
func NewRegistry(ts ...Transformer) *Registry {
	r := &Registry{}
	for _, t := range ts {
		r.Register(t)
	}
	return r
}

// Register appends t. It is consulted after every transformer registered
// before it.
func (r *Registry) Register(t Transformer) {
	if t != nil {
		r.transformers = append(r.transformers, t)
	}
}

// Transformers returns the registered transformers in dispatch order.
func (r *Registry) Transformers() []Transformer {
	out := make([]Transformer, len(r.transformers))
	copy(out, r.transformers)
	return out
}

// Dispatch implements resolver.Dispatcher. References are resolved through
// the context cache so that shared objects keep one instance and cycles end
// on the in-progress object.
func (r *Registry) Dispatch(node core.Object, parent object.Node, ctx *resolver.Context) (core.Object, error) {
	if ref, ok := node.(core.IndirectRef); ok {
		return ctx.Resolve(ref, parent)
	}
	for _, t := range r.transformers {
		if t.Recognizes(node) {
			return t.Transform(node, parent, ctx)
		}
	}
	return node, nil
}

type config struct {
	decoder imaging.Decoder
	filters *filters.Registry
}

// Option configures the default transformer set.
type Option func(*config)

// WithImageDecoder replaces the image codec capability.
func WithImageDecoder(d imaging.Decoder) Option {
	return func(c *config) {
		if d != nil {
			c.decoder = d
		}
	}
}

// WithFilters replaces the filter codec registry used for stream payloads.
func WithFilters(reg *filters.Registry) Option {
	return func(c *config) {
		if reg != nil {
			c.filters = reg
		}
	}
}

// WithMaxDecodedSize bounds the output of each filter stage. It installs a
// private copy of the standard filter registry.
func WithMaxDecodedSize(n int) Option {
	return func(c *config) {
		reg := filters.NewStandardRegistry()
		reg.SetMaxDecodedSize(n)
		c.filters = reg
	}
}

func newConfig(opts []Option) config {
	c := config{decoder: imaging.NewDecoder(), filters: filters.Standard()}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Default returns the standard transformer set. More specific transformers
// come first: images by codec, then other images, font programs, any
// stream, then containers and text strings.
func Default(opts ...Option) *Registry {
	c := newConfig(opts)
	return NewRegistry(
		&ImageTransformer{Codec: imaging.CodecFax, Decoder: c.decoder, Filters: c.filters},
		&ImageTransformer{Codec: imaging.CodecDCT, Decoder: c.decoder, Filters: c.filters},
		&ImageTransformer{Codec: imaging.CodecJPX, Decoder: c.decoder, Filters: c.filters},
		&RawImageTransformer{Decoder: c.decoder, Filters: c.filters},
		&FontProgramTransformer{Filters: c.filters},
		&StreamTransformer{Filters: c.filters},
		DictTransformer{},
		ArrayTransformer{},
		TextTransformer{},
	)
}
