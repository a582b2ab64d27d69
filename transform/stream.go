package transform

import (
	"github.com/tsawler/pdfgraph/core"
	"github.com/tsawler/pdfgraph/internal/filters"
	"github.com/tsawler/pdfgraph/object"
	"github.com/tsawler/pdfgraph/resolver"
)

// StreamTransformer turns any raw stream into an *object.Stream with its
// payload decoded through the filter chain. A chain that cannot be applied
// leaves the raw bytes in place and flags the stream as undecoded.
type StreamTransformer struct {
	Filters *filters.Registry
}

func (t *StreamTransformer) Recognizes(node core.Object) bool {
	_, ok := node.(*core.Stream)
	return ok
}

func (t *StreamTransformer) Transform(node core.Object, parent object.Node, ctx *resolver.Context) (core.Object, error) {
	raw := node.(*core.Stream)

	// Attach first so that nested resolution can already reach the root.
	s := object.NewStream(object.NewDict(len(raw.Dict)), nil)
	ctx.Attach(s, parent)
	ctx.Attach(s.Dict, s)
	ctx.Bind(s)

	if err := resolveRefs(raw.Dict, s.Dict, ctx); err != nil {
		return nil, err
	}

	decodeStream(raw, s, registryOr(t.Filters), ctx)

	if err := transformValues(raw.Dict, s.Dict, ctx); err != nil {
		return nil, err
	}

	// Nested transforms may have re-parented s through a back reference.
	ctx.Attach(s, parent)
	return s, nil
}

func registryOr(reg *filters.Registry) *filters.Registry {
	if reg == nil {
		return filters.Standard()
	}
	return reg
}

// resolveRefs fills dict from a raw stream dictionary. Reference values are
// resolved now, since Length, Filter and DecodeParms must be concrete before
// decoding. Other values are stored raw until transformValues.
func resolveRefs(raw core.Dict, dict *object.Dict, ctx *resolver.Context) error {
	for _, k := range raw.Keys() {
		ref, ok := raw[k].(core.IndirectRef)
		if !ok {
			dict.Put(k, raw[k])
			continue
		}
		v, err := resolveOrNull(ref, dict, ctx)
		if err != nil {
			return err
		}
		dict.Put(k, v)
	}
	return nil
}

// transformValues replaces the raw non-reference values of dict with their
// typed form. A nil result keeps the raw value.
func transformValues(raw core.Dict, dict *object.Dict, ctx *resolver.Context) error {
	for _, k := range raw.Keys() {
		v := raw[k]
		if _, ok := v.(core.IndirectRef); ok {
			continue
		}
		typed, err := ctx.Transform(v, dict)
		if err != nil {
			return err
		}
		if typed != nil {
			dict.Put(k, typed)
		}
	}
	return nil
}

// decodeStream reads the raw bytes of src and applies the filter chain
// declared by the typed dictionary of dst.
func decodeStream(src *core.Stream, dst *object.Stream, reg *filters.Registry, ctx *resolver.Context) {
	data, err := src.Bytes()
	if err != nil {
		dst.MarkUndecoded(err)
		ctx.Warn(resolver.WarnUndecodedStream, err)
		return
	}
	dst.SetRaw(data)

	names, params, err := core.FilterChain(dst.Dict)
	if err == nil {
		var decoded []byte
		if decoded, err = reg.Decode(data, names, params); err == nil {
			dst.SetDecoded(decoded)
			return
		}
	}
	dst.MarkUndecoded(err)
	ctx.Warn(resolver.WarnUndecodedStream, err, "filter", names)
}
