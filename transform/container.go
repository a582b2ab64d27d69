package transform

import (
	"errors"

	"github.com/tsawler/pdfgraph/core"
	"github.com/tsawler/pdfgraph/object"
	"github.com/tsawler/pdfgraph/resolver"
)

// DictTransformer turns raw dictionaries into *object.Dict. Nested
// references become lazy handles, or are resolved at once when the context
// is eager.
type DictTransformer struct{}

func (DictTransformer) Recognizes(node core.Object) bool {
	_, ok := node.(core.Dict)
	return ok
}

func (DictTransformer) Transform(node core.Object, parent object.Node, ctx *resolver.Context) (core.Object, error) {
	raw := node.(core.Dict)
	d := object.NewDict(len(raw))
	ctx.Attach(d, parent)
	ctx.Bind(d)

	for _, k := range raw.Keys() {
		v, err := member(raw[k], d, ctx)
		if err != nil {
			return nil, err
		}
		d.Put(k, v)
	}
	return d, nil
}

// ArrayTransformer turns raw arrays into *object.Array.
type ArrayTransformer struct{}

func (ArrayTransformer) Recognizes(node core.Object) bool {
	_, ok := node.(core.Array)
	return ok
}

func (ArrayTransformer) Transform(node core.Object, parent object.Node, ctx *resolver.Context) (core.Object, error) {
	raw := node.(core.Array)
	a := object.NewArray(len(raw))
	ctx.Attach(a, parent)
	ctx.Bind(a)

	for _, item := range raw {
		v, err := member(item, a, ctx)
		if err != nil {
			return nil, err
		}
		a.Push(v)
	}
	return a, nil
}

// member transforms one container value.
func member(v core.Object, container object.Node, ctx *resolver.Context) (core.Object, error) {
	ref, ok := v.(core.IndirectRef)
	if !ok {
		return ctx.Transform(v, container)
	}
	if !ctx.Eager() {
		lazy := ctx.Lazy(ref)
		ctx.Attach(lazy, container)
		return lazy, nil
	}
	return resolveOrNull(ref, container, ctx)
}

// resolveOrNull resolves ref and substitutes null when the reference has no
// object. Other failures, such as the depth limit, are returned.
func resolveOrNull(ref core.IndirectRef, parent object.Node, ctx *resolver.Context) (core.Object, error) {
	obj, err := ctx.Resolve(ref, parent)
	if err == nil {
		return obj, nil
	}
	if errors.Is(err, resolver.ErrMaxDepth) || !errors.Is(err, resolver.ErrUnresolvableReference) {
		return nil, err
	}
	ctx.Warn(resolver.WarnUnresolvedReference, err, "target", ref.String())
	return core.Null{}, nil
}

// TextTransformer decodes strings that carry a byte order mark into
// *object.Text. Other strings stay raw.
type TextTransformer struct{}

func (TextTransformer) Recognizes(node core.Object) bool {
	s, ok := node.(core.String)
	return ok && object.HasBOM(s)
}

func (TextTransformer) Transform(node core.Object, parent object.Node, ctx *resolver.Context) (core.Object, error) {
	t := object.NewText(node.(core.String))
	ctx.Attach(t, parent)
	return t, nil
}
