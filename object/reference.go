package object

import (
	"fmt"

	"github.com/tsawler/pdfgraph/core"
)

// ResolveFunc resolves a reference on behalf of the given container.
type ResolveFunc func(ref core.IndirectRef, parent Node) (core.Object, error)

// Reference is a lazy handle to an indirect object. The target is resolved
// through the document's resolution context on first use; the context cache
// makes repeated calls return the same instance.
type Reference struct {
	link
	Ref     core.IndirectRef
	resolve ResolveFunc
}

// NewReference creates a lazy handle.
func NewReference(ref core.IndirectRef, resolve ResolveFunc) *Reference {
	return &Reference{Ref: ref, resolve: resolve}
}

func (r *Reference) Type() core.ObjectType { return core.ObjIndirect }
func (r *Reference) String() string        { return r.Ref.String() }

// Resolve returns the referenced object.
func (r *Reference) Resolve() (core.Object, error) {
	if r.resolve == nil {
		return nil, fmt.Errorf("reference %v has no resolver", r.Ref)
	}
	return r.resolve(r.Ref, r.parent)
}

// Pending stands in for an object whose resolution is still in progress. It
// is handed out when a reference cycle is detected and is fulfilled once the
// outer resolution completes.
type Pending struct {
	link
	Ref    core.IndirectRef
	target core.Object
}

// NewPending creates an unfulfilled placeholder.
func NewPending(ref core.IndirectRef) *Pending {
	return &Pending{Ref: ref}
}

func (p *Pending) Type() core.ObjectType { return core.ObjIndirect }
func (p *Pending) String() string        { return "pending " + p.Ref.String() }

// Fulfil records the finished object.
func (p *Pending) Fulfil(obj core.Object) { p.target = obj }

// Target returns the finished object, if any.
func (p *Pending) Target() (core.Object, bool) {
	return p.target, p.target != nil
}

// Deref follows lazy references and fulfilled placeholders until it reaches
// a concrete object. Other values are returned as they are.
func Deref(obj core.Object) (core.Object, error) {
	for i := 0; i < 32; i++ {
		switch v := obj.(type) {
		case *Reference:
			next, err := v.Resolve()
			if err != nil {
				return nil, err
			}
			obj = next
		case *Pending:
			target, ok := v.Target()
			if !ok {
				return v, nil
			}
			obj = target
		default:
			return obj, nil
		}
	}
	return nil, fmt.Errorf("reference chain too long at %v", obj)
}
