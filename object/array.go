package object

import (
	"strings"

	"github.com/tsawler/pdfgraph/core"
)

// Array is a typed array.
type Array struct {
	link
	items []core.Object
}

// NewArray creates an empty array with capacity n.
func NewArray(n int) *Array {
	return &Array{items: make([]core.Object, 0, n)}
}

func (a *Array) Type() core.ObjectType { return core.ObjArray }

func (a *Array) String() string {
	parts := make([]string, len(a.items))
	for i, item := range a.items {
		parts[i] = describe(item)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// Len returns the number of elements.
func (a *Array) Len() int { return len(a.items) }

// Get returns the element at index without following references, or nil
// when index is out of range.
func (a *Array) Get(index int) core.Object {
	if index < 0 || index >= len(a.items) {
		return nil
	}
	return a.items[index]
}

// Resolve returns the element at index, following a lazy reference.
func (a *Array) Resolve(index int) (core.Object, error) {
	return Deref(a.Get(index))
}

// Push appends an element during construction. Listeners are not notified.
func (a *Array) Push(value core.Object) {
	a.items = append(a.items, value)
}

// Append adds an element, attaches it and notifies listeners.
func (a *Array) Append(value core.Object) {
	a.items = append(a.items, value)
	Attach(value, a, a.listeners...)
	a.notify(Event{Kind: EventAppend, Node: a, Index: len(a.items) - 1, New: value})
}

// Set replaces the element at index. Out of range indexes are ignored.
func (a *Array) Set(index int, value core.Object) {
	if index < 0 || index >= len(a.items) {
		return
	}
	old := a.items[index]
	a.items[index] = value
	Attach(value, a, a.listeners...)
	a.notify(Event{Kind: EventSet, Node: a, Index: index, Old: old, New: value})
}

// Floats returns the elements as numbers, following references. It fails on
// the first element that is not a number.
func (a *Array) Floats() ([]float64, bool) {
	out := make([]float64, len(a.items))
	for i := range a.items {
		obj, err := a.Resolve(i)
		if err != nil {
			return nil, false
		}
		r, ok := core.ToReal(obj)
		if !ok {
			return nil, false
		}
		out[i] = float64(r)
	}
	return out, true
}
