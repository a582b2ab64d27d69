package object

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tsawler/pdfgraph/core"
)

// Dict is a typed dictionary. Values are primitives, typed objects, or lazy
// references.
type Dict struct {
	link
	entries map[string]core.Object
}

// NewDict creates an empty dictionary with room for n entries.
func NewDict(n int) *Dict {
	return &Dict{entries: make(map[string]core.Object, n)}
}

func (d *Dict) Type() core.ObjectType { return core.ObjDict }

func (d *Dict) String() string {
	keys := d.Keys()
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = "/" + k + " " + describe(d.entries[k])
	}
	return "<<" + strings.Join(parts, " ") + ">>"
}

// describe prints containers shallowly so that cyclic graphs terminate.
func describe(obj core.Object) string {
	switch v := obj.(type) {
	case *Dict:
		return fmt.Sprintf("<<%d entries>>", v.Len())
	case *Array:
		return fmt.Sprintf("[%d items]", v.Len())
	case nil:
		return "null"
	}
	return obj.String()
}

// Len returns the number of entries.
func (d *Dict) Len() int { return len(d.entries) }

// Get returns the stored value without following references.
func (d *Dict) Get(key string) core.Object { return d.entries[key] }

// Has reports whether key is present.
func (d *Dict) Has(key string) bool {
	_, ok := d.entries[key]
	return ok
}

// Keys returns the keys in sorted order.
func (d *Dict) Keys() []string {
	keys := make([]string, 0, len(d.entries))
	for k := range d.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Put stores a value during construction. Listeners are not notified.
func (d *Dict) Put(key string, value core.Object) {
	d.entries[key] = value
}

// Set stores a value, attaches it to d and notifies listeners.
func (d *Dict) Set(key string, value core.Object) {
	old := d.entries[key]
	d.entries[key] = value
	Attach(value, d, d.listeners...)
	d.notify(Event{Kind: EventSet, Node: d, Key: key, Old: old, New: value})
}

// Delete removes key and notifies listeners if it was present.
func (d *Dict) Delete(key string) {
	old, ok := d.entries[key]
	if !ok {
		return
	}
	delete(d.entries, key)
	d.notify(Event{Kind: EventDelete, Node: d, Key: key, Old: old})
}

// Resolve returns the value for key, following a lazy reference or a
// fulfilled placeholder.
func (d *Dict) Resolve(key string) (core.Object, error) {
	return Deref(d.entries[key])
}

func (d *Dict) resolved(key string) core.Object {
	obj, err := d.Resolve(key)
	if err != nil {
		return nil
	}
	return obj
}

// GetName returns a name value.
func (d *Dict) GetName(key string) (core.Name, bool) {
	n, ok := d.resolved(key).(core.Name)
	return n, ok
}

// GetInt returns an integer value.
func (d *Dict) GetInt(key string) (int, bool) {
	i, ok := d.resolved(key).(core.Int)
	return int(i), ok
}

// GetReal returns a number value. Integers are widened.
func (d *Dict) GetReal(key string) (float64, bool) {
	r, ok := core.ToReal(d.resolved(key))
	return float64(r), ok
}

// GetBool returns a boolean value.
func (d *Dict) GetBool(key string) (bool, bool) {
	b, ok := d.resolved(key).(core.Bool)
	return bool(b), ok
}

// GetDict returns a dictionary value.
func (d *Dict) GetDict(key string) (*Dict, bool) {
	v, ok := d.resolved(key).(*Dict)
	return v, ok
}

// GetArray returns an array value.
func (d *Dict) GetArray(key string) (*Array, bool) {
	v, ok := d.resolved(key).(*Array)
	return v, ok
}

// GetStream returns a stream value.
func (d *Dict) GetStream(key string) (*Stream, bool) {
	v, ok := d.resolved(key).(*Stream)
	return v, ok
}

// GetText returns a string value as Go text, decoding raw strings with
// DecodeText.
func (d *Dict) GetText(key string) (string, bool) {
	switch v := d.resolved(key).(type) {
	case *Text:
		return v.Value, true
	case core.String:
		return DecodeText(v), true
	}
	return "", false
}
