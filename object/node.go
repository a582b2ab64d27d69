package object

import (
	"github.com/tsawler/pdfgraph/core"
)

// Node is a typed object in a document graph.
//
// The parent is a non-owning pointer to the container that most recently
// attached the node. A node reachable from several containers only remembers
// the last one, so Parent gives a path to the document root and nothing more.
type Node interface {
	core.Object
	Parent() Node
	SetParent(Node)
	AddListener(Listener)
	Listeners() []Listener
}

// EventKind identifies a mutation of a typed object.
type EventKind int

const (
	EventSet EventKind = iota + 1
	EventDelete
	EventAppend
	EventData
)

func (k EventKind) String() string {
	switch k {
	case EventSet:
		return "set"
	case EventDelete:
		return "delete"
	case EventAppend:
		return "append"
	case EventData:
		return "data"
	}
	return "unknown"
}

// Event describes a mutation made after construction.
type Event struct {
	Kind  EventKind
	Node  Node
	Key   string // dictionary key for EventSet and EventDelete on a Dict
	Index int    // element index for EventSet and EventAppend on an Array
	Old   core.Object
	New   core.Object
}

// Listener observes mutations of the nodes it is registered on.
// Implementations must be comparable so that listener sets can be
// de-duplicated.
type Listener interface {
	HandleEvent(Event)
}

type funcListener struct {
	fn func(Event)
}

func (l *funcListener) HandleEvent(e Event) { l.fn(e) }

// NewListener adapts a function to the Listener interface.
func NewListener(fn func(Event)) Listener {
	return &funcListener{fn: fn}
}

// link holds the parent pointer and listener set shared by all typed objects.
type link struct {
	parent    Node
	listeners []Listener
}

// Parent returns the container that most recently attached this node.
func (l *link) Parent() Node { return l.parent }

// SetParent replaces the parent pointer. The last attachment wins.
func (l *link) SetParent(p Node) { l.parent = p }

// AddListener registers a listener unless it is already registered.
func (l *link) AddListener(listener Listener) {
	if listener == nil {
		return
	}
	for _, existing := range l.listeners {
		if existing == listener {
			return
		}
	}
	l.listeners = append(l.listeners, listener)
}

// Listeners returns a copy of the registered listeners.
func (l *link) Listeners() []Listener {
	if len(l.listeners) == 0 {
		return nil
	}
	out := make([]Listener, len(l.listeners))
	copy(out, l.listeners)
	return out
}

func (l *link) notify(e Event) {
	for _, listener := range l.listeners {
		listener.HandleEvent(e)
	}
}

// Attach sets the parent of obj and registers listeners on it. Objects that
// are not nodes, such as numbers and names, are left alone. A nil parent
// keeps the current one.
func Attach(obj core.Object, parent Node, listeners ...Listener) {
	n, ok := obj.(Node)
	if !ok {
		return
	}
	if parent != nil && Node(parent) != n {
		n.SetParent(parent)
	}
	for _, l := range listeners {
		n.AddListener(l)
	}
}

// Root follows parent pointers up from n and returns the topmost node.
// Parent pointers can form a loop when shared objects are re-attached; the
// walk stops at the first node seen twice.
func Root(n Node) Node {
	if n == nil {
		return nil
	}
	seen := map[Node]bool{n: true}
	for {
		p := n.Parent()
		if p == nil || seen[p] {
			return n
		}
		seen[p] = true
		n = p
	}
}

// DocumentOf returns the document at the root of n, or nil when the root is
// not a document.
func DocumentOf(n Node) *Document {
	doc, _ := Root(n).(*Document)
	return doc
}
