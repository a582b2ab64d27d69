package resolver

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/tsawler/pdfgraph/core"
	"github.com/tsawler/pdfgraph/object"
)

var (
	// ErrUnresolvableReference is returned when a reference has no object.
	ErrUnresolvableReference = errors.New("unresolvable reference")
	// ErrCyclicResolution is returned by Finish when a placeholder handed out
	// for a reference cycle was never fulfilled.
	ErrCyclicResolution = errors.New("cyclic resolution left unresolved placeholders")
	// ErrMaxDepth is returned when nested transformation exceeds the limit.
	ErrMaxDepth = errors.New("maximum transformation depth exceeded")
)

// ReferenceError reports a reference that could not be fetched.
type ReferenceError struct {
	Ref core.IndirectRef
	Err error
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("resolve %v: %v", e.Ref, e.Err)
}

func (e *ReferenceError) Unwrap() error { return e.Err }

func (e *ReferenceError) Is(target error) bool { return target == ErrUnresolvableReference }

// Fetcher returns the raw object stored for a reference.
type Fetcher interface {
	Fetch(ref core.IndirectRef) (core.Object, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ref core.IndirectRef) (core.Object, error)

func (f FetcherFunc) Fetch(ref core.IndirectRef) (core.Object, error) { return f(ref) }

// Dispatcher routes a raw object to the transformer that handles it.
type Dispatcher interface {
	Dispatch(node core.Object, parent object.Node, ctx *Context) (core.Object, error)
}

// DispatcherFunc adapts a function to Dispatcher.
type DispatcherFunc func(node core.Object, parent object.Node, ctx *Context) (core.Object, error)

func (f DispatcherFunc) Dispatch(node core.Object, parent object.Node, ctx *Context) (core.Object, error) {
	return f(node, parent, ctx)
}

// frame is a reference whose resolution is in progress.
type frame struct {
	ref     core.IndirectRef
	depth   int
	shell   core.Object
	pending *object.Pending
}

// Context is the per-document resolution state: the fetcher, the cache of
// resolved objects, the in-progress frames used to break reference cycles,
// the listener set propagated on attachment, and accumulated warnings.
//
// A Context is not safe for concurrent use. Once a resolution has been
// abandoned midway the context must not be reused.
type Context struct {
	fetcher  Fetcher
	dispatch Dispatcher

	cache      map[core.IndirectRef]core.Object
	frames     []*frame
	inProgress map[core.IndirectRef]*frame
	pendings   []*object.Pending

	listeners   []object.Listener
	logger      *slog.Logger
	warnings    []Warning
	eager       bool
	maxDepth    int
	depth       int
	resolveFunc object.ResolveFunc
}

// Option configures a Context.
type Option func(*Context)

// WithMaxDepth sets the maximum transformation depth (default: 100).
func WithMaxDepth(depth int) Option {
	return func(c *Context) {
		c.maxDepth = depth
	}
}

// WithLogger sets the logger used for degradations.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Context) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithListeners registers listeners propagated to every attached object.
func WithListeners(listeners ...object.Listener) Option {
	return func(c *Context) {
		for _, l := range listeners {
			c.AddListener(l)
		}
	}
}

// WithEager makes nested references resolve during transformation instead
// of producing lazy handles.
func WithEager(eager bool) Option {
	return func(c *Context) {
		c.eager = eager
	}
}

// WithResolveFunc replaces the function used by lazy handles. The default
// resolves through the context itself.
func WithResolveFunc(fn object.ResolveFunc) Option {
	return func(c *Context) {
		c.resolveFunc = fn
	}
}

// New creates a resolution context.
func New(fetcher Fetcher, dispatch Dispatcher, opts ...Option) *Context {
	c := &Context{
		fetcher:    fetcher,
		dispatch:   dispatch,
		cache:      make(map[core.IndirectRef]core.Object),
		inProgress: make(map[core.IndirectRef]*frame),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		maxDepth:   100,
	}
	c.resolveFunc = c.Resolve

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Logger returns the context logger.
func (c *Context) Logger() *slog.Logger { return c.logger }

// Eager reports whether nested references are resolved immediately.
func (c *Context) Eager() bool { return c.eager }

// AddListener adds a listener to the context set.
func (c *Context) AddListener(l object.Listener) {
	if l == nil {
		return
	}
	for _, existing := range c.listeners {
		if existing == l {
			return
		}
	}
	c.listeners = append(c.listeners, l)
}

// Listeners returns the context listener set.
func (c *Context) Listeners() []object.Listener {
	out := make([]object.Listener, len(c.listeners))
	copy(out, c.listeners)
	return out
}

// Attach sets the parent of obj and registers the context listeners on it.
func (c *Context) Attach(obj core.Object, parent object.Node) {
	object.Attach(obj, parent, c.listeners...)
}

// Resolve returns the typed object for ref. A cached object is returned
// as the same instance and re-attached to parent. A reference whose
// resolution is already in progress yields the container published with
// Bind, or a Pending placeholder, instead of recursing.
func (c *Context) Resolve(ref core.IndirectRef, parent object.Node) (core.Object, error) {
	if obj, ok := c.cache[ref]; ok {
		c.Attach(obj, parent)
		return obj, nil
	}

	if f, ok := c.inProgress[ref]; ok {
		c.logger.Debug("reference cycle", "ref", ref.String())
		if f.shell != nil {
			return f.shell, nil
		}
		if f.pending == nil {
			f.pending = object.NewPending(ref)
			c.pendings = append(c.pendings, f.pending)
		}
		c.Attach(f.pending, parent)
		return f.pending, nil
	}

	raw, err := c.fetcher.Fetch(ref)
	if err != nil {
		return nil, &ReferenceError{Ref: ref, Err: err}
	}

	f := &frame{ref: ref, depth: c.depth + 1}
	c.frames = append(c.frames, f)
	c.inProgress[ref] = f
	defer func() {
		c.frames = c.frames[:len(c.frames)-1]
		delete(c.inProgress, ref)
	}()

	obj, err := c.Transform(raw, parent)
	if err != nil {
		return nil, fmt.Errorf("transform %v: %w", ref, err)
	}
	if obj == nil {
		obj = core.Null{}
	}

	c.cache[ref] = obj
	if f.pending != nil {
		f.pending.Fulfil(obj)
	}
	return obj, nil
}

// Transform dispatches a raw node one level deeper.
func (c *Context) Transform(node core.Object, parent object.Node) (core.Object, error) {
	if c.depth >= c.maxDepth {
		return nil, fmt.Errorf("%w (%d)", ErrMaxDepth, c.maxDepth)
	}
	c.depth++
	defer func() { c.depth-- }()
	return c.dispatch.Dispatch(node, parent, c)
}

// Bind publishes the container being built for the reference currently
// resolving, so that cycles back to it receive the container itself. It only
// applies when called from the top-level transform of that reference.
func (c *Context) Bind(shell core.Object) {
	if len(c.frames) == 0 {
		return
	}
	f := c.frames[len(c.frames)-1]
	if f.depth != c.depth || f.shell != nil {
		return
	}
	f.shell = shell
}

// Current returns the reference currently resolving.
func (c *Context) Current() (core.IndirectRef, bool) {
	if len(c.frames) == 0 {
		return core.IndirectRef{}, false
	}
	return c.frames[len(c.frames)-1].ref, true
}

// Lazy returns an unresolved handle for ref.
func (c *Context) Lazy(ref core.IndirectRef) *object.Reference {
	return object.NewReference(ref, c.resolveFunc)
}

// Cached returns the resolved object for ref, if any.
func (c *Context) Cached(ref core.IndirectRef) (core.Object, bool) {
	obj, ok := c.cache[ref]
	return obj, ok
}

// Len returns the number of resolved objects.
func (c *Context) Len() int { return len(c.cache) }

// Unresolved returns the references of placeholders that were never
// fulfilled.
func (c *Context) Unresolved() []core.IndirectRef {
	var refs []core.IndirectRef
	for _, p := range c.pendings {
		if _, ok := p.Target(); !ok {
			refs = append(refs, p.Ref)
		}
	}
	sort.Slice(refs, func(i, j int) bool {
		if refs[i].Number != refs[j].Number {
			return refs[i].Number < refs[j].Number
		}
		return refs[i].Generation < refs[j].Generation
	})
	return refs
}

// Finish reports placeholders left unresolved at the end of a load.
func (c *Context) Finish() error {
	if refs := c.Unresolved(); len(refs) > 0 {
		return fmt.Errorf("%w: %v", ErrCyclicResolution, refs)
	}
	return nil
}
