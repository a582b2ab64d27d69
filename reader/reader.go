package reader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"strconv"
	"sync"

	"github.com/tsawler/pdfgraph/core"
	"github.com/tsawler/pdfgraph/imaging"
	"github.com/tsawler/pdfgraph/object"
	"github.com/tsawler/pdfgraph/pages"
	"github.com/tsawler/pdfgraph/resolver"
	"github.com/tsawler/pdfgraph/transform"
)

var (
	// ErrEncrypted is returned for documents with an /Encrypt dictionary.
	ErrEncrypted = errors.New("encrypted documents are not supported")
	// ErrNoCatalog is returned when the document catalog cannot be found.
	ErrNoCatalog = errors.New("document catalog not found")
)

// headerWindow is how far into the file the %PDF- marker may start.
const headerWindow = 1024

var versionPattern = regexp.MustCompile(`%PDF-(\d+)\.(\d+)`)

// PDFVersion represents a PDF version
type PDFVersion struct {
	Major int
	Minor int
}

// String returns the version as a string (e.g., "1.7")
func (v PDFVersion) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

type options struct {
	logger         *slog.Logger
	eager          bool
	maxDepth       int
	maxDecodedSize int64
	listeners      []object.Listener
	decoder        imaging.Decoder
}

// Option configures a Reader.
type Option func(*options)

// WithLogger sets the logger for load diagnostics and degraded objects.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithEager resolves nested references while objects are loaded instead of
// leaving lazy handles in the graph.
func WithEager(eager bool) Option {
	return func(o *options) {
		o.eager = eager
	}
}

// WithMaxDepth bounds the nesting depth of a single resolution.
func WithMaxDepth(depth int) Option {
	return func(o *options) {
		o.maxDepth = depth
	}
}

// WithMaxDecodedSize bounds the output of each filter in a stream's chain.
func WithMaxDecodedSize(n int64) Option {
	return func(o *options) {
		o.maxDecodedSize = n
	}
}

// WithListeners registers listeners on every object of the document.
func WithListeners(listeners ...object.Listener) Option {
	return func(o *options) {
		o.listeners = append(o.listeners, listeners...)
	}
}

// WithImageDecoder replaces the image codec implementation.
func WithImageDecoder(dec imaging.Decoder) Option {
	return func(o *options) {
		o.decoder = dec
	}
}

// Reader represents an open PDF document. Its methods are safe for
// concurrent use; they are serialised on one lock because resolution
// mutates the shared object cache. Lazy references handed out by the
// reader resolve outside that lock and must stay on one goroutine.
type Reader struct {
	mu sync.Mutex

	closer  io.Closer
	size    int64
	version PDFVersion
	xref    *core.XRefTable
	doc     *object.Document
	ctx     *resolver.Context
	logger  *slog.Logger

	pageTree *pages.PageTree // Cached page tree
	images   *object.ImageSet
}

// Open opens a PDF file and returns a Reader
func Open(filename string, opts ...Option) (*Reader, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to get file info: %w", err)
	}

	r, err := NewReader(file, info.Size(), opts...)
	if err != nil {
		file.Close()
		return nil, err
	}
	r.closer = file

	return r, nil
}

// NewReader reads the document structure from src: the header, the
// cross-reference data and the trailer. Objects are loaded on demand.
func NewReader(src io.ReaderAt, size int64, opts ...Option) (*Reader, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	logger := o.logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	version, err := parseHeader(src, size)
	if err != nil {
		return nil, fmt.Errorf("failed to parse header: %w", err)
	}

	xref, xrefErr := core.ParseXRef(src, size)
	if xrefErr != nil {
		logger.Warn("rebuilding cross-reference table", "err", xrefErr)
		rebuilt, err := core.RebuildXRef(src, size)
		if err != nil {
			return nil, fmt.Errorf("failed to load xref: %v; rebuild: %w", xrefErr, err)
		}
		xref = rebuilt
	}

	var topts []transform.Option
	if o.maxDecodedSize > 0 {
		topts = append(topts, transform.WithMaxDecodedSize(int(o.maxDecodedSize)))
	}
	if o.decoder != nil {
		topts = append(topts, transform.WithImageDecoder(o.decoder))
	}

	ropts := []resolver.Option{
		resolver.WithLogger(logger),
		resolver.WithEager(o.eager),
		resolver.WithListeners(o.listeners...),
	}
	if o.maxDepth > 0 {
		ropts = append(ropts, resolver.WithMaxDepth(o.maxDepth))
	}

	source := resolver.NewSource(src, size, xref)
	r := &Reader{
		size:    size,
		version: version,
		xref:    xref,
		doc:     object.NewDocument(version.String(), xref),
		ctx:     resolver.New(source, transform.Default(topts...), ropts...),
		logger:  logger,
		images:  object.NewImageSet(),
	}

	if xrefErr != nil {
		r.ctx.Warn(resolver.WarnRecovered, xrefErr)
	}

	rawTrailer := xref.Trailer
	if rawTrailer == nil || !rawTrailer.Has("Root") {
		rawTrailer = r.recoverTrailer(source, rawTrailer)
	}
	if rawTrailer.Has("Encrypt") {
		return nil, ErrEncrypted
	}

	trailer, err := r.ctx.Transform(rawTrailer, r.doc)
	if err != nil {
		return nil, fmt.Errorf("failed to load trailer: %w", err)
	}
	if dict, ok := trailer.(*object.Dict); ok {
		r.doc.SetTrailer(dict)
	}

	logger.Debug("opened document", "version", version.String(), "objects", len(xref.InUse()))
	return r, nil
}

// recoverTrailer builds a trailer for a damaged file by looking for the
// catalog among the objects of the table.
func (r *Reader) recoverTrailer(source *resolver.Source, trailer core.Dict) core.Dict {
	out := core.Dict{}
	for k, v := range trailer {
		out[k] = v
	}
	for _, num := range r.xref.InUse() {
		entry, _ := r.xref.Get(num)
		ref := core.IndirectRef{Number: num, Generation: entry.Generation}
		obj, err := source.Fetch(ref)
		if err != nil {
			continue
		}
		if d, ok := obj.(core.Dict); ok {
			if t, _ := d.GetName("Type"); t == "Catalog" {
				out["Root"] = ref
				r.ctx.Warn(resolver.WarnRecovered, fmt.Errorf("trailer /Root recovered as %v", ref))
				break
			}
		}
	}
	return out
}

// parseHeader finds the %PDF-x.y marker near the start of the file.
func parseHeader(src io.ReaderAt, size int64) (PDFVersion, error) {
	n := int64(headerWindow)
	if size < n {
		n = size
	}
	buf := make([]byte, n)
	read, err := src.ReadAt(buf, 0)
	if err != nil && err != io.EOF {
		return PDFVersion{}, fmt.Errorf("failed to read header: %w", err)
	}
	buf = buf[:read]

	idx := bytes.Index(buf, []byte("%PDF-"))
	if idx < 0 {
		return PDFVersion{}, fmt.Errorf("invalid PDF header: %q", firstLine(buf))
	}

	m := versionPattern.FindSubmatch(buf[idx:])
	if m == nil {
		return PDFVersion{}, fmt.Errorf("invalid version format: %q", firstLine(buf[idx:]))
	}

	major, _ := strconv.Atoi(string(m[1]))
	minor, _ := strconv.Atoi(string(m[2]))
	return PDFVersion{Major: major, Minor: minor}, nil
}

func firstLine(b []byte) []byte {
	if i := bytes.IndexAny(b, "\r\n"); i >= 0 {
		b = b[:i]
	}
	if len(b) > 32 {
		b = b[:32]
	}
	return b
}

// Close closes the underlying file when the reader opened it
func (r *Reader) Close() error {
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}

// Version returns the PDF version
func (r *Reader) Version() PDFVersion {
	return r.version
}

// FileSize returns the size of the PDF file in bytes
func (r *Reader) FileSize() int64 {
	return r.size
}

// XRefTable returns the cross-reference table
func (r *Reader) XRefTable() *core.XRefTable {
	return r.xref
}

// Document returns the root of the typed object graph
func (r *Reader) Document() *object.Document {
	return r.doc
}

// Trailer returns the typed trailer dictionary
func (r *Reader) Trailer() *object.Dict {
	return r.doc.Trailer
}

// NumObjects returns the /Size entry of the trailer
func (r *Reader) NumObjects() int {
	if r.doc.Trailer == nil {
		return 0
	}
	size, _ := r.doc.Trailer.GetInt("Size")
	return size
}

// Resolve returns the typed object for ref. Repeated calls return the same
// instance.
func (r *Reader) Resolve(ref core.IndirectRef) (core.Object, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ctx.Resolve(ref, r.doc)
}

// Object resolves the newest generation of an object by number.
func (r *Reader) Object(num int) (core.Object, error) {
	gen := 0
	if entry, ok := r.xref.Get(num); ok {
		gen = entry.Generation
	}
	return r.Resolve(core.IndirectRef{Number: num, Generation: gen})
}

// Catalog returns the document catalog
func (r *Reader) Catalog() (*object.Dict, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.catalog()
}

func (r *Reader) catalog() (*object.Dict, error) {
	trailer := r.doc.Trailer
	if trailer == nil || !trailer.Has("Root") {
		return nil, fmt.Errorf("trailer missing /Root entry: %w", ErrNoCatalog)
	}

	obj, err := r.trailerEntry("Root")
	if err != nil {
		return nil, fmt.Errorf("failed to resolve catalog: %w", err)
	}

	catalog, ok := obj.(*object.Dict)
	if !ok {
		return nil, fmt.Errorf("catalog is %T: %w", obj, ErrNoCatalog)
	}

	return catalog, nil
}

// trailerEntry resolves a trailer value, eagerly or through its lazy handle.
func (r *Reader) trailerEntry(key string) (core.Object, error) {
	switch v := r.doc.Trailer.Get(key).(type) {
	case *object.Reference:
		return r.ctx.Resolve(v.Ref, r.doc.Trailer)
	case core.IndirectRef:
		return r.ctx.Resolve(v, r.doc.Trailer)
	default:
		return object.Deref(v)
	}
}

// Info returns the document information dictionary as decoded strings.
// Entries that are not strings are skipped.
func (r *Reader) Info() (map[string]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.doc.Trailer == nil || !r.doc.Trailer.Has("Info") {
		return nil, nil // Info is optional
	}

	obj, err := r.trailerEntry("Info")
	if err != nil {
		return nil, fmt.Errorf("failed to resolve info: %w", err)
	}

	dict, ok := obj.(*object.Dict)
	if !ok {
		return nil, fmt.Errorf("info is not a dictionary: %T", obj)
	}

	info := make(map[string]string, dict.Len())
	for _, k := range dict.Keys() {
		if s, ok := dict.GetText(k); ok {
			info[k] = s
		}
	}
	return info, nil
}

// LoadAll resolves every in-use object of the cross-reference table and
// reports placeholders left unresolved by reference cycles. Objects that
// fail to load are skipped and recorded as warnings.
func (r *Reader) LoadAll() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, num := range r.xref.InUse() {
		entry, _ := r.xref.Get(num)
		ref := core.IndirectRef{Number: num, Generation: entry.Generation}
		if _, err := r.ctx.Resolve(ref, r.doc); err != nil {
			kind := resolver.WarnRecovered
			if errors.Is(err, resolver.ErrUnresolvableReference) && !errors.Is(err, resolver.ErrMaxDepth) {
				kind = resolver.WarnUnresolvedReference
			}
			r.ctx.Warn(kind, err, "object", num)
		}
	}

	r.logger.Debug("loaded document", "objects", r.ctx.Len(), "warnings", len(r.ctx.Warnings()))
	return r.ctx.Finish()
}

// Len returns the number of objects resolved so far
func (r *Reader) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ctx.Len()
}

// PageCount returns the number of pages in the PDF
func (r *Reader) PageCount() (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tree, err := r.ensurePageTree()
	if err != nil {
		return 0, err
	}
	pages, err := tree.Pages()
	if err != nil {
		return 0, err
	}
	return len(pages), nil
}

// Page returns the page at the given index (0-based)
func (r *Reader) Page(index int) (*pages.Page, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tree, err := r.ensurePageTree()
	if err != nil {
		return nil, err
	}
	return tree.GetPage(index)
}

// Images returns the distinct images of all pages in page order. Images
// with identical pixels are returned once.
func (r *Reader) Images() ([]*object.Image, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tree, err := r.ensurePageTree()
	if err != nil {
		return nil, err
	}
	all, err := tree.Pages()
	if err != nil {
		return nil, err
	}

	for i, page := range all {
		images, err := page.Images()
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
		for _, img := range images {
			r.images.Add(img)
		}
	}
	return r.images.Images(), nil
}

// Warnings returns the problems contained while loading objects
func (r *Reader) Warnings() []resolver.Warning {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ctx.Warnings()
}

// ensurePageTree loads the page tree if not already loaded
func (r *Reader) ensurePageTree() (*pages.PageTree, error) {
	if r.pageTree != nil {
		return r.pageTree, nil
	}

	catalog, err := r.catalog()
	if err != nil {
		return nil, fmt.Errorf("failed to get catalog: %w", err)
	}

	tree, err := pages.NewCatalog(catalog).Tree()
	if err != nil {
		return nil, err
	}

	r.pageTree = tree
	return tree, nil
}
