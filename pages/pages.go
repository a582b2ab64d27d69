package pages

import (
	"fmt"
	"sort"

	"github.com/tsawler/pdfgraph/core"
	"github.com/tsawler/pdfgraph/object"
)

// Catalog represents the PDF document catalog (root of document structure)
type Catalog struct {
	dict *object.Dict
}

// NewCatalog creates a new catalog from a typed dictionary
func NewCatalog(dict *object.Dict) *Catalog {
	return &Catalog{dict: dict}
}

// Dict returns the underlying dictionary
func (c *Catalog) Dict() *object.Dict { return c.dict }

// Type returns the catalog type (should be "Catalog")
func (c *Catalog) Type() string {
	name, _ := c.dict.GetName("Type")
	return string(name)
}

// Pages returns the page tree root
func (c *Catalog) Pages() (*object.Dict, error) {
	if !c.dict.Has("Pages") {
		return nil, fmt.Errorf("catalog missing /Pages entry")
	}

	obj, err := c.dict.Resolve("Pages")
	if err != nil {
		return nil, fmt.Errorf("failed to resolve /Pages: %w", err)
	}

	pages, ok := obj.(*object.Dict)
	if !ok {
		return nil, fmt.Errorf("invalid /Pages type: %T", obj)
	}

	return pages, nil
}

// Tree returns the page tree rooted at /Pages
func (c *Catalog) Tree() (*PageTree, error) {
	root, err := c.Pages()
	if err != nil {
		return nil, err
	}
	return NewPageTree(root), nil
}

// Metadata returns the metadata stream if present
func (c *Catalog) Metadata() (*object.Stream, error) {
	if !c.dict.Has("Metadata") {
		return nil, nil // Optional
	}

	obj, err := c.dict.Resolve("Metadata")
	if err != nil {
		return nil, fmt.Errorf("failed to resolve /Metadata: %w", err)
	}

	stream, ok := obj.(*object.Stream)
	if !ok {
		return nil, fmt.Errorf("invalid /Metadata type: %T", obj)
	}

	return stream, nil
}

// Version returns the version entry if present
func (c *Catalog) Version() string {
	name, _ := c.dict.GetName("Version")
	return string(name)
}

// PageTree represents the PDF page tree
type PageTree struct {
	root  *object.Dict
	pages []*Page // Cached flattened page list
}

// NewPageTree creates a new page tree from the root pages dictionary
func NewPageTree(root *object.Dict) *PageTree {
	return &PageTree{root: root}
}

// Count returns the total number of pages declared by the root node
func (t *PageTree) Count() (int, error) {
	if !t.root.Has("Count") {
		return 0, fmt.Errorf("page tree missing /Count entry")
	}

	count, ok := t.root.GetInt("Count")
	if !ok {
		return 0, fmt.Errorf("invalid /Count type: %T", t.root.Get("Count"))
	}

	return count, nil
}

// GetPage returns the page at the given index (0-based)
func (t *PageTree) GetPage(index int) (*Page, error) {
	pages, err := t.Pages()
	if err != nil {
		return nil, err
	}

	if index < 0 || index >= len(pages) {
		return nil, fmt.Errorf("page index %d out of range [0, %d)", index, len(pages))
	}

	return pages[index], nil
}

// Pages returns all pages as a slice
func (t *PageTree) Pages() ([]*Page, error) {
	if t.pages == nil {
		if err := t.loadPages(); err != nil {
			return nil, err
		}
	}

	return t.pages, nil
}

// loadPages traverses the page tree and builds the flattened page list
func (t *PageTree) loadPages() error {
	pages := make([]*Page, 0)
	visited := make(map[*object.Dict]bool)

	if err := t.traversePageNode(t.root, nil, visited, &pages); err != nil {
		return fmt.Errorf("failed to traverse page tree: %w", err)
	}

	t.pages = pages
	return nil
}

// traversePageNode walks a page tree node. ancestors holds the Pages nodes
// above it, nearest last, for inheritable attributes. A node reached twice
// is skipped.
func (t *PageTree) traversePageNode(node *object.Dict, ancestors []*object.Dict, visited map[*object.Dict]bool, pages *[]*Page) error {
	if visited[node] {
		return nil
	}
	visited[node] = true

	typeName, ok := node.GetName("Type")
	if !ok {
		// Tolerate a missing /Type: a node with /Kids is an intermediate node.
		if node.Has("Kids") {
			typeName = "Pages"
		} else {
			typeName = "Page"
		}
	}

	switch typeName {
	case "Pages":
		kids, ok := node.GetArray("Kids")
		if !ok {
			return fmt.Errorf("Pages node missing /Kids entry")
		}

		next := append(ancestors[:len(ancestors):len(ancestors)], node)
		for i := 0; i < kids.Len(); i++ {
			kidObj, err := kids.Resolve(i)
			if err != nil {
				return fmt.Errorf("failed to resolve kid %d: %w", i, err)
			}

			kid, ok := kidObj.(*object.Dict)
			if !ok {
				return fmt.Errorf("invalid kid type: %T", kidObj)
			}

			if err := t.traversePageNode(kid, next, visited, pages); err != nil {
				return err
			}
		}

	case "Page":
		*pages = append(*pages, NewPage(node, ancestors))

	default:
		return fmt.Errorf("unexpected page node type: %s", typeName)
	}

	return nil
}

// Page represents a single PDF page
type Page struct {
	dict      *object.Dict
	ancestors []*object.Dict // Pages nodes above the page, nearest last
}

// NewPage creates a new page from a dictionary and the Pages nodes above it
func NewPage(dict *object.Dict, ancestors []*object.Dict) *Page {
	return &Page{dict: dict, ancestors: ancestors}
}

// Dict returns the page dictionary
func (p *Page) Dict() *object.Dict { return p.dict }

// Type returns the page type (should be "Page")
func (p *Page) Type() string {
	name, _ := p.dict.GetName("Type")
	return string(name)
}

// inherited returns the value of an inheritable attribute: from the page
// itself, then from the nearest ancestor that defines it.
func (p *Page) inherited(key string) (core.Object, error) {
	if p.dict.Has(key) {
		return p.dict.Resolve(key)
	}
	for i := len(p.ancestors) - 1; i >= 0; i-- {
		if p.ancestors[i].Has(key) {
			return p.ancestors[i].Resolve(key)
		}
	}
	return nil, nil
}

// MediaBox returns the page media box [x1 y1 x2 y2]
// This is inheritable, so checks parent if not present
func (p *Page) MediaBox() ([]float64, error) {
	return p.getBox("MediaBox")
}

// CropBox returns the page crop box [x1 y1 x2 y2]
// This is inheritable, defaults to MediaBox if not present
func (p *Page) CropBox() ([]float64, error) {
	box, err := p.getBox("CropBox")
	if err != nil {
		return p.MediaBox()
	}
	return box, nil
}

// getBox retrieves a box attribute (inheritable)
func (p *Page) getBox(name string) ([]float64, error) {
	obj, err := p.inherited(name)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", name, err)
	}
	if obj == nil {
		return nil, fmt.Errorf("%s not found", name)
	}

	arr, ok := obj.(*object.Array)
	if !ok {
		return nil, fmt.Errorf("invalid %s type: %T", name, obj)
	}

	if arr.Len() != 4 {
		return nil, fmt.Errorf("invalid %s length: %d (expected 4)", name, arr.Len())
	}

	box, ok := arr.Floats()
	if !ok {
		return nil, fmt.Errorf("invalid %s element in %v", name, arr)
	}

	return box, nil
}

// Resources returns the page resources dictionary
// This is inheritable
func (p *Page) Resources() (*object.Dict, error) {
	obj, err := p.inherited("Resources")
	if err != nil {
		return nil, fmt.Errorf("failed to resolve Resources: %w", err)
	}
	if obj == nil {
		return nil, fmt.Errorf("resources not found")
	}

	res, ok := obj.(*object.Dict)
	if !ok {
		return nil, fmt.Errorf("invalid Resources type: %T", obj)
	}

	return res, nil
}

// Contents returns the page content streams in order
func (p *Page) Contents() ([]*object.Stream, error) {
	if !p.dict.Has("Contents") {
		return nil, nil // Contents is optional
	}

	obj, err := p.dict.Resolve("Contents")
	if err != nil {
		return nil, fmt.Errorf("failed to resolve Contents: %w", err)
	}

	// Contents can be a single stream or array of streams
	switch v := obj.(type) {
	case *object.Stream:
		return []*object.Stream{v}, nil
	case *object.Array:
		streams := make([]*object.Stream, 0, v.Len())
		for i := 0; i < v.Len(); i++ {
			elem, err := v.Resolve(i)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve contents[%d]: %w", i, err)
			}
			s, ok := elem.(*object.Stream)
			if !ok {
				return nil, fmt.Errorf("invalid contents[%d] type: %T", i, elem)
			}
			streams = append(streams, s)
		}
		return streams, nil
	default:
		return nil, fmt.Errorf("invalid Contents type: %T", obj)
	}
}

// Images returns the image XObjects named in the page resources, ordered
// by resource name. Placeholder images are included.
func (p *Page) Images() ([]*object.Image, error) {
	res, err := p.Resources()
	if err != nil {
		return nil, nil
	}

	xobjects, ok := res.GetDict("XObject")
	if !ok {
		return nil, nil
	}

	names := xobjects.Keys()
	sort.Strings(names)

	var images []*object.Image
	for _, name := range names {
		obj, err := xobjects.Resolve(name)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve XObject %s: %w", name, err)
		}
		if img, ok := obj.(*object.Image); ok {
			images = append(images, img)
		}
	}

	return images, nil
}

// Rotate returns the page rotation (0, 90, 180, or 270)
// This is inheritable
func (p *Page) Rotate() int {
	obj, err := p.inherited("Rotate")
	if err != nil {
		return 0
	}

	rotate, ok := obj.(core.Int)
	if !ok {
		return 0
	}

	r := int(rotate) % 360
	if r < 0 {
		r += 360
	}
	return r
}

// Width returns the page width (from MediaBox)
func (p *Page) Width() (float64, error) {
	box, err := p.MediaBox()
	if err != nil {
		return 0, err
	}
	return box[2] - box[0], nil
}

// Height returns the page height (from MediaBox)
func (p *Page) Height() (float64, error) {
	box, err := p.MediaBox()
	if err != nil {
		return 0, err
	}
	return box[3] - box[1], nil
}
