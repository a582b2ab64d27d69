package object

import (
	"fmt"

	"github.com/tsawler/pdfgraph/core"
)

// Document is the root of a typed object graph. Every node attached below
// it reaches it through parent pointers.
type Document struct {
	link
	Version string
	Trailer *Dict
	Lookup  core.Lookup
}

// NewDocument creates a document root.
func NewDocument(version string, lookup core.Lookup) *Document {
	return &Document{Version: version, Lookup: lookup}
}

func (d *Document) Type() core.ObjectType { return core.ObjDict }

func (d *Document) String() string {
	return fmt.Sprintf("document %s", d.Version)
}

// SetParent is a no-op: the document is always the root.
func (d *Document) SetParent(Node) {}

// SetTrailer attaches the typed trailer dictionary.
func (d *Document) SetTrailer(trailer *Dict) {
	d.Trailer = trailer
	if trailer != nil {
		trailer.SetParent(d)
	}
}
