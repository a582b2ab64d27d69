// Package reader opens PDF files and exposes them as a typed object graph.
//
// A Reader ties the pieces together: it reads the header and the
// cross-reference data, builds a resolver.Context over the file with the
// default transformer registry, and loads the trailer. Every other object
// is loaded on first use and cached, so resolving the same reference twice
// returns the same instance.
//
// # Opening PDF Files
//
//	r, err := reader.Open("document.pdf", reader.WithMaxDecodedSize(256<<20))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer r.Close()
//
// Or use [NewReader] with any io.ReaderAt.
//
// A damaged cross-reference table is rebuilt by scanning the file for
// object headers, and a trailer without /Root is repaired by looking for
// the catalog. Both are reported as warnings. Encrypted documents are
// rejected with [ErrEncrypted].
//
// # Document Access
//
//   - Version() - PDF version (e.g., 1.7)
//   - Catalog() - document catalog dictionary
//   - Info() - document information as decoded strings
//   - Object(num), Resolve(ref) - typed objects
//   - PageCount(), Page(i) - page tree access
//   - Images() - distinct images of all pages
//   - LoadAll() - load every object and check for unresolved cycles
//
// # Degraded Objects
//
// Problems confined to one object do not fail the load. A stream whose
// filters fail keeps its raw bytes, an image that cannot be decoded gets a
// mid-gray placeholder, and a dangling nested reference becomes null. Each
// is recorded and returned by Warnings().
package reader
