// Package pages provides PDF page tree traversal and page access over the
// typed object graph.
//
// # Page Tree
//
// PDF documents organize pages in a tree structure. The [PageTree] type
// navigates this hierarchy:
//
//	tree, _ := pages.NewCatalog(catalogDict).Tree()
//	count, _ := tree.Count()
//	page, _ := tree.GetPage(0)  // 0-indexed
//
// A node listed twice, or a node listing one of its own ancestors, is
// visited once.
//
// # Page Access
//
// The [Page] type represents a single PDF page with:
//
//   - MediaBox - page dimensions
//   - CropBox - visible area (optional)
//   - Rotate - page rotation (0, 90, 180, 270)
//   - Resources - fonts, images, etc.
//   - Contents - content streams
//   - Images - image XObjects, including placeholders
//
// MediaBox, CropBox, Resources and Rotate are inherited from the nearest
// Pages node that defines them.
//
// Lazy references in the graph are followed through the typed dictionary
// getters, so the page tree never talks to the reader directly.
package pages
