// Package resolver turns indirect references into typed objects.
//
// A Context owns the per-document resolution state. It fetches raw objects
// through a Fetcher, hands them to a Dispatcher that picks a transformer, and
// caches the result so that every reference resolves to exactly one typed
// instance.
//
// # Basic Usage
//
//	src := resolver.NewSource(file, size, xref)
//	ctx := resolver.New(src, registry, resolver.WithLogger(logger))
//	obj, err := ctx.Resolve(core.IndirectRef{Number: 1}, doc)
//
// # Cycles
//
// A reference whose resolution is in progress is not fetched again. A
// transformer that publishes its container with Bind lets the cycle close on
// that container. Otherwise the caller receives an object.Pending that is
// fulfilled when the outer resolution returns. Finish reports placeholders
// that were never fulfilled.
//
// # Depth
//
// Transform counts nesting and fails with ErrMaxDepth past the configured
// limit:
//
//	ctx := resolver.New(src, registry, resolver.WithMaxDepth(50))
//
// # Warnings
//
// Transformers degrade instead of failing where they can (undecodable
// streams, broken images). Each degradation is recorded with Warn and is
// available from Warnings after the load.
package resolver
