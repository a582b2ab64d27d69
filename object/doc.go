// Package object defines the typed object graph produced by transforming
// raw PDF objects.
//
// Containers ([Dict], [Array]) and leaf resources ([Stream], [Image],
// [FontProgram], [Text]) carry a parent pointer and a listener set. The
// parent pointer is overwritten on every attachment and only guarantees a
// path to the [Document] root; a shared font or image reachable from many
// pages remembers just one of them.
//
// Nested indirect references are kept as [Reference] handles and resolved
// on first use. A [Pending] placeholder stands in for an object whose
// resolution is still running, which is how reference cycles terminate.
//
// Images compare by content: [Image.Hash] digests the pixels normalised to
// RGBA, and [ImageSet] drops duplicates.
package object
