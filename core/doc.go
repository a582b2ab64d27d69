// Package core provides the raw PDF object model and the low-level readers
// that produce it.
//
// # Object Types
//
// PDF defines eight basic object types, all implemented as types satisfying the
// Object interface:
//
//   - [Null] - represents the PDF null object
//   - [Bool] - represents PDF boolean values (true/false)
//   - [Int] - represents PDF integers
//   - [Real] - represents PDF real numbers (floating point)
//   - [String] - represents PDF string objects (literal or hexadecimal)
//   - [Name] - represents PDF name objects (e.g., /Type, /Font)
//   - [Array] - represents PDF arrays
//   - [Dict] - represents PDF dictionaries
//
// Additionally, [Stream] represents a PDF stream (dictionary + raw bytes),
// and [IndirectRef] represents a reference to an indirect object. Streams
// parsed from random-access input fetch their bytes on first use.
//
// Raw nodes are produced once and never modified by the transformation
// layers built on top of this package.
//
// # Parsing
//
// The [Parser] type handles parsing PDF syntax. [ParseIndirectObjectAt]
// parses the object stored at a file offset. The [Lexer] type converts raw
// bytes into tokens that the parser consumes.
//
// # Cross-Reference Tables
//
// [ParseXRef] builds an [XRefTable] from classic tables, xref streams and
// hybrid files. The table implements [Lookup], which maps a reference to a
// byte offset or to a slot in an [ObjectStream]. [RebuildXRef] recovers a
// table from a file whose xref data is damaged.
//
// # Stream Decoding
//
// [FilterChain] normalizes the Filter and DecodeParms entries of a stream
// dictionary, accepting both the scalar and the array forms. [Stream.Decode]
// runs the chain through the codecs of the internal filters package.
package core
