// Package transform turns raw objects into the typed object graph.
//
// A Registry holds transformers in priority order. Dispatch hands a raw node
// to the first transformer that recognizes it and returns nodes nobody
// recognizes unchanged, so numbers, names and booleans pass through.
// References never reach a transformer: they are resolved through the
// resolver.Context, which caches the result and breaks cycles.
//
// # Default transformers
//
//	ImageTransformer{Codec: CCITTFaxDecode}  fax images
//	ImageTransformer{Codec: DCTDecode}       JPEG images
//	ImageTransformer{Codec: JPXDecode}       JPEG 2000 images
//	RawImageTransformer                      sample images
//	FontProgramTransformer                   embedded font files
//	StreamTransformer                        any other stream
//	DictTransformer, ArrayTransformer        containers
//	TextTransformer                          strings with a byte order mark
//
// Order matters: a transformer that fails is not followed by a more general
// one. Image transformers never fail on bad pixel data; they substitute a
// mid-gray placeholder of the declared size instead. The stream transformer
// keeps the raw bytes of a stream whose filter chain cannot be applied.
//
// # Usage
//
//	reg := transform.Default(transform.WithMaxDecodedSize(64 << 20))
//	ctx := resolver.New(source, reg)
//	obj, err := ctx.Resolve(ref, doc)
package transform
