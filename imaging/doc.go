// Package imaging decodes image payloads into pixels.
//
// The [Decoder] interface is the codec capability used by image
// transformers. [NewDecoder] handles CCITT fax, DCT (JPEG) and raw samples
// in gray, RGB, CMYK and indexed colour spaces; JPX and JBIG2 report
// [ErrUnsupportedCodec].
//
// Decoding is never trusted on its own: callers run [Probe] on the result
// and fall back to a mid-gray [Placeholder] of the declared size when either
// step fails.
package imaging
