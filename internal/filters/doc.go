// Package filters implements the stream filter codecs of a PDF document and
// the chain that applies them.
//
// A stream declares one or more filters. They are applied left to right: the
// output of filter i is the input of filter i+1, and the decode parameters at
// index i belong to filter i only.
//
//	data, err := filters.Decode(raw, []string{"ASCII85Decode", "FlateDecode"}, []filters.Params{nil, {"Predictor": 12, "Columns": 4}})
//
// # Codecs
//
// The standard registry knows the following filters, under their full and
// abbreviated names:
//
//   - FlateDecode (Fl): zlib/deflate with PNG and TIFF predictors
//   - LZWDecode (LZW): LZW with EarlyChange and predictors
//   - ASCIIHexDecode (AHx), ASCII85Decode (A85)
//   - RunLengthDecode (RL)
//   - CCITTFaxDecode (CCF): Group 3 and Group 4 fax, one bit per pixel output
//   - DCTDecode (DCT), JPXDecode: image codecs; the bytes pass through the
//     chain unchanged and pixels are produced by the imaging package
//
// A filter name without a codec fails with an [UnsupportedFilterError], which
// matches [ErrUnsupportedFilter]. A codec that rejects its input fails with a
// [DecodeError], which matches [ErrMalformedPayload]. Both are recoverable:
// callers keep the undecoded bytes.
//
// # Decode Parameters
//
// Parameters are passed as a Params map of Go primitives:
//
//	params := filters.Params{
//	    "Predictor": 12,
//	    "Columns":   100,
//	    "Colors":    3,
//	}
package filters
