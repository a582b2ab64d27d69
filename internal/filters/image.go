package filters

// passThrough is used for image codecs. Their payload is a complete image
// file that the imaging package turns into pixels, so the chain leaves the
// bytes as they are.
type passThrough struct {
	name string
}

func (p passThrough) Name() string { return p.name }

func (p passThrough) Decode(data []byte, _ Params) ([]byte, error) {
	return data, nil
}

// IsImageCodec reports whether name is a filter whose output is an encoded
// image rather than raw samples.
func IsImageCodec(name string) bool {
	switch name {
	case "DCTDecode", "DCT", "JPXDecode", "CCITTFaxDecode", "CCF", "JBIG2Decode":
		return true
	}
	return false
}
