package object

import (
	"encoding/binary"
	"fmt"
	"image"
	"sync"

	"golang.org/x/crypto/blake2b"

	"github.com/tsawler/pdfgraph/core"
	"github.com/tsawler/pdfgraph/imaging"
)

// Image is a decoded image XObject. It owns the pixel buffer produced by the
// image codec together with its graph links and content hash.
type Image struct {
	link
	Dict  *Dict
	Codec string // image codec that produced the pixels, empty for raw samples

	raw         []byte
	pixels      image.Image
	placeholder bool

	hashOnce sync.Once
	hash     [32]byte
}

// NewImage creates an image around dict. Pixels are set with SetPixels.
func NewImage(dict *Dict, codec string, raw []byte) *Image {
	if dict == nil {
		dict = NewDict(0)
	}
	img := &Image{Dict: dict, Codec: codec, raw: raw}
	dict.SetParent(img)
	return img
}

func (img *Image) Type() core.ObjectType { return core.ObjStream }

func (img *Image) String() string {
	kind := "image"
	if img.placeholder {
		kind = "placeholder image"
	}
	return fmt.Sprintf("%s %dx%d", kind, img.Width(), img.Height())
}

// SetPixels replaces the pixel buffer and notifies listeners.
func (img *Image) SetPixels(pixels image.Image, placeholder bool) {
	img.pixels = pixels
	img.placeholder = placeholder
	img.hashOnce = sync.Once{}
	img.notify(Event{Kind: EventData, Node: img})
}

// Pixels returns the pixel buffer.
func (img *Image) Pixels() image.Image { return img.pixels }

// SetRaw records the stream bytes during construction.
func (img *Image) SetRaw(raw []byte) { img.raw = raw }

// Raw returns the stream bytes as stored in the file.
func (img *Image) Raw() []byte { return img.raw }

// Placeholder reports whether the pixels were synthesised because the
// payload could not be decoded.
func (img *Image) Placeholder() bool { return img.placeholder }

// Width returns the pixel width.
func (img *Image) Width() int {
	if img.pixels == nil {
		return 0
	}
	return img.pixels.Bounds().Dx()
}

// Height returns the pixel height.
func (img *Image) Height() int {
	if img.pixels == nil {
		return 0
	}
	return img.pixels.Bounds().Dy()
}

// Hash returns a BLAKE2b-256 digest of the image size and its pixels
// normalised to RGBA. Pixel-identical images have equal hashes regardless
// of the colour model they were decoded into.
func (img *Image) Hash() [32]byte {
	img.hashOnce.Do(func() {
		h, _ := blake2b.New256(nil)
		var size [8]byte
		binary.BigEndian.PutUint32(size[:4], uint32(img.Width()))
		binary.BigEndian.PutUint32(size[4:], uint32(img.Height()))
		h.Write(size[:])
		if img.pixels != nil {
			h.Write(imaging.ToRGBA(img.pixels).Pix)
		}
		copy(img.hash[:], h.Sum(nil))
	})
	return img.hash
}

// Equal compares two images by content.
func (img *Image) Equal(other *Image) bool {
	if img == other {
		return true
	}
	if img == nil || other == nil {
		return false
	}
	return img.Hash() == other.Hash()
}

// PNG encodes the pixels as PNG.
func (img *Image) PNG() ([]byte, error) {
	if img.pixels == nil {
		return nil, fmt.Errorf("image has no pixels")
	}
	return imaging.EncodePNG(img.pixels)
}

// ImageSet collects images, dropping pixel-identical duplicates.
type ImageSet struct {
	byHash map[[32]byte]*Image
	order  []*Image
}

// NewImageSet creates an empty set.
func NewImageSet() *ImageSet {
	return &ImageSet{byHash: make(map[[32]byte]*Image)}
}

// Add inserts img unless an equal image is present. It returns the image
// kept in the set and whether img was added.
func (s *ImageSet) Add(img *Image) (*Image, bool) {
	h := img.Hash()
	if existing, ok := s.byHash[h]; ok {
		return existing, false
	}
	s.byHash[h] = img
	s.order = append(s.order, img)
	return img, true
}

// Images returns the distinct images in insertion order.
func (s *ImageSet) Images() []*Image {
	out := make([]*Image, len(s.order))
	copy(out, s.order)
	return out
}

// Len returns the number of distinct images.
func (s *ImageSet) Len() int { return len(s.order) }
