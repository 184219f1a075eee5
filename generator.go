package imago

// Image is the raster a generator consumes: an 8-bit, 3-channel buffer in
// BGR order (§3), stride-packed row-major. Image decoding itself is an
// external collaborator (§1); callers hand in an already-decoded raster.
type Image struct {
	Width, Height int
	// Pix holds Height*Width*3 bytes, row-major, BGR per pixel. Stride is
	// always Width*3; there is no separate padding between rows.
	Pix []byte
}

// At returns the BGR triple at (x, y).
func (im *Image) At(x, y int) (b, g, r byte) {
	i := (y*im.Width + x) * 3
	return im.Pix[i], im.Pix[i+1], im.Pix[i+2]
}

// NewImage allocates a zeroed BGR raster of the given size.
func NewImage(width, height int) *Image {
	return &Image{Width: width, Height: height, Pix: make([]byte, width*height*3)}
}

// GlobalBundle is the output shape of a global descriptor generator
// (tiny-image, GIST): a single flat feature vector per image.
type GlobalBundle struct {
	Features []float32
}

// LocalBundle is the output shape of a local descriptor generator (SHOG):
// one feature vector and one normalized 2-D position per keypoint, plus the
// count (redundant with len(Features) but carried explicitly because the
// vocabulary sampler, §4.E, reads NumFeatures from its own property stream
// without decoding the Features stream).
type LocalBundle struct {
	Features    [][]float32
	Positions   [][2]float32
	NumFeatures int32
}

// Generator computes a descriptor bundle for one image. Implementations
// must be re-entrant: all configuration is fixed at construction and any
// precomputed filter banks are read-only, so a single Generator instance is
// safely shared by every worker in a Driver (§4.D, §5).
//
// A generator declares exactly one of ComputeGlobal or ComputeLocal as
// meaningful for its output kind; the other always returns the zero value.
// This mirrors the source's any-map bundle while giving each generator a
// concrete return shape per the "any-map descriptor bundle" design note.
type Generator interface {
	// Name returns the registry name this generator was constructed under.
	Name() string
	// Kind reports whether this generator produces a GlobalBundle or a LocalBundle.
	Kind() GeneratorKind
	// ComputeGlobal computes a global descriptor. Only valid when Kind() == GlobalKind.
	ComputeGlobal(img *Image) (GlobalBundle, error)
	// ComputeLocal computes a local descriptor. Only valid when Kind() == LocalKind.
	ComputeLocal(img *Image) (LocalBundle, error)
}

// GeneratorKind distinguishes global (one vector per image) from local
// (one vector per keypoint) descriptor generators.
type GeneratorKind int

const (
	GlobalKind GeneratorKind = iota
	LocalKind
)

// Sampler produces keypoint locations, in pixel coordinates, for a local
// descriptor generator to extract features at (§4.C.3 "Samplers").
type Sampler interface {
	Name() string
	Sample(width, height int) [][2]float32
}

// TFFunc computes a term-frequency weight for posting (t, d) at list
// position l within a document, consulting the index it is called against
// (the index being finalized) for raw frequency and document statistics.
type TFFunc func(idx *InvertedIndex, term, doc, listPos int) float64

// IDFFunc computes an inverse-document-frequency weight for term t,
// consulting a (possibly different) statistics-source index (§4.G finalize).
type IDFFunc func(stats *InvertedIndex, term int) float64
