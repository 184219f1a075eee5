package imago

import (
	"fmt"
	"io"
)

// Local-descriptor feature streams (SHOG's per-image [][]float32, written
// against the "features" sink a Driver fills from LocalBundle.Features) are
// the property-store shape most likely to dominate disk footprint on a
// large corpus (§10.3 "compact on-disk encoding"): a corpus of a few
// million images at a few hundred keypoints each runs into hundreds of
// millions of float components. LocalFeatureWriter and
// OpenLocalFeatureReader wire the half-precision codec (elementcodec.go)
// into that one stream end to end, so a caller opts into compaction at
// Writer-construction time and the Reader picks up whichever encoding the
// stream was actually written with from its own __encoding metadata (§6),
// rather than every caller having to keep an encode func and a Close
// argument in sync by hand.

// LocalFeatureWriter appends per-image local-descriptor feature matrices to
// w, encoding each float32 component at half precision when compact is
// true.
type LocalFeatureWriter struct {
	w        *Writer[[][]float32]
	encoding elementEncoding
}

const localFeatureTypeName = "sequence<sequence<float>>"

// NewLocalFeatureWriter opens a local-feature stream over w. compact
// selects the half-precision (f16) element encoding favored for large
// corpora; false keeps full f32 precision.
func NewLocalFeatureWriter(w io.Writer, compact bool) *LocalFeatureWriter {
	if compact {
		encode := func(v [][]float32) []byte { return encodeFloatMatrixWith(halfPrecisionCodec{}, v) }
		return &LocalFeatureWriter{
			w:        NewWriter[[][]float32](w, localFeatureTypeName, encode),
			encoding: encodingF16,
		}
	}
	return &LocalFeatureWriter{
		w:        NewWriter[[][]float32](w, localFeatureTypeName, encodeFloatMatrix),
		encoding: encodingF32,
	}
}

// Push appends v at the next sequential image index.
func (lw *LocalFeatureWriter) Push(v [][]float32) error { return lw.w.Push(v) }

// Insert writes v at logical image index pos (§4.A "insert-at-position").
func (lw *LocalFeatureWriter) Insert(pos int, v [][]float32) error { return lw.w.Insert(pos, v) }

// Sink adapts the writer for use as a Driver property sink.
func (lw *LocalFeatureWriter) Sink() Sink { return NewSink(lw.w) }

// Close finalizes the stream, recording which element encoding was used so
// OpenLocalFeatureReader can select the matching codec without the caller
// telling it.
func (lw *LocalFeatureWriter) Close() error { return lw.w.Close(lw.encoding) }

// OpenLocalFeatureReader opens a local-feature stream previously written by
// LocalFeatureWriter, choosing the half- or full-precision codec from the
// stream's own __encoding metadata.
func OpenLocalFeatureReader(ra io.ReaderAt, size int64) (*Reader[[][]float32], error) {
	enc, err := peekEncoding(ra, size)
	if err != nil {
		return nil, err
	}
	codec, err := codecFor(enc)
	if err != nil {
		return nil, err
	}
	decode := func(r io.Reader) ([][]float32, error) { return decodeFloatMatrixWith(codec, r) }
	return OpenReader[[][]float32](ra, size, localFeatureTypeName, decode)
}

// peekEncoding reads just the __encoding metadata value so a caller can pick
// a decode function before OpenReader's own metadata pass runs.
func peekEncoding(ra io.ReaderAt, size int64) (elementEncoding, error) {
	if size < 8 {
		return "", fmt.Errorf("imago: property store too small: %w", ErrShortRead)
	}
	var tail [8]byte
	if _, err := ra.ReadAt(tail[:], size-8); err != nil {
		return "", fmt.Errorf("imago: reading map pointer: %w", err)
	}
	meta, _, err := readMetadataMap(ra, getInt64(tail[:]))
	if err != nil {
		return "", err
	}
	return elementEncoding(meta[metaEncoding]), nil
}
