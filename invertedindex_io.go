package imago

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/RoaringBitmap/roaring"
)

// Inverted-index file format (§4.G "Serialization", §6 "Inverted-index
// file"): a flat sequence of fields in the fixed order V, N, avglen,
// avgulen, F_t, U, f_t, postings, weights, len[], ulen[]. Unlike the
// property store (§4.A) this is not a random-access, offset-indexed
// stream — the whole index is read back in one pass, matching the
// teacher's WriteTo/ReadFrom byte-counting style (flat_index.go) that the
// property store itself was generalized from.

func putFloat64(b []byte, v float64) { binary.LittleEndian.PutUint64(b, math.Float64bits(v)) }
func getFloat64(b []byte) float64    { return math.Float64frombits(binary.LittleEndian.Uint64(b)) }

// Save writes the index to w. The index must be finalized; Save returns
// ErrNotFinalized otherwise (§4.G "finalized must be true on save").
func (idx *InvertedIndex) Save(w io.Writer) error {
	if !idx.finalized {
		return ErrNotFinalized
	}

	if err := writeInt64(w, int64(idx.v)); err != nil {
		return err
	}
	if err := writeInt64(w, int64(idx.n)); err != nil {
		return err
	}
	if err := writeFloat64(w, idx.avglen); err != nil {
		return err
	}
	if err := writeFloat64(w, idx.avgulen); err != nil {
		return err
	}
	for _, f := range idx.Ft {
		if err := writeFloat64(w, f); err != nil {
			return err
		}
	}
	if _, err := idx.u.WriteTo(w); err != nil {
		return fmt.Errorf("imago: writing term universe: %w", err)
	}
	for _, f := range idx.ft {
		if err := writeInt64(w, int64(f)); err != nil {
			return err
		}
	}
	for t := 0; t < idx.v; t++ {
		plist := idx.postings[t]
		if err := writeInt64(w, int64(len(plist))); err != nil {
			return err
		}
		for _, p := range plist {
			if err := writeInt64(w, int64(p.doc)); err != nil {
				return err
			}
			if err := writeFloat64(w, p.raw); err != nil {
				return err
			}
		}
	}
	for t := 0; t < idx.v; t++ {
		for _, wgt := range idx.weights[t] {
			if err := writeFloat64(w, wgt); err != nil {
				return err
			}
		}
	}
	for _, l := range idx.length {
		if err := writeInt64(w, int64(l)); err != nil {
			return err
		}
	}
	for _, l := range idx.ulength {
		if err := writeInt64(w, int64(l)); err != nil {
			return err
		}
	}
	// tfName/idfName are a trailing extension beyond the core §4.G field
	// order: Query (§4.H) needs to know which tf/idf pair to re-finalize a
	// reloaded index's one-document query mini-index with, and the spec's
	// serialization list has no field for it (see DESIGN.md).
	if _, err := w.Write(encodeString(idx.tfName)); err != nil {
		return err
	}
	if _, err := w.Write(encodeString(idx.idfName)); err != nil {
		return err
	}
	return nil
}

// LoadInvertedIndex reads back an index previously written by Save. The
// returned index is finalized (weights are read back as-is, not
// recomputed).
func LoadInvertedIndex(r io.Reader) (*InvertedIndex, error) {
	v, err := readInt64(r)
	if err != nil {
		return nil, err
	}
	n, err := readInt64(r)
	if err != nil {
		return nil, err
	}
	avglen, err := readFloat64(r)
	if err != nil {
		return nil, err
	}
	avgulen, err := readFloat64(r)
	if err != nil {
		return nil, err
	}

	idx := NewInvertedIndex(int(v))
	idx.n = int(n)
	idx.avglen = avglen
	idx.avgulen = avgulen

	for t := range idx.Ft {
		f, err := readFloat64(r)
		if err != nil {
			return nil, err
		}
		idx.Ft[t] = f
	}

	idx.u = roaring.New()
	if _, err := idx.u.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("imago: reading term universe: %w", err)
	}

	for t := range idx.ft {
		f, err := readInt64(r)
		if err != nil {
			return nil, err
		}
		idx.ft[t] = int(f)
	}

	for t := 0; t < int(v); t++ {
		count, err := readInt64(r)
		if err != nil {
			return nil, err
		}
		plist := make([]posting, count)
		for i := range plist {
			doc, err := readInt64(r)
			if err != nil {
				return nil, err
			}
			raw, err := readFloat64(r)
			if err != nil {
				return nil, err
			}
			plist[i] = posting{doc: int(doc), raw: raw}
		}
		idx.postings[t] = plist
	}

	for t := 0; t < int(v); t++ {
		w := make([]float64, len(idx.postings[t]))
		for i := range w {
			val, err := readFloat64(r)
			if err != nil {
				return nil, err
			}
			w[i] = val
		}
		idx.weights[t] = w
	}

	idx.length = make([]int, n)
	for i := range idx.length {
		l, err := readInt64(r)
		if err != nil {
			return nil, err
		}
		idx.length[i] = int(l)
	}
	idx.ulength = make([]int, n)
	for i := range idx.ulength {
		l, err := readInt64(r)
		if err != nil {
			return nil, err
		}
		idx.ulength[i] = int(l)
	}

	tfName, err := decodeString(r)
	if err != nil {
		return nil, err
	}
	idfName, err := decodeString(r)
	if err != nil {
		return nil, err
	}
	idx.tfName, idx.idfName = tfName, idfName

	idx.finalized = true
	return idx, nil
}

func writeInt64(w io.Writer, v int64) error {
	var buf [8]byte
	putInt64(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

func readInt64(r io.Reader) (int64, error) {
	buf, err := readFull(r, 8)
	if err != nil {
		return 0, err
	}
	return getInt64(buf), nil
}

func writeFloat64(w io.Writer, v float64) error {
	var buf [8]byte
	putFloat64(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

func readFloat64(r io.Reader) (float64, error) {
	buf, err := readFull(r, 8)
	if err != nil {
		return 0, err
	}
	return getFloat64(buf), nil
}
