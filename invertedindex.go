package imago

import (
	"fmt"
	"math"

	"github.com/RoaringBitmap/roaring"
)

// posting is one (document, raw frequency) pair in a term's posting list
// (§3 "Inverted index").
type posting struct {
	doc int
	raw float64
}

// InvertedIndex is a tf-idf-weighted posting-list index over histograms of
// visual words (§3 "Inverted index", §4.G). It is built by repeated
// AddHistogram calls, then Finalize'd before it can be queried or saved;
// further ingestion clears the finalized flag.
type InvertedIndex struct {
	v int // vocabulary size V
	n int // document count N

	ft []int     // f_t: documents containing term t, length V
	Ft []float64 // F_t: total occurrences of term t, length V
	u  *roaring.Bitmap

	postings [][]posting // per term, raw (doc, freq) pairs
	weights  [][]float64 // per term, parallel to postings; valid only when finalized

	length  []int // len[d]: total word count per document
	ulength []int // ulen[d]: unique word count per document

	avglen  float64
	avgulen float64

	finalized bool

	// tfName/idfName record the plug-ins the last successful Finalize used,
	// so Query (§4.H) can finalize its one-document mini-index with the
	// same pair without the caller having to repeat the choice.
	tfName, idfName string
}

// NewInvertedIndex allocates an empty index over a vocabulary of size v
// (§4.G "Construction").
func NewInvertedIndex(v int) *InvertedIndex {
	return &InvertedIndex{
		v:        v,
		ft:       make([]int, v),
		Ft:       make([]float64, v),
		u:        roaring.New(),
		postings: make([][]posting, v),
		weights:  make([][]float64, v),
	}
}

// V returns the vocabulary size.
func (idx *InvertedIndex) V() int { return idx.v }

// N returns the current document count.
func (idx *InvertedIndex) N() int { return idx.n }

// AvgLen returns the collection-average total word count per document,
// valid only after Finalize.
func (idx *InvertedIndex) AvgLen() float64 { return idx.avglen }

// AvgULen returns the collection-average unique word count per document,
// valid only after Finalize.
func (idx *InvertedIndex) AvgULen() float64 { return idx.avgulen }

// DocFreq returns f_t, the number of documents containing term t.
func (idx *InvertedIndex) DocFreq(t int) int { return idx.ft[t] }

// TotalFreq returns F_t, the total occurrences of term t across the
// collection.
func (idx *InvertedIndex) TotalFreq(t int) float64 { return idx.Ft[t] }

// DocLen returns len[d], the total word count of document d.
func (idx *InvertedIndex) DocLen(d int) int { return idx.length[d] }

// DocULen returns ulen[d], the unique word count of document d.
func (idx *InvertedIndex) DocULen(d int) int { return idx.ulength[d] }

// PostingRaw returns the raw frequency of the posting at list-position l
// within term t's posting list, and the document id it belongs to.
func (idx *InvertedIndex) PostingRaw(t, l int) (doc int, raw float64) {
	p := idx.postings[t][l]
	return p.doc, p.raw
}

// PostingCount returns the length of term t's posting list.
func (idx *InvertedIndex) PostingCount(t int) int { return len(idx.postings[t]) }

// Weight returns the finalized tf-idf/L2-normalized weight at list-position
// l within term t's weight list. Valid only after Finalize.
func (idx *InvertedIndex) Weight(t, l int) float64 { return idx.weights[t][l] }

// Terms returns the set of term ids with f_t > 0, i.e. U (§3).
func (idx *InvertedIndex) Terms() *roaring.Bitmap { return idx.u.Clone() }

// AddHistogram ingests one document's histogram of visual words (§4.G
// "add_histogram"). h must have length V. Ingestion clears the finalized
// flag; the index must be re-finalized before it can be queried again.
func (idx *InvertedIndex) AddHistogram(h []float32) error {
	if len(h) != idx.v {
		return fmt.Errorf("%w: histogram has %d terms, index has %d", ErrDimensionMismatch, len(h), idx.v)
	}
	idx.finalized = false

	doc := idx.n
	var total float64
	var unique int
	for t, val := range h {
		if val <= 0 {
			continue
		}
		v := float64(val)
		idx.postings[t] = append(idx.postings[t], posting{doc: doc, raw: v})
		idx.ft[t]++
		idx.Ft[t] += v
		idx.u.Add(uint32(t))
		unique++
		total += v
	}
	idx.length = append(idx.length, int(total))
	idx.ulength = append(idx.ulength, unique)
	idx.n++
	return nil
}

// Finalize computes tf-idf weights and per-document L2 normalization
// (§4.G "finalize"). tf is evaluated against self (the index being
// finalized, so raw frequencies and document lengths come from here); idf
// is evaluated against statsSource, which is normally self but for a query
// index is the collection index instead (§4.H step 1).
func (idx *InvertedIndex) Finalize(statsSource *InvertedIndex, tfName, idfName string) error {
	tf, err := NewTFFunc(tfName, NewConfig())
	if err != nil {
		return err
	}
	idfFn, err := NewIDFFunc(idfName, NewConfig())
	if err != nil {
		return err
	}

	idx.avglen = average(idx.length)
	idx.avgulen = average(idx.ulength)

	docNormSq := make([]float64, idx.n)
	for t := 0; t < idx.v; t++ {
		plist := idx.postings[t]
		if len(plist) == 0 {
			continue
		}
		w := make([]float64, len(plist))
		idfVal := idfFn(statsSource, t)
		for l, p := range plist {
			w[l] = tf(idx, t, p.doc, l) * idfVal
			docNormSq[p.doc] += w[l] * w[l]
		}
		idx.weights[t] = w
	}

	for t := 0; t < idx.v; t++ {
		for l, p := range idx.postings[t] {
			norm := math.Sqrt(docNormSq[p.doc])
			if norm > 0 {
				idx.weights[t][l] /= norm
			}
		}
	}

	idx.tfName, idx.idfName = tfName, idfName
	idx.finalized = true
	return nil
}

// Finalized reports whether the index's weights are current.
func (idx *InvertedIndex) Finalized() bool { return idx.finalized }

func average(xs []int) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum int
	for _, x := range xs {
		sum += x
	}
	return float64(sum) / float64(len(xs))
}
