package imago

import "math"

// Concrete tf/idf plug-ins (§4.G, §9 "Pluggable tf/idf", §10.5). "constant"
// is required to always resolve; "video_google" and "bm25" are the two
// additional names the spec allows by example.

const (
	bm25K1 = 1.2
	bm25B  = 0.75
)

func init() {
	tfFuncs.Register("constant", func(Config) (TFFunc, error) {
		return constantTF, nil
	})
	tfFuncs.Register("video_google", func(Config) (TFFunc, error) {
		return videoGoogleTF, nil
	})
	tfFuncs.Register("bm25", func(Config) (TFFunc, error) {
		return bm25TF, nil
	})

	idfFuncs.Register("constant", func(Config) (IDFFunc, error) {
		return constantIDF, nil
	})
	idfFuncs.Register("video_google", func(Config) (IDFFunc, error) {
		return videoGoogleIDF, nil
	})
	idfFuncs.Register("bm25", func(Config) (IDFFunc, error) {
		return bm25IDF, nil
	})
}

// constantTF/constantIDF always return 1, the required no-op weighting:
// every posting gets weight 1 before L2 normalization, so raw frequencies
// do not enter the weights (§4.G).
func constantTF(*InvertedIndex, int, int, int) float64 { return 1 }
func constantIDF(*InvertedIndex, int) float64           { return 1 }

// videoGoogleTF is the raw term count, the "video Google" (Sivic & Zisserman)
// bag-of-visual-words tf convention: term frequency within the document,
// unscaled.
func videoGoogleTF(idx *InvertedIndex, t, doc, l int) float64 {
	_, raw := idx.PostingRaw(t, l)
	return raw
}

// videoGoogleIDF is the classic inverse-document-frequency log(N/f_t).
func videoGoogleIDF(stats *InvertedIndex, t int) float64 {
	ft := stats.DocFreq(t)
	if ft == 0 {
		return 0
	}
	return math.Log(float64(stats.N()) / float64(ft))
}

// bm25TF is the Okapi BM25 term-frequency saturation curve, with avglen
// taken from the index tf is evaluated against (so a query's single-document
// index saturates against its own trivial average, matching the inverted
// index's own avglen when tf is evaluated there) (§10.5, grounded on the
// teacher's BM25SearchIndex K1/B parameters, bm25_index.go).
func bm25TF(idx *InvertedIndex, t, doc, l int) float64 {
	_, raw := idx.PostingRaw(t, l)
	docLen := float64(idx.DocLen(doc))
	avglen := idx.AvgLen()
	if avglen == 0 {
		avglen = docLen
	}
	return (raw * (bm25K1 + 1)) / (raw + bm25K1*(1-bm25B+bm25B*(docLen/avglen)))
}

// bm25IDF is the Okapi BM25 idf term: log((N - f_t + 0.5)/(f_t + 0.5) + 1).
func bm25IDF(stats *InvertedIndex, t int) float64 {
	n := float64(stats.N())
	ft := float64(stats.DocFreq(t))
	return math.Log((n-ft+0.5)/(ft+0.5) + 1)
}
