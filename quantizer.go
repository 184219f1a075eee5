package imago

import (
	"math"
	"runtime"
	"sync"
)

// Quantizer assigns a D-dimensional feature vector a weight over a K-word
// vocabulary (§4.F). Hard assignment produces a one-hot indicator; fuzzy
// (Gaussian) assignment spreads weight across nearby centroids.
type Quantizer interface {
	// Quantize returns a length-K weight vector for x.
	Quantize(x []float32) []float32
	// K returns the vocabulary size this quantizer was built against.
	K() int
}

type hardQuantizer struct {
	vocab [][]float32
}

// NewHardQuantizer returns a quantizer that assigns x entirely to its
// nearest centroid under squared-Euclidean distance. Ties are broken by
// the lowest centroid index: the scan keeps the first minimum found and
// only replaces it on a strict improvement (§4.F "Hard", §10.7 resolution
// #4 — this corrects the C++ original's `<=` comparison, which keeps the
// *last* tied index instead).
func NewHardQuantizer(vocab [][]float32) Quantizer {
	return hardQuantizer{vocab: vocab}
}

func (q hardQuantizer) K() int { return len(q.vocab) }

func (q hardQuantizer) Quantize(x []float32) []float32 {
	out := make([]float32, len(q.vocab))
	if len(q.vocab) == 0 {
		return out
	}
	best := 0
	bestDist := squaredEuclidean(x, q.vocab[0])
	for c := 1; c < len(q.vocab); c++ {
		d := squaredEuclidean(x, q.vocab[c])
		if d < bestDist {
			bestDist = d
			best = c
		}
	}
	out[best] = 1
	return out
}

type fuzzyQuantizer struct {
	vocab [][]float32
	sigma float64
}

// NewFuzzyQuantizer returns a Gaussian-weighted soft quantizer: weight on
// centroid c is proportional to exp(-d(x,c)^2 / (2*sigma^2)), then
// L1-normalized so the weights sum to 1 (§4.F "Fuzzy Gaussian"). sigma must
// be strictly positive.
func NewFuzzyQuantizer(vocab [][]float32, sigma float64) (Quantizer, error) {
	if sigma <= 0 {
		return nil, ErrSigmaRequired
	}
	return fuzzyQuantizer{vocab: vocab, sigma: sigma}, nil
}

func (q fuzzyQuantizer) K() int { return len(q.vocab) }

func (q fuzzyQuantizer) Quantize(x []float32) []float32 {
	out := make([]float32, len(q.vocab))
	denom := 2 * q.sigma * q.sigma
	for c, centroid := range q.vocab {
		d := float64(squaredEuclidean(x, centroid))
		out[c] = float32(math.Exp(-d / denom))
	}
	l1normalizeInPlace(out)
	return out
}

// QuantizeMany applies q to every sample in parallel across
// runtime.NumCPU() workers, preserving the input order in the output
// (§4.F "quantize_many").
func QuantizeMany(q Quantizer, samples [][]float32) [][]float32 {
	out := make([][]float32, len(samples))
	if len(samples) == 0 {
		return out
	}
	workers := runtime.NumCPU()
	if workers > len(samples) {
		workers = len(samples)
	}
	if workers < 1 {
		workers = 1
	}

	var next claimCursor
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for {
				i := next.claim(len(samples))
				if i < 0 {
					return
				}
				out[i] = q.Quantize(samples[i])
			}
		}()
	}
	wg.Wait()
	return out
}

// claimCursor is a trivial shared claim-next-index cursor, the same
// mechanism the parallel descriptor driver uses (§4.D, §5 "index-cursor
// lock") scaled down to a single counter with no per-property ordering
// concern, since QuantizeMany writes directly into its preallocated output
// slice by index rather than through an ordered sink.
type claimCursor struct {
	mu  sync.Mutex
	pos int
}

func (c *claimCursor) claim(n int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pos >= n {
		return -1
	}
	i := c.pos
	c.pos++
	return i
}

// BuildHistvw assembles a histogram of visual words from a set of already
// quantized samples (§4.F "build_histvw"). Each quantized sample is a
// length-K weight vector; for R==1 all samples contribute to a single flat
// K-length histogram, ignoring positions. For R>1, each sample is binned
// into the R x R spatial-pyramid cell its normalized position falls in
// (§3 "Histogram of visual words") before being summed into that cell's
// K-length slice. If normalize is true and there is at least one sample,
// the whole histogram is divided by the sample count.
func BuildHistvw(quantized [][]float32, k, r int, normalize bool, positions [][2]float32) []float32 {
	hist := make([]float32, k*r*r)
	if r <= 1 {
		for _, q := range quantized {
			addInPlace(hist, q)
		}
	} else {
		for i, q := range quantized {
			x := clampCell(int(positions[i][0]*float32(r)), r)
			y := clampCell(int(positions[i][1]*float32(r)), r)
			idx := y*r + x
			addInPlace(hist[idx*k:(idx+1)*k], q)
		}
	}
	if normalize && len(quantized) > 0 {
		scaleInPlace(hist, 1/float32(len(quantized)))
	}
	return hist
}

// clampCell clamps a spatial-pyramid grid coordinate into [0, r-1], which
// handles a normalized position of exactly 1.0 falling one cell past the
// last valid index (§4.F "clamped to R-1").
func clampCell(c, r int) int {
	if c < 0 {
		return 0
	}
	if c >= r {
		return r - 1
	}
	return c
}
