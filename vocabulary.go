package imago

import (
	"io"
	"math/rand"
)

// Vocabulary learning (§4.E): k-means over a bag of D-dimensional float
// vectors under squared-Euclidean distance, grounded on clustering.go's
// kmeansInternal but adapted to the spec's random (not uniform-spacing)
// initialization and its fractional-change convergence criterion rather
// than a boolean "did anything change" flag.

// VocabularyParams configures the k-means learner.
type VocabularyParams struct {
	K int // number of centroids; must be >= 1

	// MaxIter bounds the iteration count (default 20 if <= 0).
	MaxIter int

	// MinFracChange stops iteration once the fraction of samples that
	// changed cluster assignment in the last pass falls below this
	// threshold (default 0.01 if <= 0).
	MinFracChange float64

	// Seed selects the initial K distinct centroid samples deterministically.
	Seed int64
}

const (
	defaultMaxIter       = 20
	defaultMinFracChange = 0.01
)

func (p VocabularyParams) withDefaults() VocabularyParams {
	if p.MaxIter <= 0 {
		p.MaxIter = defaultMaxIter
	}
	if p.MinFracChange <= 0 {
		p.MinFracChange = defaultMinFracChange
	}
	return p
}

// LearnVocabulary clusters samples into params.K centroids (§4.E
// "Initialization", "Iteration"). Returns the learned centroids; the
// per-sample cluster assignment is not returned since no caller needs it
// (the quantizer re-assigns independently at query/histogram time).
func LearnVocabulary(samples [][]float32, params VocabularyParams) ([][]float32, error) {
	if len(samples) == 0 {
		return nil, nil
	}
	params = params.withDefaults()
	k := params.K
	if k <= 0 {
		k = 1
	}
	if k > len(samples) {
		k = len(samples)
	}
	dim := len(samples[0])

	rng := rand.New(rand.NewSource(params.Seed))
	centroids := initCentroids(samples, k, dim, rng)
	assignments := make([]int, len(samples))
	for i := range assignments {
		assignments[i] = -1
	}

	for iter := 0; iter < params.MaxIter; iter++ {
		changed := 0
		for i, s := range samples {
			best := nearestCentroid(s, centroids)
			if assignments[i] != best {
				changed++
				assignments[i] = best
			}
		}
		if float64(changed)/float64(len(samples)) < params.MinFracChange {
			break
		}
		recomputeCentroids(centroids, samples, assignments, dim)
	}

	return centroids, nil
}

// initCentroids picks k distinct sample indices uniformly at random as the
// initial centroids (§4.E "Initialization").
func initCentroids(samples [][]float32, k, dim int, rng *rand.Rand) [][]float32 {
	perm := rng.Perm(len(samples))
	centroids := make([][]float32, k)
	for i := 0; i < k; i++ {
		centroids[i] = make([]float32, dim)
		copy(centroids[i], samples[perm[i]])
	}
	return centroids
}

func nearestCentroid(x []float32, centroids [][]float32) int {
	best := 0
	bestDist := squaredEuclidean(x, centroids[0])
	for c := 1; c < len(centroids); c++ {
		d := squaredEuclidean(x, centroids[c])
		if d < bestDist {
			bestDist = d
			best = c
		}
	}
	return best
}

func squaredEuclidean(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

// recomputeCentroids sets each centroid to the mean of its assigned
// members; an empty cluster retains its previous centroid (§4.E
// "Iteration").
func recomputeCentroids(centroids [][]float32, samples [][]float32, assignments []int, dim int) {
	sums := make([][]float32, len(centroids))
	counts := make([]int, len(centroids))
	for i := range sums {
		sums[i] = make([]float32, dim)
	}
	for i, c := range assignments {
		addInPlace(sums[c], samples[i])
		counts[c]++
	}
	for c := range centroids {
		if counts[c] > 0 {
			scaleInPlace(sums[c], 1/float32(counts[c]))
			centroids[c] = sums[c]
		}
	}
}

// SampleLocalFeatures draws s samples without replacement from a local
// feature stream, given its matching numfeatures stream (§4.E "Sampling"):
// enumerate (featureIndex, localIndex) pairs across the whole stream,
// shuffle, truncate to s, then group by featureIndex so each image record
// is decoded at most once regardless of how many of its local features
// were chosen.
func SampleLocalFeatures(features *Reader[[][]float32], numFeatures *Reader[int32], s int, seed int64) ([][]float32, error) {
	type pair struct{ featureIndex, localIndex int }

	var pairs []pair
	n := numFeatures.Len()
	for i := 0; i < n; i++ {
		count, ok, err := numFeatures.Get(i)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		for j := 0; j < int(count); j++ {
			pairs = append(pairs, pair{i, j})
		}
	}

	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(pairs), func(i, j int) { pairs[i], pairs[j] = pairs[j], pairs[i] })
	if s < len(pairs) {
		pairs = pairs[:s]
	}

	byImage := make(map[int][]int)
	for _, p := range pairs {
		byImage[p.featureIndex] = append(byImage[p.featureIndex], p.localIndex)
	}

	samples := make([][]float32, 0, len(pairs))
	for imgIdx, localIdxs := range byImage {
		row, ok, err := features.Get(imgIdx)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		for _, li := range localIdxs {
			if li < len(row) {
				samples = append(samples, row[li])
			}
		}
	}
	return samples, nil
}

// SaveVocabulary persists centroids as a sequence-of-float-vector property
// stream (§6 "Vocabulary file").
func SaveVocabulary(w io.Writer, centroids [][]float32) error {
	sw := NewWriter[[]float32](w, "sequence<float32>", encodeFloatVector)
	for _, c := range centroids {
		if err := sw.Push(c); err != nil {
			return err
		}
	}
	return sw.Close(encodingF32)
}

// LoadVocabulary reads back a vocabulary written by SaveVocabulary.
func LoadVocabulary(ra io.ReaderAt, size int64) ([][]float32, error) {
	sr, err := OpenReader[[]float32](ra, size, "sequence<float32>", decodeFloatVector)
	if err != nil {
		return nil, err
	}
	centroids := make([][]float32, 0, sr.Len())
	for i := 0; i < sr.Len(); i++ {
		v, ok, err := sr.Get(i)
		if err != nil {
			return nil, err
		}
		if ok {
			centroids = append(centroids, v)
		}
	}
	return centroids, nil
}
