package imago

import (
	"math"

	"github.com/RoaringBitmap/roaring"
)

func init() {
	generators.Register("shog", func(cfg Config) (Generator, error) {
		return newShogGenerator(cfg), nil
	})
}

// shogGenerator computes local gradient-orientation-histogram descriptors at
// sampled keypoints (§4.C.3, grounded on gist_local.cpp / hog_helper.hpp).
// Its keypoint sampler and smoothing choice are fixed at construction and
// read-only thereafter, so one instance is safely shared across Driver
// workers (§5).
type shogGenerator struct {
	maxSide      int
	orientations int
	density      float64
	tiles        int
	smooth       bool
	sampler      Sampler
}

func newShogGenerator(cfg Config) *shogGenerator {
	samplerName := cfg.String("sampler", "grid")
	sampler, err := NewSampler(samplerName, cfg)
	if err != nil {
		// Fall back to the default sampler rather than failing generator
		// construction over a misconfigured optional plug-in name.
		sampler, _ = NewSampler("grid", cfg)
	}
	return &shogGenerator{
		maxSide:      cfg.Int("max_side", 256),
		orientations: cfg.Int("orientation_bins", 4),
		density:      cfg.Float("feature_density", 0.125),
		tiles:        cfg.Int("tiles", 4),
		smooth:       cfg.Bool("smooth_histograms", true),
		sampler:      sampler,
	}
}

func (g *shogGenerator) Name() string        { return "shog" }
func (g *shogGenerator) Kind() GeneratorKind { return LocalKind }

func (g *shogGenerator) ComputeGlobal(*Image) (GlobalBundle, error) { return GlobalBundle{}, nil }

func (g *shogGenerator) ComputeLocal(img *Image) (LocalBundle, error) {
	gray := ToGray(img)
	scaled, _ := ScaleToLongestSide(gray, g.maxSide)
	w, h := scaled.Width, scaled.Height

	keypoints := g.sampler.Sample(w, h)

	blurred := GaussianBlur(scaled, 7, 2)
	gx, gy := Sobel(blurred)
	responses := g.orientationResponses(gx, gy, w, h)

	area := float64(w * h)
	tileSide := int(math.Ceil(math.Sqrt(area * g.density)))
	tileSide = roundUpToMultiple(tileSide, g.tiles)
	if tileSide < g.tiles {
		tileSide = g.tiles
	}
	tau := tileSide / g.tiles

	inverted := invertGrayscale(scaled)
	integral := BuildIntegralImage(inverted)

	empties := roaring.New()
	features := make([][]float32, len(keypoints))
	positions := make([][2]float32, len(keypoints))

	for idx, kp := range keypoints {
		kx, ky := int(kp[0]), int(kp[1])
		x0, y0 := kx-tileSide/2, ky-tileSide/2
		x1, y1 := x0+tileSide, y0+tileSide

		if integral.RectSum(x0, y0, x1, y1) == 0 {
			features[idx] = make([]float32, g.tiles*g.tiles*g.orientations)
			empties.Add(uint32(idx))
		} else {
			features[idx] = g.sampleTileFeatures(responses, x0, y0, tau)
		}
		positions[idx] = [2]float32{
			float32(kp[0]) / float32(w),
			float32(kp[1]) / float32(h),
		}
	}

	keptFeatures := make([][]float32, 0, len(keypoints))
	keptPositions := make([][2]float32, 0, len(keypoints))
	for idx := range keypoints {
		if empties.Contains(uint32(idx)) {
			continue
		}
		keptFeatures = append(keptFeatures, features[idx])
		keptPositions = append(keptPositions, positions[idx])
	}

	return LocalBundle{
		Features:    keptFeatures,
		Positions:   keptPositions,
		NumFeatures: int32(len(keptFeatures)),
	}, nil
}

// orientationResponses builds O per-pixel magnitude-response images by soft
// assignment of each pixel's gradient into its nearest orientation bins
// (§4.C.3 step 5), then smooths each response so nearby pixels contribute
// coherently to a tile sample (§4.C.3 step 6).
//
// No padded buffer is allocated: each response is smoothed at its own size
// (the blur treats pixels outside the image as 0), and sampling later reads
// it through Grayscale.At, which returns 0 outside [0,width)x[0,height).
// Inside the image this equals smoothing a zero-padded response; a tile
// centre that falls outside the image reads 0, not a smoothed border value.
func (g *shogGenerator) orientationResponses(gx, gy *Grayscale, w, h int) []*Grayscale {
	responses := make([]*Grayscale, g.orientations)
	for k := range responses {
		responses[k] = NewGrayscale(w, h)
	}

	o := float64(g.orientations)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dx, dy := float64(gx.At(x, y)), float64(gy.At(x, y))
			mag := math.Hypot(dx, dy)
			if mag == 0 {
				continue
			}
			orientation := math.Acos(dy / mag)
			if dx < 0 {
				orientation = -orientation
			}
			if orientation < 0 {
				orientation += math.Pi
			}

			v := orientation * o / math.Pi
			b := int(math.Floor(v))

			var wsum float64
			weights := [3]float64{}
			bins := [3]int{b - 1, b, b + 1}
			for i, cand := range bins {
				d := math.Abs(v - float64(cand))
				wt := 1 - d
				if wt < 0 {
					wt = 0
				}
				weights[i] = wt
				wsum += wt
			}
			if wsum == 0 {
				continue
			}
			for i, cand := range bins {
				bin := ((cand % g.orientations) + g.orientations) % g.orientations
				responses[bin].Set(x, y, responses[bin].At(x, y)+float32(mag*weights[i]/wsum))
			}
		}
	}

	kernel := 2*g.smoothTau(w, h) + 1
	sigma := float64(g.smoothTau(w, h)) / 3
	for k, r := range responses {
		if g.smooth {
			responses[k] = GaussianBlur(r, kernel, sigma)
		} else {
			responses[k] = BoxBlur(r, kernel)
		}
	}
	return responses
}

// smoothTau recomputes the tile side used to size the smoothing kernel;
// called before the tile grid itself exists, so it repeats the same
// area/density/tiles arithmetic as ComputeLocal.
func (g *shogGenerator) smoothTau(w, h int) int {
	area := float64(w * h)
	tileSide := int(math.Ceil(math.Sqrt(area * g.density)))
	tileSide = roundUpToMultiple(tileSide, g.tiles)
	if tileSide < g.tiles {
		tileSide = g.tiles
	}
	return tileSide / g.tiles
}

// sampleTileFeatures reads the T*T*O tile-center vector for a non-empty
// patch whose top-left corner is (x0, y0), in order (j, i, k) (§4.C.3 step 8).
func (g *shogGenerator) sampleTileFeatures(responses []*Grayscale, x0, y0, tau int) []float32 {
	feat := make([]float32, 0, g.tiles*g.tiles*g.orientations)
	for j := 0; j < g.tiles; j++ {
		cy := y0 + tau/2 + j*tau
		for i := 0; i < g.tiles; i++ {
			cx := x0 + tau/2 + i*tau
			for k := 0; k < g.orientations; k++ {
				feat = append(feat, responses[k].At(cx, cy))
			}
		}
	}
	normalizeShogFeature(feat)
	return feat
}

// normalizeShogFeature L2-normalizes v in place with a small epsilon so an
// all-zero (but not integral-flagged) patch does not divide by zero.
func normalizeShogFeature(v []float32) {
	const eps = 1e-6
	n := float64(norm(v))
	if n < eps {
		return
	}
	scaleInPlace(v, float32(1/n))
}

// invertGrayscale returns 255-src, used to build the integral image that
// detects empty (uniformly bright/background) patches (§4.C.3 step 7).
func invertGrayscale(src *Grayscale) *Grayscale {
	out := NewGrayscale(src.Width, src.Height)
	for i, v := range src.Pix {
		out.Pix[i] = 255 - v
	}
	return out
}

// roundUpToMultiple rounds n up to the nearest positive multiple of m.
func roundUpToMultiple(n, m int) int {
	if m <= 0 {
		return n
	}
	if r := n % m; r != 0 {
		n += m - r
	}
	return n
}
