package imago

import (
	"math"
	"math/rand"
)

func init() {
	samplers.Register("grid", func(cfg Config) (Sampler, error) {
		return &gridSampler{numSamples: cfg.Int("num_samples", 625)}, nil
	})
	samplers.Register("random_area", func(cfg Config) (Sampler, error) {
		return &randomAreaSampler{
			numSamples: cfg.Int("num_samples", 500),
			seed:       int64(cfg.Int("seed", 0)),
		}, nil
	})
}

// gridSampler places ceil(sqrt(N))^2 points on a uniform interior grid,
// skipping a one-step border (§4.C.3 "Samplers", grounded on
// image_sampler.cpp grid_sampler::sample).
type gridSampler struct {
	numSamples int
}

func (s *gridSampler) Name() string { return "grid" }

func (s *gridSampler) Sample(width, height int) [][2]float32 {
	n1d := int(math.Ceil(math.Sqrt(float64(s.numSamples))))
	stepX := float64(width) / float64(n1d+1)
	stepY := float64(height) / float64(n1d+1)

	points := make([][2]float32, 0, n1d*n1d)
	for y := 1; y <= n1d; y++ {
		for x := 1; x <= n1d; x++ {
			points = append(points, [2]float32{
				float32(float64(x) * stepX),
				float32(float64(y) * stepY),
			})
		}
	}
	return points
}

// randomAreaSampler draws N i.i.d. uniform points over the image rectangle,
// from an explicit seed rather than wall-clock time (§10.7, correcting
// image_sampler.cpp random_area_sampler::sample, whose boost::mt19937 is
// seeded with std::time(0) and is therefore non-deterministic under
// parallel execution).
type randomAreaSampler struct {
	numSamples int
	seed       int64
}

func (s *randomAreaSampler) Name() string { return "random_area" }

func (s *randomAreaSampler) Sample(width, height int) [][2]float32 {
	rng := rand.New(rand.NewSource(s.seed))
	points := make([][2]float32, s.numSamples)
	for i := range points {
		points[i] = [2]float32{
			float32(rng.Intn(width)),
			float32(rng.Intn(height)),
		}
	}
	return points
}
