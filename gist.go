package imago

import "math"

func init() {
	generators.Register("gist", func(cfg Config) (Generator, error) {
		return newGistGenerator(cfg), nil
	})
}

// gistGenerator computes Gabor-energy ("GIST") global descriptors (§4.C.2,
// grounded on gist.cpp/gist_helper.hpp). The filter bank is built once at
// construction from the configuration and is read-only thereafter, so one
// generator instance is safely shared by every Driver worker (§5).
type gistGenerator struct {
	padding        int
	width, height  int
	tilesX, tilesY int
	frequencies    int
	orientations   int
	fmax           float64
	deltaFreqOct   float64
	deltaBandOct   float64
	alpha          float64
	polar          bool
	prefilter      string

	paddedW, paddedH int
	filters          []*gaborFilter // len == frequencies*orientations, row-major (i,k)
}

func newGistGenerator(cfg Config) *gistGenerator {
	g := &gistGenerator{
		padding:      cfg.Int("padding", 64),
		width:        cfg.Int("width", 256),
		height:       cfg.Int("height", 256),
		tilesX:       cfg.Int("tiles_x", 4),
		tilesY:       cfg.Int("tiles_y", 4),
		frequencies:  cfg.Int("frequencies", 4),
		orientations: cfg.Int("orientations", 6),
		fmax:         cfg.Float("fmax", 0.3),
		deltaFreqOct: cfg.Float("delta_freq_oct", 0.88752527),
		alpha:        cfg.Float("alpha", 1.0),
		polar:        cfg.Bool("polar", true),
		prefilter:    cfg.String("prefilter", "torralba"),
	}
	g.deltaBandOct = cfg.Float("delta_band_oct", g.deltaFreqOct)
	g.paddedW = g.width + g.padding
	g.paddedH = g.height + g.padding
	g.buildFilters()
	return g
}

// buildFilters constructs the F*O Gabor transfer functions at construction
// time (§4.C.2 step 6), indexed row-major by (i, k).
func (g *gistGenerator) buildFilters() {
	g.filters = make([]*gaborFilter, 0, g.frequencies*g.orientations)
	deltaFreq := math.Exp2(g.deltaBandOct)
	for i := 0; i < g.frequencies; i++ {
		peakFreq := g.fmax * math.Exp2(-float64(i)*g.deltaFreqOct)
		for k := 0; k < g.orientations; k++ {
			theta := float64(k) * math.Pi / float64(g.orientations)
			deltaAngle := g.alpha * math.Pi / float64(g.orientations)
			var f *gaborFilter
			if g.polar {
				f = newPolarGaborFilter(g.paddedW, g.paddedH, peakFreq, theta, deltaFreq, deltaAngle)
			} else {
				f = newCartesianGaborFilter(g.paddedW, g.paddedH, peakFreq, theta, deltaFreq, deltaAngle)
			}
			g.filters = append(g.filters, f)
		}
	}
}

func (g *gistGenerator) Name() string       { return "gist" }
func (g *gistGenerator) Kind() GeneratorKind { return GlobalKind }

func (g *gistGenerator) ComputeLocal(*Image) (LocalBundle, error) { return LocalBundle{}, nil }

func (g *gistGenerator) ComputeGlobal(img *Image) (GlobalBundle, error) {
	gray := ToGray(img)
	scaled, scalingFactor := ScaleToLongestSide(gray, g.width)
	padded := SymmetricPad(scaled, g.paddedW, g.paddedH)

	prefiltered := padded
	if g.prefilter == "torralba" {
		cycles := 4.0 * float64(g.paddedW) / float64(scaled.Width)
		prefiltered = newTorralbaPrefilter(g.paddedW, g.paddedH, cycles).apply(padded)
	}

	spatial := make([]complex128, g.paddedW*g.paddedH)
	for i, v := range prefiltered.Pix {
		spatial[i] = complex(float64(v), 0)
	}
	spectrum := dft2D(spatial, g.paddedW, g.paddedH, false)

	// Tile dimensions are derived from the ORIGINAL (pre-scale) image side
	// and the scaling factor, not from the scaled image's actual pixel
	// dimensions — a deliberate bug-for-bug match to the source's tile-size
	// computation (§10.7 resolved detail). The two differ whenever
	// ScaleToLongestSide's integer rounding doesn't land exactly on
	// scalingFactor*originalSide, which is the common case.
	originalW, originalH := float64(img.Width), float64(img.Height)
	tileW := int(scalingFactor * originalW / float64(g.tilesX))
	tileH := int(scalingFactor * originalH / float64(g.tilesY))
	if tileW < 1 {
		tileW = 1
	}
	if tileH < 1 {
		tileH = 1
	}

	features := make([]float32, 0, g.frequencies*g.orientations*g.tilesX*g.tilesY*2)
	n := g.paddedW * g.paddedH
	for _, filter := range g.filters {
		filtered := make([]complex128, n)
		fvals := filter.values
		for idx := range spectrum {
			filtered[idx] = spectrum[idx] * complex(fvals[idx], 0)
		}
		spatialResp := dft2D(filtered, g.paddedW, g.paddedH, true)

		magnitude := make([]float64, g.width*g.height)
		for y := 0; y < g.height; y++ {
			for x := 0; x < g.width; x++ {
				c := spatialResp[y*g.paddedW+x]
				magnitude[y*g.width+x] = math.Hypot(real(c), imag(c))
			}
		}

		for ty := 0; ty < g.tilesY; ty++ {
			y0 := ty * tileH
			y1 := y0 + tileH
			if y1 > g.height {
				y1 = g.height
			}
			for tx := 0; tx < g.tilesX; tx++ {
				x0 := tx * tileW
				x1 := x0 + tileW
				if x1 > g.width {
					x1 = g.width
				}
				mean, variance := tileMeanVariance(magnitude, g.width, x0, y0, x1, y1)
				features = append(features, float32(mean), float32(variance))
			}
		}
	}

	return GlobalBundle{Features: features}, nil
}

// tileMeanVariance computes the mean and population variance of mag over the
// half-open rectangle [x0,x1)x[y0,y1), where mag is a width-wide row-major
// buffer. An empty rectangle reports zero for both.
func tileMeanVariance(mag []float64, width, x0, y0, x1, y1 int) (mean, variance float64) {
	count := 0
	var sum, sumSq float64
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			v := mag[y*width+x]
			sum += v
			sumSq += v * v
			count++
		}
	}
	if count == 0 {
		return 0, 0
	}
	mean = sum / float64(count)
	variance = sumSq/float64(count) - mean*mean
	if variance < 0 {
		variance = 0
	}
	return mean, variance
}
