package imago

import "math"

// Gabor filter-bank and Torralba pre-whitening construction for the GIST
// generator (§4.C.2 steps 4 and 6). Filters are built once at generator
// construction and are read-only thereafter, safe to share across driver
// workers (§5 "Shared state").

// wrapIndex returns the signed, DC-centered coordinate for index i out of n
// using the fftshift convention baked in at construction time: index 0 is
// DC, indices past n/2 represent negative frequencies/offsets (§4.C.2 step
// 6, "stored with origin at index (0,0)").
func wrapIndex(i, n int) int {
	if i <= (n-1)/2 {
		return i
	}
	return i - n
}

// generateGaussianFilter builds a torus-wrapped Gaussian exp(-r²/sigma²)
// (sigma in pixels is the 1/e radius, √2 times the standard deviation),
// centered at the origin under the
// fftshift convention — used both as the Torralba high/low-pass filter.
func generateGaussianFilter(width, height int, sigma float64) []float64 {
	out := make([]float64, width*height)
	s := 1.0 / (sigma * sigma)
	for y := 0; y < height; y++ {
		dy := float64(wrapIndex(y, height))
		for x := 0; x < width; x++ {
			dx := float64(wrapIndex(x, width))
			out[y*width+x] = math.Exp(-s * (dx*dx + dy*dy))
		}
	}
	return out
}

// torralbaPrefilter implements the local-contrast-normalizing high-pass
// whitening filter used as the optional GIST prefilter (§4.C.2 step 4,
// grounded on gist_helper.hpp torralba_prefilter).
type torralbaPrefilter struct {
	width, height int
	filter        []float64
}

// newTorralbaPrefilter builds the filter for an image of the given padded
// size, with cycles-per-image controlling the cutoff (default 4.0 scaled by
// width/realWidth, per the GIST generator's construction).
func newTorralbaPrefilter(width, height int, cycles float64) *torralbaPrefilter {
	sigma := cycles / math.Sqrt(math.Ln2)
	return &torralbaPrefilter{
		width:  width,
		height: height,
		filter: generateGaussianFilter(width, height, sigma),
	}
}

func (t *torralbaPrefilter) apply(img *Grayscale) *Grayscale {
	n := t.width * t.height
	logImg := make([]complex128, n)
	for i, v := range img.Pix {
		logImg[i] = complex(math.Log(1+float64(v)), 0)
	}

	spec := dft2D(logImg, t.width, t.height, false)
	highPassed := make([]complex128, n)
	for i := range spec {
		highPassed[i] = spec[i] * complex(1-t.filter[i], 0)
	}
	white := dft2D(highPassed, t.width, t.height, true)

	squared := make([]complex128, n)
	for i := range white {
		re := real(white[i])
		squared[i] = complex(re*re, 0)
	}
	squaredSpec := dft2D(squared, t.width, t.height, false)
	lowPassed := make([]complex128, n)
	for i := range squaredSpec {
		lowPassed[i] = squaredSpec[i] * complex(t.filter[i], 0)
	}
	contrast := dft2D(lowPassed, t.width, t.height, true)

	out := NewGrayscale(t.width, t.height)
	for i := range out.Pix {
		d := math.Sqrt(math.Abs(real(contrast[i]))) + 0.2
		wr := real(white[i])
		if wr < 0 {
			wr = 0
		}
		v := 255 * wr / d
		if v > 255 {
			v = 255
		}
		out.Pix[i] = float32(v)
	}
	return out
}

// gaborFilter is a precomputed real-valued frequency-domain transfer
// function with the DC bin forced to zero (§4.C.2 step 6).
type gaborFilter struct {
	width, height int
	values        []float64
}

// asComplex returns the filter as a complex spectrum suitable for
// multiplying against an image's DFT (imaginary part always zero).
func (f *gaborFilter) asComplex() []complex128 {
	out := make([]complex128, len(f.values))
	for i, v := range f.values {
		out[i] = complex(v, 0)
	}
	return out
}

// newCartesianGaborFilter builds the anisotropic-Gaussian ("Cartesian-
// Gaussian") construction of §4.C.2 step 6.
func newCartesianGaborFilter(width, height int, peakFreq, theta, deltaFreq, deltaAngle float64) *gaborFilter {
	c := math.Sqrt(math.Ln2 / math.Pi)
	ka := (deltaFreq - 1) / (deltaFreq + 1)
	kb := math.Tan(0.5 * deltaAngle)
	a := peakFreq * ka / c
	b := kb * peakFreq / c * math.Sqrt(1-ka*ka)
	u0 := peakFreq * math.Cos(theta)
	v0 := peakFreq * math.Sin(theta)
	cosT, sinT := math.Cos(theta), math.Sin(theta)

	values := make([]float64, width*height)
	for y := 0; y < height; y++ {
		v := float64(wrapIndex(y, height)) / float64(height)
		for x := 0; x < width; x++ {
			u := float64(wrapIndex(x, width)) / float64(width)
			du, dv := u-u0, v-v0
			ur := du*cosT + dv*sinT
			vr := -du*sinT + dv*cosT
			U, V := ur/a, vr/b
			values[y*width+x] = math.Exp(-math.Pi * (U*U + V*V))
		}
	}
	values[0] = 0
	return &gaborFilter{width: width, height: height, values: values}
}

// newPolarGaborFilter builds the separable polar (log-radial x angular)
// construction of §4.C.2 step 6.
func newPolarGaborFilter(width, height int, peakFreq, theta, deltaFreq, deltaAngle float64) *gaborFilter {
	kappa := (deltaFreq - 1) / ((deltaFreq + 1) * math.Sqrt(2*math.Ln2))
	sigmaTheta := 2 * math.Sqrt(math.Ln2) / deltaAngle

	values := make([]float64, width*height)
	for y := 0; y < height; y++ {
		v := float64(wrapIndex(y, height)) / float64(height)
		for x := 0; x < width; x++ {
			u := float64(wrapIndex(x, width)) / float64(width)
			omega := math.Hypot(u, v)
			th := math.Atan2(v, u)
			bigOmega := omega/peakFreq - 1
			bigTheta := wrapAngle(th - theta)
			values[y*width+x] = math.Exp(-1/(2*kappa*kappa)*bigOmega*bigOmega - sigmaTheta*sigmaTheta*bigTheta*bigTheta)
		}
	}
	values[0] = 0
	return &gaborFilter{width: width, height: height, values: values}
}

// wrapAngle wraps an angle in radians into (-pi, pi].
func wrapAngle(a float64) float64 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a <= -math.Pi {
		a += 2 * math.Pi
	}
	return a
}
