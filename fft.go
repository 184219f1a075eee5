package imago

import "math/cmplx"

// A minimal 2-D DFT over complex128, implemented with Bluestein's algorithm
// per dimension so non-power-of-two sizes (the GIST generator pads to
// W+P x H+P, not necessarily a power of two) still transform exactly. This
// is the one numeric-imaging primitive the spec explicitly calls "external
// collaborator" territory (§1, "DFT primitives from the numeric-imaging
// library"); no third-party FFT package appears anywhere in the example
// pack, so it is implemented directly against the standard library's
// math/cmplx rather than reaching for an unverified dependency (see
// DESIGN.md).

// dft2D computes the 2-D discrete Fourier transform of a row-major width x
// height complex grid, in place semantics via a returned new slice.
func dft2D(data []complex128, width, height int, inverse bool) []complex128 {
	out := make([]complex128, len(data))
	copy(out, data)

	row := make([]complex128, width)
	for y := 0; y < height; y++ {
		copy(row, out[y*width:(y+1)*width])
		transformed := dft1D(row, inverse)
		copy(out[y*width:(y+1)*width], transformed)
	}

	col := make([]complex128, height)
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			col[y] = out[y*width+x]
		}
		transformed := dft1D(col, inverse)
		for y := 0; y < height; y++ {
			out[y*width+x] = transformed[y]
		}
	}

	if inverse {
		n := complex(float64(width*height), 0)
		for i := range out {
			out[i] /= n
		}
	}
	return out
}

// dft1D computes the 1-D DFT (or inverse, unnormalized) of x via Bluestein's
// chirp-z transform, which works for any length including non-power-of-two.
func dft1D(x []complex128, inverse bool) []complex128 {
	n := len(x)
	if n == 0 {
		return nil
	}
	if n == 1 {
		return []complex128{x[0]}
	}

	sign := -1.0
	if inverse {
		sign = 1.0
	}

	// Bluestein: x[k] = sum_j x[j] * w^(j^2/2) * w^(jk) can be written as a
	// convolution. w_n = exp(sign * i * pi / n) for the j^2/2 chirp.
	m := 1
	for m < 2*n+1 {
		m *= 2
	}

	a := make([]complex128, m)
	b := make([]complex128, m)
	chirp := make([]complex128, n)
	for j := 0; j < n; j++ {
		angle := sign * pi * float64(j*j) / float64(n)
		chirp[j] = cmplx.Exp(complex(0, angle))
		a[j] = x[j] * chirp[j]
	}
	b[0] = cmplx.Conj(chirp[0])
	for j := 1; j < n; j++ {
		b[j] = cmplx.Conj(chirp[j])
		b[m-j] = cmplx.Conj(chirp[j])
	}

	fa := radix2FFT(a, false)
	fb := radix2FFT(b, false)
	for i := range fa {
		fa[i] *= fb[i]
	}
	conv := radix2FFT(fa, true)

	out := make([]complex128, n)
	for k := 0; k < n; k++ {
		out[k] = conv[k] * chirp[k]
	}
	return out
}

const pi = 3.14159265358979323846

// radix2FFT computes the FFT of x (length must be a power of two) via the
// standard iterative Cooley-Tukey algorithm.
func radix2FFT(x []complex128, inverse bool) []complex128 {
	n := len(x)
	out := make([]complex128, n)
	copy(out, x)

	// bit-reversal permutation
	for i, j := 1, 0; i < n; i++ {
		bit := n >> 1
		for ; j&bit != 0; bit >>= 1 {
			j ^= bit
		}
		j ^= bit
		if i < j {
			out[i], out[j] = out[j], out[i]
		}
	}

	sign := -1.0
	if inverse {
		sign = 1.0
	}
	for size := 2; size <= n; size <<= 1 {
		half := size / 2
		angleStep := sign * 2 * pi / float64(size)
		for start := 0; start < n; start += size {
			for k := 0; k < half; k++ {
				w := cmplx.Exp(complex(0, angleStep*float64(k)))
				u := out[start+k]
				v := out[start+k+half] * w
				out[start+k] = u + v
				out[start+k+half] = u - v
			}
		}
	}

	if inverse {
		for i := range out {
			out[i] /= complex(float64(n), 0)
		}
	}
	return out
}

// fftshift2D swaps quadrants so the DC component moves from index (0,0) to
// the image center. The GIST filters do not go through it: they are built
// directly with DC at index (0,0) (wrapIndex in gist_filters.go) and
// multiplied against the unshifted image spectrum (§4.C.2 step 6).
func fftshift2D(data []float64, width, height int) []float64 {
	out := make([]float64, len(data))
	hw, hh := width/2, height/2
	for y := 0; y < height; y++ {
		sy := (y + hh) % height
		for x := 0; x < width; x++ {
			sx := (x + hw) % width
			out[sy*width+sx] = data[y*width+x]
		}
	}
	return out
}
