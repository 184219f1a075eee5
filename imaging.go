package imago

import "math"

// gaussianKernel1D returns a normalized 1-D Gaussian kernel of the given odd
// size and standard deviation sigma, centered at size/2.
func gaussianKernel1D(size int, sigma float64) []float64 {
	k := make([]float64, size)
	c := float64(size-1) / 2
	var sum float64
	for i := range k {
		d := float64(i) - c
		v := math.Exp(-(d * d) / (2 * sigma * sigma))
		k[i] = v
		sum += v
	}
	for i := range k {
		k[i] /= sum
	}
	return k
}

// convolveSeparable applies a 1-D kernel along rows then columns (a
// separable 2-D Gaussian/box blur), with zero-padding at the borders.
func convolveSeparable(src *Grayscale, kernel []float64) *Grayscale {
	radius := len(kernel) / 2
	tmp := NewGrayscale(src.Width, src.Height)
	for y := 0; y < src.Height; y++ {
		for x := 0; x < src.Width; x++ {
			var sum float64
			for k, w := range kernel {
				sum += float64(src.At(x+k-radius, y)) * w
			}
			tmp.Set(x, y, float32(sum))
		}
	}
	out := NewGrayscale(src.Width, src.Height)
	for y := 0; y < src.Height; y++ {
		for x := 0; x < src.Width; x++ {
			var sum float64
			for k, w := range kernel {
				sum += float64(tmp.At(x, y+k-radius)) * w
			}
			out.Set(x, y, float32(sum))
		}
	}
	return out
}

// GaussianBlur blurs src with a size x size Gaussian kernel (size must be
// odd) of the given standard deviation.
func GaussianBlur(src *Grayscale, size int, sigma float64) *Grayscale {
	return convolveSeparable(src, gaussianKernel1D(size, sigma))
}

// BoxBlur blurs src with a size x size averaging kernel.
func BoxBlur(src *Grayscale, size int) *Grayscale {
	k := make([]float64, size)
	for i := range k {
		k[i] = 1.0 / float64(size)
	}
	return convolveSeparable(src, k)
}

// Sobel computes the horizontal and vertical gradient images of src using
// the standard 3x3 Sobel operator (§4.C.3 step 3).
func Sobel(src *Grayscale) (gx, gy *Grayscale) {
	gx, gy = NewGrayscale(src.Width, src.Height), NewGrayscale(src.Width, src.Height)
	kx := [3][3]float32{{-1, 0, 1}, {-2, 0, 2}, {-1, 0, 1}}
	ky := [3][3]float32{{-1, -2, -1}, {0, 0, 0}, {1, 2, 1}}
	for y := 0; y < src.Height; y++ {
		for x := 0; x < src.Width; x++ {
			var sx, sy float32
			for j := -1; j <= 1; j++ {
				for i := -1; i <= 1; i++ {
					v := src.At(x+i, y+j)
					sx += v * kx[j+1][i+1]
					sy += v * ky[j+1][i+1]
				}
			}
			gx.Set(x, y, sx)
			gy.Set(x, y, sy)
		}
	}
	return gx, gy
}

// IntegralImage computes the summed-area table of src: sat[y][x] is the sum
// of all pixels with row <= y and column <= x. It has one extra row and
// column of leading zeros so range sums need no boundary special-casing.
type IntegralImage struct {
	Width, Height int // dimensions of the underlying image (not the table)
	sat           []float64
	stride        int
}

// BuildIntegralImage computes the integral image of src.
func BuildIntegralImage(src *Grayscale) *IntegralImage {
	stride := src.Width + 1
	sat := make([]float64, stride*(src.Height+1))
	for y := 0; y < src.Height; y++ {
		for x := 0; x < src.Width; x++ {
			sat[(y+1)*stride+(x+1)] = float64(src.At(x, y)) +
				sat[y*stride+(x+1)] + sat[(y+1)*stride+x] - sat[y*stride+x]
		}
	}
	return &IntegralImage{Width: src.Width, Height: src.Height, sat: sat, stride: stride}
}

// RectSum returns the sum over the half-open rectangle [x0,x1) x [y0,y1),
// clipped to the image bounds. An empty or fully out-of-bounds rectangle
// sums to zero.
func (ii *IntegralImage) RectSum(x0, y0, x1, y1 int) float64 {
	if x0 < 0 {
		x0 = 0
	}
	if y0 < 0 {
		y0 = 0
	}
	if x1 > ii.Width {
		x1 = ii.Width
	}
	if y1 > ii.Height {
		y1 = ii.Height
	}
	if x1 <= x0 || y1 <= y0 {
		return 0
	}
	s := ii.stride
	return ii.sat[y1*s+x1] - ii.sat[y0*s+x1] - ii.sat[y1*s+x0] + ii.sat[y0*s+x0]
}
