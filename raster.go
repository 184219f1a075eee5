package imago

import "math"

// Grayscale is a single-channel float32 image, row-major, no padding between
// rows. Every descriptor generator works internally in this type; Image
// (BGR, byte-packed) is only the external input shape.
type Grayscale struct {
	Width, Height int
	Pix           []float32
}

// NewGrayscale allocates a zeroed grayscale buffer.
func NewGrayscale(width, height int) *Grayscale {
	return &Grayscale{Width: width, Height: height, Pix: make([]float32, width*height)}
}

// At returns the pixel at (x, y); out-of-bounds reads return 0, matching
// the "padded image returns 0 out of bounds" behavior SHOG relies on for
// its tile sampling (§4.C.3 step 8).
func (g *Grayscale) At(x, y int) float32 {
	if x < 0 || y < 0 || x >= g.Width || y >= g.Height {
		return 0
	}
	return g.Pix[y*g.Width+x]
}

// Set writes the pixel at (x, y).
func (g *Grayscale) Set(x, y int, v float32) {
	g.Pix[y*g.Width+x] = v
}

// ToGray converts a BGR raster to grayscale using the standard luma weights
// (§4.C.2 step 1, §4.C.3 step 1). Output is scaled to [0,255].
func ToGray(img *Image) *Grayscale {
	out := NewGrayscale(img.Width, img.Height)
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			b, g, r := img.At(x, y)
			v := 0.299*float32(r) + 0.587*float32(g) + 0.114*float32(b)
			out.Set(x, y, v)
		}
	}
	return out
}

// ResizeAreaAverage resizes src to exactly (width, height) using area
// averaging: output pixel ox is the unweighted mean of input columns
// [floor(ox*sx), floor((ox+1)*sx)) (at least one column), and likewise for
// rows, where sx is the input/output width ratio; an input pixel only
// partly covered at the far edge of a footprint is not included. Used wherever the spec calls for
// "area-averaging" resize (tiny-image, GIST pre-scale, SHOG pre-scale).
func ResizeAreaAverage(src *Grayscale, width, height int) *Grayscale {
	out := NewGrayscale(width, height)
	if src.Width == 0 || src.Height == 0 || width == 0 || height == 0 {
		return out
	}
	sx := float64(src.Width) / float64(width)
	sy := float64(src.Height) / float64(height)
	for oy := 0; oy < height; oy++ {
		y0 := int(float64(oy) * sy)
		y1 := int(float64(oy+1) * sy)
		if y1 <= y0 {
			y1 = y0 + 1
		}
		if y1 > src.Height {
			y1 = src.Height
		}
		for ox := 0; ox < width; ox++ {
			x0 := int(float64(ox) * sx)
			x1 := int(float64(ox+1) * sx)
			if x1 <= x0 {
				x1 = x0 + 1
			}
			if x1 > src.Width {
				x1 = src.Width
			}
			var sum float32
			var n int
			for y := y0; y < y1; y++ {
				for x := x0; x < x1; x++ {
					sum += src.At(x, y)
					n++
				}
			}
			if n > 0 {
				out.Set(ox, oy, sum/float32(n))
			}
		}
	}
	return out
}

// ScaleToLongestSide resizes src so its longer side equals target, preserving
// aspect ratio (§4.C.2 step 2, §4.C.3 step 1). Returns the resized image and
// the scaling factor applied (target / longestOriginalSide).
func ScaleToLongestSide(src *Grayscale, target int) (scaled *Grayscale, scalingFactor float64) {
	longest := src.Width
	if src.Height > longest {
		longest = src.Height
	}
	if longest == 0 {
		return NewGrayscale(0, 0), 0
	}
	scalingFactor = float64(target) / float64(longest)
	w := int(math.Round(float64(src.Width) * scalingFactor))
	h := int(math.Round(float64(src.Height) * scalingFactor))
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return ResizeAreaAverage(src, w, h), scalingFactor
}

// reflect101 maps an arbitrary integer coordinate into [0, n) by mirroring
// at the boundaries without repeating the edge pixel, the same "alternating
// tile" reflection a symmetric border pad produces. For n == 1 every
// coordinate maps to 0.
func reflect101(c, n int) int {
	if n <= 1 {
		return 0
	}
	period := 2 * (n - 1)
	c = c % period
	if c < 0 {
		c += period
	}
	if c >= n {
		c = period - c
	}
	return c
}

// SymmetricPad pads src to exactly (width, height), centering the original
// image and filling the border by mirror-reflecting the image in alternating
// tiles (§4.C.2 step 3). width/height must be >= src dimensions.
func SymmetricPad(src *Grayscale, width, height int) *Grayscale {
	out := NewGrayscale(width, height)
	padX := (width - src.Width) / 2
	padY := (height - src.Height) / 2
	for y := 0; y < height; y++ {
		sy := reflect101(y-padY, src.Height)
		for x := 0; x < width; x++ {
			sx := reflect101(x-padX, src.Width)
			out.Set(x, y, src.At(sx, sy))
		}
	}
	return out
}

// Colorspace names recognized by the tiny-image generator (§4.C.1).
type Colorspace string

const (
	ColorRGB  Colorspace = "rgb"
	ColorGrey Colorspace = "grey"
	ColorLab  Colorspace = "lab"
)

// rgbToLab converts one sRGB pixel (each channel in [0,1]) to CIE L*a*b*
// under the D65 reference white, the standard two-stage (linear-RGB -> XYZ
// -> Lab) pipeline. Lab is preferred for tiny-image because Euclidean
// distance there approximates perceived color difference (§4.C.1).
func rgbToLab(r, g, b float32) (l, a, bb float32) {
	lin := func(c float32) float64 {
		cf := float64(c)
		if cf <= 0.04045 {
			return cf / 12.92
		}
		return math.Pow((cf+0.055)/1.055, 2.4)
	}
	rl, gl, bl := lin(r), lin(g), lin(b)

	x := rl*0.4124564 + gl*0.3575761 + bl*0.1804375
	y := rl*0.2126729 + gl*0.7151522 + bl*0.0721750
	z := rl*0.0193339 + gl*0.1191920 + bl*0.9503041

	const xn, yn, zn = 0.95047, 1.0, 1.08883
	f := func(t float64) float64 {
		const delta = 6.0 / 29.0
		if t > delta*delta*delta {
			return math.Cbrt(t)
		}
		return t/(3*delta*delta) + 4.0/29.0
	}
	fx, fy, fz := f(x/xn), f(y/yn), f(z/zn)

	l = float32(116*fy - 16)
	a = float32(500 * (fx - fy))
	bb = float32(200 * (fy - fz))
	return l, a, bb
}
