package imago

func init() {
	generators.Register("tinyimage", func(cfg Config) (Generator, error) {
		return newTinyImageGenerator(cfg), nil
	})
}

// tinyImageGenerator resizes the image to a small thumbnail and flattens it
// into a global feature vector (§4.C.1, grounded on tinyimage.cpp).
type tinyImageGenerator struct {
	width, height int
	colorspace    Colorspace
}

func newTinyImageGenerator(cfg Config) *tinyImageGenerator {
	return &tinyImageGenerator{
		width:      cfg.Int("width", 16),
		height:     cfg.Int("height", 16),
		colorspace: Colorspace(cfg.String("colorspace", string(ColorLab))),
	}
}

func (g *tinyImageGenerator) Name() string        { return "tinyimage" }
func (g *tinyImageGenerator) Kind() GeneratorKind  { return GlobalKind }
func (g *tinyImageGenerator) ComputeLocal(*Image) (LocalBundle, error) { return LocalBundle{}, nil }

func (g *tinyImageGenerator) ComputeGlobal(img *Image) (GlobalBundle, error) {
	gray := NewGrayscale(img.Width, img.Height)
	// Resize each channel independently via area averaging, then recombine,
	// rather than converting to gray first (this generator keeps color).
	b := channelGrayscale(img, 0)
	g2 := channelGrayscale(img, 1)
	r := channelGrayscale(img, 2)
	_ = gray

	bS := ResizeAreaAverage(b, g.width, g.height)
	gS := ResizeAreaAverage(g2, g.width, g.height)
	rS := ResizeAreaAverage(r, g.width, g.height)

	n := g.width * g.height
	var features []float32
	switch g.colorspace {
	case ColorGrey:
		features = make([]float32, n)
		for i := 0; i < n; i++ {
			rf, gf, bf := rS.Pix[i]/255, gS.Pix[i]/255, bS.Pix[i]/255
			features[i] = 0.299*rf + 0.587*gf + 0.114*bf
		}
	case ColorLab:
		features = make([]float32, n*3)
		for i := 0; i < n; i++ {
			rf, gf, bf := rS.Pix[i]/255, gS.Pix[i]/255, bS.Pix[i]/255
			l, a, bb := rgbToLab(rf, gf, bf)
			features[i*3] = l
			features[i*3+1] = a
			features[i*3+2] = bb
		}
	default: // "rgb"
		features = make([]float32, n*3)
		for i := 0; i < n; i++ {
			features[i*3] = rS.Pix[i] / 255
			features[i*3+1] = gS.Pix[i] / 255
			features[i*3+2] = bS.Pix[i] / 255
		}
	}
	return GlobalBundle{Features: features}, nil
}

// channelGrayscale extracts one BGR channel (0=B, 1=G, 2=R) as a Grayscale
// buffer scaled to [0,255], so the shared ResizeAreaAverage helper applies.
func channelGrayscale(img *Image, channel int) *Grayscale {
	out := NewGrayscale(img.Width, img.Height)
	for i := 0; i < img.Width*img.Height; i++ {
		out.Pix[i] = float32(img.Pix[i*3+channel])
	}
	return out
}
