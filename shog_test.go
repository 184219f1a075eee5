package imago

import "testing"

func smallShogGenerator() *shogGenerator {
	cfg := NewConfig().
		WithInt("max_side", 64).
		WithInt("orientation_bins", 4).
		WithFloat("feature_density", 0.25).
		WithInt("tiles", 2).
		WithInt("num_samples", 9).
		WithString("sampler", "grid")
	return newShogGenerator(cfg)
}

func gradientImage(w, h int) *Image {
	img := NewImage(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := byte((x * 255) / w)
			i := (y*w + x) * 3
			img.Pix[i], img.Pix[i+1], img.Pix[i+2] = v, v, v
		}
	}
	return img
}

func TestShogFeatureDimension(t *testing.T) {
	gen := smallShogGenerator()
	bundle, err := gen.ComputeLocal(gradientImage(64, 64))
	if err != nil {
		t.Fatalf("ComputeLocal: %v", err)
	}
	if bundle.NumFeatures == 0 {
		t.Fatal("expected at least one non-empty keypoint on a gradient image")
	}
	want := gen.tiles * gen.tiles * gen.orientations
	for i, f := range bundle.Features {
		if len(f) != want {
			t.Errorf("Features[%d] has length %d, want %d", i, len(f), want)
		}
	}
}

func TestShogFeaturesAreL2Normalized(t *testing.T) {
	gen := smallShogGenerator()
	bundle, err := gen.ComputeLocal(gradientImage(64, 64))
	if err != nil {
		t.Fatalf("ComputeLocal: %v", err)
	}
	for i, f := range bundle.Features {
		n := norm(f)
		if n < 0.99 || n > 1.01 {
			t.Errorf("Features[%d] has norm %v, want ~1", i, n)
		}
	}
}

func TestShogPositionsNormalizedToUnitSquare(t *testing.T) {
	gen := smallShogGenerator()
	bundle, err := gen.ComputeLocal(gradientImage(64, 64))
	if err != nil {
		t.Fatalf("ComputeLocal: %v", err)
	}
	for i, p := range bundle.Positions {
		if p[0] < 0 || p[0] > 1 || p[1] < 0 || p[1] > 1 {
			t.Errorf("Positions[%d] = %v, want both components in [0,1]", i, p)
		}
	}
}

func TestShogBlankImageProducesNoFeatures(t *testing.T) {
	gen := smallShogGenerator()
	blank := NewImage(64, 64)
	for i := range blank.Pix {
		blank.Pix[i] = 255
	}
	bundle, err := gen.ComputeLocal(blank)
	if err != nil {
		t.Fatalf("ComputeLocal: %v", err)
	}
	if bundle.NumFeatures != 0 {
		t.Errorf("NumFeatures = %d, want 0 for an all-white (empty) image", bundle.NumFeatures)
	}
	if len(bundle.Features) != 0 || len(bundle.Positions) != 0 {
		t.Errorf("expected empty feature/position slices, got %d/%d", len(bundle.Features), len(bundle.Positions))
	}
}

func TestShogNumFeaturesMatchesSliceLengths(t *testing.T) {
	gen := smallShogGenerator()
	bundle, err := gen.ComputeLocal(gradientImage(64, 64))
	if err != nil {
		t.Fatalf("ComputeLocal: %v", err)
	}
	if int(bundle.NumFeatures) != len(bundle.Features) || int(bundle.NumFeatures) != len(bundle.Positions) {
		t.Errorf("NumFeatures=%d, len(Features)=%d, len(Positions)=%d", bundle.NumFeatures, len(bundle.Features), len(bundle.Positions))
	}
}

func TestShogRegisteredByName(t *testing.T) {
	gen, err := NewGenerator("shog", NewConfig())
	if err != nil {
		t.Fatalf("NewGenerator: %v", err)
	}
	if gen.Kind() != LocalKind {
		t.Errorf("Kind() = %v, want LocalKind", gen.Kind())
	}
}

func TestShogComputeGlobalIsZeroValue(t *testing.T) {
	gen := smallShogGenerator()
	bundle, err := gen.ComputeGlobal(gradientImage(16, 16))
	if err != nil {
		t.Fatalf("ComputeGlobal: %v", err)
	}
	if bundle.Features != nil {
		t.Errorf("ComputeGlobal on a local generator should return the zero GlobalBundle, got %+v", bundle)
	}
}

func TestShogUnknownSamplerFallsBackToGrid(t *testing.T) {
	cfg := NewConfig().WithString("sampler", "does-not-exist")
	gen := newShogGenerator(cfg)
	if gen.sampler.Name() != "grid" {
		t.Errorf("sampler = %q, want fallback %q", gen.sampler.Name(), "grid")
	}
}
