package imago

import (
	"math"
	"testing"
)

func sampleVocab() [][]float32 {
	return [][]float32{
		{0, 0},
		{10, 0},
		{0, 10},
	}
}

func TestHardQuantizerAssignsNearestCentroid(t *testing.T) {
	q := NewHardQuantizer(sampleVocab())
	if q.K() != 3 {
		t.Fatalf("K() = %d, want 3", q.K())
	}

	got := q.Quantize([]float32{9, 1})
	want := []float32{0, 1, 0}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Quantize = %v, want %v", got, want)
			break
		}
	}
}

func TestHardQuantizerTieBreakIsLowestIndex(t *testing.T) {
	vocab := [][]float32{
		{0, 0},
		{10, 0}, // equidistant from (5,0) as vocab[0]
	}
	q := NewHardQuantizer(vocab)
	got := q.Quantize([]float32{5, 0})
	if got[0] != 1 || got[1] != 0 {
		t.Errorf("tie broken toward %v, want one-hot on index 0", got)
	}
}

func TestHardQuantizerEmptyVocab(t *testing.T) {
	q := NewHardQuantizer(nil)
	got := q.Quantize([]float32{1, 2})
	if len(got) != 0 {
		t.Errorf("Quantize with empty vocab = %v, want empty", got)
	}
}

func TestNewFuzzyQuantizerRejectsNonPositiveSigma(t *testing.T) {
	for _, sigma := range []float64{0, -1} {
		if _, err := NewFuzzyQuantizer(sampleVocab(), sigma); err == nil {
			t.Errorf("sigma=%v: expected error", sigma)
		}
	}
}

func TestFuzzyQuantizerSumsToOne(t *testing.T) {
	q, err := NewFuzzyQuantizer(sampleVocab(), 5.0)
	if err != nil {
		t.Fatalf("NewFuzzyQuantizer: %v", err)
	}

	got := q.Quantize([]float32{3, 3})
	var sum float32
	for _, v := range got {
		if v < 0 {
			t.Errorf("negative weight %v", v)
		}
		sum += v
	}
	if math.Abs(float64(sum-1)) > 1e-5 {
		t.Errorf("weights sum to %v, want ~1", sum)
	}
}

func TestFuzzyQuantizerCloserCentroidGetsMoreWeight(t *testing.T) {
	q, err := NewFuzzyQuantizer(sampleVocab(), 5.0)
	if err != nil {
		t.Fatalf("NewFuzzyQuantizer: %v", err)
	}
	got := q.Quantize([]float32{1, 0}) // close to vocab[0], far from vocab[2]
	if got[0] <= got[2] {
		t.Errorf("expected weight[0] > weight[2], got %v", got)
	}
}

func TestQuantizeManyPreservesOrder(t *testing.T) {
	q := NewHardQuantizer(sampleVocab())
	samples := make([][]float32, 100)
	for i := range samples {
		switch i % 3 {
		case 0:
			samples[i] = []float32{1, 0}
		case 1:
			samples[i] = []float32{11, 1}
		case 2:
			samples[i] = []float32{1, 11}
		}
	}

	got := QuantizeMany(q, samples)
	if len(got) != len(samples) {
		t.Fatalf("len(got) = %d, want %d", len(got), len(samples))
	}
	for i, s := range samples {
		want := q.Quantize(s)
		for c := range want {
			if got[i][c] != want[c] {
				t.Errorf("sample %d: got %v, want %v", i, got[i], want)
				break
			}
		}
	}
}

func TestQuantizeManyEmpty(t *testing.T) {
	q := NewHardQuantizer(sampleVocab())
	got := QuantizeMany(q, nil)
	if len(got) != 0 {
		t.Errorf("got %v, want empty", got)
	}
}

func TestBuildHistvwFlatNoPyramid(t *testing.T) {
	quantized := [][]float32{
		{1, 0, 0},
		{0, 1, 0},
		{1, 0, 0},
	}
	hist := BuildHistvw(quantized, 3, 1, false, nil)
	want := []float32{2, 1, 0}
	for i := range want {
		if hist[i] != want[i] {
			t.Errorf("hist = %v, want %v", hist, want)
			break
		}
	}
}

func TestBuildHistvwNormalized(t *testing.T) {
	quantized := [][]float32{
		{1, 0},
		{1, 0},
		{0, 1},
		{0, 1},
	}
	hist := BuildHistvw(quantized, 2, 1, true, nil)
	want := []float32{0.5, 0.5}
	for i := range want {
		if math.Abs(float64(hist[i]-want[i])) > 1e-6 {
			t.Errorf("hist = %v, want %v", hist, want)
			break
		}
	}
}

func TestBuildHistvwSpatialPyramid(t *testing.T) {
	k, r := 2, 2
	quantized := [][]float32{
		{1, 0}, // top-left cell
		{0, 1}, // bottom-right cell
	}
	positions := [][2]float32{
		{0.1, 0.1},
		{0.9, 0.9},
	}
	hist := BuildHistvw(quantized, k, r, false, positions)
	if len(hist) != k*r*r {
		t.Fatalf("len(hist) = %d, want %d", len(hist), k*r*r)
	}
	// cell (0,0) -> idx 0 -> slice [0:2]; cell (1,1) -> idx 3 -> slice [6:8]
	if hist[0] != 1 || hist[1] != 0 {
		t.Errorf("top-left cell = %v, want [1 0]", hist[0:2])
	}
	if hist[6] != 0 || hist[7] != 1 {
		t.Errorf("bottom-right cell = %v, want [0 1]", hist[6:8])
	}
}

func TestBuildHistvwPositionExactlyOneClampsToLastCell(t *testing.T) {
	quantized := [][]float32{{1}}
	positions := [][2]float32{{1.0, 1.0}}
	hist := BuildHistvw(quantized, 1, 2, false, positions)
	// cell (1,1) -> idx 3 -> slice [3:4]; must not panic or land in cell 2 (out of range)
	if hist[3] != 1 {
		t.Errorf("hist = %v, want weight in last cell", hist)
	}
}

func TestClampCell(t *testing.T) {
	tests := []struct {
		c, r, want int
	}{
		{-1, 4, 0},
		{0, 4, 0},
		{3, 4, 3},
		{4, 4, 3},
		{100, 4, 3},
	}
	for _, tt := range tests {
		if got := clampCell(tt.c, tt.r); got != tt.want {
			t.Errorf("clampCell(%d, %d) = %d, want %d", tt.c, tt.r, got, tt.want)
		}
	}
}
