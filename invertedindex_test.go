package imago

import (
	"math"
	"testing"
)

func histograms() [][]float32 {
	return [][]float32{
		{1, 0, 0},
		{0, 2, 0},
		{1, 1, 0},
		{0, 0, 3},
	}
}

func TestAddHistogramDimensionMismatch(t *testing.T) {
	idx := NewInvertedIndex(3)
	if err := idx.AddHistogram([]float32{1, 2}); err == nil {
		t.Fatal("expected a dimension-mismatch error")
	}
}

func TestAddHistogramTracksDocStats(t *testing.T) {
	idx := NewInvertedIndex(3)
	for _, h := range histograms() {
		if err := idx.AddHistogram(h); err != nil {
			t.Fatalf("AddHistogram: %v", err)
		}
	}
	if idx.N() != 4 {
		t.Fatalf("N() = %d, want 4", idx.N())
	}
	if idx.DocFreq(0) != 2 { // docs 0 and 2 have term 0
		t.Errorf("DocFreq(0) = %d, want 2", idx.DocFreq(0))
	}
	if idx.DocLen(2) != 2 { // doc 2: {1,1,0} -> total 2
		t.Errorf("DocLen(2) = %d, want 2", idx.DocLen(2))
	}
	if idx.DocULen(2) != 2 {
		t.Errorf("DocULen(2) = %d, want 2", idx.DocULen(2))
	}
}

func TestFinalizeRequiredBeforeQuery(t *testing.T) {
	idx := NewInvertedIndex(3)
	for _, h := range histograms() {
		_ = idx.AddHistogram(h)
	}
	if _, err := idx.Query([]float32{1, 0, 0}, 1); err == nil {
		t.Fatal("expected ErrNotFinalized before Finalize is called")
	}
}

func TestFinalizeProducesUnitNormWeights(t *testing.T) {
	idx := NewInvertedIndex(3)
	for _, h := range histograms() {
		_ = idx.AddHistogram(h)
	}
	if err := idx.Finalize(idx, "bm25", "bm25"); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	docNormSq := make([]float64, idx.N())
	for t := 0; t < idx.V(); t++ {
		for l := 0; l < idx.PostingCount(t); l++ {
			doc, _ := idx.PostingRaw(t, l)
			w := idx.Weight(t, l)
			docNormSq[doc] += w * w
		}
	}
	for doc, normSq := range docNormSq {
		if normSq == 0 {
			continue
		}
		if math.Abs(math.Sqrt(normSq)-1) > 1e-5 {
			t.Errorf("doc %d weight-vector norm = %v, want 1", doc, math.Sqrt(normSq))
		}
	}
}

func TestReingestClearsFinalized(t *testing.T) {
	idx := NewInvertedIndex(3)
	_ = idx.AddHistogram(histograms()[0])
	if err := idx.Finalize(idx, "constant", "constant"); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if !idx.Finalized() {
		t.Fatal("expected Finalized() = true")
	}
	_ = idx.AddHistogram(histograms()[1])
	if idx.Finalized() {
		t.Error("Finalized() = true after re-ingestion, want false")
	}
}

func TestSelfQueryReturnsTopDocument(t *testing.T) {
	idx := NewInvertedIndex(3)
	hs := histograms()
	for _, h := range hs {
		_ = idx.AddHistogram(h)
	}
	if err := idx.Finalize(idx, "constant", "video_google"); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	for i, h := range hs {
		got, err := idx.Query(h, 1)
		if err != nil {
			t.Fatalf("Query: %v", err)
		}
		if len(got) != 1 {
			t.Fatalf("len(got) = %d, want 1", len(got))
		}
		if got[0].DocID != i {
			t.Errorf("query %d top result = doc %d, want %d", i, got[0].DocID, i)
		}
	}
}

func TestInvertedIndexSaveLoadRoundTrip(t *testing.T) {
	idx := NewInvertedIndex(3)
	for _, h := range histograms() {
		_ = idx.AddHistogram(h)
	}
	if err := idx.Finalize(idx, "bm25", "bm25"); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	buf := &memBuffer{}
	if err := idx.Save(buf); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := LoadInvertedIndex(buf)
	if err != nil {
		t.Fatalf("LoadInvertedIndex: %v", err)
	}

	want, err := idx.Query(histograms()[0], 4)
	if err != nil {
		t.Fatalf("Query (original): %v", err)
	}
	got, err := loaded.Query(histograms()[0], 4)
	if err != nil {
		t.Fatalf("Query (loaded): %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("len(got) = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].DocID != want[i].DocID {
			t.Errorf("result %d: DocID = %d, want %d", i, got[i].DocID, want[i].DocID)
		}
	}
}

func TestSaveRequiresFinalized(t *testing.T) {
	idx := NewInvertedIndex(3)
	_ = idx.AddHistogram(histograms()[0])
	buf := &memBuffer{}
	if err := idx.Save(buf); err == nil {
		t.Fatal("expected ErrNotFinalized from Save before Finalize")
	}
}
