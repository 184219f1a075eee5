package imago

import (
	"container/heap"
	"testing"
)

func TestScoreHeapOrdersByScoreThenDocID(t *testing.T) {
	h := make(scoreHeap, 0)
	heap.Init(&h)
	entries := []QueryResult{
		{DocID: 3, Score: 0.5},
		{DocID: 1, Score: 0.9},
		{DocID: 2, Score: 0.5},
		{DocID: 0, Score: 0.1},
	}
	for _, e := range entries {
		heap.Push(&h, e)
	}

	var popped []QueryResult
	for h.Len() > 0 {
		popped = append(popped, heap.Pop(&h).(QueryResult))
	}

	// Min-heap pop order: lowest score first, ties broken by lowest docID.
	want := []QueryResult{
		{DocID: 0, Score: 0.1},
		{DocID: 2, Score: 0.5},
		{DocID: 3, Score: 0.5},
		{DocID: 1, Score: 0.9},
	}
	if len(popped) != len(want) {
		t.Fatalf("len(popped) = %d, want %d", len(popped), len(want))
	}
	for i := range want {
		if popped[i] != want[i] {
			t.Errorf("pop %d = %+v, want %+v", i, popped[i], want[i])
		}
	}
}

func TestQueryZeroOrNegativeRReturnsAllDocuments(t *testing.T) {
	idx := NewInvertedIndex(3)
	for _, h := range histograms() {
		_ = idx.AddHistogram(h)
	}
	if err := idx.Finalize(idx, "constant", "video_google"); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	got, err := idx.Query(histograms()[0], 0)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(got) != idx.N() {
		t.Fatalf("len(got) = %d, want %d (r<=0 clamps to all documents)", len(got), idx.N())
	}
}

func TestQueryRExceedingDocCountClampsToN(t *testing.T) {
	idx := NewInvertedIndex(3)
	for _, h := range histograms() {
		_ = idx.AddHistogram(h)
	}
	if err := idx.Finalize(idx, "constant", "video_google"); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	got, err := idx.Query(histograms()[0], 1000)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(got) != idx.N() {
		t.Errorf("len(got) = %d, want %d", len(got), idx.N())
	}
}

func TestQueryResultsSortedDescendingByScore(t *testing.T) {
	idx := NewInvertedIndex(3)
	for _, h := range histograms() {
		_ = idx.AddHistogram(h)
	}
	if err := idx.Finalize(idx, "bm25", "bm25"); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	got, err := idx.Query(histograms()[2], 4)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	for i := 1; i < len(got); i++ {
		if got[i].Score > got[i-1].Score {
			t.Errorf("results not sorted descending at %d: %v > %v", i, got[i].Score, got[i-1].Score)
		}
	}
}
