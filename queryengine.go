package imago

import "container/heap"

// QueryResult is one ranked document from a top-K query (§4.H).
type QueryResult struct {
	DocID int
	Score float64
}

// Query answers a top-R nearest-neighbor search against a finalized index
// (§4.H "Query engine"). The index the query is called against is the
// target collection; a one-document mini-index is built internally for the
// query histogram itself and finalized with the same tf/idf pair the
// collection index used, evaluating idf against the collection (so the
// query's term weights are directly comparable to the collection's).
func (idx *InvertedIndex) Query(hq []float32, r int) ([]QueryResult, error) {
	if !idx.finalized {
		return nil, ErrNotFinalized
	}

	queryIndex := NewInvertedIndex(idx.v)
	if err := queryIndex.AddHistogram(hq); err != nil {
		return nil, err
	}
	if err := queryIndex.Finalize(idx, idx.tfName, idx.idfName); err != nil {
		return nil, err
	}

	acc := make([]float64, idx.n)
	terms := queryIndex.Terms()
	it := terms.Iterator()
	for it.HasNext() {
		t := int(it.Next())
		wq := queryIndex.Weight(t, 0) // queryIndex has exactly one document
		for l := 0; l < idx.PostingCount(t); l++ {
			doc, _ := idx.PostingRaw(t, l)
			wd := idx.Weight(t, l)
			acc[doc] += wd * wq
		}
	}

	k := sanitizeK(r, idx.n)
	if k == 0 {
		return nil, nil
	}

	h := make(scoreHeap, 0, k)
	heap.Init(&h)
	for doc, score := range acc {
		heap.Push(&h, QueryResult{DocID: doc, Score: score})
		if h.Len() > k {
			heap.Pop(&h)
		}
	}

	results := make([]QueryResult, h.Len())
	for i := len(results) - 1; i >= 0; i-- {
		results[i] = heap.Pop(&h).(QueryResult)
	}
	return results, nil
}

// scoreHeap is a min-heap of QueryResult ordered by (score, docID), used to
// bound the query's top-K scan to a fixed-size heap rather than sorting
// every document's accumulated score (§4.H step 4).
type scoreHeap []QueryResult

func (h scoreHeap) Len() int { return len(h) }
func (h scoreHeap) Less(i, j int) bool {
	if h[i].Score != h[j].Score {
		return h[i].Score < h[j].Score
	}
	return h[i].DocID < h[j].DocID
}
func (h scoreHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *scoreHeap) Push(x any) { *h = append(*h, x.(QueryResult)) }

func (h *scoreHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
