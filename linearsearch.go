package imago

import (
	"container/heap"
	"sort"
)

// SearchResult is one ranked match from a linear search (§4.I).
type SearchResult struct {
	Index    int
	Distance float32
}

// LinearSearch brute-force scores query against every descriptor in store
// under metric, and returns the R closest, sorted ascending by distance
// (best match first) (§4.I "Linear search"). Bounded by a max-heap of size
// R so the whole result set is never sorted, only the R survivors.
func LinearSearch(query []float32, store [][]float32, metric Distance, r int) []SearchResult {
	k := sanitizeK(r, len(store))
	if k == 0 {
		return nil
	}

	h := make(distanceHeap, 0, k)
	heap.Init(&h)
	for i, x := range store {
		d := metric.Calculate(query, x)
		heap.Push(&h, SearchResult{Index: i, Distance: d})
		if h.Len() > k {
			heap.Pop(&h)
		}
	}

	results := []SearchResult(h)
	sort.Slice(results, func(i, j int) bool { return results[i].Distance < results[j].Distance })
	return results
}

// LinearSearchStream is LinearSearch over a property store reader of flat
// float vectors instead of an in-memory slice, for corpora too large to
// hold entirely in memory as []float32s (§4.I, §4.A).
func LinearSearchStream(query []float32, store *Reader[[]float32], metric Distance, r int) ([]SearchResult, error) {
	k := sanitizeK(r, store.Len())
	if k == 0 {
		return nil, nil
	}

	h := make(distanceHeap, 0, k)
	heap.Init(&h)
	for i := 0; i < store.Len(); i++ {
		x, ok, err := store.Get(i)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		d := metric.Calculate(query, x)
		heap.Push(&h, SearchResult{Index: i, Distance: d})
		if h.Len() > k {
			heap.Pop(&h)
		}
	}

	results := []SearchResult(h)
	sort.Slice(results, func(i, j int) bool { return results[i].Distance < results[j].Distance })
	return results, nil
}

// distanceHeap is a max-heap of SearchResult by distance, used to keep only
// the R smallest distances seen so far without sorting every candidate
// (§4.I "maintain a max-heap ... of bounded size R").
type distanceHeap []SearchResult

func (h distanceHeap) Len() int            { return len(h) }
func (h distanceHeap) Less(i, j int) bool  { return h[i].Distance > h[j].Distance }
func (h distanceHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *distanceHeap) Push(x any)         { *h = append(*h, x.(SearchResult)) }

func (h *distanceHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
