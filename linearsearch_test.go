package imago

import (
	"io"
	"testing"
)

func TestLinearSearchOrdersAscendingByDistance(t *testing.T) {
	store := [][]float32{
		{0, 0}, // dist 5
		{3, 4}, // dist 0
		{1, 1}, // dist ~3.61
		{10, 10},
	}
	query := []float32{3, 4}
	metric, err := NewDistance(L2Norm)
	if err != nil {
		t.Fatalf("NewDistance: %v", err)
	}

	got := LinearSearch(query, store, metric, 3)
	if len(got) != 3 {
		t.Fatalf("len(got) = %d, want 3", len(got))
	}
	if got[0].Index != 1 {
		t.Errorf("got[0].Index = %d, want 1 (exact match)", got[0].Index)
	}
	for i := 1; i < len(got); i++ {
		if got[i-1].Distance > got[i].Distance {
			t.Errorf("results not ascending at %d: %v > %v", i, got[i-1].Distance, got[i].Distance)
		}
	}
}

func TestLinearSearchBoundsToR(t *testing.T) {
	store := make([][]float32, 20)
	for i := range store {
		store[i] = []float32{float32(i)}
	}
	metric, _ := NewDistance(L1Norm)

	got := LinearSearch([]float32{0}, store, metric, 5)
	if len(got) != 5 {
		t.Fatalf("len(got) = %d, want 5", len(got))
	}
	for i, r := range got {
		if r.Index != i {
			t.Errorf("got[%d].Index = %d, want %d", i, r.Index, i)
		}
	}
}

func TestLinearSearchRExceedsStoreSize(t *testing.T) {
	store := [][]float32{{1}, {2}, {3}}
	metric, _ := NewDistance(L1Norm)

	got := LinearSearch([]float32{0}, store, metric, 100)
	if len(got) != len(store) {
		t.Fatalf("len(got) = %d, want %d", len(got), len(store))
	}
}

func TestLinearSearchRZeroOrNegative(t *testing.T) {
	store := [][]float32{{1}, {2}, {3}}
	metric, _ := NewDistance(L1Norm)

	for _, r := range []int{0, -1} {
		got := LinearSearch([]float32{0}, store, metric, r)
		if len(got) != len(store) {
			t.Errorf("r=%d: len(got) = %d, want %d (sanitizeK defaults to max)", r, len(got), len(store))
		}
	}
}

func TestLinearSearchEmptyStore(t *testing.T) {
	metric, _ := NewDistance(L2Norm)
	got := LinearSearch([]float32{0, 0}, nil, metric, 5)
	if got != nil {
		t.Errorf("got = %v, want nil", got)
	}
}

func TestLinearSearchStreamMatchesInMemory(t *testing.T) {
	vectors := [][]float32{
		{1, 0}, {0, 1}, {5, 5}, {2, 2}, {0, 0},
	}
	w := newTestWriter()
	for _, v := range vectors {
		if err := w.writer.Push(v); err != nil {
			t.Fatalf("Push: %v", err)
		}
	}
	reader := w.close(t)

	metric, _ := NewDistance(L2Norm)
	query := []float32{1, 1}

	want := LinearSearch(query, vectors, metric, 3)
	got, err := LinearSearchStream(query, reader, metric, 3)
	if err != nil {
		t.Fatalf("LinearSearchStream: %v", err)
	}

	if len(got) != len(want) {
		t.Fatalf("len(got) = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Index != want[i].Index {
			t.Errorf("result %d: Index = %d, want %d", i, got[i].Index, want[i].Index)
		}
	}
}

// testFloatVectorStore is a tiny helper bundling a property-store Writer
// over []float32 with an in-memory buffer, so stream-based tests don't need
// a temp file.
type testFloatVectorStore struct {
	buf    *memBuffer
	writer *Writer[[]float32]
}

func newTestWriter() *testFloatVectorStore {
	buf := &memBuffer{}
	return &testFloatVectorStore{
		buf:    buf,
		writer: NewWriter[[]float32](buf, "sequence<float>", encodeFloatVector),
	}
}

func (s *testFloatVectorStore) close(t *testing.T) *Reader[[]float32] {
	t.Helper()
	if err := s.writer.Close(encodingF32); err != nil {
		t.Fatalf("Close: %v", err)
	}
	reader, err := OpenReader[[]float32](s.buf, int64(s.buf.Len()), "sequence<float>", decodeFloatVector)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	return reader
}

// memBuffer implements io.Writer and io.ReaderAt over a growable byte
// slice, standing in for a backing file in property-store tests.
type memBuffer struct {
	data   []byte
	readAt int
}

func (b *memBuffer) Write(p []byte) (int, error) {
	b.data = append(b.data, p...)
	return len(p), nil
}

func (b *memBuffer) Read(p []byte) (int, error) {
	if b.readAt >= len(b.data) {
		return 0, io.EOF
	}
	n := copy(p, b.data[b.readAt:])
	b.readAt += n
	return n, nil
}

func (b *memBuffer) ReadAt(p []byte, off int64) (int, error) {
	n := copy(p, b.data[off:])
	if n < len(p) {
		return n, io.ErrUnexpectedEOF
	}
	return n, nil
}

func (b *memBuffer) Len() int { return len(b.data) }
