package imago

import "testing"

func TestPropertyStoreRoundTrip(t *testing.T) {
	xs := [][]float32{{1, 2, 3}, {4}, {}, {5, 6}}

	buf := &memBuffer{}
	w := NewWriter[[]float32](buf, "sequence<float>", encodeFloatVector)
	for _, x := range xs {
		if err := w.Push(x); err != nil {
			t.Fatalf("Push: %v", err)
		}
	}
	if err := w.Close(encodingF32); err != nil {
		t.Fatalf("Close: %v", err)
	}

	r, err := OpenReader[[]float32](buf, int64(buf.Len()), "sequence<float>", decodeFloatVector)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	if r.Len() != len(xs) {
		t.Fatalf("Len() = %d, want %d", r.Len(), len(xs))
	}
	for i, want := range xs {
		got, ok, err := r.Get(i)
		if err != nil {
			t.Fatalf("Get(%d): %v", i, err)
		}
		if !ok {
			t.Errorf("Get(%d) ok = false, want true", i)
		}
		if len(got) != len(want) {
			t.Fatalf("Get(%d) = %v, want %v", i, got, want)
		}
		for j := range want {
			if got[j] != want[j] {
				t.Errorf("Get(%d)[%d] = %v, want %v", i, j, got[j], want[j])
			}
		}
	}
}

func TestPropertyStoreSparseInsert(t *testing.T) {
	buf := &memBuffer{}
	w := NewWriter[[]float32](buf, "sequence<float>", encodeFloatVector)

	if err := w.Insert(3, []float32{30}); err != nil {
		t.Fatalf("Insert(3): %v", err)
	}
	if err := w.Insert(0, []float32{0}); err != nil {
		t.Fatalf("Insert(0): %v", err)
	}
	if err := w.Insert(5, []float32{50}); err != nil {
		t.Fatalf("Insert(5): %v", err)
	}
	if err := w.Close(encodingF32); err != nil {
		t.Fatalf("Close: %v", err)
	}

	r, err := OpenReader[[]float32](buf, int64(buf.Len()), "sequence<float>", decodeFloatVector)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	if r.Len() != 6 {
		t.Fatalf("Len() = %d, want 6", r.Len())
	}

	filled := map[int]float32{0: 0, 3: 30, 5: 50}
	for i := 0; i < 6; i++ {
		got, ok, err := r.Get(i)
		if err != nil {
			t.Fatalf("Get(%d): %v", i, err)
		}
		want, shouldBeFilled := filled[i]
		if shouldBeFilled {
			if !ok || len(got) != 1 || got[0] != want {
				t.Errorf("Get(%d) = %v, ok=%v, want [%v], ok=true", i, got, ok, want)
			}
		} else if ok {
			t.Errorf("Get(%d) ok = true, want false (empty slot)", i)
		}
	}
}

func TestPropertyStoreTypeMismatch(t *testing.T) {
	buf := &memBuffer{}
	w := NewWriter[[]float32](buf, "sequence<float>", encodeFloatVector)
	_ = w.Push([]float32{1})
	if err := w.Close(encodingF32); err != nil {
		t.Fatalf("Close: %v", err)
	}

	_, err := OpenReader[[]float32](buf, int64(buf.Len()), "wrong-type", decodeFloatVector)
	if err == nil {
		t.Fatal("expected a type-mismatch error, got nil")
	}
}

func TestPropertyStoreGetOutOfRangePanics(t *testing.T) {
	buf := &memBuffer{}
	w := NewWriter[[]float32](buf, "sequence<float>", encodeFloatVector)
	_ = w.Push([]float32{1})
	if err := w.Close(encodingF32); err != nil {
		t.Fatalf("Close: %v", err)
	}
	r, err := OpenReader[[]float32](buf, int64(buf.Len()), "sequence<float>", decodeFloatVector)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}

	defer func() {
		if recover() == nil {
			t.Error("expected a panic for an out-of-range Get")
		}
	}()
	r.Get(5)
}

func TestPropertyStoreMetadataKeys(t *testing.T) {
	buf := &memBuffer{}
	w := NewWriter[[]float32](buf, "sequence<float>", encodeFloatVector)
	_ = w.Push([]float32{1})
	if err := w.Close(encodingF32); err != nil {
		t.Fatalf("Close: %v", err)
	}
	r, err := OpenReader[[]float32](buf, int64(buf.Len()), "sequence<float>", decodeFloatVector)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	meta := r.Meta()
	for _, key := range []string{metaVersion, metaTypeInfo, metaFeatures, metaOffsets} {
		if _, ok := meta[key]; !ok {
			t.Errorf("metadata missing key %q", key)
		}
	}
}
