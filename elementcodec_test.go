package imago

import (
	"math"
	"testing"
)

func TestFullPrecisionCodecRoundTrip(t *testing.T) {
	c := fullPrecisionCodec{}
	v := []float32{1.25, -3.5, 0, 1e6}
	got := c.decode(c.encode(v))
	if len(got) != len(v) {
		t.Fatalf("len(got) = %d, want %d", len(got), len(v))
	}
	for i := range v {
		if got[i] != v[i] {
			t.Errorf("got[%d] = %v, want %v", i, got[i], v[i])
		}
	}
	if c.width() != 4 {
		t.Errorf("width() = %d, want 4", c.width())
	}
	if c.encoding() != encodingF32 {
		t.Errorf("encoding() = %v, want %v", c.encoding(), encodingF32)
	}
}

func TestHalfPrecisionCodecRoundTripApprox(t *testing.T) {
	c := halfPrecisionCodec{}
	v := []float32{1.25, -3.5, 0, 100}
	got := c.decode(c.encode(v))
	if len(got) != len(v) {
		t.Fatalf("len(got) = %d, want %d", len(got), len(v))
	}
	for i := range v {
		if math.Abs(float64(got[i]-v[i])) > 0.05 {
			t.Errorf("got[%d] = %v, want approximately %v", i, got[i], v[i])
		}
	}
	if c.width() != 2 {
		t.Errorf("width() = %d, want 2", c.width())
	}
	if c.encoding() != encodingF16 {
		t.Errorf("encoding() = %v, want %v", c.encoding(), encodingF16)
	}
}

func TestCodecForKnownEncodings(t *testing.T) {
	if c, err := codecFor(encodingF32); err != nil || c.width() != 4 {
		t.Errorf("codecFor(f32) = %v, %v, want width 4", c, err)
	}
	if c, err := codecFor(""); err != nil || c.width() != 4 {
		t.Errorf("codecFor(\"\") = %v, %v, want width 4 (defaults to f32)", c, err)
	}
	if c, err := codecFor(encodingF16); err != nil || c.width() != 2 {
		t.Errorf("codecFor(f16) = %v, %v, want width 2", c, err)
	}
}

func TestCodecForUnknownEncoding(t *testing.T) {
	if _, err := codecFor("bogus"); err == nil {
		t.Error("expected an error for an unknown encoding")
	}
}
