package imago

import (
	"fmt"

	"github.com/x448/float16"
)

// elementEncoding names the on-disk width a property store uses for the
// float32 components of feature/position elements (§10.3, §10.4). This is
// an at-rest compaction choice, orthogonal to the vocabulary quantizer of
// §4.F: a stream can be written "compact" and every reader still decodes
// ordinary []float32 in memory.
type elementEncoding string

const (
	encodingF32 elementEncoding = "f32"
	encodingF16 elementEncoding = "f16"
)

// floatCodec converts between in-memory float32 slices and their on-disk
// byte encoding. fullPrecisionCodec is the default; halfPrecisionCodec
// trades accuracy for half the bytes on large local-feature streams.
type floatCodec interface {
	encoding() elementEncoding
	width() int // bytes per element on disk
	encode(v []float32) []byte
	decode(b []byte) []float32
}

func codecFor(enc elementEncoding) (floatCodec, error) {
	switch enc {
	case encodingF32, "":
		return fullPrecisionCodec{}, nil
	case encodingF16:
		return halfPrecisionCodec{}, nil
	default:
		return nil, fmt.Errorf("imago: unknown element encoding %q", enc)
	}
}

// fullPrecisionCodec stores each component as a raw little-endian float32
// (4 bytes), matching the property store's general "arithmetic scalars are
// raw little-endian bytes" rule (§4.A) with no loss.
type fullPrecisionCodec struct{}

func (fullPrecisionCodec) encoding() elementEncoding { return encodingF32 }
func (fullPrecisionCodec) width() int                { return 4 }

func (fullPrecisionCodec) encode(v []float32) []byte {
	out := make([]byte, len(v)*4)
	for i, x := range v {
		putFloat32(out[i*4:], x)
	}
	return out
}

func (fullPrecisionCodec) decode(b []byte) []float32 {
	out := make([]float32, len(b)/4)
	for i := range out {
		out[i] = getFloat32(b[i*4:])
	}
	return out
}

// halfPrecisionCodec stores each component as an IEEE-754 half (2 bytes),
// via github.com/x448/float16. Intended for local-feature streams, which
// for a large corpus can run into hundreds of millions of elements; halving
// their footprint matters more than the precision loss (§10.3).
type halfPrecisionCodec struct{}

func (halfPrecisionCodec) encoding() elementEncoding { return encodingF16 }
func (halfPrecisionCodec) width() int                { return 2 }

func (halfPrecisionCodec) encode(v []float32) []byte {
	out := make([]byte, len(v)*2)
	for i, x := range v {
		bits := float16.Fromfloat32(x).Bits()
		out[i*2] = byte(bits)
		out[i*2+1] = byte(bits >> 8)
	}
	return out
}

func (halfPrecisionCodec) decode(b []byte) []float32 {
	out := make([]float32, len(b)/2)
	for i := range out {
		bits := uint16(b[i*2]) | uint16(b[i*2+1])<<8
		out[i] = float16.Frombits(bits).Float32()
	}
	return out
}
