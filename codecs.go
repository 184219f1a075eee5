package imago

import "io"

// Concrete element codecs for the property stream shapes named in §3/§4:
// flat float vectors (global descriptors, vocabulary centroids, histograms),
// sequences of float vectors (local descriptors), sequences of 2-D
// positions, plain strings (file list), and int32 scalars (numfeatures).
// Every encode function is self-terminating: a decode function given only a
// reader positioned at the element's start can consume exactly that
// element's bytes, which is what lets the property store avoid needing an
// end offset per element (§4.A).

// encodeFloatVector encodes a sequence of float32 as an 8-byte count
// followed by the packed little-endian block (§4.A "sequences of arithmetic
// scalars are written as one contiguous block").
func encodeFloatVector(v []float32) []byte {
	codec, _ := codecFor(encodingF32)
	return encodeFloatVectorWith(codec, v)
}

func encodeFloatVectorWith(codec floatCodec, v []float32) []byte {
	body := codec.encode(v)
	out := make([]byte, 8+len(body))
	putInt64(out, int64(len(v)))
	copy(out[8:], body)
	return out
}

func decodeFloatVector(r io.Reader) ([]float32, error) {
	return decodeFloatVectorWith(fullPrecisionCodec{}, r)
}

func decodeFloatVectorWith(codec floatCodec, r io.Reader) ([]float32, error) {
	head, err := readFull(r, 8)
	if err != nil {
		return nil, err
	}
	n := getInt64(head)
	body, err := readFull(r, int(n)*codec.width())
	if err != nil {
		return nil, err
	}
	return codec.decode(body), nil
}

// encodeFloatMatrix encodes a sequence of float vectors (local descriptor
// features for one image): an 8-byte count, then each row's own
// encodeFloatVector encoding concatenated.
func encodeFloatMatrix(v [][]float32) []byte {
	return encodeFloatMatrixWith(fullPrecisionCodec{}, v)
}

func encodeFloatMatrixWith(codec floatCodec, v [][]float32) []byte {
	var total int64 = 8
	rows := make([][]byte, len(v))
	for i, row := range v {
		rows[i] = encodeFloatVectorWith(codec, row)
		total += int64(len(rows[i]))
	}
	out := make([]byte, total)
	putInt64(out, int64(len(v)))
	pos := 8
	for _, r := range rows {
		copy(out[pos:], r)
		pos += len(r)
	}
	return out
}

func decodeFloatMatrix(r io.Reader) ([][]float32, error) {
	return decodeFloatMatrixWith(fullPrecisionCodec{}, r)
}

func decodeFloatMatrixWith(codec floatCodec, r io.Reader) ([][]float32, error) {
	head, err := readFull(r, 8)
	if err != nil {
		return nil, err
	}
	n := getInt64(head)
	out := make([][]float32, n)
	for i := range out {
		row, err := decodeFloatVectorWith(codec, r)
		if err != nil {
			return nil, err
		}
		out[i] = row
	}
	return out, nil
}

// encodePositions encodes a sequence of 2-D float pairs: an 8-byte count,
// then 8 bytes (two packed float32) per pair (§4.A "Pairs: concatenation of
// the two encodings").
func encodePositions(v [][2]float32) []byte {
	out := make([]byte, 8+len(v)*8)
	putInt64(out, int64(len(v)))
	for i, p := range v {
		off := 8 + i*8
		putFloat32(out[off:], p[0])
		putFloat32(out[off+4:], p[1])
	}
	return out
}

func decodePositions(r io.Reader) ([][2]float32, error) {
	head, err := readFull(r, 8)
	if err != nil {
		return nil, err
	}
	n := getInt64(head)
	body, err := readFull(r, int(n)*8)
	if err != nil {
		return nil, err
	}
	out := make([][2]float32, n)
	for i := range out {
		off := i * 8
		out[i][0] = getFloat32(body[off:])
		out[i][1] = getFloat32(body[off+4:])
	}
	return out, nil
}

// encodeString encodes a UTF-8 string as a 32-bit length prefix then bytes (§4.A).
func encodeString(s string) []byte {
	out := make([]byte, 4+len(s))
	putInt32(out, int32(len(s)))
	copy(out[4:], s)
	return out
}

func decodeString(r io.Reader) (string, error) {
	head, err := readFull(r, 4)
	if err != nil {
		return "", err
	}
	n := getInt32(head)
	body, err := readFull(r, int(n))
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// encodeStringSlice encodes a sequence of strings: an 8-byte count then each
// encodeString encoding concatenated. Used by the file list (§4.B).
func encodeStringSlice(v []string) []byte {
	encoded := make([][]byte, len(v))
	total := int64(8)
	for i, s := range v {
		encoded[i] = encodeString(s)
		total += int64(len(encoded[i]))
	}
	out := make([]byte, total)
	putInt64(out, int64(len(v)))
	pos := 8
	for _, e := range encoded {
		copy(out[pos:], e)
		pos += len(e)
	}
	return out
}

func decodeStringSlice(r io.Reader) ([]string, error) {
	head, err := readFull(r, 8)
	if err != nil {
		return nil, err
	}
	n := getInt64(head)
	out := make([]string, n)
	for i := range out {
		s, err := decodeString(r)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

// encodeInt32 / decodeInt32 encode a fixed-width 32-bit scalar (numfeatures).
func encodeInt32(v int32) []byte {
	out := make([]byte, 4)
	putInt32(out, v)
	return out
}

func decodeInt32(r io.Reader) (int32, error) {
	b, err := readFull(r, 4)
	if err != nil {
		return 0, err
	}
	return getInt32(b), nil
}
