package imago

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strconv"
)

// Property store binary format (§4.A, §6). A Writer appends length-prefixed
// elements of a single declared type T to an io.Writer, tracking each
// element's byte offset in an in-memory table; Close writes the offset
// table, a trailing metadata map, and an 8-byte absolute pointer to that map
// as the file's last bytes. A Reader opens the same layout for random
// access by logical index via io.ReaderAt, matching the teacher's
// WriteTo/ReadFrom byte-counting style (flat_index.go) generalized from a
// single fixed record shape to an arbitrary caller-supplied codec.

const propertyStoreVersion = 2

// Well-known metadata keys (§6).
const (
	metaVersion  = "__version"
	metaTypeInfo = "__typeinfo"
	metaFeatures = "__features"
	metaOffsets  = "__offsets"
	metaEncoding = "__encoding"
)

// --- shared little-endian scalar helpers -----------------------------------

func putInt64(b []byte, v int64)     { binary.LittleEndian.PutUint64(b, uint64(v)) }
func getInt64(b []byte) int64        { return int64(binary.LittleEndian.Uint64(b)) }
func putInt32(b []byte, v int32)     { binary.LittleEndian.PutUint32(b, uint32(v)) }
func getInt32(b []byte) int32        { return int32(binary.LittleEndian.Uint32(b)) }
func putFloat32(b []byte, v float32) { binary.LittleEndian.PutUint32(b, math.Float32bits(v)) }
func getFloat32(b []byte) float32    { return math.Float32frombits(binary.LittleEndian.Uint32(b)) }

func readFull(r io.Reader, n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrShortRead, err)
	}
	return buf, nil
}

// --- Writer ------------------------------------------------------------

// Writer is the append-only property-store sink for element type T.
type Writer[T any] struct {
	w        io.Writer
	encode   func(T) []byte
	typeName string
	offsets  []int64
	written  int64
	closed   bool
}

// NewWriter opens a writer over w, declaring typeName and an encode function
// that must produce a self-terminating byte encoding of one T (§4.A).
func NewWriter[T any](w io.Writer, typeName string, encode func(T) []byte) *Writer[T] {
	return &Writer[T]{w: w, encode: encode, typeName: typeName}
}

// Push appends v at the next sequential index.
func (sw *Writer[T]) Push(v T) error {
	return sw.writeAt(len(sw.offsets), v)
}

// Insert writes v at logical index pos, extending the offset table with -1
// (empty) fillers as needed (§4.A "insert-at-position").
func (sw *Writer[T]) Insert(pos int, v T) error {
	if pos < 0 {
		panic("imago: negative property store index")
	}
	return sw.writeAt(pos, v)
}

func (sw *Writer[T]) writeAt(pos int, v T) error {
	if sw.closed {
		panic("imago: write to closed property store writer")
	}
	for len(sw.offsets) <= pos {
		sw.offsets = append(sw.offsets, -1)
	}
	buf := sw.encode(v)
	if _, err := sw.w.Write(buf); err != nil {
		return fmt.Errorf("imago: property store write: %w", err)
	}
	sw.offsets[pos] = sw.written
	sw.written += int64(len(buf))
	return nil
}

// Close writes the trailing offset table and metadata map, then the final
// 8-byte absolute offset of the metadata map. encoding selects the on-disk
// float width (see elementcodec.go); pass encodingF32 for ordinary streams.
func (sw *Writer[T]) Close(encoding elementEncoding) error {
	if sw.closed {
		return nil
	}
	sw.closed = true

	featuresOffset := sw.written
	if err := sw.write8(0); err != nil { // features-offset placeholder, value 0
		return err
	}

	offsetsOffset := sw.written
	if err := sw.write8(int64(len(sw.offsets))); err != nil {
		return err
	}
	for _, off := range sw.offsets {
		if err := sw.write8(off); err != nil {
			return err
		}
	}

	meta := map[string]string{
		metaVersion:  strconv.Itoa(propertyStoreVersion),
		metaTypeInfo: sw.typeName,
		metaFeatures: strconv.FormatInt(featuresOffset, 10),
		metaOffsets:  strconv.FormatInt(offsetsOffset, 10),
	}
	if encoding != "" {
		meta[metaEncoding] = string(encoding)
	}

	mapOffset := sw.written
	if err := sw.write8(int64(len(meta))); err != nil {
		return err
	}
	for k, v := range meta {
		if err := sw.writeKV(k, v); err != nil {
			return err
		}
	}

	return sw.write8(mapOffset)
}

func (sw *Writer[T]) write8(v int64) error {
	var buf [8]byte
	putInt64(buf[:], v)
	if _, err := sw.w.Write(buf[:]); err != nil {
		return fmt.Errorf("imago: property store write: %w", err)
	}
	sw.written += 8
	return nil
}

func (sw *Writer[T]) writeKV(k, v string) error {
	var lenBuf [4]byte
	putInt32(lenBuf[:], int32(len(k)))
	if _, err := sw.w.Write(lenBuf[:]); err != nil {
		return err
	}
	if _, err := sw.w.Write([]byte(k)); err != nil {
		return err
	}
	putInt32(lenBuf[:], int32(len(v)))
	if _, err := sw.w.Write(lenBuf[:]); err != nil {
		return err
	}
	if _, err := sw.w.Write([]byte(v)); err != nil {
		return err
	}
	sw.written += int64(4 + len(k) + 4 + len(v))
	return nil
}

// --- Reader ------------------------------------------------------------

// Reader is the random-access property-store source for element type T.
type Reader[T any] struct {
	ra      io.ReaderAt
	decode  func(io.Reader) (T, error)
	offsets []int64
	meta    map[string]string
}

// OpenReader opens a reader over ra (size bytes total), validating the
// recorded type name and version, and loading the offset table.
func OpenReader[T any](ra io.ReaderAt, size int64, typeName string, decode func(io.Reader) (T, error)) (*Reader[T], error) {
	if size < 8 {
		return nil, fmt.Errorf("imago: property store too small: %w", ErrShortRead)
	}
	var tail [8]byte
	if _, err := ra.ReadAt(tail[:], size-8); err != nil {
		return nil, fmt.Errorf("imago: reading map pointer: %w", err)
	}
	mapOffset := getInt64(tail[:])

	meta, mapLen, err := readMetadataMap(ra, mapOffset)
	_ = mapLen
	if err != nil {
		return nil, err
	}

	if meta[metaTypeInfo] != typeName {
		return nil, fmt.Errorf("%w: stream has %q, want %q", ErrTypeMismatch, meta[metaTypeInfo], typeName)
	}
	if meta[metaVersion] != strconv.Itoa(propertyStoreVersion) {
		return nil, fmt.Errorf("%w: stream has version %q", ErrVersionMismatch, meta[metaVersion])
	}

	offsetsOffsetStr, ok := meta[metaOffsets]
	if !ok {
		return nil, fmt.Errorf("%w: missing %s", ErrShortRead, metaOffsets)
	}
	offsetsOffset, err := strconv.ParseInt(offsetsOffsetStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("imago: malformed %s: %w", metaOffsets, err)
	}

	offsets, err := readOffsetTable(ra, offsetsOffset)
	if err != nil {
		return nil, err
	}

	return &Reader[T]{ra: ra, decode: decode, offsets: offsets, meta: meta}, nil
}

func readMetadataMap(ra io.ReaderAt, at int64) (map[string]string, int64, error) {
	var countBuf [8]byte
	if _, err := ra.ReadAt(countBuf[:], at); err != nil {
		return nil, 0, fmt.Errorf("imago: reading metadata count: %w", err)
	}
	count := getInt64(countBuf[:])
	pos := at + 8
	meta := make(map[string]string, count)
	for i := int64(0); i < count; i++ {
		var klenBuf [4]byte
		if _, err := ra.ReadAt(klenBuf[:], pos); err != nil {
			return nil, 0, fmt.Errorf("imago: reading key length: %w", err)
		}
		pos += 4
		klen := getInt32(klenBuf[:])
		kbuf := make([]byte, klen)
		if _, err := ra.ReadAt(kbuf, pos); err != nil {
			return nil, 0, fmt.Errorf("imago: reading key: %w", err)
		}
		pos += int64(klen)

		var vlenBuf [4]byte
		if _, err := ra.ReadAt(vlenBuf[:], pos); err != nil {
			return nil, 0, fmt.Errorf("imago: reading value length: %w", err)
		}
		pos += 4
		vlen := getInt32(vlenBuf[:])
		vbuf := make([]byte, vlen)
		if _, err := ra.ReadAt(vbuf, pos); err != nil {
			return nil, 0, fmt.Errorf("imago: reading value: %w", err)
		}
		pos += int64(vlen)

		meta[string(kbuf)] = string(vbuf)
	}
	return meta, pos - at, nil
}

func readOffsetTable(ra io.ReaderAt, at int64) ([]int64, error) {
	var countBuf [8]byte
	if _, err := ra.ReadAt(countBuf[:], at); err != nil {
		return nil, fmt.Errorf("imago: reading offset count: %w", err)
	}
	n := getInt64(countBuf[:])
	offsets := make([]int64, n)
	pos := at + 8
	buf := make([]byte, 8*n)
	if n > 0 {
		if _, err := ra.ReadAt(buf, pos); err != nil {
			return nil, fmt.Errorf("%w: reading offset table: %v", ErrShortRead, err)
		}
	}
	for i := range offsets {
		offsets[i] = getInt64(buf[i*8:])
	}
	return offsets, nil
}

// Len returns the number of logical slots (including empty ones).
func (sr *Reader[T]) Len() int { return len(sr.offsets) }

// Meta returns the stream's trailing metadata map.
func (sr *Reader[T]) Meta() map[string]string { return sr.meta }

// Get decodes the element at logical index i. ok is false for an empty
// (-1 offset) slot, in which case the returned value is T's zero value.
// i must be in [0, Len()); out-of-range access is a programmer error (§7
// "Invariant") and panics rather than returning an error.
func (sr *Reader[T]) Get(i int) (value T, ok bool, err error) {
	if i < 0 || i >= len(sr.offsets) {
		panic("imago: property store index out of range")
	}
	off := sr.offsets[i]
	if off == -1 {
		var zero T
		return zero, false, nil
	}
	sec := io.NewSectionReader(sr.ra, off, math.MaxInt64-off)
	v, err := sr.decode(sec)
	if err != nil {
		return value, false, fmt.Errorf("imago: decoding element %d: %w", i, err)
	}
	return v, true, nil
}
