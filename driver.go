package imago

import (
	"container/heap"
	"fmt"
	"runtime"
	"sync"
)

// Sink receives one property's values from a Driver run, addressed by
// logical image index. InsertAt may be called out of order internally by
// the ordered buffer that fronts it, but the buffer guarantees the sink
// itself only ever sees indices in ascending order (§4.D).
type Sink interface {
	InsertAt(index int, value any) error
}

// writerSink adapts a property-store Writer[T] to Sink. The type assertion
// on value is safe because a Driver only ever pushes the bundle field a
// given sink was registered for.
type writerSink[T any] struct {
	w *Writer[T]
}

// NewSink wraps a property-store writer as a driver Sink.
func NewSink[T any](w *Writer[T]) Sink {
	return &writerSink[T]{w: w}
}

func (s *writerSink[T]) InsertAt(index int, value any) error {
	return s.w.Insert(index, value.(T))
}

// orderedItem is one pending (index, value) pair awaiting its turn to drain
// to a sink in sequence order.
type orderedItem struct {
	index int
	value any
}

// orderedHeap is a min-heap of orderedItem by index.
type orderedHeap []orderedItem

func (h orderedHeap) Len() int            { return len(h) }
func (h orderedHeap) Less(i, j int) bool  { return h[i].index < h[j].index }
func (h orderedHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *orderedHeap) Push(x any)         { *h = append(*h, x.(orderedItem)) }
func (h *orderedHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// orderedBuffer reorders out-of-sequence pushes from concurrent workers into
// ascending-index delivery to a single sink (§4.D "ordered buffer"). Each
// property declared by a generator gets its own orderedBuffer and lock, so
// workers writing to different properties never contend with each other.
type orderedBuffer struct {
	mu      sync.Mutex
	next    int
	pending orderedHeap
	sink    Sink
}

func newOrderedBuffer(sink Sink) *orderedBuffer {
	return &orderedBuffer{sink: sink}
}

// push enqueues (index, value) and drains every contiguous run starting at
// the next expected index to the sink.
func (b *orderedBuffer) push(index int, value any) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	heap.Push(&b.pending, orderedItem{index: index, value: value})
	for len(b.pending) > 0 && b.pending[0].index == b.next {
		item := heap.Pop(&b.pending).(orderedItem)
		if err := b.sink.InsertAt(item.index, item.value); err != nil {
			return err
		}
		b.next++
	}
	return nil
}

func (b *orderedBuffer) empty() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending) == 0
}

// Decoder produces a decoded raster from a file path. Image decoding itself
// is an external collaborator (§1, §10.8); a Driver is handed one at
// construction.
type Decoder func(path string) (*Image, error)

// Driver runs a Generator over every file in a FileList using W concurrent
// workers, forwarding each declared property to its sink in ascending index
// order regardless of completion order (§4.D "Parallel descriptor driver").
type Driver struct {
	gen     Generator
	files   *FileList
	decode  Decoder
	workers int
	buffers map[string]*orderedBuffer

	mu     sync.Mutex
	cursor int
	failed bool
	err    error
}

// NewDriver constructs a Driver. sinks maps declared property names
// ("features", "positions", "numfeatures") to their destinations; a
// generator kind that doesn't produce a given property may simply omit its
// sink. workers <= 0 defaults to the number of logical CPUs.
func NewDriver(gen Generator, files *FileList, decode Decoder, sinks map[string]Sink, workers int) *Driver {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	buffers := make(map[string]*orderedBuffer, len(sinks))
	for name, sink := range sinks {
		buffers[name] = newOrderedBuffer(sink)
	}
	return &Driver{gen: gen, files: files, decode: decode, workers: workers, buffers: buffers}
}

// Current returns the lowest unassigned file-list index, safe to call
// concurrently with Run (§4.D "Progress is observable").
func (d *Driver) Current() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cursor
}

// claim atomically hands out the next index, or reports none remain (either
// because the file list is exhausted or a previous worker failed).
func (d *Driver) claim() (int, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failed || d.cursor >= d.files.Len() {
		return 0, false
	}
	i := d.cursor
	d.cursor++
	return i, true
}

// fail records the first error seen and raises the cancellation flag; later
// calls are no-ops so the first failure wins (§4.D "Cancellation").
func (d *Driver) fail(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.failed {
		d.failed = true
		d.err = err
	}
}

// Run drives every worker to completion and returns the first error
// encountered, if any, wrapped in ErrDriverAborted. A nil return means every
// file was processed and every ordered buffer fully drained.
func (d *Driver) Run() error {
	var wg sync.WaitGroup
	for w := 0; w < d.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				i, ok := d.claim()
				if !ok {
					return
				}
				if err := d.processOne(i); err != nil {
					d.fail(fmt.Errorf("%w: %s: %v", ErrDriverAborted, d.files.Filename(i), err))
					return
				}
			}
		}()
	}
	wg.Wait()

	if d.err != nil {
		return d.err
	}
	for name, buf := range d.buffers {
		if !buf.empty() {
			return fmt.Errorf("%w: property %q", ErrOrderedBufferNotDrained, name)
		}
	}
	return nil
}

func (d *Driver) processOne(i int) error {
	img, err := d.decode(d.files.Filename(i))
	if err != nil {
		return err
	}

	switch d.gen.Kind() {
	case GlobalKind:
		bundle, err := d.gen.ComputeGlobal(img)
		if err != nil {
			return err
		}
		return d.pushGlobal(i, bundle)
	case LocalKind:
		bundle, err := d.gen.ComputeLocal(img)
		if err != nil {
			return err
		}
		return d.pushLocal(i, bundle)
	default:
		return fmt.Errorf("imago: generator %q has unknown kind", d.gen.Name())
	}
}

func (d *Driver) pushGlobal(i int, b GlobalBundle) error {
	if buf, ok := d.buffers["features"]; ok {
		if err := buf.push(i, b.Features); err != nil {
			return err
		}
	}
	return nil
}

func (d *Driver) pushLocal(i int, b LocalBundle) error {
	if buf, ok := d.buffers["features"]; ok {
		if err := buf.push(i, b.Features); err != nil {
			return err
		}
	}
	if buf, ok := d.buffers["positions"]; ok {
		if err := buf.push(i, b.Positions); err != nil {
			return err
		}
	}
	if buf, ok := d.buffers["numfeatures"]; ok {
		if err := buf.push(i, b.NumFeatures); err != nil {
			return err
		}
	}
	return nil
}
