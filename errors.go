package imago

import "errors"

// Sentinel errors returned by the core components. Callers should compare
// with errors.Is; most are wrapped with additional context (a path, a name,
// an index) via fmt.Errorf("...: %w", err) at the point of failure.
var (
	// ErrUnknownDistanceKind is returned by NewDistance for an unregistered name.
	ErrUnknownDistanceKind = errors.New("imago: unknown distance kind")

	// ErrZeroVector reports a zero vector given to a metric that requires
	// normalization. No metric in this package returns it: the cosine
	// distance maps a zero input vector to distance 1.
	ErrZeroVector = errors.New("imago: zero vector not allowed for this metric")

	// ErrDimensionMismatch is returned whenever two vectors that are expected
	// to share a dimension do not.
	ErrDimensionMismatch = errors.New("imago: dimension mismatch")

	// ErrUnknownGenerator is returned by the registry when a descriptor
	// generator name has not been registered.
	ErrUnknownGenerator = errors.New("imago: unknown generator")

	// ErrUnknownSampler is returned by the registry when a keypoint sampler
	// name has not been registered.
	ErrUnknownSampler = errors.New("imago: unknown sampler")

	// ErrUnknownTFIDF is returned when a tf or idf function name has not
	// been registered. Construction-time fatal per the error handling design.
	ErrUnknownTFIDF = errors.New("imago: unknown tf/idf function")

	// ErrTypeMismatch is returned by the property store reader when the
	// stream's recorded type name does not match the type requested.
	ErrTypeMismatch = errors.New("imago: property stream type mismatch")

	// ErrVersionMismatch is returned by the property store reader when the
	// stream's recorded version is not supported by this reader.
	ErrVersionMismatch = errors.New("imago: property stream version mismatch")

	// ErrShortRead is returned by the property store reader on a truncated
	// element or offset table.
	ErrShortRead = errors.New("imago: short read")

	// ErrNotFinalized is returned by Query and Save when the inverted index
	// has not been finalized since its last ingestion.
	ErrNotFinalized = errors.New("imago: index not finalized")

	// ErrEmptyRoot is returned by FileList.SetRoot when the directory does
	// not exist.
	ErrEmptyRoot = errors.New("imago: root directory does not exist")

	// ErrDriverAborted is returned by Driver.Run when a worker's generator
	// call failed; it wraps the underlying cause.
	ErrDriverAborted = errors.New("imago: driver aborted")

	// ErrSigmaRequired is returned by the fuzzy quantizer constructor when
	// sigma is not strictly positive.
	ErrSigmaRequired = errors.New("imago: fuzzy quantizer requires sigma > 0")

	// ErrOrderedBufferNotDrained is returned by Driver.Run when a property's
	// ordered buffer still holds elements after every worker has exited,
	// meaning a previous worker aborted mid-sequence.
	ErrOrderedBufferNotDrained = errors.New("imago: ordered buffer not drained at driver join")

	// ErrUnknownFusionKind is returned by NewFusion for an unregistered name.
	ErrUnknownFusionKind = errors.New("imago: unknown fusion kind")
)
