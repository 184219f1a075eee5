package imago

import "sync"

// Registry is a process-wide name→factory lookup (§4.J). It is lazily
// populated by package-level init() calls from each descriptor generator
// and sampler file and is read-mostly thereafter; a sync.RWMutex favors the
// read path the way the source's single-threaded lazy-map lookup implicitly
// did, while still being safe if registration ever races with use.
type Registry[T any] struct {
	mu        sync.RWMutex
	factories map[string]func(Config) (T, error)
}

// NewRegistry returns an empty registry for factories producing a T.
func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{factories: make(map[string]func(Config) (T, error))}
}

// Register installs a factory under name, overwriting any previous
// registration. Intended to be called from init() functions only.
func (r *Registry[T]) Register(name string, factory func(Config) (T, error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Create looks up name and invokes its factory with cfg. The unknownErr is
// returned, wrapped with name, if nothing is registered under that name.
func (r *Registry[T]) Create(name string, cfg Config, unknownErr error) (T, error) {
	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		var zero T
		return zero, &registryError{name: name, err: unknownErr}
	}
	return factory(cfg)
}

// Names returns the currently registered factory names, in no particular
// order; useful for error messages and diagnostics.
func (r *Registry[T]) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for n := range r.factories {
		names = append(names, n)
	}
	return names
}

type registryError struct {
	name string
	err  error
}

func (e *registryError) Error() string {
	return e.err.Error() + ": " + e.name
}

func (e *registryError) Unwrap() error {
	return e.err
}

// Package-level registries used by the descriptor pipeline (§4.C), the
// keypoint samplers (§4.C.3), and the tf/idf plug-ins (§4.G). Each concrete
// generator/sampler/tf-idf file registers itself from an init() function,
// the idiomatic Go analogue of the source's load-time static registration.
var (
	generators = NewRegistry[Generator]()
	samplers   = NewRegistry[Sampler]()
	tfFuncs    = NewRegistry[TFFunc]()
	idfFuncs   = NewRegistry[IDFFunc]()
)

// NewGenerator looks up and constructs a registered descriptor generator.
func NewGenerator(name string, cfg Config) (Generator, error) {
	return generators.Create(name, cfg, ErrUnknownGenerator)
}

// NewSampler looks up and constructs a registered keypoint sampler.
func NewSampler(name string, cfg Config) (Sampler, error) {
	return samplers.Create(name, cfg, ErrUnknownSampler)
}

// NewTFFunc looks up and constructs a registered term-frequency function.
func NewTFFunc(name string, cfg Config) (TFFunc, error) {
	return tfFuncs.Create(name, cfg, ErrUnknownTFIDF)
}

// NewIDFFunc looks up and constructs a registered inverse-document-frequency function.
func NewIDFFunc(name string, cfg Config) (IDFFunc, error) {
	return idfFuncs.Create(name, cfg, ErrUnknownTFIDF)
}
