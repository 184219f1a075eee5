package imago

import (
	"errors"
	"testing"
)

var errUnknownThing = errors.New("unknown thing")

func TestRegistryRegisterAndCreate(t *testing.T) {
	r := NewRegistry[int]()
	r.Register("answer", func(cfg Config) (int, error) {
		return cfg.Int("n", 42), nil
	})

	got, err := r.Create("answer", NewConfig().WithInt("n", 7), errUnknownThing)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if got != 7 {
		t.Errorf("Create() = %d, want 7", got)
	}
}

func TestRegistryCreateUnknownName(t *testing.T) {
	r := NewRegistry[int]()
	_, err := r.Create("missing", NewConfig(), errUnknownThing)
	if err == nil {
		t.Fatal("expected an error for an unregistered name")
	}
	if !errors.Is(err, errUnknownThing) {
		t.Errorf("error %v does not unwrap to %v", err, errUnknownThing)
	}
}

func TestRegistryRegisterOverwrites(t *testing.T) {
	r := NewRegistry[int]()
	r.Register("x", func(Config) (int, error) { return 1, nil })
	r.Register("x", func(Config) (int, error) { return 2, nil })

	got, err := r.Create("x", NewConfig(), errUnknownThing)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if got != 2 {
		t.Errorf("Create() = %d, want 2 (last registration wins)", got)
	}
}

func TestRegistryNames(t *testing.T) {
	r := NewRegistry[int]()
	r.Register("a", func(Config) (int, error) { return 0, nil })
	r.Register("b", func(Config) (int, error) { return 0, nil })

	names := r.Names()
	if len(names) != 2 {
		t.Fatalf("len(Names()) = %d, want 2", len(names))
	}
	seen := map[string]bool{}
	for _, n := range names {
		seen[n] = true
	}
	if !seen["a"] || !seen["b"] {
		t.Errorf("Names() = %v, want to contain both %q and %q", names, "a", "b")
	}
}

func TestGeneratorRegistryHasKnownNames(t *testing.T) {
	for _, name := range []string{"tinyimage", "gist", "shog"} {
		if _, err := NewGenerator(name, NewConfig()); err != nil {
			t.Errorf("NewGenerator(%q): %v", name, err)
		}
	}
}

func TestNewGeneratorUnknownName(t *testing.T) {
	if _, err := NewGenerator("bogus", NewConfig()); !errors.Is(err, ErrUnknownGenerator) {
		t.Errorf("error = %v, want to wrap ErrUnknownGenerator", err)
	}
}
