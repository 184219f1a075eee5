package imago

// Config is the in-memory key/value tree a generator or sampler is built
// from (§4.C, §6 "Configuration trees"). Parsing such a tree out of JSON or
// a ptree-equivalent file is external-collaborator territory per §1; this
// type only has to support what a generator constructor needs: typed lookup
// with a default, and preservation of unknown keys.
type Config map[string]any

// NewConfig returns an empty configuration tree.
func NewConfig() Config {
	return make(Config)
}

// WithString sets a string key and returns the receiver for chaining.
func (c Config) WithString(key, value string) Config {
	c[key] = value
	return c
}

// WithInt sets an int key and returns the receiver for chaining.
func (c Config) WithInt(key string, value int) Config {
	c[key] = value
	return c
}

// WithFloat sets a float64 key and returns the receiver for chaining.
func (c Config) WithFloat(key string, value float64) Config {
	c[key] = value
	return c
}

// WithBool sets a bool key and returns the receiver for chaining.
func (c Config) WithBool(key string, value bool) Config {
	c[key] = value
	return c
}

// String returns the string at key, or def if absent or of the wrong type.
// Missing keys are filled with defaults, never left unset (§4.C).
func (c Config) String(key, def string) string {
	if v, ok := c[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// Int returns the int at key, or def if absent or of the wrong type.
func (c Config) Int(key string, def int) int {
	if v, ok := c[key]; ok {
		switch n := v.(type) {
		case int:
			return n
		case int64:
			return int(n)
		case float64:
			return int(n)
		}
	}
	return def
}

// Float returns the float64 at key, or def if absent or of the wrong type.
func (c Config) Float(key string, def float64) float64 {
	if v, ok := c[key]; ok {
		switch n := v.(type) {
		case float64:
			return n
		case int:
			return float64(n)
		}
	}
	return def
}

// Bool returns the bool at key, or def if absent or of the wrong type.
func (c Config) Bool(key string, def bool) bool {
	if v, ok := c[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}
