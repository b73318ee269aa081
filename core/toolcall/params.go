package toolcall

// Params is an ordered key-value set of call parameters. Insertion order is
// preserved for diagnostics; setting an existing key overwrites the value but
// keeps the key's original position (last write wins).
type Params struct {
	keys   []string
	values map[string]string
}

// NewParams returns an empty parameter set.
func NewParams() *Params {
	return &Params{values: make(map[string]string)}
}

// Set stores a value under key.
func (p *Params) Set(key, value string) {
	if _, ok := p.values[key]; !ok {
		p.keys = append(p.keys, key)
	}
	p.values[key] = value
}

// Get returns the value for key and whether it is present.
func (p *Params) Get(key string) (string, bool) {
	v, ok := p.values[key]
	return v, ok
}

// Keys returns the parameter names in insertion order.
func (p *Params) Keys() []string {
	keys := make([]string, len(p.keys))
	copy(keys, p.keys)
	return keys
}

// Len returns the number of parameters.
func (p *Params) Len() int {
	return len(p.keys)
}

// Clone returns an independent copy.
func (p *Params) Clone() *Params {
	c := NewParams()
	for _, k := range p.keys {
		c.Set(k, p.values[k])
	}
	return c
}

// Map returns the parameters as a plain map.
func (p *Params) Map() map[string]string {
	m := make(map[string]string, len(p.keys))
	for k, v := range p.values {
		m[k] = v
	}
	return m
}
