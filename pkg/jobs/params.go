package jobs

import "strings"

// Param is a single job parameter; Flag params carry no value.
type Param struct {
	Value string
	Flag  bool
}

// ParamMap is an insertion ordered parameter set. Setting an existing key
// replaces its value and keeps its position.
type ParamMap struct {
	keys   []string
	values map[string]Param
}

// NewParamMap returns an empty ParamMap.
func NewParamMap() *ParamMap {
	return &ParamMap{values: map[string]Param{}}
}

// ParseParams builds a ParamMap from a job's tokens. The first token is the
// program name and is discarded.
func ParseParams(spec JobSpec) *ParamMap {
	pm := NewParamMap()
	if len(spec) == 0 {
		return pm
	}
	for _, tok := range spec[1:] {
		tok = strings.TrimLeft(tok, "-")
		if tok == "" {
			continue
		}
		if k, v, ok := strings.Cut(tok, "="); ok {
			if k == "" {
				continue
			}
			pm.Set(k, v)
			continue
		}
		pm.SetFlag(tok)
	}
	return pm
}

func (p *ParamMap) put(key string, val Param) {
	if _, ok := p.values[key]; !ok {
		p.keys = append(p.keys, key)
	}
	p.values[key] = val
}

// Set stores a key=value parameter.
func (p *ParamMap) Set(key, value string) { p.put(key, Param{Value: value}) }

// SetFlag stores a boolean flag parameter.
func (p *ParamMap) SetFlag(key string) { p.put(key, Param{Flag: true}) }

// Get returns the parameter stored under key.
func (p *ParamMap) Get(key string) (Param, bool) {
	v, ok := p.values[key]
	return v, ok
}

// Value returns the string value of key, empty for flags and missing keys.
func (p *ParamMap) Value(key string) string {
	return p.values[key].Value
}

// Has reports whether key is present.
func (p *ParamMap) Has(key string) bool {
	_, ok := p.values[key]
	return ok
}

// Delete removes key.
func (p *ParamMap) Delete(key string) {
	if _, ok := p.values[key]; !ok {
		return
	}
	delete(p.values, key)
	for i, k := range p.keys {
		if k == key {
			p.keys = append(p.keys[:i], p.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in insertion order.
func (p *ParamMap) Keys() []string {
	return append([]string(nil), p.keys...)
}

// Len returns the number of parameters.
func (p *ParamMap) Len() int { return len(p.keys) }

// Clone returns an independent copy.
func (p *ParamMap) Clone() *ParamMap {
	c := NewParamMap()
	for _, k := range p.keys {
		c.put(k, p.values[k])
	}
	return c
}

// Equal reports whether both maps hold the same parameters in the same order.
func (p *ParamMap) Equal(o *ParamMap) bool {
	if p.Len() != o.Len() {
		return false
	}
	for i, k := range p.keys {
		if o.keys[i] != k || o.values[k] != p.values[k] {
			return false
		}
	}
	return true
}

// Args renders the parameters as --key=value / --flag arguments.
func (p *ParamMap) Args() []string {
	args := make([]string, 0, len(p.keys))
	for _, k := range p.keys {
		v := p.values[k]
		if v.Flag {
			args = append(args, "--"+k)
			continue
		}
		args = append(args, "--"+k+"="+v.Value)
	}
	return args
}
