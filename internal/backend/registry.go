package backend

import (
	"fmt"
	"strings"
)

// Registry maps backend names to instances. It is built once at startup and
// never modified afterwards.
type Registry struct {
	names  []string
	byName map[string]Backend
}

// NewRegistry builds a registry preserving the given order. Empty or
// duplicate names are rejected.
func NewRegistry(backends ...Backend) (*Registry, error) {
	r := &Registry{
		names:  make([]string, 0, len(backends)),
		byName: make(map[string]Backend, len(backends)),
	}
	for i, b := range backends {
		if b == nil {
			return nil, fmt.Errorf("backend[%d] is nil", i)
		}
		name := strings.TrimSpace(b.Name())
		if name == "" {
			return nil, fmt.Errorf("backend[%d] has an empty name", i)
		}
		if _, dup := r.byName[name]; dup {
			return nil, fmt.Errorf("backend %q registered twice", name)
		}
		r.names = append(r.names, name)
		r.byName[name] = b
	}
	return r, nil
}

// DefaultRegistry returns a registry of freshly constructed built-in backends.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(
		NewGoroutineBackend(),
		NewErrgroupBackend(),
		NewConcBackend(),
	)
	if err != nil {
		panic(err)
	}
	return r
}

// Names lists registered backends in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}

// Lookup returns the backend registered under name.
func (r *Registry) Lookup(name string) (Backend, bool) {
	b, ok := r.byName[name]
	return b, ok
}

// Resolve validates a selection of names. An empty selection means all.
func (r *Registry) Resolve(names []string) ([]string, error) {
	if len(names) == 0 {
		return r.Names(), nil
	}
	var unknown []string
	for _, name := range names {
		if _, ok := r.byName[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("unknown libraries %s (available: %s)",
			strings.Join(unknown, ", "), strings.Join(r.names, ", "))
	}
	return append([]string(nil), names...), nil
}
