// Package registry is the process-wide name-to-class map the graph
// runtime consults to instantiate nodes and the discovery surface
// consults to list what's buildable.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/arung-agamani/streamgraph/internal/core/component"
)

// Registry maps a component class name to its Class. Registration
// happens at process startup; lookups and listing happen continuously
// from request-serving goroutines.
type Registry struct {
	mu      sync.RWMutex
	classes map[string]component.Class
}

func New() *Registry {
	return &Registry{classes: make(map[string]component.Class)}
}

// Register adds a class under its own Name. Registering the same name
// twice is a programmer error, not a runtime condition to recover from.
func (r *Registry) Register(c component.Class) error {
	if c.Name == "" {
		return fmt.Errorf("registry: class name must not be empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.classes[c.Name]; exists {
		return fmt.Errorf("registry: class %q already registered", c.Name)
	}
	r.classes[c.Name] = c
	return nil
}

// MustRegister panics on a registration error. Intended for package-init
// style bootstrap where a collision is unrecoverable by definition.
func (r *Registry) MustRegister(c component.Class) {
	if err := r.Register(c); err != nil {
		panic(err)
	}
}

func (r *Registry) Lookup(name string) (component.Class, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.classes[name]
	return c, ok
}

// List returns every registered class, sorted by name for stable
// discovery output.
func (r *Registry) List() []component.Class {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]component.Class, 0, len(r.classes))
	for _, c := range r.classes {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
