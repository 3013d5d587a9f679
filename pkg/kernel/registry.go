package kernel

import (
	"fmt"
	"sort"
	"sync"
)

// Registry holds the available geometry engines keyed by name.
type Registry struct {
	mu      sync.RWMutex
	kernels map[string]Kernel
}

// NewRegistry creates an empty engine registry.
func NewRegistry() *Registry {
	return &Registry{kernels: make(map[string]Kernel)}
}

// Register adds an engine. Duplicate names are a configuration error.
func (r *Registry) Register(k Kernel) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	name := k.Name()
	if _, exists := r.kernels[name]; exists {
		return NewConfigurationError(fmt.Sprintf("engine %q already registered", name), nil)
	}
	r.kernels[name] = k
	return nil
}

// Get returns the engine with the given name.
func (r *Registry) Get(name string) (Kernel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	k, ok := r.kernels[name]
	if !ok {
		return nil, NewConfigurationError(fmt.Sprintf("unknown engine %q (available: %v)", name, r.names()), nil)
	}
	return k, nil
}

// Names returns the registered engine names sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.names()
}

func (r *Registry) names() []string {
	out := make([]string, 0, len(r.kernels))
	for name := range r.kernels {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// All returns the registered engines sorted by name.
func (r *Registry) All() []Kernel {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Kernel, 0, len(r.kernels))
	for _, name := range r.names() {
		out = append(out, r.kernels[name])
	}
	return out
}
