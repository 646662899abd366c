// Package registry provides a concurrency-safe name-to-value registry. The
// in-process runtime uses it to look up component factories by module name.
package registry

import (
	"fmt"
	"sort"
	"sync"
)

// Registry maps names to values of T.
type Registry[T any] struct {
	mu      sync.RWMutex
	entries map[string]T
}

// New creates an empty registry.
func New[T any]() *Registry[T] {
	return &Registry[T]{
		entries: make(map[string]T),
	}
}

// Register adds an entry. An existing entry with the same name is
// overwritten.
func (r *Registry[T]) Register(name string, value T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[name] = value
}

// Lookup returns the entry for name.
func (r *Registry[T]) Lookup(name string) (T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	value, ok := r.entries[name]
	if !ok {
		var zero T
		return zero, fmt.Errorf("not registered: %s", name)
	}
	return value, nil
}

// Names returns the registered names, sorted.
func (r *Registry[T]) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
