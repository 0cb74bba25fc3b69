package provider

import (
	"iter"
	"slices"
	"strings"
	"sync"
)

// Registry holds the live providers keyed by lowercase name.
// It is populated at startup and read concurrently afterwards.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider

	// order keeps registration order so Names is deterministic.
	order []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]Provider)}
}

// Register stores p under its lowercased name, replacing any earlier entry.
// A replaced entry keeps its original position in Names.
func (r *Registry) Register(p Provider) {
	key := strings.ToLower(p.Name())

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.providers[key]; !exists {
		r.order = append(r.order, key)
	}
	r.providers[key] = p
}

// Get returns the provider registered under name, ignoring case.
func (r *Registry) Get(name string) (Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[strings.ToLower(name)]
	return p, ok
}

// Contains reports whether a provider is registered under name, ignoring case.
func (r *Registry) Contains(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// Names yields the registered keys in registration order.
func (r *Registry) Names() iter.Seq[string] {
	r.mu.RLock()
	snapshot := slices.Clone(r.order)
	r.mu.RUnlock()

	return func(yield func(string) bool) {
		for _, name := range snapshot {
			if !yield(name) {
				return
			}
		}
	}
}

// Sorted returns the registered keys in lexical order.
func (r *Registry) Sorted() []string {
	return slices.Sorted(r.Names())
}

// First returns the earliest registered key, or "" for an empty registry.
func (r *Registry) First() string {
	for name := range r.Names() {
		return name
	}
	return ""
}

// Len returns the number of registered providers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.providers)
}
