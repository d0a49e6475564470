package payment

import (
	"fmt"
	"sort"
	"sync"
)

// Registry maps provider identifiers to their implementations. The hosting
// platform resolves the provider for a checkout by identifier.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
}

func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]Provider)}
}

// Register adds a provider under its identifier. Registering the same
// identifier twice replaces the earlier instance.
func (r *Registry) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[p.Identifier()] = p
}

// Get resolves a provider by identifier.
func (r *Registry) Get(identifier string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[identifier]
	if !ok {
		return nil, fmt.Errorf("payment: unknown provider %q", identifier)
	}
	return p, nil
}

// Identifiers returns the registered provider names, sorted.
func (r *Registry) Identifiers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
