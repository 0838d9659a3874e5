package providers

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Factory creates a provider from its configuration.
type Factory func(cfg Config) (Provider, error)

type entry struct {
	factory Factory
	cfg     Config
}

// Registry holds one configured entry per provider name and builds each
// instance once. Concurrent first requests share a single build.
type Registry struct {
	mu        sync.RWMutex
	entries   map[string]entry
	instances map[string]Provider
	sf        singleflight.Group
}

func NewRegistry() *Registry {
	return &Registry{
		entries:   make(map[string]entry),
		instances: make(map[string]Provider),
	}
}

// Register sets (or replaces) the factory and config for name.
func (r *Registry) Register(name string, f Factory, cfg Config) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[name] = entry{factory: f, cfg: cfg}
	delete(r.instances, name)
}

// Get returns the provider for name, building it on first use.
// ErrUnknownProvider if never registered; ErrNotConfigured if it lacks credentials.
func (r *Registry) Get(_ context.Context, name string) (Provider, error) {
	r.mu.RLock()
	p, ok := r.instances[name]
	e, known := r.entries[name]
	r.mu.RUnlock()
	if ok {
		return p, nil
	}
	if !known {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, name)
	}

	v, err, _ := r.sf.Do(name, func() (any, error) {
		r.mu.RLock()
		if p, ok := r.instances[name]; ok {
			r.mu.RUnlock()
			return p, nil
		}
		r.mu.RUnlock()

		p, err := e.factory(e.cfg)
		if err != nil {
			return nil, fmt.Errorf("providers: build %s: %w", name, err)
		}
		if err := p.Validate(); err != nil {
			return nil, err
		}

		r.mu.Lock()
		r.instances[name] = p
		r.mu.Unlock()
		return p, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(Provider), nil
}

// Names returns the registered provider names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.entries))
	for n := range r.entries {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
