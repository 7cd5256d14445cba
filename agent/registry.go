package agent

import (
	"fmt"
	"sort"
	"sync"
)

// Factory creates an Agent from configuration.
type Factory func(cfg *Config) (Agent, error)

// Registry maps provider names to factories. Thread-safe for concurrent
// access.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a named provider factory.
func (r *Registry) Register(name string, f Factory) error {
	if name == "" {
		return ErrEmptyProviderName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("%w: %s", ErrProviderExists, name)
	}

	r.factories[name] = f
	return nil
}

// Replace updates the factory for an existing provider.
func (r *Registry) Replace(name string, f Factory) error {
	if name == "" {
		return ErrEmptyProviderName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[name]; !exists {
		return fmt.Errorf("%w: %s", ErrProviderNotFound, name)
	}

	r.factories[name] = f
	return nil
}

// New creates an Agent using the factory registered for cfg.Provider.
func (r *Registry) New(cfg *Config) (Agent, error) {
	r.mu.RLock()
	f, exists := r.factories[cfg.Provider]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrProviderNotFound, cfg.Provider)
	}

	a, err := f(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create agent %q: %w", cfg.Provider, err)
	}
	return a, nil
}

// Names returns registered provider names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
