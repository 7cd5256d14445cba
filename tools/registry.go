package tools

import (
	"fmt"
	"sync"

	"github.com/tailored-agentic-units/scout/core/protocol"
)

// Registry holds tool descriptors keyed by unique name and preserves
// registration order. It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	order   []string
	entries map[string]Descriptor
}

// NewRegistry creates a Registry holding descs in the given order.
func NewRegistry(descs ...Descriptor) (*Registry, error) {
	r := &Registry{entries: make(map[string]Descriptor, len(descs))}
	for _, d := range descs {
		if err := r.Register(d); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds a new tool.
// Returns ErrAlreadyExists if a tool with the same name is already registered.
// Use Replace to update an existing tool.
func (r *Registry) Register(d Descriptor) error {
	if err := d.validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[d.Name]; exists {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, d.Name)
	}

	r.entries[d.Name] = d
	r.order = append(r.order, d.Name)
	return nil
}

// Replace updates an existing tool in place, keeping its position.
// Returns ErrNotFound if no tool with the given name is registered.
func (r *Registry) Replace(d Descriptor) error {
	if err := d.validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[d.Name]; !exists {
		return fmt.Errorf("%w: %s", ErrNotFound, d.Name)
	}

	r.entries[d.Name] = d
	return nil
}

// Get retrieves a descriptor by tool name.
func (r *Registry) Get(name string) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, exists := r.entries[name]
	return d, exists
}

// List returns all descriptors in registration order.
func (r *Registry) List() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	descs := make([]Descriptor, 0, len(r.order))
	for _, name := range r.order {
		descs = append(descs, r.entries[name])
	}
	return descs
}

// Tools returns the wire projections of all tools in registration order.
func (r *Registry) Tools() []protocol.Tool {
	descs := r.List()
	tools := make([]protocol.Tool, 0, len(descs))
	for _, d := range descs {
		tools = append(tools, d.Tool())
	}
	return tools
}

// Names returns tool names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
