// Package search provides the pluggable web search backends behind the
// web_search tool.
//
// Each backend implements [Provider] and is registered with a [Manager],
// which routes queries to the configured primary provider.
package search

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"
)

// ErrProviderNotConfigured is returned when a search is routed to a
// provider the manager does not hold.
var ErrProviderNotConfigured = errors.New("search provider not configured")

// Result is a single search result.
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// Options are optional parameters for a search query.
type Options struct {
	// Count is the maximum number of results to return.
	// Providers may return fewer. Zero means provider default.
	Count int `json:"count,omitempty"`

	// Language is an ISO 639-1 language code (e.g., "en", "de").
	Language string `json:"language,omitempty"`
}

// Provider is the interface that search backends implement.
type Provider interface {
	// Name returns the provider identifier (e.g., "searxng", "brave").
	Name() string

	// Search executes a query and returns results.
	Search(ctx context.Context, query string, opts Options) ([]Result, error)
}

// Manager holds configured providers and routes searches.
type Manager struct {
	mu        sync.RWMutex
	providers map[string]Provider
	primary   string
	defaults  Options
}

// NewManager creates a search manager. The primary provider name
// determines which backend is used by default.
func NewManager(primary string) *Manager {
	return &Manager{
		providers: make(map[string]Provider),
		primary:   primary,
	}
}

// Register adds a provider to the manager, replacing any provider with
// the same name.
func (m *Manager) Register(p Provider) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.providers[p.Name()] = p
}

// SetDefaults sets the options applied to fields a query leaves zero.
func (m *Manager) SetDefaults(opts Options) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaults = opts
}

// Primary returns the name of the default provider.
func (m *Manager) Primary() string {
	return m.primary
}

// Search runs a query against the primary provider.
func (m *Manager) Search(ctx context.Context, query string, opts Options) ([]Result, error) {
	return m.SearchWith(ctx, m.primary, query, opts)
}

// SearchWith runs a query against a specific named provider.
func (m *Manager) SearchWith(ctx context.Context, provider, query string, opts Options) ([]Result, error) {
	m.mu.RLock()
	p, ok := m.providers[provider]
	defaults := m.defaults
	m.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrProviderNotConfigured, provider)
	}

	if opts.Count == 0 {
		opts.Count = defaults.Count
	}
	if opts.Language == "" {
		opts.Language = defaults.Language
	}

	return p.Search(ctx, query, opts)
}

// Providers returns the sorted names of all registered providers.
func (m *Manager) Providers() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.providers))
	for name := range m.providers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Configured reports whether at least one provider is registered.
func (m *Manager) Configured() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.providers) > 0
}

// FormatResults builds a human-readable result string from at most count
// results. A count of zero or less formats them all.
func FormatResults(results []Result, count int) string {
	if count > 0 && len(results) > count {
		results = results[:count]
	}
	if len(results) == 0 {
		return "No results found."
	}

	var b strings.Builder
	for i, r := range results {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(strconv.Itoa(i + 1))
		b.WriteString(". ")
		b.WriteString(r.Title)
		b.WriteString("\n   ")
		b.WriteString(r.URL)
		if r.Snippet != "" {
			b.WriteString("\n   ")
			b.WriteString(r.Snippet)
		}
	}
	return b.String()
}
