package search

import (
	"fmt"
	"net/http"

	"github.com/tailored-agentic-units/scout/observability"
)

// Provider names accepted by Config.Provider.
const (
	ProviderNone    = "none"
	ProviderFake    = "fake"
	ProviderError   = "error"
	ProviderSearXNG = "searxng"
	ProviderBrave   = "brave"
	ProviderGoogle  = "google"
)

// Config selects and configures the primary search provider.
type Config struct {
	Provider    string `json:"provider,omitempty" yaml:"provider,omitempty"`
	SearXNGURL  string `json:"searxng_url,omitempty" yaml:"searxng_url,omitempty"`
	BraveAPIKey string `json:"brave_api_key,omitempty" yaml:"brave_api_key,omitempty"`
	Count       int    `json:"count,omitempty" yaml:"count,omitempty"`
	Language    string `json:"language,omitempty" yaml:"language,omitempty"`
}

// DefaultConfig returns the offline demo configuration.
func DefaultConfig() Config {
	return Config{
		Provider: ProviderFake,
		Count:    defaultCount,
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.Provider != "" {
		c.Provider = source.Provider
	}
	if source.SearXNGURL != "" {
		c.SearXNGURL = source.SearXNGURL
	}
	if source.BraveAPIKey != "" {
		c.BraveAPIKey = source.BraveAPIKey
	}
	if source.Count > 0 {
		c.Count = source.Count
	}
	if source.Language != "" {
		c.Language = source.Language
	}
}

// Enabled reports whether web search should be offered at all.
func (c *Config) Enabled() bool {
	return c.Provider != "" && c.Provider != ProviderNone
}

// New builds a Manager whose primary provider is cfg.Provider. The
// offline fake and failing providers are always registered alongside it.
// A nil client uses a client with DefaultTimeout.
func New(cfg *Config, client *http.Client, observer observability.Observer) (*Manager, error) {
	mgr := NewManager(cfg.Provider)
	mgr.SetDefaults(Options{Count: cfg.Count, Language: cfg.Language})
	mgr.Register(NewFake())
	mgr.Register(NewFailing())

	opts := []Option{WithHTTPClient(client), WithObserver(observer)}

	switch cfg.Provider {
	case ProviderFake, ProviderError:
	case ProviderSearXNG:
		if cfg.SearXNGURL == "" {
			return nil, fmt.Errorf("search provider %q requires searxng_url", cfg.Provider)
		}
		mgr.Register(NewSearXNG(cfg.SearXNGURL, opts...))
	case ProviderBrave:
		if cfg.BraveAPIKey == "" {
			return nil, fmt.Errorf("search provider %q requires brave_api_key", cfg.Provider)
		}
		mgr.Register(NewBrave(cfg.BraveAPIKey, opts...))
	case ProviderGoogle:
		mgr.Register(NewGoogle(opts...))
	default:
		return nil, fmt.Errorf("unknown search provider %q", cfg.Provider)
	}

	return mgr, nil
}
