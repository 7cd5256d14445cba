package agent

import (
	"time"

	"github.com/tailored-agentic-units/scout/retry"
)

// Config selects and parameterizes a model backend.
type Config struct {
	Provider       string `json:"provider,omitempty" yaml:"provider,omitempty"`
	Model          string `json:"model,omitempty" yaml:"model,omitempty"`
	BaseURL        string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	APIKey         string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	MaxTokens      int    `json:"max_tokens,omitempty" yaml:"max_tokens,omitempty"`
	MaxAttempts    int    `json:"max_attempts,omitempty" yaml:"max_attempts,omitempty"`
	TimeoutSeconds int    `json:"timeout_seconds,omitempty" yaml:"timeout_seconds,omitempty"`
}

// DefaultConfig returns the default agent configuration: the offline mock
// backend with three attempts per model call.
func DefaultConfig() Config {
	return Config{
		Provider:       "mock",
		MaxTokens:      1024,
		MaxAttempts:    retry.DefaultAttempts,
		TimeoutSeconds: 60,
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.Provider != "" {
		c.Provider = source.Provider
	}
	if source.Model != "" {
		c.Model = source.Model
	}
	if source.BaseURL != "" {
		c.BaseURL = source.BaseURL
	}
	if source.APIKey != "" {
		c.APIKey = source.APIKey
	}
	if source.MaxTokens > 0 {
		c.MaxTokens = source.MaxTokens
	}
	if source.MaxAttempts > 0 {
		c.MaxAttempts = source.MaxAttempts
	}
	if source.TimeoutSeconds > 0 {
		c.TimeoutSeconds = source.TimeoutSeconds
	}
}

// Timeout returns the per-request HTTP timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}
