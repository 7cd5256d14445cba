package session

// DefaultWindowSize is the number of non-system messages kept in the active
// window.
const DefaultWindowSize = 10

// Config holds session initialization parameters.
type Config struct {
	WindowSize int `json:"window_size,omitempty" yaml:"window_size,omitempty"`
}

// DefaultConfig returns the default session configuration.
func DefaultConfig() Config {
	return Config{WindowSize: DefaultWindowSize}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.WindowSize > 0 {
		c.WindowSize = source.WindowSize
	}
}

// New creates a Session from configuration anchored on systemPrompt.
// Currently returns an in-memory session.
func New(cfg *Config, systemPrompt string) (Session, error) {
	return NewMemorySession(systemPrompt, cfg.WindowSize), nil
}
