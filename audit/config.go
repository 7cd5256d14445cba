package audit

import "fmt"

// Driver names accepted by Config.Driver.
const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
)

// Config holds audit sink parameters.
type Config struct {
	Driver string `json:"driver,omitempty" yaml:"driver,omitempty"`
	Path   string `json:"path,omitempty" yaml:"path,omitempty"` // Directory for file, database file for sqlite; empty disables auditing.
}

// DefaultConfig returns the default audit configuration (disabled).
func DefaultConfig() Config {
	return Config{Driver: DriverFile}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.Driver != "" {
		c.Driver = source.Driver
	}
	if source.Path != "" {
		c.Path = source.Path
	}
}

// Open creates a Sink from configuration. Returns a nil Sink when Path is
// empty, indicating auditing is disabled.
func Open(cfg *Config) (Sink, error) {
	if cfg.Path == "" {
		return nil, nil
	}

	switch cfg.Driver {
	case "", DriverFile:
		return NewFileSink(cfg.Path), nil
	case DriverSQLite:
		sink, err := NewSQLiteSink(cfg.Path)
		if err != nil {
			return nil, err
		}
		return sink, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
}
