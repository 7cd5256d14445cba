package tools

import (
	"fmt"

	"github.com/tailored-agentic-units/scout/retry"
)

// ValidationPolicy selects how the loop treats arguments that fail schema
// validation.
type ValidationPolicy string

const (
	// ValidationFail returns the *ValidationError from the run.
	ValidationFail ValidationPolicy = "fail"
	// ValidationAbsorb records the error as a tool result and continues.
	ValidationAbsorb ValidationPolicy = "absorb"
)

// Config holds tool invocation parameters.
type Config struct {
	MaxAttempts int              `json:"max_attempts,omitempty" yaml:"max_attempts,omitempty"`
	Validation  ValidationPolicy `json:"validation,omitempty" yaml:"validation,omitempty"`
}

// DefaultConfig returns the default tool configuration.
func DefaultConfig() Config {
	return Config{
		MaxAttempts: retry.DefaultAttempts,
		Validation:  ValidationFail,
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.MaxAttempts > 0 {
		c.MaxAttempts = source.MaxAttempts
	}
	if source.Validation != "" {
		c.Validation = source.Validation
	}
}

// Validate reports an unknown validation policy.
func (c *Config) Validate() error {
	switch c.Validation {
	case "", ValidationFail, ValidationAbsorb:
		return nil
	}
	return fmt.Errorf("unknown validation policy %q (valid: fail, absorb)", c.Validation)
}
