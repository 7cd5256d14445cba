package kernel

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tailored-agentic-units/scout/agent"
	"github.com/tailored-agentic-units/scout/audit"
	"github.com/tailored-agentic-units/scout/search"
	"github.com/tailored-agentic-units/scout/session"
	"github.com/tailored-agentic-units/scout/tools"
)

const (
	defaultMaxIterations = 10

	// DefaultSystemPrompt opens every new conversation.
	DefaultSystemPrompt = "You are a helpful CLI research agent."
)

// Config holds initialization parameters for all kernel subsystems.
// Each subsystem section delegates to that subsystem's config-driven constructor.
//
// MaxIterations bounds model turns per Run. Zero in a loaded file keeps the
// default; a negative value removes the bound.
type Config struct {
	Agent         agent.Config   `json:"agent" yaml:"agent"`
	Session       session.Config `json:"session" yaml:"session"`
	Tools         tools.Config   `json:"tools" yaml:"tools"`
	Search        search.Config  `json:"search" yaml:"search"`
	Audit         audit.Config   `json:"audit" yaml:"audit"`
	MaxIterations int            `json:"max_iterations,omitempty" yaml:"max_iterations,omitempty"`
	SystemPrompt  string         `json:"system_prompt,omitempty" yaml:"system_prompt,omitempty"`
	LogLevel      string         `json:"log_level,omitempty" yaml:"log_level,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults for all subsystems.
func DefaultConfig() Config {
	return Config{
		Agent:         agent.DefaultConfig(),
		Session:       session.DefaultConfig(),
		Tools:         tools.DefaultConfig(),
		Search:        search.DefaultConfig(),
		Audit:         audit.DefaultConfig(),
		MaxIterations: defaultMaxIterations,
		SystemPrompt:  DefaultSystemPrompt,
		LogLevel:      "info",
	}
}

// Merge applies non-zero values from source into c, delegating to each
// subsystem's Merge method.
func (c *Config) Merge(source *Config) {
	c.Agent.Merge(&source.Agent)
	c.Session.Merge(&source.Session)
	c.Tools.Merge(&source.Tools)
	c.Search.Merge(&source.Search)
	c.Audit.Merge(&source.Audit)

	if source.MaxIterations != 0 {
		c.MaxIterations = source.MaxIterations
	}
	if source.SystemPrompt != "" {
		c.SystemPrompt = source.SystemPrompt
	}
	if source.LogLevel != "" {
		c.LogLevel = source.LogLevel
	}
}

// LoadConfig reads a config file, merges it with defaults, and returns the
// resulting Config. Files ending in .yaml or .yml are parsed as YAML, all
// others as JSON. ${VAR} references are expanded from the environment
// before parsing.
func LoadConfig(filename string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	data = []byte(os.ExpandEnv(string(data)))

	var loaded Config
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &loaded)
	default:
		err = json.Unmarshal(data, &loaded)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.Merge(&loaded)
	return &cfg, nil
}
