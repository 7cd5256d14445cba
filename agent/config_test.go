package agent_test

import (
	"testing"
	"time"

	"github.com/tailored-agentic-units/scout/agent"
)

func TestDefaultConfig(t *testing.T) {
	cfg := agent.DefaultConfig()

	if cfg.Provider != "mock" {
		t.Errorf("got provider %q, want mock", cfg.Provider)
	}
	if cfg.MaxAttempts != 3 {
		t.Errorf("got max attempts %d, want 3", cfg.MaxAttempts)
	}
	if cfg.Timeout() != 60*time.Second {
		t.Errorf("got timeout %v, want 60s", cfg.Timeout())
	}
}

func TestConfig_Merge(t *testing.T) {
	cfg := agent.DefaultConfig()
	cfg.Merge(&agent.Config{
		Provider:    "openai",
		Model:       "gpt-4o-mini",
		BaseURL:     "http://localhost:11434/v1",
		APIKey:      "sk-test",
		MaxTokens:   256,
		MaxAttempts: 5,
	})

	want := agent.Config{
		Provider:       "openai",
		Model:          "gpt-4o-mini",
		BaseURL:        "http://localhost:11434/v1",
		APIKey:         "sk-test",
		MaxTokens:      256,
		MaxAttempts:    5,
		TimeoutSeconds: 60,
	}
	if cfg != want {
		t.Errorf("got %+v, want %+v", cfg, want)
	}

	cfg.Merge(&agent.Config{})
	if cfg != want {
		t.Errorf("zero merge changed config: %+v", cfg)
	}
}
