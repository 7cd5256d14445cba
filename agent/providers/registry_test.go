package providers_test

import (
	"slices"
	"testing"

	"github.com/tailored-agentic-units/scout/agent"
	"github.com/tailored-agentic-units/scout/agent/mock"
	"github.com/tailored-agentic-units/scout/agent/providers"
)

func TestDefault(t *testing.T) {
	r := providers.Default()

	if got := r.Names(); !slices.Equal(got, []string{"anthropic", "error", "mock", "openai"}) {
		t.Errorf("Names() = %v", got)
	}

	tests := []struct {
		provider string
		check    func(agent.Agent) bool
	}{
		{"mock", func(a agent.Agent) bool { _, ok := a.(*mock.Research); return ok }},
		{"error", func(a agent.Agent) bool { _, ok := a.(*mock.Failing); return ok }},
		{"openai", func(a agent.Agent) bool { _, ok := a.(*providers.OpenAI); return ok }},
		{"anthropic", func(a agent.Agent) bool { _, ok := a.(*providers.Anthropic); return ok }},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			cfg := agent.DefaultConfig()
			cfg.Provider = tt.provider
			cfg.APIKey = "test-key"

			a, err := r.New(&cfg)
			if err != nil {
				t.Fatalf("New(%q) failed: %v", tt.provider, err)
			}
			if !tt.check(a) {
				t.Errorf("New(%q) returned %T", tt.provider, a)
			}
		})
	}
}
