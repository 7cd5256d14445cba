package providers

import (
	"github.com/tailored-agentic-units/scout/agent"
	"github.com/tailored-agentic-units/scout/agent/mock"
)

// Default returns a registry holding every built-in backend:
//
//	mock       research demo that always searches
//	error      fails every call
//	openai     OpenAI-compatible /chat/completions
//	anthropic  Anthropic Messages API
func Default() *agent.Registry {
	r := agent.NewRegistry()

	_ = r.Register("mock", func(*agent.Config) (agent.Agent, error) {
		return mock.NewResearch(), nil
	})
	_ = r.Register("error", func(*agent.Config) (agent.Agent, error) {
		return &mock.Failing{}, nil
	})
	_ = r.Register("openai", func(cfg *agent.Config) (agent.Agent, error) {
		return NewOpenAI(cfg, nil)
	})
	_ = r.Register("anthropic", func(cfg *agent.Config) (agent.Agent, error) {
		return NewAnthropic(cfg, nil), nil
	})

	return r
}
