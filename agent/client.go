package agent

import (
	"context"
	"errors"

	"github.com/tailored-agentic-units/scout/core/protocol"
	"github.com/tailored-agentic-units/scout/core/response"
	"github.com/tailored-agentic-units/scout/observability"
	"github.com/tailored-agentic-units/scout/retry"
)

const (
	EventModelRetry  observability.EventType = "agent.retry"
	EventModelFailed observability.EventType = "agent.failed"
)

// Client wraps an Agent with bounded immediate retry.
type Client struct {
	agent       Agent
	maxAttempts int
	observer    observability.Observer
}

// NewClient creates a Client calling a up to maxAttempts times per Invoke.
// Values below 1 mean a single attempt. A nil observer discards events.
func NewClient(a Agent, maxAttempts int, observer observability.Observer) *Client {
	return &Client{
		agent:       a,
		maxAttempts: maxAttempts,
		observer:    observability.OrNoOp(observer),
	}
}

// Invoke sends messages and tools to the agent. Once every attempt fails it
// returns a *Failure carrying the attempt count and the last error. A nil
// response counts as a failed attempt. Cancellation of ctx is returned as
// the context error.
func (c *Client) Invoke(ctx context.Context, messages []protocol.Message, tools []protocol.Tool) (*response.Response, error) {
	policy := retry.Policy{
		MaxAttempts: c.maxAttempts,
		OnRetry: func(attempt int, err error) {
			c.observer.OnEvent(ctx, observability.NewEvent(
				EventModelRetry,
				observability.LevelWarning,
				"agent.Client",
				map[string]any{"attempt": attempt, "error": err.Error()},
			))
		},
	}

	resp, _, err := retry.Do(ctx, policy, func(ctx context.Context) (*response.Response, error) {
		resp, err := c.agent.Chat(ctx, messages, tools)
		if err != nil {
			return nil, err
		}
		if resp == nil {
			return nil, ErrNilResponse
		}
		return resp, nil
	})
	if err == nil {
		return resp, nil
	}

	var exhausted *retry.ExhaustedError
	if !errors.As(err, &exhausted) {
		return nil, err
	}

	c.observer.OnEvent(ctx, observability.NewEvent(
		EventModelFailed,
		observability.LevelError,
		"agent.Client",
		map[string]any{"attempts": exhausted.Attempts, "error": exhausted.Err.Error()},
	))

	return nil, &Failure{Attempts: exhausted.Attempts, Err: exhausted.Err}
}
