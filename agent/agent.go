// Package agent defines the model capability consumed by the orchestration
// loop and the retrying client that wraps it.
package agent

import (
	"context"

	"github.com/tailored-agentic-units/scout/core/protocol"
	"github.com/tailored-agentic-units/scout/core/response"
)

// Agent turns a transcript and the available tools into either a batch of
// tool-call requests or a final answer. Implementations report transport,
// authentication and malformed-response conditions as errors.
type Agent interface {
	Chat(ctx context.Context, messages []protocol.Message, tools []protocol.Tool) (*response.Response, error)
}

// Func adapts an ordinary function to the Agent interface.
type Func func(ctx context.Context, messages []protocol.Message, tools []protocol.Tool) (*response.Response, error)

func (f Func) Chat(ctx context.Context, messages []protocol.Message, tools []protocol.Tool) (*response.Response, error) {
	return f(ctx, messages, tools)
}
