// Package mock provides offline model capabilities: a scripted agent for
// tests, a research demo that always searches, and an agent that always
// fails.
package mock

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/tailored-agentic-units/scout/core/protocol"
	"github.com/tailored-agentic-units/scout/core/response"
)

// ErrSimulatedFailure is returned by every Failing call.
var ErrSimulatedFailure = errors.New("simulated model failure")

// ErrScriptExhausted is returned by Scripted once its queue is empty.
var ErrScriptExhausted = errors.New("scripted agent has no more steps")

// Step is one scripted reply. When Err is set it is returned instead of
// Response.
type Step struct {
	Response *response.Response
	Err      error
}

// Scripted replays queued steps in order and records every transcript it
// receives.
type Scripted struct {
	mu    sync.Mutex
	steps []Step
	seen  [][]protocol.Message
	tools [][]protocol.Tool
	calls atomic.Int32
}

// NewScripted creates a Scripted agent with the given steps.
func NewScripted(steps ...Step) *Scripted {
	return &Scripted{steps: steps}
}

// Reply returns a step producing resp.
func Reply(resp *response.Response) Step {
	return Step{Response: resp}
}

// Fail returns a step producing err.
func Fail(err error) Step {
	return Step{Err: err}
}

// Push appends steps to the queue.
func (s *Scripted) Push(steps ...Step) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.steps = append(s.steps, steps...)
}

func (s *Scripted) Chat(ctx context.Context, messages []protocol.Message, tools []protocol.Tool) (*response.Response, error) {
	s.calls.Add(1)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.seen = append(s.seen, append([]protocol.Message(nil), messages...))
	s.tools = append(s.tools, append([]protocol.Tool(nil), tools...))

	if len(s.steps) == 0 {
		return nil, ErrScriptExhausted
	}

	step := s.steps[0]
	s.steps = s.steps[1:]
	if step.Err != nil {
		return nil, step.Err
	}
	return step.Response, nil
}

// Calls returns how many times Chat was called.
func (s *Scripted) Calls() int {
	return int(s.calls.Load())
}

// Transcripts returns the message window received on each call.
func (s *Scripted) Transcripts() [][]protocol.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]protocol.Message(nil), s.seen...)
}

// Tools returns the tool list received on each call.
func (s *Scripted) Tools() [][]protocol.Tool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]protocol.Tool(nil), s.tools...)
}

// Research imitates a model that always consults web_search: a trailing
// user message becomes a search for its content, and a trailing tool
// message becomes the final answer.
type Research struct {
	// ToolName is the tool requested for user messages. Defaults to
	// web_search.
	ToolName string
}

// NewResearch creates a Research agent requesting web_search.
func NewResearch() *Research {
	return &Research{ToolName: "web_search"}
}

func (r *Research) Chat(ctx context.Context, messages []protocol.Message, tools []protocol.Tool) (*response.Response, error) {
	if len(messages) == 0 {
		return nil, errors.New("mock: empty transcript")
	}

	last := messages[len(messages)-1]
	switch last.Role {
	case protocol.RoleUser:
		args, err := json.Marshal(map[string]string{"query": last.Content})
		if err != nil {
			return nil, err
		}

		name := r.ToolName
		if name == "" {
			name = "web_search"
		}
		return response.NewToolCallBatch(
			protocol.NewToolCall("mock_call_"+uuid.Must(uuid.NewV7()).String(), name, string(args)),
		), nil

	case protocol.RoleTool:
		return response.NewFinal("Here are the search results:\n" + last.Content), nil
	}

	return nil, fmt.Errorf("mock: unhandled state (last role %q)", last.Role)
}

// Failing fails every call with ErrSimulatedFailure.
type Failing struct {
	calls atomic.Int32
}

func (f *Failing) Chat(ctx context.Context, messages []protocol.Message, tools []protocol.Tool) (*response.Response, error) {
	f.calls.Add(1)
	return nil, ErrSimulatedFailure
}

// Calls returns how many times Chat was called.
func (f *Failing) Calls() int {
	return int(f.calls.Load())
}
