// Package kernel implements the single-agent orchestration loop that
// composes a model backend, a tool registry, and a conversation session
// into the ask/act/repeat cycle.
//
// The kernel initializes from configuration via New, creating every
// subsystem not supplied through an option.
//
//	k, err := kernel.New(&cfg)
//	result, err := k.Run(ctx, "How do SQLite migrations work in Expo?")
package kernel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tailored-agentic-units/scout/agent"
	"github.com/tailored-agentic-units/scout/agent/providers"
	"github.com/tailored-agentic-units/scout/audit"
	"github.com/tailored-agentic-units/scout/core/protocol"
	"github.com/tailored-agentic-units/scout/observability"
	"github.com/tailored-agentic-units/scout/search"
	"github.com/tailored-agentic-units/scout/session"
	"github.com/tailored-agentic-units/scout/tools"
)

// apologyPrefix opens every terminal reply produced for a failed run.
const apologyPrefix = "I'm sorry, I encountered an error while processing your request. "

// Result holds the outcome of a kernel Run invocation.
type Result struct {
	Response   string           // Final text response from the agent.
	Iterations int              // Number of model turns taken.
	ToolCalls  []ToolCallRecord // Log of all tool invocations.
}

// ToolCallRecord describes one tool call requested during a Run and the
// result sent back to the model.
type ToolCallRecord struct {
	protocol.ToolCall
	Iteration int    // Model turn in which the call was requested.
	Result    string // Serialized tool-result content.
	IsError   bool   // Whether the result reports a failure.
	Attempts  int    // Execution attempts made; zero when nothing ran.
}

// Option configures a Kernel before config-driven initialization fills in
// the remaining subsystems.
type Option func(*Kernel)

// WithAgent overrides the config-created model backend.
func WithAgent(a agent.Agent) Option {
	return func(k *Kernel) { k.agent = a }
}

// WithRegistry overrides the provider registry used to create the agent.
func WithRegistry(r *agent.Registry) Option {
	return func(k *Kernel) { k.registry = r }
}

// WithSession overrides the config-created session.
func WithSession(s session.Session) Option {
	return func(k *Kernel) { k.session = s }
}

// WithTools overrides the built-in tool registry.
func WithTools(r *tools.Registry) Option {
	return func(k *Kernel) { k.tools = r }
}

// WithAuditSink overrides the config-created audit sink.
func WithAuditSink(s audit.Sink) Option {
	return func(k *Kernel) { k.audit = s }
}

// WithObserver overrides the default SlogObserver.
func WithObserver(o observability.Observer) Option {
	return func(k *Kernel) { k.observer = o }
}

// Kernel is the single-agent runtime that executes the orchestration loop.
// A Kernel is not safe for concurrent Run calls.
type Kernel struct {
	agent         agent.Agent
	registry      *agent.Registry
	client        *agent.Client
	session       session.Session
	tools         *tools.Registry
	engine        *tools.Engine
	audit         audit.Sink
	observer      observability.Observer
	maxIterations int
	toolAttempts  int
	validation    tools.ValidationPolicy
}

// New creates a Kernel from configuration. Options are applied first; any
// subsystem they leave unset is initialized from its config section.
func New(cfg *Config, opts ...Option) (*Kernel, error) {
	if err := cfg.Tools.Validate(); err != nil {
		return nil, fmt.Errorf("invalid tools config: %w", err)
	}

	k := &Kernel{
		maxIterations: cfg.MaxIterations,
		toolAttempts:  cfg.Tools.MaxAttempts,
		validation:    cfg.Tools.Validation,
	}

	for _, opt := range opts {
		opt(k)
	}

	if k.observer == nil {
		k.observer = observability.NewSlogObserver(slog.Default())
	}

	if k.agent == nil {
		if k.registry == nil {
			k.registry = providers.Default()
		}
		a, err := k.registry.New(&cfg.Agent)
		if err != nil {
			return nil, fmt.Errorf("failed to create agent: %w", err)
		}
		k.agent = a
	}

	if k.session == nil {
		sesh, err := session.New(&cfg.Session, cfg.SystemPrompt)
		if err != nil {
			return nil, fmt.Errorf("failed to create session: %w", err)
		}
		k.session = sesh
	}

	if k.tools == nil {
		reg, err := builtinTools(cfg, k.observer)
		if err != nil {
			return nil, fmt.Errorf("failed to create tools: %w", err)
		}
		k.tools = reg
	}

	if k.audit == nil {
		sink, err := audit.Open(&cfg.Audit)
		if err != nil {
			return nil, fmt.Errorf("failed to create audit sink: %w", err)
		}
		k.audit = sink
	}

	k.client = agent.NewClient(k.agent, cfg.Agent.MaxAttempts, k.observer)
	k.engine = tools.NewEngine(k.observer)

	return k, nil
}

func builtinTools(cfg *Config, observer observability.Observer) (*tools.Registry, error) {
	var descs []tools.Descriptor

	if cfg.Search.Enabled() {
		mgr, err := search.New(&cfg.Search, nil, observer)
		if err != nil {
			return nil, err
		}
		descs = append(descs, search.WebSearch(mgr))
	}
	descs = append(descs, tools.DateTime(nil))

	return tools.NewRegistry(descs...)
}

// Run executes the orchestration loop for one user input and returns once
// the model produces a final answer. Model failures surviving every retry
// end the run with an apology reply and a nil error. A positive iteration
// budget that runs out ends the run with an apology reply and
// ErrMaxIterations. Argument validation failures are returned as
// *tools.ValidationError unless the absorb policy is configured. When a
// run stops inside a tool batch, the failing call and every call after it
// receive error results first, so the session stays valid for the next Run.
//
// The complete audit log is handed to the audit sink whenever Run returns.
func (k *Kernel) Run(ctx context.Context, input string) (result *Result, err error) {
	if strings.TrimSpace(input) == "" {
		return nil, ErrEmptyInput
	}

	result = &Result{}
	defer func() { k.finish(ctx, result, err) }()

	k.session.Append(protocol.NewMessage(protocol.RoleUser, input))
	toolset := k.tools.Tools()

	k.observer.OnEvent(ctx, observability.NewEvent(EventRunStart, observability.LevelInfo, "kernel.Run", map[string]any{
		"session_id":     k.session.ID(),
		"input_length":   len(input),
		"max_iterations": k.maxIterations,
		"tools":          len(toolset),
	}))

	for iteration := 0; k.maxIterations <= 0 || iteration < k.maxIterations; iteration++ {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		k.observer.OnEvent(ctx, observability.NewEvent(EventIterationStart, observability.LevelVerbose, "kernel.Run", map[string]any{
			"iteration": iteration + 1,
		}))

		resp, err := k.client.Invoke(ctx, k.session.Snapshot(), toolset)
		result.Iterations = iteration + 1
		if err != nil {
			var failure *agent.Failure
			if !errors.As(err, &failure) {
				return result, err
			}
			k.respond(ctx, result, apologyPrefix+failure.Error())
			return result, nil
		}

		if resp.IsFinal() {
			k.respond(ctx, result, resp.Content)
			return result, nil
		}

		k.session.Append(protocol.Message{
			Role:      protocol.RoleAssistant,
			ToolCalls: resp.ToolCalls,
		})

		for i, tc := range resp.ToolCalls {
			record, err := k.dispatch(ctx, iteration+1, tc)
			if err != nil {
				k.observer.OnEvent(ctx, observability.NewEvent(EventError, observability.LevelError, "kernel.Run", map[string]any{
					"iteration": iteration + 1,
					"tool":      tc.Name,
					"error":     err.Error(),
				}))
				k.abandon(resp.ToolCalls[i:], err)
				return result, err
			}
			result.ToolCalls = append(result.ToolCalls, record)
		}
	}

	k.observer.OnEvent(ctx, observability.NewEvent(EventError, observability.LevelWarning, "kernel.Run", map[string]any{
		"error":      ErrMaxIterations.Error(),
		"iterations": k.maxIterations,
	}))

	k.respond(ctx, result, fmt.Sprintf("%sstopped after %d model turns without a final answer", apologyPrefix, k.maxIterations))
	return result, ErrMaxIterations
}

// respond records content as the final assistant reply of the run.
func (k *Kernel) respond(ctx context.Context, result *Result, content string) {
	k.session.Append(protocol.NewMessage(protocol.RoleAssistant, content))
	result.Response = content

	k.observer.OnEvent(ctx, observability.NewEvent(EventResponse, observability.LevelInfo, "kernel.Run", map[string]any{
		"iteration":       result.Iterations,
		"response_length": len(content),
		"tool_calls":      len(result.ToolCalls),
	}))
}

// dispatch runs one requested tool call and appends its tool-result
// message. The returned error ends the run.
func (k *Kernel) dispatch(ctx context.Context, iteration int, tc protocol.ToolCall) (ToolCallRecord, error) {
	record := ToolCallRecord{ToolCall: tc, Iteration: iteration}

	k.observer.OnEvent(ctx, observability.NewEvent(EventToolCall, observability.LevelVerbose, "kernel.Run", map[string]any{
		"iteration": iteration,
		"name":      tc.Name,
		"call_id":   tc.ID,
	}))

	var value any
	desc, ok := k.tools.Get(tc.Name)
	if !ok {
		value = tools.Failure{Error: fmt.Sprintf("%v: %s", tools.ErrNotFound, tc.Name)}
		record.IsError = true
	} else {
		out, err := k.engine.Invoke(ctx, desc, tc.Arguments, tc.ID, k.toolAttempts)
		record.Attempts = out.Attempts

		var verr *tools.ValidationError
		switch {
		case err == nil:
			value = out.Value
			record.IsError = out.Failed
		case errors.As(err, &verr) && k.validation == tools.ValidationAbsorb:
			value = tools.Failure{Error: verr.Error()}
			record.IsError = true
		default:
			return record, err
		}
	}

	record.Result = encodeResult(value)
	k.session.Append(protocol.NewToolResult(tc.Name, tc.ID, record.Result))

	k.observer.OnEvent(ctx, observability.NewEvent(EventToolComplete, observability.LevelVerbose, "kernel.Run", map[string]any{
		"iteration": iteration,
		"name":      tc.Name,
		"call_id":   tc.ID,
		"attempts":  record.Attempts,
		"error":     record.IsError,
	}))

	return record, nil
}

// abandon appends an error tool result for the call that stopped the run
// and for every call after it, so the session never holds a tool request
// without its result.
func (k *Kernel) abandon(calls []protocol.ToolCall, cause error) {
	for i, tc := range calls {
		msg := cause.Error()
		if i > 0 {
			msg = fmt.Sprintf("not executed: run stopped at %s", calls[0].Name)
		}
		k.session.Append(protocol.NewToolResult(tc.Name, tc.ID, encodeResult(tools.Failure{Error: msg})))
	}
}

func encodeResult(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		data, _ = json.Marshal(tools.Failure{Error: fmt.Sprintf("encode tool result: %v", err)})
	}
	return string(data)
}

// finish hands the audit log to the sink and reports the run outcome.
// Sink failures are reported and dropped.
func (k *Kernel) finish(ctx context.Context, result *Result, runErr error) {
	ctx = context.WithoutCancel(ctx)

	if k.audit != nil {
		if err := k.audit.Write(ctx, k.session.ID(), k.session.History()); err != nil {
			k.observer.OnEvent(ctx, observability.NewEvent(EventAuditError, observability.LevelWarning, "kernel.Run", map[string]any{
				"session_id": k.session.ID(),
				"error":      err.Error(),
			}))
		}
	}

	data := map[string]any{
		"session_id": k.session.ID(),
		"iterations": result.Iterations,
		"tool_calls": len(result.ToolCalls),
	}
	if runErr != nil {
		data["error"] = runErr.Error()
	}
	k.observer.OnEvent(ctx, observability.NewEvent(EventRunComplete, observability.LevelInfo, "kernel.Run", data))
}

// Clear resets the conversation to its system prompt.
func (k *Kernel) Clear() error {
	return k.session.Clear()
}

// History returns a copy of the full audit log of the session.
func (k *Kernel) History() []protocol.Message {
	return k.session.History()
}

// ToolNames returns the names of the tools offered to the model.
func (k *Kernel) ToolNames() []string {
	return k.tools.Names()
}

// SessionID returns the identifier of the kernel's session.
func (k *Kernel) SessionID() string {
	return k.session.ID()
}

// Close releases the audit sink.
func (k *Kernel) Close() error {
	if k.audit == nil {
		return nil
	}
	return k.audit.Close()
}
