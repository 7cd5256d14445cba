package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/tailored-agentic-units/scout/observability"
	"github.com/tailored-agentic-units/scout/retry"
)

const (
	EventToolRetry     observability.EventType = "tools.retry"
	EventToolExhausted observability.EventType = "tools.exhausted"
)

// Outcome is the result of one tool invocation. Value is the tool's output
// on success or a Failure once every attempt has failed.
type Outcome struct {
	Value    any
	Failed   bool
	Attempts int
}

// Engine validates and executes tool calls with bounded immediate retry.
type Engine struct {
	observer observability.Observer
}

// NewEngine creates an Engine reporting retries to observer. A nil observer
// discards events.
func NewEngine(observer observability.Observer) *Engine {
	return &Engine{observer: observability.OrNoOp(observer)}
}

// Invoke parses raw against desc's schema and executes desc up to
// maxAttempts times. A parse failure is returned as *ValidationError without
// executing. Exhausted retries are absorbed into a Failure value with a nil
// error. Cancellation of ctx is returned as an error.
func (e *Engine) Invoke(ctx context.Context, desc Descriptor, raw, callID string, maxAttempts int) (Outcome, error) {
	input, err := desc.Schema.Parse(raw)
	if err != nil {
		var ve *ValidationError
		if !errors.As(err, &ve) {
			ve = &ValidationError{Err: err}
		}
		if ve.Tool == "" {
			ve.Tool = desc.Name
		}
		return Outcome{}, ve
	}

	policy := retry.Policy{
		MaxAttempts: maxAttempts,
		OnRetry: func(attempt int, err error) {
			e.observer.OnEvent(ctx, observability.NewEvent(
				EventToolRetry,
				observability.LevelWarning,
				"tools.Engine",
				map[string]any{
					"tool":    desc.Name,
					"call_id": callID,
					"attempt": attempt,
					"error":   err.Error(),
				},
			))
		},
	}

	out, attempts, err := retry.Do(ctx, policy, func(ctx context.Context) (any, error) {
		return desc.Execute(ctx, input)
	})
	if err == nil {
		return Outcome{Value: out, Attempts: attempts}, nil
	}

	var exhausted *retry.ExhaustedError
	if !errors.As(err, &exhausted) {
		return Outcome{Attempts: attempts}, err
	}

	msg := fmt.Sprintf("%s failed after %d attempts: %v", desc.Name, exhausted.Attempts, exhausted.Err)
	e.observer.OnEvent(ctx, observability.NewEvent(
		EventToolExhausted,
		observability.LevelError,
		"tools.Engine",
		map[string]any{
			"tool":     desc.Name,
			"call_id":  callID,
			"attempts": exhausted.Attempts,
			"error":    exhausted.Err.Error(),
		},
	))

	return Outcome{
		Value:    Failure{Error: msg},
		Failed:   true,
		Attempts: exhausted.Attempts,
	}, nil
}
