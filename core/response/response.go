// Package response models what a model backend returns for one turn: either
// a batch of tool-call requests or a final textual answer.
package response

import (
	"errors"

	"github.com/tailored-agentic-units/scout/core/protocol"
)

// ErrEmptyChoices is returned when a chat-completion body carries no choices.
var ErrEmptyChoices = errors.New("response has no choices")

// Kind discriminates the two variants of Response.
type Kind string

const (
	KindToolCallBatch Kind = "tool_call_batch"
	KindFinal         Kind = "final"
)

// Response is a tagged union. When Kind is KindToolCallBatch, ToolCalls holds
// at least one request and Content is ignored. When Kind is KindFinal,
// Content holds the answer text.
type Response struct {
	Kind      Kind                `json:"kind"`
	ToolCalls []protocol.ToolCall `json:"tool_calls,omitempty"`
	Content   string              `json:"content,omitempty"`
	Usage     *TokenUsage         `json:"usage,omitempty"`
}

// NewFinal returns a final-answer response.
func NewFinal(content string) *Response {
	return &Response{Kind: KindFinal, Content: content}
}

// NewToolCallBatch returns a response requesting the given tool calls in
// order. A batch must contain at least one call, so an empty argument list
// yields a Final with empty content.
func NewToolCallBatch(calls ...protocol.ToolCall) *Response {
	if len(calls) == 0 {
		return NewFinal("")
	}
	return &Response{
		Kind:      KindToolCallBatch,
		ToolCalls: append([]protocol.ToolCall(nil), calls...),
	}
}

// IsFinal reports whether r is a final answer.
func (r *Response) IsFinal() bool {
	return r.Kind == KindFinal
}

// TokenUsage reports token consumption for one model call.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens,omitempty"`
	TotalTokens      int `json:"total_tokens"`
}
