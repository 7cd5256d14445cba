package providers

import "github.com/tailored-agentic-units/scout/core/protocol"

// ChatRequest is the body of an OpenAI-compatible /chat/completions call
// that offers tools.
type ChatRequest struct {
	Model      string        `json:"model"`
	Messages   []ChatMessage `json:"messages"`
	Tools      []ChatTool    `json:"tools,omitempty"`
	ToolChoice string        `json:"tool_choice,omitempty"`
	MaxTokens  int           `json:"max_tokens,omitempty"`
}

// ChatMessage is one transcript entry in OpenAI wire form.
type ChatMessage struct {
	Role       string              `json:"role"`
	Content    string              `json:"content"`
	ToolCallID string              `json:"tool_call_id,omitempty"`
	ToolCalls  []protocol.ToolCall `json:"tool_calls,omitempty"`
}

// ChatTool wraps a tool projection in the function envelope.
type ChatTool struct {
	Type     string        `json:"type"`
	Function protocol.Tool `json:"function"`
}

// NewChatRequest converts a transcript and tool list into a request body.
// tool_choice is only sent when tools are offered.
func NewChatRequest(model string, maxTokens int, messages []protocol.Message, tools []protocol.Tool) ChatRequest {
	req := ChatRequest{
		Model:     model,
		Messages:  make([]ChatMessage, 0, len(messages)),
		MaxTokens: maxTokens,
	}

	for _, m := range messages {
		req.Messages = append(req.Messages, ChatMessage{
			Role:       string(m.Role),
			Content:    m.Content,
			ToolCallID: m.ToolCallID,
			ToolCalls:  m.ToolCalls,
		})
	}

	if len(tools) > 0 {
		req.Tools = make([]ChatTool, 0, len(tools))
		for _, t := range tools {
			req.Tools = append(req.Tools, ChatTool{Type: "function", Function: t})
		}
		req.ToolChoice = "auto"
	}

	return req
}
