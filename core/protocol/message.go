// Package protocol defines the transcript types shared by every scout
// subsystem: messages, tool-call requests, and the wire projection of a tool.
package protocol

import "encoding/json"

// Role identifies the sender of a conversation message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Valid reports whether r is one of the four transcript roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant, RoleTool:
		return true
	}
	return false
}

// ToolCall is a single tool invocation requested by the model. Arguments is
// the serialized input exactly as the model produced it; it has not been
// validated against the tool's schema.
//
// Fields are flat for direct use across scout. UnmarshalJSON transparently
// handles the nested LLM API format (function.name, function.arguments) so
// provider responses decode correctly.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// NewToolCall creates a ToolCall from its three components.
func NewToolCall(id, name, arguments string) ToolCall {
	return ToolCall{ID: id, Name: name, Arguments: arguments}
}

// MarshalJSON serializes to the nested LLM API format ({id, type, function: {name, arguments}})
// ensuring round-trip fidelity with UnmarshalJSON for provider communication.
func (tc ToolCall) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID       string `json:"id"`
		Type     string `json:"type"`
		Function struct {
			Name      string `json:"name"`
			Arguments string `json:"arguments"`
		} `json:"function"`
	}{
		ID:   tc.ID,
		Type: "function",
		Function: struct {
			Name      string `json:"name"`
			Arguments string `json:"arguments"`
		}{
			Name:      tc.Name,
			Arguments: tc.Arguments,
		},
	})
}

// UnmarshalJSON accepts both the nested LLM API format and the flat format.
func (tc *ToolCall) UnmarshalJSON(data []byte) error {
	var nested struct {
		ID       string `json:"id"`
		Function struct {
			Name      string `json:"name"`
			Arguments string `json:"arguments"`
		} `json:"function"`
	}
	if err := json.Unmarshal(data, &nested); err != nil {
		return err
	}

	if nested.Function.Name != "" {
		tc.ID = nested.ID
		tc.Name = nested.Function.Name
		tc.Arguments = nested.Function.Arguments
		return nil
	}

	type plain ToolCall
	return json.Unmarshal(data, (*plain)(tc))
}

// Message is one transcript entry.
//
// Assistant messages that request tool execution carry ToolCalls and may
// have empty Content. Tool-result messages carry the ToolName that produced
// them and a ToolCallID correlating back to the request.
type Message struct {
	Role       Role       `json:"role"`
	Content    string     `json:"content"`
	ToolName   string     `json:"name,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
}

// NewMessage creates a Message with the given role and content.
// Use struct literals directly when setting tool call fields.
//
//	msg := protocol.NewMessage(protocol.RoleUser, "2+2?")
func NewMessage(role Role, content string) Message {
	return Message{Role: role, Content: content}
}

// NewToolResult creates a tool-result message correlated to callID.
func NewToolResult(toolName, callID, content string) Message {
	return Message{
		Role:       RoleTool,
		Content:    content,
		ToolName:   toolName,
		ToolCallID: callID,
	}
}

// Clone returns a copy of m that shares no slices with the original.
func (m Message) Clone() Message {
	if m.ToolCalls != nil {
		m.ToolCalls = append([]ToolCall(nil), m.ToolCalls...)
	}
	return m
}
