// Package audit persists conversation transcripts after every run. Writing
// is best-effort: the orchestration loop reports sink failures and carries
// on.
package audit

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tailored-agentic-units/scout/core/protocol"
)

// Sentinel errors for sink operations.
var (
	ErrEmptySessionID = errors.New("empty session id")
	ErrWriteFailed    = errors.New("audit write failed")
	ErrUnknownDriver  = errors.New("unknown audit driver")
)

// Sink receives the complete audit log of a session. Each Write replaces
// whatever the sink previously held for sessionID.
type Sink interface {
	Write(ctx context.Context, sessionID string, messages []protocol.Message) error
	Close() error
}

// Format renders messages as a numbered plain-text transcript.
//
//	[1] system: You are a helpful CLI research agent.
//	[2] user: Weather in Paris?
//	[3] assistant: -> get_weather (call_1) {"city":"Paris"}
//	[4] tool get_weather (call_1): {"temp":20}
func Format(sessionID string, messages []protocol.Message) string {
	var b strings.Builder
	fmt.Fprintf(&b, "session %s\n\n", sessionID)

	for i, m := range messages {
		fmt.Fprintf(&b, "[%d] %s", i+1, m.Role)
		if m.ToolName != "" {
			fmt.Fprintf(&b, " %s", m.ToolName)
		}
		if m.ToolCallID != "" {
			fmt.Fprintf(&b, " (%s)", m.ToolCallID)
		}
		b.WriteString(":")
		if m.Content != "" {
			b.WriteString(" ")
			b.WriteString(m.Content)
		}
		for _, tc := range m.ToolCalls {
			fmt.Fprintf(&b, "\n    -> %s (%s) %s", tc.Name, tc.ID, tc.Arguments)
		}
		b.WriteString("\n")
	}

	return b.String()
}
