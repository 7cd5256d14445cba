// Package session holds the conversation state for one agent: a bounded
// active window sent to the model and an unbounded audit history that
// mirrors every message ever appended.
package session

import (
	"errors"

	"github.com/tailored-agentic-units/scout/core/protocol"
)

// ErrNoSystemPrompt is returned by Clear when the session was built without
// a system prompt.
var ErrNoSystemPrompt = errors.New("session has no system prompt")

// Session holds an ordered sequence of conversation messages. Implementations
// must be safe for concurrent use.
type Session interface {
	// ID returns the unique session identifier.
	ID() string
	// SystemPrompt returns the system message the window is anchored on.
	SystemPrompt() protocol.Message
	// Append adds msg to both the active window and the history. After a
	// user-role append the window is trimmed to the system prompt plus the
	// most recent window-size messages.
	Append(msg protocol.Message)
	// Snapshot returns a defensive copy of the active window.
	Snapshot() []protocol.Message
	// History returns a defensive copy of every message appended since the
	// last Clear.
	History() []protocol.Message
	// Clear resets both sequences to the system prompt alone.
	Clear() error
}
