package session

import (
	"sync"

	"github.com/google/uuid"
	"github.com/tailored-agentic-units/scout/core/protocol"
)

type memorySession struct {
	id         string
	system     protocol.Message
	hasSystem  bool
	windowSize int

	mu      sync.RWMutex
	window  []protocol.Message
	history []protocol.Message
}

// NewMemorySession creates a Session backed by in-memory slices. The session
// is assigned a unique UUIDv7 identifier. An empty systemPrompt leaves the
// window unanchored; windowSize values below 1 fall back to
// DefaultWindowSize.
func NewMemorySession(systemPrompt string, windowSize int) Session {
	if windowSize < 1 {
		windowSize = DefaultWindowSize
	}

	s := &memorySession{
		id:         uuid.Must(uuid.NewV7()).String(),
		windowSize: windowSize,
	}

	if systemPrompt != "" {
		s.system = protocol.NewMessage(protocol.RoleSystem, systemPrompt)
		s.hasSystem = true
		s.window = []protocol.Message{s.system}
		s.history = []protocol.Message{s.system}
	}

	return s
}

func (s *memorySession) ID() string {
	return s.id
}

func (s *memorySession) SystemPrompt() protocol.Message {
	return s.system
}

func (s *memorySession) Append(msg protocol.Message) {
	msg = msg.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.window = append(s.window, msg)
	s.history = append(s.history, msg)

	if msg.Role == protocol.RoleUser {
		s.trim()
	}
}

// trim keeps the system prompt plus at most the last windowSize messages.
// Tool results left at the front of the cut lost their assistant request,
// so they are evicted as well. Survivors keep their relative order. Caller
// holds s.mu.
func (s *memorySession) trim() {
	head := 0
	if s.hasSystem {
		head = 1
	}

	tail := s.window[head:]
	if len(tail) <= s.windowSize {
		return
	}

	start := len(tail) - s.windowSize
	for start < len(tail) && tail[start].Role == protocol.RoleTool {
		start++
	}

	trimmed := make([]protocol.Message, 0, head+len(tail)-start)
	trimmed = append(trimmed, s.window[:head]...)
	trimmed = append(trimmed, tail[start:]...)
	s.window = trimmed
}

func (s *memorySession) Snapshot() []protocol.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneMessages(s.window)
}

func (s *memorySession) History() []protocol.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneMessages(s.history)
}

func (s *memorySession) Clear() error {
	if !s.hasSystem {
		return ErrNoSystemPrompt
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.window = []protocol.Message{s.system}
	s.history = []protocol.Message{s.system}
	return nil
}

func cloneMessages(msgs []protocol.Message) []protocol.Message {
	copied := make([]protocol.Message, len(msgs))
	for i, msg := range msgs {
		copied[i] = msg.Clone()
	}
	return copied
}
