package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/tailored-agentic-units/scout/core/protocol"
	"github.com/tailored-agentic-units/scout/kernel"
)

// fakeConversation records slash-command and run calls.
type fakeConversation struct {
	history  []protocol.Message
	tools    []string
	cleared  int
	clearErr error
	inputs   []string
	reply    func(input string) (*kernel.Result, error)
}

func (f *fakeConversation) Clear() error {
	f.cleared++
	if f.clearErr != nil {
		return f.clearErr
	}
	f.history = f.history[:1]
	return nil
}

func (f *fakeConversation) History() []protocol.Message { return f.history }
func (f *fakeConversation) ToolNames() []string         { return f.tools }
func (f *fakeConversation) SessionID() string           { return "session-1" }

func (f *fakeConversation) Run(_ context.Context, input string) (*kernel.Result, error) {
	f.inputs = append(f.inputs, input)
	if f.reply != nil {
		return f.reply(input)
	}
	return &kernel.Result{Response: "echo: " + input}, nil
}

func newFakeConversation() *fakeConversation {
	return &fakeConversation{
		history: []protocol.Message{
			protocol.NewMessage(protocol.RoleSystem, "sys"),
			protocol.NewMessage(protocol.RoleUser, "hi"),
			protocol.NewMessage(protocol.RoleAssistant, "hello"),
		},
		tools: []string{"web_search", "get_datetime"},
	}
}

func TestCommandRegistry_Parse(t *testing.T) {
	r := NewCommandRegistry()

	tests := []struct {
		input     string
		isCommand bool
		name      string
	}{
		{"/help", true, "/help"},
		{"/info extra args", true, "/info"},
		{"hello /help", false, "hello"},
		{"  /exit", false, "/exit"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := r.IsCommand(tt.input); got != tt.isCommand {
				t.Errorf("IsCommand(%q) = %v, want %v", tt.input, got, tt.isCommand)
			}
			if got := r.Parse(tt.input); got != tt.name {
				t.Errorf("Parse(%q) = %q, want %q", tt.input, got, tt.name)
			}
		})
	}
}

func TestCommands(t *testing.T) {
	tests := []struct {
		name     string
		command  string
		wantOut  []string
		wantErr  error
		wantKnow bool
	}{
		{"exit", "/exit", []string{"Goodbye!"}, errExit, true},
		{"clear", "/clear", []string{"Conversation history cleared."}, nil, true},
		{"help", "/help", []string{"Available commands:", "/exit  - Exit the CLI", "/info  - Show session information"}, nil, true},
		{"info", "/info", []string{"Messages in history: 3", "Tools available: web_search, get_datetime", "Session: session-1"}, nil, true},
		{"unknown", "/bogus", []string{"Command not recognized: /bogus", "Type /help to see available commands."}, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			conv := newFakeConversation()

			known, err := NewCommandRegistry().Execute(context.Background(), tt.command, CommandContext{Conversation: conv, Out: &out})

			if known != tt.wantKnow {
				t.Errorf("known = %v, want %v", known, tt.wantKnow)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("got error %v, want %v", err, tt.wantErr)
			}
			for _, want := range tt.wantOut {
				if !strings.Contains(out.String(), want) {
					t.Errorf("output %q missing %q", out.String(), want)
				}
			}
		})
	}
}

func TestInfoCommand_NoTools(t *testing.T) {
	var out bytes.Buffer
	conv := newFakeConversation()
	conv.tools = nil

	if err := infoCommand(context.Background(), CommandContext{Conversation: conv, Out: &out}); err != nil {
		t.Fatalf("infoCommand failed: %v", err)
	}
	if !strings.Contains(out.String(), "Tools available: none") {
		t.Errorf("got %q, want tools listed as none", out.String())
	}
}

func TestClearCommand_Error(t *testing.T) {
	var out bytes.Buffer
	conv := newFakeConversation()
	conv.clearErr = errors.New("no system prompt")

	if err := clearCommand(context.Background(), CommandContext{Conversation: conv, Out: &out}); err == nil {
		t.Fatal("expected error, got nil")
	}
	if strings.Contains(out.String(), "cleared") {
		t.Errorf("reported success on failure: %q", out.String())
	}
}
