package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tailored-agentic-units/scout/buildinfo"
	"github.com/tailored-agentic-units/scout/core/protocol"
)

// errExit is returned by the /exit handler to end the REPL.
var errExit = errors.New("exit requested")

// conversation is the part of the kernel the slash commands touch.
type conversation interface {
	Clear() error
	History() []protocol.Message
	ToolNames() []string
	SessionID() string
}

// CommandContext is passed to command handlers.
type CommandContext struct {
	Conversation conversation
	Out          io.Writer
}

// CommandHandler runs one slash command.
type CommandHandler func(ctx context.Context, cc CommandContext) error

// CommandRegistry maps slash command names to handlers.
type CommandRegistry struct {
	commands map[string]CommandHandler
}

// NewCommandRegistry creates a registry holding the built-in commands.
func NewCommandRegistry() *CommandRegistry {
	r := &CommandRegistry{commands: make(map[string]CommandHandler)}
	r.Register("/exit", exitCommand)
	r.Register("/clear", clearCommand)
	r.Register("/help", helpCommand)
	r.Register("/info", infoCommand)
	return r
}

// Register adds or replaces the handler for name.
func (r *CommandRegistry) Register(name string, h CommandHandler) {
	r.commands[name] = h
}

// IsCommand reports whether input is a slash command.
func (r *CommandRegistry) IsCommand(input string) bool {
	return strings.HasPrefix(input, "/")
}

// Parse returns the command name: the first space-separated word.
func (r *CommandRegistry) Parse(input string) string {
	name, _, _ := strings.Cut(strings.TrimSpace(input), " ")
	return name
}

// Execute runs the named command. An unknown name prints a hint and
// reports false.
func (r *CommandRegistry) Execute(ctx context.Context, name string, cc CommandContext) (bool, error) {
	h, ok := r.commands[name]
	if !ok {
		fmt.Fprintf(cc.Out, "Command not recognized: %s\n", name)
		fmt.Fprintln(cc.Out, "Type /help to see available commands.")
		return false, nil
	}
	return true, h(ctx, cc)
}

func exitCommand(_ context.Context, cc CommandContext) error {
	fmt.Fprintln(cc.Out, "Goodbye!")
	return errExit
}

func clearCommand(_ context.Context, cc CommandContext) error {
	if err := cc.Conversation.Clear(); err != nil {
		return err
	}
	fmt.Fprintln(cc.Out, "Conversation history cleared.")
	return nil
}

func helpCommand(_ context.Context, cc CommandContext) error {
	fmt.Fprint(cc.Out, `
Available commands:
  /exit  - Exit the CLI
  /clear - Clear conversation history
  /help  - Show this help message
  /info  - Show session information

`)
	return nil
}

func infoCommand(_ context.Context, cc CommandContext) error {
	toolNames := "none"
	if names := cc.Conversation.ToolNames(); len(names) > 0 {
		toolNames = strings.Join(names, ", ")
	}

	fmt.Fprintf(cc.Out, `
Session Info:
  Session: %s
  Messages in history: %d
  Tools available: %s
  Version: %s

`, cc.Conversation.SessionID(), len(cc.Conversation.History()), toolNames, buildinfo.Version)
	return nil
}
