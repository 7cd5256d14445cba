package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tailored-agentic-units/scout/kernel"
)

// runner is the kernel surface the REPL drives.
type runner interface {
	conversation
	Run(ctx context.Context, input string) (*kernel.Result, error)
}

// REPL is the interactive read-eval-print loop.
type REPL struct {
	agent    runner
	commands *CommandRegistry
	in       io.Reader
	out      io.Writer
	errOut   io.Writer
}

// NewREPL creates a REPL reading lines from in.
func NewREPL(agent runner, in io.Reader, out, errOut io.Writer) *REPL {
	return &REPL{
		agent:    agent,
		commands: NewCommandRegistry(),
		in:       in,
		out:      out,
		errOut:   errOut,
	}
}

// Start runs until /exit, end of input, or cancellation of ctx.
func (r *REPL) Start(ctx context.Context) error {
	fmt.Fprintln(r.out, "Chat started. Type /help for commands or /exit to quit.")
	fmt.Fprintln(r.out)

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		fmt.Fprint(r.out, "You: ")

		var input string
		select {
		case <-ctx.Done():
			fmt.Fprintln(r.out, "\nGoodbye!")
			return nil
		case line, ok := <-lines:
			if !ok {
				fmt.Fprintln(r.out, "\nGoodbye!")
				return nil
			}
			input = line
		}

		if strings.TrimSpace(input) == "" {
			continue
		}

		if r.commands.IsCommand(input) {
			cc := CommandContext{Conversation: r.agent, Out: r.out}
			if _, err := r.commands.Execute(ctx, r.commands.Parse(input), cc); err != nil {
				if errors.Is(err, errExit) {
					return nil
				}
				fmt.Fprintf(r.errOut, "Error: %v\n", err)
			}
			continue
		}

		r.ask(ctx, input)
	}
}

func (r *REPL) ask(ctx context.Context, input string) {
	showThinking(r.out)

	result, err := r.agent.Run(ctx, input)
	if err != nil && (result == nil || result.Response == "") {
		clearLine(r.out)
		fmt.Fprintf(r.errOut, "Error: %v\n", err)
		return
	}

	showAgentResponse(r.out, result.Response)
}

// showThinking writes the thinking indicator on the current line.
func showThinking(w io.Writer) {
	fmt.Fprint(w, "Agent: thinking...")
}

// clearLine erases the current terminal line.
func clearLine(w io.Writer) {
	fmt.Fprint(w, "\r\x1b[K")
}

func showAgentResponse(w io.Writer, text string) {
	clearLine(w)
	fmt.Fprintf(w, "Agent: %s\n", text)
}
