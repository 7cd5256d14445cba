package main

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/tailored-agentic-units/scout/kernel"
	"github.com/tailored-agentic-units/scout/observability"
)

// progressObserver prints one line per finished tool call so an
// interactive user can follow what the agent is doing.
type progressObserver struct {
	mu sync.Mutex
	w  io.Writer
}

func newProgressObserver(w io.Writer) *progressObserver {
	return &progressObserver{w: w}
}

func (p *progressObserver) OnEvent(_ context.Context, event observability.Event) {
	if event.Type != kernel.EventToolComplete {
		return
	}

	status := "ok"
	if failed, _ := event.Data["error"].(bool); failed {
		status = "failed"
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, "  [tool] %v %s (attempts: %v)\n", event.Data["name"], status, event.Data["attempts"])
}
