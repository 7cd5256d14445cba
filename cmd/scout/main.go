// Command scout is an interactive research assistant: a single agent that
// answers questions by calling tools such as web search until it has a
// final answer.
//
//	scout                          interactive chat
//	scout -prompt "2+2?"           one question, then exit
//	scout -serve :8080             Connect RPC server, one kernel per session
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/tailored-agentic-units/scout/buildinfo"
	"github.com/tailored-agentic-units/scout/kernel"
	"github.com/tailored-agentic-units/scout/observability"
	"github.com/tailored-agentic-units/scout/server"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Stdin, os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
}

type options struct {
	configFile    string
	provider      string
	model         string
	searchEngine  string
	systemPrompt  string
	maxIterations int
	auditPath     string
	logLevel      string
	logDir        string
	prompt        string
	serve         string
	maxSessions   int
	showTools     bool
	version       bool
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("scout", flag.ContinueOnError)
	fs.SetOutput(stderr)

	o := &options{}
	fs.StringVar(&o.configFile, "config", "", "Path to config file (.json, .yaml or .yml)")
	fs.StringVar(&o.provider, "provider", "", "Model backend: mock, error, openai, anthropic (overrides config)")
	fs.StringVar(&o.model, "model", "", "Model name (overrides config)")
	fs.StringVar(&o.searchEngine, "search", "", "Search provider: fake, error, searxng, brave, google, none (overrides config)")
	fs.StringVar(&o.systemPrompt, "system-prompt", "", "System prompt (overrides config)")
	fs.IntVar(&o.maxIterations, "max-iterations", 0, "Maximum model turns per question; negative for unlimited (overrides config)")
	fs.StringVar(&o.auditPath, "audit", "", "Audit transcript directory or SQLite file (overrides config)")
	fs.StringVar(&o.logLevel, "log-level", "", "Log level: trace, debug, info, warn, error (overrides config)")
	fs.StringVar(&o.logDir, "log-dir", "logs", "Directory for the session log file")
	fs.StringVar(&o.prompt, "prompt", "", "Ask one question and exit")
	fs.StringVar(&o.serve, "serve", "", "Serve the RPC API on this address instead of chatting")
	fs.IntVar(&o.maxSessions, "max-sessions", server.DefaultMaxSessions, "Live session limit for -serve; idle sessions are evicted past it")
	fs.BoolVar(&o.showTools, "show-tools", false, "Print a line to stderr for each finished tool call")
	fs.BoolVar(&o.version, "version", false, "Print version and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	return o, nil
}

func loadConfig(o *options) (*kernel.Config, error) {
	cfg := kernel.DefaultConfig()
	if o.configFile != "" {
		loaded, err := kernel.LoadConfig(o.configFile)
		if err != nil {
			return nil, err
		}
		cfg = *loaded
	}

	cfg.Merge(&kernel.Config{
		MaxIterations: o.maxIterations,
		SystemPrompt:  o.systemPrompt,
		LogLevel:      o.logLevel,
	})
	if o.provider != "" {
		cfg.Agent.Provider = o.provider
	}
	if o.model != "" {
		cfg.Agent.Model = o.model
	}
	if o.searchEngine != "" {
		cfg.Search.Provider = o.searchEngine
	}
	if o.auditPath != "" {
		cfg.Audit.Path = o.auditPath
	}

	return &cfg, nil
}

func run(ctx context.Context, stdin io.Reader, stdout, stderr io.Writer, args []string) error {
	o, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	if o.version {
		fmt.Fprintln(stdout, buildinfo.String())
		return nil
	}

	cfg, err := loadConfig(o)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	level, err := observability.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}

	logOut, closeLog := openLogFile(o.logDir, time.Now(), stderr)
	defer closeLog()

	logger := observability.NewTextLogger(logOut, level)
	slog.SetDefault(logger)
	logger.Info("starting", "version", buildinfo.Version, "provider", cfg.Agent.Provider, "search", cfg.Search.Provider)

	var observer observability.Observer = observability.NewSlogObserver(logger)
	if o.showTools {
		observer = observability.NewMultiObserver(observer, newProgressObserver(stderr))
	}

	newKernel := func() (*kernel.Kernel, error) {
		return kernel.New(cfg, kernel.WithObserver(observer))
	}

	if o.serve != "" {
		return serve(ctx, o.serve, server.New(newKernel, observer, server.WithMaxSessions(o.maxSessions)), logger)
	}

	k, err := newKernel()
	if err != nil {
		return fmt.Errorf("failed to create kernel: %w", err)
	}
	defer k.Close()

	if o.prompt != "" {
		result, err := k.Run(ctx, o.prompt)
		if result != nil && result.Response != "" {
			fmt.Fprintln(stdout, result.Response)
		}
		if err != nil {
			return fmt.Errorf("run failed: %w", err)
		}
		return nil
	}

	return NewREPL(k, stdin, stdout, stderr).Start(ctx)
}

// openLogFile creates <dir>/log_YYYY-MM-DD_HH-MM-SS.txt. When the file
// cannot be created, logs go to fallback instead.
func openLogFile(dir string, now time.Time, fallback io.Writer) (io.Writer, func()) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		fmt.Fprintf(fallback, "Failed to create log directory, logging to stderr: %v\n", err)
		return fallback, func() {}
	}

	path := filepath.Join(dir, "log_"+now.Format("2006-01-02_15-04-05")+".txt")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(fallback, "Failed to open log file, logging to stderr: %v\n", err)
		return fallback, func() {}
	}
	return f, func() { f.Close() }
}

func serve(ctx context.Context, addr string, srv *server.Server, logger *slog.Logger) error {
	defer srv.Close()

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("serving", "addr", addr, "service", server.ServiceName)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	}
}
