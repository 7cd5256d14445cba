package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParseFlags(t *testing.T) {
	o, err := parseFlags([]string{"-provider", "openai", "-search", "none", "-max-iterations", "-1", "-prompt", "hi"}, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("parseFlags failed: %v", err)
	}

	cfg, err := loadConfig(o)
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}

	if cfg.Agent.Provider != "openai" {
		t.Errorf("got provider %q, want openai", cfg.Agent.Provider)
	}
	if cfg.Search.Provider != "none" {
		t.Errorf("got search %q, want none", cfg.Search.Provider)
	}
	if cfg.MaxIterations != -1 {
		t.Errorf("got MaxIterations %d, want -1", cfg.MaxIterations)
	}
	if cfg.SystemPrompt != "You are a helpful CLI research agent." {
		t.Errorf("got SystemPrompt %q, want default", cfg.SystemPrompt)
	}
}

func TestParseFlags_UnexpectedArgs(t *testing.T) {
	if _, err := parseFlags([]string{"stray"}, &bytes.Buffer{}); err == nil {
		t.Fatal("expected error for positional argument, got nil")
	}
}

func TestOpenLogFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	now := time.Date(2026, 3, 4, 5, 6, 7, 0, time.Local)

	w, closeLog := openLogFile(dir, now, &bytes.Buffer{})
	if _, err := w.Write([]byte("entry\n")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	closeLog()

	data, err := os.ReadFile(filepath.Join(dir, "log_2026-03-04_05-06-07.txt"))
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "entry\n" {
		t.Errorf("got %q, want %q", data, "entry\n")
	}
}

func TestOpenLogFile_Fallback(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	var fallback bytes.Buffer
	w, closeLog := openLogFile(filepath.Join(blocker, "logs"), time.Now(), &fallback)
	defer closeLog()

	if w != &fallback {
		t.Error("expected fallback writer")
	}
	if !strings.Contains(fallback.String(), "logging to stderr") {
		t.Errorf("got %q, want a fallback notice", fallback.String())
	}
}

func TestRun_Version(t *testing.T) {
	var out bytes.Buffer
	if err := run(context.Background(), strings.NewReader(""), &out, &out, []string{"-version"}); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !strings.HasPrefix(out.String(), "scout ") {
		t.Errorf("got %q", out.String())
	}
}

func TestRun_Prompt(t *testing.T) {
	var out, errOut bytes.Buffer
	args := []string{"-prompt", "expo sqlite", "-log-dir", t.TempDir()}

	if err := run(context.Background(), strings.NewReader(""), &out, &errOut, args); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !strings.HasPrefix(out.String(), "Here are the search results:\n") {
		t.Errorf("got %q", out.String())
	}
}

func TestRun_BadLogLevel(t *testing.T) {
	var out bytes.Buffer
	if err := run(context.Background(), strings.NewReader(""), &out, &out, []string{"-log-level", "loud"}); err == nil {
		t.Fatal("expected error for unknown log level, got nil")
	}
}

func TestRun_ShowTools(t *testing.T) {
	var out, errOut bytes.Buffer
	args := []string{"-prompt", "expo sqlite", "-show-tools", "-log-dir", t.TempDir()}

	if err := run(context.Background(), strings.NewReader(""), &out, &errOut, args); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !strings.Contains(errOut.String(), "[tool] web_search ok (attempts: 1)") {
		t.Errorf("got stderr %q", errOut.String())
	}
}
