package observability

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// SlogLevelTrace is a custom slog level below slog.LevelDebug used for
// wire-level payloads.
const SlogLevelTrace = slog.Level(-8)

// ParseLevel converts a case-insensitive string to a slog.Level.
//
// Accepted values:
//   - "trace" → SlogLevelTrace
//   - "debug" → slog.LevelDebug
//   - "info" or "" → slog.LevelInfo
//   - "warn" or "warning" → slog.LevelWarn
//   - "error" → slog.LevelError
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "trace":
		return SlogLevelTrace, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q (valid: trace, debug, info, warn, error)", s)
	}
}

// ReplaceLevelNames is a slog.HandlerOptions.ReplaceAttr function that
// renders SlogLevelTrace as "TRACE" instead of "DEBUG-4".
func ReplaceLevelNames(groups []string, a slog.Attr) slog.Attr {
	if a.Key == slog.LevelKey {
		level, ok := a.Value.Any().(slog.Level)
		if ok && level == SlogLevelTrace {
			a.Value = slog.StringValue("TRACE")
		}
	}
	return a
}

// NewTextLogger returns a text-handler logger writing to w at the given
// minimum level, with trace-level names rendered.
func NewTextLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: ReplaceLevelNames,
	}))
}
