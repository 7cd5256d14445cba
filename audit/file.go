package audit

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tailored-agentic-units/scout/core/protocol"
)

// FileSink keeps one transcript file per session under a directory.
type FileSink struct {
	root string
}

// NewFileSink creates a Sink that writes <root>/<sessionID>.txt. The
// directory is created on first write.
func NewFileSink(root string) *FileSink {
	return &FileSink{root: root}
}

// Path returns the transcript file for sessionID.
func (s *FileSink) Path(sessionID string) string {
	return filepath.Join(s.root, sessionID+".txt")
}

// Write atomically replaces the session transcript: the new content goes
// to a temp file in the same directory, which is then renamed over the
// old one.
func (s *FileSink) Write(ctx context.Context, sessionID string, messages []protocol.Message) error {
	if sessionID == "" {
		return ErrEmptySessionID
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrWriteFailed, sessionID, err)
	}

	tmp, err := os.CreateTemp(s.root, ".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrWriteFailed, sessionID, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(Format(sessionID, messages)); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: %s: %v", ErrWriteFailed, sessionID, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %s: %v", ErrWriteFailed, sessionID, err)
	}

	if err := os.Rename(tmpName, s.Path(sessionID)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %s: %v", ErrWriteFailed, sessionID, err)
	}

	return nil
}

// Close is a no-op; every Write is complete on return.
func (s *FileSink) Close() error { return nil }
