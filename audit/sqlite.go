package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/tailored-agentic-units/scout/core/protocol"
)

// SQLiteSink stores transcripts in the audit_messages table, one row per
// message keyed by (session_id, seq).
type SQLiteSink struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteSink opens the database at dbPath and creates the schema on
// first use.
func NewSQLiteSink(dbPath string) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open audit database: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &SQLiteSink{db: db, now: time.Now}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate audit schema: %w", err)
	}

	return s, nil
}

func (s *SQLiteSink) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS audit_messages (
		session_id   TEXT NOT NULL,
		seq          INTEGER NOT NULL,
		role         TEXT NOT NULL,
		content      TEXT NOT NULL,
		tool_name    TEXT,
		tool_call_id TEXT,
		tool_calls   TEXT,
		recorded_at  TEXT NOT NULL,
		PRIMARY KEY (session_id, seq)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Write replaces the stored rows for sessionID inside one transaction.
// Messages that were already stored keep their original recorded_at.
func (s *SQLiteSink) Write(ctx context.Context, sessionID string, messages []protocol.Message) error {
	if sessionID == "" {
		return ErrEmptySessionID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %v", ErrWriteFailed, err)
	}
	defer tx.Rollback()

	recorded := make(map[int]string)
	rows, err := tx.QueryContext(ctx, `SELECT seq, recorded_at FROM audit_messages WHERE session_id = ?`, sessionID)
	if err != nil {
		return fmt.Errorf("%w: query: %v", ErrWriteFailed, err)
	}
	for rows.Next() {
		var seq int
		var at string
		if err := rows.Scan(&seq, &at); err != nil {
			rows.Close()
			return fmt.Errorf("%w: scan: %v", ErrWriteFailed, err)
		}
		recorded[seq] = at
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("%w: query: %v", ErrWriteFailed, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM audit_messages WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("%w: delete: %v", ErrWriteFailed, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO audit_messages (session_id, seq, role, content, tool_name, tool_call_id, tool_calls, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("%w: prepare: %v", ErrWriteFailed, err)
	}
	defer stmt.Close()

	now := s.now().UTC().Format(time.RFC3339Nano)
	for i, m := range messages {
		var calls sql.NullString
		if len(m.ToolCalls) > 0 {
			data, err := json.Marshal(m.ToolCalls)
			if err != nil {
				return fmt.Errorf("%w: encode tool calls: %v", ErrWriteFailed, err)
			}
			calls = sql.NullString{String: string(data), Valid: true}
		}

		at, ok := recorded[i]
		if !ok {
			at = now
		}

		if _, err := stmt.ExecContext(ctx, sessionID, i, string(m.Role), m.Content,
			nullString(m.ToolName), nullString(m.ToolCallID), calls, at); err != nil {
			return fmt.Errorf("%w: insert: %v", ErrWriteFailed, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", ErrWriteFailed, err)
	}
	return nil
}

// Messages loads the stored transcript for sessionID in order.
func (s *SQLiteSink) Messages(ctx context.Context, sessionID string) ([]protocol.Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT role, content, tool_name, tool_call_id, tool_calls
		FROM audit_messages WHERE session_id = ? ORDER BY seq`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query audit messages: %w", err)
	}
	defer rows.Close()

	var messages []protocol.Message
	for rows.Next() {
		var (
			m                      protocol.Message
			role                   string
			toolName, callID, call sql.NullString
		)
		if err := rows.Scan(&role, &m.Content, &toolName, &callID, &call); err != nil {
			return nil, fmt.Errorf("scan audit message: %w", err)
		}
		m.Role = protocol.Role(role)
		m.ToolName = toolName.String
		m.ToolCallID = callID.String
		if call.Valid {
			if err := json.Unmarshal([]byte(call.String), &m.ToolCalls); err != nil {
				return nil, fmt.Errorf("decode tool calls: %w", err)
			}
		}
		messages = append(messages, m)
	}

	return messages, rows.Err()
}

// Close closes the database connection.
func (s *SQLiteSink) Close() error {
	return s.db.Close()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
