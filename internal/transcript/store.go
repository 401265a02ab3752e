// Package transcript logs the conversation and tool-call history of
// sessions an example agent has handled, for offline inspection. This is
// bookkeeping only: the ACP protocol itself is stateless across
// connections, and nothing here is consulted by session/load — an agent
// resumes a session purely from its own internal memory of it, per the
// protocol's session persistence non-goal.
package transcript

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/agentclientprotocol/acp-go/acp"

	_ "modernc.org/sqlite"
)

// Message is one turn of conversation recorded for a session.
type Message struct {
	Role      acp.Role
	Content   string
	Timestamp time.Time
}

// ToolCallRecord is a snapshot of one tool call's final state.
type ToolCallRecord struct {
	ID        string
	Title     string
	Kind      string
	Status    string
	Timestamp time.Time
}

// Store persists session transcripts to a SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the SQLite database at path and
// ensures its schema exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("transcript: open %s: %w", path, err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS sessions (
			id         TEXT PRIMARY KEY,
			cwd        TEXT NOT NULL,
			created_at DATETIME NOT NULL
		);
		CREATE TABLE IF NOT EXISTS messages (
			session_id TEXT NOT NULL,
			role       TEXT NOT NULL,
			content    TEXT NOT NULL,
			created_at DATETIME NOT NULL
		);
		CREATE TABLE IF NOT EXISTS tool_calls (
			session_id TEXT NOT NULL,
			tool_call_id TEXT NOT NULL,
			title      TEXT NOT NULL,
			kind       TEXT NOT NULL,
			status     TEXT NOT NULL,
			updated_at DATETIME NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("transcript: migrate: %w", err)
	}
	return nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// CreateSession records the start of a new session.
func (s *Store) CreateSession(ctx context.Context, id acp.SessionID, cwd string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, cwd, created_at) VALUES (?, ?, ?)`,
		string(id), cwd, time.Now())
	return err
}

// AddMessage appends a message to a session's transcript.
func (s *Store) AddMessage(ctx context.Context, id acp.SessionID, msg Message) error {
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (session_id, role, content, created_at) VALUES (?, ?, ?, ?)`,
		string(id), string(msg.Role), msg.Content, msg.Timestamp)
	return err
}

// UpsertToolCall records or updates a tool call's latest known state.
func (s *Store) UpsertToolCall(ctx context.Context, id acp.SessionID, tc ToolCallRecord) error {
	if tc.Timestamp.IsZero() {
		tc.Timestamp = time.Now()
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE tool_calls SET title = ?, kind = ?, status = ?, updated_at = ?
		 WHERE session_id = ? AND tool_call_id = ?`,
		tc.Title, tc.Kind, tc.Status, tc.Timestamp, string(id), tc.ID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		return nil
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO tool_calls (session_id, tool_call_id, title, kind, status, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		string(id), tc.ID, tc.Title, tc.Kind, tc.Status, tc.Timestamp)
	return err
}

// Messages returns every recorded message for a session, oldest first.
func (s *Store) Messages(ctx context.Context, id acp.SessionID) ([]Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT role, content, created_at FROM messages WHERE session_id = ? ORDER BY rowid`, string(id))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		var m Message
		var role string
		if err := rows.Scan(&role, &m.Content, &m.Timestamp); err != nil {
			return nil, err
		}
		m.Role = acp.Role(role)
		out = append(out, m)
	}
	return out, rows.Err()
}
