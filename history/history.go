// Package history records one row per connect run in a SQLite database
// next to the client configuration. The status command reads it back.
package history

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// Outcome is the terminal result of a session.
type Outcome string

const (
	OutcomeRunning          Outcome = "running"
	OutcomeStopped          Outcome = "stopped"
	OutcomeHandshakeTimeout Outcome = "handshake-timeout"
	OutcomeProbeFailed      Outcome = "connectivity-failed"
	OutcomeFailed           Outcome = "failed"
)

// Session is one connect run.
type Session struct {
	ID        string
	Interface string
	Endpoint  string
	Mode      string
	StartedAt time.Time
	// EndedAt is zero while the session is running.
	EndedAt time.Time
	Outcome Outcome
	Error   string
	TxBytes int64
	RxBytes int64
}

// Duration returns how long the session lasted, or has lasted so far.
func (s Session) Duration() time.Duration {
	if s.EndedAt.IsZero() {
		return time.Since(s.StartedAt)
	}
	return s.EndedAt.Sub(s.StartedAt)
}

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
    id         TEXT    PRIMARY KEY,
    interface  TEXT    NOT NULL,
    endpoint   TEXT    NOT NULL DEFAULT '',
    mode       TEXT    NOT NULL DEFAULT '',
    started_at INTEGER NOT NULL,
    ended_at   INTEGER NOT NULL DEFAULT 0,
    outcome    TEXT    NOT NULL,
    error      TEXT    NOT NULL DEFAULT '',
    tx_bytes   INTEGER NOT NULL DEFAULT 0,
    rx_bytes   INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_sessions_started
    ON sessions (started_at);
`

// Store persists sessions.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and runs the migration.
// Use ":memory:" for an in-memory database.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if path != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, err
		}
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func migrate(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Start inserts a running session.
func (s *Store) Start(ctx context.Context, sess Session) error {
	if sess.ID == "" {
		return errors.New("session id is required")
	}
	if sess.Outcome == "" {
		sess.Outcome = OutcomeRunning
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, interface, endpoint, mode, started_at, outcome) VALUES (?, ?, ?, ?, ?, ?)`,
		sess.ID, sess.Interface, sess.Endpoint, sess.Mode, sess.StartedAt.Unix(), string(sess.Outcome),
	)
	return err
}

// Finish stores the terminal outcome and counters of a session.
func (s *Store) Finish(ctx context.Context, sess Session) error {
	ended := sess.EndedAt
	if ended.IsZero() {
		ended = time.Now()
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET ended_at = ?, outcome = ?, error = ?, tx_bytes = ?, rx_bytes = ? WHERE id = ?`,
		ended.Unix(), string(sess.Outcome), sess.Error, sess.TxBytes, sess.RxBytes, sess.ID,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Recent returns up to limit sessions, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Session, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, interface, endpoint, mode, started_at, ended_at, outcome, error, tx_bytes, rx_bytes
		   FROM sessions ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		var (
			sess           Session
			started, ended int64
			outcome        string
		)
		if err := rows.Scan(&sess.ID, &sess.Interface, &sess.Endpoint, &sess.Mode,
			&started, &ended, &outcome, &sess.Error, &sess.TxBytes, &sess.RxBytes); err != nil {
			return nil, err
		}
		sess.StartedAt = time.Unix(started, 0)
		if ended > 0 {
			sess.EndedAt = time.Unix(ended, 0)
		}
		sess.Outcome = Outcome(outcome)
		out = append(out, sess)
	}
	return out, rows.Err()
}
