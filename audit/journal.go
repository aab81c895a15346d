// Package audit keeps the append-only session journal written next to the
// client configuration. Each line records one lifecycle milestone:
//
//	2026-01-02T03:04:05Z [session-id] event: message
package audit

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Journal events.
const (
	EventStart      = "start"
	EventConnected  = "connected"
	EventTelemetry  = "telemetry"
	EventTimeout    = "handshake-timeout"
	EventProbe      = "probe-failed"
	EventFailed     = "failed"
	EventStopped    = "stopped"
	EventDisconnect = "disconnect"
)

// Journal appends milestone lines to a file. The file is opened on first
// write.
type Journal struct {
	path string
	mu   sync.Mutex
	file *os.File
	now  func() time.Time
}

// New creates a journal writing to path.
func New(path string) *Journal {
	return &Journal{
		path: strings.TrimSpace(path),
		now:  time.Now,
	}
}

// Record appends one line. Newlines in message are flattened so every
// entry stays on a single line.
func (j *Journal) Record(sessionID, event, message string) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if err := j.ensureFileLocked(); err != nil {
		return err
	}
	message = strings.ReplaceAll(strings.TrimSpace(message), "\n", " ")
	line := fmt.Sprintf(
		"%s [%s] %s: %s\n",
		j.now().UTC().Format(time.RFC3339),
		sessionID,
		event,
		message,
	)
	_, err := j.file.WriteString(line)
	return err
}

// Close closes the journal file descriptor.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.file == nil {
		return nil
	}
	err := j.file.Close()
	j.file = nil
	return err
}

func (j *Journal) ensureFileLocked() error {
	if j.file != nil {
		return nil
	}
	if j.path == "" {
		return fmt.Errorf("journal path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(j.path), 0o700); err != nil {
		return err
	}
	file, err := os.OpenFile(j.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	j.file = file
	return nil
}
