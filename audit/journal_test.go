package audit

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestJournalAppendsFormattedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vpn-client.log")
	j := New(path)
	defer j.Close()
	j.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }

	if err := j.Record("abc-123", EventStart, "connecting wg-client"); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if err := j.Record("abc-123", EventTimeout, "no handshake\nafter 20s"); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	lines := strings.Split(strings.TrimSuffix(string(content), "\n"), "\n")
	want := []string{
		"2026-03-01T12:00:00Z [abc-123] start: connecting wg-client",
		"2026-03-01T12:00:00Z [abc-123] handshake-timeout: no handshake after 20s",
	}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d: %q", len(lines), len(want), content)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestJournalAppendsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "vpn-client.log")

	first := New(path)
	if err := first.Record("s1", EventStopped, "done"); err != nil {
		t.Fatal(err)
	}
	first.Close()

	second := New(path)
	if err := second.Record("s2", EventStart, "again"); err != nil {
		t.Fatal(err)
	}
	second.Close()

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(content), "[s1] stopped: done") || !strings.Contains(string(content), "[s2] start: again") {
		t.Fatalf("journal should keep both sessions: %q", content)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("journal permissions = %o, want 600", perm)
	}
}

func TestJournalEmptyPath(t *testing.T) {
	j := New("  ")
	if err := j.Record("s", EventStart, "x"); err == nil {
		t.Fatal("Record with empty path should fail")
	}
}
