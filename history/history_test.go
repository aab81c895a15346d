package history

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func TestOpen_InMemory(t *testing.T) {
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:) error: %v", err)
	}
	defer s.Close()

	var name string
	err = s.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='sessions'").Scan(&name)
	if err != nil {
		t.Fatalf("sessions table not found: %v", err)
	}

	if err := migrate(s.db); err != nil {
		t.Fatalf("second migrate failed: %v", err)
	}
}

func TestStore_StartFinishRecent(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "vpn-client.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()
	ctx := context.Background()

	base := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	first := Session{ID: "one", Interface: "wg-client", Endpoint: "127.0.0.1:51820", Mode: "split", StartedAt: base}
	second := Session{ID: "two", Interface: "wg-client", Mode: "full", StartedAt: base.Add(time.Hour)}

	for _, sess := range []Session{first, second} {
		if err := s.Start(ctx, sess); err != nil {
			t.Fatalf("Start(%s): %v", sess.ID, err)
		}
	}

	first.Outcome = OutcomeHandshakeTimeout
	first.Error = "handshake timeout"
	first.EndedAt = base.Add(20 * time.Second)
	if err := s.Finish(ctx, first); err != nil {
		t.Fatalf("Finish: %v", err)
	}

	got, err := s.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Recent returned %d sessions, want 2", len(got))
	}
	if got[0].ID != "two" || got[0].Outcome != OutcomeRunning || !got[0].EndedAt.IsZero() {
		t.Errorf("newest session = %+v, want running session two", got[0])
	}
	if got[1].Outcome != OutcomeHandshakeTimeout || got[1].Duration() != 20*time.Second {
		t.Errorf("finished session = %+v", got[1])
	}
	if got[1].Endpoint != "127.0.0.1:51820" || got[1].Error != "handshake timeout" {
		t.Errorf("finished session fields = %+v", got[1])
	}

	limited, err := s.Recent(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 1 {
		t.Errorf("Recent(1) returned %d sessions", len(limited))
	}
}

func TestStore_FinishUnknownSession(t *testing.T) {
	s, err := Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	err = s.Finish(context.Background(), Session{ID: "missing", Outcome: OutcomeStopped})
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("Finish error = %v, want sql.ErrNoRows", err)
	}
}

func TestStore_StartRequiresID(t *testing.T) {
	s, err := Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	if err := s.Start(context.Background(), Session{}); err == nil {
		t.Error("Start without id should fail")
	}
}
