package keyring

import (
	"errors"
	"testing"

	"github.com/zalando/go-keyring"
)

func TestStore_RoundTrip(t *testing.T) {
	keyring.MockInit()
	s := New()

	if _, err := s.Get("wg-client"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get() before Store() error = %v, want ErrNotFound", err)
	}

	if err := s.Store("wg-client", "secret-key"); err != nil {
		t.Fatalf("Store() error = %v", err)
	}

	got, err := s.Get("wg-client")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != "secret-key" {
		t.Errorf("Get() = %q, want secret-key", got)
	}

	if err := s.Store("wg-client", "rotated-key"); err != nil {
		t.Fatalf("second Store() error = %v", err)
	}
	if got, _ := s.Get("wg-client"); got != "rotated-key" {
		t.Errorf("Get() after overwrite = %q, want rotated-key", got)
	}
}

func TestStore_Validation(t *testing.T) {
	keyring.MockInit()
	s := New()

	if err := s.Store("", "x"); err == nil {
		t.Error("Store() with empty account should fail")
	}
	if err := s.Store("wg0", ""); err == nil {
		t.Error("Store() with empty secret should fail")
	}
	if _, err := s.Get(""); err == nil {
		t.Error("Get() with empty account should fail")
	}
}

func TestStore_Unavailable(t *testing.T) {
	keyring.MockInitWithError(errors.New("dbus: no session bus"))
	s := New()

	if err := s.Store("wg0", "x"); !errors.Is(err, ErrUnavailable) {
		t.Errorf("Store() error = %v, want ErrUnavailable", err)
	}
	if _, err := s.Get("wg0"); !errors.Is(err, ErrUnavailable) {
		t.Errorf("Get() error = %v, want ErrUnavailable", err)
	}
}
