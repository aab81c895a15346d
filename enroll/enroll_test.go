package enroll

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/yllada/vpn-client/common"
)

const testPubKey = "hSDwCYkwp1R0i33ctD73Wg2/Og0mOBr066SpjqqbTmo="

func TestEnroll(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr bool
	}{
		{"ok", http.StatusOK, false},
		{"created", http.StatusCreated, false},
		{"no content", http.StatusNoContent, false},
		{"bad request", http.StatusBadRequest, true},
		{"server error", http.StatusInternalServerError, true},
		{"not modified", http.StatusNotModified, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotBody, gotType, gotMethod string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				b, _ := io.ReadAll(r.Body)
				gotBody = string(b)
				gotType = r.Header.Get("Content-Type")
				gotMethod = r.Method
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			err := NewClient(common.NopLogger{}).Enroll(context.Background(), srv.URL+"/enroll", testPubKey)
			if tt.wantErr {
				if !errors.Is(err, common.ErrEnrollmentFailed) {
					t.Fatalf("Enroll() error = %v, want ErrEnrollmentFailed", err)
				}
			} else if err != nil {
				t.Fatalf("Enroll() error = %v", err)
			}

			if gotMethod != http.MethodPost {
				t.Errorf("method = %s, want POST", gotMethod)
			}
			if gotType != "text/plain" {
				t.Errorf("Content-Type = %q, want text/plain", gotType)
			}
			if gotBody != testPubKey {
				t.Errorf("body = %q, want public key", gotBody)
			}
		})
	}
}

func TestEnroll_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	err := NewClient(common.NopLogger{}).Enroll(context.Background(), url, testPubKey)
	if !errors.Is(err, common.ErrEnrollmentFailed) {
		t.Errorf("Enroll() error = %v, want ErrEnrollmentFailed", err)
	}
}

func TestEnroll_BadURL(t *testing.T) {
	err := NewClient(common.NopLogger{}).Enroll(context.Background(), "://nope", testPubKey)
	if !errors.Is(err, common.ErrEnrollmentFailed) {
		t.Errorf("Enroll() error = %v, want ErrEnrollmentFailed", err)
	}
}
