// Package enroll registers the client public key with the server's
// enrollment endpoint before a connection is attempted.
package enroll

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/yllada/vpn-client/common"
)

// Client posts public keys to an enrollment URL.
type Client struct {
	http *http.Client
	log  common.Logger
}

// NewClient creates a client whose requests time out after
// common.EnrollTimeout.
func NewClient(logger common.Logger) *Client {
	return &Client{
		http: &http.Client{Timeout: common.EnrollTimeout},
		log:  common.LoggerOrDefault(logger),
	}
}

// Enroll sends pubKey (base64) as a text/plain body. Any non-2xx status or
// transport error wraps common.ErrEnrollmentFailed.
func (c *Client) Enroll(ctx context.Context, url, pubKey string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(pubKey))
	if err != nil {
		return fmt.Errorf("invalid enrollment URL %q: %v: %w", url, err, common.ErrEnrollmentFailed)
	}
	req.Header.Set("Content-Type", "text/plain")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("POST %s: %v: %w", url, err, common.ErrEnrollmentFailed)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("server answered %s: %s: %w", resp.Status, strings.TrimSpace(string(body)), common.ErrEnrollmentFailed)
	}

	c.log.Info("Enrolled public key with %s", url)
	return nil
}
