package vpn

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/yllada/vpn-client/common"
	"github.com/yllada/vpn-client/tunnel"
)

// TelemetrySource reads per-peer telemetry of an interface.
type TelemetrySource interface {
	Telemetry(ctx context.Context, h tunnel.Handle) ([]tunnel.PeerTelemetry, error)
}

// WaitForHandshake polls src every interval until any peer reports a
// handshake. It returns common.ErrHandshakeTimeout once timeout elapses and
// common.ErrCancelled if ctx is cancelled first. Telemetry read errors count
// as "no handshake yet".
func WaitForHandshake(ctx context.Context, src TelemetrySource, h tunnel.Handle, timeout, interval time.Duration) error {
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if peers, err := src.Telemetry(waitCtx, h); err == nil && handshaken(peers) {
			return nil
		}

		select {
		case <-waitCtx.Done():
			if ctx.Err() != nil {
				return fmt.Errorf("waiting for handshake on %s: %w", h.Name, common.ErrCancelled)
			}
			return fmt.Errorf("no handshake on %s after %v: %w", h.Name, timeout, common.ErrHandshakeTimeout)
		case <-ticker.C:
		}
	}
}

func handshaken(peers []tunnel.PeerTelemetry) bool {
	for _, p := range peers {
		if p.HandshakeEstablished {
			return true
		}
	}
	return false
}

// Prober checks that traffic actually flows after a handshake.
type Prober interface {
	Probe(ctx context.Context) error
}

// TCPProber dials Target (an IP:port, so no DNS is involved) within Timeout.
// When Device is set the socket is bound to that interface.
type TCPProber struct {
	Target  string
	Timeout time.Duration
	Device  string
}

// probeRetryDelay spaces dial attempts inside the probe budget.
const probeRetryDelay = 500 * time.Millisecond

// Probe returns nil if a TCP connection to Target succeeds, or
// common.ErrConnectivityFailed.
func (p TCPProber) Probe(ctx context.Context) error {
	target := p.Target
	if target == "" {
		target = common.ProbeTarget
	}
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = common.ProbeTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	dialer := net.Dialer{Control: deviceControl(p.Device)}
	err := retry.Do(
		func() error {
			conn, err := dialer.DialContext(ctx, "tcp", target)
			if err != nil {
				return err
			}
			return conn.Close()
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(probeRetryDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return fmt.Errorf("probe %s: %v: %w", target, err, common.ErrConnectivityFailed)
	}
	return nil
}
