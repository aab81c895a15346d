// Package tunnel provides the WireGuard interface capability used by a
// session: creating and removing the link, applying key and peer
// configuration, and reading per-peer telemetry.
package tunnel

import (
	"context"
	"net"
	"net/netip"
	"time"

	"golang.zx2c4.com/wireguard/wgctrl/wgtypes"
)

// LinkType is the netlink kind of a kernel WireGuard link.
const LinkType = "wireguard"

// Handle identifies an interface owned by a session.
type Handle struct {
	Name  string
	Index int
}

// PeerConfig describes one remote peer.
type PeerConfig struct {
	PublicKey  wgtypes.Key
	Endpoint   *net.UDPAddr
	Keepalive  time.Duration
	AllowedIPs []netip.Prefix
}

// InterfaceConfig is the full configuration applied to an interface.
type InterfaceConfig struct {
	PrivateKey wgtypes.Key
	Addresses  []netip.Prefix
	Peers      []PeerConfig
}

// PeerTelemetry is a point-in-time view of one peer.
type PeerTelemetry struct {
	PeerID               wgtypes.Key
	HandshakeEstablished bool
	LastHandshake        time.Time
	TxBytes              int64
	RxBytes              int64
}

// Tunnel creates, configures, observes and removes WireGuard interfaces.
type Tunnel interface {
	// Create adds a new interface. It fails if the name is taken.
	Create(ctx context.Context, name string) (Handle, error)
	// Open returns a handle to an existing interface.
	Open(ctx context.Context, name string) (Handle, error)
	// Configure applies keys, peers and addresses and brings the link up.
	Configure(ctx context.Context, h Handle, cfg InterfaceConfig) error
	// Telemetry reads per-peer handshake and byte counters.
	Telemetry(ctx context.Context, h Handle) ([]PeerTelemetry, error)
	// SetDown sets the link administratively down.
	SetDown(ctx context.Context, h Handle) error
	// Remove deletes the interface.
	Remove(ctx context.Context, h Handle) error
}
