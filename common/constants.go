// Package common provides shared constants, types, and utilities
// used across the VPN client.
package common

import "time"

// Application metadata.
const (
	// AppName is the display name of the application.
	AppName = "vpn-client"
	// KeyringService is the service identifier used in the system keyring.
	KeyringService = "vpn-client"
)

// File names used by the application.
const (
	ConfigFileName  = "client.yaml"
	LogFileName     = "vpn-client.log"
	HistoryFileName = "vpn-client.db"
)

// Default timeouts and intervals.
const (
	// HandshakeTimeout is the maximum time to wait for a peer handshake.
	HandshakeTimeout = 20 * time.Second
	// HandshakePollInterval is how often telemetry is read while waiting for a handshake.
	HandshakePollInterval = 1 * time.Second
	// ProbeTimeout bounds the post-handshake connectivity probe.
	ProbeTimeout = 3 * time.Second
	// MonitorInterval is how often telemetry is polled while connected.
	MonitorInterval = 5 * time.Second
	// CommandTimeout bounds every host command run by a side-effect manager.
	CommandTimeout = 10 * time.Second
	// EnrollTimeout bounds the enrollment request.
	EnrollTimeout = 10 * time.Second
)

// Network defaults.
const (
	// ProbeTarget is dialed by IP so the probe does not depend on DNS.
	ProbeTarget = "1.1.1.1:443"
	// DefaultVPNSubnet is routed through the tunnel in split mode.
	DefaultVPNSubnet = "10.8.0.0/24"
	// FullTunnelRange is routed through the tunnel in full mode.
	FullTunnelRange = "0.0.0.0/0"
)

// FullTunnelDNS are the resolvers installed on the tunnel link in full mode.
var FullTunnelDNS = []string{"1.1.1.1", "8.8.8.8"}
