// Package vpn provides the session lifecycle of the WireGuard client.
//
// This package implements the core client functionality including:
//
//   - Session configuration: Validating the persisted config into a SessionConfig
//   - Connection management: Creating, verifying, monitoring and tearing down a tunnel
//   - Full and split tunneling: Default route and DNS changes in full mode only
//   - Rollback: Reverting every host change on failure or shutdown
//
// # Architecture
//
// The package is organized around three main types:
//
//   - SessionConfig: Immutable, validated input of one connection attempt
//   - Controller: Runs one session and owns its interface and snapshot
//   - TCPProber: Checks that traffic flows once the handshake completes
//
// # Connection Flow
//
// A typical connection flow:
//
//  1. The CLI loads the config, ensures keys and enrolls the public key
//  2. NewSessionConfig validates keys, address and endpoint
//  3. Controller.Run creates and configures the interface
//  4. The kill switch, routes and DNS are applied as configured
//  5. Run waits for a handshake, probes connectivity and monitors
//  6. Cancelling the context rolls everything back in reverse order
//
// # Rollback
//
// Each applied change pushes its revert onto an undo stack. Rollback pops
// and runs them, logging failures without stopping. The interface removal is
// pushed first so it always runs last.
//
// # Thread Safety
//
// A Controller runs on the goroutine that calls Run. State, Err and
// Snapshot may be read from other goroutines.
package vpn
