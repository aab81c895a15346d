// Package common provides shared constants, types, utilities, and interfaces
// used throughout the VPN client.
//
// This package serves as the foundation for cross-cutting concerns:
//
//   - Constants: timeouts, poll intervals, file names and network defaults
//   - Errors: sentinel errors for the session error taxonomy
//   - Interfaces: the Logger abstraction taken by every component
//   - Logger: leveled logging with optional rotated file output
//   - Utils: config-relative path helpers
//
// # Usage
//
//	log := common.LoggerOrDefault(logger)
//	log.Info("Creating interface %s", ifname)
//
//	if errors.Is(err, common.ErrHandshakeTimeout) {
//	    // server unreachable, host state already restored
//	}
//
// # Error taxonomy
//
// ErrConfig, ErrKeyFormat and ErrEnrollmentFailed are returned before the
// host is touched. ErrInterface, ErrHandshakeTimeout and
// ErrConnectivityFailed are returned only after every applied network
// change has been rolled back.
package common
