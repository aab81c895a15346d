// Package common provides shared constants, types, and utilities
// used across the VPN client.
package common

import "errors"

// Sentinel errors for session operations.
// These can be checked with errors.Is() for proper error handling.
var (
	// Errors raised before any host mutation.
	ErrConfig           = errors.New("invalid configuration")
	ErrKeyFormat        = errors.New("key must decode to exactly 32 bytes")
	ErrEnrollmentFailed = errors.New("enrollment failed")

	// Errors raised while the session owns host state.
	ErrInterface          = errors.New("tunnel interface error")
	ErrHandshakeTimeout   = errors.New("handshake timeout, server unreachable")
	ErrConnectivityFailed = errors.New("connectivity check failed")
	ErrCancelled          = errors.New("operation cancelled")
	ErrNetworkSetup       = errors.New("host network setup failed")

	ErrNotConnected = errors.New("no active connection")

	// Platform errors.
	ErrUnsupportedPlatform = errors.New("unsupported platform")
)

// WrapError wraps an error with additional context.
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return &wrappedError{
		msg: message,
		err: err,
	}
}

type wrappedError struct {
	msg string
	err error
}

func (e *wrappedError) Error() string {
	return e.msg + ": " + e.err.Error()
}

func (e *wrappedError) Unwrap() error {
	return e.err
}
