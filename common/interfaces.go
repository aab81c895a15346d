// Package common provides shared constants, types, and utilities
// used across the VPN client.
package common

// Logger defines the interface for structured logging.
// Components take a Logger so tests can inject a silent or recording one.
type Logger interface {
	// Debug logs a debug message.
	Debug(msg string, args ...interface{})
	// Info logs an informational message.
	Info(msg string, args ...interface{})
	// Warn logs a warning message.
	Warn(msg string, args ...interface{})
	// Error logs an error message.
	Error(msg string, args ...interface{})
}

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) Debug(string, ...interface{}) {}
func (NopLogger) Info(string, ...interface{})  {}
func (NopLogger) Warn(string, ...interface{})  {}
func (NopLogger) Error(string, ...interface{}) {}

// LoggerOrDefault returns l, or the process-wide logger when l is nil.
func LoggerOrDefault(l Logger) Logger {
	if l == nil {
		return GetLogger()
	}
	return l
}
