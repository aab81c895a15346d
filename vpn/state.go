package vpn

// SessionState represents where a session is in its lifecycle.
type SessionState int

const (
	// StateIdle indicates nothing has been applied yet.
	StateIdle SessionState = iota
	// StateInterfaceUp indicates the interface exists and is configured.
	StateInterfaceUp
	// StateAwaitingHandshake indicates the controller is polling for a handshake.
	StateAwaitingHandshake
	// StateVerifying indicates the connectivity probe is running.
	StateVerifying
	// StateConnected indicates a verified tunnel being monitored.
	StateConnected
	// StateTearingDown indicates rollback is in progress.
	StateTearingDown
	// StateStopped indicates a clean shutdown after cancellation.
	StateStopped
	// StateFailed indicates the session ended with an error.
	StateFailed
)

// String returns a human-readable representation of the session state.
func (s SessionState) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateInterfaceUp:
		return "Interface up"
	case StateAwaitingHandshake:
		return "Awaiting handshake..."
	case StateVerifying:
		return "Verifying..."
	case StateConnected:
		return "Connected"
	case StateTearingDown:
		return "Tearing down..."
	case StateStopped:
		return "Stopped"
	case StateFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}
