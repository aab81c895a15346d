//go:build windows

package hostnet

import "github.com/yllada/vpn-client/common"

// NewKillSwitch returns the netsh firewall kill switch.
func NewKillSwitch(exec Executor, logger common.Logger) KillSwitch {
	return NewNetshKillSwitch(exec, logger)
}

// NewRouteManager returns a manager that leaves routes alone.
func NewRouteManager(exec Executor, logger common.Logger) RouteManager {
	return NoopRoutes{}
}

// NewDNSManager returns the PowerShell DNS manager.
func NewDNSManager(exec Executor, logger common.Logger) DNSManager {
	return NewPowerShellDNS(exec, logger)
}
