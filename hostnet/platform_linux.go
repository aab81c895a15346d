//go:build linux

package hostnet

import "github.com/yllada/vpn-client/common"

// NewKillSwitch returns the iptables kill switch.
func NewKillSwitch(exec Executor, logger common.Logger) KillSwitch {
	return NewIPTablesKillSwitch(exec, logger)
}

// NewRouteManager returns the ip(8) route manager.
func NewRouteManager(exec Executor, logger common.Logger) RouteManager {
	return NewIPRouteManager(exec, logger)
}

// NewDNSManager returns the systemd-resolved DNS manager.
func NewDNSManager(exec Executor, logger common.Logger) DNSManager {
	return NewResolvedDNS(logger)
}
