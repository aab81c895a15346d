//go:build !linux && !windows

package hostnet

import "github.com/yllada/vpn-client/common"

func NewKillSwitch(exec Executor, logger common.Logger) KillSwitch {
	return NoopKillSwitch{}
}

func NewRouteManager(exec Executor, logger common.Logger) RouteManager {
	return NoopRoutes{}
}

func NewDNSManager(exec Executor, logger common.Logger) DNSManager {
	return NoopDNS{}
}
