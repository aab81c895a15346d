package hostnet

import (
	"context"
	"fmt"
	"strings"

	"github.com/yllada/vpn-client/common"
)

// IPRouteManager changes the default route with the ip(8) tool.
type IPRouteManager struct {
	exec Executor
	log  common.Logger
}

// NewIPRouteManager creates a route manager using the given executor.
func NewIPRouteManager(exec Executor, logger common.Logger) *IPRouteManager {
	return &IPRouteManager{exec: exec, log: common.LoggerOrDefault(logger)}
}

// Snapshot returns the current default gateway and device, or nil when there
// is no default route through a gateway.
func (r *IPRouteManager) Snapshot(ctx context.Context) *RouteSnapshot {
	output, err := r.exec.Output(ctx, "ip", "route", "show", "default")
	if err != nil {
		r.log.Warn("Could not read default route: %v", err)
		return nil
	}
	snap := parseDefaultRoute(string(output))
	if snap == nil {
		r.log.Warn("No default gateway found, routes will not be changed")
		return nil
	}
	r.log.Debug("Original gateway: %s via %s", snap.Gateway, snap.Device)
	return snap
}

// Apply pins the endpoint to the old gateway and replaces the default route
// with the tunnel device.
func (r *IPRouteManager) Apply(ctx context.Context, plan RoutePlan) error {
	if plan.Via.Gateway == "" || plan.Via.Device == "" {
		return fmt.Errorf("no previous gateway to route %s through: %w", plan.Endpoint, common.ErrNetworkSetup)
	}

	host := hostRoute(plan)
	if err := r.exec.Run(ctx, "ip", append([]string{"route", "replace"}, host...)...); err != nil {
		return fmt.Errorf("failed to add endpoint route: %v: %w", err, common.ErrNetworkSetup)
	}

	if err := r.exec.Run(ctx, "ip", "route", "replace", "default", "dev", plan.Interface); err != nil {
		if derr := r.exec.Run(ctx, "ip", append([]string{"route", "del"}, host...)...); derr != nil {
			r.log.Warn("Failed to remove endpoint route: %v", derr)
		}
		return fmt.Errorf("failed to route default via %s: %v: %w", plan.Interface, err, common.ErrNetworkSetup)
	}

	r.log.Info("Default route moved to %s (endpoint %s via %s)", plan.Interface, plan.Endpoint, plan.Via.Gateway)
	return nil
}

// Revert restores the snapshot default route, then drops the endpoint route.
func (r *IPRouteManager) Revert(ctx context.Context, snap *RouteSnapshot, plan RoutePlan) {
	if snap == nil {
		return
	}
	if err := r.exec.Run(ctx, "ip", "route", "replace", "default", "via", snap.Gateway, "dev", snap.Device); err != nil {
		r.log.Error("Failed to restore default route via %s: %v", snap.Gateway, err)
	}
	if err := r.exec.Run(ctx, "ip", append([]string{"route", "del"}, hostRoute(plan)...)...); err != nil {
		r.log.Warn("Failed to remove endpoint route: %v", err)
	}
}

func hostRoute(plan RoutePlan) []string {
	bits := 32
	if plan.Endpoint.Is6() {
		bits = 128
	}
	return []string{
		fmt.Sprintf("%s/%d", plan.Endpoint, bits),
		"via", plan.Via.Gateway,
		"dev", plan.Via.Device,
	}
}

// parseDefaultRoute reads `ip route show default` output. A default route
// already on a WireGuard device is skipped in favor of a physical one.
func parseDefaultRoute(output string) *RouteSnapshot {
	var fallback *RouteSnapshot
	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 || fields[0] != "default" {
			continue
		}
		snap := &RouteSnapshot{}
		for i := 1; i+1 < len(fields); i++ {
			switch fields[i] {
			case "via":
				snap.Gateway = fields[i+1]
			case "dev":
				snap.Device = fields[i+1]
			}
		}
		if snap.Gateway == "" || snap.Device == "" {
			continue
		}
		if strings.HasPrefix(snap.Device, "wg") {
			if fallback == nil {
				fallback = snap
			}
			continue
		}
		return snap
	}
	return fallback
}
