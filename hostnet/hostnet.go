// Package hostnet manages the host-level side effects of a full or split
// tunnel session: the firewall kill switch, default-route changes and DNS
// resolver overrides.
//
// Every manager pairs an Apply with a best-effort Revert that logs instead of
// returning errors. Route and DNS managers also capture a snapshot of the
// prior state; a nil snapshot means there is nothing to restore.
package hostnet

import (
	"context"
	"net/netip"
)

// RouteSnapshot is the default route in effect before the session.
type RouteSnapshot struct {
	Gateway string
	Device  string
}

// RoutePlan describes the full-tunnel routing change.
type RoutePlan struct {
	// Endpoint gets a host route through the previous gateway so tunnel
	// packets keep flowing once the default route moves.
	Endpoint netip.Addr
	// Interface is the tunnel device that becomes the default route.
	Interface string
	// Via is the pre-session default route.
	Via RouteSnapshot
}

// DNSSnapshot is opaque resolver state captured before the session.
type DNSSnapshot struct {
	path    string
	content []byte
}

// KillSwitchPlan describes the traffic a kill switch still lets out.
type KillSwitchPlan struct {
	// Interface is the tunnel device; all its traffic is allowed.
	Interface string
	// Endpoint is the server. Encrypted tunnel packets to it leave through
	// the physical device (or lo) and must stay allowed.
	Endpoint netip.AddrPort
}

// KillSwitch restricts outbound traffic to the tunnel and its server.
type KillSwitch interface {
	// Apply is idempotent. On error nothing is left applied.
	Apply(ctx context.Context, plan KillSwitchPlan) error
	Revert(ctx context.Context, plan KillSwitchPlan)
}

// RouteManager moves the default route onto the tunnel.
type RouteManager interface {
	Snapshot(ctx context.Context) *RouteSnapshot
	// Apply is idempotent. On error nothing is left applied.
	Apply(ctx context.Context, plan RoutePlan) error
	Revert(ctx context.Context, snap *RouteSnapshot, plan RoutePlan)
}

// DNSManager points the host resolver at the tunnel.
type DNSManager interface {
	Snapshot(ctx context.Context) *DNSSnapshot
	// Apply is idempotent. On error nothing is left applied.
	Apply(ctx context.Context, ifname string, servers []string) error
	Revert(ctx context.Context, ifname string, snap *DNSSnapshot)
}

// NoopKillSwitch is used on platforms without a firewall integration.
type NoopKillSwitch struct{}

func (NoopKillSwitch) Apply(context.Context, KillSwitchPlan) error { return nil }
func (NoopKillSwitch) Revert(context.Context, KillSwitchPlan)      {}

// NoopRoutes never captures a snapshot, so callers skip route changes.
type NoopRoutes struct{}

func (NoopRoutes) Snapshot(context.Context) *RouteSnapshot           { return nil }
func (NoopRoutes) Apply(context.Context, RoutePlan) error            { return nil }
func (NoopRoutes) Revert(context.Context, *RouteSnapshot, RoutePlan) {}

// NoopDNS never captures a snapshot, so callers skip DNS changes.
type NoopDNS struct{}

func (NoopDNS) Snapshot(context.Context) *DNSSnapshot         { return nil }
func (NoopDNS) Apply(context.Context, string, []string) error { return nil }
func (NoopDNS) Revert(context.Context, string, *DNSSnapshot)  {}
