package hostnet

import (
	"context"
	"fmt"
	"strings"

	"github.com/yllada/vpn-client/common"
)

// NetshKillSwitch turns on Windows Defender Firewall for all profiles.
// Revert leaves the firewall on; toggling global firewall state off is not
// something a VPN client should do.
type NetshKillSwitch struct {
	exec Executor
	log  common.Logger
}

// NewNetshKillSwitch creates a kill switch using the given executor.
func NewNetshKillSwitch(exec Executor, logger common.Logger) *NetshKillSwitch {
	return &NetshKillSwitch{exec: exec, log: common.LoggerOrDefault(logger)}
}

func (k *NetshKillSwitch) Apply(ctx context.Context, _ KillSwitchPlan) error {
	if err := k.exec.Run(ctx, "netsh", "advfirewall", "set", "allprofiles", "state", "on"); err != nil {
		return fmt.Errorf("failed to enable firewall: %v: %w", err, common.ErrNetworkSetup)
	}
	k.log.Info("Firewall enabled for all profiles")
	return nil
}

func (k *NetshKillSwitch) Revert(ctx context.Context, _ KillSwitchPlan) {
	k.log.Debug("Leaving firewall state unchanged")
}

// PowerShellDNS sets interface DNS servers with Set-DnsClientServerAddress
// and resets them on revert.
type PowerShellDNS struct {
	exec Executor
	log  common.Logger
}

// NewPowerShellDNS creates a DNS manager using the given executor.
func NewPowerShellDNS(exec Executor, logger common.Logger) *PowerShellDNS {
	return &PowerShellDNS{exec: exec, log: common.LoggerOrDefault(logger)}
}

// Snapshot returns an empty snapshot: restoring means resetting the
// interface to automatic DNS.
func (d *PowerShellDNS) Snapshot(ctx context.Context) *DNSSnapshot {
	return &DNSSnapshot{}
}

func (d *PowerShellDNS) Apply(ctx context.Context, ifname string, servers []string) error {
	quoted := make([]string, 0, len(servers))
	for _, s := range servers {
		quoted = append(quoted, psQuote(s))
	}
	script := fmt.Sprintf("Set-DnsClientServerAddress -InterfaceAlias %s -ServerAddresses @(%s)",
		psQuote(ifname), strings.Join(quoted, ","))
	if err := d.exec.Run(ctx, "powershell", "-NoProfile", "-Command", script); err != nil {
		return fmt.Errorf("failed to set DNS on %s: %v: %w", ifname, err, common.ErrNetworkSetup)
	}
	d.log.Info("DNS on %s set to %v", ifname, servers)
	return nil
}

func (d *PowerShellDNS) Revert(ctx context.Context, ifname string, snap *DNSSnapshot) {
	if snap == nil {
		return
	}
	script := fmt.Sprintf("Set-DnsClientServerAddress -InterfaceAlias %s -ResetServerAddresses", psQuote(ifname))
	if err := d.exec.Run(ctx, "powershell", "-NoProfile", "-Command", script); err != nil {
		d.log.Warn("Failed to reset DNS on %s: %v", ifname, err)
	}
}

// psQuote wraps s in single quotes for PowerShell.
func psQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
