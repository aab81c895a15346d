package hostnet

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/yllada/vpn-client/common"
)

// IPTablesKillSwitch drops all outbound IPv4 traffic except through the
// tunnel interface, loopback and to the server endpoint by setting the
// OUTPUT policy to DROP.
type IPTablesKillSwitch struct {
	exec Executor
	log  common.Logger

	mu    sync.Mutex
	added [][]string
}

// NewIPTablesKillSwitch creates a kill switch using the given executor.
func NewIPTablesKillSwitch(exec Executor, logger common.Logger) *IPTablesKillSwitch {
	return &IPTablesKillSwitch{exec: exec, log: common.LoggerOrDefault(logger)}
}

// acceptRules lists the OUTPUT rules that must exist before the policy drops.
// An IPv6 endpoint needs no rule since only the IPv4 policy changes.
func acceptRules(plan KillSwitchPlan) [][]string {
	rules := [][]string{{"OUTPUT", "-o", "lo", "-j", "ACCEPT"}}
	if ep := plan.Endpoint; ep.IsValid() && ep.Addr().Unmap().Is4() {
		rules = append(rules, []string{
			"OUTPUT", "-d", ep.Addr().Unmap().String() + "/32",
			"-p", "udp", "--dport", strconv.Itoa(int(ep.Port())),
			"-j", "ACCEPT",
		})
	}
	return append(rules, []string{"OUTPUT", "-o", plan.Interface, "-j", "ACCEPT"})
}

// Apply allows loopback, the server endpoint and the tunnel interface, then
// switches the policy to DROP. A rule is only appended when iptables -C does
// not find it, and only appended rules are removed later.
func (k *IPTablesKillSwitch) Apply(ctx context.Context, plan KillSwitchPlan) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	var added [][]string
	for _, rule := range acceptRules(plan) {
		if err := k.exec.Run(ctx, "iptables", append([]string{"-C"}, rule...)...); err == nil {
			continue
		}
		if err := k.exec.Run(ctx, "iptables", append([]string{"-A"}, rule...)...); err != nil {
			k.deleteRules(ctx, added)
			return fmt.Errorf("failed to add kill switch rule %v: %v: %w", rule, err, common.ErrNetworkSetup)
		}
		added = append(added, rule)
	}

	if err := k.exec.Run(ctx, "iptables", "-P", "OUTPUT", "DROP"); err != nil {
		k.deleteRules(ctx, added)
		return fmt.Errorf("failed to set OUTPUT policy: %v: %w", err, common.ErrNetworkSetup)
	}

	k.added = append(k.added, added...)
	k.log.Info("Kill switch enabled: outbound traffic restricted to %s and %s", plan.Interface, plan.Endpoint)
	return nil
}

// Revert restores the ACCEPT policy and removes the rules Apply added.
func (k *IPTablesKillSwitch) Revert(ctx context.Context, _ KillSwitchPlan) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if err := k.exec.Run(ctx, "iptables", "-P", "OUTPUT", "ACCEPT"); err != nil {
		k.log.Error("Failed to restore OUTPUT policy: %v", err)
	}
	k.deleteRules(ctx, k.added)
	k.added = nil
	k.log.Info("Kill switch disabled")
}

// deleteRules removes rules in reverse order, logging failures.
func (k *IPTablesKillSwitch) deleteRules(ctx context.Context, rules [][]string) {
	for i := len(rules) - 1; i >= 0; i-- {
		if err := k.exec.Run(ctx, "iptables", append([]string{"-D"}, rules[i]...)...); err != nil {
			k.log.Warn("Failed to remove kill switch rule %v: %v", rules[i], err)
		}
	}
}
