package vpn

import (
	"context"
	"fmt"

	"github.com/yllada/vpn-client/common"
	"github.com/yllada/vpn-client/tunnel"
)

// Disconnect brings down and removes the interface left by another
// process's session. No snapshot survives that process, so kill switch,
// route and DNS changes are not restored here.
func Disconnect(ctx context.Context, tun tunnel.Tunnel, ifname string, logger common.Logger) error {
	log := common.LoggerOrDefault(logger)

	h, err := tun.Open(ctx, ifname)
	if err != nil {
		return fmt.Errorf("interface %s: %v: %w", ifname, err, common.ErrNotConnected)
	}

	if err := tun.SetDown(ctx, h); err != nil {
		log.Warn("Failed to set %s down: %v", ifname, err)
	}
	if err := tun.Remove(ctx, h); err != nil {
		return err
	}

	log.Info("Disconnected %s", ifname)
	log.Warn("Kill switch, route and DNS changes made by the running session are not restored by disconnect")
	return nil
}
