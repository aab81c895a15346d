package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yllada/vpn-client/audit"
	"github.com/yllada/vpn-client/common"
	"github.com/yllada/vpn-client/enroll"
	"github.com/yllada/vpn-client/history"
	"github.com/yllada/vpn-client/vpn"
)

func newConnectCommand(a *app) *cobra.Command {
	var ifname string
	cmd := &cobra.Command{
		Use:   "connect",
		Short: "Connect and stay connected until interrupted",
		Long: `Create the WireGuard interface, wait for the server handshake, verify
connectivity and report traffic until Ctrl+C. Every host change is rolled
back on exit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runConnect(cmd, ifname)
		},
	}
	cmd.Flags().StringVar(&ifname, "ifname", "", "interface name (overrides interface_name)")
	return cmd
}

func (a *app) runConnect(cmd *cobra.Command, ifname string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	log := common.GetLogger()

	cfg, pair, err := a.loadWithKeys(out)
	if err != nil {
		return err
	}
	sc, err := vpn.NewSessionConfig(cfg, ifname)
	if err != nil {
		return err
	}

	if cfg.EnrollURL != "" {
		fmt.Fprintf(out, "Enrolling public key with %s...\n", cfg.EnrollURL)
		if err := enroll.NewClient(log).Enroll(ctx, cfg.EnrollURL, pair.Public); err != nil {
			return err
		}
	}

	tun, err := a.newTunnel(log)
	if err != nil {
		return err
	}
	defer tun.Close()

	journal := audit.New(common.SiblingPath(a.path(), common.LogFileName))
	defer journal.Close()

	host := a.newHost(log)
	deps := vpn.Deps{
		Tunnel:       tun,
		KillSwitch:   host.killSwitch,
		RouteManager: host.routes,
		DNSManager:   host.dns,
		Journal:      journal,
		Opener:       host.opener,
		Logger:       log,
	}

	store, err := history.Open(common.SiblingPath(a.path(), common.HistoryFileName))
	if err != nil {
		log.Warn("Session history disabled: %v", err)
	} else {
		defer store.Close()
		deps.History = store
	}

	styles := newStyles(out)
	opts := append([]vpn.Option{vpn.WithStatusHandler(func(line string) {
		fmt.Fprintln(out, styles.status(line))
	})}, a.sessionOptions...)
	ctrl := vpn.NewController(sc, deps, opts...)

	fmt.Fprintf(out, "Connecting %s to %s (%s tunnel, kill switch %s)\n",
		sc.InterfaceName, sc.Endpoint, sc.Mode, onOff(sc.KillSwitch))

	err = ctrl.Run(ctx)
	switch {
	case err == nil, errors.Is(err, common.ErrCancelled):
		fmt.Fprintln(out, "Disconnected.")
		return nil
	default:
		return err
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
