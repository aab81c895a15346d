package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/yllada/vpn-client/audit"
	"github.com/yllada/vpn-client/common"
	"github.com/yllada/vpn-client/config"
	"github.com/yllada/vpn-client/history"
	"github.com/yllada/vpn-client/vpn"
)

// recentSessions is how many history rows status prints.
const recentSessions = 5

func newInitCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a default config and generate the client key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			_, pair, err := a.loadWithKeys(out)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Config: %s\n", a.path())
			if a.useKeyring {
				fmt.Fprintln(out, "Private key: system keyring")
			}
			fmt.Fprintf(out, "Public key: %s\n", pair.Public)
			return nil
		},
	}
}

func newPrintPubkeyCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "print-pubkey",
		Short: "Print the client public key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, pair, err := a.loadWithKeys(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), pair.Public)
			return nil
		},
	}
}

func newImportCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import PATH",
		Short: "Merge server endpoint and key from a YAML or wg-quick file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Import(a.path(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Imported %s into %s\n", args[0], a.path())
			fmt.Fprintf(out, "  Endpoint:   %s\n", cfg.ServerEndpoint)
			fmt.Fprintf(out, "  Server key: %s\n", cfg.ServerPublicKey)
			return nil
		},
	}
}

func newDisconnectCommand(a *app) *cobra.Command {
	var ifname string
	cmd := &cobra.Command{
		Use:   "disconnect",
		Short: "Remove the interface left by a running or crashed session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := common.GetLogger()
			name, err := a.interfaceName(ifname)
			if err != nil {
				return err
			}

			tun, err := a.newTunnel(log)
			if err != nil {
				return err
			}
			defer tun.Close()

			if err := vpn.Disconnect(cmd.Context(), tun, name, log); err != nil {
				return err
			}

			journal := audit.New(common.SiblingPath(a.path(), common.LogFileName))
			defer journal.Close()
			if err := journal.Record("-", audit.EventDisconnect, fmt.Sprintf("Interface %s removed", name)); err != nil {
				log.Debug("Failed to write journal: %v", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Disconnected %s\n", name)
			return nil
		},
	}
	cmd.Flags().StringVar(&ifname, "ifname", "", "interface name (overrides interface_name)")
	return cmd
}

func newStatusCommand(a *app) *cobra.Command {
	var ifname string
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show peer telemetry and recent sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := a.interfaceName(ifname)
			if err != nil {
				return err
			}
			if err := a.printPeers(cmd, name); err != nil {
				return err
			}
			return a.printHistory(cmd)
		},
	}
	cmd.Flags().StringVar(&ifname, "ifname", "", "interface name (overrides interface_name)")
	return cmd
}

func (a *app) interfaceName(override string) (string, error) {
	if override != "" {
		return override, nil
	}
	cfg, err := config.Load(a.path())
	if err != nil {
		return "", err
	}
	return cfg.InterfaceName, nil
}

func (a *app) printPeers(cmd *cobra.Command, name string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	styles := newStyles(out)

	tun, err := a.newTunnel(common.GetLogger())
	if err != nil {
		return err
	}
	defer tun.Close()

	h, err := tun.Open(ctx, name)
	if err != nil {
		fmt.Fprintf(out, "%s %s\n", styles.label("Interface "+name+":"), styles.bad("not connected"))
		return nil
	}
	peers, err := tun.Telemetry(ctx, h)
	if err != nil {
		return fmt.Errorf("reading telemetry of %s: %w", name, err)
	}
	fmt.Fprintf(out, "%s %s\n", styles.label("Interface "+name+":"), styles.good("up"))

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PEER\tHANDSHAKE\tSENT\tRECEIVED")
	fmt.Fprintln(w, "----\t---------\t----\t--------")
	for _, p := range peers {
		handshake := "never"
		if p.HandshakeEstablished {
			handshake = formatDuration(time.Since(p.LastHandshake)) + " ago"
		}
		fmt.Fprintf(w, "%s\t%s\t%d KB\t%d KB\n",
			shortKey(p.PeerID.String()), handshake, p.TxBytes/1024, p.RxBytes/1024)
	}
	return w.Flush()
}

func (a *app) printHistory(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	path := common.SiblingPath(a.path(), common.HistoryFileName)
	if !common.FileExists(path) {
		return nil
	}

	store, err := history.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	sessions, err := store.Recent(cmd.Context(), recentSessions)
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		return nil
	}

	fmt.Fprintln(out)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STARTED\tINTERFACE\tMODE\tDURATION\tOUTCOME")
	fmt.Fprintln(w, "-------\t---------\t----\t--------\t-------")
	for _, s := range sessions {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			s.StartedAt.Format(time.DateTime), s.Interface, s.Mode,
			formatDuration(s.Duration()), s.Outcome)
	}
	return w.Flush()
}

// shortKey truncates a base64 key for display.
func shortKey(k string) string {
	if len(k) > 8 {
		return k[:8] + "..."
	}
	return k
}

// ExitCode maps a command error to the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil, errors.Is(err, common.ErrCancelled):
		return 0
	default:
		return 1
	}
}
