// Package cli provides the command-line interface of the VPN client.
// Every command loads client.yaml (or --config) and drives one operation:
// key setup, connecting until interrupted, removing a leftover interface,
// or printing status.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/yllada/vpn-client/common"
	"github.com/yllada/vpn-client/config"
	"github.com/yllada/vpn-client/hostnet"
	"github.com/yllada/vpn-client/keyring"
	"github.com/yllada/vpn-client/tunnel"
	"github.com/yllada/vpn-client/vpn"
)

// kernelTunnel is a tunnel that holds OS resources until closed.
type kernelTunnel interface {
	tunnel.Tunnel
	Close() error
}

// hostManagers are the host-level collaborators of a connect.
type hostManagers struct {
	killSwitch hostnet.KillSwitch
	routes     hostnet.RouteManager
	dns        hostnet.DNSManager
	opener     vpn.Opener
}

// app holds global flags and the factories commands build their
// collaborators from.
type app struct {
	configPath string
	verbose    bool
	logFile    string
	useKeyring bool

	newTunnel func(common.Logger) (kernelTunnel, error)
	newHost   func(common.Logger) hostManagers
	secrets   func() config.SecretStore
	// sessionOptions are appended to the controller options of connect.
	sessionOptions []vpn.Option
}

func newApp() *app {
	return &app{
		newTunnel: func(log common.Logger) (kernelTunnel, error) {
			return tunnel.NewKernel(log)
		},
		newHost: func(log common.Logger) hostManagers {
			exec := hostnet.NewExecutor()
			return hostManagers{
				killSwitch: hostnet.NewKillSwitch(exec, log),
				routes:     hostnet.NewRouteManager(exec, log),
				dns:        hostnet.NewDNSManager(exec, log),
				opener:     vpn.NewBrowserOpener(exec),
			}
		},
		secrets: func() config.SecretStore {
			return keyring.New()
		},
	}
}

// Execute runs the command tree with ctx, which is cancelled on SIGINT or
// SIGTERM by the caller.
func Execute(ctx context.Context, version string) error {
	return newRootCommand(newApp(), version).ExecuteContext(ctx)
}

func newRootCommand(a *app, version string) *cobra.Command {
	root := &cobra.Command{
		Use:           common.AppName,
		Short:         "WireGuard VPN client",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initLogger()
		},
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "config file path (default ./"+common.ConfigFileName+")")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().StringVar(&a.logFile, "log-file", "", "also write logs to this file")
	root.PersistentFlags().BoolVar(&a.useKeyring, "keyring", false, "keep the private key in the system keyring")

	root.AddCommand(
		newInitCommand(a),
		newConnectCommand(a),
		newDisconnectCommand(a),
		newStatusCommand(a),
		newImportCommand(a),
		newPrintPubkeyCommand(a),
	)
	return root
}

func (a *app) initLogger() error {
	level := common.LevelInfo
	if a.verbose {
		level = common.LevelDebug
	}
	if err := common.InitLogger(common.LogConfig{Level: level, FilePath: a.logFile}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not initialize file logging: %v\n", err)
	}
	return nil
}

func (a *app) path() string {
	return common.ResolveConfigPath(a.configPath)
}

// loadWithKeys loads the config and makes sure it has a private key.
func (a *app) loadWithKeys(out io.Writer) (*config.ClientConfig, *config.KeyPair, error) {
	path := a.path()
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}

	opts := config.EnsureOptions{UseStore: a.useKeyring}
	if a.useKeyring {
		opts.Store = a.secrets()
	}
	pair, err := config.EnsureKeys(cfg, path, opts)
	if err != nil {
		return nil, nil, err
	}
	if pair.Generated {
		fmt.Fprintf(out, "Generated a new client key for %s\n", cfg.InterfaceName)
	}
	return cfg, pair, nil
}

// formatDuration formats a duration in a human-readable format.
func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	}
	if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	return fmt.Sprintf("%ds", seconds)
}
