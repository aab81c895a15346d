// Package main provides the entry point for the VPN client.
// The client brings up a single WireGuard session from client.yaml,
// verifies it, reports traffic until interrupted and restores the host's
// network state on the way out.
//
// Usage:
//
//	vpn-client [--config PATH] [--verbose] <init|connect|disconnect|status|import|print-pubkey>
//
// Environment:
//
//	connect and disconnect need CAP_NET_ADMIN (or Administrator on Windows).
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/yllada/vpn-client/cli"
	"github.com/yllada/vpn-client/common"
)

// Build-time variables injected via ldflags (-X main.appVersion=x.y.z)
var appVersion = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.Execute(ctx, appVersion)
	stop()
	common.CloseLogger()

	if code := cli.ExitCode(err); code != 0 {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(code)
	}
}
