package vpn

import (
	"errors"
	"net/netip"
	"testing"
	"time"

	"github.com/yllada/vpn-client/common"
	"github.com/yllada/vpn-client/config"
)

const (
	testPrivateKey = "dwdtCnMYpX08FsFyUbJmRd9ML4frwJkqsXf7pR25LCo="
	testServerKey  = "hSDwCYkwp1R0i33ctD73Wg2/Og0mOBr066SpjqqbTmo="
)

func testClientConfig() *config.ClientConfig {
	cfg := config.DefaultConfig()
	cfg.ClientPrivateKey = testPrivateKey
	cfg.ServerPublicKey = testServerKey
	return cfg
}

func TestTunnelMode_String(t *testing.T) {
	tests := []struct {
		mode     TunnelMode
		expected string
	}{
		{ModeFull, "full"},
		{ModeSplit, "split"},
		{TunnelMode(9), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.mode.String(); got != tt.expected {
				t.Errorf("TunnelMode.String() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestNewSessionConfig_SplitTunnelScenario(t *testing.T) {
	cfg := testClientConfig()
	cfg.SplitTunnel = true
	cfg.KillSwitch = false

	sc, err := NewSessionConfig(cfg, "")
	if err != nil {
		t.Fatalf("NewSessionConfig() error = %v", err)
	}

	ic := BuildInterfaceConfig(sc)
	if len(ic.Peers) != 1 {
		t.Fatalf("peers = %d, want exactly 1", len(ic.Peers))
	}
	peer := ic.Peers[0]
	if len(peer.AllowedIPs) != 1 || peer.AllowedIPs[0] != netip.MustParsePrefix("10.8.0.0/24") {
		t.Errorf("allowed IPs = %v, want [10.8.0.0/24]", peer.AllowedIPs)
	}
	if peer.Keepalive != 25*time.Second {
		t.Errorf("keepalive = %v, want 25s", peer.Keepalive)
	}
	if peer.Endpoint.String() != "127.0.0.1:51820" {
		t.Errorf("endpoint = %v, want 127.0.0.1:51820", peer.Endpoint)
	}
	if len(ic.Addresses) != 1 || ic.Addresses[0].String() != "10.8.0.2/32" {
		t.Errorf("addresses = %v", ic.Addresses)
	}
	if sc.KillSwitch {
		t.Error("KillSwitch should be false")
	}
}

func TestAllowedIPs(t *testing.T) {
	tests := []struct {
		name   string
		split  bool
		subnet string
		want   string
	}{
		{"full tunnel", false, "", "0.0.0.0/0"},
		{"split tunnel default subnet", true, "", "10.8.0.0/24"},
		{"split tunnel custom subnet", true, "10.20.0.0/16", "10.20.0.0/16"},
		{"full tunnel ignores subnet", false, "10.20.0.0/16", "0.0.0.0/0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testClientConfig()
			cfg.SplitTunnel = tt.split
			cfg.VPNSubnet = tt.subnet

			sc, err := NewSessionConfig(cfg, "")
			if err != nil {
				t.Fatalf("NewSessionConfig() error = %v", err)
			}
			got := sc.AllowedIPs()
			if len(got) != 1 || got[0].String() != tt.want {
				t.Errorf("AllowedIPs() = %v, want [%s]", got, tt.want)
			}
		})
	}
}

func TestNewSessionConfig_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.ClientConfig)
		ifname string
		want   error
	}{
		{"short private key", func(c *config.ClientConfig) { c.ClientPrivateKey = "c2hvcnQ=" }, "", common.ErrKeyFormat},
		{"missing private key", func(c *config.ClientConfig) { c.ClientPrivateKey = "" }, "", common.ErrKeyFormat},
		{"long server key", func(c *config.ClientConfig) {
			c.ServerPublicKey = "AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA=="
		}, "", common.ErrKeyFormat},
		{"bad address", func(c *config.ClientConfig) { c.AddressCIDR = "10.8.0.2" }, "", common.ErrConfig},
		{"bad endpoint", func(c *config.ClientConfig) { c.ServerEndpoint = "no-port" }, "", common.ErrConfig},
		{"zero keepalive", func(c *config.ClientConfig) { c.KeepaliveSecs = 0 }, "", common.ErrConfig},
		{"bad subnet", func(c *config.ClientConfig) { c.VPNSubnet = "10.8.0.0" }, "", common.ErrConfig},
		{"long interface name", func(c *config.ClientConfig) {}, "wg-client-too-long", common.ErrConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testClientConfig()
			tt.mutate(cfg)
			_, err := NewSessionConfig(cfg, tt.ifname)
			if !errors.Is(err, tt.want) {
				t.Errorf("NewSessionConfig() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestNewSessionConfig_InterfaceOverride(t *testing.T) {
	sc, err := NewSessionConfig(testClientConfig(), "wg-test")
	if err != nil {
		t.Fatal(err)
	}
	if sc.InterfaceName != "wg-test" {
		t.Errorf("InterfaceName = %q, want wg-test", sc.InterfaceName)
	}
	if sc.Mode != ModeFull {
		t.Errorf("Mode = %v, want full by default", sc.Mode)
	}
}

func TestSessionState_String(t *testing.T) {
	tests := []struct {
		state    SessionState
		expected string
	}{
		{StateIdle, "Idle"},
		{StateInterfaceUp, "Interface up"},
		{StateAwaitingHandshake, "Awaiting handshake..."},
		{StateVerifying, "Verifying..."},
		{StateConnected, "Connected"},
		{StateTearingDown, "Tearing down..."},
		{StateStopped, "Stopped"},
		{StateFailed, "Failed"},
		{SessionState(99), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.state.String(); got != tt.expected {
				t.Errorf("SessionState.String() = %v, want %v", got, tt.expected)
			}
		})
	}
}
