package vpn

import (
	"fmt"
	"net"
	"net/netip"
	"time"

	"golang.zx2c4.com/wireguard/wgctrl/wgtypes"

	"github.com/yllada/vpn-client/common"
	"github.com/yllada/vpn-client/config"
	"github.com/yllada/vpn-client/tunnel"
	"github.com/yllada/vpn-client/wgkey"
)

// maxIfnameLen is IFNAMSIZ minus the terminating NUL.
const maxIfnameLen = 15

// TunnelMode selects which traffic goes through the tunnel.
type TunnelMode int

const (
	// ModeFull routes all traffic through the tunnel.
	ModeFull TunnelMode = iota
	// ModeSplit routes only the VPN subnet through the tunnel.
	ModeSplit
)

// String returns a human-readable representation of the tunnel mode.
func (m TunnelMode) String() string {
	switch m {
	case ModeFull:
		return "full"
	case ModeSplit:
		return "split"
	default:
		return "unknown"
	}
}

// SessionConfig is the validated, immutable input of one connection attempt.
type SessionConfig struct {
	InterfaceName   string
	Address         netip.Prefix
	Endpoint        netip.AddrPort
	ServerPublicKey wgtypes.Key
	PrivateKey      wgtypes.Key
	Keepalive       time.Duration
	Mode            TunnelMode
	KillSwitch      bool
	VPNSubnet       netip.Prefix
	WelcomeURL      string
}

// NewSessionConfig validates cfg and builds a SessionConfig. ifname
// overrides the configured interface name when non-empty. A hostname
// endpoint is resolved once, here.
func NewSessionConfig(cfg *config.ClientConfig, ifname string) (SessionConfig, error) {
	if cfg == nil {
		return SessionConfig{}, fmt.Errorf("no configuration: %w", common.ErrConfig)
	}
	if ifname == "" {
		ifname = cfg.InterfaceName
	}
	if ifname == "" || len(ifname) > maxIfnameLen {
		return SessionConfig{}, fmt.Errorf("invalid interface name %q: %w", ifname, common.ErrConfig)
	}

	priv, err := wgkey.Decode(cfg.ClientPrivateKey)
	if err != nil {
		return SessionConfig{}, fmt.Errorf("client private key: %w", err)
	}
	serverKey, err := wgkey.Decode(cfg.ServerPublicKey)
	if err != nil {
		return SessionConfig{}, fmt.Errorf("server public key: %w", err)
	}

	addr, err := netip.ParsePrefix(cfg.AddressCIDR)
	if err != nil {
		return SessionConfig{}, fmt.Errorf("address_cidr %q: %v: %w", cfg.AddressCIDR, err, common.ErrConfig)
	}

	endpoint, err := resolveEndpoint(cfg.ServerEndpoint)
	if err != nil {
		return SessionConfig{}, err
	}

	if cfg.KeepaliveSecs <= 0 {
		return SessionConfig{}, fmt.Errorf("keepalive_secs must be positive: %w", common.ErrConfig)
	}

	subnetRaw := cfg.VPNSubnet
	if subnetRaw == "" {
		subnetRaw = common.DefaultVPNSubnet
	}
	subnet, err := netip.ParsePrefix(subnetRaw)
	if err != nil {
		return SessionConfig{}, fmt.Errorf("vpn_subnet %q: %v: %w", subnetRaw, err, common.ErrConfig)
	}

	mode := ModeFull
	if cfg.SplitTunnel {
		mode = ModeSplit
	}

	return SessionConfig{
		InterfaceName:   ifname,
		Address:         addr,
		Endpoint:        endpoint,
		ServerPublicKey: serverKey,
		PrivateKey:      priv,
		Keepalive:       time.Duration(cfg.KeepaliveSecs) * time.Second,
		Mode:            mode,
		KillSwitch:      cfg.KillSwitch,
		VPNSubnet:       subnet.Masked(),
		WelcomeURL:      cfg.WelcomeURL,
	}, nil
}

func resolveEndpoint(raw string) (netip.AddrPort, error) {
	if ap, err := netip.ParseAddrPort(raw); err == nil {
		return ap, nil
	}
	udp, err := net.ResolveUDPAddr("udp", raw)
	if err != nil || udp.Port == 0 {
		return netip.AddrPort{}, fmt.Errorf("server_endpoint %q is not a host:port: %v: %w", raw, err, common.ErrConfig)
	}
	ap := udp.AddrPort()
	return netip.AddrPortFrom(ap.Addr().Unmap(), ap.Port()), nil
}

// AllowedIPs returns the ranges routed to the peer: everything in full
// mode, the VPN subnet in split mode.
func (c SessionConfig) AllowedIPs() []netip.Prefix {
	if c.Mode == ModeSplit {
		return []netip.Prefix{c.VPNSubnet}
	}
	return []netip.Prefix{netip.MustParsePrefix(common.FullTunnelRange)}
}

// BuildInterfaceConfig returns the configuration applied to the tunnel
// interface: the local key and address plus exactly one server peer.
func BuildInterfaceConfig(c SessionConfig) tunnel.InterfaceConfig {
	return tunnel.InterfaceConfig{
		PrivateKey: c.PrivateKey,
		Addresses:  []netip.Prefix{c.Address},
		Peers: []tunnel.PeerConfig{{
			PublicKey:  c.ServerPublicKey,
			Endpoint:   net.UDPAddrFromAddrPort(c.Endpoint),
			Keepalive:  c.Keepalive,
			AllowedIPs: c.AllowedIPs(),
		}},
	}
}
