package tunnel

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"

	"golang.zx2c4.com/wireguard/wgctrl"
	"golang.zx2c4.com/wireguard/wgctrl/wgtypes"

	"github.com/yllada/vpn-client/common"
)

// wgClient is the subset of *wgctrl.Client used here.
type wgClient interface {
	Device(name string) (*wgtypes.Device, error)
	ConfigureDevice(name string, cfg wgtypes.Config) error
	Close() error
}

// linkOps manages the network link underneath a WireGuard device.
// Implementations are platform specific.
type linkOps interface {
	add(name string) (int, error)
	index(name string) (int, error)
	replaceAddrs(name string, addrs []netip.Prefix) error
	setUp(name string) error
	setDown(name string) error
	del(name string) error
}

// Kernel drives kernel WireGuard interfaces through wgctrl and the
// platform's link API.
type Kernel struct {
	wg    wgClient
	links linkOps
	log   common.Logger
}

// NewKernel opens a wgctrl client. Close releases it.
func NewKernel(logger common.Logger) (*Kernel, error) {
	client, err := wgctrl.New()
	if err != nil {
		return nil, fmt.Errorf("failed to open wgctrl client: %v: %w", err, common.ErrInterface)
	}
	return &Kernel{
		wg:    client,
		links: platformLinks(),
		log:   common.LoggerOrDefault(logger),
	}, nil
}

// Close releases the wgctrl client.
func (k *Kernel) Close() error {
	return k.wg.Close()
}

// Create adds a WireGuard link named name.
func (k *Kernel) Create(ctx context.Context, name string) (Handle, error) {
	if err := ctx.Err(); err != nil {
		return Handle{}, err
	}
	if _, err := k.links.index(name); err == nil {
		return Handle{}, fmt.Errorf("interface %s already exists (run disconnect first): %w", name, common.ErrInterface)
	}

	idx, err := k.links.add(name)
	if err != nil {
		if _, lerr := k.links.index(name); lerr == nil {
			if derr := k.links.del(name); derr != nil {
				k.log.Warn("Failed to delete partially created interface %s: %v", name, derr)
			}
		}
		if errors.Is(err, common.ErrUnsupportedPlatform) {
			return Handle{}, fmt.Errorf("creating WireGuard interface %q: %w", name, err)
		}
		return Handle{}, fmt.Errorf("failed to create WireGuard interface %q: %v: %w", name, err, common.ErrInterface)
	}
	k.log.Debug("Created interface %s (index %d)", name, idx)
	return Handle{Name: name, Index: idx}, nil
}

// Open looks up an existing link.
func (k *Kernel) Open(ctx context.Context, name string) (Handle, error) {
	if err := ctx.Err(); err != nil {
		return Handle{}, err
	}
	idx, err := k.links.index(name)
	if err != nil {
		return Handle{}, fmt.Errorf("interface %s: %v: %w", name, err, common.ErrInterface)
	}
	return Handle{Name: name, Index: idx}, nil
}

// Configure replaces the device configuration, assigns addresses and sets
// the link up.
func (k *Kernel) Configure(ctx context.Context, h Handle, cfg InterfaceConfig) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := k.wg.ConfigureDevice(h.Name, toWGConfig(cfg)); err != nil {
		return fmt.Errorf("failed to configure device %s: %v: %w", h.Name, err, common.ErrInterface)
	}
	if err := k.links.replaceAddrs(h.Name, cfg.Addresses); err != nil {
		return fmt.Errorf("failed to assign addresses to %s: %v: %w", h.Name, err, common.ErrInterface)
	}
	if err := k.links.setUp(h.Name); err != nil {
		return fmt.Errorf("failed to bring up %s: %v: %w", h.Name, err, common.ErrInterface)
	}
	return nil
}

// Telemetry reads the device's peers.
func (k *Kernel) Telemetry(ctx context.Context, h Handle) ([]PeerTelemetry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	device, err := k.wg.Device(h.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to get device info for %s: %w", h.Name, err)
	}
	return telemetryFrom(device), nil
}

// SetDown sets the link down.
func (k *Kernel) SetDown(ctx context.Context, h Handle) error {
	if err := k.links.setDown(h.Name); err != nil {
		return fmt.Errorf("failed to set %s down: %w", h.Name, err)
	}
	return nil
}

// Remove deletes the link.
func (k *Kernel) Remove(ctx context.Context, h Handle) error {
	if err := k.links.del(h.Name); err != nil {
		return fmt.Errorf("failed to delete link %s: %v: %w", h.Name, err, common.ErrInterface)
	}
	k.log.Debug("Removed interface %s", h.Name)
	return nil
}

func toWGConfig(cfg InterfaceConfig) wgtypes.Config {
	priv := cfg.PrivateKey
	peers := make([]wgtypes.PeerConfig, 0, len(cfg.Peers))
	for _, p := range cfg.Peers {
		keepalive := p.Keepalive
		allowed := make([]net.IPNet, 0, len(p.AllowedIPs))
		for _, prefix := range p.AllowedIPs {
			allowed = append(allowed, prefixToIPNet(prefix))
		}
		peers = append(peers, wgtypes.PeerConfig{
			PublicKey:                   p.PublicKey,
			Endpoint:                    p.Endpoint,
			PersistentKeepaliveInterval: &keepalive,
			ReplaceAllowedIPs:           true,
			AllowedIPs:                  allowed,
		})
	}
	return wgtypes.Config{
		PrivateKey:   &priv,
		ReplacePeers: true,
		Peers:        peers,
	}
}

func telemetryFrom(device *wgtypes.Device) []PeerTelemetry {
	out := make([]PeerTelemetry, 0, len(device.Peers))
	for _, p := range device.Peers {
		out = append(out, PeerTelemetry{
			PeerID:               p.PublicKey,
			HandshakeEstablished: !p.LastHandshakeTime.IsZero(),
			LastHandshake:        p.LastHandshakeTime,
			TxBytes:              p.TransmitBytes,
			RxBytes:              p.ReceiveBytes,
		})
	}
	return out
}

func prefixToIPNet(p netip.Prefix) net.IPNet {
	p = p.Masked()
	addr := p.Addr()
	return net.IPNet{
		IP:   net.IP(addr.AsSlice()),
		Mask: net.CIDRMask(p.Bits(), addr.BitLen()),
	}
}
