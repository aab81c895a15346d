package hostnet

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"net/netip"
	"os"

	"github.com/godbus/dbus/v5"

	"github.com/yllada/vpn-client/common"
)

const (
	resolvedDest    = "org.freedesktop.resolve1"
	resolvedPath    = dbus.ObjectPath("/org/freedesktop/resolve1")
	resolvedManager = "org.freedesktop.resolve1.Manager"

	// ResolvConfPath is the resolver file captured before DNS changes.
	ResolvConfPath = "/etc/resolv.conf"

	// Address families as systemd-resolved expects them.
	familyInet  = 2
	familyInet6 = 10
)

// resolvedAddress is the (iay) struct of SetLinkDNS.
type resolvedAddress struct {
	Family  int32
	Address []byte
}

// resolvedDomain is the (sb) struct of SetLinkDomains.
type resolvedDomain struct {
	Domain      string
	RoutingOnly bool
}

type resolvedAPI interface {
	SetLinkDNS(ctx context.Context, ifindex int32, addrs []resolvedAddress) error
	SetLinkDomains(ctx context.Context, ifindex int32, domains []resolvedDomain) error
	RevertLink(ctx context.Context, ifindex int32) error
	Close() error
}

type busResolved struct {
	conn *dbus.Conn
	obj  dbus.BusObject
}

func dialResolved() (resolvedAPI, error) {
	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to system bus: %w", err)
	}
	return &busResolved{conn: conn, obj: conn.Object(resolvedDest, resolvedPath)}, nil
}

func (b *busResolved) call(ctx context.Context, method string, args ...interface{}) error {
	return b.obj.CallWithContext(ctx, resolvedManager+"."+method, 0, args...).Err
}

func (b *busResolved) SetLinkDNS(ctx context.Context, ifindex int32, addrs []resolvedAddress) error {
	return b.call(ctx, "SetLinkDNS", ifindex, addrs)
}

func (b *busResolved) SetLinkDomains(ctx context.Context, ifindex int32, domains []resolvedDomain) error {
	return b.call(ctx, "SetLinkDomains", ifindex, domains)
}

func (b *busResolved) RevertLink(ctx context.Context, ifindex int32) error {
	return b.call(ctx, "RevertLink", ifindex)
}

func (b *busResolved) Close() error {
	return b.conn.Close()
}

// ResolvedDNS routes all DNS lookups to the tunnel link through
// systemd-resolved, and snapshots /etc/resolv.conf so the file can be put
// back if anything rewrote it.
type ResolvedDNS struct {
	path    string
	dial    func() (resolvedAPI, error)
	ifindex func(name string) (int, error)
	log     common.Logger
}

// NewResolvedDNS creates a DNS manager talking to systemd-resolved on the
// system bus.
func NewResolvedDNS(logger common.Logger) *ResolvedDNS {
	return &ResolvedDNS{
		path:    ResolvConfPath,
		dial:    dialResolved,
		ifindex: interfaceIndex,
		log:     common.LoggerOrDefault(logger),
	}
}

func interfaceIndex(name string) (int, error) {
	iface, err := net.InterfaceByName(name)
	if err != nil {
		return 0, err
	}
	return iface.Index, nil
}

// Snapshot captures the resolver file. It returns nil if the file cannot be
// read.
func (d *ResolvedDNS) Snapshot(ctx context.Context) *DNSSnapshot {
	content, err := os.ReadFile(d.path)
	if err != nil {
		d.log.Warn("Could not snapshot %s: %v", d.path, err)
		return nil
	}
	return &DNSSnapshot{path: d.path, content: content}
}

// Apply sets servers on ifname and makes it the default DNS route ("~.").
func (d *ResolvedDNS) Apply(ctx context.Context, ifname string, servers []string) error {
	addrs := make([]resolvedAddress, 0, len(servers))
	for _, s := range servers {
		ip, err := netip.ParseAddr(s)
		if err != nil {
			return fmt.Errorf("invalid DNS server %q: %v: %w", s, err, common.ErrNetworkSetup)
		}
		family := int32(familyInet)
		if ip.Is6() {
			family = familyInet6
		}
		addrs = append(addrs, resolvedAddress{Family: family, Address: ip.AsSlice()})
	}

	idx, err := d.ifindex(ifname)
	if err != nil {
		return fmt.Errorf("interface %s: %v: %w", ifname, err, common.ErrNetworkSetup)
	}

	api, err := d.dial()
	if err != nil {
		return fmt.Errorf("systemd-resolved unavailable: %v: %w", err, common.ErrNetworkSetup)
	}
	defer api.Close()

	if err := api.SetLinkDNS(ctx, int32(idx), addrs); err != nil {
		return fmt.Errorf("SetLinkDNS on %s: %v: %w", ifname, err, common.ErrNetworkSetup)
	}
	if err := api.SetLinkDomains(ctx, int32(idx), []resolvedDomain{{Domain: ".", RoutingOnly: true}}); err != nil {
		if rerr := api.RevertLink(ctx, int32(idx)); rerr != nil {
			d.log.Warn("Failed to revert DNS on %s: %v", ifname, rerr)
		}
		return fmt.Errorf("SetLinkDomains on %s: %v: %w", ifname, err, common.ErrNetworkSetup)
	}

	d.log.Info("DNS for all domains now resolved via %s (%v)", ifname, servers)
	return nil
}

// Revert drops the per-link settings and rewrites the resolver file if its
// content changed since the snapshot.
func (d *ResolvedDNS) Revert(ctx context.Context, ifname string, snap *DNSSnapshot) {
	if idx, err := d.ifindex(ifname); err != nil {
		d.log.Debug("Interface %s gone, skipping RevertLink: %v", ifname, err)
	} else if api, err := d.dial(); err != nil {
		d.log.Warn("systemd-resolved unavailable: %v", err)
	} else {
		if err := api.RevertLink(ctx, int32(idx)); err != nil {
			d.log.Warn("Failed to revert DNS on %s: %v", ifname, err)
		}
		api.Close()
	}

	if snap == nil || snap.path == "" {
		return
	}
	current, err := os.ReadFile(snap.path)
	if err == nil && bytes.Equal(current, snap.content) {
		return
	}
	if err := os.WriteFile(snap.path, snap.content, 0644); err != nil {
		d.log.Error("Failed to restore %s: %v", snap.path, err)
		return
	}
	d.log.Info("Restored %s", snap.path)
}
