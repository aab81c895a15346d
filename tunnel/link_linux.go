//go:build linux

package tunnel

import (
	"fmt"
	"net/netip"

	"github.com/vishvananda/netlink"
)

type netlinkOps struct{}

func platformLinks() linkOps {
	return netlinkOps{}
}

func (netlinkOps) add(name string) (int, error) {
	link := &netlink.GenericLink{
		LinkAttrs: netlink.LinkAttrs{Name: name},
		LinkType:  LinkType,
	}
	if err := netlink.LinkAdd(link); err != nil {
		return 0, err
	}
	created, err := netlink.LinkByName(name)
	if err != nil {
		if derr := netlink.LinkDel(link); derr != nil {
			return 0, fmt.Errorf("%v (cleanup: %v)", err, derr)
		}
		return 0, err
	}
	return created.Attrs().Index, nil
}

func (netlinkOps) index(name string) (int, error) {
	link, err := netlink.LinkByName(name)
	if err != nil {
		return 0, err
	}
	return link.Attrs().Index, nil
}

func (netlinkOps) replaceAddrs(name string, addrs []netip.Prefix) error {
	link, err := netlink.LinkByName(name)
	if err != nil {
		return err
	}
	for _, p := range addrs {
		addr, err := netlink.ParseAddr(p.String())
		if err != nil {
			return fmt.Errorf("invalid address %s: %w", p, err)
		}
		if err := netlink.AddrReplace(link, addr); err != nil {
			return err
		}
	}
	return nil
}

func (netlinkOps) setUp(name string) error {
	link, err := netlink.LinkByName(name)
	if err != nil {
		return err
	}
	return netlink.LinkSetUp(link)
}

func (netlinkOps) setDown(name string) error {
	link, err := netlink.LinkByName(name)
	if err != nil {
		return err
	}
	return netlink.LinkSetDown(link)
}

func (netlinkOps) del(name string) error {
	link, err := netlink.LinkByName(name)
	if err != nil {
		return err
	}
	return netlink.LinkDel(link)
}
