//go:build !linux

package tunnel

import (
	"net/netip"

	"github.com/yllada/vpn-client/common"
)

// unsupportedOps is used where no kernel link API is wired. Userspace
// WireGuard implementations create their own interface; wgctrl can still
// configure and read them.
type unsupportedOps struct{}

func platformLinks() linkOps {
	return unsupportedOps{}
}

func (unsupportedOps) add(string) (int, error)   { return 0, common.ErrUnsupportedPlatform }
func (unsupportedOps) index(string) (int, error) { return 0, common.ErrUnsupportedPlatform }

func (unsupportedOps) replaceAddrs(string, []netip.Prefix) error {
	return common.ErrUnsupportedPlatform
}

func (unsupportedOps) setUp(string) error   { return common.ErrUnsupportedPlatform }
func (unsupportedOps) setDown(string) error { return common.ErrUnsupportedPlatform }
func (unsupportedOps) del(string) error     { return common.ErrUnsupportedPlatform }
