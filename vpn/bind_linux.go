//go:build linux

package vpn

import (
	"strings"
	"syscall"

	"golang.org/x/sys/unix"
)

func deviceControl(device string) func(network, address string, c syscall.RawConn) error {
	trimmed := strings.TrimSpace(device)
	if trimmed == "" {
		return nil
	}
	return func(network, address string, c syscall.RawConn) error {
		var bindErr error
		if err := c.Control(func(fd uintptr) {
			bindErr = unix.BindToDevice(int(fd), trimmed)
		}); err != nil {
			return err
		}
		return bindErr
	}
}
