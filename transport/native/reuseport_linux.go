//go:build linux

package native

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// reusePortControl sets SO_REUSEPORT on the listening socket before bind,
// letting multiple processes share one port (spec.md §4.2: "reusePort
// exposed verbatim to the OS if supported"). Adapted from
// shockwave/pkg/shockwave/socket/tuning_linux.go's per-platform-split
// pattern of a syscall-level socket option applied through
// ListenConfig.Control's raw-fd callback.
func reusePortControl(network, address string, c syscall.RawConn) error {
	var sockErr error
	err := c.Control(func(fd uintptr) {
		sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEPORT, 1)
	})
	if err != nil {
		return err
	}
	return sockErr
}

// reusePortSupported reports whether this platform's reusePortControl does
// something real.
const reusePortSupported = true
