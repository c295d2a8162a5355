//go:build !linux

package native

import "syscall"

// reusePortControl is a no-op on platforms without SO_REUSEPORT support in
// this module, matching shockwave/pkg/shockwave/socket/tuning_other.go's
// "not available on this platform" stance rather than failing the bind.
func reusePortControl(network, address string, c syscall.RawConn) error {
	return nil
}

const reusePortSupported = false
