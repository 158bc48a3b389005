//go:build linux

package transport

import (
	"context"
	"net"
	"syscall"

	"golang.org/x/sys/unix"
)

// nativeProbe verifies that the kernel's epoll facility is usable by
// creating and immediately closing an epoll instance.
func nativeProbe() error {
	fd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return err
	}
	return unix.Close(fd)
}

// nativeBackend tunes the listening socket for the Linux network stack:
// SO_REUSEADDR for fast restart and TCP_DEFER_ACCEPT so accept readiness
// fires only once data arrives.
type nativeBackend struct{}

func newNativeBackend() Backend { return nativeBackend{} }

func (nativeBackend) Name() string { return "native" }

func (nativeBackend) Listen(address string) (net.Listener, error) {
	lc := net.ListenConfig{
		Control: func(network, addr string, c syscall.RawConn) error {
			var sockErr error
			err := c.Control(func(fd uintptr) {
				sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
				if sockErr != nil {
					return
				}
				sockErr = unix.SetsockoptInt(int(fd), unix.IPPROTO_TCP, unix.TCP_DEFER_ACCEPT, 1)
			})
			if err != nil {
				return err
			}
			return sockErr
		},
	}
	return lc.Listen(context.Background(), "tcp", address)
}
