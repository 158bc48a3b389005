// Package transport selects the I/O backend used for the listening
// channel.
//
// Two backends exist: a native one using Linux-specific socket options on
// top of the kernel's epoll readiness facility, and a portable one using
// the plain net package. Selection happens once at server startup: the
// configuration states a preference, and a runtime capability probe
// decides whether the native backend is actually usable. A failed probe
// is never fatal - the server downgrades to the portable backend with a
// log warning.
package transport

import (
	"net"

	"github.com/tcpkit/tcpkit/internal/logger"
)

// Backend creates the listening channel for the server bootstrap.
type Backend interface {
	// Name returns the backend identifier ("native" or "portable") for
	// logs and metrics.
	Name() string

	// Listen binds a TCP listener on the given address.
	Listen(address string) (net.Listener, error)
}

// probeNative is overridable in tests to simulate an unavailable native
// backend.
var probeNative = nativeProbe

// Select returns the backend to use. With preferNative false the
// portable backend is chosen immediately; otherwise the native backend
// is probed and chosen on success, falling back to portable on failure.
func Select(preferNative bool) Backend {
	if !preferNative {
		return portableBackend{}
	}
	if err := probeNative(); err != nil {
		logger.Warn("native transport unavailable, falling back to portable backend", "error", err)
		return portableBackend{}
	}
	return newNativeBackend()
}
