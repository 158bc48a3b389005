package transport

import "net"

// portableBackend listens with the plain net package and works on every
// platform the Go runtime supports.
type portableBackend struct{}

func (portableBackend) Name() string { return "portable" }

func (portableBackend) Listen(address string) (net.Listener, error) {
	return net.Listen("tcp", address)
}
