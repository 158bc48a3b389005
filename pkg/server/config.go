package server

import (
	"time"

	"github.com/tcpkit/tcpkit/pkg/pipeline"
)

// Config holds the immutable server configuration. Zero values apply the
// documented defaults; the struct is not consulted again after New.
type Config struct {
	// BindAddress is the IP to bind to. Empty binds all interfaces.
	BindAddress string

	// Port is the TCP port to listen on. 0 lets the kernel choose; the
	// bound port is reported through the start listener.
	Port int

	// BossThreads is the acceptor group size. Default 1: the acceptor's
	// sole job is accepting and handing off connections.
	BossThreads int

	// WorkerThreads is the worker group size. 0 applies default sizing
	// proportional to the available cores.
	WorkerThreads int

	// IORate is the worker loops' io-to-task scheduling rate in [1,100].
	// Default 70. The acceptor group is always pinned at 100.
	IORate int

	// PreferNative asks the transport selector for the native backend,
	// subject to the runtime capability probe.
	PreferNative bool

	// ShutdownTimeout is the grace period for active connections to
	// drain during Stop before they are force-closed. Default 30s.
	ShutdownTimeout time.Duration

	// MaxFrameSize bounds frames of the default decode stage. Default
	// pipeline.DefaultMaxFrameSize. Ignored with a custom decoder.
	MaxFrameSize int
}

// withDefaults returns a copy with defaults applied.
func (c Config) withDefaults() Config {
	if c.BossThreads <= 0 {
		c.BossThreads = 1
	}
	if c.IORate < 1 || c.IORate > 100 {
		c.IORate = 70
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = 30 * time.Second
	}
	if c.MaxFrameSize <= 0 {
		c.MaxFrameSize = pipeline.DefaultMaxFrameSize
	}
	return c
}
