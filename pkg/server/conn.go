package server

import (
	"errors"
	"io"
	"net"
	"os"
	"sync"

	"github.com/tcpkit/tcpkit/internal/logger"
	"github.com/tcpkit/tcpkit/pkg/pipeline"
	"github.com/tcpkit/tcpkit/pkg/reactor"
)

var _ pipeline.Conn = (*Conn)(nil)

// Conn is one accepted connection. It is bound to a single worker loop
// for its entire lifetime: every pipeline stage invocation for this
// connection executes serially on that loop, so stage state needs no
// locking. The pipeline is never shared with another connection.
type Conn struct {
	id   uint64
	raw  net.Conn
	loop *reactor.Loop
	pipe *pipeline.Pipeline
	srv  *Server

	// writeMu serializes writes; Send may be called from the owning loop
	// and from any goroutine the handler hands the Conn to.
	writeMu  sync.Mutex
	downOnce sync.Once
}

// ID returns the connection identifier assigned at accept time.
func (c *Conn) ID() uint64 { return c.id }

// RemoteAddr returns the peer address.
func (c *Conn) RemoteAddr() net.Addr { return c.raw.RemoteAddr() }

// LocalAddr returns the local address.
func (c *Conn) LocalAddr() net.Addr { return c.raw.LocalAddr() }

// Send passes payload through the shared encode stage and writes it to
// the peer. Safe for concurrent use.
func (c *Conn) Send(payload []byte) error {
	c.writeMu.Lock()
	err := c.pipe.Encoder.Encode(c.raw, payload)
	c.writeMu.Unlock()
	if err == nil && c.srv.metrics != nil {
		c.srv.metrics.RecordFrame("out", len(payload))
	}
	return err
}

// Close tears down the connection. The handler's OnClose fires on the
// owning loop once the read loop has unwound.
func (c *Conn) Close() error {
	return c.raw.Close()
}

// serve is the connection's read loop: decode one frame, dispatch it to
// the owning worker loop, repeat until the peer closes or an error ends
// the connection.
func (c *Conn) serve() {
	var cause error

	for {
		payload, err := c.pipe.Decoder.Decode(c.raw)
		if err != nil {
			cause = closeCause(err)
			break
		}
		if c.srv.metrics != nil {
			c.srv.metrics.RecordFrame("in", len(payload))
		}

		p := payload
		if postErr := c.loop.PostIO(func() {
			c.pipe.Handler.OnMessage(c, p)
			if rel, ok := c.pipe.Decoder.(pipeline.Releaser); ok {
				rel.Release(p)
			}
		}); postErr != nil {
			// worker group shutting down; the frame was never queued
			if rel, ok := c.pipe.Decoder.(pipeline.Releaser); ok {
				rel.Release(p)
			}
			break
		}
	}

	c.teardown(cause)
}

// closeCause normalizes read-loop errors: a clean peer close, a locally
// closed socket, and an interrupted read during shutdown all end the
// connection without an error.
func closeCause(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) || errors.Is(err, os.ErrDeadlineExceeded) {
		return nil
	}
	return err
}

// teardown runs exactly once: close the socket, fire OnClose on the
// owning loop (after any still-queued OnMessage dispatches), and
// unregister from the server.
func (c *Conn) teardown(cause error) {
	c.downOnce.Do(func() {
		_ = c.raw.Close()

		fire := func() { c.pipe.Handler.OnClose(c, cause) }
		if err := c.loop.PostIO(fire); err != nil {
			// loop already stopped and drained; safe to run inline
			fire()
		}

		if cause != nil {
			logger.Debug("connection closed",
				logger.KeyConnID, c.id,
				logger.KeyRemoteAddr, c.raw.RemoteAddr().String(),
				logger.KeyError, cause.Error())
		} else {
			logger.Debug("connection closed",
				logger.KeyConnID, c.id,
				logger.KeyRemoteAddr, c.raw.RemoteAddr().String())
		}

		c.srv.connDone(c)
	})
}
