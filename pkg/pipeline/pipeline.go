// Package pipeline defines the per-connection processing chain: a decode
// stage, an encode stage, and a handler stage, assembled in that order by
// a Factory exactly once per accepted connection.
//
// The decode stage buffers partial frames and is therefore stateful: a
// fresh instance is built for every connection and never reused. The
// encode stage is a single shared instance and must tolerate concurrent
// invocation from every worker loop. The handler stage carries the
// business logic and is supplied by the embedding server; there is no
// default.
package pipeline

import (
	"errors"
	"io"
	"net"
)

// Conn is the view of a connection available to handler stages. The
// concrete implementation lives in the server package.
type Conn interface {
	// ID returns the connection identifier assigned at accept time.
	ID() uint64

	// RemoteAddr returns the peer address.
	RemoteAddr() net.Addr

	// LocalAddr returns the local address.
	LocalAddr() net.Addr

	// Send encodes payload through the connection's encode stage and
	// writes it to the peer. Safe for concurrent use.
	Send(payload []byte) error

	// Close tears down the connection. The handler's OnClose fires once
	// the teardown completes.
	Close() error
}

// Decoder is the stateful decode stage. Decode blocks on r until one
// complete frame is available and returns its payload.
//
// A Decoder instance is exclusively owned by a single connection; it is
// never invoked concurrently and never reused across connections.
type Decoder interface {
	Decode(r io.Reader) ([]byte, error)
}

// Encoder is the stateless encode stage, shared by every connection of a
// server. Implementations must be safe under concurrent invocation from
// all worker loops simultaneously.
type Encoder interface {
	Encode(w io.Writer, payload []byte) error
}

// Handler is the business stage of the pipeline. All three callbacks for
// one connection execute serially on the connection's worker loop.
type Handler interface {
	// OnOpen fires once when the connection's pipeline has been built.
	OnOpen(c Conn)

	// OnMessage fires for every decoded frame. The payload is only valid
	// for the duration of the call; handlers that retain it must copy.
	OnMessage(c Conn, payload []byte)

	// OnClose fires exactly once when the connection ends, with the
	// error that ended it (nil on clean peer close).
	OnClose(c Conn, err error)
}

// DecoderFactory builds the per-connection decode stage.
type DecoderFactory func() Decoder

// HandlerFactory builds the per-connection handler stage. An error
// closes only the offending connection, never the acceptor.
type HandlerFactory func() (Handler, error)

// ErrNoHandlerFactory is returned by NewFactory when the mandatory
// handler factory is missing.
var ErrNoHandlerFactory = errors.New("pipeline: handler factory is required")

// Pipeline is the assembled three-stage chain for one connection.
type Pipeline struct {
	Decoder Decoder
	Encoder Encoder
	Handler Handler
}

// Factory builds pipelines. The handler factory is mandatory; decode and
// encode stages default to the length-prefixed framed codec.
type Factory struct {
	decoder DecoderFactory
	encoder Encoder
	handler HandlerFactory
}

// FactoryOption overrides a default stage.
type FactoryOption func(*Factory)

// WithDecoderFactory replaces the default framed decode stage.
func WithDecoderFactory(df DecoderFactory) FactoryOption {
	return func(f *Factory) { f.decoder = df }
}

// WithEncoder replaces the default framed encode stage. The instance is
// shared across all connections and must be stateless.
func WithEncoder(e Encoder) FactoryOption {
	return func(f *Factory) { f.encoder = e }
}

// NewFactory creates a pipeline factory around the mandatory handler
// factory.
func NewFactory(handler HandlerFactory, opts ...FactoryOption) (*Factory, error) {
	if handler == nil {
		return nil, ErrNoHandlerFactory
	}
	f := &Factory{
		decoder: func() Decoder { return NewFramedDecoder(nil, 0) },
		encoder: NewFramedEncoder(),
		handler: handler,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Build assembles a pipeline for one connection: a fresh decoder, the
// shared encoder, and a fresh handler, in that order.
func (f *Factory) Build() (*Pipeline, error) {
	h, err := f.handler()
	if err != nil {
		return nil, err
	}
	return &Pipeline{
		Decoder: f.decoder(),
		Encoder: f.encoder,
		Handler: h,
	}, nil
}

// Encoder returns the shared encode stage instance.
func (f *Factory) Encoder() Encoder {
	return f.encoder
}
