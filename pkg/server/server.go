// Package server implements the TCP server lifecycle: a single-use
// state machine driving transport selection, reactor group construction,
// port binding, connection registration, and ordered shutdown.
package server

import (
	"errors"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tcpkit/tcpkit/internal/logger"
	"github.com/tcpkit/tcpkit/pkg/bufpool"
	"github.com/tcpkit/tcpkit/pkg/metrics"
	"github.com/tcpkit/tcpkit/pkg/pipeline"
	"github.com/tcpkit/tcpkit/pkg/reactor"
	"github.com/tcpkit/tcpkit/pkg/transport"
)

// Server is a single-use TCP server. Construct with New, then Init,
// then Start; Stop ends its life for good. A stopped server cannot be
// restarted.
type Server struct {
	cfg     Config
	state   stateMachine
	factory *pipeline.Factory
	metrics metrics.ServerMetrics
	pool    *bufpool.Pool

	boss    *reactor.Group
	workers *reactor.Group
	ln      net.Listener

	boundPort int
	done      chan struct{}

	connMu     sync.Mutex
	conns      map[uint64]*Conn
	active     atomic.Int32
	nextConnID atomic.Uint64

	// shutdownObserver, when set, is invoked after each reactor group has
	// fully quiesced during Stop. Tests use it to assert ordering.
	shutdownObserver func(group string)
}

// Option configures optional server collaborators.
type Option func(*options)

type options struct {
	decoder pipeline.DecoderFactory
	encoder pipeline.Encoder
	metrics metrics.ServerMetrics
	pool    *bufpool.Pool
}

// WithDecoderFactory replaces the default length-prefixed decode stage.
func WithDecoderFactory(df pipeline.DecoderFactory) Option {
	return func(o *options) { o.decoder = df }
}

// WithEncoder replaces the default length-prefixed encode stage. The
// instance is shared across all connections and must be stateless.
func WithEncoder(e pipeline.Encoder) Option {
	return func(o *options) { o.encoder = e }
}

// WithMetrics attaches a metrics recorder. Nil disables collection.
func WithMetrics(m metrics.ServerMetrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithBufferPool supplies the buffer pool used by the default decode
// stage. Nil uses the package-global pool.
func WithBufferPool(p *bufpool.Pool) Option {
	return func(o *options) { o.pool = p }
}

// New creates a server in the Created state. The handler factory is
// mandatory; it builds the business stage of every connection's
// pipeline.
func New(cfg Config, handler pipeline.HandlerFactory, opts ...Option) (*Server, error) {
	cfg = cfg.withDefaults()

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	s := &Server{
		cfg:     cfg,
		metrics: o.metrics,
		pool:    o.pool,
		done:    make(chan struct{}),
		conns:   make(map[uint64]*Conn),
	}

	fopts := make([]pipeline.FactoryOption, 0, 2)
	if o.decoder != nil {
		fopts = append(fopts, pipeline.WithDecoderFactory(o.decoder))
	} else {
		fopts = append(fopts, pipeline.WithDecoderFactory(func() pipeline.Decoder {
			return pipeline.NewFramedDecoder(s.pool, cfg.MaxFrameSize)
		}))
	}
	if o.encoder != nil {
		fopts = append(fopts, pipeline.WithEncoder(o.encoder))
	}

	f, err := pipeline.NewFactory(handler, fopts...)
	if err != nil {
		return nil, err
	}
	s.factory = f
	return s, nil
}

// Init transitions Created to Initialized. It allocates nothing; its
// job is to make lifecycle misuse detectable before any resource is
// touched. Returns ErrAlreadyInitialized on any repeat call.
func (s *Server) Init() error {
	if !s.state.compareAndSwap(StateCreated, StateInitialized) {
		return ErrAlreadyInitialized
	}
	return nil
}

// Start binds the listening port and blocks until the server has fully
// stopped. Exactly one of lis.OnSuccess (with the bound port, before
// blocking) or lis.OnFailure fires. A concurrent Stop unblocks Start,
// which then returns nil.
//
// Must be called on a server in the Initialized state; anything else
// fails with ErrAlreadyStarted and touches no resources.
func (s *Server) Start(lis Listener) error {
	if !s.state.compareAndSwap(StateInitialized, StateStarting) {
		notifyFailure(lis, ErrAlreadyStarted)
		return ErrAlreadyStarted
	}

	defer func() {
		if s.IsRunning() {
			_ = s.Stop(nil)
		}
	}()

	if err := s.bootstrap(); err != nil {
		s.state.compareAndSwap(StateStarting, StateShutdown)
		logger.Error("server start failed", logger.KeyError, err.Error())
		notifyFailure(lis, err)
		return err
	}

	notifySuccess(lis, s.boundPort)
	<-s.done
	return nil
}

// Handle tracks a server started in the background.
type Handle struct {
	done chan struct{}
	err  error
}

// Wait blocks until the server has fully stopped and returns Start's
// result.
func (h *Handle) Wait() error {
	<-h.done
	return h.err
}

// StartBackground runs Start on its own goroutine and returns
// immediately. The listener reports the start outcome; the handle
// reports the final result once the server stops.
func (s *Server) StartBackground(lis Listener) *Handle {
	h := &Handle{done: make(chan struct{})}
	go func() {
		h.err = s.Start(lis)
		close(h.done)
	}()
	return h
}

// bootstrap selects the transport, builds the reactor groups, binds the
// port, and launches the accept runners. On any failure everything
// built so far is torn down before returning.
func (s *Server) bootstrap() error {
	backend := transport.Select(s.cfg.PreferNative)

	// The acceptor group is pinned at io rate 100: its loops accept and
	// hand off, never run queued tasks.
	s.boss = reactor.NewGroup("boss", s.cfg.BossThreads, 100, s.metrics)
	s.workers = reactor.NewGroup("worker", s.cfg.WorkerThreads, s.cfg.IORate, s.metrics)

	addr := net.JoinHostPort(s.cfg.BindAddress, strconv.Itoa(s.cfg.Port))
	ln, err := backend.Listen(addr)
	if err != nil {
		if s.metrics != nil {
			s.metrics.RecordBind(backend.Name(), "failure")
		}
		s.boss.Shutdown()
		s.workers.Shutdown()
		return &BindError{Port: s.cfg.Port, Cause: err}
	}
	s.ln = ln
	s.boundPort = ln.Addr().(*net.TCPAddr).Port
	if s.metrics != nil {
		s.metrics.RecordBind(backend.Name(), "success")
	}

	if !s.state.compareAndSwap(StateStarting, StateStarted) {
		_ = ln.Close()
		s.boss.Shutdown()
		s.workers.Shutdown()
		return &StartupError{Cause: ErrAlreadyShutdown}
	}

	// One accept runner per acceptor loop. The runner occupies its loop
	// until the listener closes.
	for i := 0; i < s.boss.Size(); i++ {
		loop := s.boss.Next()
		if err := loop.PostIO(func() { s.acceptLoop(ln) }); err != nil {
			_ = ln.Close()
			s.boss.Shutdown()
			s.workers.Shutdown()
			return &StartupError{Cause: err}
		}
	}

	logger.Info("server started",
		logger.KeyPort, s.boundPort,
		logger.KeyTransport, backend.Name(),
		logger.KeyGroup, "boss", logger.KeyLoops, s.boss.Size(),
		logger.KeyIORate, s.cfg.IORate)
	return nil
}

// acceptLoop accepts until the listener closes, handing every accepted
// connection to the worker group.
func (s *Server) acceptLoop(ln net.Listener) {
	for {
		raw, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) || !s.IsRunning() {
				return
			}
			// transient accept failure; the listener is still open
			logger.Warn("accept failed", logger.KeyError, err.Error())
			continue
		}
		s.register(raw)
	}
}

// register binds an accepted connection to a worker loop chosen
// round-robin and builds its pipeline on that loop. A pipeline build
// failure closes only this connection.
func (s *Server) register(raw net.Conn) {
	if tc, ok := raw.(*net.TCPConn); ok {
		_ = tc.SetKeepAlive(true)
		_ = tc.SetNoDelay(true)
	}

	loop := s.workers.Next()
	id := s.nextConnID.Add(1)

	if err := loop.PostIO(func() {
		pipe, err := s.factory.Build()
		if err != nil {
			logger.Warn("pipeline build failed, dropping connection",
				logger.KeyConnID, id,
				logger.KeyRemoteAddr, raw.RemoteAddr().String(),
				logger.KeyError, err.Error())
			_ = raw.Close()
			return
		}

		c := &Conn{id: id, raw: raw, loop: loop, pipe: pipe, srv: s}
		s.addConn(c)

		logger.Debug("connection accepted",
			logger.KeyConnID, id,
			logger.KeyRemoteAddr, raw.RemoteAddr().String(),
			logger.KeyLoop, loop.Name())

		pipe.Handler.OnOpen(c)
		go c.serve()
	}); err != nil {
		_ = raw.Close()
	}
}

func (s *Server) addConn(c *Conn) {
	s.connMu.Lock()
	s.conns[c.id] = c
	s.connMu.Unlock()

	n := s.active.Add(1)
	if s.metrics != nil {
		s.metrics.RecordConnectionAccepted()
		s.metrics.SetActiveConnections(n)
	}
}

// connDone removes a closed connection from the registry. Safe to call
// once per connection; teardown guarantees that.
func (s *Server) connDone(c *Conn) {
	s.connMu.Lock()
	_, ok := s.conns[c.id]
	if ok {
		delete(s.conns, c.id)
	}
	s.connMu.Unlock()
	if !ok {
		return
	}

	n := s.active.Add(-1)
	if s.metrics != nil {
		s.metrics.RecordConnectionClosed()
		s.metrics.SetActiveConnections(n)
	}
}

// Stop shuts the server down in order: stop accepting, quiesce the
// acceptor group, interrupt blocked reads, drain connections under the
// grace period, quiesce the worker group, release the port. Exactly one
// caller wins; every other caller gets ErrAlreadyShutdown with no
// teardown performed.
//
// The winning call blocks until teardown completes; the waits on the
// reactor groups are uninterruptible. A blocked Start unblocks once
// Stop finishes.
func (s *Server) Stop(lis Listener) error {
	if !s.state.compareAndSwap(StateStarted, StateShutdown) {
		notifyFailure(lis, ErrAlreadyShutdown)
		return ErrAlreadyShutdown
	}

	logger.Info("server stopping", logger.KeyPort, s.boundPort)

	_ = s.ln.Close()

	s.boss.Shutdown()
	s.observeShutdown("boss")

	s.interruptReads()
	s.waitConnections()

	s.workers.Shutdown()
	s.observeShutdown("worker")

	close(s.done)

	logger.Info("server stopped", logger.KeyPort, s.boundPort)
	notifySuccess(lis, s.boundPort)
	return nil
}

func (s *Server) observeShutdown(group string) {
	if s.shutdownObserver != nil {
		s.shutdownObserver(group)
	}
}

// interruptReads expires the read deadline on every live connection so
// read loops blocked in a decode wake up and begin teardown.
func (s *Server) interruptReads() {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	for _, c := range s.conns {
		_ = c.raw.SetReadDeadline(time.Now())
	}
}

// waitConnections waits up to the configured grace period for active
// connections to drain, then force-closes the stragglers.
func (s *Server) waitConnections() {
	deadline := time.Now().Add(s.cfg.ShutdownTimeout)
	tick := time.NewTicker(10 * time.Millisecond)
	defer tick.Stop()

	for s.active.Load() > 0 {
		if time.Now().After(deadline) {
			break
		}
		<-tick.C
	}

	s.connMu.Lock()
	remaining := make([]*Conn, 0, len(s.conns))
	for _, c := range s.conns {
		remaining = append(remaining, c)
	}
	s.connMu.Unlock()

	for _, c := range remaining {
		logger.Warn("force closing connection after grace period",
			logger.KeyConnID, c.id,
			logger.KeyRemoteAddr, c.raw.RemoteAddr().String())
		_ = c.raw.Close()
		if s.metrics != nil {
			s.metrics.RecordConnectionForceClosed()
		}
	}
}

// IsRunning reports whether the server is in the Started state.
func (s *Server) IsRunning() bool {
	return s.state.is(StateStarted)
}

// State returns the current lifecycle state.
func (s *Server) State() State {
	return s.state.current()
}

// Port returns the bound listening port. Valid once the start
// listener's OnSuccess has fired.
func (s *Server) Port() int {
	return s.boundPort
}

// ActiveConnections returns the current number of live connections.
func (s *Server) ActiveConnections() int {
	return int(s.active.Load())
}
