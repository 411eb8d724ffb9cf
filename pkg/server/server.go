// Package server implements the RemoteCL server: a TCP listener accepting
// one connection per client process, each driven by its own dispatch loop,
// handle table, and optional event stream. The accept loop starts one
// goroutine per accepted connection, with no upper bound; within a
// connection, frames are handled one at a time on that goroutine.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/remotecl/remotecl/internal/metrics"
	"github.com/remotecl/remotecl/pkg/protocol"
	"github.com/remotecl/remotecl/pkg/stream"
	"github.com/remotecl/remotecl/pkg/wire"
)

const defaultShutdownTimeout = 5 * time.Second

// maxConcurrentFrames is the capacity of the per-connection semaphore
// serveConn attaches to each conn for background work. No handler in this
// package acquires it; frames themselves are dispatched inline.
const maxConcurrentFrames = 64

// Option configures a Server.
type Option func(*Server)

// WithCompression advertises the optional `z` payload-compression feature.
func WithCompression(enabled bool) Option {
	return func(s *Server) { s.compression = enabled }
}

// WithEventStream advertises the optional `e` event-notification feature.
func WithEventStream(enabled bool) Option {
	return func(s *Server) { s.eventStream = enabled }
}

// WithShutdownTimeout configures how long Stop waits for in-flight frame
// handlers before forcing connections closed.
func WithShutdownTimeout(d time.Duration) Option {
	return func(s *Server) { s.shutdownTimeout = d }
}

// WithLogger overrides the structured logger used for connection and frame
// diagnostics.
func WithLogger(log *slog.Logger) Option {
	return func(s *Server) { s.log = log }
}

// WithMetrics attaches a metrics.Registry the server updates as connections
// open and close and as frames are dispatched. Nil (the default) disables
// metrics collection.
func WithMetrics(m *metrics.Registry) Option {
	return func(s *Server) { s.metrics = m }
}

// Server listens for RemoteCL connections and dispatches each to its own
// per-connection worker against a shared Backend.
type Server struct {
	backend         Backend
	compression     bool
	eventStream     bool
	shutdownTimeout time.Duration
	log             *slog.Logger
	metrics         *metrics.Registry

	listener net.Listener
	mu       sync.Mutex
	done     chan struct{}
	wg       sync.WaitGroup
}

// New creates a Server dispatching requests to backend.
func New(backend Backend, opts ...Option) *Server {
	s := &Server{
		backend:         backend,
		shutdownTimeout: defaultShutdownTimeout,
		log:             slog.Default(),
		done:            make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListenAndServe binds addr and accepts connections until Stop is called.
func (s *Server) ListenAndServe(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("remotecl server: listen: %w", err)
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	go func() {
		<-s.done
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-s.done:
				return nil
			default:
				s.log.Error("remotecl server: accept error", "err", err)
				return err
			}
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.serveConn(conn)
		}()
	}
}

// Addr returns the listener's bound address, or nil if ListenAndServe
// hasn't bound one yet. Useful after binding to ":0" to discover the
// assigned port.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Stop signals the server to stop accepting connections and waits up to
// ShutdownTimeout for in-flight connections to drain.
func (s *Server) Stop() {
	s.mu.Lock()
	select {
	case <-s.done:
		s.mu.Unlock()
		return
	default:
		close(s.done)
	}
	s.mu.Unlock()

	drained := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(drained)
	}()
	select {
	case <-drained:
		s.log.Info("remotecl server: all connections drained")
	case <-time.After(s.shutdownTimeout):
		s.log.Warn("remotecl server: shutdown timeout exceeded, forcing close", "timeout", s.shutdownTimeout)
	}
}

// serveConn owns one client connection end to end: version handshake,
// optional event-stream setup, handle table, and the frame dispatch loop.
func (s *Server) serveConn(conn net.Conn) {
	defer conn.Close()
	log := s.log.With("remote", conn.RemoteAddr())
	if s.metrics != nil {
		s.metrics.ConnectionOpened()
		defer s.metrics.ConnectionClosed()
	}

	// The version packet is exchanged once per stream, server first: this
	// side writes its own capabilities unconditionally, before it has seen
	// anything the peer sent, then reads the peer's and checks
	// compatibility.
	raw := wire.NewStream(conn)
	local := protocol.Local(s.compression, s.eventStream)
	if err := protocol.WriteVersion(raw, local); err != nil {
		log.Warn("remotecl server: version write failed", "err", err)
		return
	}
	if err := raw.Flush(); err != nil {
		return
	}
	peer, err := protocol.ReadVersion(raw)
	if err != nil {
		log.Warn("remotecl server: version read failed", "err", err)
		return
	}
	if err := local.CompatibleWith(peer); err != nil {
		log.Warn("remotecl server: incompatible peer", "err", err)
		return
	}

	c := newConn(s.backend, stream.New(raw), local, log)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Frames are decoded and answered strictly in arrival order: the wire
	// format has no request ID to de-multiplex replies, so the primary
	// stream is a single-writer, single-reader resource for the lifetime
	// of the connection (§5). sem and c.background are in place for work a
	// handler hands off to its own goroutine; none of the handlers in this
	// package starts such work, so every frame completes inside this loop.
	sem := make(chan struct{}, maxConcurrentFrames)
	c.sem = sem
	defer c.background.Wait()

	for {
		tag, ok := c.ps.PeekTag()
		if !ok {
			return
		}
		if protocol.Tag(tag) == protocol.TagTerminate {
			c.ps.ReadTag()
			return
		}
		if protocol.Tag(tag) == protocol.TagEventStreamOpen {
			c.ps.ReadTag()
			var sig protocol.Signal
			sig.Decode(c.ps.Raw())
			c.handleEventStreamOpen(ctx)
			continue
		}

		realTag, err := c.ps.ReadTag()
		if err != nil {
			return
		}
		start := time.Now()
		dispatchErr := s.dispatchRecovered(ctx, c, realTag, log)
		if s.metrics != nil {
			s.metrics.ObservePacket(protocol.Tag(realTag).String(), time.Since(start))
		}
		if dispatchErr != nil {
			if s.metrics != nil {
				s.metrics.ObserveError("dispatch")
			}
			var exhausted *protocol.ResourceExhaustionError
			if errors.As(dispatchErr, &exhausted) {
				c.replyError(protocol.StatusOutOfHostMemory)
			}
			log.Warn("remotecl server: frame dispatch failed", "tag", realTag, "err", dispatchErr)
			return
		}
	}
}

// dispatchRecovered runs c.dispatch for one frame, converting both a
// declared-size-too-large error and an outright panic (an allocation that
// overflows available memory before any bounds check catches it) into the
// same reply: an Error packet carrying CL_OUT_OF_HOST_MEMORY. Either way
// only this connection is torn down; the accept loop and every other
// client's connection are unaffected.
func (s *Server) dispatchRecovered(ctx context.Context, c *conn, tag protocol.Tag, log *slog.Logger) (err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("remotecl server: recovered from panic in frame dispatch", "tag", tag, "panic", r)
			c.replyError(protocol.StatusOutOfHostMemory)
			err = fmt.Errorf("remotecl server: recovered panic dispatching tag %d: %v", tag, r)
		}
	}()
	return c.dispatch(ctx, tag)
}
