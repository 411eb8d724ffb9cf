package eventstream

import (
	"fmt"
	"log/slog"
	"math/rand"
	"net"
	"sync"

	"github.com/remotecl/remotecl/pkg/protocol"
	"github.com/remotecl/remotecl/pkg/stream"
	"github.com/remotecl/remotecl/pkg/wire"
)

const (
	ephemeralLow  = 49152
	ephemeralHigh = 65535
	bindRetries   = 16
)

// Server is the server-side half of one connection's event stream: a
// listener bound to a random IANA ephemeral port, accepting exactly one
// client connection, then forwarding triggered callbacks to it. Trigger is
// safe to call from any goroutine — native callback completions arrive from
// whichever goroutine finished the enqueued work, not from the connection's
// own dispatch loop — so it is guarded by a mutex of its own, distinct from
// the primary stream's.
type Server struct {
	listener net.Listener
	port     uint16

	mu   sync.Mutex
	ps   *stream.PacketStream
	conn net.Conn

	log *slog.Logger
}

// Listen binds a random port in the ephemeral range, retrying up to
// bindRetries times on failure. Returns a Server with Port() == 0 if every
// attempt failed, matching the wire contract that a zero port announces
// "event stream refused."
func Listen(log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	s := &Server{log: log}
	for attempt := 0; attempt < bindRetries; attempt++ {
		port := ephemeralLow + rand.Intn(ephemeralHigh-ephemeralLow+1)
		ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
		if err != nil {
			continue
		}
		s.listener = ln
		s.port = uint16(port)
		return s
	}
	log.Warn("eventstream: exhausted bind retries, event stream unavailable", "attempts", bindRetries)
	return s
}

// Port returns the bound port, or 0 if Listen failed to bind one.
func (s *Server) Port() uint16 { return s.port }

// Accept blocks for the one client connection expected on this event
// stream. Call once; subsequent calls return the same connection's stream
// once established.
func (s *Server) Accept() error {
	if s.listener == nil {
		return fmt.Errorf("eventstream: no listener bound")
	}
	s.mu.Lock()
	established := s.conn != nil
	s.mu.Unlock()
	if established {
		return nil
	}
	conn, err := s.listener.Accept()
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.conn = conn
	s.ps = stream.New(wire.NewStream(conn))
	s.mu.Unlock()
	return nil
}

// Trigger delivers a CallbackTrigger(slot) followed by an
// EventCallbackTrigger(status) notification. Safe for concurrent use; calls
// serialize against each other but never against the primary stream.
func (s *Server) Trigger(slot protocol.ID, status int32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ps == nil {
		return fmt.Errorf("eventstream: no client connected")
	}
	if err := s.ps.Write(protocol.TagCallbackTrigger, protocol.CallbackTrigger{Value: uint32(slot)}); err != nil {
		return err
	}
	if err := s.ps.Write(protocol.TagEventCallbackTrigger, protocol.EventCallbackTrigger{Value: uint32(status)}); err != nil {
		return err
	}
	return s.ps.Flush()
}

// Close shuts down the listener and any accepted connection.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		s.conn.Close()
	}
	if s.listener != nil {
		return s.listener.Close()
	}
	return nil
}
