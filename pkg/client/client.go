// Package client implements the RemoteCL client SDK: the connection that an
// OpenCL ICD implementation loads into a host process and drives from
// whichever thread the application calls a cl* entry point on. It manages
// the primary request/response stream, the object registry, and (when
// negotiated) the event-notification side channel.
package client

import (
	"context"
	"fmt"
	"net"
	"sync"

	"github.com/remotecl/remotecl/pkg/eventstream"
	"github.com/remotecl/remotecl/pkg/protocol"
	"github.com/remotecl/remotecl/pkg/registry"
	"github.com/remotecl/remotecl/pkg/stream"
	"github.com/remotecl/remotecl/pkg/wire"
)

// Option configures a Client during construction.
type Option func(*config)

type config struct {
	compression bool
	eventStream bool
	dialer      func(ctx context.Context, addr string) (net.Conn, error)
}

// WithCompression enables the optional `z` payload-compression feature.
func WithCompression(enabled bool) Option {
	return func(c *config) { c.compression = enabled }
}

// WithEventStream enables negotiation of the optional `e` event-notification
// side channel.
func WithEventStream(enabled bool) Option {
	return func(c *config) { c.eventStream = enabled }
}

// WithDialer overrides how the primary connection is established, for tests
// that substitute an in-process transport.
func WithDialer(d func(ctx context.Context, addr string) (net.Conn, error)) Option {
	return func(c *config) { c.dialer = d }
}

// Client is a single RemoteCL connection: one mutex-guarded primary stream
// and object registry, plus an optional event stream. Every exported method
// acquires mu for the duration of its request/response exchange — coarse,
// but correct, and the design deliberately accepts full serialization as the
// price of a simple protocol.
type Client struct {
	mu      sync.Mutex
	conn    net.Conn
	raw     *wire.Stream
	ps      *stream.PacketStream
	reg     *registry.Registry
	version protocol.Version
	closed  bool

	events *eventstream.Client
}

// Dial connects to addr, performs the version/feature handshake, and
// (if negotiated) opens the event stream.
func Dial(ctx context.Context, addr string, opts ...Option) (*Client, error) {
	cfg := config{
		dialer: func(ctx context.Context, addr string) (net.Conn, error) {
			var d net.Dialer
			return d.DialContext(ctx, "tcp", addr)
		},
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	conn, err := cfg.dialer(ctx, addr)
	if err != nil {
		return nil, fmt.Errorf("remotecl client: dial %s: %w", addr, err)
	}

	c := &Client{
		conn: conn,
		raw:  wire.NewStream(conn),
		reg:  registry.New(),
	}
	c.ps = stream.New(c.raw)

	// The version packet is exchanged once per stream, server first: this
	// side reads and compares before sending anything else of its own.
	peer, err := protocol.ReadVersion(c.raw)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("remotecl client: read version: %w", err)
	}
	local := protocol.Local(cfg.compression, cfg.eventStream)
	if err := protocol.WriteVersion(c.raw, local); err != nil {
		conn.Close()
		return nil, fmt.Errorf("remotecl client: send version: %w", err)
	}
	if err := c.raw.Flush(); err != nil {
		conn.Close()
		return nil, err
	}
	if err := local.CompatibleWith(peer); err != nil {
		conn.Close()
		return nil, err
	}
	c.version = local

	if local.EventStream && peer.EventStream {
		ec, err := c.openEventStream(ctx, addr)
		if err != nil {
			conn.Close()
			return nil, err
		}
		c.events = ec
	}

	return c, nil
}

func (c *Client) openEventStream(ctx context.Context, addr string) (*eventstream.Client, error) {
	if err := c.ps.Write(protocol.TagEventStreamOpen, protocol.Signal{}); err != nil {
		return nil, err
	}
	if err := c.ps.Flush(); err != nil {
		return nil, err
	}
	var port protocol.U16Body
	if err := c.ps.Expect(protocol.TagPayload, &port); err != nil {
		return nil, err
	}
	if port.Value == 0 {
		return nil, nil
	}
	return eventstream.Dial(ctx, net.JoinHostPort(hostOf(addr), fmt.Sprint(port.Value)))
}

func hostOf(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}

// Events returns the event-stream client, or nil if the event stream was not
// negotiated.
func (c *Client) Events() *eventstream.Client { return c.events }

// Close sends Terminate and closes the underlying connection. Idempotent.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	c.raw.WriteUint8(uint8(protocol.TagTerminate))
	c.raw.Flush()
	if c.events != nil {
		c.events.Close()
	}
	return c.conn.Close()
}

// request sends tag/body, flushes, and reads back an expectTag/into pair,
// promoting an Error response to *protocol.RemoteError. Every typed helper
// below funnels through this single chokepoint, mirroring the reference
// implementation's send-then-block-for-reply discipline.
func (c *Client) request(tag protocol.Tag, body stream.Encoder, expectTag protocol.Tag, into stream.Decoder) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return &wire.TransportError{Op: "request", Err: fmt.Errorf("client is closed")}
	}
	if err := c.ps.Write(tag, body); err != nil {
		return err
	}
	if err := c.ps.Flush(); err != nil {
		return err
	}
	return c.ps.Expect(expectTag, into)
}

func (c *Client) requestSuccess(tag protocol.Tag, body stream.Encoder) error {
	var ok protocol.SuccessBody
	return c.request(tag, body, protocol.TagSuccess, &ok)
}

func (c *Client) requestID(tag protocol.Tag, body stream.Encoder) (protocol.ID, error) {
	var id protocol.IDPacket
	if err := c.request(tag, body, protocol.TagID, &id); err != nil {
		return 0, err
	}
	return id.Value, nil
}

func (c *Client) requestIDList(tag protocol.Tag, body stream.Encoder) ([]protocol.ID, error) {
	var list protocol.IDList
	if err := c.request(tag, body, protocol.TagIDList, &list); err != nil {
		return nil, err
	}
	return list.IDs, nil
}

func (c *Client) requestPayload(tag protocol.Tag, body stream.Encoder) (protocol.Payload[uint32], error) {
	var p protocol.Payload[uint32]
	err := c.request(tag, body, protocol.TagPayload, payloadDecoder{&p, c.version.Compression})
	return p, err
}

// payloadDecoder adapts ReadPayload's compression-aware signature to the
// stream.Decoder interface the generic request plumbing expects.
type payloadDecoder struct {
	into       *protocol.Payload[uint32]
	compressed bool
}

func (d payloadDecoder) Decode(s *wire.Stream) error {
	p, err := protocol.ReadPayload[uint32](s, d.compressed)
	if err != nil {
		return err
	}
	*d.into = p
	return nil
}
