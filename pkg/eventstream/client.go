// Package eventstream implements the optional second TCP connection used to
// push event-completion notifications from server to client without
// piggybacking them on the primary request/response stream, where they
// would otherwise arrive interleaved with unrelated replies. The server
// opens an ephemeral listening port and reports it to the client as a
// Payload<u16>; the client dials it once, from a receiver goroutine.
package eventstream

import (
	"context"
	"net"
	"sync"

	"github.com/remotecl/remotecl/pkg/protocol"
	"github.com/remotecl/remotecl/pkg/stream"
	"github.com/remotecl/remotecl/pkg/wire"
)

// Client receives event-completion notifications on a dedicated connection
// and dispatches them to registered callbacks. The callback registry is
// guarded by its own mutex, separate from the primary connection's, since
// notifications arrive asynchronously to any in-flight request.
type Client struct {
	conn net.Conn
	ps   *stream.PacketStream

	mu        sync.Mutex
	callbacks map[uint32]func(status int32)
	nextSlot  uint32

	done chan struct{}
}

// Dial connects to the server's announced event-stream address and starts
// the receiver goroutine.
func Dial(ctx context.Context, addr string) (*Client, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	c := &Client{
		conn:      conn,
		ps:        stream.New(wire.NewStream(conn)),
		callbacks: make(map[uint32]func(status int32)),
		done:      make(chan struct{}),
	}
	go c.receiveLoop()
	return c, nil
}

// Register assigns a fresh callback slot for fn and returns it as a
// protocol.ID for inclusion in a RegisterEventCallback request. fn is
// invoked at most once: the registry slot is cleared the moment the
// notification is delivered (DESIGN.md: at-most-once per registration
// slot, since the source is silent on repeat delivery).
func (c *Client) Register(fn func(status int32)) protocol.ID {
	c.mu.Lock()
	defer c.mu.Unlock()
	slot := c.nextSlot
	c.nextSlot++
	c.callbacks[slot] = fn
	return protocol.ID(slot)
}

// receiveLoop reads CallbackTrigger(slot) followed by EventCallbackTrigger
// (status) pairs for the lifetime of the connection, dispatching each to
// its registered callback at most once.
func (c *Client) receiveLoop() {
	for {
		var slot protocol.CallbackTrigger
		if err := c.ps.Expect(protocol.TagCallbackTrigger, &slot); err != nil {
			close(c.done)
			return
		}
		var status protocol.EventCallbackTrigger
		if err := c.ps.Expect(protocol.TagEventCallbackTrigger, &status); err != nil {
			close(c.done)
			return
		}

		c.mu.Lock()
		fn, ok := c.callbacks[slot.Value]
		delete(c.callbacks, slot.Value)
		c.mu.Unlock()

		if ok {
			fn(int32(status.Value))
		}
	}
}

// Done returns a channel closed once the receiver loop has exited, e.g.
// because the server closed the event stream.
func (c *Client) Done() <-chan struct{} { return c.done }

// Close shuts down the event-stream connection.
func (c *Client) Close() error {
	return c.conn.Close()
}
