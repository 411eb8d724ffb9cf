package server

import (
	"context"
	"log/slog"
	"sync"
	"unsafe"

	"github.com/remotecl/remotecl/pkg/eventstream"
	"github.com/remotecl/remotecl/pkg/handletable"
	"github.com/remotecl/remotecl/pkg/protocol"
	"github.com/remotecl/remotecl/pkg/stream"
)

// conn holds everything scoped to one client connection: its handle table,
// packet stream, and (once opened) its event-stream server half.
type conn struct {
	backend Backend
	ps      *stream.PacketStream
	version protocol.Version
	log     *slog.Logger

	handles *handletable.Table

	sem        chan struct{}
	background sync.WaitGroup

	eventsMu sync.Mutex
	events   *eventstream.Server

	// pendingWaitIDs holds the ID list from a TagIDList frame until the
	// TagWaitEvents frame that always follows it on this wire.
	pendingWaitIDs []protocol.ID
}

func newConn(backend Backend, ps *stream.PacketStream, version protocol.Version, log *slog.Logger) *conn {
	return &conn{
		backend: backend,
		ps:      ps,
		version: version,
		log:     log,
		handles: handletable.New(),
	}
}

func (c *conn) handleEventStreamOpen(ctx context.Context) {
	es := eventstream.Listen(c.log)
	c.eventsMu.Lock()
	c.events = es
	c.eventsMu.Unlock()

	if err := c.ps.Write(protocol.TagPayload, protocol.U16Body{Value: es.Port()}); err != nil {
		return
	}
	c.ps.Flush()
	if es.Port() == 0 {
		return
	}
	go func() {
		if err := es.Accept(); err != nil {
			c.log.Warn("remotecl server: event stream accept failed", "err", err)
		}
	}()
}

func (c *conn) replySuccess() error {
	return c.writeAndFlush(protocol.TagSuccess, protocol.SuccessBody{})
}

func (c *conn) replyError(status int32) error {
	return c.writeAndFlush(protocol.TagError, protocol.ErrorBody{Code: status})
}

func (c *conn) replyStatus(status int32) error {
	if status != protocol.StatusSuccess {
		return c.replyError(status)
	}
	return c.replySuccess()
}

func (c *conn) replyID(id protocol.ID) error {
	return c.writeAndFlush(protocol.TagID, protocol.IDPacket{Value: id})
}

func (c *conn) replyIDList(ids []protocol.ID) error {
	return c.writeAndFlush(protocol.TagIDList, protocol.IDList{IDs: ids})
}

func (c *conn) replyPayload(data []byte) error {
	return c.writePayload(data)
}

func (c *conn) replyPayloadOrError(data []byte, status int32) error {
	if status != protocol.StatusSuccess {
		return c.replyError(status)
	}
	return c.replyPayload(data)
}

func (c *conn) writeAndFlush(tag protocol.Tag, body stream.Encoder) error {
	if err := c.ps.Write(tag, body); err != nil {
		return err
	}
	return c.ps.Flush()
}

func (c *conn) writePayload(data []byte) error {
	if err := c.ps.Raw().WriteUint8(uint8(protocol.TagPayload)); err != nil {
		return err
	}
	if err := protocol.WritePayload[uint32](c.ps.Raw(), protocol.Payload[uint32]{Data: data}, c.version.Compression); err != nil {
		return err
	}
	return c.ps.Flush()
}

func (c *conn) insert(kind protocol.ObjKind, native unsafe.Pointer, status int32) error {
	if status != protocol.StatusSuccess {
		return c.replyError(status)
	}
	id, err := c.handles.Insert(kind, native)
	if err != nil {
		return c.replyError(protocol.StatusOutOfResources)
	}
	return c.replyID(id)
}

func (c *conn) insertList(kind protocol.ObjKind, natives []unsafe.Pointer, status int32) error {
	if status != protocol.StatusSuccess {
		return c.replyError(status)
	}
	ids := make([]protocol.ID, 0, len(natives))
	for _, n := range natives {
		id, err := c.handles.Insert(kind, n)
		if err != nil {
			return c.replyError(protocol.StatusOutOfResources)
		}
		ids = append(ids, id)
	}
	return c.replyIDList(ids)
}

func (c *conn) native(id protocol.ID, want protocol.ObjKind) (unsafe.Pointer, bool) {
	n, kind, ok := c.handles.Lookup(id)
	if !ok || kind != want {
		return nil, false
	}
	return n, true
}

// notifyCallback delivers a callback-slot notification over the event
// stream, if one was negotiated and opened. It is a no-op otherwise; the
// client only ever registers a callback after confirming the event stream
// is available, but a race between registration and Accept completing is
// tolerated silently rather than failing the triggering request.
func (c *conn) notifyCallback(slot protocol.ID, status int32) {
	c.eventsMu.Lock()
	es := c.events
	c.eventsMu.Unlock()
	if es == nil {
		return
	}
	if err := es.Trigger(slot, status); err != nil {
		c.log.Warn("remotecl server: event callback delivery failed", "err", err)
	}
}
