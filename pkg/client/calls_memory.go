package client

import (
	"github.com/remotecl/remotecl/pkg/protocol"
	"github.com/remotecl/remotecl/pkg/registry"
	"github.com/remotecl/remotecl/pkg/wire"
)

// CreateBuffer allocates a new buffer object. When hostData is non-nil its
// bytes are uploaded as a trailing Payload write (COPY_HOST_PTR semantics).
func (c *Client) CreateBuffer(ctx *registry.ContextProxy, flags uint32, size uint32, hostData []byte) (*registry.MemoryProxy, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	req := protocol.CreateBuffer{Flags: flags, Size: size, ContextID: ctx.ID(), ExpectPayload: hostData != nil}
	if err := c.ps.Write(protocol.TagCreateBuffer, req); err != nil {
		return nil, err
	}
	if hostData != nil {
		if err := protocol.WritePayload[uint32](c.raw, protocol.Payload[uint32]{Data: hostData}, c.version.Compression); err != nil {
			return nil, err
		}
	}
	if err := c.ps.Flush(); err != nil {
		return nil, err
	}
	var id protocol.IDPacket
	if err := c.ps.Expect(protocol.TagID, &id); err != nil {
		return nil, err
	}
	return registry.NewMemory(c.reg, id.Value), nil
}

// CreateSubBuffer carves a region out of an existing buffer.
func (c *Client) CreateSubBuffer(buffer *registry.MemoryProxy, flags, createType uint32, offset, size uint32) (*registry.MemoryProxy, error) {
	id, err := c.requestID(protocol.TagCreateSubBuffer, protocol.CreateSubBuffer{
		Flags: flags, Size: size, Offset: offset, CreateType: createType, BufferID: buffer.ID(),
	})
	if err != nil {
		return nil, err
	}
	return registry.NewMemory(c.reg, id), nil
}

// GetMemObjInfo queries a memory-object parameter, returning its raw bytes.
func (c *Client) GetMemObjInfo(buffer *registry.MemoryProxy, param uint32) ([]byte, error) {
	p, err := c.requestPayload(protocol.TagGetMemObjInfo, protocol.GetMemObjInfo{ObjID: buffer.ID(), Param: param})
	return p.Data, err
}

// ReadBuffer blocks until size bytes starting at offset have been copied
// from buffer into out.
func (c *Client) ReadBuffer(queue *registry.QueueProxy, buffer *registry.MemoryProxy, offset uint32, out []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	req := protocol.ReadBuffer{BufferID: buffer.ID(), QueueID: queue.ID(), Size: uint32(len(out)), Offset: offset, Block: true}
	if err := c.ps.Write(protocol.TagReadBuffer, req); err != nil {
		return err
	}
	if err := c.ps.Flush(); err != nil {
		return err
	}
	var body payloadIntoDecoder
	body.dst = out
	body.compressed = c.version.Compression
	return c.ps.Expect(protocol.TagPayload, body)
}

// WriteBuffer blocks until data has been copied into buffer starting at
// offset.
func (c *Client) WriteBuffer(queue *registry.QueueProxy, buffer *registry.MemoryProxy, offset uint32, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	req := protocol.WriteBuffer{BufferID: buffer.ID(), QueueID: queue.ID(), Size: uint32(len(data)), Offset: offset, Block: true}
	if err := c.ps.Write(protocol.TagWriteBuffer, req); err != nil {
		return err
	}
	if err := protocol.WritePayload[uint32](c.raw, protocol.Payload[uint32]{Data: data}, c.version.Compression); err != nil {
		return err
	}
	if err := c.ps.Flush(); err != nil {
		return err
	}
	var ok protocol.SuccessBody
	return c.ps.Expect(protocol.TagSuccess, &ok)
}

// FillBuffer fills a buffer range with a repeating byte pattern.
func (c *Client) FillBuffer(queue *registry.QueueProxy, buffer *registry.MemoryProxy, offset, size uint32, pattern []byte) error {
	if len(pattern) > protocol.FillPatternMax {
		pattern = pattern[:protocol.FillPatternMax]
	}
	var req protocol.FillBuffer
	req.BufferID, req.QueueID = buffer.ID(), queue.ID()
	req.Offset, req.Size = offset, size
	req.PatternSize = uint8(len(pattern))
	copy(req.Pattern[:], pattern)
	return c.requestSuccess(protocol.TagFillBuffer, req)
}

// ReadBufferRect blocks until the rectangular region has been copied from
// buffer into out, according to the four independent pitch fields.
func (c *Client) ReadBufferRect(queue *registry.QueueProxy, buffer *registry.MemoryProxy, req protocol.ReadBufferRect, out []byte) error {
	req.BufferID, req.QueueID, req.Block = buffer.ID(), queue.ID(), true
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ps.Write(protocol.TagReadBufferRect, req); err != nil {
		return err
	}
	if err := c.ps.Flush(); err != nil {
		return err
	}
	body := payloadIntoDecoder{dst: out, compressed: c.version.Compression}
	return c.ps.Expect(protocol.TagPayload, body)
}

// WriteBufferRect blocks until data has been copied into buffer's
// rectangular region.
func (c *Client) WriteBufferRect(queue *registry.QueueProxy, buffer *registry.MemoryProxy, req protocol.WriteBufferRect, data []byte) error {
	req.BufferID, req.QueueID, req.Block = buffer.ID(), queue.ID(), true
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ps.Write(protocol.TagWriteBufferRect, req); err != nil {
		return err
	}
	if err := protocol.WritePayload[uint32](c.raw, protocol.Payload[uint32]{Data: data}, c.version.Compression); err != nil {
		return err
	}
	if err := c.ps.Flush(); err != nil {
		return err
	}
	var ok protocol.SuccessBody
	return c.ps.Expect(protocol.TagSuccess, &ok)
}

// CreateImage allocates a new image object.
func (c *Client) CreateImage(ctx *registry.ContextProxy, req protocol.CreateImage) (*registry.MemoryProxy, error) {
	req.ContextID = ctx.ID()
	id, err := c.requestID(protocol.TagCreateImage, req)
	if err != nil {
		return nil, err
	}
	return registry.NewMemory(c.reg, id), nil
}

// ReadImage blocks until the image region has been copied into out.
func (c *Client) ReadImage(queue *registry.QueueProxy, image *registry.MemoryProxy, req protocol.ReadImage, out []byte) error {
	req.ImageID, req.QueueID, req.Block = image.ID(), queue.ID(), true
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ps.Write(protocol.TagReadImage, req); err != nil {
		return err
	}
	if err := c.ps.Flush(); err != nil {
		return err
	}
	body := payloadIntoDecoder{dst: out, compressed: c.version.Compression}
	return c.ps.Expect(protocol.TagPayload, body)
}

// WriteImage blocks until data has been copied into the image region. The
// exchange is two round trips: the server doesn't know data's required
// length until it queries the image's pixel size, so it replies with the
// exact byte count first; data is sent padded or truncated to that count
// rather than assumed to already match it, mirroring SetKernelArg's
// discriminator-then-body shape in calls_program.go.
func (c *Client) WriteImage(queue *registry.QueueProxy, image *registry.MemoryProxy, req protocol.WriteImage, data []byte) error {
	req.ImageID, req.QueueID, req.Block = image.ID(), queue.ID(), true
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ps.Write(protocol.TagWriteImage, req); err != nil {
		return err
	}
	if err := c.ps.Flush(); err != nil {
		return err
	}

	var size protocol.U32Body
	if err := c.ps.Expect(protocol.TagPayload, &size); err != nil {
		return err
	}
	data = fitToSize(data, size.Value)

	if err := protocol.WritePayload[uint32](c.raw, protocol.Payload[uint32]{Data: data}, c.version.Compression); err != nil {
		return err
	}
	if err := c.raw.Flush(); err != nil {
		return err
	}
	var ok protocol.SuccessBody
	return c.ps.Expect(protocol.TagSuccess, &ok)
}

// fitToSize returns data trimmed or zero-padded to exactly n bytes, the
// byte count the server authoritatively computed from the image's pixel
// size.
func fitToSize(data []byte, n uint32) []byte {
	if uint32(len(data)) == n {
		return data
	}
	out := make([]byte, n)
	copy(out, data)
	return out
}

// GetImageInfo queries an image parameter, returning its raw bytes.
func (c *Client) GetImageInfo(image *registry.MemoryProxy, param uint32) ([]byte, error) {
	p, err := c.requestPayload(protocol.TagGetImageInfo, protocol.GetImageInfo{ObjID: image.ID(), Param: param})
	return p.Data, err
}

type payloadIntoDecoder struct {
	dst        []byte
	compressed bool
}

func (d payloadIntoDecoder) Decode(s *wire.Stream) error {
	return protocol.PayloadInto[uint32](s, d.dst, d.compressed)
}
