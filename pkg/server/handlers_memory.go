package server

import "github.com/remotecl/remotecl/pkg/protocol"

func (c *conn) handleCreateBuffer() error {
	var req protocol.CreateBuffer
	if err := req.Decode(c.ps.Raw()); err != nil {
		return err
	}
	var hostData []byte
	if req.ExpectPayload {
		payload, err := protocol.ReadPayload[uint32](c.ps.Raw(), c.version.Compression)
		if err != nil {
			return err
		}
		hostData = payload.Data
	}
	ctx, ok := c.native(req.ContextID, protocol.KindContext)
	if !ok {
		return c.replyError(protocol.StatusInvalidContext)
	}
	if req.Size > protocol.MaxAllocSize {
		return c.replyError(protocol.StatusOutOfHostMemory)
	}
	buffer, status := c.backend.CreateBuffer(ctx, req.Flags, req.Size, hostData)
	return c.insert(protocol.KindMemory, buffer, status)
}

func (c *conn) handleCreateSubBuffer() error {
	var req protocol.CreateSubBuffer
	if err := req.Decode(c.ps.Raw()); err != nil {
		return err
	}
	parent, ok := c.native(req.BufferID, protocol.KindMemory)
	if !ok {
		return c.replyError(protocol.StatusInvalidMemObject)
	}
	sub, status := c.backend.CreateSubBuffer(parent, req.Flags, req.CreateType, req.Offset, req.Size)
	return c.insert(protocol.KindMemory, sub, status)
}

func (c *conn) handleGetMemObjInfo() error {
	var req protocol.GetMemObjInfo
	if err := req.Decode(c.ps.Raw()); err != nil {
		return err
	}
	mem, ok := c.native(req.ObjID, protocol.KindMemory)
	if !ok {
		return c.replyError(protocol.StatusInvalidMemObject)
	}
	data, status := c.backend.GetMemObjInfo(mem, req.Param)
	return c.replyPayloadOrError(data, status)
}

func (c *conn) handleReadBuffer() error {
	var req protocol.ReadBuffer
	if err := req.Decode(c.ps.Raw()); err != nil {
		return err
	}
	queue, ok := c.native(req.QueueID, protocol.KindQueue)
	if !ok {
		return c.replyError(protocol.StatusInvalidCommandQueue)
	}
	buffer, ok := c.native(req.BufferID, protocol.KindMemory)
	if !ok {
		return c.replyError(protocol.StatusInvalidMemObject)
	}
	if req.Size > protocol.MaxAllocSize {
		return c.replyError(protocol.StatusOutOfHostMemory)
	}
	out := make([]byte, req.Size)
	if status := c.backend.ReadBuffer(queue, buffer, req.Offset, out); status != protocol.StatusSuccess {
		return c.replyError(status)
	}
	return c.replyPayload(out)
}

func (c *conn) handleWriteBuffer() error {
	var req protocol.WriteBuffer
	if err := req.Decode(c.ps.Raw()); err != nil {
		return err
	}
	payload, err := protocol.ReadPayload[uint32](c.ps.Raw(), c.version.Compression)
	if err != nil {
		return err
	}
	queue, ok := c.native(req.QueueID, protocol.KindQueue)
	if !ok {
		return c.replyError(protocol.StatusInvalidCommandQueue)
	}
	buffer, ok := c.native(req.BufferID, protocol.KindMemory)
	if !ok {
		return c.replyError(protocol.StatusInvalidMemObject)
	}
	return c.replyStatus(c.backend.WriteBuffer(queue, buffer, req.Offset, payload.Data))
}

func (c *conn) handleFillBuffer() error {
	var req protocol.FillBuffer
	if err := req.Decode(c.ps.Raw()); err != nil {
		return err
	}
	queue, ok := c.native(req.QueueID, protocol.KindQueue)
	if !ok {
		return c.replyError(protocol.StatusInvalidCommandQueue)
	}
	buffer, ok := c.native(req.BufferID, protocol.KindMemory)
	if !ok {
		return c.replyError(protocol.StatusInvalidMemObject)
	}
	pattern := req.Pattern[:req.PatternSize]
	return c.replyStatus(c.backend.FillBuffer(queue, buffer, req.Offset, req.Size, pattern))
}

func (c *conn) handleReadBufferRect() error {
	var req protocol.ReadBufferRect
	if err := req.Decode(c.ps.Raw()); err != nil {
		return err
	}
	queue, ok := c.native(req.QueueID, protocol.KindQueue)
	if !ok {
		return c.replyError(protocol.StatusInvalidCommandQueue)
	}
	buffer, ok := c.native(req.BufferID, protocol.KindMemory)
	if !ok {
		return c.replyError(protocol.StatusInvalidMemObject)
	}
	out := make([]byte, rectBytes(req.Region))
	if status := c.backend.ReadBufferRect(queue, buffer, out); status != protocol.StatusSuccess {
		return c.replyError(status)
	}
	return c.replyPayload(out)
}

func (c *conn) handleWriteBufferRect() error {
	var req protocol.WriteBufferRect
	if err := req.Decode(c.ps.Raw()); err != nil {
		return err
	}
	payload, err := protocol.ReadPayload[uint32](c.ps.Raw(), c.version.Compression)
	if err != nil {
		return err
	}
	queue, ok := c.native(req.QueueID, protocol.KindQueue)
	if !ok {
		return c.replyError(protocol.StatusInvalidCommandQueue)
	}
	buffer, ok := c.native(req.BufferID, protocol.KindMemory)
	if !ok {
		return c.replyError(protocol.StatusInvalidMemObject)
	}
	return c.replyStatus(c.backend.WriteBufferRect(queue, buffer, payload.Data))
}

// rectBytes approximates the host-side transfer size for a rect region as
// a flat byte count; FakeBackend ignores the distinct row/slice pitches,
// matching its documented role as a stand-in rather than a pitch-accurate
// implementation.
func rectBytes(region [3]uint32) uint32 {
	n := region[0]
	if region[1] > 0 {
		n *= region[1]
	}
	if region[2] > 0 {
		n *= region[2]
	}
	return n
}
