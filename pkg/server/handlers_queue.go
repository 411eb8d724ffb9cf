package server

import "github.com/remotecl/remotecl/pkg/protocol"

func (c *conn) handleCreateQueue() error {
	var req protocol.CreateQueue
	if err := req.Decode(c.ps.Raw()); err != nil {
		return err
	}
	ctx, ok := c.native(req.Context, protocol.KindContext)
	if !ok {
		return c.replyError(protocol.StatusInvalidContext)
	}
	device, ok := c.native(req.Device, protocol.KindDevice)
	if !ok {
		return c.replyError(protocol.StatusInvalidDevice)
	}
	queue, status := c.backend.CreateQueue(ctx, device, req.Properties)
	return c.insert(protocol.KindQueue, queue, status)
}

func (c *conn) handleCreateQueueWithProp() error {
	var req protocol.CreateQueueWithProp
	if err := req.Decode(c.ps.Raw()); err != nil {
		return err
	}
	ctx, ok := c.native(req.Context, protocol.KindContext)
	if !ok {
		return c.replyError(protocol.StatusInvalidContext)
	}
	device, ok := c.native(req.Device, protocol.KindDevice)
	if !ok {
		return c.replyError(protocol.StatusInvalidDevice)
	}
	queue, status := c.backend.CreateQueueWithProp(ctx, device, req.Properties)
	return c.insert(protocol.KindQueue, queue, status)
}

func (c *conn) handleGetQueueInfo() error {
	var req protocol.GetQueueInfo
	if err := req.Decode(c.ps.Raw()); err != nil {
		return err
	}
	queue, ok := c.native(req.ObjID, protocol.KindQueue)
	if !ok {
		return c.replyError(protocol.StatusInvalidCommandQueue)
	}
	data, status := c.backend.GetQueueInfo(queue, req.Param)
	return c.replyPayloadOrError(data, status)
}

func (c *conn) handleFlush() error {
	var req protocol.IDPacket
	if err := req.Decode(c.ps.Raw()); err != nil {
		return err
	}
	queue, ok := c.native(req.Value, protocol.KindQueue)
	if !ok {
		return c.replyError(protocol.StatusInvalidCommandQueue)
	}
	return c.replyStatus(c.backend.Flush(queue))
}

func (c *conn) handleFinish() error {
	var req protocol.IDPacket
	if err := req.Decode(c.ps.Raw()); err != nil {
		return err
	}
	queue, ok := c.native(req.Value, protocol.KindQueue)
	if !ok {
		return c.replyError(protocol.StatusInvalidCommandQueue)
	}
	return c.replyStatus(c.backend.Finish(queue))
}
