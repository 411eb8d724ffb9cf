package server

import (
	"unsafe"

	"github.com/remotecl/remotecl/pkg/protocol"
)

func (c *conn) handleCreateContext() error {
	var req protocol.CreateContext
	if err := req.Decode(c.ps.Raw()); err != nil {
		return err
	}
	devices := make([]unsafe.Pointer, 0, len(req.Devices))
	for _, id := range req.Devices {
		native, ok := c.native(protocol.ID(id), protocol.KindDevice)
		if !ok {
			return c.replyError(protocol.StatusInvalidDevice)
		}
		devices = append(devices, native)
	}
	ctx, status := c.backend.CreateContext(req.Properties, devices)
	return c.insert(protocol.KindContext, ctx, status)
}

func (c *conn) handleCreateContextFromType() error {
	var req protocol.CreateContextFromType
	if err := req.Decode(c.ps.Raw()); err != nil {
		return err
	}
	ctx, status := c.backend.CreateContextFromType(req.Properties, req.DeviceType)
	return c.insert(protocol.KindContext, ctx, status)
}

func (c *conn) handleGetContextInfo() error {
	var req protocol.GetContextInfo
	if err := req.Decode(c.ps.Raw()); err != nil {
		return err
	}
	ctx, ok := c.native(req.ObjID, protocol.KindContext)
	if !ok {
		return c.replyError(protocol.StatusInvalidContext)
	}
	data, status := c.backend.GetContextInfo(ctx, req.Param)
	return c.replyPayloadOrError(data, status)
}

func (c *conn) handleGetImageFormats() error {
	var req protocol.GetImageFormats
	if err := req.Decode(c.ps.Raw()); err != nil {
		return err
	}
	ctx, ok := c.native(req.ContextID, protocol.KindContext)
	if !ok {
		return c.replyError(protocol.StatusInvalidContext)
	}
	data, status := c.backend.GetImageFormats(ctx, req.Flags, req.ImageType)
	return c.replyPayloadOrError(data, status)
}

func (c *conn) handleRetain() error {
	var req protocol.RefCount
	if err := req.Decode(c.ps.Raw()); err != nil {
		return err
	}
	native, ok := c.native(req.ID, req.Kind)
	if !ok {
		return c.replyError(protocol.StatusInvalidValue)
	}
	if status := c.backend.Retain(byte(req.Kind), native); status != protocol.StatusSuccess {
		return c.replyError(status)
	}
	c.handles.Retain(req.ID, req.Kind)
	return c.replySuccess()
}

func (c *conn) handleRelease() error {
	var req protocol.RefCount
	if err := req.Decode(c.ps.Raw()); err != nil {
		return err
	}
	native, ok := c.native(req.ID, req.Kind)
	if !ok {
		return c.replyError(protocol.StatusInvalidValue)
	}
	if status := c.backend.Release(byte(req.Kind), native); status != protocol.StatusSuccess {
		return c.replyError(status)
	}
	c.handles.Release(req.ID, req.Kind)
	return c.replySuccess()
}
