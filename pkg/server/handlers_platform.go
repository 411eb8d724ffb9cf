package server

import "github.com/remotecl/remotecl/pkg/protocol"

func (c *conn) handleGetPlatformIDs() error {
	platforms, status := c.backend.GetPlatformIDs()
	return c.insertList(protocol.KindUnknown, platforms, status)
}

func (c *conn) handleGetPlatformInfo() error {
	var req protocol.GetPlatformInfo
	if err := req.Decode(c.ps.Raw()); err != nil {
		return err
	}
	native, ok := c.native(req.ObjID, protocol.KindUnknown)
	if !ok {
		return c.replyError(protocol.StatusInvalidPlatform)
	}
	data, status := c.backend.GetPlatformInfo(native, req.Param)
	return c.replyPayloadOrError(data, status)
}

func (c *conn) handleGetDeviceIDs() error {
	var req protocol.GetDeviceIDs
	if err := req.Decode(c.ps.Raw()); err != nil {
		return err
	}
	platform, ok := c.native(req.PlatformID, protocol.KindUnknown)
	if !ok {
		return c.replyError(protocol.StatusInvalidPlatform)
	}
	devices, status := c.backend.GetDeviceIDs(platform, req.DeviceType)
	return c.insertList(protocol.KindDevice, devices, status)
}

func (c *conn) handleGetDeviceInfo() error {
	var req protocol.GetDeviceInfo
	if err := req.Decode(c.ps.Raw()); err != nil {
		return err
	}
	native, ok := c.native(req.ObjID, protocol.KindDevice)
	if !ok {
		return c.replyError(protocol.StatusInvalidDevice)
	}
	data, status := c.backend.GetDeviceInfo(native, req.Param)
	return c.replyPayloadOrError(data, status)
}
