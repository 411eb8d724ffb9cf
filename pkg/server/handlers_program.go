package server

import (
	"unsafe"

	"github.com/remotecl/remotecl/pkg/protocol"
)

func (c *conn) handleCreateSourceProgram() error {
	var req protocol.CreateSourceProgram
	if err := req.Decode(c.ps.Raw()); err != nil {
		return err
	}
	ctx, ok := c.native(req.ObjID, protocol.KindContext)
	if !ok {
		return c.replyError(protocol.StatusInvalidContext)
	}
	program, status := c.backend.CreateSourceProgram(ctx, req.Text)
	return c.insert(protocol.KindProgram, program, status)
}

func (c *conn) handleCreateBinaryProgram() error {
	var req protocol.CreateBinaryProgram
	if err := req.Decode(c.ps.Raw()); err != nil {
		return err
	}
	payload, err := protocol.ReadPayload[uint32](c.ps.Raw(), c.version.Compression)
	if err != nil {
		return err
	}
	ctx, ok := c.native(req.ContextID, protocol.KindContext)
	if !ok {
		return c.replyError(protocol.StatusInvalidContext)
	}
	program, status := c.backend.CreateBinaryProgram(ctx, payload.Data)
	return c.insert(protocol.KindProgram, program, status)
}

func (c *conn) handleBuildProgram() error {
	var req protocol.BuildProgram
	if err := req.Decode(c.ps.Raw()); err != nil {
		return err
	}
	program, ok := c.native(req.ObjID, protocol.KindProgram)
	if !ok {
		return c.replyError(protocol.StatusInvalidValue)
	}
	return c.replyStatus(c.backend.BuildProgram(program, req.Text))
}

func (c *conn) handleCompileProgram() error {
	var req protocol.CompileProgram
	if err := req.Decode(c.ps.Raw()); err != nil {
		return err
	}
	program, ok := c.native(req.ProgramID, protocol.KindProgram)
	if !ok {
		return c.replyError(protocol.StatusInvalidValue)
	}
	headers := make(map[string]unsafe.Pointer, len(req.HeaderIDs))
	for i, id := range req.HeaderIDs {
		native, ok := c.native(id, protocol.KindProgram)
		if !ok {
			return c.replyError(protocol.StatusInvalidValue)
		}
		if i < len(req.HeaderNames) {
			headers[req.HeaderNames[i]] = native
		}
	}
	status := c.backend.CompileProgram(program, req.Options, headers)
	if err := c.replyStatus(status); err != nil {
		return err
	}
	if req.HasCallback {
		c.notifyCallback(req.CallbackID, status)
	}
	return nil
}

func (c *conn) handleLinkProgram() error {
	var req protocol.LinkProgram
	if err := req.Decode(c.ps.Raw()); err != nil {
		return err
	}
	ctx, ok := c.native(req.Context, protocol.KindContext)
	if !ok {
		return c.replyError(protocol.StatusInvalidContext)
	}
	programs := make([]unsafe.Pointer, 0, len(req.ProgramIDs))
	for _, id := range req.ProgramIDs {
		native, ok := c.native(id, protocol.KindProgram)
		if !ok {
			return c.replyError(protocol.StatusInvalidValue)
		}
		programs = append(programs, native)
	}
	program, status := c.backend.LinkProgram(ctx, req.Options, programs)
	return c.insert(protocol.KindProgram, program, status)
}

func (c *conn) handleBuildInfo() error {
	var req protocol.ProgramBuildInfo
	if err := req.Decode(c.ps.Raw()); err != nil {
		return err
	}
	program, ok := c.native(req.ProgramID, protocol.KindProgram)
	if !ok {
		return c.replyError(protocol.StatusInvalidValue)
	}
	device, ok := c.native(req.DeviceID, protocol.KindDevice)
	if !ok {
		return c.replyError(protocol.StatusInvalidDevice)
	}
	data, status := c.backend.BuildInfo(program, device, req.Param)
	return c.replyPayloadOrError(data, status)
}

func (c *conn) handleProgramInfo() error {
	var req protocol.ProgramInfo
	if err := req.Decode(c.ps.Raw()); err != nil {
		return err
	}
	program, ok := c.native(req.ObjID, protocol.KindProgram)
	if !ok {
		return c.replyError(protocol.StatusInvalidValue)
	}
	data, status := c.backend.ProgramInfo(program, req.Param)
	return c.replyPayloadOrError(data, status)
}
