package server

import (
	"fmt"
	"unsafe"

	"github.com/remotecl/remotecl/pkg/protocol"
)

func (c *conn) handleCreateKernel() error {
	var req protocol.CreateKernel
	if err := req.Decode(c.ps.Raw()); err != nil {
		return err
	}
	program, ok := c.native(req.ObjID, protocol.KindProgram)
	if !ok {
		return c.replyError(protocol.StatusInvalidValue)
	}
	kernel, status := c.backend.CreateKernel(program, req.Text)
	return c.insert(protocol.KindKernel, kernel, status)
}

func (c *conn) handleCreateKernelsInProgram() error {
	var req protocol.CreateKernelsInProgram
	if err := req.Decode(c.ps.Raw()); err != nil {
		return err
	}
	program, ok := c.native(req.ProgramID, protocol.KindProgram)
	if !ok {
		return c.replyError(protocol.StatusInvalidValue)
	}
	kernels, status := c.backend.CreateKernelsInProgram(program)
	return c.insertList(protocol.KindKernel, kernels, status)
}

func (c *conn) handleCloneKernel() error {
	var req protocol.CloneKernel
	if err := req.Decode(c.ps.Raw()); err != nil {
		return err
	}
	kernel, ok := c.native(req.KernelID, protocol.KindKernel)
	if !ok {
		return c.replyError(protocol.StatusInvalidKernelArgs)
	}
	clone, status := c.backend.CloneKernel(kernel)
	return c.insert(protocol.KindKernel, clone, status)
}

// handleSetKernelArg implements the two-round clSetKernelArg exchange: the
// discriminator byte this replies with tells the client which follow-up
// body to send, matching (*Client).SetKernelArg on the other end.
func (c *conn) handleSetKernelArg() error {
	var req protocol.KernelArg
	if err := req.Decode(c.ps.Raw()); err != nil {
		return err
	}
	kernel, ok := c.native(req.KernelID, protocol.KindKernel)
	if !ok {
		return c.replyError(protocol.StatusInvalidKernelArgs)
	}

	kind, status := c.backend.KernelArgKind(kernel, req.ArgIndex)
	if status != protocol.StatusSuccess {
		return c.replyError(status)
	}
	if err := c.writeAndFlush(protocol.TagPayload, protocol.ByteBody{Value: kind}); err != nil {
		return err
	}

	switch kind {
	case 'I':
		var mem protocol.IDPacket
		if err := mem.Decode(c.ps.Raw()); err != nil {
			return err
		}
		var native unsafe.Pointer
		if mem.Value != 0 {
			n, ok := c.native(mem.Value, protocol.KindMemory)
			if !ok {
				return c.replyError(protocol.StatusInvalidMemObject)
			}
			native = n
		}
		status = c.backend.SetKernelArgMemObject(kernel, req.ArgIndex, native)
	case 'S':
		size, err := c.ps.Raw().ReadUint32()
		if err != nil {
			return err
		}
		status = c.backend.SetKernelArgLocalSize(kernel, req.ArgIndex, size)
	case 'P':
		payload, err := protocol.ReadPayload[uint32](c.ps.Raw(), c.version.Compression)
		if err != nil {
			return err
		}
		status = c.backend.SetKernelArgPrivate(kernel, req.ArgIndex, payload.Data)
	default:
		return fmt.Errorf("remotecl server: unknown kernel-argument discriminator %q", kind)
	}
	return c.replyStatus(status)
}

func (c *conn) handleKernelWGInfo() error {
	var req protocol.KernelWGInfo
	if err := req.Decode(c.ps.Raw()); err != nil {
		return err
	}
	kernel, ok := c.native(req.KernelID, protocol.KindKernel)
	if !ok {
		return c.replyError(protocol.StatusInvalidKernelArgs)
	}
	device, ok := c.native(req.DeviceID, protocol.KindDevice)
	if !ok {
		return c.replyError(protocol.StatusInvalidDevice)
	}
	data, status := c.backend.KernelWGInfo(kernel, device, req.Param)
	return c.replyPayloadOrError(data, status)
}

func (c *conn) handleKernelInfo() error {
	var req protocol.KernelInfo
	if err := req.Decode(c.ps.Raw()); err != nil {
		return err
	}
	kernel, ok := c.native(req.ObjID, protocol.KindKernel)
	if !ok {
		return c.replyError(protocol.StatusInvalidKernelArgs)
	}
	data, status := c.backend.KernelInfo(kernel, req.Param)
	return c.replyPayloadOrError(data, status)
}

func (c *conn) handleKernelArgInfo() error {
	var req protocol.KernelArgInfo
	if err := req.Decode(c.ps.Raw()); err != nil {
		return err
	}
	kernel, ok := c.native(req.KernelID, protocol.KindKernel)
	if !ok {
		return c.replyError(protocol.StatusInvalidKernelArgs)
	}
	data, status := c.backend.KernelArgInfo(kernel, req.ArgIndex, req.Param)
	return c.replyPayloadOrError(data, status)
}
