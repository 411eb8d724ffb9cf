package client

import (
	"fmt"

	"github.com/remotecl/remotecl/pkg/protocol"
	"github.com/remotecl/remotecl/pkg/registry"
)

// CreateSourceProgram creates a program object from source text.
func (c *Client) CreateSourceProgram(ctx *registry.ContextProxy, source string) (*registry.ProgramProxy, error) {
	id, err := c.requestID(protocol.TagCreateSourceProgram, protocol.CreateSourceProgram{ObjID: ctx.ID(), Text: source})
	if err != nil {
		return nil, err
	}
	return registry.NewProgram(c.reg, id), nil
}

// CreateBinaryProgram creates a program object from a precompiled binary.
// The binary bytes follow as a separate Payload write.
func (c *Client) CreateBinaryProgram(ctx *registry.ContextProxy, binary []byte) (*registry.ProgramProxy, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ps.Write(protocol.TagCreateBinaryProgram, protocol.CreateBinaryProgram{ContextID: ctx.ID()}); err != nil {
		return nil, err
	}
	if err := protocol.WritePayload[uint32](c.raw, protocol.Payload[uint32]{Data: binary}, c.version.Compression); err != nil {
		return nil, err
	}
	if err := c.ps.Flush(); err != nil {
		return nil, err
	}
	var id protocol.IDPacket
	if err := c.ps.Expect(protocol.TagID, &id); err != nil {
		return nil, err
	}
	return registry.NewProgram(c.reg, id.Value), nil
}

// BuildProgram triggers compilation of a program with the given options.
func (c *Client) BuildProgram(program *registry.ProgramProxy, options string) error {
	return c.requestSuccess(protocol.TagBuildProgram, protocol.BuildProgram{ObjID: program.ID(), Text: options})
}

// CompileProgram requests separate compilation against a header list.
func (c *Client) CompileProgram(program *registry.ProgramProxy, options string, devices, headers []protocol.ID, headerNames []string) error {
	return c.requestSuccess(protocol.TagCompileProgram, protocol.CompileProgram{
		ProgramID:   program.ID(),
		Options:     options,
		DeviceIDs:   devices,
		HeaderIDs:   headers,
		HeaderNames: headerNames,
	})
}

// LinkProgram links a set of already-compiled programs into one.
func (c *Client) LinkProgram(ctx *registry.ContextProxy, options string, devices []protocol.ID, programs []*registry.ProgramProxy) (*registry.ProgramProxy, error) {
	progIDs := make([]protocol.ID, len(programs))
	for i, p := range programs {
		progIDs[i] = p.ID()
	}
	id, err := c.requestID(protocol.TagLinkProgram, protocol.LinkProgram{Context: ctx.ID(), Options: options, DeviceIDs: devices, ProgramIDs: progIDs})
	if err != nil {
		return nil, err
	}
	return registry.NewProgram(c.reg, id), nil
}

// BuildInfo queries a program's build status/log/options on a device.
func (c *Client) BuildInfo(program *registry.ProgramProxy, device *registry.DeviceProxy, param uint32) ([]byte, error) {
	p, err := c.requestPayload(protocol.TagBuildInfo, protocol.ProgramBuildInfo{Param: param, ProgramID: program.ID(), DeviceID: device.ID()})
	return p.Data, err
}

// ProgramInfo queries a program parameter, returning its raw bytes.
func (c *Client) ProgramInfo(program *registry.ProgramProxy, param uint32) ([]byte, error) {
	p, err := c.requestPayload(protocol.TagProgramInfo, protocol.ProgramInfo{ObjID: program.ID(), Param: param})
	return p.Data, err
}

// CreateKernel creates a kernel object from a named entry point.
func (c *Client) CreateKernel(program *registry.ProgramProxy, name string) (*registry.KernelProxy, error) {
	id, err := c.requestID(protocol.TagCreateKernel, protocol.CreateKernel{ObjID: program.ID(), Text: name})
	if err != nil {
		return nil, err
	}
	return registry.NewKernel(c.reg, id), nil
}

// CreateKernelsInProgram bulk-creates one kernel object per entry point in a
// built program.
func (c *Client) CreateKernelsInProgram(program *registry.ProgramProxy, count uint32) ([]*registry.KernelProxy, error) {
	ids, err := c.requestIDList(protocol.TagCreateKernelsInProgram, protocol.CreateKernelsInProgram{ProgramID: program.ID(), KernelCount: count})
	if err != nil {
		return nil, err
	}
	out := make([]*registry.KernelProxy, len(ids))
	for i, id := range ids {
		out[i] = registry.NewKernel(c.reg, id)
	}
	return out, nil
}

// CloneKernel duplicates an existing kernel object.
func (c *Client) CloneKernel(kernel *registry.KernelProxy) (*registry.KernelProxy, error) {
	id, err := c.requestID(protocol.TagCloneKernel, protocol.CloneKernel{KernelID: kernel.ID()})
	if err != nil {
		return nil, err
	}
	return registry.NewKernel(c.reg, id), nil
}

// Kernel-argument address-space discriminators, as reported by the server
// after introspecting the argument's declared qualifier.
const (
	argKindMemObject = 'I'
	argKindLocalSize = 'S'
	argKindPrivate   = 'P'
)

// SetKernelArg sets one kernel argument. The exchange is two round trips:
// first the kernel/index header, to which the server replies with a single
// discriminator byte identifying the argument's address-space kind; the
// client then sends the matching follow-up body. memObject is consulted
// when the discriminator is a memory object; value is the raw bytes to copy
// for a local-size or private argument.
func (c *Client) SetKernelArg(kernel *registry.KernelProxy, index uint32, memObject *registry.MemoryProxy, value []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ps.Write(protocol.TagSetKernelArg, protocol.KernelArg{KernelID: kernel.ID(), ArgIndex: index}); err != nil {
		return err
	}
	if err := c.ps.Flush(); err != nil {
		return err
	}

	var disc protocol.ByteBody
	if err := c.ps.Expect(protocol.TagPayload, &disc); err != nil {
		return err
	}

	switch disc.Value {
	case argKindMemObject:
		var memID protocol.ID
		if memObject != nil {
			memID = memObject.ID()
		}
		if err := (protocol.IDPacket{Value: memID}).Encode(c.raw); err != nil {
			return err
		}
	case argKindLocalSize:
		if err := c.raw.WriteUint32(uint32(len(value))); err != nil {
			return err
		}
	case argKindPrivate:
		if err := protocol.WritePayload[uint32](c.raw, protocol.Payload[uint32]{Data: value}, c.version.Compression); err != nil {
			return err
		}
	default:
		return fmt.Errorf("remotecl client: unknown kernel-argument discriminator %q", disc.Value)
	}

	if err := c.raw.Flush(); err != nil {
		return err
	}
	var ok protocol.SuccessBody
	return c.ps.Expect(protocol.TagSuccess, &ok)
}

// KernelWGInfo queries work-group sizing info for a kernel on a device.
func (c *Client) KernelWGInfo(kernel *registry.KernelProxy, device *registry.DeviceProxy, param uint32) ([]byte, error) {
	p, err := c.requestPayload(protocol.TagKernelWGInfo, protocol.KernelWGInfo{KernelID: kernel.ID(), DeviceID: device.ID(), Param: param})
	return p.Data, err
}

// KernelInfo queries a kernel parameter, returning its raw bytes.
func (c *Client) KernelInfo(kernel *registry.KernelProxy, param uint32) ([]byte, error) {
	p, err := c.requestPayload(protocol.TagKernelInfo, protocol.KernelInfo{ObjID: kernel.ID(), Param: param})
	return p.Data, err
}

// KernelArgInfo queries per-argument introspection data.
func (c *Client) KernelArgInfo(kernel *registry.KernelProxy, index, param uint32) ([]byte, error) {
	p, err := c.requestPayload(protocol.TagKernelArgInfo, protocol.KernelArgInfo{KernelID: kernel.ID(), ArgIndex: index, Param: param})
	return p.Data, err
}
