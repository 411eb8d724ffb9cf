package server

import (
	"context"
	"fmt"

	"github.com/remotecl/remotecl/pkg/protocol"
)

// dispatch decodes one frame's body and answers it. Each case owns the
// single read-then-write round trip for its tag; reads beyond the header
// (a trailing Payload for buffer/image writes, for instance) happen inline
// before the response is written, preserving the single-writer discipline
// of the primary stream.
func (c *conn) dispatch(ctx context.Context, tag protocol.Tag) error {
	switch tag {
	case protocol.TagGetPlatformIDs:
		return c.handleGetPlatformIDs()
	case protocol.TagGetPlatformInfo:
		return c.handleGetPlatformInfo()
	case protocol.TagGetDeviceIDs:
		return c.handleGetDeviceIDs()
	case protocol.TagGetDeviceInfo:
		return c.handleGetDeviceInfo()

	case protocol.TagCreateContext:
		return c.handleCreateContext()
	case protocol.TagCreateContextFromType:
		return c.handleCreateContextFromType()
	case protocol.TagGetContextInfo:
		return c.handleGetContextInfo()
	case protocol.TagGetImageFormats:
		return c.handleGetImageFormats()

	case protocol.TagCreateQueue:
		return c.handleCreateQueue()
	case protocol.TagCreateQueueWithProp:
		return c.handleCreateQueueWithProp()
	case protocol.TagGetQueueInfo:
		return c.handleGetQueueInfo()
	case protocol.TagFlush:
		return c.handleFlush()
	case protocol.TagFinish:
		return c.handleFinish()

	case protocol.TagCreateSourceProgram:
		return c.handleCreateSourceProgram()
	case protocol.TagCreateBinaryProgram:
		return c.handleCreateBinaryProgram()
	case protocol.TagBuildProgram:
		return c.handleBuildProgram()
	case protocol.TagCompileProgram:
		return c.handleCompileProgram()
	case protocol.TagLinkProgram:
		return c.handleLinkProgram()
	case protocol.TagBuildInfo:
		return c.handleBuildInfo()
	case protocol.TagProgramInfo:
		return c.handleProgramInfo()

	case protocol.TagCreateKernel:
		return c.handleCreateKernel()
	case protocol.TagCreateKernelsInProgram:
		return c.handleCreateKernelsInProgram()
	case protocol.TagCloneKernel:
		return c.handleCloneKernel()
	case protocol.TagSetKernelArg:
		return c.handleSetKernelArg()
	case protocol.TagKernelWGInfo:
		return c.handleKernelWGInfo()
	case protocol.TagKernelInfo:
		return c.handleKernelInfo()
	case protocol.TagKernelArgInfo:
		return c.handleKernelArgInfo()

	case protocol.TagCreateBuffer:
		return c.handleCreateBuffer()
	case protocol.TagCreateSubBuffer:
		return c.handleCreateSubBuffer()
	case protocol.TagGetMemObjInfo:
		return c.handleGetMemObjInfo()
	case protocol.TagReadBuffer:
		return c.handleReadBuffer()
	case protocol.TagWriteBuffer:
		return c.handleWriteBuffer()
	case protocol.TagFillBuffer:
		return c.handleFillBuffer()
	case protocol.TagReadBufferRect:
		return c.handleReadBufferRect()
	case protocol.TagWriteBufferRect:
		return c.handleWriteBufferRect()

	case protocol.TagCreateImage:
		return c.handleCreateImage()
	case protocol.TagReadImage:
		return c.handleReadImage()
	case protocol.TagWriteImage:
		return c.handleWriteImage()
	case protocol.TagGetImageInfo:
		return c.handleGetImageInfo()

	case protocol.TagEnqueueKernel:
		return c.handleEnqueueKernel()
	case protocol.TagCreateUserEvent:
		return c.handleCreateUserEvent()
	case protocol.TagSetUserEventStatus:
		return c.handleSetUserEventStatus()
	case protocol.TagGetEventInfo:
		return c.handleGetEventInfo()
	case protocol.TagGetEventProfilingInfo:
		return c.handleGetEventProfilingInfo()
	case protocol.TagWaitEvents:
		return c.handleWaitEvents()
	case protocol.TagRegisterEventCallback:
		return c.handleRegisterEventCallback()

	case protocol.TagRetain:
		return c.handleRetain()
	case protocol.TagRelease:
		return c.handleRelease()

	case protocol.TagIDList:
		// A bare IDList only ever precedes WaitEvents on this wire; decode
		// and stash it for the WaitEvents frame that must follow.
		var list protocol.IDList
		if err := list.Decode(c.ps.Raw()); err != nil {
			return err
		}
		c.pendingWaitIDs = list.IDs
		return nil

	default:
		c.log.Warn("remotecl server: unhandled tag", "tag", tag)
		return fmt.Errorf("remotecl server: unhandled tag %s", tag)
	}
}
