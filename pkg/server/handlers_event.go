package server

import (
	"unsafe"

	"github.com/remotecl/remotecl/pkg/protocol"
)

func (c *conn) handleEnqueueKernel() error {
	var req protocol.EnqueueKernel
	if err := req.Decode(c.ps.Raw()); err != nil {
		return err
	}
	if protocol.InvalidWorkDim(req.WorkDim) {
		return c.replyError(protocol.StatusInvalidWorkDimension)
	}
	queue, ok := c.native(req.QueueID, protocol.KindQueue)
	if !ok {
		return c.replyError(protocol.StatusInvalidCommandQueue)
	}
	kernel, ok := c.native(req.KernelID, protocol.KindKernel)
	if !ok {
		return c.replyError(protocol.StatusInvalidKernelArgs)
	}
	event, status := c.backend.EnqueueKernel(queue, kernel, req.WorkDim, req.GlobalSize, req.GlobalOffset, req.LocalSize)
	if !req.WantEvent {
		return c.replyStatus(status)
	}
	return c.insert(protocol.KindEvent, event, status)
}

func (c *conn) handleCreateUserEvent() error {
	var req protocol.CreateUserEvent
	if err := req.Decode(c.ps.Raw()); err != nil {
		return err
	}
	ctx, ok := c.native(req.Value, protocol.KindContext)
	if !ok {
		return c.replyError(protocol.StatusInvalidContext)
	}
	event, status := c.backend.CreateUserEvent(ctx)
	return c.insert(protocol.KindEvent, event, status)
}

func (c *conn) handleSetUserEventStatus() error {
	var req protocol.SetUserEventStatus
	if err := req.Decode(c.ps.Raw()); err != nil {
		return err
	}
	event, ok := c.native(req.EventID, protocol.KindEvent)
	if !ok {
		return c.replyError(protocol.StatusInvalidEvent)
	}
	return c.replyStatus(c.backend.SetUserEventStatus(event, req.Status))
}

func (c *conn) handleGetEventInfo() error {
	var req protocol.GetEventInfo
	if err := req.Decode(c.ps.Raw()); err != nil {
		return err
	}
	event, ok := c.native(req.ObjID, protocol.KindEvent)
	if !ok {
		return c.replyError(protocol.StatusInvalidEvent)
	}
	data, status := c.backend.GetEventInfo(event, req.Param)
	return c.replyPayloadOrError(data, status)
}

func (c *conn) handleGetEventProfilingInfo() error {
	var req protocol.GetEventProfilingInfo
	if err := req.Decode(c.ps.Raw()); err != nil {
		return err
	}
	event, ok := c.native(req.ObjID, protocol.KindEvent)
	if !ok {
		return c.replyError(protocol.StatusInvalidEvent)
	}
	data, status := c.backend.GetEventProfilingInfo(event, req.Param)
	return c.replyPayloadOrError(data, status)
}

func (c *conn) handleWaitEvents() error {
	var sig protocol.WaitEvents
	if err := sig.Decode(c.ps.Raw()); err != nil {
		return err
	}
	ids := c.pendingWaitIDs
	c.pendingWaitIDs = nil

	events := make([]unsafe.Pointer, 0, len(ids))
	for _, id := range ids {
		native, ok := c.native(id, protocol.KindEvent)
		if !ok {
			return c.replyError(protocol.StatusInvalidEvent)
		}
		events = append(events, native)
	}
	return c.replyStatus(c.backend.WaitForEvents(events))
}

func (c *conn) handleRegisterEventCallback() error {
	var req protocol.RegisterEventCallback
	if err := req.Decode(c.ps.Raw()); err != nil {
		return err
	}
	if _, ok := c.native(req.EventID, protocol.KindEvent); !ok {
		return c.replyError(protocol.StatusInvalidEvent)
	}
	if err := c.replySuccess(); err != nil {
		return err
	}
	// FakeBackend events complete synchronously at creation time; a
	// cgo-backed backend would instead arrange for the native completion
	// callback to call notifyCallback once the real event fires.
	c.notifyCallback(req.CallbackID, protocol.StatusSuccess)
	return nil
}
