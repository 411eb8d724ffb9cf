package client

import (
	"github.com/remotecl/remotecl/pkg/protocol"
	"github.com/remotecl/remotecl/pkg/registry"
)

// EnqueueKernel submits a kernel for execution on a queue. workDim of 0 or
// greater than 3 is rejected before any packet is sent, matching the
// decided work_dim predicate (see DESIGN.md).
func (c *Client) EnqueueKernel(queue *registry.QueueProxy, kernel *registry.KernelProxy, workDim uint8, global, offset, local [3]uint32, wantEvent bool) (*registry.EventProxy, error) {
	if protocol.InvalidWorkDim(workDim) {
		return nil, &protocol.RemoteError{Code: protocol.StatusInvalidWorkDimension}
	}
	req := protocol.EnqueueKernel{
		KernelID: kernel.ID(), QueueID: queue.ID(), WorkDim: workDim,
		GlobalSize: global, GlobalOffset: offset, LocalSize: local,
		WantEvent: wantEvent,
	}
	if !wantEvent {
		return nil, c.requestSuccess(protocol.TagEnqueueKernel, req)
	}
	id, err := c.requestID(protocol.TagEnqueueKernel, req)
	if err != nil {
		return nil, err
	}
	return registry.NewEvent(c.reg, id), nil
}

// CreateUserEvent creates a user-triggerable event owned by ctx.
func (c *Client) CreateUserEvent(ctx *registry.ContextProxy) (*registry.EventProxy, error) {
	id, err := c.requestID(protocol.TagCreateUserEvent, protocol.CreateUserEvent{Value: ctx.ID()})
	if err != nil {
		return nil, err
	}
	return registry.NewEvent(c.reg, id), nil
}

// SetUserEventStatus sets a user event's completion status.
func (c *Client) SetUserEventStatus(event *registry.EventProxy, status uint32) error {
	return c.requestSuccess(protocol.TagSetUserEventStatus, protocol.SetUserEventStatus{EventID: event.ID(), Status: status})
}

// GetEventInfo queries an event parameter, returning its raw bytes.
func (c *Client) GetEventInfo(event *registry.EventProxy, param uint32) ([]byte, error) {
	p, err := c.requestPayload(protocol.TagGetEventInfo, protocol.GetEventInfo{ObjID: event.ID(), Param: param})
	return p.Data, err
}

// GetEventProfilingInfo queries an event's profiling counters.
func (c *Client) GetEventProfilingInfo(event *registry.EventProxy, param uint32) ([]byte, error) {
	p, err := c.requestPayload(protocol.TagGetEventProfilingInfo, protocol.GetEventProfilingInfo{ObjID: event.ID(), Param: param})
	return p.Data, err
}

// WaitForEvents blocks until every listed event completes. The event ID
// list is sent as a preceding IDList packet ahead of the WaitEvents signal,
// per the call-site convention documented in SPEC_FULL.md §4.11.
func (c *Client) WaitForEvents(events []*registry.EventProxy) error {
	ids := make([]protocol.ID, len(events))
	for i, e := range events {
		ids[i] = e.ID()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ps.Write(protocol.TagIDList, protocol.IDList{IDs: ids}); err != nil {
		return err
	}
	if err := c.ps.Write(protocol.TagWaitEvents, protocol.WaitEvents{}); err != nil {
		return err
	}
	if err := c.ps.Flush(); err != nil {
		return err
	}
	var ok protocol.SuccessBody
	return c.ps.Expect(protocol.TagSuccess, &ok)
}

// RegisterEventCallback registers a completion-notification callback for an
// event, to be delivered over the event stream once negotiated and opened.
func (c *Client) RegisterEventCallback(event *registry.EventProxy, callbackType uint32, fn func(status int32)) error {
	if c.events == nil {
		return &protocol.ResourceExhaustionError{Reason: "event stream was not negotiated"}
	}
	callbackID := c.events.Register(fn)
	return c.requestSuccess(protocol.TagRegisterEventCallback, protocol.RegisterEventCallback{
		EventID: event.ID(), CallbackID: callbackID, CallbackType: callbackType,
	})
}
