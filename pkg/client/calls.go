package client

import (
	"github.com/remotecl/remotecl/pkg/protocol"
	"github.com/remotecl/remotecl/pkg/registry"
)

// GetPlatformIDs enumerates every platform the server exposes.
func (c *Client) GetPlatformIDs() ([]*registry.PlatformProxy, error) {
	ids, err := c.requestIDList(protocol.TagGetPlatformIDs, protocol.GetPlatformIDs{})
	if err != nil {
		return nil, err
	}
	out := make([]*registry.PlatformProxy, len(ids))
	for i, id := range ids {
		out[i] = registry.NewPlatform(c.reg, id)
	}
	return out, nil
}

// GetPlatformInfo queries a platform parameter, returning its raw bytes.
func (c *Client) GetPlatformInfo(platform *registry.PlatformProxy, param uint32) ([]byte, error) {
	p, err := c.requestPayload(protocol.TagGetPlatformInfo, protocol.GetPlatformInfo{ObjID: platform.ID(), Param: param})
	return p.Data, err
}

// GetDeviceIDs enumerates devices of deviceType on platform.
func (c *Client) GetDeviceIDs(platform *registry.PlatformProxy, deviceType uint64) ([]*registry.DeviceProxy, error) {
	ids, err := c.requestIDList(protocol.TagGetDeviceIDs, protocol.GetDeviceIDs{PlatformID: platform.ID(), DeviceType: deviceType})
	if err != nil {
		return nil, err
	}
	out := make([]*registry.DeviceProxy, len(ids))
	for i, id := range ids {
		out[i] = registry.NewDevice(c.reg, id)
	}
	return out, nil
}

// GetDeviceInfo queries a device parameter, returning its raw bytes.
func (c *Client) GetDeviceInfo(device *registry.DeviceProxy, param uint32) ([]byte, error) {
	p, err := c.requestPayload(protocol.TagGetDeviceInfo, protocol.GetDeviceInfo{ObjID: device.ID(), Param: param})
	return p.Data, err
}

// CreateContext creates a context bound to an explicit device list.
func (c *Client) CreateContext(properties []uint64, devices []*registry.DeviceProxy) (*registry.ContextProxy, error) {
	devIDs := make([]uint16, len(devices))
	for i, d := range devices {
		devIDs[i] = uint16(d.ID())
	}
	id, err := c.requestID(protocol.TagCreateContext, protocol.CreateContext{Properties: properties, Devices: devIDs})
	if err != nil {
		return nil, err
	}
	return registry.NewContext(c.reg, id), nil
}

// CreateContextFromType creates a context bound to a device type.
func (c *Client) CreateContextFromType(properties []uint64, deviceType uint64) (*registry.ContextProxy, error) {
	id, err := c.requestID(protocol.TagCreateContextFromType, protocol.CreateContextFromType{DeviceType: deviceType, Properties: properties})
	if err != nil {
		return nil, err
	}
	return registry.NewContext(c.reg, id), nil
}

// GetContextInfo queries a context parameter, returning its raw bytes.
func (c *Client) GetContextInfo(ctx *registry.ContextProxy, param uint32) ([]byte, error) {
	p, err := c.requestPayload(protocol.TagGetContextInfo, protocol.GetContextInfo{ObjID: ctx.ID(), Param: param})
	return p.Data, err
}

// GetImageFormats queries the image formats a context supports.
func (c *Client) GetImageFormats(ctx *registry.ContextProxy, flags, imageType uint32) ([]byte, error) {
	p, err := c.requestPayload(protocol.TagGetImageFormats, protocol.GetImageFormats{ContextID: ctx.ID(), Flags: flags, ImageType: imageType})
	return p.Data, err
}

// Retain increments an object's reference count.
func (c *Client) Retain(kind protocol.ObjKind, id protocol.ID) error {
	return c.requestSuccess(protocol.TagRetain, protocol.RefCount{Kind: kind, ID: id})
}

// Release decrements an object's reference count.
func (c *Client) Release(kind protocol.ObjKind, id protocol.ID) error {
	return c.requestSuccess(protocol.TagRelease, protocol.RefCount{Kind: kind, ID: id})
}

// CreateQueue creates a simple in-order/out-of-order command queue.
func (c *Client) CreateQueue(ctx *registry.ContextProxy, device *registry.DeviceProxy, properties uint64) (*registry.QueueProxy, error) {
	id, err := c.requestID(protocol.TagCreateQueue, protocol.CreateQueue{Context: ctx.ID(), Device: device.ID(), Properties: properties})
	if err != nil {
		return nil, err
	}
	return registry.NewQueue(c.reg, id), nil
}

// CreateQueueWithProp creates a queue from the cl_queue_properties
// property-list form.
func (c *Client) CreateQueueWithProp(ctx *registry.ContextProxy, device *registry.DeviceProxy, properties []uint64) (*registry.QueueProxy, error) {
	id, err := c.requestID(protocol.TagCreateQueueWithProp, protocol.CreateQueueWithProp{Context: ctx.ID(), Device: device.ID(), Properties: properties})
	if err != nil {
		return nil, err
	}
	return registry.NewQueue(c.reg, id), nil
}

// GetQueueInfo queries a queue parameter, returning its raw bytes.
func (c *Client) GetQueueInfo(queue *registry.QueueProxy, param uint32) ([]byte, error) {
	p, err := c.requestPayload(protocol.TagGetQueueInfo, protocol.GetQueueInfo{ObjID: queue.ID(), Param: param})
	return p.Data, err
}

// Flush requests the server flush a queue's submitted commands.
func (c *Client) Flush(queue *registry.QueueProxy) error {
	return c.requestSuccess(protocol.TagFlush, protocol.IDPacket{Value: queue.ID()})
}

// Finish blocks until all commands on a queue have completed.
func (c *Client) Finish(queue *registry.QueueProxy) error {
	return c.requestSuccess(protocol.TagFinish, protocol.IDPacket{Value: queue.ID()})
}
