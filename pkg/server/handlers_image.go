package server

import "github.com/remotecl/remotecl/pkg/protocol"

func (c *conn) handleCreateImage() error {
	var req protocol.CreateImage
	if err := req.Decode(c.ps.Raw()); err != nil {
		return err
	}
	ctx, ok := c.native(req.ContextID, protocol.KindContext)
	if !ok {
		return c.replyError(protocol.StatusInvalidContext)
	}
	params := []uint32{
		req.Flags, req.ChannelOrder, req.ChannelType, req.ImageType,
		req.Width, req.Height, req.Depth, req.ArraySize,
		req.RowPitch, req.SlicePitch, req.MipLevels, req.Samples,
	}
	image, status := c.backend.CreateImage(ctx, params)
	return c.insert(protocol.KindMemory, image, status)
}

func (c *conn) handleReadImage() error {
	var req protocol.ReadImage
	if err := req.Decode(c.ps.Raw()); err != nil {
		return err
	}
	queue, ok := c.native(req.QueueID, protocol.KindQueue)
	if !ok {
		return c.replyError(protocol.StatusInvalidCommandQueue)
	}
	image, ok := c.native(req.ImageID, protocol.KindMemory)
	if !ok {
		return c.replyError(protocol.StatusInvalidMemObject)
	}
	elemSize, status := c.backend.ImageElementSize(image)
	if status != protocol.StatusSuccess {
		return c.replyError(status)
	}
	size := imageBytes(req.Region, elemSize)
	if size > protocol.MaxAllocSize {
		return c.replyError(protocol.StatusOutOfHostMemory)
	}
	out := make([]byte, size)
	if status := c.backend.ReadImage(queue, image, out); status != protocol.StatusSuccess {
		return c.replyError(status)
	}
	return c.replyPayload(out)
}

// handleWriteImage implements the two-round element-size negotiation: the
// pixel size of an image is unknown to the client, so the server queries
// it, replies with the exact byte count the client must send, flushes,
// and only then reads the client's payload. Mirrors handleSetKernelArg's
// discriminator-then-body exchange in handlers_kernel.go.
func (c *conn) handleWriteImage() error {
	var req protocol.WriteImage
	if err := req.Decode(c.ps.Raw()); err != nil {
		return err
	}
	queue, ok := c.native(req.QueueID, protocol.KindQueue)
	if !ok {
		return c.replyError(protocol.StatusInvalidCommandQueue)
	}
	image, ok := c.native(req.ImageID, protocol.KindMemory)
	if !ok {
		return c.replyError(protocol.StatusInvalidMemObject)
	}

	elemSize, status := c.backend.ImageElementSize(image)
	if status != protocol.StatusSuccess {
		return c.replyError(status)
	}
	size := imageBytes(req.Region, elemSize)
	if size > protocol.MaxAllocSize {
		return c.replyError(protocol.StatusOutOfHostMemory)
	}
	if err := c.writeAndFlush(protocol.TagPayload, protocol.U32Body{Value: uint32(size)}); err != nil {
		return err
	}

	payload, err := protocol.ReadPayload[uint32](c.ps.Raw(), c.version.Compression)
	if err != nil {
		return err
	}
	return c.replyStatus(c.backend.WriteImage(queue, image, payload.Data))
}

// imageBytes sizes a pixel-data transfer as elemSize times the region
// volume, treating an unset (zero) height or depth as 1 the same way
// rectBytes does for buffer rects.
func imageBytes(region [3]uint32, elemSize uint32) uint64 {
	n := uint64(elemSize) * uint64(region[0])
	if region[1] > 0 {
		n *= uint64(region[1])
	}
	if region[2] > 0 {
		n *= uint64(region[2])
	}
	return n
}

func (c *conn) handleGetImageInfo() error {
	var req protocol.GetImageInfo
	if err := req.Decode(c.ps.Raw()); err != nil {
		return err
	}
	image, ok := c.native(req.ObjID, protocol.KindMemory)
	if !ok {
		return c.replyError(protocol.StatusInvalidMemObject)
	}
	data, status := c.backend.GetImageInfo(image, req.Param)
	return c.replyPayloadOrError(data, status)
}
