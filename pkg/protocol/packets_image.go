package protocol

import "github.com/remotecl/remotecl/pkg/wire"

// CreateImage allocates a new image object (clCreateImage). Field order
// matches the reference implementation's operator<<: every geometry field
// precedes the owning context ID.
type CreateImage struct {
	Flags        uint32
	ChannelOrder uint32
	ChannelType  uint32
	ImageType    uint32
	Width        uint32
	Height       uint32
	Depth        uint32
	ArraySize    uint32
	RowPitch     uint32
	SlicePitch   uint32
	MipLevels    uint32
	Samples      uint32
	ContextID    ID
}

func (p CreateImage) Encode(s *wire.Stream) error {
	fields := []uint32{
		p.Flags, p.ChannelOrder, p.ChannelType, p.ImageType,
		p.Width, p.Height, p.Depth, p.ArraySize,
		p.RowPitch, p.SlicePitch, p.MipLevels, p.Samples,
	}
	for _, v := range fields {
		if err := s.WriteUint32(v); err != nil {
			return err
		}
	}
	return writeID(s, p.ContextID)
}

func (p *CreateImage) Decode(s *wire.Stream) error {
	fields := []*uint32{
		&p.Flags, &p.ChannelOrder, &p.ChannelType, &p.ImageType,
		&p.Width, &p.Height, &p.Depth, &p.ArraySize,
		&p.RowPitch, &p.SlicePitch, &p.MipLevels, &p.Samples,
	}
	for _, f := range fields {
		v, err := s.ReadUint32()
		if err != nil {
			return err
		}
		*f = v
	}
	id, err := readID(s)
	p.ContextID = id
	return err
}

// ImageRW is the shared shape of ReadImage and WriteImage
// (clEnqueueReadImage/clEnqueueWriteImage). Pixel data travels as a
// separate Payload packet following this header.
type ImageRW struct {
	ImageID         ID
	QueueID         ID
	Origin          [3]uint32
	Region          [3]uint32
	RowPitch        uint32
	SlicePitch      uint32
	WantEvent       bool
	ExpectEventList bool
	Block           bool
}

func (p ImageRW) Encode(s *wire.Stream) error {
	if err := writeID(s, p.ImageID); err != nil {
		return err
	}
	if err := writeID(s, p.QueueID); err != nil {
		return err
	}
	if err := writeUint32Array3(s, p.Origin); err != nil {
		return err
	}
	if err := writeUint32Array3(s, p.Region); err != nil {
		return err
	}
	if err := s.WriteUint32(p.RowPitch); err != nil {
		return err
	}
	if err := s.WriteUint32(p.SlicePitch); err != nil {
		return err
	}
	if err := s.WriteBool(p.WantEvent); err != nil {
		return err
	}
	if err := s.WriteBool(p.ExpectEventList); err != nil {
		return err
	}
	return s.WriteBool(p.Block)
}

func (p *ImageRW) Decode(s *wire.Stream) error {
	var err error
	if p.ImageID, err = readID(s); err != nil {
		return err
	}
	if p.QueueID, err = readID(s); err != nil {
		return err
	}
	if p.Origin, err = readUint32Array3(s); err != nil {
		return err
	}
	if p.Region, err = readUint32Array3(s); err != nil {
		return err
	}
	if p.RowPitch, err = s.ReadUint32(); err != nil {
		return err
	}
	if p.SlicePitch, err = s.ReadUint32(); err != nil {
		return err
	}
	if p.WantEvent, err = s.ReadBool(); err != nil {
		return err
	}
	if p.ExpectEventList, err = s.ReadBool(); err != nil {
		return err
	}
	p.Block, err = s.ReadBool()
	return err
}

type ReadImage = ImageRW
type WriteImage = ImageRW

// GetImageInfo shares the IDParamPair shape (image ID, param).
type GetImageInfo = IDParamPair
