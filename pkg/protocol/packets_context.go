package protocol

import "github.com/remotecl/remotecl/pkg/wire"

// CreateContextFromType requests a context bound to a device type rather
// than an explicit device list.
type CreateContextFromType struct {
	DeviceType uint64
	Properties []uint64
}

func (p CreateContextFromType) Encode(s *wire.Stream) error {
	if err := s.WriteUint64(p.DeviceType); err != nil {
		return err
	}
	return wire.WriteUint64Seq[uint8](s, p.Properties)
}

func (p *CreateContextFromType) Decode(s *wire.Stream) error {
	v, err := s.ReadUint64()
	if err != nil {
		return err
	}
	p.DeviceType = v
	props, err := wire.ReadUint64Seq[uint8](s)
	p.Properties = props
	return err
}

// CreateContext requests a context bound to an explicit device list.
// Properties use a u8 length prefix, Devices the default u16 prefix —
// the two fields intentionally differ in width, matching the reference
// implementation.
type CreateContext struct {
	Properties []uint64
	Devices    []uint16
}

func (p CreateContext) Encode(s *wire.Stream) error {
	if err := wire.WriteUint64Seq[uint8](s, p.Properties); err != nil {
		return err
	}
	return wire.WriteUint16Seq[uint16](s, p.Devices)
}

func (p *CreateContext) Decode(s *wire.Stream) error {
	props, err := wire.ReadUint64Seq[uint8](s)
	if err != nil {
		return err
	}
	p.Properties = props
	devices, err := wire.ReadUint16Seq[uint16](s)
	p.Devices = devices
	return err
}

// GetImageFormats queries the supported image formats for a context.
type GetImageFormats struct {
	ContextID ID
	Flags     uint32
	ImageType uint32
}

func (p GetImageFormats) Encode(s *wire.Stream) error {
	if err := writeID(s, p.ContextID); err != nil {
		return err
	}
	if err := s.WriteUint32(p.Flags); err != nil {
		return err
	}
	return s.WriteUint32(p.ImageType)
}

func (p *GetImageFormats) Decode(s *wire.Stream) error {
	id, err := readID(s)
	if err != nil {
		return err
	}
	p.ContextID = id
	if p.Flags, err = s.ReadUint32(); err != nil {
		return err
	}
	p.ImageType, err = s.ReadUint32()
	return err
}

// IDParamPair is the common shape of every "get info" query: an object ID
// paired with a host-API parameter name, written data (param) before id
// (matching the reference's IDTypePair field order).
type IDParamPair struct {
	ObjID ID
	Param uint32
}

func (p IDParamPair) Encode(s *wire.Stream) error {
	if err := s.WriteUint32(p.Param); err != nil {
		return err
	}
	return writeID(s, p.ObjID)
}

func (p *IDParamPair) Decode(s *wire.Stream) error {
	param, err := s.ReadUint32()
	if err != nil {
		return err
	}
	p.Param = param
	id, err := readID(s)
	p.ObjID = id
	return err
}

// GetContextInfo shares the IDParamPair shape (context ID, param).
type GetContextInfo = IDParamPair
