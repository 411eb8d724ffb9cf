package protocol

import "github.com/remotecl/remotecl/pkg/wire"

// CreateKernel creates a kernel object from a named entry point in a built
// program. Shares the IDStringPair shape (program ID, then kernel name).
type CreateKernel = IDStringPair

// CloneKernel duplicates an existing kernel object, carrying only the
// source kernel's ID.
type CloneKernel struct {
	KernelID ID
}

func (p CloneKernel) Encode(s *wire.Stream) error { return writeID(s, p.KernelID) }

func (p *CloneKernel) Decode(s *wire.Stream) error {
	id, err := readID(s)
	p.KernelID = id
	return err
}

// KernelArg is clSetKernelArg's request header: which kernel, which
// argument index. The reference implementation's operator<< writes kernel
// before index even though the struct declares index first — follow the
// wire order, not the declaration order. The argument value itself follows
// as a second round-trip once the server has replied with a discriminator
// byte (see ByteBody and SPEC_FULL.md §4.11).
type KernelArg struct {
	KernelID ID
	ArgIndex uint32
}

func (p KernelArg) Encode(s *wire.Stream) error {
	if err := writeID(s, p.KernelID); err != nil {
		return err
	}
	return s.WriteUint32(p.ArgIndex)
}

func (p *KernelArg) Decode(s *wire.Stream) error {
	id, err := readID(s)
	if err != nil {
		return err
	}
	p.KernelID = id
	p.ArgIndex, err = s.ReadUint32()
	return err
}

// KernelWGInfo queries work-group sizing info (clGetKernelWorkGroupInfo)
// for a kernel against a specific device.
type KernelWGInfo struct {
	KernelID ID
	DeviceID ID
	Param    uint32
}

func (p KernelWGInfo) Encode(s *wire.Stream) error {
	if err := writeID(s, p.KernelID); err != nil {
		return err
	}
	if err := writeID(s, p.DeviceID); err != nil {
		return err
	}
	return s.WriteUint32(p.Param)
}

func (p *KernelWGInfo) Decode(s *wire.Stream) error {
	var err error
	if p.KernelID, err = readID(s); err != nil {
		return err
	}
	if p.DeviceID, err = readID(s); err != nil {
		return err
	}
	p.Param, err = s.ReadUint32()
	return err
}

// KernelArgInfo queries per-argument introspection data
// (clGetKernelArgInfo): address-space qualifier, access qualifier, type
// name, and so on.
type KernelArgInfo struct {
	KernelID ID
	ArgIndex uint32
	Param    uint32
}

func (p KernelArgInfo) Encode(s *wire.Stream) error {
	if err := writeID(s, p.KernelID); err != nil {
		return err
	}
	if err := s.WriteUint32(p.ArgIndex); err != nil {
		return err
	}
	return s.WriteUint32(p.Param)
}

func (p *KernelArgInfo) Decode(s *wire.Stream) error {
	var err error
	if p.KernelID, err = readID(s); err != nil {
		return err
	}
	if p.ArgIndex, err = s.ReadUint32(); err != nil {
		return err
	}
	p.Param, err = s.ReadUint32()
	return err
}
