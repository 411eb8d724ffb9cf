package protocol

import "github.com/remotecl/remotecl/pkg/wire"

// FillPatternMax is the largest fill pattern the wire format carries inline:
// the widest OpenCL primitive is a 16-lane 8-byte vector (double16/long16).
const FillPatternMax = 128

// CreateBuffer allocates a new buffer object. expectPayload signals that a
// COPY_HOST_PTR-style initial payload follows as a separate Payload packet.
type CreateBuffer struct {
	Flags          uint32
	Size           uint32
	ContextID      ID
	ExpectPayload  bool
}

func (p CreateBuffer) Encode(s *wire.Stream) error {
	if err := s.WriteUint32(p.Flags); err != nil {
		return err
	}
	if err := s.WriteUint32(p.Size); err != nil {
		return err
	}
	if err := writeID(s, p.ContextID); err != nil {
		return err
	}
	return s.WriteBool(p.ExpectPayload)
}

func (p *CreateBuffer) Decode(s *wire.Stream) error {
	var err error
	if p.Flags, err = s.ReadUint32(); err != nil {
		return err
	}
	if p.Size, err = s.ReadUint32(); err != nil {
		return err
	}
	if p.ContextID, err = readID(s); err != nil {
		return err
	}
	p.ExpectPayload, err = s.ReadBool()
	return err
}

// CreateSubBuffer carves a region out of an existing buffer
// (clCreateSubBuffer).
type CreateSubBuffer struct {
	Flags      uint32
	Size       uint32
	Offset     uint32
	CreateType uint32
	BufferID   ID
}

func (p CreateSubBuffer) Encode(s *wire.Stream) error {
	if err := s.WriteUint32(p.Flags); err != nil {
		return err
	}
	if err := s.WriteUint32(p.Size); err != nil {
		return err
	}
	if err := s.WriteUint32(p.Offset); err != nil {
		return err
	}
	if err := s.WriteUint32(p.CreateType); err != nil {
		return err
	}
	return writeID(s, p.BufferID)
}

func (p *CreateSubBuffer) Decode(s *wire.Stream) error {
	var err error
	if p.Flags, err = s.ReadUint32(); err != nil {
		return err
	}
	if p.Size, err = s.ReadUint32(); err != nil {
		return err
	}
	if p.Offset, err = s.ReadUint32(); err != nil {
		return err
	}
	if p.CreateType, err = s.ReadUint32(); err != nil {
		return err
	}
	p.BufferID, err = readID(s)
	return err
}

// BufferRW is the shared shape of ReadBuffer and WriteBuffer: a flat byte
// range transfer against a buffer object on a given queue. The payload
// bytes travel as a separate Payload packet following this header.
type BufferRW struct {
	BufferID        ID
	QueueID         ID
	Size            uint32
	Offset          uint32
	WantEvent       bool
	ExpectEventList bool
	Block           bool
}

func (p BufferRW) Encode(s *wire.Stream) error {
	if err := writeID(s, p.BufferID); err != nil {
		return err
	}
	if err := writeID(s, p.QueueID); err != nil {
		return err
	}
	if err := s.WriteUint32(p.Size); err != nil {
		return err
	}
	if err := s.WriteUint32(p.Offset); err != nil {
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

func (p *BufferRW) Decode(s *wire.Stream) error {
	var err error
	if p.BufferID, err = readID(s); err != nil {
		return err
	}
	if p.QueueID, err = readID(s); err != nil {
		return err
	}
	if p.Size, err = s.ReadUint32(); err != nil {
		return err
	}
	if p.Offset, err = s.ReadUint32(); err != nil {
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

// ReadBuffer and WriteBuffer both use the BufferRW shape; kept as distinct
// names so the tag-to-type mapping in the dispatch tables stays explicit.
type ReadBuffer = BufferRW
type WriteBuffer = BufferRW

// FillBuffer fills a buffer range with a repeating byte pattern
// (clEnqueueFillBuffer). Pattern is a fixed 128-byte array with no length
// prefix; only the first PatternSize bytes are meaningful.
type FillBuffer struct {
	BufferID        ID
	QueueID         ID
	Offset          uint32
	Size            uint32
	PatternSize     uint8
	WantEvent       bool
	ExpectEventList bool
	Pattern         [FillPatternMax]byte
}

func (p FillBuffer) Encode(s *wire.Stream) error {
	if err := writeID(s, p.BufferID); err != nil {
		return err
	}
	if err := writeID(s, p.QueueID); err != nil {
		return err
	}
	if err := s.WriteUint32(p.Offset); err != nil {
		return err
	}
	if err := s.WriteUint32(p.Size); err != nil {
		return err
	}
	if err := s.WriteUint8(p.PatternSize); err != nil {
		return err
	}
	if err := s.WriteBool(p.WantEvent); err != nil {
		return err
	}
	if err := s.WriteBool(p.ExpectEventList); err != nil {
		return err
	}
	return s.WriteRaw(p.Pattern[:])
}

func (p *FillBuffer) Decode(s *wire.Stream) error {
	var err error
	if p.BufferID, err = readID(s); err != nil {
		return err
	}
	if p.QueueID, err = readID(s); err != nil {
		return err
	}
	if p.Offset, err = s.ReadUint32(); err != nil {
		return err
	}
	if p.Size, err = s.ReadUint32(); err != nil {
		return err
	}
	if p.PatternSize, err = s.ReadUint8(); err != nil {
		return err
	}
	if p.WantEvent, err = s.ReadBool(); err != nil {
		return err
	}
	if p.ExpectEventList, err = s.ReadBool(); err != nil {
		return err
	}
	return s.ReadRaw(p.Pattern[:])
}

// BufferRectRW is the shared shape of ReadBufferRect and WriteBufferRect
// (clEnqueueReadBufferRect/clEnqueueWriteBufferRect). Supplemental packet,
// see SPEC_FULL.md §9.1: the reference implementation assigns all four
// pitch values into a single field, a defect fixed here by giving each
// pitch its own field.
type BufferRectRW struct {
	BufferID         ID
	QueueID          ID
	BufferOrigin     [3]uint32
	HostOrigin       [3]uint32
	Region           [3]uint32
	BufferRowPitch   uint32
	BufferSlicePitch uint32
	HostRowPitch     uint32
	HostSlicePitch   uint32
	WantEvent        bool
	ExpectEventList  bool
	Block            bool
}

func (p BufferRectRW) Encode(s *wire.Stream) error {
	if err := writeID(s, p.BufferID); err != nil {
		return err
	}
	if err := writeID(s, p.QueueID); err != nil {
		return err
	}
	if err := writeUint32Array3(s, p.BufferOrigin); err != nil {
		return err
	}
	if err := writeUint32Array3(s, p.HostOrigin); err != nil {
		return err
	}
	if err := writeUint32Array3(s, p.Region); err != nil {
		return err
	}
	if err := s.WriteUint32(p.BufferRowPitch); err != nil {
		return err
	}
	if err := s.WriteUint32(p.BufferSlicePitch); err != nil {
		return err
	}
	if err := s.WriteUint32(p.HostRowPitch); err != nil {
		return err
	}
	if err := s.WriteUint32(p.HostSlicePitch); err != nil {
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

func (p *BufferRectRW) Decode(s *wire.Stream) error {
	var err error
	if p.BufferID, err = readID(s); err != nil {
		return err
	}
	if p.QueueID, err = readID(s); err != nil {
		return err
	}
	if p.BufferOrigin, err = readUint32Array3(s); err != nil {
		return err
	}
	if p.HostOrigin, err = readUint32Array3(s); err != nil {
		return err
	}
	if p.Region, err = readUint32Array3(s); err != nil {
		return err
	}
	if p.BufferRowPitch, err = s.ReadUint32(); err != nil {
		return err
	}
	if p.BufferSlicePitch, err = s.ReadUint32(); err != nil {
		return err
	}
	if p.HostRowPitch, err = s.ReadUint32(); err != nil {
		return err
	}
	if p.HostSlicePitch, err = s.ReadUint32(); err != nil {
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

type ReadBufferRect = BufferRectRW
type WriteBufferRect = BufferRectRW

// GetMemObjInfo shares the IDParamPair shape (memory object ID, param).
type GetMemObjInfo = IDParamPair

func writeUint32Array3(s *wire.Stream, a [3]uint32) error {
	for _, v := range a {
		if err := s.WriteUint32(v); err != nil {
			return err
		}
	}
	return nil
}

func readUint32Array3(s *wire.Stream) ([3]uint32, error) {
	var a [3]uint32
	for i := range a {
		v, err := s.ReadUint32()
		if err != nil {
			return a, err
		}
		a[i] = v
	}
	return a, nil
}
