package protocol

import "github.com/remotecl/remotecl/pkg/wire"

// GetPlatformIDs is a zero-byte signal requesting the full platform list;
// the response is an IDList.
type GetPlatformIDs = Signal

// GetPlatformInfo and GetDeviceInfo share the IDParamPair shape (object ID,
// param).
type GetPlatformInfo = IDParamPair
type GetDeviceInfo = IDParamPair

// GetDeviceIDs enumerates devices of a given type on a platform
// (clGetDeviceIDs); response is an IDList.
type GetDeviceIDs struct {
	PlatformID ID
	DeviceType uint64
}

func (p GetDeviceIDs) Encode(s *wire.Stream) error {
	if err := writeID(s, p.PlatformID); err != nil {
		return err
	}
	return s.WriteUint64(p.DeviceType)
}

func (p *GetDeviceIDs) Decode(s *wire.Stream) error {
	id, err := readID(s)
	if err != nil {
		return err
	}
	p.PlatformID = id
	p.DeviceType, err = s.ReadUint64()
	return err
}
