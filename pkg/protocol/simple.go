package protocol

import "github.com/remotecl/remotecl/pkg/wire"

// ErrorBody is the body of a TagError packet: a single signed 32-bit status
// code drawn from the host API's error enumeration.
type ErrorBody struct {
	Code int32
}

func (p ErrorBody) Encode(s *wire.Stream) error   { return s.WriteInt32(p.Code) }
func (p *ErrorBody) Decode(s *wire.Stream) error  { v, err := s.ReadInt32(); p.Code = v; return err }

// SuccessBody is the zero-byte body of a TagSuccess packet.
type SuccessBody struct{}

func (SuccessBody) Encode(*wire.Stream) error  { return nil }
func (*SuccessBody) Decode(*wire.Stream) error { return nil }

// Signal is a reusable zero-byte body shared by every tag that carries no
// payload of its own (WaitEvents, EventStreamOpen, and similar markers).
type Signal struct{}

func (Signal) Encode(*wire.Stream) error  { return nil }
func (*Signal) Decode(*wire.Stream) error { return nil }

// U32Body carries a single little-endian uint32, reused by several simple
// packets (FireEventCallback-style status codes, CallbackTrigger slot
// indices).
type U32Body struct {
	Value uint32
}

func (p U32Body) Encode(s *wire.Stream) error  { return s.WriteUint32(p.Value) }
func (p *U32Body) Decode(s *wire.Stream) error { v, err := s.ReadUint32(); p.Value = v; return err }

// U16Body carries a single little-endian uint16, used by the event-stream
// port announcement (Payload<u16>).
type U16Body struct {
	Value uint16
}

func (p U16Body) Encode(s *wire.Stream) error  { return s.WriteUint16(p.Value) }
func (p *U16Body) Decode(s *wire.Stream) error { v, err := s.ReadUint16(); p.Value = v; return err }

// ByteBody carries a single raw byte, used for the kernel-argument
// discriminator response ('I'/'S'/'P').
type ByteBody struct {
	Value byte
}

func (p ByteBody) Encode(s *wire.Stream) error  { return s.WriteUint8(p.Value) }
func (p *ByteBody) Decode(s *wire.Stream) error { v, err := s.ReadUint8(); p.Value = v; return err }
