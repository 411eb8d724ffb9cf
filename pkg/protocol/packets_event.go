package protocol

import "github.com/remotecl/remotecl/pkg/wire"

// EnqueueKernel submits a kernel for execution on a queue
// (clEnqueueNDRangeKernel). WorkDim of 0 or greater than 3 is invalid; see
// the work_dim predicate decision in DESIGN.md.
type EnqueueKernel struct {
	KernelID        ID
	QueueID         ID
	WorkDim         uint8
	GlobalSize      [3]uint32
	GlobalOffset    [3]uint32
	LocalSize       [3]uint32
	WantEvent       bool
	ExpectEventList bool
}

func (p EnqueueKernel) Encode(s *wire.Stream) error {
	if err := writeID(s, p.KernelID); err != nil {
		return err
	}
	if err := writeID(s, p.QueueID); err != nil {
		return err
	}
	if err := s.WriteUint8(p.WorkDim); err != nil {
		return err
	}
	if err := writeUint32Array3(s, p.GlobalSize); err != nil {
		return err
	}
	if err := writeUint32Array3(s, p.GlobalOffset); err != nil {
		return err
	}
	if err := writeUint32Array3(s, p.LocalSize); err != nil {
		return err
	}
	if err := s.WriteBool(p.WantEvent); err != nil {
		return err
	}
	return s.WriteBool(p.ExpectEventList)
}

func (p *EnqueueKernel) Decode(s *wire.Stream) error {
	var err error
	if p.KernelID, err = readID(s); err != nil {
		return err
	}
	if p.QueueID, err = readID(s); err != nil {
		return err
	}
	if p.WorkDim, err = s.ReadUint8(); err != nil {
		return err
	}
	if p.GlobalSize, err = readUint32Array3(s); err != nil {
		return err
	}
	if p.GlobalOffset, err = readUint32Array3(s); err != nil {
		return err
	}
	if p.LocalSize, err = readUint32Array3(s); err != nil {
		return err
	}
	if p.WantEvent, err = s.ReadBool(); err != nil {
		return err
	}
	p.ExpectEventList, err = s.ReadBool()
	return err
}

// InvalidWorkDim reports whether dim is an invalid work_dim value: zero, or
// greater than the maximum supported dimensionality of 3. Decided in favor
// of accepting exactly 3 (DESIGN.md), resolving the source ambiguity
// between work_dim >= 3 and work_dim > 3.
func InvalidWorkDim(dim uint8) bool { return dim == 0 || dim > 3 }

// CreateUserEvent creates a user-triggerable event owned by a context
// (clCreateUserEvent); body is a bare context ID.
type CreateUserEvent = IDPacket

// SetUserEventStatus sets a user event's execution status
// (clSetUserEventStatus). Wire order is status then event ID, following the
// IDTypePair convention of writing the data field before the ID field.
type SetUserEventStatus struct {
	EventID ID
	Status  uint32
}

func (p SetUserEventStatus) Encode(s *wire.Stream) error {
	if err := s.WriteUint32(p.Status); err != nil {
		return err
	}
	return writeID(s, p.EventID)
}

func (p *SetUserEventStatus) Decode(s *wire.Stream) error {
	status, err := s.ReadUint32()
	if err != nil {
		return err
	}
	p.Status = status
	id, err := readID(s)
	p.EventID = id
	return err
}

// GetEventInfo and GetEventProfilingInfo share the IDParamPair shape
// (event ID, param).
type GetEventInfo = IDParamPair
type GetEventProfilingInfo = IDParamPair

// WaitEvents is a zero-byte signal; the event ID list it waits on travels
// as a preceding IDList packet, per call-site convention.
type WaitEvents = Signal

// EventStreamOpen is a zero-byte signal requesting the server open its
// event-notification side channel; the response is a bare Payload<u16>
// port number, zero meaning refused.
type EventStreamOpen = Signal

// CallbackTrigger carries the callback-registry slot index a notification
// refers to, sent ahead of the status packet on the event stream.
type CallbackTrigger = U32Body

// EventCallbackTrigger is dual-purpose: a bare event ID on the request
// path (FireEventCallback-style follow-up), or a bare status code on the
// event-stream notification path, which always follows a CallbackTrigger
// slot announcement. See SPEC_FULL.md §4.8 and scenario 5.
type EventCallbackTrigger = U32Body

// RegisterEventCallback asks the server to notify the event stream when
// eventID reaches callbackType's trigger condition, tagging the
// notification with callbackID for later slot lookup.
type RegisterEventCallback struct {
	EventID      ID
	CallbackID   ID
	CallbackType uint32
}

func (p RegisterEventCallback) Encode(s *wire.Stream) error {
	if err := writeID(s, p.EventID); err != nil {
		return err
	}
	if err := writeID(s, p.CallbackID); err != nil {
		return err
	}
	return s.WriteUint32(p.CallbackType)
}

func (p *RegisterEventCallback) Decode(s *wire.Stream) error {
	var err error
	if p.EventID, err = readID(s); err != nil {
		return err
	}
	if p.CallbackID, err = readID(s); err != nil {
		return err
	}
	p.CallbackType, err = s.ReadUint32()
	return err
}
