package protocol

import "github.com/remotecl/remotecl/pkg/wire"

// IDStringPair pairs an ID with a string, used for program source, build
// options, and kernel names.
type IDStringPair struct {
	ObjID ID
	Text  string
}

// CreateSourceProgram creates a program from source text, paired with the
// owning context ID. Shares the IDStringPair shape.
type CreateSourceProgram = IDStringPair

// BuildProgram triggers compilation of a program with a given options
// string. Shares the IDStringPair shape.
type BuildProgram = IDStringPair

// CreateBinaryProgram creates a program from a precompiled binary blob; the
// binary bytes themselves travel as a separate Payload packet following
// this bare program-context header.
type CreateBinaryProgram struct {
	ContextID ID
}

func (p CreateBinaryProgram) Encode(s *wire.Stream) error { return writeID(s, p.ContextID) }

func (p *CreateBinaryProgram) Decode(s *wire.Stream) error {
	id, err := readID(s)
	p.ContextID = id
	return err
}

// ProgramInfo and KernelInfo share the IDParamPair shape (object ID, param).
type ProgramInfo = IDParamPair
type KernelInfo = IDParamPair

func (p IDStringPair) Encode(s *wire.Stream) error {
	if err := writeID(s, p.ObjID); err != nil {
		return err
	}
	return s.WriteString(p.Text)
}

func (p *IDStringPair) Decode(s *wire.Stream) error {
	id, err := readID(s)
	if err != nil {
		return err
	}
	p.ObjID = id
	p.Text, err = s.ReadString()
	return err
}

// ProgramBuildInfo queries build status/log/options for a program on a
// specific device.
type ProgramBuildInfo struct {
	Param     uint32
	ProgramID ID
	DeviceID  ID
}

func (p ProgramBuildInfo) Encode(s *wire.Stream) error {
	if err := s.WriteUint32(p.Param); err != nil {
		return err
	}
	if err := writeID(s, p.ProgramID); err != nil {
		return err
	}
	return writeID(s, p.DeviceID)
}

func (p *ProgramBuildInfo) Decode(s *wire.Stream) error {
	param, err := s.ReadUint32()
	if err != nil {
		return err
	}
	p.Param = param
	prog, err := readID(s)
	if err != nil {
		return err
	}
	p.ProgramID = prog
	dev, err := readID(s)
	p.DeviceID = dev
	return err
}

// CompileProgram requests compilation (as opposed to full build) of a
// program against a header list, supporting separate-compilation workflows.
// Supplemental packet, see SPEC_FULL.md §9.1.
type CompileProgram struct {
	ProgramID    ID
	Options      string
	DeviceIDs    []ID
	HeaderIDs    []ID
	HeaderNames  []string
	HasCallback  bool
	CallbackID   ID
}

func (p CompileProgram) Encode(s *wire.Stream) error {
	if err := writeID(s, p.ProgramID); err != nil {
		return err
	}
	if err := s.WriteString(p.Options); err != nil {
		return err
	}
	if err := wire.WriteSeq[uint8](s, p.DeviceIDs, func(s *wire.Stream, id ID) error { return writeID(s, id) }); err != nil {
		return err
	}
	if err := wire.WriteSeq[uint8](s, p.HeaderIDs, func(s *wire.Stream, id ID) error { return writeID(s, id) }); err != nil {
		return err
	}
	if err := wire.WriteStringSeq[uint8](s, p.HeaderNames); err != nil {
		return err
	}
	if err := s.WriteBool(p.HasCallback); err != nil {
		return err
	}
	if p.HasCallback {
		return writeID(s, p.CallbackID)
	}
	return nil
}

func (p *CompileProgram) Decode(s *wire.Stream) error {
	var err error
	if p.ProgramID, err = readID(s); err != nil {
		return err
	}
	if p.Options, err = s.ReadString(); err != nil {
		return err
	}
	if p.DeviceIDs, err = wire.ReadSeq[uint8](s, readID); err != nil {
		return err
	}
	if p.HeaderIDs, err = wire.ReadSeq[uint8](s, readID); err != nil {
		return err
	}
	if p.HeaderNames, err = wire.ReadStringSeq[uint8](s); err != nil {
		return err
	}
	if p.HasCallback, err = s.ReadBool(); err != nil {
		return err
	}
	if p.HasCallback {
		p.CallbackID, err = readID(s)
	}
	return err
}

// LinkProgram requests linking a set of already-compiled programs into one.
// Supplemental packet, see SPEC_FULL.md §9.1.
type LinkProgram struct {
	Context    ID
	ProgramIDs []ID
	DeviceIDs  []ID
	Options    string
}

func (p LinkProgram) Encode(s *wire.Stream) error {
	if err := writeID(s, p.Context); err != nil {
		return err
	}
	if err := s.WriteString(p.Options); err != nil {
		return err
	}
	if err := wire.WriteSeq[uint8](s, p.DeviceIDs, func(s *wire.Stream, id ID) error { return writeID(s, id) }); err != nil {
		return err
	}
	return wire.WriteSeq[uint8](s, p.ProgramIDs, func(s *wire.Stream, id ID) error { return writeID(s, id) })
}

func (p *LinkProgram) Decode(s *wire.Stream) error {
	var err error
	if p.Context, err = readID(s); err != nil {
		return err
	}
	if p.Options, err = s.ReadString(); err != nil {
		return err
	}
	if p.DeviceIDs, err = wire.ReadSeq[uint8](s, readID); err != nil {
		return err
	}
	p.ProgramIDs, err = wire.ReadSeq[uint8](s, readID)
	return err
}

// CreateKernelsInProgram requests bulk kernel-object creation for every
// kernel entry point in a built program. Supplemental packet, see
// SPEC_FULL.md §9.1.
type CreateKernelsInProgram struct {
	ProgramID   ID
	KernelCount uint32
}

func (p CreateKernelsInProgram) Encode(s *wire.Stream) error {
	if err := writeID(s, p.ProgramID); err != nil {
		return err
	}
	return s.WriteUint32(p.KernelCount)
}

func (p *CreateKernelsInProgram) Decode(s *wire.Stream) error {
	id, err := readID(s)
	if err != nil {
		return err
	}
	p.ProgramID = id
	p.KernelCount, err = s.ReadUint32()
	return err
}
