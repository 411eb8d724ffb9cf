package protocol

import "github.com/remotecl/remotecl/pkg/wire"

// ID is the wire identifier type: a 16-bit unsigned integer, unique within
// one connection. Zero is the sentinel meaning "absent" wherever an ID is
// optional.
type ID uint16

// MaxIDs is the hard ceiling on live IDs within a single connection, imposed
// by the 16-bit ID space.
const MaxIDs = 1 << 16

func writeID(s *wire.Stream, id ID) error { return s.WriteUint16(uint16(id)) }

func readID(s *wire.Stream) (ID, error) {
	v, err := s.ReadUint16()
	return ID(v), err
}

// IDPacket carries a single ID, used both as a response (e.g. object
// creation) and as a request body (e.g. CreateUserEvent's owning context).
type IDPacket struct {
	Value ID
}

func (p IDPacket) Encode(s *wire.Stream) error { return writeID(s, p.Value) }

func (p *IDPacket) Decode(s *wire.Stream) error {
	v, err := readID(s)
	p.Value = v
	return err
}

// IDList carries a sequence of IDs with a u8 length prefix — narrower than
// the default u16 sequence prefix used elsewhere, since the reference
// implementation declares it Serialiseable<vector<IDType>, uint8_t>.
type IDList struct {
	IDs []ID
}

func (p IDList) Encode(s *wire.Stream) error {
	return wire.WriteSeq[uint8](s, p.IDs, func(s *wire.Stream, id ID) error { return writeID(s, id) })
}

func (p *IDList) Decode(s *wire.Stream) error {
	ids, err := wire.ReadSeq[uint8](s, readID)
	p.IDs = ids
	return err
}

// RefCount is the shared body of Retain and Release: a kind letter followed
// by the ID it refers to.
type RefCount struct {
	Kind ObjKind
	ID   ID
}

func (p RefCount) Encode(s *wire.Stream) error {
	if err := s.WriteUint8(byte(p.Kind)); err != nil {
		return err
	}
	return writeID(s, p.ID)
}

func (p *RefCount) Decode(s *wire.Stream) error {
	k, err := s.ReadUint8()
	if err != nil {
		return err
	}
	p.Kind = ObjKind(k)
	id, err := readID(s)
	p.ID = id
	return err
}
