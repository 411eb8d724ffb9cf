package wire

import "fmt"

// SizeT is the set of integer widths usable as a sequence length prefix.
// Packets choose the narrowest width that fits their expected cardinality,
// matching the reference implementation's Serialiseable<Container, SizeT>
// template parameter.
type SizeT interface {
	uint8 | uint16 | uint32
}

func maxOf[S SizeT]() uint64 {
	var v S
	switch any(v).(type) {
	case uint8:
		return 0xFF
	case uint16:
		return 0xFFFF
	default:
		return 0xFFFFFFFF
	}
}

func writeSizeT[S SizeT](s *Stream, v uint64) error {
	switch any(S(0)).(type) {
	case uint8:
		return s.WriteUint8(uint8(v))
	case uint16:
		return s.WriteUint16(uint16(v))
	default:
		return s.WriteUint32(uint32(v))
	}
}

func readSizeT[S SizeT](s *Stream) (uint64, error) {
	switch any(S(0)).(type) {
	case uint8:
		v, err := s.ReadUint8()
		return uint64(v), err
	case uint16:
		v, err := s.ReadUint16()
		return uint64(v), err
	default:
		v, err := s.ReadUint32()
		return uint64(v), err
	}
}

// WriteSeq writes a length-prefixed sequence, with the prefix width fixed by
// the S type parameter and each element encoded by encode. It refuses to
// serialize a sequence whose length overflows the chosen prefix.
func WriteSeq[S SizeT, T any](s *Stream, items []T, encode func(*Stream, T) error) error {
	if uint64(len(items)) > maxOf[S]() {
		return fmt.Errorf("remotecl: sequence length %d overflows size prefix", len(items))
	}
	if err := writeSizeT[S](s, uint64(len(items))); err != nil {
		return err
	}
	for _, item := range items {
		if err := encode(s, item); err != nil {
			return err
		}
	}
	return nil
}

// ReadSeq reads a length-prefixed sequence using the S prefix width and
// decode for each element.
func ReadSeq[S SizeT, T any](s *Stream, decode func(*Stream) (T, error)) ([]T, error) {
	n, err := readSizeT[S](s)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, n)
	for i := uint64(0); i < n; i++ {
		v, err := decode(s)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// WriteUint16Seq writes a sequence of uint16 values with an S-width prefix.
func WriteUint16Seq[S SizeT](s *Stream, items []uint16) error {
	return WriteSeq[S](s, items, func(s *Stream, v uint16) error { return s.WriteUint16(v) })
}

// ReadUint16Seq reads a sequence of uint16 values with an S-width prefix.
func ReadUint16Seq[S SizeT](s *Stream) ([]uint16, error) {
	return ReadSeq[S](s, func(s *Stream) (uint16, error) { return s.ReadUint16() })
}

// WriteUint64Seq writes a sequence of uint64 values with an S-width prefix.
func WriteUint64Seq[S SizeT](s *Stream, items []uint64) error {
	return WriteSeq[S](s, items, func(s *Stream, v uint64) error { return s.WriteUint64(v) })
}

// ReadUint64Seq reads a sequence of uint64 values with an S-width prefix.
func ReadUint64Seq[S SizeT](s *Stream) ([]uint64, error) {
	return ReadSeq[S](s, func(s *Stream) (uint64, error) { return s.ReadUint64() })
}

// WriteStringSeq writes a sequence of strings with an S-width prefix; each
// string is itself still u16-length-prefixed per WriteString.
func WriteStringSeq[S SizeT](s *Stream, items []string) error {
	return WriteSeq[S](s, items, func(s *Stream, v string) error { return s.WriteString(v) })
}

// ReadStringSeq reads a sequence of strings with an S-width prefix.
func ReadStringSeq[S SizeT](s *Stream) ([]string, error) {
	return ReadSeq[S](s, func(s *Stream) (string, error) { return s.ReadString() })
}
