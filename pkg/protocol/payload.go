package protocol

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/zlib"

	"github.com/remotecl/remotecl/pkg/wire"
)

// CompressionThreshold is the minimum payload size, in bytes, above which the
// sender attempts a ZLIB round before falling back to a raw transfer.
const CompressionThreshold = 1 << 20 // 1 MiB

// MaxAllocSize bounds any single allocation the wire decoder makes off a
// peer-controlled length field (a Payload's declared size, a decompressed
// size, a buffer transfer's byte count). It is far above any payload this
// core actually exchanges, but well short of a size that could exhaust
// server memory or panic on a single make() call from one malformed or
// hostile length prefix.
const MaxAllocSize = 1 << 30 // 1 GiB

// Payload is an opaque byte blob packet, optionally compressed. SizeT fixes
// the width of its length prefixes; uint32 is used wherever a packet does
// not otherwise constrain it, matching the reference implementation's
// default payload size type.
type Payload[S wire.SizeT] struct {
	Data []byte
}

// WritePayload writes p to s. When compress is true (the `z` feature was
// negotiated by both peers), every payload is prefixed by a decompressed-size
// field: zero when the sender chose not to compress (because the compressor
// didn't shrink the data, or the size fell under CompressionThreshold), or
// the original size when compression was applied, immediately followed by
// the compressed-size field and bytes. When compress is false the
// decompressed-size field is omitted entirely — its presence on the wire is
// itself feature-conditional, not merely zero.
func WritePayload[S wire.SizeT](s *wire.Stream, p Payload[S], compress bool) error {
	if !compress {
		return writeSized[S](s, p.Data)
	}

	if len(p.Data) < CompressionThreshold {
		if err := writeSizeTValue[S](s, 0); err != nil {
			return err
		}
		return writeSized[S](s, p.Data)
	}

	var compressed bytes.Buffer
	zw := zlib.NewWriter(&compressed)
	if _, err := zw.Write(p.Data); err != nil {
		return err
	}
	if err := zw.Close(); err != nil {
		return err
	}

	if compressed.Len() >= len(p.Data) {
		// Compression didn't help; fall back to the raw path.
		if err := writeSizeTValue[S](s, 0); err != nil {
			return err
		}
		return writeSized[S](s, p.Data)
	}

	if err := writeSizeTValue[S](s, uint64(len(p.Data))); err != nil {
		return err
	}
	return writeSized[S](s, compressed.Bytes())
}

// ReadPayload reads a payload from s, mirroring WritePayload's feature-
// conditional decompressed-size field.
func ReadPayload[S wire.SizeT](s *wire.Stream, compress bool) (Payload[S], error) {
	if !compress {
		data, err := readSized[S](s)
		return Payload[S]{Data: data}, err
	}

	decompressedSize, err := readSizeTValue[S](s)
	if err != nil {
		return Payload[S]{}, err
	}
	raw, err := readSized[S](s)
	if err != nil {
		return Payload[S]{}, err
	}
	if decompressedSize == 0 {
		return Payload[S]{Data: raw}, nil
	}
	if decompressedSize > MaxAllocSize {
		return Payload[S]{}, &ResourceExhaustionError{Reason: "declared decompressed payload size exceeds the allocation ceiling"}
	}

	zr, err := zlib.NewReader(bytes.NewReader(raw))
	if err != nil {
		return Payload[S]{}, err
	}
	defer zr.Close()
	out := make([]byte, decompressedSize)
	if _, err := io.ReadFull(zr, out); err != nil {
		return Payload[S]{}, err
	}
	return Payload[S]{Data: out}, nil
}

// PayloadInto reads a payload and copies it into dst, for blocking reads
// where the caller already owns the destination buffer (clEnqueueReadBuffer
// and similar). The payload is read into a fresh slice first; dst's length
// is not checked against the received size: extra payload bytes are
// dropped and a short payload leaves the tail of dst unchanged.
func PayloadInto[S wire.SizeT](s *wire.Stream, dst []byte, compress bool) error {
	p, err := ReadPayload[S](s, compress)
	if err != nil {
		return err
	}
	copy(dst, p.Data)
	return nil
}

func writeSized[S wire.SizeT](s *wire.Stream, data []byte) error {
	if err := writeSizeTValue[S](s, uint64(len(data))); err != nil {
		return err
	}
	return s.WriteRaw(data)
}

func readSized[S wire.SizeT](s *wire.Stream) ([]byte, error) {
	n, err := readSizeTValue[S](s)
	if err != nil {
		return nil, err
	}
	if n > MaxAllocSize {
		return nil, &ResourceExhaustionError{Reason: "declared payload size exceeds the allocation ceiling"}
	}
	buf := make([]byte, n)
	if err := s.ReadRaw(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func writeSizeTValue[S wire.SizeT](s *wire.Stream, v uint64) error {
	switch any(S(0)).(type) {
	case uint8:
		return s.WriteUint8(uint8(v))
	case uint16:
		return s.WriteUint16(uint16(v))
	default:
		return s.WriteUint32(uint32(v))
	}
}

func readSizeTValue[S wire.SizeT](s *wire.Stream) (uint64, error) {
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
