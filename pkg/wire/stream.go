// Package wire implements the buffered little-endian byte stream that every
// RemoteCL packet is read from and written to. It layers fixed-size read and
// write buffers over a net.Conn and exposes typed primitive accessors on top,
// mirroring the reference implementation's SocketStream: writes accumulate in
// a buffer until Flush, reads are served from a read-ahead buffer with Peek
// support for tag inspection before a packet body is consumed.
package wire

import (
	"encoding/binary"
	"fmt"
	"io"
	"net"
)

// BufferSize is the capacity of each of the read and write buffers. The
// design requires at least 1 KiB; this matches the reference value.
const BufferSize = 1024

// TransportError reports an unrecoverable I/O or framing failure: a closed
// peer, a short read, or any other condition that leaves the stream unusable.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("remotecl: transport error during %s", e.Op)
	}
	return fmt.Sprintf("remotecl: transport error during %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func transportErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &TransportError{Op: op, Err: err}
}

// Stream wraps a network connection with buffered, little-endian primitive
// I/O. It is not safe for concurrent use; callers serialize access externally
// (see pkg/client and pkg/server), matching the single-writer, single-reader
// discipline the wire protocol assumes per connection.
type Stream struct {
	conn net.Conn

	writeBuf [BufferSize]byte
	wOff     int

	readBuf [BufferSize]byte
	rOff    int
	rAvail  int
}

// NewStream wraps conn for buffered typed I/O.
func NewStream(conn net.Conn) *Stream {
	return &Stream{conn: conn}
}

// Conn returns the underlying network connection, e.g. to adjust deadlines.
func (s *Stream) Conn() net.Conn { return s.conn }

// Flush sends any pending write bytes.
func (s *Stream) Flush() error {
	if s.wOff == 0 {
		return nil
	}
	_, err := s.conn.Write(s.writeBuf[:s.wOff])
	s.wOff = 0
	if err != nil {
		return transportErr("flush", err)
	}
	return nil
}

// Shutdown closes the underlying connection. No further reads or writes are
// possible afterwards.
func (s *Stream) Shutdown() error {
	return s.conn.Close()
}

// Available reports how many bytes are ready for a non-blocking read.
func (s *Stream) Available() int { return s.rAvail }

// Peek previews the next incoming byte without consuming it, returning -1 on
// EOF or any read error. This is the primitive used to inspect the next
// packet tag before deciding how to decode its body.
func (s *Stream) Peek() int {
	if s.rAvail == 0 {
		if err := s.fill(); err != nil {
			return -1
		}
	}
	if s.rAvail == 0 {
		return -1
	}
	return int(s.readBuf[s.rOff])
}

// fill attempts to read more data from the socket into the read buffer.
func (s *Stream) fill() error {
	s.rOff = 0
	n, err := s.conn.Read(s.readBuf[:])
	s.rAvail = n
	if n == 0 && err != nil {
		return err
	}
	return nil
}

// Write copies p into the write buffer, flushing first if p would overflow it
// outright, or writing directly to the socket if p alone is at least as
// large as the whole buffer.
func (s *Stream) Write(p []byte) (int, error) {
	if len(p) >= len(s.writeBuf) {
		if err := s.Flush(); err != nil {
			return 0, err
		}
		if _, err := s.conn.Write(p); err != nil {
			return 0, transportErr("write", err)
		}
		return len(p), nil
	}
	if s.wOff+len(p) > len(s.writeBuf) {
		if err := s.Flush(); err != nil {
			return 0, err
		}
	}
	n := copy(s.writeBuf[s.wOff:], p)
	s.wOff += n
	return n, nil
}

// Read fills p entirely, blocking across repeated socket reads as needed. If
// p is larger than the read buffer it is filled directly, bypassing staging.
func (s *Stream) Read(p []byte) (int, error) {
	total := 0
	for total < len(p) {
		if s.rAvail > 0 {
			n := copy(p[total:], s.readBuf[s.rOff:s.rOff+s.rAvail])
			s.rOff += n
			s.rAvail -= n
			total += n
			continue
		}
		remaining := p[total:]
		if len(remaining) >= len(s.readBuf) {
			n, err := s.conn.Read(remaining)
			if n == 0 && err != nil {
				return total, transportErr("read", err)
			}
			total += n
			continue
		}
		if err := s.fill(); err != nil {
			return total, transportErr("read", err)
		}
		if s.rAvail == 0 {
			return total, transportErr("read", io.ErrUnexpectedEOF)
		}
	}
	return total, nil
}

// WriteUint8 writes a single byte.
func (s *Stream) WriteUint8(v uint8) error {
	_, err := s.Write([]byte{v})
	return err
}

// ReadUint8 reads a single byte.
func (s *Stream) ReadUint8() (uint8, error) {
	var b [1]byte
	if _, err := s.Read(b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}

// WriteBool writes a single byte, 1 for true and 0 for false.
func (s *Stream) WriteBool(v bool) error {
	if v {
		return s.WriteUint8(1)
	}
	return s.WriteUint8(0)
}

// ReadBool reads a single byte and reports whether it was non-zero.
func (s *Stream) ReadBool() (bool, error) {
	v, err := s.ReadUint8()
	return v != 0, err
}

// WriteUint16 writes a little-endian 16-bit integer.
func (s *Stream) WriteUint16(v uint16) error {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	_, err := s.Write(b[:])
	return err
}

// ReadUint16 reads a little-endian 16-bit integer.
func (s *Stream) ReadUint16() (uint16, error) {
	var b [2]byte
	if _, err := s.Read(b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b[:]), nil
}

// WriteUint32 writes a little-endian 32-bit integer.
func (s *Stream) WriteUint32(v uint32) error {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	_, err := s.Write(b[:])
	return err
}

// ReadUint32 reads a little-endian 32-bit integer.
func (s *Stream) ReadUint32() (uint32, error) {
	var b [4]byte
	if _, err := s.Read(b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

// WriteUint64 writes a little-endian 64-bit integer.
func (s *Stream) WriteUint64(v uint64) error {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	_, err := s.Write(b[:])
	return err
}

// ReadUint64 reads a little-endian 64-bit integer.
func (s *Stream) ReadUint64() (uint64, error) {
	var b [8]byte
	if _, err := s.Read(b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}

// WriteInt32 writes a little-endian signed 32-bit integer, used for error codes.
func (s *Stream) WriteInt32(v int32) error { return s.WriteUint32(uint32(v)) }

// ReadInt32 reads a little-endian signed 32-bit integer.
func (s *Stream) ReadInt32() (int32, error) {
	v, err := s.ReadUint32()
	return int32(v), err
}

// WriteRaw writes p with no length prefix, for fixed-size arrays.
func (s *Stream) WriteRaw(p []byte) error {
	_, err := s.Write(p)
	return err
}

// ReadRaw fills p exactly, with no length prefix, for fixed-size arrays.
func (s *Stream) ReadRaw(p []byte) error {
	_, err := s.Read(p)
	return err
}

// WriteString writes a UTF-8 string with a u16 length prefix, regardless of
// any surrounding packet's declared SizeT — strings always use the 16-bit
// prefix on the wire.
func (s *Stream) WriteString(v string) error {
	if len(v) > 0xFFFF {
		return fmt.Errorf("remotecl: string length %d overflows u16 prefix", len(v))
	}
	if err := s.WriteUint16(uint16(len(v))); err != nil {
		return err
	}
	return s.WriteRaw([]byte(v))
}

// ReadString reads a u16-length-prefixed UTF-8 string.
func (s *Stream) ReadString() (string, error) {
	n, err := s.ReadUint16()
	if err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if err := s.ReadRaw(buf); err != nil {
		return "", err
	}
	return string(buf), nil
}
