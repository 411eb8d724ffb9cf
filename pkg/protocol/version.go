package protocol

import (
	"fmt"

	"github.com/remotecl/remotecl/pkg/wire"
)

// VersionSize is the fixed size of the version/feature negotiation packet.
const VersionSize = 64

// ProtocolMajor and ProtocolMinor identify this implementation's wire
// protocol revision.
const (
	ProtocolMajor uint8 = 0
	ProtocolMinor uint8 = 1
)

// IDSize is the width, in bytes, of an ID on the wire (§3: a 16-bit
// identifier). Peers with mismatching IDSize refuse connection.
const IDSize uint8 = 2

// Feature letters recognized in the version packet's trailing section.
const (
	FeatureCompression = 'z'
	FeatureEventStream = 'e'
)

// swVersionSize is the length of the fixed major/minor/space/IDSize prefix,
// before any feature letters begin.
const swVersionSize = 4

// Version is the 64-byte fixed packet exchanged once per stream, server
// first: protocol major byte, minor byte, a space, the declared ID size in
// bytes, then ASCII feature letters, then a NUL terminator.
type Version struct {
	Major        uint8
	Minor        uint8
	IDSize       uint8
	Compression  bool
	EventStream  bool
}

// Local returns this implementation's own version packet, with the given
// optional features enabled.
func Local(compression, eventStream bool) Version {
	return Version{
		Major:       ProtocolMajor,
		Minor:       ProtocolMinor,
		IDSize:      IDSize,
		Compression: compression,
		EventStream: eventStream,
	}
}

// Encode renders the version packet into its fixed 64-byte wire form.
func (v Version) Encode() [VersionSize]byte {
	var buf [VersionSize]byte
	buf[0] = v.Major
	buf[1] = v.Minor
	buf[2] = ' '
	buf[3] = v.IDSize
	off := swVersionSize
	if v.Compression {
		buf[off] = FeatureCompression
		off++
	}
	if v.EventStream {
		buf[off] = FeatureEventStream
		off++
	}
	buf[off] = 0
	return buf
}

// DecodeVersion parses a 64-byte wire buffer into a Version.
func DecodeVersion(buf [VersionSize]byte) Version {
	v := Version{Major: buf[0], Minor: buf[1], IDSize: buf[3]}
	for i := swVersionSize; i < VersionSize && buf[i] != 0; i++ {
		switch buf[i] {
		case FeatureCompression:
			v.Compression = true
		case FeatureEventStream:
			v.EventStream = true
		}
	}
	return v
}

// WriteVersion writes this version packet's 64-byte wire form to s.
func WriteVersion(s *wire.Stream, v Version) error {
	buf := v.Encode()
	return s.WriteRaw(buf[:])
}

// ReadVersion reads a 64-byte version packet from s.
func ReadVersion(s *wire.Stream) (Version, error) {
	var buf [VersionSize]byte
	if err := s.ReadRaw(buf[:]); err != nil {
		return Version{}, err
	}
	return DecodeVersion(buf), nil
}

// CompatibleWith reports whether the local version packet can interoperate
// with the peer's. Major, minor, and IDSize must match exactly; so must
// Compression (peers disagreeing on compression cannot exchange payloads).
// EventStream may differ — the side lacking the feature simply never
// negotiates the event stream.
func (v Version) CompatibleWith(peer Version) error {
	if v.Major != peer.Major || v.Minor != peer.Minor {
		return fmt.Errorf("remotecl: protocol version mismatch: local %d.%d, peer %d.%d", v.Major, v.Minor, peer.Major, peer.Minor)
	}
	if v.IDSize != peer.IDSize {
		return fmt.Errorf("remotecl: ID size mismatch: local %d, peer %d", v.IDSize, peer.IDSize)
	}
	if v.Compression != peer.Compression {
		return fmt.Errorf("remotecl: compression feature mismatch: local %v, peer %v", v.Compression, peer.Compression)
	}
	return nil
}
