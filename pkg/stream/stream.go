// Package stream implements the packet-framing layer on top of pkg/wire:
// writing a tag byte followed by an encodable body, and reading a tag byte
// back with automatic promotion of TagError responses into a
// *protocol.RemoteError and of TagTerminate/EOF into a transport error.
// This mirrors the reference implementation's exception-based control flow
// (a thrown error from a failed read) as Go's idiomatic error return.
package stream

import (
	"github.com/remotecl/remotecl/pkg/protocol"
	"github.com/remotecl/remotecl/pkg/wire"
)

// Encoder is satisfied by every packet body type in pkg/protocol.
type Encoder interface {
	Encode(s *wire.Stream) error
}

// Decoder is satisfied by every packet body type in pkg/protocol, via a
// pointer receiver so Decode can mutate the concrete value.
type Decoder interface {
	Decode(s *wire.Stream) error
}

// PacketStream pairs a tag byte with a body codec, framing every exchange
// on the primary connection.
type PacketStream struct {
	s *wire.Stream
}

// New wraps an existing buffered stream for packet framing.
func New(s *wire.Stream) *PacketStream { return &PacketStream{s: s} }

// Raw exposes the underlying buffered stream, e.g. for the version
// handshake which has its own fixed framing.
func (p *PacketStream) Raw() *wire.Stream { return p.s }

// Write sends tag followed by body's encoding, without flushing — callers
// batch several writes (e.g. a header followed by a payload) before a
// single Flush.
func (p *PacketStream) Write(tag protocol.Tag, body Encoder) error {
	if err := p.s.WriteUint8(uint8(tag)); err != nil {
		return err
	}
	return body.Encode(p.s)
}

// Flush sends any buffered bytes.
func (p *PacketStream) Flush() error { return p.s.Flush() }

// PeekTag previews the next tag without consuming it, returning false if no
// byte is currently available (EOF or closed peer).
func (p *PacketStream) PeekTag() (protocol.Tag, bool) {
	b := p.s.Peek()
	if b < 0 {
		return 0, false
	}
	return protocol.Tag(b), true
}

// ReadTag consumes and returns the next tag byte.
func (p *PacketStream) ReadTag() (protocol.Tag, error) {
	b, err := p.s.ReadUint8()
	return protocol.Tag(b), err
}

// Expect reads the next tag and, if it matches want, decodes the body into
// into; a TagError response is promoted to *protocol.RemoteError instead of
// being handed to the caller as a mismatched tag, and any other mismatch is
// reported as a plain error. This is the single chokepoint used by every
// client-side request/response exchange.
func (p *PacketStream) Expect(want protocol.Tag, into Decoder) error {
	tag, err := p.ReadTag()
	if err != nil {
		return err
	}
	if tag == protocol.TagError {
		var body protocol.ErrorBody
		if err := body.Decode(p.s); err != nil {
			return err
		}
		return &protocol.RemoteError{Code: body.Code}
	}
	if tag == protocol.TagTerminate {
		return &wire.TransportError{Op: "read: peer sent Terminate"}
	}
	if tag != want {
		return &UnexpectedTagError{Got: tag, Want: want}
	}
	return into.Decode(p.s)
}

// ReadSuccess reads a single tag and requires it to be TagSuccess, promoting
// TagError responses the same way Expect does. Used by requests whose only
// response is a bare acknowledgement (Retain, Release, Flush, Finish, ...).
func (p *PacketStream) ReadSuccess() error {
	var body protocol.SuccessBody
	return p.Expect(protocol.TagSuccess, &body)
}

// UnexpectedTagError reports a tag mismatch that was not an Error response.
type UnexpectedTagError struct {
	Got, Want protocol.Tag
}

func (e *UnexpectedTagError) Error() string {
	return "remotecl: unexpected tag " + e.Got.String() + ", expected " + e.Want.String()
}
