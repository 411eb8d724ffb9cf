// Package bench measures wire-level encode/decode throughput and a full
// client/server loopback round trip, the numbers that justify choosing a
// binary little-endian codec over JSON for the hot path.
package bench

import (
	"bytes"
	"context"
	"encoding/json"
	"math/rand"
	"net"
	"testing"
	"time"

	"github.com/remotecl/remotecl/pkg/client"
	"github.com/remotecl/remotecl/pkg/protocol"
	"github.com/remotecl/remotecl/pkg/server"
	"github.com/remotecl/remotecl/pkg/wire"
)

// --------------------------------------------------------------------------
// Packet encode/decode benchmarks
// --------------------------------------------------------------------------

// BenchmarkCreateContextEncode benchmarks encoding a small variable-length
// packet: two differently-prefixed uint slices.
func BenchmarkCreateContextEncode(b *testing.B) {
	req := protocol.CreateContext{
		Properties: []uint64{1, 2, 3, 4},
		Devices:    []uint16{7, 8, 9},
	}

	a, peer := net.Pipe()
	defer a.Close()
	defer peer.Close()
	go drainConn(peer)
	w := wire.NewStream(a)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if err := req.Encode(w); err != nil {
			b.Fatalf("Encode: %v", err)
		}
		if err := w.Flush(); err != nil {
			b.Fatalf("Flush: %v", err)
		}
	}
}

// BenchmarkBufferRectRWDecode benchmarks decoding the widest fixed-shape
// packet on the wire: three origin triples plus four pitch fields.
func BenchmarkBufferRectRWDecode(b *testing.B) {
	want := protocol.BufferRectRW{
		BufferID: 1, QueueID: 2,
		BufferOrigin: [3]uint32{1, 2, 3}, HostOrigin: [3]uint32{4, 5, 6}, Region: [3]uint32{7, 8, 9},
		BufferRowPitch: 64, BufferSlicePitch: 4096, HostRowPitch: 64, HostSlicePitch: 4096,
		Block: true,
	}
	encoded := encodeToBytes(b, want)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		var got protocol.BufferRectRW
		if err := got.Decode(wire.NewStream(staticConn(encoded))); err != nil {
			b.Fatalf("Decode: %v", err)
		}
	}
}

// BenchmarkPayloadEncodeSmall benchmarks the common small-buffer path, which
// never attempts compression regardless of whether the `z` feature is on.
func BenchmarkPayloadEncodeSmall(b *testing.B) {
	data := make([]byte, 4096)
	rand.New(rand.NewSource(1)).Read(data)
	payload := protocol.Payload[uint32]{Data: data}

	a, peer := net.Pipe()
	defer a.Close()
	defer peer.Close()
	go drainConn(peer)
	w := wire.NewStream(a)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if err := protocol.WritePayload[uint32](w, payload, true); err != nil {
			b.Fatalf("WritePayload: %v", err)
		}
		if err := w.Flush(); err != nil {
			b.Fatalf("Flush: %v", err)
		}
	}
	b.SetBytes(int64(len(data)))
}

// BenchmarkPayloadEncodeCompressible benchmarks the compression path: a
// buffer above CompressionThreshold that is mostly zero and should shrink.
func BenchmarkPayloadEncodeCompressible(b *testing.B) {
	data := make([]byte, protocol.CompressionThreshold+4096)
	payload := protocol.Payload[uint32]{Data: data}

	a, peer := net.Pipe()
	defer a.Close()
	defer peer.Close()
	go drainConn(peer)
	w := wire.NewStream(a)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if err := protocol.WritePayload[uint32](w, payload, true); err != nil {
			b.Fatalf("WritePayload: %v", err)
		}
		if err := w.Flush(); err != nil {
			b.Fatalf("Flush: %v", err)
		}
	}
	b.SetBytes(int64(len(data)))
}

// --------------------------------------------------------------------------
// Full loopback round trip
// --------------------------------------------------------------------------

// BenchmarkLoopbackGetPlatformIDs benchmarks a full request/response cycle
// through a real TCP loopback connection against a FakeBackend.
func BenchmarkLoopbackGetPlatformIDs(b *testing.B) {
	backend := server.NewFakeBackend()
	srv := server.New(backend)
	go srv.ListenAndServe("127.0.0.1:0")
	defer srv.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for srv.Addr() == nil {
		if time.Now().After(deadline) {
			b.Fatal("server never bound a listener")
		}
		time.Sleep(time.Millisecond)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c, err := client.Dial(ctx, srv.Addr().String())
	if err != nil {
		b.Fatalf("Dial: %v", err)
	}
	defer c.Close()

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := c.GetPlatformIDs(); err != nil {
			b.Fatalf("GetPlatformIDs: %v", err)
		}
	}
}

// --------------------------------------------------------------------------
// Binary vs JSON comparison
// --------------------------------------------------------------------------

// jsonCreateContext mirrors CreateContext for a fair JSON comparison.
type jsonCreateContext struct {
	Properties []uint64 `json:"properties"`
	Devices    []uint16 `json:"devices"`
}

func BenchmarkJSONEncodeCreateContext(b *testing.B) {
	req := jsonCreateContext{Properties: []uint64{1, 2, 3, 4}, Devices: []uint16{7, 8, 9}}
	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := json.Marshal(req); err != nil {
			b.Fatalf("Marshal: %v", err)
		}
	}
}

func BenchmarkJSONDecodeCreateContext(b *testing.B) {
	req := jsonCreateContext{Properties: []uint64{1, 2, 3, 4}, Devices: []uint16{7, 8, 9}}
	encoded, _ := json.Marshal(req)
	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		var decoded jsonCreateContext
		if err := json.Unmarshal(encoded, &decoded); err != nil {
			b.Fatalf("Unmarshal: %v", err)
		}
	}
	b.SetBytes(int64(len(encoded)))
}

// --------------------------------------------------------------------------
// helpers
// --------------------------------------------------------------------------

// drainConn drains conn until it is closed, standing in for a peer that
// never reads back what was sent.
func drainConn(conn net.Conn) {
	buf := make([]byte, 4096)
	for {
		if _, err := conn.Read(buf); err != nil {
			return
		}
	}
}

// encodeToBytes serializes v through a net.Pipe, returning the bytes a peer
// would have received.
func encodeToBytes(b *testing.B, v interface{ Encode(*wire.Stream) error }) []byte {
	b.Helper()
	a, peer := net.Pipe()
	defer a.Close()
	defer peer.Close()
	w := wire.NewStream(a)
	out := make(chan []byte, 1)
	go func() {
		var buf bytes.Buffer
		tmp := make([]byte, 256)
		for {
			n, err := peer.Read(tmp)
			if n > 0 {
				buf.Write(tmp[:n])
			}
			if err != nil {
				out <- buf.Bytes()
				return
			}
		}
	}()
	if err := v.Encode(w); err != nil {
		b.Fatalf("Encode: %v", err)
	}
	if err := w.Flush(); err != nil {
		b.Fatalf("Flush: %v", err)
	}
	a.Close()
	return <-out
}

// staticConn replays a fixed byte slice on every Read call, letting a
// benchmark loop decode the same bytes b.N times without re-encoding.
func staticConn(data []byte) net.Conn { return &replayConn{data: data} }

type replayConn struct {
	data []byte
	off  int
}

func (c *replayConn) Read(p []byte) (int, error) {
	if c.off >= len(c.data) {
		c.off = 0
	}
	n := copy(p, c.data[c.off:])
	c.off += n
	return n, nil
}

func (c *replayConn) Write(p []byte) (int, error)      { return len(p), nil }
func (c *replayConn) Close() error                     { return nil }
func (c *replayConn) LocalAddr() net.Addr              { return nil }
func (c *replayConn) RemoteAddr() net.Addr             { return nil }
func (c *replayConn) SetDeadline(time.Time) error      { return nil }
func (c *replayConn) SetReadDeadline(time.Time) error  { return nil }
func (c *replayConn) SetWriteDeadline(time.Time) error { return nil }
