package protocol

import (
	"net"
	"testing"

	"github.com/remotecl/remotecl/pkg/wire"
)

type codec interface {
	Encode(s *wire.Stream) error
}

type decoder interface {
	Decode(s *wire.Stream) error
}

func pipe(t *testing.T) (*wire.Stream, *wire.Stream) {
	t.Helper()
	a, b := net.Pipe()
	t.Cleanup(func() { a.Close(); b.Close() })
	return wire.NewStream(a), wire.NewStream(b)
}

func roundTrip(t *testing.T, write codec, read decoder) {
	t.Helper()
	w, r := pipe(t)
	errCh := make(chan error, 1)
	go func() {
		errCh <- write.Encode(w)
		errCh <- w.Flush()
	}()
	if err := read.Decode(r); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if err := <-errCh; err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if err := <-errCh; err != nil {
		t.Fatalf("Flush: %v", err)
	}
}

func TestRefCountRoundTrip(t *testing.T) {
	want := RefCount{Kind: KindQueue, ID: 42}
	var got RefCount
	roundTrip(t, want, &got)
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestIDListRoundTrip(t *testing.T) {
	want := IDList{IDs: []ID{1, 2, 3, 65535}}
	var got IDList
	roundTrip(t, want, &got)
	if len(got.IDs) != len(want.IDs) {
		t.Fatalf("got %v, want %v", got.IDs, want.IDs)
	}
	for i := range want.IDs {
		if got.IDs[i] != want.IDs[i] {
			t.Fatalf("index %d: got %v, want %v", i, got.IDs[i], want.IDs[i])
		}
	}
}

func TestCreateContextRoundTrip(t *testing.T) {
	want := CreateContext{Properties: []uint64{1, 2}, Devices: []uint16{7}}
	var got CreateContext
	roundTrip(t, want, &got)
	if len(got.Properties) != 2 || got.Properties[1] != 2 || len(got.Devices) != 1 || got.Devices[0] != 7 {
		t.Fatalf("got %+v", got)
	}
}

func TestCreateQueueWireOrder(t *testing.T) {
	want := CreateQueue{Context: 5, Device: 9, Properties: 0xdeadbeef}
	var got CreateQueue
	roundTrip(t, want, &got)
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestKernelArgWireOrder(t *testing.T) {
	want := KernelArg{KernelID: 3, ArgIndex: 11}
	var got KernelArg
	roundTrip(t, want, &got)
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestSetUserEventStatusFieldOrder(t *testing.T) {
	want := SetUserEventStatus{EventID: 4, Status: 0}
	var got SetUserEventStatus
	roundTrip(t, want, &got)
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestFillBufferPattern(t *testing.T) {
	want := FillBuffer{BufferID: 1, QueueID: 2, Offset: 0, Size: 64, PatternSize: 4, WantEvent: true}
	copy(want.Pattern[:], []byte{1, 2, 3, 4})
	var got FillBuffer
	roundTrip(t, want, &got)
	if got.PatternSize != 4 || got.Pattern[:4][0] != 1 || got.WantEvent != true {
		t.Fatalf("got %+v", got)
	}
}

func TestBufferRectRWFourPitches(t *testing.T) {
	want := BufferRectRW{
		BufferID: 1, QueueID: 2,
		BufferOrigin: [3]uint32{1, 2, 3}, HostOrigin: [3]uint32{4, 5, 6}, Region: [3]uint32{7, 8, 9},
		BufferRowPitch: 10, BufferSlicePitch: 20, HostRowPitch: 30, HostSlicePitch: 40,
		Block: true,
	}
	var got BufferRectRW
	roundTrip(t, want, &got)
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestEnqueueKernelWorkDimPredicate(t *testing.T) {
	cases := []struct {
		dim     uint8
		invalid bool
	}{
		{0, true},
		{1, false},
		{2, false},
		{3, false},
		{4, true},
		{255, true},
	}
	for _, c := range cases {
		if got := InvalidWorkDim(c.dim); got != c.invalid {
			t.Errorf("InvalidWorkDim(%d) = %v, want %v", c.dim, got, c.invalid)
		}
	}
}

func TestCompileProgramRoundTrip(t *testing.T) {
	want := CompileProgram{
		ProgramID:   1,
		Options:     "-cl-std=CL2.0",
		DeviceIDs:   []ID{2, 3},
		HeaderIDs:   []ID{4},
		HeaderNames: []string{"foo.h"},
		HasCallback: true,
		CallbackID:  9,
	}
	var got CompileProgram
	roundTrip(t, want, &got)
	if got.Options != want.Options || len(got.DeviceIDs) != 2 || got.HasCallback != true || got.CallbackID != 9 {
		t.Fatalf("got %+v", got)
	}
}

func TestLinkProgramWireOrder(t *testing.T) {
	want := LinkProgram{Context: 1, ProgramIDs: []ID{2, 3}, DeviceIDs: []ID{4}, Options: "-v"}
	var got LinkProgram
	roundTrip(t, want, &got)
	if got.Context != 1 || len(got.ProgramIDs) != 2 || len(got.DeviceIDs) != 1 || got.Options != "-v" {
		t.Fatalf("got %+v", got)
	}
}

func TestVersionCompatibility(t *testing.T) {
	a := Local(true, true)
	b := Local(true, false)
	if err := a.CompatibleWith(b); err != nil {
		t.Fatalf("event-stream mismatch should be tolerated: %v", err)
	}
	c := Version{Major: a.Major, Minor: a.Minor, IDSize: a.IDSize, Compression: false}
	if err := a.CompatibleWith(c); err == nil {
		t.Fatalf("compression mismatch should be rejected")
	}
}

func TestPayloadCompressionOmittedWhenFeatureOff(t *testing.T) {
	w, r := pipe(t)
	data := make([]byte, 16)
	errCh := make(chan error, 2)
	go func() {
		errCh <- WritePayload[uint32](w, Payload[uint32]{Data: data}, false)
		errCh <- w.Flush()
	}()
	got, err := ReadPayload[uint32](r, false)
	if err != nil {
		t.Fatalf("ReadPayload: %v", err)
	}
	if len(got.Data) != len(data) {
		t.Fatalf("got %d bytes, want %d", len(got.Data), len(data))
	}
	if err := <-errCh; err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if err := <-errCh; err != nil {
		t.Fatalf("Flush: %v", err)
	}
}
