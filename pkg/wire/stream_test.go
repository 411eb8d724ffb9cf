package wire

import (
	"net"
	"testing"
)

func pipe(t *testing.T) (*Stream, *Stream) {
	t.Helper()
	a, b := net.Pipe()
	t.Cleanup(func() { a.Close(); b.Close() })
	return NewStream(a), NewStream(b)
}

func TestUint8RoundTrip(t *testing.T) {
	w, r := pipe(t)
	values := []uint8{0, 1, 127, 255}
	go func() {
		for _, v := range values {
			w.WriteUint8(v)
		}
		w.Flush()
	}()
	for _, want := range values {
		got, err := r.ReadUint8()
		if err != nil {
			t.Fatalf("ReadUint8: %v", err)
		}
		if got != want {
			t.Errorf("ReadUint8 = %d, want %d", got, want)
		}
	}
}

func TestUint16RoundTrip(t *testing.T) {
	w, r := pipe(t)
	values := []uint16{0, 1, 256, 0xFFFF}
	go func() {
		for _, v := range values {
			w.WriteUint16(v)
		}
		w.Flush()
	}()
	for _, want := range values {
		got, err := r.ReadUint16()
		if err != nil {
			t.Fatalf("ReadUint16: %v", err)
		}
		if got != want {
			t.Errorf("ReadUint16 = %d, want %d", got, want)
		}
	}
}

func TestUint32RoundTrip(t *testing.T) {
	w, r := pipe(t)
	values := []uint32{0, 1, 1000000, 0xFFFFFFFF}
	go func() {
		for _, v := range values {
			w.WriteUint32(v)
		}
		w.Flush()
	}()
	for _, want := range values {
		got, err := r.ReadUint32()
		if err != nil {
			t.Fatalf("ReadUint32: %v", err)
		}
		if got != want {
			t.Errorf("ReadUint32 = %d, want %d", got, want)
		}
	}
}

func TestUint64RoundTrip(t *testing.T) {
	w, r := pipe(t)
	values := []uint64{0, 1, 1 << 40, 0xFFFFFFFFFFFFFFFF}
	go func() {
		for _, v := range values {
			w.WriteUint64(v)
		}
		w.Flush()
	}()
	for _, want := range values {
		got, err := r.ReadUint64()
		if err != nil {
			t.Fatalf("ReadUint64: %v", err)
		}
		if got != want {
			t.Errorf("ReadUint64 = %d, want %d", got, want)
		}
	}
}

func TestBoolRoundTrip(t *testing.T) {
	w, r := pipe(t)
	values := []bool{true, false, true, true, false}
	go func() {
		for _, v := range values {
			w.WriteBool(v)
		}
		w.Flush()
	}()
	for _, want := range values {
		got, err := r.ReadBool()
		if err != nil {
			t.Fatalf("ReadBool: %v", err)
		}
		if got != want {
			t.Errorf("ReadBool = %v, want %v", got, want)
		}
	}
}

func TestStringRoundTrip(t *testing.T) {
	w, r := pipe(t)
	values := []string{"", "hello", "Hello, World!", "unicode: äöüß☃"}
	go func() {
		for _, v := range values {
			w.WriteString(v)
		}
		w.Flush()
	}()
	for _, want := range values {
		got, err := r.ReadString()
		if err != nil {
			t.Fatalf("ReadString: %v", err)
		}
		if got != want {
			t.Errorf("ReadString = %q, want %q", got, want)
		}
	}
}

func TestRawRoundTripFixedArray(t *testing.T) {
	w, r := pipe(t)
	want := [3]uint32{10, 20, 30}
	go func() {
		for _, v := range want {
			w.WriteUint32(v)
		}
		w.Flush()
	}()
	var got [3]uint32
	for i := range got {
		v, err := r.ReadUint32()
		if err != nil {
			t.Fatalf("ReadUint32[%d]: %v", i, err)
		}
		got[i] = v
	}
	if got != want {
		t.Errorf("fixed array = %v, want %v", got, want)
	}
}

// TestWriteLargerThanBuffer exercises the direct-to-socket path: a write at
// least as large as the internal buffer must flush pending bytes first and
// then bypass staging entirely.
func TestWriteLargerThanBuffer(t *testing.T) {
	w, r := pipe(t)
	small := []byte{0xAA, 0xBB}
	large := make([]byte, BufferSize+37)
	for i := range large {
		large[i] = byte(i)
	}
	go func() {
		w.WriteRaw(small)
		w.WriteRaw(large)
		w.Flush()
	}()

	gotSmall := make([]byte, len(small))
	if err := r.ReadRaw(gotSmall); err != nil {
		t.Fatalf("ReadRaw small: %v", err)
	}
	for i := range small {
		if gotSmall[i] != small[i] {
			t.Errorf("small[%d] = 0x%02x, want 0x%02x", i, gotSmall[i], small[i])
		}
	}

	gotLarge := make([]byte, len(large))
	if err := r.ReadRaw(gotLarge); err != nil {
		t.Fatalf("ReadRaw large: %v", err)
	}
	for i := range large {
		if gotLarge[i] != large[i] {
			t.Fatalf("large[%d] = 0x%02x, want 0x%02x", i, gotLarge[i], large[i])
		}
	}
}

func TestPeekEOF(t *testing.T) {
	a, b := net.Pipe()
	r := NewStream(a)
	b.Close()
	if got := r.Peek(); got != -1 {
		t.Errorf("Peek on closed peer = %d, want -1", got)
	}
}

func TestPeekDoesNotConsume(t *testing.T) {
	w, r := pipe(t)
	go func() {
		w.WriteUint8(0x42)
		w.Flush()
	}()
	if got := r.Peek(); got != 0x42 {
		t.Fatalf("Peek = %d, want 0x42", got)
	}
	if got := r.Peek(); got != 0x42 {
		t.Fatalf("second Peek = %d, want 0x42 (peek must not consume)", got)
	}
	v, err := r.ReadUint8()
	if err != nil || v != 0x42 {
		t.Fatalf("ReadUint8 = %d, %v, want 0x42, nil", v, err)
	}
}
