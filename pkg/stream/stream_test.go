package stream

import (
	"errors"
	"net"
	"testing"

	"github.com/remotecl/remotecl/pkg/protocol"
	"github.com/remotecl/remotecl/pkg/wire"
)

func pipe(t *testing.T) (*PacketStream, *PacketStream) {
	t.Helper()
	a, b := net.Pipe()
	t.Cleanup(func() { a.Close(); b.Close() })
	return New(wire.NewStream(a)), New(wire.NewStream(b))
}

func TestWriteExpectRoundTrip(t *testing.T) {
	w, r := pipe(t)
	errCh := make(chan error, 1)
	go func() {
		if err := w.Write(protocol.TagRetain, protocol.RefCount{Kind: protocol.KindQueue, ID: 7}); err != nil {
			errCh <- err
			return
		}
		errCh <- w.Flush()
	}()

	var got protocol.RefCount
	if err := r.Expect(protocol.TagRetain, &got); err != nil {
		t.Fatalf("Expect: %v", err)
	}
	if got.Kind != protocol.KindQueue || got.ID != 7 {
		t.Fatalf("got %+v", got)
	}
	if err := <-errCh; err != nil {
		t.Fatalf("writer: %v", err)
	}
}

func TestErrorPromotedToRemoteError(t *testing.T) {
	w, r := pipe(t)
	errCh := make(chan error, 1)
	go func() {
		if err := w.Write(protocol.TagError, protocol.ErrorBody{Code: protocol.StatusInvalidDeviceType}); err != nil {
			errCh <- err
			return
		}
		errCh <- w.Flush()
	}()

	var body protocol.SuccessBody
	err := r.Expect(protocol.TagSuccess, &body)
	if err == nil {
		t.Fatal("expected an error")
	}
	var remote *protocol.RemoteError
	if !errors.As(err, &remote) {
		t.Fatalf("expected *protocol.RemoteError, got %T: %v", err, err)
	}
	if remote.Code != protocol.StatusInvalidDeviceType {
		t.Fatalf("got code %d, want %d", remote.Code, protocol.StatusInvalidDeviceType)
	}
	if err := <-errCh; err != nil {
		t.Fatalf("writer: %v", err)
	}
}

func TestUnexpectedTagReported(t *testing.T) {
	w, r := pipe(t)
	errCh := make(chan error, 1)
	go func() {
		if err := w.Write(protocol.TagFinish, protocol.SuccessBody{}); err != nil {
			errCh <- err
			return
		}
		errCh <- w.Flush()
	}()

	var body protocol.SuccessBody
	err := r.Expect(protocol.TagFlush, &body)
	var mismatch *UnexpectedTagError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected *UnexpectedTagError, got %T: %v", err, err)
	}
	if err := <-errCh; err != nil {
		t.Fatalf("writer: %v", err)
	}
}

func TestPeekTagOnClosedConn(t *testing.T) {
	w, r := pipe(t)
	w.Raw().Shutdown()
	if _, ok := r.PeekTag(); ok {
		t.Fatal("expected PeekTag to report no data after peer closed")
	}
}
