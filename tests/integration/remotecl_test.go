// Package integration exercises a real remotecl-server loopback connection
// end to end, covering the scenarios a client and server must agree on at
// the wire level.
package integration

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/remotecl/remotecl/pkg/client"
	"github.com/remotecl/remotecl/pkg/protocol"
	"github.com/remotecl/remotecl/pkg/server"
)

// startServer binds a loopback listener running against a fresh
// FakeBackend and returns its address and a stop function.
func startServer(t *testing.T, opts ...server.Option) (addr string, stop func()) {
	t.Helper()
	backend := server.NewFakeBackend()
	srv := server.New(backend, opts...)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe("127.0.0.1:0") }()

	deadline := time.Now().Add(2 * time.Second)
	for srv.Addr() == nil {
		select {
		case err := <-errCh:
			t.Fatalf("ListenAndServe: %v", err)
		default:
		}
		if time.Now().After(deadline) {
			t.Fatal("server never bound a listener")
		}
		time.Sleep(time.Millisecond)
	}

	return srv.Addr().String(), func() { srv.Stop() }
}

func dial(t *testing.T, addr string, opts ...client.Option) *client.Client {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c, err := client.Dial(ctx, addr, opts...)
	if err != nil {
		t.Fatalf("dial %s: %v", addr, err)
	}
	return c
}

// TestPlatformEnumeration covers end-to-end scenario 1: GetPlatformIDs
// returns exactly one platform from the fake backend.
func TestPlatformEnumeration(t *testing.T) {
	addr, stop := startServer(t)
	defer stop()

	c := dial(t, addr)
	defer c.Close()

	platforms, err := c.GetPlatformIDs()
	if err != nil {
		t.Fatalf("GetPlatformIDs: %v", err)
	}
	if len(platforms) != 1 {
		t.Fatalf("got %d platforms, want 1", len(platforms))
	}
}

// TestKernelArgMemoryObject covers end-to-end scenario 2: setting a memory
// kernel argument round-trips through the two-frame discriminator protocol.
func TestKernelArgMemoryObject(t *testing.T) {
	addr, stop := startServer(t)
	defer stop()

	c := dial(t, addr)
	defer c.Close()

	platforms, err := c.GetPlatformIDs()
	if err != nil {
		t.Fatalf("GetPlatformIDs: %v", err)
	}
	devices, err := c.GetDeviceIDs(platforms[0], 0xFFFFFFFF) // CL_DEVICE_TYPE_ALL
	if err != nil {
		t.Fatalf("GetDeviceIDs: %v", err)
	}
	ctx, err := c.CreateContext(nil, devices)
	if err != nil {
		t.Fatalf("CreateContext: %v", err)
	}
	program, err := c.CreateSourceProgram(ctx, "kernel void noop() {}")
	if err != nil {
		t.Fatalf("CreateSourceProgram: %v", err)
	}
	kernel, err := c.CreateKernel(program, "noop")
	if err != nil {
		t.Fatalf("CreateKernel: %v", err)
	}
	buf, err := c.CreateBuffer(ctx, 0, 64, nil)
	if err != nil {
		t.Fatalf("CreateBuffer: %v", err)
	}

	if err := c.SetKernelArg(kernel, 0, buf, nil); err != nil {
		t.Fatalf("SetKernelArg: %v", err)
	}
}

// TestBlockingBufferRead covers end-to-end scenario 3: a written buffer
// reads back its exact bytes.
func TestBlockingBufferRead(t *testing.T) {
	addr, stop := startServer(t)
	defer stop()

	c := dial(t, addr)
	defer c.Close()

	platforms, _ := c.GetPlatformIDs()
	devices, _ := c.GetDeviceIDs(platforms[0], 0xFFFFFFFF)
	ctx, _ := c.CreateContext(nil, devices)
	queue, err := c.CreateQueue(ctx, devices[0], 0)
	if err != nil {
		t.Fatalf("CreateQueue: %v", err)
	}

	want := []byte{1, 2, 3, 4}
	buf, err := c.CreateBuffer(ctx, 0, uint32(len(want)), want)
	if err != nil {
		t.Fatalf("CreateBuffer: %v", err)
	}

	out := make([]byte, len(want))
	if err := c.ReadBuffer(queue, buf, 0, out); err != nil {
		t.Fatalf("ReadBuffer: %v", err)
	}
	for i := range want {
		if out[i] != want[i] {
			t.Fatalf("ReadBuffer byte %d: got %d, want %d", i, out[i], want[i])
		}
	}
}

// TestRemoteErrorPropagation covers end-to-end scenario 4: an invalid
// device-type bitmask surfaces as a RemoteError carrying the server's
// status code.
func TestRemoteErrorPropagation(t *testing.T) {
	addr, stop := startServer(t)
	defer stop()

	c := dial(t, addr)
	defer c.Close()

	platforms, err := c.GetPlatformIDs()
	if err != nil {
		t.Fatalf("GetPlatformIDs: %v", err)
	}

	_, err = c.GetDeviceIDs(platforms[0], 0)
	if err == nil {
		t.Fatal("expected an error for an invalid device type, got nil")
	}
	remoteErr, ok := err.(*protocol.RemoteError)
	if !ok {
		t.Fatalf("got error of type %T, want *protocol.RemoteError", err)
	}
	if remoteErr.Code != protocol.StatusInvalidDeviceType {
		t.Fatalf("got code %d, want %d", remoteErr.Code, protocol.StatusInvalidDeviceType)
	}
}

// TestEventCallbackDeliveredOnce covers end-to-end scenario 5: a registered
// completion callback fires exactly once.
func TestEventCallbackDeliveredOnce(t *testing.T) {
	addr, stop := startServer(t, server.WithEventStream(true))
	defer stop()

	c := dial(t, addr, client.WithEventStream(true))
	defer c.Close()

	platforms, _ := c.GetPlatformIDs()
	devices, _ := c.GetDeviceIDs(platforms[0], 0xFFFFFFFF)
	ctx, _ := c.CreateContext(nil, devices)

	event, err := c.CreateUserEvent(ctx)
	if err != nil {
		t.Fatalf("CreateUserEvent: %v", err)
	}

	var mu sync.Mutex
	var calls int
	var lastStatus int32
	done := make(chan struct{})

	err = c.RegisterEventCallback(event, 0, func(status int32) {
		mu.Lock()
		calls++
		lastStatus = status
		mu.Unlock()
		close(done)
	})
	if err != nil {
		t.Fatalf("RegisterEventCallback: %v", err)
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("callback was never delivered")
	}

	mu.Lock()
	defer mu.Unlock()
	if calls != 1 {
		t.Fatalf("callback fired %d times, want 1", calls)
	}
	if lastStatus != protocol.StatusSuccess {
		t.Fatalf("callback status %d, want %d", lastStatus, protocol.StatusSuccess)
	}
}

// TestImageReadWriteRoundTrip covers the image path: CreateImage negotiates
// its element size from the channel order/type the caller declares,
// WriteImage waits for the server's byte-count reply before sending its
// payload, and ReadImage sizes its reply buffer the same way rather than
// assuming one byte per pixel.
func TestImageReadWriteRoundTrip(t *testing.T) {
	addr, stop := startServer(t)
	defer stop()

	c := dial(t, addr)
	defer c.Close()

	platforms, _ := c.GetPlatformIDs()
	devices, _ := c.GetDeviceIDs(platforms[0], 0xFFFFFFFF)
	ctx, _ := c.CreateContext(nil, devices)
	queue, err := c.CreateQueue(ctx, devices[0], 0)
	if err != nil {
		t.Fatalf("CreateQueue: %v", err)
	}

	createReq := protocol.CreateImage{
		ChannelOrder: protocol.ChannelOrderRGBA,
		ChannelType:  protocol.ChannelTypeUnsignedInt8,
		ImageType:    1,
		Width:        2,
		Height:       2,
	}
	image, err := c.CreateImage(ctx, createReq)
	if err != nil {
		t.Fatalf("CreateImage: %v", err)
	}

	// RGBA, 1 byte/channel: 4 bytes/pixel * 2 * 2 pixels = 16 bytes.
	const wantBytes = 16
	region := [3]uint32{2, 2, 0}
	data := make([]byte, wantBytes)
	for i := range data {
		data[i] = byte(i + 1)
	}
	writeReq := protocol.WriteImage{Region: region}
	if err := c.WriteImage(queue, image, writeReq, data); err != nil {
		t.Fatalf("WriteImage: %v", err)
	}

	readReq := protocol.ReadImage{Region: region}
	out := make([]byte, wantBytes)
	if err := c.ReadImage(queue, image, readReq, out); err != nil {
		t.Fatalf("ReadImage: %v", err)
	}
	if len(out) != wantBytes {
		t.Fatalf("got %d bytes back, want %d", len(out), wantBytes)
	}
}

// TestGracefulShutdown covers end-to-end scenario 6: the client's Close
// sends Terminate and the server loop exits without error on either side.
func TestGracefulShutdown(t *testing.T) {
	addr, stop := startServer(t)
	defer stop()

	c := dial(t, addr)
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
