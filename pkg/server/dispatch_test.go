package server_test

import (
	"context"
	"testing"
	"time"

	"github.com/remotecl/remotecl/pkg/client"
	"github.com/remotecl/remotecl/pkg/protocol"
	"github.com/remotecl/remotecl/pkg/server"
)

func startTestServer(t *testing.T) (addr string, stop func()) {
	t.Helper()
	srv := server.New(server.NewFakeBackend())
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
	return srv.Addr().String(), srv.Stop
}

func TestDispatchProgramAndKernelLifecycle(t *testing.T) {
	addr, stop := startTestServer(t)
	defer stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c, err := client.Dial(ctx, addr)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer c.Close()

	platforms, err := c.GetPlatformIDs()
	if err != nil {
		t.Fatalf("GetPlatformIDs: %v", err)
	}
	devices, err := c.GetDeviceIDs(platforms[0], 0xFFFFFFFF)
	if err != nil {
		t.Fatalf("GetDeviceIDs: %v", err)
	}
	clCtx, err := c.CreateContext(nil, devices)
	if err != nil {
		t.Fatalf("CreateContext: %v", err)
	}
	program, err := c.CreateSourceProgram(clCtx, "kernel void k() {}")
	if err != nil {
		t.Fatalf("CreateSourceProgram: %v", err)
	}
	if err := c.BuildProgram(program, ""); err != nil {
		t.Fatalf("BuildProgram: %v", err)
	}
	kernels, err := c.CreateKernelsInProgram(program, 1)
	if err != nil {
		t.Fatalf("CreateKernelsInProgram: %v", err)
	}
	if len(kernels) != 1 {
		t.Fatalf("got %d kernels, want 1", len(kernels))
	}
	clone, err := c.CloneKernel(kernels[0])
	if err != nil {
		t.Fatalf("CloneKernel: %v", err)
	}
	if clone.ID() == kernels[0].ID() {
		t.Fatal("cloned kernel shares the original's ID")
	}
}

func TestDispatchEnqueueKernelRejectsInvalidWorkDim(t *testing.T) {
	addr, stop := startTestServer(t)
	defer stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c, err := client.Dial(ctx, addr)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer c.Close()

	platforms, _ := c.GetPlatformIDs()
	devices, _ := c.GetDeviceIDs(platforms[0], 0xFFFFFFFF)
	clCtx, _ := c.CreateContext(nil, devices)
	queue, err := c.CreateQueue(clCtx, devices[0], 0)
	if err != nil {
		t.Fatalf("CreateQueue: %v", err)
	}
	program, _ := c.CreateSourceProgram(clCtx, "kernel void k() {}")
	kernel, err := c.CreateKernel(program, "k")
	if err != nil {
		t.Fatalf("CreateKernel: %v", err)
	}

	_, err = c.EnqueueKernel(queue, kernel, 0, [3]uint32{}, [3]uint32{}, [3]uint32{}, false)
	if err == nil {
		t.Fatal("expected work_dim == 0 to be rejected")
	}
	remoteErr, ok := err.(*protocol.RemoteError)
	if !ok {
		t.Fatalf("got %T, want *protocol.RemoteError", err)
	}
	if remoteErr.Code != protocol.StatusInvalidWorkDimension {
		t.Fatalf("got code %d, want %d", remoteErr.Code, protocol.StatusInvalidWorkDimension)
	}
}

// TestDispatchCreateBufferRejectsOversizedAllocation covers the dispatch
// boundary's allocation ceiling: a peer-declared size above
// protocol.MaxAllocSize must come back as a StatusOutOfHostMemory
// RemoteError rather than an attempted make() of that size, and the
// connection must stay usable afterward for the rest of the test.
func TestDispatchCreateBufferRejectsOversizedAllocation(t *testing.T) {
	addr, stop := startTestServer(t)
	defer stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c, err := client.Dial(ctx, addr)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer c.Close()

	platforms, _ := c.GetPlatformIDs()
	devices, _ := c.GetDeviceIDs(platforms[0], 0xFFFFFFFF)
	clCtx, _ := c.CreateContext(nil, devices)

	_, err = c.CreateBuffer(clCtx, 0, protocol.MaxAllocSize+1, nil)
	if err == nil {
		t.Fatal("expected an oversized buffer size to be rejected")
	}
	remoteErr, ok := err.(*protocol.RemoteError)
	if !ok {
		t.Fatalf("got %T, want *protocol.RemoteError", err)
	}
	if remoteErr.Code != protocol.StatusOutOfHostMemory {
		t.Fatalf("got code %d, want %d", remoteErr.Code, protocol.StatusOutOfHostMemory)
	}
}
