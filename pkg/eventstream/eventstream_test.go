package eventstream

import (
	"context"
	"net"
	"strconv"
	"testing"
	"time"
)

func TestTriggerDeliversCallbackOnce(t *testing.T) {
	srv := Listen(nil)
	if srv.Port() == 0 {
		t.Skip("could not bind an ephemeral port in this sandbox")
	}
	defer srv.Close()

	acceptErr := make(chan error, 1)
	go func() { acceptErr <- srv.Accept() }()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	client, err := Dial(ctx, net.JoinHostPort("127.0.0.1", portString(srv.Port())))
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer client.Close()

	if err := <-acceptErr; err != nil {
		t.Fatalf("Accept: %v", err)
	}

	called := make(chan int32, 1)
	slot := client.Register(func(status int32) { called <- status })

	if err := srv.Trigger(slot, 7); err != nil {
		t.Fatalf("Trigger: %v", err)
	}

	select {
	case status := <-called:
		if status != 7 {
			t.Fatalf("got status %d, want 7", status)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for callback delivery")
	}

	// A second trigger on the same (now-cleared) slot must not re-invoke.
	srv.Trigger(slot, 9)
	select {
	case status := <-called:
		t.Fatalf("callback fired twice: second status %d", status)
	case <-time.After(200 * time.Millisecond):
	}
}

func portString(p uint16) string {
	return strconv.Itoa(int(p))
}
