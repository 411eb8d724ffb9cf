package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObservePacketIncrementsCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg)

	r.ObservePacket("GetPlatformIDs", 10*time.Millisecond)
	r.ObservePacket("GetPlatformIDs", 5*time.Millisecond)

	got := testutil.ToFloat64(r.packetsTotal.WithLabelValues("GetPlatformIDs"))
	if got != 2 {
		t.Fatalf("packetsTotal = %v, want 2", got)
	}
}

func TestConnectionLifecycleGauge(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg)

	r.ConnectionOpened()
	r.ConnectionOpened()
	r.ConnectionClosed()

	got := testutil.ToFloat64(r.connectionsActive)
	if got != 1 {
		t.Fatalf("connectionsActive = %v, want 1", got)
	}
}
