package handletable

import (
	"testing"
	"unsafe"

	"github.com/remotecl/remotecl/pkg/protocol"
)

func TestInsertLookupRoundTrip(t *testing.T) {
	tbl := New()
	var x int
	id, err := tbl.Insert(protocol.KindQueue, unsafe.Pointer(&x))
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if id == 0 {
		t.Fatal("expected a non-zero ID")
	}
	native, kind, ok := tbl.Lookup(id)
	if !ok {
		t.Fatal("Lookup failed for just-inserted ID")
	}
	if kind != protocol.KindQueue || native != unsafe.Pointer(&x) {
		t.Fatalf("got kind=%c native=%p", kind, native)
	}
}

func TestLookupUnknownID(t *testing.T) {
	tbl := New()
	if _, _, ok := tbl.Lookup(1); ok {
		t.Fatal("expected lookup of unissued ID to fail")
	}
	if _, _, ok := tbl.Lookup(0); ok {
		t.Fatal("expected ID 0 to never resolve")
	}
}

func TestIDsNeverReused(t *testing.T) {
	tbl := New()
	var a, b int
	id1, _ := tbl.Insert(protocol.KindEvent, unsafe.Pointer(&a))
	tbl.Release(id1, protocol.KindEvent)
	id2, _ := tbl.Insert(protocol.KindEvent, unsafe.Pointer(&b))
	if id2 == id1 {
		t.Fatalf("expected a fresh ID after release, got %d twice", id1)
	}
	if _, _, ok := tbl.Lookup(id1); !ok {
		t.Fatal("released ID should still resolve; the table never shrinks")
	}
}

func TestInsertCollapsesDuplicateNativeHandle(t *testing.T) {
	tbl := New()
	var x int
	id1, err := tbl.Insert(protocol.KindDevice, unsafe.Pointer(&x))
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	id2, err := tbl.Insert(protocol.KindDevice, unsafe.Pointer(&x))
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if id1 != id2 {
		t.Fatalf("two inserts of the same native handle got different IDs: %d, %d", id1, id2)
	}
	if got := tbl.Len(); got != 1 {
		t.Fatalf("table grew to %d entries, want 1", got)
	}

	n, ok := tbl.Release(id1, protocol.KindDevice)
	if !ok || n != 1 {
		t.Fatalf("got n=%d ok=%v, want n=1 after the second Insert's implicit retain", n, ok)
	}
}

func TestInsertDistinguishesSameHandleDifferentKind(t *testing.T) {
	tbl := New()
	var x int
	id1, _ := tbl.Insert(protocol.KindQueue, unsafe.Pointer(&x))
	id2, _ := tbl.Insert(protocol.KindEvent, unsafe.Pointer(&x))
	if id1 == id2 {
		t.Fatal("expected distinct IDs for the same pointer under different kinds")
	}
}

func TestRetainReleaseKindMismatch(t *testing.T) {
	tbl := New()
	var x int
	id, _ := tbl.Insert(protocol.KindKernel, unsafe.Pointer(&x))
	if tbl.Retain(id, protocol.KindQueue) {
		t.Fatal("expected kind mismatch to reject Retain")
	}
	if _, ok := tbl.Release(id, protocol.KindQueue); ok {
		t.Fatal("expected kind mismatch to reject Release")
	}
}

func TestReleaseCountsDown(t *testing.T) {
	tbl := New()
	var x int
	id, _ := tbl.Insert(protocol.KindMemory, unsafe.Pointer(&x))
	tbl.Retain(id, protocol.KindMemory)
	n, ok := tbl.Release(id, protocol.KindMemory)
	if !ok || n != 1 {
		t.Fatalf("got n=%d ok=%v, want n=1", n, ok)
	}
	n, ok = tbl.Release(id, protocol.KindMemory)
	if !ok || n != 0 {
		t.Fatalf("got n=%d ok=%v, want n=0", n, ok)
	}
	if _, ok := tbl.Release(id, protocol.KindMemory); ok {
		t.Fatal("expected release below zero to fail")
	}
}
