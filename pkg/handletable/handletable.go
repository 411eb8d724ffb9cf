// Package handletable implements the server-side mapping from a stable
// 16-bit wire ID to a native OpenCL handle. Unlike a map-keyed store, the
// table never removes entries and never reuses an ID: it is an
// append-only slice indexed directly by ID minus one, matching the
// reference implementation's linear native-handle table and its guarantee
// that an ID, once issued, identifies the same object for the lifetime of
// the connection.
package handletable

import (
	"sync"
	"unsafe"

	"github.com/remotecl/remotecl/pkg/protocol"
)

// entry pairs a native handle with the object kind it belongs to, so
// Retain/Release can validate that a kind letter matches the ID it names.
type entry struct {
	native unsafe.Pointer
	kind   protocol.ObjKind
	refs   uint32
}

// Table is a single connection's handle table: append-only, linear-scan by
// construction (lookup is an O(1) slice index, the "linear" property refers
// to IDs being assigned in monotonically increasing order, never reused).
// Zero value is not usable; use New.
type Table struct {
	mu      sync.Mutex
	entries []entry
}

// New returns an empty handle table.
func New() *Table {
	return &Table{entries: make([]entry, 0, 64)}
}

// Insert returns the existing ID for native if one was already issued on
// this connection (bumping its reference count), or assigns and returns the
// next ID otherwise. This mirrors the reference implementation's
// getIDFor<T>, which scans its object list for a matching pointer before
// falling back to push_back: two lookups of the same native handle (e.g.
// two clGetPlatformIDs calls on one connection) must collapse onto the same
// wire ID. Returns a *protocol.ResourceExhaustionError if the connection
// has already issued protocol.MaxIDs-1 IDs (ID 0 is reserved as the absent
// sentinel, so the usable space is [1, MaxIDs)).
func (t *Table) Insert(kind protocol.ObjKind, native unsafe.Pointer) (protocol.ID, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i := range t.entries {
		e := &t.entries[i]
		if e.native == native && e.kind == kind {
			e.refs++
			return protocol.ID(i + 1), nil
		}
	}

	if len(t.entries)+1 >= protocol.MaxIDs {
		return 0, &protocol.ResourceExhaustionError{Reason: "handle table exhausted the 16-bit ID space"}
	}
	t.entries = append(t.entries, entry{native: native, kind: kind, refs: 1})
	return protocol.ID(len(t.entries)), nil
}

// Lookup returns the native handle for id and true, or nil/false if id was
// never issued on this connection. It does not check the reference count:
// a handle remains resolvable even after Release drops it to zero, since
// the table never shrinks (releasing merely marks native objects eligible
// for cleanup by the caller, who still owns the underlying OpenCL object
// lifetime).
func (t *Table) Lookup(id protocol.ID) (unsafe.Pointer, protocol.ObjKind, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if id == 0 || int(id) > len(t.entries) {
		return nil, 0, false
	}
	e := t.entries[id-1]
	return e.native, e.kind, true
}

// Retain increments id's reference count. Reports false if id is unknown or
// its kind does not match want.
func (t *Table) Retain(id protocol.ID, want protocol.ObjKind) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if id == 0 || int(id) > len(t.entries) {
		return false
	}
	e := &t.entries[id-1]
	if e.kind != want {
		return false
	}
	e.refs++
	return true
}

// Release decrements id's reference count and reports the count after the
// decrement, or false if id is unknown, its kind does not match want, or it
// was already at zero. The caller is responsible for destroying the
// underlying native object once the count reaches zero; the table entry
// itself is kept (never removed) so the ID slot remains a valid, if dead,
// lookup target.
func (t *Table) Release(id protocol.ID, want protocol.ObjKind) (uint32, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if id == 0 || int(id) > len(t.entries) {
		return 0, false
	}
	e := &t.entries[id-1]
	if e.kind != want || e.refs == 0 {
		return 0, false
	}
	e.refs--
	return e.refs, true
}

// Len reports how many IDs have ever been issued on this connection.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}
