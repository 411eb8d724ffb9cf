// Package registry implements the client-side object registry: the mapping
// from a wire ID to an in-process proxy object, and the proxy layout that
// lets a proxy's own address double as the opaque host-API handle the ICD
// loader hands back to the calling application.
//
// An OpenCL dispatchable handle is conventionally a pointer whose first
// machine word is the address of a dispatch table used by the ICD loader
// to route calls. Because this client is itself the ICD implementation, a
// proxy's address is a valid handle exactly when its first field is that
// dispatch pointer — so every proxy type below embeds DispatchHeader as
// its first field, never reordered.
package registry

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/remotecl/remotecl/pkg/protocol"
)

// dispatchTable is the process-wide, lazily-initialized table address every
// proxy's header points at. Its contents are populated by the cgo-facing
// ICD entry-point table (outside this package's concern); what matters here
// is that every proxy shares one stable address.
var dispatchTable int

// DispatchHeader must be the first field of every proxy struct. Its address
// equals the proxy's own address, so casting a proxy pointer to the host
// API's opaque handle type and back is always valid.
type DispatchHeader struct {
	dispatch unsafe.Pointer
}

func newHeader() DispatchHeader {
	return DispatchHeader{dispatch: unsafe.Pointer(&dispatchTable)}
}

// Kind returns which object-kind namespace this proxy belongs to.
type Proxy interface {
	Kind() protocol.ObjKind
	ID() protocol.ID
}

// baseProxy carries the fields every concrete proxy type shares.
type baseProxy struct {
	DispatchHeader
	id   protocol.ID
	kind protocol.ObjKind
}

func (p *baseProxy) ID() protocol.ID       { return p.id }
func (p *baseProxy) Kind() protocol.ObjKind { return p.kind }

// PlatformProxy, DeviceProxy, ContextProxy, QueueProxy, ProgramProxy,
// KernelProxy, and EventProxy are the client-side surrogates returned to
// the host application as opaque handles. MemoryProxy additionally tracks
// active host-pointer mappings, per the data model's memory-object mapping
// record.
type PlatformProxy struct{ baseProxy }
type DeviceProxy struct{ baseProxy }
type ContextProxy struct{ baseProxy }
type QueueProxy struct{ baseProxy }
type ProgramProxy struct{ baseProxy }
type KernelProxy struct{ baseProxy }
type EventProxy struct{ baseProxy }

// Mapping records one active clEnqueueMapBuffer/clEnqueueMapImage region:
// the host-visible buffer backing the mapped view and the byte range on
// the remote object it mirrors.
type Mapping struct {
	HostPtr []byte
	Offset  uint64
	Size    uint64
}

// MemoryProxy is the client-side surrogate for a buffer or image object. Its
// mappings are guarded by their own mutex so unrelated objects' concurrent
// map/unmap calls never contend with each other.
type MemoryProxy struct {
	baseProxy

	mu       sync.Mutex
	mappings map[unsafe.Pointer]*Mapping
}

// Map registers a new mapping keyed by its host pointer.
func (m *MemoryProxy) Map(ptr []byte, offset, size uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.mappings == nil {
		m.mappings = make(map[unsafe.Pointer]*Mapping)
	}
	key := unsafe.Pointer(&ptr[0])
	m.mappings[key] = &Mapping{HostPtr: ptr, Offset: offset, Size: size}
}

// Unmap removes the mapping registered at the given host pointer, reporting
// whether one existed.
func (m *MemoryProxy) Unmap(ptr []byte) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(ptr) == 0 {
		return false
	}
	key := unsafe.Pointer(&ptr[0])
	if _, ok := m.mappings[key]; !ok {
		return false
	}
	delete(m.mappings, key)
	return true
}

// Registry maps wire IDs to proxies, created lazily the first time an ID
// is returned by the server and kept alive until connection teardown.
type Registry struct {
	mu      sync.Mutex
	byID    map[protocol.ID]Proxy
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{byID: make(map[protocol.ID]Proxy)}
}

// GetOrInsert returns the existing proxy registered at id, or calls make to
// construct and register one if this is the first time id has been seen.
func GetOrInsert[P Proxy](r *Registry, id protocol.ID, make_ func() P) P {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.byID[id]; ok {
		if typed, ok := existing.(P); ok {
			return typed
		}
		panic(fmt.Sprintf("remotecl: ID %d re-registered with a different proxy kind", id))
	}
	p := make_()
	r.byID[id] = p
	return p
}

// Get returns the proxy registered at id, or the zero value and false if
// none has been registered yet.
func Get[P Proxy](r *Registry, id protocol.ID) (P, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var zero P
	existing, ok := r.byID[id]
	if !ok {
		return zero, false
	}
	typed, ok := existing.(P)
	return typed, ok
}

func newPlatformProxy(id protocol.ID) *PlatformProxy {
	// Platforms have no clRetainPlatform/clReleasePlatform in the host API,
	// so KindUnknown is fine here: this kind letter is only ever checked by
	// handletable.Retain/Release.
	return &PlatformProxy{baseProxy{newHeader(), id, protocol.KindUnknown}}
}

// NewPlatform registers and returns a platform proxy for id, reusing an
// existing one if already registered.
func NewPlatform(r *Registry, id protocol.ID) *PlatformProxy {
	return GetOrInsert(r, id, func() *PlatformProxy { return newPlatformProxy(id) })
}

// NewDevice registers and returns a device proxy for id.
func NewDevice(r *Registry, id protocol.ID) *DeviceProxy {
	return GetOrInsert(r, id, func() *DeviceProxy {
		return &DeviceProxy{baseProxy{newHeader(), id, protocol.KindDevice}}
	})
}

// NewContext registers and returns a context proxy for id.
func NewContext(r *Registry, id protocol.ID) *ContextProxy {
	return GetOrInsert(r, id, func() *ContextProxy {
		return &ContextProxy{baseProxy{newHeader(), id, protocol.KindContext}}
	})
}

// NewQueue registers and returns a queue proxy for id.
func NewQueue(r *Registry, id protocol.ID) *QueueProxy {
	return GetOrInsert(r, id, func() *QueueProxy {
		return &QueueProxy{baseProxy{newHeader(), id, protocol.KindQueue}}
	})
}

// NewProgram registers and returns a program proxy for id.
func NewProgram(r *Registry, id protocol.ID) *ProgramProxy {
	return GetOrInsert(r, id, func() *ProgramProxy {
		return &ProgramProxy{baseProxy{newHeader(), id, protocol.KindProgram}}
	})
}

// NewKernel registers and returns a kernel proxy for id.
func NewKernel(r *Registry, id protocol.ID) *KernelProxy {
	return GetOrInsert(r, id, func() *KernelProxy {
		return &KernelProxy{baseProxy{newHeader(), id, protocol.KindKernel}}
	})
}

// NewMemory registers and returns a memory-object proxy for id.
func NewMemory(r *Registry, id protocol.ID) *MemoryProxy {
	return GetOrInsert(r, id, func() *MemoryProxy {
		return &MemoryProxy{baseProxy: baseProxy{newHeader(), id, protocol.KindMemory}}
	})
}

// NewEvent registers and returns an event proxy for id.
func NewEvent(r *Registry, id protocol.ID) *EventProxy {
	return GetOrInsert(r, id, func() *EventProxy {
		return &EventProxy{baseProxy{newHeader(), id, protocol.KindEvent}}
	})
}
