package server

import (
	"sync"
	"unsafe"

	"github.com/remotecl/remotecl/pkg/protocol"
)

// fakeObject is the uniform native-handle representation FakeBackend hands
// out: every created object, regardless of kind, is a distinct heap
// allocation whose address is stable for the object's lifetime, which is
// all the handle table requires of a "native handle."
type fakeObject struct {
	kind        byte
	data        []byte // backing store for buffers/images; unused by other kinds
	args        map[uint32]byte
	elementSize uint32 // per-pixel byte size; images only
}

// FakeBackend is a pure-Go Backend implementation with one simulated
// platform and device, in-memory buffers, and kernels that no-op on
// enqueue. It exists so the protocol, client, and server layers can be
// exercised end to end without a real OpenCL installation; see Backend's
// doc comment for why a cgo-backed implementation lives outside this
// module.
type FakeBackend struct {
	mu       sync.Mutex
	platform *fakeObject
	device   *fakeObject
}

// NewFakeBackend returns a backend exposing exactly one platform and one
// device.
func NewFakeBackend() *FakeBackend {
	return &FakeBackend{
		platform: &fakeObject{kind: 'L'},
		device:   &fakeObject{kind: 'D'},
	}
}

func ptrOf(o *fakeObject) unsafe.Pointer { return unsafe.Pointer(o) }

func (b *FakeBackend) GetPlatformIDs() ([]unsafe.Pointer, int32) {
	return []unsafe.Pointer{ptrOf(b.platform)}, protocol.StatusSuccess
}

func (b *FakeBackend) GetPlatformInfo(platform unsafe.Pointer, param uint32) ([]byte, int32) {
	return []byte("RemoteCL Fake Platform"), protocol.StatusSuccess
}

// deviceTypeMask covers the CL_DEVICE_TYPE_* bits a real installation would
// recognize: CPU, GPU, ACCELERATOR, DEFAULT, CUSTOM, and ALL.
const deviceTypeMask = 1<<0 | 1<<1 | 1<<2 | 1<<3 | 1<<4 | 0xFFFFFFFF

func (b *FakeBackend) GetDeviceIDs(platform unsafe.Pointer, deviceType uint64) ([]unsafe.Pointer, int32) {
	if platform != ptrOf(b.platform) {
		return nil, protocol.StatusInvalidPlatform
	}
	if deviceType == 0 || deviceType&^uint64(deviceTypeMask) != 0 {
		return nil, protocol.StatusInvalidDeviceType
	}
	return []unsafe.Pointer{ptrOf(b.device)}, protocol.StatusSuccess
}

func (b *FakeBackend) GetDeviceInfo(device unsafe.Pointer, param uint32) ([]byte, int32) {
	return []byte("RemoteCL Fake Device"), protocol.StatusSuccess
}

func (b *FakeBackend) CreateContext(properties []uint64, devices []unsafe.Pointer) (unsafe.Pointer, int32) {
	return ptrOf(&fakeObject{kind: 'C'}), protocol.StatusSuccess
}

func (b *FakeBackend) CreateContextFromType(properties []uint64, deviceType uint64) (unsafe.Pointer, int32) {
	return ptrOf(&fakeObject{kind: 'C'}), protocol.StatusSuccess
}

func (b *FakeBackend) GetContextInfo(ctx unsafe.Pointer, param uint32) ([]byte, int32) {
	return []byte{}, protocol.StatusSuccess
}

func (b *FakeBackend) GetImageFormats(ctx unsafe.Pointer, flags, imageType uint32) ([]byte, int32) {
	return []byte{}, protocol.StatusSuccess
}

func (b *FakeBackend) CreateQueue(ctx, device unsafe.Pointer, properties uint64) (unsafe.Pointer, int32) {
	return ptrOf(&fakeObject{kind: 'Q'}), protocol.StatusSuccess
}

func (b *FakeBackend) CreateQueueWithProp(ctx, device unsafe.Pointer, properties []uint64) (unsafe.Pointer, int32) {
	return ptrOf(&fakeObject{kind: 'Q'}), protocol.StatusSuccess
}

func (b *FakeBackend) GetQueueInfo(queue unsafe.Pointer, param uint32) ([]byte, int32) {
	return []byte{}, protocol.StatusSuccess
}

func (b *FakeBackend) Flush(queue unsafe.Pointer) int32  { return protocol.StatusSuccess }
func (b *FakeBackend) Finish(queue unsafe.Pointer) int32 { return protocol.StatusSuccess }

func (b *FakeBackend) CreateSourceProgram(ctx unsafe.Pointer, source string) (unsafe.Pointer, int32) {
	return ptrOf(&fakeObject{kind: 'P', data: []byte(source)}), protocol.StatusSuccess
}

func (b *FakeBackend) CreateBinaryProgram(ctx unsafe.Pointer, binary []byte) (unsafe.Pointer, int32) {
	return ptrOf(&fakeObject{kind: 'P', data: binary}), protocol.StatusSuccess
}

func (b *FakeBackend) BuildProgram(program unsafe.Pointer, options string) int32 {
	return protocol.StatusSuccess
}

func (b *FakeBackend) CompileProgram(program unsafe.Pointer, options string, headers map[string]unsafe.Pointer) int32 {
	return protocol.StatusSuccess
}

func (b *FakeBackend) LinkProgram(ctx unsafe.Pointer, options string, programs []unsafe.Pointer) (unsafe.Pointer, int32) {
	return ptrOf(&fakeObject{kind: 'P'}), protocol.StatusSuccess
}

func (b *FakeBackend) BuildInfo(program, device unsafe.Pointer, param uint32) ([]byte, int32) {
	return []byte("build complete"), protocol.StatusSuccess
}

func (b *FakeBackend) ProgramInfo(program unsafe.Pointer, param uint32) ([]byte, int32) {
	return []byte{}, protocol.StatusSuccess
}

func (b *FakeBackend) CreateKernel(program unsafe.Pointer, name string) (unsafe.Pointer, int32) {
	return ptrOf(&fakeObject{kind: 'K', args: map[uint32]byte{}}), protocol.StatusSuccess
}

func (b *FakeBackend) CreateKernelsInProgram(program unsafe.Pointer) ([]unsafe.Pointer, int32) {
	return []unsafe.Pointer{ptrOf(&fakeObject{kind: 'K', args: map[uint32]byte{}})}, protocol.StatusSuccess
}

func (b *FakeBackend) CloneKernel(kernel unsafe.Pointer) (unsafe.Pointer, int32) {
	return ptrOf(&fakeObject{kind: 'K', args: map[uint32]byte{}}), protocol.StatusSuccess
}

// KernelArgKind always reports a private-value argument; the fake backend
// carries no real kernel signature to introspect.
func (b *FakeBackend) KernelArgKind(kernel unsafe.Pointer, index uint32) (byte, int32) {
	return 'P', protocol.StatusSuccess
}

func (b *FakeBackend) SetKernelArgMemObject(kernel unsafe.Pointer, index uint32, mem unsafe.Pointer) int32 {
	return protocol.StatusSuccess
}

func (b *FakeBackend) SetKernelArgLocalSize(kernel unsafe.Pointer, index uint32, size uint32) int32 {
	return protocol.StatusSuccess
}

func (b *FakeBackend) SetKernelArgPrivate(kernel unsafe.Pointer, index uint32, data []byte) int32 {
	return protocol.StatusSuccess
}

func (b *FakeBackend) KernelWGInfo(kernel, device unsafe.Pointer, param uint32) ([]byte, int32) {
	return []byte{64, 0, 0, 0}, protocol.StatusSuccess
}

func (b *FakeBackend) KernelInfo(kernel unsafe.Pointer, param uint32) ([]byte, int32) {
	return []byte{}, protocol.StatusSuccess
}

func (b *FakeBackend) KernelArgInfo(kernel unsafe.Pointer, index, param uint32) ([]byte, int32) {
	return []byte{}, protocol.StatusSuccess
}

func (b *FakeBackend) CreateBuffer(ctx unsafe.Pointer, flags, size uint32, hostData []byte) (unsafe.Pointer, int32) {
	data := make([]byte, size)
	copy(data, hostData)
	return ptrOf(&fakeObject{kind: 'M', data: data}), protocol.StatusSuccess
}

func (b *FakeBackend) CreateSubBuffer(buffer unsafe.Pointer, flags, createType, offset, size uint32) (unsafe.Pointer, int32) {
	parent := (*fakeObject)(buffer)
	if int(offset+size) > len(parent.data) {
		return nil, protocol.StatusInvalidValue
	}
	return ptrOf(&fakeObject{kind: 'M', data: parent.data[offset : offset+size]}), protocol.StatusSuccess
}

func (b *FakeBackend) GetMemObjInfo(mem unsafe.Pointer, param uint32) ([]byte, int32) {
	obj := (*fakeObject)(mem)
	return []byte{byte(len(obj.data))}, protocol.StatusSuccess
}

func (b *FakeBackend) ReadBuffer(queue, buffer unsafe.Pointer, offset uint32, out []byte) int32 {
	obj := (*fakeObject)(buffer)
	if int(offset)+len(out) > len(obj.data) {
		return protocol.StatusInvalidValue
	}
	copy(out, obj.data[offset:])
	return protocol.StatusSuccess
}

func (b *FakeBackend) WriteBuffer(queue, buffer unsafe.Pointer, offset uint32, data []byte) int32 {
	obj := (*fakeObject)(buffer)
	if int(offset)+len(data) > len(obj.data) {
		return protocol.StatusInvalidValue
	}
	copy(obj.data[offset:], data)
	return protocol.StatusSuccess
}

func (b *FakeBackend) FillBuffer(queue, buffer unsafe.Pointer, offset, size uint32, pattern []byte) int32 {
	obj := (*fakeObject)(buffer)
	if len(pattern) == 0 || int(offset+size) > len(obj.data) {
		return protocol.StatusInvalidValue
	}
	for i := uint32(0); i < size; i++ {
		obj.data[offset+i] = pattern[i%uint32(len(pattern))]
	}
	return protocol.StatusSuccess
}

func (b *FakeBackend) ReadBufferRect(queue, buffer unsafe.Pointer, out []byte) int32 {
	obj := (*fakeObject)(buffer)
	n := len(out)
	if n > len(obj.data) {
		n = len(obj.data)
	}
	copy(out, obj.data[:n])
	return protocol.StatusSuccess
}

func (b *FakeBackend) WriteBufferRect(queue, buffer unsafe.Pointer, data []byte) int32 {
	obj := (*fakeObject)(buffer)
	n := len(data)
	if n > len(obj.data) {
		n = len(obj.data)
	}
	copy(obj.data, data[:n])
	return protocol.StatusSuccess
}

// CreateImage params follows packets_image.go's CreateImage field order:
// flags, channel order, channel type, image type, width, height, depth,
// array size, row pitch, slice pitch, mip levels, samples.
func (b *FakeBackend) CreateImage(ctx unsafe.Pointer, params []uint32) (unsafe.Pointer, int32) {
	order, typ := params[1], params[2]
	elemSize, ok := protocol.ImageElementSize(order, typ)
	if !ok {
		return nil, protocol.StatusImageFormatNotSupported
	}
	return ptrOf(&fakeObject{kind: 'I', elementSize: elemSize}), protocol.StatusSuccess
}

func (b *FakeBackend) ImageElementSize(image unsafe.Pointer) (uint32, int32) {
	obj := (*fakeObject)(image)
	return obj.elementSize, protocol.StatusSuccess
}

func (b *FakeBackend) ReadImage(queue, image unsafe.Pointer, out []byte) int32 {
	for i := range out {
		out[i] = 0
	}
	return protocol.StatusSuccess
}

func (b *FakeBackend) WriteImage(queue, image unsafe.Pointer, data []byte) int32 {
	return protocol.StatusSuccess
}

func (b *FakeBackend) GetImageInfo(image unsafe.Pointer, param uint32) ([]byte, int32) {
	return []byte{}, protocol.StatusSuccess
}

func (b *FakeBackend) EnqueueKernel(queue, kernel unsafe.Pointer, workDim uint8, global, offset, local [3]uint32) (unsafe.Pointer, int32) {
	return ptrOf(&fakeObject{kind: 'E'}), protocol.StatusSuccess
}

func (b *FakeBackend) CreateUserEvent(ctx unsafe.Pointer) (unsafe.Pointer, int32) {
	return ptrOf(&fakeObject{kind: 'E'}), protocol.StatusSuccess
}

func (b *FakeBackend) SetUserEventStatus(event unsafe.Pointer, status uint32) int32 {
	return protocol.StatusSuccess
}

func (b *FakeBackend) GetEventInfo(event unsafe.Pointer, param uint32) ([]byte, int32) {
	return []byte{0}, protocol.StatusSuccess
}

func (b *FakeBackend) GetEventProfilingInfo(event unsafe.Pointer, param uint32) ([]byte, int32) {
	return []byte{0, 0, 0, 0, 0, 0, 0, 0}, protocol.StatusSuccess
}

func (b *FakeBackend) WaitForEvents(events []unsafe.Pointer) int32 { return protocol.StatusSuccess }

func (b *FakeBackend) Retain(kind byte, native unsafe.Pointer) int32  { return protocol.StatusSuccess }
func (b *FakeBackend) Release(kind byte, native unsafe.Pointer) int32 { return protocol.StatusSuccess }
