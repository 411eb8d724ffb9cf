package server

import "unsafe"

// Backend is the seam between the remoting protocol and an actual OpenCL
// installation. A production deployment implements Backend by calling into
// libOpenCL through cgo; that binding is intentionally outside this module,
// since cgo bindings are not portable Go and the remoting layer's job ends
// at "dispatch this request to *some* implementation of the host API" (see
// DESIGN.md). FakeBackend, in this package, is a pure-Go stand-in used by
// tests and by `remotecl-server --backend=fake` for demonstration without a
// real device.
//
// Every method returns a native handle as unsafe.Pointer (opaque to this
// package, stored in the handle table) and an int32 OpenCL-style status
// code; a zero status means success.
type Backend interface {
	GetPlatformIDs() ([]unsafe.Pointer, int32)
	GetPlatformInfo(platform unsafe.Pointer, param uint32) ([]byte, int32)
	GetDeviceIDs(platform unsafe.Pointer, deviceType uint64) ([]unsafe.Pointer, int32)
	GetDeviceInfo(device unsafe.Pointer, param uint32) ([]byte, int32)

	CreateContext(properties []uint64, devices []unsafe.Pointer) (unsafe.Pointer, int32)
	CreateContextFromType(properties []uint64, deviceType uint64) (unsafe.Pointer, int32)
	GetContextInfo(ctx unsafe.Pointer, param uint32) ([]byte, int32)
	GetImageFormats(ctx unsafe.Pointer, flags, imageType uint32) ([]byte, int32)

	CreateQueue(ctx, device unsafe.Pointer, properties uint64) (unsafe.Pointer, int32)
	CreateQueueWithProp(ctx, device unsafe.Pointer, properties []uint64) (unsafe.Pointer, int32)
	GetQueueInfo(queue unsafe.Pointer, param uint32) ([]byte, int32)
	Flush(queue unsafe.Pointer) int32
	Finish(queue unsafe.Pointer) int32

	CreateSourceProgram(ctx unsafe.Pointer, source string) (unsafe.Pointer, int32)
	CreateBinaryProgram(ctx unsafe.Pointer, binary []byte) (unsafe.Pointer, int32)
	BuildProgram(program unsafe.Pointer, options string) int32
	// CompileProgram requests separate compilation against a set of header
	// programs, named the way #include resolution on the client names them.
	CompileProgram(program unsafe.Pointer, options string, headers map[string]unsafe.Pointer) int32
	LinkProgram(ctx unsafe.Pointer, options string, programs []unsafe.Pointer) (unsafe.Pointer, int32)
	BuildInfo(program, device unsafe.Pointer, param uint32) ([]byte, int32)
	ProgramInfo(program unsafe.Pointer, param uint32) ([]byte, int32)

	CreateKernel(program unsafe.Pointer, name string) (unsafe.Pointer, int32)
	CreateKernelsInProgram(program unsafe.Pointer) ([]unsafe.Pointer, int32)
	CloneKernel(kernel unsafe.Pointer) (unsafe.Pointer, int32)
	KernelArgKind(kernel unsafe.Pointer, index uint32) (byte, int32)
	SetKernelArgMemObject(kernel unsafe.Pointer, index uint32, mem unsafe.Pointer) int32
	SetKernelArgLocalSize(kernel unsafe.Pointer, index uint32, size uint32) int32
	SetKernelArgPrivate(kernel unsafe.Pointer, index uint32, data []byte) int32
	KernelWGInfo(kernel, device unsafe.Pointer, param uint32) ([]byte, int32)
	KernelInfo(kernel unsafe.Pointer, param uint32) ([]byte, int32)
	KernelArgInfo(kernel unsafe.Pointer, index, param uint32) ([]byte, int32)

	CreateBuffer(ctx unsafe.Pointer, flags, size uint32, hostData []byte) (unsafe.Pointer, int32)
	CreateSubBuffer(buffer unsafe.Pointer, flags, createType, offset, size uint32) (unsafe.Pointer, int32)
	GetMemObjInfo(mem unsafe.Pointer, param uint32) ([]byte, int32)
	ReadBuffer(queue, buffer unsafe.Pointer, offset uint32, out []byte) int32
	WriteBuffer(queue, buffer unsafe.Pointer, offset uint32, data []byte) int32
	FillBuffer(queue, buffer unsafe.Pointer, offset, size uint32, pattern []byte) int32
	ReadBufferRect(queue, buffer unsafe.Pointer, out []byte) int32
	WriteBufferRect(queue, buffer unsafe.Pointer, data []byte) int32

	CreateImage(ctx unsafe.Pointer, params []uint32) (unsafe.Pointer, int32)
	// ImageElementSize reports the per-pixel byte size of image, standing in
	// for a CL_IMAGE_ELEMENT_SIZE query. The dispatch layer needs this
	// before it can tell a client how many payload bytes a write-image call
	// requires, or how many to allocate for a read-image reply.
	ImageElementSize(image unsafe.Pointer) (uint32, int32)
	ReadImage(queue, image unsafe.Pointer, out []byte) int32
	WriteImage(queue, image unsafe.Pointer, data []byte) int32
	GetImageInfo(image unsafe.Pointer, param uint32) ([]byte, int32)

	EnqueueKernel(queue, kernel unsafe.Pointer, workDim uint8, global, offset, local [3]uint32) (unsafe.Pointer, int32)
	CreateUserEvent(ctx unsafe.Pointer) (unsafe.Pointer, int32)
	SetUserEventStatus(event unsafe.Pointer, status uint32) int32
	GetEventInfo(event unsafe.Pointer, param uint32) ([]byte, int32)
	GetEventProfilingInfo(event unsafe.Pointer, param uint32) ([]byte, int32)
	WaitForEvents(events []unsafe.Pointer) int32

	Retain(kind byte, native unsafe.Pointer) int32
	Release(kind byte, native unsafe.Pointer) int32
}
