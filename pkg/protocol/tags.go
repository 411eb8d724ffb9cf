// Package protocol defines the RemoteCL wire protocol: the closed set of
// packet tags, the per-tag body types and their Encode/Decode methods, the
// version/feature negotiation packet, and the error taxonomy that crosses
// every component boundary.
package protocol

import "fmt"

// Tag identifies a packet variant on the wire. Every packet begins with a
// single Tag byte followed by a type-specific body; the framing layer has no
// overall length prefix, relying on each variant's schema being
// self-delimiting.
type Tag uint8

const (
	TagVersion Tag = iota
	TagPayload
	TagSuccess
	TagError
	TagRetain
	TagRelease
	TagCreateContext
	TagCreateContextFromType
	TagGetContextInfo
	TagGetImageFormats
	TagCreateQueue
	TagCreateQueueWithProp
	TagGetQueueInfo
	TagFlush
	TagFinish
	TagCreateSourceProgram
	TagCreateBinaryProgram
	TagBuildProgram
	TagBuildInfo
	TagProgramInfo
	TagCreateKernel
	TagCloneKernel
	TagSetKernelArg
	TagKernelWGInfo
	TagKernelInfo
	TagKernelArgInfo
	TagCreateBuffer
	TagCreateSubBuffer
	TagReadBuffer
	TagWriteBuffer
	TagFillBuffer
	TagGetMemObjInfo
	TagCreateImage
	TagReadImage
	TagWriteImage
	TagGetImageInfo
	TagEnqueueKernel
	TagCreateUserEvent
	TagSetUserEventStatus
	TagWaitEvents
	TagGetEventInfo
	TagGetEventProfilingInfo
	TagGetPlatformInfo
	TagGetPlatformIDs
	TagGetDeviceIDs
	TagGetDeviceInfo
	TagID
	TagIDList

	// Supplemental tags, carried forward from the reference implementation's
	// working feature set though absent from the distilled tag list (see
	// SPEC_FULL.md §9.1).
	TagCompileProgram
	TagLinkProgram
	TagCreateKernelsInProgram
	TagReadBufferRect
	TagWriteBufferRect

	// Event stream tags.
	TagEventStreamOpen
	TagCallbackTrigger
	TagRegisterEventCallback
	TagEventCallbackTrigger

	// TagTerminate is reserved to indicate graceful close and always takes
	// the value 0xFF, never collapsing into the sequential range above.
	TagTerminate Tag = 0xFF
)

var tagNames = map[Tag]string{
	TagVersion:                "Version",
	TagPayload:                "Payload",
	TagSuccess:                "Success",
	TagError:                  "Error",
	TagRetain:                 "Retain",
	TagRelease:                "Release",
	TagCreateContext:          "CreateContext",
	TagCreateContextFromType:  "CreateContextFromType",
	TagGetContextInfo:         "GetContextInfo",
	TagGetImageFormats:        "GetImageFormats",
	TagCreateQueue:            "CreateQueue",
	TagCreateQueueWithProp:    "CreateQueueWithProp",
	TagGetQueueInfo:           "GetQueueInfo",
	TagFlush:                  "Flush",
	TagFinish:                 "Finish",
	TagCreateSourceProgram:    "CreateSourceProgram",
	TagCreateBinaryProgram:    "CreateBinaryProgram",
	TagBuildProgram:           "BuildProgram",
	TagBuildInfo:              "BuildInfo",
	TagProgramInfo:            "ProgramInfo",
	TagCreateKernel:           "CreateKernel",
	TagCloneKernel:            "CloneKernel",
	TagSetKernelArg:           "SetKernelArg",
	TagKernelWGInfo:           "KernelWGInfo",
	TagKernelInfo:             "KernelInfo",
	TagKernelArgInfo:          "KernelArgInfo",
	TagCreateBuffer:           "CreateBuffer",
	TagCreateSubBuffer:        "CreateSubBuffer",
	TagReadBuffer:             "ReadBuffer",
	TagWriteBuffer:            "WriteBuffer",
	TagFillBuffer:             "FillBuffer",
	TagGetMemObjInfo:          "GetMemObjInfo",
	TagCreateImage:            "CreateImage",
	TagReadImage:              "ReadImage",
	TagWriteImage:             "WriteImage",
	TagGetImageInfo:           "GetImageInfo",
	TagEnqueueKernel:          "EnqueueKernel",
	TagCreateUserEvent:        "CreateUserEvent",
	TagSetUserEventStatus:     "SetUserEventStatus",
	TagWaitEvents:             "WaitEvents",
	TagGetEventInfo:           "GetEventInfo",
	TagGetEventProfilingInfo:  "GetEventProfilingInfo",
	TagGetPlatformInfo:        "GetPlatformInfo",
	TagGetPlatformIDs:         "GetPlatformIDs",
	TagGetDeviceIDs:           "GetDeviceIDs",
	TagGetDeviceInfo:          "GetDeviceInfo",
	TagID:                     "ID",
	TagIDList:                 "IDList",
	TagCompileProgram:         "CompileProgram",
	TagLinkProgram:            "LinkProgram",
	TagCreateKernelsInProgram: "CreateKernelsInProgram",
	TagReadBufferRect:         "ReadBufferRect",
	TagWriteBufferRect:        "WriteBufferRect",
	TagEventStreamOpen:        "EventStreamOpen",
	TagCallbackTrigger:        "CallbackTrigger",
	TagRegisterEventCallback:  "RegisterEventCallback",
	TagEventCallbackTrigger:   "EventCallbackTrigger",
	TagTerminate:              "Terminate",
}

func (t Tag) String() string {
	if name, ok := tagNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Tag(0x%02x)", uint8(t))
}

// ObjKind is the single-character kind letter carried by Retain/Release
// packets, identifying which handle-table namespace an ID belongs to.
type ObjKind byte

const (
	KindDevice   ObjKind = 'D'
	KindContext  ObjKind = 'C'
	KindQueue    ObjKind = 'Q'
	KindProgram  ObjKind = 'P'
	KindKernel   ObjKind = 'K'
	KindMemory   ObjKind = 'M'
	KindEvent    ObjKind = 'E'
	KindUnknown  ObjKind = 'U'
)
