package protocol

// Channel order identifiers for CreateImage.ChannelOrder, drawn from the
// host API's cl_channel_order enumeration. Only the values ImageElementSize
// needs to recognize are named here.
const (
	ChannelOrderR         uint32 = 0x10B0
	ChannelOrderA         uint32 = 0x10B1
	ChannelOrderRG        uint32 = 0x10B2
	ChannelOrderRA        uint32 = 0x10B3
	ChannelOrderRGB       uint32 = 0x10B4
	ChannelOrderRGBA      uint32 = 0x10B5
	ChannelOrderBGRA      uint32 = 0x10B6
	ChannelOrderARGB      uint32 = 0x10B7
	ChannelOrderIntensity uint32 = 0x10B8
	ChannelOrderLuminance uint32 = 0x10B9
	ChannelOrderDepth     uint32 = 0x10BD
)

// Channel type identifiers for CreateImage.ChannelType, drawn from the host
// API's cl_channel_type enumeration.
const (
	ChannelTypeSNormInt8      uint32 = 0x10D0
	ChannelTypeSNormInt16     uint32 = 0x10D1
	ChannelTypeUNormInt8      uint32 = 0x10D2
	ChannelTypeUNormInt16     uint32 = 0x10D3
	ChannelTypeUNormShort565  uint32 = 0x10D4
	ChannelTypeUNormShort555  uint32 = 0x10D5
	ChannelTypeUNormInt101010 uint32 = 0x10D6
	ChannelTypeSignedInt8     uint32 = 0x10D7
	ChannelTypeSignedInt16    uint32 = 0x10D8
	ChannelTypeSignedInt32    uint32 = 0x10D9
	ChannelTypeUnsignedInt8   uint32 = 0x10DA
	ChannelTypeUnsignedInt16  uint32 = 0x10DB
	ChannelTypeUnsignedInt32  uint32 = 0x10DC
	ChannelTypeHalfFloat      uint32 = 0x10DD
	ChannelTypeFloat          uint32 = 0x10DE
)

// ImageElementSize computes the per-pixel byte size for a channel
// order/type pair, standing in for CL_IMAGE_ELEMENT_SIZE since there's no
// real driver behind the fake backend to query. The three packed formats
// (565, 555, 101010) are fixed whole-pixel sizes regardless of order;
// everything else is channel count times per-channel width. Reports false
// for an order/type this core doesn't recognize.
func ImageElementSize(order, typ uint32) (uint32, bool) {
	switch typ {
	case ChannelTypeUNormShort565, ChannelTypeUNormShort555:
		return 2, true
	case ChannelTypeUNormInt101010:
		return 4, true
	}

	channels, ok := imageChannelCount(order)
	if !ok {
		return 0, false
	}
	width, ok := imageChannelWidth(typ)
	if !ok {
		return 0, false
	}
	return channels * width, true
}

func imageChannelCount(order uint32) (uint32, bool) {
	switch order {
	case ChannelOrderR, ChannelOrderA, ChannelOrderIntensity, ChannelOrderLuminance, ChannelOrderDepth:
		return 1, true
	case ChannelOrderRG, ChannelOrderRA:
		return 2, true
	case ChannelOrderRGB:
		return 3, true
	case ChannelOrderRGBA, ChannelOrderBGRA, ChannelOrderARGB:
		return 4, true
	default:
		return 0, false
	}
}

func imageChannelWidth(typ uint32) (uint32, bool) {
	switch typ {
	case ChannelTypeSNormInt8, ChannelTypeUNormInt8, ChannelTypeSignedInt8, ChannelTypeUnsignedInt8:
		return 1, true
	case ChannelTypeSNormInt16, ChannelTypeUNormInt16, ChannelTypeSignedInt16, ChannelTypeUnsignedInt16, ChannelTypeHalfFloat:
		return 2, true
	case ChannelTypeSignedInt32, ChannelTypeUnsignedInt32, ChannelTypeFloat:
		return 4, true
	default:
		return 0, false
	}
}
