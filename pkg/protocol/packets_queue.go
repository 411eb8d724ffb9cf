package protocol

import "github.com/remotecl/remotecl/pkg/wire"

// CreateQueue requests a simple in-order/out-of-order command queue. The
// wire order is context, device, properties — note this differs from a
// naive field-declaration order, following the reference implementation's
// actual operator<</>> rather than its struct layout.
type CreateQueue struct {
	Context    ID
	Device     ID
	Properties uint64
}

func (p CreateQueue) Encode(s *wire.Stream) error {
	if err := writeID(s, p.Context); err != nil {
		return err
	}
	if err := writeID(s, p.Device); err != nil {
		return err
	}
	return s.WriteUint64(p.Properties)
}

func (p *CreateQueue) Decode(s *wire.Stream) error {
	ctx, err := readID(s)
	if err != nil {
		return err
	}
	p.Context = ctx
	dev, err := readID(s)
	if err != nil {
		return err
	}
	p.Device = dev
	p.Properties, err = s.ReadUint64()
	return err
}

// CreateQueueWithProp requests a queue built from the cl_queue_properties
// property-list form (OpenCL 2.0+).
type CreateQueueWithProp struct {
	Context    ID
	Device     ID
	Properties []uint64
}

func (p CreateQueueWithProp) Encode(s *wire.Stream) error {
	if err := writeID(s, p.Context); err != nil {
		return err
	}
	if err := writeID(s, p.Device); err != nil {
		return err
	}
	return wire.WriteUint64Seq[uint8](s, p.Properties)
}

func (p *CreateQueueWithProp) Decode(s *wire.Stream) error {
	ctx, err := readID(s)
	if err != nil {
		return err
	}
	p.Context = ctx
	dev, err := readID(s)
	if err != nil {
		return err
	}
	p.Device = dev
	props, err := wire.ReadUint64Seq[uint8](s)
	p.Properties = props
	return err
}

// GetQueueInfo shares the IDParamPair shape (queue ID, param).
type GetQueueInfo = IDParamPair
