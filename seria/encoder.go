package seria

// BinaryEncoder is a Visitor that writes the tagged-length binary wire
// format to an OutputByteSink. BeginObject/EndObject and ObjectKey are
// no-ops: object framing on the wire is positional, carried entirely by
// the order Traverse calls Visitor methods in.
type BinaryEncoder struct {
	sink OutputByteSink
}

// NewBinaryEncoder returns a Visitor that writes to sink.
func NewBinaryEncoder(sink OutputByteSink) *BinaryEncoder {
	return &BinaryEncoder{sink: sink}
}

func (e *BinaryEncoder) IsInput() bool { return false }

func (e *BinaryEncoder) Limits() Limits { return Limits{} }

func (e *BinaryEncoder) BeginObject() error { return nil }
func (e *BinaryEncoder) EndObject() error   { return nil }
func (e *BinaryEncoder) ObjectKey(name string) bool {
	return true
}

func (e *BinaryEncoder) BeginArray(size *int, fixedSize bool) error {
	if size == nil {
		return invalidUsage("BeginArray called with nil size")
	}
	if *size < 0 {
		return invalidUsage("BeginArray called with negative size")
	}
	if fixedSize {
		return nil
	}
	return writeVarint(e.sink, uint64(*size))
}

func (e *BinaryEncoder) EndArray() error { return nil }

func (e *BinaryEncoder) BeginMap(size *int) error {
	if size == nil {
		return invalidUsage("BeginMap called with nil size")
	}
	if *size < 0 {
		return invalidUsage("BeginMap called with negative size")
	}
	return writeVarint(e.sink, uint64(*size))
}

func (e *BinaryEncoder) NextMapKey(name *string) error {
	return e.String(name)
}

func (e *BinaryEncoder) EndMap() error { return nil }

func (e *BinaryEncoder) Uint8(v *uint8) error {
	return writeVarint(e.sink, uint64(*v))
}

func (e *BinaryEncoder) Uint16(v *uint16) error {
	return writeVarint(e.sink, uint64(*v))
}

func (e *BinaryEncoder) Uint32(v *uint32) error {
	return writeVarint(e.sink, uint64(*v))
}

func (e *BinaryEncoder) Uint64(v *uint64) error {
	return writeVarint(e.sink, *v)
}

func (e *BinaryEncoder) Int16(v *int16) error {
	return writeVarint(e.sink, uint64(int16ToWire(*v)))
}

func (e *BinaryEncoder) Int32(v *int32) error {
	return writeVarint(e.sink, uint64(int32ToWire(*v)))
}

func (e *BinaryEncoder) Int64(v *int64) error {
	return writeVarint(e.sink, int64ToWire(*v))
}

func (e *BinaryEncoder) Bool(v *bool) error {
	if *v {
		return e.sink.WriteByte(0x01)
	}
	return e.sink.WriteByte(0x00)
}

func (e *BinaryEncoder) String(v *string) error {
	if err := writeVarint(e.sink, uint64(len(*v))); err != nil {
		return err
	}
	_, err := e.sink.Write([]byte(*v))
	return err
}

func (e *BinaryEncoder) Bytes(v *[]byte) error {
	if err := writeVarint(e.sink, uint64(len(*v))); err != nil {
		return err
	}
	_, err := e.sink.Write(*v)
	return err
}

func (e *BinaryEncoder) Binary(buf []byte) error {
	_, err := e.sink.Write(buf)
	return err
}
