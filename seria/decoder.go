package seria

// BinaryDecoder is a Visitor that reads the tagged-length binary wire
// format from an InputByteSource, enforcing limits against a hostile or
// corrupt input. It does not require the source to be fully consumed when
// the top-level Traverse returns, so callers can decode records
// concatenated one after another in a single file (see the chainfile
// package) by constructing a fresh BinaryDecoder per record over a shared
// source position.
type BinaryDecoder struct {
	src    InputByteSource
	limits Limits
}

// NewBinaryDecoder returns a Visitor that reads from src, rejecting any
// length or count that would exceed limits.
func NewBinaryDecoder(src InputByteSource, limits Limits) *BinaryDecoder {
	return &BinaryDecoder{src: src, limits: limits}
}

func (d *BinaryDecoder) IsInput() bool { return true }

func (d *BinaryDecoder) Limits() Limits { return d.limits }

func (d *BinaryDecoder) BeginObject() error { return nil }
func (d *BinaryDecoder) EndObject() error   { return nil }
func (d *BinaryDecoder) ObjectKey(name string) bool {
	return true
}

func (d *BinaryDecoder) readCount(what string) (int, error) {
	n, err := readVarint(d.src)
	if err != nil {
		return 0, err
	}
	if n > uint64(d.limits.MaxContainerLen) {
		return 0, malformed(what + " exceeds configured limit")
	}
	return int(n), nil
}

func (d *BinaryDecoder) readLen(what string) (int, error) {
	n, err := readVarint(d.src)
	if err != nil {
		return 0, err
	}
	if n > uint64(d.limits.MaxAllocSize) {
		return 0, malformed(what + " exceeds configured limit")
	}
	// Reject before the caller allocates a buffer of size n: a source
	// that knows its remaining length can tell us a claimed length is a
	// lie without us ever touching the allocator.
	if remaining := d.src.Remaining(); remaining >= 0 && n > uint64(remaining) {
		return 0, malformed(what + " exceeds remaining input")
	}
	return int(n), nil
}

func (d *BinaryDecoder) BeginArray(size *int, fixedSize bool) error {
	if size == nil {
		return invalidUsage("BeginArray called with nil size")
	}
	if fixedSize {
		return nil
	}
	n, err := d.readCount("array length")
	if err != nil {
		return err
	}
	*size = n
	return nil
}

func (d *BinaryDecoder) EndArray() error { return nil }

func (d *BinaryDecoder) BeginMap(size *int) error {
	if size == nil {
		return invalidUsage("BeginMap called with nil size")
	}
	n, err := d.readCount("map length")
	if err != nil {
		return err
	}
	*size = n
	return nil
}

func (d *BinaryDecoder) NextMapKey(name *string) error {
	return d.String(name)
}

func (d *BinaryDecoder) EndMap() error { return nil }

func (d *BinaryDecoder) Uint8(v *uint8) error {
	n, err := readVarint(d.src)
	if err != nil {
		return err
	}
	if n > 0xff {
		return malformed("uint8 varint out of range")
	}
	*v = uint8(n)
	return nil
}

func (d *BinaryDecoder) Uint16(v *uint16) error {
	n, err := readVarint(d.src)
	if err != nil {
		return err
	}
	if n > 0xffff {
		return malformed("uint16 varint out of range")
	}
	*v = uint16(n)
	return nil
}

func (d *BinaryDecoder) Uint32(v *uint32) error {
	n, err := readVarint(d.src)
	if err != nil {
		return err
	}
	if n > 0xffffffff {
		return malformed("uint32 varint out of range")
	}
	*v = uint32(n)
	return nil
}

func (d *BinaryDecoder) Uint64(v *uint64) error {
	n, err := readVarint(d.src)
	if err != nil {
		return err
	}
	*v = n
	return nil
}

func (d *BinaryDecoder) Int16(v *int16) error {
	n, err := readVarint(d.src)
	if err != nil {
		return err
	}
	if n > 0xffff {
		return malformed("int16 varint out of range")
	}
	*v = wireToInt16(uint16(n))
	return nil
}

func (d *BinaryDecoder) Int32(v *int32) error {
	n, err := readVarint(d.src)
	if err != nil {
		return err
	}
	if n > 0xffffffff {
		return malformed("int32 varint out of range")
	}
	*v = wireToInt32(uint32(n))
	return nil
}

func (d *BinaryDecoder) Int64(v *int64) error {
	n, err := readVarint(d.src)
	if err != nil {
		return err
	}
	*v = wireToInt64(n)
	return nil
}

func (d *BinaryDecoder) Bool(v *bool) error {
	b, err := d.src.ReadByte()
	if err != nil {
		return err
	}
	switch b {
	case 0x00:
		*v = false
	case 0x01:
		*v = true
	default:
		return malformed("bool byte is neither 0x00 nor 0x01")
	}
	return nil
}

func (d *BinaryDecoder) String(v *string) error {
	n, err := d.readLen("string length")
	if err != nil {
		return err
	}
	buf := make([]byte, n)
	if err := d.src.ReadFull(buf); err != nil {
		return err
	}
	*v = string(buf)
	return nil
}

func (d *BinaryDecoder) Bytes(v *[]byte) error {
	n, err := d.readLen("byte slice length")
	if err != nil {
		return err
	}
	if n == 0 {
		*v = nil
		return nil
	}
	buf := make([]byte, n)
	if err := d.src.ReadFull(buf); err != nil {
		return err
	}
	*v = buf
	return nil
}

func (d *BinaryDecoder) Binary(buf []byte) error {
	if len(buf) > d.limits.MaxAllocSize {
		return malformed("fixed binary field exceeds configured limit")
	}
	return d.src.ReadFull(buf)
}
