package seria

import "io"

// EncodeToBytes traverses t with a BinaryEncoder and returns the resulting
// bytes.
func EncodeToBytes(t Traversable) ([]byte, error) {
	sink := &byteSliceSink{}
	enc := NewBinaryEncoder(sink)
	if err := t.Traverse(enc); err != nil {
		return nil, err
	}
	return sink.Bytes(), nil
}

// Encode traverses t with a BinaryEncoder writing to w.
func Encode(w io.Writer, t Traversable) error {
	enc := NewBinaryEncoder(OutputWriterSink{W: w})
	return t.Traverse(enc)
}

// DecodeFromBytes traverses t with a BinaryDecoder reading from buf,
// enforcing limits. It does not require all of buf to be consumed; callers
// that need to know how much was read should construct a BinaryDecoder
// directly over a byteSliceSource and inspect Remaining after.
func DecodeFromBytes(buf []byte, t Traversable, limits Limits) error {
	dec := NewBinaryDecoder(NewByteSliceSource(buf), limits)
	return t.Traverse(dec)
}

// Decode traverses t with a BinaryDecoder reading from r, enforcing limits.
func Decode(r io.Reader, t Traversable, limits Limits) error {
	dec := NewBinaryDecoder(InputReaderSource{R: r}, limits)
	return t.Traverse(dec)
}
