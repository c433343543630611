package seria

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

// sample is a small Traversable used to exercise every primitive category
// and the container adapters together.
type sample struct {
	U8      uint8
	U16     uint16
	U32     uint32
	U64     uint64
	I16     int16
	I32     int32
	I64     int64
	Flag    bool
	Name    string
	Blob    []byte
	Fixed   [4]byte
	Numbers []uint32
}

func (s *sample) Traverse(v Visitor) error {
	if err := v.Uint8(&s.U8); err != nil {
		return err
	}
	if err := v.Uint16(&s.U16); err != nil {
		return err
	}
	if err := v.Uint32(&s.U32); err != nil {
		return err
	}
	if err := v.Uint64(&s.U64); err != nil {
		return err
	}
	if err := v.Int16(&s.I16); err != nil {
		return err
	}
	if err := v.Int32(&s.I32); err != nil {
		return err
	}
	if err := v.Int64(&s.I64); err != nil {
		return err
	}
	if err := v.Bool(&s.Flag); err != nil {
		return err
	}
	if err := v.String(&s.Name); err != nil {
		return err
	}
	if err := v.Bytes(&s.Blob); err != nil {
		return err
	}
	if err := v.Binary(s.Fixed[:]); err != nil {
		return err
	}
	size := len(s.Numbers)
	if err := v.BeginArray(&size, false); err != nil {
		return err
	}
	if v.IsInput() {
		s.Numbers = nil
		if size > 0 {
			s.Numbers = make([]uint32, size)
		}
	}
	for i := range s.Numbers {
		if err := v.Uint32(&s.Numbers[i]); err != nil {
			return err
		}
	}
	return v.EndArray()
}

func TestRoundTrip(t *testing.T) {
	in := &sample{
		U8: 200, U16: 60000, U32: 4000000000, U64: 1 << 60,
		I16: -30000, I32: -2000000000, I64: -1 << 62,
		Flag: true, Name: "auric", Blob: []byte{1, 2, 3},
		Fixed: [4]byte{0xde, 0xad, 0xbe, 0xef}, Numbers: []uint32{1, 2, 3, 4, 5},
	}
	buf, err := EncodeToBytes(in)
	require.NoError(t, err)

	out := &sample{}
	require.NoError(t, DecodeFromBytes(buf, out, DefaultLimits))
	require.Equal(t, in, out)
}

func TestRoundTripThroughIOStreams(t *testing.T) {
	in := &sample{U8: 1, Name: "x", Fixed: [4]byte{1, 2, 3, 4}}
	var b bytes.Buffer
	require.NoError(t, Encode(&b, in))

	out := &sample{}
	require.NoError(t, Decode(&b, out, DefaultLimits))
	require.Equal(t, in, out)
}

func TestBoolRejectsNonCanonicalByte(t *testing.T) {
	var v bool
	dec := NewBinaryDecoder(NewByteSliceSource([]byte{0x02}), DefaultLimits)
	err := dec.Bool(&v)
	require.ErrorIs(t, err, MalformedInput)
}

func TestDecodeRejectsOversizedString(t *testing.T) {
	sink := &byteSliceSink{}
	require.NoError(t, writeVarint(sink, 1<<40))

	var s string
	dec := NewBinaryDecoder(NewByteSliceSource(sink.Bytes()), DefaultLimits)
	err := dec.String(&s)
	require.ErrorIs(t, err, MalformedInput)
}

func TestDecodeRejectsOversizedArrayCount(t *testing.T) {
	sink := &byteSliceSink{}
	require.NoError(t, writeVarint(sink, 1<<40))

	size := 0
	dec := NewBinaryDecoder(NewByteSliceSource(sink.Bytes()), DefaultLimits)
	err := dec.BeginArray(&size, false)
	require.ErrorIs(t, err, MalformedInput)
}

func TestDecodeUnexpectedEndMidField(t *testing.T) {
	// A valid length prefix for 10 bytes, but no payload follows. The
	// source is an io.Reader, whose Remaining is unknown (-1), so readLen
	// can't catch the shortage up front and the failure only surfaces
	// once ReadFull runs out of stream.
	sink := &byteSliceSink{}
	require.NoError(t, writeVarint(sink, 10))

	var s string
	dec := NewBinaryDecoder(InputReaderSource{R: bytes.NewReader(sink.Bytes())}, DefaultLimits)
	err := dec.String(&s)
	require.ErrorIs(t, err, UnexpectedEnd)
}

func TestDecodeRejectsLengthExceedingRemaining(t *testing.T) {
	// A length prefix claiming far more bytes than the source actually
	// has left, but still well under MaxAllocSize. readLen must reject
	// this against the source's Remaining() before the caller ever
	// allocates a buffer sized from the attacker-controlled length.
	sink := &byteSliceSink{}
	require.NoError(t, writeVarint(sink, 1<<20))
	sink.buf = append(sink.buf, []byte{1, 2, 3}...)

	var s string
	dec := NewBinaryDecoder(NewByteSliceSource(sink.Bytes()), DefaultLimits)
	err := dec.String(&s)
	require.ErrorIs(t, err, MalformedInput)

	var b []byte
	dec = NewBinaryDecoder(NewByteSliceSource(sink.Bytes()), DefaultLimits)
	err = dec.Bytes(&b)
	require.ErrorIs(t, err, MalformedInput)
}

func TestBoundedSinkReportsOutOfSpace(t *testing.T) {
	sink := NewBoundedSink(make([]byte, 2))
	enc := NewBinaryEncoder(sink)
	name := "too long for two bytes"
	err := enc.String(&name)
	require.ErrorIs(t, err, OutOfSpace)
}

func TestFixedArrayCarriesNoCountPrefix(t *testing.T) {
	// One fixed-size array of three one-byte elements encodes to exactly
	// 3 bytes: no length prefix at all.
	items := []Traversable{u32Elem(1), u32Elem(2), u32Elem(3)}
	buf, err := EncodeToBytes(fixedArrayWrapper{items})
	require.NoError(t, err)
	require.Len(t, buf, 3)
}

type u32Elem uint32

func (u u32Elem) Traverse(v Visitor) error {
	val := uint8(u)
	return v.Uint8(&val)
}

type fixedArrayWrapper struct {
	items []Traversable
}

func (f fixedArrayWrapper) Traverse(v Visitor) error {
	return FixedArray(v, f.items)
}
