package seria

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVarintRoundTrip(t *testing.T) {
	values := []uint64{
		0, 1, 2, 127, 128, 129, 16383, 16384, 16385,
		1 << 21, 1<<21 - 1, 1 << 28, 1 << 35, 1 << 42, 1 << 49, 1 << 56, 1 << 63,
		^uint64(0),
	}
	for _, val := range values {
		sink := &byteSliceSink{}
		require.NoError(t, writeVarint(sink, val))

		got, err := readVarint(NewByteSliceSource(sink.Bytes()))
		require.NoError(t, err)
		require.Equal(t, val, got)
	}
}

func TestVarintLiteralEncodings(t *testing.T) {
	cases := []struct {
		val   uint64
		bytes []byte
	}{
		{0, []byte{0x00}},
		{1, []byte{0x01}},
		{127, []byte{0x7f}},
		{128, []byte{0x80, 0x01}},
		{300, []byte{0xac, 0x02}},
	}
	for _, c := range cases {
		sink := &byteSliceSink{}
		require.NoError(t, writeVarint(sink, c.val))
		require.Equal(t, c.bytes, sink.Bytes())

		got, err := readVarint(NewByteSliceSource(c.bytes))
		require.NoError(t, err)
		require.Equal(t, c.val, got)
	}
}

func TestVarintRejectsNonMinimalEncoding(t *testing.T) {
	// 0 re-encoded with a redundant continuation byte.
	_, err := readVarint(NewByteSliceSource([]byte{0x80, 0x00}))
	require.ErrorIs(t, err, MalformedInput)

	// 5 re-encoded with a redundant continuation byte.
	_, err = readVarint(NewByteSliceSource([]byte{0x85, 0x00}))
	require.ErrorIs(t, err, MalformedInput)
}

func TestVarintRejectsOverlong(t *testing.T) {
	overlong := make([]byte, 11)
	for i := range overlong {
		overlong[i] = 0x80
	}
	overlong[len(overlong)-1] = 0x01
	_, err := readVarint(NewByteSliceSource(overlong))
	require.ErrorIs(t, err, MalformedInput)
}

func TestVarintRejectsOverflow(t *testing.T) {
	// 2^64, one past the largest representable uint64.
	_, err := readVarint(NewByteSliceSource([]byte{
		0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x02,
	}))
	require.ErrorIs(t, err, MalformedInput)

	// All 64 value bits set to 1, plus a 10th byte whose payload carries
	// bits beyond the 64-bit budget instead of terminating with 0x00 or
	// 0x01.
	tooWide := make([]byte, 10)
	for i := 0; i < 9; i++ {
		tooWide[i] = 0xff
	}
	tooWide[9] = 0x7f
	_, err = readVarint(NewByteSliceSource(tooWide))
	require.ErrorIs(t, err, MalformedInput)
}

func TestVarintRejectsTruncated(t *testing.T) {
	_, err := readVarint(NewByteSliceSource([]byte{0x80}))
	require.ErrorIs(t, err, UnexpectedEnd)
}

func TestSignedReinterpretCast(t *testing.T) {
	require.Equal(t, uint16(0xffff), int16ToWire(-1))
	require.Equal(t, int16(-1), wireToInt16(0xffff))
	require.Equal(t, uint32(0xffffffff), int32ToWire(-1))
	require.Equal(t, int32(-1), wireToInt32(0xffffffff))
	require.Equal(t, uint64(0xffffffffffffffff), int64ToWire(-1))
	require.Equal(t, int64(-1), wireToInt64(0xffffffffffffffff))
}
