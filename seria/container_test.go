package seria

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type u8Val struct{ v uint8 }

func (u *u8Val) Traverse(vi Visitor) error { return vi.Uint8(&u.v) }

func TestMapEncodesInAscendingKeyOrder(t *testing.T) {
	pairs := []KV{
		{Key: "zebra", Value: &u8Val{3}},
		{Key: "alpha", Value: &u8Val{1}},
		{Key: "mango", Value: &u8Val{2}},
	}
	wrapper := &mapWrapper{pairs: pairs}
	buf, err := EncodeToBytes(wrapper)
	require.NoError(t, err)

	out := &mapWrapper{}
	require.NoError(t, DecodeFromBytes(buf, out, DefaultLimits))
	require.Len(t, out.pairs, 3)
	require.Equal(t, "alpha", out.pairs[0].Key)
	require.Equal(t, "mango", out.pairs[1].Key)
	require.Equal(t, "zebra", out.pairs[2].Key)
}

type mapWrapper struct {
	pairs []KV
}

func (m *mapWrapper) Traverse(v Visitor) error {
	return Map(v, &m.pairs, func() Traversable { return &u8Val{} })
}

func TestOptionalPresentAndAbsent(t *testing.T) {
	for _, present := range []bool{true, false} {
		var value Traversable
		if present {
			value = &u8Val{v: 42}
		}
		wrapper := &optionalWrapper{present: present, value: value}
		buf, err := EncodeToBytes(wrapper)
		require.NoError(t, err)

		out := &optionalWrapper{}
		require.NoError(t, DecodeFromBytes(buf, out, DefaultLimits))
		require.Equal(t, present, out.present)
		if present {
			require.Equal(t, uint8(42), out.value.(*u8Val).v)
		} else {
			require.Nil(t, out.value)
		}
	}
}

type optionalWrapper struct {
	present bool
	value   Traversable
}

func (o *optionalWrapper) Traverse(v Visitor) error {
	return Optional(v, &o.present, &o.value, func() Traversable { return &u8Val{} })
}

func TestVariantRoundTripsEachTag(t *testing.T) {
	for _, tag := range []uint64{0, 1} {
		var payload Traversable = &u8Val{v: uint8(tag) + 10}
		wrapper := &variantWrapper{tag: tag, payload: payload}
		buf, err := EncodeToBytes(wrapper)
		require.NoError(t, err)

		out := &variantWrapper{}
		require.NoError(t, DecodeFromBytes(buf, out, DefaultLimits))
		require.Equal(t, tag, out.tag)
		require.Equal(t, uint8(tag)+10, out.payload.(*u8Val).v)
	}
}

func TestVariantRejectsUnknownTag(t *testing.T) {
	wrapper := &variantWrapper{}
	sink := &byteSliceSink{}
	require.NoError(t, writeVarint(sink, 99))
	require.NoError(t, sink.WriteByte(0))

	err := DecodeFromBytes(sink.Bytes(), wrapper, DefaultLimits)
	require.ErrorIs(t, err, MalformedInput)
}

func variantByTag(tag uint64) (func() Traversable, bool) {
	switch tag {
	case 0, 1:
		return func() Traversable { return &u8Val{} }, true
	default:
		return nil, false
	}
}

type variantWrapper struct {
	tag     uint64
	payload Traversable
}

func (w *variantWrapper) Traverse(v Visitor) error {
	return Variant(v, &w.tag, &w.payload, variantByTag)
}
