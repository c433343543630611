package seria

// Unsigned integers are encoded as LEB128: 7 bits per byte, low-order group
// first, continuation flagged by the high bit of every byte but the last.
// Unlike encoding/binary's Uvarint, decoding here rejects any encoding that
// is not the unique minimal one for its value — an overlong run of
// continuation bytes encoding a small value is MalformedInput, not a
// permissive decode. This is load-bearing: it is the only thing standing
// between the wire format and a second, non-canonical encoding of the same
// integer.

const maxVarintBytes = 10 // enough for any uint64, including the worst case

func writeVarint(sink OutputByteSink, v uint64) error {
	for v >= 0x80 {
		if err := sink.WriteByte(byte(v) | 0x80); err != nil {
			return err
		}
		v >>= 7
	}
	return sink.WriteByte(byte(v))
}

func readVarint(src InputByteSource) (uint64, error) {
	var result uint64
	var shift uint
	for i := 0; i < maxVarintBytes; i++ {
		b, err := src.ReadByte()
		if err != nil {
			return 0, err
		}
		// The 10th byte can only ever hold the 64th bit of the value (9
		// bytes * 7 bits = 63 bits already consumed), so its payload
		// must be 0 or 1. Anything else — continuation bit set, or
		// payload bits above bit 0 — means the encoded value needs more
		// than 64 bits and would otherwise be silently truncated by the
		// shift below.
		if i == maxVarintBytes-1 && b > 0x01 {
			return 0, malformed("varint exceeds 64 bits")
		}
		result |= uint64(b&0x7f) << shift
		if b < 0x80 {
			// Minimality: the final group must not be zero unless the
			// whole value is zero and this is the first byte, and a
			// single zero byte in a later group with a nonzero
			// continuation is only possible when the encoder emitted
			// a redundant 0x80 byte — reject any case where shift > 0
			// and this terminal byte is zero, since a correct encoder
			// never needs to terminate on an all-zero high group.
			if i > 0 && b == 0 {
				return 0, malformed("non-minimal varint encoding")
			}
			return result, nil
		}
		shift += 7
	}
	return 0, malformed("varint exceeds 64 bits")
}

// int16ToWire / wireToInt16 and the 32/64-bit variants reinterpret a signed
// value as the unsigned value of the same bit width, matching the
// reference encoder: seria_v(int32_t&) casts to uint32_t before writing a
// varint. No zig-zag transform is applied, so small negative numbers are
// large unsigned values and encode to the full varint width.

func int16ToWire(v int16) uint16   { return uint16(v) }
func wireToInt16(v uint16) int16   { return int16(v) }
func int32ToWire(v int32) uint32   { return uint32(v) }
func wireToInt32(v uint32) int32   { return int32(v) }
func int64ToWire(v int64) uint64   { return uint64(v) }
func wireToInt64(v uint64) int64   { return int64(v) }
