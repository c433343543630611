/*
Package seria implements the tagged-length binary serialization scheme used
for every on-wire and on-disk representation of consensus-critical objects:
blocks, transactions, peer-list entries, and binary RPC payloads.

A type participates by implementing Traversable:

	type Traversable interface {
		Traverse(v Visitor) error
	}

Traverse names the type's fields, in a fixed order, to the Visitor it is
given. The same method runs for both encoding and decoding; Visitor.IsInput
tells the traversal which direction it is currently running in. For example:

	type PeerEntry struct {
		ID       uint64
		IP       [4]byte
		Port     uint16
		LastSeen uint64
	}

	func (p *PeerEntry) Traverse(v seria.Visitor) error {
		if err := v.Uint64(&p.ID); err != nil {
			return err
		}
		if err := v.Binary(p.IP[:]); err != nil {
			return err
		}
		if err := v.Uint16(&p.Port); err != nil {
			return err
		}
		return v.Uint64(&p.LastSeen)
	}

Fundamental categories and their binary form:

	- uint8/16/32/64: varint.
	- int16/32/64: reinterpreted to the unsigned value of the same width,
	  then varint. Not zig-zag: negative numbers produce near-maximal
	  encodings, and this is accepted as the wire format.
	- bool: single byte, 0x00 or 0x01. Any other byte is rejected on decode.
	- string / []byte: varint length, then that many bytes.
	- fixed binary blob ([N]byte, Binary(buf)): raw bytes, no length prefix.
	- array(T): varint count, then that many encodings of T.
	- fixed-array(T, N): N encodings of T, no count prefix.
	- map(K, V): varint count, then that many (K, V) pairs in ascending key
	  order. Encoders must sort; decoders do not verify the order of what
	  they read.
	- optional(T): a bool presence byte, then T if present.
	- tagged variant: varint tag, then the payload for that tag. The tag
	  space is closed per variant; an unknown tag is a decode error.
	- real numbers are not supported. There is deliberately no float64/
	  float32 method on Visitor; a type that needs one is a programming
	  error in the traversal, not a wire-format gap.

Two backends implement Visitor: BinaryEncoder writes to an OutputByteSink,
BinaryDecoder reads from an InputByteSource. Both are single-use: construct
one, drive exactly one top-level Traverse call (directly or through Encode/
Decode), then discard it.

The convenience entry points are EncodeToBytes, Encode, Decode, and
DecodeFromBytes. Decode and DecodeFromBytes take a Limits, which bounds the
single largest allocation a decode may make and the largest container
element count it will read, so that a hostile peer cannot make a decode
allocate gigabytes from a ten-byte varint.
*/
package seria
