package seria

// Limits bounds the resources a single decode may consume from untrusted
// input. A decoder that reads a varint length or count always checks it
// against the relevant limit before allocating, so a crafted ten-byte
// input cannot force a multi-gigabyte allocation.
type Limits struct {
	// MaxAllocSize bounds the length of any single string, byte slice, or
	// fixed binary field read from the wire.
	MaxAllocSize int
	// MaxContainerLen bounds the element count of any array or map read
	// from the wire.
	MaxContainerLen int
}

// DefaultLimits is generous enough for any legitimate block, transaction,
// or peer-list message and is the limit new decoders use unless told
// otherwise.
var DefaultLimits = Limits{
	MaxAllocSize:    64 << 20, // 64 MiB
	MaxContainerLen: 1 << 20,  // ~1M elements
}

// Visitor is the interface a Traversable drives to describe its shape. One
// Visitor traverses in one direction only: an encoder appends bytes for
// the values it is given, a decoder fills the values it is given from
// bytes already read. IsInput distinguishes the two so a single Traverse
// method can serve both, the only asymmetry being that a decoding Visitor
// populates the pointee of each argument rather than reading it.
type Visitor interface {
	// IsInput reports whether this Visitor is decoding (true) or encoding
	// (false). A Traverse method that needs to branch — allocating a
	// slice before NextMapKey can fill it, for instance — checks this.
	IsInput() bool

	BeginObject() error
	EndObject() error
	// ObjectKey names the next field for formats that tag fields by name.
	// The binary format carries no field names on the wire; ObjectKey is a
	// no-op that always returns true, kept so Traverse methods read the
	// same regardless of backend and so a future self-describing backend
	// can be added without changing any Traversable.
	ObjectKey(name string) bool

	// BeginArray establishes an array scope. For a variable-length array
	// (fixedSize false), an encoding Visitor writes *size as the count
	// prefix and a decoding Visitor fills *size from it, so the caller
	// can then allocate and loop *size times either way. For a
	// fixed-size array, no count is written or read; the caller already
	// knows the length and *size is left untouched.
	BeginArray(size *int, fixedSize bool) error
	EndArray() error

	// BeginMap establishes a map scope, with the same *size contract as
	// BeginArray's variable-length case. NextMapKey must be called once
	// per pair, before that pair's key/value, until the *size pairs are
	// consumed.
	BeginMap(size *int) error
	NextMapKey(name *string) error
	EndMap() error

	Uint8(v *uint8) error
	Uint16(v *uint16) error
	Uint32(v *uint32) error
	Uint64(v *uint64) error
	Int16(v *int16) error
	Int32(v *int32) error
	Int64(v *int64) error
	Bool(v *bool) error
	String(v *string) error
	Bytes(v *[]byte) error

	// Binary encodes or decodes a fixed-width blob in place: no length
	// prefix is written or read, the length is len(buf) on both sides.
	Binary(buf []byte) error

	// Limits reports the resource bounds this Visitor enforces on
	// decode. Encoders return the zero Limits; callers only consult this
	// when IsInput is true.
	Limits() Limits
}

// Traversable is implemented by every type with a wire representation.
// Traverse must visit the same fields in the same order regardless of
// v.IsInput, so that the identical method serves both directions.
type Traversable interface {
	Traverse(v Visitor) error
}
