package seria

import "sort"

// Sequence traverses a variable-length array of Traversable elements.
// items is read on encode and replaced wholesale on decode via newElem,
// which must return a fresh, addressable element each call.
func Sequence(v Visitor, items *[]Traversable, newElem func() Traversable) error {
	size := len(*items)
	if err := v.BeginArray(&size, false); err != nil {
		return err
	}
	defer v.EndArray()

	if v.IsInput() {
		out := make([]Traversable, size)
		for i := 0; i < size; i++ {
			elem := newElem()
			if err := elem.Traverse(v); err != nil {
				return err
			}
			out[i] = elem
		}
		*items = out
		return nil
	}

	for _, elem := range *items {
		if err := elem.Traverse(v); err != nil {
			return err
		}
	}
	return nil
}

// FixedArray traverses a fixed-length array of Traversable elements: no
// count is written or read, len(items) is authoritative on both sides.
func FixedArray(v Visitor, items []Traversable) error {
	size := len(items)
	if err := v.BeginArray(&size, true); err != nil {
		return err
	}
	defer v.EndArray()

	for _, elem := range items {
		if err := elem.Traverse(v); err != nil {
			return err
		}
	}
	return nil
}

// KV is one key/value pair of a Map.
type KV struct {
	Key   string
	Value Traversable
}

// Map traverses a map(K, V) field. Encoding sorts pairs by Key ascending
// before writing, matching the reference format's ordering requirement;
// decoding trusts the wire order and does not verify it, since the format
// leaves the consequence of a badly-ordered map to the application, not
// the codec.
func Map(v Visitor, pairs *[]KV, newValue func() Traversable) error {
	size := len(*pairs)
	if err := v.BeginMap(&size); err != nil {
		return err
	}
	defer v.EndMap()

	if v.IsInput() {
		out := make([]KV, size)
		for i := 0; i < size; i++ {
			var name string
			if err := v.NextMapKey(&name); err != nil {
				return err
			}
			value := newValue()
			if err := value.Traverse(v); err != nil {
				return err
			}
			out[i] = KV{Key: name, Value: value}
		}
		*pairs = out
		return nil
	}

	sorted := make([]KV, len(*pairs))
	copy(sorted, *pairs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Key < sorted[j].Key })
	for _, pair := range sorted {
		name := pair.Key
		if err := v.NextMapKey(&name); err != nil {
			return err
		}
		if err := pair.Value.Traverse(v); err != nil {
			return err
		}
	}
	return nil
}

// Optional traverses optional(T): a presence bool, then T if present.
// present and value are read on encode; on decode, *present is set and
// newElem is invoked (and value.Traverse run) only when the wire says the
// field is present.
func Optional(v Visitor, present *bool, value *Traversable, newElem func() Traversable) error {
	if v.IsInput() {
		var p bool
		if err := v.Bool(&p); err != nil {
			return err
		}
		*present = p
		if !p {
			*value = nil
			return nil
		}
		elem := newElem()
		if err := elem.Traverse(v); err != nil {
			return err
		}
		*value = elem
		return nil
	}

	p := *present
	if err := v.Bool(&p); err != nil {
		return err
	}
	if !p {
		return nil
	}
	if *value == nil {
		return invalidUsage("Optional marked present with nil value on encode")
	}
	return (*value).Traverse(v)
}

// Variant traverses a closed tagged union: a varint tag, then the payload
// Traversable registered for that tag. byTag must return the same set of
// tags on every call for a given type; an unrecognized tag on decode is
// MalformedInput, not a panic or a silently-skipped field.
func Variant(v Visitor, tag *uint64, payload *Traversable, byTag func(tag uint64) (newElem func() Traversable, ok bool)) error {
	if v.IsInput() {
		var t uint64
		if err := v.Uint64(&t); err != nil {
			return err
		}
		newElem, ok := byTag(t)
		if !ok {
			return malformed("unknown variant tag")
		}
		elem := newElem()
		if err := elem.Traverse(v); err != nil {
			return err
		}
		*tag = t
		*payload = elem
		return nil
	}

	t := *tag
	if err := v.Uint64(&t); err != nil {
		return err
	}
	if *payload == nil {
		return invalidUsage("Variant encode called with nil payload")
	}
	return (*payload).Traverse(v)
}
