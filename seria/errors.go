package seria

import "github.com/pkg/errors"

// MalformedInput is returned when a decoder rejects bytes that do not form
// a valid encoding of the requested type: a bad bool byte, a non-minimal
// varint, an unknown variant tag, a container whose count exceeds its
// configured Limits.
var MalformedInput = errors.New("seria: malformed input")

// UnexpectedEnd is returned when a decoder runs out of input in the middle
// of a field it has already committed to reading.
var UnexpectedEnd = errors.New("seria: unexpected end of input")

// OutOfSpace is returned by a bounded OutputByteSink when an encode would
// write past the sink's capacity.
var OutOfSpace = errors.New("seria: out of space")

// InvalidUsage is returned when the caller, not the wire data, is at fault:
// a nil size pointer passed to BeginArray/BeginMap, a negative size on
// encode, an Optional marked present with a nil value, or a Variant with a
// nil payload. Begin/End nesting is not tracked, so mismatched or
// out-of-scope Begin/End calls are not reported.
var InvalidUsage = errors.New("seria: invalid usage")

func malformed(msg string) error {
	return errors.Wrap(MalformedInput, msg)
}

func unexpectedEnd(msg string) error {
	return errors.Wrap(UnexpectedEnd, msg)
}

func outOfSpace(msg string) error {
	return errors.Wrap(OutOfSpace, msg)
}

func invalidUsage(msg string) error {
	return errors.Wrap(InvalidUsage, msg)
}
