package wire

import (
	"io"

	"auric/crypto"
	"auric/seria"

	"github.com/pkg/errors"
)

// Envelope is the outermost frame every peer-to-peer message travels in.
// Magic binds the envelope to one network; peers advertising a different
// magic are rejected before a single Message field is inspected.
type Envelope struct {
	Magic       uint32
	MessageType MessageType
	// Timestamp is Unix milliseconds, set once at construction and never
	// revised by relaying peers.
	Timestamp int64
	Message   Message
	Signature crypto.Signature
}

// NewEnvelope wraps message with the sender's signature over the envelope
// as it will be sent.
func NewEnvelope(magic uint32, timestampMS int64, message Message, signer crypto.Signer) (*Envelope, error) {
	envelope := &Envelope{
		Magic:       magic,
		MessageType: message.MsgType(),
		Timestamp:   timestampMS,
		Message:     message,
	}
	sig, err := signer.Sign(envelope)
	if err != nil {
		return nil, errors.Wrap(err, "error signing envelope")
	}
	envelope.Signature = sig
	return envelope, nil
}

// Encode writes the envelope to w in wire format.
func (e *Envelope) Encode(w io.Writer) error {
	return seria.Encode(w, e)
}

// Decode reads one envelope from r, bounding container and allocation
// sizes with the given limits. A peer connection should always pass a
// real Limits rather than seria.DefaultLimits, since r is untrusted.
func (e *Envelope) Decode(r io.Reader, limits seria.Limits) error {
	return seria.Decode(r, e, limits)
}

func (e *Envelope) Equals(other *Envelope) bool {
	return e.Magic == other.Magic &&
		e.MessageType == other.MessageType &&
		e.Timestamp == other.Timestamp &&
		e.Message.Equals(other.Message) &&
		e.Signature == other.Signature
}

// Traverse encodes/decodes the envelope. The message payload is carried as
// a length-prefixed byte string rather than inlined directly, so that
// decoding the envelope's framing never requires already knowing the
// message type — MessageType is read first and used only to pick which
// concrete Message.Traverse runs over the payload bytes just read.
func (e *Envelope) Traverse(v seria.Visitor) error {
	if err := v.Uint32(&e.Magic); err != nil {
		return err
	}
	msgType := uint16(e.MessageType)
	if err := v.Uint16(&msgType); err != nil {
		return err
	}
	e.MessageType = MessageType(msgType)
	if err := v.Int64(&e.Timestamp); err != nil {
		return err
	}

	if v.IsInput() {
		var payload []byte
		if err := v.Bytes(&payload); err != nil {
			return err
		}
		msg, ok := newMessageForType(e.MessageType)
		if !ok {
			return errors.Wrapf(seria.MalformedInput, "wire: unknown message type %d", e.MessageType)
		}
		if err := seria.DecodeFromBytes(payload, msg, v.Limits()); err != nil {
			return err
		}
		e.Message = msg
	} else {
		payload, err := seria.EncodeToBytes(e.Message)
		if err != nil {
			return err
		}
		if err := v.Bytes(&payload); err != nil {
			return err
		}
	}

	return e.Signature.Traverse(v)
}

// Hash is over the magic, type, timestamp and message payload only — the
// signature itself is never part of what it signs.
func (e *Envelope) Hash() (crypto.Hash, error) {
	payload, err := seria.EncodeToBytes(e.Message)
	if err != nil {
		return crypto.ZeroHash, err
	}
	signed := &signedPortion{
		Magic:     e.Magic,
		MsgType:   uint16(e.MessageType),
		Timestamp: e.Timestamp,
		Payload:   payload,
	}
	buf, err := seria.EncodeToBytes(signed)
	if err != nil {
		return crypto.ZeroHash, err
	}
	return crypto.Blake2B256(buf), nil
}

type signedPortion struct {
	Magic     uint32
	MsgType   uint16
	Timestamp int64
	Payload   []byte
}

func (s *signedPortion) Traverse(v seria.Visitor) error {
	if err := v.Uint32(&s.Magic); err != nil {
		return err
	}
	if err := v.Uint16(&s.MsgType); err != nil {
		return err
	}
	if err := v.Int64(&s.Timestamp); err != nil {
		return err
	}
	return v.Bytes(&s.Payload)
}
