package wire

import (
	"auric/crypto"
	"auric/seria"

	"github.com/btcsuite/btcd/btcec"
	"github.com/pkg/errors"
)

// Handshake is the first message sent on a new connection, in both
// directions. The receiving side echoes Nonce in its HandshakeAck, and the
// accepting side checks that echo against the Nonce it sent.
type Handshake struct {
	HashCacher

	ProtocolVersion uint32
	Nonce           uint64
	Height          uint64
	PublicKey       *btcec.PublicKey
	UserAgent       string
}

var _ Message = (*Handshake)(nil)

func (h *Handshake) MsgType() MessageType { return MessageTypeHandshake }

func (h *Handshake) Equals(other Message) bool {
	cast, ok := other.(*Handshake)
	if !ok {
		return false
	}
	return h.ProtocolVersion == cast.ProtocolVersion &&
		h.Nonce == cast.Nonce &&
		h.Height == cast.Height &&
		h.PublicKey.IsEqual(cast.PublicKey) &&
		h.UserAgent == cast.UserAgent
}

func (h *Handshake) Traverse(v seria.Visitor) error {
	if err := v.Uint32(&h.ProtocolVersion); err != nil {
		return err
	}
	if err := v.Uint64(&h.Nonce); err != nil {
		return err
	}
	if err := v.Uint64(&h.Height); err != nil {
		return err
	}
	var pub [33]byte
	if !v.IsInput() {
		copy(pub[:], h.PublicKey.SerializeCompressed())
	}
	if err := v.Binary(pub[:]); err != nil {
		return err
	}
	if v.IsInput() {
		key, err := btcec.ParsePubKey(pub[:], btcec.S256())
		if err != nil {
			return malformedHandshakeKey(err)
		}
		h.PublicKey = key
	}
	return v.String(&h.UserAgent)
}

func (h *Handshake) Hash() (crypto.Hash, error) {
	return h.HashCacher.Hash(h)
}

// HandshakeAck closes the handshake by echoing the peer's nonce back, so
// the original sender can match the ack to its Handshake.
type HandshakeAck struct {
	HashCacher

	Nonce  uint64
	Height uint64
}

var _ Message = (*HandshakeAck)(nil)

func (h *HandshakeAck) MsgType() MessageType { return MessageTypeHandshakeAck }

func (h *HandshakeAck) Equals(other Message) bool {
	cast, ok := other.(*HandshakeAck)
	if !ok {
		return false
	}
	return h.Nonce == cast.Nonce && h.Height == cast.Height
}

func (h *HandshakeAck) Traverse(v seria.Visitor) error {
	if err := v.Uint64(&h.Nonce); err != nil {
		return err
	}
	return v.Uint64(&h.Height)
}

func (h *HandshakeAck) Hash() (crypto.Hash, error) {
	return h.HashCacher.Hash(h)
}

func malformedHandshakeKey(cause error) error {
	return errors.Wrap(seria.MalformedInput, cause.Error())
}
