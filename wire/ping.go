package wire

import (
	"auric/crypto"
	"auric/seria"
)

// Ping/Pong keep a connection alive and let each side measure round-trip
// time; Nonce lets a Pong be matched to the Ping that triggered it.
type Ping struct {
	HashCacher

	Nonce uint64
}

var _ Message = (*Ping)(nil)

func NewPing(nonce uint64) *Ping {
	return &Ping{Nonce: nonce}
}

func (p *Ping) MsgType() MessageType { return MessageTypePing }

func (p *Ping) Equals(other Message) bool {
	cast, ok := other.(*Ping)
	return ok && p.Nonce == cast.Nonce
}

func (p *Ping) Traverse(v seria.Visitor) error {
	return v.Uint64(&p.Nonce)
}

func (p *Ping) Hash() (crypto.Hash, error) {
	return p.HashCacher.Hash(p)
}

type Pong struct {
	HashCacher

	Nonce uint64
}

var _ Message = (*Pong)(nil)

func NewPong(nonce uint64) *Pong {
	return &Pong{Nonce: nonce}
}

func (p *Pong) MsgType() MessageType { return MessageTypePong }

func (p *Pong) Equals(other Message) bool {
	cast, ok := other.(*Pong)
	return ok && p.Nonce == cast.Nonce
}

func (p *Pong) Traverse(v seria.Visitor) error {
	return v.Uint64(&p.Nonce)
}

func (p *Pong) Hash() (crypto.Hash, error) {
	return p.HashCacher.Hash(p)
}
