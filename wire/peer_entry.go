package wire

import (
	"net"

	"auric/crypto"
	"auric/seria"
)

// PeerEntry is the address-book record exchanged during peer discovery:
// one entry per known node, carried inside PeerListResponse. The store
// package persists peers as its own store.Peer records, not as PeerEntry.
type PeerEntry struct {
	ID       crypto.Hash
	IP       [16]byte // IPv4 addresses are stored IPv4-in-IPv6 mapped
	Port     uint16
	LastSeen int64 // Unix milliseconds
}

func NewPeerEntry(id crypto.Hash, ip net.IP, port uint16, lastSeen int64) PeerEntry {
	var raw [16]byte
	copy(raw[:], ip.To16())
	return PeerEntry{ID: id, IP: raw, Port: port, LastSeen: lastSeen}
}

func (p PeerEntry) NetIP() net.IP {
	return net.IP(p.IP[:])
}

func (p *PeerEntry) Traverse(v seria.Visitor) error {
	if err := p.ID.Traverse(v); err != nil {
		return err
	}
	if err := v.Binary(p.IP[:]); err != nil {
		return err
	}
	if err := v.Uint16(&p.Port); err != nil {
		return err
	}
	return v.Int64(&p.LastSeen)
}

// PeerListRequest asks a peer for a sample of its address book. It carries
// no fields; the responder decides the sample size and composition.
type PeerListRequest struct {
	HashCacher
}

var _ Message = (*PeerListRequest)(nil)

func (p *PeerListRequest) MsgType() MessageType { return MessageTypePeerListRequest }

func (p *PeerListRequest) Equals(other Message) bool {
	_, ok := other.(*PeerListRequest)
	return ok
}

func (p *PeerListRequest) Traverse(v seria.Visitor) error { return nil }

func (p *PeerListRequest) Hash() (crypto.Hash, error) {
	return p.HashCacher.Hash(p)
}

type PeerListResponse struct {
	HashCacher

	Peers []PeerEntry
}

var _ Message = (*PeerListResponse)(nil)

func (p *PeerListResponse) MsgType() MessageType { return MessageTypePeerListResponse }

func (p *PeerListResponse) Equals(other Message) bool {
	cast, ok := other.(*PeerListResponse)
	if !ok || len(p.Peers) != len(cast.Peers) {
		return false
	}
	for i := range p.Peers {
		if p.Peers[i] != cast.Peers[i] {
			return false
		}
	}
	return true
}

func (p *PeerListResponse) Traverse(v seria.Visitor) error {
	size := len(p.Peers)
	if err := v.BeginArray(&size, false); err != nil {
		return err
	}
	if v.IsInput() {
		p.Peers = make([]PeerEntry, size)
	}
	for i := range p.Peers {
		if err := p.Peers[i].Traverse(v); err != nil {
			return err
		}
	}
	return v.EndArray()
}

func (p *PeerListResponse) Hash() (crypto.Hash, error) {
	return p.HashCacher.Hash(p)
}
