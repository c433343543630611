package core

import (
	"encoding/binary"

	"auric/seria"
)

// BlockHeader carries the fields a miner searches over plus the chain
// linkage. Nonce is the one field in this entire codec that is NOT
// varint-encoded: it is a raw 4-byte little-endian integer, matching the
// reference CryptoNote header exactly, because a miner increments it
// billions of times a second and a fixed-width field means every attempt
// costs the same four bytes instead of occasionally growing a byte when
// the count crosses a varint boundary.
type BlockHeader struct {
	MajorVersion uint8
	MinorVersion uint8
	Timestamp    uint64
	PrevID       Hash
	Nonce        uint32
}

func (h *BlockHeader) Traverse(v seria.Visitor) error {
	if err := v.Uint8(&h.MajorVersion); err != nil {
		return err
	}
	if err := v.Uint8(&h.MinorVersion); err != nil {
		return err
	}
	if err := v.Uint64(&h.Timestamp); err != nil {
		return err
	}
	if err := h.PrevID.Traverse(v); err != nil {
		return err
	}

	var buf [4]byte
	if !v.IsInput() {
		binary.LittleEndian.PutUint32(buf[:], h.Nonce)
	}
	if err := v.Binary(buf[:]); err != nil {
		return err
	}
	if v.IsInput() {
		h.Nonce = binary.LittleEndian.Uint32(buf[:])
	}
	return nil
}

// Block is one link of the chain: a header, the coinbase transaction that
// pays the miner, and the hashes of every other transaction the block
// includes. Those other transactions travel separately (in the mempool,
// in GetBlocksResponse bodies, or in the block-file transaction index);
// Block itself only commits to their identities.
type Block struct {
	Header   BlockHeader
	MinerTx  Transaction
	TxHashes []Hash
}

func (b *Block) Traverse(v seria.Visitor) error {
	if err := b.Header.Traverse(v); err != nil {
		return err
	}
	if err := b.MinerTx.Traverse(v); err != nil {
		return err
	}

	size := len(b.TxHashes)
	if err := v.BeginArray(&size, false); err != nil {
		return err
	}
	if v.IsInput() {
		b.TxHashes = nil
		if size > 0 {
			b.TxHashes = make([]Hash, size)
		}
	}
	for i := range b.TxHashes {
		if err := b.TxHashes[i].Traverse(v); err != nil {
			return err
		}
	}
	return v.EndArray()
}

// ID is the block's identity hash: the encoding of its header and miner
// transaction and tx-hash list, hashed. Changing any field changes ID.
func (b *Block) ID() (Hash, error) {
	buf, err := seria.EncodeToBytes(b)
	if err != nil {
		return ZeroHash, err
	}
	return Blake2B256(buf), nil
}
