package wire

import (
	"auric/crypto"
	"auric/seria"
)

// GetBlocksRequest asks a peer for the blocks it holds after the most
// recent hash in Locator that the peer itself recognizes as part of its
// chain, stopping at StopHash if given (the zero hash means no stop).
// Locator is expected to be sparse and ordered most-recent-first, in the
// Bitcoin block-locator style, so a responder can find the fork point in
// O(log n) comparisons instead of being sent the full chain of hashes.
type GetBlocksRequest struct {
	HashCacher

	Locator  []crypto.Hash
	StopHash crypto.Hash
}

var _ Message = (*GetBlocksRequest)(nil)

func (g *GetBlocksRequest) MsgType() MessageType { return MessageTypeGetBlocksRequest }

func (g *GetBlocksRequest) Equals(other Message) bool {
	cast, ok := other.(*GetBlocksRequest)
	if !ok || len(g.Locator) != len(cast.Locator) || g.StopHash != cast.StopHash {
		return false
	}
	for i := range g.Locator {
		if g.Locator[i] != cast.Locator[i] {
			return false
		}
	}
	return true
}

func (g *GetBlocksRequest) Traverse(v seria.Visitor) error {
	size := len(g.Locator)
	if err := v.BeginArray(&size, false); err != nil {
		return err
	}
	if v.IsInput() {
		g.Locator = make([]crypto.Hash, size)
	}
	for i := range g.Locator {
		if err := g.Locator[i].Traverse(v); err != nil {
			return err
		}
	}
	if err := v.EndArray(); err != nil {
		return err
	}
	return g.StopHash.Traverse(v)
}

func (g *GetBlocksRequest) Hash() (crypto.Hash, error) {
	return g.HashCacher.Hash(g)
}

// GetBlocksResponse carries a run of consecutive blocks, each as its own
// seria-encoded core.Block payload. The transport layer is free to
// compress the envelope this message travels in; the message itself
// carries the blocks uncompressed so it stays a plain Traversable.
type GetBlocksResponse struct {
	HashCacher

	Blocks [][]byte
}

var _ Message = (*GetBlocksResponse)(nil)

func (g *GetBlocksResponse) MsgType() MessageType { return MessageTypeGetBlocksResponse }

func (g *GetBlocksResponse) Equals(other Message) bool {
	cast, ok := other.(*GetBlocksResponse)
	if !ok || len(g.Blocks) != len(cast.Blocks) {
		return false
	}
	for i := range g.Blocks {
		if string(g.Blocks[i]) != string(cast.Blocks[i]) {
			return false
		}
	}
	return true
}

func (g *GetBlocksResponse) Traverse(v seria.Visitor) error {
	size := len(g.Blocks)
	if err := v.BeginArray(&size, false); err != nil {
		return err
	}
	if v.IsInput() {
		g.Blocks = make([][]byte, size)
	}
	for i := range g.Blocks {
		if err := v.Bytes(&g.Blocks[i]); err != nil {
			return err
		}
	}
	return v.EndArray()
}

func (g *GetBlocksResponse) Hash() (crypto.Hash, error) {
	return g.HashCacher.Hash(g)
}
