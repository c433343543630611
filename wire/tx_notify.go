package wire

import (
	"auric/crypto"
	"auric/seria"
)

// NewTransactionsNotification announces transaction hashes the sender has
// just accepted into its mempool, so the receiver can request any it does
// not already have. Full transaction bodies are fetched separately through
// RPC rather than pushed unsolicited.
type NewTransactionsNotification struct {
	HashCacher

	TxHashes []crypto.Hash
}

var _ Message = (*NewTransactionsNotification)(nil)

func (n *NewTransactionsNotification) MsgType() MessageType {
	return MessageTypeNewTransactionsNotification
}

func (n *NewTransactionsNotification) Equals(other Message) bool {
	cast, ok := other.(*NewTransactionsNotification)
	if !ok || len(n.TxHashes) != len(cast.TxHashes) {
		return false
	}
	for i := range n.TxHashes {
		if n.TxHashes[i] != cast.TxHashes[i] {
			return false
		}
	}
	return true
}

func (n *NewTransactionsNotification) Traverse(v seria.Visitor) error {
	size := len(n.TxHashes)
	if err := v.BeginArray(&size, false); err != nil {
		return err
	}
	if v.IsInput() {
		n.TxHashes = make([]crypto.Hash, size)
	}
	for i := range n.TxHashes {
		if err := n.TxHashes[i].Traverse(v); err != nil {
			return err
		}
	}
	return v.EndArray()
}

func (n *NewTransactionsNotification) Hash() (crypto.Hash, error) {
	return n.HashCacher.Hash(n)
}
