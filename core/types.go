package core

import (
	"encoding/hex"

	"auric/seria"

	"golang.org/x/crypto/blake2b"
)

// Blake2B256 is the hash function used for block and transaction
// identity. It is kept local to core rather than shared with the
// node-identity crypto package, since consensus hashing and peer-identity
// signing are deliberately separate trust domains in this design.
func Blake2B256(data []byte) Hash {
	h, _ := blake2b.New256(nil)
	h.Write(data)
	sum := h.Sum(nil)
	var out Hash
	copy(out[:], sum)
	return out
}

// Hash identifies a block or transaction by its Blake2B256 digest.
type Hash [32]byte

var ZeroHash Hash

func (h Hash) String() string { return hex.EncodeToString(h[:]) }

func (h *Hash) Traverse(v seria.Visitor) error { return v.Binary(h[:]) }

// PublicKey is a point on the curve used for one-time transaction
// destinations and input key images, encoded compressed.
type PublicKey [32]byte

func (p PublicKey) String() string { return hex.EncodeToString(p[:]) }

func (p *PublicKey) Traverse(v seria.Visitor) error { return v.Binary(p[:]) }

// KeyImage tags the specific output an input spends, so that the same
// output can never be referenced by two valid transactions — the
// mechanism that makes double-spends detectable without a UTXO index.
type KeyImage [32]byte

func (k KeyImage) String() string { return hex.EncodeToString(k[:]) }

func (k *KeyImage) Traverse(v seria.Visitor) error { return v.Binary(k[:]) }

// Signature is one ring-signature component (c, r) pair.
type Signature [64]byte

func (s *Signature) Traverse(v seria.Visitor) error { return v.Binary(s[:]) }
