package core

import (
	"auric/seria"

	"github.com/pkg/errors"
)

// Transaction moves value from a set of spent inputs to a set of new
// outputs. A transaction with exactly one GenInput at Vin[0] and no other
// inputs is a coinbase (miner reward) transaction and may only appear as
// Block.MinerTx.
type Transaction struct {
	Version    uint64
	UnlockTime uint64
	Vin        []TransactionInput
	Vout       []TransactionOutput
	Extra      []byte
	// Signatures holds one ring per entry of Vin, in the same order. A
	// GenInput's ring is always empty; a ToKeyInput's ring has
	// len(KeyOffsets)+1 entries, one per ring member including the real
	// output being spent.
	Signatures [][]Signature
}

// Traverse is written out explicitly, rather than composed from the
// generic container adapters, because the length of each entry of
// Signatures depends on the corresponding entry of Vin that was just
// traversed — a fixed-size blob whose length comes from a sibling field
// rather than a compile-time constant.
func (t *Transaction) Traverse(v seria.Visitor) error {
	if err := v.Uint64(&t.Version); err != nil {
		return err
	}
	if err := v.Uint64(&t.UnlockTime); err != nil {
		return err
	}

	vinSize := len(t.Vin)
	if err := v.BeginArray(&vinSize, false); err != nil {
		return err
	}
	if v.IsInput() {
		t.Vin = make([]TransactionInput, vinSize)
	}
	for i := range t.Vin {
		if err := t.Vin[i].Traverse(v); err != nil {
			return err
		}
	}
	if err := v.EndArray(); err != nil {
		return err
	}

	voutSize := len(t.Vout)
	if err := v.BeginArray(&voutSize, false); err != nil {
		return err
	}
	if v.IsInput() {
		t.Vout = make([]TransactionOutput, voutSize)
	}
	for i := range t.Vout {
		if err := t.Vout[i].Traverse(v); err != nil {
			return err
		}
	}
	if err := v.EndArray(); err != nil {
		return err
	}

	if err := v.Bytes(&t.Extra); err != nil {
		return err
	}

	if v.IsInput() {
		t.Signatures = make([][]Signature, len(t.Vin))
	}
	for i := range t.Vin {
		ringSize := t.Vin[i].RingSize()
		if ringSize > 0 {
			ringSize++ // the real output, beyond the decoys in KeyOffsets
		}
		fixedSize := ringSize
		if err := v.BeginArray(&fixedSize, true); err != nil {
			return err
		}
		if v.IsInput() {
			t.Signatures[i] = make([]Signature, ringSize)
		}
		for j := range t.Signatures[i] {
			if err := t.Signatures[i][j].Traverse(v); err != nil {
				return err
			}
		}
		if err := v.EndArray(); err != nil {
			return err
		}
	}

	return nil
}

// Validate checks the structural invariants the codec itself does not and
// cannot enforce: these are judgments about the value, not about whether
// its bytes round-trip.
func (t *Transaction) Validate() error {
	if len(t.Vin) == 0 {
		return errors.New("transaction has no inputs")
	}

	genCount := 0
	for i, in := range t.Vin {
		if in.IsGen() {
			genCount++
			if i != 0 {
				return errors.New("gen input must be vin[0]")
			}
		}
	}
	if genCount > 1 {
		return errors.New("transaction has more than one gen input")
	}
	if genCount == 1 && len(t.Vin) > 1 {
		return errors.New("coinbase transaction must have exactly one input")
	}
	if len(t.Signatures) != len(t.Vin) {
		return errors.New("signature count does not match input count")
	}
	for i, in := range t.Vin {
		want := in.RingSize()
		if want > 0 {
			want++
		}
		if len(t.Signatures[i]) != want {
			return errors.Errorf("input %d expects a ring of %d signatures, got %d", i, want, len(t.Signatures[i]))
		}
	}
	return nil
}

// IsCoinbase reports whether this is a miner reward transaction.
func (t *Transaction) IsCoinbase() bool {
	return len(t.Vin) == 1 && t.Vin[0].IsGen()
}

// ID is the transaction's identity hash: its encoding, hashed. Changing
// any field, including a signature, changes ID.
func (t *Transaction) ID() (Hash, error) {
	buf, err := seria.EncodeToBytes(t)
	if err != nil {
		return ZeroHash, err
	}
	return Blake2B256(buf), nil
}
