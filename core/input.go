package core

import "auric/seria"

const (
	inputTagToKey = 2
	inputTagGen   = 0xff
)

// GenInput is the sole input of a coinbase (miner reward) transaction. It
// spends nothing; Height pins the reward to the block it was mined in so
// two coinbase transactions at different heights never collide.
type GenInput struct {
	Height uint64
}

func (g *GenInput) Traverse(v seria.Visitor) error { return v.Uint64(&g.Height) }

// ToKeyInput spends a prior output selected from a decoy ring. KeyOffsets
// are global output indices relative to the previous offset in the list
// (delta-encoded the same way the reference protocol does it, so small
// rings of nearby outputs stay compact on the wire); KeyImage is the
// double-spend tag for the real output being spent.
type ToKeyInput struct {
	Amount     uint64
	KeyOffsets []uint64
	KeyImage   KeyImage
}

func (t *ToKeyInput) Traverse(v seria.Visitor) error {
	if err := v.Uint64(&t.Amount); err != nil {
		return err
	}
	size := len(t.KeyOffsets)
	if err := v.BeginArray(&size, false); err != nil {
		return err
	}
	if v.IsInput() {
		t.KeyOffsets = make([]uint64, size)
	}
	for i := range t.KeyOffsets {
		if err := v.Uint64(&t.KeyOffsets[i]); err != nil {
			return err
		}
	}
	if err := v.EndArray(); err != nil {
		return err
	}
	return t.KeyImage.Traverse(v)
}

// TransactionInput is the closed tagged-variant source of spent value.
type TransactionInput struct {
	Tag     uint64
	Payload seria.Traversable
}

func NewGenInput(height uint64) TransactionInput {
	return TransactionInput{Tag: inputTagGen, Payload: &GenInput{Height: height}}
}

func NewToKeyInput(amount uint64, keyOffsets []uint64, keyImage KeyImage) TransactionInput {
	return TransactionInput{Tag: inputTagToKey, Payload: &ToKeyInput{
		Amount:     amount,
		KeyOffsets: keyOffsets,
		KeyImage:   keyImage,
	}}
}

func (i *TransactionInput) Traverse(v seria.Visitor) error {
	return seria.Variant(v, &i.Tag, &i.Payload, func(tag uint64) (func() seria.Traversable, bool) {
		switch tag {
		case inputTagGen:
			return func() seria.Traversable { return &GenInput{} }, true
		case inputTagToKey:
			return func() seria.Traversable { return &ToKeyInput{} }, true
		default:
			return nil, false
		}
	})
}

// IsGen reports whether this input is the coinbase input of a miner
// transaction.
func (i *TransactionInput) IsGen() bool { return i.Tag == inputTagGen }

// RingSize returns len(KeyOffsets) for a ToKeyInput, or 0 for a Gen
// input. Callers that need the full ring add one for the real output.
func (i *TransactionInput) RingSize() int {
	toKey, ok := i.Payload.(*ToKeyInput)
	if !ok {
		return 0
	}
	return len(toKey.KeyOffsets)
}
