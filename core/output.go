package core

import "auric/seria"

const (
	outputTargetTagToKey        = 2
	outputTargetTagToScriptHash = 3
)

// ToKeyTarget sends an output to a one-time public key derivable only by
// the intended recipient's private keys — the overwhelming common case.
type ToKeyTarget struct {
	Key PublicKey
}

func (t *ToKeyTarget) Traverse(v seria.Visitor) error { return t.Key.Traverse(v) }

// ToScriptHashTarget is a stub payload for a script-gated output; no
// script interpreter exists in this node, so such outputs decode but can
// never be validated as spendable.
type ToScriptHashTarget struct {
	Hash Hash
}

func (t *ToScriptHashTarget) Traverse(v seria.Visitor) error { return t.Hash.Traverse(v) }

// OutputTarget is the closed tagged-variant destination of a
// TransactionOutput.
type OutputTarget struct {
	Tag     uint64
	Payload seria.Traversable
}

func NewToKeyTarget(key PublicKey) OutputTarget {
	return OutputTarget{Tag: outputTargetTagToKey, Payload: &ToKeyTarget{Key: key}}
}

func NewToScriptHashTarget(hash Hash) OutputTarget {
	return OutputTarget{Tag: outputTargetTagToScriptHash, Payload: &ToScriptHashTarget{Hash: hash}}
}

func (t *OutputTarget) Traverse(v seria.Visitor) error {
	return seria.Variant(v, &t.Tag, &t.Payload, func(tag uint64) (func() seria.Traversable, bool) {
		switch tag {
		case outputTargetTagToKey:
			return func() seria.Traversable { return &ToKeyTarget{} }, true
		case outputTargetTagToScriptHash:
			return func() seria.Traversable { return &ToScriptHashTarget{} }, true
		default:
			return nil, false
		}
	})
}

// TransactionOutput is one spendable output of a transaction.
type TransactionOutput struct {
	Amount uint64
	Target OutputTarget
}

func (o *TransactionOutput) Traverse(v seria.Visitor) error {
	if err := v.Uint64(&o.Amount); err != nil {
		return err
	}
	return o.Target.Traverse(v)
}
