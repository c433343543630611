// Package core defines the consensus payload types — blocks, transactions,
// and their component values — and their seria traversals. The codec
// package guarantees these round-trip byte-exactly; it says nothing about
// whether a given value is a VALID block or transaction. That judgment
// belongs to Transaction.Validate and the chain-state package that applies
// these types against accumulated history.
package core
