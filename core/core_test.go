package core

import (
	"testing"

	"auric/seria"

	"github.com/stretchr/testify/require"
)

func TestTransactionRoundTrip(t *testing.T) {
	tx := &Transaction{
		Version:    1,
		UnlockTime: 0,
		Vin: []TransactionInput{
			NewToKeyInput(1000, []uint64{5, 10, 2}, KeyImage{1, 2, 3}),
		},
		Vout: []TransactionOutput{
			{Amount: 500, Target: NewToKeyTarget(PublicKey{9, 9})},
			{Amount: 500, Target: NewToKeyTarget(PublicKey{8, 8})},
		},
		Extra: []byte{0x01, 0x02, 0x03},
	}
	tx.Signatures = [][]Signature{
		make([]Signature, tx.Vin[0].RingSize()+1),
	}

	buf, err := seria.EncodeToBytes(tx)
	require.NoError(t, err)

	out := &Transaction{}
	require.NoError(t, seria.DecodeFromBytes(buf, out, seria.DefaultLimits))
	require.Equal(t, tx, out)
	require.NoError(t, tx.Validate())

	id, err := tx.ID()
	require.NoError(t, err)
	require.NotEqual(t, ZeroHash, id)

	idAgain, err := out.ID()
	require.NoError(t, err)
	require.Equal(t, id, idAgain)
}

func TestCoinbaseTransactionRoundTrip(t *testing.T) {
	tx := &Transaction{
		Version: 1,
		Vin:     []TransactionInput{NewGenInput(42)},
		Vout: []TransactionOutput{
			{Amount: 5000000, Target: NewToKeyTarget(PublicKey{1})},
		},
		Signatures: [][]Signature{{}},
	}

	buf, err := seria.EncodeToBytes(tx)
	require.NoError(t, err)

	out := &Transaction{}
	require.NoError(t, seria.DecodeFromBytes(buf, out, seria.DefaultLimits))
	require.Equal(t, tx, out)
	require.True(t, out.IsCoinbase())
	require.NoError(t, out.Validate())
}

func TestTransactionValidateRejectsMisplacedGen(t *testing.T) {
	tx := &Transaction{
		Vin: []TransactionInput{
			NewToKeyInput(1, []uint64{1}, KeyImage{}),
			NewGenInput(1),
		},
		Signatures: [][]Signature{{{}, {}}, {}},
	}
	require.Error(t, tx.Validate())
}

func TestBlockRoundTrip(t *testing.T) {
	block := &Block{
		Header: BlockHeader{
			MajorVersion: 1,
			MinorVersion: 0,
			Timestamp:    1700000000,
			PrevID:       Hash{0xaa},
			Nonce:        0xdeadbeef,
		},
		MinerTx: Transaction{
			Version:    1,
			Vin:        []TransactionInput{NewGenInput(10)},
			Vout:       []TransactionOutput{{Amount: 1, Target: NewToKeyTarget(PublicKey{1})}},
			Signatures: [][]Signature{{}},
		},
		TxHashes: []Hash{{1}, {2}, {3}},
	}

	buf, err := seria.EncodeToBytes(block)
	require.NoError(t, err)

	out := &Block{}
	require.NoError(t, seria.DecodeFromBytes(buf, out, seria.DefaultLimits))
	require.Equal(t, block, out)

	id1, err := block.ID()
	require.NoError(t, err)
	id2, err := out.ID()
	require.NoError(t, err)
	require.Equal(t, id1, id2)
}

func TestBlockHeaderNonceIsFixedFourBytes(t *testing.T) {
	h := &BlockHeader{Nonce: 1}
	buf, err := seria.EncodeToBytes(h)
	require.NoError(t, err)
	// MajorVersion(1) + MinorVersion(1) + Timestamp varint(1) +
	// PrevID(32) + Nonce(4, fixed) = 39 bytes.
	require.Len(t, buf, 39)
}

func TestOutputTargetRejectsUnknownTag(t *testing.T) {
	var target OutputTarget
	// hand-craft a payload with an unregistered tag (5)
	raw := []byte{0x05}
	err := seria.DecodeFromBytes(raw, &target, seria.DefaultLimits)
	require.ErrorIs(t, err, seria.MalformedInput)
}
