package store

import (
	"testing"

	"auric/core"

	"github.com/stretchr/testify/require"
)

func testMempoolTx(nonce uint64) *core.Transaction {
	return &core.Transaction{
		Version: 1,
		Vin:     []core.TransactionInput{core.NewToKeyInput(nonce, []uint64{1, 2}, core.KeyImage{byte(nonce)})},
		Vout: []core.TransactionOutput{
			{Amount: nonce, Target: core.NewToKeyTarget(core.PublicKey{byte(nonce)})},
		},
		Signatures: [][]core.Signature{make([]core.Signature, 3)},
	}
}

func TestMempool_SetGetDelete(t *testing.T) {
	db, done := setupLevelDB(t)
	defer done()

	tx := testMempoolTx(1)
	id, err := tx.ID()
	require.NoError(t, err)

	entry, err := GetMempoolTx(db, id)
	require.NoError(t, err)
	require.Nil(t, entry)

	require.NoError(t, SetMempoolTx(db, id, tx))

	entry, err = GetMempoolTx(db, id)
	require.NoError(t, err)
	require.NotNil(t, entry)
	require.Equal(t, tx, entry.Tx)
	require.False(t, entry.ReceivedAt.IsZero())

	require.NoError(t, DeleteMempoolTx(db, id))
	entry, err = GetMempoolTx(db, id)
	require.NoError(t, err)
	require.Nil(t, entry)
}

func TestMempool_Stream(t *testing.T) {
	db, done := setupLevelDB(t)
	defer done()

	tx1 := testMempoolTx(1)
	id1, err := tx1.ID()
	require.NoError(t, err)
	require.NoError(t, SetMempoolTx(db, id1, tx1))

	tx2 := testMempoolTx(2)
	id2, err := tx2.ID()
	require.NoError(t, err)
	require.NoError(t, SetMempoolTx(db, id2, tx2))

	stream := StreamMempoolTxs(db)
	defer stream.Close()

	var seen []core.Hash
	for {
		entry, err := stream.Next()
		require.NoError(t, err)
		if entry == nil {
			break
		}
		txID, err := entry.Tx.ID()
		require.NoError(t, err)
		seen = append(seen, txID)
	}
	require.ElementsMatch(t, []core.Hash{id1, id2}, seen)
}
