package chainfile

import (
	"testing"

	"auric/core"
	"auric/seria"

	"github.com/stretchr/testify/require"
)

func testBlock(t *testing.T, nonce uint32, prevID core.Hash) *core.Block {
	minerTx := &core.Transaction{
		Version: 1,
		Vin:     []core.TransactionInput{core.NewGenInput(1)},
		Vout: []core.TransactionOutput{
			{Amount: 5000000, Target: core.NewToKeyTarget(core.PublicKey{1})},
		},
		Signatures: [][]core.Signature{{}},
	}
	return &core.Block{
		Header: core.BlockHeader{
			MajorVersion: 1,
			MinorVersion: 0,
			Timestamp:    1700000000,
			PrevID:       prevID,
			Nonce:        nonce,
		},
		MinerTx:  *minerTx,
		TxHashes: nil,
	}
}

func TestChainFile_AppendAndRead(t *testing.T) {
	dir := t.TempDir()
	cf, err := Open(dir)
	require.NoError(t, err)
	defer cf.Close()

	b0 := testBlock(t, 1, core.ZeroHash)
	id0, err := b0.ID()
	require.NoError(t, err)

	rec0, err := cf.AppendBlock(0, b0)
	require.NoError(t, err)
	require.Equal(t, uint64(0), rec0.Height)
	require.Equal(t, id0, rec0.ID)
	require.Equal(t, uint64(0), rec0.Offset)

	b1 := testBlock(t, 2, id0)
	rec1, err := cf.AppendBlock(1, b1)
	require.NoError(t, err)
	require.Equal(t, uint64(1), rec1.Height)
	require.True(t, rec1.Offset > rec0.Offset)

	out0, err := cf.ReadBlock(0, seria.DefaultLimits)
	require.NoError(t, err)
	require.Equal(t, b0, out0)

	out1, err := cf.ReadBlock(1, seria.DefaultLimits)
	require.NoError(t, err)
	require.Equal(t, b1, out1)
}

func TestChainFile_ReopenPreservesData(t *testing.T) {
	dir := t.TempDir()
	cf, err := Open(dir)
	require.NoError(t, err)

	b0 := testBlock(t, 7, core.ZeroHash)
	_, err = cf.AppendBlock(0, b0)
	require.NoError(t, err)
	require.NoError(t, cf.Close())

	reopened, err := Open(dir)
	require.NoError(t, err)
	defer reopened.Close()

	out, err := reopened.ReadBlock(0, seria.DefaultLimits)
	require.NoError(t, err)
	require.Equal(t, b0, out)

	count, err := reopened.Indexes.Count()
	require.NoError(t, err)
	require.Equal(t, uint64(1), count)
}
