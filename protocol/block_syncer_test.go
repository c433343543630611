package protocol

import (
	"testing"
	"time"

	"auric/chainfile"
	"auric/core"
	"auric/crypto"
	"auric/p2p"
	"auric/seria"
	"auric/store"
	"auric/testutil"
	"auric/testutil/mockapp"
	"auric/testutil/testcrypto"
	"auric/util"
	"auric/wire"

	"github.com/stretchr/testify/require"
	"github.com/syndtr/goleveldb/leveldb"
)

func testChainBlock(nonce uint32, prevID core.Hash) *core.Block {
	minerTx := core.Transaction{
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
			Timestamp:    1700000000,
			PrevID:       prevID,
			Nonce:        nonce,
		},
		MinerTx: minerTx,
	}
}

func seedChain(t *testing.T, db *leveldb.DB, cf *chainfile.ChainFile, n int) []core.Hash {
	var ids []core.Hash
	prev := core.ZeroHash
	for i := 0; i < n; i++ {
		block := testChainBlock(uint32(i+1), prev)
		id, err := block.ID()
		require.NoError(t, err)

		rec, err := cf.AppendBlock(uint64(i), block)
		require.NoError(t, err)

		require.NoError(t, store.WithTx(db, func(tx *leveldb.Transaction) error {
			return store.SetBlockIndexEntryTx(tx, &store.BlockIndexEntry{
				Height:     rec.Height,
				ID:         rec.ID,
				PrevID:     rec.PrevID,
				Timestamp:  time.Unix(int64(rec.Timestamp), 0),
				FileOffset: rec.Offset,
				FileLength: rec.Length,
				ReceivedAt: time.Now(),
			})
		}))

		ids = append(ids, id)
		prev = id
	}
	return ids
}

func setupSyncerDB(t *testing.T) (*leveldb.DB, func()) {
	return mockapp.CreateTestDB(t)
}

func TestBlockSyncer_HandleGetBlocksRequest(t *testing.T) {
	db, doneDB := setupSyncerDB(t)
	defer doneDB()

	cf, err := chainfile.Open(t.TempDir())
	require.NoError(t, err)
	defer cf.Close()

	ids := seedChain(t, db, cf, 2)

	mux := p2p.NewPeerMuxer(testutil.TestMagic, testcrypto.FixedSigner(t))
	peerID := fixedPeerID(t)
	clientConn, serverConn := testutil.NewTCPConn(t)
	peer := p2p.NewPeer(p2p.Outbound, serverConn)
	require.NoError(t, mux.AddPeer(peerID, peer))

	bs := NewBlockSyncer(mux, db, cf, util.NewMultiLocker(), func(*core.Block) error { return nil })
	require.NoError(t, bs.Start())

	testutil.SendMessage(t, clientConn, &wire.GetBlocksRequest{Locator: []crypto.Hash{crypto.Hash(ids[0])}})

	envelope := testutil.ReceiveEnvelope(t, clientConn)
	require.Equal(t, wire.MessageTypeGetBlocksResponse, envelope.MessageType)
	resp := envelope.Message.(*wire.GetBlocksResponse)
	require.Len(t, resp.Blocks, 1)

	got := new(core.Block)
	require.NoError(t, seria.DecodeFromBytes(resp.Blocks[0], got, seria.DefaultLimits))
	gotID, err := got.ID()
	require.NoError(t, err)
	require.Equal(t, ids[1], gotID)
}

func TestBlockSyncer_HandleGetBlocksResponse(t *testing.T) {
	db, doneDB := setupSyncerDB(t)
	defer doneDB()

	cf, err := chainfile.Open(t.TempDir())
	require.NoError(t, err)
	defer cf.Close()

	mux := p2p.NewPeerMuxer(testutil.TestMagic, testcrypto.FixedSigner(t))
	peerID := fixedPeerID(t)
	clientConn, serverConn := testutil.NewTCPConn(t)
	peer := p2p.NewPeer(p2p.Outbound, serverConn)
	require.NoError(t, mux.AddPeer(peerID, peer))

	var applied []*core.Block
	bs := NewBlockSyncer(mux, db, cf, util.NewMultiLocker(), func(b *core.Block) error {
		applied = append(applied, b)
		return nil
	})
	require.NoError(t, bs.Start())
	bs.requestNext(peerID)
	testutil.ReceiveEnvelope(t, clientConn) // drain the initial request

	block := testChainBlock(9, core.ZeroHash)
	buf, err := seria.EncodeToBytes(block)
	require.NoError(t, err)

	testutil.SendMessage(t, clientConn, &wire.GetBlocksResponse{Blocks: [][]byte{buf}})
	testutil.ReceiveEnvelope(t, clientConn) // the syncer immediately re-requests more blocks

	require.Len(t, applied, 1)
	appliedID, err := applied[0].ID()
	require.NoError(t, err)
	blockID, err := block.ID()
	require.NoError(t, err)
	require.Equal(t, blockID, appliedID)
}
