package rpc

import (
	"encoding/hex"
	"encoding/json"
	"net"
	"testing"

	"auric/chainfile"
	"auric/core"
	"auric/crypto"
	"auric/p2p"
	"auric/seria"
	"auric/store"
	"auric/testutil/testcrypto"
	"auric/testutil/testfs"

	"github.com/stretchr/testify/require"
)

type fakePeerManager struct {
	dialed []string
}

func (f *fakePeerManager) Start() error { return nil }
func (f *fakePeerManager) Stop() error  { return nil }
func (f *fakePeerManager) DialPeer(id crypto.Hash, ip string, verify bool) error {
	f.dialed = append(f.dialed, ip)
	return nil
}
func (f *fakePeerManager) AcceptPeer(conn *net.TCPConn) error { return nil }

var _ p2p.PeerManager = (*fakePeerManager)(nil)

func setupMethods(t *testing.T) (*methods, func()) {
	dbDir, doneDB := testfs.NewTempDir(t)
	db, err := store.Open(dbDir)
	require.NoError(t, err)

	chainDir, doneChain := testfs.NewTempDir(t)
	cf, err := chainfile.Open(chainDir)
	require.NoError(t, err)

	signer := testcrypto.NewRandomSigner()
	mux := p2p.NewPeerMuxer(0, signer)

	m := newMethods(&Opts{
		PeerID:      crypto.Hash{1, 2, 3},
		Mux:         mux,
		PeerManager: &fakePeerManager{},
		DB:          db,
		ChainFile:   cf,
	})

	return m, func() {
		require.NoError(t, db.Close())
		require.NoError(t, cf.Close())
		doneDB()
		doneChain()
	}
}

func TestMethods_GetHeight(t *testing.T) {
	m, done := setupMethods(t)
	defer done()

	res, err := m.GetHeight(nil)
	require.NoError(t, err)
	require.Equal(t, uint64(0), res.(*getHeightResult).Height)
}

func TestMethods_SendAndGetTransactions(t *testing.T) {
	m, done := setupMethods(t)
	defer done()

	tx := &core.Transaction{
		Version:    1,
		Vin:        []core.TransactionInput{core.NewToKeyInput(1, []uint64{1}, core.KeyImage{9})},
		Vout:       []core.TransactionOutput{{Amount: 1, Target: core.NewToKeyTarget(core.PublicKey{2})}},
		Signatures: [][]core.Signature{make([]core.Signature, 2)},
	}
	buf, err := seria.EncodeToBytes(tx)
	require.NoError(t, err)

	params, err := json.Marshal(sendRawTransactionParams{TxAsHex: hex.EncodeToString(buf)})
	require.NoError(t, err)

	res, err := m.SendRawTransaction(params)
	require.NoError(t, err)
	sent := res.(*sendRawTransactionResult)
	require.Equal(t, "OK", sent.Status)

	getParams, err := json.Marshal(getTransactionsParams{TxHashes: []string{sent.TxID}})
	require.NoError(t, err)
	got, err := m.GetTransactions(getParams)
	require.NoError(t, err)
	gotRes := got.(*getTransactionsResult)
	require.Len(t, gotRes.Txs, 1)
	require.Empty(t, gotRes.Missing)
	require.Equal(t, hex.EncodeToString(buf), gotRes.Txs[0])
}

func TestMethods_BanUnbanListPeers(t *testing.T) {
	m, done := setupMethods(t)
	defer done()

	require.NoError(t, store.SetPeer(m.opts.DB, crypto.Hash{4}, "1.2.3.4", false))

	banParams, err := json.Marshal(banPeerParams{IP: "1.2.3.4", DurationMS: 60000})
	require.NoError(t, err)
	_, err = m.BanPeer(banParams)
	require.NoError(t, err)

	listed, err := m.ListPeers(nil)
	require.NoError(t, err)
	peers := listed.(*listPeersResult).Peers
	require.Len(t, peers, 1)
	require.True(t, peers[0].Banned)

	unbanParams, err := json.Marshal(unbanPeerParams{IP: "1.2.3.4"})
	require.NoError(t, err)
	_, err = m.UnbanPeer(unbanParams)
	require.NoError(t, err)

	listed, err = m.ListPeers(nil)
	require.NoError(t, err)
	peers = listed.(*listPeersResult).Peers
	require.Len(t, peers, 1)
	require.False(t, peers[0].Banned)
}

func TestMethods_AddPeer(t *testing.T) {
	m, done := setupMethods(t)
	defer done()

	params, err := json.Marshal(addPeerParams{IP: "5.6.7.8", VerifyPeerID: false})
	require.NoError(t, err)
	_, err = m.AddPeer(params)
	require.NoError(t, err)

	fake := m.opts.PeerManager.(*fakePeerManager)
	require.Equal(t, []string{"5.6.7.8"}, fake.dialed)
}
