package protocol

import (
	"testing"
	"time"

	"auric/crypto"
	"auric/p2p"
	"auric/store"
	"auric/testutil/mockapp"
	"auric/wire"

	"github.com/stretchr/testify/require"
)

type fakeDialer struct {
	dialed chan crypto.Hash
}

func newFakeDialer() *fakeDialer {
	return &fakeDialer{dialed: make(chan crypto.Hash, 8)}
}

func (d *fakeDialer) DialPeer(id crypto.Hash, ip string, verify bool) error {
	d.dialed <- id
	return nil
}

// TestPeerExchanger_RequestAndResponse wires two real PeerMuxers together via
// mockapp and checks that a peer list request made against one side is
// answered from the other side's peer store, and that the addresses it
// returns get handed to the requesting side's dialer.
func TestPeerExchanger_RequestAndResponse(t *testing.T) {
	peers, done := mockapp.ConnectTestPeers(t)
	defer done()

	localDB, cleanLocal := mockapp.CreateTestDB(t)
	defer cleanLocal()
	remoteDB, cleanRemote := mockapp.CreateTestDB(t)
	defer cleanRemote()

	remotePeerID := crypto.HashPub(peers.RemoteSigner.Pub())
	localPeerID := crypto.HashPub(peers.LocalSigner.Pub())

	knownID := crypto.Hash{9}
	require.NoError(t, store.SetPeer(remoteDB, knownID, "203.0.113.5", false))

	dialer := newFakeDialer()
	localExchanger := NewPeerExchanger(dialer, peers.LocalMux, localDB)
	remoteExchanger := NewPeerExchanger(newFakeDialer(), peers.RemoteMux, remoteDB)
	remoteExchanger.MaxSentPeers = 10
	localExchanger.MaxReceivedPeers = 10

	peers.RemoteMux.AddMessageHandler(p2p.PeerMessageHandlerForType(wire.MessageTypePeerListRequest, remoteExchanger.handlePeerListRequest))
	peers.LocalMux.AddMessageHandler(p2p.PeerMessageHandlerForType(wire.MessageTypePeerListResponse, localExchanger.handlePeerListResponse))

	localExchanger.pendingRequests.Set(remotePeerID.String(), true, int64(responseTimeout/time.Millisecond))
	require.NoError(t, peers.LocalMux.Send(remotePeerID, &wire.PeerListRequest{}))

	select {
	case id := <-dialer.dialed:
		require.Equal(t, knownID, id)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for exchanged peer to be dialed")
	}

	require.NotZero(t, localPeerID)
}
