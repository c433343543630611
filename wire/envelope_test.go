package wire

import (
	"testing"

	"auric/crypto"
	"auric/seria"

	"github.com/btcsuite/btcd/btcec"
	"github.com/stretchr/testify/require"
)

func testSigner(t *testing.T) crypto.Signer {
	pk, err := btcec.NewPrivateKey(btcec.S256())
	require.NoError(t, err)
	return crypto.NewSECP256k1Signer(pk)
}

func TestEnvelopeRoundTrip(t *testing.T) {
	signer := testSigner(t)
	ping := NewPing(42)
	envelope, err := NewEnvelope(0x41555249, 1700000000000, ping, signer)
	require.NoError(t, err)

	buf, err := seria.EncodeToBytes(envelope)
	require.NoError(t, err)

	var decoded Envelope
	require.NoError(t, seria.DecodeFromBytes(buf, &decoded, seria.DefaultLimits))
	require.True(t, envelope.Equals(&decoded))
	require.Equal(t, MessageTypePing, decoded.MessageType)

	decodedPing, ok := decoded.Message.(*Ping)
	require.True(t, ok)
	require.Equal(t, uint64(42), decodedPing.Nonce)
}

func TestEnvelopeRejectsUnknownMessageType(t *testing.T) {
	signer := testSigner(t)
	envelope, err := NewEnvelope(1, 0, NewPing(1), signer)
	require.NoError(t, err)
	envelope.MessageType = MessageType(9999)

	buf, err := seria.EncodeToBytes(envelope)
	require.NoError(t, err)

	var decoded Envelope
	err = seria.DecodeFromBytes(buf, &decoded, seria.DefaultLimits)
	require.Error(t, err)
}

func TestPeerListResponseRoundTrip(t *testing.T) {
	entries := []PeerEntry{
		NewPeerEntry(crypto.Hash{1}, []byte{127, 0, 0, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1}, 17767, 1700000000000),
	}
	res := &PeerListResponse{Peers: entries}
	buf, err := seria.EncodeToBytes(res)
	require.NoError(t, err)

	var decoded PeerListResponse
	require.NoError(t, seria.DecodeFromBytes(buf, &decoded, seria.DefaultLimits))
	require.True(t, res.Equals(&decoded))
}
