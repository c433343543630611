package p2p

import (
	"context"
	"time"

	"auric/crypto"
	"auric/version"
	"auric/wire"

	"github.com/pkg/errors"
)

var (
	ErrUnexpectedMessage    = errors.New("unexpected handshake message")
	ErrIncompatibleProtocol = errors.New("incompatible protocol version")
	ErrInvalidNonce         = errors.New("invalid nonce on handshake ack message")
)

type HandshakeConfig struct {
	Magic           uint32
	ProtocolVersion uint32
	Height          uint64
	Peer            Peer
	Signer          crypto.Signer
}

// HandleOutgoingHandshake runs the dialing side of the three-message
// handshake: we speak first, the peer echoes its own Handshake back, and
// we close with an ack of the peer's nonce.
func HandleOutgoingHandshake(ctx context.Context, cfg *HandshakeConfig) (crypto.Hash, error) {
	localNonce := crypto.RandUint64()
	ourHandshake := &wire.Handshake{
		ProtocolVersion: cfg.ProtocolVersion,
		Nonce:           localNonce,
		Height:          cfg.Height,
		PublicKey:       cfg.Signer.Pub(),
		UserAgent:       version.UserAgent,
	}
	if err := WriteEnvelope(ctx, cfg.Peer, cfg.Signer, cfg.Magic, ourHandshake); err != nil {
		return crypto.ZeroHash, errors.Wrap(err, "failed to send handshake message")
	}

	subCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	theirEnv, err := cfg.Peer.ReceiveCtx(subCtx)
	if err != nil {
		return crypto.ZeroHash, errors.Wrap(err, "failed to receive peer handshake message")
	}
	if theirEnv.MessageType != wire.MessageTypeHandshake {
		return crypto.ZeroHash, ErrUnexpectedMessage
	}
	theirHandshake := theirEnv.Message.(*wire.Handshake)
	theirPeerID := crypto.HashPub(theirHandshake.PublicKey)
	if err := ValidateEnvelope(cfg.Magic, theirPeerID, theirEnv); err != nil {
		return crypto.ZeroHash, errors.Wrap(err, "peer responded with invalid handshake message")
	}
	if theirHandshake.ProtocolVersion > cfg.ProtocolVersion {
		return crypto.ZeroHash, ErrIncompatibleProtocol
	}

	ourAck := &wire.HandshakeAck{
		Nonce:  theirHandshake.Nonce,
		Height: cfg.Height,
	}
	if err := WriteEnvelope(ctx, cfg.Peer, cfg.Signer, cfg.Magic, ourAck); err != nil {
		return crypto.ZeroHash, errors.Wrap(err, "failed to send handshake ack message")
	}
	return theirPeerID, nil
}
