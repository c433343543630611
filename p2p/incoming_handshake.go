package p2p

import (
	"context"

	"auric/crypto"
	"auric/version"
	"auric/wire"

	"github.com/pkg/errors"
)

// HandleIncomingHandshake runs the accepting side of the three-message
// handshake: we wait for the dialer's Handshake, echo our own back, and
// wait for their ack of our nonce before the connection is considered
// open.
func HandleIncomingHandshake(ctx context.Context, cfg *HandshakeConfig) (crypto.Hash, error) {
	localNonce := crypto.RandUint64()
	theirEnv, err := cfg.Peer.ReceiveCtx(ctx)
	if err != nil {
		return crypto.ZeroHash, errors.Wrap(err, "failed to receive handshake message")
	}
	if theirEnv.MessageType != wire.MessageTypeHandshake {
		return crypto.ZeroHash, ErrUnexpectedMessage
	}
	theirHandshake := theirEnv.Message.(*wire.Handshake)
	theirPeerID := crypto.HashPub(theirHandshake.PublicKey)
	if err := ValidateEnvelope(cfg.Magic, theirPeerID, theirEnv); err != nil {
		return crypto.ZeroHash, errors.Wrap(err, "peer initiated with invalid handshake message")
	}
	if theirHandshake.ProtocolVersion > cfg.ProtocolVersion {
		return crypto.ZeroHash, ErrIncompatibleProtocol
	}

	ourHandshake := &wire.Handshake{
		ProtocolVersion: cfg.ProtocolVersion,
		Nonce:           localNonce,
		Height:          cfg.Height,
		PublicKey:       cfg.Signer.Pub(),
		UserAgent:       version.UserAgent,
	}
	if err := WriteEnvelope(ctx, cfg.Peer, cfg.Signer, cfg.Magic, ourHandshake); err != nil {
		return crypto.ZeroHash, errors.Wrap(err, "failed to respond with handshake message")
	}

	theirAckEnv, err := cfg.Peer.ReceiveCtx(ctx)
	if err != nil {
		return crypto.ZeroHash, errors.Wrap(err, "failed to receive handshake ack message")
	}
	if theirAckEnv.MessageType != wire.MessageTypeHandshakeAck {
		return crypto.ZeroHash, ErrUnexpectedMessage
	}
	if err := ValidateEnvelope(cfg.Magic, theirPeerID, theirAckEnv); err != nil {
		return crypto.ZeroHash, errors.Wrap(err, "peer responded with invalid handshake ack message")
	}
	theirAck := theirAckEnv.Message.(*wire.HandshakeAck)
	if theirAck.Nonce != localNonce {
		return crypto.ZeroHash, ErrInvalidNonce
	}

	return theirPeerID, nil
}
