package wire

import (
	"auric/crypto"
	"auric/seria"
)

// Message is a payload an Envelope can carry. Hash is over the message's
// own encoding only, independent of the envelope it ends up signed inside.
type Message interface {
	crypto.Hasher
	seria.Traversable
	MsgType() MessageType
	Equals(other Message) bool
}

type MessageType uint16

const (
	MessageTypeHandshake MessageType = iota
	MessageTypeHandshakeAck
	MessageTypePing
	MessageTypePong
	MessageTypePeerListRequest
	MessageTypePeerListResponse
	MessageTypeGetBlocksRequest
	MessageTypeGetBlocksResponse
	MessageTypeNewTransactionsNotification
)

func (t MessageType) String() string {
	switch t {
	case MessageTypeHandshake:
		return "Handshake"
	case MessageTypeHandshakeAck:
		return "HandshakeAck"
	case MessageTypePing:
		return "Ping"
	case MessageTypePong:
		return "Pong"
	case MessageTypePeerListRequest:
		return "PeerListRequest"
	case MessageTypePeerListResponse:
		return "PeerListResponse"
	case MessageTypeGetBlocksRequest:
		return "GetBlocksRequest"
	case MessageTypeGetBlocksResponse:
		return "GetBlocksResponse"
	case MessageTypeNewTransactionsNotification:
		return "NewTransactionsNotification"
	default:
		return "unknown"
	}
}

// newMessageForType returns a zero-valued Message ready to have Traverse
// called on it as a decode target. For an unrecognized type it returns
// false, and Envelope.Traverse then fails with MalformedInput.
func newMessageForType(t MessageType) (Message, bool) {
	switch t {
	case MessageTypeHandshake:
		return &Handshake{}, true
	case MessageTypeHandshakeAck:
		return &HandshakeAck{}, true
	case MessageTypePing:
		return &Ping{}, true
	case MessageTypePong:
		return &Pong{}, true
	case MessageTypePeerListRequest:
		return &PeerListRequest{}, true
	case MessageTypePeerListResponse:
		return &PeerListResponse{}, true
	case MessageTypeGetBlocksRequest:
		return &GetBlocksRequest{}, true
	case MessageTypeGetBlocksResponse:
		return &GetBlocksResponse{}, true
	case MessageTypeNewTransactionsNotification:
		return &NewTransactionsNotification{}, true
	default:
		return nil, false
	}
}
