package protocol

import (
	"net"
	"time"

	"auric/config"
	"auric/crypto"
	"auric/log"
	"auric/p2p"
	"auric/store"
	"auric/util"
	"auric/wire"

	"github.com/syndtr/goleveldb/leveldb"
	"golang.org/x/sync/semaphore"
)

// responseTimeout bounds how long we wait for a PeerListResponse before
// treating the request as abandoned.
const responseTimeout = 30 * time.Second

// PeerExchanger periodically asks connected peers for a sample of their
// address book and dials whatever comes back, the way the original
// gossips network reachability without a central directory.
type PeerExchanger struct {
	SampleSize       int
	RequestInterval  time.Duration
	MaxSentPeers     int
	MaxReceivedPeers int
	dialer           p2p.PeerDialer
	mux              *p2p.PeerMuxer
	db               *leveldb.DB
	pendingRequests  *util.Cache
	dialSem          *semaphore.Weighted
	lgr              log.Logger
	doneCh           chan struct{}
}

func NewPeerExchanger(dialer p2p.PeerDialer, mux *p2p.PeerMuxer, db *leveldb.DB) *PeerExchanger {
	cfg := config.DefaultConfig.Tuning.PeerExchanger
	return &PeerExchanger{
		SampleSize:       cfg.SampleSize,
		RequestInterval:  config.ConvertDuration(cfg.RequestIntervalMS, time.Millisecond),
		MaxSentPeers:     cfg.MaxSentPeers,
		MaxReceivedPeers: cfg.MaxReceivedPeers,
		dialer:           dialer,
		mux:              mux,
		db:               db,
		pendingRequests:  util.NewCache(),
		dialSem:          semaphore.NewWeighted(int64(cfg.MaxConcurrentDials)),
		doneCh:           make(chan struct{}),
		lgr:              log.WithModule("peer-exchanger"),
	}
}

func (pe *PeerExchanger) Start() error {
	pe.mux.AddMessageHandler(p2p.PeerMessageHandlerForType(wire.MessageTypePeerListRequest, pe.handlePeerListRequest))
	pe.mux.AddMessageHandler(p2p.PeerMessageHandlerForType(wire.MessageTypePeerListResponse, pe.handlePeerListResponse))

	tick := time.NewTicker(pe.RequestInterval)
	defer tick.Stop()

	for {
		select {
		case <-tick.C:
			recips, _ := p2p.BroadcastRandom(pe.mux, pe.SampleSize, &wire.PeerListRequest{})
			for _, recip := range recips {
				pe.pendingRequests.Set(recip.String(), true, int64(responseTimeout/time.Millisecond))
			}
			pe.lgr.Debug("requested new peers", "recipient_count", len(recips))
		case <-pe.doneCh:
			return nil
		}
	}
}

func (pe *PeerExchanger) Stop() error {
	close(pe.doneCh)
	return nil
}

func (pe *PeerExchanger) handlePeerListRequest(peerID crypto.Hash, envelope *wire.Envelope) {
	peerStream, err := store.StreamPeers(pe.db, false)
	if err != nil {
		pe.lgr.Error("error opening peer stream", "err", err)
		return
	}
	defer peerStream.Close()

	var entries []wire.PeerEntry
	for len(entries) < pe.MaxSentPeers {
		peer, err := peerStream.Next()
		if err != nil {
			pe.lgr.Error("error streaming stored peer", "err", err)
			return
		}
		if peer == nil {
			break
		}
		entries = append(entries, wire.NewPeerEntry(peer.ID, net.ParseIP(peer.IP), p2p.StandardPort, peer.LastSeen.UnixNano()/int64(time.Millisecond)))
	}

	msg := &wire.PeerListResponse{Peers: entries}
	if err := pe.mux.Send(peerID, msg); err != nil {
		pe.lgr.Error("error sending peer list", "err", err)
		return
	}
	pe.lgr.Info("sent peer list to requestor", "count", len(entries), "peer_id", peerID)
}

func (pe *PeerExchanger) handlePeerListResponse(peerID crypto.Hash, envelope *wire.Envelope) {
	peerIDStr := peerID.String()
	if !pe.pendingRequests.Has(peerIDStr) {
		pe.lgr.Warn("received unsolicited peer list", "peer_id", peerID)
		return
	}
	pe.pendingRequests.Del(peerIDStr)

	msg := envelope.Message.(*wire.PeerListResponse)
	entries := msg.Peers
	if len(entries) > pe.MaxReceivedPeers {
		entries = entries[:pe.MaxReceivedPeers]
	}
	pe.lgr.Debug("received new peers", "source_peer_id", peerID, "count", len(entries))
	for _, entry := range entries {
		go pe.dialPeer(entry)
	}
}

func (pe *PeerExchanger) dialPeer(entry wire.PeerEntry) {
	if !pe.dialSem.TryAcquire(1) {
		return
	}
	defer pe.dialSem.Release(1)

	ipStr := entry.NetIP().String()
	pe.lgr.Trace("dialing exchanged peer", "ip", ipStr, "peer_id", entry.ID)
	err := pe.dialer.DialPeer(entry.ID, ipStr, false)
	switch err {
	case nil:
		return
	case p2p.ErrAlreadyConnecting:
		pe.lgr.Trace("already connecting to exchanged peer", "ip", ipStr)
	case p2p.ErrAlreadyConnected:
		pe.lgr.Trace("already connected to exchanged peer", "ip", ipStr)
	case p2p.ErrPeerBanned:
		pe.lgr.Trace("peer is banned", "ip", ipStr)
	case p2p.ErrMaxOutbound:
		pe.lgr.Trace("at max outbound peers")
	case p2p.ErrSelfDial:
		pe.lgr.Trace("self-dial")
	default:
		pe.lgr.Error("failed to connect to exchanged peer", "ip", ipStr, "err", err)
	}
}
