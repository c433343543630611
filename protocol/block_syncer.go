package protocol

import (
	"time"

	"auric/chainfile"
	"auric/config"
	"auric/core"
	"auric/crypto"
	"auric/log"
	"auric/p2p"
	"auric/seria"
	"auric/store"
	"auric/util"
	"auric/wire"

	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"golang.org/x/sync/semaphore"
)

// ApplyBlockFunc accepts a fully decoded block received from a peer and
// persists it, returning an error if the block is invalid or does not
// extend the current tip.
type ApplyBlockFunc func(block *core.Block) error

// ChainLockKey is the single key BlockSyncer and rpc.Server's SubmitBlock
// hold on a shared util.MultiLocker while extending the chain, so a
// peer-synced block and a locally submitted block can never both read
// the same tip and append at the same height.
const ChainLockKey = "chain"

// ErrChainLocked is returned when a block can't be applied because
// another append is already in progress.
var ErrChainLocked = errors.New("chain is locked by another append")

// BlockSyncer drives whole-block download the way the deleted
// sector syncer once drove name-tree sync: request a batch from a
// newly-connected peer, apply what comes back in order, and ask again
// until the peer has nothing left to give.
type BlockSyncer struct {
	RequestTimeout    time.Duration
	BatchSize         int
	MaxConcurrentPeer int

	mux     *p2p.PeerMuxer
	db      *leveldb.DB
	cf      *chainfile.ChainFile
	apply   ApplyBlockFunc
	locker  util.MultiLocker
	pending *util.Cache
	sem     *semaphore.Weighted
	lgr     log.Logger
	doneCh  chan struct{}
}

// NewBlockSyncer builds a BlockSyncer. locker must be the same
// util.MultiLocker instance given to rpc.Server so that locally
// submitted blocks and peer-synced blocks serialize against each other.
func NewBlockSyncer(mux *p2p.PeerMuxer, db *leveldb.DB, cf *chainfile.ChainFile, locker util.MultiLocker, apply ApplyBlockFunc) *BlockSyncer {
	cfg := config.DefaultConfig.Tuning.BlockSyncer
	return &BlockSyncer{
		RequestTimeout:    config.ConvertDuration(cfg.RequestTimeoutMS, time.Millisecond),
		BatchSize:         cfg.BatchSize,
		MaxConcurrentPeer: cfg.MaxConcurrentPeer,
		mux:               mux,
		db:                db,
		cf:                cf,
		apply:             apply,
		locker:            locker,
		pending:           util.NewCache(),
		sem:               semaphore.NewWeighted(int64(cfg.MaxConcurrentPeer)),
		doneCh:            make(chan struct{}),
		lgr:               log.WithModule("block-syncer"),
	}
}

func (bs *BlockSyncer) Start() error {
	bs.sem = semaphore.NewWeighted(int64(bs.MaxConcurrentPeer))
	bs.mux.AddMessageHandler(p2p.PeerMessageHandlerForType(wire.MessageTypeGetBlocksRequest, bs.handleGetBlocksRequest))
	bs.mux.AddMessageHandler(p2p.PeerMessageHandlerForType(wire.MessageTypeGetBlocksResponse, bs.handleGetBlocksResponse))
	bs.mux.AddPeerOpenHandler(bs.requestNext)
	return nil
}

func (bs *BlockSyncer) Stop() error {
	close(bs.doneCh)
	return nil
}

// requestNext sends a GetBlocksRequest built from the local chain's
// block locator to peerID, bounded by MaxConcurrentPeer in-flight
// requests overall.
func (bs *BlockSyncer) requestNext(peerID crypto.Hash) {
	if !bs.sem.TryAcquire(1) {
		return
	}

	locator, stopHash, err := bs.buildLocator()
	if err != nil {
		bs.sem.Release(1)
		bs.lgr.Error("error building block locator", "err", err)
		return
	}

	req := &wire.GetBlocksRequest{Locator: locator, StopHash: stopHash}
	if err := bs.mux.Send(peerID, req); err != nil {
		bs.sem.Release(1)
		bs.lgr.Error("error requesting blocks", "peer_id", peerID, "err", err)
		return
	}
	bs.pending.Set(peerID.String(), true, int64(bs.RequestTimeout/time.Millisecond))
	bs.lgr.Debug("requested blocks", "peer_id", peerID)
}

// buildLocator returns a Bitcoin-style sparse list of recent block
// hashes, most recent first, doubling the stride between entries as it
// walks back from the tip, so a responder can locate the fork point in
// O(log n) round trips instead of receiving the peer's whole chain.
func (bs *BlockSyncer) buildLocator() ([]crypto.Hash, crypto.Hash, error) {
	tip, ok, err := store.GetChainTip(bs.db)
	if err != nil {
		return nil, crypto.ZeroHash, errors.Wrap(err, "error reading chain tip")
	}
	if !ok {
		return nil, crypto.ZeroHash, nil
	}

	var locator []crypto.Hash
	step := uint64(1)
	height := tip
	for {
		id, err := store.GetBlockIDAtHeight(bs.db, height)
		if err != nil {
			return nil, crypto.ZeroHash, errors.Wrapf(err, "error resolving block id at height %d", height)
		}
		locator = append(locator, crypto.Hash(id))
		if height == 0 {
			break
		}
		if len(locator) >= 10 {
			step *= 2
		}
		if step > height {
			height = 0
		} else {
			height -= step
		}
	}
	return locator, crypto.ZeroHash, nil
}

func (bs *BlockSyncer) handleGetBlocksRequest(peerID crypto.Hash, envelope *wire.Envelope) {
	req := envelope.Message.(*wire.GetBlocksRequest)

	startHeight, found, err := bs.locateForkPoint(req.Locator)
	if err != nil {
		bs.lgr.Error("error locating fork point", "peer_id", peerID, "err", err)
		return
	}
	if !found {
		bs.lgr.Debug("no common ancestor with peer locator", "peer_id", peerID)
		return
	}

	tip, ok, err := store.GetChainTip(bs.db)
	if err != nil || !ok {
		return
	}

	var raw [][]byte
	for height := startHeight + 1; height <= tip && len(raw) < bs.BatchSize; height++ {
		id, err := store.GetBlockIDAtHeight(bs.db, height)
		if err != nil {
			bs.lgr.Error("error resolving block id", "height", height, "err", err)
			return
		}
		if req.StopHash != crypto.ZeroHash && crypto.Hash(id) == req.StopHash {
			break
		}
		entry, err := store.GetBlockIndexEntry(bs.db, id)
		if err != nil {
			bs.lgr.Error("error reading block index entry", "height", height, "err", err)
			return
		}
		buf, err := bs.cf.Blocks.ReadRawAt(entry.FileOffset, entry.FileLength)
		if err != nil {
			bs.lgr.Error("error reading block from chain file", "height", height, "err", err)
			return
		}
		raw = append(raw, buf)
	}

	if err := bs.mux.Send(peerID, &wire.GetBlocksResponse{Blocks: raw}); err != nil {
		bs.lgr.Error("error sending blocks", "peer_id", peerID, "err", err)
		return
	}
	bs.lgr.Info("sent blocks to peer", "peer_id", peerID, "count", len(raw))
}

func (bs *BlockSyncer) handleGetBlocksResponse(peerID crypto.Hash, envelope *wire.Envelope) {
	peerIDStr := peerID.String()
	if !bs.pending.Has(peerIDStr) {
		bs.lgr.Warn("received unsolicited blocks", "peer_id", peerID)
		return
	}
	bs.pending.Del(peerIDStr)
	bs.sem.Release(1)

	resp := envelope.Message.(*wire.GetBlocksResponse)
	for _, buf := range resp.Blocks {
		block := new(core.Block)
		if err := seria.DecodeFromBytes(buf, block, seria.DefaultLimits); err != nil {
			bs.lgr.Error("error decoding block from peer", "peer_id", peerID, "err", err)
			return
		}
		if err := bs.applyLocked(block); err != nil {
			bs.lgr.Error("error applying block from peer", "peer_id", peerID, "err", err)
			return
		}
	}
	bs.lgr.Debug("applied blocks from peer", "peer_id", peerID, "count", len(resp.Blocks))

	if len(resp.Blocks) > 0 {
		bs.requestNext(peerID)
	}
}

func (bs *BlockSyncer) applyLocked(block *core.Block) error {
	if !bs.locker.TryLock(ChainLockKey) {
		return ErrChainLocked
	}
	defer bs.locker.Unlock(ChainLockKey)
	return bs.apply(block)
}

// locateForkPoint walks the requester's locator, most-recent first,
// and returns the height of the first hash we recognize as part of our
// own chain.
func (bs *BlockSyncer) locateForkPoint(locator []crypto.Hash) (uint64, bool, error) {
	for _, hash := range locator {
		entry, err := store.GetBlockIndexEntry(bs.db, core.Hash(hash))
		if err != nil {
			continue
		}
		return entry.Height, true, nil
	}
	return 0, false, nil
}
