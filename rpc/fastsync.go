package rpc

import (
	"io/ioutil"
	"net/http"

	"auric/core"
	"auric/crypto"
	"auric/seria"
	"auric/store"

	"github.com/golang/snappy"
	"github.com/pkg/errors"
)

// GetBlocksFastRequest/GetBlocksFastResponse are the binary RPC's
// daemon-to-daemon analogue of wire.GetBlocksRequest/GetBlocksResponse:
// same sparse-locator shape, but carried over a plain HTTP POST instead
// of a P2P envelope, for a peer that wants a bulk initial-block-download
// transfer without paying the round-trip cost of the gossip protocol's
// per-message framing.
type GetBlocksFastRequest struct {
	Locator  []crypto.Hash
	StopHash crypto.Hash
}

func (g *GetBlocksFastRequest) Traverse(v seria.Visitor) error {
	size := len(g.Locator)
	if err := v.BeginArray(&size, false); err != nil {
		return err
	}
	if v.IsInput() {
		g.Locator = make([]crypto.Hash, size)
	}
	for i := range g.Locator {
		if err := g.Locator[i].Traverse(v); err != nil {
			return err
		}
	}
	if err := v.EndArray(); err != nil {
		return err
	}
	return g.StopHash.Traverse(v)
}

type GetBlocksFastResponse struct {
	Blocks [][]byte
}

func (g *GetBlocksFastResponse) Traverse(v seria.Visitor) error {
	size := len(g.Blocks)
	if err := v.BeginArray(&size, false); err != nil {
		return err
	}
	if v.IsInput() {
		g.Blocks = make([][]byte, size)
	}
	for i := range g.Blocks {
		if err := v.Bytes(&g.Blocks[i]); err != nil {
			return err
		}
	}
	return v.EndArray()
}

// fastSyncBatchSize caps how many blocks one request can pull, the same
// way protocol.BlockSyncer's BatchSize bounds a single P2P GetBlocksResponse.
const fastSyncBatchSize = 500

// fastSyncHandler serves /getblocks_fast.bin: it walks the caller's
// locator to find the fork point against the local chain, the same
// way protocol.BlockSyncer.handleGetBlocksRequest does for its P2P
// counterpart, then streams back raw block bytes read straight out of
// the chain file.
type fastSyncHandler struct {
	opts *Opts
}

func newFastSyncHandler(opts *Opts) *fastSyncHandler {
	return &fastSyncHandler{opts: opts}
}

func (h *fastSyncHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	body, err := ioutil.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "error reading body", http.StatusBadRequest)
		return
	}
	body, err = snappy.Decode(nil, body)
	if err != nil {
		http.Error(w, "error decompressing body", http.StatusBadRequest)
		return
	}

	req := &GetBlocksFastRequest{}
	if err := seria.DecodeFromBytes(body, req, seria.DefaultLimits); err != nil {
		http.Error(w, "malformed request", http.StatusBadRequest)
		return
	}

	res, err := h.buildResponse(req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	out, err := seria.EncodeToBytes(res)
	if err != nil {
		http.Error(w, "error encoding response", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	if _, err := w.Write(snappy.Encode(nil, out)); err != nil {
		return
	}
}

func (h *fastSyncHandler) buildResponse(req *GetBlocksFastRequest) (*GetBlocksFastResponse, error) {
	startHeight, found, err := h.locateForkPoint(req.Locator)
	if err != nil {
		return nil, errors.Wrap(err, "error locating fork point")
	}
	if !found {
		return &GetBlocksFastResponse{}, nil
	}

	tip, ok, err := store.GetChainTip(h.opts.DB)
	if err != nil {
		return nil, errors.Wrap(err, "error reading chain tip")
	}
	if !ok {
		return &GetBlocksFastResponse{}, nil
	}

	var blocks [][]byte
	for height := startHeight + 1; height <= tip && len(blocks) < fastSyncBatchSize; height++ {
		id, err := store.GetBlockIDAtHeight(h.opts.DB, height)
		if err != nil {
			return nil, errors.Wrap(err, "error reading block id at height")
		}
		if req.StopHash != crypto.ZeroHash && crypto.Hash(id) == req.StopHash {
			break
		}
		entry, err := store.GetBlockIndexEntry(h.opts.DB, id)
		if err != nil {
			return nil, errors.Wrap(err, "error reading block index entry")
		}
		raw, err := h.opts.ChainFile.Blocks.ReadRawAt(entry.FileOffset, entry.FileLength)
		if err != nil {
			return nil, errors.Wrap(err, "error reading block bytes")
		}
		blocks = append(blocks, raw)
		if crypto.Hash(id) == req.StopHash {
			break
		}
	}

	return &GetBlocksFastResponse{Blocks: blocks}, nil
}

// locateForkPoint walks the requester's locator, most-recent first, and
// returns the height of the first hash we recognize as part of our own
// chain. Mirrors protocol.BlockSyncer.locateForkPoint.
func (h *fastSyncHandler) locateForkPoint(locator []crypto.Hash) (uint64, bool, error) {
	for _, id := range locator {
		entry, err := store.GetBlockIndexEntry(h.opts.DB, core.Hash(id))
		if err != nil {
			continue
		}
		return entry.Height, true, nil
	}
	return 0, false, nil
}
