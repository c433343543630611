package rpc

import (
	"encoding/hex"
	"encoding/json"
	"net"
	"time"

	"auric/core"
	"auric/crypto"
	"auric/p2p"
	"auric/protocol"
	"auric/seria"
	"auric/store"
	"auric/version"

	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
)

// methods implements one Go method per JSON-RPC call name registered in
// jsonrpc.go's dispatcher. Each method takes the request's raw params
// and returns a value json.Marshal can serialize directly as the
// response's result field.
type methods struct {
	opts *Opts
}

func newMethods(opts *Opts) *methods {
	return &methods{opts: opts}
}

type getInfoResult struct {
	Height     uint64 `json:"height"`
	PeerID     string `json:"peer_id"`
	PeerCount  int    `json:"peer_count"`
	TxBytes    uint64 `json:"tx_bytes"`
	RxBytes    uint64 `json:"rx_bytes"`
	Version    string `json:"version"`
	TopBlockID string `json:"top_block_id"`
}

func (m *methods) GetInfo(json.RawMessage) (interface{}, error) {
	height, topID, err := m.chainTip()
	if err != nil {
		return nil, err
	}
	in, out := m.opts.Mux.PeerCount()
	tx, rx := m.opts.Mux.BandwidthUsage()
	return &getInfoResult{
		Height:     height,
		PeerID:     m.opts.PeerID.String(),
		PeerCount:  in + out,
		TxBytes:    tx,
		RxBytes:    rx,
		Version:    version.UserAgent,
		TopBlockID: topID.String(),
	}, nil
}

type getHeightResult struct {
	Height uint64 `json:"height"`
}

func (m *methods) GetHeight(json.RawMessage) (interface{}, error) {
	height, _, err := store.GetChainTip(m.opts.DB)
	if err != nil {
		return nil, err
	}
	return &getHeightResult{Height: height}, nil
}

type getBlockTemplateParams struct {
	WalletAddress string `json:"wallet_address"`
	ReserveSize   int    `json:"reserve_size"`
}

type getBlockTemplateResult struct {
	BlockTemplateBlob string `json:"blocktemplate_blob"`
	Height            uint64 `json:"height"`
	PrevID            string `json:"prev_id"`
}

// GetBlockTemplate assembles an unmined block over the current tip: a
// coinbase transaction paying WalletAddress and an empty header nonce
// for the miner to search over. It deliberately pulls no pending
// transactions into the template — the mempool/fee-selection policy
// this would require is out of scope (see store/mempool.go).
func (m *methods) GetBlockTemplate(params json.RawMessage) (interface{}, error) {
	var p getBlockTemplateParams
	if err := unmarshalParams(params, &p); err != nil {
		return nil, errors.Wrap(err, "error decoding params")
	}
	pub, err := decodePublicKeyHex(p.WalletAddress)
	if err != nil {
		return nil, errors.Wrap(err, "error decoding wallet_address")
	}

	height, prevID, err := m.chainTip()
	if err != nil {
		return nil, err
	}
	nextHeight := height + 1

	block := &core.Block{
		Header: core.BlockHeader{
			MajorVersion: 1,
			MinorVersion: 0,
			Timestamp:    uint64(time.Now().Unix()),
			PrevID:       prevID,
		},
		MinerTx: core.Transaction{
			Version:    1,
			Vin:        []core.TransactionInput{core.NewGenInput(nextHeight)},
			Vout:       []core.TransactionOutput{{Amount: 0, Target: core.NewToKeyTarget(pub)}},
			Signatures: [][]core.Signature{{}},
		},
	}

	buf, err := seria.EncodeToBytes(block)
	if err != nil {
		return nil, errors.Wrap(err, "error encoding block template")
	}

	return &getBlockTemplateResult{
		BlockTemplateBlob: hex.EncodeToString(buf),
		Height:            nextHeight,
		PrevID:            prevID.String(),
	}, nil
}

type submitBlockParams []string

type submitBlockResult struct {
	BlockID string `json:"block_id"`
}

// SubmitBlock decodes the hex-encoded block blob a miner found a
// passing nonce for and appends it to the chain. It checks only that
// the block decodes and links onto the current tip; full proof-of-work
// and consensus validation are not performed here.
func (m *methods) SubmitBlock(params json.RawMessage) (interface{}, error) {
	var p submitBlockParams
	if err := unmarshalParams(params, &p); err != nil {
		return nil, errors.Wrap(err, "error decoding params")
	}
	if len(p) == 0 {
		return nil, errors.New("missing block blob")
	}
	raw, err := hex.DecodeString(p[0])
	if err != nil {
		return nil, errors.Wrap(err, "error decoding block hex")
	}

	block := &core.Block{}
	if err := seria.DecodeFromBytes(raw, block, seria.DefaultLimits); err != nil {
		return nil, errors.Wrap(err, "error decoding block")
	}
	if err := block.MinerTx.Validate(); err != nil {
		return nil, errors.Wrap(err, "error validating miner transaction")
	}

	id, err := block.ID()
	if err != nil {
		return nil, errors.Wrap(err, "error hashing block")
	}

	if !m.opts.ChainLocker.TryLock(protocol.ChainLockKey) {
		return nil, protocol.ErrChainLocked
	}
	defer m.opts.ChainLocker.Unlock(protocol.ChainLockKey)

	height, prevID, err := m.chainTip()
	if err != nil {
		return nil, err
	}
	if block.Header.PrevID != prevID {
		return nil, errors.New("block does not extend current tip")
	}

	rec, err := m.opts.ChainFile.AppendBlock(height+1, block)
	if err != nil {
		return nil, errors.Wrap(err, "error appending block")
	}
	if err := store.WithTx(m.opts.DB, func(tx *leveldb.Transaction) error {
		return store.SetBlockIndexEntryTx(tx, &store.BlockIndexEntry{
			Height:     height + 1,
			ID:         id,
			PrevID:     block.Header.PrevID,
			Timestamp:  time.Unix(int64(block.Header.Timestamp), 0),
			FileOffset: rec.Offset,
			FileLength: rec.Length,
			ReceivedAt: time.Now(),
		})
	}); err != nil {
		return nil, errors.Wrap(err, "error indexing block")
	}

	return &submitBlockResult{BlockID: id.String()}, nil
}

type getTransactionsParams struct {
	TxHashes []string `json:"txs_hashes"`
}

type getTransactionsResult struct {
	Txs     []string `json:"txs_as_hex"`
	Missing []string `json:"missed_tx"`
}

// GetTransactions answers from the mempool only: a transaction that has
// already been mined is expected to be fetched from the block it landed
// in, the way real CryptoNote daemons distinguish pool lookups from
// chain lookups.
func (m *methods) GetTransactions(params json.RawMessage) (interface{}, error) {
	var p getTransactionsParams
	if err := unmarshalParams(params, &p); err != nil {
		return nil, errors.Wrap(err, "error decoding params")
	}

	res := &getTransactionsResult{}
	for _, hexID := range p.TxHashes {
		id, err := decodeCoreHashHex(hexID)
		if err != nil {
			return nil, errors.Wrapf(err, "error decoding tx hash %q", hexID)
		}
		entry, err := store.GetMempoolTx(m.opts.DB, id)
		if err != nil {
			return nil, err
		}
		if entry == nil {
			res.Missing = append(res.Missing, hexID)
			continue
		}
		buf, err := seria.EncodeToBytes(entry.Tx)
		if err != nil {
			return nil, errors.Wrap(err, "error encoding transaction")
		}
		res.Txs = append(res.Txs, hex.EncodeToString(buf))
	}
	return res, nil
}

type sendRawTransactionParams struct {
	TxAsHex string `json:"tx_as_hex"`
}

type sendRawTransactionResult struct {
	TxID   string `json:"tx_id"`
	Status string `json:"status"`
}

func (m *methods) SendRawTransaction(params json.RawMessage) (interface{}, error) {
	var p sendRawTransactionParams
	if err := unmarshalParams(params, &p); err != nil {
		return nil, errors.Wrap(err, "error decoding params")
	}
	raw, err := hex.DecodeString(p.TxAsHex)
	if err != nil {
		return nil, errors.Wrap(err, "error decoding tx_as_hex")
	}

	tx := &core.Transaction{}
	if err := seria.DecodeFromBytes(raw, tx, seria.DefaultLimits); err != nil {
		return nil, errors.Wrap(err, "error decoding transaction")
	}
	if err := tx.Validate(); err != nil {
		return nil, errors.Wrap(err, "error validating transaction")
	}

	id, err := tx.ID()
	if err != nil {
		return nil, errors.Wrap(err, "error hashing transaction")
	}
	if err := store.SetMempoolTx(m.opts.DB, id, tx); err != nil {
		return nil, err
	}

	return &sendRawTransactionResult{TxID: id.String(), Status: "OK"}, nil
}

type statusResult struct {
	Height       uint64         `json:"height"`
	PeerID       string         `json:"peer_id"`
	InboundPeers int            `json:"inbound_peers"`
	OutboundPeers int           `json:"outbound_peers"`
	TxBytes      uint64         `json:"tx_bytes"`
	RxBytes      uint64         `json:"rx_bytes"`
}

func (m *methods) Status(json.RawMessage) (interface{}, error) {
	height, _, err := store.GetChainTip(m.opts.DB)
	if err != nil {
		return nil, err
	}
	in, out := m.opts.Mux.PeerCount()
	tx, rx := m.opts.Mux.BandwidthUsage()
	return &statusResult{
		Height:        height,
		PeerID:        m.opts.PeerID.String(),
		InboundPeers:  in,
		OutboundPeers: out,
		TxBytes:       tx,
		RxBytes:       rx,
	}, nil
}

type banPeerParams struct {
	IP         string `json:"ip"`
	DurationMS int64  `json:"duration_ms"`
}

type okResult struct {
	Status string `json:"status"`
}

func (m *methods) BanPeer(params json.RawMessage) (interface{}, error) {
	var p banPeerParams
	if err := unmarshalParams(params, &p); err != nil {
		return nil, errors.Wrap(err, "error decoding params")
	}
	ip := net.ParseIP(p.IP)
	if ip == nil {
		return nil, errors.New("invalid ip")
	}
	dur := time.Duration(p.DurationMS) * time.Millisecond
	if dur <= 0 {
		dur = p2p.YearBan
	}

	err := store.WithTx(m.opts.DB, func(tx *leveldb.Transaction) error {
		if err := store.BanInboundPeerTx(tx, ip.String(), dur); err != nil {
			return err
		}
		return store.BanOutboundPeerTx(tx, ip.String(), dur)
	})
	if err != nil {
		return nil, errors.Wrap(err, "error storing ban")
	}

	for _, peer := range m.opts.Mux.PeersByIP(ip.String()) {
		if err := peer.Close(); err != nil {
			return nil, errors.Wrap(err, "error closing banned peer")
		}
	}

	return &okResult{Status: "OK"}, nil
}

type unbanPeerParams struct {
	IP string `json:"ip"`
}

func (m *methods) UnbanPeer(params json.RawMessage) (interface{}, error) {
	var p unbanPeerParams
	if err := unmarshalParams(params, &p); err != nil {
		return nil, errors.Wrap(err, "error decoding params")
	}
	ip := net.ParseIP(p.IP)
	if ip == nil {
		return nil, errors.New("invalid ip")
	}

	err := store.WithTx(m.opts.DB, func(tx *leveldb.Transaction) error {
		if err := store.UnbanInboundPeerTx(tx, ip.String()); err != nil {
			return err
		}
		return store.UnbanOutboundPeerTx(tx, ip.String())
	})
	if err != nil {
		return nil, errors.Wrap(err, "error removing ban")
	}
	return &okResult{Status: "OK"}, nil
}

type addPeerParams struct {
	PeerID       string `json:"peer_id"`
	IP           string `json:"ip"`
	VerifyPeerID bool   `json:"verify_peer_id"`
}

func (m *methods) AddPeer(params json.RawMessage) (interface{}, error) {
	var p addPeerParams
	if err := unmarshalParams(params, &p); err != nil {
		return nil, errors.Wrap(err, "error decoding params")
	}

	var id crypto.Hash
	if p.VerifyPeerID {
		decoded, err := decodeCryptoHashHex(p.PeerID)
		if err != nil {
			return nil, errors.Wrap(err, "error decoding peer_id")
		}
		id = decoded
	}

	if err := m.opts.PeerManager.DialPeer(id, p.IP, p.VerifyPeerID); err != nil {
		return nil, err
	}
	return &okResult{Status: "OK"}, nil
}

type listPeersResult struct {
	Peers []peerInfo `json:"peers"`
}

type peerInfo struct {
	PeerID    string `json:"peer_id"`
	IP        string `json:"ip"`
	Banned    bool   `json:"banned"`
	Connected bool   `json:"connected"`
	TxBytes   uint64 `json:"tx_bytes"`
	RxBytes   uint64 `json:"rx_bytes"`
}

func (m *methods) ListPeers(json.RawMessage) (interface{}, error) {
	connected := m.opts.Mux.Peers()
	stream, err := store.StreamPeers(m.opts.DB, true)
	if err != nil {
		return nil, errors.Wrap(err, "error opening peer stream")
	}
	defer stream.Close()

	res := &listPeersResult{}
	for {
		peer, err := stream.Next()
		if err != nil {
			return nil, errors.Wrap(err, "error streaming peer data")
		}
		if peer == nil {
			break
		}

		var txBytes, rxBytes uint64
		livePeer, isConnected := connected[peer.ID]
		if isConnected {
			txBytes, rxBytes = livePeer.BandwidthUsage()
		}

		res.Peers = append(res.Peers, peerInfo{
			PeerID:    peer.ID.String(),
			IP:        peer.IP,
			Banned:    peer.IsBanned(),
			Connected: isConnected,
			TxBytes:   txBytes,
			RxBytes:   rxBytes,
		})
	}
	return res, nil
}

func (m *methods) chainTip() (uint64, core.Hash, error) {
	height, ok, err := store.GetChainTip(m.opts.DB)
	if err != nil {
		return 0, core.ZeroHash, errors.Wrap(err, "error reading chain tip")
	}
	if !ok {
		return 0, core.ZeroHash, nil
	}
	id, err := store.GetBlockIDAtHeight(m.opts.DB, height)
	if err != nil {
		return 0, core.ZeroHash, errors.Wrap(err, "error reading tip block id")
	}
	return height, id, nil
}

func decodePublicKeyHex(s string) (core.PublicKey, error) {
	var pub core.PublicKey
	b, err := hex.DecodeString(s)
	if err != nil {
		return pub, err
	}
	if len(b) != len(pub) {
		return pub, errors.New("wrong public key length")
	}
	copy(pub[:], b)
	return pub, nil
}

func decodeCoreHashHex(s string) (core.Hash, error) {
	var h core.Hash
	b, err := hex.DecodeString(s)
	if err != nil {
		return h, err
	}
	if len(b) != len(h) {
		return h, errors.New("wrong hash length")
	}
	copy(h[:], b)
	return h, nil
}

func decodeCryptoHashHex(s string) (crypto.Hash, error) {
	return crypto.NewHashFromHex(s)
}
