package store

import (
	"encoding/hex"
	"encoding/json"
	"sync"
	"time"

	"auric/core"

	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// BlockIndexEntry is the leveldb-resident half of a block: everything a
// node needs to walk the chain and locate a block's bytes without
// decoding the chain file. The block's header, transactions, and proofs
// live in the chain file (package chainfile); this entry exists so the
// node never has to scan that file to answer "what's the tip" or "where
// does block X live".
type BlockIndexEntry struct {
	Height     uint64
	ID         core.Hash
	PrevID     core.Hash
	Timestamp  time.Time
	FileOffset uint64
	FileLength uint32
	ReceivedAt time.Time
}

func (e *BlockIndexEntry) MarshalJSON() ([]byte, error) {
	out := struct {
		Height     uint64    `json:"height"`
		ID         string    `json:"id"`
		PrevID     string    `json:"prev_id"`
		Timestamp  time.Time `json:"timestamp"`
		FileOffset uint64    `json:"file_offset"`
		FileLength uint32    `json:"file_length"`
		ReceivedAt time.Time `json:"received_at"`
	}{
		e.Height,
		e.ID.String(),
		e.PrevID.String(),
		e.Timestamp,
		e.FileOffset,
		e.FileLength,
		e.ReceivedAt,
	}
	return json.Marshal(out)
}

func (e *BlockIndexEntry) UnmarshalJSON(b []byte) error {
	in := &struct {
		Height     uint64    `json:"height"`
		ID         string    `json:"id"`
		PrevID     string    `json:"prev_id"`
		Timestamp  time.Time `json:"timestamp"`
		FileOffset uint64    `json:"file_offset"`
		FileLength uint32    `json:"file_length"`
		ReceivedAt time.Time `json:"received_at"`
	}{}
	if err := json.Unmarshal(b, in); err != nil {
		return err
	}
	id, err := decodeCoreHash(in.ID)
	if err != nil {
		return err
	}
	prevID, err := decodeCoreHash(in.PrevID)
	if err != nil {
		return err
	}
	e.Height = in.Height
	e.ID = id
	e.PrevID = prevID
	e.Timestamp = in.Timestamp
	e.FileOffset = in.FileOffset
	e.FileLength = in.FileLength
	e.ReceivedAt = in.ReceivedAt
	return nil
}

var (
	blockIndexPrefix     = Prefixer("blockindex")
	blockIndexTipKey     = Prefixer(string(blockIndexPrefix("tip")))()
	blockIndexByIDPrefix = Prefixer(string(blockIndexPrefix("id")))
	blockIndexByHtPrefix = Prefixer(string(blockIndexPrefix("height")))
)

var tipMu sync.Mutex

// GetChainTip returns the height of the highest block indexed so far, or
// 0 with ok=false if the index is empty.
func GetChainTip(db *leveldb.DB) (height uint64, ok bool, err error) {
	res, err := db.Get(blockIndexTipKey, nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, errors.Wrap(err, "error getting chain tip")
	}
	return mustDecodeUint64(res), true, nil
}

// SetBlockIndexEntryTx records where a block lives in the chain file and,
// if its height exceeds the current tip, advances the tip.
func SetBlockIndexEntryTx(tx *leveldb.Transaction, entry *BlockIndexEntry) error {
	tipMu.Lock()
	defer tipMu.Unlock()

	if err := tx.Put(blockIndexByIDPrefix(entry.ID.String()), mustMarshalJSON(entry), nil); err != nil {
		return errors.Wrap(err, "error writing block index entry")
	}
	if err := tx.Put(blockIndexByHtPrefix(string(mustEncodeUint64(entry.Height))), entry.ID[:], nil); err != nil {
		return errors.Wrap(err, "error writing height index")
	}

	tip, ok, err := getChainTipTx(tx)
	if err != nil {
		return err
	}
	if !ok || entry.Height > tip {
		if err := tx.Put(blockIndexTipKey, mustEncodeUint64(entry.Height), nil); err != nil {
			return errors.Wrap(err, "error advancing chain tip")
		}
	}
	return nil
}

func getChainTipTx(tx *leveldb.Transaction) (uint64, bool, error) {
	res, err := tx.Get(blockIndexTipKey, nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, errors.Wrap(err, "error getting chain tip")
	}
	return mustDecodeUint64(res), true, nil
}

func GetBlockIndexEntry(db *leveldb.DB, id core.Hash) (*BlockIndexEntry, error) {
	data, err := db.Get(blockIndexByIDPrefix(id.String()), nil)
	if err != nil {
		return nil, errors.Wrap(err, "error getting block index entry")
	}
	entry := new(BlockIndexEntry)
	mustUnmarshalJSON(data, entry)
	return entry, nil
}

func GetBlockIDAtHeight(db *leveldb.DB, height uint64) (core.Hash, error) {
	data, err := db.Get(blockIndexByHtPrefix(string(mustEncodeUint64(height))), nil)
	if err != nil {
		return core.ZeroHash, errors.Wrap(err, "error getting block id at height")
	}
	return decodeCoreHashBytes(data)
}

type BlockIndexStream struct {
	iter iterator.Iterator
}

func (s *BlockIndexStream) Next() (*BlockIndexEntry, error) {
	if !s.iter.Next() {
		return nil, nil
	}
	entry := new(BlockIndexEntry)
	mustUnmarshalJSON(s.iter.Value(), entry)
	return entry, nil
}

func (s *BlockIndexStream) Close() error {
	s.iter.Release()
	return s.iter.Error()
}

func StreamBlockIndex(db *leveldb.DB) *BlockIndexStream {
	return &BlockIndexStream{iter: db.NewIterator(util.BytesPrefix(blockIndexByIDPrefix()), nil)}
}

func TruncateBlockIndex(db *leveldb.DB) error {
	err := WithTx(db, func(tx *leveldb.Transaction) error {
		iter := tx.NewIterator(util.BytesPrefix(blockIndexPrefix()), nil)
		for iter.Next() {
			if err := tx.Delete(iter.Key(), nil); err != nil {
				return errors.Wrap(err, "error deleting block index key")
			}
		}
		iter.Release()
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "error truncating block index")
	}
	return nil
}

func decodeCoreHash(hexStr string) (core.Hash, error) {
	b, err := hex.DecodeString(hexStr)
	if err != nil {
		return core.ZeroHash, errors.Wrap(err, "error decoding hash hex")
	}
	return decodeCoreHashBytes(b)
}

func decodeCoreHashBytes(b []byte) (core.Hash, error) {
	if len(b) != 32 {
		return core.ZeroHash, errors.Errorf("expected 32 hash bytes, got %d", len(b))
	}
	var out core.Hash
	copy(out[:], b)
	return out, nil
}
