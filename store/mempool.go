package store

import (
	"time"

	"auric/core"
	"auric/seria"

	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// mempool is deliberately just an accept-and-index collaborator: no fee
// market, no eviction policy beyond TTL expiry driven by the caller, no
// double-spend cross-check against other pending entries; this exists so
// send_raw_transaction and get_transactions have somewhere to read from.
var (
	mempoolPrefix   = Prefixer("mempool")
	mempoolTxPrefix = Prefixer(string(mempoolPrefix("tx")))
)

// MempoolEntry pairs a transaction with the time it was accepted, so a
// reaper can expire stale entries the way protocol.Pinger expires
// unanswered pings.
type MempoolEntry struct {
	Tx         *core.Transaction
	ReceivedAt time.Time
}

// SetMempoolTx indexes a transaction by its ID. Callers are expected to
// have already validated tx structurally (core.Transaction.Validate)
// before it reaches here.
func SetMempoolTx(db *leveldb.DB, id core.Hash, tx *core.Transaction) error {
	buf, err := seria.EncodeToBytes(tx)
	if err != nil {
		return errors.Wrap(err, "error encoding mempool transaction")
	}
	entry := make([]byte, 8+len(buf))
	putUnixMilli(entry[:8], time.Now())
	copy(entry[8:], buf)
	if err := db.Put(mempoolTxPrefix(id.String()), entry, nil); err != nil {
		return errors.Wrap(err, "error storing mempool transaction")
	}
	return nil
}

// GetMempoolTx returns the entry stored for id, or nil if it is not
// pending.
func GetMempoolTx(db *leveldb.DB, id core.Hash) (*MempoolEntry, error) {
	data, err := db.Get(mempoolTxPrefix(id.String()), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "error getting mempool transaction")
	}
	return decodeMempoolEntry(data)
}

// DeleteMempoolTx removes id from the pool, typically because it was
// just mined into a block or its TTL expired.
func DeleteMempoolTx(db *leveldb.DB, id core.Hash) error {
	if err := db.Delete(mempoolTxPrefix(id.String()), nil); err != nil {
		return errors.Wrap(err, "error deleting mempool transaction")
	}
	return nil
}

type MempoolStream struct {
	iter iterator.Iterator
}

func (s *MempoolStream) Next() (*MempoolEntry, error) {
	if !s.iter.Next() {
		return nil, nil
	}
	return decodeMempoolEntry(s.iter.Value())
}

func (s *MempoolStream) Close() error {
	s.iter.Release()
	return s.iter.Error()
}

// StreamMempoolTxs walks every pending transaction.
func StreamMempoolTxs(db *leveldb.DB) *MempoolStream {
	return &MempoolStream{iter: db.NewIterator(util.BytesPrefix(mempoolTxPrefix()), nil)}
}

func decodeMempoolEntry(data []byte) (*MempoolEntry, error) {
	if len(data) < 8 {
		return nil, errors.New("malformed mempool entry")
	}
	tx := new(core.Transaction)
	if err := seria.DecodeFromBytes(data[8:], tx, seria.DefaultLimits); err != nil {
		return nil, errors.Wrap(err, "error decoding mempool transaction")
	}
	return &MempoolEntry{
		Tx:         tx,
		ReceivedAt: unixMilliFromBytes(data[:8]),
	}, nil
}

func putUnixMilli(buf []byte, t time.Time) {
	copy(buf, mustEncodeUint64(uint64(t.UnixNano()/int64(time.Millisecond))))
}

func unixMilliFromBytes(buf []byte) time.Time {
	ms := int64(mustDecodeUint64(buf))
	return time.Unix(0, ms*int64(time.Millisecond))
}
