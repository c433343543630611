package store

import (
	"encoding/binary"

	"auric/log"
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
)

type TxCb func(tx *leveldb.Transaction) error

var logger = log.WithModule("store")

func Open(path string) (*leveldb.DB, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, errors.Wrap(err, "error opening database")
	}
	return db, nil
}

func WithTx(db *leveldb.DB, cb TxCb) error {
	tx, err := db.OpenTransaction()
	if err != nil {
		return errors.Wrap(err, "error opening transaction")
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Discard()
			panic(p)
		} else if err != nil {
			tx.Discard()
		} else {
			err = tx.Commit()
		}
	}()

	return cb(tx)
}

func mustEncodeUint64(in uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, in)
	return buf
}

func mustDecodeUint64(in []byte) uint64 {
	if len(in) == 0 {
		return 0
	}
	return binary.BigEndian.Uint64(in)
}
