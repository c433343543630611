package store

import (
	"time"

	"auric/core"

	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// This store backs the node's local copy of a ban list: public keys
// reported elsewhere (scam addresses, known mixers flagged by
// cooperating pools), answered through PublicKeyIsBanned. Neither the
// mempool nor block validation consults it.
var (
	lastBanListImportAtKey = []byte("last-ban-list-import-at")
	bansPrefix             = Prefixer("bans")
	banPrefix              = Prefixer(string(bansPrefix("key")))
)

func GetLastBanListImportAt(db *leveldb.DB) (time.Time, error) {
	res, err := db.Get(lastBanListImportAtKey, nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return time.Unix(0, 0), nil
	}
	if err != nil {
		return time.Unix(0, 0), errors.Wrap(err, "error getting last ban list import time")
	}
	return mustDecodeTime(res), nil
}

func SetLastBanListImportAt(tx *leveldb.Transaction, t time.Time) error {
	err := tx.Put(lastBanListImportAtKey, encodeTime(t), nil)
	if err != nil {
		return errors.Wrap(err, "error setting last ban list import time")
	}
	return nil
}

func PublicKeyIsBanned(db *leveldb.DB, key core.PublicKey) (bool, error) {
	has, err := db.Has(banPrefix(key.String()), nil)
	if err != nil {
		return false, errors.Wrap(err, "error getting public key ban state")
	}
	return has, nil
}

func TruncateBannedPublicKeys(tx *leveldb.Transaction) error {
	iter := tx.NewIterator(util.BytesPrefix(bansPrefix()), nil)
	for iter.Next() {
		if err := tx.Delete(iter.Key(), nil); err != nil {
			return errors.Wrap(err, "error deleting ban store key")
		}
	}
	iter.Release()
	return nil
}

func BanPublicKey(tx *leveldb.Transaction, key core.PublicKey) error {
	err := tx.Put(banPrefix(key.String()), []byte{0x01}, nil)
	if err != nil {
		return errors.Wrap(err, "error inserting banned public key")
	}
	return nil
}
