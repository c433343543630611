package protocol

import (
	"time"

	"auric/log"
	"auric/store"

	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
)

const (
	BanListUpdateInterval = 7 * 24 * time.Hour
)

// IngestBanLists refreshes the node's local set of banned public keys
// from the configured list URLs, at most once per BanListUpdateInterval.
// The keys are stored for lookup through store.PublicKeyIsBanned; the
// mempool does not consult them when accepting a transaction, and they
// have no bearing on block validity.
func IngestBanLists(db *leveldb.DB, lists []string) error {
	lgr := log.WithModule("moderation")
	currRev, err := store.GetLastBanListImportAt(db)
	if err != nil {
		return errors.Wrap(err, "failed to fetch latest ban list revision")
	}
	if time.Now().Sub(currRev) < BanListUpdateInterval {
		lgr.Debug("ban list cached")
		return nil
	}

	lgr.Info("refreshing ban lists")
	err = store.WithTx(db, func(tx *leveldb.Transaction) error {
		if err := store.TruncateBannedPublicKeys(tx); err != nil {
			return errors.Wrap(err, "error truncating banned public keys")
		}

		for _, url := range lists {
			lgr.Debug("fetching ban list", "url", url)
			keys, err := FetchListFile(url)
			if err != nil {
				return errors.Wrap(err, "failed to fetch ban list")
			}

			for _, key := range keys {
				if err := store.BanPublicKey(tx, key); err != nil {
					return errors.Wrap(err, "error banning public key")
				}
			}
		}

		return store.SetLastBanListImportAt(tx, time.Now())
	})
	if err != nil {
		return errors.Wrap(err, "error ingesting ban lists")
	}
	return nil
}
