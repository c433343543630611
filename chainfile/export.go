package chainfile

import (
	"auric/store"

	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
)

// Export streams the local node's chain out to a fresh blocks.bin/
// blockindexes.bin pair in destDir, in height order, by copying each
// block's raw bytes straight from the source chain file into the
// destination's. It never decodes a block, matching the original
// "--export-blocks" mode's job of producing a byte-identical dump.
func Export(db *leveldb.DB, src *ChainFile, destDir string) error {
	dest, err := Open(destDir)
	if err != nil {
		return errors.Wrap(err, "error opening export destination")
	}
	defer dest.Close()

	tip, ok, err := store.GetChainTip(db)
	if err != nil {
		return errors.Wrap(err, "error reading chain tip")
	}
	if !ok {
		return nil
	}

	for height := uint64(0); height <= tip; height++ {
		id, err := store.GetBlockIDAtHeight(db, height)
		if err != nil {
			return errors.Wrapf(err, "error resolving block id at height %d", height)
		}
		entry, err := store.GetBlockIndexEntry(db, id)
		if err != nil {
			return errors.Wrapf(err, "error reading block index entry at height %d", height)
		}

		offset, length, err := copyBlock(src.Blocks, dest.Blocks, entry.FileOffset, entry.FileLength)
		if err != nil {
			return errors.Wrapf(err, "error copying block at height %d", entry.Height)
		}
		rec := IndexRecord{
			Height:    entry.Height,
			ID:        entry.ID,
			PrevID:    entry.PrevID,
			Offset:    offset,
			Length:    length,
			Timestamp: uint64(entry.Timestamp.Unix()),
		}
		if err := dest.Indexes.WriteRecord(rec); err != nil {
			return errors.Wrapf(err, "error writing index record at height %d", entry.Height)
		}
	}
	return nil
}

func copyBlock(src, dest *BlockFile, srcOffset uint64, length uint32) (destOffset uint64, destLength uint32, err error) {
	buf := make([]byte, length)
	if _, err := src.f.ReadAt(buf, int64(srcOffset)); err != nil {
		return 0, 0, errors.Wrap(err, "error reading source block")
	}

	dest.mu.Lock()
	defer dest.mu.Unlock()
	n, err := dest.f.WriteAt(buf, dest.size)
	if err != nil {
		return 0, 0, errors.Wrap(err, "error writing destination block")
	}
	destOffset = uint64(dest.size)
	dest.size += int64(n)
	return destOffset, uint32(n), nil
}
