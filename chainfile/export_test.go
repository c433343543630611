package chainfile

import (
	"io/ioutil"
	"os"
	"testing"
	"time"

	"auric/core"
	"auric/seria"
	"auric/store"

	"github.com/stretchr/testify/require"
	"github.com/syndtr/goleveldb/leveldb"
)

func setupLevelDB(t *testing.T) (*leveldb.DB, func()) {
	tmp, err := ioutil.TempDir("", "chainfile_export_")
	require.NoError(t, err)
	db, err := leveldb.OpenFile(tmp, nil)
	require.NoError(t, err)
	return db, func() {
		require.NoError(t, db.Close())
		require.NoError(t, os.RemoveAll(tmp))
	}
}

func TestExport(t *testing.T) {
	db, cleanup := setupLevelDB(t)
	defer cleanup()

	srcDir := t.TempDir()
	src, err := Open(srcDir)
	require.NoError(t, err)
	defer src.Close()

	b0 := testBlock(t, 1, core.ZeroHash)
	id0, err := b0.ID()
	require.NoError(t, err)
	rec0, err := src.AppendBlock(0, b0)
	require.NoError(t, err)

	b1 := testBlock(t, 2, id0)
	rec1, err := src.AppendBlock(1, b1)
	require.NoError(t, err)

	require.NoError(t, store.WithTx(db, func(tx *leveldb.Transaction) error {
		if err := store.SetBlockIndexEntryTx(tx, &store.BlockIndexEntry{
			Height:     rec0.Height,
			ID:         rec0.ID,
			PrevID:     rec0.PrevID,
			Timestamp:  time.Unix(int64(rec0.Timestamp), 0),
			FileOffset: rec0.Offset,
			FileLength: rec0.Length,
			ReceivedAt: time.Now(),
		}); err != nil {
			return err
		}
		return store.SetBlockIndexEntryTx(tx, &store.BlockIndexEntry{
			Height:     rec1.Height,
			ID:         rec1.ID,
			PrevID:     rec1.PrevID,
			Timestamp:  time.Unix(int64(rec1.Timestamp), 0),
			FileOffset: rec1.Offset,
			FileLength: rec1.Length,
			ReceivedAt: time.Now(),
		})
	}))

	destDir := t.TempDir()
	require.NoError(t, Export(db, src, destDir))

	dest, err := Open(destDir)
	require.NoError(t, err)
	defer dest.Close()

	count, err := dest.Indexes.Count()
	require.NoError(t, err)
	require.Equal(t, uint64(2), count)

	out0, err := dest.ReadBlock(0, seria.DefaultLimits)
	require.NoError(t, err)
	require.Equal(t, b0, out0)

	out1, err := dest.ReadBlock(1, seria.DefaultLimits)
	require.NoError(t, err)
	require.Equal(t, b1, out1)
}
