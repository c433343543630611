package store

import (
	"testing"
	"time"

	"auric/core"

	"github.com/stretchr/testify/require"
	"github.com/syndtr/goleveldb/leveldb"
)

func TestBlockIndex_GetSet(t *testing.T) {
	db, done := setupLevelDB(t)
	defer done()

	_, err := GetBlockIndexEntry(db, core.Hash{1})
	require.Error(t, err)

	entry := &BlockIndexEntry{
		Height:     7,
		ID:         core.Hash{1},
		PrevID:     core.Hash{0},
		Timestamp:  time.Unix(1700000000, 0),
		FileOffset: 1024,
		FileLength: 256,
		ReceivedAt: time.Unix(1700000001, 0),
	}
	require.NoError(t, WithTx(db, func(tx *leveldb.Transaction) error {
		return SetBlockIndexEntryTx(tx, entry)
	}))

	actual, err := GetBlockIndexEntry(db, core.Hash{1})
	require.NoError(t, err)
	require.Equal(t, entry.Height, actual.Height)
	require.Equal(t, entry.ID, actual.ID)
	require.Equal(t, entry.PrevID, actual.PrevID)
	require.Equal(t, entry.FileOffset, actual.FileOffset)
	require.Equal(t, entry.FileLength, actual.FileLength)

	id, err := GetBlockIDAtHeight(db, 7)
	require.NoError(t, err)
	require.Equal(t, entry.ID, id)

	tip, ok, err := GetChainTip(db)
	require.NoError(t, err)
	require.True(t, ok)
	require.EqualValues(t, 7, tip)
}

func TestBlockIndex_TipOnlyAdvances(t *testing.T) {
	db, done := setupLevelDB(t)
	defer done()

	require.NoError(t, WithTx(db, func(tx *leveldb.Transaction) error {
		return SetBlockIndexEntryTx(tx, &BlockIndexEntry{Height: 10, ID: core.Hash{10}})
	}))
	require.NoError(t, WithTx(db, func(tx *leveldb.Transaction) error {
		return SetBlockIndexEntryTx(tx, &BlockIndexEntry{Height: 3, ID: core.Hash{3}})
	}))

	tip, ok, err := GetChainTip(db)
	require.NoError(t, err)
	require.True(t, ok)
	require.EqualValues(t, 10, tip)
}

func TestBlockIndex_Stream(t *testing.T) {
	db, done := setupLevelDB(t)
	defer done()

	require.NoError(t, WithTx(db, func(tx *leveldb.Transaction) error {
		if err := SetBlockIndexEntryTx(tx, &BlockIndexEntry{Height: 1, ID: core.Hash{1}}); err != nil {
			return err
		}
		return SetBlockIndexEntryTx(tx, &BlockIndexEntry{Height: 2, ID: core.Hash{2}})
	}))

	stream := StreamBlockIndex(db)
	defer stream.Close()

	var count int
	for {
		entry, err := stream.Next()
		require.NoError(t, err)
		if entry == nil {
			break
		}
		count++
	}
	require.Equal(t, 2, count)

	require.NoError(t, TruncateBlockIndex(db))
	_, ok, err := GetChainTip(db)
	require.NoError(t, err)
	require.False(t, ok)
}
