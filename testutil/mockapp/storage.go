package mockapp

import (
	"auric/store"
	"auric/testutil/testfs"

	"github.com/stretchr/testify/require"
	"github.com/syndtr/goleveldb/leveldb"
	"testing"
)

// CreateTestDB opens a store.DB backed by a fresh temp directory. The
// returned func removes the directory and should be deferred.
func CreateTestDB(t *testing.T) (*leveldb.DB, func()) {
	dbDir, done := testfs.NewTempDir(t)
	db, err := store.Open(dbDir)
	require.NoError(t, err)
	return db, func() {
		require.NoError(t, db.Close())
		done()
	}
}
