package chainfile

import (
	"path/filepath"
	"testing"

	"auric/core"

	"github.com/stretchr/testify/require"
)

func TestIndexFile_WriteReadRecord(t *testing.T) {
	dir := t.TempDir()
	idx, err := OpenIndexFile(filepath.Join(dir, IndexesFileName))
	require.NoError(t, err)
	defer idx.Close()

	rec := IndexRecord{
		Height:    3,
		ID:        core.Blake2B256([]byte("block-3")),
		PrevID:    core.Blake2B256([]byte("block-2")),
		Offset:    1024,
		Length:    256,
		Timestamp: 1700000000,
	}
	require.NoError(t, idx.WriteRecord(rec))

	out, err := idx.ReadRecord(3)
	require.NoError(t, err)
	require.Equal(t, rec, out)

	count, err := idx.Count()
	require.NoError(t, err)
	require.Equal(t, uint64(4), count)
}

func TestIndexFile_OverwriteRecord(t *testing.T) {
	dir := t.TempDir()
	idx, err := OpenIndexFile(filepath.Join(dir, IndexesFileName))
	require.NoError(t, err)
	defer idx.Close()

	first := IndexRecord{Height: 0, ID: core.Blake2B256([]byte("a")), Offset: 0, Length: 10}
	require.NoError(t, idx.WriteRecord(first))

	second := IndexRecord{Height: 0, ID: core.Blake2B256([]byte("b")), Offset: 10, Length: 20}
	require.NoError(t, idx.WriteRecord(second))

	out, err := idx.ReadRecord(0)
	require.NoError(t, err)
	require.Equal(t, second, out)
}
