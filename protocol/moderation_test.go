package protocol

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"auric/core"
	"auric/store"

	"github.com/stretchr/testify/require"
)

func TestIngestBanLists(t *testing.T) {
	db, doneDB := setupDB(t)
	defer doneDB()

	foo := core.PublicKey{1}
	bar := core.PublicKey{2}
	baz := core.PublicKey{3}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("AURIBAN:v1\n" + foo.String() + "\n" + bar.String() + "\n"))
	}))
	defer srv.Close()

	err := IngestBanLists(db, []string{srv.URL})
	require.NoError(t, err)

	fooBanned, err := store.PublicKeyIsBanned(db, foo)
	require.NoError(t, err)
	require.True(t, fooBanned)
	barBanned, err := store.PublicKeyIsBanned(db, bar)
	require.NoError(t, err)
	require.True(t, barBanned)
	bazBanned, err := store.PublicKeyIsBanned(db, baz)
	require.NoError(t, err)
	require.False(t, bazBanned)

	lastImport, err := store.GetLastBanListImportAt(db)
	require.NoError(t, err)
	require.False(t, lastImport.IsZero())

	// A second call within BanListUpdateInterval should not re-fetch.
	srv.Config.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("ban list should be cached")
	})
	require.NoError(t, IngestBanLists(db, []string{srv.URL}))
}
