package rpc

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestJSONRPCDispatcher_RoutesToMethod(t *testing.T) {
	m, done := setupMethods(t)
	defer done()

	d := newJSONRPCDispatcher(m)

	body, err := json.Marshal(jsonRPCRequest{JSONRPC: "2.0", ID: json.RawMessage("1"), Method: "get_height"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/json_rpc", bytes.NewReader(body))
	w := httptest.NewRecorder()
	d.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var res jsonRPCResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.Nil(t, res.Error)
	require.NotNil(t, res.Result)
}

func TestJSONRPCDispatcher_UnknownMethod(t *testing.T) {
	m, done := setupMethods(t)
	defer done()

	d := newJSONRPCDispatcher(m)

	body, err := json.Marshal(jsonRPCRequest{JSONRPC: "2.0", ID: json.RawMessage("1"), Method: "not_a_method"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/json_rpc", bytes.NewReader(body))
	w := httptest.NewRecorder()
	d.ServeHTTP(w, req)

	var res jsonRPCResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.NotNil(t, res.Error)
	require.Equal(t, errCodeMethodNotFnd, res.Error.Code)
}
