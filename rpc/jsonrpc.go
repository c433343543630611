package rpc

import (
	"encoding/json"
	"net/http"
)

// jsonRPCRequest/jsonRPCResponse follow JSON-RPC 2.0, the dialect real
// CryptoNote daemons expose to wallets and miners, deliberately distinct
// from the seria binary codec the P2P and fast-sync surfaces use: this
// is the one place in the codebase where the wire format is plain JSON
// rather than the consensus codec, because the consumers here are
// wallets and miners, not chain peers.
type jsonRPCRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
}

type jsonRPCResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  interface{}     `json:"result,omitempty"`
	Error   *jsonRPCError   `json:"error,omitempty"`
}

type jsonRPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

const (
	errCodeParse        = -32700
	errCodeMethodNotFnd = -32601
	errCodeInvalidParam = -32602
	errCodeInternal     = -32603
)

type jsonRPCHandlerFunc func(params json.RawMessage) (interface{}, error)

// jsonRPCDispatcher routes a json_rpc request body to the method handler
// named in the request, the way methods.go registers one handler per
// wallet/miner-facing RPC call.
type jsonRPCDispatcher struct {
	handlers map[string]jsonRPCHandlerFunc
}

func newJSONRPCDispatcher(m *methods) *jsonRPCDispatcher {
	return &jsonRPCDispatcher{
		handlers: map[string]jsonRPCHandlerFunc{
			"get_info":            m.GetInfo,
			"get_height":          m.GetHeight,
			"get_block_template":  m.GetBlockTemplate,
			"submit_block":        m.SubmitBlock,
			"get_transactions":    m.GetTransactions,
			"send_raw_transaction": m.SendRawTransaction,
			"status":              m.Status,
			"ban_peer":            m.BanPeer,
			"unban_peer":          m.UnbanPeer,
			"add_peer":            m.AddPeer,
			"list_peers":          m.ListPeers,
		},
	}
}

func (d *jsonRPCDispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req jsonRPCRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONRPC(w, nil, nil, &jsonRPCError{errCodeParse, "parse error"})
		return
	}

	handler, ok := d.handlers[req.Method]
	if !ok {
		writeJSONRPC(w, req.ID, nil, &jsonRPCError{errCodeMethodNotFnd, "method not found"})
		return
	}

	result, err := handler(req.Params)
	if err != nil {
		writeJSONRPC(w, req.ID, nil, &jsonRPCError{errCodeInternal, err.Error()})
		return
	}
	writeJSONRPC(w, req.ID, result, nil)
}

func writeJSONRPC(w http.ResponseWriter, id json.RawMessage, result interface{}, rpcErr *jsonRPCError) {
	w.Header().Set("Content-Type", "application/json")
	if rpcErr != nil {
		w.WriteHeader(http.StatusOK)
	}
	_ = json.NewEncoder(w).Encode(jsonRPCResponse{
		JSONRPC: "2.0",
		ID:      id,
		Result:  result,
		Error:   rpcErr,
	})
}

func unmarshalParams(params json.RawMessage, v interface{}) error {
	if len(params) == 0 {
		return nil
	}
	return json.Unmarshal(params, v)
}
