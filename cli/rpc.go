package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// RPCClient is a minimal JSON-RPC 2.0 client for talking to auricd's
// /json_rpc endpoint.
type RPCClient struct {
	endpoint string
	http     *http.Client
}

// DialRPC builds an RPCClient pointed at the host/port configured by
// the FlagRPCHost/FlagRPCPort persistent flags.
func DialRPC(cmd *cobra.Command) (*RPCClient, error) {
	rpcHost, err := cmd.Flags().GetString(FlagRPCHost)
	if err != nil {
		return nil, err
	}
	rpcPort, err := cmd.Flags().GetInt(FlagRPCPort)
	if err != nil {
		return nil, err
	}
	addr := net.JoinHostPort(rpcHost, strconv.Itoa(rpcPort))
	return &RPCClient{
		endpoint: fmt.Sprintf("http://%s/json_rpc", addr),
		http:     &http.Client{Timeout: 30 * time.Second},
	}, nil
}

type rpcRequest struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      int         `json:"id"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Call invokes method with params and decodes the result into out. out
// may be nil when the caller only cares whether the call succeeded.
func (c *RPCClient) Call(method string, params interface{}, out interface{}) error {
	body, err := json.Marshal(rpcRequest{JSONRPC: "2.0", ID: 1, Method: method, Params: params})
	if err != nil {
		return errors.Wrap(err, "error marshaling rpc request")
	}

	res, err := c.http.Post(c.endpoint, "application/json", bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "error reaching rpc server")
	}
	defer res.Body.Close()

	raw, err := ioutil.ReadAll(res.Body)
	if err != nil {
		return errors.Wrap(err, "error reading rpc response")
	}

	var envelope rpcResponse
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return errors.Wrap(err, "error decoding rpc response")
	}
	if envelope.Error != nil {
		return errors.Errorf("rpc error %d: %s", envelope.Error.Code, envelope.Error.Message)
	}
	if out == nil || len(envelope.Result) == 0 {
		return nil
	}
	return json.Unmarshal(envelope.Result, out)
}
