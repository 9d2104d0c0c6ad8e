/*
Package nearrpc contains a set of types used for JSON-RPC communication with
NEAR nodes. It defines basic request/response types, error classification
and block reference parameters.
*/
package nearrpc

import (
	"encoding/json"
)

const (
	// JSONRPCVersion is the only JSON-RPC protocol version supported.
	JSONRPCVersion = "2.0"
)

// RPC method names.
const (
	BlockMethod             = "block"
	QueryMethod             = "query"
	StatusMethod            = "status"
	GasPriceMethod          = "gas_price"
	TxStatusMethod          = "EXPERIMENTAL_tx_status"
	BroadcastTxCommitMethod = "broadcast_tx_commit"
	BroadcastTxAsyncMethod  = "broadcast_tx_async"
)

// Query request types.
const (
	CallFunctionRequest      = "call_function"
	ViewAccessKeyRequest     = "view_access_key"
	ViewAccessKeyListRequest = "view_access_key_list"
	ViewAccountRequest       = "view_account"
	ViewStateRequest         = "view_state"
)

type (
	// Request represents JSON-RPC request. Params are either an object or an
	// array depending on the method.
	Request struct {
		// JSONRPC is the protocol version, only valid when it contains JSONRPCVersion.
		JSONRPC string `json:"jsonrpc"`
		// Method is the method being called.
		Method string `json:"method"`
		// Params is a set of method-specific parameters.
		Params any `json:"params"`
		// ID is an identifier associated with this request, the client uses
		// numeric ones.
		ID uint64 `json:"id"`
	}

	// Header is a generic JSON-RPC 2.0 response header (ID and JSON-RPC version).
	Header struct {
		ID      json.RawMessage `json:"id"`
		JSONRPC string          `json:"jsonrpc"`
	}

	// Response represents a standard raw JSON-RPC 2.0
	// response: http://www.jsonrpc.org/specification#response_object.
	Response struct {
		Header
		Error  *Error          `json:"error,omitempty"`
		Result json.RawMessage `json:"result,omitempty"`
	}
)
