package rpcclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/nspcc-dev/near-go/pkg/core/account"
	"github.com/nspcc-dev/near-go/pkg/core/transaction"
	"github.com/nspcc-dev/near-go/pkg/crypto/hash"
	"github.com/nspcc-dev/near-go/pkg/crypto/keys"
	"github.com/nspcc-dev/near-go/pkg/nearrpc"
	"github.com/nspcc-dev/near-go/pkg/nearrpc/result"
	"github.com/nspcc-dev/near-go/pkg/util"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type rpcRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
	ID      uint64          `json:"id"`
}

// handlerFunc returns either a result or an error for the request.
type handlerFunc func(t *testing.T, req rpcRequest) (any, *nearrpc.Error)

func initTestServer(t *testing.T, h handlerFunc) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		var req rpcRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, nearrpc.JSONRPCVersion, req.JSONRPC)
		res, rerr := h(t, req)
		resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
		if rerr != nil {
			resp["error"] = rerr
		} else {
			resp["result"] = res
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(t *testing.T, h handlerFunc) *Client {
	srv := initTestServer(t, h)
	c, err := New(context.Background(), srv.URL, Options{Logger: zaptest.NewLogger(t)})
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

func params(t *testing.T, req rpcRequest) map[string]any {
	var p map[string]any
	require.NoError(t, json.Unmarshal(req.Params, &p))
	return p
}

func TestGetEndpoint(t *testing.T) {
	host := "http://localhost:1234"
	u, err := url.Parse(host)
	require.NoError(t, err)
	client := Client{
		endpoint: u,
	}
	require.Equal(t, host, client.Endpoint())
}

func TestNewBadEndpoint(t *testing.T) {
	_, err := New(context.Background(), "ftp://localhost", Options{})
	require.Error(t, err)
	_, err = New(context.Background(), "http://[::1", Options{})
	require.Error(t, err)
}

func TestRequestIDs(t *testing.T) {
	var ids []uint64
	c := newTestClient(t, func(t *testing.T, req rpcRequest) (any, *nearrpc.Error) {
		ids = append(ids, req.ID)
		return map[string]any{"gas_price": "100000000"}, nil
	})
	for i := 0; i < 3; i++ {
		_, err := c.GasPrice(nil)
		require.NoError(t, err)
	}
	require.Equal(t, []uint64{1, 2, 3}, ids)
}

func TestBlock(t *testing.T) {
	blockHash := hash.Sha256([]byte("block"))
	c := newTestClient(t, func(t *testing.T, req rpcRequest) (any, *nearrpc.Error) {
		require.Equal(t, nearrpc.BlockMethod, req.Method)
		p := params(t, req)
		if id, ok := p["block_id"]; ok {
			require.EqualValues(t, 100, id)
		} else {
			require.Equal(t, "optimistic", p["finality"])
		}
		return map[string]any{
			"author": "node.testnet",
			"header": map[string]any{
				"height":    100,
				"hash":      blockHash.String(),
				"prev_hash": blockHash.String(),
				"gas_price": "100000000",
			},
			"chunks": []any{},
		}, nil
	})

	b, err := c.Block(nearrpc.AtFinality(nearrpc.FinalityNone))
	require.NoError(t, err)
	require.EqualValues(t, 100, b.Header.Height)
	require.Equal(t, blockHash, b.Header.Hash)
	require.Equal(t, "100000000", b.Header.GasPrice.String())

	_, err = c.Block(nearrpc.AtHeight(100))
	require.NoError(t, err)
}

func TestStatusAndGasPrice(t *testing.T) {
	blockHash := hash.Sha256([]byte("block"))
	c := newTestClient(t, func(t *testing.T, req rpcRequest) (any, *nearrpc.Error) {
		switch req.Method {
		case nearrpc.StatusMethod:
			require.JSONEq(t, `[]`, string(req.Params))
			return map[string]any{
				"chain_id":  "testnet",
				"version":   map[string]any{"version": "1.35.0", "build": "abc"},
				"sync_info": map[string]any{"latest_block_height": 7, "latest_block_hash": blockHash.String(), "syncing": false},
			}, nil
		case nearrpc.GasPriceMethod:
			var p []any
			require.NoError(t, json.Unmarshal(req.Params, &p))
			require.Len(t, p, 1)
			if p[0] != nil {
				require.Equal(t, blockHash.String(), p[0])
			}
			return map[string]any{"gas_price": "100000000"}, nil
		}
		t.Fatalf("unexpected method %s", req.Method)
		return nil, nil
	})

	st, err := c.Status()
	require.NoError(t, err)
	require.Equal(t, "testnet", st.ChainID)
	require.EqualValues(t, 7, st.SyncInfo.LatestBlockHeight)

	gp, err := c.GasPrice(nil)
	require.NoError(t, err)
	require.Equal(t, "100000000", gp.GasPrice.String())
	_, err = c.GasPrice(&blockHash)
	require.NoError(t, err)
}

func TestQueries(t *testing.T) {
	pk, err := keys.NewPrivateKey()
	require.NoError(t, err)
	blockHash := hash.Sha256([]byte("block"))
	c := newTestClient(t, func(t *testing.T, req rpcRequest) (any, *nearrpc.Error) {
		require.Equal(t, nearrpc.QueryMethod, req.Method)
		p := params(t, req)
		require.Equal(t, "final", p["finality"])
		info := map[string]any{"block_height": 9, "block_hash": blockHash.String()}
		with := func(m map[string]any) map[string]any {
			for k, v := range info {
				m[k] = v
			}
			return m
		}
		switch p["request_type"] {
		case nearrpc.CallFunctionRequest:
			require.Equal(t, "counter.testnet", p["account_id"])
			require.Equal(t, "get_num", p["method_name"])
			require.Equal(t, "e30=", p["args_base64"])
			return with(map[string]any{"result": []int{53}, "logs": []string{}}), nil
		case nearrpc.ViewAccountRequest:
			return with(map[string]any{"amount": "10", "locked": "0", "code_hash": "11111111111111111111111111111111", "storage_usage": 100}), nil
		case nearrpc.ViewAccessKeyRequest:
			require.Equal(t, pk.PublicKey().String(), p["public_key"])
			return with(map[string]any{"nonce": 41, "permission": "FullAccess"}), nil
		case nearrpc.ViewAccessKeyListRequest:
			return with(map[string]any{"keys": []any{map[string]any{
				"public_key": pk.PublicKey().String(),
				"access_key": map[string]any{"nonce": 1, "permission": "FullAccess"},
			}}}), nil
		case nearrpc.ViewStateRequest:
			require.Equal(t, "U1Q=", p["prefix_base64"])
			return with(map[string]any{"values": []any{map[string]any{"key": "U1RBVEU=", "value": "AQ=="}}}), nil
		}
		t.Fatalf("unexpected request type %v", p["request_type"])
		return nil, nil
	})
	ref := nearrpc.AtFinality(nearrpc.FinalityFinal)
	id := account.MustID("counter.testnet")

	cr, err := c.CallFunction(ref, id, "get_num", []byte("{}"))
	require.NoError(t, err)
	require.Equal(t, []byte("5"), []byte(cr.Result))
	require.EqualValues(t, 9, cr.BlockHeight)

	acc, err := c.ViewAccount(ref, id)
	require.NoError(t, err)
	require.Equal(t, "10", acc.Amount.String())

	ak, err := c.ViewAccessKey(ref, id, pk.PublicKey())
	require.NoError(t, err)
	require.EqualValues(t, 41, ak.Nonce)

	list, err := c.ViewAccessKeyList(ref, id)
	require.NoError(t, err)
	require.True(t, list.Keys[0].PublicKey.Equal(pk.PublicKey()))

	st, err := c.ViewState(ref, id, []byte("ST"))
	require.NoError(t, err)
	require.Equal(t, []byte("STATE"), st.Values[0].Key)
}

func TestQueryErrorInResult(t *testing.T) {
	c := newTestClient(t, func(t *testing.T, req rpcRequest) (any, *nearrpc.Error) {
		return map[string]any{"error": "wasm execution failed", "logs": []string{"panic"}, "block_height": 1}, nil
	})
	_, err := c.CallFunction(nearrpc.BlockReference{}, "counter.testnet", "get_num", nil)
	var qe *result.QueryError
	require.ErrorAs(t, err, &qe)
	require.Equal(t, "wasm execution failed", qe.Message)
	require.Equal(t, []string{"panic"}, qe.Logs)

	_, err = c.ViewAccessKey(nearrpc.BlockReference{}, "alice.testnet", mustKey(t).PublicKey())
	require.ErrorAs(t, err, &qe)
}

func mustKey(t *testing.T) *keys.PrivateKey {
	pk, err := keys.NewPrivateKey()
	require.NoError(t, err)
	return pk
}

func signedTx(t *testing.T) *transaction.SignedTransaction {
	pk := mustKey(t)
	tx, err := transaction.NewTemplate("bob.testnet", &transaction.Transfer{Deposit: util.NewBalance(1)}).
		Build("alice.testnet", pk.PublicKey(), 1, hash.Sha256([]byte("block")))
	require.NoError(t, err)
	stx, err := tx.Sign(pk)
	require.NoError(t, err)
	return stx
}

func TestBroadcast(t *testing.T) {
	stx := signedTx(t)
	txHash, err := stx.Hash()
	require.NoError(t, err)
	b64, err := stx.Base64()
	require.NoError(t, err)

	c := newTestClient(t, func(t *testing.T, req rpcRequest) (any, *nearrpc.Error) {
		var p []string
		require.NoError(t, json.Unmarshal(req.Params, &p))
		switch req.Method {
		case nearrpc.BroadcastTxAsyncMethod:
			require.Equal(t, []string{b64}, p)
			return txHash.String(), nil
		case nearrpc.BroadcastTxCommitMethod:
			require.Equal(t, []string{b64}, p)
			return map[string]any{"status": map[string]any{"SuccessValue": ""}, "receipts_outcome": []any{}}, nil
		case nearrpc.TxStatusMethod:
			require.Equal(t, []string{txHash.String(), "alice.testnet"}, p)
			return map[string]any{"status": "Started", "receipts_outcome": []any{}}, nil
		}
		t.Fatalf("unexpected method %s", req.Method)
		return nil, nil
	})

	h, err := c.BroadcastTxAsync(stx)
	require.NoError(t, err)
	require.Equal(t, txHash, h)

	out, err := c.BroadcastTxCommit(stx)
	require.NoError(t, err)
	require.Equal(t, result.StatusSuccessValue, out.Status.Kind)

	out, err = c.TxStatus(txHash, "alice.testnet")
	require.NoError(t, err)
	require.Equal(t, result.StatusStarted, out.Status.Kind)
}

func TestRPCError(t *testing.T) {
	c := newTestClient(t, func(t *testing.T, req rpcRequest) (any, *nearrpc.Error) {
		return nil, &nearrpc.Error{
			Name:    nearrpc.HandlerError,
			Cause:   &nearrpc.Cause{Name: nearrpc.CauseInvalidTransaction, Info: json.RawMessage(`{"TxExecutionError":{"InvalidTxError":{"InvalidNonce":{"tx_nonce":42,"ak_nonce":45}}}}`)},
			Code:    -32000,
			Message: "Server error",
		}
	})
	_, err := c.BroadcastTxCommit(signedTx(t))
	var re *nearrpc.Error
	require.ErrorAs(t, err, &re)
	require.True(t, re.HasCause(nearrpc.CauseInvalidTransaction))
	ine, ok := nearrpc.InvalidNonce(err)
	require.True(t, ok)
	require.EqualValues(t, 45, ine.AkNonce)

	var te *TransportError
	require.False(t, errors.As(err, &te))
}

func TestTransportErrors(t *testing.T) {
	t.Run("http status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.Copy(io.Discard, r.Body)
			http.Error(w, "down", http.StatusBadGateway)
		}))
		defer srv.Close()
		c, err := New(context.Background(), srv.URL, Options{})
		require.NoError(t, err)
		_, err = c.Status()
		var te *TransportError
		require.ErrorAs(t, err, &te)
		require.Equal(t, nearrpc.StatusMethod, te.Method)
		require.Contains(t, te.Error(), "502")
	})
	t.Run("no result", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":1}`))
		}))
		defer srv.Close()
		c, err := New(context.Background(), srv.URL, Options{})
		require.NoError(t, err)
		_, err = c.Status()
		require.ErrorIs(t, err, ErrNoResult)
	})
	t.Run("closed server", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close()
		c, err := New(context.Background(), srv.URL, Options{})
		require.NoError(t, err)
		_, err = c.Status()
		var te *TransportError
		require.ErrorAs(t, err, &te)
		require.Error(t, c.Ping())
	})
	t.Run("cancelled context", func(t *testing.T) {
		srv := initTestServer(t, func(t *testing.T, req rpcRequest) (any, *nearrpc.Error) {
			return map[string]any{}, nil
		})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		c, err := New(ctx, srv.URL, Options{})
		require.NoError(t, err)
		_, err = c.Status()
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestPing(t *testing.T) {
	srv := initTestServer(t, func(t *testing.T, req rpcRequest) (any, *nearrpc.Error) {
		return nil, nil
	})
	c, err := New(context.Background(), srv.URL, Options{})
	require.NoError(t, err)
	require.NoError(t, c.Ping())
}
