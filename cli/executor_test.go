package main

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/nspcc-dev/near-go/cli/app"
	"github.com/nspcc-dev/near-go/cli/input"
	"github.com/nspcc-dev/near-go/pkg/config"
	"github.com/nspcc-dev/near-go/pkg/core/account"
	"github.com/nspcc-dev/near-go/pkg/core/transaction"
	"github.com/nspcc-dev/near-go/pkg/crypto/hash"
	"github.com/nspcc-dev/near-go/pkg/crypto/keys"
	"github.com/nspcc-dev/near-go/pkg/nearrpc"
	"github.com/nspcc-dev/near-go/pkg/nearrpc/result"
	"github.com/nspcc-dev/near-go/pkg/util"
	"github.com/nspcc-dev/near-go/pkg/wallet"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli"
	"golang.org/x/term"
)

const signerID = "alice.testnet"

var blockHash = hash.Sha256([]byte("block"))

// fakeNode is a minimal NEAR RPC node keeping the signer access key nonce
// and the transactions it received.
type fakeNode struct {
	lock sync.Mutex
	// akNonce is the access key nonce reported by the node.
	akNonce uint64
	// conflicts are access key nonces reported in InvalidNonce errors for
	// the next broadcasts, one per broadcast.
	conflicts []uint64
	sent      []*transaction.SignedTransaction
	// failWith makes broadcast_tx_commit return a failed execution.
	failWith string
}

type rpcRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
	ID      uint64          `json:"id"`
}

func (n *fakeNode) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req rpcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	res, rerr := n.handle(req)
	resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
	if rerr != nil {
		resp["error"] = rerr
	} else {
		resp["result"] = res
	}
	_ = json.NewEncoder(w).Encode(resp)
}

func serverError(cause string, info string) *nearrpc.Error {
	return &nearrpc.Error{
		Name:    nearrpc.HandlerError,
		Cause:   &nearrpc.Cause{Name: cause, Info: json.RawMessage(info)},
		Code:    -32000,
		Message: "Server error",
	}
}

func (n *fakeNode) handle(req rpcRequest) (any, *nearrpc.Error) {
	n.lock.Lock()
	defer n.lock.Unlock()

	info := result.QueryInfo{BlockHeight: 100, BlockHash: blockHash}
	switch req.Method {
	case nearrpc.StatusMethod:
		return result.Status{
			Version:         result.NodeVersion{Version: "1.35.0", Build: "fake"},
			ChainID:         "testnet",
			ProtocolVersion: 61,
			SyncInfo: result.SyncInfo{
				LatestBlockHash:   blockHash,
				LatestBlockHeight: 100,
				LatestBlockTime:   "2023-06-01T12:00:00Z",
			},
		}, nil
	case nearrpc.GasPriceMethod:
		return result.GasPrice{GasPrice: util.NewBalance(100000000)}, nil
	case nearrpc.BlockMethod:
		var p map[string]any
		_ = json.Unmarshal(req.Params, &p)
		height := uint64(100)
		if id, ok := p["block_id"].(float64); ok {
			height = uint64(id)
		}
		return result.Block{
			Author: "node0",
			Header: result.BlockHeader{Height: height, Hash: blockHash},
		}, nil
	case nearrpc.QueryMethod:
		var p map[string]any
		_ = json.Unmarshal(req.Params, &p)
		return n.query(p, info)
	case nearrpc.BroadcastTxCommitMethod, nearrpc.BroadcastTxAsyncMethod:
		var p []string
		_ = json.Unmarshal(req.Params, &p)
		tx, err := transaction.NewSignedTransactionFromBase64(p[0])
		if err != nil {
			return nil, &nearrpc.Error{Name: "REQUEST_VALIDATION_ERROR", Code: -32700, Message: err.Error()}
		}
		if len(n.conflicts) > 0 {
			ak := n.conflicts[0]
			n.conflicts = n.conflicts[1:]
			return nil, serverError(nearrpc.CauseInvalidTransaction, fmt.Sprintf(
				`{"TxExecutionError":{"InvalidTxError":{"InvalidNonce":{"tx_nonce":%d,"ak_nonce":%d}}}}`,
				tx.Transaction.Nonce, ak))
		}
		n.sent = append(n.sent, tx)
		n.akNonce = tx.Transaction.Nonce
		h, _ := tx.Hash()
		if req.Method == nearrpc.BroadcastTxAsyncMethod {
			return h, nil
		}
		return n.outcome(tx), nil
	case nearrpc.TxStatusMethod:
		if len(n.sent) == 0 {
			return nil, serverError(nearrpc.CauseUnknownTx, `{}`)
		}
		return n.outcome(n.sent[len(n.sent)-1]), nil
	}
	return nil, &nearrpc.Error{Name: "REQUEST_VALIDATION_ERROR", Code: -32601, Message: "Method not found"}
}

func (n *fakeNode) query(p map[string]any, info result.QueryInfo) (any, *nearrpc.Error) {
	switch p["request_type"] {
	case nearrpc.ViewAccountRequest:
		if p["account_id"] == "unknown.testnet" {
			return nil, serverError(nearrpc.CauseUnknownAccount, `{"requested_account_id":"unknown.testnet"}`)
		}
		amount, _ := util.ParseBalance("1500000000000000000000000")
		return result.Account{Amount: amount, StorageUsage: 182, QueryInfo: info}, nil
	case nearrpc.ViewAccessKeyRequest:
		return result.AccessKey{AccessKey: account.FullAccessKey(n.akNonce), QueryInfo: info}, nil
	case nearrpc.ViewAccessKeyListRequest:
		return result.AccessKeyList{Keys: []result.AccessKeyInfo{{
			PublicKey: testKey.PublicKey(),
			AccessKey: account.FullAccessKey(n.akNonce),
		}}, QueryInfo: info}, nil
	case nearrpc.ViewStateRequest:
		return result.ViewState{Values: []result.StateItem{
			{Key: []byte("STATE"), Value: []byte{0, 1, 2}},
		}, QueryInfo: info}, nil
	case nearrpc.CallFunctionRequest:
		args, _ := base64.StdEncoding.DecodeString(p["args_base64"].(string))
		switch p["method_name"] {
		case "get_value":
			return result.CallResult{Result: result.ByteArray(`"5"`), Logs: []string{"args: " + string(args)}, QueryInfo: info}, nil
		default:
			return result.CallResult{Logs: []string{}, QueryInfo: result.QueryInfo{
				BlockHeight: 100, BlockHash: blockHash, Error: "MethodNotFound",
			}}, nil
		}
	}
	return nil, serverError(nearrpc.CauseParseError, `{}`)
}

func (n *fakeNode) outcome(tx *transaction.SignedTransaction) *result.FinalExecutionOutcome {
	h, _ := tx.Hash()
	o := &result.FinalExecutionOutcome{
		Status: result.FinalExecutionStatus{Kind: result.StatusSuccessValue, Value: []byte(`"ok"`)},
		Transaction: result.SignedTransactionView{
			SignerID:   tx.Transaction.SignerID,
			PublicKey:  tx.Transaction.PublicKey,
			Nonce:      tx.Transaction.Nonce,
			ReceiverID: tx.Transaction.ReceiverID,
			Actions:    tx.Transaction.Actions,
			Signature:  tx.Signature,
			Hash:       h,
		},
		TransactionOutcome: result.ExecutionOutcomeWithID{
			BlockHash: blockHash,
			ID:        h,
			Outcome: result.ExecutionOutcome{
				Logs:       []string{},
				GasBurnt:   2 * util.Tgas,
				ExecutorID: tx.Transaction.SignerID.String(),
				Status:     result.ExecutionStatus{Kind: result.StatusSuccessReceiptID, ReceiptID: blockHash},
			},
		},
		ReceiptsOutcome: []result.ExecutionOutcomeWithID{{
			BlockHash: blockHash,
			ID:        blockHash,
			Outcome: result.ExecutionOutcome{
				Logs:       []string{"value set"},
				GasBurnt:   3 * util.Tgas,
				ExecutorID: tx.Transaction.ReceiverID.String(),
				Status:     result.ExecutionStatus{Kind: result.StatusSuccessValue, Value: []byte(`"ok"`)},
			},
		}},
	}
	if n.failWith != "" {
		o.Status = result.FinalExecutionStatus{Kind: result.StatusFailure, Failure: &nearrpc.TxExecutionError{
			Kind: nearrpc.ActionErrorKind,
			Name: "FunctionCallError",
			Info: json.RawMessage(`{"index":0,"kind":{"FunctionCallError":{"ExecutionError":"` + n.failWith + `"}}}`),
		}}
		o.ReceiptsOutcome[0].Outcome.Status = result.ExecutionStatus{Kind: result.StatusFailure, Failure: o.Status.Failure}
	}
	return o
}

func (n *fakeNode) lastSent(t *testing.T) *transaction.SignedTransaction {
	n.lock.Lock()
	defer n.lock.Unlock()
	require.NotEmpty(t, n.sent)
	return n.sent[len(n.sent)-1]
}

var testKey, _ = keys.NewPrivateKey()

// executor represents context for a test instance.
// It can be safely used in multiple tests, but not in parallel.
type executor struct {
	// CLI is a cli application to test.
	CLI *cli.App
	// Node is a fake RPC node (can be nil).
	Node *fakeNode
	// Endpoint is the node address.
	Endpoint string
	// Credentials is a directory with the signer credentials.
	Credentials string
	// Out contains command output.
	Out *bytes.Buffer
	// Err contains command errors.
	Err *bytes.Buffer
	// In contains command input.
	In *bytes.Buffer
}

func newExecutor(t *testing.T, needNode bool) *executor {
	e := &executor{
		CLI:         app.New(),
		Credentials: t.TempDir(),
		Out:         bytes.NewBuffer(nil),
		Err:         bytes.NewBuffer(nil),
		In:          bytes.NewBuffer(nil),
	}
	e.CLI.Writer = e.Out
	e.CLI.ErrWriter = e.Err
	if needNode {
		e.Node = &fakeNode{akNonce: 41}
		srv := httptest.NewServer(e.Node)
		t.Cleanup(srv.Close)
		e.Endpoint = srv.URL

		store, err := wallet.NewStore(e.Credentials, config.TestNet)
		require.NoError(t, err)
		require.NoError(t, store.Save(&wallet.Credentials{AccountID: signerID, PrivateKey: testKey}))
	}
	t.Cleanup(func() {
		input.Terminal = nil
	})
	return e
}

// txArgs returns common arguments of a tx subcommand.
func (e *executor) txArgs(cmd string, args ...string) []string {
	return append([]string{"near-go", "tx", cmd,
		"-r", e.Endpoint, "--credentials", e.Credentials, "-a", signerID}, args...)
}

// queryArgs returns common arguments of a query subcommand.
func (e *executor) queryArgs(cmd string, args ...string) []string {
	return append([]string{"near-go", "query", cmd, "-r", e.Endpoint}, args...)
}

func (e *executor) getNextLine(t *testing.T) string {
	line, err := e.Out.ReadString('\n')
	require.NoError(t, err)
	return strings.TrimSuffix(line, "\n")
}

func (e *executor) checkNextLine(t *testing.T, expected string) {
	line := e.getNextLine(t)
	e.checkLine(t, line, expected)
}

func (e *executor) checkLine(t *testing.T, line, expected string) {
	require.Regexp(t, expected, line)
}

func (e *executor) checkEOF(t *testing.T) {
	_, err := e.Out.ReadString('\n')
	require.True(t, errors.Is(err, io.EOF))
}

func setExitFunc() <-chan int {
	ch := make(chan int, 1)
	cli.OsExiter = func(code int) {
		ch <- code
	}
	return ch
}

func checkExit(t *testing.T, ch <-chan int, code int) {
	select {
	case c := <-ch:
		require.Equal(t, code, c)
	default:
		if code != 0 {
			require.Fail(t, "no exit was called")
		}
	}
}

// RunWithError runs command and checks that is exits with error.
func (e *executor) RunWithError(t *testing.T, args ...string) {
	ch := setExitFunc()
	require.Error(t, e.run(args...))
	checkExit(t, ch, 1)
}

// Run runs command and checks that there were no errors.
func (e *executor) Run(t *testing.T, args ...string) {
	ch := setExitFunc()
	require.NoError(t, e.run(args...))
	checkExit(t, ch, 0)
}

func (e *executor) run(args ...string) error {
	e.Out.Reset()
	e.Err.Reset()
	input.Terminal = term.NewTerminal(input.ReadWriter{
		Reader: e.In,
		Writer: io.Discard,
	}, "")
	err := e.CLI.Run(args)
	input.Terminal = nil
	e.In.Reset()
	return err
}
