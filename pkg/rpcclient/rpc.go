package rpcclient

import (
	"encoding/base64"

	"github.com/nspcc-dev/near-go/pkg/core/account"
	"github.com/nspcc-dev/near-go/pkg/core/transaction"
	"github.com/nspcc-dev/near-go/pkg/crypto/hash"
	"github.com/nspcc-dev/near-go/pkg/crypto/keys"
	"github.com/nspcc-dev/near-go/pkg/nearrpc"
	"github.com/nspcc-dev/near-go/pkg/nearrpc/result"
)

// Block returns the block at the given reference.
func (c *Client) Block(ref nearrpc.BlockReference) (*result.Block, error) {
	var resp = new(result.Block)
	if err := c.performRequest(nearrpc.BlockMethod, ref.Params(nil), resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// Status returns the node status.
func (c *Client) Status() (*result.Status, error) {
	var resp = new(result.Status)
	if err := c.performRequest(nearrpc.StatusMethod, []any{}, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// GasPrice returns the gas price at the given block or the latest one if
// blockHash is nil.
func (c *Client) GasPrice(blockHash *hash.CryptoHash) (*result.GasPrice, error) {
	var (
		params = []any{nil}
		resp   = new(result.GasPrice)
	)
	if blockHash != nil {
		params[0] = blockHash.String()
	}
	if err := c.performRequest(nearrpc.GasPriceMethod, params, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// Query performs a generic query of the given request type, params are merged
// with the block reference and the result is decoded into v.
func (c *Client) Query(ref nearrpc.BlockReference, requestType string, params map[string]any, v any) error {
	var p = map[string]any{"request_type": requestType}
	for k, val := range params {
		p[k] = val
	}
	return c.performRequest(nearrpc.QueryMethod, ref.Params(p), v)
}

// CallFunction invokes a view method of the contract with raw args. An error
// reported by the contract is returned as *result.QueryError.
func (c *Client) CallFunction(ref nearrpc.BlockReference, contract account.ID, method string, args []byte) (*result.CallResult, error) {
	var (
		params = map[string]any{
			"account_id":  contract,
			"method_name": method,
			"args_base64": base64.StdEncoding.EncodeToString(args),
		}
		resp = new(result.CallResult)
	)
	if err := c.Query(ref, nearrpc.CallFunctionRequest, params, resp); err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}
	return resp, nil
}

// ViewAccount returns the account state.
func (c *Client) ViewAccount(ref nearrpc.BlockReference, id account.ID) (*result.Account, error) {
	var resp = new(result.Account)
	if err := c.Query(ref, nearrpc.ViewAccountRequest, map[string]any{"account_id": id}, resp); err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}
	return resp, nil
}

// ViewAccessKey returns the access key of the account.
func (c *Client) ViewAccessKey(ref nearrpc.BlockReference, id account.ID, pub *keys.PublicKey) (*result.AccessKey, error) {
	var (
		params = map[string]any{
			"account_id": id,
			"public_key": pub.String(),
		}
		resp = new(result.AccessKey)
	)
	if err := c.Query(ref, nearrpc.ViewAccessKeyRequest, params, resp); err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}
	return resp, nil
}

// ViewAccessKeyList returns all access keys of the account.
func (c *Client) ViewAccessKeyList(ref nearrpc.BlockReference, id account.ID) (*result.AccessKeyList, error) {
	var resp = new(result.AccessKeyList)
	if err := c.Query(ref, nearrpc.ViewAccessKeyListRequest, map[string]any{"account_id": id}, resp); err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}
	return resp, nil
}

// ViewState returns contract storage entries with keys starting with prefix.
func (c *Client) ViewState(ref nearrpc.BlockReference, id account.ID, prefix []byte) (*result.ViewState, error) {
	var (
		params = map[string]any{
			"account_id":    id,
			"prefix_base64": base64.StdEncoding.EncodeToString(prefix),
		}
		resp = new(result.ViewState)
	)
	if err := c.Query(ref, nearrpc.ViewStateRequest, params, resp); err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}
	return resp, nil
}

// TxStatus returns the execution outcome of the transaction sent by sender.
func (c *Client) TxStatus(txHash hash.CryptoHash, sender account.ID) (*result.FinalExecutionOutcome, error) {
	var (
		params = []any{txHash.String(), sender}
		resp   = new(result.FinalExecutionOutcome)
	)
	if err := c.performRequest(nearrpc.TxStatusMethod, params, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// BroadcastTxCommit sends the transaction and waits for its execution.
func (c *Client) BroadcastTxCommit(tx *transaction.SignedTransaction) (*result.FinalExecutionOutcome, error) {
	b64, err := tx.Base64()
	if err != nil {
		return nil, err
	}
	var resp = new(result.FinalExecutionOutcome)
	if err := c.performRequest(nearrpc.BroadcastTxCommitMethod, []any{b64}, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// BroadcastTxAsync sends the transaction and returns its hash without
// waiting for execution.
func (c *Client) BroadcastTxAsync(tx *transaction.SignedTransaction) (hash.CryptoHash, error) {
	var resp hash.CryptoHash
	b64, err := tx.Base64()
	if err != nil {
		return resp, err
	}
	if err := c.performRequest(nearrpc.BroadcastTxAsyncMethod, []any{b64}, &resp); err != nil {
		return resp, err
	}
	return resp, nil
}
