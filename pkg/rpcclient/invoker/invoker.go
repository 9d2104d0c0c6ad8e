/*
Package invoker provides a convenient wrapper to perform view calls and
state queries via RPC client.

Invoker never produces transactions and never changes the state of the chain,
it evaluates everything at the configured block reference which is either a
finality level or some fixed block (see NewHistoricAtHeight and
NewHistoricAtBlock).
*/
package invoker

import (
	"encoding/json"
	"fmt"

	"github.com/nspcc-dev/near-go/pkg/core/account"
	"github.com/nspcc-dev/near-go/pkg/crypto/hash"
	"github.com/nspcc-dev/near-go/pkg/crypto/keys"
	"github.com/nspcc-dev/near-go/pkg/nearrpc"
	"github.com/nspcc-dev/near-go/pkg/nearrpc/result"
)

// RPCInvoke is a set of RPC methods needed to execute view calls and queries.
type RPCInvoke interface {
	CallFunction(ref nearrpc.BlockReference, contract account.ID, method string, args []byte) (*result.CallResult, error)
	ViewAccount(ref nearrpc.BlockReference, id account.ID) (*result.Account, error)
	ViewAccessKey(ref nearrpc.BlockReference, id account.ID, pub *keys.PublicKey) (*result.AccessKey, error)
	ViewAccessKeyList(ref nearrpc.BlockReference, id account.ID) (*result.AccessKeyList, error)
	ViewState(ref nearrpc.BlockReference, id account.ID, prefix []byte) (*result.ViewState, error)
}

// Invoker allows to perform view calls using RPC client. It uses regular Go
// types for call arguments and doesn't do anything with the result, that's
// left for the upper layer (see unwrap package).
type Invoker struct {
	client RPCInvoke
	ref    nearrpc.BlockReference
}

// New creates an Invoker working at the given finality.
func New(client RPCInvoke, finality nearrpc.Finality) *Invoker {
	return &Invoker{client: client, ref: nearrpc.AtFinality(finality)}
}

// NewHistoricAtHeight creates an Invoker working at the given block height.
func NewHistoricAtHeight(height uint64, client RPCInvoke) *Invoker {
	return &Invoker{client: client, ref: nearrpc.AtHeight(height)}
}

// NewHistoricAtBlock creates an Invoker working at the given block.
func NewHistoricAtBlock(block hash.CryptoHash, client RPCInvoke) *Invoker {
	return &Invoker{client: client, ref: nearrpc.AtHash(block)}
}

// BlockReference returns the block reference used for all calls.
func (v *Invoker) BlockReference() nearrpc.BlockReference {
	return v.ref
}

// EncodeArgs converts call arguments into bytes: []byte and json.RawMessage
// are used as is, nil gives empty args and anything else is JSON-encoded.
func EncodeArgs(args any) ([]byte, error) {
	switch a := args.(type) {
	case nil:
		return []byte{}, nil
	case []byte:
		return a, nil
	case json.RawMessage:
		return a, nil
	}
	b, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("failed to encode arguments: %w", err)
	}
	return b, nil
}

// Call invokes a view method of the contract with the given arguments (see
// EncodeArgs) and returns the raw result. A contract-side failure is
// returned as *result.QueryError.
func (v *Invoker) Call(contract account.ID, method string, args any) (*result.CallResult, error) {
	b, err := EncodeArgs(args)
	if err != nil {
		return nil, err
	}
	return v.client.CallFunction(v.ref, contract, method, b)
}

// ViewAccount returns the state of the account.
func (v *Invoker) ViewAccount(id account.ID) (*result.Account, error) {
	return v.client.ViewAccount(v.ref, id)
}

// ViewAccessKey returns the access key of the account.
func (v *Invoker) ViewAccessKey(id account.ID, pub *keys.PublicKey) (*result.AccessKey, error) {
	return v.client.ViewAccessKey(v.ref, id, pub)
}

// ViewAccessKeyList returns all access keys of the account.
func (v *Invoker) ViewAccessKeyList(id account.ID) (*result.AccessKeyList, error) {
	return v.client.ViewAccessKeyList(v.ref, id)
}

// ViewState returns the contract storage entries with keys starting with
// the prefix.
func (v *Invoker) ViewState(id account.ID, prefix []byte) (*result.ViewState, error) {
	return v.client.ViewState(v.ref, id, prefix)
}
