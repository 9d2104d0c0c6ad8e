package invoker

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/nspcc-dev/near-go/pkg/core/account"
	"github.com/nspcc-dev/near-go/pkg/crypto/hash"
	"github.com/nspcc-dev/near-go/pkg/crypto/keys"
	"github.com/nspcc-dev/near-go/pkg/nearrpc"
	"github.com/nspcc-dev/near-go/pkg/nearrpc/result"
	"github.com/stretchr/testify/require"
)

type rpcInv struct {
	refs []nearrpc.BlockReference
	args []byte
	res  *result.CallResult
	err  error
}

func (r *rpcInv) CallFunction(ref nearrpc.BlockReference, contract account.ID, method string, args []byte) (*result.CallResult, error) {
	r.refs = append(r.refs, ref)
	r.args = args
	return r.res, r.err
}
func (r *rpcInv) ViewAccount(ref nearrpc.BlockReference, id account.ID) (*result.Account, error) {
	r.refs = append(r.refs, ref)
	return &result.Account{}, r.err
}
func (r *rpcInv) ViewAccessKey(ref nearrpc.BlockReference, id account.ID, pub *keys.PublicKey) (*result.AccessKey, error) {
	r.refs = append(r.refs, ref)
	return &result.AccessKey{}, r.err
}
func (r *rpcInv) ViewAccessKeyList(ref nearrpc.BlockReference, id account.ID) (*result.AccessKeyList, error) {
	r.refs = append(r.refs, ref)
	return &result.AccessKeyList{}, r.err
}
func (r *rpcInv) ViewState(ref nearrpc.BlockReference, id account.ID, prefix []byte) (*result.ViewState, error) {
	r.refs = append(r.refs, ref)
	return &result.ViewState{}, r.err
}

func TestInvoker(t *testing.T) {
	resExp := &result.CallResult{Result: []byte("1")}
	pk, err := keys.NewPrivateKey()
	require.NoError(t, err)

	testInv := func(t *testing.T, inv *Invoker, ref nearrpc.BlockReference) {
		ri := &rpcInv{res: resExp}
		inv.client = ri
		res, err := inv.Call("counter.testnet", "get_num", nil)
		require.NoError(t, err)
		require.Equal(t, resExp, res)

		_, err = inv.ViewAccount("alice.testnet")
		require.NoError(t, err)
		_, err = inv.ViewAccessKey("alice.testnet", pk.PublicKey())
		require.NoError(t, err)
		_, err = inv.ViewAccessKeyList("alice.testnet")
		require.NoError(t, err)
		_, err = inv.ViewState("counter.testnet", nil)
		require.NoError(t, err)

		require.Len(t, ri.refs, 5)
		for _, r := range ri.refs {
			require.Equal(t, ref, r)
		}
		require.Equal(t, ref, inv.BlockReference())

		ri.err = errors.New("")
		_, err = inv.Call("counter.testnet", "get_num", nil)
		require.Error(t, err)
	}
	t.Run("finality", func(t *testing.T) {
		testInv(t, New(nil, nearrpc.FinalityDoomSlug), nearrpc.AtFinality(nearrpc.FinalityDoomSlug))
	})
	t.Run("height", func(t *testing.T) {
		testInv(t, NewHistoricAtHeight(100500, nil), nearrpc.AtHeight(100500))
	})
	t.Run("block", func(t *testing.T) {
		h := hash.Sha256([]byte("block"))
		testInv(t, NewHistoricAtBlock(h, nil), nearrpc.AtHash(h))
	})
}

func TestEncodeArgs(t *testing.T) {
	ri := &rpcInv{res: &result.CallResult{}}
	inv := New(ri, nearrpc.FinalityFinal)

	_, err := inv.Call("c.testnet", "m", nil)
	require.NoError(t, err)
	require.Equal(t, []byte{}, ri.args)

	_, err = inv.Call("c.testnet", "m", []byte{1, 2})
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2}, ri.args)

	_, err = inv.Call("c.testnet", "m", json.RawMessage(`{"a":1}`))
	require.NoError(t, err)
	require.Equal(t, []byte(`{"a":1}`), ri.args)

	_, err = inv.Call("c.testnet", "m", map[string]string{"superb_value": "5"})
	require.NoError(t, err)
	require.Equal(t, []byte(`{"superb_value":"5"}`), ri.args)

	_, err = inv.Call("c.testnet", "m", make(chan int))
	require.Error(t, err)
}
