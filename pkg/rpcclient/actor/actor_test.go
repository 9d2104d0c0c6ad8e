package actor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
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

type RPCClient struct {
	lock sync.Mutex

	akNonce   uint64
	akErr     error
	blockErr  error
	blockHash hash.CryptoHash
	akCalls   int

	// sendErrs are returned by subsequent broadcasts, nil or missing
	// entries mean success.
	sendErrs []error
	sent     []*transaction.SignedTransaction
	outcome  *result.FinalExecutionOutcome

	statuses   []*result.FinalExecutionOutcome
	statusErrs []error
	context    context.Context
}

func (r *RPCClient) CallFunction(ref nearrpc.BlockReference, contract account.ID, method string, args []byte) (*result.CallResult, error) {
	return nil, errors.New("unused")
}
func (r *RPCClient) ViewAccount(ref nearrpc.BlockReference, id account.ID) (*result.Account, error) {
	return nil, errors.New("unused")
}
func (r *RPCClient) ViewAccessKey(ref nearrpc.BlockReference, id account.ID, pub *keys.PublicKey) (*result.AccessKey, error) {
	r.akCalls++
	if r.akErr != nil {
		return nil, r.akErr
	}
	return &result.AccessKey{AccessKey: account.FullAccessKey(r.akNonce)}, nil
}
func (r *RPCClient) ViewAccessKeyList(ref nearrpc.BlockReference, id account.ID) (*result.AccessKeyList, error) {
	return nil, errors.New("unused")
}
func (r *RPCClient) ViewState(ref nearrpc.BlockReference, id account.ID, prefix []byte) (*result.ViewState, error) {
	return nil, errors.New("unused")
}
func (r *RPCClient) Block(ref nearrpc.BlockReference) (*result.Block, error) {
	if r.blockErr != nil {
		return nil, r.blockErr
	}
	return &result.Block{Header: result.BlockHeader{Hash: r.blockHash}}, nil
}
func (r *RPCClient) send(tx *transaction.SignedTransaction) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.sent = append(r.sent, tx)
	if len(r.sendErrs) == 0 {
		return nil
	}
	err := r.sendErrs[0]
	r.sendErrs = r.sendErrs[1:]
	return err
}
func (r *RPCClient) BroadcastTxCommit(tx *transaction.SignedTransaction) (*result.FinalExecutionOutcome, error) {
	if err := r.send(tx); err != nil {
		return nil, err
	}
	if r.outcome != nil {
		return r.outcome, nil
	}
	return successOutcome(`"ok"`), nil
}
func (r *RPCClient) BroadcastTxAsync(tx *transaction.SignedTransaction) (hash.CryptoHash, error) {
	if err := r.send(tx); err != nil {
		return hash.CryptoHash{}, err
	}
	return tx.Hash()
}
func (r *RPCClient) TxStatus(txHash hash.CryptoHash, sender account.ID) (*result.FinalExecutionOutcome, error) {
	var (
		out *result.FinalExecutionOutcome
		err error
	)
	if len(r.statuses) != 0 {
		out, r.statuses = r.statuses[0], r.statuses[1:]
	}
	if len(r.statusErrs) != 0 {
		err, r.statusErrs = r.statusErrs[0], r.statusErrs[1:]
	}
	if out == nil && err == nil {
		return &result.FinalExecutionOutcome{Status: result.FinalExecutionStatus{Kind: result.StatusStarted}}, nil
	}
	return out, err
}
func (r *RPCClient) Context() context.Context {
	if r.context == nil {
		return context.Background()
	}
	return r.context
}

func successOutcome(value string) *result.FinalExecutionOutcome {
	o := &result.FinalExecutionOutcome{
		Status: result.FinalExecutionStatus{Kind: result.StatusSuccessValue, Value: []byte(value)},
	}
	o.TransactionOutcome.ID = hash.Sha256([]byte("tx"))
	o.TransactionOutcome.Outcome.GasBurnt = 2 * util.Tgas
	o.ReceiptsOutcome = []result.ExecutionOutcomeWithID{
		{Outcome: result.ExecutionOutcome{}},
		{Outcome: result.ExecutionOutcome{Logs: []string{"value set"}}},
	}
	return o
}

func invalidNonceErr(txNonce, akNonce uint64) error {
	return &nearrpc.Error{
		Name: nearrpc.HandlerError,
		Cause: &nearrpc.Cause{
			Name: nearrpc.CauseInvalidTransaction,
			Info: json.RawMessage(fmt.Sprintf(`{"TxExecutionError":{"InvalidTxError":{"InvalidNonce":{"tx_nonce":%d,"ak_nonce":%d}}}}`, txNonce, akNonce)),
		},
		Code:    -32000,
		Message: "Server error",
	}
}

func testRPCAndActor(t *testing.T, opts Options) (*RPCClient, *Actor) {
	key, err := keys.NewPrivateKey()
	require.NoError(t, err)
	client := &RPCClient{
		akNonce:   41,
		blockHash: hash.Sha256([]byte("block")),
	}
	if opts.Logger == nil {
		opts.Logger = zaptest.NewLogger(t)
	}
	a, err := New(client, NewSigner("alice.testnet", key, 0), opts)
	require.NoError(t, err)
	return client, a
}

func addValueCall() FunctionCall {
	return FunctionCall{
		Receiver: "counter.testnet",
		Method:   "add_value",
		Args:     map[string]string{"superb_value": "5"},
		Gas:      300 * util.Tgas,
	}
}

func TestNew(t *testing.T) {
	_, err := New(&RPCClient{}, nil, Options{})
	require.Error(t, err)

	key, err := keys.NewPrivateKey()
	require.NoError(t, err)
	_, err = New(&RPCClient{}, NewSigner("alice.testnet", key, 0), Options{MaxRetries: -1})
	require.Error(t, err)

	a, err := New(&RPCClient{}, NewSigner("alice.testnet", key, 0), Options{Finality: nearrpc.FinalityDoomSlug})
	require.NoError(t, err)
	require.Equal(t, account.ID("alice.testnet"), a.Sender())
	require.Equal(t, nearrpc.AtFinality(nearrpc.FinalityDoomSlug), a.BlockReference())
	require.Equal(t, DefaultWaitAttempts, a.opts.WaitAttempts)
}

func TestSignerNonce(t *testing.T) {
	key, err := keys.NewPrivateKey()
	require.NoError(t, err)
	s := NewSigner("alice.testnet", key, 5)
	require.EqualValues(t, 5, s.Nonce())
	require.EqualValues(t, 6, s.NextNonce())

	s.Advance()
	require.EqualValues(t, 6, s.Nonce())

	s.Resync(45)
	require.EqualValues(t, 46, s.NextNonce())

	require.EqualValues(t, 45, s.reconcile(10))
	require.EqualValues(t, 50, s.reconcile(50))
	require.EqualValues(t, 50, s.Nonce())

	sig := s.Sign([]byte("data"))
	require.True(t, s.PublicKey().Verify([]byte("data"), sig))
}

func TestCommitScenario(t *testing.T) {
	client, a := testRPCAndActor(t, Options{MaxRetries: 1})
	client.sendErrs = []error{invalidNonceErr(42, 45)}

	out, err := a.SendCall(addValueCall())
	require.NoError(t, err)
	require.Len(t, client.sent, 2)
	require.EqualValues(t, 42, client.sent[0].Transaction.Nonce)
	require.EqualValues(t, 46, client.sent[1].Transaction.Nonce)
	for _, tx := range client.sent {
		require.True(t, tx.Verify())
		require.Equal(t, client.blockHash, tx.Transaction.BlockHash)
		require.Equal(t, account.ID("alice.testnet"), tx.Transaction.SignerID)
		require.Equal(t, account.ID("counter.testnet"), tx.Transaction.ReceiverID)
		require.Len(t, tx.Transaction.Actions, 1)
		fc := tx.Transaction.Actions[0].(*transaction.FunctionCall)
		require.Equal(t, "add_value", fc.MethodName)
		require.Equal(t, []byte(`{"superb_value":"5"}`), fc.Args)
		require.Equal(t, 300*util.Tgas, fc.Gas)
		require.True(t, fc.Deposit.IsZero())
	}
	require.Equal(t, 1, client.akCalls)
	require.EqualValues(t, 46, a.Signer().Nonce())

	require.Equal(t, []string{"value set"}, out.Logs)
	require.Equal(t, 2*util.Tgas, out.GasBurnt)
	var s string
	require.NoError(t, out.Decode(&s))
	require.Equal(t, "ok", s)
}

func TestCommitRetriesExhausted(t *testing.T) {
	client, a := testRPCAndActor(t, Options{MaxRetries: 2})
	client.sendErrs = []error{invalidNonceErr(42, 45), invalidNonceErr(46, 50), invalidNonceErr(51, 60)}

	_, err := a.SendCall(addValueCall())
	require.ErrorIs(t, err, ErrSubmissionFailed)
	require.ErrorIs(t, err, ErrInvalidNonce)
	var se *SubmissionError
	require.ErrorAs(t, err, &se)
	require.Equal(t, 3, se.Attempts)
	var re *nearrpc.Error
	require.ErrorAs(t, err, &re)

	require.Len(t, client.sent, 3)
	require.EqualValues(t, []uint64{42, 46, 51}, []uint64{client.sent[0].Transaction.Nonce, client.sent[1].Transaction.Nonce, client.sent[2].Transaction.Nonce})
	// The last conflict is not applied, nothing was sent with it.
	require.EqualValues(t, 50, a.Signer().Nonce())
}

func TestCommitNoRetries(t *testing.T) {
	client, a := testRPCAndActor(t, Options{})
	client.sendErrs = []error{invalidNonceErr(42, 45)}

	_, err := a.SendCall(addValueCall())
	require.ErrorIs(t, err, ErrInvalidNonce)
	require.Len(t, client.sent, 1)
}

func TestCommitOtherErrors(t *testing.T) {
	client, a := testRPCAndActor(t, Options{MaxRetries: 3})
	timeout := &nearrpc.Error{Name: nearrpc.HandlerError, Cause: &nearrpc.Cause{Name: nearrpc.CauseTimeoutError}, Message: "Timeout"}
	client.sendErrs = []error{timeout}

	_, err := a.SendCall(addValueCall())
	require.ErrorIs(t, err, ErrSubmissionFailed)
	require.NotErrorIs(t, err, ErrInvalidNonce)
	var se *SubmissionError
	require.ErrorAs(t, err, &se)
	require.Equal(t, 1, se.Attempts)
	require.Equal(t, timeout, se.Reason)
	require.Len(t, client.sent, 1)
	require.EqualValues(t, 41, a.Signer().Nonce())

	// The nonce is reused after a failed submission.
	_, err = a.SendCall(addValueCall())
	require.NoError(t, err)
	require.EqualValues(t, 42, client.sent[1].Transaction.Nonce)
}

func TestCommitPreparationErrors(t *testing.T) {
	client, a := testRPCAndActor(t, Options{MaxRetries: 3})
	client.akErr = &nearrpc.Error{Name: nearrpc.HandlerError, Cause: &nearrpc.Cause{Name: nearrpc.CauseUnknownAccessKey}}
	_, err := a.SendCall(addValueCall())
	var se *SubmissionError
	require.ErrorAs(t, err, &se)
	require.Equal(t, 0, se.Attempts)
	var re *nearrpc.Error
	require.ErrorAs(t, err, &re)
	require.True(t, re.HasCause(nearrpc.CauseUnknownAccessKey))

	client.akErr = nil
	client.blockErr = errors.New("no block")
	_, err = a.SendCall(addValueCall())
	require.ErrorIs(t, err, ErrSubmissionFailed)
	require.Empty(t, client.sent)

	_, err = a.Commit(transaction.NewTemplate("bob.testnet"))
	require.ErrorIs(t, err, transaction.ErrEmptyTransaction)
}

func TestNonceMonotonicity(t *testing.T) {
	client, a := testRPCAndActor(t, Options{})
	client.akNonce = 10
	for i := 0; i < 5; i++ {
		_, err := a.SendTransfer("bob.testnet", util.NewBalance(1))
		require.NoError(t, err)
	}
	require.EqualValues(t, 15, a.Signer().Nonce())
	for i, tx := range client.sent {
		require.EqualValues(t, 11+i, tx.Transaction.Nonce)
	}

	// Chain moved forward on its own.
	client.akNonce = 100
	_, err := a.SendTransfer("bob.testnet", util.NewBalance(1))
	require.NoError(t, err)
	require.EqualValues(t, 101, client.sent[5].Transaction.Nonce)
	require.EqualValues(t, 101, a.Signer().Nonce())
}

func TestCommitOutcomes(t *testing.T) {
	client, a := testRPCAndActor(t, Options{})

	client.outcome = successOutcome(`"ok"`)
	client.outcome.Status = result.FinalExecutionStatus{
		Kind:    result.StatusFailure,
		Failure: &nearrpc.TxExecutionError{Kind: nearrpc.ActionErrorKind, Name: "FunctionCallError"},
	}
	_, err := a.SendCall(addValueCall())
	var ee *ExecutionError
	require.ErrorAs(t, err, &ee)
	require.Equal(t, []string{"value set"}, ee.Logs)
	require.Equal(t, "FunctionCallError", ee.Err.Name)
	require.NotErrorIs(t, err, ErrSubmissionFailed)
	// Failed execution still consumes the nonce.
	require.EqualValues(t, 42, a.Signer().Nonce())

	client.outcome.Status = result.FinalExecutionStatus{Kind: result.StatusNotStarted}
	_, err = a.SendCall(addValueCall())
	require.ErrorIs(t, err, ErrTxNotStarted)

	client.outcome.Status = result.FinalExecutionStatus{Kind: result.StatusStarted}
	out, err := a.SendCall(addValueCall())
	require.NoError(t, err)
	require.Equal(t, []byte{}, out.Data)
	require.Error(t, out.Decode(new(string)))
}

func TestCommitAsync(t *testing.T) {
	client, a := testRPCAndActor(t, Options{MaxRetries: 1})
	client.sendErrs = []error{invalidNonceErr(42, 43)}

	h, err := a.CommitAsync(a.MakeTransfer("bob.testnet", util.NewBalance(5)))
	require.NoError(t, err)
	require.Len(t, client.sent, 2)
	exp, err := client.sent[1].Hash()
	require.NoError(t, err)
	require.Equal(t, exp, h)
	require.EqualValues(t, 44, client.sent[1].Transaction.Nonce)
	require.EqualValues(t, 44, a.Signer().Nonce())
}
