/*
Package actor provides a way to change chain state via RPC client.

This layer builds on top of the basic RPC client and [invoker] package, it
simplifies creating, signing and sending transactions to the network (since
that's the only way chain state is changed). Transactions are described by
templates (receiver and actions), the signer nonce and the block hash are
filled in by Actor on submission. A submission rejected because of a nonce
conflict is retried with a nonce taken from the node's error, up to
Options.MaxRetries times.

"Make" prefix is used for methods that create templates, while "Send" prefix
(and shorter names for account management like AddKey) is used by methods
that directly submit created transactions to the RPC server.
*/
package actor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nspcc-dev/near-go/pkg/core/account"
	"github.com/nspcc-dev/near-go/pkg/core/transaction"
	"github.com/nspcc-dev/near-go/pkg/crypto/hash"
	"github.com/nspcc-dev/near-go/pkg/nearrpc"
	"github.com/nspcc-dev/near-go/pkg/nearrpc/result"
	"github.com/nspcc-dev/near-go/pkg/rpcclient/invoker"
	"go.uber.org/zap"
)

// RPCActor is an interface required from the RPC client to successfully
// create and send transactions.
type RPCActor interface {
	invoker.RPCInvoke

	Block(ref nearrpc.BlockReference) (*result.Block, error)
	BroadcastTxCommit(tx *transaction.SignedTransaction) (*result.FinalExecutionOutcome, error)
	BroadcastTxAsync(tx *transaction.SignedTransaction) (hash.CryptoHash, error)
	TxStatus(txHash hash.CryptoHash, sender account.ID) (*result.FinalExecutionOutcome, error)
	Context() context.Context
}

var (
	// ErrSubmissionFailed is matched by every SubmissionError.
	ErrSubmissionFailed = errors.New("transaction submission failed")
	// ErrInvalidNonce is the reason of a submission that ran out of retries
	// on nonce conflicts.
	ErrInvalidNonce = errors.New("invalid nonce")
)

// SubmissionError is returned when a transaction can't be submitted. It
// matches ErrSubmissionFailed and unwraps to Reason.
type SubmissionError struct {
	Reason error
	// Attempts is the number of transactions sent to the node, 0 if the
	// failure happened before anything was sent.
	Attempts int
}

// Error implements the error interface.
func (e *SubmissionError) Error() string {
	return fmt.Sprintf("%s after %d attempt(s): %v", ErrSubmissionFailed, e.Attempts, e.Reason)
}

// Is makes errors.Is(err, ErrSubmissionFailed) work.
func (e *SubmissionError) Is(target error) bool {
	return target == ErrSubmissionFailed
}

// Unwrap returns the reason of the failure.
func (e *SubmissionError) Unwrap() error {
	return e.Reason
}

// Options are used to create Actor with non-default settings.
type Options struct {
	// MaxRetries is the number of resubmissions made after nonce conflicts,
	// 0 means the transaction is sent once.
	MaxRetries int
	// Finality is used for the access key and block queries as well as
	// for view calls made through the embedded Invoker.
	Finality nearrpc.Finality
	// Logger, nop logger is used if nil.
	Logger *zap.Logger
	// WaitAttempts and WaitInterval configure Wait, see DefaultWaitAttempts
	// and DefaultWaitInterval.
	WaitAttempts int
	WaitInterval time.Duration
}

// Actor keeps a connection to the RPC endpoint and allows to perform
// state-changing actions on behalf of a single signer. It also provides
// an Invoker interface to perform view calls at the same finality.
type Actor struct {
	invoker.Invoker

	client RPCActor
	opts   Options
	signer *Signer
	log    *zap.Logger
}

// New creates an Actor instance using the specified RPC interface and signer.
func New(ra RPCActor, signer *Signer, opts Options) (*Actor, error) {
	if signer == nil {
		return nil, errors.New("signer is required")
	}
	if opts.MaxRetries < 0 {
		return nil, fmt.Errorf("negative retry count %d", opts.MaxRetries)
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.WaitAttempts <= 0 {
		opts.WaitAttempts = DefaultWaitAttempts
	}
	if opts.WaitInterval <= 0 {
		opts.WaitInterval = DefaultWaitInterval
	}
	return &Actor{
		Invoker: *invoker.New(ra, opts.Finality),
		client:  ra,
		opts:    opts,
		signer:  signer,
		log:     opts.Logger,
	}, nil
}

// Signer returns the signer used by Actor.
func (a *Actor) Signer() *Signer {
	return a.signer
}

// Sender returns the account that signs transactions created by Actor.
func (a *Actor) Sender() account.ID {
	return a.signer.Account()
}

// Commit signs and sends the transaction waiting for its execution.
// Failed execution is returned as *ExecutionError, failure to submit as
// *SubmissionError.
func (a *Actor) Commit(tmpl transaction.Template) (*Output, error) {
	var out *result.FinalExecutionOutcome
	_, err := a.submit(tmpl, nearrpc.BroadcastTxCommitMethod, func(tx *transaction.SignedTransaction) error {
		var err error
		out, err = a.client.BroadcastTxCommit(tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	res, err := ProcessOutcome(out)
	observeOutcome(err)
	return res, err
}

// CommitAsync signs and sends the transaction returning its hash without
// waiting for execution, see Wait.
func (a *Actor) CommitAsync(tmpl transaction.Template) (hash.CryptoHash, error) {
	return a.submit(tmpl, nearrpc.BroadcastTxAsyncMethod, func(tx *transaction.SignedTransaction) error {
		_, err := a.client.BroadcastTxAsync(tx)
		return err
	})
}

// submit runs the nonce reconciliation and retry loop around send.
func (a *Actor) submit(tmpl transaction.Template, method string, send func(*transaction.SignedTransaction) error) (hash.CryptoHash, error) {
	log := a.log.With(
		zap.Stringer("submission", uuid.New()),
		zap.Stringer("signer", a.signer.Account()),
		zap.Stringer("receiver", tmpl.Receiver),
		zap.String("method", method))
	fail := func(reason error, attempts int) (hash.CryptoHash, error) {
		log.Warn("transaction submission failed", zap.Int("attempts", attempts), zap.Error(reason))
		observeSubmission(statusFailed)
		return hash.CryptoHash{}, &SubmissionError{Reason: reason, Attempts: attempts}
	}
	if len(tmpl.Actions) == 0 {
		return hash.CryptoHash{}, transaction.ErrEmptyTransaction
	}

	ref := a.BlockReference()
	ak, err := a.client.ViewAccessKey(ref, a.signer.Account(), a.signer.PublicKey())
	if err != nil {
		return fail(fmt.Errorf("failed to get access key: %w", err), 0)
	}
	blk, err := a.client.Block(ref)
	if err != nil {
		return fail(fmt.Errorf("failed to get block: %w", err), 0)
	}

	for attempt := 1; ; attempt++ {
		base := a.signer.reconcile(ak.Nonce)
		nonce := base + 1
		log.Debug("submitting transaction",
			zap.Int("attempt", attempt),
			zap.Uint64("fetched_nonce", ak.Nonce),
			zap.Uint64("nonce", nonce))

		tx, err := tmpl.Build(a.signer.Account(), a.signer.PublicKey(), nonce, blk.Header.Hash)
		if err != nil {
			return hash.CryptoHash{}, err
		}
		stx, err := a.signer.SignTransaction(tx)
		if err != nil {
			return hash.CryptoHash{}, err
		}
		txHash, err := stx.Hash()
		if err != nil {
			return hash.CryptoHash{}, err
		}

		err = send(stx)
		if err == nil {
			a.signer.Advance()
			observeSubmission(statusAccepted)
			log.Debug("transaction accepted", zap.Stringer("hash", txHash), zap.Uint64("nonce", nonce))
			return txHash, nil
		}
		ine, ok := nearrpc.InvalidNonce(err)
		if !ok {
			return fail(err, attempt)
		}
		if attempt > a.opts.MaxRetries {
			return fail(fmt.Errorf("%w: %w", ErrInvalidNonce, err), attempt)
		}
		observeSubmission(statusRetried)
		log.Debug("nonce conflict, resyncing",
			zap.Int("attempt", attempt),
			zap.Uint64("nonce", nonce),
			zap.Uint64("ak_nonce", ine.AkNonce))
		a.signer.Resync(ine.AkNonce)
	}
}
