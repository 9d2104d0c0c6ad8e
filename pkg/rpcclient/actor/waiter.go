package actor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nspcc-dev/near-go/pkg/crypto/hash"
	"github.com/nspcc-dev/near-go/pkg/nearrpc"
	"github.com/nspcc-dev/near-go/pkg/nearrpc/result"
	"go.uber.org/zap"
)

// Wait defaults.
const (
	DefaultWaitAttempts = 30
	DefaultWaitInterval = time.Second
)

var (
	// ErrTxNotAccepted is returned when transaction wasn't executed after
	// all polling attempts.
	ErrTxNotAccepted = errors.New("transaction was not executed in time")
	// ErrContextDone is returned when the context has been done in the middle
	// of transaction awaiting process.
	ErrContextDone = errors.New("waiter context done")
)

// Wait polls the transaction status until it's executed and returns the
// result the same way Commit does. Transactions unknown to the node are
// polled for as well, since they may be not yet propagated. Both the RPC
// client context and ctx interrupt waiting.
func (a *Actor) Wait(ctx context.Context, txHash hash.CryptoHash) (*Output, error) {
	timer := time.NewTicker(a.opts.WaitInterval)
	defer timer.Stop()
	for attempt := 1; ; attempt++ {
		out, err := a.client.TxStatus(txHash, a.signer.Account())
		switch {
		case err == nil && out.Status.Kind != result.StatusNotStarted && out.Status.Kind != result.StatusStarted:
			res, err := ProcessOutcome(out)
			observeOutcome(err)
			return res, err
		case err != nil && !isUnknownTx(err):
			return nil, err
		}
		a.log.Debug("transaction is not executed yet",
			zap.Stringer("hash", txHash),
			zap.Int("attempt", attempt))
		if attempt >= a.opts.WaitAttempts {
			return nil, ErrTxNotAccepted
		}
		select {
		case <-timer.C:
		case <-a.client.Context().Done():
			return nil, fmt.Errorf("%w: %v", ErrContextDone, a.client.Context().Err())
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", ErrContextDone, ctx.Err())
		}
	}
}

func isUnknownTx(err error) bool {
	var re *nearrpc.Error
	return errors.As(err, &re) && (re.HasCause(nearrpc.CauseUnknownTx) || re.HasCause(nearrpc.CauseTimeoutError))
}
