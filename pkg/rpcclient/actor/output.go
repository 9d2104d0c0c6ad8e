package actor

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nspcc-dev/near-go/pkg/crypto/hash"
	"github.com/nspcc-dev/near-go/pkg/nearrpc"
	"github.com/nspcc-dev/near-go/pkg/nearrpc/result"
	"github.com/nspcc-dev/near-go/pkg/rpcclient/unwrap"
	"github.com/nspcc-dev/near-go/pkg/util"
)

// ErrTxNotStarted is returned for a transaction that was accepted but not
// started.
var ErrTxNotStarted = errors.New("transaction not started")

// Output is the result of a successfully executed transaction.
type Output struct {
	// ID is the transaction hash.
	ID       hash.CryptoHash
	GasBurnt util.Gas
	Logs     []string
	// Data is the value returned by the last receipt, empty if the
	// transaction is still in progress.
	Data []byte
}

// ExecutionError is a transaction that was included, but failed.
type ExecutionError struct {
	Err  *nearrpc.TxExecutionError
	Logs []string
}

// Error implements the error interface.
func (e *ExecutionError) Error() string {
	if len(e.Logs) == 0 {
		return "transaction failed: " + e.Err.Error()
	}
	return fmt.Sprintf("transaction failed: %s, logs: %q", e.Err, e.Logs)
}

// Unwrap returns the execution error.
func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// Decode JSON-decodes the returned value into v.
func (o *Output) Decode(v any) error {
	if err := json.Unmarshal(o.Data, v); err != nil {
		return fmt.Errorf("%w: %v", unwrap.ErrDeserialization, err)
	}
	return nil
}

// ProcessOutcome converts the final execution outcome into Output or an
// error, *ExecutionError for failed transactions and ErrTxNotStarted for
// those that were not started.
func ProcessOutcome(o *result.FinalExecutionOutcome) (*Output, error) {
	logs := o.Logs()
	switch o.Status.Kind {
	case result.StatusFailure:
		return nil, &ExecutionError{Err: o.Status.Failure, Logs: logs}
	case result.StatusNotStarted:
		return nil, ErrTxNotStarted
	case result.StatusSuccessValue, result.StatusStarted:
		data := o.Status.Value
		if data == nil {
			data = []byte{}
		}
		return &Output{
			ID:       o.TransactionOutcome.ID,
			GasBurnt: o.TransactionOutcome.Outcome.GasBurnt,
			Logs:     logs,
			Data:     data,
		}, nil
	}
	return nil, fmt.Errorf("%w: %q", result.ErrUnknownStatus, o.Status.Kind)
}
