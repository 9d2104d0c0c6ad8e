package result

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nspcc-dev/near-go/pkg/core/account"
	"github.com/nspcc-dev/near-go/pkg/core/transaction"
	"github.com/nspcc-dev/near-go/pkg/crypto/hash"
	"github.com/nspcc-dev/near-go/pkg/crypto/keys"
	"github.com/nspcc-dev/near-go/pkg/nearrpc"
	"github.com/nspcc-dev/near-go/pkg/util"
)

// Final execution status kinds.
const (
	StatusNotStarted   = "NotStarted"
	StatusStarted      = "Started"
	StatusFailure      = "Failure"
	StatusSuccessValue = "SuccessValue"
)

// Receipt execution status kinds, Failure and SuccessValue are shared with
// the final status.
const (
	StatusUnknown          = "Unknown"
	StatusSuccessReceiptID = "SuccessReceiptId"
)

// ErrUnknownStatus is returned for a status of unexpected kind.
var ErrUnknownStatus = errors.New("unknown execution status")

type (
	// FinalExecutionOutcome is a broadcast_tx_commit or tx status result.
	FinalExecutionOutcome struct {
		Status             FinalExecutionStatus     `json:"status"`
		Transaction        SignedTransactionView    `json:"transaction"`
		TransactionOutcome ExecutionOutcomeWithID   `json:"transaction_outcome"`
		ReceiptsOutcome    []ExecutionOutcomeWithID `json:"receipts_outcome"`
	}

	// SignedTransactionView is a transaction as shown by the node.
	SignedTransactionView struct {
		SignerID   account.ID          `json:"signer_id"`
		PublicKey  *keys.PublicKey     `json:"public_key"`
		Nonce      uint64              `json:"nonce"`
		ReceiverID account.ID          `json:"receiver_id"`
		Actions    transaction.Actions `json:"actions"`
		Signature  *keys.Signature     `json:"signature"`
		Hash       hash.CryptoHash     `json:"hash"`
	}

	// ExecutionOutcomeWithID is an execution outcome of a transaction or
	// receipt with its inclusion proof.
	ExecutionOutcomeWithID struct {
		Proof     []MerklePathItem `json:"proof"`
		BlockHash hash.CryptoHash  `json:"block_hash"`
		ID        hash.CryptoHash  `json:"id"`
		Outcome   ExecutionOutcome `json:"outcome"`
	}

	// MerklePathItem is a single proof element.
	MerklePathItem struct {
		Hash      hash.CryptoHash `json:"hash"`
		Direction string          `json:"direction"`
	}

	// ExecutionOutcome is the result of a single transaction or receipt
	// execution.
	ExecutionOutcome struct {
		Logs        []string          `json:"logs"`
		ReceiptIDs  []hash.CryptoHash `json:"receipt_ids"`
		GasBurnt    util.Gas          `json:"gas_burnt"`
		TokensBurnt util.Balance      `json:"tokens_burnt"`
		ExecutorID  string            `json:"executor_id"`
		Status      ExecutionStatus   `json:"status"`
	}

	// FinalExecutionStatus is the overall status of a transaction. Failure
	// is set for StatusFailure and Value for StatusSuccessValue.
	FinalExecutionStatus struct {
		Kind    string
		Failure *nearrpc.TxExecutionError
		Value   []byte
	}

	// ExecutionStatus is the status of a single outcome.
	ExecutionStatus struct {
		Kind      string
		Failure   *nearrpc.TxExecutionError
		Value     []byte
		ReceiptID hash.CryptoHash
	}
)

// Logs returns the logs of the first receipt outcome that has any.
func (o *FinalExecutionOutcome) Logs() []string {
	for i := range o.ReceiptsOutcome {
		if len(o.ReceiptsOutcome[i].Outcome.Logs) != 0 {
			return o.ReceiptsOutcome[i].Outcome.Logs
		}
	}
	return []string{}
}

// AllLogs returns logs of the transaction and all of its receipts in
// execution order.
func (o *FinalExecutionOutcome) AllLogs() []string {
	res := append([]string{}, o.TransactionOutcome.Outcome.Logs...)
	for i := range o.ReceiptsOutcome {
		res = append(res, o.ReceiptsOutcome[i].Outcome.Logs...)
	}
	return res
}

// TotalGasBurnt returns gas burnt by the transaction and all of its receipts.
func (o *FinalExecutionOutcome) TotalGasBurnt() util.Gas {
	total := o.TransactionOutcome.Outcome.GasBurnt
	for i := range o.ReceiptsOutcome {
		total += o.ReceiptsOutcome[i].Outcome.GasBurnt
	}
	return total
}

// MarshalJSON implements the json.Marshaler interface.
func (s FinalExecutionStatus) MarshalJSON() ([]byte, error) {
	switch s.Kind {
	case StatusNotStarted, StatusStarted:
		return json.Marshal(s.Kind)
	case StatusFailure:
		return json.Marshal(map[string]*nearrpc.TxExecutionError{s.Kind: s.Failure})
	case StatusSuccessValue:
		return json.Marshal(map[string]string{s.Kind: base64.StdEncoding.EncodeToString(s.Value)})
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownStatus, s.Kind)
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (s *FinalExecutionStatus) UnmarshalJSON(data []byte) error {
	var st ExecutionStatus
	if err := st.UnmarshalJSON(data); err != nil {
		return err
	}
	switch st.Kind {
	case StatusNotStarted, StatusStarted, StatusFailure, StatusSuccessValue:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStatus, st.Kind)
	}
	*s = FinalExecutionStatus{Kind: st.Kind, Failure: st.Failure, Value: st.Value}
	return nil
}

// MarshalJSON implements the json.Marshaler interface.
func (s ExecutionStatus) MarshalJSON() ([]byte, error) {
	switch s.Kind {
	case StatusSuccessReceiptID:
		return json.Marshal(map[string]hash.CryptoHash{s.Kind: s.ReceiptID})
	case StatusUnknown:
		return json.Marshal(s.Kind)
	}
	return FinalExecutionStatus{Kind: s.Kind, Failure: s.Failure, Value: s.Value}.MarshalJSON()
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (s *ExecutionStatus) UnmarshalJSON(data []byte) error {
	var kind string
	if json.Unmarshal(data, &kind) == nil {
		switch kind {
		case StatusUnknown, StatusNotStarted, StatusStarted:
			*s = ExecutionStatus{Kind: kind}
			return nil
		}
		return fmt.Errorf("%w: %q", ErrUnknownStatus, kind)
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	if len(m) != 1 {
		return fmt.Errorf("%w: %d keys", ErrUnknownStatus, len(m))
	}
	for k, v := range m {
		res := ExecutionStatus{Kind: k}
		switch k {
		case StatusFailure:
			te, err := nearrpc.ParseTxExecutionError(v)
			if err != nil {
				return err
			}
			res.Failure = te
		case StatusSuccessValue:
			var b64 string
			if err := json.Unmarshal(v, &b64); err != nil {
				return err
			}
			val, err := base64.StdEncoding.DecodeString(b64)
			if err != nil {
				return fmt.Errorf("bad success value: %w", err)
			}
			res.Value = val
		case StatusSuccessReceiptID:
			if err := json.Unmarshal(v, &res.ReceiptID); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: %q", ErrUnknownStatus, k)
		}
		*s = res
	}
	return nil
}
