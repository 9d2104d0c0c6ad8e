package nearrpc

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Top-level error names.
const (
	RequestValidationError = "REQUEST_VALIDATION_ERROR"
	HandlerError           = "HANDLER_ERROR"
	InternalError          = "INTERNAL_ERROR"
)

// Error cause names.
const (
	CauseInvalidTransaction = "INVALID_TRANSACTION"
	CauseParseError         = "PARSE_ERROR"
	CauseTimeoutError       = "TIMEOUT_ERROR"
	CauseInternalError      = "INTERNAL_ERROR"
	CauseUnknownAccount     = "UNKNOWN_ACCOUNT"
	CauseUnknownAccessKey   = "UNKNOWN_ACCESS_KEY"
	CauseUnknownBlock       = "UNKNOWN_BLOCK"
	CauseUnknownTx          = "UNKNOWN_TRANSACTION"
)

type (
	// Error is an RPC error returned by the node.
	Error struct {
		Name    string          `json:"name,omitempty"`
		Cause   *Cause          `json:"cause,omitempty"`
		Code    int64           `json:"code"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data,omitempty"`
	}

	// Cause is the detailed reason of an Error.
	Cause struct {
		Name string          `json:"name"`
		Info json.RawMessage `json:"info,omitempty"`
	}
)

// Error implements the error interface.
func (e *Error) Error() string {
	var sb strings.Builder
	if e.Name != "" {
		sb.WriteString(e.Name)
		if e.Cause != nil {
			sb.WriteString("/" + e.Cause.Name)
		}
		sb.WriteString(": ")
	}
	sb.WriteString(e.Message)
	if len(e.Data) != 0 && !bytes.Equal(e.Data, []byte("null")) {
		var s string
		if json.Unmarshal(e.Data, &s) == nil {
			sb.WriteString(" (" + s + ")")
		} else {
			sb.WriteString(" (" + string(e.Data) + ")")
		}
	}
	return sb.String()
}

// Is makes errors.Is work for errors with the same name and cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Name == t.Name && e.causeName() == t.causeName()
}

func (e *Error) causeName() string {
	if e.Cause == nil {
		return ""
	}
	return e.Cause.Name
}

// HasCause returns true if the error cause has the given name.
func (e *Error) HasCause(name string) bool {
	return e.causeName() == name
}

// TxExecutionError extracts the transaction error carried by invalid
// transaction and parse error causes. The cause info is tried first, then the
// error data.
func (e *Error) TxExecutionError() (*TxExecutionError, bool) {
	if e.Cause == nil || (e.Cause.Name != CauseInvalidTransaction && e.Cause.Name != CauseParseError) {
		return nil, false
	}
	for _, raw := range []json.RawMessage{e.Cause.Info, e.Data} {
		if len(raw) == 0 {
			continue
		}
		if te, err := ParseTxExecutionError(raw); err == nil {
			return te, true
		}
	}
	return nil, false
}

// Transaction error kinds.
const (
	InvalidTxErrorKind = "InvalidTxError"
	ActionErrorKind    = "ActionError"
)

// invalidTxVariants are the variant names that may come without the
// InvalidTxError wrapper.
var invalidTxVariants = map[string]bool{
	"InvalidAccessKeyError":   true,
	"InvalidSignerId":         true,
	"SignerDoesNotExist":      true,
	"InvalidNonce":            true,
	"NonceTooLarge":           true,
	"InvalidReceiverId":       true,
	"InvalidSignature":        true,
	"NotEnoughBalance":        true,
	"LackBalanceForState":     true,
	"CostOverflow":            true,
	"InvalidChain":            true,
	"Expired":                 true,
	"ActionsValidation":       true,
	"TransactionSizeExceeded": true,
}

// TxExecutionError is a transaction validation or action execution error.
// Kind is either InvalidTxErrorKind or ActionErrorKind, Name is the variant,
// like "InvalidNonce", and Info is the variant body.
type TxExecutionError struct {
	Kind string
	Name string
	Info json.RawMessage
}

// ErrMalformedTxError is returned for data that is not a transaction error.
var ErrMalformedTxError = errors.New("malformed transaction error")

// ParseTxExecutionError parses {"TxExecutionError": {...}}, {"InvalidTxError": ...},
// {"ActionError": ...} and bare invalid transaction variants like
// {"InvalidNonce": {...}}.
func ParseTxExecutionError(data json.RawMessage) (*TxExecutionError, error) {
	name, body, err := single(data)
	if err != nil {
		return nil, err
	}
	switch {
	case name == "TxExecutionError":
		return ParseTxExecutionError(body)
	case name == InvalidTxErrorKind:
		return parseVariant(InvalidTxErrorKind, body)
	case name == ActionErrorKind:
		var ae struct {
			Kind json.RawMessage `json:"kind"`
		}
		if err := json.Unmarshal(body, &ae); err != nil || len(ae.Kind) == 0 {
			return nil, fmt.Errorf("%w: action error without kind", ErrMalformedTxError)
		}
		te, err := parseVariant(ActionErrorKind, ae.Kind)
		if err != nil {
			return nil, err
		}
		te.Info = body
		return te, nil
	case invalidTxVariants[name]:
		return &TxExecutionError{Kind: InvalidTxErrorKind, Name: name, Info: body}, nil
	default:
		return nil, fmt.Errorf("%w: unexpected %q", ErrMalformedTxError, name)
	}
}

// parseVariant parses an enum value that is either a bare name or
// {"Name": body}.
func parseVariant(kind string, data json.RawMessage) (*TxExecutionError, error) {
	var s string
	if json.Unmarshal(data, &s) == nil {
		return &TxExecutionError{Kind: kind, Name: s}, nil
	}
	name, body, err := single(data)
	if err != nil {
		return nil, err
	}
	return &TxExecutionError{Kind: kind, Name: name, Info: body}, nil
}

// single decodes an object with exactly one key.
func single(data json.RawMessage) (string, json.RawMessage, error) {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrMalformedTxError, err)
	}
	if len(m) != 1 {
		return "", nil, fmt.Errorf("%w: expected one key, got %d", ErrMalformedTxError, len(m))
	}
	for k, v := range m {
		return k, v, nil
	}
	panic("unreachable")
}

// Error implements the error interface.
func (t *TxExecutionError) Error() string {
	if len(t.Info) == 0 {
		return t.Kind + ": " + t.Name
	}
	return fmt.Sprintf("%s: %s %s", t.Kind, t.Name, compact(t.Info))
}

// MarshalJSON implements the json.Marshaler interface, the result is the
// {"InvalidTxError": ...} or {"ActionError": ...} form.
func (t *TxExecutionError) MarshalJSON() ([]byte, error) {
	if t.Kind == ActionErrorKind && len(t.Info) != 0 {
		return json.Marshal(map[string]json.RawMessage{ActionErrorKind: t.Info})
	}
	var variant any = t.Name
	if len(t.Info) != 0 {
		variant = map[string]json.RawMessage{t.Name: t.Info}
	}
	return json.Marshal(map[string]any{t.Kind: variant})
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (t *TxExecutionError) UnmarshalJSON(data []byte) error {
	te, err := ParseTxExecutionError(data)
	if err != nil {
		return err
	}
	*t = *te
	return nil
}

func compact(data json.RawMessage) string {
	var m map[string]json.RawMessage
	if json.Unmarshal(data, &m) != nil {
		return string(data)
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+string(m[k]))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// InvalidNonceError means the transaction nonce is not greater than the one
// the access key has on the ledger.
type InvalidNonceError struct {
	TxNonce uint64 `json:"tx_nonce"`
	AkNonce uint64 `json:"ak_nonce"`
}

// Error implements the error interface.
func (e *InvalidNonceError) Error() string {
	return fmt.Sprintf("invalid nonce: transaction nonce %d, access key nonce %d", e.TxNonce, e.AkNonce)
}

// InvalidNonce returns the nonce details if the error is InvalidNonce.
func (t *TxExecutionError) InvalidNonce() (*InvalidNonceError, bool) {
	if t.Kind != InvalidTxErrorKind || t.Name != "InvalidNonce" {
		return nil, false
	}
	e := new(InvalidNonceError)
	if err := json.Unmarshal(t.Info, e); err != nil {
		return nil, false
	}
	return e, true
}

// InvalidNonce checks whether err is an RPC error caused by an invalid
// transaction nonce and returns its details.
func InvalidNonce(err error) (*InvalidNonceError, bool) {
	var ine *InvalidNonceError
	if errors.As(err, &ine) {
		return ine, true
	}
	var te *TxExecutionError
	if errors.As(err, &te) {
		return te.InvalidNonce()
	}
	var re *Error
	if !errors.As(err, &re) {
		return nil, false
	}
	te, ok := re.TxExecutionError()
	if !ok {
		return nil, false
	}
	return te.InvalidNonce()
}
