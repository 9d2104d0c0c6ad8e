package transaction

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nspcc-dev/near-go/pkg/core/account"
	"github.com/nspcc-dev/near-go/pkg/crypto/keys"
	"github.com/nspcc-dev/near-go/pkg/io"
	"github.com/nspcc-dev/near-go/pkg/util"
)

// ActionType is the binary tag of an action.
type ActionType byte

// Action types.
const (
	CreateAccountT  ActionType = 0
	DeployContractT ActionType = 1
	FunctionCallT   ActionType = 2
	TransferT       ActionType = 3
	StakeT          ActionType = 4
	AddKeyT         ActionType = 5
	DeleteKeyT      ActionType = 6
	DeleteAccountT  ActionType = 7
)

var actionNames = [...]string{
	CreateAccountT:  "CreateAccount",
	DeployContractT: "DeployContract",
	FunctionCallT:   "FunctionCall",
	TransferT:       "Transfer",
	StakeT:          "Stake",
	AddKeyT:         "AddKey",
	DeleteKeyT:      "DeleteKey",
	DeleteAccountT:  "DeleteAccount",
}

// MaxCodeSize is the maximum contract code size accepted when decoding.
const MaxCodeSize = 4 * 1024 * 1024

// String implements the fmt.Stringer interface.
func (t ActionType) String() string {
	if int(t) < len(actionNames) {
		return actionNames[t]
	}
	return fmt.Sprintf("UnknownAction(%d)", byte(t))
}

// ParseActionType returns an action type by its name.
func ParseActionType(s string) (ActionType, error) {
	for i, n := range actionNames {
		if n == s {
			return ActionType(i), nil
		}
	}
	return 0, fmt.Errorf("%w: action %q", io.ErrUnknownTag, s)
}

// Action is one operation of a transaction. The set of actions is closed,
// it's implemented by the types of this package only.
type Action interface {
	// Type returns the binary tag of the action.
	Type() ActionType
	// EncodeBinary writes the action body without the tag.
	EncodeBinary(*io.BinWriter)
	// DecodeBinary reads the action body without the tag.
	DecodeBinary(*io.BinReader)
	isAction()
}

type (
	// CreateAccount creates the receiver account.
	CreateAccount struct{}

	// DeployContract deploys the code to the receiver account.
	DeployContract struct {
		Code []byte `json:"code"`
	}

	// FunctionCall calls a method of the receiver contract.
	FunctionCall struct {
		MethodName string       `json:"method_name"`
		Args       []byte       `json:"args"`
		Gas        util.Gas     `json:"gas"`
		Deposit    util.Balance `json:"deposit"`
	}

	// Transfer sends tokens to the receiver.
	Transfer struct {
		Deposit util.Balance `json:"deposit"`
	}

	// Stake locks tokens for validation with the given key.
	Stake struct {
		Stake     util.Balance    `json:"stake"`
		PublicKey *keys.PublicKey `json:"public_key"`
	}

	// AddKey adds an access key to the receiver account.
	AddKey struct {
		PublicKey *keys.PublicKey   `json:"public_key"`
		AccessKey account.AccessKey `json:"access_key"`
	}

	// DeleteKey removes an access key from the receiver account.
	DeleteKey struct {
		PublicKey *keys.PublicKey `json:"public_key"`
	}

	// DeleteAccount removes the receiver account sending the remaining
	// tokens to the beneficiary.
	DeleteAccount struct {
		BeneficiaryID account.ID `json:"beneficiary_id"`
	}
)

func (*CreateAccount) isAction()  {}
func (*DeployContract) isAction() {}
func (*FunctionCall) isAction()   {}
func (*Transfer) isAction()       {}
func (*Stake) isAction()          {}
func (*AddKey) isAction()         {}
func (*DeleteKey) isAction()      {}
func (*DeleteAccount) isAction()  {}

// Type implements the Action interface.
func (*CreateAccount) Type() ActionType { return CreateAccountT }

// Type implements the Action interface.
func (*DeployContract) Type() ActionType { return DeployContractT }

// Type implements the Action interface.
func (*FunctionCall) Type() ActionType { return FunctionCallT }

// Type implements the Action interface.
func (*Transfer) Type() ActionType { return TransferT }

// Type implements the Action interface.
func (*Stake) Type() ActionType { return StakeT }

// Type implements the Action interface.
func (*AddKey) Type() ActionType { return AddKeyT }

// Type implements the Action interface.
func (*DeleteKey) Type() ActionType { return DeleteKeyT }

// Type implements the Action interface.
func (*DeleteAccount) Type() ActionType { return DeleteAccountT }

// EncodeBinary implements the Action interface.
func (*CreateAccount) EncodeBinary(*io.BinWriter) {}

// DecodeBinary implements the Action interface.
func (*CreateAccount) DecodeBinary(*io.BinReader) {}

// EncodeBinary implements the Action interface.
func (a *DeployContract) EncodeBinary(w *io.BinWriter) {
	w.WriteVarBytes(a.Code)
}

// DecodeBinary implements the Action interface.
func (a *DeployContract) DecodeBinary(r *io.BinReader) {
	a.Code = r.ReadVarBytes(MaxCodeSize)
}

// EncodeBinary implements the Action interface.
func (a *FunctionCall) EncodeBinary(w *io.BinWriter) {
	w.WriteString(a.MethodName)
	w.WriteVarBytes(a.Args)
	w.WriteU64LE(uint64(a.Gas))
	a.Deposit.EncodeBinary(w)
}

// DecodeBinary implements the Action interface.
func (a *FunctionCall) DecodeBinary(r *io.BinReader) {
	a.MethodName = r.ReadString()
	a.Args = r.ReadVarBytes()
	a.Gas = util.Gas(r.ReadU64LE())
	a.Deposit.DecodeBinary(r)
}

// EncodeBinary implements the Action interface.
func (a *Transfer) EncodeBinary(w *io.BinWriter) {
	a.Deposit.EncodeBinary(w)
}

// DecodeBinary implements the Action interface.
func (a *Transfer) DecodeBinary(r *io.BinReader) {
	a.Deposit.DecodeBinary(r)
}

// EncodeBinary implements the Action interface.
func (a *Stake) EncodeBinary(w *io.BinWriter) {
	a.Stake.EncodeBinary(w)
	encodeKey(w, a.PublicKey)
}

// DecodeBinary implements the Action interface.
func (a *Stake) DecodeBinary(r *io.BinReader) {
	a.Stake.DecodeBinary(r)
	a.PublicKey = decodeKey(r)
}

// EncodeBinary implements the Action interface.
func (a *AddKey) EncodeBinary(w *io.BinWriter) {
	encodeKey(w, a.PublicKey)
	a.AccessKey.EncodeBinary(w)
}

// DecodeBinary implements the Action interface.
func (a *AddKey) DecodeBinary(r *io.BinReader) {
	a.PublicKey = decodeKey(r)
	a.AccessKey.DecodeBinary(r)
}

// EncodeBinary implements the Action interface.
func (a *DeleteKey) EncodeBinary(w *io.BinWriter) {
	encodeKey(w, a.PublicKey)
}

// DecodeBinary implements the Action interface.
func (a *DeleteKey) DecodeBinary(r *io.BinReader) {
	a.PublicKey = decodeKey(r)
}

// EncodeBinary implements the Action interface.
func (a *DeleteAccount) EncodeBinary(w *io.BinWriter) {
	a.BeneficiaryID.EncodeBinary(w)
}

// DecodeBinary implements the Action interface.
func (a *DeleteAccount) DecodeBinary(r *io.BinReader) {
	a.BeneficiaryID.DecodeBinary(r)
}

var errNoPublicKey = errors.New("missing public key")

func encodeKey(w *io.BinWriter, k *keys.PublicKey) {
	if k == nil {
		if w.Err == nil {
			w.Err = errNoPublicKey
		}
		return
	}
	k.EncodeBinary(w)
}

func decodeKey(r *io.BinReader) *keys.PublicKey {
	k := new(keys.PublicKey)
	k.DecodeBinary(r)
	if r.Err != nil {
		return nil
	}
	return k
}

// NewAction returns an empty action of the given type.
func NewAction(t ActionType) (Action, error) {
	switch t {
	case CreateAccountT:
		return new(CreateAccount), nil
	case DeployContractT:
		return new(DeployContract), nil
	case FunctionCallT:
		return new(FunctionCall), nil
	case TransferT:
		return new(Transfer), nil
	case StakeT:
		return new(Stake), nil
	case AddKeyT:
		return new(AddKey), nil
	case DeleteKeyT:
		return new(DeleteKey), nil
	case DeleteAccountT:
		return new(DeleteAccount), nil
	default:
		return nil, fmt.Errorf("%w: action %d", io.ErrUnknownTag, byte(t))
	}
}

// ErrTooManyActions is returned when decoding an action count that can't fit
// into the remaining data.
var ErrTooManyActions = errors.New("too many actions")

// Actions is an ordered list of actions. It's encoded with type tags both in
// binary and in JSON.
type Actions []Action

// EncodeBinary implements the io.Serializable interface.
func (as *Actions) EncodeBinary(w *io.BinWriter) {
	w.WriteLen(len(*as))
	for _, a := range *as {
		if w.Err != nil {
			return
		}
		w.WriteB(byte(a.Type()))
		a.EncodeBinary(w)
	}
}

// DecodeBinary implements the io.Serializable interface.
func (as *Actions) DecodeBinary(r *io.BinReader) {
	n := r.ReadLen()
	if r.Err != nil {
		return
	}
	// Every action takes at least its tag byte.
	if l := r.Len(); l >= 0 && n > l {
		r.Err = fmt.Errorf("%w: %d actions in %d bytes", ErrTooManyActions, n, l)
		return
	}
	var res Actions
	for i := 0; i < n && r.Err == nil; i++ {
		a, err := NewAction(ActionType(r.ReadB()))
		if r.Err != nil {
			return
		}
		if err != nil {
			r.Err = err
			return
		}
		a.DecodeBinary(r)
		res = append(res, a)
	}
	if r.Err == nil {
		*as = res
	}
}

// MarshalJSON implements the json.Marshaler interface. CreateAccount is
// encoded as a bare name, other actions as {"<name>": {...}}.
func (as Actions) MarshalJSON() ([]byte, error) {
	res := make([]any, 0, len(as))
	for _, a := range as {
		if a.Type() == CreateAccountT {
			res = append(res, a.Type().String())
			continue
		}
		res = append(res, map[string]Action{a.Type().String(): a})
	}
	return json.Marshal(res)
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (as *Actions) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	res := make(Actions, 0, len(raw))
	for i, r := range raw {
		a, err := unmarshalAction(r)
		if err != nil {
			return fmt.Errorf("action %d: %w", i, err)
		}
		res = append(res, a)
	}
	*as = res
	return nil
}

func unmarshalAction(data json.RawMessage) (Action, error) {
	var name string
	if json.Unmarshal(data, &name) == nil {
		t, err := ParseActionType(name)
		if err != nil {
			return nil, err
		}
		if t != CreateAccountT {
			return nil, fmt.Errorf("action %s has no body", name)
		}
		return new(CreateAccount), nil
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	if len(m) != 1 {
		return nil, fmt.Errorf("expected one action, got %d keys", len(m))
	}
	for name, body := range m {
		t, err := ParseActionType(name)
		if err != nil {
			return nil, err
		}
		a, err := NewAction(t)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(body, a); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		return a, nil
	}
	panic("unreachable")
}
