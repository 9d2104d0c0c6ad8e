package account

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nspcc-dev/near-go/pkg/io"
	"github.com/nspcc-dev/near-go/pkg/util"
)

// Permission tags used in binary encoding.
const (
	functionCallTag byte = 0
	fullAccessTag   byte = 1
)

const fullAccessName = "FullAccess"

// AccessKey is the nonce and the permission of a key added to an account.
type AccessKey struct {
	Nonce      uint64     `json:"nonce"`
	Permission Permission `json:"permission"`
}

// Permission is either full access (FunctionCall is nil) or a function call
// permission.
type Permission struct {
	FunctionCall *FunctionCallPermission
}

// FunctionCallPermission allows calling the given methods (any method if the
// list is empty) of the receiver, spending at most Allowance on fees. A nil
// Allowance means unlimited.
type FunctionCallPermission struct {
	Allowance   *util.Balance `json:"allowance"`
	ReceiverID  string        `json:"receiver_id"`
	MethodNames []string      `json:"method_names"`
}

// FullAccessKey returns an access key with full access and the given nonce.
func FullAccessKey(nonce uint64) AccessKey {
	return AccessKey{Nonce: nonce}
}

// FunctionCallAccessKey returns an access key with function call permission.
func FunctionCallAccessKey(nonce uint64, p FunctionCallPermission) AccessKey {
	return AccessKey{Nonce: nonce, Permission: Permission{FunctionCall: &p}}
}

// IsFullAccess returns true for full access permission.
func (p Permission) IsFullAccess() bool {
	return p.FunctionCall == nil
}

// String implements the fmt.Stringer interface.
func (p Permission) String() string {
	if p.IsFullAccess() {
		return fullAccessName
	}
	return fmt.Sprintf("FunctionCall(%s, %v)", p.FunctionCall.ReceiverID, p.FunctionCall.MethodNames)
}

// MarshalJSON implements the json.Marshaler interface.
func (p Permission) MarshalJSON() ([]byte, error) {
	if p.IsFullAccess() {
		return json.Marshal(fullAccessName)
	}
	fc := *p.FunctionCall
	if fc.MethodNames == nil {
		fc.MethodNames = []string{}
	}
	return json.Marshal(map[string]FunctionCallPermission{"FunctionCall": fc})
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (p *Permission) UnmarshalJSON(data []byte) error {
	var s string
	if json.Unmarshal(data, &s) == nil {
		if s != fullAccessName {
			return fmt.Errorf("unknown permission %q", s)
		}
		p.FunctionCall = nil
		return nil
	}
	var m struct {
		FunctionCall *FunctionCallPermission `json:"FunctionCall"`
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	if m.FunctionCall == nil {
		return errors.New("unknown permission")
	}
	p.FunctionCall = m.FunctionCall
	return nil
}

// EncodeBinary implements the io.Serializable interface.
func (p *Permission) EncodeBinary(w *io.BinWriter) {
	if p.IsFullAccess() {
		w.WriteB(fullAccessTag)
		return
	}
	w.WriteB(functionCallTag)
	fc := p.FunctionCall
	w.WriteBool(fc.Allowance != nil)
	if fc.Allowance != nil {
		fc.Allowance.EncodeBinary(w)
	}
	w.WriteString(fc.ReceiverID)
	w.WriteStrings(fc.MethodNames)
}

// DecodeBinary implements the io.Serializable interface.
func (p *Permission) DecodeBinary(r *io.BinReader) {
	switch tag := r.ReadB(); tag {
	case fullAccessTag:
		p.FunctionCall = nil
	case functionCallTag:
		fc := new(FunctionCallPermission)
		if r.ReadBool() {
			fc.Allowance = new(util.Balance)
			fc.Allowance.DecodeBinary(r)
		}
		fc.ReceiverID = r.ReadString()
		fc.MethodNames = r.ReadStrings()
		p.FunctionCall = fc
	default:
		if r.Err == nil {
			r.Err = fmt.Errorf("%w: permission %d", io.ErrUnknownTag, tag)
		}
	}
}

// EncodeBinary implements the io.Serializable interface.
func (k *AccessKey) EncodeBinary(w *io.BinWriter) {
	w.WriteU64LE(k.Nonce)
	k.Permission.EncodeBinary(w)
}

// DecodeBinary implements the io.Serializable interface.
func (k *AccessKey) DecodeBinary(r *io.BinReader) {
	k.Nonce = r.ReadU64LE()
	k.Permission.DecodeBinary(r)
}
