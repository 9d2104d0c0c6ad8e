package transaction

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/nspcc-dev/near-go/pkg/core/account"
	"github.com/nspcc-dev/near-go/pkg/crypto/hash"
	"github.com/nspcc-dev/near-go/pkg/crypto/keys"
)

// ErrEmptyTransaction is returned when building a transaction without actions.
var ErrEmptyTransaction = errors.New("transaction has no actions")

// ErrNilAction is returned when building a transaction with a nil action.
var ErrNilAction = errors.New("nil action")

// Template is everything a transaction needs except for the signer data, the
// nonce and the reference block hash.
type Template struct {
	Receiver account.ID
	Actions  []Action
}

// NewTemplate creates a template for the receiver with the given actions.
func NewTemplate(receiver account.ID, actions ...Action) Template {
	return Template{Receiver: receiver, Actions: actions}
}

// Build creates a transaction from the template. The actions are copied in
// their order.
func (t Template) Build(signer account.ID, pub *keys.PublicKey, nonce uint64, blockHash hash.CryptoHash) (*Transaction, error) {
	if len(t.Actions) == 0 {
		return nil, ErrEmptyTransaction
	}
	actions := make(Actions, len(t.Actions))
	for i, a := range t.Actions {
		if a == nil || reflect.ValueOf(a).IsNil() {
			return nil, fmt.Errorf("%w at position %d", ErrNilAction, i)
		}
		actions[i] = a
	}
	return &Transaction{
		SignerID:   signer,
		PublicKey:  pub,
		Nonce:      nonce,
		ReceiverID: t.Receiver,
		BlockHash:  blockHash,
		Actions:    actions,
	}, nil
}
