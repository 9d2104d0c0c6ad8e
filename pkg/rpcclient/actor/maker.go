package actor

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"

	"github.com/nspcc-dev/near-go/pkg/core/account"
	"github.com/nspcc-dev/near-go/pkg/core/transaction"
	"github.com/nspcc-dev/near-go/pkg/crypto/keys"
	"github.com/nspcc-dev/near-go/pkg/rpcclient/invoker"
	"github.com/nspcc-dev/near-go/pkg/util"
)

// FunctionCall describes a contract method call. Args are encoded as
// described in invoker.EncodeArgs. Gas and Deposit are passed as is.
type FunctionCall struct {
	Receiver account.ID
	Method   string
	Args     any
	Gas      util.Gas
	Deposit  util.Balance
}

// Action converts the call into a transaction action.
func (f FunctionCall) Action() (*transaction.FunctionCall, error) {
	args, err := invoker.EncodeArgs(f.Args)
	if err != nil {
		return nil, err
	}
	return &transaction.FunctionCall{
		MethodName: f.Method,
		Args:       args,
		Gas:        f.Gas,
		Deposit:    f.Deposit,
	}, nil
}

// MakeCall creates a template calling the given contract method.
func (a *Actor) MakeCall(fc FunctionCall) (transaction.Template, error) {
	act, err := fc.Action()
	if err != nil {
		return transaction.Template{}, err
	}
	return transaction.NewTemplate(fc.Receiver, act), nil
}

// MakeTransfer creates a template sending tokens to the receiver.
func (a *Actor) MakeTransfer(receiver account.ID, amount util.Balance) transaction.Template {
	return transaction.NewTemplate(receiver, &transaction.Transfer{Deposit: amount})
}

// MakeDeployContract creates a template deploying the code to the signer
// account.
func (a *Actor) MakeDeployContract(code []byte) transaction.Template {
	return transaction.NewTemplate(a.Sender(), &transaction.DeployContract{Code: code})
}

// MakeCreateAccount creates a template creating a new account with the given
// full access key and initial balance (which can be zero).
func (a *Actor) MakeCreateAccount(id account.ID, pub *keys.PublicKey, amount util.Balance) transaction.Template {
	return transaction.NewTemplate(id,
		&transaction.CreateAccount{},
		&transaction.AddKey{PublicKey: pub, AccessKey: account.FullAccessKey(0)},
		&transaction.Transfer{Deposit: amount},
	)
}

// MakeDeleteAccount creates a template deleting the signer account, the
// remaining balance goes to beneficiary.
func (a *Actor) MakeDeleteAccount(beneficiary account.ID) transaction.Template {
	return transaction.NewTemplate(a.Sender(), &transaction.DeleteAccount{BeneficiaryID: beneficiary})
}

// MakeAddKey creates a template adding an access key with the given
// permission to the signer account. The key gets a random nonce.
func (a *Actor) MakeAddKey(pub *keys.PublicKey, perm account.Permission) (transaction.Template, error) {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return transaction.Template{}, fmt.Errorf("failed to generate key nonce: %w", err)
	}
	ak := account.AccessKey{Nonce: binary.LittleEndian.Uint64(b[:]), Permission: perm}
	return transaction.NewTemplate(a.Sender(), &transaction.AddKey{PublicKey: pub, AccessKey: ak}), nil
}

// MakeDeleteKey creates a template deleting the access key from the signer
// account.
func (a *Actor) MakeDeleteKey(pub *keys.PublicKey) transaction.Template {
	return transaction.NewTemplate(a.Sender(), &transaction.DeleteKey{PublicKey: pub})
}

// MakeStake creates a template staking the amount with the given validator
// key.
func (a *Actor) MakeStake(amount util.Balance, pub *keys.PublicKey) transaction.Template {
	return transaction.NewTemplate(a.Sender(), &transaction.Stake{Stake: amount, PublicKey: pub})
}

// SendCall calls the contract method (see MakeCall) and waits for the result.
func (a *Actor) SendCall(fc FunctionCall) (*Output, error) {
	tmpl, err := a.MakeCall(fc)
	if err != nil {
		return nil, err
	}
	return a.Commit(tmpl)
}

// SendTransfer sends tokens to the receiver.
func (a *Actor) SendTransfer(receiver account.ID, amount util.Balance) (*Output, error) {
	return a.Commit(a.MakeTransfer(receiver, amount))
}

// DeployContract deploys the code to the signer account.
func (a *Actor) DeployContract(code []byte) (*Output, error) {
	return a.Commit(a.MakeDeployContract(code))
}

// CreateAccount creates a new account, see MakeCreateAccount.
func (a *Actor) CreateAccount(id account.ID, pub *keys.PublicKey, amount util.Balance) (*Output, error) {
	return a.Commit(a.MakeCreateAccount(id, pub, amount))
}

// DeleteAccount deletes the signer account.
func (a *Actor) DeleteAccount(beneficiary account.ID) (*Output, error) {
	return a.Commit(a.MakeDeleteAccount(beneficiary))
}

// AddKey adds an access key to the signer account.
func (a *Actor) AddKey(pub *keys.PublicKey, perm account.Permission) (*Output, error) {
	tmpl, err := a.MakeAddKey(pub, perm)
	if err != nil {
		return nil, err
	}
	return a.Commit(tmpl)
}

// DeleteKey deletes the access key from the signer account.
func (a *Actor) DeleteKey(pub *keys.PublicKey) (*Output, error) {
	return a.Commit(a.MakeDeleteKey(pub))
}

// Stake stakes the amount with the given validator key.
func (a *Actor) Stake(amount util.Balance, pub *keys.PublicKey) (*Output, error) {
	return a.Commit(a.MakeStake(amount, pub))
}
