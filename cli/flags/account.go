package flags

import (
	"flag"

	"github.com/nspcc-dev/near-go/pkg/core/account"
	"github.com/urfave/cli"
)

// Account is a wrapper for an account.ID with flag.Value methods.
type Account struct {
	IsSet bool
	Value account.ID
}

// AccountFlag is a flag with type Account.
type AccountFlag struct {
	Name  string
	Usage string
	Value Account
}

var (
	_ flag.Value = (*Account)(nil)
	_ cli.Flag   = AccountFlag{}
)

// String implements the fmt.Stringer interface.
func (a Account) String() string {
	return a.Value.String()
}

// Set implements the flag.Value interface.
func (a *Account) Set(s string) error {
	id, err := account.NewID(s)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	a.IsSet = true
	a.Value = id
	return nil
}

// ID returns the account ID.
func (a *Account) ID() account.ID {
	if !a.IsSet {
		// It is a programmer error to call this method without
		// checking if the value was provided.
		panic("account was not set")
	}
	return a.Value
}

// String returns a readable representation of this value
// (for usage defaults).
func (f AccountFlag) String() string {
	return flagString(f.Name, f.Usage)
}

// GetName returns the name of the flag.
func (f AccountFlag) GetName() string {
	return f.Name
}

// Apply populates the flag given the flag set and environment.
func (f AccountFlag) Apply(set *flag.FlagSet) {
	eachName(f.Name, func(name string) {
		set.Var(&f.Value, name, f.Usage)
	})
}

// AccountFromContext returns the account flag value, IsSet is false if the
// flag was not given.
func AccountFromContext(ctx *cli.Context, name string) Account {
	if a, ok := ctx.Generic(name).(*Account); ok && a != nil {
		return *a
	}
	return Account{}
}
