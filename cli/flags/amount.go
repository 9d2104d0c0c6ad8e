package flags

import (
	"flag"

	"github.com/nspcc-dev/near-go/pkg/encoding/units"
	"github.com/nspcc-dev/near-go/pkg/util"
	"github.com/urfave/cli"
)

// Balance is a wrapper for a util.Balance with flag.Value methods. It
// accepts amounts in NEAR with an optional unit suffix.
type Balance struct {
	Value util.Balance
}

// BalanceFlag is a flag with type Balance.
type BalanceFlag struct {
	Name  string
	Usage string
	Value Balance
}

// Gas is a wrapper for a util.Gas with flag.Value methods.
type Gas struct {
	Value util.Gas
}

// GasFlag is a flag with type Gas.
type GasFlag struct {
	Name  string
	Usage string
	Value Gas
}

var (
	_ flag.Value = (*Balance)(nil)
	_ cli.Flag   = BalanceFlag{}
	_ flag.Value = (*Gas)(nil)
	_ cli.Flag   = GasFlag{}
)

// String implements the fmt.Stringer interface.
func (b Balance) String() string {
	return units.NearToHuman(b.Value)
}

// Set implements the flag.Value interface.
func (b *Balance) Set(s string) error {
	v, err := units.ParseNear(s)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	b.Value = v
	return nil
}

// String returns a readable representation of this value
// (for usage defaults).
func (f BalanceFlag) String() string {
	return flagString(f.Name, f.Usage)
}

// GetName returns the name of the flag.
func (f BalanceFlag) GetName() string {
	return f.Name
}

// Apply populates the flag given the flag set and environment.
func (f BalanceFlag) Apply(set *flag.FlagSet) {
	eachName(f.Name, func(name string) {
		set.Var(&f.Value, name, f.Usage)
	})
}

// BalanceFromContext returns a parsed util.Balance value provided flag name.
func BalanceFromContext(ctx *cli.Context, name string) util.Balance {
	return ctx.Generic(name).(*Balance).Value
}

// String implements the fmt.Stringer interface.
func (g Gas) String() string {
	return units.GasToHuman(g.Value)
}

// Set implements the flag.Value interface.
func (g *Gas) Set(s string) error {
	v, err := units.ParseGas(s)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	g.Value = v
	return nil
}

// String returns a readable representation of this value
// (for usage defaults).
func (f GasFlag) String() string {
	return flagString(f.Name, f.Usage)
}

// GetName returns the name of the flag.
func (f GasFlag) GetName() string {
	return f.Name
}

// Apply populates the flag given the flag set and environment.
func (f GasFlag) Apply(set *flag.FlagSet) {
	eachName(f.Name, func(name string) {
		set.Var(&f.Value, name, f.Usage)
	})
}

// GasFromContext returns a parsed util.Gas value provided flag name.
func GasFromContext(ctx *cli.Context, name string) util.Gas {
	return ctx.Generic(name).(*Gas).Value
}
