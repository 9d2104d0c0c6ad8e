/*
Package tx contains commands signing and sending transactions.
*/
package tx

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/nspcc-dev/near-go/cli/flags"
	"github.com/nspcc-dev/near-go/cli/options"
	"github.com/nspcc-dev/near-go/pkg/core/account"
	"github.com/nspcc-dev/near-go/pkg/core/transaction"
	"github.com/nspcc-dev/near-go/pkg/crypto/keys"
	"github.com/nspcc-dev/near-go/pkg/encoding/units"
	"github.com/nspcc-dev/near-go/pkg/rpcclient/actor"
	"github.com/nspcc-dev/near-go/pkg/util"
	"github.com/urfave/cli"
)

// DefaultGas is the gas attached to function calls by default.
const DefaultGas = 30 * util.Tgas

var (
	asyncFlag = cli.BoolFlag{
		Name:  "async",
		Usage: "do not wait for execution, print the transaction hash",
	}
	retriesFlag = cli.IntFlag{
		Name:  "retries",
		Usage: "number of resubmissions after nonce conflicts (overrides configuration)",
	}
	depositFlag = flags.BalanceFlag{
		Name:  "deposit",
		Usage: "attached deposit in NEAR (or with yocto/milli/micro unit suffix)",
	}
	gasFlag = flags.GasFlag{
		Name:  "gas",
		Value: flags.Gas{Value: DefaultGas},
		Usage: "attached gas (raw number or with Kgas/Mgas/Ggas/Tgas/Pgas suffix)",
	}
)

// NewCommands returns 'tx' command.
func NewCommands() []cli.Command {
	common := append(append(append([]cli.Flag{}, options.Network...), options.AwaitableRPC...), options.Signer...)
	common = append(common, options.Historic[0], asyncFlag, retriesFlag)
	withFlags := func(extra ...cli.Flag) []cli.Flag {
		return append(append([]cli.Flag{}, common...), extra...)
	}
	return []cli.Command{{
		Name:  "tx",
		Usage: "Sign and send transactions",
		Subcommands: []cli.Command{
			{
				Name:      "call",
				Usage:     "Call a contract method",
				UsageText: "near-go tx call -a <signer> <contract> <method> [<json args>] [--gas <gas>] [--deposit <amount>]",
				Action:    call,
				Flags:     withFlags(gasFlag, depositFlag),
			},
			{
				Name:      "transfer",
				Usage:     "Transfer NEAR",
				UsageText: "near-go tx transfer -a <signer> <receiver> <amount>",
				Action:    transfer,
				Flags:     withFlags(),
			},
			{
				Name:      "deploy",
				Usage:     "Deploy contract code to the signer account",
				UsageText: "near-go tx deploy -a <signer> <wasm file>",
				Action:    deploy,
				Flags:     withFlags(),
			},
			{
				Name:      "create-account",
				Usage:     "Create an account with a full access key",
				UsageText: "near-go tx create-account -a <signer> <new account> <public key> [--deposit <amount>]",
				Action:    createAccount,
				Flags:     withFlags(depositFlag),
			},
			{
				Name:      "delete-account",
				Usage:     "Delete the signer account",
				UsageText: "near-go tx delete-account -a <signer> <beneficiary>",
				Action:    deleteAccount,
				Flags:     withFlags(),
			},
			{
				Name:      "add-key",
				Usage:     "Add an access key to the signer account",
				UsageText: "near-go tx add-key -a <signer> <public key> [--receiver <contract> [--methods <m1,m2>] [--allowance <amount>]]",
				Action:    addKey,
				Flags: withFlags(
					flags.AccountFlag{
						Name:  "receiver",
						Usage: "contract the key can call, full access key is added if not set",
					},
					cli.StringFlag{
						Name:  "methods",
						Usage: "comma-separated list of methods the key can call, any if empty",
					},
					flags.BalanceFlag{
						Name:  "allowance",
						Usage: "fee allowance of the key, unlimited if not set",
					},
				),
			},
			{
				Name:      "delete-key",
				Usage:     "Delete an access key from the signer account",
				UsageText: "near-go tx delete-key -a <signer> <public key>",
				Action:    deleteKey,
				Flags:     withFlags(),
			},
			{
				Name:      "stake",
				Usage:     "Stake NEAR with a validator key",
				UsageText: "near-go tx stake -a <signer> <amount> <public key>",
				Action:    stake,
				Flags:     withFlags(),
			},
		},
	}}
}

// makeFunc builds the transaction template once the actor is known.
type makeFunc func(a *actor.Actor) (transaction.Template, error)

// send creates the actor, builds the template and commits it, printing
// either the hash (--async) or the execution result.
func send(ctx *cli.Context, mk makeFunc) error {
	gctx, cancel := options.GetTimeoutContext(ctx)
	defer cancel()

	env, exitErr := options.NewEnvironment(gctx, ctx, true)
	if exitErr != nil {
		return exitErr
	}
	defer env.Close()

	tmpl, err := mk(env.Actor)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	if ctx.Bool("async") {
		h, err := env.Actor.CommitAsync(tmpl)
		if err != nil {
			return cli.NewExitError(err, 1)
		}
		fmt.Fprintln(ctx.App.Writer, h)
		return nil
	}
	out, err := env.Actor.Commit(tmpl)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	fmt.Fprintln(ctx.App.Writer, "Hash:", out.ID)
	fmt.Fprintln(ctx.App.Writer, "Gas burnt:", units.GasToHuman(out.GasBurnt))
	for _, l := range out.Logs {
		fmt.Fprintln(ctx.App.Writer, "Log:", l)
	}
	if len(out.Data) != 0 {
		var js json.RawMessage
		if out.Decode(&js) == nil {
			fmt.Fprintln(ctx.App.Writer, "Result:", string(js))
		} else {
			fmt.Fprintf(ctx.App.Writer, "Result: %x\n", out.Data)
		}
	}
	return nil
}

func needArgs(ctx *cli.Context, n int, what string) error {
	if len(ctx.Args()) < n {
		return cli.NewExitError(what+" required", 1)
	}
	return nil
}

func call(ctx *cli.Context) error {
	if err := needArgs(ctx, 2, "contract and method are"); err != nil {
		return err
	}
	args := ctx.Args()
	contract, err := account.NewID(args[0])
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	fc := actor.FunctionCall{
		Receiver: contract,
		Method:   args[1],
		Gas:      flags.GasFromContext(ctx, "gas"),
		Deposit:  flags.BalanceFromContext(ctx, "deposit"),
	}
	if len(args) > 2 {
		if !json.Valid([]byte(args[2])) {
			return cli.NewExitError("arguments must be valid JSON", 1)
		}
		fc.Args = json.RawMessage(args[2])
	}
	return send(ctx, func(a *actor.Actor) (transaction.Template, error) {
		return a.MakeCall(fc)
	})
}

func transfer(ctx *cli.Context) error {
	if err := needArgs(ctx, 2, "receiver and amount are"); err != nil {
		return err
	}
	receiver, err := account.NewID(ctx.Args()[0])
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	amount, err := units.ParseNear(ctx.Args()[1])
	if err != nil {
		return cli.NewExitError(fmt.Errorf("invalid amount: %w", err), 1)
	}
	return send(ctx, func(a *actor.Actor) (transaction.Template, error) {
		return a.MakeTransfer(receiver, amount), nil
	})
}

func deploy(ctx *cli.Context) error {
	if err := needArgs(ctx, 1, "contract file is"); err != nil {
		return err
	}
	code, err := os.ReadFile(ctx.Args()[0])
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	return send(ctx, func(a *actor.Actor) (transaction.Template, error) {
		return a.MakeDeployContract(code), nil
	})
}

func createAccount(ctx *cli.Context) error {
	if err := needArgs(ctx, 2, "account and public key are"); err != nil {
		return err
	}
	id, err := account.NewID(ctx.Args()[0])
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	pub, err := keys.NewPublicKeyFromString(ctx.Args()[1])
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	deposit := flags.BalanceFromContext(ctx, "deposit")
	return send(ctx, func(a *actor.Actor) (transaction.Template, error) {
		return a.MakeCreateAccount(id, pub, deposit), nil
	})
}

func deleteAccount(ctx *cli.Context) error {
	if err := needArgs(ctx, 1, "beneficiary is"); err != nil {
		return err
	}
	beneficiary, err := account.NewID(ctx.Args()[0])
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	return send(ctx, func(a *actor.Actor) (transaction.Template, error) {
		return a.MakeDeleteAccount(beneficiary), nil
	})
}

func addKey(ctx *cli.Context) error {
	if err := needArgs(ctx, 1, "public key is"); err != nil {
		return err
	}
	pub, err := keys.NewPublicKeyFromString(ctx.Args()[0])
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	var perm account.Permission
	if receiver := flags.AccountFromContext(ctx, "receiver"); receiver.IsSet {
		fc := &account.FunctionCallPermission{ReceiverID: receiver.ID().String(), MethodNames: []string{}}
		if methods := ctx.String("methods"); methods != "" {
			fc.MethodNames = strings.Split(methods, ",")
		}
		if ctx.IsSet("allowance") {
			a := flags.BalanceFromContext(ctx, "allowance")
			fc.Allowance = &a
		}
		perm.FunctionCall = fc
	} else if ctx.String("methods") != "" || ctx.IsSet("allowance") {
		return cli.NewExitError("--methods and --allowance require --receiver", 1)
	}
	return send(ctx, func(a *actor.Actor) (transaction.Template, error) {
		return a.MakeAddKey(pub, perm)
	})
}

func deleteKey(ctx *cli.Context) error {
	if err := needArgs(ctx, 1, "public key is"); err != nil {
		return err
	}
	pub, err := keys.NewPublicKeyFromString(ctx.Args()[0])
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	return send(ctx, func(a *actor.Actor) (transaction.Template, error) {
		return a.MakeDeleteKey(pub), nil
	})
}

func stake(ctx *cli.Context) error {
	if err := needArgs(ctx, 2, "amount and public key are"); err != nil {
		return err
	}
	amount, err := units.ParseNear(ctx.Args()[0])
	if err != nil {
		return cli.NewExitError(fmt.Errorf("invalid amount: %w", err), 1)
	}
	pub, err := keys.NewPublicKeyFromString(ctx.Args()[1])
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	return send(ctx, func(a *actor.Actor) (transaction.Template, error) {
		return a.MakeStake(amount, pub), nil
	})
}
