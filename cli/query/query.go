/*
Package query contains commands querying the network state.
*/
package query

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
	"text/tabwriter"
	"unicode/utf8"

	"github.com/nspcc-dev/near-go/cli/options"
	"github.com/nspcc-dev/near-go/pkg/core/account"
	"github.com/nspcc-dev/near-go/pkg/crypto/hash"
	"github.com/nspcc-dev/near-go/pkg/encoding/units"
	"github.com/nspcc-dev/near-go/pkg/nearrpc"
	"github.com/nspcc-dev/near-go/pkg/nearrpc/result"
	"github.com/nspcc-dev/near-go/pkg/rpcclient/actor"
	"github.com/nspcc-dev/near-go/pkg/rpcclient/invoker"
	"github.com/urfave/cli"
)

// NewCommands returns 'query' command.
func NewCommands() []cli.Command {
	rpcFlags := append(append([]cli.Flag{}, options.Network...), options.RPC...)
	historicFlags := append(append([]cli.Flag{}, rpcFlags...), options.Historic...)
	return []cli.Command{{
		Name:  "query",
		Usage: "Query the network state",
		Subcommands: []cli.Command{
			{
				Name:   "status",
				Usage:  "Show node status",
				Action: queryStatus,
				Flags:  rpcFlags,
			},
			{
				Name:      "block",
				Usage:     "Show block header",
				UsageText: "near-go query block [<height>|<hash>] [--finality <finality>]",
				Action:    queryBlock,
				Flags:     historicFlags,
			},
			{
				Name:      "account",
				Usage:     "Show account balance and storage",
				UsageText: "near-go query account <account> [--block <height>|<hash>]",
				Action:    queryAccount,
				Flags:     historicFlags,
			},
			{
				Name:      "keys",
				Usage:     "List account access keys",
				UsageText: "near-go query keys <account> [--block <height>|<hash>]",
				Action:    queryKeys,
				Flags:     historicFlags,
			},
			{
				Name:      "state",
				Usage:     "Dump contract storage",
				UsageText: "near-go query state <account> [--prefix <prefix>] [--block <height>|<hash>]",
				Action:    queryState,
				Flags: append(historicFlags, cli.StringFlag{
					Name:  "prefix",
					Usage: "key prefix",
				}),
			},
			{
				Name:      "view",
				Usage:     "Call contract view method",
				UsageText: "near-go query view <contract> <method> [<json args>] [--block <height>|<hash>]",
				Action:    queryView,
				Flags:     historicFlags,
			},
			{
				Name:      "tx",
				Usage:     "Show transaction execution status",
				UsageText: "near-go query tx <hash> <sender>",
				Action:    queryTx,
				Flags:     rpcFlags,
			},
		},
	}}
}

// withInvoker runs f with a ready invoker built from the command flags.
func withInvoker(ctx *cli.Context, f func(*options.Environment, *invoker.Invoker) error) error {
	gctx, cancel := options.GetTimeoutContext(ctx)
	defer cancel()

	env, exitErr := options.NewEnvironment(gctx, ctx, false)
	if exitErr != nil {
		return exitErr
	}
	defer env.Close()

	inv, exitErr := options.GetInvoker(env.Client, ctx, env.Config)
	if exitErr != nil {
		return exitErr
	}
	if err := f(env, inv); err != nil {
		return cli.NewExitError(err, 1)
	}
	return nil
}

func accountArg(ctx *cli.Context) (account.ID, error) {
	if !ctx.Args().Present() {
		return "", cli.NewExitError("account ID is missing", 1)
	}
	id, err := account.NewID(ctx.Args().First())
	if err != nil {
		return "", cli.NewExitError(err, 1)
	}
	return id, nil
}

func queryStatus(ctx *cli.Context) error {
	return withInvoker(ctx, func(env *options.Environment, _ *invoker.Invoker) error {
		st, err := env.Client.Status()
		if err != nil {
			return err
		}
		gp, err := env.Client.GasPrice(nil)
		if err != nil {
			return err
		}
		buf := bytes.NewBuffer(nil)
		tw := tabwriter.NewWriter(buf, 0, 4, 2, ' ', 0)
		_, _ = tw.Write([]byte("Chain ID:\t" + st.ChainID + "\n"))
		_, _ = tw.Write([]byte(fmt.Sprintf("Node version:\t%s (%s)\n", st.Version.Version, st.Version.Build)))
		_, _ = tw.Write([]byte(fmt.Sprintf("Protocol version:\t%d\n", st.ProtocolVersion)))
		_, _ = tw.Write([]byte(fmt.Sprintf("Latest block:\t%d %s\n", st.SyncInfo.LatestBlockHeight, st.SyncInfo.LatestBlockHash)))
		_, _ = tw.Write([]byte("Latest block time:\t" + st.SyncInfo.LatestBlockTime + "\n"))
		_, _ = tw.Write([]byte("Syncing:\t" + strconv.FormatBool(st.SyncInfo.Syncing) + "\n"))
		_, _ = tw.Write([]byte("Gas price:\t" + gp.GasPrice.String() + "\n"))
		_ = tw.Flush()
		_, _ = fmt.Fprint(ctx.App.Writer, buf.String())
		return nil
	})
}

func queryBlock(ctx *cli.Context) error {
	return withInvoker(ctx, func(env *options.Environment, inv *invoker.Invoker) error {
		ref := inv.BlockReference()
		if ctx.Args().Present() {
			arg := ctx.Args().First()
			if height, err := strconv.ParseUint(arg, 10, 64); err == nil {
				ref = nearrpc.AtHeight(height)
			} else if h, err := hash.NewFromString(arg); err == nil {
				ref = nearrpc.AtHash(h)
			} else {
				return fmt.Errorf("invalid block %q, neither a height, nor a hash", arg)
			}
		}
		b, err := env.Client.Block(ref)
		if err != nil {
			return err
		}
		return printJSON(ctx, b)
	})
}

func queryAccount(ctx *cli.Context) error {
	id, err := accountArg(ctx)
	if err != nil {
		return err
	}
	return withInvoker(ctx, func(_ *options.Environment, inv *invoker.Invoker) error {
		acc, err := inv.ViewAccount(id)
		if err != nil {
			return err
		}
		buf := bytes.NewBuffer(nil)
		tw := tabwriter.NewWriter(buf, 0, 4, 2, ' ', 0)
		_, _ = tw.Write([]byte("Account:\t" + id.String() + "\n"))
		_, _ = tw.Write([]byte("Amount:\t" + units.NearToHuman(acc.Amount) + "\n"))
		_, _ = tw.Write([]byte("Locked:\t" + units.NearToHuman(acc.Locked) + "\n"))
		codeHash := "none"
		if acc.HasContract() {
			codeHash = acc.CodeHash.String()
		}
		_, _ = tw.Write([]byte("Code hash:\t" + codeHash + "\n"))
		_, _ = tw.Write([]byte(fmt.Sprintf("Storage usage:\t%d\n", acc.StorageUsage)))
		_, _ = tw.Write([]byte(fmt.Sprintf("Block:\t%d %s\n", acc.BlockHeight, acc.BlockHash)))
		_ = tw.Flush()
		_, _ = fmt.Fprint(ctx.App.Writer, buf.String())
		return nil
	})
}

func queryKeys(ctx *cli.Context) error {
	id, err := accountArg(ctx)
	if err != nil {
		return err
	}
	return withInvoker(ctx, func(_ *options.Environment, inv *invoker.Invoker) error {
		list, err := inv.ViewAccessKeyList(id)
		if err != nil {
			return err
		}
		for _, k := range list.Keys {
			_, _ = fmt.Fprintf(ctx.App.Writer, "%s\tnonce: %d\t%s\n", k.PublicKey, k.AccessKey.Nonce, k.AccessKey.Permission)
		}
		return nil
	})
}

func queryState(ctx *cli.Context) error {
	id, err := accountArg(ctx)
	if err != nil {
		return err
	}
	return withInvoker(ctx, func(_ *options.Environment, inv *invoker.Invoker) error {
		st, err := inv.ViewState(id, []byte(ctx.String("prefix")))
		if err != nil {
			return err
		}
		for _, item := range st.Values {
			_, _ = fmt.Fprintf(ctx.App.Writer, "%s: %s\n", formatBytes(item.Key), formatBytes(item.Value))
		}
		return nil
	})
}

func queryView(ctx *cli.Context) error {
	args := ctx.Args()
	if len(args) < 2 {
		return cli.NewExitError("contract and method are required", 1)
	}
	contract, err := account.NewID(args[0])
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	var callArgs json.RawMessage
	if len(args) > 2 {
		if !json.Valid([]byte(args[2])) {
			return cli.NewExitError("arguments must be valid JSON", 1)
		}
		callArgs = json.RawMessage(args[2])
	}
	return withInvoker(ctx, func(_ *options.Environment, inv *invoker.Invoker) error {
		res, err := inv.Call(contract, args[1], callArgs)
		if err != nil {
			return err
		}
		if err := res.Err(); err != nil {
			return err
		}
		for _, l := range res.Logs {
			_, _ = fmt.Fprintln(ctx.App.Writer, "Log:", l)
		}
		_, _ = fmt.Fprintln(ctx.App.Writer, formatResult(res.Result))
		return nil
	})
}

func queryTx(ctx *cli.Context) error {
	args := ctx.Args()
	if len(args) < 2 {
		return cli.NewExitError("transaction hash and sender are required", 1)
	}
	txHash, err := hash.NewFromString(args[0])
	if err != nil {
		return cli.NewExitError(fmt.Sprintf("Invalid tx hash: %s", args[0]), 1)
	}
	sender, err := account.NewID(args[1])
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	return withInvoker(ctx, func(env *options.Environment, _ *invoker.Invoker) error {
		outcome, err := env.Client.TxStatus(txHash, sender)
		if err != nil {
			return err
		}
		DumpOutcome(ctx, outcome)
		return nil
	})
}

// DumpOutcome prints the execution outcome summary.
func DumpOutcome(ctx *cli.Context, o *result.FinalExecutionOutcome) {
	buf := bytes.NewBuffer(nil)
	tw := tabwriter.NewWriter(buf, 0, 4, 2, ' ', 0)
	_, _ = tw.Write([]byte("Hash:\t" + o.TransactionOutcome.ID.String() + "\n"))
	_, _ = tw.Write([]byte("Status:\t" + o.Status.Kind + "\n"))
	_, _ = tw.Write([]byte("Gas burnt:\t" + units.GasToHuman(o.TotalGasBurnt()) + "\n"))
	for _, l := range o.AllLogs() {
		_, _ = tw.Write([]byte("Log:\t" + l + "\n"))
	}
	_ = tw.Flush()
	_, _ = fmt.Fprint(ctx.App.Writer, buf.String())

	out, err := actor.ProcessOutcome(o)
	if err != nil {
		_, _ = fmt.Fprintln(ctx.App.Writer, "Error:", err)
		return
	}
	if len(out.Data) != 0 {
		_, _ = fmt.Fprintln(ctx.App.Writer, "Result:", formatResult(out.Data))
	}
}

// formatResult prints JSON and UTF-8 results as is, anything else as base64.
func formatResult(b []byte) string {
	if json.Valid(b) {
		return string(b)
	}
	return formatBytes(b)
}

func formatBytes(b []byte) string {
	if utf8.Valid(b) && bytes.IndexFunc(b, func(r rune) bool { return r < 0x20 }) < 0 {
		return strconv.Quote(string(b))
	}
	return "base64:" + base64.StdEncoding.EncodeToString(b)
}

func printJSON(ctx *cli.Context, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(ctx.App.Writer, string(b))
	return err
}
