/*
Package wallet contains commands managing the credentials directory.
*/
package wallet

import (
	"errors"
	"fmt"

	"github.com/nspcc-dev/near-go/cli/input"
	"github.com/nspcc-dev/near-go/cli/options"
	"github.com/nspcc-dev/near-go/pkg/core/account"
	"github.com/nspcc-dev/near-go/pkg/crypto/keys"
	"github.com/nspcc-dev/near-go/pkg/wallet"
	"github.com/urfave/cli"
)

var errNoAccount = errors.New("account ID is missing")

// NewCommands returns 'wallet' command.
func NewCommands() []cli.Command {
	storeFlags := append([]cli.Flag{options.Credentials}, options.Network...)
	return []cli.Command{{
		Name:  "wallet",
		Usage: "Manage stored account credentials",
		Subcommands: []cli.Command{
			{
				Name:      "list",
				Usage:     "List accounts with stored credentials",
				UsageText: "near-go wallet list [--network <network>] [--credentials <dir>]",
				Action:    listAccounts,
				Flags:     storeFlags,
			},
			{
				Name:      "import",
				Usage:     "Store the secret key of an account",
				UsageText: "near-go wallet import <account> [<secret>]",
				Action:    importAccount,
				Flags:     storeFlags,
			},
			{
				Name:      "show",
				Usage:     "Show the public key of a stored account",
				UsageText: "near-go wallet show <account>",
				Action:    showAccount,
				Flags:     storeFlags,
			},
			{
				Name:      "remove",
				Usage:     "Remove stored account credentials",
				UsageText: "near-go wallet remove <account>",
				Action:    removeAccount,
				Flags:     storeFlags,
			},
		},
	}}
}

func getStore(ctx *cli.Context) (*wallet.Store, error) {
	cfg, err := options.GetConfigFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return options.GetStore(cfg)
}

func accountArg(ctx *cli.Context) (account.ID, error) {
	if !ctx.Args().Present() {
		return "", errNoAccount
	}
	return account.NewID(ctx.Args().First())
}

func listAccounts(ctx *cli.Context) error {
	store, err := getStore(ctx)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	ids, err := store.List()
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	for _, id := range ids {
		fmt.Fprintln(ctx.App.Writer, id)
	}
	return nil
}

func importAccount(ctx *cli.Context) error {
	id, err := accountArg(ctx)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	secret := ctx.Args().Get(1)
	if secret == "" {
		secret, err = input.ReadPassword(fmt.Sprintf("Enter %s secret key > ", id))
		if err != nil {
			return cli.NewExitError(fmt.Errorf("failed to read secret key: %w", err), 1)
		}
	}
	key, err := keys.NewPrivateKeyFromString(secret)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	store, err := getStore(ctx)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	if err := store.Save(&wallet.Credentials{AccountID: id, PrivateKey: key}); err != nil {
		return cli.NewExitError(err, 1)
	}
	fmt.Fprintf(ctx.App.Writer, "Saved %s (%s) to %s\n", id, key.PublicKey(), store.Path(id))
	return nil
}

func showAccount(ctx *cli.Context) error {
	id, err := accountArg(ctx)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	store, err := getStore(ctx)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	creds, err := store.Load(id)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	fmt.Fprintf(ctx.App.Writer, "Account: %s\nPublic key: %s\n", creds.AccountID, creds.PublicKey())
	return nil
}

func removeAccount(ctx *cli.Context) error {
	id, err := accountArg(ctx)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	store, err := getStore(ctx)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	if err := store.Remove(id); err != nil {
		return cli.NewExitError(err, 1)
	}
	return nil
}
