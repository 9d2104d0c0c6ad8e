/*
Package keys contains key management commands.
*/
package keys

import (
	"fmt"

	"github.com/nspcc-dev/near-go/cli/flags"
	"github.com/nspcc-dev/near-go/cli/input"
	"github.com/nspcc-dev/near-go/cli/options"
	"github.com/nspcc-dev/near-go/pkg/crypto/keys"
	"github.com/nspcc-dev/near-go/pkg/wallet"
	"github.com/urfave/cli"
)

// NewCommands returns 'keys' command.
func NewCommands() []cli.Command {
	return []cli.Command{{
		Name:  "keys",
		Usage: "Generate and inspect keys",
		Subcommands: []cli.Command{
			{
				Name:      "generate",
				Usage:     "Generate a new key pair",
				UsageText: "near-go keys generate [--type ed25519|secp256k1] [--account <account> [--network <network>] [--credentials <dir>]]",
				Action:    generate,
				Flags: append([]cli.Flag{
					cli.StringFlag{
						Name:  "type, t",
						Value: keys.ED25519.String(),
						Usage: "key type (ed25519 or secp256k1)",
					},
					flags.AccountFlag{
						Name:  "account, a",
						Usage: "save the key as credentials of the account",
					},
					options.Credentials,
				}, options.Network...),
			},
			{
				Name:      "public",
				Usage:     "Print the public key of a secret key",
				UsageText: "near-go keys public [<secret>]",
				Action:    public,
			},
			{
				Name:      "exchange",
				Usage:     "Derive x25519 exchange keys from an ed25519 secret key",
				UsageText: "near-go keys exchange [<secret>]",
				Action:    exchange,
			},
		},
	}}
}

func generate(ctx *cli.Context) error {
	typ, err := keys.ParseKeyType(ctx.String("type"))
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	if acc := flags.AccountFromContext(ctx, "account"); acc.IsSet {
		accID := acc.ID()
		creds, err := wallet.NewCredentials(accID, typ)
		if err != nil {
			return cli.NewExitError(err, 1)
		}
		cfg, err := options.GetConfigFromContext(ctx)
		if err != nil {
			return cli.NewExitError(err, 1)
		}
		store, err := options.GetStore(cfg)
		if err != nil {
			return cli.NewExitError(err, 1)
		}
		if err := store.Save(creds); err != nil {
			return cli.NewExitError(err, 1)
		}
		fmt.Fprintf(ctx.App.Writer, "Public key: %s\nSaved to: %s\n", creds.PublicKey(), store.Path(accID))
		return nil
	}
	priv, err := keys.NewPrivateKeyOfType(typ)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	fmt.Fprintf(ctx.App.Writer, "Public key: %s\nSecret key: %s\n", priv.PublicKey(), priv.String())
	return nil
}

// secretArg returns the secret key given as an argument or read from the
// terminal.
func secretArg(ctx *cli.Context) (*keys.PrivateKey, error) {
	secret := ctx.Args().First()
	if secret == "" {
		var err error
		secret, err = input.ReadPassword("Enter secret key > ")
		if err != nil {
			return nil, fmt.Errorf("failed to read secret key: %w", err)
		}
	}
	return keys.NewPrivateKeyFromString(secret)
}

func public(ctx *cli.Context) error {
	priv, err := secretArg(ctx)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	fmt.Fprintln(ctx.App.Writer, priv.PublicKey())
	return nil
}

func exchange(ctx *cli.Context) error {
	priv, err := secretArg(ctx)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	ex, err := priv.ExchangeKey()
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	fmt.Fprintf(ctx.App.Writer, "Exchange public key: %s\nExchange secret key: %s\n", ex.PublicKey(), ex.String())
	return nil
}
