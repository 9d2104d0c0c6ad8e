package app

import (
	"fmt"
	"os"
	"runtime"

	"github.com/nspcc-dev/near-go/cli/keys"
	"github.com/nspcc-dev/near-go/cli/query"
	"github.com/nspcc-dev/near-go/cli/tx"
	"github.com/nspcc-dev/near-go/cli/wallet"
	"github.com/nspcc-dev/near-go/pkg/config"
	"github.com/urfave/cli"
)

func versionPrinter(c *cli.Context) {
	_, _ = fmt.Fprintf(c.App.Writer, "near-go\nVersion: %s\nGoVersion: %s\n",
		config.Version,
		runtime.Version(),
	)
}

// New creates a near-go instance of [cli.App] with all commands included.
func New() *cli.App {
	cli.VersionPrinter = versionPrinter
	ctl := cli.NewApp()
	ctl.Name = "near-go"
	ctl.Version = config.Version
	ctl.Usage = "Go client for NEAR JSON-RPC nodes"
	ctl.ErrWriter = os.Stdout

	ctl.Commands = append(ctl.Commands, keys.NewCommands()...)
	ctl.Commands = append(ctl.Commands, query.NewCommands()...)
	ctl.Commands = append(ctl.Commands, tx.NewCommands()...)
	ctl.Commands = append(ctl.Commands, wallet.NewCommands()...)
	return ctl
}
