/*
Package options contains a set of common CLI options and helper functions to use them.
*/
package options

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/nspcc-dev/near-go/cli/flags"
	"github.com/nspcc-dev/near-go/cli/input"
	"github.com/nspcc-dev/near-go/pkg/config"
	"github.com/nspcc-dev/near-go/pkg/crypto/hash"
	"github.com/nspcc-dev/near-go/pkg/crypto/keys"
	"github.com/nspcc-dev/near-go/pkg/io"
	"github.com/nspcc-dev/near-go/pkg/nearrpc"
	"github.com/nspcc-dev/near-go/pkg/rpcclient"
	"github.com/nspcc-dev/near-go/pkg/rpcclient/actor"
	"github.com/nspcc-dev/near-go/pkg/rpcclient/invoker"
	"github.com/nspcc-dev/near-go/pkg/wallet"
	"github.com/urfave/cli"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	// DefaultTimeout is the default timeout used for RPC requests.
	DefaultTimeout = 10 * time.Second
	// DefaultAwaitableTimeout is the default timeout used for commands that
	// wait for transaction execution.
	DefaultAwaitableTimeout = time.Minute
)

// RPCEndpointFlag is a long flag name for an RPC endpoint. It can be used to
// check for flag presence in the context.
const RPCEndpointFlag = "rpc-endpoint"

// Network is a set of flags for choosing the network configuration.
var Network = []cli.Flag{
	cli.StringFlag{
		Name:  "network, n",
		Value: config.TestNet,
		Usage: "network to use defaults for (mainnet, testnet or localnet), ignored with --config-file",
	},
	ConfigFile,
	Debug,
}

// RPC is a set of flags used for RPC connections (endpoint and timeout).
var RPC = []cli.Flag{
	cli.StringFlag{
		Name:  RPCEndpointFlag + ", r",
		Usage: "RPC node address (overrides configuration)",
	},
	cli.DurationFlag{
		Name:  "timeout, s",
		Value: DefaultTimeout,
		Usage: "Timeout for the operation",
	},
}

// AwaitableRPC is the same as RPC, but with the default timeout suitable for
// transaction execution awaiting.
var AwaitableRPC = []cli.Flag{
	RPC[0],
	cli.DurationFlag{
		Name:  "timeout, s",
		Value: DefaultAwaitableTimeout,
		Usage: "Timeout for the operation",
	},
}

// Historic is a set of flags selecting the block view calls are made against.
var Historic = []cli.Flag{
	cli.StringFlag{
		Name:  "finality, f",
		Usage: "block finality to use (final, near-final or optimistic, overrides configuration)",
	},
	cli.StringFlag{
		Name:  "block",
		Usage: "use historic state (block height or hash)",
	},
}

// Signer is a set of flags used to get the transaction signer.
var Signer = []cli.Flag{
	flags.AccountFlag{
		Name:  "account, a",
		Usage: "signer account ID",
	},
	Credentials,
	cli.BoolFlag{
		Name:  "ask-key",
		Usage: "read the signer secret key from the terminal instead of the credentials directory",
	},
}

// Credentials is a flag for commands using the credentials directory.
var Credentials = cli.StringFlag{
	Name:  "credentials",
	Usage: "credentials directory (overrides configuration)",
}

// ConfigFile is a flag for commands that use client configuration.
var ConfigFile = cli.StringFlag{
	Name:  "config-file",
	Usage: "path to the client configuration file",
}

// Debug is a flag for commands that allow debug logging.
var Debug = cli.BoolFlag{
	Name:  "debug, d",
	Usage: "enable debug logging (overrides configuration)",
}

var (
	errNoEndpoint   = errors.New("no RPC endpoint specified, use option '--" + RPCEndpointFlag + "' or '-r'")
	errNoAccount    = errors.New("no signer account specified, use option '--account' or '-a'")
	errInvalidBlock = errors.New("invalid 'block' parameter, neither a block height, nor a block hash")
)

// GetTimeoutContext returns a context.Context with the default or a user-set timeout.
func GetTimeoutContext(ctx *cli.Context) (context.Context, func()) {
	dur := ctx.Duration("timeout")
	if dur == 0 {
		dur = DefaultTimeout
	}
	return context.WithTimeout(context.Background(), dur)
}

// GetConfigFromContext loads the configuration file if given or uses the
// defaults of the selected network, then applies flag overrides.
func GetConfigFromContext(ctx *cli.Context) (config.Config, error) {
	var (
		cfg config.Config
		err error
	)
	if configFile := ctx.String("config-file"); configFile != "" {
		cfg, err = config.Load(configFile)
	} else {
		network := ctx.String("network")
		if network == "" {
			network = config.TestNet
		}
		cfg, err = config.ForNetwork(network)
	}
	if err != nil {
		return config.Config{}, err
	}
	if endpoint := ctx.String(RPCEndpointFlag); endpoint != "" {
		cfg.Network.RPCEndpoint = endpoint
	}
	if f := ctx.String("finality"); f != "" {
		cfg.Network.Finality, err = nearrpc.ParseFinality(f)
		if err != nil {
			return config.Config{}, err
		}
	}
	if creds := ctx.String("credentials"); creds != "" {
		cfg.Application.CredentialsPath = creds
	}
	if ctx.IsSet("retries") {
		cfg.Network.MaxRetries = ctx.Int("retries")
	}
	return cfg, cfg.Validate()
}

// GetRPCClient returns an RPC client instance for the given Context.
func GetRPCClient(gctx context.Context, ctx *cli.Context, cfg config.Config, log *zap.Logger) (*rpcclient.Client, cli.ExitCoder) {
	if len(cfg.Network.RPCEndpoint) == 0 {
		return nil, cli.NewExitError(errNoEndpoint, 1)
	}
	c, err := rpcclient.New(gctx, cfg.Network.RPCEndpoint, rpcclient.Options{
		DialTimeout:    cfg.Network.DialTimeout,
		RequestTimeout: cfg.Network.RequestTimeout,
		Logger:         log,
	})
	if err != nil {
		return nil, cli.NewExitError(err, 1)
	}
	return c, nil
}

// GetInvoker returns an invoker using the given RPC client. It parses the
// "--block" parameter to make historic calls.
func GetInvoker(c invoker.RPCInvoke, ctx *cli.Context, cfg config.Config) (*invoker.Invoker, cli.ExitCoder) {
	block := ctx.String("block")
	if block == "" {
		return invoker.New(c, cfg.Network.Finality), nil
	}
	if height, err := strconv.ParseUint(block, 10, 64); err == nil {
		return invoker.NewHistoricAtHeight(height, c), nil
	}
	if h, err := hash.NewFromString(block); err == nil {
		return invoker.NewHistoricAtBlock(h, c), nil
	}
	return nil, cli.NewExitError(errInvalidBlock, 1)
}

// GetSigner returns the signer for the account given in the context. The key
// is taken from the credentials directory or read from the terminal.
func GetSigner(ctx *cli.Context, cfg config.Config) (*actor.Signer, error) {
	acc := flags.AccountFromContext(ctx, "account")
	if !acc.IsSet {
		return nil, errNoAccount
	}
	accID := acc.ID()
	var key *keys.PrivateKey
	if ctx.Bool("ask-key") {
		secret, err := input.ReadPassword(fmt.Sprintf("Enter %s secret key > ", accID))
		if err != nil {
			return nil, fmt.Errorf("failed to read secret key: %w", err)
		}
		key, err = keys.NewPrivateKeyFromString(secret)
		if err != nil {
			return nil, err
		}
	} else {
		store, err := GetStore(cfg)
		if err != nil {
			return nil, err
		}
		creds, err := store.Load(accID)
		if err != nil {
			return nil, err
		}
		key = creds.PrivateKey
	}
	return actor.NewSigner(accID, key, 0), nil
}

// GetStore returns the credentials store of the configured network.
func GetStore(cfg config.Config) (*wallet.Store, error) {
	return wallet.NewStore(cfg.Application.CredentialsPath, cfg.Network.Name)
}

// GetRPCWithActor returns an RPC client instance and Actor instance for the
// given context.
func GetRPCWithActor(gctx context.Context, ctx *cli.Context, cfg config.Config, log *zap.Logger) (*rpcclient.Client, *actor.Actor, cli.ExitCoder) {
	signer, err := GetSigner(ctx, cfg)
	if err != nil {
		return nil, nil, cli.NewExitError(err, 1)
	}
	c, exitErr := GetRPCClient(gctx, ctx, cfg, log)
	if exitErr != nil {
		return nil, nil, exitErr
	}
	a, err := actor.New(c, signer, actor.Options{
		MaxRetries: cfg.Network.MaxRetries,
		Finality:   cfg.Network.Finality,
		Logger:     log,
	})
	if err != nil {
		c.Close()
		return nil, nil, cli.NewExitError(fmt.Errorf("failed to create Actor: %w", err), 1)
	}
	return c, a, nil
}

var (
	// _winfileSinkRegistered denotes whether zap has registered
	// user-supplied factory for all sinks with `winfile`-prefixed scheme.
	_winfileSinkRegistered bool
	_winfileSinkCloser     func() error
)

// HandleLoggingParams reads logging parameters.
// If a user selected debug level -- function enables it.
// If logPath is configured -- function creates a dir and a file for logging.
// If logPath is configured on Windows -- function returns closer to be
// able to close sink for the opened log output file.
func HandleLoggingParams(debug bool, cfg config.ApplicationConfiguration) (*zap.Logger, *zap.AtomicLevel, func() error, error) {
	var (
		level = zapcore.InfoLevel
		err   error
	)
	if len(cfg.LogLevel) > 0 {
		level, err = zapcore.ParseLevel(cfg.LogLevel)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("log setting: %w", err)
		}
	}
	if debug {
		level = zapcore.DebugLevel
	}

	cc := zap.NewProductionConfig()
	cc.DisableCaller = true
	cc.DisableStacktrace = true
	cc.EncoderConfig.EncodeDuration = zapcore.StringDurationEncoder
	cc.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	cc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cc.Encoding = "console"
	cc.Level = zap.NewAtomicLevelAt(level)
	cc.Sampling = nil
	// Command output goes to stdout, logs must not mix with it.
	cc.OutputPaths = []string{"stderr"}

	if logPath := cfg.LogPath; logPath != "" {
		if err := io.MakeDirForFile(logPath, "logger"); err != nil {
			return nil, nil, nil, err
		}

		if runtime.GOOS == "windows" {
			if !_winfileSinkRegistered {
				// See https://github.com/uber-go/zap/issues/621.
				err := zap.RegisterSink("winfile", func(u *url.URL) (zap.Sink, error) {
					if u.User != nil || u.Fragment != "" || u.RawQuery != "" || u.Port() != "" {
						return nil, fmt.Errorf("unsupported file URL: %v", u)
					}
					if hn := u.Hostname(); hn != "" && hn != "localhost" {
						return nil, fmt.Errorf("file URLs must leave host empty or use localhost: got %v", u)
					}
					f, err := os.OpenFile(u.Path[1:], // Remove leading slash left after url.Parse.
						os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0644)
					_winfileSinkCloser = func() error {
						_winfileSinkCloser = nil
						return f.Close()
					}
					return f, err
				})
				if err != nil {
					return nil, nil, nil, fmt.Errorf("failed to register windows-specific sink: %w", err)
				}
				_winfileSinkRegistered = true
			}
			logPath = "winfile:///" + logPath
		}

		cc.OutputPaths = []string{logPath}
	}

	log, err := cc.Build()
	return log, &cc.Level, _winfileSinkCloser, err
}
