package options

import (
	"context"

	"github.com/nspcc-dev/near-go/pkg/config"
	"github.com/nspcc-dev/near-go/pkg/rpcclient"
	"github.com/nspcc-dev/near-go/pkg/rpcclient/actor"
	"github.com/nspcc-dev/near-go/pkg/services/metrics"
	"github.com/urfave/cli"
	"go.uber.org/zap"
)

// Environment holds everything a network command needs: configuration,
// logger, RPC client and (for commands sending transactions) an Actor.
type Environment struct {
	Config config.Config
	Log    *zap.Logger
	Client *rpcclient.Client
	Actor  *actor.Actor

	metrics   *metrics.Service
	logCloser func() error
}

// NewEnvironment prepares the command environment. With withActor set the
// signer is loaded and an Actor is created.
func NewEnvironment(gctx context.Context, ctx *cli.Context, withActor bool) (*Environment, cli.ExitCoder) {
	cfg, err := GetConfigFromContext(ctx)
	if err != nil {
		return nil, cli.NewExitError(err, 1)
	}
	log, _, logCloser, err := HandleLoggingParams(ctx.Bool("debug"), cfg.Application)
	if err != nil {
		return nil, cli.NewExitError(err, 1)
	}
	env := &Environment{
		Config:    cfg,
		Log:       log,
		logCloser: logCloser,
	}
	var exitErr cli.ExitCoder
	if withActor {
		env.Client, env.Actor, exitErr = GetRPCWithActor(gctx, ctx, cfg, log)
	} else {
		env.Client, exitErr = GetRPCClient(gctx, ctx, cfg, log)
	}
	if exitErr != nil {
		env.Close()
		return nil, exitErr
	}
	if cfg.Application.Prometheus.Enabled {
		env.metrics = metrics.NewPrometheusService(cfg.Application.Prometheus, log)
		if err := env.metrics.Start(); err != nil {
			env.Close()
			return nil, cli.NewExitError(err, 1)
		}
	}
	return env, nil
}

// Close releases the environment resources.
func (e *Environment) Close() {
	if e.metrics != nil {
		e.metrics.ShutDown()
	}
	if e.Client != nil {
		e.Client.Close()
	}
	_ = e.Log.Sync()
	if e.logCloser != nil {
		_ = e.logCloser()
	}
}
