/*
Package metrics exposes the client's Prometheus metrics over HTTP for
long-running commands.
*/
package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"

	"github.com/nspcc-dev/near-go/pkg/config"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// Service serves metrics on a set of addresses.
type Service struct {
	http        []*http.Server
	config      config.BasicService
	log         *zap.Logger
	serviceType string
	started     atomic.Bool
	wg          sync.WaitGroup
}

// NewService configures a new Service over the given servers.
func NewService(name string, httpServers []*http.Server, cfg config.BasicService, log *zap.Logger) *Service {
	return &Service{
		http:        httpServers,
		config:      cfg,
		serviceType: name,
		log:         log.With(zap.String("service", name)),
	}
}

// Start runs http services with the exposed endpoint on the configured ports.
// Listening errors are returned, serving continues in background goroutines.
func (ms *Service) Start() error {
	if !ms.config.Enabled {
		ms.log.Info("service hasn't started since it's disabled")
		return nil
	}
	if !ms.started.CompareAndSwap(false, true) {
		ms.log.Info("service already started")
		return nil
	}
	for _, srv := range ms.http {
		ln, err := net.Listen("tcp", srv.Addr)
		if err != nil {
			ms.log.Error("failed to listen", zap.String("endpoint", srv.Addr), zap.Error(err))
			return err
		}
		srv.Addr = ln.Addr().String()
		ms.log.Info("starting service", zap.String("endpoint", srv.Addr))
		ms.wg.Add(1)
		go func(srv *http.Server, ln net.Listener) {
			defer ms.wg.Done()
			err := srv.Serve(ln)
			if !errors.Is(err, http.ErrServerClosed) {
				ms.log.Error("failed to start service", zap.String("endpoint", srv.Addr), zap.Error(err))
			}
		}(srv, ln)
	}
	return nil
}

// Addresses returns the addresses the service is bound to.
func (ms *Service) Addresses() []string {
	addrs := make([]string, 0, len(ms.http))
	for _, srv := range ms.http {
		addrs = append(addrs, srv.Addr)
	}
	return addrs
}

// ShutDown stops the service.
func (ms *Service) ShutDown() {
	if !ms.config.Enabled || !ms.started.CompareAndSwap(true, false) {
		return
	}
	for _, srv := range ms.http {
		ms.log.Info("shutting down service", zap.String("endpoint", srv.Addr))
		err := srv.Shutdown(context.Background())
		if err != nil {
			ms.log.Error("can't shut service down", zap.String("endpoint", srv.Addr), zap.Error(err))
		}
	}
	ms.wg.Wait()
	_ = ms.log.Sync()
}
