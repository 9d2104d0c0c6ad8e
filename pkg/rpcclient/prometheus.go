package rpcclient

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Request outcome labels.
const (
	statusOK             = "ok"
	statusRPCError       = "rpc_error"
	statusTransportError = "transport_error"
)

// Metrics used in monitoring service.
var (
	rpcRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Help:      "Number of RPC requests made by the client",
			Name:      "requests_total",
			Subsystem: "rpcclient",
			Namespace: "neargo",
		},
		[]string{"method", "status"},
	)

	rpcDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Help:      "RPC request duration",
			Name:      "request_duration_seconds",
			Subsystem: "rpcclient",
			Namespace: "neargo",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method"},
	)
)

func init() {
	prometheus.MustRegister(
		rpcRequests,
		rpcDuration,
	)
}

func observeRequest(method, status string, took time.Duration) {
	rpcRequests.WithLabelValues(method, status).Inc()
	rpcDuration.WithLabelValues(method).Observe(took.Seconds())
}
