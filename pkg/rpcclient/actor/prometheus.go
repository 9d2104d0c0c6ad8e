package actor

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Submission result labels.
const (
	statusAccepted = "accepted"
	statusRetried  = "retried"
	statusFailed   = "failed"
)

// Metrics used in monitoring service.
var (
	submissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Help:      "Number of transaction submission attempts by result",
			Name:      "submissions_total",
			Subsystem: "actor",
			Namespace: "neargo",
		},
		[]string{"result"},
	)

	outcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Help:      "Number of committed transactions by execution result",
			Name:      "outcomes_total",
			Subsystem: "actor",
			Namespace: "neargo",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(
		submissions,
		outcomes,
	)
}

func observeSubmission(status string) {
	submissions.WithLabelValues(status).Inc()
}

func observeOutcome(err error) {
	var (
		ee     *ExecutionError
		status = "success"
	)
	switch {
	case errors.As(err, &ee):
		status = "failure"
	case errors.Is(err, ErrTxNotStarted):
		status = "not_started"
	case err != nil:
		status = "unknown"
	}
	outcomes.WithLabelValues(status).Inc()
}
