package services

import (
	"jurnal/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
)

func observe(counter *prometheus.CounterVec, operation string, err error) {
	outcome := metrics.OutcomeSuccess
	switch {
	case err == nil:
	case rejection(err):
		outcome = metrics.OutcomeRejected
	default:
		outcome = metrics.OutcomeError
	}
	counter.WithLabelValues(operation, outcome).Inc()
}
