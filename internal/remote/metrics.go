package remote

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	callsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "journal",
			Subsystem: "remote",
			Name:      "calls_total",
			Help:      "Calls to the journal service by operation and outcome.",
		},
		[]string{"op", "outcome"},
	)

	retriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "journal",
			Subsystem: "remote",
			Name:      "retries_total",
			Help:      "Extra attempts spent on recoverable failures.",
		},
		[]string{"op"},
	)

	callDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "journal",
			Subsystem: "remote",
			Name:      "call_duration_seconds",
			Help:      "Latency of journal service calls, retries included.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"op"},
	)
)

func observe(op string, start time.Time, attempts int, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	callsTotal.WithLabelValues(op, outcome).Inc()
	callDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if attempts > 1 {
		retriesTotal.WithLabelValues(op).Add(float64(attempts - 1))
	}
}
