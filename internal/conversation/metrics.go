package conversation

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	operationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "journal",
			Subsystem: "conversation_store",
			Name:      "operations_total",
			Help:      "Conversation store operations by outcome.",
		},
		[]string{"op", "outcome"},
	)

	operationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "journal",
			Subsystem: "conversation_store",
			Name:      "operation_duration_seconds",
			Help:      "Conversation store operation latency, remote calls included.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"op"},
	)

	touchFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "journal",
			Subsystem: "conversation_store",
			Name:      "touch_failures_total",
			Help:      "Appends whose follow-up timestamp update failed.",
		},
	)

	inFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "journal",
			Subsystem: "conversation_store",
			Name:      "in_flight",
			Help:      "Operations currently waiting on the remote store.",
		},
	)
)

func observe(op string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	operationsTotal.WithLabelValues(op, outcome).Inc()
	operationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
